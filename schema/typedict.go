package schema

import "strings"

// typeDictionary is the static, case-insensitive map from DSL type heads to the
// catalog's wire form, per spec §4.A. Keys are upper-case; lookups upper-case the
// input head first.
var typeDictionary = map[string]string{
	"SERIAL":       "integer",
	"SERIAL4":      "integer",
	"SMALLSERIAL":  "smallint",
	"SERIAL2":      "smallint",
	"BIGSERIAL":    "bigint",
	"SERIAL8":      "bigint",
	"VARCHAR":      "character varying",
	"CHAR":         "character",
	"INT":          "integer",
	"INTEGER":      "integer",
	"INT4":         "integer",
	"INT2":         "smallint",
	"SMALLINT":     "smallint",
	"INT8":         "bigint",
	"BIGINT":       "bigint",
	"REAL":         "real",
	"FLOAT4":       "real",
	"DOUBLE":       "double precision",
	"FLOAT":        "double precision",
	"FLOAT8":       "double precision",
	"NUMERIC":      "numeric",
	"DECIMAL":      "numeric",
	"TIMESTAMP":    "timestamp without time zone",
	"TIMESTAMPTZ":  "timestamp with time zone",
	"DATE":         "date",
	"TIME":         "time",
	"TIMETZ":       "time with time zone",
	"BOOLEAN":      "boolean",
	"BOOL":         "boolean",
	"JSON":         "json",
	"JSONB":        "jsonb",
	"UUID":         "uuid",
	"VARBIT":       "bit varying",
}

// serialTypeHeads is the set of DSL type heads that are SERIAL-family. A field
// whose resolved type head is one of these implies NOT NULL and must never emit a
// DEFAULT clause (spec §3 invariant).
var serialTypeHeads = map[string]bool{
	"SERIAL":      true,
	"SERIAL4":     true,
	"SMALLSERIAL": true,
	"SERIAL2":     true,
	"BIGSERIAL":   true,
	"SERIAL8":     true,
}

// ResolveTypeHead maps a DSL type head (case-insensitive) to the catalog's wire
// form. Unknown heads map to their lower-case identity, per spec §4.A.
func ResolveTypeHead(head string) string {
	upper := strings.ToUpper(head)
	if wire, ok := typeDictionary[upper]; ok {
		return wire
	}
	return strings.ToLower(head)
}

// IsSerialHead reports whether a DSL type head (case-insensitive) is one of the
// SERIAL variants.
func IsSerialHead(head string) bool {
	return serialTypeHeads[strings.ToUpper(head)]
}

// isSerialType reports whether a resolved canonical FieldDefinition.Type (e.g.
// "SERIAL", "BIGSERIAL" or "SERIAL(4)"-shaped edge cases never produced by the
// parser) refers to a SERIAL variant, by inspecting its head token.
func isSerialType(canonicalType string) bool {
	head := canonicalType
	if idx := strings.IndexAny(head, "( "); idx >= 0 {
		head = head[:idx]
	}
	return IsSerialHead(head)
}
