package dslparser

import (
	"fmt"
	"strings"

	"github.com/schemadef/schemadef/schema"
)

// FieldEntry is one column entry in the order it appeared in the declaration
// file. Order matters: spec §3 requires column insertion order to be preserved
// for CREATE TABLE emission, and a plain Go map cannot carry that guarantee —
// the caller (package decl) is responsible for decoding YAML mappings in a way
// that preserves this order (gopkg.in/yaml.v2's yaml.MapSlice).
type FieldEntry struct {
	Name  string
	Value string
}

// ParseTable turns one table's ordered field entries into a schema.ParsedSchema,
// per spec §4.C. aliases maps alias name (case-sensitive, as declared
// in configuration) to its Alias definition.
func ParseTable(tableName string, fields []FieldEntry, aliases map[string]Alias) (*schema.ParsedSchema, error) {
	out := schema.NewParsedSchema(tableName)

	for _, entry := range fields {
		if strings.HasPrefix(entry.Name, "~") {
			continue
		}
		field, err := parseField(entry.Name, entry.Value, aliases, out)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", entry.Name, err)
		}
		if _, dup := out.Columns[entry.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q in table %q", entry.Name, tableName)
		}
		out.Columns[entry.Name] = field
		out.ColumnOrder = append(out.ColumnOrder, entry.Name)
	}

	return out, nil
}

func parseField(name, value string, aliases map[string]Alias, out *schema.ParsedSchema) (*schema.FieldDefinition, error) {
	tokens := strings.Fields(value)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty field definition")
	}

	typeSpec, modifiers := tokens[0], tokens[1:]

	aliasName, lengthSpec := splitTypeSpec(typeSpec)

	var resolvedType string
	var alias Alias
	var hasAlias bool
	if a, ok := aliases[aliasName]; ok {
		alias = a
		hasAlias = true
		resolvedType = alias.Type
	} else {
		resolvedType = aliasName
	}
	resolvedType = applyLength(resolvedType, lengthSpec)

	field := &schema.FieldDefinition{
		Name: name,
		Type: resolvedType,
	}

	field.Nullable = schema.NullabilityNull
	field.HasDefault = false

	for _, mod := range modifiers {
		lower := strings.ToLower(mod)
		switch {
		case lower == "required":
			field.Nullable = schema.NullabilityNotNull
		case lower == "unique":
			field.Key = schema.KeyUniqueSingle
		case strings.HasPrefix(lower, "unique/"):
			groups := strings.Split(mod[len("unique/"):], ",")
			for _, g := range groups {
				g = strings.TrimSpace(g)
				if g == "" {
					continue
				}
				if _, ok := out.CompositeUniqueIndexes[g]; !ok {
					out.CompositeUniqueGroups = append(out.CompositeUniqueGroups, g)
				}
				out.CompositeUniqueIndexes[g] = append(out.CompositeUniqueIndexes[g], name)
			}
		case lower == "index":
			if !containsString(out.IndividualIndexes, name) {
				out.IndividualIndexes = append(out.IndividualIndexes, name)
			}
		case strings.HasPrefix(lower, "index/"):
			groups := strings.Split(mod[len("index/"):], ",")
			for _, g := range groups {
				g = strings.TrimSpace(g)
				if g == "" {
					continue
				}
				if _, ok := out.CompositeIndexes[g]; !ok {
					out.CompositeIndexGroups = append(out.CompositeIndexGroups, g)
				}
				out.CompositeIndexes[g] = append(out.CompositeIndexes[g], name)
			}
		case strings.HasPrefix(mod, "default/"):
			field.HasDefault = true
			field.DefaultRaw = mod[len("default/"):]
		}
	}

	if hasAlias && alias.Key != "" {
		switch alias.Key {
		case "PRIMARY":
			field.Key = schema.KeyPrimary
		case "UNIQUE":
			field.Key = schema.KeyUniqueSingle
		}
	}

	if !field.HasDefault && hasAlias && alias.HasDefault {
		field.HasDefault = true
		field.DefaultRaw = alias.DefaultRaw
	}

	if hasAlias && alias.Extra != "" {
		field.Extra = strings.ToUpper(alias.Extra)
	}

	if field.IsSerial() {
		field.Nullable = schema.NullabilityUnspecified
	}

	return field, nil
}

// splitTypeSpec splits "alias[/length]" into its alias head and optional length
// fragment (either "N" or "P,S"), per spec §4.C.
func splitTypeSpec(typeSpec string) (alias string, length string) {
	idx := strings.Index(typeSpec, "/")
	if idx < 0 {
		return typeSpec, ""
	}
	return typeSpec[:idx], typeSpec[idx+1:]
}

// applyLength replaces or appends a parenthesized (N) or (P,S) on the resolved
// type, per spec §4.C, and upper-cases the result.
func applyLength(resolvedType, length string) string {
	if length == "" {
		return strings.ToUpper(resolvedType)
	}
	base := resolvedType
	if idx := strings.Index(base, "("); idx >= 0 {
		base = base[:idx]
	}
	return strings.ToUpper(base) + "(" + length + ")"
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
