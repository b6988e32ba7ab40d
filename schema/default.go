package schema

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// DefaultAction is the outcome of comparing a DSL default against a reflected one,
// per spec §4.B(3).
type DefaultAction int

const (
	// DefaultUnchanged means no ALTER COLUMN SET/DROP DEFAULT is required.
	DefaultUnchanged DefaultAction = iota
	// DefaultShouldSet means the column's default must be set to Expr.
	DefaultShouldSet
	// DefaultShouldDrop means the column's default must be dropped.
	DefaultShouldDrop
)

var (
	numericLiteralRe = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	uuidLiteralRe    = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	trailingCastRe   = regexp.MustCompile(`(?i)::[a-z_][a-z0-9_ ]*$`)
	internalWsRe     = regexp.MustCompile(`\s+`)
)

// NormalizeForEmission converts a raw DSL default into a statement-ready
// expression, per spec §4.B(1). The second return value is false when no DEFAULT
// clause should be emitted at all.
func NormalizeForEmission(rawDefault string, typeUpper string) (string, bool) {
	v := strings.TrimSpace(rawDefault)
	if v == "" || strings.EqualFold(v, "null") {
		return "", false
	}

	if len(v) >= 8 && strings.EqualFold(v[:8], "default ") {
		v = strings.TrimSpace(v[8:])
	}
	if v == "" || strings.EqualFold(v, "null") {
		return "", false
	}

	if strings.HasSuffix(v, ")") ||
		strings.EqualFold(v, "CURRENT_TIMESTAMP") ||
		strings.EqualFold(v, "CURRENT_DATE") ||
		strings.EqualFold(v, "CURRENT_TIME") {
		return v, true
	}

	if strings.EqualFold(v, "true") {
		return "TRUE", true
	}
	if strings.EqualFold(v, "false") {
		return "FALSE", true
	}

	if numericLiteralRe.MatchString(v) {
		return v, true
	}

	if strings.Contains(typeUpper, "JSONB") || strings.Contains(typeUpper, "JSON") {
		if strings.HasPrefix(v, "{") || strings.HasPrefix(v, "[") {
			cast := "::json"
			if strings.Contains(typeUpper, "JSONB") {
				cast = "::jsonb"
			}
			return quoteSingle(v) + cast, true
		}
	}

	if parsed, err := uuid.Parse(v); err == nil && uuidLiteralRe.MatchString(strings.ToLower(v)) {
		return quoteSingle(strings.ToLower(parsed.String())), true
	}

	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		return v, true
	}

	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
		return quoteSingle(v), true
	}

	return quoteSingle(v), true
}

func quoteSingle(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// CanonicalizeReflected canonicalizes a reflected default expression for
// comparison, per spec §4.B(2).
func CanonicalizeReflected(reflected string) string {
	v := internalWsRe.ReplaceAllString(strings.TrimSpace(reflected), " ")

	if strings.Contains(strings.ToLower(v), "nextval(") {
		return v
	}

	if strings.HasPrefix(v, "encode(") {
		v = strings.ReplaceAll(v, "::text", "")
		v = strings.ReplaceAll(v, "::unknown", "")
	}

	for {
		stripped := trailingCastRe.ReplaceAllString(v, "")
		if stripped == v {
			break
		}
		v = stripped
	}

	if len(v) >= 2 && v[0] == '(' && v[len(v)-1] == ')' {
		v = v[1 : len(v)-1]
	}

	if len(v) >= 2 && v[0] == '\'' && v[len(v)-1] == '\'' {
		v = v[1 : len(v)-1]
		v = strings.ReplaceAll(v, "''", "'")
	}

	if strings.EqualFold(v, "true") {
		v = "true"
	} else if strings.EqualFold(v, "false") {
		v = "false"
	}

	return v
}

// CompareDefault decides what, if anything, must change about a column's default,
// per spec §4.B(3). hasDefault/rawDefault describe the DSL side; reflected is the
// catalog's DefaultExpr (nil when the column has no default at all).
func CompareDefault(hasDefault bool, rawDefault string, typeUpper string, reflected *string) (DefaultAction, string) {
	emission, emitted := "", false
	if hasDefault {
		emission, emitted = NormalizeForEmission(rawDefault, typeUpper)
	}

	reflectedCanonical := ""
	reflectedNonEmpty := false
	if reflected != nil && strings.TrimSpace(*reflected) != "" {
		reflectedCanonical = CanonicalizeReflected(*reflected)
		reflectedNonEmpty = true
	}

	if !emitted {
		if reflectedNonEmpty {
			return DefaultShouldDrop, ""
		}
		return DefaultUnchanged, ""
	}

	if !reflectedNonEmpty {
		return DefaultShouldSet, emission
	}

	normalizedEmission := CanonicalizeReflected(emission)
	if normalizedEmission == reflectedCanonical {
		return DefaultUnchanged, ""
	}
	return DefaultShouldSet, emission
}
