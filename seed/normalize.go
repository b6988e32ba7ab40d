// Package seed implements the seed reconciler, spec.md §4.H: match-column
// discovery, the analyze/apply passes, and the value normalizer that lets a
// declared row and a catalog-returned row be compared despite disagreeing on
// wire form.
package seed

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// wallClockLayout is spec.md §4.H's driver-value date format: a local
// wall-clock string with millisecond precision.
const wallClockLayout = "2006-01-02 15:04:05.000"

// Canonicalize reduces v to the comparable string form described by spec.md
// §4.H's value normalizer. Two values are equal iff Canonicalize(a) ==
// Canonicalize(b).
func Canonicalize(v interface{}) string {
	if v == nil {
		return "null"
	}

	switch t := v.(type) {
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return canonicalizeNumber(t)
	case float32:
		return canonicalizeNumber(float64(t))
	case time.Time:
		return t.Local().Format(wallClockLayout)
	case map[string]interface{}:
		return canonicalizeObject(t)
	case []interface{}:
		return canonicalizeArray(t)
	case string:
		return canonicalizeString(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func canonicalizeNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func canonicalizeObject(m map[string]interface{}) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(k))
		b.WriteByte(':')
		b.WriteString(Canonicalize(m[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func canonicalizeArray(a []interface{}) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Canonicalize(v))
	}
	b.WriteByte(']')
	return b.String()
}

var (
	isoDateTimePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}`)
	numericStringPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	tzSuffixPattern      = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)
	uuidLiteralPattern   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// canonicalizeString applies spec.md §4.H's string-specific rules in order: a
// JSON object/array literal is parsed and canonicalized structurally; a UUID
// literal is lower-cased (matching schema's default-expression normalizer, so
// a declared default and a seeded literal compare equal regardless of case);
// an ISO date-time-shaped string has its timezone suffix stripped and its
// separator normalized to a space (deliberately not shifted — spec.md §9 Open
// Question); a bare numeric string is coerced to a number; everything else is
// compared as a literal string.
func canonicalizeString(s string) string {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var parsed interface{}
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return Canonicalize(parsed)
		}
	}

	if uuidLiteralPattern.MatchString(s) {
		if parsed, err := uuid.Parse(s); err == nil {
			return parsed.String()
		}
	}

	if isoDateTimePattern.MatchString(s) {
		reduced := tzSuffixPattern.ReplaceAllString(s, "")
		reduced = strings.Replace(reduced, "T", " ", 1)
		return reduced
	}

	if numericStringPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return canonicalizeNumber(f)
		}
	}

	return s
}

// Equal reports whether a and b are equal under Canonicalize.
func Equal(a, b interface{}) bool {
	return Canonicalize(a) == Canonicalize(b)
}
