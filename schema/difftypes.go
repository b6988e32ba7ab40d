package schema

import (
	"regexp"
	"strconv"
)

var typeSpecRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_ ]*)\(([0-9]+)(?:,\s*([0-9]+))?\)$`)

// parsedTypeSpec is a FieldDefinition.Type broken into its head and optional
// length/precision/scale, used by the diff engine to compare against a reflected
// ColumnShape.
type parsedTypeSpec struct {
	Head      string
	Length    *int
	Precision *int
	Scale     *int
}

func parseTypeSpec(t string) parsedTypeSpec {
	m := typeSpecRe.FindStringSubmatch(t)
	if m == nil {
		return parsedTypeSpec{Head: t}
	}
	spec := parsedTypeSpec{Head: m[1]}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return parsedTypeSpec{Head: t}
	}
	if m[3] == "" {
		spec.Length = &n
	} else {
		s, err2 := strconv.Atoi(m[3])
		if err2 != nil {
			return parsedTypeSpec{Head: t}
		}
		spec.Precision = &n
		spec.Scale = &s
	}
	return spec
}

// typeDiffers reports whether a declared field's resolved type disagrees with a
// reflected column's catalog type, per spec §4.F step 5.
func typeDiffers(f *FieldDefinition, col *ColumnShape) bool {
	spec := parseTypeSpec(f.Type)
	wireHead := ResolveTypeHead(spec.Head)
	if wireHead != col.DataType {
		return true
	}
	if spec.Precision != nil {
		if col.NumericPrecision == nil || col.NumericScale == nil {
			return true
		}
		if *spec.Precision != *col.NumericPrecision {
			return true
		}
		if spec.Scale != nil && *spec.Scale != *col.NumericScale {
			return true
		}
		return false
	}
	if spec.Length != nil {
		if col.CharMaxLength == nil {
			return true
		}
		return *spec.Length != *col.CharMaxLength
	}
	return false
}
