package schema

import (
	"strings"

	"github.com/schemadef/schemadef/util"
)

// Diff compares a declared schema to a reflected table shape and returns a
// minimal, ordered statement list, per spec §4.F. Diff is pure: it never touches
// the network, and Diff(s, t) called twice with equal inputs returns byte-for-byte
// identical statements (spec §8, "The diff engine is pure").
func Diff(table string, s *ParsedSchema, t *TableShape) []Statement {
	var stmts []Statement

	expected := expectedNames(table, s)

	// 1. DROP_COLUMN for every reflected column absent from the declaration.
	for _, name := range sortedColumnNames(t) {
		if _, ok := s.Columns[name]; !ok {
			stmts = append(stmts, EmitDropColumn(table, name))
		}
	}

	// 2. DROP_UNIQUE for every existing unique constraint not expected.
	for _, name := range sortedSet(t.UniqueConstraintNames) {
		if !expected.uniqueConstraints[name] {
			stmts = append(stmts, EmitDropConstraint(table, name))
		}
	}

	// 3. DROP_INDEX for every existing index not expected and not the PK index.
	pkIndex := ExpectedPrimaryKeyIndexName(table)
	for _, name := range sortedSet(t.IndexNames) {
		if name == pkIndex {
			continue
		}
		if !expected.indexes[name] {
			stmts = append(stmts, EmitDropIndex(table, name))
		}
	}

	// 4. ADD_COLUMN for every declared column missing from the reflection.
	for _, name := range s.ColumnOrder {
		if _, ok := t.Columns[name]; !ok {
			stmts = append(stmts, EmitAddColumn(table, s.Columns[name]))
		}
	}

	// 5. ALTER_COLUMN (TYPE) for retained columns whose resolved type differs.
	for _, name := range s.ColumnOrder {
		col, ok := t.Columns[name]
		if !ok {
			continue
		}
		f := s.Columns[name]
		if typeDiffers(f, col) {
			stmts = append(stmts, EmitAlterColumnType(table, name, f.Type))
		}
	}

	// 6. ALTER_COLUMN (SET/DROP DEFAULT).
	for _, name := range s.ColumnOrder {
		col, ok := t.Columns[name]
		if !ok {
			continue
		}
		f := s.Columns[name]
		if f.IsSerial() {
			continue
		}
		if f.Key == KeyPrimary && col.DefaultExpr != nil && strings.Contains(strings.ToLower(*col.DefaultExpr), "nextval(") {
			continue
		}
		action, expr := CompareDefault(f.HasDefault, f.DefaultRaw, f.Type, col.DefaultExpr)
		switch action {
		case DefaultShouldSet:
			stmts = append(stmts, EmitSetDefault(table, name, expr))
		case DefaultShouldDrop:
			stmts = append(stmts, EmitDropDefault(table, name))
		}
	}

	// 7. ALTER_COLUMN (SET/DROP NOT NULL).
	for _, name := range s.ColumnOrder {
		col, ok := t.Columns[name]
		if !ok {
			continue
		}
		f := s.Columns[name]
		if f.IsSerial() || f.Nullable == NullabilityUnspecified {
			continue
		}
		wantNotNull := f.Nullable == NullabilityNotNull
		isNotNull := !col.IsNullable
		if wantNotNull && !isNotNull {
			stmts = append(stmts, EmitSetNotNull(table, name))
		} else if !wantNotNull && isNotNull {
			stmts = append(stmts, EmitDropNotNull(table, name))
		}
	}

	// 8. ADD_INDEX for each missing individual, composite, or composite-unique index.
	for _, col := range s.IndividualIndexes {
		name := ExpectedIndexName(table, col)
		if !t.IndexNames[name] {
			stmts = append(stmts, EmitAddIndexSingle(table, col))
		}
	}
	for _, group := range s.CompositeIndexGroups {
		name := ExpectedCompositeIndexName(table, group)
		if !t.IndexNames[name] {
			stmts = append(stmts, EmitAddIndexComposite(table, group, s.CompositeIndexes[group]))
		}
	}
	for _, group := range s.CompositeUniqueGroups {
		name := ExpectedCompositeUniqueIndexName(table, group)
		if !t.IndexNames[name] {
			stmts = append(stmts, EmitAddUniqueIndexComposite(table, group, s.CompositeUniqueIndexes[group]))
		}
	}

	// 9. ADD_UNIQUE for each missing single-column unique constraint.
	for _, col := range s.UniqueSingleColumns() {
		name := ExpectedUniqueConstraintName(table, col)
		if !t.UniqueConstraintNames[name] {
			stmts = append(stmts, EmitAddUniqueConstraint(table, col))
		}
	}

	return stmts
}

type expectedNameSet struct {
	indexes           map[string]bool
	uniqueConstraints map[string]bool
}

// expectedNames computes the full set of index/constraint names the diff engine
// considers "ours" for a table, per spec §4.F "Expected-name computation".
func expectedNames(table string, s *ParsedSchema) expectedNameSet {
	out := expectedNameSet{
		indexes:           make(map[string]bool),
		uniqueConstraints: make(map[string]bool),
	}

	for _, col := range s.IndividualIndexes {
		out.indexes[ExpectedIndexName(table, col)] = true
	}
	for _, group := range s.CompositeIndexGroups {
		out.indexes[ExpectedCompositeIndexName(table, group)] = true
	}
	for _, group := range s.CompositeUniqueGroups {
		out.indexes[ExpectedCompositeUniqueIndexName(table, group)] = true
	}
	for _, col := range s.UniqueSingleColumns() {
		name := ExpectedUniqueConstraintName(table, col)
		out.indexes[name] = true
		out.uniqueConstraints[name] = true
	}
	if _, ok := s.PrimaryKeyColumn(); ok {
		out.indexes[ExpectedPrimaryKeyIndexName(table)] = true
	}

	return out
}

func sortedColumnNames(t *TableShape) []string {
	return util.SortedKeys(t.Columns)
}

func sortedSet(m map[string]bool) []string {
	return util.SortedKeys(m)
}
