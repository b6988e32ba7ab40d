package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	schemadef "github.com/schemadef/schemadef"
	"github.com/schemadef/schemadef/catalog"
	"github.com/schemadef/schemadef/schema"
	"github.com/schemadef/schemadef/seedfile"
)

// rowPlan is the analyzed disposition of one declared row, computed in the
// analyze pass and consumed by the apply pass (spec.md §4.H steps 3-4).
type rowPlan int

const (
	planInsert rowPlan = iota
	planUpdate
	planUnchanged
	planSkip
)

// Reconcile runs the full five-step reconciliation described in spec.md §4.H
// for one declared table against the target reachable through exec/reflector.
func Reconcile(ctx context.Context, exec catalog.NamedExecutor, reflector catalog.Reflector, table seedfile.Table, pref string) (schemadef.SeedTableResult, error) {
	result := schemadef.SeedTableResult{Table: table.Name}

	// Step 1: prefix rewrite.
	tableName := table.Name
	if pref != "" && !strings.HasPrefix(tableName, pref) {
		tableName = pref + tableName
	}

	matchColumns, err := discoverMatchColumns(ctx, reflector, tableName, table.Rows)
	if err != nil {
		return result, fmt.Errorf("discovering match columns for %q: %w", tableName, err)
	}

	for _, row := range table.Rows {
		plan, existing, err := analyzeRow(ctx, exec, tableName, matchColumns, row)
		if err != nil {
			slog.Warn("seed analyze failed", "table", tableName, "error", err)
			result.Skipped++
			continue
		}
		if plan == planUnchanged {
			result.Unchanged++
			continue
		}

		if err := applyRow(ctx, exec, tableName, matchColumns, row, existing, plan); err != nil {
			slog.Warn("seed apply failed", "table", tableName, "error", err)
			result.Failed++
			continue
		}
		switch plan {
		case planInsert:
			result.Inserted++
		case planUpdate:
			result.Updated++
		}
	}

	return result, nil
}

// discoverMatchColumns implements spec.md §4.H step 2: prefer the primary key
// if every PK column is present in the row; otherwise the first unique index
// (in catalog order) whose columns are all present in a sample row; otherwise
// no match columns (insert-only).
func discoverMatchColumns(ctx context.Context, reflector catalog.Reflector, table string, rows []seedfile.Row) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	sample := rows[0]

	pk, err := reflector.PrimaryKeyColumnsOf(ctx, table)
	if err != nil {
		return nil, err
	}
	if len(pk) > 0 && allPresent(pk, sample) {
		return pk, nil
	}

	uniques, err := reflector.UniqueIndexDefsOf(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, u := range uniques {
		if allPresent(u.Columns, sample) {
			return u.Columns, nil
		}
	}

	return nil, nil
}

func allPresent(columns []string, row seedfile.Row) bool {
	for _, c := range columns {
		if _, ok := row[c]; !ok {
			return false
		}
	}
	return true
}

// analyzeRow implements spec.md §4.H step 3.
func analyzeRow(ctx context.Context, exec catalog.NamedExecutor, table string, matchColumns []string, row seedfile.Row) (rowPlan, map[string]interface{}, error) {
	if len(matchColumns) == 0 {
		// No match columns: the row is present only if a row equal in every
		// declared column already exists.
		query, args := selectByColumns(table, sortedRowColumns(row), row)
		rows, err := exec.QueryContext(ctx, query, args...)
		if err != nil {
			return planSkip, nil, err
		}
		defer rows.Close()
		if rows.Next() {
			return planUnchanged, nil, nil
		}
		return planInsert, nil, rows.Err()
	}

	query, args := selectByColumns(table, matchColumns, row)
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return planSkip, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return planSkip, nil, err
	}

	if !rows.Next() {
		return planInsert, nil, rows.Err()
	}

	existing, err := scanRow(rows, cols)
	if err != nil {
		return planSkip, nil, err
	}

	for col, declared := range row {
		if containsString(matchColumns, col) {
			continue
		}
		if reflected, ok := existing[col]; ok && !Equal(declared, reflected) {
			return planUpdate, existing, nil
		}
	}
	return planUnchanged, existing, nil
}

func scanRow(rows *sql.Rows, cols []string) (map[string]interface{}, error) {
	values := make([]interface{}, len(cols))
	ptrs := make([]interface{}, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	out := make(map[string]interface{}, len(cols))
	for i, c := range cols {
		out[c] = values[i]
	}
	return out, nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func selectByColumns(table string, matchColumns []string, row seedfile.Row) (string, []interface{}) {
	var where []string
	var args []interface{}
	for i, c := range matchColumns {
		where = append(where, fmt.Sprintf("%s = $%d", schema.QuoteIdent(c), i+1))
		args = append(args, row[c])
	}
	query := fmt.Sprintf("SELECT * FROM %s WHERE %s", schema.QuoteIdent(table), strings.Join(where, " AND "))
	return query, args
}

// applyRow implements spec.md §4.H step 4: an upsert when match columns are
// present, or a plain insert otherwise (the existence check by every declared
// column is done in analyzeRow).
func applyRow(ctx context.Context, exec catalog.NamedExecutor, table string, matchColumns []string, row seedfile.Row, existing map[string]interface{}, plan rowPlan) error {
	cols := sortedRowColumns(row)

	if len(matchColumns) == 0 {
		if plan != planInsert {
			return nil
		}
		return insertOnly(ctx, exec, table, cols, row)
	}

	var nonMatch []string
	for _, c := range cols {
		if !containsString(matchColumns, c) {
			nonMatch = append(nonMatch, c)
		}
	}

	var b strings.Builder
	var args []interface{}
	fmt.Fprintf(&b, "INSERT INTO %s (", schema.QuoteIdent(table))
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(schema.QuoteIdent(c))
	}
	b.WriteString(") VALUES (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		args = append(args, row[c])
		fmt.Fprintf(&b, "$%d", i+1)
	}
	b.WriteString(")")

	var matchQuoted []string
	for _, c := range matchColumns {
		matchQuoted = append(matchQuoted, schema.QuoteIdent(c))
	}
	fmt.Fprintf(&b, " ON CONFLICT (%s) ", strings.Join(matchQuoted, ", "))
	if len(nonMatch) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		b.WriteString("DO UPDATE SET ")
		for i, c := range nonMatch {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s = EXCLUDED.%s", schema.QuoteIdent(c), schema.QuoteIdent(c))
		}
	}

	_, err := exec.ExecContext(ctx, b.String(), args...)
	return err
}

func insertOnly(ctx context.Context, exec catalog.NamedExecutor, table string, cols []string, row seedfile.Row) error {
	var b strings.Builder
	var args []interface{}
	fmt.Fprintf(&b, "INSERT INTO %s (", schema.QuoteIdent(table))
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(schema.QuoteIdent(c))
	}
	b.WriteString(") VALUES (")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		args = append(args, row[c])
		fmt.Fprintf(&b, "$%d", i+1)
	}
	b.WriteString(")")
	_, err := exec.ExecContext(ctx, b.String(), args...)
	return err
}

func sortedRowColumns(row seedfile.Row) []string {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
