package main

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/schemadef/schemadef/catalog"
	"github.com/schemadef/schemadef/config"
	"github.com/schemadef/schemadef/seed"
	"github.com/schemadef/schemadef/seedfile"
)

// runSeed reconciles every declared seed table against every configured
// target, per spec.md §4.H.
func runSeed(cfg *config.Config, tables []seedfile.Table) error {
	targets, closers, err := buildTargets(cfg, "", "", false)
	if err != nil {
		return err
	}
	defer closeAll(closers)

	ctx, cancel := rootContext()
	defer cancel()

	for _, tgt := range targets {
		namedExec := catalog.NamedExecutor{Executor: tgt.Exec}
		for _, table := range tables {
			result, err := seed.Reconcile(ctx, namedExec, tgt.Reflector, table, tgt.Pref)
			if err != nil {
				fmt.Println(tgt.Name, table.Name, ":", err)
				continue
			}
			fmt.Printf("%s.%s: inserted=%d updated=%d unchanged=%d skipped=%d failed=%d\n",
				tgt.Name, result.Table, result.Inserted, result.Updated, result.Unchanged, result.Skipped, result.Failed)
		}
	}
	return nil
}

// runSeedDump implements the supplemented `seed:dump` command (SPEC_FULL.md
// §4.H): the reconciler's inverse read path, rendered as a declaration-shaped
// YAML seed document using the same value canonicalization the reconciler
// uses for comparison, so a dumped file round-trips as "unchanged".
func runSeedDump(cfg *config.Config, table string, exclude map[string]bool, limit int, skipAuto bool) error {
	targets, closers, err := buildTargets(cfg, "", "", false)
	if err != nil {
		return err
	}
	defer closeAll(closers)
	if len(targets) == 0 {
		return fmt.Errorf("no target configured")
	}
	tgt := targets[0]

	ctx, cancel := rootContext()
	defer cancel()

	cols, err := tgt.Reflector.ColumnsOf(ctx, table)
	if err != nil {
		return fmt.Errorf("reflecting %s: %w", table, err)
	}

	var selected []string
	for name, col := range cols {
		if exclude[name] {
			continue
		}
		if skipAuto && col.DefaultExpr != nil && strings.HasPrefix(*col.DefaultExpr, "nextval(") {
			continue
		}
		selected = append(selected, name)
	}

	query := fmt.Sprintf("SELECT %s FROM %q", strings.Join(quoteAll(selected), ", "), table)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := tgt.Exec.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("dumping %s: %w", table, err)
	}
	defer rows.Close()

	resultCols, err := rows.Columns()
	if err != nil {
		return err
	}

	var doc []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(resultCols))
		ptrs := make([]interface{}, len(resultCols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		row := make(map[string]interface{}, len(resultCols))
		for i, c := range resultCols {
			row[c] = seed.Canonicalize(values[i])
		}
		doc = append(doc, row)
	}

	out := map[string]interface{}{table: doc}
	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func quoteAll(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = fmt.Sprintf("%q", c)
	}
	return out
}
