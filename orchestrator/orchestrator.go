// Package orchestrator drives the migration pipeline described in spec.md
// §4.G: per target, enumerate declarations, diff or create each table,
// compute orphans, and apply (or render) the resulting statement list.
// Grounded on the teacher's database.RunDDLs apply loop and its
// TransactionSupported predicate (database/database.go), generalized from
// "one combined DDL list" to "one Statement list per target, built from the
// pure schema/dslparser/decl layers instead of a raw-SQL text diff".
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	schemadef "github.com/schemadef/schemadef"
	"github.com/schemadef/schemadef/catalog"
	"github.com/schemadef/schemadef/decl"
	"github.com/schemadef/schemadef/dslparser"
	"github.com/schemadef/schemadef/schema"
)

// Target is one cluster-node's full pipeline context, per spec.md §4.E/§5
// ("Target").
type Target struct {
	Name      string
	Exec      catalog.Executor
	Reflector catalog.Reflector
	Admin     catalog.Admin // nil when database creation was not requested
	DBName    string
	Dirs      []string
	Pref      string
}

// Options controls one orchestrator run, per spec.md §4.G and §6's `up`/`diff`
// CLI flags.
type Options struct {
	Create      bool
	DropOrphans bool
	Dry         bool
}

// analysis is the per-target result of the analyze phase: the statement list
// to apply plus the orphan tables discovered, independent of whether it is
// ultimately applied (spec.md §9 "Suspension of interactive prompts" — analyze
// and apply are distinct phases).
type analysis struct {
	target     string
	statements []schema.Statement
	orphans    []string
	err        error
}

// Diff runs the analyze phase only for every target, in parallel across
// targets with in-order-per-target semantics (spec.md §5). It never applies
// anything; callers that want to apply use Up. When dropOrphans is set, the
// rendered statement list for each target also includes a DROP TABLE for
// every orphan table found, mirroring Up's opts.DropOrphans handling.
func Diff(ctx context.Context, targets []Target, aliases map[string]dslparser.Alias, dropOrphans bool) (map[string][]schema.Statement, error) {
	results := analyzeAll(ctx, targets, aliases)

	out := make(map[string][]schema.Statement, len(results))
	var firstErr error
	for _, r := range results {
		if r.err != nil {
			slog.Error("analyze failed", "target", r.target, "error", r.err)
			if firstErr == nil {
				firstErr = r.err
			}
			continue
		}
		stmts := r.statements
		if dropOrphans {
			for _, orphan := range r.orphans {
				stmts = append(stmts, schema.EmitDropTable(orphan))
			}
		}
		out[r.target] = stmts
	}
	return out, firstErr
}

// TableStatus is one declared table's up-to-date/pending disposition, per the
// supplemented Status command (SPEC_FULL.md §4.G).
type TableStatus struct {
	Table     string
	UpToDate  bool
	Statement int // pending statement count
}

// Status reports, for every target, each declared table's up-to-date/pending
// disposition without applying anything. Pure composition of parse + reflect
// + diff (SPEC_FULL.md §4.G "Supplemented command").
func Status(ctx context.Context, targets []Target, aliases map[string]dslparser.Alias) (map[string][]TableStatus, error) {
	out := make(map[string][]TableStatus, len(targets))
	for _, tgt := range targets {
		tables, fileErrs := decl.LoadDirs(tgt.Dirs, aliases, tgt.Pref)
		for _, fe := range fileErrs {
			slog.Warn("declaration parse failed", "target", tgt.Name, "file", fe.File, "error", fe.Err)
		}

		liveTables, err := tgt.Reflector.ListTables(ctx)
		if err != nil {
			return nil, fmt.Errorf("target %s: listing tables: %w", tgt.Name, err)
		}
		live := toSet(liveTables)

		var statuses []TableStatus
		for _, t := range tables {
			if !live[t.Name] {
				statuses = append(statuses, TableStatus{Table: t.Name, UpToDate: false, Statement: len(fullTableStatements(t.Schema))})
				continue
			}
			shape, err := catalog.TableShapeOf(ctx, tgt.Reflector, t.Name)
			if err != nil {
				slog.Warn("reflection failed", "target", tgt.Name, "table", t.Name, "error", err)
				continue
			}
			stmts := schema.Diff(t.Name, t.Schema, shape)
			statuses = append(statuses, TableStatus{Table: t.Name, UpToDate: len(stmts) == 0, Statement: len(stmts)})
		}
		out[tgt.Name] = statuses
	}
	return out, nil
}

// Up runs the analyze phase then, unless Dry is set, applies each target's
// statement list in order, per spec.md §4.G.
func Up(ctx context.Context, targets []Target, aliases map[string]dslparser.Alias, opts Options) ([]schemadef.TargetResult, error) {
	analyses := analyzeAll(ctx, targets, aliases)
	byName := make(map[string]analysis, len(analyses))
	for _, a := range analyses {
		byName[a.target] = a
	}

	results := make([]schemadef.TargetResult, 0, len(targets))
	for _, tgt := range targets {
		a := byName[tgt.Name]
		result := schemadef.TargetResult{Target: tgt.Name, OrphanTables: a.orphans}
		if a.err != nil {
			result.Failures = append(result.Failures, schemadef.StatementFailure{Err: a.err})
			results = append(results, result)
			continue
		}

		stmts := a.statements
		if opts.DropOrphans {
			for _, orphan := range a.orphans {
				stmt := schema.EmitDropTable(orphan)
				stmts = append(stmts, stmt)
				result.DroppedOrphans = append(result.DroppedOrphans, orphan)
			}
		}
		result.TotalCount = len(stmts)

		if opts.Dry {
			results = append(results, result)
			continue
		}

		for _, stmt := range stmts {
			if _, err := tgt.Exec.ExecContext(ctx, stmt.SQL); err != nil {
				slog.Error("statement failed", "target", tgt.Name, "sql", stmt.SQL, "error", err)
				wrapped := &schemadef.Error{Kind: schemadef.ErrKindStatement, Context: tgt.Name, SQL: stmt.SQL, Message: err.Error()}
				result.Failures = append(result.Failures, schemadef.StatementFailure{Statement: stmt, Err: wrapped})
				continue
			}
			result.ExecutedCount++
		}
		results = append(results, result)
	}

	return results, nil
}

// analyzeAll runs the per-target analyze phase concurrently, bounded by
// GOMAXPROCS, honoring spec.md §5's "each target's statement list is applied
// in order" by never splitting one target's work across goroutines. Grounded
// on the teacher's database.ConcurrentMapFuncWithError (database/concurrent.go),
// which bounds fan-out the same way via errgroup.Group.SetLimit; each analyzeTarget
// failure is recorded on its own analysis rather than returned to the errgroup, so
// one target's error never aborts the others' analysis.
func analyzeAll(ctx context.Context, targets []Target, aliases map[string]dslparser.Alias) []analysis {
	results := make([]analysis, len(targets))

	limit := runtime.GOMAXPROCS(0)
	if limit < 1 {
		limit = 1
	}

	eg := errgroup.Group{}
	eg.SetLimit(limit)
	for i, tgt := range targets {
		i, tgt := i, tgt
		eg.Go(func() error {
			results[i] = analyzeTarget(ctx, tgt, aliases)
			return nil
		})
	}
	eg.Wait()

	return results
}

// analyzeTarget implements spec.md §4.G steps 1-4 for one target.
func analyzeTarget(ctx context.Context, tgt Target, aliases map[string]dslparser.Alias) analysis {
	if tgt.Admin != nil {
		exists, err := tgt.Admin.DatabaseExists(ctx, tgt.DBName)
		if err != nil {
			return analysis{target: tgt.Name, err: fmt.Errorf("checking database existence: %w", err)}
		}
		if !exists {
			if err := tgt.Admin.CreateDatabase(ctx, tgt.DBName); err != nil {
				return analysis{target: tgt.Name, err: err}
			}
		}
	}

	liveTables, err := tgt.Reflector.ListTables(ctx)
	if err != nil {
		return analysis{target: tgt.Name, err: fmt.Errorf("listing tables: %w", err)}
	}
	live := toSet(liveTables)

	tables, fileErrs := decl.LoadDirs(tgt.Dirs, aliases, tgt.Pref)
	for _, fe := range fileErrs {
		slog.Warn("declaration parse failed", "target", tgt.Name, "file", fe.File, "error", fe.Err)
	}

	var stmts []schema.Statement
	declared := make(map[string]bool, len(tables))
	for _, t := range tables {
		declared[t.Name] = true
		if !live[t.Name] {
			stmts = append(stmts, fullTableStatements(t.Schema)...)
			continue
		}
		shape, err := catalog.TableShapeOf(ctx, tgt.Reflector, t.Name)
		if err != nil {
			slog.Warn("reflection failed, skipping table", "target", tgt.Name, "table", t.Name, "error", err)
			continue
		}
		stmts = append(stmts, schema.Diff(t.Name, t.Schema, shape)...)
	}

	var orphans []string
	for _, name := range liveTables {
		if !declared[name] {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	if len(orphans) > 0 {
		slog.Warn("orphan tables found", "target", tgt.Name, "tables", orphans)
	}

	return analysis{target: tgt.Name, statements: stmts, orphans: orphans}
}

// fullTableStatements renders the complete statement set for a table that does
// not yet exist: CREATE TABLE, single-column unique constraints (via
// schema.EmitCreateTable), then every individual, composite, and
// composite-unique index, mirroring Diff's step 8 against an empty shape.
func fullTableStatements(s *schema.ParsedSchema) []schema.Statement {
	stmts := schema.EmitCreateTable(s)

	for _, col := range s.IndividualIndexes {
		stmts = append(stmts, schema.EmitAddIndexSingle(s.TableName, col))
	}
	for _, group := range s.CompositeIndexGroups {
		stmts = append(stmts, schema.EmitAddIndexComposite(s.TableName, group, s.CompositeIndexes[group]))
	}
	for _, group := range s.CompositeUniqueGroups {
		stmts = append(stmts, schema.EmitAddUniqueIndexComposite(s.TableName, group, s.CompositeUniqueIndexes[group]))
	}

	return stmts
}

func toSet(names []string) map[string]bool {
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}
