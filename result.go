package schemadef

import "github.com/schemadef/schemadef/schema"

// StatementFailure pairs a failed statement with the error it produced, per
// spec.md §4.G "Failure semantics".
type StatementFailure struct {
	Statement schema.Statement
	Err       error
}

// TargetResult is the per-target outcome of an orchestrator run, per spec.md
// §4.G and §6's exit-code rule ("non-zero iff any statement failed or a fatal
// configuration error occurred").
type TargetResult struct {
	Target           string
	ExecutedCount    int
	TotalCount       int
	Failures         []StatementFailure
	OrphanTables     []string
	DroppedOrphans   []string
}

// Failed reports whether this target result should make the process exit
// non-zero.
func (r TargetResult) Failed() bool {
	return len(r.Failures) > 0
}

// SeedTableResult is the per-table reconciliation counters, per spec.md §4.H
// step 5.
type SeedTableResult struct {
	Table     string
	Inserted  int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
}
