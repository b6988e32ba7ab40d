package catalog

import (
	"context"

	"github.com/schemadef/schemadef/schema"
)

// UniqueIndexDef is one unique index's name and participating columns, used by
// the seed reconciler's match-column discovery (spec §4.H step 2).
type UniqueIndexDef struct {
	Name    string
	Columns []string
}

// Reflector exposes the typed, per-target catalog reads the diff engine and seed
// reconciler need, per spec §4.E. Every method may suspend arbitrarily (spec §5).
type Reflector interface {
	ListTables(ctx context.Context) ([]string, error)
	ColumnsOf(ctx context.Context, table string) (map[string]*schema.ColumnShape, error)
	IndexNamesOf(ctx context.Context, table string) (map[string]bool, error)
	UniqueConstraintNamesOf(ctx context.Context, table string) (map[string]bool, error)
	PrimaryKeyColumnsOf(ctx context.Context, table string) ([]string, error)
	UniqueIndexDefsOf(ctx context.Context, table string) ([]UniqueIndexDef, error)
}

// Admin exposes the meta-database operations used for database creation and
// existence probing, per spec §4.E / §5 ("Admin handle").
type Admin interface {
	DatabaseExists(ctx context.Context, name string) (bool, error)
	CreateDatabase(ctx context.Context, name string) error
}

// TableShapeOf composes the three per-table Reflector reads into one
// schema.TableShape, discarding intermediate results once assembled (spec §3
// "Lifecycle": TableShape is produced on demand per table per target and
// discarded immediately after diffing).
func TableShapeOf(ctx context.Context, r Reflector, table string) (*schema.TableShape, error) {
	cols, err := r.ColumnsOf(ctx, table)
	if err != nil {
		return nil, err
	}
	indexNames, err := r.IndexNamesOf(ctx, table)
	if err != nil {
		return nil, err
	}
	uniqueNames, err := r.UniqueConstraintNamesOf(ctx, table)
	if err != nil {
		return nil, err
	}

	shape := schema.NewTableShape()
	shape.Columns = cols
	shape.IndexNames = indexNames
	shape.UniqueConstraintNames = uniqueNames
	return shape, nil
}
