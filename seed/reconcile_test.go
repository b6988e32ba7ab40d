package seed

import (
	"context"
	"testing"

	"github.com/schemadef/schemadef/catalog"
	"github.com/schemadef/schemadef/schema"
	"github.com/schemadef/schemadef/seedfile"
)

// fakeReflector is an in-memory catalog.Reflector used to test match-column
// discovery without a live database.
type fakeReflector struct {
	pk      []string
	uniques []catalog.UniqueIndexDef
}

func (f *fakeReflector) ListTables(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeReflector) ColumnsOf(ctx context.Context, table string) (map[string]*schema.ColumnShape, error) {
	return nil, nil
}
func (f *fakeReflector) IndexNamesOf(ctx context.Context, table string) (map[string]bool, error) {
	return nil, nil
}
func (f *fakeReflector) UniqueConstraintNamesOf(ctx context.Context, table string) (map[string]bool, error) {
	return nil, nil
}
func (f *fakeReflector) PrimaryKeyColumnsOf(ctx context.Context, table string) ([]string, error) {
	return f.pk, nil
}
func (f *fakeReflector) UniqueIndexDefsOf(ctx context.Context, table string) ([]catalog.UniqueIndexDef, error) {
	return f.uniques, nil
}

var _ catalog.Reflector = (*fakeReflector)(nil)

func TestDiscoverMatchColumnsPrefersPrimaryKey(t *testing.T) {
	r := &fakeReflector{pk: []string{"id"}}
	rows := []seedfile.Row{{"id": 1, "name": "A"}}
	cols, err := discoverMatchColumns(context.Background(), r, "users", rows)
	if err != nil {
		t.Fatalf("discoverMatchColumns: %v", err)
	}
	if len(cols) != 1 || cols[0] != "id" {
		t.Errorf("cols = %v, want [id]", cols)
	}
}

func TestDiscoverMatchColumnsFallsBackToUniqueIndex(t *testing.T) {
	r := &fakeReflector{
		pk: []string{"id"},
		uniques: []catalog.UniqueIndexDef{
			{Name: "users_email_unique", Columns: []string{"email"}},
		},
	}
	rows := []seedfile.Row{{"email": "a@example.com", "name": "A"}}
	cols, err := discoverMatchColumns(context.Background(), r, "users", rows)
	if err != nil {
		t.Fatalf("discoverMatchColumns: %v", err)
	}
	if len(cols) != 1 || cols[0] != "email" {
		t.Errorf("cols = %v, want [email] (pk 'id' absent from row)", cols)
	}
}

func TestDiscoverMatchColumnsInsertOnlyWhenNoMatchFound(t *testing.T) {
	r := &fakeReflector{pk: []string{"id"}}
	rows := []seedfile.Row{{"name": "A"}}
	cols, err := discoverMatchColumns(context.Background(), r, "users", rows)
	if err != nil {
		t.Fatalf("discoverMatchColumns: %v", err)
	}
	if len(cols) != 0 {
		t.Errorf("cols = %v, want empty (insert-only)", cols)
	}
}

func TestSelectByColumnsBuildsQuotedQuery(t *testing.T) {
	row := seedfile.Row{"id": 1, "name": "A"}
	query, args := selectByColumns("users", []string{"id"}, row)
	want := `SELECT * FROM "users" WHERE "id" = $1`
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 1 || args[0] != 1 {
		t.Errorf("args = %v", args)
	}
}

func TestSortedRowColumnsIsDeterministic(t *testing.T) {
	row := seedfile.Row{"c": 1, "a": 2, "b": 3}
	cols := sortedRowColumns(row)
	if len(cols) != 3 || cols[0] != "a" || cols[1] != "b" || cols[2] != "c" {
		t.Errorf("cols = %v", cols)
	}
}
