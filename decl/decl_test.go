package decl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/schemadef/schemadef/dslparser"
)

func writeDeclFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func standardAliases() map[string]dslparser.Alias {
	return map[string]dslparser.Alias{
		"id":  {Type: "SERIAL", Key: "PRIMARY"},
		"str": {Type: "VARCHAR(64)"},
	}
}

func TestLoadDirsParsesTableAndPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	writeDeclFile(t, dir, "users.yml", `
users:
  user_id: id
  user_name: "str required"
`)

	tables, errs := LoadDirs([]string{dir}, standardAliases(), "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tables) != 1 || tables[0].Name != "users" {
		t.Fatalf("tables = %+v", tables)
	}
	if got := tables[0].Schema.ColumnOrder; len(got) != 2 || got[0] != "user_id" || got[1] != "user_name" {
		t.Errorf("column order = %v", got)
	}
}

func TestLoadDirsSkipsIgnoredTable(t *testing.T) {
	dir := t.TempDir()
	writeDeclFile(t, dir, "a.yml", `
archived:
  ~ignore: true
  col: "str"
`)
	tables, errs := LoadDirs([]string{dir}, standardAliases(), "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tables) != 0 {
		t.Fatalf("expected archived table to be skipped, got %+v", tables)
	}
}

func TestLoadDirsRenamesTildePrefixedTable(t *testing.T) {
	dir := t.TempDir()
	writeDeclFile(t, dir, "a.yml", `
~accounts:
  id: id
`)
	tables, errs := LoadDirs([]string{dir}, standardAliases(), "tenant1_")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tables) != 1 || tables[0].Name != "tenant1_accounts" {
		t.Fatalf("tables = %+v", tables)
	}
}

func TestLoadDirsEnumeratesLexicographically(t *testing.T) {
	dir := t.TempDir()
	writeDeclFile(t, dir, "b.yml", "b_table:\n  id: id\n")
	writeDeclFile(t, dir, "a.yml", "a_table:\n  id: id\n")

	tables, errs := LoadDirs([]string{dir}, standardAliases(), "")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tables) != 2 || tables[0].Name != "a_table" || tables[1].Name != "b_table" {
		t.Fatalf("expected a_table before b_table, got %+v", tables)
	}
}

func TestLoadDirsRecordsFileErrorAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeDeclFile(t, dir, "bad.yml", "not: [valid: yaml: at: all")
	writeDeclFile(t, dir, "good.yml", "good_table:\n  id: id\n")

	tables, errs := LoadDirs([]string{dir}, standardAliases(), "")
	if len(errs) != 1 {
		t.Fatalf("expected 1 file error, got %v", errs)
	}
	if len(tables) != 1 || tables[0].Name != "good_table" {
		t.Fatalf("expected good_table to still load, got %+v", tables)
	}
}
