package seedfile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSeedFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadDirsParsesRows(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "users.yml", `
users:
  - { id: 1, name: "Alice" }
  - { id: 2, name: "Bob" }
`)

	tables, errs := LoadDirs([]string{dir})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(tables) != 1 || tables[0].Name != "users" {
		t.Fatalf("tables = %+v", tables)
	}
	if len(tables[0].Rows) != 2 {
		t.Fatalf("rows = %+v", tables[0].Rows)
	}
	if tables[0].Rows[0]["name"] != "Alice" {
		t.Errorf("row[0][name] = %v", tables[0].Rows[0]["name"])
	}
}

func TestLoadDirsNormalizesNestedMaps(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "users.yml", `
users:
  - { id: 1, meta: { role: admin, tags: [a, b] } }
`)
	tables, errs := LoadDirs([]string{dir})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	meta, ok := tables[0].Rows[0]["meta"].(map[string]interface{})
	if !ok {
		t.Fatalf("meta = %T %v, want map[string]interface{}", tables[0].Rows[0]["meta"], tables[0].Rows[0]["meta"])
	}
	if meta["role"] != "admin" {
		t.Errorf("meta[role] = %v", meta["role"])
	}
	tags, ok := meta["tags"].([]interface{})
	if !ok || len(tags) != 2 {
		t.Errorf("meta[tags] = %v", meta["tags"])
	}
}

func TestLoadDirsRecordsFileErrorAndContinues(t *testing.T) {
	dir := t.TempDir()
	writeSeedFile(t, dir, "bad.yml", "not: [valid: yaml: at: all")
	writeSeedFile(t, dir, "good.yml", "good:\n  - { id: 1 }\n")

	tables, errs := LoadDirs([]string{dir})
	if len(errs) != 1 {
		t.Fatalf("expected 1 file error, got %v", errs)
	}
	if len(tables) != 1 || tables[0].Name != "good" {
		t.Fatalf("expected good table to load, got %+v", tables)
	}
}
