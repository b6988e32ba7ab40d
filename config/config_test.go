package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "schemadef.yml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadSingleNodeCluster(t *testing.T) {
	path := writeTempConfig(t, `
clusters:
  main:
    name: app_db
    host: localhost
    port: 5432
    user: app
    pass: secret
    path: ./declarations
customFields:
  id:
    type: SERIAL
    key: PRIMARY
seedPath: ./seeds
displayMode: pretty
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cluster, ok := cfg.Clusters["main"]
	if !ok || len(cluster) != 1 {
		t.Fatalf("expected single-node cluster 'main', got %+v", cfg.Clusters)
	}
	if cluster[0].Name != "app_db" || cluster[0].Port != 5432 {
		t.Errorf("node = %+v", cluster[0])
	}
	if len(cluster[0].Host) != 1 || cluster[0].Host[0] != "localhost" {
		t.Errorf("Host = %v", cluster[0].Host)
	}
	if alias, ok := cfg.CustomFields["id"]; !ok || alias.Key != "PRIMARY" {
		t.Errorf("CustomFields[id] = %+v", alias)
	}
}

func TestLoadMultiNodeCluster(t *testing.T) {
	path := writeTempConfig(t, `
clusters:
  main:
    - name: app_db
      host: [host1, host2]
      port: 5432
      user: app
      type: write
    - name: app_db
      host: replica
      port: 5432
      user: app
      type: read
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cluster := cfg.Clusters["main"]
	if len(cluster) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(cluster))
	}
	if cluster[0].Type != NodeWrite || cluster[1].Type != NodeRead {
		t.Errorf("types = %v, %v", cluster[0].Type, cluster[1].Type)
	}
	if len(cluster[0].Host) != 2 {
		t.Errorf("Host = %v", cluster[0].Host)
	}
}

func TestLoadSubstitutesPlaceholders(t *testing.T) {
	t.Setenv("SCHEMADEF_TEST_PASS", "swordfish")
	path := writeTempConfig(t, `
clusters:
  main:
    name: app_db
    host: localhost
    port: 5432
    user: app
    pass: "<ENV.SCHEMADEF_TEST_PASS>"
`)
	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Clusters["main"][0].Pass; got != "swordfish" {
		t.Errorf("Pass = %q, want swordfish", got)
	}
}

func TestLoadMissingPlaceholderWarns(t *testing.T) {
	path := writeTempConfig(t, `
clusters:
  main:
    name: app_db
    host: localhost
    port: 5432
    user: app
    pass: "<ENV.SCHEMADEF_DEFINITELY_UNSET>"
`)
	var warned string
	cfg, err := Load(path, func(name string) { warned = name })
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if warned != "SCHEMADEF_DEFINITELY_UNSET" {
		t.Errorf("warn callback got %q", warned)
	}
	if cfg.Clusters["main"][0].Pass != "" {
		t.Errorf("Pass = %q, want empty", cfg.Clusters["main"][0].Pass)
	}
}
