package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schemadef/schemadef/catalog"
	pgcatalog "github.com/schemadef/schemadef/catalog/postgres"
	"github.com/schemadef/schemadef/config"
	"github.com/schemadef/schemadef/orchestrator"
)

// buildTargets resolves a loaded config into the live orchestrator.Target set,
// filtered by cluster name and tenant key, per spec.md §6's `--name`/`--tenant`
// flags. create controls whether each target gets an admin handle capable of
// CREATE DATABASE.
func buildTargets(cfg *config.Config, name, tenant string, create bool) ([]orchestrator.Target, []func() error, error) {
	var targets []orchestrator.Target
	var closers []func() error

	for clusterID, nodes := range cfg.Clusters {
		if name != "" && name != clusterID {
			continue
		}
		for _, node := range nodes {
			if tenant != "" && len(node.TenantKeys) > 0 && !containsString(node.TenantKeys, tenant) {
				continue
			}
			host := "127.0.0.1"
			if len(node.Host) > 0 {
				host = node.Host[0]
			}
			dsn := pgcatalog.DSN{Host: host, Port: node.Port, User: node.User, Password: node.Pass, DBName: node.Name}

			db, err := pgcatalog.Open(dsn)
			if err != nil {
				return nil, nil, fmt.Errorf("cluster %s: opening %s: %w", clusterID, node.Name, err)
			}
			closers = append(closers, db.Close)

			var admin catalog.Admin
			if create {
				adminDB, err := pgcatalog.OpenAdmin(dsn, "postgres")
				if err != nil {
					return nil, nil, fmt.Errorf("cluster %s: opening admin handle: %w", clusterID, err)
				}
				closers = append(closers, adminDB.Close)
				admin = adminDB
			}

			targets = append(targets, orchestrator.Target{
				Name:      clusterID,
				Exec:      db,
				Reflector: db,
				Admin:     admin,
				DBName:    node.Name,
				Dirs:      node.Path,
				Pref:      node.Pref,
			})
		}
	}

	if len(targets) == 0 {
		slog.Warn("no targets matched", "name", name, "tenant", tenant)
	}

	return targets, closers, nil
}

func closeAll(closers []func() error) {
	for _, c := range closers {
		if err := c(); err != nil {
			fmt.Fprintln(os.Stderr, "close:", err)
		}
	}
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
