// Package postgres is the lib/pq-backed Reflector/Executor/Admin implementation,
// grounded on the teacher's database/postgres/database.go catalog queries and
// adapter/postgres/postgres.go's DSN-building conventions (spec §4.E, §5).
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	schemadef "github.com/schemadef/schemadef"
	"github.com/schemadef/schemadef/catalog"
	"github.com/schemadef/schemadef/schema"
)

// reflectErr wraps a catalog-query failure as a structured reflection error,
// per spec.md §7's closed ErrorKind taxonomy.
func reflectErr(table string, err error) error {
	return &schemadef.Error{Kind: schemadef.ErrKindReflection, Context: table, Message: err.Error()}
}

// DSN is the set of connection parameters for one target, per spec §4.E ("Target").
type DSN struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func buildDSN(d DSN, dbname string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d user=%s dbname=%s", d.Host, d.Port, d.User, dbname)
	if d.Password != "" {
		fmt.Fprintf(&b, " password=%s", d.Password)
	}
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	fmt.Fprintf(&b, " sslmode=%s", sslmode)
	return b.String()
}

// Database is the per-target catalog handle: it implements catalog.Executor and
// catalog.Reflector over a single lib/pq connection pool.
type Database struct {
	dsn DSN
	db  *sql.DB
}

// Open opens a connection pool against the target database named in dsn.DBName.
func Open(dsn DSN) (*Database, error) {
	db, err := sql.Open("postgres", buildDSN(dsn, dsn.DBName))
	if err != nil {
		return nil, &schemadef.Error{Kind: schemadef.ErrKindConnectivity, Context: dsn.DBName, Message: err.Error()}
	}
	return &Database{dsn: dsn, db: db}, nil
}

func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, query, args...)
}

func (d *Database) Close() error {
	return d.db.Close()
}

// AdminDatabase is a connection to the administrative "postgres" maintenance
// database, used to probe for and create per-target databases (spec §4.E / §5
// "Admin handle"). Grounded on the teacher's adapter/postgres.go DSN pattern,
// since information_schema queries cannot see databases other than the current
// one.
type AdminDatabase struct {
	dsn DSN
	db  *sql.DB
}

// OpenAdmin opens a connection pool against the cluster's maintenance database
// (conventionally "postgres"), independent of any particular target's DBName.
func OpenAdmin(dsn DSN, maintenanceDB string) (*AdminDatabase, error) {
	db, err := sql.Open("postgres", buildDSN(dsn, maintenanceDB))
	if err != nil {
		return nil, &schemadef.Error{Kind: schemadef.ErrKindConnectivity, Context: maintenanceDB, Message: err.Error()}
	}
	return &AdminDatabase{dsn: dsn, db: db}, nil
}

func (a *AdminDatabase) Close() error {
	return a.db.Close()
}

func (a *AdminDatabase) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := a.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`, name,
	).Scan(&exists)
	if err != nil {
		return false, &schemadef.Error{Kind: schemadef.ErrKindConnectivity, Context: name, Message: err.Error()}
	}
	return exists, nil
}

func (a *AdminDatabase) CreateDatabase(ctx context.Context, name string) error {
	stmt := schema.EmitCreateDatabase(name)
	if _, err := a.db.ExecContext(ctx, stmt.SQL); err != nil {
		return &schemadef.Error{Kind: schemadef.ErrKindStatement, Context: name, SQL: stmt.SQL, Message: err.Error()}
	}
	return nil
}

var _ catalog.Executor = (*Database)(nil)
var _ catalog.Admin = (*AdminDatabase)(nil)
var _ catalog.Reflector = (*Database)(nil)

func (d *Database) ListTables(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT c.relname FROM pg_catalog.pg_class c
		 INNER JOIN pg_catalog.pg_namespace n ON c.relnamespace = n.oid
		 WHERE n.nspname = 'public' AND c.relkind IN ('r', 'p')
		 ORDER BY c.relname`,
	)
	if err != nil {
		return nil, reflectErr("public", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, reflectErr("public", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, reflectErr("public", err)
	}
	return tables, nil
}

// ColumnsOf reflects every column of table into schema.ColumnShape, grounded on
// the teacher's getColumns query (database/postgres/database.go): pg_attribute
// joined against information_schema.columns for the nullable/default/precision
// facets the diff engine compares against (spec §4.B, §4.D).
func (d *Database) ColumnsOf(ctx context.Context, table string) (map[string]*schema.ColumnShape, error) {
	const query = `
		SELECT
		  f.attname,
		  CASE
		    WHEN s.data_type IN ('ARRAY', 'USER-DEFINED') THEN format_type(f.atttypid, f.atttypmod)
		    ELSE s.data_type
		  END,
		  s.is_nullable,
		  s.column_default,
		  s.character_maximum_length,
		  s.numeric_precision,
		  s.numeric_scale
		FROM pg_attribute f
		JOIN pg_class c ON c.oid = f.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN information_schema.columns s
		  ON s.column_name = f.attname AND s.table_name = c.relname AND s.table_schema = n.nspname
		WHERE n.nspname = 'public' AND c.relname = $1 AND f.attnum > 0 AND NOT f.attisdropped
		ORDER BY f.attnum`

	rows, err := d.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, reflectErr(table, err)
	}
	defer rows.Close()

	out := make(map[string]*schema.ColumnShape)
	for rows.Next() {
		var name, dataType, isNullable string
		var defaultExpr *string
		var charMaxLen, numPrecision, numScale *int
		if err := rows.Scan(&name, &dataType, &isNullable, &defaultExpr, &charMaxLen, &numPrecision, &numScale); err != nil {
			return nil, reflectErr(table, err)
		}
		out[name] = &schema.ColumnShape{
			Name:             name,
			DataType:         dataType,
			IsNullable:       isNullable == "YES",
			CharMaxLength:    charMaxLen,
			DefaultExpr:      defaultExpr,
			NumericPrecision: numPrecision,
			NumericScale:     numScale,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, reflectErr(table, err)
	}
	return out, nil
}

// IndexNamesOf lists the non-constraint index names live on table, grounded on
// the teacher's getIndexDefs query, which excludes indexes implicitly backing a
// primary key, unique, or exclusion constraint.
func (d *Database) IndexNamesOf(ctx context.Context, table string) (map[string]bool, error) {
	const query = `
		WITH exclude_constraints AS (
		  SELECT con.conname AS name
		  FROM pg_constraint con
		  JOIN pg_namespace nsp ON nsp.oid = con.connamespace
		  JOIN pg_class cls ON cls.oid = con.conrelid
		  WHERE con.contype IN ('p', 'u', 'x')
		  AND nsp.nspname = 'public'
		  AND cls.relname = $1
		)
		SELECT indexname
		FROM pg_indexes
		WHERE schemaname = 'public' AND tablename = $1
		AND indexname NOT IN (SELECT name FROM exclude_constraints)`

	rows, err := d.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, reflectErr(table, err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, reflectErr(table, err)
		}
		out[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, reflectErr(table, err)
	}
	return out, nil
}

// UniqueConstraintNamesOf lists the table's unique-constraint names, grounded
// on the teacher's getUniqueConstraints query (contype = 'u').
func (d *Database) UniqueConstraintNamesOf(ctx context.Context, table string) (map[string]bool, error) {
	const query = `
		SELECT con.conname
		FROM pg_constraint con
		JOIN pg_namespace nsp ON nsp.oid = con.connamespace
		JOIN pg_class cls ON cls.oid = con.conrelid
		WHERE con.contype = 'u' AND nsp.nspname = 'public' AND cls.relname = $1`

	rows, err := d.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, reflectErr(table, err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, reflectErr(table, err)
		}
		out[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, reflectErr(table, err)
	}
	return out, nil
}

// PrimaryKeyColumnsOf lists the table's primary key columns in ordinal order,
// grounded on the teacher's getPrimaryKeyColumns query.
func (d *Database) PrimaryKeyColumnsOf(ctx context.Context, table string) ([]string, error) {
	const query = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  USING (table_schema, table_name, constraint_name)
		WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = 'public' AND tc.table_name = $1
		ORDER BY kcu.ordinal_position`

	rows, err := d.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, reflectErr(table, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, reflectErr(table, err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, reflectErr(table, err)
	}
	return out, nil
}

// UniqueIndexDefsOf lists each unique constraint's name and participating
// columns, in ordinal position within the constraint, ordered by constraint
// name, for the seed reconciler's match-column discovery (spec §4.H step 2).
// Only pg_constraint entries of type 'u' are read: a unique index created
// without a constraint (CREATE UNIQUE INDEX) is not listed. Grounded on the
// teacher's pg_constraint join style used throughout database.go.
func (d *Database) UniqueIndexDefsOf(ctx context.Context, table string) ([]catalog.UniqueIndexDef, error) {
	const query = `
		SELECT con.conname, att.attname
		FROM pg_constraint con
		JOIN pg_namespace nsp ON nsp.oid = con.connamespace
		JOIN pg_class cls ON cls.oid = con.conrelid
		JOIN unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute att ON att.attnum = k.attnum AND att.attrelid = con.conrelid
		WHERE con.contype = 'u' AND nsp.nspname = 'public' AND cls.relname = $1
		ORDER BY con.conname, k.ord`

	rows, err := d.db.QueryContext(ctx, query, table)
	if err != nil {
		return nil, reflectErr(table, err)
	}
	defer rows.Close()

	var out []catalog.UniqueIndexDef
	index := make(map[string]int)
	for rows.Next() {
		var name, col string
		if err := rows.Scan(&name, &col); err != nil {
			return nil, reflectErr(table, err)
		}
		if i, ok := index[name]; ok {
			out[i].Columns = append(out[i].Columns, col)
			continue
		}
		index[name] = len(out)
		out = append(out, catalog.UniqueIndexDef{Name: name, Columns: []string{col}})
	}
	if err := rows.Err(); err != nil {
		return nil, reflectErr(table, err)
	}
	return out, nil
}
