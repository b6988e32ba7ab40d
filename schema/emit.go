package schema

import (
	"fmt"
	"strings"
)

// QuoteIdent double-quotes an identifier, per spec §4.D ("All identifiers are
// double-quoted").
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// renderColumnDef renders one column definition fragment, shared by CREATE TABLE
// and ADD COLUMN, per spec §4.D.
func renderColumnDef(f *FieldDefinition) string {
	parts := []string{QuoteIdent(f.Name), f.Type}

	if f.IsSerial() {
		// SERIAL columns omit NULL/NOT NULL and DEFAULT clauses entirely.
	} else {
		if n := f.Nullable.String(); n != "" {
			parts = append(parts, n)
		}
		if f.HasDefault {
			if expr, ok := NormalizeForEmission(f.DefaultRaw, f.Type); ok {
				parts = append(parts, "DEFAULT "+expr)
			}
		}
	}

	if f.Extra != "" {
		parts = append(parts, f.Extra)
	}

	if f.Key == KeyPrimary {
		parts = append(parts, "PRIMARY KEY")
	}

	return strings.Join(parts, " ")
}

// EmitCreateTable renders the CREATE TABLE statement for a fresh table plus one
// ADD CONSTRAINT statement per single-column UNIQUE field, per spec §4.D.
func EmitCreateTable(s *ParsedSchema) []Statement {
	var defs []string
	for _, name := range s.ColumnOrder {
		defs = append(defs, renderColumnDef(s.Columns[name]))
	}

	sql := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(s.TableName), strings.Join(defs, ", "))
	stmts := []Statement{{
		Table:           s.TableName,
		Kind:            CreateTable,
		SQL:             sql,
		Description:     fmt.Sprintf("create table %s", s.TableName),
		TransactionSafe: true,
	}}

	for _, col := range s.UniqueSingleColumns() {
		stmts = append(stmts, EmitAddUniqueConstraint(s.TableName, col))
	}

	return stmts
}

// EmitDropTable renders a DROP TABLE IF EXISTS ... CASCADE statement.
func EmitDropTable(table string) Statement {
	return Statement{
		Table:           table,
		Kind:            DropTable,
		SQL:             fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", QuoteIdent(table)),
		Description:     fmt.Sprintf("drop table %s", table),
		TransactionSafe: true,
	}
}

// EmitCreateDatabase renders a CREATE DATABASE statement.
func EmitCreateDatabase(name string) Statement {
	return Statement{
		Kind:            CreateDB,
		SQL:             fmt.Sprintf("CREATE DATABASE %s ENCODING 'UTF8'", QuoteIdent(name)),
		Description:     fmt.Sprintf("create database %s", name),
		TransactionSafe: true,
	}
}

// EmitAddColumn renders an ALTER TABLE ... ADD COLUMN statement.
func EmitAddColumn(table string, f *FieldDefinition) Statement {
	return Statement{
		Table:           table,
		Kind:            AddColumn,
		SQL:             fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", QuoteIdent(table), renderColumnDef(f)),
		Description:     fmt.Sprintf("add column %s.%s", table, f.Name),
		TransactionSafe: true,
	}
}

// EmitDropColumn renders an ALTER TABLE ... DROP COLUMN statement.
func EmitDropColumn(table, column string) Statement {
	return Statement{
		Table:           table,
		Kind:            DropColumn,
		SQL:             fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", QuoteIdent(table), QuoteIdent(column)),
		Description:     fmt.Sprintf("drop column %s.%s", table, column),
		TransactionSafe: true,
	}
}

// EmitAlterColumnType renders an ALTER TABLE ... ALTER COLUMN ... TYPE statement.
func EmitAlterColumnType(table, column, newType string) Statement {
	return Statement{
		Table:           table,
		Kind:            AlterColumn,
		SQL:             fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s", QuoteIdent(table), QuoteIdent(column), newType),
		Description:     fmt.Sprintf("alter column type %s.%s -> %s", table, column, newType),
		TransactionSafe: true,
	}
}

// EmitSetDefault renders an ALTER TABLE ... ALTER COLUMN ... SET DEFAULT statement.
func EmitSetDefault(table, column, expr string) Statement {
	return Statement{
		Table:           table,
		Kind:            AlterColumn,
		SQL:             fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET DEFAULT %s", QuoteIdent(table), QuoteIdent(column), expr),
		Description:     fmt.Sprintf("set default %s.%s", table, column),
		TransactionSafe: true,
	}
}

// EmitDropDefault renders an ALTER TABLE ... ALTER COLUMN ... DROP DEFAULT statement.
func EmitDropDefault(table, column string) Statement {
	return Statement{
		Table:           table,
		Kind:            AlterColumn,
		SQL:             fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT", QuoteIdent(table), QuoteIdent(column)),
		Description:     fmt.Sprintf("drop default %s.%s", table, column),
		TransactionSafe: true,
	}
}

// EmitSetNotNull renders an ALTER TABLE ... ALTER COLUMN ... SET NOT NULL statement.
func EmitSetNotNull(table, column string) Statement {
	return Statement{
		Table:           table,
		Kind:            AlterColumn,
		SQL:             fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL", QuoteIdent(table), QuoteIdent(column)),
		Description:     fmt.Sprintf("set not null %s.%s", table, column),
		TransactionSafe: true,
	}
}

// EmitDropNotNull renders an ALTER TABLE ... ALTER COLUMN ... DROP NOT NULL statement.
func EmitDropNotNull(table, column string) Statement {
	return Statement{
		Table:           table,
		Kind:            AlterColumn,
		SQL:             fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", QuoteIdent(table), QuoteIdent(column)),
		Description:     fmt.Sprintf("drop not null %s.%s", table, column),
		TransactionSafe: true,
	}
}

// EmitDropConstraint renders an ALTER TABLE ... DROP CONSTRAINT statement.
func EmitDropConstraint(table, name string) Statement {
	return Statement{
		Table:           table,
		Kind:            DropUnique,
		SQL:             fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s", QuoteIdent(table), QuoteIdent(name)),
		Description:     fmt.Sprintf("drop constraint %s on %s", name, table),
		TransactionSafe: true,
	}
}

// EmitDropIndex renders a DROP INDEX IF EXISTS statement.
func EmitDropIndex(table, name string) Statement {
	return Statement{
		Table:           table,
		Kind:            DropIndex,
		SQL:             fmt.Sprintf("DROP INDEX IF EXISTS %s", QuoteIdent(name)),
		Description:     fmt.Sprintf("drop index %s on %s", name, table),
		TransactionSafe: true,
	}
}

// EmitAddIndexSingle renders a CREATE INDEX CONCURRENTLY statement for one column.
func EmitAddIndexSingle(table, column string) Statement {
	name := ExpectedIndexName(table, column)
	return Statement{
		Table:           table,
		Kind:            AddIndex,
		SQL:             fmt.Sprintf("CREATE INDEX CONCURRENTLY %s ON %s (%s)", QuoteIdent(name), QuoteIdent(table), QuoteIdent(column)),
		Description:     fmt.Sprintf("add index %s", name),
		TransactionSafe: false,
	}
}

// EmitAddIndexComposite renders a CREATE INDEX CONCURRENTLY statement for a
// composite index group.
func EmitAddIndexComposite(table, group string, columns []string) Statement {
	name := ExpectedCompositeIndexName(table, group)
	return Statement{
		Table:           table,
		Kind:            AddIndex,
		SQL:             fmt.Sprintf("CREATE INDEX CONCURRENTLY %s ON %s (%s)", QuoteIdent(name), QuoteIdent(table), quoteIdentList(columns)),
		Description:     fmt.Sprintf("add composite index %s", name),
		TransactionSafe: false,
	}
}

// EmitAddUniqueIndexComposite renders a CREATE UNIQUE INDEX CONCURRENTLY
// statement for a composite unique group.
func EmitAddUniqueIndexComposite(table, group string, columns []string) Statement {
	name := ExpectedCompositeUniqueIndexName(table, group)
	return Statement{
		Table:           table,
		Kind:            AddIndex,
		SQL:             fmt.Sprintf("CREATE UNIQUE INDEX CONCURRENTLY %s ON %s (%s)", QuoteIdent(name), QuoteIdent(table), quoteIdentList(columns)),
		Description:     fmt.Sprintf("add composite unique index %s", name),
		TransactionSafe: false,
	}
}

// EmitAddUniqueConstraint renders an ALTER TABLE ... ADD CONSTRAINT ... UNIQUE
// statement for one column.
func EmitAddUniqueConstraint(table, column string) Statement {
	name := ExpectedUniqueConstraintName(table, column)
	return Statement{
		Table:           table,
		Kind:            AddUnique,
		SQL:             fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s)", QuoteIdent(table), QuoteIdent(name), QuoteIdent(column)),
		Description:     fmt.Sprintf("add unique constraint %s", name),
		TransactionSafe: true,
	}
}

func quoteIdentList(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = QuoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
