package dslparser

import (
	"testing"

	"github.com/schemadef/schemadef/schema"
)

func standardAliases() map[string]Alias {
	return map[string]Alias{
		"id":    {Type: "SERIAL", Key: "PRIMARY"},
		"str":   {Type: "VARCHAR(64)"},
		"email": {Type: "VARCHAR(128)"},
	}
}

func TestParseTableScenario1(t *testing.T) {
	fields := []FieldEntry{
		{Name: "user_id", Value: "id"},
		{Name: "user_name", Value: "str required"},
		{Name: "user_email", Value: "email unique index"},
	}
	s, err := ParseTable("users", fields, standardAliases())
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}

	if len(s.ColumnOrder) != 3 || s.ColumnOrder[0] != "user_id" || s.ColumnOrder[2] != "user_email" {
		t.Fatalf("column order not preserved: %v", s.ColumnOrder)
	}

	id := s.Columns["user_id"]
	if id.Type != "SERIAL" || id.Key != schema.KeyPrimary || id.Nullable != schema.NullabilityUnspecified {
		t.Errorf("user_id = %+v", id)
	}

	name := s.Columns["user_name"]
	if name.Type != "VARCHAR(64)" || name.Nullable != schema.NullabilityNotNull {
		t.Errorf("user_name = %+v", name)
	}

	email := s.Columns["user_email"]
	if email.Type != "VARCHAR(128)" || email.Nullable != schema.NullabilityNull || email.Key != schema.KeyUniqueSingle {
		t.Errorf("user_email = %+v", email)
	}
	if len(s.IndividualIndexes) != 1 || s.IndividualIndexes[0] != "user_email" {
		t.Errorf("IndividualIndexes = %v", s.IndividualIndexes)
	}
}

func TestParseTableCompositeGroups(t *testing.T) {
	fields := []FieldEntry{
		{Name: "a", Value: "int unique/ab"},
		{Name: "b", Value: "int unique/ab"},
		{Name: "c", Value: "int index/xy,yz"},
	}
	s, err := ParseTable("t", fields, nil)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if got := s.CompositeUniqueIndexes["ab"]; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("composite unique group 'ab' = %v", got)
	}
	if got := s.CompositeIndexes["xy"]; len(got) != 1 || got[0] != "c" {
		t.Errorf("composite index group 'xy' = %v", got)
	}
	if got := s.CompositeIndexes["yz"]; len(got) != 1 || got[0] != "c" {
		t.Errorf("composite index group 'yz' = %v", got)
	}
}

func TestParseTableDefaultModifier(t *testing.T) {
	fields := []FieldEntry{
		{Name: "status", Value: "varchar/32 default/active"},
	}
	s, err := ParseTable("t", fields, nil)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	f := s.Columns["status"]
	if f.Type != "VARCHAR(32)" || !f.HasDefault || f.DefaultRaw != "active" {
		t.Errorf("status = %+v", f)
	}
}

func TestParseTableAliasDefaultInherited(t *testing.T) {
	aliases := map[string]Alias{
		"flag": {Type: "BOOLEAN", DefaultRaw: "false", HasDefault: true},
	}
	fields := []FieldEntry{{Name: "active", Value: "flag"}}
	s, err := ParseTable("t", fields, aliases)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	f := s.Columns["active"]
	if !f.HasDefault || f.DefaultRaw != "false" {
		t.Errorf("active = %+v, expected inherited default", f)
	}
}

func TestParseTableAliasKeyOverridesModifierUnique(t *testing.T) {
	aliases := map[string]Alias{
		"id": {Type: "SERIAL", Key: "PRIMARY"},
	}
	fields := []FieldEntry{{Name: "pk", Value: "id unique"}}
	s, err := ParseTable("t", fields, aliases)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	f := s.Columns["pk"]
	if f.Key != schema.KeyPrimary {
		t.Errorf("expected alias Key=PRIMARY to override modifier 'unique', got %v", f.Key)
	}
}

func TestParseTableExtraUpperCased(t *testing.T) {
	aliases := map[string]Alias{
		"ts": {Type: "TIMESTAMP", Extra: "on update current_timestamp"},
	}
	fields := []FieldEntry{{Name: "updated_at", Value: "ts"}}
	s, err := ParseTable("t", fields, aliases)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if s.Columns["updated_at"].Extra != "ON UPDATE CURRENT_TIMESTAMP" {
		t.Errorf("Extra = %q", s.Columns["updated_at"].Extra)
	}
}

func TestParseTableSkipsMetaKeys(t *testing.T) {
	fields := []FieldEntry{
		{Name: "~comment", Value: "id"},
		{Name: "real_col", Value: "int"},
	}
	s, err := ParseTable("t", fields, nil)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if len(s.ColumnOrder) != 1 || s.ColumnOrder[0] != "real_col" {
		t.Errorf("expected only real_col, got %v", s.ColumnOrder)
	}
}

func TestParseTableLengthReplacesAliasParens(t *testing.T) {
	aliases := map[string]Alias{
		"money": {Type: "NUMERIC(12,2)"},
	}
	fields := []FieldEntry{{Name: "amount", Value: "money/16,8"}}
	s, err := ParseTable("t", fields, aliases)
	if err != nil {
		t.Fatalf("ParseTable: %v", err)
	}
	if s.Columns["amount"].Type != "NUMERIC(16,8)" {
		t.Errorf("Type = %q, want NUMERIC(16,8)", s.Columns["amount"].Type)
	}
}
