package schema

import (
	"strings"
	"testing"
)

func TestExpectedNamesShortForm(t *testing.T) {
	if got := ExpectedIndexName("users", "email"); got != "users_email_idx" {
		t.Errorf("got %q", got)
	}
	if got := ExpectedCompositeIndexName("users", "grp"); got != "users_grp_idx" {
		t.Errorf("got %q", got)
	}
	if got := ExpectedCompositeUniqueIndexName("users", "grp"); got != "users_grp_unique_idx" {
		t.Errorf("got %q", got)
	}
	if got := ExpectedUniqueConstraintName("users", "email"); got != "users_email_unique" {
		t.Errorf("got %q", got)
	}
	if got := ExpectedPrimaryKeyIndexName("users"); got != "users_pkey" {
		t.Errorf("got %q", got)
	}
}

func TestExpectedNamesTruncateLongIdentifiers(t *testing.T) {
	table := strings.Repeat("t", 40)
	column := strings.Repeat("c", 40)
	name := ExpectedIndexName(table, column)
	if len(name) > maxIdentLen {
		t.Errorf("expected name %q to be <= %d bytes, got %d", name, maxIdentLen, len(name))
	}
}
