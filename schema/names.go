package schema

import (
	"fmt"
	"hash/fnv"

	"github.com/schemadef/schemadef/util"
)

// maxIdentLen is PostgreSQL's NAMEDATALEN-1: identifiers longer than this are
// silently truncated by the server, so the diff engine must compute the same
// truncated name the server would use or risk perpetually re-adding/re-dropping
// an index it itself created.
const maxIdentLen = 63

// truncate applies the teacher's constraint-naming truncation algorithm (shorten
// the variable part first, preferring to keep the suffix and table name intact).
// BuildPostgresConstraintName already returns at most maxIdentLen bytes, so the
// 8-hex-character hash fallback below runs only if a name is still too long.
// Two distinct names that truncate to the same string are not disambiguated.
func truncate(table, variable, suffix string) string {
	full := util.BuildPostgresConstraintName(table, variable, suffix)
	if len(full) <= maxIdentLen {
		return full
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(table + "\x00" + variable + "\x00" + suffix))
	disambiguator := fmt.Sprintf("%08x", h.Sum32())
	keep := maxIdentLen - len(disambiguator) - 1
	if keep < 0 {
		keep = 0
	}
	if keep > len(full) {
		keep = len(full)
	}
	return full[:keep] + "_" + disambiguator
}

// ExpectedIndexName computes T_col_idx, per spec §4.F "Expected-name computation".
func ExpectedIndexName(table, column string) string {
	return truncate(table, column, "idx")
}

// ExpectedCompositeIndexName computes T_group_idx.
func ExpectedCompositeIndexName(table, group string) string {
	return truncate(table, group, "idx")
}

// ExpectedCompositeUniqueIndexName computes T_group_unique_idx.
func ExpectedCompositeUniqueIndexName(table, group string) string {
	return truncate(table, group, "unique_idx")
}

// ExpectedUniqueConstraintName computes T_col_unique, used as both the expected
// index name and expected unique-constraint name for a UNIQUE-SINGLE column.
func ExpectedUniqueConstraintName(table, column string) string {
	return truncate(table, column, "unique")
}

// ExpectedPrimaryKeyIndexName computes T_pkey.
func ExpectedPrimaryKeyIndexName(table string) string {
	name := table + "_pkey"
	if len(name) <= maxIdentLen {
		return name
	}
	return truncate(table, "", "pkey")
}
