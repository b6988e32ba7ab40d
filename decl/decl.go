// Package decl loads declaration files (spec.md §6 "Declaration files") and
// turns each table entry into a schema.ParsedSchema via dslparser. It owns the
// one YAML-ordering subtlety the rest of the engine doesn't have to think
// about: gopkg.in/yaml.v2 decodes a mapping node into a yaml.MapSlice to
// preserve column declaration order, which a plain map[string]string cannot.
package decl

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"

	schemadef "github.com/schemadef/schemadef"
	"github.com/schemadef/schemadef/dslparser"
	"github.com/schemadef/schemadef/schema"
)

// Table is one parsed declaration-file entry, paired with its source file for
// error reporting. Name is already rewritten for a `~` prefix; tables marked
// `~ignore` never appear as a Table.
type Table struct {
	Name       string
	Schema     *schema.ParsedSchema
	SourceFile string
}

// FileError records a parse error for one declaration file; per spec.md §7
// "Parse error", the engine skips the file and continues with a warning
// rather than aborting the whole load.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// LoadDirs enumerates every *.yml/*.yaml file across dirs in lexicographic
// order (spec.md §6), parses each, and returns the tables that parsed along
// with the errors for the ones that didn't. A table carrying `~ignore: true`
// is omitted from the result. A table name prefixed `~` has the prefix
// stripped and, when pref is non-empty, pref prepended, per spec.md §6's
// declaration-file shape.
func LoadDirs(dirs []string, aliases map[string]dslparser.Alias, pref string) ([]Table, []FileError) {
	var files []string
	for _, dir := range dirs {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.yml"))
		files = append(files, matches...)
		matches, _ = filepath.Glob(filepath.Join(dir, "*.yaml"))
		files = append(files, matches...)
	}
	sort.Strings(files)

	var tables []Table
	var errs []FileError
	for _, file := range files {
		fileTables, err := loadFile(file, aliases, pref)
		if err != nil {
			errs = append(errs, FileError{File: file, Err: &schemadef.Error{Kind: schemadef.ErrKindParse, Context: file, Message: err.Error()}})
			continue
		}
		tables = append(tables, fileTables...)
	}
	return tables, errs
}

func loadFile(file string, aliases map[string]dslparser.Alias, pref string) ([]Table, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	var tables []Table
	for _, tableItem := range doc {
		tableName, ok := tableItem.Key.(string)
		if !ok {
			return nil, fmt.Errorf("table key %v is not a string", tableItem.Key)
		}

		columns, ok := tableItem.Value.(yaml.MapSlice)
		if !ok {
			return nil, fmt.Errorf("table %q: expected a mapping of columns", tableName)
		}

		ignore := false
		var fields []dslparser.FieldEntry
		for _, col := range columns {
			key, ok := col.Key.(string)
			if !ok {
				return nil, fmt.Errorf("table %q: column key %v is not a string", tableName, col.Key)
			}
			if key == "~ignore" {
				if truthy(col.Value) {
					ignore = true
				}
				continue
			}
			value, ok := col.Value.(string)
			if !ok {
				return nil, fmt.Errorf("table %q: column %q value is not a string", tableName, key)
			}
			fields = append(fields, dslparser.FieldEntry{Name: key, Value: value})
		}

		if ignore {
			continue
		}

		resolvedName := tableName
		if strings.HasPrefix(tableName, "~") {
			resolvedName = pref + strings.TrimPrefix(tableName, "~")
		}

		parsed, err := dslparser.ParseTable(resolvedName, fields, aliases)
		if err != nil {
			return nil, fmt.Errorf("table %q: %w", tableName, err)
		}

		tables = append(tables, Table{Name: resolvedName, Schema: parsed, SourceFile: file})
	}

	return tables, nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		lower := strings.ToLower(t)
		return lower != "" && lower != "false" && lower != "0" && lower != "no"
	case int:
		return t != 0
	case nil:
		return false
	default:
		return true
	}
}
