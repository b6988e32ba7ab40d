// Package seedfile loads seed files (spec.md §6 "Seed files"): per-table
// ordered row lists consumed by package seed's reconciler.
package seedfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v2"

	schemadef "github.com/schemadef/schemadef"
)

// Row is one declared row: a mapping from column name to declared value.
type Row map[string]interface{}

// Table is one table's declared seed rows, paired with its source file.
type Table struct {
	Name       string
	Rows       []Row
	SourceFile string
}

// FileError records a parse error for one seed file; the file is skipped and
// loading continues, per spec.md §7 "Parse error".
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

// LoadDirs enumerates every *.yml/*.yaml file under dirs in lexicographic
// order and decodes each into its table/row list.
func LoadDirs(dirs []string) ([]Table, []FileError) {
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
		fileTables, err := loadFile(file)
		if err != nil {
			errs = append(errs, FileError{File: file, Err: &schemadef.Error{Kind: schemadef.ErrKindParse, Context: file, Message: err.Error()}})
			continue
		}
		tables = append(tables, fileTables...)
	}
	return tables, errs
}

func loadFile(file string) ([]Table, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	var doc map[string][]map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make([]Table, 0, len(names))
	for _, name := range names {
		rawRows := doc[name]
		rows := make([]Row, 0, len(rawRows))
		for _, r := range rawRows {
			rows = append(rows, Row(normalizeKeys(r)))
		}
		tables = append(tables, Table{Name: name, Rows: rows, SourceFile: file})
	}
	return tables, nil
}

// normalizeKeys recurses into nested maps, converting yaml.v2's
// map[interface{}]interface{} decode shape into map[string]interface{} so
// downstream JSON-ish comparisons (package seed's value normalizer) don't have
// to special-case the decoder's native map type.
func normalizeKeys(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeValue(val)
		}
		return out
	default:
		return nil
	}
}

func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		return normalizeKeys(t)
	case map[string]interface{}:
		return normalizeKeys(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
