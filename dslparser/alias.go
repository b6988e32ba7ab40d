// Package dslparser implements the DSL field-map parser, spec §4.C: it turns one
// table's ordered field entries into a schema.ParsedSchema. It has no file-format
// dependency of its own — package decl decodes YAML into the ordered FieldEntry
// slices this package consumes.
package dslparser

// Alias is a user-defined named shortcut for a column type plus optional
// default/key/extra, per spec §4.C and §6 ("customFields").
type Alias struct {
	Type       string
	DefaultRaw string
	HasDefault bool
	Key        string // "", "PRIMARY", or "UNIQUE"
	Extra      string
}
