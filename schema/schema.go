// Package schema implements the pure core of schemadef: the DSL field model, the
// type dictionary, default-value normalization, SQL statement emission, and the
// schema diff engine. Nothing in this package touches the network; every function
// here is a pure mapping from its inputs to its outputs.
package schema

// Nullability is the DSL's tri-state nullability. Unspecified occurs for SERIAL
// columns, which never carry an explicit NULL/NOT NULL clause.
type Nullability int

const (
	NullabilityUnspecified Nullability = iota
	NullabilityNull
	NullabilityNotNull
)

func (n Nullability) String() string {
	switch n {
	case NullabilityNull:
		return "NULL"
	case NullabilityNotNull:
		return "NOT NULL"
	default:
		return ""
	}
}

// KeyKind is the DSL's column-level key designation.
type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyPrimary
	KeyUniqueSingle
)

// FieldDefinition describes one declared column, per spec §3.
type FieldDefinition struct {
	Name       string
	Type       string // upper-case canonical wire-ready form, e.g. VARCHAR(64)
	Nullable   Nullability
	Key        KeyKind
	DefaultRaw string // raw default expression as written; "" and HasDefault==false means absent
	HasDefault bool
	Extra      string // free-form trailing fragment, upper-case
}

// IsSerial reports whether the field's resolved type is one of the SERIAL variants.
func (f FieldDefinition) IsSerial() bool {
	return isSerialType(f.Type)
}

// ParsedSchema is the structured form of one table's declaration, per spec §3.
type ParsedSchema struct {
	TableName string

	// Columns, in declaration order (creation order).
	ColumnOrder []string
	Columns     map[string]*FieldDefinition

	// IndividualIndexes is the ordered list of columns carrying a non-grouped index.
	IndividualIndexes []string

	// CompositeIndexes maps group name to its ordered column list (encounter order).
	CompositeIndexGroups []string // group names in encounter order
	CompositeIndexes     map[string][]string

	// CompositeUniqueIndexes mirrors CompositeIndexes for unique/group.
	CompositeUniqueGroups []string
	CompositeUniqueIndexes map[string][]string
}

// NewParsedSchema returns an empty schema ready for incremental population.
func NewParsedSchema(table string) *ParsedSchema {
	return &ParsedSchema{
		TableName:              table,
		Columns:                make(map[string]*FieldDefinition),
		CompositeIndexes:       make(map[string][]string),
		CompositeUniqueIndexes: make(map[string][]string),
	}
}

// PrimaryKeyColumn returns the name of the sole PRIMARY column, if any.
func (s *ParsedSchema) PrimaryKeyColumn() (string, bool) {
	for _, name := range s.ColumnOrder {
		if s.Columns[name].Key == KeyPrimary {
			return name, true
		}
	}
	return "", false
}

// UniqueSingleColumns returns the columns declared key=UNIQUE-SINGLE, in declaration order.
func (s *ParsedSchema) UniqueSingleColumns() []string {
	var out []string
	for _, name := range s.ColumnOrder {
		if s.Columns[name].Key == KeyUniqueSingle {
			out = append(out, name)
		}
	}
	return out
}

// ColumnShape is a reflected column, per spec §3.
type ColumnShape struct {
	Name             string
	DataType         string // catalog wire form, lower-case
	IsNullable       bool
	CharMaxLength    *int
	DefaultExpr      *string
	NumericPrecision *int
	NumericScale     *int
}

// TableShape is the reflected shape of one table, per spec §3.
type TableShape struct {
	Columns               map[string]*ColumnShape
	IndexNames            map[string]bool
	UniqueConstraintNames map[string]bool
}

// NewTableShape returns an empty shape ready for incremental population.
func NewTableShape() *TableShape {
	return &TableShape{
		Columns:               make(map[string]*ColumnShape),
		IndexNames:            make(map[string]bool),
		UniqueConstraintNames: make(map[string]bool),
	}
}

// StatementKind is the closed set of statement kinds the engine emits, per spec §3.
type StatementKind int

const (
	CreateDB StatementKind = iota
	CreateTable
	DropTable
	AddColumn
	DropColumn
	AlterColumn
	AddIndex
	DropIndex
	AddUnique
	DropUnique
	Raw
)

func (k StatementKind) String() string {
	switch k {
	case CreateDB:
		return "CREATE_DB"
	case CreateTable:
		return "CREATE_TABLE"
	case DropTable:
		return "DROP_TABLE"
	case AddColumn:
		return "ADD_COLUMN"
	case DropColumn:
		return "DROP_COLUMN"
	case AlterColumn:
		return "ALTER_COLUMN"
	case AddIndex:
		return "ADD_INDEX"
	case DropIndex:
		return "DROP_INDEX"
	case AddUnique:
		return "ADD_UNIQUE"
	case DropUnique:
		return "DROP_UNIQUE"
	case Raw:
		return "RAW"
	default:
		return "UNKNOWN"
	}
}

// Statement is an immutable, fully-rendered schema-change statement, per spec §3.
// The engine never mutates a Statement after emission.
type Statement struct {
	Table       string // may be empty for database-level statements
	Kind        StatementKind
	SQL         string
	Description string

	// TransactionSafe is false for statements that cannot run inside a BEGIN/COMMIT
	// envelope (CREATE INDEX CONCURRENTLY). Supplemental field grounded on the
	// teacher's database.TransactionSupported predicate (SPEC_FULL §4.D).
	TransactionSafe bool
}
