// Package schemadef is the repository's root package: the closed ErrorKind
// variant and the per-run result records every other package's structured
// errors and results are built around (spec.md §7, SPEC_FULL.md §3).
package schemadef

// ErrorKind is the closed set of error categories visible to a caller, per
// spec.md §7. Every structured error or result the engine returns names its
// kind so callers can map to process exit codes without string-matching.
type ErrorKind int

const (
	ErrKindConfiguration ErrorKind = iota
	ErrKindParse
	ErrKindReflection
	ErrKindStatement
	ErrKindConnectivity
	ErrKindUserCancel
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindConfiguration:
		return "configuration"
	case ErrKindParse:
		return "parse"
	case ErrKindReflection:
		return "reflection"
	case ErrKindStatement:
		return "statement"
	case ErrKindConnectivity:
		return "connectivity"
	case ErrKindUserCancel:
		return "user-cancel"
	default:
		return "unknown"
	}
}

// Error pairs an ErrorKind with the offending SQL (if any), the table/file
// context, and a one-line message, per spec.md §7 ("No error is translated
// into silent success. All errors carry the offending SQL, the table/file
// context, and a one-line message.")
type Error struct {
	Kind    ErrorKind
	Context string // table name or file path
	SQL     string // empty when not statement-related
	Message string
}

func (e *Error) Error() string {
	if e.SQL != "" {
		return e.Kind.String() + " error in " + e.Context + ": " + e.Message + " (SQL: " + e.SQL + ")"
	}
	return e.Kind.String() + " error in " + e.Context + ": " + e.Message
}
