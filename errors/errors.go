package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseOpen    Phase = "open"    // opening the container
	PhaseBuild   Phase = "build"   // walking groups and datasets
	PhaseDecode  Phase = "decode"  // bytes to values
	PhaseCommand Phase = "command" // host command boundary
)

// Kind categorizes the error
type Kind string

const (
	KindSizeMismatch     Kind = "size_mismatch"
	KindCountMismatch    Kind = "count_mismatch"
	KindEngine           Kind = "engine"
	KindUnsupportedInput Kind = "unsupported_input"
	KindDuplicateField   Kind = "duplicate_field"
	KindSchemaTooDeep    Kind = "schema_too_deep"
	KindInvalidType      Kind = "invalid_type"
	KindCanceled         Kind = "canceled"
)

// Error is the structured error returned by decoding and tree building
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(FormatPath(e.Path))
	}

	if e.Type != "" {
		b.WriteString(": type ")
		b.WriteString(e.Type)
	}

	if e.Detail != "" {
		if e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// FormatPath joins path segments with dots. Index segments such as "[3]"
// attach to the previous segment.
func FormatPath(path []string) string {
	var b strings.Builder
	for i, p := range path {
		if i > 0 && !strings.HasPrefix(p, "[") {
			b.WriteByte('.')
		}
		b.WriteString(p)
	}
	return b.String()
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if stderrors.As(err, &e) {
			if e.Kind == kind {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}

// KindOf returns the kind of the outermost *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Type sets the descriptor rendering of the value being decoded
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// SizeMismatch creates an error for a byte window whose length disagrees
// with the declared size of its type
func SizeMismatch(path []string, typ string, got, want int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindSizeMismatch,
		Path:   path,
		Type:   typ,
		Detail: fmt.Sprintf("window is %d bytes, type needs %d", got, want),
	}
}

// CountMismatch creates an error for a dataset that decoded to a different
// number of elements than the engine reported
func CountMismatch(path []string, got, want uint64) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindCountMismatch,
		Path:   path,
		Detail: fmt.Sprintf("decoded %d elements, engine reported %d", got, want),
	}
}

// Engine wraps a failure of the container engine
func Engine(phase Phase, path []string, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindEngine,
		Path:   path,
		Detail: detail,
		Cause:  cause,
	}
}

// UnsupportedInput creates an error for a command input of the wrong type
func UnsupportedInput(got string) *Error {
	return &Error{
		Phase:  PhaseCommand,
		Kind:   KindUnsupportedInput,
		Detail: fmt.Sprintf("expected binary input, got %s", got),
	}
}

// DuplicateField creates an error for a record that would hold name twice
func DuplicateField(phase Phase, path []string, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateField,
		Path:   path,
		Detail: fmt.Sprintf("field %q appears more than once", name),
	}
}

// SchemaTooDeep creates an error for nesting beyond the depth limit
func SchemaTooDeep(phase Phase, path []string, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSchemaTooDeep,
		Path:   path,
		Detail: fmt.Sprintf("nesting exceeds %d levels", limit),
	}
}

// InvalidType creates an error for a descriptor that fails validation
func InvalidType(path []string, typ string, cause error) *Error {
	return &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidType,
		Path:  path,
		Type:  typ,
		Cause: cause,
	}
}

// Canceled wraps a context error
func Canceled(path []string, cause error) *Error {
	return &Error{
		Phase: PhaseBuild,
		Kind:  KindCanceled,
		Path:  path,
		Cause: cause,
	}
}
