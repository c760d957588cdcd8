package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in decoding the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // inside a token handler
	PhaseDispatch Phase = "dispatch" // token tag lookup and dispatch
	PhaseStream   Phase = "stream"   // chunk input and buffering
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownToken    Kind = "unknown_token"
	KindUnsupportedType Kind = "unsupported_type"
	KindInvalidData     Kind = "invalid_data"
	KindOverflow        Kind = "overflow"
	KindTruncated       Kind = "truncated"
)

// Error is the structured error type used throughout the decoder
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Token  string
	Detail string
	Offset int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Token != "" {
		b.WriteString(" in ")
		b.WriteString(e.Token)
	}

	if e.Offset > 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
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

// Token sets the name of the token being decoded
func (b *Builder) Token(name string) *Builder {
	b.err.Token = name
	return b
}

// Offset sets the byte offset into the current window
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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

// UnknownToken creates an error for a tag byte with no registered handler
func UnknownToken(tag byte) *Error {
	return &Error{
		Phase:  PhaseDispatch,
		Kind:   KindUnknownToken,
		Detail: fmt.Sprintf("no handler registered for token 0x%02X", tag),
		Value:  tag,
	}
}

// UnsupportedType creates an error for a column data type the decoder
// does not understand
func UnsupportedType(token, column string, typeID byte) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindUnsupportedType,
		Token:  token,
		Detail: fmt.Sprintf("column %q has unsupported data type 0x%02X", column, typeID),
		Value:  typeID,
	}
}

// Overflow creates an error for a read request beyond the configured bound
func Overflow(token string, need, limit int) *Error {
	return &Error{
		Phase:  PhaseStream,
		Kind:   KindOverflow,
		Token:  token,
		Detail: fmt.Sprintf("read of %d bytes exceeds limit of %d", need, limit),
		Value:  need,
	}
}

// Truncated creates an error for a stream that ended mid-token
func Truncated(token string, need, have int) *Error {
	return &Error{
		Phase:  PhaseStream,
		Kind:   KindTruncated,
		Token:  token,
		Detail: fmt.Sprintf("stream ended awaiting %d bytes (%d buffered)", need, have),
	}
}

// InvalidData creates an invalid data error
func InvalidData(token, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Token:  token,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
