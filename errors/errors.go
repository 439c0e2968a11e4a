package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // descriptor parsing
	PhaseDecode   Phase = "decode"   // class file binary to model
	PhaseEncode   Phase = "encode"   // model to class file binary
	PhaseBuild    Phase = "build"    // constant pool construction
	PhaseValidate Phase = "validate" // structural validation
	PhaseLoad     Phase = "load"     // class file loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidDescriptor Kind = "invalid_descriptor"
	KindNotMethod         Kind = "not_a_method_descriptor"
	KindPoolOverflow      Kind = "pool_overflow"
	KindInvalidData       Kind = "invalid_data"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindInvalidUTF8       Kind = "invalid_utf8"
	KindBadReference      Kind = "bad_reference"
	KindInvalidTag        Kind = "invalid_tag"
	KindUnsupported       Kind = "unsupported"
	KindNotFound          Kind = "not_found"
	KindConsumed          Kind = "consumed"
	KindTruncated         Kind = "truncated"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Input  string // offending descriptor or name, truncated for display
	Detail string
	Path   []string
	Offset int // byte offset into Input, -1 when unknown
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
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Input != "" {
		b.WriteString(": ")
		b.WriteString(fmt.Sprintf("%q", e.Input))
		if e.Offset >= 0 {
			b.WriteString(fmt.Sprintf(" at offset %d", e.Offset))
		}
	}

	if e.Detail != "" {
		if e.Input != "" {
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

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Input sets the offending input string
func (b *Builder) Input(s string) *Builder {
	b.err.Input = truncate(s)
	return b
}

// Offset sets the byte offset into the input
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

func truncate(s string) string {
	const max = 64
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// Convenience constructors for common error patterns

// InvalidDescriptor creates a malformed descriptor error with the
// offending input and the byte offset the parser stopped at.
func InvalidDescriptor(input string, offset int, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidDescriptor,
		Input:  truncate(input),
		Offset: offset,
		Detail: detail,
	}
}

// NotAMethodDescriptor reports a method-type operation applied to a
// descriptor that does not denote a method.
func NotAMethodDescriptor(input string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindNotMethod,
		Input:  truncate(input),
		Offset: -1,
		Detail: "not a method descriptor",
	}
}

// PoolOverflow reports an insertion that would exceed the 16-bit
// constant pool index ceiling.
func PoolOverflow(slots int) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindPoolOverflow,
		Offset: -1,
		Detail: fmt.Sprintf("constant pool full (%d slots, max 65535 addressable)", slots),
		Value:  slots,
	}
}

// Consumed reports an operation on a builder whose pool was already taken.
func Consumed(what string) *Error {
	return &Error{
		Phase:  PhaseBuild,
		Kind:   KindConsumed,
		Offset: -1,
		Detail: fmt.Sprintf("%s already consumed", what),
	}
}

// InvalidTag reports an unknown constant pool tag during decoding.
func InvalidTag(tag byte, index int) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindInvalidTag,
		Offset: -1,
		Detail: fmt.Sprintf("unknown constant pool tag 0x%02x at entry %d", tag, index),
		Value:  tag,
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Offset: -1,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Offset: -1,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// BadReference reports a pool entry whose index field addresses an
// entry of the wrong tag.
func BadReference(phase Phase, path []string, index uint16, wantTag, gotTag string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBadReference,
		Path:   path,
		Offset: -1,
		Detail: fmt.Sprintf("index %d addresses %s, want %s", index, gotTag, wantTag),
		Value:  index,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Offset: -1,
		Detail: detail,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: -1,
		Detail: what,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Offset: -1,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Truncated reports binary input that ended before a structure was complete.
func Truncated(phase Phase, what string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTruncated,
		Offset: -1,
		Detail: fmt.Sprintf("truncated %s", what),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a class file loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}
