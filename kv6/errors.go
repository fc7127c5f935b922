package kv6

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind categorizes a codec error.
type Kind string

const (
	KindUnexpectedEOF           Kind = "unexpected_eof"
	KindBadMagic                Kind = "bad_magic"
	KindInvalidExtents          Kind = "invalid_extents"
	KindInconsistentOffsets     Kind = "inconsistent_offsets"
	KindOutOfBounds             Kind = "out_of_bounds"
	KindDuplicateColumnPosition Kind = "duplicate_column_position"
	KindInvalidPack             Kind = "invalid_pack"
	KindChecksumMismatch        Kind = "checksum_mismatch"
)

// Sentinels for errors.Is. Any *Error matches the sentinel of the same Kind.
var (
	ErrUnexpectedEOF           = &Error{Kind: KindUnexpectedEOF, Offset: -1}
	ErrBadMagic                = &Error{Kind: KindBadMagic, Offset: -1}
	ErrInvalidExtents          = &Error{Kind: KindInvalidExtents, Offset: -1}
	ErrInconsistentOffsets     = &Error{Kind: KindInconsistentOffsets, Offset: -1}
	ErrOutOfBounds             = &Error{Kind: KindOutOfBounds, Offset: -1}
	ErrDuplicateColumnPosition = &Error{Kind: KindDuplicateColumnPosition, Offset: -1}
	ErrInvalidPack             = &Error{Kind: KindInvalidPack, Offset: -1}
	ErrChecksumMismatch        = &Error{Kind: KindChecksumMismatch, Offset: -1}
)

// Error is the structured error returned by every kv6 operation.
// Offset is the byte position in the decoded buffer, or -1 when the
// error did not come from reading bytes.
type Error struct {
	Kind   Kind
	Offset int
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("kv6: ")
	b.WriteString(string(e.Kind))
	if e.Offset >= 0 {
		b.WriteString(" at offset ")
		b.WriteString(strconv.Itoa(e.Offset))
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

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a kv6 error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newError(kind Kind, offset int, format string, args ...any) *Error {
	e := &Error{Kind: kind, Offset: offset, Detail: format}
	if len(args) > 0 {
		e.Detail = fmt.Sprintf(format, args...)
	}
	return e
}

func eofError(offset, want, have int) *Error {
	return &Error{
		Kind:   KindUnexpectedEOF,
		Offset: offset,
		Detail: fmt.Sprintf("need %d bytes, %d left", want, have),
		Cause:  io.ErrUnexpectedEOF,
	}
}

func outOfBounds(x, y, z int, ext Extents) *Error {
	return newError(KindOutOfBounds, -1, "(%d,%d,%d) outside extents %dx%dx%d", x, y, z, ext.X, ext.Y, ext.Z)
}
