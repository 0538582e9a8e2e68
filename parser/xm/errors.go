package xm

import (
	"errors"
	"fmt"
)

// ErrorKind tags a DecodeError so callers can tell a wrong file apart from a corrupt one.
type ErrorKind int

const (
	KindFormat             ErrorKind = iota + 1 // Not an XM file, or a version/packing this decoder does not handle.
	KindTruncated                               // The buffer ends before a region the headers promise.
	KindInconsistentHeader                      // Declared counts or sizes contradict each other or the format limits.
	KindMalformedSample                         // Sample byte length does not fit the declared bit depth.
)

func (k ErrorKind) String() string {
	switch k {
	case KindFormat:
		return "format error"
	case KindTruncated:
		return "truncated module"
	case KindInconsistentHeader:
		return "inconsistent header"
	case KindMalformedSample:
		return "malformed sample"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Sentinels for errors.Is. A *DecodeError matches the sentinel of its Kind.
var (
	ErrFormat             = &DecodeError{Kind: KindFormat}
	ErrTruncated          = &DecodeError{Kind: KindTruncated}
	ErrInconsistentHeader = &DecodeError{Kind: KindInconsistentHeader}
	ErrMalformedSample    = &DecodeError{Kind: KindMalformedSample}

	// ErrOutOfBounds is matched by every *BoundsError returned from a Reader.
	ErrOutOfBounds = errors.New("read out of bounds")

	// ErrDecoderUsed is returned when Decode is called on a Decoder twice.
	ErrDecoderUsed = errors.New("decoder already used")
)

// DecodeError reports why a buffer could not be decoded. Apart from
// ErrDecoderUsed it is the only error Decode returns.
type DecodeError struct {
	Kind   ErrorKind
	Offset int // Byte offset where the problem was detected, -1 if not tied to one.
	Msg    string
	Err    error // Optional cause.
}

func (e *DecodeError) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Offset >= 0 && e.Msg != "" {
		msg = fmt.Sprintf("%s (offset 0x%x)", msg, e.Offset)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is a DecodeError of the same kind.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, off int, format string, args ...any) *DecodeError {
	return &DecodeError{Kind: kind, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func formatErrorf(off int, format string, args ...any) error {
	return newError(KindFormat, off, format, args...)
}

func inconsistentf(off int, format string, args ...any) error {
	return newError(KindInconsistentHeader, off, format, args...)
}

func malformedSamplef(off int, format string, args ...any) error {
	return newError(KindMalformedSample, off, format, args...)
}

// truncated turns a bounds failure into a TruncatedError. Errors that are
// already DecodeErrors pass through untouched.
func truncated(what string, err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	off := -1
	var be *BoundsError
	if errors.As(err, &be) {
		off = be.Offset
	}
	return &DecodeError{Kind: KindTruncated, Offset: off, Msg: what, Err: err}
}

// BoundsError reports a read of Size bytes at Offset from a buffer of Len bytes.
type BoundsError struct {
	Offset int
	Size   int
	Len    int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %d exceeds buffer length %d", e.Size, e.Offset, e.Len)
}

func (e *BoundsError) Is(target error) bool { return target == ErrOutOfBounds }
