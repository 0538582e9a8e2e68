package xm

import (
	"encoding/binary"
	"strings"
)

// Reader gives bounds-checked little-endian access to a byte buffer at
// absolute offsets. It keeps no position of its own; callers thread offsets.
type Reader struct {
	buf []byte
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the buffer length.
func (r *Reader) Len() int { return len(r.buf) }

// Require checks that n bytes starting at off lie inside the buffer.
func (r *Reader) Require(off, n int) error {
	if off < 0 || n < 0 || off > len(r.buf) || n > len(r.buf)-off {
		return &BoundsError{Offset: off, Size: n, Len: len(r.buf)}
	}
	return nil
}

func (r *Reader) U8(off int) (uint8, error) {
	if err := r.Require(off, 1); err != nil {
		return 0, err
	}
	return r.buf[off], nil
}

func (r *Reader) I8(off int) (int8, error) {
	v, err := r.U8(off)
	return int8(v), err
}

func (r *Reader) U16(off int) (uint16, error) {
	if err := r.Require(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.buf[off:]), nil
}

func (r *Reader) I16(off int) (int16, error) {
	v, err := r.U16(off)
	return int16(v), err
}

func (r *Reader) U32(off int) (uint32, error) {
	if err := r.Require(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[off:]), nil
}

func (r *Reader) I32(off int) (int32, error) {
	v, err := r.U32(off)
	return int32(v), err
}

// String reads a fixed-width text field. The value ends at the first NUL and
// trailing spaces are trimmed, which is how trackers pad names.
func (r *Reader) String(off, n int) (string, error) {
	if err := r.Require(off, n); err != nil {
		return "", err
	}
	field := r.buf[off : off+n]
	for i, b := range field {
		if b == 0 {
			field = field[:i]
			break
		}
	}
	return strings.TrimRight(string(field), " "), nil
}

// Bytes returns a copy of n bytes at off, so the result never aliases the
// caller's buffer.
func (r *Reader) Bytes(off, n int) ([]byte, error) {
	if err := r.Require(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[off:off+n])
	return out, nil
}

// slice returns a view of n bytes at off. Only for data that is decoded
// immediately into freshly allocated values.
func (r *Reader) slice(off, n int) ([]byte, error) {
	if err := r.Require(off, n); err != nil {
		return nil, err
	}
	return r.buf[off : off+n], nil
}
