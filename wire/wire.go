// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wire holds the fixed-layout encoding shared by proof codecs:
// big-endian integers, compressed points and canonical scalars, with
// uint32 counts in front of vectors.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/luxfi/blsct/arith"
)

var (
	ErrShortBuffer   = errors.New("short buffer")
	ErrVectorTooLong = errors.New("vector too long")
)

// MaxVectorLen bounds every decoded vector.
const MaxVectorLen = 1 << 16

// Writer appends encodings to a byte slice.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Uint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

func (w *Writer) Raw(b []byte) {
	w.buf = append(w.buf, b...)
}

// VarBytes writes a uint32 length followed by b.
func (w *Writer) VarBytes(b []byte) {
	w.Uint32(uint32(len(b)))
	w.Raw(b)
}

func Point[P interface{ Bytes() []byte }](w *Writer, p P) {
	w.Raw(p.Bytes())
}

func Points[P interface{ Bytes() []byte }](w *Writer, ps []P) {
	w.Uint32(uint32(len(ps)))
	for _, p := range ps {
		w.Raw(p.Bytes())
	}
}

func Scalar[S interface{ Bytes() []byte }](w *Writer, s S) {
	w.Raw(s.Bytes())
}

func Scalars[S interface{ Bytes() []byte }](w *Writer, ss []S) {
	w.Uint32(uint32(len(ss)))
	for _, s := range ss {
		w.Raw(s.Bytes())
	}
}

// Reader consumes encodings from a byte slice.
type Reader[S arith.Scalar[S], P arith.Point[P, S]] struct {
	be   arith.Backend[S, P]
	data []byte
	err  error
}

func NewReader[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P], data []byte) *Reader[S, P] {
	return &Reader[S, P]{be: be, data: data}
}

// Err returns the first decoding error.
func (r *Reader[S, P]) Err() error {
	return r.err
}

// Rest returns the unread bytes.
func (r *Reader[S, P]) Rest() []byte {
	return r.data
}

func (r *Reader[S, P]) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.data) < n {
		r.err = fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, len(r.data))
		return nil
	}
	b := r.data[:n]
	r.data = r.data[n:]
	return b
}

func (r *Reader[S, P]) Uint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *Reader[S, P]) Uint64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *Reader[S, P]) Raw(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

func (r *Reader[S, P]) VarBytes() []byte {
	n := r.length()
	return r.Raw(n)
}

func (r *Reader[S, P]) Point() P {
	var p P
	b := r.take(r.be.PointSize())
	if b == nil {
		return p
	}
	p, err := r.be.PointFromBytes(b)
	if err != nil {
		r.err = err
	}
	return p
}

func (r *Reader[S, P]) Points() []P {
	n := r.length()
	if r.err != nil {
		return nil
	}
	ps := make([]P, n)
	for i := range ps {
		ps[i] = r.Point()
	}
	return ps
}

func (r *Reader[S, P]) Scalar() S {
	var s S
	b := r.take(r.be.ScalarSize())
	if b == nil {
		return s
	}
	s, err := r.be.ScalarFromBytes(b)
	if err != nil {
		r.err = err
	}
	return s
}

func (r *Reader[S, P]) Scalars() []S {
	n := r.length()
	if r.err != nil {
		return nil
	}
	ss := make([]S, n)
	for i := range ss {
		ss[i] = r.Scalar()
	}
	return ss
}

func (r *Reader[S, P]) length() int {
	n := r.Uint32()
	if r.err == nil && n > MaxVectorLen {
		r.err = fmt.Errorf("%w: %d", ErrVectorTooLong, n)
		return 0
	}
	return int(n)
}
