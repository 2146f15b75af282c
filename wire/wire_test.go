// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/blsct/arith/bls12381"
)

func testValues(t *testing.T) (*bls12381.Backend, []bls12381.Scalar, []bls12381.Point) {
	t.Helper()
	be := bls12381.NewBackend()
	scalars := []bls12381.Scalar{be.Zero(), be.One(), be.ScalarFromUint64(1 << 40)}
	points := make([]bls12381.Point, 0, 3)
	points = append(points, be.Identity(), be.Generator())
	p, err := be.HashToPoint([]byte("wire"), []byte("WIRE_TEST"))
	require.NoError(t, err)
	points = append(points, p)
	return be, scalars, points
}

func TestWriterReader_RoundTrip(t *testing.T) {
	require := require.New(t)
	be, scalars, points := testValues(t)

	w := NewWriter(0)
	w.Uint32(0xdeadbeef)
	w.Uint64(1<<63 | 7)
	w.Raw([]byte{1, 2, 3})
	w.VarBytes([]byte("memo"))
	w.VarBytes(nil)
	Point(w, points[2])
	Points(w, points)
	Points(w, []bls12381.Point{})
	Scalar(w, scalars[2])
	Scalars(w, scalars)

	r := NewReader(be, w.Bytes())
	require.Equal(uint32(0xdeadbeef), r.Uint32())
	require.Equal(uint64(1<<63|7), r.Uint64())
	require.Equal([]byte{1, 2, 3}, r.Raw(3))
	require.Equal([]byte("memo"), r.VarBytes())
	require.Empty(r.VarBytes())
	require.True(points[2].Equal(r.Point()))

	gotPoints := r.Points()
	require.Len(gotPoints, len(points))
	for i := range points {
		require.True(points[i].Equal(gotPoints[i]))
	}
	require.Empty(r.Points())

	require.True(scalars[2].Equal(r.Scalar()))
	gotScalars := r.Scalars()
	require.Len(gotScalars, len(scalars))
	for i := range scalars {
		require.True(scalars[i].Equal(gotScalars[i]))
	}

	require.NoError(r.Err())
	require.Empty(r.Rest())
}

func TestWriter_Layout(t *testing.T) {
	require := require.New(t)

	w := NewWriter(16)
	w.Uint32(1)
	w.VarBytes([]byte{0xaa})
	w.Uint64(2)
	require.Equal([]byte{
		0, 0, 0, 1,
		0, 0, 0, 1, 0xaa,
		0, 0, 0, 0, 0, 0, 0, 2,
	}, w.Bytes())
}

func TestReader_VectorTooLong(t *testing.T) {
	require := require.New(t)
	be := bls12381.NewBackend()

	for _, read := range []func(r *Reader[bls12381.Scalar, bls12381.Point]) int{
		func(r *Reader[bls12381.Scalar, bls12381.Point]) int { return len(r.Points()) },
		func(r *Reader[bls12381.Scalar, bls12381.Point]) int { return len(r.Scalars()) },
		func(r *Reader[bls12381.Scalar, bls12381.Point]) int { return len(r.VarBytes()) },
	} {
		w := NewWriter(4)
		w.Uint32(MaxVectorLen + 1)
		r := NewReader(be, w.Bytes())
		require.Zero(read(r))
		require.ErrorIs(r.Err(), ErrVectorTooLong)
	}

	// the bound itself is accepted, the missing payload is not
	w := NewWriter(4)
	w.Uint32(MaxVectorLen)
	r := NewReader(be, w.Bytes())
	require.Nil(r.VarBytes())
	require.ErrorIs(r.Err(), ErrShortBuffer)
}

func TestReader_Truncated(t *testing.T) {
	be, scalars, points := testValues(t)

	w := NewWriter(0)
	w.Uint64(9)
	Points(w, points)
	Scalars(w, scalars)
	full := w.Bytes()

	// every strict prefix fails without panicking
	for n := 0; n < len(full); n++ {
		r := NewReader(be, full[:n])
		require.NotPanics(t, func() {
			r.Uint64()
			r.Points()
			r.Scalars()
		})
		require.ErrorIs(t, r.Err(), ErrShortBuffer, "prefix %d", n)
	}

	r := NewReader(be, []byte{1, 2, 3})
	require.Nil(t, r.Raw(-1))
	require.ErrorIs(t, r.Err(), ErrShortBuffer)
}

func TestReader_StickyError(t *testing.T) {
	require := require.New(t)
	be := bls12381.NewBackend()

	w := NewWriter(0)
	w.Raw(bytes.Repeat([]byte{0xff}, bls12381.PointSize))
	w.Uint32(5)
	w.Raw(bytes.Repeat([]byte{0xff}, bls12381.ScalarSize))

	r := NewReader(be, w.Bytes())
	r.Point()
	first := r.Err()
	require.ErrorIs(first, bls12381.ErrInvalidPoint)

	// later reads return zero values and leave the first error in place
	require.Zero(r.Uint32())
	r.Scalar()
	require.Nil(r.Raw(1))
	require.Equal(first, r.Err())
	require.Len(r.Rest(), 4+bls12381.ScalarSize)

	r = NewReader(be, bytes.Repeat([]byte{0xff}, bls12381.ScalarSize))
	r.Scalar()
	require.ErrorIs(r.Err(), bls12381.ErrInvalidScalar)
}
