// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bls12381

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalar_FieldOps(t *testing.T) {
	be := NewBackend()

	a := be.ScalarFromUint64(7)
	b := be.ScalarFromUint64(5)

	require.Equal(t, uint64(12), a.Add(b).Uint64())
	require.Equal(t, uint64(2), a.Sub(b).Uint64())
	require.Equal(t, uint64(35), a.Mul(b).Uint64())
	require.Equal(t, uint64(49), a.Square().Uint64())
	require.True(t, a.Add(a.Neg()).IsZero())
	require.True(t, a.Mul(a.Inverse()).Equal(be.One()))
	require.True(t, be.Zero().Inverse().IsZero())
}

func TestScalar_BytesRoundTrip(t *testing.T) {
	be := NewBackend()

	s, err := be.RandomScalar()
	require.NoError(t, err)

	enc := s.Bytes()
	require.Len(t, enc, ScalarSize)

	dec, err := be.ScalarFromBytes(enc)
	require.NoError(t, err)
	require.True(t, s.Equal(dec))

	_, err = be.ScalarFromBytes(enc[:31])
	require.ErrorIs(t, err, ErrInvalidScalar)
}

func TestScalar_Uint64LowBits(t *testing.T) {
	be := NewBackend()

	v := new(big.Int).Lsh(big.NewInt(3), 64)
	v.Add(v, big.NewInt(42))
	s := be.ScalarFromBigInt(v)

	require.Equal(t, uint64(42), s.Uint64())
	require.Equal(t, 0, v.Cmp(s.BigInt()))
}

func TestBackend_HashToScalarDeterministic(t *testing.T) {
	be := NewBackend()

	a := be.HashToScalar([]byte("seed"), []byte{1})
	b := be.HashToScalar([]byte("seed"), []byte{1})
	c := be.HashToScalar([]byte("seed"), []byte{2})

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestPoint_GroupOps(t *testing.T) {
	be := NewBackend()
	g := be.Generator()

	two := be.ScalarFromUint64(2)
	three := be.ScalarFromUint64(3)

	require.True(t, g.Add(g).Equal(g.Mul(two)))
	require.True(t, g.Mul(three).Sub(g).Equal(g.Mul(two)))
	require.True(t, g.Add(g.Neg()).IsIdentity())
	require.True(t, be.Identity().Add(g).Equal(g))
	require.True(t, g.Mul(be.Zero()).IsIdentity())
}

func TestPoint_BytesRoundTrip(t *testing.T) {
	be := NewBackend()

	p, err := be.HashToPoint([]byte("point"), []byte("TEST_DST"))
	require.NoError(t, err)

	enc := p.Bytes()
	require.Len(t, enc, PointSize)

	dec, err := be.PointFromBytes(enc)
	require.NoError(t, err)
	require.True(t, p.Equal(dec))

	id, err := be.PointFromBytes(be.Identity().Bytes())
	require.NoError(t, err)
	require.True(t, id.IsIdentity())

	_, err = be.PointFromBytes(make([]byte, 10))
	require.ErrorIs(t, err, ErrInvalidPoint)
}

func TestBackend_MultiExpMatchesNaive(t *testing.T) {
	be := NewBackend()

	points := make([]Point, 5)
	scalars := make([]Scalar, 5)
	naive := be.Identity()
	for i := range points {
		p, err := be.HashToPoint([]byte{byte(i)}, []byte("TEST_DST"))
		require.NoError(t, err)
		s, err := be.RandomScalar()
		require.NoError(t, err)
		points[i] = p
		scalars[i] = s
		naive = naive.Add(p.Mul(s))
	}

	got, err := be.MultiExp(points, scalars)
	require.NoError(t, err)
	require.True(t, naive.Equal(got))

	empty, err := be.MultiExp(nil, nil)
	require.NoError(t, err)
	require.True(t, empty.IsIdentity())

	_, err = be.MultiExp(points, scalars[:2])
	require.Error(t, err)
}
