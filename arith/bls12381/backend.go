// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bls12381 implements the arith backend on the G1 group of BLS12-381
// using gnark-crypto. The group generator doubles as the BLS public key base,
// so a commitment blinding sum can be used directly as a signing key.
package bls12381

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/zeebo/blake3"

	"github.com/luxfi/blsct/arith"
)

var (
	ErrInvalidScalar = errors.New("invalid scalar encoding")
	ErrInvalidPoint  = errors.New("invalid point encoding")
)

var _ arith.Backend[Scalar, Point] = (*Backend)(nil)

// Backend is the gnark-crypto implementation of arith.Backend.
type Backend struct {
	g1 bls.G1Affine
}

// NewBackend returns a backend using the canonical G1 generator.
func NewBackend() *Backend {
	_, _, g1, _ := bls.Generators()
	return &Backend{g1: g1}
}

func (*Backend) Zero() Scalar {
	return Scalar{}
}

func (*Backend) One() Scalar {
	var s Scalar
	s.e.SetOne()
	return s
}

func (*Backend) ScalarFromUint64(v uint64) Scalar {
	return NewScalar(v)
}

func (*Backend) ScalarFromBigInt(v *big.Int) Scalar {
	var s Scalar
	s.e.SetBigInt(v)
	return s
}

func (*Backend) ScalarFromBytes(b []byte) (Scalar, error) {
	var s Scalar
	if err := s.e.SetBytesCanonical(b); err != nil {
		return Scalar{}, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
	}
	return s, nil
}

// HashToScalar reduces a 64-byte blake3 digest of the input, which keeps the
// bias negligible.
func (*Backend) HashToScalar(data ...[]byte) Scalar {
	h := blake3.New()
	for _, d := range data {
		_, _ = h.Write(d)
	}
	wide := make([]byte, 64)
	_, _ = h.Digest().Read(wide)

	var s Scalar
	s.e.SetBigInt(new(big.Int).SetBytes(wide))
	return s
}

func (*Backend) RandomScalar() (Scalar, error) {
	var s Scalar
	if _, err := s.e.SetRandom(); err != nil {
		return Scalar{}, err
	}
	return s, nil
}

func (*Backend) ScalarSize() int {
	return ScalarSize
}

func (b *Backend) Generator() Point {
	return Point{p: b.g1}
}

func (*Backend) Identity() Point {
	var p Point
	p.p.SetInfinity()
	return p
}

func (*Backend) HashToPoint(msg, dst []byte) (Point, error) {
	g, err := bls.HashToG1(msg, dst)
	if err != nil {
		return Point{}, err
	}
	return Point{p: g}, nil
}

func (*Backend) PointFromBytes(b []byte) (Point, error) {
	if len(b) != PointSize {
		return Point{}, ErrInvalidPoint
	}
	var p Point
	if _, err := p.p.SetBytes(b); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return p, nil
}

func (b *Backend) MultiExp(points []Point, scalars []Scalar) (Point, error) {
	if len(points) != len(scalars) {
		return Point{}, arith.ErrLengthMismatch
	}
	if len(points) == 0 {
		return b.Identity(), nil
	}

	ps := make([]bls.G1Affine, len(points))
	ss := make([]fr.Element, len(scalars))
	for i := range points {
		ps[i] = points[i].p
		ss[i] = scalars[i].e
	}

	var r Point
	if _, err := r.p.MultiExp(ps, ss, ecc.MultiExpConfig{}); err != nil {
		return Point{}, err
	}
	return r, nil
}

func (*Backend) PointSize() int {
	return PointSize
}
