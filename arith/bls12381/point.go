// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bls12381

import (
	"encoding/hex"

	bls "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// PointSize is the compressed encoding size of a G1 point.
const PointSize = bls.SizeOfG1AffineCompressed

// Point is an element of the BLS12-381 G1 group.
type Point struct {
	p bls.G1Affine
}

func (a Point) Add(b Point) Point {
	var r Point
	r.p.Add(&a.p, &b.p)
	return r
}

func (a Point) Sub(b Point) Point {
	var r Point
	r.p.Sub(&a.p, &b.p)
	return r
}

func (a Point) Mul(s Scalar) Point {
	var r Point
	r.p.ScalarMultiplication(&a.p, s.BigInt())
	return r
}

func (a Point) Neg() Point {
	var r Point
	r.p.Neg(&a.p)
	return r
}

func (a Point) IsIdentity() bool {
	return a.p.IsInfinity()
}

func (a Point) Equal(b Point) bool {
	return a.p.Equal(&b.p)
}

// Bytes returns the 48-byte compressed encoding.
func (a Point) Bytes() []byte {
	b := a.p.Bytes()
	return b[:]
}

func (a Point) String() string {
	return hex.EncodeToString(a.Bytes())
}
