// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bls12381

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// ScalarSize is the canonical encoding size of a scalar.
const ScalarSize = fr.Bytes

// Scalar is an element of the BLS12-381 scalar field.
type Scalar struct {
	e fr.Element
}

// NewScalar returns the scalar v.
func NewScalar(v uint64) Scalar {
	var s Scalar
	s.e.SetUint64(v)
	return s
}

func (s Scalar) Add(o Scalar) Scalar {
	var r Scalar
	r.e.Add(&s.e, &o.e)
	return r
}

func (s Scalar) Sub(o Scalar) Scalar {
	var r Scalar
	r.e.Sub(&s.e, &o.e)
	return r
}

func (s Scalar) Mul(o Scalar) Scalar {
	var r Scalar
	r.e.Mul(&s.e, &o.e)
	return r
}

func (s Scalar) Neg() Scalar {
	var r Scalar
	r.e.Neg(&s.e)
	return r
}

func (s Scalar) Inverse() Scalar {
	var r Scalar
	r.e.Inverse(&s.e)
	return r
}

func (s Scalar) Square() Scalar {
	var r Scalar
	r.e.Square(&s.e)
	return r
}

func (s Scalar) IsZero() bool {
	return s.e.IsZero()
}

func (s Scalar) Equal(o Scalar) bool {
	return s.e.Equal(&o.e)
}

// Bytes returns the 32-byte big-endian encoding.
func (s Scalar) Bytes() []byte {
	b := s.e.Bytes()
	return b[:]
}

func (s Scalar) Uint64() uint64 {
	b := s.e.Bytes()
	return binary.BigEndian.Uint64(b[ScalarSize-8:])
}

func (s Scalar) BigInt() *big.Int {
	return s.e.BigInt(new(big.Int))
}

func (s Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}
