// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package arith defines the algebraic interface the proof engine is written
// against. Scalars live in the prime field of the group order, points in a
// prime-order group where the discrete log between independent generators is
// unknown. Both are value types: every operation returns a new value.
package arith

import (
	"errors"
	"math/big"
)

var (
	ErrLengthMismatch = errors.New("vector length mismatch")
	ErrEmptyVector    = errors.New("empty vector")
)

// Scalar is an element of the scalar field.
type Scalar[S any] interface {
	Add(S) S
	Sub(S) S
	Mul(S) S
	Neg() S
	// Inverse returns the multiplicative inverse; the inverse of zero is zero.
	Inverse() S
	Square() S
	IsZero() bool
	Equal(S) bool
	// Bytes returns the canonical big-endian encoding.
	Bytes() []byte
	// Uint64 returns the low 64 bits of the canonical integer.
	Uint64() uint64
	BigInt() *big.Int
}

// Point is an element of the commitment group.
type Point[P any, S any] interface {
	Add(P) P
	Sub(P) P
	Mul(S) P
	Neg() P
	IsIdentity() bool
	Equal(P) bool
	// Bytes returns the canonical compressed encoding.
	Bytes() []byte
}

// Backend constructs scalars and points and performs the operations that
// need more than one operand type.
type Backend[S Scalar[S], P Point[P, S]] interface {
	Zero() S
	One() S
	ScalarFromUint64(v uint64) S
	ScalarFromBigInt(v *big.Int) S
	// ScalarFromBytes decodes a canonical scalar encoding.
	ScalarFromBytes(b []byte) (S, error)
	// HashToScalar hashes the concatenation of data into the field.
	HashToScalar(data ...[]byte) S
	RandomScalar() (S, error)
	ScalarSize() int

	Generator() P
	Identity() P
	HashToPoint(msg, dst []byte) (P, error)
	// PointFromBytes decodes a compressed point and checks group membership.
	PointFromBytes(b []byte) (P, error)
	MultiExp(points []P, scalars []S) (P, error)
	PointSize() int
}
