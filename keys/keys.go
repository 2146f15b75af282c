// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keys derives the one-time keys of stealth outputs.
//
// A destination publishes (V, S) with S = G*s and V = S*v. The sender picks
// r and publishes R = G*r and B = S*r. Both sides then share the nonce
// V*r = B*v, which seeds the output's range proof and its one-time spending
// key S + G*H(nonce).
package keys

import (
	"encoding/binary"
	"errors"

	"github.com/zeebo/blake3"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/arith/bls12381"
)

const saltSpendingKey = 0

var ErrInvalidKey = errors.New("invalid key encoding")

var be = bls12381.NewBackend()

// DoublePublicKey is a stealth destination.
type DoublePublicKey struct {
	View  bls12381.Point
	Spend bls12381.Point
}

// Bytes returns View followed by Spend.
func (k DoublePublicKey) Bytes() []byte {
	return append(k.View.Bytes(), k.Spend.Bytes()...)
}

// DoublePublicKeyFromBytes decodes the output of Bytes.
func DoublePublicKeyFromBytes(b []byte) (DoublePublicKey, error) {
	if len(b) != 2*bls12381.PointSize {
		return DoublePublicKey{}, ErrInvalidKey
	}
	view, err := be.PointFromBytes(b[:bls12381.PointSize])
	if err != nil {
		return DoublePublicKey{}, errors.Join(ErrInvalidKey, err)
	}
	spend, err := be.PointFromBytes(b[bls12381.PointSize:])
	if err != nil {
		return DoublePublicKey{}, errors.Join(ErrInvalidKey, err)
	}
	return DoublePublicKey{View: view, Spend: spend}, nil
}

// KeyPair holds the private view and spend scalars of a destination.
type KeyPair struct {
	View  bls12381.Scalar
	Spend bls12381.Scalar
}

// NewKeyPair draws fresh view and spend keys.
func NewKeyPair() (KeyPair, error) {
	v, err := be.RandomScalar()
	if err != nil {
		return KeyPair{}, err
	}
	s, err := be.RandomScalar()
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{View: v, Spend: s}, nil
}

// PublicKey returns the destination of k.
func (k KeyPair) PublicKey() DoublePublicKey {
	spend := be.Generator().Mul(k.Spend)
	return DoublePublicKey{View: spend.Mul(k.View), Spend: spend}
}

// OutputKeys are the public keys a sender attaches to an output.
type OutputKeys struct {
	EphemeralKey bls12381.Point
	BlindingKey  bls12381.Point
	SpendingKey  bls12381.Point
	Nonce        bls12381.Point
}

// DeriveOutputKeys returns the keys of an output to dest blinded by r.
func DeriveOutputKeys(dest DoublePublicKey, r bls12381.Scalar) OutputKeys {
	nonce := dest.View.Mul(r)
	return OutputKeys{
		EphemeralKey: be.Generator().Mul(r),
		BlindingKey:  dest.Spend.Mul(r),
		SpendingKey:  dest.Spend.Add(be.Generator().Mul(nonceHash(nonce))),
		Nonce:        nonce,
	}
}

// CalcNonce returns the nonce a recipient shares with the sender of an
// output with the given blinding key.
func CalcNonce(blindingKey bls12381.Point, view bls12381.Scalar) bls12381.Point {
	return blindingKey.Mul(view)
}

// ViewTag returns the 16-bit tag that lets a recipient skip outputs that
// are not theirs without deriving the spending key.
func ViewTag(nonce bls12381.Point) uint16 {
	h := blake3.Sum256(nonce.Bytes())
	return uint16(binary.LittleEndian.Uint64(h[:8]) & 0xffff)
}

// PrivateSpendingKey returns the scalar that signs for an output whose
// nonce is nonce.
func PrivateSpendingKey(nonce bls12381.Point, spend bls12381.Scalar) bls12381.Scalar {
	return spend.Add(nonceHash(nonce))
}

// IsMine reports whether an output with the given blinding key, spending key
// and view tag pays to k.
func (k KeyPair) IsMine(blindingKey, spendingKey bls12381.Point, viewTag uint16) bool {
	nonce := CalcNonce(blindingKey, k.View)
	if ViewTag(nonce) != viewTag {
		return false
	}
	expected := be.Generator().Mul(PrivateSpendingKey(nonce, k.Spend))
	return expected.Equal(spendingKey)
}

func nonceHash(nonce bls12381.Point) bls12381.Scalar {
	return arith.HashPointWithSalt[bls12381.Scalar, bls12381.Point](be, nonce, saltSpendingKey)
}
