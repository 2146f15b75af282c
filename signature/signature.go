// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package signature implements BLS signatures with public keys in G1 and
// signatures in G2. Messages are prefixed with the signer's public key, so
// distinct messages under one aggregate signature can share a key without
// rogue-key attacks. The balance and fee domain messages are signed without
// the prefix: signatures on them under keys k1..kn aggregate to a signature
// under k1+...+kn, which is what merging transactions relies on.
package signature

import (
	"bytes"
	"errors"

	circl "github.com/cloudflare/circl/ecc/bls12381"

	"github.com/luxfi/blsct/arith/bls12381"
)

// SignatureSize is the compressed G2 encoding length.
const SignatureSize = 96

var ErrInvalidSignature = errors.New("invalid signature encoding")

var (
	be = bls12381.NewBackend()

	// negG1 is -g1, the fixed first pairing operand of every batch check.
	negG1 = func() circl.G1 {
		g := *circl.G1Generator()
		g.Neg()
		return g
	}()
)

var (
	dstAugmented = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_AUG_")
	dstBasic     = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_NUL_")
)

// BalanceMessage is signed with the accumulated blinding factor of a
// transaction to prove its commitments balance.
var BalanceMessage = domainMessage("BLSCTBALANCE")

// FeeMessage is signed by the key a fee predicate declares.
var FeeMessage = domainMessage("BLSCTFEE")

// domainMessage pads tag with ASCII zeros to 48 bytes before and 80 bytes
// total.
func domainMessage(tag string) []byte {
	msg := make([]byte, 80)
	for i := range msg {
		msg[i] = '0'
	}
	copy(msg[48:], tag)
	return msg
}

// Signature is an element of G2.
type Signature struct {
	p circl.G2
}

// Identity returns the empty aggregate.
func Identity() Signature {
	var s Signature
	s.p.SetIdentity()
	return s
}

// FromBytes decodes a compressed signature and checks subgroup membership.
func FromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureSize {
		return s, ErrInvalidSignature
	}
	if err := s.p.SetBytes(b); err != nil {
		return s, errors.Join(ErrInvalidSignature, err)
	}
	return s, nil
}

func (s Signature) Bytes() []byte {
	return s.p.BytesCompressed()
}

func (s Signature) Equal(o Signature) bool {
	return s.p.IsEqual(&o.p)
}

// PublicKey returns the G1 public key of sk.
func PublicKey(sk bls12381.Scalar) bls12381.Point {
	return be.Generator().Mul(sk)
}

// Sign signs pk(sk) || msg, or msg alone for the domain messages.
func Sign(sk bls12381.Scalar, msg []byte) Signature {
	h := hashMessage(PublicKey(sk), msg)

	var k circl.Scalar
	k.SetBytes(sk.Bytes())

	var s Signature
	s.p.ScalarMult(&k, &h)
	return s
}

// SignBalance signs BalanceMessage with the accumulated blinding factor.
func SignBalance(gamma bls12381.Scalar) Signature {
	return Sign(gamma, BalanceMessage)
}

// SignFee signs FeeMessage.
func SignFee(sk bls12381.Scalar) Signature {
	return Sign(sk, FeeMessage)
}

func isDomainMessage(msg []byte) bool {
	return bytes.Equal(msg, BalanceMessage) || bytes.Equal(msg, FeeMessage)
}

func hashMessage(pk bls12381.Point, msg []byte) circl.G2 {
	var h circl.G2
	if isDomainMessage(msg) {
		h.Hash(msg, dstBasic)
	} else {
		h.Hash(augment(pk, msg), dstAugmented)
	}
	return h
}

// Aggregate sums signatures.
func Aggregate(sigs ...Signature) Signature {
	agg := Identity()
	for i := range sigs {
		agg.p.Add(&agg.p, &sigs[i].p)
	}
	return agg
}

// Verify checks a single signature.
func Verify(pk bls12381.Point, msg []byte, sig Signature) bool {
	return VerifyBatch([]bls12381.Point{pk}, [][]byte{msg}, sig)
}

// VerifyBatch checks that sig aggregates one signature per (pks[i], msgs[i])
// pair: e(-g1, sig) * prod e(pk_i, H(m_i')) == 1, where m_i' is the message
// as Sign hashes it.
func VerifyBatch(pks []bls12381.Point, msgs [][]byte, sig Signature) bool {
	if len(pks) == 0 || len(pks) != len(msgs) {
		return false
	}

	listG1 := make([]*circl.G1, len(pks)+1)
	listG2 := make([]*circl.G2, len(pks)+1)

	g := negG1
	listG1[0] = &g
	sigPoint := sig.p
	listG2[0] = &sigPoint

	for i, pk := range pks {
		var pkPoint circl.G1
		if err := pkPoint.SetBytes(pk.Bytes()); err != nil {
			return false
		}
		msgHash := hashMessage(pk, msgs[i])

		listG1[i+1] = &pkPoint
		listG2[i+1] = &msgHash
	}

	exponents := make([]int, len(listG1))
	for i := range exponents {
		exponents[i] = 1
	}
	return circl.ProdPairFrac(listG1, listG2, exponents).IsIdentity()
}

func augment(pk bls12381.Point, msg []byte) []byte {
	pkb := pk.Bytes()
	out := make([]byte, 0, len(pkb)+len(msg))
	out = append(out, pkb...)
	return append(out, msg...)
}
