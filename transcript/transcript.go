// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package transcript implements a Fiat-Shamir transcript over a running
// BLAKE3 state.
package transcript

import (
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/zeebo/blake3"

	"github.com/luxfi/blsct/arith"
)

// ErrDegenerateChallenge is returned when a derived challenge is zero. The
// caller re-randomizes its blinding and retries.
var ErrDegenerateChallenge = errors.New("degenerate challenge")

// Transcript accumulates proof elements and derives challenges from them.
type Transcript[S arith.Scalar[S], P arith.Point[P, S]] struct {
	be arith.Backend[S, P]
	h  *blake3.Hasher
}

// New returns a transcript bound to the domain label.
func New[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P], label []byte) *Transcript[S, P] {
	t := &Transcript[S, P]{be: be, h: blake3.New()}
	t.AppendBytes(label)
	return t
}

// AppendBytes absorbs a length-prefixed byte string.
func (t *Transcript[S, P]) AppendBytes(b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	_, _ = t.h.Write(n[:])
	_, _ = t.h.Write(b)
}

func (t *Transcript[S, P]) AppendPoint(p P) {
	t.AppendBytes(p.Bytes())
}

func (t *Transcript[S, P]) AppendPoints(ps []P) {
	for _, p := range ps {
		t.AppendPoint(p)
	}
}

func (t *Transcript[S, P]) AppendScalar(s S) {
	t.AppendBytes(s.Bytes())
}

// Challenge derives a scalar from the current state and absorbs it, so two
// consecutive challenges differ.
func (t *Transcript[S, P]) Challenge() (S, error) {
	wide := make([]byte, 64)
	_, _ = t.h.Digest().Read(wide)

	c := t.be.ScalarFromBigInt(new(big.Int).SetBytes(wide))
	t.AppendScalar(c)
	if c.IsZero() {
		return c, ErrDegenerateChallenge
	}
	return c, nil
}

// Clone returns an independent copy of the transcript state.
func (t *Transcript[S, P]) Clone() *Transcript[S, P] {
	return &Transcript[S, P]{be: t.be, h: t.h.Clone()}
}
