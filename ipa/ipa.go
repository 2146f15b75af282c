// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ipa implements the inner product argument: a prover convinces a
// verifier that P = <a, G> + <b, H> + u*<a, b> by sending one (L, R) pair per
// halving round and the two final scalars.
package ipa

import (
	"errors"
	"fmt"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/transcript"
)

var (
	ErrNotPowerOfTwo = errors.New("vector length is not a power of two")
	ErrRoundMismatch = errors.New("round count does not match vector length")
)

// Proof is the compressed argument.
type Proof[S any, P any] struct {
	Ls []P
	Rs []P
	A  S
	B  S
}

// Prove runs the halving rounds on (a, b) against the bases (gs, hs) and the
// inner-product base u. Each round absorbs L and R into tr before deriving its
// challenge. A degenerate challenge is returned as
// transcript.ErrDegenerateChallenge so the caller can restart with fresh
// blinding.
func Prove[S arith.Scalar[S], P arith.Point[P, S]](
	be arith.Backend[S, P],
	tr *transcript.Transcript[S, P],
	gs, hs []P,
	u P,
	a, b []S,
) (*Proof[S, P], error) {
	n := len(a)
	if len(b) != n || len(gs) != n || len(hs) != n {
		return nil, arith.ErrLengthMismatch
	}
	if !arith.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, n)
	}

	// work on copies, folding in place
	a = append([]S(nil), a...)
	b = append([]S(nil), b...)
	gs = append([]P(nil), gs...)
	hs = append([]P(nil), hs...)

	rounds := arith.Log2(n)
	proof := &Proof[S, P]{
		Ls: make([]P, 0, rounds),
		Rs: make([]P, 0, rounds),
	}

	for n > 1 {
		half := n / 2
		aLo, aHi := a[:half], a[half:n]
		bLo, bHi := b[:half], b[half:n]
		gLo, gHi := gs[:half], gs[half:n]
		hLo, hHi := hs[:half], hs[half:n]

		cL, err := arith.InnerProduct(be.Zero(), aLo, bHi)
		if err != nil {
			return nil, err
		}
		cR, err := arith.InnerProduct(be.Zero(), aHi, bLo)
		if err != nil {
			return nil, err
		}

		l, err := be.MultiExp(concat(gHi, hLo, []P{u}), concat(aLo, bHi, []S{cL}))
		if err != nil {
			return nil, err
		}
		r, err := be.MultiExp(concat(gLo, hHi, []P{u}), concat(aHi, bLo, []S{cR}))
		if err != nil {
			return nil, err
		}
		proof.Ls = append(proof.Ls, l)
		proof.Rs = append(proof.Rs, r)

		tr.AppendPoint(l)
		tr.AppendPoint(r)
		w, err := tr.Challenge()
		if err != nil {
			return nil, err
		}
		wInv := w.Inverse()

		for i := 0; i < half; i++ {
			a[i] = aLo[i].Mul(w).Add(aHi[i].Mul(wInv))
			b[i] = bLo[i].Mul(wInv).Add(bHi[i].Mul(w))
			gs[i] = gLo[i].Mul(wInv).Add(gHi[i].Mul(w))
			hs[i] = hLo[i].Mul(w).Add(hHi[i].Mul(wInv))
		}
		n = half
	}

	proof.A = a[0]
	proof.B = b[0]
	return proof, nil
}

// Challenges replays the round challenges of a proof against tr.
func Challenges[S arith.Scalar[S], P arith.Point[P, S]](tr *transcript.Transcript[S, P], ls, rs []P) ([]S, error) {
	if len(ls) != len(rs) {
		return nil, arith.ErrLengthMismatch
	}
	ws := make([]S, len(ls))
	for k := range ls {
		tr.AppendPoint(ls[k])
		tr.AppendPoint(rs[k])
		w, err := tr.Challenge()
		if err != nil {
			return nil, err
		}
		ws[k] = w
	}
	return ws, nil
}

// SVector returns s_i = prod_k w_k^(+1 or -1), using +1 when the bit of i
// consumed in round k (most significant first) is set. The final folded G base
// is sum(s_i * G_i) and the final H base is sum(s_i^-1 * H_i).
func SVector[S arith.Scalar[S]](one S, ws []S, n int) ([]S, error) {
	rounds := len(ws)
	if n != 1<<rounds {
		return nil, fmt.Errorf("%w: %d rounds for %d entries", ErrRoundMismatch, rounds, n)
	}

	s := make([]S, n)
	s[0] = one
	for _, w := range ws {
		s[0] = s[0].Mul(w.Inverse())
	}

	wSq := make([]S, rounds)
	for k, w := range ws {
		wSq[k] = w.Square()
	}

	for i := 1; i < n; i++ {
		top := arith.Log2(i)
		s[i] = s[i-(1<<top)].Mul(wSq[rounds-1-top])
	}
	return s, nil
}

// Verify checks the argument for the commitment p directly. The range proof
// verifier folds the same equation into its batched multi-exponentiation
// instead of calling this.
func Verify[S arith.Scalar[S], P arith.Point[P, S]](
	be arith.Backend[S, P],
	tr *transcript.Transcript[S, P],
	gs, hs []P,
	u, p P,
	proof *Proof[S, P],
) bool {
	n := len(gs)
	if len(hs) != n || !arith.IsPowerOfTwo(n) || len(proof.Ls) != arith.Log2(n) {
		return false
	}

	ws, err := Challenges(tr, proof.Ls, proof.Rs)
	if err != nil {
		return false
	}
	s, err := SVector(be.One(), ws, n)
	if err != nil {
		return false
	}

	// sum(a*s_i*G_i) + sum(b/s_i*H_i) + ab*u - P - sum(w^2 L + w^-2 R) == 0
	points := make([]P, 0, 2*n+2+2*len(ws))
	scalars := make([]S, 0, cap(points))
	for i := 0; i < n; i++ {
		points = append(points, gs[i], hs[i])
		scalars = append(scalars, proof.A.Mul(s[i]), proof.B.Mul(s[i].Inverse()))
	}
	points = append(points, u, p)
	scalars = append(scalars, proof.A.Mul(proof.B), be.One().Neg())
	for k, w := range ws {
		wSq := w.Square()
		points = append(points, proof.Ls[k], proof.Rs[k])
		scalars = append(scalars, wSq.Neg(), wSq.Inverse().Neg())
	}

	acc, err := be.MultiExp(points, scalars)
	if err != nil {
		return false
	}
	return acc.IsIdentity()
}

func concat[T any](parts ...[]T) []T {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]T, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
