// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rangeproof

import (
	"fmt"

	"github.com/luxfi/blsct/arith"
)

// Salts of the auxiliary blinding scalars derived from a gamma seed.
const (
	saltAlpha = 1
	saltRho   = 2
	saltTau1  = 3
	saltTau2  = 4
	saltGamma = 100
)

type seedKind uint8

const (
	seedPoint seedKind = iota + 1
	seedVector
)

// GammaSeed is the source of a proof's blinding material: either a single
// point that every blinding scalar is hashed from, or one explicit blinding
// factor per value.
type GammaSeed[S arith.Scalar[S], P arith.Point[P, S]] struct {
	kind   seedKind
	point  P
	gammas []S
}

// NewPointSeed returns a seed deriving all blinding material from p.
func NewPointSeed[S arith.Scalar[S], P arith.Point[P, S]](p P) GammaSeed[S, P] {
	return GammaSeed[S, P]{kind: seedPoint, point: p}
}

// NewVectorSeed returns a seed with one blinding factor per value.
func NewVectorSeed[S arith.Scalar[S], P arith.Point[P, S]](gammas []S) GammaSeed[S, P] {
	return GammaSeed[S, P]{kind: seedVector, gammas: append([]S(nil), gammas...)}
}

// Point returns the seed point when the point variant is active.
func (g GammaSeed[S, P]) Point() (P, bool) {
	return g.point, g.kind == seedPoint
}

// Gammas returns the explicit blinding factors when the vector variant is
// active.
func (g GammaSeed[S, P]) Gammas() ([]S, bool) {
	return g.gammas, g.kind == seedVector
}

// hashWithSalt derives an auxiliary blinding scalar.
func (g GammaSeed[S, P]) hashWithSalt(be arith.Backend[S, P], salt uint64) (S, error) {
	switch g.kind {
	case seedPoint:
		return arith.HashPointWithSalt[S, P](be, g.point, salt), nil
	case seedVector:
		buf := make([]byte, 0, len(g.gammas)*be.ScalarSize())
		for _, s := range g.gammas {
			buf = append(buf, s.Bytes()...)
		}
		return arith.HashWithSalt[S, P](be, buf, salt), nil
	default:
		var zero S
		return zero, ErrEmptyGammaSeed
	}
}

// blindingFactors returns the m value blinding factors for a proof over
// numValues real values. Point seeds derive every entry, vector seeds pad
// with zero.
func (g GammaSeed[S, P]) blindingFactors(be arith.Backend[S, P], numValues, m int) ([]S, error) {
	out := make([]S, m)
	switch g.kind {
	case seedPoint:
		for i := 0; i < m; i++ {
			out[i] = arith.HashPointWithSalt[S, P](be, g.point, saltGamma+uint64(i))
		}
	case seedVector:
		if len(g.gammas) != numValues {
			return nil, fmt.Errorf("%w: %d gammas for %d values", ErrGammaCount, len(g.gammas), numValues)
		}
		copy(out, g.gammas)
		for i := numValues; i < m; i++ {
			out[i] = be.Zero()
		}
	default:
		return nil, ErrEmptyGammaSeed
	}
	return out, nil
}

type nonces[S any] struct {
	alpha, rho, tau1, tau2 S
}

func (g GammaSeed[S, P]) nonces(be arith.Backend[S, P]) (nonces[S], error) {
	var n nonces[S]
	var err error
	if n.alpha, err = g.hashWithSalt(be, saltAlpha); err != nil {
		return n, err
	}
	if n.rho, err = g.hashWithSalt(be, saltRho); err != nil {
		return n, err
	}
	if n.tau1, err = g.hashWithSalt(be, saltTau1); err != nil {
		return n, err
	}
	n.tau2, err = g.hashWithSalt(be, saltTau2)
	return n, err
}
