// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package generators derives the public bases used by commitments and proofs.
//
// H is the group generator for every seed. G is hashed from the seed so each
// token commits its values on its own base. The vector bases Gi and Hi are
// shared by all seeds and derived once, up to MaxBases entries.
package generators

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/blsct/arith"
)

// MaxBases is the default number of vector bases a factory can hand out.
const MaxBases = 1024

var (
	ErrTooManyBases = errors.New("requested more vector bases than available")
	ErrHashToPoint  = errors.New("hash to point failed")
)

var (
	dstValue = []byte("BLSCT_XMD:SHA-256_SSWU_RO_GEN_G_")
	dstGi    = []byte("BLSCT_XMD:SHA-256_SSWU_RO_GEN_GI_")
	dstHi    = []byte("BLSCT_XMD:SHA-256_SSWU_RO_GEN_HI_")
)

// Generators is the basis for one seed. The slices are shared and must not be
// modified.
type Generators[P any] struct {
	G  P
	H  P
	Gi []P
	Hi []P
}

// GetGiSubset returns a copy of the first n Gi bases.
func (g Generators[P]) GetGiSubset(n int) ([]P, error) {
	if n > len(g.Gi) {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyBases, n, len(g.Gi))
	}
	out := make([]P, n)
	copy(out, g.Gi[:n])
	return out, nil
}

// GetHiSubset returns a copy of the first n Hi bases.
func (g Generators[P]) GetHiSubset(n int) ([]P, error) {
	if n > len(g.Hi) {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyBases, n, len(g.Hi))
	}
	out := make([]P, n)
	copy(out, g.Hi[:n])
	return out, nil
}

// Factory caches derived bases. It is safe for concurrent use.
type Factory[S arith.Scalar[S], P arith.Point[P, S]] struct {
	be       arith.Backend[S, P]
	maxBases int

	mu     sync.RWMutex
	values map[string]P
	gi     []P
	hi     []P
}

// NewFactory returns a factory handing out at most maxBases vector bases.
// A non-positive maxBases selects MaxBases.
func NewFactory[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P], maxBases int) *Factory[S, P] {
	if maxBases <= 0 {
		maxBases = MaxBases
	}
	return &Factory[S, P]{
		be:       be,
		maxBases: maxBases,
		values:   make(map[string]P),
	}
}

// Backend returns the algebraic backend the factory derives points with.
func (f *Factory[S, P]) Backend() arith.Backend[S, P] {
	return f.be
}

// MaxBases returns the vector basis capacity.
func (f *Factory[S, P]) MaxBases() int {
	return f.maxBases
}

// GetInstance returns the bases for seed. The result is a pure function of
// the seed.
func (f *Factory[S, P]) GetInstance(seed []byte) (Generators[P], error) {
	g, err := f.valueBase(seed)
	if err != nil {
		return Generators[P]{}, err
	}
	if err := f.ensureVectorBases(); err != nil {
		return Generators[P]{}, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return Generators[P]{
		G:  g,
		H:  f.be.Generator(),
		Gi: f.gi[:f.maxBases:f.maxBases],
		Hi: f.hi[:f.maxBases:f.maxBases],
	}, nil
}

func (f *Factory[S, P]) valueBase(seed []byte) (P, error) {
	key := string(seed)

	f.mu.RLock()
	g, ok := f.values[key]
	f.mu.RUnlock()
	if ok {
		return g, nil
	}

	g, err := f.be.HashToPoint(seed, dstValue)
	if err != nil {
		var zero P
		return zero, fmt.Errorf("%w: %v", ErrHashToPoint, err)
	}

	f.mu.Lock()
	f.values[key] = g
	f.mu.Unlock()
	return g, nil
}

func (f *Factory[S, P]) ensureVectorBases() error {
	f.mu.RLock()
	ready := len(f.gi) == f.maxBases
	f.mu.RUnlock()
	if ready {
		return nil
	}

	gi := make([]P, f.maxBases)
	hi := make([]P, f.maxBases)
	var idx [8]byte
	for i := 0; i < f.maxBases; i++ {
		binary.BigEndian.PutUint64(idx[:], uint64(i))

		p, err := f.be.HashToPoint(idx[:], dstGi)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrHashToPoint, err)
		}
		gi[i] = p

		p, err = f.be.HashToPoint(idx[:], dstHi)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrHashToPoint, err)
		}
		hi[i] = p
	}

	f.mu.Lock()
	if len(f.gi) != f.maxBases {
		f.gi, f.hi = gi, hi
	}
	f.mu.Unlock()
	return nil
}
