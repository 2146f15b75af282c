// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package setmem proves that a commitment is one element of a public ordered
// list without revealing which one.
//
// The proof is a one-out-of-many argument over C_i = Ys[i] - phi where
// phi = G_phi*m + H*f re-commits the member's opening on a base selected by
// the caller. Exactly one C_i is then a multiple of G - G_phi.
package setmem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/generators"
)

const (
	// DefaultMaxSetSize bounds the padded list size.
	DefaultMaxSetSize = 1024
	DefaultMaxRetries = 16
)

var (
	ErrInvalidTargetSize = errors.New("invalid target size")
	ErrSetTooLarge       = errors.New("set too large")
	ErrEmptySet          = errors.New("empty set")
	ErrNotMember         = errors.New("commitment is not in the set")
	ErrRetriesExhausted  = errors.New("challenge retries exhausted")
	ErrInvalidEncoding   = errors.New("invalid set membership proof encoding")
)

var (
	transcriptLabel = []byte("BLSCT_SET_MEM_PROOF")
	bitSeed         = []byte("BLSCT_SET_MEM_PROOF_BITS")
	dstDummy        = []byte("BLSCT_XMD:SHA-256_SSWU_RO_SET_MEM_DUMMY_")
)

// Setup is the immutable context every prove and verify call runs against.
// Build it once and share it.
type Setup[S arith.Scalar[S], P arith.Point[P, S]] struct {
	be      arith.Backend[S, P]
	gf      *generators.Factory[S, P]
	maxSize int
	retries int

	// G, H open the listed commitments; Gc commits the index bits.
	G  P
	H  P
	Gc P

	mu      sync.RWMutex
	dummies []P
}

// NewSetup derives the bases: listed commitments open on the generators of
// valueSeed, index bits are committed on a dedicated base.
func NewSetup[S arith.Scalar[S], P arith.Point[P, S]](gf *generators.Factory[S, P], valueSeed []byte, maxSize int) (*Setup[S, P], error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSetSize
	}
	if !arith.IsPowerOfTwo(maxSize) {
		return nil, fmt.Errorf("%w: max size %d", ErrInvalidTargetSize, maxSize)
	}

	value, err := gf.GetInstance(valueSeed)
	if err != nil {
		return nil, err
	}
	bits, err := gf.GetInstance(bitSeed)
	if err != nil {
		return nil, err
	}
	return &Setup[S, P]{
		be:      gf.Backend(),
		gf:      gf,
		maxSize: maxSize,
		retries: DefaultMaxRetries,
		G:       value.G,
		H:       value.H,
		Gc:      bits.G,
	}, nil
}

// Backend returns the algebraic backend.
func (s *Setup[S, P]) Backend() arith.Backend[S, P] {
	return s.be
}

// MaxSize returns the largest padded list size.
func (s *Setup[S, P]) MaxSize() int {
	return s.maxSize
}

// Commit returns G*m + H*f on the listed-commitment bases.
func (s *Setup[S, P]) Commit(m, f S) P {
	return s.G.Mul(m).Add(s.H.Mul(f))
}

// phiBase returns the base phi re-commits the member value on.
func (s *Setup[S, P]) phiBase(etaPhi []byte) (P, error) {
	gens, err := s.gf.GetInstance(etaPhi)
	if err != nil {
		var zero P
		return zero, err
	}
	return gens.G, nil
}

// ExtendYs pads ys to targetSize with deterministic dummy elements. The
// original elements keep their positions. targetSize must be a power of two
// no smaller than len(ys).
func (s *Setup[S, P]) ExtendYs(ys []P, targetSize int) ([]P, error) {
	switch {
	case targetSize == 0, !arith.IsPowerOfTwo(targetSize):
		return nil, fmt.Errorf("%w: %d is not a power of two", ErrInvalidTargetSize, targetSize)
	case targetSize < len(ys):
		return nil, fmt.Errorf("%w: %d < %d", ErrInvalidTargetSize, targetSize, len(ys))
	case targetSize > s.maxSize:
		return nil, fmt.Errorf("%w: %d > %d", ErrSetTooLarge, targetSize, s.maxSize)
	}

	dummies, err := s.dummyElements(targetSize)
	if err != nil {
		return nil, err
	}
	out := make([]P, targetSize)
	copy(out, ys)
	copy(out[len(ys):], dummies[len(ys):targetSize])
	return out, nil
}

// dummyElements returns the first n dummy elements; element i is hashed from
// its position.
func (s *Setup[S, P]) dummyElements(n int) ([]P, error) {
	s.mu.RLock()
	if len(s.dummies) >= n {
		out := s.dummies[:n:n]
		s.mu.RUnlock()
		return out, nil
	}
	have := len(s.dummies)
	s.mu.RUnlock()

	more := make([]P, 0, n-have)
	var idx [8]byte
	for i := have; i < n; i++ {
		binary.BigEndian.PutUint64(idx[:], uint64(i))
		p, err := s.be.HashToPoint(idx[:], dstDummy)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", generators.ErrHashToPoint, err)
		}
		more = append(more, p)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.dummies) < n {
		grown := make([]P, n)
		copy(grown, s.dummies[:have])
		copy(grown[have:], more)
		s.dummies = grown
	}
	return s.dummies[:n:n], nil
}

// pad extends ys to the next power of two, at least two.
func (s *Setup[S, P]) pad(ys []P) ([]P, error) {
	if len(ys) == 0 {
		return nil, ErrEmptySet
	}
	size := arith.NextPowerOfTwo(len(ys))
	if size < 2 {
		size = 2
	}
	return s.ExtendYs(ys, size)
}
