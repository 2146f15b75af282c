// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pedersen provides Pedersen commitments over a generator basis.
package pedersen

import (
	"sync"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/generators"
)

// Committer creates and opens Pedersen commitments.
type Committer[S arith.Scalar[S], P arith.Point[P, S]] struct {
	be arith.Backend[S, P]

	// Statistics
	TotalCommitments   uint64
	TotalVerifications uint64

	mu sync.RWMutex
}

// NewCommitter returns a committer for the backend.
func NewCommitter[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P]) *Committer[S, P] {
	return &Committer[S, P]{be: be}
}

// Commit creates C = G*value + H*gamma.
func (c *Committer[S, P]) Commit(gens generators.Generators[P], value, gamma S) P {
	c.mu.Lock()
	c.TotalCommitments++
	c.mu.Unlock()

	return gens.G.Mul(value).Add(gens.H.Mul(gamma))
}

// CommitUint64 commits to a plain amount.
func (c *Committer[S, P]) CommitUint64(gens generators.Generators[P], value uint64, gamma S) P {
	return c.Commit(gens, c.be.ScalarFromUint64(value), gamma)
}

// Verify checks the opening (value, gamma) of commitment.
func (c *Committer[S, P]) Verify(gens generators.Generators[P], commitment P, value, gamma S) bool {
	c.mu.Lock()
	c.TotalVerifications++
	c.mu.Unlock()

	return commitment.Equal(gens.G.Mul(value).Add(gens.H.Mul(gamma)))
}

// VectorCommit creates C = sum(gi_j * a_j) + sum(hi_j * b_j) + h * gamma.
// Either vector may be empty.
func (c *Committer[S, P]) VectorCommit(gi []P, a []S, hi []P, b []S, h P, gamma S) (P, error) {
	if len(gi) != len(a) || len(hi) != len(b) {
		var zero P
		return zero, arith.ErrLengthMismatch
	}

	points := make([]P, 0, len(gi)+len(hi)+1)
	scalars := make([]S, 0, len(a)+len(b)+1)
	points = append(points, gi...)
	points = append(points, hi...)
	points = append(points, h)
	scalars = append(scalars, a...)
	scalars = append(scalars, b...)
	scalars = append(scalars, gamma)

	c.mu.Lock()
	c.TotalCommitments++
	c.mu.Unlock()

	return c.be.MultiExp(points, scalars)
}

// Sum adds commitments homomorphically.
func (c *Committer[S, P]) Sum(commitments []P) P {
	return arith.SumPoints(c.be.Identity(), commitments)
}

// VerifyBalance reports whether sum(inputs) == sum(outputs). It only holds
// when the blinding factors cancel as well as the values.
func (c *Committer[S, P]) VerifyBalance(inputs, outputs []P) bool {
	return c.Sum(inputs).Equal(c.Sum(outputs))
}

// Stats returns the commitment and verification counters.
func (c *Committer[S, P]) Stats() (totalCommitments, totalVerifications uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.TotalCommitments, c.TotalVerifications
}
