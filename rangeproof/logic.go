// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rangeproof implements Bulletproofs range proofs: committed values
// are shown to lie in [min, min+2^64) with a logarithmic-size proof. A proof
// built from a point seed also carries an encrypted memo that only the holder
// of the seed can recover together with the amount.
package rangeproof

import (
	"errors"

	log "github.com/luxfi/log"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/generators"
	"github.com/luxfi/blsct/pedersen"
)

const (
	// BitsPerValue is the bit length every value is decomposed into.
	BitsPerValue = 64

	DefaultMaxValues  = 16
	DefaultMaxRetries = 16
)

var (
	ErrNoValues             = errors.New("no values to prove")
	ErrTooManyValues        = errors.New("too many values in one proof")
	ErrMessageTooLong       = errors.New("message too long")
	ErrValueBelowMinimum    = errors.New("value below minimum")
	ErrGammaCount           = errors.New("gamma count does not match value count")
	ErrEmptyGammaSeed       = errors.New("empty gamma seed")
	ErrRetriesExhausted     = errors.New("challenge retries exhausted")
	ErrInnerProductMismatch = errors.New("inner product does not match polynomial evaluation")
	ErrInvalidEncoding      = errors.New("invalid range proof encoding")
)

var transcriptLabel = []byte("BLSCT_RANGE_PROOF")

// Option configures a Logic.
type Option func(*options)

type options struct {
	maxValues  int
	maxRetries int
	log        log.Logger
}

// WithMaxValues bounds the number of values per proof.
func WithMaxValues(n int) Option {
	return func(o *options) { o.maxValues = n }
}

// WithMaxRetries bounds the degenerate-challenge retries per proof.
func WithMaxRetries(n int) Option {
	return func(o *options) { o.maxRetries = n }
}

// WithLogger sets the logger retry events are reported to.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.log = l }
}

// Logic proves, verifies and recovers range proofs. It holds no per-proof
// state and is safe for concurrent use.
type Logic[S arith.Scalar[S], P arith.Point[P, S]] struct {
	be        arith.Backend[S, P]
	gf        *generators.Factory[S, P]
	committer *pedersen.Committer[S, P]

	maxValues  int
	maxRetries int
	log        log.Logger
}

// NewLogic returns range proof logic deriving its bases from gf.
func NewLogic[S arith.Scalar[S], P arith.Point[P, S]](gf *generators.Factory[S, P], opts ...Option) *Logic[S, P] {
	o := options{
		maxValues:  DefaultMaxValues,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = log.NewTestLogger(log.InfoLevel)
	}
	if limit := gf.MaxBases() / BitsPerValue; o.maxValues > limit {
		o.maxValues = limit
	}

	be := gf.Backend()
	return &Logic[S, P]{
		be:         be,
		gf:         gf,
		committer:  pedersen.NewCommitter(be),
		maxValues:  o.maxValues,
		maxRetries: o.maxRetries,
		log:        o.log,
	}
}

// Backend returns the algebraic backend.
func (l *Logic[S, P]) Backend() arith.Backend[S, P] {
	return l.be
}

// Generators returns the generator factory.
func (l *Logic[S, P]) Generators() *generators.Factory[S, P] {
	return l.gf
}

// numRounds returns the IPA round count for a proof over numValues values.
func numRounds(numValues int) int {
	return arith.Log2(arith.NextPowerOfTwo(numValues) * BitsPerValue)
}
