// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pos builds and checks proofs of stake: a set membership proof that
// the staker owns one of the staked commitments and a range proof that the
// committed stake meets the minimum implied by the kernel hash.
package pos

import (
	"errors"
	"fmt"
	"strconv"

	log "github.com/luxfi/log"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/setmem"
	"github.com/luxfi/blsct/wire"
)

var ErrInvalidEncoding = errors.New("invalid proof of stake encoding")

// VerificationResult is the outcome of a proof of stake check.
type VerificationResult uint32

const (
	None VerificationResult = iota
	Valid
	RangeProofInvalid
	SetMemProofInvalid
)

func (r VerificationResult) String() string {
	switch r {
	case Valid:
		return "Valid"
	case RangeProofInvalid:
		return "Invalid Range Proof"
	case SetMemProofInvalid:
		return "Invalid Set Membership Proof"
	default:
		return "None"
	}
}

// ProofOfStake is serialized as the set membership proof followed by the
// range proof.
type ProofOfStake[S arith.Scalar[S], P arith.Point[P, S]] struct {
	SetMemProof *setmem.Proof[S, P]
	// RangeProof carries no value commitments; phi stands in at verification.
	RangeProof *rangeproof.Proof[S, P]
}

func (p *ProofOfStake[S, P]) Encode(w *wire.Writer) {
	p.SetMemProof.Encode(w)
	p.RangeProof.Encode(w)
}

func (p *ProofOfStake[S, P]) Bytes() []byte {
	w := wire.NewWriter(2048)
	p.Encode(w)
	return w.Bytes()
}

// Decode parses a proof of stake that must fill data exactly.
func Decode[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P], data []byte) (*ProofOfStake[S, P], error) {
	r := wire.NewReader(be, data)
	sm, err := setmem.DecodeFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	rp, err := rangeproof.DecodeFrom(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if len(r.Rest()) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidEncoding, len(r.Rest()))
	}
	return &ProofOfStake[S, P]{SetMemProof: sm, RangeProof: rp}, nil
}

// Logic creates and verifies proofs of stake.
type Logic[S arith.Scalar[S], P arith.Point[P, S]] struct {
	setup *setmem.Setup[S, P]
	rp    *rangeproof.Logic[S, P]
	log   log.Logger
}

func NewLogic[S arith.Scalar[S], P arith.Point[P, S]](setup *setmem.Setup[S, P], rp *rangeproof.Logic[S, P], logger log.Logger) *Logic[S, P] {
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &Logic[S, P]{setup: setup, rp: rp, log: logger}
}

// Create proves that G*m + H*f is among staked and that m meets the minimum
// stake for kernel k.
func (l *Logic[S, P]) Create(staked []P, etaFiatShamir S, etaPhi []byte, m, f S, k Kernel) (*ProofOfStake[S, P], error) {
	sigma := l.setup.Commit(m, f)
	sm, err := l.setup.Prove(staked, sigma, m, f, etaFiatShamir, etaPhi)
	if err != nil {
		return nil, err
	}

	kernelHash := CalculateKernelHash(k.PrevTime, k.StakeModifier, sm.Phi.Bytes(), k.Time)
	minValue := minValue64(CalculateMinValue(kernelHash, k.NextTarget))

	l.log.Debug("creating proof of stake",
		log.Int("stakedCommitments", len(staked)),
		log.String("minValue", strconv.FormatUint(minValue, 10)),
	)

	rp, err := l.rp.Prove(
		[]uint64{m.Uint64()},
		rangeproof.NewVectorSeed[S, P]([]S{f}),
		nil,
		etaPhi,
		minValue,
	)
	if err != nil {
		return nil, err
	}
	rp.Vs = nil
	return &ProofOfStake[S, P]{SetMemProof: sm, RangeProof: rp}, nil
}

// Verify recomputes the kernel hash from k and checks both proofs, set
// membership first.
func (l *Logic[S, P]) Verify(staked []P, etaFiatShamir S, etaPhi []byte, proof *ProofOfStake[S, P], k Kernel) VerificationResult {
	if proof == nil || proof.SetMemProof == nil || proof.RangeProof == nil {
		return None
	}
	kernelHash := CalculateKernelHash(k.PrevTime, k.StakeModifier, proof.SetMemProof.Phi.Bytes(), k.Time)
	return l.VerifyWithKernelHash(staked, etaFiatShamir, etaPhi, proof, kernelHash, k.NextTarget)
}

// VerifyWithKernelHash checks proof against a precomputed kernel hash.
func (l *Logic[S, P]) VerifyWithKernelHash(staked []P, etaFiatShamir S, etaPhi []byte, proof *ProofOfStake[S, P], kernelHash [32]byte, nextTarget uint32) VerificationResult {
	if proof == nil || proof.SetMemProof == nil || proof.RangeProof == nil {
		return None
	}
	res := Valid
	switch {
	case !l.setup.Verify(staked, etaFiatShamir, etaPhi, proof.SetMemProof):
		res = SetMemProofInvalid
	case !l.VerifyKernelHash(proof.RangeProof, kernelHash, nextTarget, etaPhi, proof.SetMemProof.Phi):
		res = RangeProofInvalid
	}
	l.log.Debug("verified proof of stake",
		log.String("result", res.String()),
	)
	return res
}

// VerifyKernelHash checks that phi commits to at least the minimum value the
// kernel hash and target imply.
func (l *Logic[S, P]) VerifyKernelHash(rp *rangeproof.Proof[S, P], kernelHash [32]byte, nextTarget uint32, etaPhi []byte, phi P) bool {
	minValue := minValue64(CalculateMinValue(kernelHash, nextTarget))
	withValue := rp.Clone()
	withValue.Vs = []P{phi}
	return l.rp.Verify([]rangeproof.WithSeed[S, P]{{
		Proof:    withValue,
		Seed:     etaPhi,
		MinValue: minValue,
	}})
}
