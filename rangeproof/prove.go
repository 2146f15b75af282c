// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rangeproof

import (
	"errors"
	"fmt"

	log "github.com/luxfi/log"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/generators"
	"github.com/luxfi/blsct/ipa"
	"github.com/luxfi/blsct/transcript"
)

// proverState is everything fixed before the first challenge. A retry
// restarts from it with fresh sL, sR.
type proverState[S arith.Scalar[S], P arith.Point[P, S]] struct {
	m, mn   int
	gens    generators.Generators[P]
	gi, hi  []P
	gammas  []S
	nonces  nonces[S]
	alpha   S
	msg2    S
	aL, aR  []S
	vs      []P
	base    *transcript.Transcript[S, P]
	twoPows []S
}

// Prove builds a proof that every value minus minValue lies in [0, 2^64).
// The commitments are G*v + H*gamma on the bases selected by seed. message is
// embedded for recovery by the holder of nonce.
func (l *Logic[S, P]) Prove(vs []uint64, nonce GammaSeed[S, P], message []byte, seed []byte, minValue uint64) (*Proof[S, P], error) {
	switch {
	case len(vs) == 0:
		return nil, ErrNoValues
	case len(vs) > l.maxValues:
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyValues, len(vs), l.maxValues)
	case len(message) > MaxMessageSize:
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLong, len(message), MaxMessageSize)
	}
	for _, v := range vs {
		if v < minValue {
			return nil, fmt.Errorf("%w: %d < %d", ErrValueBelowMinimum, v, minValue)
		}
	}

	st, err := l.setup(vs, nonce, message, seed, minValue)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < l.maxRetries; attempt++ {
		proof, err := l.proveOnce(st, st.base.Clone())
		if errors.Is(err, transcript.ErrDegenerateChallenge) {
			l.log.Debug("range proof challenge degenerate, retrying",
				log.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			return nil, err
		}
		return proof, nil
	}
	return nil, fmt.Errorf("%w: %d attempts", ErrRetriesExhausted, l.maxRetries)
}

func (l *Logic[S, P]) setup(vs []uint64, nonce GammaSeed[S, P], message []byte, seed []byte, minValue uint64) (*proverState[S, P], error) {
	be := l.be
	m := arith.NextPowerOfTwo(len(vs))
	mn := m * BitsPerValue

	gens, err := l.gf.GetInstance(seed)
	if err != nil {
		return nil, err
	}
	gi, err := gens.GetGiSubset(mn)
	if err != nil {
		return nil, err
	}
	hi, err := gens.GetHiSubset(mn)
	if err != nil {
		return nil, err
	}

	gammas, err := nonce.blindingFactors(be, len(vs), m)
	if err != nil {
		return nil, err
	}
	ns, err := nonce.nonces(be)
	if err != nil {
		return nil, err
	}

	// padding commits to minValue so every commitment proves a zero offset
	padded := make([]uint64, m)
	copy(padded, vs)
	for j := len(vs); j < m; j++ {
		padded[j] = minValue
	}

	st := &proverState[S, P]{
		m:       m,
		mn:      mn,
		gens:    gens,
		gi:      gi,
		hi:      hi,
		gammas:  gammas,
		nonces:  ns,
		alpha:   computeAlpha(be, message, padded[0], ns.alpha),
		msg2:    msg2Scalar(be, message),
		aL:      make([]S, mn),
		aR:      make([]S, mn),
		vs:      make([]P, m),
		base:    transcript.New(be, transcriptLabel),
		twoPows: arith.Powers(be.One(), be.ScalarFromUint64(2), BitsPerValue),
	}

	one := be.One()
	for j, v := range padded {
		st.vs[j] = l.committer.CommitUint64(gens, v, gammas[j])
		st.base.AppendPoint(st.vs[j])

		shifted := v - minValue
		for i := 0; i < BitsPerValue; i++ {
			if (shifted>>i)&1 == 1 {
				st.aL[j*BitsPerValue+i] = one
			} else {
				st.aL[j*BitsPerValue+i] = be.Zero()
			}
			st.aR[j*BitsPerValue+i] = st.aL[j*BitsPerValue+i].Sub(one)
		}
	}
	return st, nil
}

func (l *Logic[S, P]) proveOnce(st *proverState[S, P], tr *transcript.Transcript[S, P]) (*Proof[S, P], error) {
	be := l.be
	mn := st.mn
	gens := st.gens

	proof := &Proof[S, P]{Vs: append([]P(nil), st.vs...)}

	a, err := l.committer.VectorCommit(st.gi, st.aL, st.hi, st.aR, gens.H, st.alpha)
	if err != nil {
		return nil, err
	}
	proof.A = a

	sL := make([]S, mn)
	sR := make([]S, mn)
	for i := 0; i < mn; i++ {
		if sL[i], err = be.RandomScalar(); err != nil {
			return nil, err
		}
		if sR[i], err = be.RandomScalar(); err != nil {
			return nil, err
		}
	}
	s, err := l.committer.VectorCommit(st.gi, sL, st.hi, sR, gens.H, st.nonces.rho)
	if err != nil {
		return nil, err
	}
	proof.S = s

	tr.AppendPoint(proof.A)
	tr.AppendPoint(proof.S)
	y, err := tr.Challenge()
	if err != nil {
		return nil, err
	}
	z, err := tr.Challenge()
	if err != nil {
		return nil, err
	}

	// l(X) = (aL - z) + sL*X
	// r(X) = y^n o (aR + z + sR*X) + z^(2+j) * 2^i
	l0 := arith.AddConst(st.aL, z.Neg())
	l1 := sL

	yPows := arith.Powers(be.One(), y, mn)
	zPows := arith.Powers(z.Square(), z, st.m)
	zTwos := make([]S, mn)
	for j := 0; j < st.m; j++ {
		for i := 0; i < BitsPerValue; i++ {
			zTwos[j*BitsPerValue+i] = zPows[j].Mul(st.twoPows[i])
		}
	}

	r0, err := arith.Hadamard(yPows, arith.AddConst(st.aR, z))
	if err != nil {
		return nil, err
	}
	if r0, err = arith.AddVec(r0, zTwos); err != nil {
		return nil, err
	}
	r1, err := arith.Hadamard(yPows, sR)
	if err != nil {
		return nil, err
	}

	t0, err := arith.InnerProduct(be.Zero(), l0, r0)
	if err != nil {
		return nil, err
	}
	t1a, err := arith.InnerProduct(be.Zero(), l0, r1)
	if err != nil {
		return nil, err
	}
	t1b, err := arith.InnerProduct(be.Zero(), l1, r0)
	if err != nil {
		return nil, err
	}
	t2, err := arith.InnerProduct(be.Zero(), l1, r1)
	if err != nil {
		return nil, err
	}
	t1 := t1a.Add(t1b)

	tau1 := st.nonces.tau1.Add(st.msg2)
	tau2 := st.nonces.tau2
	proof.T1 = l.committer.Commit(gens, t1, tau1)
	proof.T2 = l.committer.Commit(gens, t2, tau2)

	tr.AppendPoint(proof.T1)
	tr.AppendPoint(proof.T2)
	x, err := tr.Challenge()
	if err != nil {
		return nil, err
	}

	lx, err := arith.AddVec(l0, arith.MulConst(l1, x))
	if err != nil {
		return nil, err
	}
	rx, err := arith.AddVec(r0, arith.MulConst(r1, x))
	if err != nil {
		return nil, err
	}

	tHat, err := arith.InnerProduct(be.Zero(), lx, rx)
	if err != nil {
		return nil, err
	}
	if !tHat.Equal(t0.Add(t1.Mul(x)).Add(t2.Mul(x.Square()))) {
		return nil, ErrInnerProductMismatch
	}
	proof.THat = tHat

	// tau_x = tau2*x^2 + tau1*x + sum(z^(2+j) * gamma_j)
	tauX := tau2.Mul(x.Square()).Add(tau1.Mul(x))
	for j := 0; j < st.m; j++ {
		tauX = tauX.Add(zPows[j].Mul(st.gammas[j]))
	}
	proof.TauX = tauX
	proof.Mu = st.alpha.Add(st.nonces.rho.Mul(x))

	tr.AppendScalar(proof.TauX)
	tr.AppendScalar(proof.Mu)
	tr.AppendScalar(proof.THat)
	c, err := tr.Challenge()
	if err != nil {
		return nil, err
	}

	// run the argument on H' = Hi o y^-i with u = G*c
	yInv := y.Inverse()
	yInvPows := arith.Powers(be.One(), yInv, mn)
	hPrime, err := arith.ScalePoints(st.hi, yInvPows)
	if err != nil {
		return nil, err
	}

	arg, err := ipa.Prove(be, tr, st.gi, hPrime, gens.G.Mul(c), lx, rx)
	if err != nil {
		return nil, err
	}
	proof.Ls = arg.Ls
	proof.Rs = arg.Rs
	proof.AFinal = arg.A
	proof.BFinal = arg.B
	return proof, nil
}
