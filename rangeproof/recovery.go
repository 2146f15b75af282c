// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rangeproof

import (
	log "github.com/luxfi/log"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/transcript"
)

// AmountRecoveryRequest asks to recover the amount and memo from a single
// value proof using the nonce it was built with.
type AmountRecoveryRequest[S arith.Scalar[S], P arith.Point[P, S]] struct {
	ID    int
	Proof *Proof[S, P]
	// Seed selects the value base the commitment was made on.
	Seed  []byte
	Nonce GammaSeed[S, P]
}

// AmountRecoveryResult is a successfully recovered amount.
type AmountRecoveryResult[S any] struct {
	ID      int
	Amount  uint64
	Gamma   S
	Message []byte
}

// RecoverAmounts attempts every request and returns the successful ones in
// request order. Requests that are malformed, built with another nonce or
// over more than one value produce no result.
func (l *Logic[S, P]) RecoverAmounts(reqs []AmountRecoveryRequest[S, P]) []AmountRecoveryResult[S] {
	var out []AmountRecoveryResult[S]
	for _, req := range reqs {
		res, ok := l.recoverOne(req)
		if !ok {
			l.log.Debug("amount recovery skipped request",
				log.Int("id", req.ID),
			)
			continue
		}
		out = append(out, res)
	}
	return out
}

func (l *Logic[S, P]) recoverOne(req AmountRecoveryRequest[S, P]) (AmountRecoveryResult[S], bool) {
	be := l.be
	var res AmountRecoveryResult[S]

	p := req.Proof
	if p == nil || len(p.Vs) != 1 {
		return res, false
	}
	if len(p.Ls) == 0 || len(p.Ls) != len(p.Rs) {
		return res, false
	}

	tr := transcript.New(be, transcriptLabel)
	tr.AppendPoints(p.Vs)
	tr.AppendPoint(p.A)
	tr.AppendPoint(p.S)
	if _, err := tr.Challenge(); err != nil {
		return res, false
	}
	z, err := tr.Challenge()
	if err != nil {
		return res, false
	}
	tr.AppendPoint(p.T1)
	tr.AppendPoint(p.T2)
	x, err := tr.Challenge()
	if err != nil {
		return res, false
	}

	ns, err := req.Nonce.nonces(be)
	if err != nil {
		return res, false
	}
	gammas, err := req.Nonce.blindingFactors(be, 1, 1)
	if err != nil {
		return res, false
	}
	gamma := gammas[0]

	// mu = alpha + rho*x, alpha = nonce_alpha + (len << 248 | msg1 << 64 | v0)
	msg1V0 := p.Mu.Sub(ns.rho.Mul(x)).Sub(ns.alpha)

	// tau_x = tau2*x^2 + (nonce_tau1 + msg2)*x + z^2*gamma
	tau1 := p.TauX.Sub(ns.tau2.Mul(x.Square())).Sub(z.Square().Mul(gamma)).Mul(x.Inverse())
	msg2 := tau1.Sub(ns.tau1)

	amount, message, ok := unpackMessage(msg1V0.BigInt(), msg2.BigInt())
	if !ok {
		return res, false
	}

	gens, err := l.gf.GetInstance(req.Seed)
	if err != nil {
		return res, false
	}
	if !l.committer.CommitUint64(gens, amount, gamma).Equal(p.Vs[0]) {
		return res, false
	}

	res.ID = req.ID
	res.Amount = amount
	res.Gamma = gamma
	res.Message = message
	return res, true
}
