// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rangeproof

import (
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/ipa"
	"github.com/luxfi/blsct/transcript"
)

var errProofRejected = errors.New("range proof rejected")

// challenges are the verifier-side re-derivation of a proof's transcript.
type challenges[S any] struct {
	y, z, x, c S
	ws         []S
}

// Verify reports whether every proof in the batch is valid. Proofs are
// checked in parallel, one task each; the batch fails if any proof fails.
// An empty batch is valid.
func (l *Logic[S, P]) Verify(proofs []WithSeed[S, P]) bool {
	var g errgroup.Group
	for i := range proofs {
		p := proofs[i]
		g.Go(func() error {
			if !l.verifyOne(p) {
				return errProofRejected
			}
			return nil
		})
	}
	return g.Wait() == nil
}

// replay re-derives y, z, x, the IPA combining challenge and the round
// challenges from the proof's public elements.
func (l *Logic[S, P]) replay(p *Proof[S, P]) (challenges[S], error) {
	var ch challenges[S]
	var err error

	tr := transcript.New(l.be, transcriptLabel)
	tr.AppendPoints(p.Vs)
	tr.AppendPoint(p.A)
	tr.AppendPoint(p.S)
	if ch.y, err = tr.Challenge(); err != nil {
		return ch, err
	}
	if ch.z, err = tr.Challenge(); err != nil {
		return ch, err
	}
	tr.AppendPoint(p.T1)
	tr.AppendPoint(p.T2)
	if ch.x, err = tr.Challenge(); err != nil {
		return ch, err
	}
	tr.AppendScalar(p.TauX)
	tr.AppendScalar(p.Mu)
	tr.AppendScalar(p.THat)
	if ch.c, err = tr.Challenge(); err != nil {
		return ch, err
	}
	ch.ws, err = ipa.Challenges(tr, p.Ls, p.Rs)
	return ch, err
}

func (l *Logic[S, P]) verifyOne(ps WithSeed[S, P]) bool {
	be := l.be
	p := ps.Proof
	if p == nil || len(p.Vs) == 0 || len(p.Vs) > l.maxValues {
		return false
	}
	if len(p.Ls) != len(p.Rs) || len(p.Ls) != numRounds(len(p.Vs)) {
		return false
	}

	m := arith.NextPowerOfTwo(len(p.Vs))
	mn := m * BitsPerValue

	gens, err := l.gf.GetInstance(ps.Seed)
	if err != nil {
		return false
	}
	gi, err := gens.GetGiSubset(mn)
	if err != nil {
		return false
	}
	hi, err := gens.GetHiSubset(mn)
	if err != nil {
		return false
	}

	ch, err := l.replay(p)
	if err != nil {
		return false
	}
	s, err := ipa.SVector(be.One(), ch.ws, mn)
	if err != nil {
		return false
	}
	sInv, err := ipa.SVector(be.One(), arith.Invert(ch.ws), mn)
	if err != nil {
		return false
	}

	// wy weighs the polynomial check, wz the inner product check
	wy, err := be.RandomScalar()
	if err != nil {
		return false
	}
	wz, err := be.RandomScalar()
	if err != nil {
		return false
	}

	y, z, x := ch.y, ch.z, ch.x
	zSq := z.Square()
	zPows := arith.Powers(zSq, z, m)
	yPows := arith.Powers(be.One(), y, mn)
	yInvPows := arith.Powers(be.One(), y.Inverse(), mn)
	twoPows := arith.Powers(be.One(), be.ScalarFromUint64(2), BitsPerValue)

	// delta(y, z) = (z - z^2) * <1, y^mn> - sum_j z^(3+j) * <1, 2^n>
	sumTwos := arith.Sum(be.Zero(), twoPows)
	delta := z.Sub(zSq).Mul(arith.Sum(be.Zero(), yPows))
	for j := 0; j < m; j++ {
		delta = delta.Sub(zPows[j].Mul(z).Mul(sumTwos))
	}

	size := len(p.Vs) + 6 + 2*len(p.Ls) + 2*mn
	points := make([]P, 0, size)
	scalars := make([]S, 0, size)

	// sum_j z^(2+j) * (V_j - G*min) + G*(delta - t_hat) - H*tau_x + x*T1 + x^2*T2
	minValue := be.ScalarFromUint64(ps.MinValue)
	gCoeff := delta.Sub(p.THat)
	for j, v := range p.Vs {
		points = append(points, v)
		scalars = append(scalars, wy.Mul(zPows[j]))
		gCoeff = gCoeff.Sub(zPows[j].Mul(minValue))
	}
	gCoeff = wy.Mul(gCoeff)
	hCoeff := wy.Mul(p.TauX).Neg()

	points = append(points, p.T1, p.T2)
	scalars = append(scalars, wy.Mul(x), wy.Mul(x.Square()))

	// A + x*S - H*mu + G*c*(t_hat - a*b) + sum(w^2*L + w^-2*R)
	//   + sum((-z - a*s_i) * Gi_i) + sum((z + (z^(2+j)*2^i - b/s_i) * y^-i) * Hi_i)
	ab := p.AFinal.Mul(p.BFinal)
	gCoeff = gCoeff.Add(wz.Mul(ch.c).Mul(p.THat.Sub(ab)))
	hCoeff = hCoeff.Sub(wz.Mul(p.Mu))

	points = append(points, p.A, p.S, gens.G, gens.H)
	scalars = append(scalars, wz, wz.Mul(x), gCoeff, hCoeff)

	for k, w := range ch.ws {
		wSq := w.Square()
		points = append(points, p.Ls[k], p.Rs[k])
		scalars = append(scalars, wz.Mul(wSq), wz.Mul(wSq.Inverse()))
	}

	negZ := z.Neg()
	for i := 0; i < mn; i++ {
		gc := negZ.Sub(p.AFinal.Mul(s[i]))

		zTwo := zPows[i/BitsPerValue].Mul(twoPows[i%BitsPerValue])
		hc := z.Add(zTwo.Sub(p.BFinal.Mul(sInv[i])).Mul(yInvPows[i]))

		points = append(points, gi[i], hi[i])
		scalars = append(scalars, wz.Mul(gc), wz.Mul(hc))
	}

	acc, err := be.MultiExp(points, scalars)
	if err != nil {
		return false
	}
	return acc.IsIdentity()
}
