// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package setmem

import (
	"errors"
	"fmt"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/transcript"
)

type witness[S any, P any] struct {
	index int
	m     S
	cs    []P
	b     P
}

// Prove shows that sigma = G*m + H*f is an element of ys at its position in
// the list. ys is padded to a power of two first. etaFiatShamir seeds the
// transcript and etaPhi selects the base phi is committed on. It fails with
// ErrNotMember when sigma is not in ys.
func (s *Setup[S, P]) Prove(ys []P, sigma P, m, f S, etaFiatShamir S, etaPhi []byte) (*Proof[S, P], error) {
	padded, err := s.pad(ys)
	if err != nil {
		return nil, err
	}
	index := -1
	for i, y := range ys {
		if y.Equal(sigma) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, ErrNotMember
	}
	return s.prove(padded, index, m, f, etaFiatShamir, etaPhi)
}

// prove runs the argument for the element at index of the padded list.
func (s *Setup[S, P]) prove(padded []P, index int, m, f S, etaFiatShamir S, etaPhi []byte) (*Proof[S, P], error) {
	gPhi, err := s.phiBase(etaPhi)
	if err != nil {
		return nil, err
	}

	phi := gPhi.Mul(m).Add(s.H.Mul(f))
	w := witness[S, P]{
		index: index,
		m:     m,
		cs:    make([]P, len(padded)),
		b:     s.G.Sub(gPhi),
	}
	for i, y := range padded {
		w.cs[i] = y.Sub(phi)
	}

	for attempt := 0; attempt < s.retries; attempt++ {
		proof, err := s.proveOnce(padded, phi, w, etaFiatShamir, etaPhi)
		if errors.Is(err, transcript.ErrDegenerateChallenge) {
			continue
		}
		return proof, err
	}
	return nil, fmt.Errorf("%w: %d attempts", ErrRetriesExhausted, s.retries)
}

func (s *Setup[S, P]) proveOnce(ys []P, phi P, w witness[S, P], etaFiatShamir S, etaPhi []byte) (*Proof[S, P], error) {
	be := s.be
	n := arith.Log2(len(ys))

	random := func(k int) ([]S, error) {
		out := make([]S, k)
		for i := range out {
			r, err := be.RandomScalar()
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	r, err := random(n)
	if err != nil {
		return nil, err
	}
	a, err := random(n)
	if err != nil {
		return nil, err
	}
	sa, err := random(n)
	if err != nil {
		return nil, err
	}
	t, err := random(n)
	if err != nil {
		return nil, err
	}
	rho, err := random(n)
	if err != nil {
		return nil, err
	}

	l := make([]S, n)
	for j := 0; j < n; j++ {
		if (w.index>>j)&1 == 1 {
			l[j] = be.One()
		} else {
			l[j] = be.Zero()
		}
	}

	proof := &Proof[S, P]{
		Phi: phi,
		Cl:  make([]P, n),
		Ca:  make([]P, n),
		Cb:  make([]P, n),
		Cd:  make([]P, n),
		F:   make([]S, n),
		Za:  make([]S, n),
		Zb:  make([]S, n),
	}
	for j := 0; j < n; j++ {
		proof.Cl[j] = s.Gc.Mul(l[j]).Add(s.H.Mul(r[j]))
		proof.Ca[j] = s.Gc.Mul(a[j]).Add(s.H.Mul(sa[j]))
		proof.Cb[j] = s.Gc.Mul(l[j].Mul(a[j])).Add(s.H.Mul(t[j]))
	}

	// p_i(X) = prod_j f_{j,i_j}(X) with f_{j,1} = l_j*X + a_j and
	// f_{j,0} = (1 - l_j)*X - a_j; coefficient k of every p_i feeds Cd_k.
	coeffs := polynomials(be, l, a, len(ys))
	column := make([]S, len(ys))
	for k := 0; k < n; k++ {
		for i := range ys {
			column[i] = coeffs[i][k]
		}
		acc, err := be.MultiExp(w.cs, column)
		if err != nil {
			return nil, err
		}
		proof.Cd[k] = acc.Add(w.b.Mul(rho[k]))
	}

	tr := s.transcript(ys, etaFiatShamir, etaPhi, proof)
	x, err := tr.Challenge()
	if err != nil {
		return nil, err
	}

	for j := 0; j < n; j++ {
		proof.F[j] = l[j].Mul(x).Add(a[j])
		proof.Za[j] = r[j].Mul(x).Add(sa[j])
		proof.Zb[j] = r[j].Mul(x.Sub(proof.F[j])).Add(t[j])
	}

	// z_d = m*x^n - sum_k rho_k*x^k
	xPows := arith.Powers(be.One(), x, n+1)
	zd := w.m.Mul(xPows[n])
	for k := 0; k < n; k++ {
		zd = zd.Sub(rho[k].Mul(xPows[k]))
	}
	proof.Zd = zd
	return proof, nil
}

// polynomials returns the coefficients, lowest first, of p_i for every i.
func polynomials[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P], l, a []S, size int) [][]S {
	n := len(l)
	out := make([][]S, size)
	for i := 0; i < size; i++ {
		poly := make([]S, n+1)
		poly[0] = be.One()
		for k := 1; k <= n; k++ {
			poly[k] = be.Zero()
		}
		for j := 0; j < n; j++ {
			var c0, c1 S
			if (i>>j)&1 == 1 {
				c0, c1 = a[j], l[j]
			} else {
				c0, c1 = a[j].Neg(), be.One().Sub(l[j])
			}
			for k := j + 1; k >= 1; k-- {
				poly[k] = poly[k].Mul(c0).Add(poly[k-1].Mul(c1))
			}
			poly[0] = poly[0].Mul(c0)
		}
		out[i] = poly
	}
	return out
}

func (s *Setup[S, P]) transcript(ys []P, etaFiatShamir S, etaPhi []byte, p *Proof[S, P]) *transcript.Transcript[S, P] {
	tr := transcript.New(s.be, transcriptLabel)
	tr.AppendScalar(etaFiatShamir)
	tr.AppendBytes(etaPhi)
	tr.AppendPoints(ys)
	tr.AppendPoint(p.Phi)
	tr.AppendPoints(p.Cl)
	tr.AppendPoints(p.Ca)
	tr.AppendPoints(p.Cb)
	tr.AppendPoints(p.Cd)
	return tr
}

// Verify reports whether proof shows membership of its committed value in ys
// under the same eta_fiat_shamir and eta_phi used to prove.
func (s *Setup[S, P]) Verify(ys []P, etaFiatShamir S, etaPhi []byte, proof *Proof[S, P]) bool {
	if proof == nil {
		return false
	}
	be := s.be
	padded, err := s.pad(ys)
	if err != nil {
		return false
	}
	n := arith.Log2(len(padded))
	if !proof.wellFormed(n) {
		return false
	}
	gPhi, err := s.phiBase(etaPhi)
	if err != nil {
		return false
	}

	x, err := s.transcript(padded, etaFiatShamir, etaPhi, proof).Challenge()
	if err != nil {
		return false
	}
	xPows := arith.Powers(be.One(), x, n+1)

	size := len(padded) + 5 + 4*n
	points := make([]P, 0, size)
	scalars := make([]S, 0, size)

	// sum_i p_i(x)*(Ys_i - phi) - sum_k x^k*Cd_k - (G - G_phi)*z_d
	xMinusF := make([]S, n)
	for j := 0; j < n; j++ {
		xMinusF[j] = x.Sub(proof.F[j])
	}
	coefSum := be.Zero()
	for i, y := range padded {
		c := be.One()
		for j := 0; j < n; j++ {
			if (i>>j)&1 == 1 {
				c = c.Mul(proof.F[j])
			} else {
				c = c.Mul(xMinusF[j])
			}
		}
		coefSum = coefSum.Add(c)
		points = append(points, y)
		scalars = append(scalars, c)
	}
	points = append(points, proof.Phi, s.G, gPhi)
	scalars = append(scalars, coefSum.Neg(), proof.Zd.Neg(), proof.Zd)
	for k := 0; k < n; k++ {
		points = append(points, proof.Cd[k])
		scalars = append(scalars, xPows[k].Neg())
	}

	// per bit, weighted:
	//   x*Cl + Ca - Gc*f - H*z_a
	//   (x - f)*Cl + Cb - H*z_b
	gcCoeff := be.Zero()
	hCoeff := be.Zero()
	for j := 0; j < n; j++ {
		alpha, err := be.RandomScalar()
		if err != nil {
			return false
		}
		beta, err := be.RandomScalar()
		if err != nil {
			return false
		}
		points = append(points, proof.Cl[j], proof.Ca[j], proof.Cb[j])
		scalars = append(scalars, alpha.Mul(x).Add(beta.Mul(xMinusF[j])), alpha, beta)
		gcCoeff = gcCoeff.Sub(alpha.Mul(proof.F[j]))
		hCoeff = hCoeff.Sub(alpha.Mul(proof.Za[j]).Add(beta.Mul(proof.Zb[j])))
	}
	points = append(points, s.Gc, s.H)
	scalars = append(scalars, gcCoeff, hCoeff)

	acc, err := be.MultiExp(points, scalars)
	if err != nil {
		return false
	}
	return acc.IsIdentity()
}
