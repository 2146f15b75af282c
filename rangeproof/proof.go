// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rangeproof

import (
	"fmt"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/wire"
)

// Proof is a range proof over one or more value commitments.
type Proof[S arith.Scalar[S], P arith.Point[P, S]] struct {
	Vs []P

	A  P
	S  P
	T1 P
	T2 P

	TauX S
	Mu   S
	THat S

	Ls []P
	Rs []P
	// final inner product argument scalars
	AFinal S
	BFinal S
}

// WithSeed pairs a proof with the generator seed and the minimum value it was
// built against. Verification must use the same pair.
type WithSeed[S arith.Scalar[S], P arith.Point[P, S]] struct {
	Proof    *Proof[S, P]
	Seed     []byte
	MinValue uint64
}

// Clone returns a deep copy of the proof.
func (p *Proof[S, P]) Clone() *Proof[S, P] {
	c := *p
	c.Vs = append([]P(nil), p.Vs...)
	c.Ls = append([]P(nil), p.Ls...)
	c.Rs = append([]P(nil), p.Rs...)
	return &c
}

// Encode writes the proof in its fixed layout:
// Vs, Ls, Rs (each count-prefixed), A, S, T1, T2, tau_x, mu, t_hat, a, b.
func (p *Proof[S, P]) Encode(w *wire.Writer) {
	wire.Points(w, p.Vs)
	wire.Points(w, p.Ls)
	wire.Points(w, p.Rs)
	wire.Point(w, p.A)
	wire.Point(w, p.S)
	wire.Point(w, p.T1)
	wire.Point(w, p.T2)
	wire.Scalar(w, p.TauX)
	wire.Scalar(w, p.Mu)
	wire.Scalar(w, p.THat)
	wire.Scalar(w, p.AFinal)
	wire.Scalar(w, p.BFinal)
}

// Bytes returns the encoded proof.
func (p *Proof[S, P]) Bytes() []byte {
	w := wire.NewWriter(1024)
	p.Encode(w)
	return w.Bytes()
}

// DecodeFrom reads a proof from r.
func DecodeFrom[S arith.Scalar[S], P arith.Point[P, S]](r *wire.Reader[S, P]) (*Proof[S, P], error) {
	p := &Proof[S, P]{}
	p.Vs = r.Points()
	p.Ls = r.Points()
	p.Rs = r.Points()
	p.A = r.Point()
	p.S = r.Point()
	p.T1 = r.Point()
	p.T2 = r.Point()
	p.TauX = r.Scalar()
	p.Mu = r.Scalar()
	p.THat = r.Scalar()
	p.AFinal = r.Scalar()
	p.BFinal = r.Scalar()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return p, nil
}

// Decode parses a proof that must fill data exactly.
func Decode[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P], data []byte) (*Proof[S, P], error) {
	r := wire.NewReader(be, data)
	p, err := DecodeFrom(r)
	if err != nil {
		return nil, err
	}
	if len(r.Rest()) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrInvalidEncoding, len(r.Rest()))
	}
	return p, nil
}
