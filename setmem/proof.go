// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package setmem

import (
	"fmt"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/wire"
)

// Proof is a set membership proof. Every vector has one entry per bit of the
// padded list index.
type Proof[S arith.Scalar[S], P arith.Point[P, S]] struct {
	// Phi re-commits the member opening on the base selected by eta_phi.
	Phi P

	Cl []P
	Ca []P
	Cb []P
	Cd []P

	F  []S
	Za []S
	Zb []S
	Zd S
}

// Rounds returns the number of index bits the proof covers.
func (p *Proof[S, P]) Rounds() int {
	return len(p.Cl)
}

func (p *Proof[S, P]) wellFormed(n int) bool {
	return len(p.Cl) == n && len(p.Ca) == n && len(p.Cb) == n && len(p.Cd) == n &&
		len(p.F) == n && len(p.Za) == n && len(p.Zb) == n
}

// Encode writes phi, the four commitment vectors, the three response vectors
// and z_d.
func (p *Proof[S, P]) Encode(w *wire.Writer) {
	wire.Point(w, p.Phi)
	wire.Points(w, p.Cl)
	wire.Points(w, p.Ca)
	wire.Points(w, p.Cb)
	wire.Points(w, p.Cd)
	wire.Scalars(w, p.F)
	wire.Scalars(w, p.Za)
	wire.Scalars(w, p.Zb)
	wire.Scalar(w, p.Zd)
}

func (p *Proof[S, P]) Bytes() []byte {
	w := wire.NewWriter(512)
	p.Encode(w)
	return w.Bytes()
}

// DecodeFrom reads a proof from r.
func DecodeFrom[S arith.Scalar[S], P arith.Point[P, S]](r *wire.Reader[S, P]) (*Proof[S, P], error) {
	p := &Proof[S, P]{}
	p.Phi = r.Point()
	p.Cl = r.Points()
	p.Ca = r.Points()
	p.Cb = r.Points()
	p.Cd = r.Points()
	p.F = r.Scalars()
	p.Za = r.Scalars()
	p.Zb = r.Scalars()
	p.Zd = r.Scalar()
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
