// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package arith

// InnerProduct returns sum(a_i * b_i).
func InnerProduct[S Scalar[S]](zero S, a, b []S) (S, error) {
	if len(a) != len(b) {
		return zero, ErrLengthMismatch
	}
	acc := zero
	for i := range a {
		acc = acc.Add(a[i].Mul(b[i]))
	}
	return acc, nil
}

// Hadamard returns the entry-wise product of a and b.
func Hadamard[S Scalar[S]](a, b []S) ([]S, error) {
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}
	out := make([]S, len(a))
	for i := range a {
		out[i] = a[i].Mul(b[i])
	}
	return out, nil
}

// AddVec returns the entry-wise sum of a and b.
func AddVec[S Scalar[S]](a, b []S) ([]S, error) {
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}
	out := make([]S, len(a))
	for i := range a {
		out[i] = a[i].Add(b[i])
	}
	return out, nil
}

// SubVec returns the entry-wise difference a - b.
func SubVec[S Scalar[S]](a, b []S) ([]S, error) {
	if len(a) != len(b) {
		return nil, ErrLengthMismatch
	}
	out := make([]S, len(a))
	for i := range a {
		out[i] = a[i].Sub(b[i])
	}
	return out, nil
}

// AddConst returns a_i + c for every entry.
func AddConst[S Scalar[S]](a []S, c S) []S {
	out := make([]S, len(a))
	for i := range a {
		out[i] = a[i].Add(c)
	}
	return out
}

// MulConst returns a_i * c for every entry.
func MulConst[S Scalar[S]](a []S, c S) []S {
	out := make([]S, len(a))
	for i := range a {
		out[i] = a[i].Mul(c)
	}
	return out
}

// Powers returns [1, x, x^2, ..., x^(n-1)].
func Powers[S Scalar[S]](one, x S, n int) []S {
	out := make([]S, n)
	if n == 0 {
		return out
	}
	out[0] = one
	for i := 1; i < n; i++ {
		out[i] = out[i-1].Mul(x)
	}
	return out
}

// Sum returns the sum of all entries.
func Sum[S Scalar[S]](zero S, a []S) S {
	acc := zero
	for _, v := range a {
		acc = acc.Add(v)
	}
	return acc
}

// Repeat returns a vector of n copies of v.
func Repeat[S any](v S, n int) []S {
	out := make([]S, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Invert returns the entry-wise inverse of a. Zero entries map to zero.
func Invert[S Scalar[S]](a []S) []S {
	out := make([]S, len(a))
	for i := range a {
		out[i] = a[i].Inverse()
	}
	return out
}

// SumPoints adds every point to the identity.
func SumPoints[P interface{ Add(P) P }](identity P, ps []P) P {
	acc := identity
	for _, p := range ps {
		acc = acc.Add(p)
	}
	return acc
}

// ScalePoints returns p_i * s_i for every entry.
func ScalePoints[P Point[P, S], S Scalar[S]](ps []P, ss []S) ([]P, error) {
	if len(ps) != len(ss) {
		return nil, ErrLengthMismatch
	}
	out := make([]P, len(ps))
	for i := range ps {
		out[i] = ps[i].Mul(ss[i])
	}
	return out, nil
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPowerOfTwo rounds n up to a power of two. Zero rounds to one.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Log2 returns floor(log2(n)) for n > 0.
func Log2(n int) int {
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}
	return k
}
