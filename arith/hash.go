// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package arith

import "encoding/binary"

// HashWithSalt hashes data followed by an 8-byte big-endian salt into a scalar.
func HashWithSalt[S Scalar[S], P Point[P, S]](be Backend[S, P], data []byte, salt uint64) S {
	var s [8]byte
	binary.BigEndian.PutUint64(s[:], salt)
	return be.HashToScalar(data, s[:])
}

// HashPointWithSalt hashes the encoding of p with a salt.
func HashPointWithSalt[S Scalar[S], P Point[P, S]](be Backend[S, P], p P, salt uint64) S {
	return HashWithSalt[S, P](be, p.Bytes(), salt)
}
