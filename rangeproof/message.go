// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rangeproof

import (
	"math/big"

	"github.com/luxfi/blsct/arith"
)

// The first msg1Size bytes of a message ride in alpha above the first value,
// the rest rides in tau1. The message length sits above msg1 in alpha so that
// zero bytes survive recovery.
const (
	msg1Size       = 23
	msg2Size       = 31
	MaxMessageSize = msg1Size + msg2Size

	lengthShift = 64 + 8*msg1Size
)

var msg1Mask = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 8*msg1Size), big.NewInt(1))

func splitMessage(message []byte) (msg1, msg2 []byte) {
	if len(message) <= msg1Size {
		return message, nil
	}
	return message[:msg1Size], message[msg1Size:]
}

// computeAlpha returns nonceAlpha + (len << 248 | msg1 << 64 | v0).
func computeAlpha[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P], message []byte, v0 uint64, nonceAlpha S) S {
	msg1, _ := splitMessage(message)
	packed := new(big.Int).SetUint64(uint64(len(message)))
	packed.Lsh(packed, lengthShift-64)
	packed.Or(packed, new(big.Int).SetBytes(msg1))
	packed.Lsh(packed, 64)
	packed.Or(packed, new(big.Int).SetUint64(v0))
	return nonceAlpha.Add(be.ScalarFromBigInt(packed))
}

// msg2Scalar returns the part of the message folded into tau1.
func msg2Scalar[S arith.Scalar[S], P arith.Point[P, S]](be arith.Backend[S, P], message []byte) S {
	_, msg2 := splitMessage(message)
	return be.ScalarFromBigInt(new(big.Int).SetBytes(msg2))
}

// unpackMessage splits the alpha slot into the first value, the message
// length and msg1, and rebuilds the message byte for byte. It fails when a
// part does not fit the length, which is what a wrong nonce produces.
func unpackMessage(packed, msg2 *big.Int) (uint64, []byte, bool) {
	length := new(big.Int).Rsh(packed, lengthShift)
	if !length.IsUint64() || length.Uint64() > MaxMessageSize {
		return 0, nil, false
	}
	n := int(length.Uint64())
	n1 := min(n, msg1Size)
	n2 := n - n1

	v0 := new(big.Int).And(packed, new(big.Int).SetUint64(^uint64(0))).Uint64()
	msg1 := new(big.Int).Rsh(packed, 64)
	msg1.And(msg1, msg1Mask)
	if msg1.BitLen() > 8*n1 || msg2.Sign() < 0 || msg2.BitLen() > 8*n2 {
		return 0, nil, false
	}

	message := make([]byte, n)
	msg1.FillBytes(message[:n1])
	msg2.FillBytes(message[n1:])
	return v0, message, true
}
