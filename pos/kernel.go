// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pos

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/zeebo/blake3"
)

// Kernel holds the chain parameters a staking proof is bound to.
type Kernel struct {
	PrevTime      uint32
	StakeModifier uint64
	Time          uint32
	// NextTarget is the compact difficulty target of the block being staked.
	NextTarget uint32
}

// CalculateKernelHash hashes the previous block time, the stake modifier,
// the staked commitment phi and the block time.
func CalculateKernelHash(prevTime uint32, stakeModifier uint64, phi []byte, time uint32) [32]byte {
	h := blake3.New()
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], prevTime)
	_, _ = h.Write(buf[:4])
	binary.BigEndian.PutUint64(buf[:], stakeModifier)
	_, _ = h.Write(buf[:])
	_, _ = h.Write(phi)
	binary.BigEndian.PutUint32(buf[:4], time)
	_, _ = h.Write(buf[:4])

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SetCompact decodes a compact target: the high byte is a base-256 exponent,
// the low 23 bits the mantissa and bit 23 a sign. negative and overflow
// report encodings that do not name a valid target.
func SetCompact(compact uint32) (target *uint256.Int, negative bool, overflow bool) {
	size := compact >> 24
	word := uint64(compact & 0x007fffff)

	target = new(uint256.Int)
	if size <= 3 {
		word >>= 8 * (3 - size)
		target.SetUint64(word)
	} else {
		target.SetUint64(word)
		if size-3 < 32 {
			target.Lsh(target, uint(8*(size-3)))
		} else {
			target.Clear()
		}
	}

	negative = word != 0 && compact&0x00800000 != 0
	overflow = word != 0 && (size > 34 ||
		(word > 0xff && size > 33) ||
		(word > 0xffff && size > 32))
	return target, negative, overflow
}

// CalculateMinValue returns kernelHash / target, the smallest stake that
// meets the target. A zero or invalid target yields zero.
func CalculateMinValue(kernelHash [32]byte, nextTarget uint32) *uint256.Int {
	if nextTarget == 0 {
		return new(uint256.Int)
	}
	target, negative, overflow := SetCompact(nextTarget)
	if negative || overflow || target.IsZero() {
		return new(uint256.Int)
	}
	hash := new(uint256.Int).SetBytes32(kernelHash[:])
	return hash.Div(hash, target)
}

// minValue64 truncates a min value to the 64-bit range proofs work in.
func minValue64(v *uint256.Int) uint64 {
	if !v.IsUint64() {
		return ^uint64(0)
	}
	return v.Uint64()
}
