// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tx defines confidential transactions: inputs spending prior
// outputs, outputs carrying a value commitment with its range proof and
// stealth keys, and one aggregate BLS signature authorizing everything.
package tx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/blsct/arith/bls12381"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/signature"
	"github.com/luxfi/blsct/tokens"
)

type (
	Scalar     = bls12381.Scalar
	Point      = bls12381.Point
	RangeProof = rangeproof.Proof[Scalar, Point]
)

const (
	Coin     uint64 = 100_000_000
	MaxMoney uint64 = 21_000_000 * Coin
)

var ErrInvalidEncoding = errors.New("invalid transaction encoding")

var be = bls12381.NewBackend()

// Backend returns the curve backend transaction data is encoded with.
func Backend() *bls12381.Backend {
	return be
}

// MoneyRange reports whether v is a valid amount.
func MoneyRange(v uint64) bool {
	return v <= MaxMoney
}

// FormatMoney renders v in coins with at least two decimals.
func FormatMoney(v uint64) string {
	s := strconv.FormatUint(v/Coin, 10) + "." + fmt.Sprintf("%08d", v%Coin)
	trimmed := strings.TrimRight(s, "0")
	if dot := strings.IndexByte(trimmed, '.'); len(trimmed)-dot < 3 {
		trimmed = s[:dot+3]
	}
	return trimmed
}

// OutPoint references an output of a previous transaction.
type OutPoint struct {
	Hash common.Hash
	N    uint32
}

// IsNull reports whether o is the coinbase marker.
func (o OutPoint) IsNull() bool {
	return o.Hash == (common.Hash{}) && o.N == ^uint32(0)
}

// NullOutPoint is the prevout of a coinbase input.
var NullOutPoint = OutPoint{N: ^uint32(0)}

type TxIn struct {
	PrevOut  OutPoint
	Sequence uint32
}

// Hash is the message the spender signs.
func (in TxIn) Hash() common.Hash {
	return rlpHash(&in)
}

// ScriptKind is the spending condition of an output.
type ScriptKind uint8

const (
	// ScriptTrue outputs are spent with their spending key.
	ScriptTrue ScriptKind = iota
	// ScriptFee marks the fee output.
	ScriptFee
	// ScriptStakedCommitment outputs carry a range proof against the
	// minimum stake in Data.
	ScriptStakedCommitment
	// ScriptUnspendable outputs burn their value.
	ScriptUnspendable
)

type Script struct {
	Kind ScriptKind
	Data []byte
}

func FeeScript() Script {
	return Script{Kind: ScriptFee}
}

func (s Script) IsFee() bool {
	return s.Kind == ScriptFee
}

// IsUnspendable reports whether no input can ever spend the output.
func (s Script) IsUnspendable() bool {
	return s.Kind == ScriptFee || s.Kind == ScriptUnspendable
}

// BlsctData is the confidential part of an output.
type BlsctData struct {
	RangeProof   *RangeProof
	SpendingKey  Point
	EphemeralKey Point
	BlindingKey  Point
	ViewTag      uint16
}

type TxOut struct {
	// Value is the public amount of transparent outputs. Confidential
	// outputs carry zero.
	Value     uint64
	Script    Script
	TokenID   tokens.TokenID
	Blsct     *BlsctData
	Predicate []byte
}

// IsBLSCT reports whether the output commits to a hidden value.
func (o *TxOut) IsBLSCT() bool {
	return o.Blsct != nil && o.Blsct.RangeProof != nil && len(o.Blsct.RangeProof.Vs) > 0
}

// Commitment returns the value commitment of a confidential output.
func (o *TxOut) Commitment() Point {
	return o.Blsct.RangeProof.Vs[0]
}

// Hash is the message the output's keys sign.
func (o *TxOut) Hash() common.Hash {
	return rlpHash(o)
}

// StakedCommitmentRangeProof decodes the proof a staked commitment output
// carries in its script.
func (o *TxOut) StakedCommitmentRangeProof() (*RangeProof, bool) {
	if o.Script.Kind != ScriptStakedCommitment {
		return nil, false
	}
	p, err := rangeproof.Decode[Scalar, Point](be, o.Script.Data)
	if err != nil {
		return nil, false
	}
	return p, true
}

// Transaction is a confidential transaction.
type Transaction struct {
	Inputs  []TxIn
	Outputs []TxOut
	Sig     signature.Signature
}

// New returns an empty transaction with an identity signature.
func New() *Transaction {
	return &Transaction{Sig: signature.Identity()}
}

// Hash identifies the transaction. The signature is not covered.
func (t *Transaction) Hash() common.Hash {
	outs := make([]*TxOut, len(t.Outputs))
	for i := range t.Outputs {
		outs[i] = &t.Outputs[i]
	}
	return rlpHash([]interface{}{t.Inputs, outs})
}

// Weight is the serialized size of the transaction.
func (t *Transaction) Weight() (uint64, error) {
	b, err := t.Bytes()
	if err != nil {
		return 0, err
	}
	return uint64(len(b)), nil
}

// IsCoinbase reports whether t mints the block reward.
func (t *Transaction) IsCoinbase() bool {
	return len(t.Inputs) == 1 && t.Inputs[0].PrevOut.IsNull()
}

// Fee sums the values of the fee outputs.
func (t *Transaction) Fee() uint64 {
	var fee uint64
	for i := range t.Outputs {
		if t.Outputs[i].Script.IsFee() {
			fee += t.Outputs[i].Value
		}
	}
	return fee
}

// Copy returns a copy whose input and output slices may be appended to
// independently. Outputs themselves are shared.
func (t *Transaction) Copy() *Transaction {
	return &Transaction{
		Inputs:  append([]TxIn(nil), t.Inputs...),
		Outputs: append([]TxOut(nil), t.Outputs...),
		Sig:     t.Sig,
	}
}
