// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package coins stores unspent outputs and token state.
package coins

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/rlp"

	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

var (
	ErrCoinNotFound  = errors.New("coin not found")
	ErrInvalidCoin   = errors.New("invalid coin encoding")
	ErrInvalidToken  = errors.New("invalid token encoding")
	ErrUnspendable   = errors.New("output is unspendable")
	errNilTokenEntry = errors.New("nil token entry")
)

var (
	coinPrefix  = []byte{'c'}
	tokenPrefix = []byte{'t'}
)

var _ tokens.View = (*View)(nil)

// Coin is an unspent output and the height it was created at.
type Coin struct {
	Out    tx.TxOut
	Height uint64
}

// View reads and writes coins and tokens in a database.
type View struct {
	db database.Database
}

func NewView(db database.Database) *View {
	return &View{db: db}
}

func coinKey(op tx.OutPoint) []byte {
	key := make([]byte, 0, len(coinPrefix)+common.HashLength+4)
	key = append(key, coinPrefix...)
	key = append(key, op.Hash[:]...)
	return binary.BigEndian.AppendUint32(key, op.N)
}

func tokenKey(hash common.Hash) []byte {
	return append(append([]byte{}, tokenPrefix...), hash[:]...)
}

// AddCoin stores coin under op, replacing any previous coin.
func (v *View) AddCoin(op tx.OutPoint, coin *Coin) error {
	if coin.Out.Script.IsUnspendable() {
		return fmt.Errorf("%w: %s:%d", ErrUnspendable, op.Hash.Hex(), op.N)
	}
	data, err := rlp.EncodeToBytes([]interface{}{coin.Height, &coin.Out})
	if err != nil {
		return err
	}
	return v.db.Put(coinKey(op), data)
}

// GetCoin returns the coin at op.
func (v *View) GetCoin(op tx.OutPoint) (*Coin, error) {
	data, err := v.db.Get(coinKey(op))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s:%d", ErrCoinNotFound, op.Hash.Hex(), op.N)
	}
	if err != nil {
		return nil, err
	}

	var dec struct {
		Height uint64
		Out    *tx.TxOut
	}
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCoin, err)
	}
	return &Coin{Out: *dec.Out, Height: dec.Height}, nil
}

func (v *View) HaveCoin(op tx.OutPoint) (bool, error) {
	return v.db.Has(coinKey(op))
}

// SpendCoin removes the coin at op.
func (v *View) SpendCoin(op tx.OutPoint) error {
	ok, err := v.HaveCoin(op)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s:%d", ErrCoinNotFound, op.Hash.Hex(), op.N)
	}
	return v.db.Delete(coinKey(op))
}

// HaveInputs reports whether every input of t spends a known coin. A
// coinbase has no inputs to check.
func (v *View) HaveInputs(t *tx.Transaction) (bool, error) {
	if t.IsCoinbase() {
		return true, nil
	}
	for _, in := range t.Inputs {
		ok, err := v.HaveCoin(in.PrevOut)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ApplyTransaction spends the inputs of t and adds its spendable outputs.
func (v *View) ApplyTransaction(t *tx.Transaction, height uint64) error {
	if !t.IsCoinbase() {
		for _, in := range t.Inputs {
			if err := v.SpendCoin(in.PrevOut); err != nil {
				return err
			}
		}
	}
	hash := t.Hash()
	for i := range t.Outputs {
		if t.Outputs[i].Script.IsUnspendable() {
			continue
		}
		op := tx.OutPoint{Hash: hash, N: uint32(i)}
		if err := v.AddCoin(op, &Coin{Out: t.Outputs[i], Height: height}); err != nil {
			return err
		}
	}
	return nil
}

func (v *View) HaveToken(hash common.Hash) (bool, error) {
	return v.db.Has(tokenKey(hash))
}

func (v *View) GetToken(hash common.Hash) (*tokens.TokenEntry, error) {
	data, err := v.db.Get(tokenKey(hash))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", tokens.ErrTokenNotFound, hash.Hex())
	}
	if err != nil {
		return nil, err
	}
	entry := &tokens.TokenEntry{}
	if err := cbor.Unmarshal(data, entry); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return entry, nil
}

func (v *View) PutToken(hash common.Hash, entry *tokens.TokenEntry) error {
	if entry == nil {
		return errNilTokenEntry
	}
	data, err := cbor.Marshal(entry)
	if err != nil {
		return err
	}
	return v.db.Put(tokenKey(hash), data)
}

func (v *View) EraseToken(hash common.Hash) error {
	return v.db.Delete(tokenKey(hash))
}
