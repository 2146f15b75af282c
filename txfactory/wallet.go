// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txfactory

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/luxfi/blsct/keys"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

// InputCandidate is a spendable coin with the secrets recovered for it.
type InputCandidate struct {
	Amount           uint64
	Gamma            Scalar
	SpendingKey      Scalar
	TokenID          tokens.TokenID
	OutPoint         tx.OutPoint
	StakedCommitment bool
	Memo             []byte
}

// CoinFilter selects candidates from a CoinProvider.
type CoinFilter struct {
	TokenID   tokens.TokenID
	MinAmount uint64
	// StakedCommitment selects staked coins instead of free ones.
	StakedCommitment bool
}

func (f CoinFilter) match(c InputCandidate) bool {
	return c.TokenID == f.TokenID &&
		c.Amount >= f.MinAmount &&
		c.StakedCommitment == f.StakedCommitment
}

// CoinProvider lists the coins a wallet can spend. Implementations keep the
// coin set stable for the duration of a call.
type CoinProvider interface {
	AvailableCoins(filter CoinFilter) ([]InputCandidate, error)
}

// CollectInputCandidates returns the free coins of id, followed by the
// staked ones when typ spends stake.
func CollectInputCandidates(provider CoinProvider, id tokens.TokenID, typ TxType) ([]InputCandidate, error) {
	filter := CoinFilter{TokenID: id}
	candidates, err := provider.AvailableCoins(filter)
	if err != nil {
		return nil, err
	}
	if !typ.staked() {
		return candidates, nil
	}
	filter.StakedCommitment = true
	staked, err := provider.AvailableCoins(filter)
	if err != nil {
		return nil, err
	}
	return append(candidates, staked...), nil
}

// RecoverInputCandidate recovers the amount, blinding factor and spending
// key of out for kp. It reports false when out does not pay kp.
func RecoverInputCandidate(rp *rangeproof.Logic[Scalar, Point], kp keys.KeyPair, op tx.OutPoint, out *tx.TxOut) (InputCandidate, bool) {
	if !out.IsBLSCT() {
		return InputCandidate{}, false
	}
	data := out.Blsct
	if !kp.IsMine(data.BlindingKey, data.SpendingKey, data.ViewTag) {
		return InputCandidate{}, false
	}

	nonce := keys.CalcNonce(data.BlindingKey, kp.View)
	results := rp.RecoverAmounts([]rangeproof.AmountRecoveryRequest[Scalar, Point]{{
		Proof: data.RangeProof,
		Seed:  out.TokenID.Seed(),
		Nonce: rangeproof.NewPointSeed[Scalar, Point](nonce),
	}})
	if len(results) != 1 {
		return InputCandidate{}, false
	}
	return InputCandidate{
		Amount:           results[0].Amount,
		Gamma:            results[0].Gamma,
		SpendingKey:      keys.PrivateSpendingKey(nonce, kp.Spend),
		TokenID:          out.TokenID,
		OutPoint:         op,
		StakedCommitment: out.Script.Kind == tx.ScriptStakedCommitment,
		Memo:             results[0].Message,
	}, true
}

var _ CoinProvider = (*Wallet)(nil)

// Wallet tracks the coins that pay one key pair.
type Wallet struct {
	rp   *rangeproof.Logic[Scalar, Point]
	keys keys.KeyPair

	mu    sync.RWMutex
	coins map[tx.OutPoint]InputCandidate
	order []tx.OutPoint
}

func NewWallet(rp *rangeproof.Logic[Scalar, Point], kp keys.KeyPair) *Wallet {
	return &Wallet{
		rp:    rp,
		keys:  kp,
		coins: make(map[tx.OutPoint]InputCandidate),
	}
}

// Address returns the destination that pays this wallet.
func (w *Wallet) Address() keys.DoublePublicKey {
	return w.keys.PublicKey()
}

// Scan adds the outputs of t that pay this wallet and drops the coins t
// spends. It returns the number of coins added.
func (w *Wallet) Scan(t *tx.Transaction) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, in := range t.Inputs {
		delete(w.coins, in.PrevOut)
	}

	hash := t.Hash()
	added := 0
	for i := range t.Outputs {
		op := tx.OutPoint{Hash: hash, N: uint32(i)}
		c, ok := RecoverInputCandidate(w.rp, w.keys, op, &t.Outputs[i])
		if !ok {
			continue
		}
		if _, known := w.coins[op]; !known {
			w.order = append(w.order, op)
		}
		w.coins[op] = c
		added++
	}
	return added
}

func (w *Wallet) AvailableCoins(filter CoinFilter) ([]InputCandidate, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []InputCandidate
	for _, op := range w.order {
		c, ok := w.coins[op]
		if ok && filter.match(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Balance sums the coins of id, staked or free.
func (w *Wallet) Balance(id tokens.TokenID, staked bool) (uint64, error) {
	coins, err := w.AvailableCoins(CoinFilter{TokenID: id, StakedCommitment: staked})
	if err != nil {
		return 0, err
	}
	var sum uint64
	for _, c := range coins {
		var carry uint64
		sum, carry = bits.Add64(sum, c.Amount, 0)
		if carry != 0 {
			return 0, fmt.Errorf("%w: token %s", ErrBalanceOverflow, id)
		}
	}
	return sum, nil
}
