// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txfactory

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

func balanceOf(t *testing.T, w *Wallet, id tokens.TokenID, staked bool) uint64 {
	t.Helper()
	b, err := w.Balance(id, staked)
	require.NoError(t, err)
	return b
}

func TestWallet_Scan(t *testing.T) {
	require := require.New(t)
	rp := newTestLogic()
	alice, bob := newTestKeys(t), newTestKeys(t)
	w := NewWallet(rp, alice)
	require.True(w.Address().View.Equal(alice.PublicKey().View))

	funding := tx.New()
	for _, amount := range []uint64{3 * tx.Coin, 4 * tx.Coin} {
		out, err := CreateOutput(rp, alice.PublicKey(), amount, "", tokens.DefaultTokenID, Scalar{}, Normal, 0)
		require.NoError(err)
		funding.Outputs = append(funding.Outputs, out.Out)
	}
	staked, err := CreateOutput(rp, alice.PublicKey(), 6*tx.Coin, "", tokens.DefaultTokenID, Scalar{}, StakedCommitment, testMinStake)
	require.NoError(err)
	other, err := CreateOutput(rp, bob.PublicKey(), 5*tx.Coin, "", tokens.DefaultTokenID, Scalar{}, Normal, 0)
	require.NoError(err)
	funding.Outputs = append(funding.Outputs, staked.Out, other.Out)

	require.Equal(3, w.Scan(funding))
	require.Equal(7*tx.Coin, balanceOf(t, w, tokens.DefaultTokenID, false))
	require.Equal(6*tx.Coin, balanceOf(t, w, tokens.DefaultTokenID, true))

	// scanning twice does not count coins twice
	w.Scan(funding)
	require.Equal(7*tx.Coin, balanceOf(t, w, tokens.DefaultTokenID, false))

	free, err := CollectInputCandidates(w, tokens.DefaultTokenID, Normal)
	require.NoError(err)
	require.Len(free, 2)
	all, err := CollectInputCandidates(w, tokens.DefaultTokenID, StakedCommitmentUnstake)
	require.NoError(err)
	require.Len(all, 3)
	require.True(all[2].StakedCommitment)

	big, err := w.AvailableCoins(CoinFilter{TokenID: tokens.DefaultTokenID, MinAmount: 4 * tx.Coin})
	require.NoError(err)
	require.Len(big, 1)
	require.Equal(4*tx.Coin, big[0].Amount)

	// spending a coin removes it
	spend := tx.New()
	spend.Inputs = []tx.TxIn{{PrevOut: free[0].OutPoint}}
	require.Zero(w.Scan(spend))
	require.Equal(4*tx.Coin, balanceOf(t, w, tokens.DefaultTokenID, false))
}

type failingProvider struct{}

var errProvider = errors.New("provider unavailable")

func (failingProvider) AvailableCoins(CoinFilter) ([]InputCandidate, error) {
	return nil, errProvider
}

func TestCollectInputCandidates_Error(t *testing.T) {
	_, err := CollectInputCandidates(failingProvider{}, tokens.DefaultTokenID, Normal)
	require.ErrorIs(t, err, errProvider)
}

func TestWallet_BalanceOverflow(t *testing.T) {
	require := require.New(t)
	w := NewWallet(newTestLogic(), newTestKeys(t))

	add := func(n uint32, amount uint64) {
		op := tx.OutPoint{N: n}
		w.coins[op] = InputCandidate{Amount: amount, TokenID: tokens.DefaultTokenID, OutPoint: op}
		w.order = append(w.order, op)
	}
	add(0, math.MaxUint64-1)
	require.Equal(uint64(math.MaxUint64-1), balanceOf(t, w, tokens.DefaultTokenID, false))

	add(1, 1)
	require.Equal(uint64(math.MaxUint64), balanceOf(t, w, tokens.DefaultTokenID, false))

	add(2, 1)
	_, err := w.Balance(tokens.DefaultTokenID, false)
	require.ErrorIs(err, ErrBalanceOverflow)

	// staked coins are summed apart
	require.Zero(balanceOf(t, w, tokens.DefaultTokenID, true))
}
