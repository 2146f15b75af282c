// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coins

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

func newTestCoin(value uint64) *Coin {
	return &Coin{
		Out: tx.TxOut{
			Value:     value,
			Script:    tx.Script{Kind: tx.ScriptTrue},
			TokenID:   tokens.DefaultTokenID,
			Predicate: []byte{1, 2},
		},
		Height: 12,
	}
}

func TestView_Coins(t *testing.T) {
	require := require.New(t)
	db := memdb.New()
	defer db.Close()
	view := NewView(db)

	op := tx.OutPoint{Hash: common.Hash{7}, N: 1}
	_, err := view.GetCoin(op)
	require.ErrorIs(err, ErrCoinNotFound)

	require.NoError(view.AddCoin(op, newTestCoin(40)))
	ok, err := view.HaveCoin(op)
	require.NoError(err)
	require.True(ok)

	coin, err := view.GetCoin(op)
	require.NoError(err)
	require.Equal(uint64(40), coin.Out.Value)
	require.Equal(uint64(12), coin.Height)
	require.Equal([]byte{1, 2}, coin.Out.Predicate)
	require.Equal(tokens.DefaultTokenID, coin.Out.TokenID)

	require.NoError(view.SpendCoin(op))
	require.ErrorIs(view.SpendCoin(op), ErrCoinNotFound)

	fee := newTestCoin(1)
	fee.Out.Script = tx.FeeScript()
	require.ErrorIs(view.AddCoin(op, fee), ErrUnspendable)
}

func TestView_HaveInputs(t *testing.T) {
	require := require.New(t)
	db := memdb.New()
	defer db.Close()
	view := NewView(db)

	known := tx.OutPoint{Hash: common.Hash{1}}
	require.NoError(view.AddCoin(known, newTestCoin(5)))

	spend := tx.New()
	spend.Inputs = []tx.TxIn{{PrevOut: known}}
	ok, err := view.HaveInputs(spend)
	require.NoError(err)
	require.True(ok)

	spend.Inputs = append(spend.Inputs, tx.TxIn{PrevOut: tx.OutPoint{Hash: common.Hash{2}}})
	ok, err = view.HaveInputs(spend)
	require.NoError(err)
	require.False(ok)

	coinbase := tx.New()
	coinbase.Inputs = []tx.TxIn{{PrevOut: tx.NullOutPoint}}
	ok, err = view.HaveInputs(coinbase)
	require.NoError(err)
	require.True(ok)
}

func TestView_ApplyTransaction(t *testing.T) {
	require := require.New(t)
	db := memdb.New()
	defer db.Close()
	view := NewView(db)

	prev := tx.OutPoint{Hash: common.Hash{3}}
	require.NoError(view.AddCoin(prev, newTestCoin(10)))

	spend := tx.New()
	spend.Inputs = []tx.TxIn{{PrevOut: prev}}
	spend.Outputs = []tx.TxOut{
		newTestCoin(0).Out,
		{Value: 10, Script: tx.FeeScript(), TokenID: tokens.DefaultTokenID},
	}
	require.NoError(view.ApplyTransaction(spend, 13))

	ok, err := view.HaveCoin(prev)
	require.NoError(err)
	require.False(ok)

	hash := spend.Hash()
	coin, err := view.GetCoin(tx.OutPoint{Hash: hash, N: 0})
	require.NoError(err)
	require.Equal(uint64(13), coin.Height)

	ok, err = view.HaveCoin(tx.OutPoint{Hash: hash, N: 1})
	require.NoError(err)
	require.False(ok)
}

func TestView_Tokens(t *testing.T) {
	require := require.New(t)
	db := memdb.New()
	defer db.Close()
	view := NewView(db)

	pk := []byte("collection key")
	hash := tokens.HashPublicKey(pk)

	create := tokens.NewCreateTokenPredicate(tokens.TokenInfo{
		Type:        tokens.NFT,
		PublicKey:   pk,
		Metadata:    map[string]string{"name": "collection"},
		TotalSupply: 100,
	})
	require.NoError(tokens.Execute(create, view, false))
	require.NoError(tokens.Execute(tokens.NewMintNftPredicate(pk, 9, map[string]string{"rarity": "high"}), view, false))

	entry, err := view.GetToken(hash)
	require.NoError(err)
	require.Equal(tokens.NFT, entry.Info.Type)
	require.Equal("collection", entry.Info.Metadata["name"])
	require.Equal("high", entry.MintedNft[9]["rarity"])

	require.NoError(tokens.Execute(create, view, true))
	ok, err := view.HaveToken(hash)
	require.NoError(err)
	require.False(ok)

	_, err = view.GetToken(hash)
	require.ErrorIs(err, tokens.ErrTokenNotFound)
}
