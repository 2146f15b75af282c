// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tokens

import (
	"math"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"
)

type mapView map[common.Hash]*TokenEntry

func (v mapView) HaveToken(hash common.Hash) (bool, error) {
	_, ok := v[hash]
	return ok, nil
}

func (v mapView) GetToken(hash common.Hash) (*TokenEntry, error) {
	e := *v[hash]
	return &e, nil
}

func (v mapView) PutToken(hash common.Hash, entry *TokenEntry) error {
	v[hash] = entry
	return nil
}

func (v mapView) EraseToken(hash common.Hash) error {
	delete(v, hash)
	return nil
}

var testKey = []byte("token-public-key")

func TestTokenID(t *testing.T) {
	require := require.New(t)

	require.True(DefaultTokenID.IsDefault())
	require.False(DefaultTokenID.IsNFT())
	require.Equal(uint64(math.MaxUint64), DefaultTokenID.Subid)

	hash := HashPublicKey(testKey)
	fungible := NewTokenID(hash)
	nft := NewNftID(hash, 7)
	require.False(fungible.IsDefault())
	require.True(nft.IsNFT())

	require.Len(fungible.Seed(), common.HashLength+8)
	require.NotEqual(fungible.Seed(), nft.Seed())
	require.NotEqual(fungible.Seed(), DefaultTokenID.Seed())
	require.Equal(nft.Seed(), NewNftID(hash, 7).Seed())
	require.Contains(nft.String(), "#7")
}

func TestTokenEntry_Mint(t *testing.T) {
	tests := []struct {
		name   string
		supply int64
		amount int64
		ok     bool
		want   int64
	}{
		{name: "within supply", supply: 10, amount: 50, ok: true, want: 60},
		{name: "up to total", supply: 10, amount: 90, ok: true, want: 100},
		{name: "beyond total", supply: 10, amount: 91, want: 10},
		{name: "burn", supply: 10, amount: -10, ok: true, want: 0},
		{name: "below zero", supply: 10, amount: -11, want: 10},
		{name: "overflow", supply: 10, amount: math.MaxInt64, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewTokenEntry(TokenInfo{Type: Token, PublicKey: testKey, TotalSupply: 100})
			e.Supply = tt.supply
			require.Equal(t, tt.ok, e.Mint(tt.amount))
			require.Equal(t, tt.want, e.Supply)
		})
	}
}

func TestPredicate_EncodeParse(t *testing.T) {
	info := TokenInfo{Type: NFT, PublicKey: testKey, Metadata: map[string]string{"name": "art"}, TotalSupply: 10}
	tests := []struct {
		name string
		p    *Predicate
	}{
		{name: "create", p: NewCreateTokenPredicate(info)},
		{name: "mint", p: NewMintTokenPredicate(testKey, 42)},
		{name: "nft mint", p: NewMintNftPredicate(testKey, 3, map[string]string{"id": "3"})},
		{name: "pay fee", p: NewPayFeePredicate(testKey)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			data, err := tt.p.Encode()
			require.NoError(err)
			require.Equal(byte(tt.p.Op), data[0])

			parsed, err := Parse(data)
			require.NoError(err)
			require.Equal(tt.p, parsed)
			require.Equal(HashPublicKey(testKey), parsed.TokenHash())
		})
	}
}

func TestPredicate_ParseErrors(t *testing.T) {
	_, err := Parse(nil)
	require.ErrorIs(t, err, ErrInvalidPredicate)

	data, err := NewPayFeePredicate(testKey).Encode()
	require.NoError(t, err)
	data[0] = 9
	_, err = Parse(data)
	require.ErrorIs(t, err, ErrUnknownOperation)

	_, err = (&Predicate{Op: Mint}).Encode()
	require.ErrorIs(t, err, ErrInvalidPredicate)
}

func TestExecute_Token(t *testing.T) {
	require := require.New(t)
	view := mapView{}
	hash := HashPublicKey(testKey)

	create := NewCreateTokenPredicate(TokenInfo{Type: Token, PublicKey: testKey, TotalSupply: 1000})
	mint := NewMintTokenPredicate(testKey, 600)

	require.ErrorIs(Execute(mint, view, false), ErrTokenNotFound)
	require.NoError(Execute(create, view, false))
	require.ErrorIs(Execute(create, view, false), ErrTokenExists)

	require.NoError(Execute(mint, view, false))
	require.Equal(int64(600), view[hash].Supply)
	require.ErrorIs(Execute(mint, view, false), ErrSupplyExceeded)
	require.Equal(int64(600), view[hash].Supply)

	require.NoError(Execute(mint, view, true))
	require.Zero(view[hash].Supply)

	require.ErrorIs(Execute(NewMintNftPredicate(testKey, 1, nil), view, false), ErrWrongTokenType)

	require.NoError(Execute(create, view, true))
	require.Empty(view)
}

func TestExecute_Nft(t *testing.T) {
	require := require.New(t)
	view := mapView{}
	hash := HashPublicKey(testKey)

	create, err := NewCreateTokenPredicate(TokenInfo{Type: NFT, PublicKey: testKey, TotalSupply: 10}).Encode()
	require.NoError(err)
	require.NoError(ExecuteBytes(create, view, false))

	mint := NewMintNftPredicate(testKey, 4, map[string]string{"color": "blue"})
	require.NoError(Execute(mint, view, false))
	require.Equal("blue", view[hash].MintedNft[4]["color"])
	require.ErrorIs(Execute(mint, view, false), ErrNftAlreadyMinted)
	require.ErrorIs(Execute(NewMintTokenPredicate(testKey, 1), view, false), ErrWrongTokenType)

	require.NoError(Execute(mint, view, true))
	require.NotContains(view[hash].MintedNft, uint64(4))
	require.ErrorIs(Execute(mint, view, true), ErrNftNotMinted)

	require.NoError(Execute(NewPayFeePredicate(testKey), view, false))
}

func TestRegisterExecutor(t *testing.T) {
	require := require.New(t)

	executors := RegisteredExecutors()
	require.Len(executors, 4)
	for i := 1; i < len(executors); i++ {
		require.Less(executors[i-1].Op, executors[i].Op)
	}

	err := RegisterExecutor(Executor{Op: Mint, Name: "other", Execute: executePayFee})
	require.ErrorIs(err, ErrExecutorCollision)
	err = RegisterExecutor(Executor{Op: Operation(200), Name: "mint", Execute: executePayFee})
	require.ErrorIs(err, ErrExecutorCollision)

	_, ok := GetExecutor(Operation(200))
	require.False(ok)
	require.ErrorIs(Execute(&Predicate{Op: Operation(200)}, mapView{}, false), ErrExecutorNotFound)
}
