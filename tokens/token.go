// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tokens holds token identifiers, token supply state and the output
// predicates that create and mint tokens.
package tokens

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// TokenID names the asset an output carries. Fungible tokens use
// Subid == math.MaxUint64; an NFT is one Subid of its collection.
type TokenID struct {
	Token common.Hash
	Subid uint64
}

// DefaultTokenID is the base coin.
var DefaultTokenID = TokenID{Subid: math.MaxUint64}

// NewTokenID returns the fungible token id for token.
func NewTokenID(token common.Hash) TokenID {
	return TokenID{Token: token, Subid: math.MaxUint64}
}

// NewNftID returns the id of NFT subid in collection token.
func NewNftID(token common.Hash, subid uint64) TokenID {
	return TokenID{Token: token, Subid: subid}
}

// IsDefault reports whether t is the base coin.
func (t TokenID) IsDefault() bool {
	return t == DefaultTokenID
}

// IsNFT reports whether t names a single NFT.
func (t TokenID) IsNFT() bool {
	return t.Subid != math.MaxUint64
}

// Seed returns the generator seed of t: the token hash followed by the
// big-endian sub id.
func (t TokenID) Seed() []byte {
	seed := make([]byte, common.HashLength+8)
	copy(seed, t.Token[:])
	binary.BigEndian.PutUint64(seed[common.HashLength:], t.Subid)
	return seed
}

func (t TokenID) String() string {
	if !t.IsNFT() {
		return t.Token.Hex()
	}
	return fmt.Sprintf("%s#%d", t.Token.Hex(), t.Subid)
}

// HashPublicKey returns the token hash a token public key identifies.
func HashPublicKey(pk []byte) common.Hash {
	return common.Hash(blake3.Sum256(pk))
}

// TokenType distinguishes fungible tokens from NFT collections.
type TokenType uint8

const (
	Token TokenType = iota
	NFT
)

func (t TokenType) String() string {
	switch t {
	case Token:
		return "token"
	case NFT:
		return "nft"
	default:
		return "unknown"
	}
}

// TokenInfo describes a token at creation.
type TokenInfo struct {
	Type        TokenType         `cbor:"1,keyasint"`
	PublicKey   []byte            `cbor:"2,keyasint"`
	Metadata    map[string]string `cbor:"3,keyasint,omitempty"`
	TotalSupply int64             `cbor:"4,keyasint"`
}

// Hash returns the token hash of the info's public key.
func (i *TokenInfo) Hash() common.Hash {
	return HashPublicKey(i.PublicKey)
}

func (i *TokenInfo) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "type=%s publicKey=%x", i.Type, i.PublicKey)
	keys := make([]string, 0, len(i.Metadata))
	for k := range i.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, i.Metadata[k])
	}
	fmt.Fprintf(&b, " totalSupply=%d", i.TotalSupply)
	return b.String()
}

// TokenEntry is the chain state of a created token.
type TokenEntry struct {
	Info   TokenInfo `cbor:"1,keyasint"`
	Supply int64     `cbor:"2,keyasint,omitempty"`
	// MintedNft maps minted NFT ids to their metadata.
	MintedNft map[uint64]map[string]string `cbor:"3,keyasint,omitempty"`
}

// NewTokenEntry returns the entry of a freshly created token.
func NewTokenEntry(info TokenInfo) *TokenEntry {
	return &TokenEntry{Info: info}
}

// Mint adds amount, which may be negative, to the supply. It reports false
// and leaves the supply unchanged when the result would exceed the total
// supply or drop below zero.
func (e *TokenEntry) Mint(amount int64) bool {
	next := e.Supply + amount
	if (amount > 0 && next < e.Supply) || next > e.Info.TotalSupply || next < 0 {
		return false
	}
	e.Supply = next
	return true
}
