// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tokens

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/luxfi/geth/common"
)

var (
	ErrUnknownOperation = errors.New("unknown predicate operation")
	ErrInvalidPredicate = errors.New("invalid predicate")
)

// Operation is the first byte of an encoded predicate.
type Operation uint8

const (
	CreateToken Operation = iota
	Mint
	NftMint
	PayFee
)

func (o Operation) String() string {
	switch o {
	case CreateToken:
		return "create_token"
	case Mint:
		return "mint"
	case NftMint:
		return "nft_mint"
	case PayFee:
		return "pay_fee"
	default:
		return fmt.Sprintf("operation(%d)", uint8(o))
	}
}

// Predicate is a parsed output predicate. Which fields are set depends on Op.
type Predicate struct {
	Op Operation `cbor:"-"`

	// Info is set for CreateToken.
	Info *TokenInfo `cbor:"1,keyasint,omitempty"`
	// Key is the token public key for Mint, NftMint and PayFee.
	Key    []byte `cbor:"2,keyasint,omitempty"`
	Amount int64  `cbor:"3,keyasint,omitempty"`
	NftID  uint64 `cbor:"4,keyasint,omitempty"`
	// NftMetadata is set for NftMint.
	NftMetadata map[string]string `cbor:"5,keyasint,omitempty"`
}

func NewCreateTokenPredicate(info TokenInfo) *Predicate {
	return &Predicate{Op: CreateToken, Info: &info}
}

func NewMintTokenPredicate(pk []byte, amount int64) *Predicate {
	return &Predicate{Op: Mint, Key: pk, Amount: amount}
}

func NewMintNftPredicate(pk []byte, nftID uint64, metadata map[string]string) *Predicate {
	return &Predicate{Op: NftMint, Key: pk, NftID: nftID, NftMetadata: metadata}
}

func NewPayFeePredicate(pk []byte) *Predicate {
	return &Predicate{Op: PayFee, Key: pk}
}

// PublicKey returns the key that authorizes the predicate.
func (p *Predicate) PublicKey() []byte {
	if p.Op == CreateToken && p.Info != nil {
		return p.Info.PublicKey
	}
	return p.Key
}

// TokenHash returns the hash of the token the predicate acts on.
func (p *Predicate) TokenHash() common.Hash {
	return HashPublicKey(p.PublicKey())
}

// Encode returns the operation byte followed by the CBOR body.
func (p *Predicate) Encode() ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	body, err := cbor.Marshal(p)
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(p.Op)}, body...), nil
}

// Parse decodes an encoded predicate.
func Parse(data []byte) (*Predicate, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPredicate)
	}
	p := &Predicate{}
	if err := cbor.Unmarshal(data[1:], p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPredicate, err)
	}
	p.Op = Operation(data[0])
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Predicate) validate() error {
	switch p.Op {
	case CreateToken:
		if p.Info == nil || len(p.Info.PublicKey) == 0 {
			return fmt.Errorf("%w: create without token info", ErrInvalidPredicate)
		}
	case Mint, NftMint, PayFee:
		if len(p.Key) == 0 {
			return fmt.Errorf("%w: %s without public key", ErrInvalidPredicate, p.Op)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownOperation, uint8(p.Op))
	}
	return nil
}
