// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tokens

import (
	"errors"
	"fmt"
	"sort"

	"github.com/luxfi/geth/common"
)

var (
	ErrTokenExists       = errors.New("token already exists")
	ErrTokenNotFound     = errors.New("token not found")
	ErrWrongTokenType    = errors.New("wrong token type")
	ErrSupplyExceeded    = errors.New("mint outside supply bounds")
	ErrNftAlreadyMinted  = errors.New("nft already minted")
	ErrNftNotMinted      = errors.New("nft not minted")
	ErrExecutorNotFound  = errors.New("no executor for operation")
	ErrExecutorCollision = errors.New("executor already registered")
)

// View is the token state predicates execute against.
type View interface {
	HaveToken(hash common.Hash) (bool, error)
	GetToken(hash common.Hash) (*TokenEntry, error)
	PutToken(hash common.Hash, entry *TokenEntry) error
	EraseToken(hash common.Hash) error
}

// ExecuteFunc applies p to view, or undoes it when disconnect is set.
type ExecuteFunc func(p *Predicate, view View, disconnect bool) error

// Executor binds an operation to the function that applies it.
type Executor struct {
	Op      Operation
	Name    string
	Execute ExecuteFunc
}

// registeredExecutors is kept sorted by operation for deterministic
// iteration.
var registeredExecutors = make([]Executor, 0)

func init() {
	for _, e := range []Executor{
		{Op: CreateToken, Name: "create_token", Execute: executeCreateToken},
		{Op: Mint, Name: "mint", Execute: executeMint},
		{Op: NftMint, Name: "nft_mint", Execute: executeNftMint},
		{Op: PayFee, Name: "pay_fee", Execute: executePayFee},
	} {
		if err := RegisterExecutor(e); err != nil {
			panic(err)
		}
	}
}

// RegisterExecutor adds an executor. Operations and names must be unique.
func RegisterExecutor(e Executor) error {
	for _, registered := range registeredExecutors {
		if registered.Op == e.Op {
			return fmt.Errorf("%w: operation %s", ErrExecutorCollision, e.Op)
		}
		if registered.Name == e.Name {
			return fmt.Errorf("%w: name %s", ErrExecutorCollision, e.Name)
		}
	}
	registeredExecutors = append(registeredExecutors, e)
	sort.Slice(registeredExecutors, func(i, j int) bool {
		return registeredExecutors[i].Op < registeredExecutors[j].Op
	})
	return nil
}

func GetExecutor(op Operation) (Executor, bool) {
	for _, e := range registeredExecutors {
		if e.Op == op {
			return e, true
		}
	}
	return Executor{}, false
}

func RegisteredExecutors() []Executor {
	return registeredExecutors
}

// Execute applies p to view. With disconnect set it reverts a previous
// application, as when a block is disconnected.
func Execute(p *Predicate, view View, disconnect bool) error {
	e, ok := GetExecutor(p.Op)
	if !ok {
		return fmt.Errorf("%w: %s", ErrExecutorNotFound, p.Op)
	}
	return e.Execute(p, view, disconnect)
}

// ExecuteBytes parses and applies an encoded predicate.
func ExecuteBytes(data []byte, view View, disconnect bool) error {
	p, err := Parse(data)
	if err != nil {
		return err
	}
	return Execute(p, view, disconnect)
}

func executeCreateToken(p *Predicate, view View, disconnect bool) error {
	hash := p.TokenHash()
	if disconnect {
		return view.EraseToken(hash)
	}
	exists, err := view.HaveToken(hash)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTokenExists, hash.Hex())
	}
	return view.PutToken(hash, NewTokenEntry(*p.Info))
}

func executeMint(p *Predicate, view View, disconnect bool) error {
	hash := p.TokenHash()
	entry, err := getToken(view, hash)
	if err != nil {
		return err
	}
	if entry.Info.Type != Token {
		return fmt.Errorf("%w: %s is %s", ErrWrongTokenType, hash.Hex(), entry.Info.Type)
	}
	amount := p.Amount
	if disconnect {
		amount = -amount
	}
	if !entry.Mint(amount) {
		return fmt.Errorf("%w: supply %d, amount %d, total %d", ErrSupplyExceeded, entry.Supply, amount, entry.Info.TotalSupply)
	}
	return view.PutToken(hash, entry)
}

func executeNftMint(p *Predicate, view View, disconnect bool) error {
	hash := p.TokenHash()
	entry, err := getToken(view, hash)
	if err != nil {
		return err
	}
	if entry.Info.Type != NFT {
		return fmt.Errorf("%w: %s is %s", ErrWrongTokenType, hash.Hex(), entry.Info.Type)
	}
	_, minted := entry.MintedNft[p.NftID]
	switch {
	case !disconnect && minted:
		return fmt.Errorf("%w: %s#%d", ErrNftAlreadyMinted, hash.Hex(), p.NftID)
	case disconnect && !minted:
		return fmt.Errorf("%w: %s#%d", ErrNftNotMinted, hash.Hex(), p.NftID)
	}

	if disconnect {
		delete(entry.MintedNft, p.NftID)
	} else {
		if entry.MintedNft == nil {
			entry.MintedNft = make(map[uint64]map[string]string)
		}
		entry.MintedNft[p.NftID] = p.NftMetadata
	}
	return view.PutToken(hash, entry)
}

func executePayFee(*Predicate, View, bool) error {
	return nil
}

func getToken(view View, hash common.Hash) (*TokenEntry, error) {
	exists, err := view.HaveToken(hash)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTokenNotFound, hash.Hex())
	}
	return view.GetToken(hash)
}
