// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package params holds the tunable limits of transaction building and
// verification.
package params

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/setmem"
	"github.com/luxfi/blsct/tx"
)

const (
	// DefaultFeePerWeight is charged per byte of serialized transaction.
	DefaultFeePerWeight uint64 = 125
	DefaultMinStake     uint64 = 10_000 * tx.Coin
	// DefaultMaxFeeIterations bounds the fee fixed-point loop.
	DefaultMaxFeeIterations = 32
	// DefaultMaxMessageSize is the longest memo a range proof embeds.
	DefaultMaxMessageSize = rangeproof.MaxMessageSize
)

var ErrInvalidParams = errors.New("invalid params")

type Params struct {
	FeePerWeight        uint64 `json:"feePerWeight"`
	MinStake            uint64 `json:"minStake"`
	MaxFeeIterations    int    `json:"maxFeeIterations"`
	MaxChallengeRetries int    `json:"maxChallengeRetries"`
	MaxSetSize          int    `json:"maxSetSize"`
	MaxMessageSize      int    `json:"maxMessageSize"`
	MaxAmountsPerProof  int    `json:"maxAmountsPerProof"`
	MaxMoney            uint64 `json:"maxMoney"`
}

// Default returns the mainnet parameters.
func Default() Params {
	return Params{
		FeePerWeight:        DefaultFeePerWeight,
		MinStake:            DefaultMinStake,
		MaxFeeIterations:    DefaultMaxFeeIterations,
		MaxChallengeRetries: rangeproof.DefaultMaxRetries,
		MaxSetSize:          setmem.DefaultMaxSetSize,
		MaxMessageSize:      DefaultMaxMessageSize,
		MaxAmountsPerProof:  rangeproof.DefaultMaxValues,
		MaxMoney:            tx.MaxMoney,
	}
}

// FromJSON overlays the fields present in data on the defaults.
func FromJSON(data []byte) (Params, error) {
	p := Default()
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := p.Verify(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p *Params) Verify() error {
	switch {
	case p.FeePerWeight == 0:
		return fmt.Errorf("%w: feePerWeight must be positive", ErrInvalidParams)
	case p.MaxFeeIterations <= 0:
		return fmt.Errorf("%w: maxFeeIterations must be positive", ErrInvalidParams)
	case p.MaxChallengeRetries <= 0:
		return fmt.Errorf("%w: maxChallengeRetries must be positive", ErrInvalidParams)
	case p.MaxSetSize < 2 || !arith.IsPowerOfTwo(p.MaxSetSize):
		return fmt.Errorf("%w: maxSetSize %d is not a power of two", ErrInvalidParams, p.MaxSetSize)
	case p.MaxMessageSize <= 0 || p.MaxMessageSize > DefaultMaxMessageSize:
		return fmt.Errorf("%w: maxMessageSize must be in [1, %d]", ErrInvalidParams, DefaultMaxMessageSize)
	case p.MaxAmountsPerProof <= 0:
		return fmt.Errorf("%w: maxAmountsPerProof must be positive", ErrInvalidParams)
	case p.MaxMoney == 0:
		return fmt.Errorf("%w: maxMoney must be positive", ErrInvalidParams)
	case p.MinStake > p.MaxMoney:
		return fmt.Errorf("%w: minStake above maxMoney", ErrInvalidParams)
	}
	return nil
}
