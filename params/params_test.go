// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package params

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault_Verify(t *testing.T) {
	p := Default()
	require.NoError(t, p.Verify())
	require.Equal(t, uint64(125), p.FeePerWeight)
	require.Equal(t, 32, p.MaxFeeIterations)
}

func TestFromJSON(t *testing.T) {
	require := require.New(t)

	p, err := FromJSON([]byte(`{"minStake": 500, "maxSetSize": 64}`))
	require.NoError(err)
	require.Equal(uint64(500), p.MinStake)
	require.Equal(64, p.MaxSetSize)
	require.Equal(DefaultFeePerWeight, p.FeePerWeight)

	_, err = FromJSON([]byte(`{"minStake":`))
	require.ErrorIs(err, ErrInvalidParams)
}

func TestParams_VerifyErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{name: "zero fee", modify: func(p *Params) { p.FeePerWeight = 0 }},
		{name: "no fee iterations", modify: func(p *Params) { p.MaxFeeIterations = 0 }},
		{name: "no retries", modify: func(p *Params) { p.MaxChallengeRetries = 0 }},
		{name: "set size not power of two", modify: func(p *Params) { p.MaxSetSize = 100 }},
		{name: "set size too small", modify: func(p *Params) { p.MaxSetSize = 1 }},
		{name: "message too long", modify: func(p *Params) { p.MaxMessageSize = 55 }},
		{name: "no amounts", modify: func(p *Params) { p.MaxAmountsPerProof = 0 }},
		{name: "stake above money", modify: func(p *Params) { p.MinStake = p.MaxMoney + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.modify(&p)
			require.ErrorIs(t, p.Verify(), ErrInvalidParams)
		})
	}
}
