// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package precompile

import (
	"bytes"

	"github.com/luxfi/geth/common"
)

// AddressRange is an inclusive range of precompile addresses.
type AddressRange struct {
	Start common.Address
	End   common.Address
}

// Contains returns true iff addr lies within a.
func (a *AddressRange) Contains(addr common.Address) bool {
	addrBytes := addr.Bytes()
	return bytes.Compare(addrBytes, a.Start[:]) >= 0 && bytes.Compare(addrBytes, a.End[:]) <= 0
}

// PrivacyRange holds the privacy precompiles (0x9000-0x9FFF).
var PrivacyRange = AddressRange{
	Start: common.HexToAddress("0x0000000000000000000000000000000000009000"),
	End:   common.HexToAddress("0x0000000000000000000000000000000000009fff"),
}

var (
	// Module is the precompile module singleton
	Module = &module{
		address:  ContractAddress,
		contract: VerifierPrecompile,
	}
)

type module struct {
	address  common.Address
	contract Contract
}

// Address returns the address where the precompile is accessible.
func (m *module) Address() common.Address {
	return m.address
}

// Contract returns a thread-safe singleton that serves calls to Address.
func (m *module) Contract() Contract {
	return m.contract
}
