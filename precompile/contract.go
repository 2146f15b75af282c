// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package precompile exposes the confidential-transaction verifiers as a
// stateless EVM precompile. Address: 0x9210 (Lux Crypto Privacy range)
//
// Input is an operation byte followed by its arguments in the binary layout
// proofs are serialized in. Verifications return a single byte, 0x01 when the
// proof holds and 0x00 otherwise. Malformed input is an error.
package precompile

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/geth/common"
	log "github.com/luxfi/log"

	"github.com/luxfi/blsct/generators"
	"github.com/luxfi/blsct/pos"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/setmem"
	"github.com/luxfi/blsct/signature"
	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
	"github.com/luxfi/blsct/wire"
)

var (
	// ContractAddress is the address of the BLSCT verifier precompile
	ContractAddress = common.HexToAddress("0x9210")

	ErrInvalidInput   = errors.New("invalid blsct precompile input")
	ErrOutOfGas       = errors.New("out of gas")
	ErrUnsupportedOp  = errors.New("unsupported operation")
	ErrTrailingBytes  = errors.New("trailing input bytes")
	ErrTooManyEntries = errors.New("too many entries")
)

// Operation selectors
const (
	OpVerifyRangeProof   = 0x01
	OpVerifyProofOfStake = 0x02
	OpVerifySignatures   = 0x03
)

// Gas costs
const (
	GasRangeProofBase   = 60000
	GasProofOfStakeBase = 150000
	GasPerStaked        = 2000
	GasSignatureBase    = 45000
	GasPerPairing       = 34000
	GasPerByte          = 8

	maxSignaturePairs = 256
)

var (
	resultValid   = []byte{0x01}
	resultInvalid = []byte{0x00}
)

// Contract is a precompile the EVM calls by address.
type Contract interface {
	Address() common.Address
	RequiredGas(input []byte) uint64
	Run(caller common.Address, addr common.Address, input []byte, suppliedGas uint64, readOnly bool) ([]byte, uint64, error)
}

var _ Contract = (*verifierPrecompile)(nil)

// Config sizes the verifier. Zero values select the defaults.
type Config struct {
	// MaxBases bounds the vector bases derived per seed.
	MaxBases int
	// MaxSetSize bounds the staked commitment set.
	MaxSetSize int
	Logger     log.Logger
}

// VerifierPrecompile is the precompile singleton.
var VerifierPrecompile = New(Config{})

// verifierPrecompile derives its bases on first use.
type verifierPrecompile struct {
	cfg Config
	log log.Logger

	once    sync.Once
	initErr error
	rp      *rangeproof.Logic[tx.Scalar, tx.Point]
	pos     *pos.Logic[tx.Scalar, tx.Point]
}

// New returns a verifier precompile. Staked commitments are opened on the
// base token's generators.
func New(cfg Config) Contract {
	if cfg.MaxBases <= 0 {
		cfg.MaxBases = generators.MaxBases
	}
	if cfg.MaxSetSize <= 0 {
		cfg.MaxSetSize = setmem.DefaultMaxSetSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewTestLogger(log.InfoLevel)
	}
	return &verifierPrecompile{cfg: cfg, log: logger}
}

func (p *verifierPrecompile) init() error {
	p.once.Do(func() {
		gf := generators.NewFactory[tx.Scalar, tx.Point](tx.Backend(), p.cfg.MaxBases)
		p.rp = rangeproof.NewLogic(gf, rangeproof.WithLogger(p.log))
		setup, err := setmem.NewSetup(gf, tokens.DefaultTokenID.Seed(), p.cfg.MaxSetSize)
		if err != nil {
			p.initErr = err
			return
		}
		p.pos = pos.NewLogic(setup, p.rp, p.log)
	})
	return p.initErr
}

func (*verifierPrecompile) Address() common.Address {
	return ContractAddress
}

// RequiredGas prices an operation from its selector and input size.
func (*verifierPrecompile) RequiredGas(input []byte) uint64 {
	if len(input) < 1 {
		return 0
	}
	perByte := uint64(len(input)) * GasPerByte

	switch input[0] {
	case OpVerifyRangeProof:
		return GasRangeProofBase + perByte
	case OpVerifyProofOfStake:
		// staked commitments dominate the input
		return GasProofOfStakeBase + uint64(len(input)/tx.Backend().PointSize())*GasPerStaked + perByte
	case OpVerifySignatures:
		if len(input) < 5 {
			return 0
		}
		n := uint64(input[1])<<24 | uint64(input[2])<<16 | uint64(input[3])<<8 | uint64(input[4])
		if n > maxSignaturePairs {
			n = maxSignaturePairs
		}
		return GasSignatureBase + (n+1)*GasPerPairing + perByte
	default:
		return 0
	}
}

// Run executes the verifier precompile
func (p *verifierPrecompile) Run(
	caller common.Address,
	addr common.Address,
	input []byte,
	suppliedGas uint64,
	readOnly bool,
) ([]byte, uint64, error) {
	gasCost := p.RequiredGas(input)
	if suppliedGas < gasCost {
		return nil, 0, ErrOutOfGas
	}
	if len(input) < 1 {
		return nil, suppliedGas - gasCost, ErrInvalidInput
	}
	if err := p.init(); err != nil {
		return nil, suppliedGas - gasCost, err
	}

	var (
		valid bool
		err   error
	)
	switch op := input[0]; op {
	case OpVerifyRangeProof:
		valid, err = p.verifyRangeProof(input[1:])
	case OpVerifyProofOfStake:
		valid, err = p.verifyProofOfStake(input[1:])
	case OpVerifySignatures:
		valid, err = p.verifySignatures(input[1:])
	default:
		err = fmt.Errorf("%w: 0x%02x", ErrUnsupportedOp, op)
	}
	if err != nil {
		return nil, suppliedGas - gasCost, err
	}

	p.log.Debug("blsct precompile",
		log.Int("op", int(input[0])),
		log.String("caller", caller.Hex()),
		log.String("valid", fmt.Sprint(valid)),
	)
	if valid {
		return resultValid, suppliedGas - gasCost, nil
	}
	return resultInvalid, suppliedGas - gasCost, nil
}

// verifyRangeProof reads seed (var bytes), minValue (uint64) and a range
// proof filling the rest of the input.
func (p *verifierPrecompile) verifyRangeProof(input []byte) (bool, error) {
	r := wire.NewReader(p.rp.Backend(), input)
	seed := r.VarBytes()
	minValue := r.Uint64()
	if err := r.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	proof, err := rangeproof.Decode(p.rp.Backend(), r.Rest())
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return p.rp.Verify([]rangeproof.WithSeed[tx.Scalar, tx.Point]{{
		Proof:    proof,
		Seed:     seed,
		MinValue: minValue,
	}}), nil
}

// verifyProofOfStake reads the kernel (prevTime, stakeModifier, time,
// nextTarget), the Fiat-Shamir scalar, etaPhi (var bytes), the staked
// commitments and a proof of stake filling the rest of the input.
func (p *verifierPrecompile) verifyProofOfStake(input []byte) (bool, error) {
	r := wire.NewReader(p.rp.Backend(), input)
	k := pos.Kernel{
		PrevTime:      r.Uint32(),
		StakeModifier: r.Uint64(),
		Time:          r.Uint32(),
		NextTarget:    r.Uint32(),
	}
	eta := r.Scalar()
	etaPhi := r.VarBytes()
	staked := r.Points()
	if err := r.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	proof, err := pos.Decode(p.rp.Backend(), r.Rest())
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return p.pos.Verify(staked, eta, etaPhi, proof, k) == pos.Valid, nil
}

// verifySignatures reads the public keys, one var-bytes message per key and
// the aggregate signature.
func (p *verifierPrecompile) verifySignatures(input []byte) (bool, error) {
	r := wire.NewReader(p.rp.Backend(), input)
	pks := r.Points()
	if len(pks) > maxSignaturePairs {
		return false, fmt.Errorf("%w: %d signature pairs", ErrTooManyEntries, len(pks))
	}
	msgs := make([][]byte, len(pks))
	for i := range msgs {
		msgs[i] = r.VarBytes()
	}
	sigBytes := r.Raw(signature.SignatureSize)
	if err := r.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(r.Rest()) != 0 {
		return false, fmt.Errorf("%w: %d", ErrTrailingBytes, len(r.Rest()))
	}
	sig, err := signature.FromBytes(sigBytes)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return signature.VerifyBatch(pks, msgs, sig), nil
}
