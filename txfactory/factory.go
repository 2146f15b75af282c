// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package txfactory builds confidential transactions: it selects inputs per
// token, adds change and fee outputs, and signs the whole transaction so the
// signature also proves that every token balances.
package txfactory

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	log "github.com/luxfi/log"

	"github.com/luxfi/blsct/keys"
	"github.com/luxfi/blsct/params"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/signature"
	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

// SequenceFinal disables replacement of an input's transaction.
const SequenceFinal = ^uint32(0)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMinimumStake      = errors.New("minimum stake not met")
	ErrNotEnoughStaked   = errors.New("Not enough staked coins")
	ErrFeeNotConverged   = errors.New("fee did not converge")
	ErrFeeExceedsAmount  = errors.New("fee exceeds amount")
	ErrBalanceOverflow   = errors.New("balance overflows")
)

// MinimumStakeError reports a stake below the minimum. It matches
// ErrMinimumStake.
type MinimumStakeError struct {
	MinStake uint64
}

func (e *MinimumStakeError) Error() string {
	return fmt.Sprintf("A minimum of %s is required to stake", tx.FormatMoney(e.MinStake))
}

func (*MinimumStakeError) Is(target error) bool {
	return target == ErrMinimumStake
}

// Amounts tracks what one token's outputs request and its inputs offer.
type Amounts struct {
	FromInputs  uint64
	FromOutputs uint64
}

// Option configures a Factory.
type Option func(*Factory)

func WithParams(p params.Params) Option {
	return func(f *Factory) { f.params = p }
}

func WithLogger(l log.Logger) Option {
	return func(f *Factory) { f.log = l }
}

// Factory accumulates inputs and outputs for one transaction. It must not
// be used from more than one goroutine.
type Factory struct {
	rp     *rangeproof.Logic[Scalar, Point]
	params params.Params
	log    log.Logger

	amounts          map[tokens.TokenID]*Amounts
	inputs           map[tokens.TokenID][]UnsignedInput
	outputs          map[tokens.TokenID][]UnsignedOutput
	predicateOutputs []UnsignedOutput
}

func NewFactory(rp *rangeproof.Logic[Scalar, Point], opts ...Option) *Factory {
	f := &Factory{
		rp:     rp,
		params: params.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = log.NewTestLogger(log.InfoLevel)
	}
	f.reset()
	return f
}

func (f *Factory) reset() {
	f.amounts = make(map[tokens.TokenID]*Amounts)
	f.inputs = make(map[tokens.TokenID][]UnsignedInput)
	f.outputs = make(map[tokens.TokenID][]UnsignedOutput)
	f.predicateOutputs = nil
}

// fresh returns an empty factory with the same configuration.
func (f *Factory) fresh() *Factory {
	c := &Factory{rp: f.rp, params: f.params, log: f.log}
	c.reset()
	return c
}

func (f *Factory) amountsOf(id tokens.TokenID) *Amounts {
	a, ok := f.amounts[id]
	if !ok {
		a = &Amounts{}
		f.amounts[id] = a
	}
	return a
}

// Amounts returns the totals accumulated for id.
func (f *Factory) Amounts(id tokens.TokenID) Amounts {
	if a, ok := f.amounts[id]; ok {
		return *a
	}
	return Amounts{}
}

// AddInput offers a coin for spending.
func (f *Factory) AddInput(amount uint64, gamma, spendingKey Scalar, id tokens.TokenID, outpoint tx.OutPoint, stakedCommitment bool) {
	f.inputs[id] = append(f.inputs[id], UnsignedInput{
		In:               tx.TxIn{PrevOut: outpoint, Sequence: SequenceFinal},
		Value:            amount,
		Gamma:            gamma,
		SpendingKey:      spendingKey,
		StakedCommitment: stakedCommitment,
	})
	f.amountsOf(id).FromInputs += amount
}

// AddOutput requests a payment of amount to dest. With subtractFee the
// output pays amount less the fee its own weight costs.
func (f *Factory) AddOutput(dest keys.DoublePublicKey, amount uint64, memo string, id tokens.TokenID, typ TxType, minStake uint64, subtractFee bool) error {
	out, err := CreateOutput(f.rp, dest, amount, memo, id, Scalar{}, typ, minStake)
	if err != nil {
		return err
	}

	var fee uint64
	if subtractFee {
		weight, err := out.Out.Weight()
		if err != nil {
			return err
		}
		fee = weight * f.params.FeePerWeight
		if fee >= amount {
			return fmt.Errorf("%w: fee %d, amount %d", ErrFeeExceedsAmount, fee, amount)
		}
		if out, err = CreateOutput(f.rp, dest, amount-fee, memo, id, Scalar{}, typ, minStake); err != nil {
			return err
		}
	}

	f.amountsOf(id).FromOutputs += amount - fee
	f.outputs[id] = append(f.outputs[id], *out)
	return nil
}

// AddPredicateOutput adds a token creation or mint output. Its value is
// balanced by the predicate, not by inputs.
func (f *Factory) AddPredicateOutput(out *UnsignedOutput) {
	f.predicateOutputs = append(f.predicateOutputs, *out)
}

// BuildTx selects inputs, adds change and fee outputs and signs. It repeats
// until the fee charged matches the weight of the transaction it is charged
// on.
func (f *Factory) BuildTx(changeDest keys.DoublePublicKey, minStake uint64, typ TxType) (*tx.Transaction, error) {
	be := f.rp.Backend()

	base := tx.New()
	outputGammas := be.Zero()
	var outputSigs []signature.Signature

	emit := func(out *UnsignedOutput) {
		base.Outputs = append(base.Outputs, out.Out)
		outputGammas = outputGammas.Sub(out.Gamma)
		outputSigs = append(outputSigs, out.signatures()...)
	}
	for i := range f.predicateOutputs {
		emit(&f.predicateOutputs[i])
	}
	for _, id := range sortedTokenIDs(f.outputs) {
		for i := range f.outputs[id] {
			emit(&f.outputs[id][i])
		}
	}

	inputIDs := sortedTokenIDs(f.inputs)
	var fee uint64
	for iteration := 0; iteration < f.params.MaxFeeIterations; iteration++ {
		t := base.Copy()
		gammaAcc := outputGammas
		sigs := append([]signature.Signature(nil), outputSigs...)
		consumed := make(map[tokens.TokenID]uint64)

		owed := func(id tokens.TokenID) uint64 {
			o := f.Amounts(id).FromOutputs
			if id.IsDefault() {
				o += fee
			}
			return o
		}
		consume := func(staked bool) {
			for _, id := range inputIDs {
				for _, in := range f.inputs[id] {
					if in.StakedCommitment != staked {
						continue
					}
					if consumed[id] >= owed(id) {
						break
					}
					t.Inputs = append(t.Inputs, in.In)
					gammaAcc = gammaAcc.Add(in.Gamma)
					hash := in.In.Hash()
					sigs = append(sigs, signature.Sign(in.SpendingKey, hash[:]))
					consumed[id] += in.Value
				}
			}
		}
		if typ.staked() {
			consume(true)
		}
		consume(false)

		ids := sortedTokenIDs(f.amounts)
		change := make(map[tokens.TokenID]uint64, len(ids))
		for _, id := range ids {
			need := owed(id)
			if consumed[id] < need {
				f.log.Debug("insufficient funds",
					log.String("token", id.String()),
					log.String("available", tx.FormatMoney(consumed[id])),
					log.String("required", tx.FormatMoney(need)),
				)
				return nil, fmt.Errorf("%w: token %s has %d, needs %d", ErrInsufficientFunds, id, consumed[id], need)
			}
			change[id] = consumed[id] - need
		}

		for _, id := range ids {
			if change[id] == 0 {
				continue
			}
			co, err := CreateOutput(f.rp, changeDest, change[id], ChangeMemo, id, Scalar{}, Normal, minStake)
			if err != nil {
				return nil, err
			}
			gammaAcc = gammaAcc.Sub(co.Gamma)
			t.Outputs = append(t.Outputs, co.Out)
			sigs = append(sigs, co.signatures()...)
		}

		weight, err := t.Weight()
		if err != nil {
			return nil, err
		}
		weightFee := weight * f.params.FeePerWeight
		if fee == weightFee {
			t.Outputs = append(t.Outputs, tx.TxOut{
				Value:   fee,
				Script:  tx.FeeScript(),
				TokenID: tokens.DefaultTokenID,
			})
			sigs = append(sigs, signature.SignBalance(gammaAcc))
			t.Sig = signature.Aggregate(sigs...)

			f.log.Debug("built transaction",
				log.Int("inputs", len(t.Inputs)),
				log.Int("outputs", len(t.Outputs)),
				log.Int("iterations", iteration+1),
				log.String("fee", tx.FormatMoney(fee)),
			)
			return t, nil
		}
		fee = weightFee
	}
	return nil, fmt.Errorf("%w after %d iterations", ErrFeeNotConverged, f.params.MaxFeeIterations)
}

// CreateTransaction pays amount of id to dest from candidates, enforcing
// the staking rules of typ.
func (f *Factory) CreateTransaction(
	candidates []InputCandidate,
	changeDest keys.DoublePublicKey,
	dest keys.DoublePublicKey,
	amount uint64,
	memo string,
	id tokens.TokenID,
	typ TxType,
	minStake uint64,
) (*tx.Transaction, error) {
	b := f.fresh()

	var fromStaked uint64
	if typ == StakedCommitment {
		for _, c := range candidates {
			if c.StakedCommitment {
				fromStaked += c.Amount
			}
			b.AddInput(c.Amount, c.Gamma, c.SpendingKey, c.TokenID, c.OutPoint, c.StakedCommitment)
		}
		if amount+fromStaked < minStake {
			return nil, &MinimumStakeError{MinStake: minStake}
		}
		if err := b.AddOutput(dest, amount+fromStaked, memo, id, typ, minStake, false); err != nil {
			return nil, err
		}
		return b.BuildTx(changeDest, minStake, typ)
	}

	for _, c := range candidates {
		if c.StakedCommitment {
			if !typ.staked() {
				continue
			}
			fromStaked += c.Amount
		}
		b.AddInput(c.Amount, c.Gamma, c.SpendingKey, c.TokenID, c.OutPoint, c.StakedCommitment)
	}

	if typ == StakedCommitmentUnstake {
		if fromStaked < amount {
			return nil, ErrNotEnoughStaked
		}
		remaining := fromStaked - amount
		if remaining > 0 && remaining < minStake {
			return nil, &MinimumStakeError{MinStake: minStake}
		}
		if remaining > 0 {
			if err := b.AddOutput(dest, remaining, memo, id, StakedCommitment, minStake, false); err != nil {
				return nil, err
			}
		}
	}

	if err := b.AddOutput(dest, amount, memo, id, typ, minStake, false); err != nil {
		return nil, err
	}
	return b.BuildTx(changeDest, minStake, typ)
}

func sortedTokenIDs[V any](m map[tokens.TokenID]V) []tokens.TokenID {
	ids := make([]tokens.TokenID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if c := bytes.Compare(ids[i].Token[:], ids[j].Token[:]); c != 0 {
			return c < 0
		}
		return ids[i].Subid < ids[j].Subid
	})
	return ids
}
