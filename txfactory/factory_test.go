// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txfactory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/blsct/generators"
	"github.com/luxfi/blsct/keys"
	"github.com/luxfi/blsct/params"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

const testMinStake = 5 * tx.Coin

func newTestLogic() *rangeproof.Logic[Scalar, Point] {
	return rangeproof.NewLogic(generators.NewFactory[Scalar, Point](tx.Backend(), rangeproof.BitsPerValue))
}

func newTestKeys(t *testing.T) keys.KeyPair {
	t.Helper()
	kp, err := keys.NewKeyPair()
	require.NoError(t, err)
	return kp
}

// fund creates an output of amount paying kp and returns it as a spendable
// candidate at outpoint n.
func fund(t *testing.T, rp *rangeproof.Logic[Scalar, Point], kp keys.KeyPair, n uint32, amount uint64, typ TxType) InputCandidate {
	t.Helper()
	out, err := CreateOutput(rp, kp.PublicKey(), amount, "", tokens.DefaultTokenID, Scalar{}, typ, testMinStake)
	require.NoError(t, err)
	op := tx.OutPoint{Hash: tx.New().Hash(), N: n}
	c, ok := RecoverInputCandidate(rp, kp, op, &out.Out)
	require.True(t, ok)
	return c
}

func testParams() params.Params {
	p := params.Default()
	p.MinStake = testMinStake
	return p
}

// recovered sums what kp can recover from the outputs of t.
func recovered(rp *rangeproof.Logic[Scalar, Point], kp keys.KeyPair, t *tx.Transaction) uint64 {
	var sum uint64
	for i := range t.Outputs {
		if c, ok := RecoverInputCandidate(rp, kp, tx.OutPoint{N: uint32(i)}, &t.Outputs[i]); ok {
			sum += c.Amount
		}
	}
	return sum
}

func TestTxType_String(t *testing.T) {
	require.Equal(t, "normal", Normal.String())
	require.Equal(t, "staked_commitment", StakedCommitment.String())
	require.Equal(t, "staked_commitment_unstake", StakedCommitmentUnstake.String())
	require.Equal(t, "tx_type(9)", TxType(9).String())
}

func TestCreateOutput_Recover(t *testing.T) {
	require := require.New(t)
	rp := newTestLogic()
	alice, bob := newTestKeys(t), newTestKeys(t)

	out, err := CreateOutput(rp, alice.PublicKey(), 1234, "for lunch", tokens.DefaultTokenID, Scalar{}, Normal, 0)
	require.NoError(err)
	require.True(out.Out.IsBLSCT())
	require.Equal(tx.ScriptTrue, out.Out.Script.Kind)
	require.Zero(out.Out.Value)

	op := tx.OutPoint{N: 1}
	c, ok := RecoverInputCandidate(rp, alice, op, &out.Out)
	require.True(ok)
	require.Equal(uint64(1234), c.Amount)
	require.Equal("for lunch", string(c.Memo))
	require.True(c.Gamma.Equal(out.Gamma))
	require.Equal(op, c.OutPoint)
	require.False(c.StakedCommitment)
	require.True(tx.Backend().Generator().Mul(c.SpendingKey).Equal(out.Out.Blsct.SpendingKey))
	require.True(tx.Backend().Generator().Mul(out.BlindingKey).Equal(out.Out.Blsct.EphemeralKey))

	_, ok = RecoverInputCandidate(rp, bob, op, &out.Out)
	require.False(ok)
}

func TestCreateOutput_Staked(t *testing.T) {
	require := require.New(t)
	rp := newTestLogic()
	kp := newTestKeys(t)

	out, err := CreateOutput(rp, kp.PublicKey(), 10*tx.Coin, "", tokens.DefaultTokenID, Scalar{}, StakedCommitment, testMinStake)
	require.NoError(err)
	staked, ok := out.Out.StakedCommitmentRangeProof()
	require.True(ok)
	require.Empty(staked.Vs)

	staked.Vs = []Point{out.Out.Commitment()}
	require.True(rp.Verify([]rangeproof.WithSeed[Scalar, Point]{{
		Proof:    staked,
		Seed:     tokens.DefaultTokenID.Seed(),
		MinValue: testMinStake,
	}}))

	_, err = CreateOutput(rp, kp.PublicKey(), tx.Coin, "", tokens.DefaultTokenID, Scalar{}, StakedCommitment, testMinStake)
	require.ErrorIs(err, rangeproof.ErrValueBelowMinimum)

	// other tokens cannot be staked
	var token tokens.TokenID
	token.Token[0] = 1
	out, err = CreateOutput(rp, kp.PublicKey(), 10*tx.Coin, "", token, Scalar{}, StakedCommitment, testMinStake)
	require.NoError(err)
	_, ok = out.Out.StakedCommitmentRangeProof()
	require.False(ok)
}

func TestBuildTx_Balance(t *testing.T) {
	require := require.New(t)
	rp := newTestLogic()
	alice, bob := newTestKeys(t), newTestKeys(t)

	f := NewFactory(rp, WithParams(testParams()))
	inputs := map[tx.OutPoint]uint64{}
	for i := uint32(0); i < 3; i++ {
		c := fund(t, rp, alice, i, 10*tx.Coin, Normal)
		inputs[c.OutPoint] = c.Amount
		f.AddInput(c.Amount, c.Gamma, c.SpendingKey, c.TokenID, c.OutPoint, false)
	}
	require.NoError(f.AddOutput(bob.PublicKey(), 15*tx.Coin, "", tokens.DefaultTokenID, Normal, 0, false))
	require.Equal(Amounts{FromInputs: 30 * tx.Coin, FromOutputs: 15 * tx.Coin}, f.Amounts(tokens.DefaultTokenID))

	built, err := f.BuildTx(alice.PublicKey(), 0, Normal)
	require.NoError(err)

	// inputs stop once the outputs and fee are covered
	require.Len(built.Inputs, 2)
	var consumed uint64
	for _, in := range built.Inputs {
		require.Equal(SequenceFinal, in.Sequence)
		consumed += inputs[in.PrevOut]
	}

	fee := built.Fee()
	require.NotZero(fee)
	require.True(built.Outputs[len(built.Outputs)-1].Script.IsFee())
	require.Equal(15*tx.Coin, recovered(rp, bob, built))
	require.Equal(consumed, recovered(rp, bob, built)+recovered(rp, alice, built)+fee)
}

func TestBuildTx_InsufficientFunds(t *testing.T) {
	rp := newTestLogic()
	alice, bob := newTestKeys(t), newTestKeys(t)

	var token tokens.TokenID
	token.Token[0] = 7

	tests := []struct {
		name   string
		amount uint64
		id     tokens.TokenID
	}{
		{name: "more than the inputs", amount: 11 * tx.Coin, id: tokens.DefaultTokenID},
		{name: "inputs cannot pay the fee", amount: 10 * tx.Coin, id: tokens.DefaultTokenID},
		{name: "no inputs of the token", amount: 1, id: token},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFactory(rp, WithParams(testParams()))
			c := fund(t, rp, alice, 0, 10*tx.Coin, Normal)
			f.AddInput(c.Amount, c.Gamma, c.SpendingKey, c.TokenID, c.OutPoint, false)
			require.NoError(t, f.AddOutput(bob.PublicKey(), tt.amount, "", tt.id, Normal, 0, false))

			_, err := f.BuildTx(alice.PublicKey(), 0, Normal)
			require.ErrorIs(t, err, ErrInsufficientFunds)
		})
	}
}

func TestBuildTx_FeeNotConverged(t *testing.T) {
	rp := newTestLogic()
	alice, bob := newTestKeys(t), newTestKeys(t)

	p := testParams()
	p.MaxFeeIterations = 1
	f := NewFactory(rp, WithParams(p))
	c := fund(t, rp, alice, 0, 10*tx.Coin, Normal)
	f.AddInput(c.Amount, c.Gamma, c.SpendingKey, c.TokenID, c.OutPoint, false)
	require.NoError(t, f.AddOutput(bob.PublicKey(), tx.Coin, "", tokens.DefaultTokenID, Normal, 0, false))

	_, err := f.BuildTx(alice.PublicKey(), 0, Normal)
	require.ErrorIs(t, err, ErrFeeNotConverged)
}

func TestBuildTx_UnencodableOutput(t *testing.T) {
	rp := newTestLogic()
	alice := newTestKeys(t)

	f := NewFactory(rp, WithParams(testParams()))
	c := fund(t, rp, alice, 0, 10*tx.Coin, Normal)
	f.AddInput(c.Amount, c.Gamma, c.SpendingKey, c.TokenID, c.OutPoint, false)
	f.AddPredicateOutput(&UnsignedOutput{
		Out:   tx.TxOut{Script: tx.Script{Kind: tx.ScriptUnspendable + 1}, TokenID: tokens.DefaultTokenID},
		Gamma: tx.Backend().Zero(),
	})

	// the weight cannot be measured, so no fee is charged on a guess
	_, err := f.BuildTx(alice.PublicKey(), 0, Normal)
	require.ErrorIs(t, err, tx.ErrInvalidEncoding)
}

func TestAddOutput_SubtractFee(t *testing.T) {
	require := require.New(t)
	rp := newTestLogic()
	alice, bob := newTestKeys(t), newTestKeys(t)

	// the output only pays for its own weight, the rest of the fee comes
	// from the inputs
	f := NewFactory(rp, WithParams(testParams()))
	c := fund(t, rp, alice, 0, 11*tx.Coin, Normal)
	f.AddInput(c.Amount, c.Gamma, c.SpendingKey, c.TokenID, c.OutPoint, false)
	require.NoError(f.AddOutput(bob.PublicKey(), 10*tx.Coin, "", tokens.DefaultTokenID, Normal, 0, true))

	sent := f.Amounts(tokens.DefaultTokenID).FromOutputs
	require.Less(sent, 10*tx.Coin)

	built, err := f.BuildTx(alice.PublicKey(), 0, Normal)
	require.NoError(err)
	require.Equal(sent, recovered(rp, bob, built))

	err = f.AddOutput(bob.PublicKey(), 10, "", tokens.DefaultTokenID, Normal, 0, true)
	require.ErrorIs(err, ErrFeeExceedsAmount)
}

func TestCreateTransaction_Staking(t *testing.T) {
	rp := newTestLogic()
	alice := newTestKeys(t)
	dest := alice.PublicKey()
	f := NewFactory(rp, WithParams(testParams()))

	free := fund(t, rp, alice, 0, 20*tx.Coin, Normal)
	staked := fund(t, rp, alice, 1, 8*tx.Coin, StakedCommitment)
	require.True(t, staked.StakedCommitment)
	candidates := []InputCandidate{free, staked}

	tests := []struct {
		name    string
		typ     TxType
		amount  uint64
		wantErr error
		message string
	}{
		{name: "stake adds to staked coins", typ: StakedCommitment, amount: tx.Coin},
		{name: "unstake part", typ: StakedCommitmentUnstake, amount: 3 * tx.Coin},
		{name: "unstake all", typ: StakedCommitmentUnstake, amount: 8 * tx.Coin},
		{name: "unstake more than staked", typ: StakedCommitmentUnstake, amount: 9 * tx.Coin, wantErr: ErrNotEnoughStaked, message: "Not enough staked coins"},
		{name: "unstake below minimum", typ: StakedCommitmentUnstake, amount: 4 * tx.Coin, wantErr: ErrMinimumStake, message: "A minimum of 5.00 is required to stake"},
		{name: "normal spend ignores staked coins", typ: Normal, amount: 25 * tx.Coin, wantErr: ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built, err := f.CreateTransaction(candidates, dest, dest, tt.amount, "", tokens.DefaultTokenID, tt.typ, testMinStake)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				if tt.message != "" {
					require.EqualError(t, err, tt.message)
				}
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, built.Inputs)
		})
	}
}

func TestCreateTransaction_StakeBelowMinimum(t *testing.T) {
	rp := newTestLogic()
	alice := newTestKeys(t)
	f := NewFactory(rp, WithParams(testParams()))

	free := fund(t, rp, alice, 0, 20*tx.Coin, Normal)
	_, err := f.CreateTransaction([]InputCandidate{free}, alice.PublicKey(), alice.PublicKey(), tx.Coin, "", tokens.DefaultTokenID, StakedCommitment, testMinStake)

	var minErr *MinimumStakeError
	require.ErrorAs(t, err, &minErr)
	require.Equal(t, testMinStake, minErr.MinStake)
	require.ErrorIs(t, err, ErrMinimumStake)
}

func TestCreateTransaction_StakedOutputs(t *testing.T) {
	require := require.New(t)
	rp := newTestLogic()
	alice := newTestKeys(t)
	f := NewFactory(rp, WithParams(testParams()))

	free := fund(t, rp, alice, 0, 20*tx.Coin, Normal)
	staked := fund(t, rp, alice, 1, 8*tx.Coin, StakedCommitment)

	built, err := f.CreateTransaction([]InputCandidate{free, staked}, alice.PublicKey(), alice.PublicKey(), 3*tx.Coin, "", tokens.DefaultTokenID, StakedCommitmentUnstake, testMinStake)
	require.NoError(err)

	var stakedOut, freeOut uint64
	for i := range built.Outputs {
		c, ok := RecoverInputCandidate(rp, alice, tx.OutPoint{N: uint32(i)}, &built.Outputs[i])
		if !ok {
			continue
		}
		if c.StakedCommitment {
			stakedOut += c.Amount
		} else {
			freeOut += c.Amount
		}
	}
	require.Equal(5*tx.Coin, stakedOut)
	require.Equal(23*tx.Coin-built.Fee(), freeOut)
}

func TestAggregateTransactions(t *testing.T) {
	require := require.New(t)
	rp := newTestLogic()
	alice, bob := newTestKeys(t), newTestKeys(t)

	var parts []*tx.Transaction
	for i := uint32(0); i < 2; i++ {
		f := NewFactory(rp, WithParams(testParams()))
		c := fund(t, rp, alice, i, 10*tx.Coin, Normal)
		f.AddInput(c.Amount, c.Gamma, c.SpendingKey, c.TokenID, c.OutPoint, false)
		require.NoError(f.AddOutput(bob.PublicKey(), tx.Coin, "", tokens.DefaultTokenID, Normal, 0, false))
		built, err := f.BuildTx(alice.PublicKey(), 0, Normal)
		require.NoError(err)
		parts = append(parts, built)
	}

	agg := AggregateTransactions(parts)
	require.Len(agg.Inputs, 2)
	require.Len(agg.Outputs, len(parts[0].Outputs)+len(parts[1].Outputs)-1)
	require.Equal(parts[0].Fee()+parts[1].Fee(), agg.Fee())
	require.True(agg.Outputs[len(agg.Outputs)-1].Script.IsFee())
	require.Equal(2*tx.Coin, recovered(rp, bob, agg))
}

func TestSortedTokenIDs(t *testing.T) {
	a := tokens.NewNftID([32]byte{1}, 2)
	b := tokens.NewNftID([32]byte{1}, 1)
	c := tokens.NewTokenID([32]byte{0, 9})
	ids := sortedTokenIDs(map[tokens.TokenID]int{a: 0, b: 0, c: 0, tokens.DefaultTokenID: 0})
	require.Equal(t, []tokens.TokenID{tokens.DefaultTokenID, c, b, a}, ids)
}
