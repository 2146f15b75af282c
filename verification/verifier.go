// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package verification checks confidential transactions against a view of
// unspent coins and token state.
//
// A transaction is valid when one aggregate signature covers every input,
// every output and a balance key, and when every confidential output carries
// a valid range proof. The balance key is the sum of the input commitments
// less the output commitments, corrected by the public amounts the
// transaction mints, pays as fee or receives as block reward. Only the
// blinding-factor part of it survives when every token balances, so a
// signature under it proves the balance.
package verification

import (
	"errors"
	"fmt"
	"time"

	log "github.com/luxfi/log"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/coins"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/signature"
	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

// Rejection reasons. Each is reported verbatim to peers.
const (
	ReasonInputsUnknown         = "bad-inputs-unknown"
	ReasonInputUnknown          = "bad-input-unknown"
	ReasonPredicateFailed       = "failed-to-execute-predicate"
	ReasonSpendablePublicValue  = "spendable-output-with-public-value"
	ReasonMoreThanOneFeeOutput  = "more-than-one-fee-output"
	ReasonSignatureCheckFailed  = "failed-signature-check"
	ReasonRangeProofCheckFailed = "failed-rangeproof-check"
)

var errInvalidPublicKey = errors.New("invalid predicate public key")

// RejectError is returned for an invalid transaction. Reason is one of the
// Reason constants.
type RejectError struct {
	Reason string
	Err    error
}

func (e *RejectError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RejectError) Unwrap() error {
	return e.Err
}

// Is matches another RejectError with the same reason.
func (e *RejectError) Is(target error) bool {
	t, ok := target.(*RejectError)
	return ok && t.Err == nil && t.Reason == e.Reason
}

func reject(reason string, err error) *RejectError {
	return &RejectError{Reason: reason, Err: err}
}

// View is the chain state a transaction is checked against. Predicates
// write token state through it, so callers verifying a candidate pass a
// scratch view.
type View interface {
	tokens.View
	HaveInputs(t *tx.Transaction) (bool, error)
	GetCoin(op tx.OutPoint) (*coins.Coin, error)
}

var _ View = (*coins.View)(nil)

type Option func(*Verifier)

func WithLogger(l log.Logger) Option {
	return func(v *Verifier) { v.log = l }
}

// Verifier checks transactions. It is safe for concurrent use when the
// views passed to it are.
type Verifier struct {
	rp  *rangeproof.Logic[tx.Scalar, tx.Point]
	log log.Logger
}

func NewVerifier(rp *rangeproof.Logic[tx.Scalar, tx.Point], opts ...Option) *Verifier {
	v := &Verifier{rp: rp}
	for _, opt := range opts {
		opt(v)
	}
	if v.log == nil {
		v.log = log.NewTestLogger(log.InfoLevel)
	}
	return v
}

// VerifyTx returns nil when t is valid against view, or a *RejectError
// naming the first check that failed. blockReward is the amount of the
// base token a coinbase may create. Staked commitment outputs must prove at
// least minStake.
func (v *Verifier) VerifyTx(t *tx.Transaction, view View, blockReward, minStake uint64) error {
	start := time.Now()
	err := v.verifyTx(t, view, blockReward, minStake)
	verifyDuration.Observe(time.Since(start).Seconds())

	var rerr *RejectError
	if errors.As(err, &rerr) {
		txRejected.WithLabelValues(rerr.Reason).Inc()
		v.log.Debug("rejected transaction",
			log.String("tx", t.Hash().Hex()),
			log.String("reason", rerr.Reason),
			log.String("error", rerr.Error()),
		)
		return err
	}
	if err != nil {
		return err
	}
	txAccepted.Inc()
	return nil
}

func (v *Verifier) verifyTx(t *tx.Transaction, view View, blockReward, minStake uint64) error {
	ok, err := view.HaveInputs(t)
	if err != nil {
		return err
	}
	if !ok {
		return reject(ReasonInputsUnknown, nil)
	}

	be := v.rp.Backend()
	var (
		pks        []tx.Point
		msgs       [][]byte
		proofs     []rangeproof.WithSeed[tx.Scalar, tx.Point]
		balanceKey = be.Identity()
	)
	addPair := func(pk tx.Point, msg []byte) {
		pks = append(pks, pk)
		msgs = append(msgs, msg)
	}

	if blockReward > 0 {
		g, err := v.tokenBase(tokens.DefaultTokenID)
		if err != nil {
			return err
		}
		balanceKey = balanceKey.Add(g.Mul(be.ScalarFromUint64(blockReward)))
	}

	if !t.IsCoinbase() {
		for _, in := range t.Inputs {
			coin, err := view.GetCoin(in.PrevOut)
			if err != nil {
				if errors.Is(err, coins.ErrCoinNotFound) {
					return reject(ReasonInputUnknown, err)
				}
				return err
			}
			if !coin.Out.IsBLSCT() {
				return reject(ReasonInputUnknown, fmt.Errorf("input %s:%d is not confidential", in.PrevOut.Hash.Hex(), in.PrevOut.N))
			}
			hash := in.Hash()
			addPair(coin.Out.Blsct.SpendingKey, hash[:])
			balanceKey = balanceKey.Add(coin.Out.Commitment())
		}
	}

	var fee uint64
	for i := range t.Outputs {
		out := &t.Outputs[i]
		outHash := out.Hash()

		var pred *tokens.Predicate
		if len(out.Predicate) > 0 {
			pred, err = tokens.Parse(out.Predicate)
			if err != nil {
				return reject(ReasonPredicateFailed, err)
			}
			pk, err := be.PointFromBytes(pred.PublicKey())
			if err != nil {
				return reject(ReasonPredicateFailed, fmt.Errorf("%w: %v", errInvalidPublicKey, err))
			}

			switch {
			case pred.Op == tokens.Mint:
				addPair(pk, outHash[:])
				g, err := v.tokenBase(tokens.NewTokenID(pred.TokenHash()))
				if err != nil {
					return err
				}
				balanceKey = balanceKey.Add(g.Mul(signedScalar(be, pred.Amount)))
			case pred.Op == tokens.CreateToken:
				addPair(pk, outHash[:])
			case pred.Op == tokens.NftMint:
				addPair(pk, outHash[:])
				g, err := v.tokenBase(tokens.NewNftID(pred.TokenHash(), pred.NftID))
				if err != nil {
					return err
				}
				balanceKey = balanceKey.Add(g)
			case out.Script.IsFee() && pred.Op == tokens.PayFee:
				addPair(pk, signature.FeeMessage)
			}

			if err := tokens.Execute(pred, view, false); err != nil {
				return reject(ReasonPredicateFailed, err)
			}
		}

		if out.IsBLSCT() {
			addPair(out.Blsct.EphemeralKey, outHash[:])
			proofs = append(proofs, rangeproof.WithSeed[tx.Scalar, tx.Point]{
				Proof: out.Blsct.RangeProof,
				Seed:  out.TokenID.Seed(),
			})
			balanceKey = balanceKey.Sub(out.Commitment())

			if staked, ok := out.StakedCommitmentRangeProof(); ok {
				staked.Vs = []tx.Point{out.Commitment()}
				proofs = append(proofs, rangeproof.WithSeed[tx.Scalar, tx.Point]{
					Proof:    staked,
					Seed:     tokens.DefaultTokenID.Seed(),
					MinValue: minStake,
				})
			}
			continue
		}

		if !out.Script.IsUnspendable() && out.Value > 0 {
			return reject(ReasonSpendablePublicValue, fmt.Errorf("output %d carries %s", i, tx.FormatMoney(out.Value)))
		}
		if fee > 0 || !tx.MoneyRange(out.Value) {
			return reject(ReasonMoreThanOneFeeOutput, fmt.Errorf("output %d", i))
		}
		if out.Value == 0 {
			continue
		}
		if out.Script.IsFee() || (pred != nil && pred.Op == tokens.PayFee) {
			fee = out.Value
		}
		g, err := v.tokenBase(out.TokenID)
		if err != nil {
			return err
		}
		balanceKey = balanceKey.Sub(g.Mul(be.ScalarFromUint64(out.Value)))
	}

	addPair(balanceKey, signature.BalanceMessage)
	signaturePairs.Observe(float64(len(pks)))
	if !signature.VerifyBatch(pks, msgs, t.Sig) {
		return reject(ReasonSignatureCheckFailed, nil)
	}

	rangeProofs.Observe(float64(len(proofs)))
	if !v.rp.Verify(proofs) {
		return reject(ReasonRangeProofCheckFailed, nil)
	}
	return nil
}

// tokenBase returns the generator values of id are committed on.
func (v *Verifier) tokenBase(id tokens.TokenID) (tx.Point, error) {
	gens, err := v.rp.Generators().GetInstance(id.Seed())
	if err != nil {
		return tx.Point{}, err
	}
	return gens.G, nil
}

func signedScalar(be arith.Backend[tx.Scalar, tx.Point], v int64) tx.Scalar {
	if v < 0 {
		return be.ScalarFromUint64(uint64(-v)).Neg()
	}
	return be.ScalarFromUint64(uint64(v))
}
