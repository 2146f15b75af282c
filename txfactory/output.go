// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txfactory

import (
	"fmt"

	"github.com/luxfi/blsct/arith"
	"github.com/luxfi/blsct/arith/bls12381"
	"github.com/luxfi/blsct/keys"
	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/signature"
	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

type (
	Scalar = bls12381.Scalar
	Point  = bls12381.Point
)

// gammaSalt derives an output's blinding factor from its nonce. It matches
// the first blinding factor a point-seeded range proof commits with.
const gammaSalt = 100

// ChangeMemo is embedded in change outputs.
const ChangeMemo = "Change"

// TxType selects the rules CreateTransaction applies.
type TxType uint8

const (
	Normal TxType = iota
	// StakedCommitment locks value as stake.
	StakedCommitment
	// StakedCommitmentUnstake releases staked value.
	StakedCommitmentUnstake
)

func (t TxType) String() string {
	switch t {
	case Normal:
		return "normal"
	case StakedCommitment:
		return "staked_commitment"
	case StakedCommitmentUnstake:
		return "staked_commitment_unstake"
	default:
		return fmt.Sprintf("tx_type(%d)", uint8(t))
	}
}

func (t TxType) staked() bool {
	return t == StakedCommitment || t == StakedCommitmentUnstake
}

// UnsignedInput is a coin selected for spending.
type UnsignedInput struct {
	In               tx.TxIn
	Value            uint64
	Gamma            Scalar
	SpendingKey      Scalar
	StakedCommitment bool
}

// UnsignedOutput is an output and the secrets needed to authorize it.
type UnsignedOutput struct {
	Out         tx.TxOut
	BlindingKey Scalar
	Value       uint64
	Gamma       Scalar
	// TokenKey signs the output's predicate. Zero when there is none.
	TokenKey Scalar
	Type     TxType
}

// signatures authorizes the output itself. The balance contribution of
// Gamma is signed by whoever assembles the transaction.
func (o *UnsignedOutput) signatures() []signature.Signature {
	hash := o.Out.Hash()
	var sigs []signature.Signature
	if o.Out.Blsct != nil {
		sigs = append(sigs, signature.Sign(o.BlindingKey, hash[:]))
	}
	if !o.TokenKey.IsZero() {
		sigs = append(sigs, signature.Sign(o.TokenKey, hash[:]))
	}
	return sigs
}

// Signature authorizes the output as a transaction of its own, including
// the balance of its commitment.
func (o *UnsignedOutput) Signature() signature.Signature {
	sigs := o.signatures()
	sigs = append(sigs, signature.SignBalance(o.Gamma.Neg()))
	return signature.Aggregate(sigs...)
}

// Transaction wraps the output in a transaction with no inputs, as used to
// create and mint tokens.
func (o *UnsignedOutput) Transaction() *tx.Transaction {
	t := tx.New()
	t.Outputs = []tx.TxOut{o.Out}
	t.Sig = o.Signature()
	return t
}

// CreateOutput builds a confidential output of amount to dest. A zero
// blindingKey is replaced by a random one. Staked commitments of the base
// token also prove amount >= minStake in their script.
func CreateOutput(
	rp *rangeproof.Logic[Scalar, Point],
	dest keys.DoublePublicKey,
	amount uint64,
	memo string,
	tokenID tokens.TokenID,
	blindingKey Scalar,
	typ TxType,
	minStake uint64,
) (*UnsignedOutput, error) {
	be := rp.Backend()
	if blindingKey.IsZero() {
		var err error
		if blindingKey, err = be.RandomScalar(); err != nil {
			return nil, err
		}
	}

	derived := keys.DeriveOutputKeys(dest, blindingKey)
	seed := rangeproof.NewPointSeed[Scalar, Point](derived.Nonce)

	ret := &UnsignedOutput{
		BlindingKey: blindingKey,
		Value:       amount,
		Gamma:       arith.HashPointWithSalt[Scalar, Point](be, derived.Nonce, gammaSalt),
		Type:        typ,
	}
	ret.Out.TokenID = tokenID
	ret.Out.Script = tx.Script{Kind: tx.ScriptTrue}

	if typ == StakedCommitment && tokenID.IsDefault() {
		stakeRp, err := rp.Prove([]uint64{amount}, seed, nil, tokenID.Seed(), minStake)
		if err != nil {
			return nil, fmt.Errorf("staked commitment proof: %w", err)
		}
		stakeRp.Vs = nil
		ret.Out.Script = tx.Script{Kind: tx.ScriptStakedCommitment, Data: stakeRp.Bytes()}
	}

	p, err := rp.Prove([]uint64{amount}, seed, []byte(memo), tokenID.Seed(), 0)
	if err != nil {
		return nil, err
	}
	ret.Out.Blsct = &tx.BlsctData{
		RangeProof:   p,
		SpendingKey:  derived.SpendingKey,
		EphemeralKey: derived.EphemeralKey,
		BlindingKey:  derived.BlindingKey,
		ViewTag:      keys.ViewTag(derived.Nonce),
	}
	return ret, nil
}

// CreateTokenOutput builds the output that creates the token described by
// info. The token's public key is derived from tokenKey.
func CreateTokenOutput(tokenKey Scalar, info tokens.TokenInfo) (*UnsignedOutput, error) {
	info.PublicKey = signature.PublicKey(tokenKey).Bytes()
	pred, err := tokens.NewCreateTokenPredicate(info).Encode()
	if err != nil {
		return nil, err
	}
	return &UnsignedOutput{
		Out: tx.TxOut{
			Script:    tx.Script{Kind: tx.ScriptUnspendable},
			TokenID:   tokens.DefaultTokenID,
			Predicate: pred,
		},
		TokenKey: tokenKey,
	}, nil
}

// MintTokenOutput builds an output paying amount of newly minted token to
// dest.
func MintTokenOutput(
	rp *rangeproof.Logic[Scalar, Point],
	dest keys.DoublePublicKey,
	amount uint64,
	blindingKey Scalar,
	tokenKey Scalar,
) (*UnsignedOutput, error) {
	pk := signature.PublicKey(tokenKey).Bytes()
	tokenID := tokens.NewTokenID(tokens.HashPublicKey(pk))

	out, err := CreateOutput(rp, dest, amount, "", tokenID, blindingKey, Normal, 0)
	if err != nil {
		return nil, err
	}
	if out.Out.Predicate, err = tokens.NewMintTokenPredicate(pk, int64(amount)).Encode(); err != nil {
		return nil, err
	}
	out.TokenKey = tokenKey
	return out, nil
}

// MintNftOutput builds an output paying NFT nftID of the collection owned
// by tokenKey to dest.
func MintNftOutput(
	rp *rangeproof.Logic[Scalar, Point],
	dest keys.DoublePublicKey,
	blindingKey Scalar,
	tokenKey Scalar,
	nftID uint64,
	metadata map[string]string,
) (*UnsignedOutput, error) {
	pk := signature.PublicKey(tokenKey).Bytes()
	tokenID := tokens.NewNftID(tokens.HashPublicKey(pk), nftID)

	out, err := CreateOutput(rp, dest, 1, "", tokenID, blindingKey, Normal, 0)
	if err != nil {
		return nil, err
	}
	if out.Out.Predicate, err = tokens.NewMintNftPredicate(pk, nftID, metadata).Encode(); err != nil {
		return nil, err
	}
	out.TokenKey = tokenKey
	return out, nil
}
