// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tx

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/rlp"
	"github.com/zeebo/blake3"

	"github.com/luxfi/blsct/rangeproof"
	"github.com/luxfi/blsct/signature"
	"github.com/luxfi/blsct/tokens"
)

func rlpHash(x interface{}) (h common.Hash) {
	hw := blake3.New()
	_ = rlp.Encode(hw, x)
	hw.Sum(h[:0])
	return h
}

// EncodeRLP implements rlp.Encoder
func (o *TxOut) EncodeRLP(w io.Writer) error {
	if o.Script.Kind > ScriptUnspendable {
		return fmt.Errorf("%w: script kind %d", ErrInvalidEncoding, o.Script.Kind)
	}
	blsctBytes := []byte{}
	if o.Blsct != nil {
		var err error
		if blsctBytes, err = encodeBlsctData(o.Blsct); err != nil {
			return err
		}
	}
	return rlp.Encode(w, []interface{}{
		o.Value,
		uint8(o.Script.Kind),
		o.Script.Data,
		o.TokenID.Token,
		o.TokenID.Subid,
		blsctBytes,
		o.Predicate,
	})
}

// DecodeRLP implements rlp.Decoder
func (o *TxOut) DecodeRLP(s *rlp.Stream) error {
	var dec struct {
		Value      uint64
		ScriptKind uint8
		ScriptData []byte
		Token      common.Hash
		Subid      uint64
		Blsct      []byte
		Predicate  []byte
	}
	if err := s.Decode(&dec); err != nil {
		return err
	}
	if dec.ScriptKind > uint8(ScriptUnspendable) {
		return fmt.Errorf("%w: script kind %d", ErrInvalidEncoding, dec.ScriptKind)
	}

	o.Value = dec.Value
	o.Script = Script{Kind: ScriptKind(dec.ScriptKind), Data: nilIfEmpty(dec.ScriptData)}
	o.TokenID = tokens.TokenID{Token: dec.Token, Subid: dec.Subid}
	o.Predicate = nilIfEmpty(dec.Predicate)
	o.Blsct = nil
	if len(dec.Blsct) > 0 {
		data, err := decodeBlsctData(dec.Blsct)
		if err != nil {
			return err
		}
		o.Blsct = data
	}
	return nil
}

func encodeBlsctData(d *BlsctData) ([]byte, error) {
	rangeProofBytes := []byte{}
	if d.RangeProof != nil {
		rangeProofBytes = d.RangeProof.Bytes()
	}
	// fixed width keeps output weight independent of the tag
	var viewTag [2]byte
	binary.BigEndian.PutUint16(viewTag[:], d.ViewTag)
	return rlp.EncodeToBytes([]interface{}{
		rangeProofBytes,
		d.SpendingKey.Bytes(),
		d.EphemeralKey.Bytes(),
		d.BlindingKey.Bytes(),
		viewTag,
	})
}

func decodeBlsctData(data []byte) (*BlsctData, error) {
	var dec struct {
		RangeProof   []byte
		SpendingKey  []byte
		EphemeralKey []byte
		BlindingKey  []byte
		ViewTag      [2]byte
	}
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, err
	}

	d := &BlsctData{ViewTag: binary.BigEndian.Uint16(dec.ViewTag[:])}
	if len(dec.RangeProof) > 0 {
		p, err := rangeproof.Decode[Scalar, Point](be, dec.RangeProof)
		if err != nil {
			return nil, err
		}
		d.RangeProof = p
	}
	var err error
	if d.SpendingKey, err = be.PointFromBytes(dec.SpendingKey); err != nil {
		return nil, fmt.Errorf("%w: spending key: %v", ErrInvalidEncoding, err)
	}
	if d.EphemeralKey, err = be.PointFromBytes(dec.EphemeralKey); err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %v", ErrInvalidEncoding, err)
	}
	if d.BlindingKey, err = be.PointFromBytes(dec.BlindingKey); err != nil {
		return nil, fmt.Errorf("%w: blinding key: %v", ErrInvalidEncoding, err)
	}
	return d, nil
}

// EncodeRLP implements rlp.Encoder
func (t *Transaction) EncodeRLP(w io.Writer) error {
	outs := make([]*TxOut, len(t.Outputs))
	for i := range t.Outputs {
		outs[i] = &t.Outputs[i]
	}
	return rlp.Encode(w, []interface{}{
		t.Inputs,
		outs,
		t.Sig.Bytes(),
	})
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var dec struct {
		Inputs  []TxIn
		Outputs []*TxOut
		Sig     []byte
	}
	if err := s.Decode(&dec); err != nil {
		return err
	}
	sig, err := signature.FromBytes(dec.Sig)
	if err != nil {
		return err
	}

	t.Inputs = dec.Inputs
	t.Outputs = make([]TxOut, len(dec.Outputs))
	for i, out := range dec.Outputs {
		t.Outputs[i] = *out
	}
	t.Sig = sig
	return nil
}

// Bytes returns the canonical encoding of t.
func (t *Transaction) Bytes() ([]byte, error) {
	return rlp.EncodeToBytes(t)
}

// Decode parses an encoded transaction.
func Decode(data []byte) (*Transaction, error) {
	t := &Transaction{}
	if err := rlp.DecodeBytes(data, t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	return t, nil
}

func nilIfEmpty(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

// Weight is the serialized size of the output.
func (o *TxOut) Weight() (uint64, error) {
	b, err := rlp.EncodeToBytes(o)
	if err != nil {
		return 0, err
	}
	return uint64(len(b)), nil
}
