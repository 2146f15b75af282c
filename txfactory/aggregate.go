// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txfactory

import (
	"github.com/luxfi/blsct/signature"
	"github.com/luxfi/blsct/tokens"
	"github.com/luxfi/blsct/tx"
)

// AggregateTransactions merges txs into one transaction with a single fee
// output. The balance signatures of the parts combine into one under the
// sum of their balance keys.
func AggregateTransactions(txs []*tx.Transaction) *tx.Transaction {
	ret := tx.New()
	sigs := make([]signature.Signature, 0, len(txs))
	var fee uint64

	for _, t := range txs {
		sigs = append(sigs, t.Sig)
		ret.Inputs = append(ret.Inputs, t.Inputs...)
		for _, out := range t.Outputs {
			if out.Script.IsFee() {
				fee += out.Value
				continue
			}
			ret.Outputs = append(ret.Outputs, out)
		}
	}

	ret.Outputs = append(ret.Outputs, tx.TxOut{
		Value:   fee,
		Script:  tx.FeeScript(),
		TokenID: tokens.DefaultTokenID,
	})
	ret.Sig = signature.Aggregate(sigs...)
	return ret
}
