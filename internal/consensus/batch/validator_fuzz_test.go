package batch

import (
	"strconv"
	"testing"

	"synnergy-network/internal/consensus/model"
)

// FuzzValidate hunts for panics and Valid()/Failures inconsistencies across
// arbitrary transaction counts, meta hash orderings, and batch types —
// Validate must always terminate with an accumulated Result, never panic
// on a malformed batch.
func FuzzValidate(f *testing.F) {
	f.Add(3, uint8(model.Atomic), "h0,h1,h2", true, false)
	f.Add(1, uint8(model.Atomic), "", true, false)
	f.Add(4, uint8(model.Ordered), "h0,h2,h1,h3", true, true)
	f.Add(0, uint8(model.Atomic), "h0", false, false)

	f.Fuzz(func(t *testing.T, txCount int, batchType uint8, metaCSV string, sign bool, partialOK bool) {
		if txCount < 0 || txCount > 64 {
			t.Skip()
		}
		meta := &model.BatchMeta{Type: model.BatchType(batchType), ReducedHashes: splitCSV(metaCSV)}
		txs := make([]model.Tx, txCount)
		for i := range txs {
			txs[i] = txWithSig("h"+strconv.Itoa(i), meta, sign && i == 0)
		}
		b := model.Batch{Transactions: txs}
		cfg := Config{MaxBatchSize: 32, PartialOrderedBatchesValid: partialOK}

		res := Validate(b, cfg)
		if res.Valid() && len(res.Failures) != 0 {
			t.Fatalf("Valid() true but Failures non-empty: %v", res.Failures)
		}
	})
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return out
}
