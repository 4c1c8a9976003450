package model

// ParseBatches groups a flat wire-format transaction list back into
// batches, keyed by the shared BatchMeta.ReducedHashes each transaction
// carries. This mirrors mst_storage_impl.cpp's reconstruction of whole
// batches from a sender's flat transaction sequence (SPEC_FULL.md §5): a
// batch whose transactions are spread across multiple wire messages is
// not guaranteed to reassemble, so grouping only ever happens within one
// call's transaction list.
func ParseBatches(txs []Tx) []Batch {
	type group struct {
		meta *BatchMeta
		txs  []Tx
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, tx := range txs {
		key := metaKey(tx)
		g, ok := groups[key]
		if !ok {
			g = &group{meta: tx.Meta}
			groups[key] = g
			order = append(order, key)
		}
		g.txs = append(g.txs, tx)
	}

	out := make([]Batch, 0, len(order))
	for _, key := range order {
		g := groups[key]
		out = append(out, Batch{
			ReducedHash:  ComputeReducedHash(g.txs),
			Transactions: g.txs,
		})
	}
	return out
}

// metaKey derives a grouping key from a transaction's BatchMeta
// reduced-hash list, or its own reduced hash when no meta is attached (a
// lone unbatched transaction, §4.7 check 3), so unrelated single-tx
// batches never collapse into one group.
func metaKey(tx Tx) string {
	if tx.Meta == nil {
		return "\x00single:" + tx.ReducedHash
	}
	key := ""
	for _, h := range tx.Meta.ReducedHashes {
		key += h + "|"
	}
	return key
}
