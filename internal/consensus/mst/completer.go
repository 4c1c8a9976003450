package mst

import "synnergy-network/internal/consensus/model"

// Completer defines when a batch is complete and when it has expired. It
// is injected so the grace window stays a deploy-time parameter rather
// than a constant (SPEC_FULL.md §"MST grace window" open question).
type Completer interface {
	IsComplete(b model.Batch) bool
	IsExpired(b model.Batch, now uint64) bool
}

// GraceCompleter is the default completer: complete iff every transaction
// has at least its declared quorum of distinct signatures; expired iff any
// transaction's created_time + grace has passed now.
type GraceCompleter struct {
	GraceMillis uint64
}

// NewGraceCompleter builds a completer with the given expiry grace
// window. Production deployments pass a bounded grace; the reference test
// suite uses 0.
func NewGraceCompleter(graceMillis uint64) GraceCompleter {
	return GraceCompleter{GraceMillis: graceMillis}
}

func (c GraceCompleter) IsComplete(b model.Batch) bool {
	for _, tx := range b.Transactions {
		if uint32(tx.SignatureCount()) < tx.Quorum {
			return false
		}
	}
	return true
}

func (c GraceCompleter) IsExpired(b model.Batch, now uint64) bool {
	for _, tx := range b.Transactions {
		if tx.CreatedTime+c.GraceMillis < now {
			return true
		}
	}
	return false
}
