package pendingtxs

import (
	"testing"

	"synnergy-network/internal/consensus/model"
)

func batchFor(creator, reducedHash string, n int) model.Batch {
	txs := make([]model.Tx, n)
	for i := 0; i < n; i++ {
		txs[i] = model.Tx{
			PayloadHash: reducedHash + "-tx" + string(rune('a'+i)),
			Creator:     creator,
			ReducedHash: reducedHash,
		}
	}
	return model.Batch{ReducedHash: reducedHash, Transactions: txs}
}

func TestGetPendingEmptyAccountNoCursor(t *testing.T) {
	idx := New()
	page, err := idx.GetPending("alice", 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Transactions) != 0 {
		t.Fatalf("expected empty page")
	}
}

func TestGetPendingUnknownCursorNotFound(t *testing.T) {
	idx := New()
	idx.OnStateUpdate([]model.Batch{batchFor("alice", "b1", 2)})

	_, err := idx.GetPending("alice", 10, "does-not-exist")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPendingCrossesBatchBoundaries(t *testing.T) {
	idx := New()
	idx.OnStateUpdate([]model.Batch{
		batchFor("alice", "b1", 2),
		batchFor("alice", "b2", 3),
	})

	page, err := idx.GetPending("alice", 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Transactions) != 5 {
		t.Fatalf("expected 5 transactions across both batches, got %d", len(page.Transactions))
	}
	if page.TotalTransactionsSize != 5 {
		t.Fatalf("expected total_transactions_size=5, got %d", page.TotalTransactionsSize)
	}
}

func TestGetPendingStopsBeforeSplittingBatch(t *testing.T) {
	idx := New()
	idx.OnStateUpdate([]model.Batch{
		batchFor("alice", "b1", 2),
		batchFor("alice", "b2", 3),
	})

	page, err := idx.GetPending("alice", 3, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Transactions) != 2 {
		t.Fatalf("expected page to stop after the first whole batch, got %d transactions", len(page.Transactions))
	}
	if page.NextBatchInfo == nil {
		t.Fatalf("expected next_batch_info for the batch that would be split")
	}
	if page.NextBatchInfo.BatchSize != 3 {
		t.Fatalf("expected next batch size 3, got %d", page.NextBatchInfo.BatchSize)
	}
}

func TestOnPreparedBatchRemovesFromIndex(t *testing.T) {
	idx := New()
	b := batchFor("alice", "b1", 2)
	idx.OnStateUpdate([]model.Batch{b})
	idx.OnPreparedBatch(b)

	page, err := idx.GetPending("alice", 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Transactions) != 0 {
		t.Fatalf("expected batch removed after prepare, got %d transactions", len(page.Transactions))
	}
}

func TestOnStateUpdatePreservesPositionOnGrowth(t *testing.T) {
	idx := New()
	b1 := batchFor("alice", "b1", 1)
	idx.OnStateUpdate([]model.Batch{b1})
	b2 := batchFor("alice", "b2", 1)
	idx.OnStateUpdate([]model.Batch{b2})

	// Grow b1 (simulating a new signature observed); position must be
	// preserved (b1 stays before b2).
	grown := batchFor("alice", "b1", 1)
	grown.Transactions[0].Signatures = map[string]model.Signature{"k1": {}}
	idx.OnStateUpdate([]model.Batch{grown})

	page, err := idx.GetPending("alice", 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(page.Transactions))
	}
	if page.Transactions[0].ReducedHash != "b1" {
		t.Fatalf("expected b1 to remain first after update, got %s", page.Transactions[0].ReducedHash)
	}
}

// P5: idempotent under re-delivery.
func TestOnStateUpdateIdempotentUnderRedelivery(t *testing.T) {
	idx := New()
	b := batchFor("alice", "b1", 2)
	idx.OnStateUpdate([]model.Batch{b})
	idx.OnStateUpdate([]model.Batch{b})

	page, err := idx.GetPending("alice", 10, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Transactions) != 2 {
		t.Fatalf("expected idempotent re-delivery to leave 2 transactions, got %d", len(page.Transactions))
	}
}
