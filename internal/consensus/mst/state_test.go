package mst

import (
	"testing"

	"synnergy-network/internal/consensus/model"
)

func tx(creator, reducedHash string, quorum uint32, sigs ...string) model.Tx {
	signatures := make(map[string]model.Signature, len(sigs))
	for _, s := range sigs {
		signatures[s] = model.Signature{PublicKeyHex: s, SignedHex: "sig-" + s}
	}
	return model.Tx{
		PayloadHash: "payload-" + reducedHash,
		Creator:     creator,
		CreatedTime: 1000,
		Quorum:      quorum,
		ReducedHash: reducedHash,
		Signatures:  signatures,
	}
}

func singleTxBatch(creator, reducedHash string, quorum uint32, sigs ...string) model.Batch {
	t := tx(creator, reducedHash, quorum, sigs...)
	return model.Batch{ReducedHash: reducedHash, Transactions: []model.Tx{t}}
}

func TestInsertMergesSignatures(t *testing.T) {
	s := New(NewGraceCompleter(0))
	s.Insert(singleTxBatch("alice", "b1", 3, "k1"))
	s.Insert(singleTxBatch("alice", "b1", 3, "k2"))

	batches := s.Batches()
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(batches))
	}
	if got := batches[0].Transactions[0].SignatureCount(); got != 2 {
		t.Fatalf("expected 2 signatures, got %d", got)
	}
}

func TestUnionAssignCompletesAndRemoves(t *testing.T) {
	s := New(NewGraceCompleter(0))
	diff := New(NewGraceCompleter(0))
	diff.Insert(singleTxBatch("alice", "b1", 1, "k1"))

	result := s.UnionAssign(diff)
	if result.Completed.Len() != 1 {
		t.Fatalf("expected 1 completed batch, got %d", result.Completed.Len())
	}
	if result.Updated.Len() != 0 {
		t.Fatalf("expected 0 updated batches, got %d", result.Updated.Len())
	}
	if s.Contains(singleTxBatch("alice", "b1", 1)) {
		t.Fatalf("completed batch must be removed from state (P2)")
	}
}

func TestUnionAssignReportsUpdatedWhenIncomplete(t *testing.T) {
	s := New(NewGraceCompleter(0))
	diff := New(NewGraceCompleter(0))
	diff.Insert(singleTxBatch("alice", "b1", 3, "k1"))

	result := s.UnionAssign(diff)
	if result.Completed.Len() != 0 {
		t.Fatalf("expected 0 completed, got %d", result.Completed.Len())
	}
	if result.Updated.Len() != 1 {
		t.Fatalf("expected 1 updated, got %d", result.Updated.Len())
	}
	if !s.Contains(singleTxBatch("alice", "b1", 3)) {
		t.Fatalf("incomplete batch must remain in state (P2)")
	}
}

// S2: signature accumulation scenario from spec.md §8.
func TestSignatureAccumulationScenario(t *testing.T) {
	s := New(NewGraceCompleter(0))

	step := func(sigs ...string) Diff {
		diff := New(NewGraceCompleter(0))
		diff.Insert(singleTxBatch("alice", "b", 3, sigs...))
		return s.UnionAssign(diff)
	}

	r1 := step("sig1")
	if r1.Updated.Len() != 1 || r1.Completed.Len() != 0 {
		t.Fatalf("step1: want updated=1 completed=0, got updated=%d completed=%d", r1.Updated.Len(), r1.Completed.Len())
	}

	r2 := step("sig1", "sig2")
	if r2.Updated.Len() != 1 || r2.Completed.Len() != 0 {
		t.Fatalf("step2: want updated=1 completed=0, got updated=%d completed=%d", r2.Updated.Len(), r2.Completed.Len())
	}
	if got := r2.Updated.Batches()[0].Transactions[0].SignatureCount(); got != 2 {
		t.Fatalf("step2: want 2 signatures, got %d", got)
	}

	r3 := step("sig1", "sig2", "sig3")
	if r3.Completed.Len() != 1 {
		t.Fatalf("step3: want completed=1, got %d", r3.Completed.Len())
	}
	if got := r3.Completed.Batches()[0].Transactions[0].SignatureCount(); got != 3 {
		t.Fatalf("step3: want 3 signatures on completed batch, got %d", got)
	}
	if s.Contains(singleTxBatch("alice", "b", 3)) {
		t.Fatalf("step3: batch should be removed from own_state upon completion")
	}
}

func TestDifferenceOmitsEqualBatches(t *testing.T) {
	a := New(NewGraceCompleter(0))
	a.Insert(singleTxBatch("alice", "b1", 3, "k1"))
	b := New(NewGraceCompleter(0))
	b.Insert(singleTxBatch("alice", "b1", 3, "k1"))

	diff := a.Difference(b)
	if diff.Len() != 0 {
		t.Fatalf("expected no diff for identical batches, got %d", diff.Len())
	}
}

func TestDifferenceKeepsExtraSignatures(t *testing.T) {
	a := New(NewGraceCompleter(0))
	a.Insert(singleTxBatch("alice", "b1", 3, "k1", "k2"))
	b := New(NewGraceCompleter(0))
	b.Insert(singleTxBatch("alice", "b1", 3, "k1"))

	diff := a.Difference(b)
	if diff.Len() != 1 {
		t.Fatalf("expected 1 batch in diff, got %d", diff.Len())
	}
	got := diff.Batches()[0]
	if got.Transactions[0].SignatureCount() != 1 {
		t.Fatalf("expected only the extra signature to survive, got %d", got.Transactions[0].SignatureCount())
	}
	if _, ok := got.Transactions[0].Signatures["k2"]; !ok {
		t.Fatalf("expected extra signature k2 to be present")
	}
}

func TestDifferenceIncludesBatchesAbsentFromOther(t *testing.T) {
	a := New(NewGraceCompleter(0))
	a.Insert(singleTxBatch("alice", "b1", 3, "k1"))
	b := New(NewGraceCompleter(0))

	diff := a.Difference(b)
	if diff.Len() != 1 {
		t.Fatalf("expected batch absent from peer to appear in diff, got %d", diff.Len())
	}
}

// P1: (a + b) - b == a - b in terms of set membership.
func TestUnionThenDifferenceEqualsDifference(t *testing.T) {
	a := New(NewGraceCompleter(0))
	a.Insert(singleTxBatch("alice", "b1", 5, "k1"))
	b := New(NewGraceCompleter(0))
	b.Insert(singleTxBatch("alice", "b1", 5, "k2"))

	union := New(NewGraceCompleter(0))
	union.UnionAssign(a)
	union.UnionAssign(b)

	lhs := union.Difference(b)
	rhs := a.Difference(b)

	if lhs.Len() != rhs.Len() {
		t.Fatalf("P1 violated: lhs=%d rhs=%d", lhs.Len(), rhs.Len())
	}
}

func TestExtractExpiredRemovesFromState(t *testing.T) {
	s := New(NewGraceCompleter(100))
	s.Insert(singleTxBatch("alice", "b1", 5, "k1"))

	expired := s.ExtractExpired(2000)
	if expired.Len() != 1 {
		t.Fatalf("expected batch to be expired, got %d", expired.Len())
	}
	if s.Len() != 0 {
		t.Fatalf("expired batch must be removed from state")
	}
}

func TestEraseByTxHashRemovesContainingBatch(t *testing.T) {
	s := New(NewGraceCompleter(0))
	b := singleTxBatch("alice", "b1", 5, "k1")
	s.Insert(b)

	s.EraseByTxHash(b.Transactions[0].PayloadHash)
	if s.Len() != 0 {
		t.Fatalf("expected batch removed after erase by tx hash")
	}
}
