package batch

import (
	"testing"

	"synnergy-network/internal/consensus/model"
)

func txWithSig(reducedHash string, meta *model.BatchMeta, signed bool) model.Tx {
	tx := model.Tx{ReducedHash: reducedHash, Meta: meta, Signatures: map[string]model.Signature{}}
	if signed {
		tx.Signatures["k1"] = model.Signature{PublicKeyHex: "k1", SignedHex: "sig"}
	}
	return tx
}

func TestValidateSingleUnmetaedTransactionIsWellFormed(t *testing.T) {
	b := model.Batch{Transactions: []model.Tx{txWithSig("h1", nil, true)}}
	res := Validate(b, Config{MaxBatchSize: 10})
	if !res.Valid() {
		t.Fatalf("expected valid, got failures: %v", res.Failures)
	}
}

func TestValidateRejectsOversizedBatch(t *testing.T) {
	meta := &model.BatchMeta{Type: model.Atomic, ReducedHashes: []string{"h1", "h2", "h3"}}
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h1", meta, true),
		txWithSig("h2", meta, false),
		txWithSig("h3", meta, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 2})
	if res.Valid() {
		t.Fatalf("expected oversized batch to fail")
	}
	if !hasCheck(res, "max_batch_size") {
		t.Fatalf("expected max_batch_size failure, got %v", res.Failures)
	}
}

func TestValidateRejectsBatchWithNoSignatures(t *testing.T) {
	meta := &model.BatchMeta{Type: model.Atomic, ReducedHashes: []string{"h1", "h2"}}
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h1", meta, false),
		txWithSig("h2", meta, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 10})
	if !hasCheck(res, "has_signature") {
		t.Fatalf("expected has_signature failure, got %v", res.Failures)
	}
}

func TestValidateAtomicRequiresExactOrder(t *testing.T) {
	meta := &model.BatchMeta{Type: model.Atomic, ReducedHashes: []string{"h1", "h2", "h3"}}
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h1", meta, true),
		txWithSig("h3", meta, false),
		txWithSig("h2", meta, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 10})
	if !hasCheck(res, "atomic_order") {
		t.Fatalf("expected atomic_order failure, got %v", res.Failures)
	}
}

func TestValidateOrderedWithoutPartialRequiresExactOrder(t *testing.T) {
	meta := &model.BatchMeta{Type: model.Ordered, ReducedHashes: []string{"h1", "h2", "h3"}}
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h1", meta, true),
		txWithSig("h2", meta, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 10, PartialOrderedBatchesValid: false})
	if !hasCheck(res, "ordered_order") {
		t.Fatalf("expected ordered_order failure (meta longer than transactions, partial disabled), got %v", res.Failures)
	}
}

func TestValidateOrderedWithPartialAllowsSubsequence(t *testing.T) {
	meta := &model.BatchMeta{Type: model.Ordered, ReducedHashes: []string{"h1", "h2", "h3", "h4"}}
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h1", meta, true),
		txWithSig("h3", meta, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 10, PartialOrderedBatchesValid: true})
	if !res.Valid() {
		t.Fatalf("expected subsequence h1,h3 to be valid, got failures: %v", res.Failures)
	}
}

func TestValidateOrderedWithPartialRejectsOutOfOrderSubsequence(t *testing.T) {
	meta := &model.BatchMeta{Type: model.Ordered, ReducedHashes: []string{"h1", "h2", "h3", "h4"}}
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h3", meta, true),
		txWithSig("h1", meta, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 10, PartialOrderedBatchesValid: true})
	if !hasCheck(res, "ordered_order") {
		t.Fatalf("expected out-of-order subsequence to fail, got %v", res.Failures)
	}
}

func TestValidateRejectsDuplicateMetaHashes(t *testing.T) {
	meta := &model.BatchMeta{Type: model.Atomic, ReducedHashes: []string{"h1", "h1"}}
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h1", meta, true),
		txWithSig("h1", meta, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 10})
	if !hasCheck(res, "meta_hashes_unique") {
		t.Fatalf("expected meta_hashes_unique failure, got %v", res.Failures)
	}
	if !hasCheck(res, "tx_hashes_unique") {
		t.Fatalf("expected tx_hashes_unique failure too (accumulated, not short-circuited), got %v", res.Failures)
	}
}

func TestValidateRejectsMismatchedMeta(t *testing.T) {
	meta1 := &model.BatchMeta{Type: model.Atomic, ReducedHashes: []string{"h1", "h2"}}
	meta2 := &model.BatchMeta{Type: model.Atomic, ReducedHashes: []string{"h1", "h3"}}
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h1", meta1, true),
		txWithSig("h2", meta2, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 10})
	if !hasCheck(res, "batch_meta_identical") {
		t.Fatalf("expected batch_meta_identical failure, got %v", res.Failures)
	}
}

func TestValidateAccumulatesMultipleFailuresWithoutShortCircuit(t *testing.T) {
	b := model.Batch{Transactions: []model.Tx{
		txWithSig("h1", nil, false),
		txWithSig("h2", nil, false),
		txWithSig("h3", nil, false),
	}}
	res := Validate(b, Config{MaxBatchSize: 2})
	if !hasCheck(res, "max_batch_size") || !hasCheck(res, "has_signature") || !hasCheck(res, "batch_meta_present") {
		t.Fatalf("expected all three independent failures accumulated, got %v", res.Failures)
	}
}

func hasCheck(res Result, check string) bool {
	for _, f := range res.Failures {
		if f.Check == check {
			return true
		}
	}
	return false
}
