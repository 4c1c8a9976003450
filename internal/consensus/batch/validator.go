// Package batch implements the stateless structural batch validator of
// spec.md §4.7: eight ordered checks whose failures accumulate into a
// single error tree rather than short-circuiting on the first one.
package batch

import (
	"fmt"

	"synnergy-network/internal/consensus/model"
)

// Config parameterizes the checks that depend on deploy-time policy.
type Config struct {
	MaxBatchSize               int
	PartialOrderedBatchesValid bool
}

// Failure names a single failed check and why.
type Failure struct {
	Check   string
	Message string
}

func (f Failure) String() string { return fmt.Sprintf("%s: %s", f.Check, f.Message) }

// Result is the accumulated outcome of validating one batch.
type Result struct {
	Failures []Failure
}

// Valid reports whether the batch passed every check.
func (r Result) Valid() bool { return len(r.Failures) == 0 }

func (r *Result) fail(check, format string, args ...any) {
	r.Failures = append(r.Failures, Failure{Check: check, Message: fmt.Sprintf(format, args...)})
}

// Validate runs the eight ordered structural checks over batch and
// returns every failure found, not just the first.
func Validate(b model.Batch, cfg Config) Result {
	var res Result

	// 1. |transactions| <= max_batch_size.
	if cfg.MaxBatchSize > 0 && len(b.Transactions) > cfg.MaxBatchSize {
		res.fail("max_batch_size", "batch carries %d transactions, limit is %d", len(b.Transactions), cfg.MaxBatchSize)
	}

	// 2. at least one transaction carries at least one signature.
	hasSignature := false
	for _, tx := range b.Transactions {
		if tx.SignatureCount() > 0 {
			hasSignature = true
			break
		}
	}
	if !hasSignature {
		res.fail("has_signature", "no transaction in the batch carries a signature")
	}

	// 3. a lone, unmetaed transaction is well-formed on its own; no
	// further structural checks apply.
	if len(b.Transactions) == 1 && b.Transactions[0].Meta == nil {
		return res
	}

	// 4. batch-meta must be present and identical across every transaction.
	meta := firstMeta(b.Transactions)
	if meta == nil {
		res.fail("batch_meta_present", "no batch-meta attached to a multi-transaction or explicitly metaed batch")
		return res
	}
	if !allMetaIdentical(b.Transactions, *meta) {
		res.fail("batch_meta_identical", "transactions carry differing batch-meta")
		return res
	}

	reducedHashes := meta.ReducedHashes
	txHashes := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		txHashes[i] = tx.ReducedHash
	}

	switch meta.Type {
	case model.Atomic:
		validateExactOrder(&res, "atomic_order", reducedHashes, txHashes)
	case model.Ordered:
		if cfg.PartialOrderedBatchesValid {
			validateSubsequenceOrder(&res, reducedHashes, txHashes)
		} else {
			validateExactOrder(&res, "ordered_order", reducedHashes, txHashes)
		}
	default:
		res.fail("batch_type", "unrecognized batch type %d", meta.Type)
	}

	// 7. batch_meta.reduced_hashes contains no duplicates.
	if dup, ok := firstDuplicate(reducedHashes); ok {
		res.fail("meta_hashes_unique", "batch-meta reduced hash %q is duplicated", dup)
	}

	// 8. no two transactions share the same reduced hash.
	if dup, ok := firstDuplicate(txHashes); ok {
		res.fail("tx_hashes_unique", "transaction reduced hash %q appears more than once", dup)
	}

	return res
}

func firstMeta(txs []model.Tx) *model.BatchMeta {
	for _, tx := range txs {
		if tx.Meta != nil {
			return tx.Meta
		}
	}
	return nil
}

func allMetaIdentical(txs []model.Tx, meta model.BatchMeta) bool {
	for _, tx := range txs {
		if tx.Meta == nil {
			return false
		}
		if tx.Meta.Type != meta.Type {
			return false
		}
		if !stringSliceEqual(tx.Meta.ReducedHashes, meta.ReducedHashes) {
			return false
		}
	}
	return true
}

func stringSliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// validateExactOrder requires reducedHashes and txHashes to match
// element-for-element (check 5, and check 6 when partial order is off).
func validateExactOrder(res *Result, check string, reducedHashes, txHashes []string) {
	if len(reducedHashes) != len(txHashes) {
		res.fail(check, "batch-meta carries %d reduced hashes, batch has %d transactions", len(reducedHashes), len(txHashes))
		return
	}
	for i := range txHashes {
		if reducedHashes[i] != txHashes[i] {
			res.fail(check, "reduced hash order mismatch at position %d: meta has %q, transaction has %q", i, reducedHashes[i], txHashes[i])
			return
		}
	}
}

// validateSubsequenceOrder implements check 6 for ordered batches with
// partial-ordered-batches-valid enabled: txHashes must appear within
// reducedHashes in the same relative order, but reducedHashes may be
// longer and the match need not be contiguous. A hash already matched at
// some position cannot be matched again at an earlier position (the
// stricter reading of spec.md §9's open question).
func validateSubsequenceOrder(res *Result, reducedHashes, txHashes []string) {
	if len(reducedHashes) < len(txHashes) {
		res.fail("ordered_order", "batch-meta carries fewer reduced hashes (%d) than transactions (%d)", len(reducedHashes), len(txHashes))
		return
	}
	cursor := 0
	for i, h := range txHashes {
		found := false
		for cursor < len(reducedHashes) {
			if reducedHashes[cursor] == h {
				found = true
				cursor++
				break
			}
			cursor++
		}
		if !found {
			res.fail("ordered_order", "transaction reduced hash %q at position %d is not a subsequence match in batch-meta", h, i)
			return
		}
	}
}

func firstDuplicate(hashes []string) (string, bool) {
	seen := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			return h, true
		}
		seen[h] = struct{}{}
	}
	return "", false
}
