package mst

import "synnergy-network/internal/consensus/model"

// State is a process-lifetime, non-persistent set of batches keyed by
// reduced hash, with set-algebraic union/difference operations and a
// pluggable Completer defining completeness and expiry. Every gossip
// message the MstProcessor sends is an exact self_state - peer_view diff,
// so the operators below must be exact for convergence to hold (§4.1).
//
// State is not safe for concurrent use on its own; the MstProcessor holds
// a single mutex around own_state and peer_view (§5).
type State struct {
	completer Completer
	batches   map[string]model.Batch
}

// New builds an empty state bound to the given completer.
func New(completer Completer) *State {
	return &State{completer: completer, batches: make(map[string]model.Batch)}
}

// Insert merges a batch into the state. Idempotent on identical
// (reduced_hash, signatures); if the reduced hash is already present, the
// signature sets are merged per transaction (union keyed by public key).
func (s *State) Insert(b model.Batch) {
	existing, ok := s.batches[b.ReducedHash]
	if !ok {
		s.batches[b.ReducedHash] = b.Clone()
		return
	}
	s.batches[b.ReducedHash] = mergeBatch(existing, b)
}

// mergeBatch unions the signature sets of two batches assumed to share a
// reduced hash (and therefore the same transaction ordering).
func mergeBatch(a, b model.Batch) model.Batch {
	out := a.Clone()
	for i := range out.Transactions {
		if i >= len(b.Transactions) {
			break
		}
		for key, sig := range b.Transactions[i].Signatures {
			out.Transactions[i].Signatures[key] = sig
		}
	}
	return out
}

// Contains reports whether a batch with the same reduced hash is present.
func (s *State) Contains(b model.Batch) bool {
	_, ok := s.batches[b.ReducedHash]
	return ok
}

// Batches returns a snapshot slice of every batch currently held. Callers
// must not mutate the returned batches.
func (s *State) Batches() []model.Batch {
	out := make([]model.Batch, 0, len(s.batches))
	for _, b := range s.batches {
		out = append(out, b)
	}
	return out
}

// Len reports the number of distinct batches held.
func (s *State) Len() int { return len(s.batches) }

// Diff is the {completed, updated} split produced by UnionAssign.
type Diff struct {
	Completed *State
	Updated   *State
}

// UnionAssign inserts every batch of other into s. A batch that becomes
// complete per the completer is moved into Diff.Completed and removed
// from s; a batch that changed but is not yet complete is reported (by
// value, not removed) in Diff.Updated. Batches already complete before
// the call and unaffected by it are reported in neither.
func (s *State) UnionAssign(other *State) Diff {
	completed := New(s.completer)
	updated := New(s.completer)

	for _, b := range other.Batches() {
		before, hadBefore := s.batches[b.ReducedHash]
		s.Insert(b)
		after := s.batches[b.ReducedHash]

		if hadBefore && sameSignatures(before, after) {
			// Nothing new arrived for this batch; it does not re-appear
			// in either diff, complete or not.
			continue
		}

		if s.completer.IsComplete(after) {
			completed.Insert(after)
			delete(s.batches, b.ReducedHash)
		} else {
			updated.Insert(after)
		}
	}
	return Diff{Completed: completed, Updated: updated}
}

func sameSignatures(a, b model.Batch) bool {
	if len(a.Transactions) != len(b.Transactions) {
		return false
	}
	for i := range a.Transactions {
		if len(a.Transactions[i].Signatures) != len(b.Transactions[i].Signatures) {
			return false
		}
		for k := range a.Transactions[i].Signatures {
			if _, ok := b.Transactions[i].Signatures[k]; !ok {
				return false
			}
		}
	}
	return true
}

// Difference returns the batches in s whose signature sets strictly
// exceed (or are disjoint from) those in other. Batches equal in both
// states are omitted; the result preserves only the extra signatures
// relative to other, matching spec.md §3.2's "a - b" operator.
func (s *State) Difference(other *State) *State {
	result := New(s.completer)
	for hash, mine := range s.batches {
		theirs, ok := other.batches[hash]
		if !ok {
			result.batches[hash] = mine.Clone()
			continue
		}
		extra := extraSignatures(mine, theirs)
		if extra != nil {
			result.batches[hash] = *extra
		}
	}
	return result
}

// extraSignatures returns a batch carrying only the signatures mine has
// that theirs lacks, or nil if mine has nothing theirs doesn't.
func extraSignatures(mine, theirs model.Batch) *model.Batch {
	out := mine.Clone()
	anyExtra := false
	for i := range out.Transactions {
		kept := make(map[string]model.Signature)
		var theirSigs map[string]model.Signature
		if i < len(theirs.Transactions) {
			theirSigs = theirs.Transactions[i].Signatures
		}
		for k, v := range out.Transactions[i].Signatures {
			if _, present := theirSigs[k]; !present {
				kept[k] = v
				anyExtra = true
			}
		}
		out.Transactions[i].Signatures = kept
	}
	if !anyExtra {
		return nil
	}
	return &out
}

// ExtractExpired moves out every batch where the completer considers any
// constituent transaction expired at now, removing them from s.
func (s *State) ExtractExpired(now uint64) *State {
	expired := New(s.completer)
	for hash, b := range s.batches {
		if s.completer.IsExpired(b, now) {
			expired.batches[hash] = b
			delete(s.batches, hash)
		}
	}
	return expired
}

// EraseByTxHash removes any batch containing the given transaction
// (payload) hash, used when a tx is finalized on-chain.
func (s *State) EraseByTxHash(txHash string) {
	for hash, b := range s.batches {
		for _, tx := range b.Transactions {
			if tx.PayloadHash == txHash {
				delete(s.batches, hash)
				break
			}
		}
	}
}

// RemoveByReducedHash drops a batch outright, irrespective of its
// completer classification. Used by MstProcessor once a batch has been
// reported complete via an inbound union_assign that this State did not
// itself perform (e.g. mirroring peer_view updates).
func (s *State) RemoveByReducedHash(reducedHash string) {
	delete(s.batches, reducedHash)
}
