package mst

import "testing"

// FuzzMstStateUnionAssign checks the set-algebra invariants UnionAssign and
// Difference must hold for convergence (§4.1): union never loses a batch
// present on either side, and a state differenced against itself yields
// nothing.
func FuzzMstStateUnionAssign(f *testing.F) {
	f.Add("alice", "b1", uint32(1), "k1", "bob", "b2", uint32(2), "k2")
	f.Add("alice", "b1", uint32(3), "k1", "alice", "b1", uint32(3), "k2")
	f.Add("", "", uint32(0), "", "", "", uint32(0), "")

	f.Fuzz(func(t *testing.T, creatorA, hashA string, quorumA uint32, sigA, creatorB, hashB string, quorumB uint32, sigB string) {
		s := New(NewGraceCompleter(1000))
		other := New(NewGraceCompleter(1000))

		var sigsA, sigsB []string
		if sigA != "" {
			sigsA = []string{sigA}
		}
		if sigB != "" {
			sigsB = []string{sigB}
		}
		if hashA != "" {
			s.Insert(singleTxBatch(creatorA, hashA, quorumA, sigsA...))
		}
		if hashB != "" {
			other.Insert(singleTxBatch(creatorB, hashB, quorumB, sigsB...))
		}

		beforeLen := s.Len()
		diff := s.UnionAssign(other)
		if s.Len()+diff.Completed.Len() < beforeLen {
			t.Fatalf("union_assign lost batches: before=%d after=%d completed=%d", beforeLen, s.Len(), diff.Completed.Len())
		}

		if empty := s.Difference(s); empty.Len() != 0 {
			t.Fatalf("state differenced against itself must be empty, got %d entries", empty.Len())
		}
	})
}
