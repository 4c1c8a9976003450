package mst

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/model"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fixedClock struct{ now uint64 }

func (c fixedClock) NowMillis() uint64 { return c.now }

type staticStrategy struct{ peers []string }

func (s staticStrategy) EmitPeerSet() []string { return s.peers }

type recordingTransport struct {
	sent   map[string]*State
	accept bool
}

func newRecordingTransport(accept bool) *recordingTransport {
	return &recordingTransport{sent: make(map[string]*State), accept: accept}
}

func (t *recordingTransport) SendState(peer string, diff *State) bool {
	t.sent[peer] = diff
	return t.accept
}

// S1: MST convergence, two peers.
func TestProcessorConvergesOnSuccessfulSend(t *testing.T) {
	transport := newRecordingTransport(true)
	strategy := staticStrategy{peers: []string{"P1"}}
	p := NewProcessor(testLogger(), NewGraceCompleter(0), transport, strategy, fixedClock{now: 1000}, 64)

	b := singleTxBatch("alice", "B", 1, "k1")
	// quorum=1 with 1 sig completes immediately; use quorum=2 so it stays
	// in own_state and is eligible for propagation.
	b.Transactions[0].Quorum = 2
	p.Propagate(b)

	p.Tick()
	if _, ok := transport.sent["P1"]; !ok {
		t.Fatalf("expected send_state call to P1")
	}

	transport.sent = make(map[string]*State)
	p.Tick()
	if _, ok := transport.sent["P1"]; ok {
		t.Fatalf("expected no second send_state call once peer_view converged")
	}
}

func TestProcessorRetriesOnFailedSend(t *testing.T) {
	transport := newRecordingTransport(false)
	strategy := staticStrategy{peers: []string{"P1"}}
	p := NewProcessor(testLogger(), NewGraceCompleter(0), transport, strategy, fixedClock{now: 1000}, 64)

	b := singleTxBatch("alice", "B", 2, "k1")
	p.Propagate(b)

	p.Tick()
	p.Tick()
	if len(transport.sent) != 1 {
		t.Fatalf("expected transport called each tick")
	}
	if transport.sent["P1"].Len() != 1 {
		t.Fatalf("expected the retried diff to still carry the batch")
	}
}

// S3: replay rejection via tx-presence cache.
func TestOnNewStateDropsFinalizedTransactions(t *testing.T) {
	transport := newRecordingTransport(true)
	strategy := staticStrategy{peers: nil}
	p := NewProcessor(testLogger(), NewGraceCompleter(0), transport, strategy, fixedClock{now: 1000}, 64)

	tx1 := tx("alice", "tx1", 1, "k1")
	tx2 := tx("alice", "tx2", 1, "k1")
	meta := &model.BatchMeta{Type: model.Atomic, ReducedHashes: []string{"tx1", "tx2"}}
	tx1.Meta, tx2.Meta = meta, meta
	batch := model.Batch{ReducedHash: model.ComputeReducedHash([]model.Tx{tx1, tx2}), Transactions: []model.Tx{tx1, tx2}}

	p.presence.MarkRejected(tx1.PayloadHash)
	p.presence.MarkRejected(tx2.PayloadHash)

	var updates, completes, expires int
	p.SubscribeStateUpdate(func(*State) { updates++ })
	p.SubscribePreparedBatch(func(model.Batch) { completes++ })
	p.SubscribeExpiredBatch(func(model.Batch) { expires++ })

	p.OnNewState("peer1", []model.Batch{batch})

	if p.OwnStateSize() != 0 {
		t.Fatalf("expected own_state to remain empty after full replay, got %d", p.OwnStateSize())
	}
	if updates != 0 || completes != 0 || expires != 0 {
		t.Fatalf("expected no events for a fully-replayed batch, got updates=%d completes=%d expires=%d", updates, completes, expires)
	}
}

func TestOnNewStateEmitsInOrder(t *testing.T) {
	transport := newRecordingTransport(true)
	strategy := staticStrategy{peers: nil}
	p := NewProcessor(testLogger(), NewGraceCompleter(0), transport, strategy, fixedClock{now: 1000}, 64)

	var order []string
	p.SubscribeStateUpdate(func(*State) { order = append(order, "updated") })
	p.SubscribePreparedBatch(func(model.Batch) { order = append(order, "completed") })

	incomplete := singleTxBatch("alice", "incomplete", 3, "k1")
	complete := singleTxBatch("bob", "complete", 1, "k1")
	p.OnNewState("peer1", []model.Batch{incomplete, complete})

	if len(order) != 2 || order[0] != "updated" || order[1] != "completed" {
		t.Fatalf("expected updated before completed, got %v", order)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	transport := newRecordingTransport(true)
	p := NewProcessor(testLogger(), NewGraceCompleter(0), transport, staticStrategy{}, fixedClock{now: 1000}, 64)

	count := 0
	unsub := p.SubscribeStateUpdate(func(*State) { count++ })
	p.OnNewState("peer1", []model.Batch{singleTxBatch("alice", "b1", 3, "k1")})
	unsub()
	p.OnNewState("peer1", []model.Batch{singleTxBatch("alice", "b2", 3, "k1")})

	if count != 1 {
		t.Fatalf("expected exactly 1 delivery before unsubscribe, got %d", count)
	}
}
