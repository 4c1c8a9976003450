package mst

import (
	"sync"

	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/model"
)

// PeerTransport is the abstract gossip transport collaborator (spec.md
// §1): send_state is nominally asynchronous but modeled here as a
// one-shot call returning whether the peer accepted the diff, matching
// the blocking-per-call shape the processor's mutex-held update requires
// (§5 — peer_view is updated only after the result is known).
type PeerTransport interface {
	SendState(peer string, diff *State) bool
}

// PropagationStrategy produces the peer lists a propagation tick targets.
// Cadence (round-robin, per-tick, ...) is left to the implementation.
type PropagationStrategy interface {
	EmitPeerSet() []string
}

// TimeProvider abstracts wall-clock access so tests can control expiry.
type TimeProvider interface {
	NowMillis() uint64
}

// StateUpdateHandler is invoked with the batches that gained signatures
// (but did not complete) in a single inbound or local update.
type StateUpdateHandler func(updated *State)

// PreparedBatchHandler is invoked once per batch that just became
// complete.
type PreparedBatchHandler func(batch model.Batch)

// ExpiredBatchHandler is invoked once per batch extracted as expired.
type ExpiredBatchHandler func(batch model.Batch)

// Unsubscribe removes a previously registered handler. Subscriptions are
// scoped handles: calling Unsubscribe is the only way to stop delivery
// (no subscription registry is otherwise exposed), mirroring the node's
// scoped-acquisition convention for event feeds.
type Unsubscribe func()

// Processor drives the gossip loop described in spec.md §4.2: periodic
// outbound propagation of the own-state/peer-view diff, absorption of
// inbound peer state, and three event streams.
type Processor struct {
	log *logrus.Logger

	mu       sync.Mutex
	own      *State
	peers    *PeerView
	presence *TxPresenceCache

	transport PeerTransport
	strategy  PropagationStrategy
	clock     TimeProvider
	completer Completer

	subMu           sync.Mutex
	onStateUpdate   map[int]StateUpdateHandler
	onPreparedBatch map[int]PreparedBatchHandler
	onExpiredBatch  map[int]ExpiredBatchHandler
	nextSubID       int
}

// NewProcessor wires a gossip loop over the given transport and
// propagation strategy, using completer to judge completeness/expiry and
// clock for the current time.
func NewProcessor(log *logrus.Logger, completer Completer, transport PeerTransport, strategy PropagationStrategy, clock TimeProvider, presenceCacheSize int) *Processor {
	return &Processor{
		log:             log,
		own:             New(completer),
		peers:           NewPeerView(completer),
		presence:        NewTxPresenceCache(presenceCacheSize),
		transport:       transport,
		strategy:        strategy,
		clock:           clock,
		completer:       completer,
		onStateUpdate:   make(map[int]StateUpdateHandler),
		onPreparedBatch: make(map[int]PreparedBatchHandler),
		onExpiredBatch:  make(map[int]ExpiredBatchHandler),
	}
}

// SubscribeStateUpdate registers a handler for the updated event stream.
func (p *Processor) SubscribeStateUpdate(h StateUpdateHandler) Unsubscribe {
	p.subMu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.onStateUpdate[id] = h
	p.subMu.Unlock()
	return func() {
		p.subMu.Lock()
		delete(p.onStateUpdate, id)
		p.subMu.Unlock()
	}
}

// SubscribePreparedBatch registers a handler for the prepared event stream.
func (p *Processor) SubscribePreparedBatch(h PreparedBatchHandler) Unsubscribe {
	p.subMu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.onPreparedBatch[id] = h
	p.subMu.Unlock()
	return func() {
		p.subMu.Lock()
		delete(p.onPreparedBatch, id)
		p.subMu.Unlock()
	}
}

// SubscribeExpiredBatch registers a handler for the expired event stream.
func (p *Processor) SubscribeExpiredBatch(h ExpiredBatchHandler) Unsubscribe {
	p.subMu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.onExpiredBatch[id] = h
	p.subMu.Unlock()
	return func() {
		p.subMu.Lock()
		delete(p.onExpiredBatch, id)
		p.subMu.Unlock()
	}
}

// emit delivers the {updated, completed, expired} events for one update
// in the order spec.md §5 requires: updated before completed before
// expired.
func (p *Processor) emit(updated, completed, expired *State) {
	if updated.Len() > 0 {
		p.subMu.Lock()
		handlers := make([]StateUpdateHandler, 0, len(p.onStateUpdate))
		for _, h := range p.onStateUpdate {
			handlers = append(handlers, h)
		}
		p.subMu.Unlock()
		for _, h := range handlers {
			h(updated)
		}
	}
	if completed.Len() > 0 {
		p.subMu.Lock()
		handlers := make([]PreparedBatchHandler, 0, len(p.onPreparedBatch))
		for _, h := range p.onPreparedBatch {
			handlers = append(handlers, h)
		}
		p.subMu.Unlock()
		for _, b := range completed.Batches() {
			for _, h := range handlers {
				h(b)
			}
		}
	}
	if expired.Len() > 0 {
		p.subMu.Lock()
		handlers := make([]ExpiredBatchHandler, 0, len(p.onExpiredBatch))
		for _, h := range p.onExpiredBatch {
			handlers = append(handlers, h)
		}
		p.subMu.Unlock()
		for _, b := range expired.Batches() {
			for _, h := range handlers {
				h(b)
			}
		}
	}
}

// Tick runs one propagation round: for every peer in the strategy's
// current emission, compute the own-state/peer-view diff, drop anything
// already expired, and send it. peer_view is only advanced on a truthy
// transport result so a failed send is retried next tick (spec.md §4.2).
func (p *Processor) Tick() {
	peerSet := p.strategy.EmitPeerSet()

	p.mu.Lock()
	now := p.clock.NowMillis()
	type pending struct {
		peer string
		diff *State
	}
	var toSend []pending
	for _, peer := range peerSet {
		diff := p.own.Difference(p.peers.Get(peer))
		diff.ExtractExpired(now)
		if diff.Len() == 0 {
			continue
		}
		toSend = append(toSend, pending{peer: peer, diff: diff})
	}
	p.mu.Unlock()

	for _, item := range toSend {
		ok := p.transport.SendState(item.peer, item.diff)
		if !ok {
			p.log.WithFields(logrus.Fields{"peer": item.peer}).Debug("mst: send_state failed, retrying next tick")
			continue
		}
		p.mu.Lock()
		p.peers.MergeInto(item.peer, item.diff)
		p.mu.Unlock()
	}
}

// OnNewState absorbs a peer's reported state (spec.md §4.2 inbound
// path). Transactions already finalized on-chain (Committed/Rejected in
// the presence cache) are dropped before the batch ever enters MstState,
// per spec.md §6.1.
func (p *Processor) OnNewState(fromPeer string, batches []model.Batch) {
	now := p.clock.NowMillis()

	filtered := New(p.completer)
	for _, b := range batches {
		kept := keepUnfinalized(b, p.presence)
		if kept == nil {
			continue
		}
		filtered.Insert(*kept)
	}
	filtered.ExtractExpired(now)

	p.mu.Lock()
	diff := filtered
	result := p.own.UnionAssign(diff)
	p.peers.MergeInto(fromPeer, diff)
	expired := p.own.ExtractExpired(now)
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"peer":      fromPeer,
		"updated":   result.Updated.Len(),
		"completed": result.Completed.Len(),
		"expired":   expired.Len(),
	}).Debug("mst: absorbed peer state")

	p.emit(result.Updated, result.Completed, expired)
}

// keepUnfinalized drops the transactions of b that the presence cache
// already knows are Committed or Rejected, returning nil if nothing is
// left (the whole batch was replay).
func keepUnfinalized(b model.Batch, presence *TxPresenceCache) *model.Batch {
	kept := make([]model.Tx, 0, len(b.Transactions))
	for _, tx := range b.Transactions {
		if presence.Status(tx.PayloadHash) != Missing {
			continue
		}
		kept = append(kept, tx)
	}
	if len(kept) == 0 {
		return nil
	}
	out := model.Batch{ReducedHash: b.ReducedHash, Transactions: kept}
	return &out
}

// Propagate submits a locally-created batch, following the same event
// sequencing as the inbound path.
func (p *Processor) Propagate(batch model.Batch) {
	local := New(p.completer)
	local.Insert(batch)

	p.mu.Lock()
	result := p.own.UnionAssign(local)
	now := p.clock.NowMillis()
	expired := p.own.ExtractExpired(now)
	p.mu.Unlock()

	p.log.WithFields(logrus.Fields{
		"batch":     batch.ReducedHash,
		"updated":   result.Updated.Len(),
		"completed": result.Completed.Len(),
	}).Debug("mst: local batch submitted")

	p.emit(result.Updated, result.Completed, expired)
}

// FinalizeTx erases any batch containing txHash from own_state and
// records the tx's final status, so a subsequent replay of the same tx
// over gossip is dropped at OnNewState.
func (p *Processor) FinalizeTx(txHash string, committed bool) {
	p.mu.Lock()
	p.own.EraseByTxHash(txHash)
	p.mu.Unlock()

	if committed {
		p.presence.MarkCommitted(txHash)
	} else {
		p.presence.MarkRejected(txHash)
	}
}

// OwnStateSize reports the number of batches currently held locally, used
// as the mst_own_state_size gauge by callers wiring this processor to
// Prometheus.
func (p *Processor) OwnStateSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.own.Len()
}
