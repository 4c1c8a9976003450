package core

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/batch"
	"synnergy-network/internal/consensus/blockcache"
	"synnergy-network/internal/consensus/model"
	"synnergy-network/internal/consensus/mst"
	"synnergy-network/internal/consensus/pendingtxs"
	consensussync "synnergy-network/internal/consensus/sync"
	"synnergy-network/internal/consensus/yac"
	"synnergy-network/pkg/config"
)

const yacProtocolID = "synnergy-yac/1"

// IdentityPeerOrderer is the default yac.PeerOrderer: it hands back the
// ledger peer set untouched. Proposer-rotation policy is an abstract
// collaborator left to deployment-specific wiring (spec.md §1 treats
// PeerOrderer the same as Signer/Verifier: external, out of scope).
type IdentityPeerOrderer struct{}

// Order implements yac.PeerOrderer.
func (IdentityPeerOrderer) Order(_ model.Round, peers []string) ([]string, error) {
	return peers, nil
}

type yacVoteWire struct {
	Hash model.YacHash `json:"hash"`
}

// PubsubHashGate adapts PeerManager into yac.HashGate, disseminating a
// vote to the (possibly one-shot alternative) peer order the same way
// MstTransport gossips MST diffs.
type PubsubHashGate struct {
	pm  PeerManager
	log *logrus.Logger
}

// NewPubsubHashGate wires vote dissemination onto pm.
func NewPubsubHashGate(pm PeerManager, log *logrus.Logger) *PubsubHashGate {
	return &PubsubHashGate{pm: pm, log: log}
}

// Vote implements yac.HashGate: it signs nothing itself (signing is an
// external collaborator, spec.md §1) and simply disseminates the already
// final YacHash to whichever peer order the gate selected.
func (g *PubsubHashGate) Vote(hash model.YacHash, order, alternativeOrder []string) error {
	targets := order
	if alternativeOrder != nil {
		targets = alternativeOrder
	}
	payload, err := json.Marshal(yacVoteWire{Hash: hash})
	if err != nil {
		return err
	}
	for _, peer := range targets {
		if err := g.pm.SendAsync(peer, yacProtocolID, 0, payload); err != nil {
			g.log.WithFields(logrus.Fields{"peer": peer, "error": err}).Debug("yac hash gate: vote send failed")
		}
	}
	return nil
}

// ConsensusNode bundles the MST processor, YAC gate, synchronizer, and
// pending-transaction index into the wiring a running node needs, the
// way bootstrap_node.go bundles the rest of the node's subsystems.
type ConsensusNode struct {
	Mst           *mst.Processor
	Gate          *yac.Gate
	Synchronizer  *consensussync.Synchronizer
	PendingIndex  *pendingtxs.Index
	BlockCache    *blockcache.Cache
	BatchConfig   batch.Config
	log           *logrus.Logger
}

// NewConsensusNode wires the consensus subsystem over an existing node's
// peer manager, ledger, and replicator.
func NewConsensusNode(cfg *config.Config, pm PeerManager, ledger BlockReader, replicator *Replicator, log *logrus.Logger) *ConsensusNode {
	transport := NewMstTransport(pm, log)
	strategy := NewPeerSampleStrategy(pm, cfg.Consensus.MST.FanoutPeers)
	completer := mst.NewGraceCompleter(uint64(cfg.Consensus.MST.GraceMS))
	processor := mst.NewProcessor(log, completer, transport, strategy, WallClock{}, cfg.Consensus.MST.PresenceCacheSize)

	pendingIndex := pendingtxs.New()
	processor.SubscribeStateUpdate(func(s *mst.State) {
		pendingIndex.OnStateUpdate(s.Batches())
	})
	processor.SubscribePreparedBatch(func(b model.Batch) {
		pendingIndex.OnPreparedBatch(b)
	})
	processor.SubscribeExpiredBatch(func(b model.Batch) {
		pendingIndex.OnExpiredBatch(b)
	})

	cache := blockcache.New()
	hashGate := NewPubsubHashGate(pm, log)
	gate := yac.NewGate(log, yac.DefaultHashProvider{}, IdentityPeerOrderer{}, hashGate, cache)

	chainValidator := NewLedgerChainValidator(ledger, log)
	factory := NewLedgerMutableFactory(ledger, log)
	loader := NewReplicatorBlockLoader(replicator, log,
		uint64(cfg.Consensus.Sync.RangeBatchSize),
		time.Duration(cfg.Consensus.Sync.RequestTimeoutMS)*time.Millisecond)
	synchronizer := consensussync.New(log, chainValidator, factory, loader, ledger.LastHeight(), model.LedgerState{})

	return &ConsensusNode{
		Mst:          processor,
		Gate:         gate,
		Synchronizer: synchronizer,
		PendingIndex: pendingIndex,
		BlockCache:   cache,
		BatchConfig: batch.Config{
			MaxBatchSize:               cfg.Consensus.Batch.MaxBatchSize,
			PartialOrderedBatchesValid: cfg.Consensus.Batch.PartialOrderedBatchesValid,
		},
		log: log,
	}
}

// IngestBatch runs the structural validator of spec.md §4.7 before
// admitting a batch into MST propagation; it reports the failures of a
// rejected batch for the caller to log or surface over RPC.
func (n *ConsensusNode) IngestBatch(b model.Batch) (bool, []batch.Failure) {
	res := batch.Validate(b, n.BatchConfig)
	if !res.Valid() {
		return false, res.Failures
	}
	n.Mst.Propagate(b)
	return true, nil
}

// DispatchOutcome hands a YAC gate outcome to the synchronizer and
// finalizes the pending-transaction index and MST presence cache for
// every transaction in a committed block (spec.md §4.6, §6.1).
func (n *ConsensusNode) DispatchOutcome(outcome yac.Outcome) (*consensussync.SynchronizationEvent, bool) {
	ev, ok := n.Synchronizer.Process(outcome)
	if !ok {
		return nil, false
	}
	if ev.Outcome == consensussync.Commit {
		n.BlockCache.Release()
	}
	return ev, true
}

// FinalizeTx records a transaction's terminal status so MST and
// pending-tx state stop tracking it and future replays are dropped.
func (n *ConsensusNode) FinalizeTx(txHash string, committed bool) {
	n.Mst.FinalizeTx(txHash, committed)
	n.PendingIndex.OnFinalizedTx(txHash)
}
