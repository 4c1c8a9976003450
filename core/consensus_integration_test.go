package core

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/model"
	consensussync "synnergy-network/internal/consensus/sync"
	"synnergy-network/internal/consensus/yac"
	"synnergy-network/pkg/config"
)

// fakePeerManager is a minimal PeerManager for exercising the consensus
// adapters without a real libp2p host.
type fakePeerManager struct {
	sampled []string
	sendFn  func(peerID, proto string, code byte, payload []byte) error
}

func (f *fakePeerManager) Peers() []PeerInfo                       { return nil }
func (f *fakePeerManager) Connect(addr string) error                { return nil }
func (f *fakePeerManager) Disconnect(id NodeID) error               { return nil }
func (f *fakePeerManager) Sample(n int) []string                   { return f.sampled }
func (f *fakePeerManager) Subscribe(proto string) <-chan InboundMsg { return make(chan InboundMsg) }
func (f *fakePeerManager) Unsubscribe(proto string)                 {}
func (f *fakePeerManager) SendAsync(peerID, proto string, code byte, payload []byte) error {
	if f.sendFn != nil {
		return f.sendFn(peerID, proto, code, payload)
	}
	return nil
}

func testConsensusConfig() *config.Config {
	var cfg config.Config
	cfg.Consensus.MST.FanoutPeers = 1
	cfg.Consensus.MST.GraceMS = 60_000
	cfg.Consensus.MST.PresenceCacheSize = 64
	cfg.Consensus.Batch.MaxBatchSize = 10
	cfg.Consensus.Sync.RangeBatchSize = 10
	cfg.Consensus.Sync.RequestTimeoutMS = 1000
	return &cfg
}

func testLog() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// TestNewConsensusNodeWiresBatchIngestion exercises the adapters end to
// end: a structurally valid batch reaches the MST processor via
// ConsensusNode.IngestBatch, and a rejected one never does.
func TestNewConsensusNodeWiresBatchIngestion(t *testing.T) {
	ledgerCfg, cleanup := tmpLedgerConfig(t, nil)
	defer cleanup()
	ledger, err := NewLedger(ledgerCfg)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}

	pm := &fakePeerManager{sampled: []string{"peerA"}}
	log := testLog()
	rep := NewReplicator(&ReplicationConfig{Fanout: 1, RequestTimeout: time.Second, SyncBatchSize: 10}, log, ledger, pm)

	node := NewConsensusNode(testConsensusConfig(), pm, ledger, rep, log)

	valid := model.Batch{ReducedHash: "b1", Transactions: []model.Tx{{
		ReducedHash: "h1",
		CreatedTime: uint64(time.Now().UnixMilli()),
		Quorum:      2, // short of quorum so the batch stays in own state, not completed away
		Signatures:  map[string]model.Signature{"k1": {PublicKeyHex: "k1", SignedHex: "sig"}},
	}}}
	ok, failures := node.IngestBatch(valid)
	if !ok || len(failures) != 0 {
		t.Fatalf("expected valid batch to be ingested, got ok=%v failures=%v", ok, failures)
	}
	if node.Mst.OwnStateSize() != 1 {
		t.Fatalf("expected batch propagated into MST state, size=%d", node.Mst.OwnStateSize())
	}

	invalid := model.Batch{ReducedHash: "b2", Transactions: []model.Tx{{ReducedHash: "h2"}}}
	ok, failures = node.IngestBatch(invalid)
	if ok || len(failures) == 0 {
		t.Fatalf("expected unsigned batch to be rejected, got ok=%v failures=%v", ok, failures)
	}
	if node.Mst.OwnStateSize() != 1 {
		t.Fatalf("expected rejected batch to not reach MST state, size=%d", node.Mst.OwnStateSize())
	}
}

// TestNewConsensusNodeCommitsPairValidBlock drives a PairValid outcome
// through the synchronizer's real adapters (LedgerChainValidator,
// LedgerMutableFactory) onto a real Ledger.
func TestNewConsensusNodeCommitsPairValidBlock(t *testing.T) {
	ledgerCfg, cleanup := tmpLedgerConfig(t, nil)
	defer cleanup()
	ledger, err := NewLedger(ledgerCfg)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}

	pm := &fakePeerManager{sampled: []string{"peerA"}}
	log := testLog()
	rep := NewReplicator(&ReplicationConfig{Fanout: 1, RequestTimeout: time.Second, SyncBatchSize: 10}, log, ledger, pm)

	node := NewConsensusNode(testConsensusConfig(), pm, ledger, rep, log)

	blk := &Block{Header: BlockHeader{Height: 0}}
	outcome := yac.PairValid{Block: &model.Block{Height: 0, Hash: "h0", Payload: blk.EncodeRLP()}, Round: model.Round{BlockRound: 0}}

	ev, ok := node.DispatchOutcome(outcome)
	if !ok {
		t.Fatalf("expected PairValid block to commit")
	}
	if ev.Outcome != consensussync.Commit {
		t.Fatalf("expected Commit outcome, got %v", ev.Outcome)
	}
	if ledger.LastHeight() != 0 || len(ledger.Blocks) != 1 {
		t.Fatalf("expected block imported into ledger, blocks=%d", len(ledger.Blocks))
	}
}

// TestReplicatorBlockLoaderRetrievesRange exercises
// ReplicatorBlockLoader.RetrieveBlocks against a Replicator whose peer
// immediately answers a range request, the shape the synchronizer's
// download path relies on (spec.md §4.6).
func TestReplicatorBlockLoaderRetrievesRange(t *testing.T) {
	ledgerCfg, cleanup := tmpLedgerConfig(t, nil)
	defer cleanup()
	ledger, err := NewLedger(ledgerCfg)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}

	served := &Block{Header: BlockHeader{Height: 1}}
	log := testLog()

	pm := &fakePeerManager{sampled: []string{"peerA"}}
	var rep *Replicator
	pm.sendFn = func(peerID, proto string, code byte, payload []byte) error {
		if msgType(code) != msgGetRange {
			return nil
		}
		resp, err := json.Marshal(rangeBlocksMsg{Blocks: [][]byte{served.EncodeRLP()}})
		if err != nil {
			return err
		}
		go rep.handleRangeBlocks(peerID, resp)
		return nil
	}
	rep = NewReplicator(&ReplicationConfig{Fanout: 1, RequestTimeout: time.Second, SyncBatchSize: 10}, log, ledger, pm)

	loader := NewReplicatorBlockLoader(rep, log, 10, 2*time.Second)
	seq := loader.RetrieveBlocks("peerA", 0)

	blk, ok := seq.Next()
	if !ok {
		t.Fatalf("expected a block from the loader")
	}
	if blk.Height != 1 {
		t.Fatalf("expected height 1, got %d", blk.Height)
	}
	if _, ok := seq.Next(); ok {
		t.Fatalf("expected sequence to end after one block")
	}
}
