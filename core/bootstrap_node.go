package core

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"synnergy-network/pkg/config"
)

// defaultMstPropagationTick is used when BootstrapConfig.Consensus does not
// set Consensus.MST.PropagationTickMS.
const defaultMstPropagationTick = time.Second

// BootstrapNode bundles networking, optional replication, and the
// consensus subsystem to help new peers join the network. It runs a
// libp2p node and exposes a thin service surface compatible with the VM
// opcode dispatcher.

type BootstrapNode struct {
	*BaseNode
	peers        *PeerManagement
	rep          *Replicator // optional, may be nil
	led          *Ledger
	consensus    *ConsensusNode // optional, may be nil
	mstTickEvery time.Duration
	log          *logrus.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
}

// BootstrapConfig aggregates the required configuration sections.
type BootstrapConfig struct {
	Network     Config
	Ledger      LedgerConfig
	Replication *ReplicationConfig
	// Consensus, when set, wires the MST/YAC/synchronizer subsystem onto
	// this node's peer manager, ledger, and replicator.
	Consensus *config.Config
	Log       *logrus.Logger
}

// NewBootstrapNode initialises networking, the replication service, and
// (when configured) the consensus subsystem. It returns a node ready to be
// started.
func NewBootstrapNode(cfg *BootstrapConfig) (*BootstrapNode, error) {
	ctx, cancel := context.WithCancel(context.Background())
	n, err := NewNode(cfg.Network)
	if err != nil {
		cancel()
		return nil, err
	}
	led, err := NewLedger(cfg.Ledger)
	if err != nil {
		cancel()
		_ = n.Close()
		return nil, err
	}

	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	// PeerManagement wraps Node to satisfy PeerManager; replication and
	// consensus both depend on it for peer sampling and messaging.
	pm := NewPeerManagement(n)

	var rep *Replicator
	if cfg.Replication != nil {
		rep = NewReplicator(cfg.Replication, log, led, pm)
	}

	var consensus *ConsensusNode
	tickEvery := defaultMstPropagationTick
	if cfg.Consensus != nil {
		if rep == nil {
			cancel()
			_ = n.Close()
			return nil, errConsensusRequiresReplication
		}
		consensus = NewConsensusNode(cfg.Consensus, pm, led, rep, log)
		if ms := cfg.Consensus.Consensus.MST.PropagationTickMS; ms > 0 {
			tickEvery = time.Duration(ms) * time.Millisecond
		}
	}

	base := NewBaseNode(&NodeAdapter{n})
	return &BootstrapNode{
		BaseNode:     base,
		peers:        pm,
		rep:          rep,
		led:          led,
		consensus:    consensus,
		mstTickEvery: tickEvery,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
	}, nil
}

// Start launches the bootstrap services. It is safe to call multiple times.
func (b *BootstrapNode) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rep != nil {
		b.rep.Start()
	}
	if b.consensus != nil {
		go RunMstListener(b.peers, b.consensus.Mst)
		go b.runMstPropagationLoop()
	}
	go b.ListenAndServe()
}

// Stop gracefully shuts down the node, replication service, and consensus
// subsystem.
func (b *BootstrapNode) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rep != nil {
		b.rep.Stop()
	}
	b.cancel()
	return b.Close()
}

// runMstPropagationLoop drives the MST processor's periodic outbound
// propagation tick (spec.md §4.2) until the node is stopped.
func (b *BootstrapNode) runMstPropagationLoop() {
	ticker := time.NewTicker(b.mstTickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.consensus.Mst.Tick()
		}
	}
}

// Ledger exposes the underlying ledger for integrations.
func (b *BootstrapNode) Ledger() *Ledger { return b.led }

// Consensus exposes the wired consensus subsystem, or nil if
// BootstrapConfig.Consensus was not set.
func (b *BootstrapNode) Consensus() *ConsensusNode { return b.consensus }

var errConsensusRequiresReplication = bootstrapErr("bootstrap node: consensus requires a replication config to source block downloads")

type bootstrapErr string

func (e bootstrapErr) Error() string { return string(e) }
