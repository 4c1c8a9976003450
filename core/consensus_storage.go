package core

import (
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/model"
	consensussync "synnergy-network/internal/consensus/sync"
)

// ledgerStorage is the MutableStorage implementation backing
// LedgerMutableFactory: a staging list of decoded blocks, applied to the
// ledger only at Commit, per spec.md §5 ("MutableStorage is not
// thread-safe; each synchronizer invocation creates its own").
type ledgerStorage struct {
	pending []*Block
}

// LedgerChainValidator adapts the node's BlockReader into
// sync.ChainValidator: it decodes the consensus-level model.Block's
// opaque RLP payload and stages it for commit.
type LedgerChainValidator struct {
	ledger BlockReader
	log    *logrus.Logger
}

// NewLedgerChainValidator builds a ChainValidator over ledger.
func NewLedgerChainValidator(ledger BlockReader, log *logrus.Logger) *LedgerChainValidator {
	return &LedgerChainValidator{ledger: ledger, log: log}
}

// ValidateAndApply implements sync.ChainValidator. Before staging the
// block it checks the attached commit evidence against ledgerState's peer
// set, the way original_source's chain_validator.hpp validates "all its
// signatures and related meta information" before applying a block.
func (v *LedgerChainValidator) ValidateAndApply(block *model.Block, ledgerState model.LedgerState, storage consensussync.MutableStorage) bool {
	st, ok := storage.(*ledgerStorage)
	if !ok {
		v.log.Error("consensus storage: validator received a foreign MutableStorage")
		return false
	}
	if need := model.Supermajority(len(ledgerState.LedgerPeers)); len(block.Signatures) < need {
		v.log.WithFields(logrus.Fields{
			"height": block.Height, "have": len(block.Signatures), "need": need,
		}).Warn("consensus storage: block lacks supermajority commit evidence")
		return false
	}
	blk, err := v.ledger.DecodeBlockRLP(block.Payload)
	if err != nil {
		v.log.WithFields(logrus.Fields{"height": block.Height, "error": err}).Warn("consensus storage: block payload failed to decode")
		return false
	}
	st.pending = append(st.pending, blk)
	return true
}

// LedgerMutableFactory adapts the node's BlockReader into
// sync.MutableFactory, committing staged blocks in order and reporting
// the resulting ledger state.
type LedgerMutableFactory struct {
	ledger BlockReader
	log    *logrus.Logger
}

// NewLedgerMutableFactory builds a MutableFactory over ledger. This node
// has no block-creator prepared-commit fast path, so PreparedCommitEnabled
// always reports false.
func NewLedgerMutableFactory(ledger BlockReader, log *logrus.Logger) *LedgerMutableFactory {
	return &LedgerMutableFactory{ledger: ledger, log: log}
}

// CreateMutableStorage implements sync.MutableFactory.
func (f *LedgerMutableFactory) CreateMutableStorage() (consensussync.MutableStorage, error) {
	return &ledgerStorage{}, nil
}

// Commit implements sync.MutableFactory.
func (f *LedgerMutableFactory) Commit(storage consensussync.MutableStorage) (model.LedgerState, error) {
	st, ok := storage.(*ledgerStorage)
	if !ok {
		return model.LedgerState{}, errors.New("consensus storage: commit received a foreign MutableStorage")
	}
	for _, blk := range st.pending {
		if err := f.ledger.ImportBlock(blk); err != nil {
			return model.LedgerState{}, errors.Wrap(err, "consensus storage: import block")
		}
	}
	return f.snapshot(), nil
}

// PreparedCommitEnabled implements sync.MutableFactory.
func (f *LedgerMutableFactory) PreparedCommitEnabled() bool { return false }

// CommitPrepared implements sync.MutableFactory. Always fails so the
// synchronizer falls back to the regular create/validate/commit path.
func (f *LedgerMutableFactory) CommitPrepared(block *model.Block) (model.LedgerState, error) {
	return model.LedgerState{}, errors.New("consensus storage: prepared commit not supported by this ledger")
}

func (f *LedgerMutableFactory) snapshot() model.LedgerState {
	height := f.ledger.LastHeight()
	hash := ""
	if blk, err := f.ledger.GetBlock(height); err == nil && blk != nil {
		hash = blk.Hash().Short()
	}
	return model.LedgerState{TopBlockHeight: height, TopBlockHash: hash, ProducedAt: time.Now()}
}
