// Package sync implements the chain synchronizer of spec.md §4.6: for
// every YAC gate outcome it produces at most one SynchronizationEvent,
// fast-committing when consensus agrees with the local vote and
// downloading from peers otherwise, tolerating a Byzantine peer at the
// cost of O(applied_blocks) wasted work.
package sync

import (
	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/model"
	"synnergy-network/internal/consensus/yac"
)

// MutableStorage is an opaque, uncommitted view over world state; callers
// never inspect it directly, only pass it between ChainValidator and
// MutableFactory.
type MutableStorage interface{}

// ChainValidator validates and applies a single block against a
// MutableStorage, discarding the view on failure. ledgerState carries the
// signer set the block's commit evidence is checked against (spec.md §9
// supplement, grounded on original_source's chain_validator.hpp: "it will
// validate all its signatures and related meta information").
type ChainValidator interface {
	ValidateAndApply(block *model.Block, ledgerState model.LedgerState, storage MutableStorage) bool
}

// MutableFactory creates MutableStorage instances and commits them,
// optionally offering a prepared-commit fast path for blocks already
// staged during voting.
type MutableFactory interface {
	CreateMutableStorage() (MutableStorage, error)
	Commit(storage MutableStorage) (model.LedgerState, error)
	PreparedCommitEnabled() bool
	CommitPrepared(block *model.Block) (model.LedgerState, error)
}

// BlockSequence is a finite, blocking, pull-based sequence of blocks
// returned by BlockLoader. It may end early ("abrupt in the middle") if
// the underlying stream is truncated; Next reports that the same way it
// reports a clean end, as (nil, false).
type BlockSequence interface {
	Next() (*model.Block, bool)
}

// BlockLoader asks a specific peer for blocks starting at fromHeight
// (exclusive): the first block returned has height fromHeight+1.
type BlockLoader interface {
	RetrieveBlocks(peer string, fromHeight uint64) BlockSequence
}

// SyncOutcome is the kind of result a SynchronizationEvent carries.
type SyncOutcome int

const (
	Commit SyncOutcome = iota
	Reject
	Nothing
)

// SynchronizationEvent is the at-most-one-per-outcome result the
// synchronizer produces.
type SynchronizationEvent struct {
	LedgerState model.LedgerState
	Outcome     SyncOutcome
	Round       model.Round
}

// Synchronizer dispatches YAC gate outcomes to fast-commit or download,
// tracking the in-memory top block height across invocations so partial
// downloads resume correctly after a peer switch.
type Synchronizer struct {
	log *logrus.Logger

	validator ChainValidator
	factory   MutableFactory
	loader    BlockLoader

	currentTopHeight uint64
	lastLedgerState  model.LedgerState
}

// New builds a synchronizer starting from the given top block height.
func New(log *logrus.Logger, validator ChainValidator, factory MutableFactory, loader BlockLoader, startHeight uint64, initialLedgerState model.LedgerState) *Synchronizer {
	return &Synchronizer{
		log:              log,
		validator:        validator,
		factory:          factory,
		loader:           loader,
		currentTopHeight: startHeight,
		lastLedgerState:  initialLedgerState,
	}
}

// TopHeight reports the synchronizer's current view of the chain height.
// It is non-decreasing across invocations (spec.md §8 P6).
func (s *Synchronizer) TopHeight() uint64 { return s.currentTopHeight }

// Process dispatches a single YAC gate outcome, returning at most one
// event. A nil, false result means nothing is emitted (either the
// outcome requires no action or every recovery path was exhausted).
func (s *Synchronizer) Process(outcome yac.Outcome) (*SynchronizationEvent, bool) {
	switch o := outcome.(type) {
	case yac.PairValid:
		return s.processPairValid(o)
	case yac.VoteOther:
		return s.processDownload(s.currentTopHeight+1, o.PublicKeys, o.Round)
	case yac.Future:
		if o.Round.BlockRound <= s.currentTopHeight {
			return nil, false
		}
		return s.processDownload(o.Round.BlockRound, o.PublicKeys, o.Round)
	case yac.BlockReject:
		return &SynchronizationEvent{LedgerState: s.lastLedgerState, Outcome: Reject, Round: o.Round}, true
	case yac.ProposalReject:
		return &SynchronizationEvent{LedgerState: s.lastLedgerState, Outcome: Reject, Round: o.Round}, true
	case yac.AgreementOnNone:
		return &SynchronizationEvent{LedgerState: s.lastLedgerState, Outcome: Nothing, Round: o.Round}, true
	default:
		return nil, false
	}
}

func (s *Synchronizer) processPairValid(o yac.PairValid) (*SynchronizationEvent, bool) {
	if o.Block == nil {
		return nil, false
	}

	if s.factory.PreparedCommitEnabled() {
		ledgerState, err := s.factory.CommitPrepared(o.Block)
		if err == nil {
			s.advance(o.Block.Height, ledgerState)
			return &SynchronizationEvent{LedgerState: ledgerState, Outcome: Commit, Round: o.Round}, true
		}
		s.log.WithFields(logrus.Fields{"round": o.Round, "error": err}).Warn("sync: prepared commit failed, falling back to regular apply")
	}

	storage, err := s.factory.CreateMutableStorage()
	if err != nil {
		s.log.WithFields(logrus.Fields{"round": o.Round, "error": err}).Error("sync: failed to create mutable storage")
		return nil, false
	}
	if !s.validator.ValidateAndApply(o.Block, s.lastLedgerState, storage) {
		s.log.WithFields(logrus.Fields{"round": o.Round}).Error("sync: pair-valid block failed to apply")
		return nil, false
	}
	ledgerState, err := s.factory.Commit(storage)
	if err != nil {
		s.log.WithFields(logrus.Fields{"round": o.Round, "error": err}).Error("sync: commit failed for pair-valid block")
		return nil, false
	}
	s.advance(o.Block.Height, ledgerState)
	return &SynchronizationEvent{LedgerState: ledgerState, Outcome: Commit, Round: o.Round}, true
}

// processDownload implements the §4.6 download path and its
// partial-failure recovery recipe: a peer that serves a bad block mid
// stream is abandoned for the next peer; a peer that serves fewer blocks
// than needed gets exactly one same-peer retry before the synchronizer
// moves on.
func (s *Synchronizer) processDownload(targetHeight uint64, peers []string, round model.Round) (*SynchronizationEvent, bool) {
	storage, err := s.factory.CreateMutableStorage()
	if err != nil {
		s.log.WithFields(logrus.Fields{"round": round, "error": err}).Error("sync: failed to create mutable storage for download")
		return nil, false
	}

	height := s.currentTopHeight

peerLoop:
	for _, peer := range peers {
		for attempt := 0; attempt < 2; attempt++ {
			seq := s.loader.RetrieveBlocks(peer, height)
			applied := 0
			aborted := false
			for {
				blk, ok := seq.Next()
				if !ok {
					break
				}
				if !s.validator.ValidateAndApply(blk, s.lastLedgerState, storage) {
					s.log.WithFields(logrus.Fields{"peer": peer, "height": blk.Height}).Warn("sync: block failed validation, abandoning peer")
					aborted = true
					break
				}
				height++
				applied++
			}

			if height >= targetHeight {
				break peerLoop
			}
			if aborted {
				break // next peer, no same-peer retry for a bad block
			}
			if attempt == 0 {
				s.log.WithFields(logrus.Fields{"peer": peer, "height": height, "applied": applied}).Debug("sync: retrying same peer before switching")
				continue
			}
			break // exhausted the single retry, move to next peer
		}
	}

	if height < targetHeight {
		s.log.WithFields(logrus.Fields{"round": round, "reached": height, "target": targetHeight}).Warn("sync: exhausted all peers without reaching target height")
		return nil, false
	}

	ledgerState, err := s.factory.Commit(storage)
	if err != nil {
		s.log.WithFields(logrus.Fields{"round": round, "error": err}).Error("sync: commit failed after download")
		return nil, false
	}
	s.advance(height, ledgerState)
	return &SynchronizationEvent{LedgerState: ledgerState, Outcome: Commit, Round: round}, true
}

func (s *Synchronizer) advance(height uint64, ledgerState model.LedgerState) {
	if height > s.currentTopHeight {
		s.currentTopHeight = height
	}
	s.lastLedgerState = ledgerState
}
