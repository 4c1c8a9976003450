// Package yac binds block-creation events to consensus votes and
// interprets YAC outcome messages into the sum-typed events spec.md
// §4.4 describes (PairValid, VoteOther, BlockReject, ProposalReject,
// AgreementOnNone, Future).
package yac

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/blockcache"
	"synnergy-network/internal/consensus/model"
)

// ErrAlreadyProcessed is returned when an outcome has already been
// emitted for the given round; the caller's message is a harmless race
// with another outcome delivery for the same round (spec.md §4.4
// tie-break: first one emits, the rest return "already processed").
var ErrAlreadyProcessed = errors.New("yac: round already processed")

// HashProvider maps a (round, proposal, block) to the YacHash voted on.
type HashProvider interface {
	Hash(round model.Round, proposalHash, blockHash string) model.YacHash
}

// DefaultHashProvider builds the YacHash directly from its components.
type DefaultHashProvider struct{}

func (DefaultHashProvider) Hash(round model.Round, proposalHash, blockHash string) model.YacHash {
	return model.YacHash{Round: round, ProposalHash: proposalHash, BlockHash: blockHash}
}

// PeerOrderer produces an ordering of the ledger peer set for a given
// round (e.g. round-robin rotation of the proposer list). A failure here
// aborts the vote entirely (spec.md §4.4 step 3).
type PeerOrderer interface {
	Order(round model.Round, peers []string) ([]string, error)
}

// HashGate is the underlying voting primitive the gate delegates to: it
// signs and disseminates the vote for hash, honoring the supplied peer
// ordering and one-shot alternative order.
type HashGate interface {
	Vote(hash model.YacHash, order []string, alternativeOrder []string) error
}

// BlockCreatorEvent is the event fired when this peer is ready to vote
// for round's proposal. A nil Block means "vote for nothing this round".
type BlockCreatorEvent struct {
	ProposalHash string
	BlockHash    string
	Block        *model.Block
}

// Outcome is the sum type emitted by ProcessCommit/ProcessReject/
// ProcessFuture.
type Outcome interface{ isOutcome() }

// PairValid is emitted when a commit agrees with the block this peer
// itself voted for.
type PairValid struct {
	Block *model.Block
	Round model.Round
}

// VoteOther is emitted when a commit lands on a different block than
// this peer voted for; the synchronizer must download it.
type VoteOther struct {
	Hash       model.YacHash
	PublicKeys []string
	Round      model.Round
}

// BlockReject is emitted for a reject with no supermajority on any
// single hash.
type BlockReject struct {
	Round      model.Round
	PublicKeys []string
}

// ProposalReject is emitted for a reject spanning two or more distinct
// proposal hashes.
type ProposalReject struct {
	Round      model.Round
	PublicKeys []string
}

// AgreementOnNone is emitted for a commit whose YacHash carries an empty
// proposal hash.
type AgreementOnNone struct {
	Round      model.Round
	PublicKeys []string
}

// Future is emitted for a FutureMessage naming a round ahead of current.
type Future struct {
	Round      model.Round
	PublicKeys []string
}

func (PairValid) isOutcome()       {}
func (VoteOther) isOutcome()       {}
func (BlockReject) isOutcome()     {}
func (ProposalReject) isOutcome()  {}
func (AgreementOnNone) isOutcome() {}
func (Future) isOutcome()          {}

// Gate is the consensus-binding state machine of spec.md §4.4.
type Gate struct {
	log *logrus.Logger

	hashes   HashProvider
	orderer  PeerOrderer
	hashGate HashGate
	cache    *blockcache.Cache

	mu               sync.Mutex
	currentRound     model.Round
	alternativeOrder []string
	lastVoteHash     model.YacHash
	lastLedgerState  model.LedgerState
	doneRounds       map[model.Round]struct{}
}

// NewGate wires a gate over the given collaborators.
func NewGate(log *logrus.Logger, hashes HashProvider, orderer PeerOrderer, hashGate HashGate, cache *blockcache.Cache) *Gate {
	return &Gate{
		log:        log,
		hashes:     hashes,
		orderer:    orderer,
		hashGate:   hashGate,
		cache:      cache,
		doneRounds: make(map[model.Round]struct{}),
	}
}

// SetAlternativeOrder installs an ordering to be consumed by exactly the
// next vote; after that vote it reverts to normal ordering (spec.md §9
// "alternative peer order one-shot").
func (g *Gate) SetAlternativeOrder(order []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.alternativeOrder = order
}

// ProcessRoundSwitch advances the gate's current round and records the
// ledger state that will back the next vote's peer ordering. Stale
// switches (round <= current) are ignored.
func (g *Gate) ProcessRoundSwitch(round model.Round, ledgerState model.LedgerState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.currentRound.Less(round) {
		return
	}
	g.currentRound = round
	g.lastLedgerState = ledgerState
}

// Vote derives the hash for event (empty hash if event is nil), orders
// the ledger peer set, and delegates to the underlying hash gate. The
// block carried by event, if any, is cached for the commit fast-path.
// It votes for whatever round the most recent ProcessRoundSwitch
// established; callers must call ProcessRoundSwitch first.
func (g *Gate) Vote(event *BlockCreatorEvent) error {
	g.mu.Lock()
	round := g.currentRound
	peers := append([]string(nil), g.lastLedgerState.LedgerPeers...)
	alt := g.alternativeOrder
	g.alternativeOrder = nil
	g.mu.Unlock()

	proposalHash, blockHash := "", ""
	var blk *model.Block
	if event != nil {
		proposalHash, blockHash, blk = event.ProposalHash, event.BlockHash, event.Block
	}
	hash := g.hashes.Hash(round, proposalHash, blockHash)

	order, err := g.orderer.Order(round, peers)
	if err != nil {
		g.log.WithFields(logrus.Fields{"round": round, "error": err}).Warn("yac: peer ordering failed, aborting vote")
		return errors.Wrap(err, "yac: order peers")
	}

	if err := g.hashGate.Vote(hash, order, alt); err != nil {
		return errors.Wrap(err, "yac: underlying vote")
	}

	g.mu.Lock()
	g.lastVoteHash = hash
	g.mu.Unlock()

	if blk != nil {
		g.cache.Set(blk)
	}

	g.log.WithFields(logrus.Fields{
		"round":         round,
		"vote_id":       uuid.NewString(),
		"proposal_hash": proposalHash,
		"block_hash":    blockHash,
	}).Debug("yac: vote cast")
	return nil
}

// admitOutcome applies the round tie-break rules shared by every outcome
// path: stale rounds are ignored, and only the first outcome delivered
// for a round is allowed through.
func (g *Gate) admitOutcome(round model.Round) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if round.Less(g.currentRound) {
		return false, nil
	}
	if _, done := g.doneRounds[round]; done {
		return false, ErrAlreadyProcessed
	}
	g.doneRounds[round] = struct{}{}
	return true, nil
}

// ProcessCommit interprets an incoming CommitMessage.
func (g *Gate) ProcessCommit(msg model.CommitMessage) (Outcome, error) {
	hash := msg.Hash()
	ok, err := g.admitOutcome(hash.Round)
	if err != nil || !ok {
		return nil, err
	}

	if hash.IsNone() {
		g.cache.Release()
		g.advanceOnReject(hash.Round)
		return AgreementOnNone{Round: hash.Round, PublicKeys: msg.PublicKeys()}, nil
	}

	g.mu.Lock()
	mine := g.lastVoteHash
	g.mu.Unlock()

	if hash == mine {
		g.advanceOnCommit(hash.Round)
		blk := g.cache.Get()
		return PairValid{Block: blk, Round: hash.Round}, nil
	}

	g.cache.Release()
	g.advanceOnCommit(hash.Round)
	return VoteOther{Hash: hash, PublicKeys: msg.PublicKeys(), Round: hash.Round}, nil
}

// ProcessReject interprets an incoming RejectMessage.
func (g *Gate) ProcessReject(msg model.RejectMessage, round model.Round) (Outcome, error) {
	ok, err := g.admitOutcome(round)
	if err != nil || !ok {
		return nil, err
	}
	g.cache.Release()
	g.advanceOnReject(round)

	if msg.DistinctHashes() >= 2 {
		return ProposalReject{Round: round, PublicKeys: msg.PublicKeys()}, nil
	}
	return BlockReject{Round: round, PublicKeys: msg.PublicKeys()}, nil
}

// ProcessFuture interprets an incoming FutureMessage. It only emits when
// the announced round is strictly ahead of the gate's current round.
func (g *Gate) ProcessFuture(msg model.FutureMessage) (Outcome, error) {
	g.mu.Lock()
	ahead := g.currentRound.Less(msg.Round)
	g.mu.Unlock()
	if !ahead {
		return nil, nil
	}
	ok, err := g.admitOutcome(msg.Round)
	if err != nil || !ok {
		return nil, err
	}
	return Future{Round: msg.Round, PublicKeys: msg.PublicKeys}, nil
}

func (g *Gate) advanceOnCommit(round model.Round) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentRound.Less(round) || g.currentRound == round {
		g.currentRound = round.Next()
	}
}

func (g *Gate) advanceOnReject(round model.Round) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentRound.Less(round) || g.currentRound == round {
		g.currentRound = round.NextReject()
	}
}

// CurrentRound reports the gate's current round, for callers wiring the
// synchronizer or metrics.
func (g *Gate) CurrentRound() model.Round {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentRound
}
