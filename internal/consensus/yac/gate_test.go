package yac

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/blockcache"
	"synnergy-network/internal/consensus/model"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type identityOrderer struct{ err error }

func (o identityOrderer) Order(_ model.Round, peers []string) ([]string, error) {
	if o.err != nil {
		return nil, o.err
	}
	return peers, nil
}

type recordingHashGate struct {
	votes []model.YacHash
}

func (g *recordingHashGate) Vote(hash model.YacHash, order, alt []string) error {
	g.votes = append(g.votes, hash)
	return nil
}

func newGate() (*Gate, *recordingHashGate, *blockcache.Cache) {
	hg := &recordingHashGate{}
	cache := blockcache.New()
	g := NewGate(testLogger(), DefaultHashProvider{}, identityOrderer{}, hg, cache)
	return g, hg, cache
}

// S4: YAC PairValid commit.
func TestProcessCommitPairValid(t *testing.T) {
	g, _, cache := newGate()
	round := model.Round{BlockRound: 2, RejectRound: 0}
	g.ProcessRoundSwitch(round, model.LedgerState{LedgerPeers: []string{"p1", "p2", "p3"}})

	blk := &model.Block{Height: 2, Hash: "blockB"}
	if err := g.Vote(&BlockCreatorEvent{ProposalHash: "propB", BlockHash: "blockB", Block: blk}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	commit := model.CommitMessage{Votes: []model.Vote{{
		Hash:      model.YacHash{Round: round, ProposalHash: "propB", BlockHash: "blockB"},
		PublicKey: "v1",
	}}}
	outcome, err := g.ProcessCommit(commit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pv, ok := outcome.(PairValid)
	if !ok {
		t.Fatalf("expected PairValid, got %T", outcome)
	}
	if pv.Round != round {
		t.Fatalf("expected round %v, got %v", round, pv.Round)
	}
	if cache.Get() == nil || cache.Get().Hash != "blockB" {
		t.Fatalf("expected cache to still hold the block after PairValid")
	}
}

// S5: YAC reject/agreement-on-none clears cache.
func TestProcessCommitAgreementOnNoneClearsCache(t *testing.T) {
	g, _, cache := newGate()
	round1 := model.Round{BlockRound: 2, RejectRound: 0}
	g.ProcessRoundSwitch(round1, model.LedgerState{LedgerPeers: []string{"p1"}})
	blk := &model.Block{Height: 2, Hash: "blockB"}
	if err := g.Vote(&BlockCreatorEvent{ProposalHash: "propB", BlockHash: "blockB", Block: blk}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	round2 := model.Round{BlockRound: 2, RejectRound: 1}
	g.ProcessRoundSwitch(round2, model.LedgerState{LedgerPeers: []string{"p1"}})

	commit := model.CommitMessage{Votes: []model.Vote{{
		Hash:      model.YacHash{Round: round2, ProposalHash: "", BlockHash: ""},
		PublicKey: "v1",
	}}}
	outcome, err := g.ProcessCommit(commit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := outcome.(AgreementOnNone); !ok {
		t.Fatalf("expected AgreementOnNone, got %T", outcome)
	}
	if cache.Get() != nil {
		t.Fatalf("expected cache cleared after AgreementOnNone")
	}

	// A subsequent vote(None) for the next round must not re-emit for round2.
	round3 := model.Round{BlockRound: 2, RejectRound: 2}
	g.ProcessRoundSwitch(round3, model.LedgerState{LedgerPeers: []string{"p1"}})
	if err := g.Vote(nil); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	_, err = g.ProcessCommit(commit)
	if err != ErrAlreadyProcessed && err != nil {
		t.Fatalf("expected nil outcome due to stale round, got err=%v", err)
	}
}

func TestProcessCommitVoteOtherClearsCache(t *testing.T) {
	g, _, cache := newGate()
	round := model.Round{BlockRound: 3, RejectRound: 0}
	g.ProcessRoundSwitch(round, model.LedgerState{LedgerPeers: []string{"p1"}})
	blk := &model.Block{Height: 3, Hash: "mine"}
	if err := g.Vote(&BlockCreatorEvent{ProposalHash: "propMine", BlockHash: "mine", Block: blk}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	commit := model.CommitMessage{Votes: []model.Vote{{
		Hash:      model.YacHash{Round: round, ProposalHash: "propOther", BlockHash: "other"},
		PublicKey: "v1",
	}}}
	outcome, err := g.ProcessCommit(commit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vo, ok := outcome.(VoteOther)
	if !ok {
		t.Fatalf("expected VoteOther, got %T", outcome)
	}
	if vo.Hash.BlockHash != "other" {
		t.Fatalf("expected other block hash, got %s", vo.Hash.BlockHash)
	}
	if cache.Get() != nil {
		t.Fatalf("expected cache cleared on VoteOther")
	}
}

func TestProcessRejectDistinguishesBlockAndProposalReject(t *testing.T) {
	g, _, _ := newGate()
	round := model.Round{BlockRound: 1, RejectRound: 0}
	g.ProcessRoundSwitch(round, model.LedgerState{})

	single := model.RejectMessage{Votes: []model.Vote{
		{Hash: model.YacHash{Round: round, ProposalHash: "p1"}, PublicKey: "v1"},
		{Hash: model.YacHash{Round: round, ProposalHash: "p1"}, PublicKey: "v2"},
	}}
	outcome, err := g.ProcessReject(single, round)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := outcome.(BlockReject); !ok {
		t.Fatalf("expected BlockReject, got %T", outcome)
	}

	g2, _, _ := newGate()
	g2.ProcessRoundSwitch(round, model.LedgerState{})
	multi := model.RejectMessage{Votes: []model.Vote{
		{Hash: model.YacHash{Round: round, ProposalHash: "p1"}, PublicKey: "v1"},
		{Hash: model.YacHash{Round: round, ProposalHash: "p2"}, PublicKey: "v2"},
	}}
	outcome2, err := g2.ProcessReject(multi, round)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := outcome2.(ProposalReject); !ok {
		t.Fatalf("expected ProposalReject, got %T", outcome2)
	}
}

// P7: at most one event per round, and its round equals the outcome's round.
func TestOnlyFirstOutcomePerRoundEmits(t *testing.T) {
	g, _, _ := newGate()
	round := model.Round{BlockRound: 5, RejectRound: 0}
	g.ProcessRoundSwitch(round, model.LedgerState{})

	msg := model.RejectMessage{Votes: []model.Vote{{Hash: model.YacHash{Round: round, ProposalHash: "p"}, PublicKey: "v1"}}}
	first, err := g.ProcessReject(msg, round)
	if err != nil || first == nil {
		t.Fatalf("expected first outcome to emit, got %v err=%v", first, err)
	}

	second, err := g.ProcessReject(msg, round)
	if err != ErrAlreadyProcessed {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if second != nil {
		t.Fatalf("expected no outcome on the race loser")
	}
}

func TestVoteAbortsWhenOrderingFails(t *testing.T) {
	hg := &recordingHashGate{}
	cache := blockcache.New()
	g := NewGate(testLogger(), DefaultHashProvider{}, identityOrderer{err: errBoom}, hg, cache)
	round := model.Round{BlockRound: 1}
	g.ProcessRoundSwitch(round, model.LedgerState{LedgerPeers: []string{"p1"}})

	err := g.Vote(nil)
	if err == nil {
		t.Fatalf("expected vote to abort when ordering fails")
	}
	if len(hg.votes) != 0 {
		t.Fatalf("expected underlying hash gate never invoked")
	}
}

func TestFutureMessageTriggersEarlySwitch(t *testing.T) {
	g, _, _ := newGate()
	round := model.Round{BlockRound: 1}
	g.ProcessRoundSwitch(round, model.LedgerState{})

	future := model.FutureMessage{Round: model.Round{BlockRound: 9}, PublicKeys: []string{"v1"}}
	outcome, err := g.ProcessFuture(future)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fe, ok := outcome.(Future)
	if !ok {
		t.Fatalf("expected Future outcome, got %T", outcome)
	}
	if fe.Round.BlockRound != 9 {
		t.Fatalf("expected round 9, got %v", fe.Round)
	}
}

func TestAlternativeOrderIsOneShot(t *testing.T) {
	hg := &recordingHashGate{}
	cache := blockcache.New()
	var seenOrders [][]string
	orderer := orderFunc(func(_ model.Round, peers []string) ([]string, error) { return peers, nil })
	g := NewGate(testLogger(), DefaultHashProvider{}, orderer, captureVoteGate{hg, &seenOrders}, cache)
	g.ProcessRoundSwitch(model.Round{BlockRound: 1}, model.LedgerState{LedgerPeers: []string{"p1", "p2"}})

	g.SetAlternativeOrder([]string{"p2", "p1"})
	_ = g.Vote(nil)
	_ = g.Vote(nil)

	if len(seenOrders) != 2 {
		t.Fatalf("expected 2 recorded votes, got %d", len(seenOrders))
	}
	if len(seenOrders[0]) != 2 || seenOrders[0][0] != "p2" {
		t.Fatalf("expected first vote to carry the alternative order, got %v", seenOrders[0])
	}
	if seenOrders[1] != nil {
		t.Fatalf("expected second vote to carry no alternative order, got %v", seenOrders[1])
	}
}

type orderFunc func(model.Round, []string) ([]string, error)

func (f orderFunc) Order(r model.Round, peers []string) ([]string, error) { return f(r, peers) }

type captureVoteGate struct {
	*recordingHashGate
	alts *[][]string
}

func (c captureVoteGate) Vote(hash model.YacHash, order, alt []string) error {
	*c.alts = append(*c.alts, alt)
	return c.recordingHashGate.Vote(hash, order, alt)
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
