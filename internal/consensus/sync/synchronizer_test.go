package sync

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/model"
	"synnergy-network/internal/consensus/yac"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memStorage is the fake MutableStorage: a growable slice of applied
// blocks, enough for tests to assert on without modeling real state.
type memStorage struct {
	applied []*model.Block
}

type fakeValidator struct {
	// bad maps a block height to "validation fails for this height".
	bad map[uint64]bool
}

func (v fakeValidator) ValidateAndApply(block *model.Block, _ model.LedgerState, storage MutableStorage) bool {
	if v.bad != nil && v.bad[block.Height] {
		return false
	}
	st := storage.(*memStorage)
	st.applied = append(st.applied, block)
	return true
}

type fakeFactory struct {
	preparedEnabled bool
	preparedErr     error
	commitErr       error
	createErr       error
}

func (f fakeFactory) CreateMutableStorage() (MutableStorage, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &memStorage{}, nil
}

func (f fakeFactory) Commit(storage MutableStorage) (model.LedgerState, error) {
	if f.commitErr != nil {
		return model.LedgerState{}, f.commitErr
	}
	st := storage.(*memStorage)
	if len(st.applied) == 0 {
		return model.LedgerState{}, nil
	}
	last := st.applied[len(st.applied)-1]
	return model.LedgerState{TopBlockHeight: last.Height, TopBlockHash: last.Hash}, nil
}

func (f fakeFactory) PreparedCommitEnabled() bool { return f.preparedEnabled }

func (f fakeFactory) CommitPrepared(block *model.Block) (model.LedgerState, error) {
	if f.preparedErr != nil {
		return model.LedgerState{}, f.preparedErr
	}
	return model.LedgerState{TopBlockHeight: block.Height, TopBlockHash: block.Hash}, nil
}

// sliceSequence is a BlockSequence over a fixed slice of blocks.
type sliceSequence struct {
	blocks []*model.Block
	idx    int
}

func (s *sliceSequence) Next() (*model.Block, bool) {
	if s.idx >= len(s.blocks) {
		return nil, false
	}
	b := s.blocks[s.idx]
	s.idx++
	return b, true
}

func blocksFrom(fromHeightExclusive uint64, count int) []*model.Block {
	out := make([]*model.Block, count)
	for i := 0; i < count; i++ {
		h := fromHeightExclusive + uint64(i) + 1
		out[i] = &model.Block{Height: h, Hash: "h"}
	}
	return out
}

// scriptedLoader serves a fixed response per (peer, fromHeight) call,
// recording call order for assertions.
type scriptedLoader struct {
	responses map[string]map[uint64][]*model.Block // peer -> fromHeight -> blocks
	calls     []string
}

func (l *scriptedLoader) RetrieveBlocks(peer string, fromHeight uint64) BlockSequence {
	l.calls = append(l.calls, peer)
	blocks := l.responses[peer][fromHeight]
	return &sliceSequence{blocks: blocks}
}

// S6: peer A serves a bad block mid-stream; synchronizer abandons A (no
// same-peer retry) and completes from B.
func TestDownloadSwitchesPeerOnBadBlock(t *testing.T) {
	loader := &scriptedLoader{responses: map[string]map[uint64][]*model.Block{
		"A": {100: blocksFrom(100, 9)}, // 101..109, 105 will fail validation
		"B": {104: blocksFrom(104, 6)}, // 105..110
	}}
	validator := fakeValidator{bad: map[uint64]bool{105: true}}
	factory := fakeFactory{}
	s := New(testLogger(), validator, factory, loader, 100, model.LedgerState{})

	outcome := yac.VoteOther{Hash: model.YacHash{}, PublicKeys: []string{"A", "B"}, Round: model.Round{BlockRound: 110}}
	ev, ok := s.Process(outcome)
	if !ok {
		t.Fatalf("expected download to succeed by switching to peer B")
	}
	if ev.LedgerState.TopBlockHeight != 110 {
		t.Fatalf("expected top height 110, got %d", ev.LedgerState.TopBlockHeight)
	}
	if s.TopHeight() != 110 {
		t.Fatalf("expected synchronizer top height 110, got %d", s.TopHeight())
	}
	if len(loader.calls) != 2 || loader.calls[0] != "A" || loader.calls[1] != "B" {
		t.Fatalf("expected exactly one call to A then B, got %v", loader.calls)
	}
}

// S7: peer A serves fewer blocks than needed twice in a row (a genuine
// slow/truncated peer); synchronizer retries A once, then switches to B.
func TestDownloadRetriesSlowPeerOnceThenSwitches(t *testing.T) {
	loader := &scriptedLoader{responses: map[string]map[uint64][]*model.Block{
		"A": {
			100: blocksFrom(100, 5), // 101..105
			105: nil,                // second attempt: nothing more
		},
		"B": {105: blocksFrom(105, 5)}, // 106..110
	}}
	validator := fakeValidator{}
	factory := fakeFactory{}
	s := New(testLogger(), validator, factory, loader, 100, model.LedgerState{})

	outcome := yac.VoteOther{PublicKeys: []string{"A", "B"}, Round: model.Round{BlockRound: 110}}
	ev, ok := s.Process(outcome)
	if !ok {
		t.Fatalf("expected download to succeed after retry and peer switch")
	}
	if ev.LedgerState.TopBlockHeight != 110 {
		t.Fatalf("expected top height 110, got %d", ev.LedgerState.TopBlockHeight)
	}
	if len(loader.calls) != 3 || loader.calls[0] != "A" || loader.calls[1] != "A" || loader.calls[2] != "B" {
		t.Fatalf("expected A retried once then B, got %v", loader.calls)
	}
}

func TestDownloadFailsWhenAllPeersExhausted(t *testing.T) {
	loader := &scriptedLoader{responses: map[string]map[uint64][]*model.Block{
		"A": {100: nil},
		"B": {100: nil},
	}}
	s := New(testLogger(), fakeValidator{}, fakeFactory{}, loader, 100, model.LedgerState{})

	_, ok := s.Process(yac.VoteOther{PublicKeys: []string{"A", "B"}, Round: model.Round{BlockRound: 110}})
	if ok {
		t.Fatalf("expected failure when every peer is exhausted")
	}
	if s.TopHeight() != 100 {
		t.Fatalf("expected top height unchanged at 100, got %d", s.TopHeight())
	}
}

// S4-equivalent for the synchronizer: PairValid fast-commits directly.
func TestProcessPairValidCommitsDirectly(t *testing.T) {
	s := New(testLogger(), fakeValidator{}, fakeFactory{}, &scriptedLoader{}, 5, model.LedgerState{})
	blk := &model.Block{Height: 6, Hash: "h6"}
	ev, ok := s.Process(yac.PairValid{Block: blk, Round: model.Round{BlockRound: 6}})
	if !ok {
		t.Fatalf("expected commit to succeed")
	}
	if ev.Outcome != Commit || ev.LedgerState.TopBlockHeight != 6 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if s.TopHeight() != 6 {
		t.Fatalf("expected top height advanced to 6, got %d", s.TopHeight())
	}
}

func TestProcessPairValidUsesPreparedCommitWhenEnabled(t *testing.T) {
	factory := fakeFactory{preparedEnabled: true}
	s := New(testLogger(), fakeValidator{}, factory, &scriptedLoader{}, 5, model.LedgerState{})
	blk := &model.Block{Height: 6, Hash: "h6"}
	ev, ok := s.Process(yac.PairValid{Block: blk, Round: model.Round{BlockRound: 6}})
	if !ok || ev.Outcome != Commit {
		t.Fatalf("expected prepared commit to succeed, got ok=%v ev=%+v", ok, ev)
	}
}

func TestProcessPairValidFallsBackWhenPreparedCommitFails(t *testing.T) {
	factory := fakeFactory{preparedEnabled: true, preparedErr: errBoom}
	s := New(testLogger(), fakeValidator{}, factory, &scriptedLoader{}, 5, model.LedgerState{})
	blk := &model.Block{Height: 6, Hash: "h6"}
	ev, ok := s.Process(yac.PairValid{Block: blk, Round: model.Round{BlockRound: 6}})
	if !ok || ev.Outcome != Commit || ev.LedgerState.TopBlockHeight != 6 {
		t.Fatalf("expected fallback commit to succeed, got ok=%v ev=%+v", ok, ev)
	}
}

func TestProcessRejectPreservesLedgerState(t *testing.T) {
	initial := model.LedgerState{TopBlockHeight: 3, TopBlockHash: "h3"}
	s := New(testLogger(), fakeValidator{}, fakeFactory{}, &scriptedLoader{}, 3, initial)

	ev, ok := s.Process(yac.BlockReject{Round: model.Round{BlockRound: 4}, PublicKeys: []string{"v1"}})
	if !ok {
		t.Fatalf("expected reject to emit an event")
	}
	if ev.Outcome != Reject || ev.LedgerState != initial {
		t.Fatalf("expected unchanged ledger state on reject, got %+v", ev)
	}
	if s.TopHeight() != 3 {
		t.Fatalf("expected height unchanged after reject, got %d", s.TopHeight())
	}
}

func TestProcessAgreementOnNoneEmitsNothingOutcome(t *testing.T) {
	s := New(testLogger(), fakeValidator{}, fakeFactory{}, &scriptedLoader{}, 3, model.LedgerState{})
	ev, ok := s.Process(yac.AgreementOnNone{Round: model.Round{BlockRound: 4}, PublicKeys: []string{"v1"}})
	if !ok || ev.Outcome != Nothing {
		t.Fatalf("expected Nothing outcome, got ok=%v ev=%+v", ok, ev)
	}
}

func TestProcessFutureIgnoresStaleRound(t *testing.T) {
	s := New(testLogger(), fakeValidator{}, fakeFactory{}, &scriptedLoader{}, 10, model.LedgerState{})
	_, ok := s.Process(yac.Future{Round: model.Round{BlockRound: 10}, PublicKeys: []string{"v1"}})
	if ok {
		t.Fatalf("expected stale future round to be ignored")
	}
}

func TestProcessFutureDownloadsAheadOfCurrentHeight(t *testing.T) {
	loader := &scriptedLoader{responses: map[string]map[uint64][]*model.Block{
		"A": {10: blocksFrom(10, 5)}, // 11..15
	}}
	s := New(testLogger(), fakeValidator{}, fakeFactory{}, loader, 10, model.LedgerState{})
	ev, ok := s.Process(yac.Future{Round: model.Round{BlockRound: 15}, PublicKeys: []string{"A"}})
	if !ok || ev.LedgerState.TopBlockHeight != 15 {
		t.Fatalf("expected future download to reach height 15, got ok=%v ev=%+v", ok, ev)
	}
}

var errBoom = boomErr{}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }
