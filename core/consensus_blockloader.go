package core

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"synnergy-network/internal/consensus/model"
	consensussync "synnergy-network/internal/consensus/sync"
)

// replicatorSequence is a consensussync.BlockSequence backed by a single
// RequestRange response, handed out one block at a time the way
// BlockLoader.retrieve_blocks's lazy sequence is specified (spec.md §4.6).
type replicatorSequence struct {
	blocks []*Block
	idx    int
}

func (s *replicatorSequence) Next() (*model.Block, bool) {
	if s.idx >= len(s.blocks) {
		return nil, false
	}
	blk := s.blocks[s.idx]
	s.idx++
	return &model.Block{Height: blk.Header.Height, Hash: blk.Hash().Short(), Payload: blk.EncodeRLP()}, true
}

// ReplicatorBlockLoader adapts Replicator's peer-targeted range request
// into consensussync.BlockLoader. Each RetrieveBlocks call fetches a fixed
// window of rangeBatchSize blocks starting right after fromHeight; the
// synchronizer calls it again (against the same or a different peer) if
// it needs more.
type ReplicatorBlockLoader struct {
	replicator     *Replicator
	log            *logrus.Logger
	rangeBatchSize uint64
	requestTimeout time.Duration
}

// NewReplicatorBlockLoader builds a BlockLoader fetching up to
// rangeBatchSize blocks per request, each bounded by requestTimeout.
func NewReplicatorBlockLoader(replicator *Replicator, log *logrus.Logger, rangeBatchSize uint64, requestTimeout time.Duration) *ReplicatorBlockLoader {
	return &ReplicatorBlockLoader{
		replicator:     replicator,
		log:            log,
		rangeBatchSize: rangeBatchSize,
		requestTimeout: requestTimeout,
	}
}

// RetrieveBlocks implements consensussync.BlockLoader.
func (l *ReplicatorBlockLoader) RetrieveBlocks(peer string, fromHeight uint64) consensussync.BlockSequence {
	ctx, cancel := context.WithTimeout(context.Background(), l.requestTimeout)
	defer cancel()

	start := fromHeight + 1
	end := start + l.rangeBatchSize - 1
	blocks, err := l.replicator.RequestRange(ctx, peer, start, end)
	if err != nil {
		l.log.WithFields(logrus.Fields{"peer": peer, "from": fromHeight, "error": err}).Debug("consensus blockloader: range request failed")
		return &replicatorSequence{}
	}
	return &replicatorSequence{blocks: blocks}
}
