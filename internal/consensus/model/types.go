// Package model holds the wire and domain types shared by the MST, YAC,
// synchronizer, and pending-transaction subsystems. It declares data only,
// mirroring common_structs.go's role for the rest of the node.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// BatchType distinguishes all-or-nothing commitment from best-effort
// partial commitment.
type BatchType uint8

const (
	// Atomic batches commit every transaction or none.
	Atomic BatchType = iota
	// Ordered batches may commit a prefix of their transactions.
	Ordered
)

// Signature is a single (public key, signed payload) pair, both hex
// encoded the way the wire protocol carries them.
type Signature struct {
	PublicKeyHex string
	SignedHex    string
}

// BatchMeta is shared by every transaction in a batch: the declared type
// and the full ordered list of sibling reduced hashes.
type BatchMeta struct {
	Type          BatchType
	ReducedHashes []string
}

// Tx is one transaction inside a batch, reduced to the fields the MST and
// synchronizer subsystems need. Full transaction payload/validation lives
// outside this package's scope (the field validator suite, §1).
type Tx struct {
	PayloadHash string
	Creator     string
	CreatedTime uint64 // milliseconds
	Quorum      uint32
	ReducedHash string
	Meta        *BatchMeta

	// Signatures is keyed by public key hex so a repeated signature from
	// the same key is a structural no-op rather than a duplicate entry.
	Signatures map[string]Signature
}

// Clone returns a deep copy of the transaction, including its signature
// set, so that callers holding a batch under a lock can hand out copies
// safely.
func (t Tx) Clone() Tx {
	out := t
	out.Signatures = make(map[string]Signature, len(t.Signatures))
	for k, v := range t.Signatures {
		out.Signatures[k] = v
	}
	return out
}

// SignatureCount reports the number of distinct public keys that have
// signed this transaction.
func (t Tx) SignatureCount() int { return len(t.Signatures) }

// Batch is an ordered sequence of one or more transactions sharing a
// BatchMeta, identified by the reduced hash over its transactions'
// reduced hashes.
type Batch struct {
	ReducedHash  string
	Transactions []Tx
}

// ComputeReducedHash derives the batch identity from its transactions'
// reduced hashes, in order.
func ComputeReducedHash(txs []Tx) string {
	h := sha256.New()
	for _, tx := range txs {
		h.Write([]byte(tx.ReducedHash))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Creators returns the distinct set of accounts that created a
// transaction in this batch, used to fan a batch out to the
// pending-transaction index of every creator.
func (b Batch) Creators() []string {
	seen := make(map[string]struct{}, len(b.Transactions))
	var out []string
	for _, tx := range b.Transactions {
		if _, ok := seen[tx.Creator]; !ok {
			seen[tx.Creator] = struct{}{}
			out = append(out, tx.Creator)
		}
	}
	sort.Strings(out)
	return out
}

// TxHashes returns every payload hash carried by the batch, the key space
// erase_by_tx_hash and the finalized-tx stream operate over.
func (b Batch) TxHashes() []string {
	out := make([]string, len(b.Transactions))
	for i, tx := range b.Transactions {
		out[i] = tx.PayloadHash
	}
	return out
}

// Clone returns a deep copy of the batch.
func (b Batch) Clone() Batch {
	out := Batch{ReducedHash: b.ReducedHash, Transactions: make([]Tx, len(b.Transactions))}
	for i, tx := range b.Transactions {
		out.Transactions[i] = tx.Clone()
	}
	return out
}

// Round is a consensus round: (block_height, reject_round). Rounds
// advance by committing (height+1, 0) or rejecting (height, round+1).
type Round struct {
	BlockRound  uint64
	RejectRound uint64
}

// Next returns the round that follows a commit.
func (r Round) Next() Round { return Round{BlockRound: r.BlockRound + 1, RejectRound: 0} }

// NextReject returns the round that follows a reject.
func (r Round) NextReject() Round { return Round{BlockRound: r.BlockRound, RejectRound: r.RejectRound + 1} }

// Less reports whether r sorts strictly before o, ordering first by
// height then by reject round.
func (r Round) Less(o Round) bool {
	if r.BlockRound != o.BlockRound {
		return r.BlockRound < o.BlockRound
	}
	return r.RejectRound < o.RejectRound
}

// YacHash identifies the block proposed within a round. An empty
// ProposalHash/BlockHash denotes "vote for nothing this round".
type YacHash struct {
	Round        Round
	ProposalHash string
	BlockHash    string
}

// IsNone reports whether this hash represents an empty vote.
func (h YacHash) IsNone() bool { return h.ProposalHash == "" && h.BlockHash == "" }

// Vote binds a YacHash to the voter's signature.
type Vote struct {
	Hash      YacHash
	PublicKey string
	Signature string
}

// CommitMessage is a set of votes agreeing on the same YacHash, of
// cardinality at least the supermajority of the ledger peer set.
type CommitMessage struct {
	Votes []Vote
}

// Hash returns the agreed-upon YacHash, or the zero value if the commit
// carries no votes (never valid on the wire, but convenient for tests).
func (c CommitMessage) Hash() YacHash {
	if len(c.Votes) == 0 {
		return YacHash{}
	}
	return c.Votes[0].Hash
}

// PublicKeys returns the distinct signatories of the commit.
func (c CommitMessage) PublicKeys() []string {
	out := make([]string, len(c.Votes))
	for i, v := range c.Votes {
		out[i] = v.PublicKey
	}
	return out
}

// RejectMessage is a set of votes where no single YacHash reaches
// supermajority.
type RejectMessage struct {
	Votes []Vote
}

// PublicKeys returns the distinct signatories of the reject.
func (r RejectMessage) PublicKeys() []string {
	out := make([]string, len(r.Votes))
	for i, v := range r.Votes {
		out[i] = v.PublicKey
	}
	return out
}

// DistinctHashes returns how many distinct proposal hashes appear among
// the reject's votes, used to distinguish BlockReject from ProposalReject.
func (r RejectMessage) DistinctHashes() int {
	seen := make(map[string]struct{}, len(r.Votes))
	for _, v := range r.Votes {
		seen[v.Hash.ProposalHash] = struct{}{}
	}
	return len(seen)
}

// FutureMessage announces a round further ahead than the receiver's
// current round.
type FutureMessage struct {
	Round      Round
	PublicKeys []string
}

// Block is the consensus-level reference to a block: enough for the YAC
// gate and synchronizer to cache, vote on, and hand to storage. It is
// deliberately independent of core.Block (the node's PoH/PoS/PoW hybrid
// block body) — see DESIGN.md for why the two are not unified.
//
// Signatures carries the commit evidence travelling with the block: the
// signatures of the peers whose votes produced the commit (for a locally
// voted PairValid block) or that the sending peer attached when serving
// it over a download (§4.6). ChainValidator checks this set against the
// ledger's supermajority threshold before applying the block.
type Block struct {
	Height     uint64
	Hash       string
	Payload    []byte
	Signatures []Signature
}

// LedgerState is the committed-tip summary produced by the storage engine
// after every successful commit.
type LedgerState struct {
	LedgerPeers     []string
	SyncingPeers    []string
	TopBlockHeight  uint64
	TopBlockHash    string
	ProducedAt      time.Time
}

// Supermajority returns the minimum vote count that constitutes a
// supermajority of n ledger peers, using the conventional 2f+1 threshold
// over n = 3f+1.
func Supermajority(n int) int {
	if n <= 0 {
		return 0
	}
	return n - (n-1)/3
}
