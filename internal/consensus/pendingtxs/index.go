// Package pendingtxs implements the per-account, paginated view over
// batches currently held in MST (spec.md §4.3). It is a pure subscriber
// of the MST processor's event streams and of the storage engine's
// finalized-transaction stream; it never calls back into the processor
// (SPEC_FULL.md's "cyclic references" design note).
package pendingtxs

import (
	"container/list"
	"sync"

	"github.com/pkg/errors"

	"synnergy-network/internal/consensus/model"
)

// ErrNotFound is returned by GetPending when the supplied cursor does not
// identify a transaction currently tracked for the account, distinct from
// a legitimately empty page.
var ErrNotFound = errors.New("pendingtxs: cursor not found")

// NextBatchInfo describes the batch a page stopped before, because it
// would not fit atomically within page_size.
type NextBatchInfo struct {
	FirstTxHash string
	BatchSize   int
}

// Page is one page of an account's pending transactions.
type Page struct {
	Transactions          []model.Tx
	NextBatchInfo         *NextBatchInfo
	TotalTransactionsSize int
}

type batchEntry struct {
	batch model.Batch
}

type account struct {
	order         *list.List // of *batchEntry, insertion order
	byReducedHash map[string]*list.Element
	byFirstTx     map[string]*list.Element
	totalTx       int
}

func newAccount() *account {
	return &account{
		order:         list.New(),
		byReducedHash: make(map[string]*list.Element),
		byFirstTx:     make(map[string]*list.Element),
	}
}

// Index is the concurrency-safe, per-account pending-batch store.
// Reads run in parallel; writes are exclusive (spec.md §4.3 concurrency).
type Index struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

// New builds an empty index.
func New() *Index {
	return &Index{accounts: make(map[string]*account)}
}

func firstTxHash(b model.Batch) string {
	if len(b.Transactions) == 0 {
		return ""
	}
	return b.Transactions[0].PayloadHash
}

// OnStateUpdate mirrors a set of batches that gained signatures (but did
// not complete) into every creator's list, preserving list position for
// batches already tracked.
func (idx *Index) OnStateUpdate(batches []model.Batch) {
	if len(batches) == 0 {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, b := range batches {
		for _, creator := range b.Creators() {
			idx.upsert(creator, b)
		}
	}
}

func (idx *Index) upsert(creator string, b model.Batch) {
	acc, ok := idx.accounts[creator]
	if !ok {
		acc = newAccount()
		idx.accounts[creator] = acc
	}

	if el, exists := acc.byReducedHash[b.ReducedHash]; exists {
		old := el.Value.(*batchEntry)
		acc.totalTx += len(b.Transactions) - len(old.batch.Transactions)
		el.Value = &batchEntry{batch: b}
		return
	}

	el := acc.order.PushBack(&batchEntry{batch: b})
	acc.byReducedHash[b.ReducedHash] = el
	if h := firstTxHash(b); h != "" {
		acc.byFirstTx[h] = el
	}
	acc.totalTx += len(b.Transactions)
}

// OnPreparedBatch removes a now-complete batch from every creator's list.
func (idx *Index) OnPreparedBatch(b model.Batch) { idx.remove(b) }

// OnExpiredBatch removes an expired batch from every creator's list.
func (idx *Index) OnExpiredBatch(b model.Batch) { idx.remove(b) }

// OnFinalizedTx removes the batch containing txHash from every account
// that held it, mirroring MstState.EraseByTxHash's effect on the index.
func (idx *Index) OnFinalizedTx(txHash string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, acc := range idx.accounts {
		for el := acc.order.Front(); el != nil; el = el.Next() {
			entry := el.Value.(*batchEntry)
			for _, tx := range entry.batch.Transactions {
				if tx.PayloadHash == txHash {
					idx.removeLocked(acc, entry.batch)
					goto nextAccount
				}
			}
		}
	nextAccount:
	}
}

func (idx *Index) remove(b model.Batch) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, creator := range b.Creators() {
		if acc, ok := idx.accounts[creator]; ok {
			idx.removeLocked(acc, b)
		}
	}
}

func (idx *Index) removeLocked(acc *account, b model.Batch) {
	el, ok := acc.byReducedHash[b.ReducedHash]
	if !ok {
		return
	}
	entry := el.Value.(*batchEntry)
	acc.totalTx -= len(entry.batch.Transactions)
	acc.order.Remove(el)
	delete(acc.byReducedHash, b.ReducedHash)
	if h := firstTxHash(entry.batch); h != "" {
		delete(acc.byFirstTx, h)
	}
}

// GetPending returns up to pageSize transactions for account in
// insertion order, starting at cursor (or the first batch if cursor is
// empty). A batch is emitted atomically: if it would not fit entirely
// within the remaining page, the page stops before it and NextBatchInfo
// names it.
func (idx *Index) GetPending(acctID string, pageSize int, cursor string) (Page, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	acc, ok := idx.accounts[acctID]
	if !ok {
		if cursor != "" {
			return Page{}, ErrNotFound
		}
		return Page{}, nil
	}

	start := acc.order.Front()
	if cursor != "" {
		el, found := acc.byFirstTx[cursor]
		if !found {
			return Page{}, ErrNotFound
		}
		start = el
	}

	page := Page{TotalTransactionsSize: acc.totalTx}
	remaining := pageSize
	for el := start; el != nil; el = el.Next() {
		entry := el.Value.(*batchEntry)
		if len(entry.batch.Transactions) > remaining {
			page.NextBatchInfo = &NextBatchInfo{
				FirstTxHash: firstTxHash(entry.batch),
				BatchSize:   len(entry.batch.Transactions),
			}
			break
		}
		page.Transactions = append(page.Transactions, entry.batch.Transactions...)
		remaining -= len(entry.batch.Transactions)
		if remaining == 0 {
			break
		}
	}
	return page, nil
}

// AccountCount reports the number of accounts with at least one tracked
// batch, exposed as the pending_tx_index_accounts gauge.
func (idx *Index) AccountCount() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.accounts)
}
