package page

import (
	"container/list"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// DefaultCacheCapacity bounds the number of resident pages the pager will
// keep before it must evict a clean one to admit a miss. Dirty pages are
// never evicted (their unflushed bytes would be lost), so a pager whose
// entire cache is dirty and still takes a miss is a fatal condition, per
// the pager's contract.
const DefaultCacheCapacity = 256

// Pager mediates all page reads and writes, caches resident pages, hands
// out page numbers, and keeps a per-page shadow copy for rollback.
type Pager struct {
	file     *os.File
	numPages uint32

	cacheCap int
	cache    map[uint32]*list.Element // pageNum -> lru element
	lru      *list.List               // front = most recently used

	inTx          bool
	shadow        map[uint32][]byte // pageNum -> pre-mutation bytes, first write wins
	shadowedThisTx map[uint32]bool
	allocatedThisTx map[uint32]bool
	numPagesAtTxStart uint32

	log   *zap.Logger
	fatal func(format string, args ...interface{})
}

type cacheEntry struct {
	page *Page
}

// Open opens (creating if necessary) the page file at path.
func Open(path string, log *zap.Logger) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("page: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("page: stat %s: %w", path, err)
	}
	if fi.Size()%Size != 0 {
		f.Close()
		return nil, fmt.Errorf("page: file %s size %d is not a multiple of page size %d", path, fi.Size(), Size)
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pager{
		file:            f,
		numPages:        uint32(fi.Size() / Size),
		cacheCap:        DefaultCacheCapacity,
		cache:           make(map[uint32]*list.Element),
		lru:             list.New(),
		shadow:          make(map[uint32][]byte),
		shadowedThisTx:  make(map[uint32]bool),
		allocatedThisTx: make(map[uint32]bool),
		log:             log,
	}
	p.fatal = p.defaultFatal
	return p, nil
}

// SetFatal overrides the fatal-error hook. Tests use this to observe a
// fatal condition instead of terminating the test binary.
func (p *Pager) SetFatal(f func(format string, args ...interface{})) {
	p.fatal = f
}

// SetCacheCapacity overrides the pager's resident-page cache bound for
// later cache admissions; shrinking it below the number of currently
// resident pages does not evict anything retroactively.
func (p *Pager) SetCacheCapacity(n int) {
	if n > 0 {
		p.cacheCap = n
	}
}

func (p *Pager) defaultFatal(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.log.Error("fatal pager error", zap.String("detail", msg))
	os.Exit(1)
}

// NumPages reports the pager's current notion of file length, in pages.
func (p *Pager) NumPages() uint32 { return p.numPages }

// AllocatePage returns the next unused page number and advances the
// high-water mark. It does not create or zero any buffer; that happens
// lazily on the first GetPage for that number.
func (p *Pager) AllocatePage() uint32 {
	n := p.numPages
	p.numPages++
	if p.inTx {
		p.allocatedThisTx[n] = true
	}
	return n
}

// GetPage returns the resident buffer for page n, loading it from disk (or
// zero-filling it, if n is a page number reserved by AllocatePage but never
// yet materialized) on a cache miss.
func (p *Pager) GetPage(n uint32) (*Page, error) {
	if el, ok := p.cache[n]; ok {
		p.lru.MoveToFront(el)
		return el.Value.(*cacheEntry).page, nil
	}

	pg := &Page{Num: n}
	if n < p.numPages {
		off := int64(n) * Size
		if _, err := p.file.ReadAt(pg.Data[:], off); err != nil && err != io.EOF {
			p.fatal("read page %d: %v", n, err)
			return nil, fmt.Errorf("page: read page %d: %w", n, err)
		}
	} else {
		// Page beyond the pager's current length (never handed out by
		// AllocatePage): leave it zero-filled and extend our notion of
		// file length to cover it.
		p.numPages = n + 1
	}

	p.admit(pg)
	return pg, nil
}

// admit inserts pg into the cache, evicting a clean page if at capacity.
func (p *Pager) admit(pg *Page) {
	if len(p.cache) >= p.cacheCap {
		if !p.evictOne() {
			p.fatal("page cache full: all %d resident pages are dirty", len(p.cache))
			return
		}
	}
	el := p.lru.PushFront(&cacheEntry{page: pg})
	p.cache[pg.Num] = el
}

// evictOne drops the least-recently-used clean page. Returns false if every
// resident page is dirty (nothing could be evicted).
func (p *Pager) evictOne() bool {
	for el := p.lru.Back(); el != nil; el = el.Prev() {
		entry := el.Value.(*cacheEntry)
		if !entry.page.Dirty {
			p.lru.Remove(el)
			delete(p.cache, entry.page.Num)
			return true
		}
	}
	return false
}

// Touch must be called before the caller's first mutation of page n within
// the current transaction: it snapshots the page's pre-mutation bytes so
// RollbackTx can restore them, and marks the page dirty for flushing.
func (p *Pager) Touch(n uint32) error {
	pg, err := p.GetPage(n)
	if err != nil {
		return err
	}
	if p.inTx && !p.shadowedThisTx[n] {
		cp := pg.Data
		p.shadow[n] = cp[:]
		p.shadowedThisTx[n] = true
	}
	pg.Dirty = true
	return nil
}

// Flush writes exactly size bytes of page n's buffer to disk at its slot.
// A partial write is fatal.
func (p *Pager) Flush(n uint32, size int) error {
	el, ok := p.cache[n]
	if !ok {
		return nil
	}
	pg := el.Value.(*cacheEntry).page
	off := int64(n) * Size
	written, err := p.file.WriteAt(pg.Data[:size], off)
	if err != nil {
		p.fatal("flush page %d: %v", n, err)
		return fmt.Errorf("page: flush page %d: %w", n, err)
	}
	if written != size {
		p.fatal("flush page %d: partial write %d/%d bytes", n, written, size)
		return fmt.Errorf("page: flush page %d: partial write", n)
	}
	pg.Dirty = false
	return nil
}

// FlushAll flushes every dirty resident page.
func (p *Pager) FlushAll() error {
	for n, el := range p.cache {
		pg := el.Value.(*cacheEntry).page
		if pg.Dirty {
			if err := p.Flush(n, Size); err != nil {
				return err
			}
		}
	}
	return p.file.Sync()
}

// BeginTx marks that subsequent first-writes to any page should populate
// the shadow map, and remembers the allocator high-water mark so a
// rollback can restore it.
func (p *Pager) BeginTx() {
	p.inTx = true
	p.shadow = make(map[uint32][]byte)
	p.shadowedThisTx = make(map[uint32]bool)
	p.allocatedThisTx = make(map[uint32]bool)
	p.numPagesAtTxStart = p.numPages
}

// CommitTx drops the shadow map and flushes all dirty resident pages.
func (p *Pager) CommitTx() error {
	if err := p.FlushAll(); err != nil {
		return err
	}
	p.inTx = false
	p.shadow = make(map[uint32][]byte)
	p.shadowedThisTx = make(map[uint32]bool)
	p.allocatedThisTx = make(map[uint32]bool)
	return nil
}

// RollbackTx restores every shadowed page to its pre-transaction bytes,
// discards pages allocated during the transaction, and restores the
// allocator's high-water mark.
func (p *Pager) RollbackTx() error {
	for n, orig := range p.shadow {
		el, ok := p.cache[n]
		if !ok {
			continue
		}
		pg := el.Value.(*cacheEntry).page
		copy(pg.Data[:], orig)
		pg.Dirty = false
	}
	for n := range p.allocatedThisTx {
		if el, ok := p.cache[n]; ok {
			p.lru.Remove(el)
			delete(p.cache, n)
		}
	}
	p.numPages = p.numPagesAtTxStart
	p.inTx = false
	p.shadow = make(map[uint32][]byte)
	p.shadowedThisTx = make(map[uint32]bool)
	p.allocatedThisTx = make(map[uint32]bool)
	return nil
}

// InTx reports whether a transaction is currently open on this pager.
func (p *Pager) InTx() bool { return p.inTx }

// Close flushes all dirty pages and closes the underlying file.
func (p *Pager) Close() error {
	if err := p.FlushAll(); err != nil {
		return err
	}
	return p.file.Close()
}
