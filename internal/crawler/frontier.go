package crawler

import "sync"

// Entry is one unit of frontier work: a normalized URL and the BFS depth at
// which it was discovered. Seeds enter at depth 0; a page's outbound links
// enter at the parent's depth plus one. Each entry is consumed exactly once.
type Entry struct {
	// URL is the normalized URL to process.
	URL string

	// Depth is the discovery depth, 0 for seeds.
	Depth int
}

// Frontier is the FIFO queue of not-yet-processed entries driving the
// breadth-first traversal of one seed. Entries are pushed in nondecreasing
// depth order, which is what makes layer-at-a-time processing possible.
type Frontier struct {
	mu      sync.Mutex
	entries []Entry
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{entries: make([]Entry, 0)}
}

// Push appends an entry to the queue.
func (f *Frontier) Push(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
}

// Pop removes and returns the oldest entry. The second return value is
// false when the queue is empty.
func (f *Frontier) Pop() (Entry, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return Entry{}, false
	}
	e := f.entries[0]
	f.entries = f.entries[1:]
	return e, true
}

// PopLayer removes and returns the contiguous run of entries sharing the
// front entry's depth. Because depths are nondecreasing, this is exactly
// one BFS layer. It returns nil when the queue is empty.
func (f *Frontier) PopLayer() []Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) == 0 {
		return nil
	}

	depth := f.entries[0].Depth
	n := 0
	for n < len(f.entries) && f.entries[n].Depth == depth {
		n++
	}

	layer := f.entries[:n:n]
	f.entries = f.entries[n:]
	return layer
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// VisitedSet tracks URLs that have already been dequeued and processed or
// rejected. It only ever grows and is never persisted. The set is shared
// globally across all seeds so a page reachable from two seeds is fetched
// exactly once.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// MarkIfNew marks the URL as visited and reports whether it was new. The
// check and the mark are a single atomic operation so two concurrent
// workers can never both claim the same URL.
func (v *VisitedSet) MarkIfNew(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.seen[url]; ok {
		return false
	}
	v.seen[url] = struct{}{}
	return true
}

// Seen reports whether the URL has been visited. This is an advisory check
// used to avoid pointless enqueues; the authoritative guard is MarkIfNew at
// dequeue time.
func (v *VisitedSet) Seen(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.seen[url]
	return ok
}

// Len returns the number of visited URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
