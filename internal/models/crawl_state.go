package models

// OrderedSet is a string set that preserves insertion order and rejects
// duplicates. Not safe for concurrent use; the discovery engine mutates it
// from a single worker only.
type OrderedSet struct {
	items []string
	seen  map[string]struct{}
}

// NewOrderedSet returns an empty ordered set.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add appends value if it is not already present. Returns true when the
// value was inserted.
func (s *OrderedSet) Add(value string) bool {
	if _, ok := s.seen[value]; ok {
		return false
	}
	s.seen[value] = struct{}{}
	s.items = append(s.items, value)
	return true
}

// Contains reports whether value is in the set.
func (s *OrderedSet) Contains(value string) bool {
	_, ok := s.seen[value]
	return ok
}

// Values returns the members in insertion order. The returned slice is a
// copy; mutating it does not affect the set.
func (s *OrderedSet) Values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of members.
func (s *OrderedSet) Len() int {
	return len(s.items)
}

// CrawlState holds the per-run registries of the discovery engine, keyed by
// seed URL. One instance exists per session; it is owned by the single
// discovery worker and is never shared across goroutines, so no locking is
// used. It does not persist across runs.
type CrawlState struct {
	explored   map[string]*OrderedSet
	discovered map[string]*OrderedSet
	children   map[string]*OrderedSet
}

// NewCrawlState returns an empty state store.
func NewCrawlState() *CrawlState {
	return &CrawlState{
		explored:   make(map[string]*OrderedSet),
		discovered: make(map[string]*OrderedSet),
		children:   make(map[string]*OrderedSet),
	}
}

func (s *CrawlState) set(m map[string]*OrderedSet, seedURL string) *OrderedSet {
	if m[seedURL] == nil {
		m[seedURL] = NewOrderedSet()
	}
	return m[seedURL]
}

// RecordExplored registers a URL observed while processing requests rooted at
// seedURL, regardless of how it was classified.
func (s *CrawlState) RecordExplored(seedURL, url string) {
	s.set(s.explored, seedURL).Add(url)
}

// RecordDiscovered registers a URL classified as a distinct service of the
// company. The seed URL itself is never admitted, even when probing or
// extraction resolves back to it through a variant spelling.
func (s *CrawlState) RecordDiscovered(seedURL, url string) {
	if SameNormalized(seedURL, url) {
		return
	}
	s.set(s.discovered, seedURL).Add(url)
}

// RecordChild registers a URL that was actually enqueued as a child request
// of seedURL.
func (s *CrawlState) RecordChild(seedURL, url string) {
	s.set(s.children, seedURL).Add(url)
}

// ExploredURLs returns every URL observed under seedURL, in first-seen order.
func (s *CrawlState) ExploredURLs(seedURL string) []string {
	return s.values(s.explored, seedURL)
}

// DiscoveredServices returns the distinct-service URLs found under seedURL,
// in first-seen order, excluding the seed itself.
func (s *CrawlState) DiscoveredServices(seedURL string) []string {
	return s.values(s.discovered, seedURL)
}

// ChildURLs returns the URLs enqueued as children of seedURL, in enqueue
// order.
func (s *CrawlState) ChildURLs(seedURL string) []string {
	return s.values(s.children, seedURL)
}

func (s *CrawlState) values(m map[string]*OrderedSet, seedURL string) []string {
	set, ok := m[seedURL]
	if !ok {
		return []string{}
	}
	return set.Values()
}

// StartURLChildren flattens the child registry into the aggregate form used
// by the session summary record.
func (s *CrawlState) StartURLChildren() map[string][]string {
	out := make(map[string][]string, len(s.children))
	for seed, set := range s.children {
		out[seed] = set.Values()
	}
	return out
}
