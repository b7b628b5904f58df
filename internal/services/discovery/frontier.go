package discovery

import (
	"github.com/ternarybob/indago/internal/models"
)

// Frontier is the FIFO work queue for one seed's crawl. URLs are deduplicated
// by normalized form, so the same page reached with a different fragment or
// query order is enqueued once.
//
// The frontier is only touched by the single discovery worker, so it carries
// no locking. A fresh frontier is built per seed; dedup never spans seeds.
type Frontier struct {
	items []*models.CrawlRequest
	seen  map[string]bool
}

// NewFrontier creates an empty frontier
func NewFrontier() *Frontier {
	return &Frontier{
		seen: make(map[string]bool),
	}
}

// Push adds a request unless its normalized URL was already enqueued.
// Returns true when the request was accepted.
func (f *Frontier) Push(req *models.CrawlRequest) bool {
	normalized := models.NormalizeURL(req.URL)
	if f.seen[normalized] {
		return false
	}

	f.seen[normalized] = true
	f.items = append(f.items, req)
	return true
}

// Pop removes and returns the oldest request, or nil when the frontier is empty
func (f *Frontier) Pop() *models.CrawlRequest {
	if len(f.items) == 0 {
		return nil
	}

	req := f.items[0]
	f.items = f.items[1:]
	return req
}

// Len returns the number of queued requests
func (f *Frontier) Len() int {
	return len(f.items)
}

// Contains checks if a URL has been enqueued (after normalization)
func (f *Frontier) Contains(rawURL string) bool {
	return f.seen[models.NormalizeURL(rawURL)]
}
