package interfaces

import (
	"github.com/ternarybob/indago/pkg/models"
)

// DiscoveryStorage is the full result store: the append-only sink consumed
// by the engine plus the read-side helpers used by the CLI's show mode and
// by tests.
type DiscoveryStorage interface {
	DiscoverySink

	// ResultsBySeed returns every stored result for a seed URL in append
	// order.
	ResultsBySeed(seedURL string) ([]*models.DiscoveryResult, error)

	// ListResults returns stored results in append order. A limit of zero
	// or less returns everything.
	ListResults(limit int) ([]*models.DiscoveryResult, error)

	// ListSummaries returns stored session summaries in append order. A
	// limit of zero or less returns everything.
	ListSummaries(limit int) ([]*models.SessionSummary, error)
}

// StorageManager owns the database connection and hands out the stores built
// on it.
type StorageManager interface {
	DiscoveryStorage() DiscoveryStorage
	Close() error
}
