package interfaces

import (
	"github.com/ternarybob/indago/pkg/models"
)

// DiscoverySink receives finished discovery records. The sink is append-only:
// implementations assign their own ordering and never update stored records
// in place. On-disk layout is the sink's concern, not the engine's.
type DiscoverySink interface {
	// AppendResult stores the per-seed output record.
	AppendResult(result *models.DiscoveryResult) error

	// AppendSummary stores the aggregate record for a whole session.
	AppendSummary(summary *models.SessionSummary) error
}
