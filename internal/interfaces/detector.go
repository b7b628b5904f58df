package interfaces

import (
	"context"

	"github.com/ternarybob/indago/pkg/models"
)

// ToolDetector inspects a loaded page for monitoring and analytics SDKs by
// checking the page's global state against known signatures. Detection is
// best-effort: lookup failures are logged by the implementation and yield an
// empty result, never an error that aborts the enclosing request.
type ToolDetector interface {
	Detect(ctx context.Context, page *RenderedPage) []models.ToolDetection
}
