package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/indago/internal/models"
)

// NavigationTarget is an opaque handle to something the automation layer can
// address: the currently loaded page, or a browsing context opened as a side
// effect of activating an element. Handles are owned by the automation layer
// and are only valid while the page load that produced them is current.
type NavigationTarget any

// RenderedPage is one loaded and settled page.
type RenderedPage struct {
	// URL is the resolved location after redirects.
	URL string

	// HTML is an outer-HTML snapshot taken once the page settled.
	HTML string

	// Target addresses this page in later automator calls.
	Target NavigationTarget
}

// PageAutomator is the contract the discovery engine consumes to drive a
// browser. Implementations own all browser state; the engine holds element
// refs and navigation targets only within a single page-processing step.
type PageAutomator interface {
	// Load navigates to url and waits for the page to settle. The automation
	// layer retries failed navigations a bounded number of times internally;
	// after that the returned error wraps models.NavigationError.
	Load(ctx context.Context, url string) (*RenderedPage, error)

	// Query enumerates the clickable candidates of one kind on the page, in
	// document order.
	Query(ctx context.Context, page *RenderedPage, kind models.CandidateKind) ([]models.ClickableCandidate, error)

	// Activate simulates a click on the candidate, bounded by timeout.
	// Failures wrap models.ActivationError and are non-fatal to the caller.
	Activate(ctx context.Context, page *RenderedPage, candidate models.ClickableCandidate, timeout time.Duration) error

	// WaitForNewContext waits up to timeout for a new browsing context (tab
	// or window) to appear. ok is false when none appeared; a timeout is a
	// valid outcome, not an error.
	WaitForNewContext(ctx context.Context, timeout time.Duration) (target NavigationTarget, ok bool)

	// WaitForIdle waits up to timeout for the target to reach a settled
	// network-idle state. Returns false on timeout; also a valid outcome.
	WaitForIdle(ctx context.Context, target NavigationTarget, timeout time.Duration) bool

	// CurrentURL reads the target's current location.
	CurrentURL(ctx context.Context, target NavigationTarget) (string, error)

	// Evaluate runs a JavaScript expression on the page and unmarshals the
	// result into result.
	Evaluate(ctx context.Context, page *RenderedPage, expression string, result any) error

	// Close disposes a browsing context opened during probing. Failure is
	// logged by the implementation and non-fatal.
	Close(ctx context.Context, target NavigationTarget) error

	// Shutdown releases the browser pool.
	Shutdown(ctx context.Context) error
}
