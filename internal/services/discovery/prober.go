package discovery

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// candidateKinds lists the enumeration families in probe order. Candidates
// are pooled across kinds without deduplication; an element reachable through
// two families is activated twice.
var candidateKinds = []models.CandidateKind{
	models.CandidateKindOnClick,
	models.CandidateKindFrameworkDirective,
	models.CandidateKindActionAttribute,
	models.CandidateKindAriaRole,
	models.CandidateKindClassIndicator,
	models.CandidateKindButtonElement,
}

// Prober surfaces navigation that is not expressible as a static anchor:
// SPA routers, client-side handlers, window.open buttons. It activates each
// clickable candidate sequentially and resolves where the click led.
type Prober struct {
	automator     interfaces.PageAutomator
	browserConfig common.BrowserConfig
	maxCandidates int
	logger        arbor.ILogger
}

// NewProber creates an interaction prober
func NewProber(automator interfaces.PageAutomator, browserConfig common.BrowserConfig, maxCandidates int, logger arbor.ILogger) *Prober {
	if maxCandidates < 1 {
		maxCandidates = 25
	}
	return &Prober{
		automator:     automator,
		browserConfig: browserConfig,
		maxCandidates: maxCandidates,
		logger:        logger,
	}
}

// Probe enumerates clickable candidates on the page and activates them one at
// a time, strictly sequentially. Returned URLs are resolved navigations in
// activation order; self-navigations back to the page's original URL are
// discarded. Every step is best-effort: no candidate failure aborts the rest.
func (p *Prober) Probe(ctx context.Context, page *interfaces.RenderedPage) []string {
	candidates := p.collectCandidates(ctx, page)
	if len(candidates) == 0 {
		return nil
	}

	p.logger.Debug().
		Str("url", page.URL).
		Int("candidates", len(candidates)).
		Msg("Probing clickable candidates")

	var resolved []string
	for _, candidate := range candidates {
		if url, ok := p.probeCandidate(ctx, page, candidate); ok {
			p.logger.Info().
				Str("kind", string(candidate.Kind)).
				Str("text", candidate.Text).
				Str("resolved_url", url).
				Msg("Activation resolved a navigation")
			resolved = append(resolved, url)
		}
	}

	return resolved
}

// collectCandidates pools candidates from every kind in enumeration order,
// capped at maxCandidates per page
func (p *Prober) collectCandidates(ctx context.Context, page *interfaces.RenderedPage) []models.ClickableCandidate {
	var pooled []models.ClickableCandidate

	for _, kind := range candidateKinds {
		if len(pooled) >= p.maxCandidates {
			break
		}

		candidates, err := p.automator.Query(ctx, page, kind)
		if err != nil {
			p.logger.Warn().
				Err(err).
				Str("kind", string(kind)).
				Str("url", page.URL).
				Msg("Candidate enumeration failed, continuing with remaining kinds")
			continue
		}

		for _, candidate := range candidates {
			if len(pooled) >= p.maxCandidates {
				break
			}
			pooled = append(pooled, candidate)
		}
	}

	return pooled
}

// probeCandidate activates one candidate and resolves the navigation it
// caused, if any. The race between "a new browsing context appeared" and
// "none did" is bounded by the new-context timeout; a timeout is the normal
// no-navigation outcome, not an error.
func (p *Prober) probeCandidate(ctx context.Context, page *interfaces.RenderedPage, candidate models.ClickableCandidate) (string, bool) {
	if err := p.automator.Activate(ctx, page, candidate, p.browserConfig.ActivationTimeout); err != nil {
		p.logger.Debug().
			Err(err).
			Str("kind", string(candidate.Kind)).
			Str("text", candidate.Text).
			Msg("Candidate activation failed, skipping")
		return "", false
	}

	newTarget, opened := p.automator.WaitForNewContext(ctx, p.browserConfig.NewContextTimeout)
	if opened {
		return p.resolveNewContext(ctx, page, newTarget)
	}

	return p.resolveInPlace(ctx, page)
}

// resolveNewContext settles a context opened by the click, reads its address,
// and always closes it afterward to bound resource growth
func (p *Prober) resolveNewContext(ctx context.Context, page *interfaces.RenderedPage, newTarget interfaces.NavigationTarget) (string, bool) {
	p.automator.WaitForIdle(ctx, newTarget, p.browserConfig.IdleTimeout)
	p.sleep(ctx, p.browserConfig.SettleDelay)

	resolvedURL, err := p.automator.CurrentURL(ctx, newTarget)

	if closeErr := p.automator.Close(ctx, newTarget); closeErr != nil {
		p.logger.Warn().Err(closeErr).Msg("Failed to close probe context")
	}

	if err != nil {
		p.logger.Debug().Err(err).Msg("Could not read probe context URL")
		return "", false
	}
	if models.SameNormalized(resolvedURL, page.URL) {
		return "", false // self-navigation is not a discovery
	}
	return resolvedURL, true
}

// resolveInPlace compares the page's URL before and after the settle wait to
// catch same-tab navigation. The resolved URL is still discarded when it
// points back at the page's original address.
func (p *Prober) resolveInPlace(ctx context.Context, page *interfaces.RenderedPage) (string, bool) {
	beforeURL, err := p.automator.CurrentURL(ctx, page.Target)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Could not read page URL before settle wait")
		return "", false
	}

	p.sleep(ctx, p.browserConfig.SettleDelay)

	afterURL, err := p.automator.CurrentURL(ctx, page.Target)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Could not read page URL after settle wait")
		return "", false
	}

	if models.SameNormalized(beforeURL, afterURL) {
		return "", false // no navigation occurred
	}
	if models.SameNormalized(afterURL, page.URL) {
		return "", false
	}
	return afterURL, true
}

// sleep waits for the settle delay, honoring cancellation
func (p *Prober) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
