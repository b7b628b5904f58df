package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
)

// probeMarker is the attribute stamped onto enumerated elements so a later
// activation can address them with a stable selector. Refs are only valid
// for the page load that stamped them.
const probeMarker = "data-probe-ref"

// tab wraps one browsing context. It backs interfaces.NavigationTarget for
// both loaded pages and contexts opened as a click side effect.
type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Service drives a pooled Chrome instance and implements
// interfaces.PageAutomator for the discovery engine.
type Service struct {
	config              common.BrowserConfig
	pool                *Pool
	limiter             *DomainLimiter
	retry               *RetryPolicy
	logger              arbor.ILogger
	clickableIndicators []string
	maxPerQuery         int

	// One listener armed per activation; consumed by WaitForNewContext.
	// The engine is single-worker so a single pending slot is enough.
	pendingMu      sync.Mutex
	pendingTargets <-chan target.ID
	pendingFrom    context.Context
}

// NewService creates a page automation service backed by a browser pool.
// clickableIndicators are the class/id substrings used by the
// class-id-indicator candidate kind; maxPerQuery bounds enumeration per kind.
func NewService(config common.BrowserConfig, clickableIndicators []string, maxPerQuery int, logger arbor.ILogger) *Service {
	if maxPerQuery < 1 {
		maxPerQuery = 25
	}
	return &Service{
		config:              config,
		pool:                NewPool(logger),
		limiter:             NewDomainLimiter(config.RequestsPerSecond, config.RequestBurst),
		retry:               NewRetryPolicy(config.NavigationRetries),
		logger:              logger,
		clickableIndicators: append([]string{}, clickableIndicators...),
		maxPerQuery:         maxPerQuery,
	}
}

// Init starts the underlying browser pool
func (s *Service) Init() error {
	return s.pool.Init(s.config)
}

// Load navigates to rawURL in a fresh tab, waits for the document to become
// ready, and snapshots the rendered HTML. Navigation failures are retried
// with backoff; once attempts are exhausted the error wraps
// models.NavigationError and the request should be abandoned.
func (s *Service) Load(ctx context.Context, rawURL string) (*interfaces.RenderedPage, error) {
	if err := s.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	browserCtx, release, err := s.pool.GetBrowser()
	if err != nil {
		return nil, err
	}
	defer release()

	var rendered *interfaces.RenderedPage
	navErr := s.retry.ExecuteWithRetry(ctx, s.logger, func() error {
		tabCtx, tabCancel := chromedp.NewContext(browserCtx)

		navCtx, navCancel := context.WithTimeout(tabCtx, s.config.NavigationTimeout)
		defer navCancel()

		var html, finalURL string
		if err := chromedp.Run(navCtx,
			chromedp.Navigate(rawURL),
			chromedp.WaitReady("body", chromedp.ByQuery),
			chromedp.Location(&finalURL),
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		); err != nil {
			tabCancel()
			return err
		}

		rendered = &interfaces.RenderedPage{
			URL:    finalURL,
			HTML:   html,
			Target: &tab{ctx: tabCtx, cancel: tabCancel},
		}
		return nil
	})

	if navErr != nil {
		return nil, &models.NavigationError{URL: rawURL, Attempts: s.retry.MaxAttempts, Err: navErr}
	}

	s.logger.Debug().
		Str("url", rawURL).
		Str("resolved_url", rendered.URL).
		Int("html_bytes", len(rendered.HTML)).
		Msg("Page loaded")

	return rendered, nil
}

// markedElement mirrors the objects the enumeration script returns
type markedElement struct {
	Ref  string `json:"ref"`
	Text string `json:"text"`
}

// Query enumerates clickable candidates of one kind in document order.
// Elements are stamped with a ref attribute on first sight; an element that
// matches several kinds keeps its first ref and is reported for each kind.
func (s *Service) Query(ctx context.Context, pg *interfaces.RenderedPage, kind models.CandidateKind) ([]models.ClickableCandidate, error) {
	tabCtx, err := s.tabContext(pg.Target)
	if err != nil {
		return nil, err
	}

	script, err := candidateScript(kind, s.clickableIndicators, s.maxPerQuery)
	if err != nil {
		return nil, err
	}

	qctx, cancel := context.WithTimeout(tabCtx, s.config.ActivationTimeout)
	defer cancel()

	var raw []markedElement
	if err := chromedp.Run(qctx, chromedp.Evaluate(script, &raw)); err != nil {
		return nil, fmt.Errorf("candidate enumeration failed for kind %s: %w", kind, err)
	}

	candidates := make([]models.ClickableCandidate, 0, len(raw))
	for _, m := range raw {
		candidates = append(candidates, models.ClickableCandidate{
			Kind: kind,
			Text: m.Text,
			Ref:  m.Ref,
		})
	}

	s.logger.Debug().
		Str("kind", string(kind)).
		Int("count", len(candidates)).
		Msg("Enumerated clickable candidates")

	return candidates, nil
}

// Activate clicks the candidate, bounded by timeout. A new-target listener is
// armed before the click so WaitForNewContext cannot miss a context opened as
// an immediate side effect.
func (s *Service) Activate(ctx context.Context, pg *interfaces.RenderedPage, candidate models.ClickableCandidate, timeout time.Duration) error {
	tabCtx, err := s.tabContext(pg.Target)
	if err != nil {
		return &models.ActivationError{Kind: string(candidate.Kind), Err: err}
	}

	ref, ok := candidate.Ref.(string)
	if !ok || ref == "" {
		return &models.ActivationError{Kind: string(candidate.Kind), Err: fmt.Errorf("candidate carries no element ref")}
	}

	s.armNewTargetListener(tabCtx)

	cctx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	selector := fmt.Sprintf(`[%s=%q]`, probeMarker, ref)
	if err := chromedp.Run(cctx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return &models.ActivationError{Kind: string(candidate.Kind), Err: err}
	}

	return nil
}

// armNewTargetListener subscribes to new page targets opened by the given tab.
// Must run before the click that may open them or the event is lost.
func (s *Service) armNewTargetListener(tabCtx context.Context) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	s.pendingTargets = chromedp.WaitNewTarget(tabCtx, func(info *target.Info) bool {
		return info.URL != ""
	})
	s.pendingFrom = tabCtx
}

// WaitForNewContext waits up to timeout for a browsing context opened by the
// most recent activation. A timeout is the normal "no navigation occurred"
// outcome, not an error.
func (s *Service) WaitForNewContext(ctx context.Context, timeout time.Duration) (interfaces.NavigationTarget, bool) {
	s.pendingMu.Lock()
	ch := s.pendingTargets
	from := s.pendingFrom
	s.pendingTargets = nil
	s.pendingFrom = nil
	s.pendingMu.Unlock()

	if ch == nil {
		return nil, false
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case id, ok := <-ch:
		if !ok {
			return nil, false
		}
		newCtx, newCancel := chromedp.NewContext(from, chromedp.WithTargetID(id))
		s.logger.Debug().
			Str("target_id", string(id)).
			Msg("New browsing context opened by activation")
		return &tab{ctx: newCtx, cancel: newCancel}, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// WaitForIdle waits for the target's document to become ready, up to timeout.
// Returns false on timeout, which callers treat as a settled-enough page.
func (s *Service) WaitForIdle(ctx context.Context, t interfaces.NavigationTarget, timeout time.Duration) bool {
	tabCtx, err := s.tabContext(t)
	if err != nil {
		return false
	}

	wctx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	if err := chromedp.Run(wctx, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		s.logger.Debug().Err(err).Msg("Idle wait ended without document ready")
		return false
	}
	return true
}

// CurrentURL reads the target's present location
func (s *Service) CurrentURL(ctx context.Context, t interfaces.NavigationTarget) (string, error) {
	tabCtx, err := s.tabContext(t)
	if err != nil {
		return "", err
	}

	rctx, cancel := context.WithTimeout(tabCtx, s.config.ActivationTimeout)
	defer cancel()

	var location string
	if err := chromedp.Run(rctx, chromedp.Location(&location)); err != nil {
		return "", err
	}
	return location, nil
}

// Evaluate runs a JavaScript expression on the page and unmarshals the result
func (s *Service) Evaluate(ctx context.Context, pg *interfaces.RenderedPage, expression string, result any) error {
	tabCtx, err := s.tabContext(pg.Target)
	if err != nil {
		return err
	}

	ectx, cancel := context.WithTimeout(tabCtx, s.config.ActivationTimeout)
	defer cancel()

	return chromedp.Run(ectx, chromedp.Evaluate(expression, result))
}

// Close disposes a browsing context. The page is closed explicitly so probe
// windows do not pile up across a long run; cancellation then detaches the
// session.
func (s *Service) Close(ctx context.Context, t interfaces.NavigationTarget) error {
	handle, ok := t.(*tab)
	if !ok || handle == nil {
		return fmt.Errorf("unknown navigation target type %T", t)
	}

	closeCtx, cancel := context.WithTimeout(handle.ctx, 5*time.Second)
	if err := chromedp.Run(closeCtx, page.Close()); err != nil {
		s.logger.Debug().Err(err).Msg("Explicit page close failed, cancelling context")
	}
	cancel()

	handle.cancel()
	return nil
}

// Shutdown releases the browser pool
func (s *Service) Shutdown(ctx context.Context) error {
	return s.pool.Shutdown()
}

// tabContext unwraps the chromedp context behind a navigation target
func (s *Service) tabContext(t interfaces.NavigationTarget) (context.Context, error) {
	handle, ok := t.(*tab)
	if !ok || handle == nil {
		return nil, fmt.Errorf("unknown navigation target type %T", t)
	}
	return handle.ctx, nil
}

// candidateScript builds the enumeration script for one candidate kind. The
// script stamps unmarked matches with a ref attribute and returns
// {ref, text} objects in document order.
func candidateScript(kind models.CandidateKind, clickableIndicators []string, limit int) (string, error) {
	var matcher string
	switch kind {
	case models.CandidateKindOnClick:
		matcher = `el.hasAttribute('onclick')`
	case models.CandidateKindFrameworkDirective:
		matcher = `el.getAttributeNames().some(function(n) {
			return n === '@click' || n === 'v-on:click' || n === 'ng-click' ||
				n === 'data-ng-click' || n === '(click)' || n === 'x-on:click';
		})`
	case models.CandidateKindActionAttribute:
		matcher = `el.hasAttribute('data-action') || el.hasAttribute('jsaction') || el.hasAttribute('data-click')`
	case models.CandidateKindAriaRole:
		matcher = `(el.getAttribute('role') === 'button' || el.getAttribute('role') === 'link')`
	case models.CandidateKindClassIndicator:
		indicators, err := json.Marshal(clickableIndicators)
		if err != nil {
			return "", err
		}
		matcher = fmt.Sprintf(`(function() {
			var hay = ((el.getAttribute('class') || '') + ' ' + (el.id || '')).toLowerCase();
			var hit = %s.some(function(t) { return hay.indexOf(t) !== -1; });
			if (!hit) return false;
			var href = el.getAttribute('href');
			if (href && href !== '#' && href.toLowerCase().indexOf('javascript:') !== 0) return false;
			return true;
		})()`, string(indicators))
	case models.CandidateKindButtonElement:
		matcher = `(el.tagName === 'BUTTON' || (el.tagName === 'INPUT' && (el.type === 'button' || el.type === 'submit')))`
	default:
		return "", fmt.Errorf("unknown candidate kind: %s", kind)
	}

	script := fmt.Sprintf(`(function() {
		var found = [];
		var seq = 0;
		var all = document.querySelectorAll('*');
		for (var i = 0; i < all.length && found.length < %d; i++) {
			var el = all[i];
			if (!(%s)) continue;
			var ref = el.getAttribute(%q);
			if (!ref) {
				ref = %q + '-' + (seq++) + '-' + i;
				el.setAttribute(%q, ref);
			}
			found.push({
				ref: ref,
				text: (el.innerText || el.value || '').replace(/\s+/g, ' ').trim().slice(0, 120)
			});
		}
		return found;
	})()`, limit, matcher, probeMarker, string(kind), probeMarker)

	return script, nil
}
