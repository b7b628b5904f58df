package discovery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/services/classifier"
	pkgmodels "github.com/ternarybob/indago/pkg/models"
)

// Orchestrator executes the per-request state machine:
// Queued -> Loading -> Probing -> ExtractingLinks -> Classifying -> Enqueuing -> Done,
// with Failed absorbing on an unrecoverable load error. All registry mutation
// happens here, from the single worker.
type Orchestrator struct {
	automator   interfaces.PageAutomator
	prober      *Prober
	classifier  *classifier.Classifier
	detector    interfaces.ToolDetector
	snapshotter *Snapshotter
	state       *models.CrawlState
	logger      arbor.ILogger
}

// Outcome carries the seed-page extras gathered while the page was live.
// Child requests produce an empty outcome.
type Outcome struct {
	Tools    []pkgmodels.ToolDetection
	Snapshot string
}

// NewOrchestrator wires the request pipeline. detector and snapshotter are
// optional; nil disables the corresponding seed-page step.
func NewOrchestrator(
	automator interfaces.PageAutomator,
	prober *Prober,
	cls *classifier.Classifier,
	detector interfaces.ToolDetector,
	snapshotter *Snapshotter,
	state *models.CrawlState,
	logger arbor.ILogger,
) *Orchestrator {
	return &Orchestrator{
		automator:   automator,
		prober:      prober,
		classifier:  cls,
		detector:    detector,
		snapshotter: snapshotter,
		state:       state,
		logger:      logger,
	}
}

// Process runs one request through every stage. allowEnqueue is false once
// the session's request budget is exhausted; the request still completes, it
// just stops feeding the frontier. The returned error is the abandoned-load
// case only; probing and classification failures never surface here.
func (o *Orchestrator) Process(ctx context.Context, req *models.CrawlRequest, frontier *Frontier, allowEnqueue bool) (*Outcome, error) {
	seedURL := req.SeedURL()
	outcome := &Outcome{}

	req.Status = models.RequestStatusLoading
	o.logger.Info().
		Str("url", req.URL).
		Str("label", string(req.Label)).
		Str("seed", seedURL).
		Msg("Loading page")

	page, err := o.automator.Load(ctx, req.URL)
	if err != nil {
		req.Status = models.RequestStatusFailed
		o.logger.Warn().
			Err(err).
			Str("url", req.URL).
			Msg("Page load failed after retries, abandoning request")
		return outcome, err
	}

	defer func() {
		if closeErr := o.automator.Close(ctx, page.Target); closeErr != nil {
			o.logger.Debug().Err(closeErr).Str("url", req.URL).Msg("Failed to close page context")
		}
	}()

	o.state.RecordExplored(seedURL, req.URL)
	if page.URL != "" && !models.SameNormalized(page.URL, req.URL) {
		o.state.RecordExplored(seedURL, page.URL)
	}

	// Seed-page extras run while the DOM is still pristine, before any
	// activation can navigate the tab away.
	if req.IsSeed() {
		if o.detector != nil {
			outcome.Tools = o.detector.Detect(ctx, page)
		}
		if o.snapshotter != nil {
			outcome.Snapshot = o.snapshotter.Capture(page.HTML, page.URL)
		}
	}

	req.Status = models.RequestStatusProbing
	for _, resolvedURL := range o.prober.Probe(ctx, page) {
		o.state.RecordExplored(seedURL, resolvedURL)
		if req.IsSeed() {
			o.state.RecordDiscovered(seedURL, resolvedURL)
			o.enqueueChild(req, resolvedURL, frontier, allowEnqueue)
		}
	}

	req.Status = models.RequestStatusExtractingLinks
	sameHost, crossHost := o.extractLinks(page.HTML, page.URL, req.OriginDomain)
	o.logger.Debug().
		Str("url", req.URL).
		Int("same_host", len(sameHost)).
		Int("cross_host", len(crossHost)).
		Msg("Anchors extracted")

	req.Status = models.RequestStatusClassifying
	var accepted []string
	for _, candidateURL := range sameHost {
		verdict := o.classifier.Classify(seedURL, candidateURL)
		o.state.RecordExplored(seedURL, candidateURL)
		if verdict.IsDifferentService() {
			o.state.RecordDiscovered(seedURL, candidateURL)
			accepted = append(accepted, candidateURL)
			o.logger.Debug().
				Str("candidate_url", candidateURL).
				Str("verdict", string(verdict)).
				Msg("Different-service candidate")
		}
	}
	for _, candidateURL := range crossHost {
		o.state.RecordExplored(seedURL, candidateURL)
		if o.classifier.BrandTokenMatch(req.CompanyName, candidateURL) {
			o.state.RecordDiscovered(seedURL, candidateURL)
			accepted = append(accepted, candidateURL)
			o.logger.Debug().
				Str("candidate_url", candidateURL).
				Str("company", req.CompanyName).
				Msg("Brand-token candidate")
		}
	}

	req.Status = models.RequestStatusEnqueuing
	if req.IsSeed() {
		for _, candidateURL := range accepted {
			o.enqueueChild(req, candidateURL, frontier, allowEnqueue)
		}
	}

	req.Status = models.RequestStatusDone
	o.logger.Info().
		Str("url", req.URL).
		Str("label", string(req.Label)).
		Int("explored", len(o.state.ExploredURLs(seedURL))).
		Int("discovered", len(o.state.DiscoveredServices(seedURL))).
		Msg("Request completed")

	return outcome, nil
}

// enqueueChild records a URL as a child of the request's seed and feeds it to
// the frontier. Once the budget is exhausted nothing more is enqueued.
func (o *Orchestrator) enqueueChild(req *models.CrawlRequest, childURL string, frontier *Frontier, allowEnqueue bool) {
	if !allowEnqueue {
		o.logger.Debug().Str("url", childURL).Msg("Request budget exhausted, not enqueuing")
		return
	}

	seedURL := req.SeedURL()
	o.state.RecordChild(seedURL, childURL)

	if frontier.Push(models.ChildOf(req, childURL)) {
		o.logger.Debug().
			Str("url", childURL).
			Str("seed", seedURL).
			Msg("Child request enqueued")
	}
}

// extractLinks collects anchors from the rendered HTML, split into same-host
// and cross-host sets relative to the seed's origin domain. URLs are resolved
// against the page address; non-navigable schemes and fragment-only anchors
// are skipped.
func (o *Orchestrator) extractLinks(html, pageURL, originDomain string) (sameHost, crossHost []string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		o.logger.Warn().Err(err).Str("url", pageURL).Msg("Failed to parse HTML for link extraction")
		return nil, nil
	}

	baseURL, err := url.Parse(pageURL)
	if err != nil {
		o.logger.Warn().Err(err).Str("url", pageURL).Msg("Failed to parse page URL for link resolution")
		baseURL = nil
	}

	linkSet := make(map[string]bool)

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || shouldSkipLink(href) {
			return
		}

		resolvedURL := resolveLink(href, baseURL)
		if resolvedURL == "" {
			return
		}

		if linkSet[resolvedURL] {
			return
		}
		linkSet[resolvedURL] = true

		parsed, err := url.Parse(resolvedURL)
		if err != nil {
			o.logger.Debug().Err(err).Str("href", href).Msg("Skipping unparseable anchor")
			return
		}

		if strings.EqualFold(parsed.Hostname(), originDomain) {
			sameHost = append(sameHost, resolvedURL)
		} else {
			crossHost = append(crossHost, resolvedURL)
		}
	})

	return sameHost, crossHost
}

// shouldSkipLink filters anchors that never represent a navigable page
func shouldSkipLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))

	if href == "" {
		return true
	}

	if strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "sms:") ||
		strings.HasPrefix(href, "ftp:") ||
		strings.HasPrefix(href, "data:") {
		return true
	}

	// Fragment-only anchors point back into the page
	if strings.HasPrefix(href, "#") {
		return true
	}

	return false
}

// resolveLink resolves a potentially relative href against the page URL
func resolveLink(href string, baseURL *url.URL) string {
	if baseURL == nil {
		if parsed, err := url.Parse(href); err == nil && parsed.IsAbs() {
			return parsed.String()
		}
		return ""
	}

	resolved, err := baseURL.Parse(href)
	if err != nil {
		return ""
	}
	return resolved.String()
}
