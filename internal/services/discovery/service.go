package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/services/classifier"
	pkgmodels "github.com/ternarybob/indago/pkg/models"
)

// Service runs discovery sessions. One session crawls every supplied seed
// fully sequentially with a single worker, shares one request budget across
// all seeds, and flushes one result record per seed plus a session summary
// into the sink.
type Service struct {
	config     *common.Config
	automator  interfaces.PageAutomator
	classifier *classifier.Classifier
	detector   interfaces.ToolDetector
	sink       interfaces.DiscoverySink
	logger     arbor.ILogger
}

// NewService creates a discovery session runner
func NewService(
	config *common.Config,
	automator interfaces.PageAutomator,
	cls *classifier.Classifier,
	detector interfaces.ToolDetector,
	sink interfaces.DiscoverySink,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:     config,
		automator:  automator,
		classifier: cls,
		detector:   detector,
		sink:       sink,
		logger:     logger,
	}
}

// Run executes one discovery session over the seeds. Seeds are processed one
// at a time; a seed whose turn comes after the budget is exhausted still
// flushes an (empty) result record. The only error returned is the fatal
// empty-input case.
func (s *Service) Run(ctx context.Context, seeds []models.SeedTarget) (*pkgmodels.SessionSummary, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seed targets supplied")
	}

	testURLCount := 0
	for _, seed := range seeds {
		if models.IsTestURL(seed.URL) {
			testURLCount++
		}
	}
	if testURLCount > 0 {
		if s.config.IsProduction() {
			return nil, fmt.Errorf("test URLs are not allowed in production mode: %d of %d seeds are local addresses", testURLCount, len(seeds))
		}
		s.logger.Warn().
			Int("test_url_count", testURLCount).
			Int("total_seeds", len(seeds)).
			Msg("Test URLs detected, allowed in development mode")
	}

	sessionID := common.NewSessionID()
	startedAt := time.Now()
	state := models.NewCrawlState()

	prober := NewProber(s.automator, s.config.Browser, s.config.Discovery.MaxCandidatesPerPage, s.logger)

	var detector interfaces.ToolDetector
	if s.config.Discovery.DetectTools {
		detector = s.detector
	}
	var snapshotter *Snapshotter
	if s.config.Discovery.IncludeSnapshot {
		snapshotter = NewSnapshotter(s.config.Discovery.SnapshotMaxRunes, s.logger)
	}

	orchestrator := NewOrchestrator(s.automator, prober, s.classifier, detector, snapshotter, state, s.logger)

	budget := s.config.Discovery.RequestBudget
	processed := 0

	s.logger.Info().
		Str("session_id", sessionID).
		Int("seeds", len(seeds)).
		Int("request_budget", budget).
		Msg("Discovery session started")

	seedsProcessed := 0
	for _, seed := range seeds {
		if ctx.Err() != nil {
			s.logger.Warn().Str("seed", seed.URL).Msg("Session cancelled, stopping before seed")
			break
		}

		result := s.crawlSeed(ctx, orchestrator, state, seed, budget, &processed)
		seedsProcessed++

		if err := s.sink.AppendResult(result); err != nil {
			s.logger.Error().
				Err(err).
				Str("seed", seed.URL).
				Msg("Failed to persist discovery result")
		}

		s.logger.Info().
			Str("seed", seed.URL).
			Str("company", seed.Name).
			Int("different_services", len(result.PotentialDifferentServices)).
			Int("explored_urls", len(result.AllExploredURLs)).
			Int("requests", result.RequestsProcessed).
			Msg("Seed crawl completed")
	}

	summary := &pkgmodels.SessionSummary{
		ID:                sessionID,
		StartURLChildren:  state.StartURLChildren(),
		SeedsProcessed:    seedsProcessed,
		RequestsProcessed: processed,
		BudgetExhausted:   processed >= budget,
		StartedAt:         startedAt,
		CompletedAt:       time.Now(),
	}

	if err := s.sink.AppendSummary(summary); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to persist session summary")
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("seeds_processed", summary.SeedsProcessed).
		Int("requests_processed", summary.RequestsProcessed).
		Bool("budget_exhausted", summary.BudgetExhausted).
		Msg("Discovery session completed")

	return summary, nil
}

// crawlSeed runs one seed to completion: a fresh frontier, the seed request,
// and every child it enqueues, until the frontier drains or the session
// budget runs out.
func (s *Service) crawlSeed(ctx context.Context, orchestrator *Orchestrator, state *models.CrawlState, seed models.SeedTarget, budget int, processed *int) *pkgmodels.DiscoveryResult {
	result := &pkgmodels.DiscoveryResult{
		ID:          common.NewResultID(),
		CompanyName: seed.Name,
		URL:         seed.URL,
		StartedAt:   time.Now(),
	}

	originDomain := s.classifier.ExtractDomain(seed.URL)
	requestsBefore := *processed

	frontier := NewFrontier()
	if *processed < budget {
		frontier.Push(models.NewSeedRequest(seed, originDomain))
	} else {
		s.logger.Warn().
			Str("seed", seed.URL).
			Msg("Request budget exhausted before seed started")
	}

	for frontier.Len() > 0 && *processed < budget {
		if ctx.Err() != nil {
			break
		}

		req := frontier.Pop()
		*processed++
		allowEnqueue := *processed < budget

		outcome, err := orchestrator.Process(ctx, req, frontier, allowEnqueue)
		if err != nil {
			// Abandoned request, already logged; the crawl continues
			continue
		}

		if req.IsSeed() {
			result.DetectedTools = outcome.Tools
			result.Snapshot = outcome.Snapshot
		}
	}

	result.PotentialDifferentServices = state.DiscoveredServices(seed.URL)
	result.AllExploredURLs = state.ExploredURLs(seed.URL)
	result.RequestsProcessed = *processed - requestsBefore
	result.CompletedAt = time.Now()
	return result
}
