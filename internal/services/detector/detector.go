package detector

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/pkg/models"
)

// Service inspects a rendered page for monitoring and analytics SDKs by
// probing the global symbols their loaders install. Stateless; every lookup
// is an independent best-effort check.
type Service struct {
	automator  interfaces.PageAutomator
	signatures []Signature
	logger     arbor.ILogger
}

// NewService creates a detector over the page automation layer. An empty
// signature list falls back to the built-in table.
func NewService(automator interfaces.PageAutomator, signatures []Signature, logger arbor.ILogger) *Service {
	if len(signatures) == 0 {
		signatures = DefaultSignatures()
	}
	return &Service{
		automator:  automator,
		signatures: signatures,
		logger:     logger,
	}
}

// Detect evaluates every signature against the page's global object, one
// boolean check per signature. Failed evaluations are logged and skipped;
// the result carries confirmed matches only, never an error.
func (s *Service) Detect(ctx context.Context, page *interfaces.RenderedPage) []models.ToolDetection {
	var detections []models.ToolDetection

	for _, sig := range s.signatures {
		expression := fmt.Sprintf("typeof window[%q] !== 'undefined'", sig.GlobalSymbol)

		var present bool
		if err := s.automator.Evaluate(ctx, page, expression, &present); err != nil {
			s.logger.Debug().
				Err(err).
				Str("vendor", sig.Vendor).
				Str("symbol", sig.GlobalSymbol).
				Msg("Signature evaluation failed, skipping")
			continue
		}
		if !present {
			continue
		}

		s.logger.Info().
			Str("url", page.URL).
			Str("vendor", sig.Vendor).
			Str("category", sig.Category).
			Msg("Monitoring SDK detected")

		detections = append(detections, models.ToolDetection{
			Vendor:       sig.Vendor,
			GlobalSymbol: sig.GlobalSymbol,
			Category:     sig.Category,
		})
	}

	return detections
}
