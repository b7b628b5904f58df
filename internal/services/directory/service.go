package directory

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gocolly/colly/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/pkg/models"
)

// Service is the batch company-listing crawler. It paginates a listing site
// and scrapes structured fields per row; there is no classification logic
// here, extraction only.
type Service struct {
	config common.DirectoryConfig
	logger arbor.ILogger
}

// NewService creates a directory crawler
func NewService(config common.DirectoryConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Crawl visits the page-numbered listing URL pattern up to the configured
// page count and extracts one DirectoryCompany per row. Page fetch failures
// are logged and skipped; the only error is unusable configuration.
func (s *Service) Crawl(ctx context.Context) ([]models.DirectoryCompany, error) {
	if strings.TrimSpace(s.config.StartURL) == "" {
		return nil, fmt.Errorf("directory start URL is not configured")
	}
	if strings.TrimSpace(s.config.RowSelector) == "" {
		return nil, fmt.Errorf("directory row selector is not configured")
	}

	firstPage := s.pageURL(1)
	parsed, err := url.Parse(firstPage)
	if err != nil || parsed.Hostname() == "" {
		return nil, fmt.Errorf("invalid directory start URL %q: %w", s.config.StartURL, err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.MaxDepth(1),
		colly.IgnoreRobotsTxt(),
	)
	if err := c.Limit(&colly.LimitRule{DomainGlob: "*", Delay: s.config.Delay}); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to set rate limit on collector")
	}

	var companies []models.DirectoryCompany

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		s.logger.Debug().Str("url", r.URL.String()).Msg("Fetching listing page")
	})

	c.OnError(func(r *colly.Response, err error) {
		s.logger.Warn().
			Err(err).
			Str("url", r.Request.URL.String()).
			Int("status_code", r.StatusCode).
			Msg("Listing page fetch failed, skipping")
	})

	c.OnHTML(s.config.RowSelector, func(e *colly.HTMLElement) {
		company := s.extractRow(e)
		if company.Name == "" && company.Website == "" {
			return
		}
		companies = append(companies, company)
	})

	for page := 1; page <= s.config.MaxPages; page++ {
		if ctx.Err() != nil {
			s.logger.Warn().Int("page", page).Msg("Directory crawl cancelled")
			break
		}

		pageURL := s.pageURL(page)
		if err := c.Visit(pageURL); err != nil {
			s.logger.Warn().Err(err).Str("url", pageURL).Msg("Listing page visit rejected")
		}

		// A pattern without a page placeholder is a single-page listing.
		if pageURL == s.config.StartURL && !strings.Contains(s.config.StartURL, "%d") {
			break
		}
	}
	c.Wait()

	s.logger.Info().
		Int("companies", len(companies)).
		Int("max_pages", s.config.MaxPages).
		Msg("Directory crawl completed")

	return companies, nil
}

// extractRow maps the configured selectors onto one listing row
func (s *Service) extractRow(e *colly.HTMLElement) models.DirectoryCompany {
	company := models.DirectoryCompany{
		Name:       strings.TrimSpace(e.ChildText(s.config.NameSelector)),
		Location:   strings.TrimSpace(e.ChildText(s.config.LocationSelector)),
		SourcePage: e.Request.URL.String(),
	}

	website := strings.TrimSpace(e.ChildAttr(s.config.WebsiteSelector, "href"))
	if website == "" {
		website = strings.TrimSpace(e.ChildText(s.config.WebsiteSelector))
	}
	if website != "" {
		if abs := e.Request.AbsoluteURL(website); abs != "" {
			website = abs
		}
	}
	company.Website = website

	if s.config.CategorySelector != "" {
		for _, category := range e.ChildTexts(s.config.CategorySelector) {
			category = strings.TrimSpace(category)
			if category != "" {
				company.Categories = append(company.Categories, category)
			}
		}
	}

	return company
}

// pageURL substitutes the page number into the listing pattern
func (s *Service) pageURL(page int) string {
	if strings.Contains(s.config.StartURL, "%d") {
		return fmt.Sprintf(s.config.StartURL, page)
	}
	return s.config.StartURL
}
