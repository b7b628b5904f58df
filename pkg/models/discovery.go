package models

import "time"

// DiscoveryResult is the per-seed output of a discovery run: every URL the
// engine explored under the seed and the subset it believes are services the
// company operates besides the seed site itself.
type DiscoveryResult struct {
	ID                         string          `json:"id"`
	CompanyName                string          `json:"company_name"`
	URL                        string          `json:"url"`
	PotentialDifferentServices []string        `json:"potential_different_services"`
	AllExploredURLs            []string        `json:"all_explored_urls"`
	DetectedTools              []ToolDetection `json:"detected_tools,omitempty"`
	Snapshot                   string          `json:"snapshot,omitempty"`
	RequestsProcessed          int             `json:"requests_processed"`
	StartedAt                  time.Time       `json:"started_at"`
	CompletedAt                time.Time       `json:"completed_at"`
}

// SessionSummary aggregates one run: which child requests each seed spawned
// and how much of the request budget was consumed.
type SessionSummary struct {
	ID                string              `json:"id"`
	StartURLChildren  map[string][]string `json:"start_url_children"`
	SeedsProcessed    int                 `json:"seeds_processed"`
	RequestsProcessed int                 `json:"requests_processed"`
	BudgetExhausted   bool                `json:"budget_exhausted"`
	StartedAt         time.Time           `json:"started_at"`
	CompletedAt       time.Time           `json:"completed_at"`
}

// ToolDetection records one monitoring or analytics SDK found on a page.
type ToolDetection struct {
	Vendor       string `json:"vendor"`
	GlobalSymbol string `json:"global_symbol"`
	Category     string `json:"category"`
}
