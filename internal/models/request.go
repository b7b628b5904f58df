package models

// RequestLabel distinguishes the seed request of a crawl from the child
// requests enqueued while processing it.
type RequestLabel string

const (
	RequestLabelSeed  RequestLabel = "seed"
	RequestLabelChild RequestLabel = "child"
)

// RequestStatus is the stage a request is in. Requests move strictly forward
// through the pipeline; Failed absorbs from any stage on an unrecoverable
// load error.
type RequestStatus string

const (
	RequestStatusQueued          RequestStatus = "queued"
	RequestStatusLoading         RequestStatus = "loading"
	RequestStatusProbing         RequestStatus = "probing"
	RequestStatusExtractingLinks RequestStatus = "extracting_links"
	RequestStatusClassifying     RequestStatus = "classifying"
	RequestStatusEnqueuing       RequestStatus = "enqueuing"
	RequestStatusDone            RequestStatus = "done"
	RequestStatusFailed          RequestStatus = "failed"
)

// CrawlRequest is one unit of work for the discovery worker. OriginDomain and
// CompanyName are inherited unchanged from the seed through every descendant
// request; they are propagated metadata, never re-derived.
type CrawlRequest struct {
	URL          string        `json:"url"`
	Label        RequestLabel  `json:"label"`
	ParentURL    string        `json:"parent_url,omitempty"`
	OriginDomain string        `json:"origin_domain"`
	CompanyName  string        `json:"company_name"`
	Status       RequestStatus `json:"status"`
}

// NewSeedRequest builds the root request for a seed target.
func NewSeedRequest(target SeedTarget, originDomain string) *CrawlRequest {
	return &CrawlRequest{
		URL:          target.URL,
		Label:        RequestLabelSeed,
		OriginDomain: originDomain,
		CompanyName:  target.Name,
		Status:       RequestStatusQueued,
	}
}

// ChildOf builds a child request for a URL discovered while processing parent.
// Every child carries a non-empty ParentURL chaining back to the seed.
func ChildOf(parent *CrawlRequest, url string) *CrawlRequest {
	return &CrawlRequest{
		URL:          url,
		Label:        RequestLabelChild,
		ParentURL:    parent.URL,
		OriginDomain: parent.OriginDomain,
		CompanyName:  parent.CompanyName,
		Status:       RequestStatusQueued,
	}
}

// IsSeed reports whether this is the root request of its crawl.
func (r *CrawlRequest) IsSeed() bool {
	return r.Label == RequestLabelSeed
}

// SeedURL returns the URL keying this request's registries. Children are only
// ever enqueued while processing a seed, so ParentURL is always the seed.
func (r *CrawlRequest) SeedURL() string {
	if r.IsSeed() {
		return r.URL
	}
	return r.ParentURL
}
