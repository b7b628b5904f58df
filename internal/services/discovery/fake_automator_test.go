package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/indago/internal/interfaces"
	"github.com/ternarybob/indago/internal/models"
	pkgmodels "github.com/ternarybob/indago/pkg/models"
)

// fakeCandidate scripts one clickable element: what activating it does.
type fakeCandidate struct {
	kind        models.CandidateKind
	text        string
	activateErr error

	// opensContextURL, when set, makes activation open a new browsing
	// context resolving to this URL.
	opensContextURL string

	// inPlaceURL, when set, makes activation navigate the page tab itself.
	inPlaceURL string
}

// fakePageDef describes one servable page.
type fakePageDef struct {
	finalURL   string
	html       string
	candidates []*fakeCandidate
}

// fakeTab stands in for a browsing context.
type fakeTab struct {
	current    string
	pendingNav string
	closed     bool
}

// fakeAutomator is a scriptable PageAutomator for engine tests.
type fakeAutomator struct {
	pages    map[string]*fakePageDef
	loadErrs map[string]error

	loadedURLs    []string
	activations   []string
	closedTargets []*fakeTab

	lastOpened *fakeTab
}

func newFakeAutomator() *fakeAutomator {
	return &fakeAutomator{
		pages:    make(map[string]*fakePageDef),
		loadErrs: make(map[string]error),
	}
}

func (f *fakeAutomator) addPage(url, html string, candidates ...*fakeCandidate) {
	f.pages[url] = &fakePageDef{finalURL: url, html: html, candidates: candidates}
}

func (f *fakeAutomator) Load(ctx context.Context, url string) (*interfaces.RenderedPage, error) {
	f.loadedURLs = append(f.loadedURLs, url)

	if err, ok := f.loadErrs[url]; ok {
		return nil, &models.NavigationError{URL: url, Attempts: 3, Err: err}
	}

	def, ok := f.pages[url]
	if !ok {
		// Unknown URLs render as empty pages rather than failing, so child
		// requests for probe-discovered URLs stay cheap to script.
		def = &fakePageDef{finalURL: url, html: "<html><body></body></html>"}
	}

	return &interfaces.RenderedPage{
		URL:    def.finalURL,
		HTML:   def.html,
		Target: &fakeTab{current: def.finalURL},
	}, nil
}

func (f *fakeAutomator) Query(ctx context.Context, page *interfaces.RenderedPage, kind models.CandidateKind) ([]models.ClickableCandidate, error) {
	def, ok := f.pages[page.URL]
	if !ok {
		return nil, nil
	}

	var out []models.ClickableCandidate
	for _, c := range def.candidates {
		if c.kind != kind {
			continue
		}
		out = append(out, models.ClickableCandidate{Kind: c.kind, Text: c.text, Ref: c})
	}
	return out, nil
}

func (f *fakeAutomator) Activate(ctx context.Context, page *interfaces.RenderedPage, candidate models.ClickableCandidate, timeout time.Duration) error {
	scripted, ok := candidate.Ref.(*fakeCandidate)
	if !ok {
		return &models.ActivationError{Kind: string(candidate.Kind), Err: fmt.Errorf("unscripted candidate")}
	}

	f.activations = append(f.activations, scripted.text)

	if scripted.activateErr != nil {
		return &models.ActivationError{Kind: string(candidate.Kind), Err: scripted.activateErr}
	}

	if scripted.opensContextURL != "" {
		f.lastOpened = &fakeTab{current: scripted.opensContextURL}
	}
	if scripted.inPlaceURL != "" {
		if tab, ok := page.Target.(*fakeTab); ok {
			tab.pendingNav = scripted.inPlaceURL
		}
	}
	return nil
}

func (f *fakeAutomator) WaitForNewContext(ctx context.Context, timeout time.Duration) (interfaces.NavigationTarget, bool) {
	if f.lastOpened == nil {
		return nil, false
	}
	opened := f.lastOpened
	f.lastOpened = nil
	return opened, true
}

func (f *fakeAutomator) WaitForIdle(ctx context.Context, target interfaces.NavigationTarget, timeout time.Duration) bool {
	return true
}

func (f *fakeAutomator) CurrentURL(ctx context.Context, target interfaces.NavigationTarget) (string, error) {
	tab, ok := target.(*fakeTab)
	if !ok {
		return "", fmt.Errorf("unknown target")
	}

	// An in-place navigation lands between the before and after reads of the
	// settle wait.
	url := tab.current
	if tab.pendingNav != "" {
		tab.current = tab.pendingNav
		tab.pendingNav = ""
	}
	return url, nil
}

func (f *fakeAutomator) Evaluate(ctx context.Context, page *interfaces.RenderedPage, expression string, result any) error {
	if b, ok := result.(*bool); ok {
		*b = false
	}
	return nil
}

func (f *fakeAutomator) Close(ctx context.Context, target interfaces.NavigationTarget) error {
	tab, ok := target.(*fakeTab)
	if !ok {
		return fmt.Errorf("unknown target")
	}
	tab.closed = true
	f.closedTargets = append(f.closedTargets, tab)
	return nil
}

func (f *fakeAutomator) Shutdown(ctx context.Context) error {
	return nil
}

func (f *fakeAutomator) closedURLs() []string {
	var urls []string
	for _, tab := range f.closedTargets {
		urls = append(urls, tab.current)
	}
	return urls
}

// fakeSink collects flushed records in memory.
type fakeSink struct {
	results   []*pkgmodels.DiscoveryResult
	summaries []*pkgmodels.SessionSummary
	appendErr error
}

func (f *fakeSink) AppendResult(result *pkgmodels.DiscoveryResult) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.results = append(f.results, result)
	return nil
}

func (f *fakeSink) AppendSummary(summary *pkgmodels.SessionSummary) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.summaries = append(f.summaries, summary)
	return nil
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}
