package e2e

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/app"
	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/models"
)

// requireBrowser skips the test when no Chrome binary is installed
func requireBrowser(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"google-chrome", "google-chrome-stable", "chromium",
		"chromium-browser", "chrome", "headless-shell", "headless_shell",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return
		}
	}
	t.Skip("No Chrome binary found on PATH, skipping browser test")
}

const homepage = `<!DOCTYPE html>
<html>
<head>
<title>Acme Corp</title>
<script>window.Sentry = {captureException: function() {}};</script>
</head>
<body>
<h1>Acme</h1>
<nav>
  <a href="/about">About us</a>
  <a href="/admin">Admin sign-in</a>
</nav>
<button onclick="this.textContent = 'clicked'">Newsletter</button>
<button onclick="window.open('/tools/reports', '_blank')">Open reporting tools</button>
</body>
</html>`

const childPage = `<!DOCTYPE html>
<html><head><title>Acme</title></head><body><p>Nothing further here.</p></body></html>`

func newCompanySite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/" {
			w.Write([]byte(homepage))
			return
		}
		w.Write([]byte(childPage))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func e2eConfig(t *testing.T, dbPath string) *common.Config {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = dbPath
	cfg.Logging.Output = []string{"stdout"}
	cfg.Logging.Level = "warn"
	cfg.Browser.PoolSize = 1
	cfg.Browser.NavigationTimeout = 30 * time.Second
	cfg.Browser.NavigationRetries = 2
	cfg.Browser.ActivationTimeout = 3 * time.Second
	cfg.Browser.NewContextTimeout = 2 * time.Second
	cfg.Browser.IdleTimeout = 3 * time.Second
	cfg.Browser.SettleDelay = 300 * time.Millisecond
	cfg.Browser.RequestsPerSecond = 50
	cfg.Browser.RequestBurst = 10
	cfg.Discovery.RequestBudget = 8
	cfg.Discovery.MaxCandidatesPerPage = 10
	cfg.Discovery.DetectTools = true
	cfg.Discovery.IncludeSnapshot = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Test configuration is invalid: %v", err)
	}
	return cfg
}

// TestDiscoverySessionAgainstLiveBrowser drives a full session through real
// Chrome against a local site: static anchors, a window.open probe, SDK
// detection, the snapshot, and persistence.
func TestDiscoverySessionAgainstLiveBrowser(t *testing.T) {
	requireBrowser(t)
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	server := newCompanySite(t)
	cfg := e2eConfig(t, filepath.Join(t.TempDir(), "indago.db"))

	application, err := app.New(cfg, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to initialize application: %v", err)
	}
	defer application.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	targets := []models.SeedTarget{{Name: "Acme", URL: server.URL}}
	if err := application.RunDiscoveryTargets(ctx, targets); err != nil {
		t.Fatalf("Discovery session failed: %v", err)
	}

	store := application.StorageManager.DiscoveryStorage()
	results, err := store.ResultsBySeed(server.URL)
	if err != nil {
		t.Fatalf("Failed to read stored results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 stored result, got %d", len(results))
	}
	result := results[0]

	wantDiscovered := []string{server.URL + "/admin", server.URL + "/tools/reports"}
	for _, want := range wantDiscovered {
		if !containsURL(result.PotentialDifferentServices, want) {
			t.Errorf("Expected %s in discovered services, got %v", want, result.PotentialDifferentServices)
		}
	}
	if containsURL(result.PotentialDifferentServices, server.URL) {
		t.Error("The seed itself must never be reported as a different service")
	}
	if !containsURL(result.AllExploredURLs, server.URL+"/about") {
		t.Errorf("Expected /about in explored URLs, got %v", result.AllExploredURLs)
	}

	if result.RequestsProcessed != 3 {
		t.Errorf("Expected 3 requests (seed plus 2 children), got %d", result.RequestsProcessed)
	}

	foundSentry := false
	for _, tool := range result.DetectedTools {
		if tool.Vendor == "Sentry" {
			foundSentry = true
		}
	}
	if !foundSentry {
		t.Errorf("Expected the Sentry global to be detected, got %v", result.DetectedTools)
	}

	if result.Snapshot == "" {
		t.Error("Expected a markdown snapshot of the landing page")
	}

	summaries, err := store.ListSummaries(0)
	if err != nil {
		t.Fatalf("Failed to read stored summaries: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("Expected 1 session summary, got %d", len(summaries))
	}
	summary := summaries[0]
	children := summary.StartURLChildren[server.URL]
	for _, want := range wantDiscovered {
		if !containsURL(children, want) {
			t.Errorf("Expected %s in the child registry, got %v", want, children)
		}
	}
	if summary.BudgetExhausted {
		t.Error("An 8-request budget should not be exhausted by 3 requests")
	}
}

func containsURL(list []string, want string) bool {
	for _, v := range list {
		if models.SameNormalized(v, want) {
			return true
		}
	}
	return false
}
