package discovery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/common"
	"github.com/ternarybob/indago/internal/models"
	"github.com/ternarybob/indago/internal/services/classifier"
)

func testConfig(budget int) *common.Config {
	cfg := common.NewDefaultConfig()
	cfg.Browser.SettleDelay = 0
	cfg.Browser.NewContextTimeout = 10 * time.Millisecond
	cfg.Browser.IdleTimeout = 10 * time.Millisecond
	cfg.Browser.ActivationTimeout = 10 * time.Millisecond
	cfg.Discovery.RequestBudget = budget
	cfg.Discovery.DetectTools = false
	cfg.Discovery.IncludeSnapshot = false
	return cfg
}

func newTestService(fake *fakeAutomator, sink *fakeSink, budget int) *Service {
	logger := arbor.NewLogger()
	cls := classifier.New(classifier.DefaultRuleSet(), logger)
	return NewService(testConfig(budget), fake, cls, nil, sink, logger)
}

func TestService_EndToEndSeedDiscovery(t *testing.T) {
	fake := newFakeAutomator()
	fake.addPage("https://acme.com", `<html><body>
<a href="https://acme.com/admin">Admin</a>
<a href="/blog/welcome">Blog</a>
<button onclick="window.open('https://tools.acme.com/')">Tools</button>
</body></html>`,
		&fakeCandidate{kind: models.CandidateKindOnClick, text: "Tools", opensContextURL: "https://tools.acme.com/"},
	)
	sink := &fakeSink{}
	svc := newTestService(fake, sink, 10)

	seeds := []models.SeedTarget{{Name: "Acme", URL: "https://acme.com"}}
	summary, err := svc.Run(context.Background(), seeds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(sink.results) != 1 {
		t.Fatalf("Expected 1 result record, got %d", len(sink.results))
	}
	result := sink.results[0]

	for _, want := range []string{"https://acme.com/admin", "https://tools.acme.com/"} {
		if !contains(result.PotentialDifferentServices, want) {
			t.Errorf("Expected %s in potential different services, got %v", want, result.PotentialDifferentServices)
		}
	}
	if contains(result.PotentialDifferentServices, "https://acme.com") {
		t.Error("The seed URL must never appear among its own discovered services")
	}

	for _, want := range []string{
		"https://acme.com",
		"https://acme.com/admin",
		"https://acme.com/blog/welcome",
		"https://tools.acme.com/",
	} {
		if !contains(result.AllExploredURLs, want) {
			t.Errorf("Expected %s in explored URLs, got %v", want, result.AllExploredURLs)
		}
	}

	children := summary.StartURLChildren["https://acme.com"]
	for _, want := range []string{"https://acme.com/admin", "https://tools.acme.com/"} {
		if !contains(children, want) {
			t.Errorf("Expected %s in start URL children, got %v", want, children)
		}
	}

	// Seed plus the two enqueued children.
	if result.RequestsProcessed != 3 {
		t.Errorf("Expected 3 requests processed for the seed, got %d", result.RequestsProcessed)
	}
	if summary.RequestsProcessed != 3 {
		t.Errorf("Expected 3 requests processed in the session, got %d", summary.RequestsProcessed)
	}
	if summary.SeedsProcessed != 1 {
		t.Errorf("Expected 1 seed processed, got %d", summary.SeedsProcessed)
	}
	if summary.BudgetExhausted {
		t.Error("Budget of 10 must not be exhausted by 3 requests")
	}
	if len(sink.summaries) != 1 {
		t.Errorf("Expected 1 summary record, got %d", len(sink.summaries))
	}
	if result.ID == "" || summary.ID == "" {
		t.Error("Records must carry generated IDs")
	}
}

func TestService_BudgetHaltsEnqueuing(t *testing.T) {
	fake := newFakeAutomator()
	fake.addPage("https://acme.com", `<html><body><a href="/admin">Admin</a></body></html>`)
	sink := &fakeSink{}
	svc := newTestService(fake, sink, 1)

	summary, err := svc.Run(context.Background(), []models.SeedTarget{{Name: "Acme", URL: "https://acme.com"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.RequestsProcessed != 1 {
		t.Errorf("Expected exactly 1 request processed, got %d", summary.RequestsProcessed)
	}
	if !summary.BudgetExhausted {
		t.Error("Expected the budget to be reported exhausted")
	}
	if len(summary.StartURLChildren["https://acme.com"]) != 0 {
		t.Errorf("No children may be registered once the budget is spent, got %v", summary.StartURLChildren)
	}

	result := sink.results[0]
	if !contains(result.PotentialDifferentServices, "https://acme.com/admin") {
		t.Error("The in-flight request still records its discoveries")
	}
}

func TestService_BudgetSpansSeeds(t *testing.T) {
	fake := newFakeAutomator()
	fake.addPage("https://acme.com", `<html><body><a href="/admin">Admin</a></body></html>`)
	fake.addPage("https://globex.com", `<html><body><a href="/console">Console</a></body></html>`)
	sink := &fakeSink{}
	svc := newTestService(fake, sink, 2)

	seeds := []models.SeedTarget{
		{Name: "Acme", URL: "https://acme.com"},
		{Name: "Globex", URL: "https://globex.com"},
	}
	summary, err := svc.Run(context.Background(), seeds)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.SeedsProcessed != 2 {
		t.Errorf("Every seed still flushes a record, got %d processed", summary.SeedsProcessed)
	}
	if len(sink.results) != 2 {
		t.Fatalf("Expected 2 result records, got %d", len(sink.results))
	}

	// The first seed and its one child consume the whole budget.
	if sink.results[0].RequestsProcessed != 2 {
		t.Errorf("Expected the first seed to consume 2 requests, got %d", sink.results[0].RequestsProcessed)
	}
	if sink.results[1].RequestsProcessed != 0 {
		t.Errorf("Expected the second seed to process nothing, got %d", sink.results[1].RequestsProcessed)
	}
	if len(sink.results[1].AllExploredURLs) != 0 {
		t.Errorf("A seed skipped for budget must not explore, got %v", sink.results[1].AllExploredURLs)
	}
	if !summary.BudgetExhausted {
		t.Error("Expected the budget to be reported exhausted")
	}
}

func TestService_EmptySeedsIsFatal(t *testing.T) {
	sink := &fakeSink{}
	svc := newTestService(newFakeAutomator(), sink, 10)

	if _, err := svc.Run(context.Background(), nil); err == nil {
		t.Fatal("Expected an error for empty seed input")
	}
	if len(sink.results) != 0 || len(sink.summaries) != 0 {
		t.Error("Nothing may be flushed for a rejected run")
	}
}

func TestService_LoadFailureDoesNotAbortSession(t *testing.T) {
	fake := newFakeAutomator()
	fake.loadErrs["https://down.example"] = fmt.Errorf("connection refused")
	fake.addPage("https://acme.com", `<html><body><a href="/admin">Admin</a></body></html>`)
	sink := &fakeSink{}
	svc := newTestService(fake, sink, 10)

	seeds := []models.SeedTarget{
		{Name: "Down", URL: "https://down.example"},
		{Name: "Acme", URL: "https://acme.com"},
	}
	summary, err := svc.Run(context.Background(), seeds)
	if err != nil {
		t.Fatalf("A failed seed must not fail the session: %v", err)
	}

	if summary.SeedsProcessed != 2 {
		t.Errorf("Expected both seeds processed, got %d", summary.SeedsProcessed)
	}
	if len(sink.results) != 2 {
		t.Fatalf("Expected 2 result records, got %d", len(sink.results))
	}
	if len(sink.results[0].PotentialDifferentServices) != 0 {
		t.Errorf("The failed seed should have no discoveries, got %v", sink.results[0].PotentialDifferentServices)
	}
	if !contains(sink.results[1].PotentialDifferentServices, "https://acme.com/admin") {
		t.Error("The healthy seed should still complete its crawl")
	}
}

func TestService_ProductionRejectsLocalSeeds(t *testing.T) {
	fake := newFakeAutomator()
	sink := &fakeSink{}
	logger := arbor.NewLogger()
	cfg := testConfig(5)
	cfg.Environment = "production"
	svc := NewService(cfg, fake, classifier.New(classifier.DefaultRuleSet(), logger), nil, sink, logger)

	_, err := svc.Run(context.Background(), []models.SeedTarget{{Name: "Local", URL: "http://127.0.0.1:8080"}})
	if err == nil {
		t.Fatal("Expected production mode to reject loopback seeds")
	}
	if len(sink.results) != 0 {
		t.Error("No records should be written for a rejected session")
	}
}

func TestService_CancelledContextStopsBeforeNextSeed(t *testing.T) {
	fake := newFakeAutomator()
	fake.addPage("https://acme.com", `<html><body></body></html>`)
	sink := &fakeSink{}
	svc := newTestService(fake, sink, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := svc.Run(ctx, []models.SeedTarget{{Name: "Acme", URL: "https://acme.com"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.SeedsProcessed != 0 {
		t.Errorf("Expected no seeds processed under a cancelled context, got %d", summary.SeedsProcessed)
	}
	if len(sink.summaries) != 1 {
		t.Error("The session summary is still flushed on cancellation")
	}
}
