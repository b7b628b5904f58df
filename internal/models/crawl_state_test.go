package models

import "testing"

func TestOrderedSetPreservesInsertionOrder(t *testing.T) {
	set := NewOrderedSet()
	for _, v := range []string{"c", "a", "b", "a", "c"} {
		set.Add(v)
	}

	got := set.Values()
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestOrderedSetAddReportsInsertion(t *testing.T) {
	set := NewOrderedSet()
	if !set.Add("x") {
		t.Error("first Add should report insertion")
	}
	if set.Add("x") {
		t.Error("duplicate Add should report no insertion")
	}
	if set.Len() != 1 {
		t.Errorf("expected length 1, got %d", set.Len())
	}
}

func TestOrderedSetValuesReturnsCopy(t *testing.T) {
	set := NewOrderedSet()
	set.Add("a")
	set.Add("b")

	values := set.Values()
	values[0] = "mutated"

	if set.Values()[0] != "a" {
		t.Error("mutating the returned slice must not affect the set")
	}
}

func TestCrawlStateDiscoveredNeverContainsSeed(t *testing.T) {
	seed := "https://acme.com"

	tests := []struct {
		name     string
		url      string
		admitted bool
	}{
		{"exact seed", "https://acme.com", false},
		{"seed with trailing slash", "https://acme.com/", false},
		{"seed with different case", "HTTPS://ACME.COM", false},
		{"seed with fragment", "https://acme.com#main", false},
		{"different path", "https://acme.com/admin", true},
		{"different host", "https://tools.acme.com/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewCrawlState()
			state.RecordDiscovered(seed, tt.url)
			got := len(state.DiscoveredServices(seed)) == 1
			if got != tt.admitted {
				t.Errorf("RecordDiscovered(%q): admitted=%v, expected %v", tt.url, got, tt.admitted)
			}
		})
	}
}

func TestCrawlStateSeedGuardSurvivesVariantSpellings(t *testing.T) {
	state := NewCrawlState()
	seed := "https://acme.com"
	state.RecordDiscovered(seed, "HTTPS://ACME.COM/#top")
	state.RecordDiscovered(seed, "https://acme.com/admin")

	got := state.DiscoveredServices(seed)
	if len(got) != 1 || got[0] != "https://acme.com/admin" {
		t.Errorf("expected only the admin URL to be admitted, got %v", got)
	}
}

func TestCrawlStateRegistriesAreIndependent(t *testing.T) {
	state := NewCrawlState()
	state.RecordExplored("https://acme.com", "https://acme.com/blog")
	state.RecordChild("https://acme.com", "https://acme.com/admin")
	state.RecordExplored("https://globex.example", "https://globex.example/about")

	if n := len(state.ExploredURLs("https://acme.com")); n != 1 {
		t.Errorf("expected 1 explored URL for acme, got %d", n)
	}
	if n := len(state.DiscoveredServices("https://acme.com")); n != 0 {
		t.Errorf("expected no discovered services for acme, got %d", n)
	}
	if n := len(state.ChildURLs("https://acme.com")); n != 1 {
		t.Errorf("expected 1 child URL for acme, got %d", n)
	}
	if n := len(state.ExploredURLs("https://globex.example")); n != 1 {
		t.Errorf("expected 1 explored URL for globex, got %d", n)
	}
}

func TestCrawlStateStartURLChildren(t *testing.T) {
	state := NewCrawlState()
	state.RecordChild("https://acme.com", "https://acme.com/admin")
	state.RecordChild("https://acme.com", "https://tools.acme.com/")
	state.RecordChild("https://acme.com", "https://acme.com/admin")

	children := state.StartURLChildren()
	got, ok := children["https://acme.com"]
	if !ok {
		t.Fatal("expected an entry for the seed URL")
	}
	want := []string{"https://acme.com/admin", "https://tools.acme.com/"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
