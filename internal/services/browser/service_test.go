package browser

import (
	"strings"
	"testing"

	"github.com/ternarybob/indago/internal/models"
)

func TestCandidateScript_AllKinds(t *testing.T) {
	kinds := []models.CandidateKind{
		models.CandidateKindOnClick,
		models.CandidateKindFrameworkDirective,
		models.CandidateKindActionAttribute,
		models.CandidateKindAriaRole,
		models.CandidateKindClassIndicator,
		models.CandidateKindButtonElement,
	}

	for _, kind := range kinds {
		t.Run(string(kind), func(t *testing.T) {
			script, err := candidateScript(kind, []string{"btn", "cta"}, 25)
			if err != nil {
				t.Fatalf("candidateScript(%s) failed: %v", kind, err)
			}
			if !strings.Contains(script, probeMarker) {
				t.Error("Script should stamp the probe marker attribute")
			}
			if !strings.Contains(script, string(kind)) {
				t.Error("Script should embed the kind in generated refs")
			}
		})
	}
}

func TestCandidateScript_UnknownKind(t *testing.T) {
	if _, err := candidateScript(models.CandidateKind("bogus"), nil, 25); err == nil {
		t.Error("Unknown candidate kind should be rejected")
	}
}

func TestCandidateScript_EmbedsClickableIndicators(t *testing.T) {
	indicators := []string{"btn", "nav-link", "dropdown"}
	script, err := candidateScript(models.CandidateKindClassIndicator, indicators, 25)
	if err != nil {
		t.Fatalf("candidateScript failed: %v", err)
	}
	for _, indicator := range indicators {
		if !strings.Contains(script, indicator) {
			t.Errorf("Script should embed indicator %q", indicator)
		}
	}
	// Anchors with a real href are excluded from this kind
	if !strings.Contains(script, "href") {
		t.Error("Class-indicator script should check for navigable hrefs")
	}
}

func TestCandidateScript_RespectsLimit(t *testing.T) {
	script, err := candidateScript(models.CandidateKindOnClick, nil, 7)
	if err != nil {
		t.Fatalf("candidateScript failed: %v", err)
	}
	if !strings.Contains(script, "found.length < 7") {
		t.Error("Script should bound enumeration at the configured limit")
	}
}
