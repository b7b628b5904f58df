package models

// CandidateKind is the enumeration family a clickable candidate was found
// through. Candidates are pooled in enumeration order and deliberately not
// deduplicated across kinds.
type CandidateKind string

const (
	CandidateKindOnClick            CandidateKind = "onclick"
	CandidateKindFrameworkDirective CandidateKind = "framework-directive"
	CandidateKindActionAttribute    CandidateKind = "action-attribute"
	CandidateKindAriaRole           CandidateKind = "aria-role"
	CandidateKindClassIndicator     CandidateKind = "class-id-indicator"
	CandidateKindButtonElement      CandidateKind = "button-element"
)

// ElementRef is an opaque handle to a live DOM element, owned by the page
// automation layer. A ref is valid only for the lifetime of the page load
// that produced it and must never be retained past that page's lifecycle.
type ElementRef any

// ClickableCandidate is one interactive element the prober may activate.
type ClickableCandidate struct {
	Kind CandidateKind
	Text string
	Ref  ElementRef
}
