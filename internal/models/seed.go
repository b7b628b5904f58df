package models

// SeedTarget identifies one company under investigation: the caller-supplied
// name and homepage URL. Immutable for the duration of a run.
type SeedTarget struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}
