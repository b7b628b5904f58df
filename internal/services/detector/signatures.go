package detector

// Signature describes one detectable SDK: the vendor, the global symbol its
// loader installs on window, and a coarse product category.
type Signature struct {
	Vendor       string
	GlobalSymbol string
	Category     string
}

// DefaultSignatures returns the built-in vendor table. The table is data, not
// code; config may extend it without touching detection logic.
func DefaultSignatures() []Signature {
	return []Signature{
		{Vendor: "Sentry", GlobalSymbol: "Sentry", Category: "error-monitoring"},
		{Vendor: "Datadog RUM", GlobalSymbol: "DD_RUM", Category: "observability"},
		{Vendor: "Datadog Logs", GlobalSymbol: "DD_LOGS", Category: "observability"},
		{Vendor: "New Relic", GlobalSymbol: "newrelic", Category: "observability"},
		{Vendor: "Google Analytics", GlobalSymbol: "ga", Category: "analytics"},
		{Vendor: "Google Tag Manager", GlobalSymbol: "google_tag_manager", Category: "analytics"},
		{Vendor: "Segment", GlobalSymbol: "analytics", Category: "analytics"},
		{Vendor: "Hotjar", GlobalSymbol: "hj", Category: "session-replay"},
		{Vendor: "Mixpanel", GlobalSymbol: "mixpanel", Category: "analytics"},
		{Vendor: "Amplitude", GlobalSymbol: "amplitude", Category: "analytics"},
		{Vendor: "LogRocket", GlobalSymbol: "LogRocket", Category: "session-replay"},
		{Vendor: "FullStory", GlobalSymbol: "FS", Category: "session-replay"},
		{Vendor: "Intercom", GlobalSymbol: "Intercom", Category: "support"},
		{Vendor: "Zendesk", GlobalSymbol: "zE", Category: "support"},
		{Vendor: "Heap", GlobalSymbol: "heap", Category: "analytics"},
		{Vendor: "Plausible", GlobalSymbol: "plausible", Category: "analytics"},
	}
}
