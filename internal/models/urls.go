package models

import (
	"net/url"
	"sort"
	"strings"
)

// NormalizeURL produces the canonical form used for dedup and identity
// comparisons: fragment stripped, query parameters sorted, a bare root path
// dropped, and the whole value lower-cased. Unparsable input falls back to a
// trimmed lower-cased copy.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(rawURL))
	}

	u.Fragment = ""
	if u.Path == "/" {
		u.Path = ""
	}

	// Sort query parameters for consistent comparison
	if u.RawQuery != "" {
		query := u.Query()
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		values := url.Values{}
		for _, k := range keys {
			values[k] = query[k]
		}
		u.RawQuery = values.Encode()
	}

	return strings.ToLower(u.String())
}

// SameNormalized reports whether two URLs normalize to the same canonical
// form.
func SameNormalized(a, b string) bool {
	return NormalizeURL(a) == NormalizeURL(b)
}

// IsTestURL reports whether a URL points at a loopback or local-only host.
// Such targets are only crawlable in development mode.
func IsTestURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch host {
	case "localhost", "127.0.0.1", "0.0.0.0", "::1":
		return true
	}
	return strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local")
}
