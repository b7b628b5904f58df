package classifier

import (
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/indago/internal/models"
)

// Classifier decides domain ownership, exclusion, and "different service"
// status for candidate URLs. All methods are deterministic given a fixed
// RuleSet and perform no I/O; running the same input twice yields the same
// verdict.
type Classifier struct {
	rules  RuleSet
	logger arbor.ILogger
}

// New creates a classifier over the given rule set.
func New(rules RuleSet, logger arbor.ILogger) *Classifier {
	return &Classifier{
		rules:  rules,
		logger: logger,
	}
}

// ExtractDomain returns the lower-cased hostname of rawURL, or the empty
// string when the value has no parseable host. Parse failures are logged and
// swallowed; they never propagate to the caller.
func (c *Classifier) ExtractDomain(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		c.logger.Debug().
			Err(&models.MalformedURLError{Raw: rawURL, Err: err}).
			Msg("Defaulting hostname to empty for unparsable URL")
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// ShouldExclude reports whether the URL is off-limits for discovery: a
// non-navigable scheme, or a hostname equal to or under an entry in the
// third-party deny-list.
func (c *Classifier) ShouldExclude(rawURL string) bool {
	lowered := strings.ToLower(strings.TrimSpace(rawURL))
	for _, scheme := range c.rules.ExcludedSchemes {
		if strings.HasPrefix(lowered, scheme+":") {
			return true
		}
	}

	host := c.ExtractDomain(rawURL)
	if host == "" {
		return false
	}
	for _, domain := range c.rules.ExcludedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// IsInternalToolPath reports whether any /-delimited segment of path carries
// an internal-tool indicator token, and which token matched. A token matches
// a segment only when it equals the whole segment or a hyphen-delimited
// fragment of it; a token buried as a plain substring of a longer word never
// matches.
func (c *Classifier) IsInternalToolPath(path string) (bool, string) {
	for _, segment := range strings.Split(strings.ToLower(path), "/") {
		if segment == "" {
			continue
		}
		for _, token := range c.rules.InternalToolIndicators {
			if segmentMatchesToken(segment, token) {
				return true, token
			}
		}
	}
	return false, ""
}

func segmentMatchesToken(segment, token string) bool {
	if segment == token {
		return true
	}
	for _, fragment := range strings.Split(segment, "-") {
		if fragment == token {
			return true
		}
	}
	return false
}

// IsSameCompany reports whether the candidate URL plausibly belongs to the
// company that owns originDomain: equal hostname, a subdomain of it, or an
// internal-tool path even across different hostnames.
func (c *Classifier) IsSameCompany(originDomain, candidateURL string) bool {
	origin := strings.ToLower(strings.TrimSpace(originDomain))
	candidateHost := c.ExtractDomain(candidateURL)
	if origin != "" && candidateHost != "" {
		if candidateHost == origin || strings.HasSuffix(candidateHost, "."+origin) {
			return true
		}
	}
	matched, _ := c.IsInternalToolPath(c.pathOf(candidateURL))
	return matched
}

// Classify evaluates a candidate URL against the origin it was found on.
// First matching rule wins:
//  1. excluded scheme or deny-listed host
//  2. hostnames differ, always a different-service signal
//  3. no internal-tool indicator in the candidate path, a plain subpage
//  4. candidate path strictly extends the origin path, a deeper page of the
//     same feature rather than a new service
//  5. otherwise a different service by path indicator
func (c *Classifier) Classify(originURL, candidateURL string) models.ClassificationVerdict {
	if c.ShouldExclude(candidateURL) {
		return models.VerdictExcluded
	}

	if c.ExtractDomain(originURL) != c.ExtractDomain(candidateURL) {
		return models.VerdictDifferentHostname
	}

	candidatePath := c.pathOf(candidateURL)
	if matched, _ := c.IsInternalToolPath(candidatePath); !matched {
		return models.VerdictSameOriginSubpage
	}

	if isStrictPathExtension(c.pathOf(originURL), candidatePath) {
		return models.VerdictSameOriginSubpage
	}

	return models.VerdictDifferentServiceByPathIndicator
}

// BrandTokenMatch is the coarse secondary acceptance rule for cross-hostname
// anchors: the lower-cased URL text contains the company's lower-cased name.
// Applied independently of Classify.
func (c *Classifier) BrandTokenMatch(companyName, candidateURL string) bool {
	name := strings.ToLower(strings.TrimSpace(companyName))
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(candidateURL), name)
}

func (c *Classifier) pathOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Path)
}

// isStrictPathExtension reports whether candidate textually extends origin:
// same prefix, strictly longer. A root origin path is never an extension
// base, otherwise every same-host candidate would count as a subpage.
func isStrictPathExtension(originPath, candidatePath string) bool {
	if originPath == "" || originPath == "/" {
		return false
	}
	return strings.HasPrefix(candidatePath, originPath) && len(candidatePath) > len(originPath)
}
