package classifier

// RuleSet is the static configuration data the classifier evaluates against.
// The lists are data, not code: defaults ship here and the config file may
// extend each one independently of the classifier logic.
type RuleSet struct {
	// InternalToolIndicators are path-segment tokens suggestive of an
	// operational or internal surface.
	InternalToolIndicators []string

	// ClickableIndicators are class/id substrings suggestive of a
	// framework-rendered interactive control. Consumed by the prober's
	// class/id candidate family.
	ClickableIndicators []string

	// ExcludedDomains is the deny-list of known third-party platforms.
	// A hostname equal to or under any entry is excluded.
	ExcludedDomains []string

	// ExcludedSchemes are non-navigable URL schemes.
	ExcludedSchemes []string
}

// DefaultRuleSet returns the built-in heuristic lists.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		InternalToolIndicators: []string{
			"login", "signin", "signup", "register", "auth", "sso",
			"dashboard", "admin", "console", "portal", "app", "api",
			"docs", "developer", "internal", "tools", "status", "account",
			"billing", "support",
		},
		ClickableIndicators: []string{
			"btn", "button", "cta", "clickable", "nav-link", "menu-item",
			"dropdown", "toggle",
		},
		ExcludedDomains: []string{
			"facebook.com", "twitter.com", "x.com", "instagram.com",
			"linkedin.com", "youtube.com", "tiktok.com", "pinterest.com",
			"reddit.com", "github.com", "gitlab.com", "bitbucket.org",
			"discord.com", "discord.gg", "slack.com", "telegram.org",
			"t.me", "whatsapp.com", "wa.me",
		},
		ExcludedSchemes: []string{
			"mailto", "tel", "sms", "javascript", "data", "ftp", "file",
		},
	}
}

// Extend returns a copy of r with extra entries appended to each list.
// Duplicates are harmless; matching is containment-based.
func (r RuleSet) Extend(extra RuleSet) RuleSet {
	out := RuleSet{
		InternalToolIndicators: append([]string{}, r.InternalToolIndicators...),
		ClickableIndicators:    append([]string{}, r.ClickableIndicators...),
		ExcludedDomains:        append([]string{}, r.ExcludedDomains...),
		ExcludedSchemes:        append([]string{}, r.ExcludedSchemes...),
	}
	out.InternalToolIndicators = append(out.InternalToolIndicators, extra.InternalToolIndicators...)
	out.ClickableIndicators = append(out.ClickableIndicators, extra.ClickableIndicators...)
	out.ExcludedDomains = append(out.ExcludedDomains, extra.ExcludedDomains...)
	out.ExcludedSchemes = append(out.ExcludedSchemes, extra.ExcludedSchemes...)
	return out
}
