package discovery

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/ternarybob/arbor"
)

// Snapshotter converts rendered page HTML into a markdown snapshot stored on
// the seed's discovery record.
type Snapshotter struct {
	maxRunes int
	logger   arbor.ILogger
}

// NewSnapshotter creates a snapshotter bounded to maxRunes of markdown
func NewSnapshotter(maxRunes int, logger arbor.ILogger) *Snapshotter {
	if maxRunes < 1 {
		maxRunes = 20000
	}
	return &Snapshotter{
		maxRunes: maxRunes,
		logger:   logger,
	}
}

// Capture converts page HTML to markdown, truncated to the rune budget.
// Conversion failure yields an empty snapshot, never an error upstream.
func (s *Snapshotter) Capture(html, pageURL string) string {
	converter := md.NewConverter(pageURL, true, nil)

	markdown, err := converter.ConvertString(html)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", pageURL).Msg("Failed to convert page snapshot to markdown")
		return ""
	}

	markdown = strings.TrimSpace(markdown)
	if runes := []rune(markdown); len(runes) > s.maxRunes {
		markdown = string(runes[:s.maxRunes])
	}
	return markdown
}
