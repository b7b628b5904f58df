package seeds

import (
	"fmt"
	"os"
	"strings"

	"github.com/ternarybob/arbor"
	"gopkg.in/yaml.v3"

	"github.com/ternarybob/indago/internal/models"
)

type seedsFile struct {
	Companies []seedEntry `yaml:"companies"`
}

type seedEntry struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Inactive bool   `yaml:"inactive"`
}

// Load reads a company-directory YAML file and returns the active seed
// targets. Inactive entries and entries without a URL are filtered out. A
// file that yields zero active targets is an error; missing input is the one
// fatal condition of a run.
func Load(path string, logger arbor.ILogger) ([]models.SeedTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds file %s: %w", path, err)
	}

	var file seedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seeds file %s: %w", path, err)
	}

	var targets []models.SeedTarget
	skipped := 0
	for _, entry := range file.Companies {
		if entry.Inactive {
			skipped++
			continue
		}

		url := strings.TrimSpace(entry.URL)
		if url == "" {
			logger.Warn().Str("name", entry.Name).Msg("Skipping seed entry without a URL")
			skipped++
			continue
		}

		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = url
		}

		targets = append(targets, models.SeedTarget{Name: name, URL: url})
	}

	if len(targets) == 0 {
		return nil, fmt.Errorf("seeds file %s contains no active entries", path)
	}

	logger.Info().
		Str("path", path).
		Int("active", len(targets)).
		Int("skipped", skipped).
		Msg("Seed targets loaded")

	return targets, nil
}
