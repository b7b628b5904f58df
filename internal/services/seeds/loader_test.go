package seeds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func writeSeedsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FiltersInactiveEntries(t *testing.T) {
	path := writeSeedsFile(t, `companies:
  - name: Acme
    url: https://acme.com
  - name: Globex
    url: https://globex.example
    inactive: true
  - name: Initech
    url: https://initech.example
`)

	targets, err := Load(path, arbor.NewLogger())
	require.NoError(t, err)

	require.Len(t, targets, 2)
	assert.Equal(t, "Acme", targets[0].Name)
	assert.Equal(t, "https://acme.com", targets[0].URL)
	assert.Equal(t, "Initech", targets[1].Name, "inactive entry must be skipped in order")
}

func TestLoad_NamelessEntryFallsBackToURL(t *testing.T) {
	path := writeSeedsFile(t, `companies:
  - url: https://acme.com
`)

	targets, err := Load(path, arbor.NewLogger())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "https://acme.com", targets[0].Name)
}

func TestLoad_SkipsEntriesWithoutURL(t *testing.T) {
	path := writeSeedsFile(t, `companies:
  - name: Ghost
  - name: Acme
    url: https://acme.com
`)

	targets, err := Load(path, arbor.NewLogger())
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "Acme", targets[0].Name)
}

func TestLoad_ZeroActiveEntriesIsAnError(t *testing.T) {
	path := writeSeedsFile(t, `companies:
  - name: Globex
    url: https://globex.example
    inactive: true
`)

	_, err := Load(path, arbor.NewLogger())
	assert.Error(t, err)
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), arbor.NewLogger())
	assert.Error(t, err)
}

func TestLoad_MalformedYAMLIsAnError(t *testing.T) {
	path := writeSeedsFile(t, "companies: [not: {valid")

	_, err := Load(path, arbor.NewLogger())
	assert.Error(t, err)
}
