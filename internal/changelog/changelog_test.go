package changelog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sanandreas/govportal/internal/changelog"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullHeader(t *testing.T) {
	entries := changelog.Parse("## v1.2 - Title Here (2024-05-01)\nbody text\n")
	require.Len(t, entries, 1)
	assert.Equal(t, "v1.2", entries[0].Version)
	assert.Equal(t, "Title Here", entries[0].Title)
	assert.Equal(t, "2024-05-01", entries[0].Date)
	assert.Equal(t, "body text\n", entries[0].Content)
}

func TestParse_NoDash(t *testing.T) {
	entries := changelog.Parse("## v2.0\nbody\n")
	require.Len(t, entries, 1)
	assert.Equal(t, "v2.0", entries[0].Version)
	assert.Equal(t, changelog.DefaultTitle, entries[0].Title)
	assert.Empty(t, entries[0].Date)
}

func TestParse_NoVersionToken(t *testing.T) {
	entries := changelog.Parse("## First\na\n## v0.2 - Second\nb\n## Third\nc\n")
	require.Len(t, entries, 3)
	// Fallback versions are positional.
	assert.Equal(t, "v1", entries[0].Version)
	assert.Equal(t, "First", entries[0].Title)
	assert.Equal(t, "v0.2", entries[1].Version)
	assert.Equal(t, "v3", entries[2].Version)
	assert.Equal(t, "Third", entries[2].Title)
}

func TestParse_PreambleIgnored(t *testing.T) {
	entries := changelog.Parse("# Changelog\n\nintro prose\n\n## v1.0 - A\nx\n")
	require.Len(t, entries, 1)
	assert.Equal(t, "v1.0", entries[0].Version)
}

func TestParse_Empty(t *testing.T) {
	assert.Empty(t, changelog.Parse(""))
	assert.Empty(t, changelog.Parse("no sections here\n"))
}

func TestParse_OrderPreserved(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "sample.md"))
	require.NoError(t, err)

	entries := changelog.Parse(string(raw))
	require.Len(t, entries, 3)
	assert.Equal(t, "v1.2", entries[0].Version)
	assert.Equal(t, "v1.1", entries[1].Version)
	assert.Equal(t, "v1.0", entries[2].Version)
}

// Re-parsing the re-serialised form must yield identical entries.
func TestParse_RoundTrip(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "sample.md"))
	require.NoError(t, err)

	first := changelog.Parse(string(raw))
	second := changelog.Parse(changelog.FormatAll(first))
	assert.Equal(t, first, second)
}

func TestParse_Golden(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "sample.md"))
	require.NoError(t, err)

	out, err := json.MarshalIndent(changelog.Parse(string(raw)), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "changelog", append(out, '\n'))
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "changelog.json")
	require.NoError(t, changelog.Generate(filepath.Join("testdata", "sample.md"), dst))

	raw, err := os.ReadFile(dst)
	require.NoError(t, err)

	var entries []changelog.Entry
	require.NoError(t, json.Unmarshal(raw, &entries))
	assert.Len(t, entries, 3)
}

func TestGenerate_MissingSource(t *testing.T) {
	err := changelog.Generate(filepath.Join(t.TempDir(), "absent.md"), filepath.Join(t.TempDir(), "out.json"))
	require.Error(t, err)
}
