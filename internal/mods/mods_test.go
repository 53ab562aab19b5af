package mods

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/wikibot/internal/fuzzy"
)

const searchJSON = `{
  "pagination": {"count": 3},
  "results": [
    {"name": "even-distribution", "title": "Even Distribution", "owner": "Bilka", "summary": "Spread items.", "downloads_count": 500000},
    {"name": "FNEI", "title": "FNEI", "owner": "npc_strider", "summary": "Recipe browser."},
    {"name": "", "title": "broken"},
    {"name": "bobinserters", "title": "Bob's Adjustable Inserters", "owner": "Bobingabout", "summary": "Inserters."}
  ]
}`

func TestParseSearchResponse(t *testing.T) {
	mods, err := ParseSearchResponse([]byte(searchJSON))
	require.NoError(t, err)
	require.Len(t, mods, 3)
	assert.Equal(t, "even-distribution", mods[0].Name)
	assert.Equal(t, uint64(500000), mods[0].DownloadsCount)

	_, err = ParseSearchResponse([]byte(`{"results": 3}`))
	assert.Error(t, err)

	mods, err = ParseSearchResponse([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, mods)
}

func TestResolve(t *testing.T) {
	mods, err := ParseSearchResponse([]byte(searchJSON))
	require.NoError(t, err)

	tests := []struct {
		query    string
		wantName string
		wantKind fuzzy.MatchKind
	}{
		{"even distribution", "even-distribution", fuzzy.Exact},
		{"even-distrobution", "even-distribution", fuzzy.Fuzzy},
		{"fnei", "FNEI", fuzzy.Exact},
		{"bob's adjustable inserter", "bobinserters", fuzzy.Fuzzy},
		{"factorissimo", "", fuzzy.NoMatch},
		{"", "", fuzzy.NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			m, match := Resolve(tt.query, mods, DefaultThreshold)
			assert.Equal(t, tt.wantKind, match.Kind)
			assert.Equal(t, tt.wantName, m.Name)
		})
	}
}

func TestLink(t *testing.T) {
	assert.Equal(t, "https://mods.factorio.com/mods/Bilka/even-distribution",
		Link(Mod{Name: "even-distribution", Owner: "Bilka"}))
}

func TestSummarize(t *testing.T) {
	var results []Mod
	for i := 0; i < 15; i++ {
		results = append(results, Mod{Name: fmt.Sprintf("mod-%d", i), Title: fmt.Sprintf("Mod %d", i), Owner: "someone"})
	}
	results[1].Title = ""

	out := Summarize(results, DefaultSummaryLimit)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "[Mod 0](https://mods.factorio.com/mods/someone/mod-0) by someone", lines[0])
	assert.Equal(t, "[mod-1](https://mods.factorio.com/mods/someone/mod-1) by someone", lines[1])

	assert.Len(t, strings.Split(strings.TrimSuffix(Summarize(results[:3], 0), "\n"), "\n"), 3)
	assert.Empty(t, Summarize(nil, 5))
}
