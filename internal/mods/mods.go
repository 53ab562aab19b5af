// Package mods resolves a requested mod name against mod portal search
// results. Fetching the results is the caller's job.
package mods

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fyrsmithlabs/wikibot/internal/fuzzy"
)

const (
	// DefaultThreshold is the maximum edit distance between the request and
	// a mod's name or title.
	DefaultThreshold = 3
	// DefaultSummaryLimit caps the search results listing.
	DefaultSummaryLimit = 10

	portalURL = "https://mods.factorio.com/mods"
)

// Mod is one entry of a mod portal search response.
type Mod struct {
	Name           string `json:"name"`
	Title          string `json:"title"`
	Owner          string `json:"owner"`
	Summary        string `json:"summary"`
	DownloadsCount uint64 `json:"downloads_count"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
	Homepage       string `json:"homepage,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
}

type searchResponse struct {
	Results []Mod `json:"results"`
}

// ParseSearchResponse decodes the results array of a search response.
// Entries without a name are dropped.
func ParseSearchResponse(data []byte) ([]Mod, error) {
	var resp searchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse mod search response: %w", err)
	}

	out := resp.Results[:0]
	for _, m := range resp.Results {
		if m.Name != "" {
			out = append(out, m)
		}
	}
	return out, nil
}

// Resolve picks the mod whose name or title is closest to query, within
// threshold. Ties go to the earlier mod in results order.
func Resolve(query string, results []Mod, threshold int) (Mod, fuzzy.Match) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Mod{}, fuzzy.Match{Kind: fuzzy.NoMatch}
	}

	candidates := make([]fuzzy.Candidate, 0, 2*len(results))
	byKey := make(map[string]Mod, len(results))
	for _, m := range results {
		if _, dup := byKey[m.Name]; dup {
			continue
		}
		byKey[m.Name] = m
		candidates = append(candidates, fuzzy.Candidate{Key: m.Name, Input: strings.ToLower(m.Name)})
		if m.Title != "" {
			candidates = append(candidates, fuzzy.Candidate{Key: m.Name, Input: strings.ToLower(m.Title)})
		}
	}

	match := fuzzy.Closest(candidates, q, threshold)
	if !match.Found() {
		return Mod{}, match
	}
	return byKey[match.Key], match
}

// Link returns the portal page of m.
func Link(m Mod) string {
	return fmt.Sprintf("%s/%s/%s", portalURL, m.Owner, m.Name)
}

// Summarize renders up to limit results as markdown lines:
//
//	[Title](link) by owner
func Summarize(results []Mod, limit int) string {
	if limit <= 0 {
		limit = DefaultSummaryLimit
	}

	var b strings.Builder
	for i, m := range results {
		if i == limit {
			break
		}
		title := m.Title
		if title == "" {
			title = m.Name
		}
		fmt.Fprintf(&b, "[%s](%s) by %s\n", title, Link(m), m.Owner)
	}
	return b.String()
}
