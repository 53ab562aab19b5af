// Package fuzzy resolves typo-tolerant lookups by Levenshtein edit distance.
package fuzzy

// MatchKind classifies the outcome of Closest.
type MatchKind int

const (
	// NoMatch means no candidate was within the threshold (or there were none).
	NoMatch MatchKind = iota
	// Exact means a candidate had distance 0.
	Exact
	// Fuzzy means the best candidate was within the threshold but not identical.
	Fuzzy
)

// String returns the lowercase name of the kind.
func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	default:
		return "no_match"
	}
}

// Candidate is one entry considered by Closest. Key is what the caller gets
// back; Input is the string the query is measured against. Several
// candidates may share a Key (e.g. an internal name and a display name).
type Candidate struct {
	Key   string
	Input string
}

// Match is the result of Closest.
type Match struct {
	Kind     MatchKind
	Key      string
	Distance int
}

// Found reports whether the match resolved to a key.
func (m Match) Found() bool {
	return m.Kind != NoMatch
}

// Closest returns the candidate nearest to query.
//
// The first candidate at distance 0 wins immediately. Otherwise the first
// candidate in slice order holding the minimal distance wins, so callers
// building candidates from a map must sort them to get a stable result.
// A minimum above threshold, or an empty candidate list, yields NoMatch.
func Closest(candidates []Candidate, query string, threshold int) Match {
	best := Match{Kind: NoMatch, Distance: -1}

	for _, c := range candidates {
		d := Distance(query, c.Input)
		if d == 0 {
			return Match{Kind: Exact, Key: c.Key}
		}
		if best.Distance < 0 || d < best.Distance {
			best.Key = c.Key
			best.Distance = d
		}
	}

	if best.Distance < 0 || best.Distance > threshold {
		return Match{Kind: NoMatch}
	}
	best.Kind = Fuzzy
	return best
}

// Distance computes the Levenshtein distance between a and b, counting
// insertions, deletions and substitutions as one edit each. Strings are
// compared rune by rune.
func Distance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	// Two-row DP
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
