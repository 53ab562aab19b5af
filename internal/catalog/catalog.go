// Package catalog serves the read-only recipe catalog.
//
// The catalog file is a JSON object keyed by internal name:
//
//	{
//	  "iron-gear-wheel": {
//	    "name": "Iron gear wheel",
//	    "cost": 0.5,
//	    "inputs": {"iron-plate": 2},
//	    "outputs": {"iron-gear-wheel": 1}
//	  }
//	}
//
// It is loaded once, on first use, and never reloaded.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wikibot/internal/fuzzy"
	"github.com/fyrsmithlabs/wikibot/internal/logging"
)

// DefaultThreshold is the maximum edit distance accepted for a fuzzy hit.
const DefaultThreshold = 4

var errInvalidRecord = errors.New("invalid catalog record")

// Record is one recipe. Inputs and Outputs map catalog keys to amounts.
type Record struct {
	Name    string             `json:"name"`
	Cost    float64            `json:"cost"`
	Inputs  map[string]float64 `json:"inputs"`
	Outputs map[string]float64 `json:"outputs"`
}

func (r Record) validate() error {
	if r.Cost < 0 {
		return fmt.Errorf("%w: negative cost %v", errInvalidRecord, r.Cost)
	}
	for k, v := range r.Inputs {
		if k == "" || v <= 0 {
			return fmt.Errorf("%w: input %q amount %v", errInvalidRecord, k, v)
		}
	}
	for k, v := range r.Outputs {
		if k == "" || v <= 0 {
			return fmt.Errorf("%w: output %q amount %v", errInvalidRecord, k, v)
		}
	}
	return nil
}

// Ingredient is an input or output with its resolved display name.
type Ingredient struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Result is the outcome of Lookup.
type Result struct {
	Kind     fuzzy.MatchKind
	Key      string
	Record   Record
	Distance int
}

// Found reports whether the lookup resolved to a record.
func (r Result) Found() bool {
	return r.Kind != fuzzy.NoMatch
}

// Catalog is an immutable recipe set loaded lazily from a file.
type Catalog struct {
	path      string
	threshold int
	logger    *logging.Logger

	once       sync.Once
	records    map[string]Record
	candidates []fuzzy.Candidate
}

// New creates a catalog backed by path. Nothing is read until first use.
// A negative threshold selects DefaultThreshold.
func New(path string, threshold int, logger *logging.Logger) *Catalog {
	if threshold < 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Catalog{
		path:      path,
		threshold: threshold,
		logger:    logger.Named("catalog"),
	}
}

func (c *Catalog) load() {
	c.once.Do(func() {
		ctx := context.Background()
		records, err := readRecords(c.path)
		if err != nil {
			c.logger.Error(ctx, "failed to load catalog, serving empty",
				zap.String("file", c.path), zap.Error(err))
			records = map[string]Record{}
		}
		c.records = records
		c.candidates = buildCandidates(records)
		c.logger.Info(ctx, "catalog loaded", zap.Int("records", len(records)))
	})
}

func readRecords(path string) (map[string]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	for k, r := range records {
		if k == "" {
			return nil, fmt.Errorf("%w: empty key", errInvalidRecord)
		}
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("record %q: %w", k, err)
		}
	}
	if records == nil {
		records = map[string]Record{}
	}
	return records, nil
}

// buildCandidates lists, per sorted key, the lowercase key and the lowercase
// display name. Queries are lowercased too, so a record keyed "Iron-Gear"
// matches "iron-gear" exactly; the candidate still resolves to the raw key
// that ingredient references use.
func buildCandidates(records map[string]Record) []fuzzy.Candidate {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	candidates := make([]fuzzy.Candidate, 0, 2*len(keys))
	for _, k := range keys {
		lk := strings.ToLower(k)
		candidates = append(candidates, fuzzy.Candidate{Key: k, Input: lk})
		if name := strings.ToLower(records[k].Name); name != "" && name != lk {
			candidates = append(candidates, fuzzy.Candidate{Key: k, Input: name})
		}
	}
	return candidates
}

// Lookup resolves query to the closest record by key or display name.
func (c *Catalog) Lookup(query string) Result {
	c.load()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Result{Kind: fuzzy.NoMatch}
	}

	m := fuzzy.Closest(c.candidates, q, c.threshold)
	if !m.Found() {
		return Result{Kind: fuzzy.NoMatch}
	}
	return Result{Kind: m.Kind, Key: m.Key, Record: c.records[m.Key], Distance: m.Distance}
}

// Get returns the record stored under key.
func (c *Catalog) Get(key string) (Record, bool) {
	c.load()
	r, ok := c.records[key]
	return r, ok
}

// DisplayName returns the record's name, falling back to key itself when
// there is no record or the name is empty.
func (c *Catalog) DisplayName(key string) string {
	c.load()
	if r, ok := c.records[key]; ok && r.Name != "" {
		return r.Name
	}
	return key
}

// Ingredients resolves each key of amounts to its display name, sorted by
// key.
func (c *Catalog) Ingredients(amounts map[string]float64) []Ingredient {
	keys := make([]string, 0, len(amounts))
	for k := range amounts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Ingredient, 0, len(keys))
	for _, k := range keys {
		out = append(out, Ingredient{Key: k, Name: c.DisplayName(k), Amount: amounts[k]})
	}
	return out
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.load()
	return len(c.records)
}
