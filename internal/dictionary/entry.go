package dictionary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/wikibot/internal/guild"
)

// Entry is the value stored under a dictionary key: a body and, for FAQs,
// an optional attachment (an image URL).
type Entry struct {
	Body       string `json:"body"`
	Attachment string `json:"attachment,omitempty"`
}

// Validate checks that the entry has a body.
func (e Entry) Validate() error {
	if strings.TrimSpace(e.Body) == "" {
		return ErrEmptyBody
	}
	return nil
}

// Dictionary maps normalized keys to entries.
type Dictionary map[string]Entry

// Keys returns the dictionary keys in sorted order.
func (d Dictionary) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NormalizeKey trims surrounding whitespace and lowercases key.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

var errShape = errors.New("unexpected entry shape")

// decodeEntry accepts either a bare string or an array of one or two
// strings, where the second member may be null.
func decodeEntry(raw json.RawMessage) (Entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Entry{}, errShape
	}

	switch raw[0] {
	case '"':
		var body string
		if err := json.Unmarshal(raw, &body); err != nil {
			return Entry{}, err
		}
		return Entry{Body: body}, nil

	case '[':
		var parts []*string
		if err := json.Unmarshal(raw, &parts); err != nil {
			return Entry{}, err
		}
		if len(parts) == 0 || len(parts) > 2 || parts[0] == nil {
			return Entry{}, fmt.Errorf("%w: array of %d", errShape, len(parts))
		}
		e := Entry{Body: *parts[0]}
		if len(parts) == 2 && parts[1] != nil {
			e.Attachment = *parts[1]
		}
		return e, nil
	}

	return Entry{}, errShape
}

// decodeDictionary parses a whole dictionary file. Keys are normalized on
// the way in so files edited by hand still resolve. When raw keys collide
// after normalization the lexically first raw key wins; the others are
// returned as dropped.
func decodeDictionary(data []byte) (Dictionary, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	rawKeys := make([]string, 0, len(raw))
	for k := range raw {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	dict := make(Dictionary, len(raw))
	var dropped []string
	for _, k := range rawKeys {
		e, err := decodeEntry(raw[k])
		if err != nil {
			return nil, nil, fmt.Errorf("key %q: %w", k, err)
		}
		nk := NormalizeKey(k)
		if _, ok := dict[nk]; ok {
			dropped = append(dropped, k)
			continue
		}
		dict[nk] = e
	}
	return dict, dropped, nil
}

// encodeDictionary renders d in the on-disk form for p: ratios as plain
// strings, FAQs as [body, attachment-or-null] pairs.
func encodeDictionary(p guild.Purpose, d Dictionary) ([]byte, error) {
	out := make(map[string]any, len(d))
	for k, e := range d {
		if p == guild.PurposeRatios {
			out[k] = e.Body
			continue
		}
		var attachment *string
		if e.Attachment != "" {
			a := e.Attachment
			attachment = &a
		}
		out[k] = []any{e.Body, attachment}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
