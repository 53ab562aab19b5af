// Package guild names the per-community partitions that lookups are scoped to.
package guild

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ID identifies a community (a chat guild). It is the partition key for
// dictionaries and the prefix table.
type ID uint64

// Purpose tags what a partition's dictionary holds. It is part of the
// backing file name.
type Purpose string

const (
	// PurposeFAQs holds frequently asked questions: body plus optional image.
	PurposeFAQs Purpose = "faqs"
	// PurposeRatios holds named production ratios as single strings.
	PurposeRatios Purpose = "ratios"
)

// Common errors.
var (
	ErrInvalidID      = errors.New("invalid guild ID")
	ErrInvalidPurpose = errors.New("invalid dictionary purpose")
)

// ParseID parses the decimal text form of a guild ID. Zero is rejected.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if v == 0 {
		return 0, fmt.Errorf("%w: zero", ErrInvalidID)
	}
	return ID(v), nil
}

// String returns the decimal form used in file names and JSON keys.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Purposes returns every known purpose.
func Purposes() []Purpose {
	return []Purpose{PurposeFAQs, PurposeRatios}
}

// ParsePurpose validates a purpose tag, accepting the singular spelling too.
func ParsePurpose(s string) (Purpose, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "faqs", "faq":
		return PurposeFAQs, nil
	case "ratios", "ratio":
		return PurposeRatios, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPurpose, s)
	}
}

// Validate checks that p is a known purpose.
func (p Purpose) Validate() error {
	for _, known := range Purposes() {
		if p == known {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidPurpose, string(p))
}

// FileName returns the backing file name for a partition's dictionary:
// {id}-{purpose}.json
func FileName(id ID, p Purpose) (string, error) {
	if id == 0 {
		return "", ErrInvalidID
	}
	if err := p.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s.json", id, p), nil
}
