// Package dictionary persists per-guild key/entry dictionaries as JSON files
// and resolves typo-tolerant lookups against them.
//
// Every call reloads the partition's file from disk and every mutation
// rewrites it in full. Operations on the same guild are serialized by a
// per-guild mutex; file I/O across all guilds is bounded by a semaphore.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/fyrsmithlabs/wikibot/internal/fuzzy"
	"github.com/fyrsmithlabs/wikibot/internal/guild"
	"github.com/fyrsmithlabs/wikibot/internal/logging"
)

// Errors returned by Store mutations.
var (
	ErrKeyExists   = errors.New("key already exists")
	ErrKeyNotFound = errors.New("key not found")
	ErrEmptyKey    = errors.New("key is empty")
	ErrEmptyBody   = errors.New("entry body is empty")
	ErrWriteFailed = errors.New("dictionary write failed")
	ErrReadFailed  = errors.New("dictionary read failed")

	// ErrAttachmentNotAllowed is returned when an attachment is given to a
	// store whose file format cannot hold one.
	ErrAttachmentNotAllowed = errors.New("attachments are not supported for this dictionary")
)

const (
	// DefaultThreshold is the maximum edit distance accepted for a fuzzy hit.
	DefaultThreshold = 4
	// DefaultMaxConcurrentIO bounds simultaneous file operations.
	DefaultMaxConcurrentIO = 8
)

// ResultKind classifies a Get outcome.
type ResultKind int

const (
	// NotFound means no key was within the threshold.
	NotFound ResultKind = iota
	// Empty means the dictionary has no entries at all.
	Empty
	// Exact means the normalized query equals a key.
	Exact
	// Fuzzy means the closest key is within the threshold.
	Fuzzy
)

func (k ResultKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Exact:
		return "exact"
	case Fuzzy:
		return "fuzzy"
	default:
		return "not_found"
	}
}

// Result is the outcome of Get.
type Result struct {
	Kind     ResultKind
	Key      string
	Entry    Entry
	Distance int
}

// Found reports whether the result carries an entry.
func (r Result) Found() bool {
	return r.Kind == Exact || r.Kind == Fuzzy
}

// Options configures a Store.
type Options struct {
	// Dir is the directory holding the {guild}-{purpose}.json files.
	Dir     string
	Purpose guild.Purpose
	// Threshold defaults to DefaultThreshold when negative.
	Threshold       int
	MaxConcurrentIO int64
	Logger          *logging.Logger
}

// Store is a guild-partitioned dictionary bound to one purpose.
type Store struct {
	dir       string
	purpose   guild.Purpose
	threshold int
	logger    *logging.Logger
	metrics   *Metrics

	io *semaphore.Weighted

	mu    sync.Mutex
	locks map[guild.ID]*sync.Mutex
}

// NewStore creates a store. The directory is created if missing.
func NewStore(opts Options) (*Store, error) {
	if err := opts.Purpose.Validate(); err != nil {
		return nil, err
	}
	if opts.Dir == "" {
		return nil, errors.New("dictionary directory is required")
	}
	if opts.Threshold < 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.MaxConcurrentIO <= 0 {
		opts.MaxConcurrentIO = DefaultMaxConcurrentIO
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	if err := os.MkdirAll(opts.Dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create dictionary directory: %w", err)
	}

	return &Store{
		dir:       opts.Dir,
		purpose:   opts.Purpose,
		threshold: opts.Threshold,
		logger:    opts.Logger.Named("dictionary").With(zap.String("purpose", string(opts.Purpose))),
		metrics:   NewMetrics(),
		io:        semaphore.NewWeighted(opts.MaxConcurrentIO),
		locks:     make(map[guild.ID]*sync.Mutex),
	}, nil
}

// Purpose returns the purpose the store is bound to.
func (s *Store) Purpose() guild.Purpose {
	return s.purpose
}

// Threshold returns the fuzzy match sensitivity.
func (s *Store) Threshold() int {
	return s.threshold
}

// Load returns the guild's dictionary. A missing file is created empty; an
// unparsable file is logged and treated as empty. Only context cancellation
// is reported as an error.
func (s *Store) Load(ctx context.Context, id guild.ID) (Dictionary, error) {
	unlock := s.lock(id)
	defer unlock()
	return s.read(ctx, id, false)
}

// Get resolves key against the guild's dictionary.
func (s *Store) Get(ctx context.Context, id guild.ID, key string) (Result, error) {
	dict, err := s.Load(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if len(dict) == 0 {
		return Result{Kind: Empty}, nil
	}

	query := NormalizeKey(key)
	if query == "" {
		return Result{Kind: NotFound}, nil
	}

	keys := dict.Keys()
	candidates := make([]fuzzy.Candidate, len(keys))
	for i, k := range keys {
		candidates[i] = fuzzy.Candidate{Key: k, Input: k}
	}

	m := fuzzy.Closest(candidates, query, s.threshold)
	switch m.Kind {
	case fuzzy.Exact:
		return Result{Kind: Exact, Key: m.Key, Entry: dict[m.Key]}, nil
	case fuzzy.Fuzzy:
		return Result{Kind: Fuzzy, Key: m.Key, Entry: dict[m.Key], Distance: m.Distance}, nil
	default:
		return Result{Kind: NotFound}, nil
	}
}

// Keys returns the guild's keys in sorted order.
func (s *Store) Keys(ctx context.Context, id guild.ID) ([]string, error) {
	dict, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return dict.Keys(), nil
}

// Insert adds a new entry. It fails with ErrKeyExists if key is present.
func (s *Store) Insert(ctx context.Context, id guild.ID, key string, entry Entry) error {
	key, err := s.checkMutation(key, entry)
	if err != nil {
		return err
	}
	return s.mutate(ctx, id, func(d Dictionary) error {
		if _, ok := d[key]; ok {
			return ErrKeyExists
		}
		d[key] = entry
		return nil
	})
}

// Upsert replaces an existing entry. It fails with ErrKeyNotFound rather
// than creating a key.
func (s *Store) Upsert(ctx context.Context, id guild.ID, key string, entry Entry) error {
	key, err := s.checkMutation(key, entry)
	if err != nil {
		return err
	}
	return s.mutate(ctx, id, func(d Dictionary) error {
		if _, ok := d[key]; !ok {
			return ErrKeyNotFound
		}
		d[key] = entry
		return nil
	})
}

// Delete removes one key.
func (s *Store) Delete(ctx context.Context, id guild.ID, key string) error {
	key = NormalizeKey(key)
	if key == "" {
		return ErrEmptyKey
	}
	return s.mutate(ctx, id, func(d Dictionary) error {
		if _, ok := d[key]; !ok {
			return ErrKeyNotFound
		}
		delete(d, key)
		return nil
	})
}

// DeleteAll resets the guild's dictionary to empty.
func (s *Store) DeleteAll(ctx context.Context, id guild.ID) error {
	unlock := s.lock(id)
	defer unlock()
	return s.write(ctx, id, Dictionary{})
}

func (s *Store) checkMutation(key string, entry Entry) (string, error) {
	key = NormalizeKey(key)
	if key == "" {
		return "", ErrEmptyKey
	}
	if err := entry.Validate(); err != nil {
		return "", err
	}
	if s.purpose == guild.PurposeRatios && entry.Attachment != "" {
		return "", ErrAttachmentNotAllowed
	}
	return key, nil
}

// mutate runs a full read-modify-write cycle under the guild's lock. The
// file is rewritten only when fn succeeds. A file that exists but cannot be
// read aborts the cycle so its entries are never overwritten.
func (s *Store) mutate(ctx context.Context, id guild.ID, fn func(Dictionary) error) error {
	unlock := s.lock(id)
	defer unlock()

	dict, err := s.read(ctx, id, true)
	if err != nil {
		return err
	}
	if err := fn(dict); err != nil {
		return err
	}
	return s.write(ctx, id, dict)
}

// lock acquires the guild's mutex, creating it on first use.
func (s *Store) lock(id guild.ID) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Path returns the backing file path for the guild.
func (s *Store) Path(id guild.ID) (string, error) {
	name, err := guild.FileName(id, s.purpose)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// read loads the file. Caller holds the guild lock. With strict set, an I/O
// error other than a missing file is returned as ErrReadFailed instead of
// degrading to empty.
func (s *Store) read(ctx context.Context, id guild.ID, strict bool) (Dictionary, error) {
	path, err := s.Path(id)
	if err != nil {
		return nil, err
	}
	if err := s.io.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.io.Release(1)

	ctx = logging.WithGuild(ctx, id.String())
	start := time.Now()
	data, err := os.ReadFile(path)
	s.metrics.IODuration.WithLabelValues(string(s.purpose), "read").Observe(time.Since(start).Seconds())

	if errors.Is(err, os.ErrNotExist) {
		s.logger.Debug(ctx, "creating empty dictionary", zap.String("file", path))
		if werr := s.writeFile(path, Dictionary{}); werr != nil {
			s.logger.Error(ctx, "failed to create dictionary file", zap.String("file", path), zap.Error(werr))
		}
		return Dictionary{}, nil
	}
	if err != nil {
		s.logger.Error(ctx, "failed to read dictionary file", zap.String("file", path), zap.Error(err))
		if strict {
			return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
		}
		return Dictionary{}, nil
	}

	s.metrics.LoadsTotal.WithLabelValues(string(s.purpose)).Inc()

	dict, dropped, err := decodeDictionary(data)
	if len(dropped) > 0 {
		s.logger.Warn(ctx, "dictionary keys collide after normalization, keeping the first",
			zap.String("file", path), zap.Strings("dropped", dropped))
	}
	if err != nil {
		s.metrics.ParseFailuresTotal.WithLabelValues(string(s.purpose)).Inc()
		s.logger.Error(ctx, "unparsable dictionary file, treating as empty",
			zap.String("file", path), zap.Error(err))
		return Dictionary{}, nil
	}
	return dict, nil
}

// write replaces the file. Caller holds the guild lock.
func (s *Store) write(ctx context.Context, id guild.ID, dict Dictionary) error {
	path, err := s.Path(id)
	if err != nil {
		return err
	}
	if err := s.io.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.io.Release(1)

	start := time.Now()
	err = s.writeFile(path, dict)
	s.metrics.IODuration.WithLabelValues(string(s.purpose), "write").Observe(time.Since(start).Seconds())

	if err != nil {
		s.metrics.WritesTotal.WithLabelValues(string(s.purpose), "error").Inc()
		s.logger.Error(logging.WithGuild(ctx, id.String()), "failed to write dictionary",
			zap.String("file", path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	s.metrics.WritesTotal.WithLabelValues(string(s.purpose), "ok").Inc()
	return nil
}

// writeFile writes atomically via a temporary file and rename.
func (s *Store) writeFile(path string, dict Dictionary) error {
	data, err := encodeDictionary(s.purpose, dict)
	if err != nil {
		return fmt.Errorf("failed to marshal dictionary: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0640); err != nil {
		return fmt.Errorf("failed to write dictionary: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename dictionary: %w", err)
	}
	return nil
}
