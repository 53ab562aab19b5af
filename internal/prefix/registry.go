// Package prefix manages the per-guild command prefix table.
//
// The table is a single JSON object mapping guild IDs to prefixes:
//
//	{"222222222222222222": "+", "333333333333333333": "!"}
//
// It is loaded once by Install, mutated in memory by Register and flushed
// explicitly by Backup. Watch picks up edits made to the file by other
// processes; registrations not yet backed up survive a reload. A guild
// without an entry responds to mentions only.
package prefix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wikibot/internal/guild"
	"github.com/fyrsmithlabs/wikibot/internal/logging"
)

// Errors for registry operations.
var (
	ErrEmptyPrefix = errors.New("prefix is empty")
	ErrBackup      = errors.New("prefix backup failed")
)

// Registry holds the prefix table. All operations serialize through one
// mutex.
type Registry struct {
	mu       sync.Mutex
	prefixes map[guild.ID]string
	// pending holds guilds registered since the last successful save.
	pending  map[guild.ID]struct{}
	filePath string
	logger   *logging.Logger
}

// NewRegistry creates an empty registry backed by path. Call Install to
// load it.
func NewRegistry(path string, logger *logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Registry{
		prefixes: make(map[guild.ID]string),
		pending:  make(map[guild.ID]struct{}),
		filePath: path,
		logger:   logger.Named("prefix"),
	}
}

// Install loads the table from disk, replacing whatever is in memory. An
// absent file is created empty. A corrupted file is logged and the registry
// starts empty; individual bad entries are skipped with a warning.
func (r *Registry) Install(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefixes = make(map[guild.ID]string)
	r.pending = make(map[guild.ID]struct{})

	if err := os.MkdirAll(filepath.Dir(r.filePath), 0750); err != nil {
		return fmt.Errorf("failed to create prefix directory: %w", err)
	}

	data, err := os.ReadFile(r.filePath)
	if errors.Is(err, os.ErrNotExist) {
		r.logger.Info(ctx, "creating empty prefix table", zap.String("file", r.filePath))
		return r.save()
	}
	if err != nil {
		return fmt.Errorf("failed to read prefix table: %w", err)
	}

	table, err := r.parse(ctx, data)
	if err != nil {
		r.logger.Error(ctx, "unparsable prefix table, starting empty",
			zap.String("file", r.filePath), zap.Error(err))
		return nil
	}
	r.prefixes = table

	r.logger.Info(ctx, "prefix table installed", zap.Int("guilds", len(r.prefixes)))
	return nil
}

// Reload re-reads the table from disk. Unlike Install, a missing or
// unparsable file leaves the in-memory table untouched. Registrations not
// yet flushed by Backup are kept on top of the file's contents.
func (r *Registry) Reload(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.filePath)
	if err != nil {
		return fmt.Errorf("failed to read prefix table: %w", err)
	}
	table, err := r.parse(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to parse prefix table: %w", err)
	}

	for id := range r.pending {
		table[id] = r.prefixes[id]
	}
	r.prefixes = table

	r.logger.Info(ctx, "prefix table reloaded",
		zap.Int("guilds", len(table)), zap.Int("pending", len(r.pending)))
	return nil
}

// parse decodes the on-disk table, skipping bad entries with a warning.
func (r *Registry) parse(ctx context.Context, data []byte) (map[guild.ID]string, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	table := make(map[guild.ID]string, len(raw))
	for k, v := range raw {
		id, err := guild.ParseID(k)
		if err != nil {
			r.logger.Warn(ctx, "skipping prefix entry with invalid guild id", zap.String("key", k))
			continue
		}
		p := strings.TrimSpace(v)
		if p == "" {
			r.logger.Warn(ctx, "skipping empty prefix", zap.String("guild", k))
			continue
		}
		table[id] = p
	}
	return table, nil
}

// Get returns the guild's prefix, if one is registered.
func (r *Registry) Get(id guild.ID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.prefixes[id]
	return p, ok
}

// Register sets the guild's prefix in memory and reports the previous one.
// The change is not persisted until Backup.
func (r *Registry) Register(id guild.ID, prefix string) (previous string, existed bool, err error) {
	prefix, err = checkPrefix(id, prefix)
	if err != nil {
		return "", false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, existed = r.register(id, prefix)
	r.pending[id] = struct{}{}
	return previous, existed, nil
}

// Backup writes the whole table to disk.
func (r *Registry) Backup() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save()
}

// Set registers the prefix and flushes the table under a single hold of
// the lock. If the flush fails the in-memory change is reverted.
func (r *Registry) Set(ctx context.Context, id guild.ID, prefix string) (previous string, existed bool, err error) {
	prefix, err = checkPrefix(id, prefix)
	if err != nil {
		return "", false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, existed = r.register(id, prefix)
	if err := r.save(); err != nil {
		if existed {
			r.prefixes[id] = previous
		} else {
			delete(r.prefixes, id)
		}
		r.logger.Error(logging.WithGuild(ctx, id.String()), "failed to back up prefix table", zap.Error(err))
		return "", false, err
	}

	r.logger.Info(logging.WithGuild(ctx, id.String()), "prefix changed",
		zap.String("previous", previous), zap.String("prefix", prefix))
	return previous, existed, nil
}

// Len returns the number of guilds with a registered prefix.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.prefixes)
}

// Guilds returns the guilds with a registered prefix, in ascending order.
func (r *Registry) Guilds() []guild.ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]guild.ID, 0, len(r.prefixes))
	for id := range r.prefixes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func checkPrefix(id guild.ID, prefix string) (string, error) {
	if id == 0 {
		return "", guild.ErrInvalidID
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", ErrEmptyPrefix
	}
	return prefix, nil
}

// register updates the map. Caller holds the lock.
func (r *Registry) register(id guild.ID, prefix string) (string, bool) {
	previous, existed := r.prefixes[id]
	r.prefixes[id] = prefix
	return previous, existed
}

// save writes the table to disk. Caller holds the lock.
func (r *Registry) save() error {
	out := make(map[string]string, len(r.prefixes))
	for id, p := range r.prefixes {
		out[id.String()] = p
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrBackup, err)
	}
	data = append(data, '\n')

	// Write atomically
	tmpPath := r.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0640); err != nil {
		return fmt.Errorf("%w: %v", ErrBackup, err)
	}
	if err := os.Rename(tmpPath, r.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrBackup, err)
	}
	r.pending = make(map[guild.ID]struct{})
	return nil
}
