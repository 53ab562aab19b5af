// Package lookup is the entry point the command layer calls into: it routes
// resolves and mutations to the right dictionary, owns prefix changes and
// serves recipe and mod resolution.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wikibot/internal/catalog"
	"github.com/fyrsmithlabs/wikibot/internal/dictionary"
	"github.com/fyrsmithlabs/wikibot/internal/events"
	"github.com/fyrsmithlabs/wikibot/internal/fuzzy"
	"github.com/fyrsmithlabs/wikibot/internal/guild"
	"github.com/fyrsmithlabs/wikibot/internal/logging"
	"github.com/fyrsmithlabs/wikibot/internal/mods"
	"github.com/fyrsmithlabs/wikibot/internal/prefix"
)

// Errors returned by Service.
var (
	ErrUnknownPurpose = errors.New("unknown dictionary purpose")
	ErrUnknownOp      = errors.New("unknown mutation")
)

// Op is a dictionary mutation.
type Op int

const (
	OpAdd Op = iota + 1
	OpSet
	OpDelete
	OpDeleteAll
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	case OpDeleteAll:
		return "delete_all"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// ParseOp maps a command word to an Op.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add":
		return OpAdd, nil
	case "set":
		return OpSet, nil
	case "delete", "del", "remove":
		return OpDelete, nil
	case "delete_all", "clear":
		return OpDeleteAll, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOp, s)
	}
}

// ModResult is the outcome of ResolveMod. When no mod is close enough,
// Summary lists the search results instead.
type ModResult struct {
	Match   fuzzy.Match
	Mod     mods.Mod
	Link    string
	Summary string
	Results int
}

// Options configures a Service.
type Options struct {
	FAQs         *dictionary.Store
	Ratios       *dictionary.Store
	Prefixes     *prefix.Registry
	Catalog      *catalog.Catalog
	ModThreshold int
	// Events receives a notification after every persisted change.
	// Defaults to events.Nop.
	Events events.Publisher
	// BotName is stripped from messages as an "@" mention. Defaults to
	// DefaultBotName.
	BotName string
	Logger  *logging.Logger
}

// DefaultBotName is the mention stripped by ResolveMessage.
const DefaultBotName = "wikibot"

// commands are the chat command words for each dictionary.
var commands = map[guild.Purpose]string{
	guild.PurposeFAQs:   "faq ",
	guild.PurposeRatios: "ratios ",
}

// Service composes the dictionaries, the prefix registry and the catalog.
type Service struct {
	stores       map[guild.Purpose]*dictionary.Store
	prefixes     *prefix.Registry
	catalog      *catalog.Catalog
	modThreshold int
	events       events.Publisher
	botName      string
	logger       *logging.Logger
	metrics      *Metrics
}

// NewService validates opts and builds a Service.
func NewService(opts Options) (*Service, error) {
	if opts.FAQs == nil || opts.Ratios == nil {
		return nil, errors.New("faq and ratio stores are required")
	}
	if opts.FAQs.Purpose() != guild.PurposeFAQs || opts.Ratios.Purpose() != guild.PurposeRatios {
		return nil, errors.New("stores bound to the wrong purpose")
	}
	if opts.Prefixes == nil {
		return nil, errors.New("prefix registry is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if opts.ModThreshold < 0 {
		opts.ModThreshold = mods.DefaultThreshold
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Events == nil {
		opts.Events = events.Nop{}
	}
	if opts.BotName == "" {
		opts.BotName = DefaultBotName
	}

	return &Service{
		stores: map[guild.Purpose]*dictionary.Store{
			guild.PurposeFAQs:   opts.FAQs,
			guild.PurposeRatios: opts.Ratios,
		},
		prefixes:     opts.Prefixes,
		catalog:      opts.Catalog,
		modThreshold: opts.ModThreshold,
		events:       opts.Events,
		botName:      opts.BotName,
		logger:       opts.Logger.Named("lookup"),
		metrics:      NewMetrics(),
	}, nil
}

// WithRequest returns ctx carrying a request ID, generating one when ctx
// has none.
func WithRequest(ctx context.Context) context.Context {
	if logging.RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return logging.WithRequestID(ctx, uuid.NewString())
}

func (s *Service) store(p guild.Purpose) (*dictionary.Store, error) {
	st, ok := s.stores[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPurpose, string(p))
	}
	return st, nil
}

func scoped(ctx context.Context, id guild.ID, p guild.Purpose) context.Context {
	ctx = WithRequest(ctx)
	ctx = logging.WithGuild(ctx, id.String())
	return logging.WithPurpose(ctx, string(p))
}

// Resolve looks up raw in the guild's dictionary for purpose.
func (s *Service) Resolve(ctx context.Context, id guild.ID, p guild.Purpose, raw string) (dictionary.Result, error) {
	st, err := s.store(p)
	if err != nil {
		return dictionary.Result{}, err
	}
	ctx = scoped(ctx, id, p)

	start := time.Now()
	res, err := st.Get(ctx, id, raw)
	s.metrics.Duration.WithLabelValues(string(p)).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.RequestsTotal.WithLabelValues(string(p), "error").Inc()
		return dictionary.Result{}, err
	}
	s.metrics.RequestsTotal.WithLabelValues(string(p), res.Kind.String()).Inc()

	s.logger.Debug(ctx, "resolved",
		zap.String("query", raw),
		zap.Stringer("result", res.Kind),
		zap.String("key", res.Key),
		zap.Int("distance", res.Distance))
	return res, nil
}

// ResolveMessage resolves a whole chat message such as "!faq steem ||x||".
// The command word, the guild's registered prefix and the bot mention are
// stripped before the lookup.
func (s *Service) ResolveMessage(ctx context.Context, id guild.ID, p guild.Purpose, message string) (dictionary.Result, error) {
	if _, err := s.store(p); err != nil {
		return dictionary.Result{}, err
	}
	pfx, _ := s.prefixes.Get(id)
	return s.Resolve(ctx, id, p, ExtractRequest(message, commands[p], pfx, s.botName))
}

// Mutate applies op to the guild's dictionary for purpose. key and entry
// are ignored where op does not need them.
func (s *Service) Mutate(ctx context.Context, id guild.ID, p guild.Purpose, op Op, key string, entry dictionary.Entry) error {
	st, err := s.store(p)
	if err != nil {
		return err
	}
	ctx = scoped(ctx, id, p)

	switch op {
	case OpAdd:
		err = st.Insert(ctx, id, key, entry)
	case OpSet:
		err = st.Upsert(ctx, id, key, entry)
	case OpDelete:
		err = st.Delete(ctx, id, key)
	case OpDeleteAll:
		err = st.DeleteAll(ctx, id)
	default:
		return fmt.Errorf("%w: %v", ErrUnknownOp, op)
	}

	result := "ok"
	switch {
	case err == nil:
		s.logger.Info(ctx, "dictionary changed", zap.Stringer("op", op), zap.String("key", dictionary.NormalizeKey(key)))
		s.notify(ctx, events.Event{
			Guild: id.String(),
			Kind:  string(p),
			Op:    op.String(),
			Key:   dictionary.NormalizeKey(key),
		})
	case errors.Is(err, dictionary.ErrKeyExists), errors.Is(err, dictionary.ErrKeyNotFound):
		result = "rejected"
	default:
		result = "error"
	}
	s.metrics.MutationsTotal.WithLabelValues(string(p), op.String(), result).Inc()
	return err
}

// Keys lists the guild's keys for purpose.
func (s *Service) Keys(ctx context.Context, id guild.ID, p guild.Purpose) ([]string, error) {
	st, err := s.store(p)
	if err != nil {
		return nil, err
	}
	return st.Keys(scoped(ctx, id, p), id)
}

// Prefix returns the guild's registered prefix.
func (s *Service) Prefix(id guild.ID) (string, bool) {
	return s.prefixes.Get(id)
}

// RegisterPrefix changes the guild's prefix and persists the table.
func (s *Service) RegisterPrefix(ctx context.Context, id guild.ID, p string) (previous string, existed bool, err error) {
	ctx = WithRequest(ctx)
	previous, existed, err = s.prefixes.Set(ctx, id, p)
	if err != nil {
		return "", false, err
	}
	s.notify(logging.WithGuild(ctx, id.String()), events.Event{
		Guild: id.String(),
		Kind:  events.KindPrefix,
		Op:    events.OpPrefixSet,
		Value: strings.TrimSpace(p),
	})
	return previous, existed, nil
}

// notify publishes e. The change is already persisted, so a failure is
// only logged.
func (s *Service) notify(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.metrics.EventsTotal.WithLabelValues(e.Kind, "error").Inc()
		s.logger.Warn(ctx, "failed to publish change event", zap.String("kind", e.Kind), zap.Error(err))
		return
	}
	s.metrics.EventsTotal.WithLabelValues(e.Kind, "ok").Inc()
}

// Recipe resolves raw against the catalog.
func (s *Service) Recipe(ctx context.Context, raw string) catalog.Result {
	ctx = WithRequest(ctx)

	start := time.Now()
	res := s.catalog.Lookup(raw)
	s.metrics.Duration.WithLabelValues("recipes").Observe(time.Since(start).Seconds())
	s.metrics.RequestsTotal.WithLabelValues("recipes", res.Kind.String()).Inc()

	s.logger.Debug(ctx, "recipe resolved", zap.String("query", raw), zap.String("key", res.Key))
	return res
}

// RecipeName returns the display name of a catalog key.
func (s *Service) RecipeName(key string) string {
	return s.catalog.DisplayName(key)
}

// RecipeCount returns the number of catalog records.
func (s *Service) RecipeCount() int {
	return s.catalog.Len()
}

// PrefixCount returns the number of guilds with a registered prefix.
func (s *Service) PrefixCount() int {
	return s.prefixes.Len()
}

// Ingredients resolves a recipe's amounts to display names.
func (s *Service) Ingredients(amounts map[string]float64) []catalog.Ingredient {
	return s.catalog.Ingredients(amounts)
}

// ResolveMod decodes a mod portal search response and picks the mod
// matching raw.
func (s *Service) ResolveMod(ctx context.Context, raw string, searchResponse []byte) (ModResult, error) {
	ctx = WithRequest(ctx)

	results, err := mods.ParseSearchResponse(searchResponse)
	if err != nil {
		s.metrics.RequestsTotal.WithLabelValues("mods", "error").Inc()
		return ModResult{}, err
	}

	m, match := mods.Resolve(raw, results, s.modThreshold)
	s.metrics.RequestsTotal.WithLabelValues("mods", match.Kind.String()).Inc()

	out := ModResult{Match: match, Results: len(results)}
	if match.Found() {
		out.Mod = m
		out.Link = mods.Link(m)
	} else {
		out.Summary = mods.Summarize(results, mods.DefaultSummaryLimit)
	}

	s.logger.Debug(ctx, "mod resolved",
		zap.String("query", raw),
		zap.Stringer("result", match.Kind),
		zap.String("mod", m.Name),
		zap.Int("results", len(results)))
	return out, nil
}
