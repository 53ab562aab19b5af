package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wikibot/internal/catalog"
	"github.com/fyrsmithlabs/wikibot/internal/config"
	"github.com/fyrsmithlabs/wikibot/internal/dictionary"
	"github.com/fyrsmithlabs/wikibot/internal/events"
	"github.com/fyrsmithlabs/wikibot/internal/guild"
	"github.com/fyrsmithlabs/wikibot/internal/logging"
	"github.com/fyrsmithlabs/wikibot/internal/lookup"
	"github.com/fyrsmithlabs/wikibot/internal/prefix"
)

// app is the wired dependency graph shared by serve and the one-shot
// commands.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	svc      *lookup.Service
	prefixes *prefix.Registry
	events   *events.NATSPublisher
}

// newApp loads configuration and builds every component.
//
//  1. Loads and validates configuration
//  2. Initializes the logger (stderr for one-shot commands)
//  3. Creates the data directory
//  4. Opens both dictionary stores
//  5. Installs the prefix table
//  6. Connects the change publisher when events.nats_url is set
//  7. Creates the lazily loaded catalog and the lookup service
func newApp(ctx context.Context, configPath string, daemon bool) (*app, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initLogger(cfg, daemon)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := config.EnsureDataDir(cfg); err != nil {
		return nil, err
	}

	faqs, err := newStore(cfg, guild.PurposeFAQs, logger)
	if err != nil {
		return nil, err
	}
	ratios, err := newStore(cfg, guild.PurposeRatios, logger)
	if err != nil {
		return nil, err
	}

	prefixes := prefix.NewRegistry(cfg.Storage.PrefixFile, logger)
	if err := prefixes.Install(ctx); err != nil {
		return nil, fmt.Errorf("failed to install prefix table: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, prefixes: prefixes}

	var pub events.Publisher = events.Nop{}
	if cfg.Events.NATSURL != "" {
		a.events, err = events.Connect(cfg.Events.NATSURL, cfg.Events.Subject, logger)
		if err != nil {
			return nil, err
		}
		pub = a.events
	}

	a.svc, err = lookup.NewService(lookup.Options{
		FAQs:         faqs,
		Ratios:       ratios,
		Prefixes:     prefixes,
		Catalog:      catalog.New(cfg.Storage.CatalogFile, cfg.Lookup.Threshold, logger),
		ModThreshold: cfg.Lookup.ModThreshold,
		Events:       pub,
		Logger:       logger,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	logger.Debug(ctx, "wikibot initialized",
		zap.String("data_dir", cfg.Storage.DataDir),
		zap.Int("threshold", cfg.Lookup.Threshold),
		zap.Int("prefixes", prefixes.Len()),
		zap.Bool("events", a.events != nil))

	return a, nil
}

func newStore(cfg *config.Config, p guild.Purpose, logger *logging.Logger) (*dictionary.Store, error) {
	st, err := dictionary.NewStore(dictionary.Options{
		Dir:             cfg.Storage.DataDir,
		Purpose:         p,
		Threshold:       cfg.Lookup.Threshold,
		MaxConcurrentIO: int64(cfg.Lookup.MaxConcurrentIO),
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", p, err)
	}
	return st, nil
}

func initLogger(cfg *config.Config, daemon bool) (*logging.Logger, error) {
	logCfg, err := logging.FromSettings(cfg.Logging)
	if err != nil {
		return nil, err
	}
	if !daemon {
		logCfg.Output.Stdout = false
		logCfg.Output.Stderr = true
	}
	return logging.NewLogger(logCfg)
}

// Close drains the event connection and flushes the logger.
func (a *app) Close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn(context.Background(), "failed to drain event connection", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
