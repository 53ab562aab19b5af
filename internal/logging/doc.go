// Package logging provides structured logging for wikibot.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - JSON or console output to stdout, stderr and/or a file
//   - Automatic context field injection (guild, purpose, request)
//   - Level-aware sampling (errors never sampled)
//
// # Usage
//
// Create logger from config:
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
// Log with context:
//
//	ctx := logging.WithGuild(ctx, "222222222222222222")
//	ctx = logging.WithRequestID(ctx, "7d3b1e0a-...")
//	logger.Info(ctx, "faq resolved", zap.String("key", "steam"))
//
// Output includes automatic correlation:
//
//	{
//	  "ts": "2026-10-17T10:15:30Z",
//	  "level": "info",
//	  "msg": "faq resolved",
//	  "guild.id": "222222222222222222",
//	  "request.id": "7d3b1e0a-...",
//	  "key": "steam"
//	}
//
// # Sampling
//
// Below-error levels are sampled per tick; errors always pass. Disable for
// debugging:
//
//	cfg.Sampling.Enabled = false
//
// # Testing
//
// Use TestLogger for test assertions:
//
//	tl := logging.NewTestLogger()
//	store := dictionary.NewStore(cfg, tl.Logger)
//	...
//	tl.AssertLogged(t, zapcore.ErrorLevel, "unparsable dictionary")
//
// Logger is safe for concurrent use. Child loggers (With, Named) are
// independent and do not affect parent or siblings.
package logging
