// Package events publishes change notifications for guild data.
//
// Every successful dictionary mutation and prefix change is published as a
// JSON Event on the subject
//
//	{root}.{guild_id}.{kind}.{op}
//
// where kind is faqs, ratios or prefix. A chat front end running in another
// process subscribes to {root}.> to refresh whatever it caches.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/wikibot/internal/logging"
)

// KindPrefix is the Event kind of prefix table changes.
const KindPrefix = "prefix"

// OpPrefixSet is the op of a prefix change.
const OpPrefixSet = "set"

// ErrInvalidEvent is returned for events that cannot form a subject.
var ErrInvalidEvent = errors.New("invalid event")

// Event describes one persisted change.
type Event struct {
	ID        string    `json:"id"`
	Guild     string    `json:"guild"`
	Kind      string    `json:"kind"`
	Op        string    `json:"op"`
	Key       string    `json:"key,omitempty"`
	Value     string    `json:"value,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Time      time.Time `json:"time"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(context.Context, Event) error { return nil }

// Subject returns the subject e is published on under root.
func Subject(root string, e Event) (string, error) {
	for _, tok := range []string{e.Guild, e.Kind, e.Op} {
		if tok == "" || strings.ContainsAny(tok, ". \t*>") {
			return "", fmt.Errorf("%w: bad subject token %q", ErrInvalidEvent, tok)
		}
	}
	return fmt.Sprintf("%s.%s.%s.%s", root, e.Guild, e.Kind, e.Op), nil
}

// NATSPublisher publishes events on a NATS connection.
type NATSPublisher struct {
	nc     *nats.Conn
	root   string
	logger *logging.Logger
}

// NewNATSPublisher wraps an established connection. The caller owns nc.
func NewNATSPublisher(nc *nats.Conn, root string, logger *logging.Logger) *NATSPublisher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &NATSPublisher{nc: nc, root: root, logger: logger.Named("events")}
}

// Connect dials url and returns a publisher owning the connection. Close
// releases it.
func Connect(url, root string, logger *logging.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("wikibot"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	return NewNATSPublisher(nc, root, logger), nil
}

// Publish fills in ID, Time and RequestID when unset and publishes e.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = logging.RequestIDFromContext(ctx)
	}

	subject, err := Subject(p.root, e)
	if err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Trace(ctx, "event published", zap.String("subject", subject), zap.String("event.id", e.ID))
	return nil
}

// Flush waits until the server has processed everything published so far.
func (p *NATSPublisher) Flush(ctx context.Context) error {
	return p.nc.FlushWithContext(ctx)
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	if err := p.nc.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		p.nc.Close()
		return err
	}
	return nil
}
