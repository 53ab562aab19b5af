package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/wikibot/internal/logging"
)

// startTestNATSServer starts an embedded NATS server for testing.
func startTestNATSServer(t *testing.T) *natsserver.Server {
	opts := &natsserver.Options{
		Host:   "127.0.0.1",
		Port:   -1, // Random port
		NoLog:  true,
		NoSigs: true,
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})

	return server
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		want    string
		wantErr bool
	}{
		{"dictionary", Event{Guild: "42", Kind: "faqs", Op: "add"}, "wikibot.42.faqs.add", false},
		{"prefix", Event{Guild: "42", Kind: KindPrefix, Op: OpPrefixSet}, "wikibot.42.prefix.set", false},
		{"missing guild", Event{Kind: "faqs", Op: "add"}, "", true},
		{"dotted op", Event{Guild: "42", Kind: "faqs", Op: "a.b"}, "", true},
		{"wildcard kind", Event{Guild: "42", Kind: "*", Op: "add"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Subject("wikibot", tt.event)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNATSPublisher_Publish(t *testing.T) {
	server := startTestNATSServer(t)

	sub, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer sub.Close()

	ch := make(chan *nats.Msg, 1)
	_, err = sub.ChanSubscribe("wikibot.>", ch)
	require.NoError(t, err)
	require.NoError(t, sub.Flush())

	tl := logging.NewTestLogger()
	pub, err := Connect(server.ClientURL(), "wikibot", tl.Logger)
	require.NoError(t, err)
	defer pub.Close()

	ctx := logging.WithRequestID(context.Background(), "req-1")
	err = pub.Publish(ctx, Event{Guild: "222222222222222222", Kind: "ratios", Op: "set", Key: "red science"})
	require.NoError(t, err)
	require.NoError(t, pub.Flush(ctx))

	select {
	case msg := <-ch:
		assert.Equal(t, "wikibot.222222222222222222.ratios.set", msg.Subject)

		var got Event
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.NotEmpty(t, got.ID)
		assert.False(t, got.Time.IsZero())
		assert.Equal(t, "req-1", got.RequestID)
		assert.Equal(t, "red science", got.Key)
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}
}

func TestNATSPublisher_InvalidEvent(t *testing.T) {
	server := startTestNATSServer(t)

	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	pub := NewNATSPublisher(nc, "wikibot", nil)
	err = pub.Publish(context.Background(), Event{Kind: "faqs", Op: "add"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestNATSPublisher_ClosedConnection(t *testing.T) {
	server := startTestNATSServer(t)

	nc, err := nats.Connect(server.ClientURL())
	require.NoError(t, err)
	nc.Close()

	pub := NewNATSPublisher(nc, "wikibot", nil)
	err = pub.Publish(context.Background(), Event{Guild: "1", Kind: "faqs", Op: "add"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{}))
}
