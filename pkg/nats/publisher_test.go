package nats

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"healthassist-be/internal/pkg/logger"
	"healthassist-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.SESSION_CREATED", Subject(events.SessionCreated))
	assert.Equal(t, "events.FALLBACK_USED", Subject(events.FallbackUsed))
}

func TestPublisher_Publish(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("Skipping NATS publisher test: NATS_URL not set")
	}

	p, err := NewPublisher(url, logger.NewNopLogger())
	if err != nil {
		t.Skipf("Skipping NATS publisher test: %v", err)
	}
	defer p.Close()

	sub, err := p.nc.SubscribeSync(Subject(events.SessionDeleted))
	require.NoError(t, err)
	defer func() { _ = sub.Unsubscribe() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.Publish(ctx, events.NewSessionDeleted("s1", "alice")))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)

	var got envelope
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, events.SessionDeleted, got.Type)
	assert.Equal(t, "s1", got.Data["session_id"])
}
