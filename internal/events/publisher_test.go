package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	added []*redis.XAddArgs
	err   error
}

func (f *fakeRedis) XAdd(_ context.Context, args *redis.XAddArgs) *redis.StringCmd {
	f.added = append(f.added, args)
	cmd := redis.NewStringCmd(context.Background())
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal("1-0")
	}
	return cmd
}

func TestPublishRunCompleted(t *testing.T) {
	client := &fakeRedis{}
	p := NewPublisher(client, "stream:review_runs", slog.Default())

	err := p.PublishRunCompleted(context.Background(), RunCompletedPayload{
		RunID:       "run-1",
		Brand:       "lancome",
		Markets:     []string{"vietnam", "saudi_arabia"},
		ReviewCount: 42,
	})
	require.NoError(t, err)

	require.Len(t, client.added, 1)
	assert.Equal(t, "stream:review_runs", client.added[0].Stream)

	var payload RunCompletedPayload
	raw := client.added[0].Values.(map[string]any)["payload"].(string)
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.Equal(t, string(EventTypeRunCompleted), payload.EventType)
	assert.Equal(t, "run-1", payload.RunID)
	assert.Equal(t, 42, payload.ReviewCount)
	assert.NotEmpty(t, payload.EventID)
	assert.False(t, payload.Timestamp.IsZero())
}

func TestPublishMarketScraped(t *testing.T) {
	client := &fakeRedis{}
	p := NewPublisher(client, "stream:review_runs", slog.Default())

	err := p.PublishMarketScraped(context.Background(), MarketScrapedPayload{
		RunID:       "run-1",
		Market:      "vietnam",
		Products:    3,
		ReviewCount: 17,
	})
	require.NoError(t, err)
	require.Len(t, client.added, 1)
}
