package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestGetStreamKey(t *testing.T) {
	if got := getStreamKey("abc"); got != "debatehub:events:abc" {
		t.Errorf("unexpected key %q", got)
	}
}

func TestStreamsEventSink_PublishAndHistory(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	sink := NewStreamsEventSink(client, 100, time.Minute, zap.NewNop())
	ctx := context.Background()
	id := uuid.New().String()
	defer client.Del(ctx, getStreamKey(id))

	for i := 0; i < 3; i++ {
		if err := sink.Publish(ctx, domain.ProgressEvent{SessionID: id, StepIndex: i}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	events, err := sink.History(ctx, id)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(events) != 3 || events[2].StepIndex != 2 {
		t.Errorf("unexpected history %+v", events)
	}
}
