package broker_test

import (
	"context"
	"testing"
	"time"

	"github.com/Baaaki/car-marketplace/internal/broker"
	"github.com/Baaaki/car-marketplace/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifier_DeliversToSubscribedUserOnly(t *testing.T) {
	testRedis := testutil.SetupTestRedis(t)
	defer testRedis.Teardown(t)

	notifier, err := broker.NewRedisNotifier(testRedis.URL)
	require.NoError(t, err)
	defer notifier.Close()

	ctx := context.Background()
	sub, err := notifier.Subscribe(ctx, 7)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, notifier.Publish(ctx, 8, broker.Event{Type: broker.EventMessageSent, MessageID: 1}))
	require.NoError(t, notifier.Publish(ctx, 7, broker.Event{
		Type:        broker.EventMessageSent,
		MessageID:   2,
		SenderID:    8,
		ReceiverID:  7,
		MessageText: "is it still available?",
	}))

	select {
	case event := <-sub.Events():
		assert.Equal(t, uint64(2), event.MessageID)
		assert.Equal(t, broker.EventMessageSent, event.Type)
		assert.Equal(t, "is it still available?", event.MessageText)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestRedisNotifier_EventsClosedAfterClose(t *testing.T) {
	testRedis := testutil.SetupTestRedis(t)
	defer testRedis.Teardown(t)

	notifier, err := broker.NewRedisNotifier(testRedis.URL)
	require.NoError(t, err)
	defer notifier.Close()

	sub, err := notifier.Subscribe(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, sub.Close())

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
}

func TestNewRedisNotifier_BadURL(t *testing.T) {
	_, err := broker.NewRedisNotifier("not-a-redis-url")
	assert.Error(t, err)
}

func TestChannelFor(t *testing.T) {
	assert.Equal(t, "messages:user:42", broker.ChannelFor(42))
}
