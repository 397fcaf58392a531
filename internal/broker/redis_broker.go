package broker

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Baaaki/car-marketplace/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "messages:user:"

// ChannelFor returns the Redis channel carrying events for userID.
func ChannelFor(userID uint64) string {
	return channelPrefix + strconv.FormatUint(userID, 10)
}

// RedisNotifier implements Notifier using Redis pub/sub
type RedisNotifier struct {
	client *redis.Client
}

func NewRedisNotifier(redisURL string) (*RedisNotifier, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisNotifier{client: client}, nil
}

func (r *RedisNotifier) Publish(ctx context.Context, userID uint64, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(ctx, ChannelFor(userID), data).Err()
}

// Subscribe returns once Redis has confirmed the subscription, so events
// published after it returns are not missed.
func (r *RedisNotifier) Subscribe(ctx context.Context, userID uint64) (*Subscription, error) {
	pubsub := r.client.Subscribe(ctx, ChannelFor(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	events := make(chan Event, 100)

	go func() {
		defer close(events)

		for redisMsg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(redisMsg.Payload), &event); err != nil {
				logger.Log.Warn("Dropping malformed message event",
					zap.String("channel", redisMsg.Channel),
					zap.Error(err),
				)
				continue
			}

			select {
			case events <- event:
			default:
				logger.Log.Warn("Subscriber too slow, dropping message event",
					zap.Uint64("user_id", userID),
					zap.Uint64("message_id", event.MessageID),
				)
			}
		}
	}()

	return &Subscription{pubsub: pubsub, events: events}, nil
}

func (r *RedisNotifier) Close() error {
	return r.client.Close()
}

// Subscription is one user's live event stream.
type Subscription struct {
	pubsub *redis.PubSub
	events chan Event
}

// Events is closed after Close is called.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Close() error {
	return s.pubsub.Close()
}
