package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the list holding pending messages.
const DefaultRedisKey = "accounts:mail:queue"

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.ContextTimeoutEnabled = true

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisQueue stores messages as JSON in a Redis list so pending mail
// survives a restart and can be shared between replicas.
type RedisQueue struct {
	client *redis.Client
	key    string
	poll   time.Duration
	closed atomic.Bool
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisQueue{client: client, key: key, poll: time.Second}
}

func (q *RedisQueue) Enqueue(ctx context.Context, msg Message) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode mail message: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, b).Err(); err != nil {
		return fmt.Errorf("enqueue mail message: %w", err)
	}
	return nil
}

// Dequeue polls with BLPOP so a closed queue or cancelled context is
// noticed within one poll interval.
func (q *RedisQueue) Dequeue(ctx context.Context) (Message, error) {
	for {
		if q.closed.Load() {
			return Message{}, ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return Message{}, err
		}

		res, err := q.client.BLPop(ctx, q.poll, q.key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Message{}, ctxErr
			}
			return Message{}, fmt.Errorf("dequeue mail message: %w", err)
		}

		// res is [key, value]
		var msg Message
		if err := json.Unmarshal([]byte(res[1]), &msg); err != nil {
			return Message{}, fmt.Errorf("decode mail message: %w", err)
		}
		return msg, nil
	}
}

// Len reports the number of pending messages.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Close marks the queue closed. The client is owned by the caller.
func (q *RedisQueue) Close() error {
	q.closed.Store(true)
	return nil
}
