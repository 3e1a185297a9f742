package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/realtime"
)

const (
	defaultRedisChannel = "catalog"
	redisDialTimeout    = 5 * time.Second
	redisPublishTimeout = 3 * time.Second
)

type RedisConfig struct {
	Addr    string
	Channel string
}

// envelope is the wire form on the Redis channel. Origin identifies the
// publishing instance so lag can be attributed in logs.
type envelope struct {
	Origin  string              `json:"origin"`
	SentAt  time.Time           `json:"sent_at"`
	Message realtime.SSEMessage `json:"message"`
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	origin  string

	mu   sync.Mutex
	subs []*goredis.PubSub
}

// NewRedisBus connects to Redis and fails fast when it does not answer.
func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = defaultRedisChannel
	}

	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DialTimeout: redisDialTimeout})
	ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return newRedisBus(log, rdb, channel), nil
}

func newRedisBus(log *logger.Logger, rdb *goredis.Client, channel string) *redisBus {
	origin := uuid.NewString()
	return &redisBus{
		log:     log.With("service", "RedisCatalogBus", "channel", channel, "origin", origin),
		rdb:     rdb,
		channel: channel,
		origin:  origin,
	}
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	raw, err := encodeEnvelope(envelope{Origin: b.origin, SentAt: time.Now().UTC(), Message: msg})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, redisPublishTimeout)
	defer cancel()
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// StartForwarder subscribes before returning, so a Publish issued after it
// returns is always delivered.
func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	go b.forward(ctx, sub, onMsg)
	return nil
}

func (b *redisBus) forward(ctx context.Context, sub *goredis.PubSub, onMsg func(realtime.SSEMessage)) {
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			env, err := decodeEnvelope(m.Payload)
			if err != nil {
				b.log.Warn("bad redis catalog payload", "error", err)
				continue
			}
			if lag := time.Since(env.SentAt); lag > time.Second {
				b.log.Debug("slow catalog notice", "from", env.Origin, "lag_ms", lag.Milliseconds())
			}
			onMsg(env.Message)
		}
	}
}

func encodeEnvelope(env envelope) ([]byte, error) {
	if env.Message.Channel == "" {
		return nil, fmt.Errorf("message channel required")
	}
	return json.Marshal(env)
}

func decodeEnvelope(payload string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return envelope{}, err
	}
	if env.Message.Channel == "" {
		return envelope{}, fmt.Errorf("missing channel")
	}
	return env, nil
}

// Close ends every forwarder and releases the client.
func (b *redisBus) Close() error {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Close()
	}
	return b.rdb.Close()
}
