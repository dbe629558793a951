package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
	"github.com/yungbote/spacekeeper-backend/internal/realtime"
)

const defaultChannel = "spacekeeper:sse"

// RedisOptions configures the cross-replica bus.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// envelope is the pub/sub payload. Origin and SentAt only feed diagnostics;
// every replica, the publisher included, delivers the message.
type envelope struct {
	Origin string              `json:"origin"`
	SentAt time.Time           `json:"sent_at"`
	Msg    realtime.SSEMessage `json:"msg"`
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
	node    string
}

func NewRedisBus(log *logger.Logger, opts RedisOptions) (Bus, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	opts.Addr = strings.TrimSpace(opts.Addr)
	if opts.Addr == "" {
		return nil, errors.New("missing REDIS_ADDR")
	}
	if opts.Channel = strings.TrimSpace(opts.Channel); opts.Channel == "" {
		opts.Channel = defaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	node := nodeName()
	return &redisBus{
		log:     log.With("service", "RedisSSEBus", "channel", opts.Channel, "node", node),
		rdb:     rdb,
		channel: opts.Channel,
		node:    node,
	}, nil
}

// NewSSEBus picks redis when an address is configured and the in-process
// bus otherwise.
func NewSSEBus(log *logger.Logger, opts RedisOptions) (Bus, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		log.Info("REDIS_ADDR not set; realtime events stay in-process")
		return NewLocalBus(), nil
	}
	return NewRedisBus(log, opts)
}

func nodeName() string {
	host, _ := os.Hostname()
	if host == "" {
		host = "node"
	}
	return host + "-" + uuid.NewString()[:8]
}

func encodeEnvelope(node string, msg realtime.SSEMessage, now time.Time) ([]byte, error) {
	return json.Marshal(envelope{Origin: node, SentAt: now.UTC(), Msg: msg})
}

func decodeEnvelope(payload string) (envelope, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return envelope{}, err
	}
	if env.Msg.Channel == "" {
		return envelope{}, errors.New("envelope without channel")
	}
	return env, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis SSE bus not initialized")
	}
	raw, err := encodeEnvelope(b.node, msg, time.Now())
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return errors.New("redis SSE bus not initialized")
	}
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	// Receive blocks until the subscription is confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					b.log.Warn("redis subscription closed")
					return
				}
				env, err := decodeEnvelope(m.Payload)
				if err != nil {
					b.log.Warn("Dropping redis SSE payload", "error", err)
					continue
				}
				if lag := time.Since(env.SentAt); lag > time.Second {
					b.log.Debug("Slow SSE fan-out", "origin", env.Origin, "lag_ms", lag.Milliseconds())
				}
				onMsg(env.Msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
