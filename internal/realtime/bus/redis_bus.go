package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/neurobridge-governor/internal/domain/tutoring"
	"github.com/yungbote/neurobridge-governor/internal/platform/envutil"
	"github.com/yungbote/neurobridge-governor/internal/platform/logger"
)

var errNoCallback = errors.New("onEvent callback required")

type Config struct {
	Addr    string
	Channel string
}

func LoadConfigFromEnv() Config {
	return Config{
		Addr:    strings.TrimSpace(envutil.String("REDIS_ADDR", "")),
		Channel: strings.TrimSpace(envutil.String("REDIS_GOVERNANCE_CHANNEL", "governance")),
	}
}

type redisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewRedisBus(cfg Config, log *logger.Logger) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if cfg.Channel == "" {
		cfg.Channel = "governance"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisBus(rdb, cfg.Channel, log), nil
}

func newRedisBus(rdb *goredis.Client, channel string, log *logger.Logger) *redisBus {
	return &redisBus{
		log:     log.With("service", "RedisGovernanceBus"),
		rdb:     rdb,
		channel: channel,
	}
}

// FromEnv returns a redis bus when REDIS_ADDR is set and an in-memory bus
// otherwise.
func FromEnv(log *logger.Logger) (Bus, error) {
	return Open(LoadConfigFromEnv(), log)
}

// Open returns a redis bus when cfg.Addr is set and an in-memory bus
// otherwise.
func Open(cfg Config, log *logger.Logger) (Bus, error) {
	if cfg.Addr == "" {
		return NewMemoryBus(), nil
	}
	return NewRedisBus(cfg, log)
}

func (b *redisBus) PublishGovernance(ctx context.Context, ev types.GovernanceEvent) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis governance bus not initialized")
	}
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onEvent func(ev types.GovernanceEvent)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis governance bus not initialized")
	}
	if onEvent == nil {
		return errNoCallback
	}

	sub := b.rdb.Subscribe(ctx, b.channel)

	// ensures subscription actually started
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					_ = sub.Close()
					return
				}
				var ev types.GovernanceEvent
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					b.log.Warn("bad governance payload", "error", err)
					continue
				}
				onEvent(ev)
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
