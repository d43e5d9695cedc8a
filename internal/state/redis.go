package state

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps the state document under a single key.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedisStore connects to addr, which is either "host:port" or a redis:// URL.
func NewRedisStore(ctx context.Context, addr, key string) (*RedisStore, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}
	log.Info("Connected to redis state backend", "addr", opts.Addr, "key", key)
	return &RedisStore{client: client, key: key}, nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Load(ctx context.Context) (State, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		log.Info("No persisted state key, starting fresh", "key", r.key)
		return State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state key %s: %w", r.key, err)
	}
	return decode(data)
}

func (r *RedisStore) Save(ctx context.Context, s State) error {
	data, err := encode(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write state key %s: %w", r.key, err)
	}
	log.Debug("State saved", "backend", "redis", "players", len(s))
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
