package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Backend keeps every collection as a field of one Redis hash.
type Backend struct {
	client *redis.Client
	key    string
}

func New(ctx context.Context, addr string, password string, db int, key string) (*Backend, error) {
	if key == "" {
		return nil, errors.New("redis state key is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	b := &Backend{client: client, key: key}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := b.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return b, nil
}

// NewWithClient wraps an existing client; the backend takes ownership of it.
func NewWithClient(client *redis.Client, key string) *Backend {
	return &Backend{client: client, key: key}
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *Backend) Close() error {
	return b.client.Close()
}

func (b *Backend) Load(ctx context.Context) (map[string][]byte, error) {
	fields, err := b.client.HGetAll(ctx, b.key).Result()
	if err == redis.Nil {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, err
	}

	values := make(map[string][]byte, len(fields))
	for field, value := range fields {
		values[field] = []byte(value)
	}
	return values, nil
}

// Save writes all fields in one MULTI/EXEC so readers never see a partial
// flush.
func (b *Backend) Save(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}
	args := make(map[string]any, len(values))
	for field, value := range values {
		args[field] = value
	}

	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, b.key, args)
		return nil
	})
	return err
}
