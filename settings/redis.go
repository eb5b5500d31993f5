package settings

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis reads parameters from fields of one Redis hash.
type Redis struct {
	client redis.UniversalClient
	key    string
}

// NewRedis returns a Provider backed by the hash at key.
func NewRedis(client redis.UniversalClient, key string) *Redis {
	return &Redis{client: client, key: key}
}

// Key returns the hash key the provider reads.
func (r *Redis) Key() string {
	return r.key
}

// Lookup implements Provider with HGET.
func (r *Redis) Lookup(ctx context.Context, name string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.key, name).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Publish writes parameters into the hash. Hosts call it when a connection starts;
// the engine itself only reads.
func (r *Redis) Publish(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	return r.client.HSet(ctx, r.key, values).Err()
}

// Clear deletes the hash.
func (r *Redis) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
