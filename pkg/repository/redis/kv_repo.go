package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mk-2871/Proof-of-Talent/pkg/kv"
)

// KVRepository implements kv.Store on Redis. Every key is namespaced with
// prefix so several engines can share one instance.
type KVRepository struct {
	client *goredis.Client
	prefix string
}

func NewKVRepository(client *goredis.Client, prefix string) *KVRepository {
	return &KVRepository{client: client, prefix: prefix}
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *KVRepository) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}
