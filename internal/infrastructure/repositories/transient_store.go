package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/authgate/domain"
)

// TransientStoreImpl implements domain.TransientStore on Redis. Values are
// single-use: Take reads and deletes atomically, so an oauth state or reset
// token can never be replayed.
type TransientStoreImpl struct {
	client *redis.Client
	prefix string
}

// NewTransientStore creates a new transient store
func NewTransientStore(client *redis.Client, prefix string) domain.TransientStore {
	return &TransientStoreImpl{client: client, prefix: prefix}
}

// Put implements domain.TransientStore
func (s *TransientStoreImpl) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, value, ttl).Err()
}

// Take implements domain.TransientStore
func (s *TransientStoreImpl) Take(ctx context.Context, key string) (string, error) {
	value, err := s.client.GetDel(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", err
	}
	return value, nil
}
