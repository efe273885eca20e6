package key_value

import (
	"context"
	"errors"
	"fmt"

	"github.com/iamvkosarev/persona-chat/internal/model"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "persona_chat_"

type RecordStorage struct {
	rdb *redis.Client
}

func NewRecordStorage(rdb *redis.Client) *RecordStorage {
	return &RecordStorage{
		rdb: rdb,
	}
}

func (r *RecordStorage) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.rdb.Get(ctx, getRecordKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrRecordDoesNotExist
		}
		return nil, fmt.Errorf("failed to get record %s: %w", key, err)
	}
	return raw, nil
}

func (r *RecordStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, getRecordKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

func getRecordKey(key string) string {
	return keyPrefix + key
}
