package in_memory

import (
	"context"
	"sync"

	"github.com/iamvkosarev/persona-chat/internal/model"
)

type RecordStorage struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewRecordStorage() *RecordStorage {
	return &RecordStorage{
		records: make(map[string][]byte),
	}
}

func (r *RecordStorage) Get(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	value, ok := r.records[key]
	if !ok {
		return nil, model.ErrRecordDoesNotExist
	}
	return append([]byte(nil), value...), nil
}

func (r *RecordStorage) Set(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key] = append([]byte(nil), value...)
	return nil
}
