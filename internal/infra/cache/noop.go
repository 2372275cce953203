package cache

import (
	"context"
	"time"
)

// NoopStore кэш выключен: всегда промах
type NoopStore struct{}

func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (NoopStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopStore) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NoopStore) DeleteByPrefix(context.Context, string) (int, error) {
	return 0, nil
}
