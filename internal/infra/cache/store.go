package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCache базовая ошибка бэкенда кэша
var ErrCache = errors.New("cache: backend error")

// Store key-value хранилище с TTL и удалением по префиксу
type Store interface {
	// Get возвращает значение и признак попадания
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// DeleteByPrefix удаляет все ключи с префиксом, возвращает количество удаленных
	DeleteByPrefix(ctx context.Context, prefix string) (int, error)
}
