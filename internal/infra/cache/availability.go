package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	namespace          = "availability"
	directoryNamespace = "availability-directory"
	// записи справочника консультантов живут не дольше минуты
	maxDirectoryTTL = time.Minute
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Metrics счетчики обращений к кэшу
type Metrics interface {
	IncCache(service, result string)
}

// AvailabilityKey параметры запроса доступности, из которых строится ключ
type AvailabilityKey struct {
	ConsultantID string
	SessionType  string
	StartDate    string
	EndDate      string
	Limit        int
	Offset       int
}

// String ключ внутри неймспейса консультанта
func (k AvailabilityKey) String() string {
	sessionType := k.SessionType
	if sessionType == "" {
		sessionType = "all"
	}
	return fmt.Sprintf("%s%s:%s:%s:%d:%d",
		ConsultantPrefix(k.ConsultantID), sessionType, k.StartDate, k.EndDate, k.Limit, k.Offset)
}

// ConsultantPrefix неймспейс всех закэшированных ответов консультанта
func ConsultantPrefix(consultantID string) string {
	return namespace + ":" + consultantID + ":"
}

// DirectoryKey ключ записи справочника консультантов по slug или ID
// Лежит вне ConsultantPrefix, поэтому инвалидация слотов его не трогает
func DirectoryKey(slugOrID string) string {
	return directoryNamespace + ":" + slugOrID
}

// AvailabilityCache read-through кэш ответов о доступности
// Ошибки бэкенда логируются и не возвращаются
type AvailabilityCache struct {
	store   Store
	ttl     time.Duration
	logger  Logger
	metrics Metrics
	service string
}

func NewAvailabilityCache(store Store, ttl time.Duration, logger Logger, metrics Metrics, service string) *AvailabilityCache {
	return &AvailabilityCache{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
		service: service,
	}
}

// Get декодирует закэшированное значение в dest, false при промахе или ошибке
func (c *AvailabilityCache) Get(ctx context.Context, key AvailabilityKey, dest interface{}) bool {
	return c.get(ctx, key.String(), dest)
}

// Set сохраняет значение
func (c *AvailabilityCache) Set(ctx context.Context, key AvailabilityKey, value interface{}) {
	c.set(ctx, key.String(), value, c.ttl)
}

// GetConsultant запись справочника консультантов
func (c *AvailabilityCache) GetConsultant(ctx context.Context, slugOrID string, dest interface{}) bool {
	return c.get(ctx, DirectoryKey(slugOrID), dest)
}

// SetConsultant сохраняет запись справочника на короткий TTL
func (c *AvailabilityCache) SetConsultant(ctx context.Context, slugOrID string, value interface{}) {
	ttl := c.ttl
	if ttl <= 0 || ttl > maxDirectoryTTL {
		ttl = maxDirectoryTTL
	}
	c.set(ctx, DirectoryKey(slugOrID), value, ttl)
}

func (c *AvailabilityCache) get(ctx context.Context, key string, dest interface{}) bool {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("availability cache get failed: key=%s, error=%v", key, err)
		c.incMetric("error")
		return false
	}
	if !ok {
		c.incMetric("miss")
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("availability cache decode failed: key=%s, error=%v", key, err)
		c.incMetric("error")
		return false
	}

	c.incMetric("hit")
	return true
}

func (c *AvailabilityCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("availability cache encode failed: key=%s, error=%v", key, err)
		return
	}

	if err := c.store.Set(ctx, key, raw, ttl); err != nil {
		c.logger.Warn("availability cache set failed: key=%s, error=%v", key, err)
	}
}

// InvalidateConsultant сбрасывает весь неймспейс консультанта
func (c *AvailabilityCache) InvalidateConsultant(ctx context.Context, consultantID string) {
	deleted, err := c.store.DeleteByPrefix(ctx, ConsultantPrefix(consultantID))
	if err != nil {
		c.logger.Warn("availability cache invalidation failed: consultantID=%s, error=%v", consultantID, err)
		return
	}
	c.logger.Debug("availability cache invalidated: consultantID=%s, keys=%d", consultantID, deleted)
}

func (c *AvailabilityCache) incMetric(result string) {
	if c.metrics != nil {
		c.metrics.IncCache(c.service, result)
	}
}
