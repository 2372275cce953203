package generate_slots

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// PatternRepository интерфейс репозитория шаблонов
type PatternRepository interface {
	List(ctx context.Context, filter domain.PatternFilter) ([]*domain.WeeklyPattern, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Find(ctx context.Context, filter domain.SlotFilter) ([]*domain.AvailabilitySlot, error)
	CreateBatch(ctx context.Context, slots []*domain.AvailabilitySlot) (int, error)
}

// CacheInvalidator сбрасывает закэшированную доступность консультанта
type CacheInvalidator interface {
	InvalidateConsultant(ctx context.Context, consultantID string)
}

// Metrics счетчик созданных слотов
type Metrics interface {
	AddSlotsGenerated(service, sessionType string, n int)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
