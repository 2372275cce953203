package slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Find(ctx context.Context, filter domain.SlotFilter) ([]*domain.AvailabilitySlot, error)
	Count(ctx context.Context, filter domain.SlotFilter) (int, error)
	GetByID(ctx context.Context, id string) (*domain.AvailabilitySlot, error)
	Update(ctx context.Context, filter domain.SlotFilter, update domain.SlotUpdate) (int64, error)
	DeleteUnbooked(ctx context.Context, consultantID, id string) (int64, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// CacheInvalidator сбрасывает закэшированную доступность консультанта
type CacheInvalidator interface {
	InvalidateConsultant(ctx context.Context, consultantID string)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Metrics счетчики конфликтов бронирования
type Metrics interface {
	IncBookingConflict(service, operation string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
