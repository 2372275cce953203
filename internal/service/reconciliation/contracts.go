package reconciliation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// SlotUpdater условное обновление слотов
type SlotUpdater interface {
	Update(ctx context.Context, filter domain.SlotFilter, update domain.SlotUpdate) (int64, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics счетчик заблокированных слотов
type Metrics interface {
	AddSlotsBlocked(service string, n int64)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
