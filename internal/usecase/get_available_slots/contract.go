package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/cache"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/consultantservice"
)

// SlotRepository чтение свободных слотов
type SlotRepository interface {
	Find(ctx context.Context, filter domain.SlotFilter) ([]*domain.AvailabilitySlot, error)
	Count(ctx context.Context, filter domain.SlotFilter) (int, error)
}

// ConsultantServiceClient справочник консультантов, принимает slug или ID
type ConsultantServiceClient interface {
	GetConsultant(ctx context.Context, slugOrID string) (*consultantservice.Consultant, error)
}

// AvailabilityCache read-through кэш ответов и записей справочника
type AvailabilityCache interface {
	Get(ctx context.Context, key cache.AvailabilityKey, dest interface{}) bool
	Set(ctx context.Context, key cache.AvailabilityKey, value interface{})
	GetConsultant(ctx context.Context, slugOrID string, dest interface{}) bool
	SetConsultant(ctx context.Context, slugOrID string, value interface{})
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
