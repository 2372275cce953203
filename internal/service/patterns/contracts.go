package patterns

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/reconciliation"
)

// PatternRepository интерфейс репозитория шаблонов
type PatternRepository interface {
	Create(ctx context.Context, p *domain.WeeklyPattern) (*domain.WeeklyPattern, error)
	GetByID(ctx context.Context, consultantID, id string) (*domain.WeeklyPattern, error)
	List(ctx context.Context, filter domain.PatternFilter) ([]*domain.WeeklyPattern, error)
	Update(ctx context.Context, p *domain.WeeklyPattern) (*domain.WeeklyPattern, error)
	Delete(ctx context.Context, consultantID, id string) error
	DeleteByConsultant(ctx context.Context, consultantID string) (int64, error)
}

// Reconciler согласует слоты с изменившимся набором шаблонов
type Reconciler interface {
	Reconcile(ctx context.Context, consultantID string, before, after []*domain.WeeklyPattern) (*reconciliation.Result, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// CacheInvalidator сбрасывает закэшированную доступность консультанта
type CacheInvalidator interface {
	InvalidateConsultant(ctx context.Context, consultantID string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
