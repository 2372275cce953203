package scheduler

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
)

type PatternRepository interface {
	ListConsultantIDsWithActivePatterns(ctx context.Context) ([]string, error)
}

type Generator interface {
	Execute(ctx context.Context, req *generate_slots.Request) (*generate_slots.Response, error)
}

// StatusStore хранилище истории прогонов
type StatusStore interface {
	Save(ctx context.Context, job *JobStatus) error
	Get(ctx context.Context, id string) (*JobStatus, bool, error)
	// List последние прогоны, новые первыми
	List(ctx context.Context, limit int) ([]*JobStatus, error)
}

type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
