package generation_jobs

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/scheduler"
)

type Scheduler interface {
	Trigger(ctx context.Context) (*scheduler.JobStatus, error)
	Get(ctx context.Context, id string) (*scheduler.JobStatus, error)
	List(ctx context.Context, limit int) ([]*scheduler.JobStatus, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
