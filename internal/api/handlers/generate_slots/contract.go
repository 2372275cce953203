package generate_slots

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
)

type UseCase interface {
	Execute(ctx context.Context, req *generate_slots.Request) (*generate_slots.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
