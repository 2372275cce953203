package create_pattern

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"
)

type PatternService interface {
	Create(ctx context.Context, consultantID string, in *models.PatternInput) (*models.PatternMutationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
