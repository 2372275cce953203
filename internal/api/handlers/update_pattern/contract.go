package update_pattern

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"
)

type PatternService interface {
	Update(ctx context.Context, consultantID, id string, req *models.UpdatePatternRequest) (*models.PatternMutationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
