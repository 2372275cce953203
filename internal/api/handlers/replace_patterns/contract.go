package replace_patterns

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"
)

type PatternService interface {
	BulkReplace(ctx context.Context, consultantID string, inputs []models.PatternInput) (*models.BulkReplaceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
