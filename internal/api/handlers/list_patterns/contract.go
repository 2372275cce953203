package list_patterns

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"
)

type PatternService interface {
	List(ctx context.Context, consultantID string, req *models.ListPatternsRequest) (*models.PatternListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
