package set_booked_status

import (
	"context"

	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

type SlotService interface {
	SetBookedStatus(ctx context.Context, consultantID string, req *models.SetBookedStatusRequest) (*models.StatusUpdateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
