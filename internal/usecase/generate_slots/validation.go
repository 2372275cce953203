package generate_slots

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// validateRequest валидирует входные данные запроса
// Диапазон ровно в 90 дней допустим
func validateRequest(req *Request) error {
	if strings.TrimSpace(req.ConsultantID) == "" {
		return ErrConsultantRequired
	}

	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return ErrDatesRequired
	}

	start := domain.TruncateToDate(req.StartDate)
	end := domain.TruncateToDate(req.EndDate)

	if end.Before(start) {
		return ErrEndBeforeStart
	}

	if end.Sub(start) > domain.MaxGenerationRangeDays*24*time.Hour {
		return ErrDateRangeTooLarge
	}

	if req.SessionType != nil && !req.SessionType.IsValid() {
		return ErrInvalidSessionType
	}

	return nil
}
