package get_available_slots

import "github.com/m04kA/SMC-AvailabilityService/internal/domain"

var (
	// ErrConsultantNotFound консультант не найден или не принимает записи
	ErrConsultantNotFound = domain.NewNotFoundError("Consultant not found")

	// ErrEndBeforeStart конец периода раньше начала
	ErrEndBeforeStart = domain.NewValidationError("End date must not be before start date")

	// ErrInvalidSessionType неизвестный тип сессии
	ErrInvalidSessionType = domain.NewValidationError("Invalid session type")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = domain.NewInternalError("Failed to load availability")
)
