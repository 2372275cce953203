package generate_slots

import "github.com/m04kA/SMC-AvailabilityService/internal/domain"

var (
	// ErrConsultantRequired не указан консультант
	ErrConsultantRequired = domain.NewValidationError("Consultant id is required")

	// ErrDatesRequired не указаны границы диапазона
	ErrDatesRequired = domain.NewValidationError("Start date and end date are required")

	// ErrEndBeforeStart конец диапазона раньше начала
	ErrEndBeforeStart = domain.NewValidationError("End date must not be before start date")

	// ErrDateRangeTooLarge диапазон длиннее допустимого
	ErrDateRangeTooLarge = domain.NewValidationError("Date range cannot exceed 90 days")

	// ErrInvalidSessionType неизвестный тип сессии
	ErrInvalidSessionType = domain.NewValidationError("Invalid session type")

	// ErrInternal внутренняя ошибка генерации
	ErrInternal = domain.NewInternalError("Failed to generate availability slots")
)
