package slots

import "github.com/m04kA/SMC-AvailabilityService/internal/domain"

var (
	// ErrEmptySlotIDs не передан ни один слот
	ErrEmptySlotIDs = domain.NewValidationError("At least one slot id is required")

	// ErrSlotsNotOwned часть слотов не существует или принадлежит другому консультанту
	ErrSlotsNotOwned = domain.NewValidationError("Some availability slots not found or do not belong to you")

	// ErrSlotsUnavailable часть слотов уже забронирована, заблокирована или в прошлом
	ErrSlotsUnavailable = domain.NewConflictError("Some availability slots are already booked or unavailable")

	// ErrSlotsNotBooked освобождение слотов, которые не забронированы
	ErrSlotsNotBooked = domain.NewConflictError("Some availability slots are not booked")

	// ErrSlotsBooked ручная блокировка затрагивает забронированные слоты
	ErrSlotsBooked = domain.NewConflictError("Booked availability slots cannot be blocked or unblocked")

	// ErrSlotNotFound слот не найден или принадлежит другому консультанту
	ErrSlotNotFound = domain.NewNotFoundError("Availability slot not found")

	// ErrCannotDeleteBooked забронированный слот нельзя удалить
	ErrCannotDeleteBooked = domain.NewValidationError("Cannot delete a booked availability slot")

	// ErrDeleteConflict слот забронировали между проверкой и удалением
	ErrDeleteConflict = domain.NewConflictError("Availability slot was booked concurrently")

	// ErrInvalidDate дата не в формате YYYY-MM-DD
	ErrInvalidDate = domain.NewValidationError("Invalid date format, expected YYYY-MM-DD")

	// ErrInvalidSessionType неизвестный тип сессии в фильтре
	ErrInvalidSessionType = domain.NewValidationError("Invalid session type")

	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = domain.NewInternalError("Failed to process availability slots")
)

// Причины, по которым слот нельзя забронировать
const (
	ReasonBooked  = "Slot is already booked"
	ReasonBlocked = "Slot is blocked"
	ReasonPast    = "Slot date is in the past"
)
