package patterns

import "github.com/m04kA/SMC-AvailabilityService/internal/domain"

var (
	// ErrPatternNotFound шаблон не найден или принадлежит другому консультанту
	ErrPatternNotFound = domain.NewNotFoundError("Pattern not found")

	// ErrPatternOverlap интервал пересекается с существующим шаблоном того же типа и дня
	ErrPatternOverlap = domain.NewValidationError("Pattern overlaps with an existing pattern")

	// ErrPatternsOverlapInRequest шаблоны внутри одного запроса пересекаются
	ErrPatternsOverlapInRequest = domain.NewValidationError("Patterns in the request overlap with each other")

	// ErrEmptyUpdate не передано ни одного поля для обновления
	ErrEmptyUpdate = domain.NewValidationError("No fields to update")

	// ErrInvalidSessionType неизвестный тип сессии в фильтре
	ErrInvalidSessionType = domain.NewValidationError("Invalid session type")

	// ErrInternal внутренняя ошибка сервиса
	ErrInternal = domain.NewInternalError("Failed to process availability patterns")
)
