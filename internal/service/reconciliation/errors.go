package reconciliation

import "github.com/m04kA/SMC-AvailabilityService/internal/domain"

var (
	// ErrInternal возвращается при ошибках хранилища слотов
	ErrInternal = domain.NewInternalError("Failed to reconcile availability slots")
)
