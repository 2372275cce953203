package scheduler

import "github.com/m04kA/SMC-AvailabilityService/internal/domain"

var (
	ErrJobAlreadyRunning = domain.NewConflictError("Slot generation is already running")
	ErrJobNotFound       = domain.NewNotFoundError("Generation job not found")
	ErrInternal          = domain.NewInternalError("Failed to load generation jobs")
)
