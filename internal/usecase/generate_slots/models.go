package generate_slots

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Request модель запроса на генерацию слотов
type Request struct {
	ConsultantID string
	StartDate    time.Time           // включительно
	EndDate      time.Time           // включительно
	SessionType  *domain.SessionType // nil - все типы
}

// Response итог генерации
type Response struct {
	SlotsCreated         int `json:"slotsCreated"`
	PatternsFound        int `json:"patternsFound"`
	DaysProcessed        int `json:"daysProcessed"`
	ExistingSlotsSkipped int `json:"existingSlotsSkipped"`
}
