package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модель запроса свободных слотов консультанта
type Request struct {
	Consultant  string     // публичный slug или ID консультанта
	SessionType *string    // nil - все типы
	StartDate   *time.Time // nil - сегодня, даты в прошлом сдвигаются на сегодня
	EndDate     *time.Time // nil - StartDate + 14 дней
	Limit       int        // 0 - 100, не больше 200
	Offset      int
}

// Response модель ответа со свободными слотами
// Кэшируется целиком в JSON
type Response struct {
	ConsultantID   string
	StartDate      time.Time
	EndDate        time.Time
	Slots          []Slot
	SlotsByDate    map[string][]Slot // "2024-05-15" -> слоты дня по возрастанию startTime
	TotalAvailable int               // без учета пагинации
	Pagination     Pagination
}

// Slot свободный слот
type Slot struct {
	ID          string
	SessionType string
	Date        string // "2024-05-15"
	StartTime   types.TimeString
	EndTime     types.TimeString
}

// Pagination параметры страницы
type Pagination struct {
	Limit   int
	Offset  int
	Total   int
	HasMore bool
}
