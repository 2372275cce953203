package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// window итоговые параметры запроса после применения умолчаний
type window struct {
	start       time.Time
	end         time.Time
	sessionType *domain.SessionType
	limit       int
	offset      int
	// период целиком в прошлом, слотов в нем быть не может
	empty bool
}

// resolveWindow применяет умолчания и ограничения к запросу
// Начало не раньше сегодняшнего дня, конец по умолчанию через 14 дней после начала
func resolveWindow(req *Request, today time.Time) (*window, error) {
	w := &window{
		start:  today,
		limit:  req.Limit,
		offset: req.Offset,
	}

	if req.SessionType != nil && *req.SessionType != "" {
		sessionType := domain.SessionType(*req.SessionType)
		if !sessionType.IsValid() {
			return nil, ErrInvalidSessionType
		}
		w.sessionType = &sessionType
	}

	if req.StartDate != nil {
		if start := domain.TruncateToDate(*req.StartDate); start.After(today) {
			w.start = start
		}
	}

	w.end = w.start.AddDate(0, 0, domain.DefaultWindowDays)
	if req.EndDate != nil {
		w.end = domain.TruncateToDate(*req.EndDate)
		// Сравниваются даты из запроса, до сдвига начала
		if req.StartDate != nil && w.end.Before(domain.TruncateToDate(*req.StartDate)) {
			return nil, ErrEndBeforeStart
		}
	}
	// После сдвига начала на сегодня период может оказаться пустым
	w.empty = w.end.Before(w.start)

	if w.limit <= 0 {
		w.limit = domain.DefaultQueryLimit
	}
	if w.limit > domain.MaxQueryLimit {
		w.limit = domain.MaxQueryLimit
	}
	if w.offset < 0 {
		w.offset = 0
	}

	return w, nil
}
