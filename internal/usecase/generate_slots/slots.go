package generate_slots

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// planSlots перебирает даты [start, end] и возвращает слоты, которых еще нет в taken
// Ключ слота: date|startTime|sessionType, день недели 0 = воскресенье
func planSlots(
	consultantID string,
	patterns []*domain.WeeklyPattern,
	start, end time.Time,
	taken map[string]struct{},
	resp *Response,
) []*domain.AvailabilitySlot {
	byWeekday := make(map[int][]*domain.WeeklyPattern, 7)
	for _, p := range patterns {
		byWeekday[p.DayOfWeek] = append(byWeekday[p.DayOfWeek], p)
	}

	queue := make([]*domain.AvailabilitySlot, 0)
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		resp.DaysProcessed++

		for _, p := range byWeekday[int(date.Weekday())] {
			key := domain.SlotKey(date, p.StartTime, p.SessionType)
			if _, ok := taken[key]; ok {
				resp.ExistingSlotsSkipped++
				continue
			}
			taken[key] = struct{}{}

			queue = append(queue, &domain.AvailabilitySlot{
				ConsultantID: consultantID,
				SessionType:  p.SessionType,
				Date:         date,
				StartTime:    p.StartTime,
				EndTime:      p.EndTime,
			})
		}
	}
	return queue
}
