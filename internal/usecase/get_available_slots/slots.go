package get_available_slots

import (
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// toSlots конвертирует доменные слоты, сохраняя порядок (date, startTime)
func toSlots(found []*domain.AvailabilitySlot) []Slot {
	out := make([]Slot, 0, len(found))
	for _, s := range found {
		out = append(out, Slot{
			ID:          s.ID,
			SessionType: string(s.SessionType),
			Date:        s.DateString(),
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
		})
	}
	return out
}

// groupByDate раскладывает слоты по датам, порядок внутри дня сохраняется
func groupByDate(slots []Slot) map[string][]Slot {
	byDate := make(map[string][]Slot)
	for _, s := range slots {
		byDate[s.Date] = append(byDate[s.Date], s)
	}
	return byDate
}
