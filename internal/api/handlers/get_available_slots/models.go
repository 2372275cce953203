package get_available_slots

import (
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-AvailabilityService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	ConsultantID   string                     `json:"consultantId"`
	StartDate      string                     `json:"startDate"`
	EndDate        string                     `json:"endDate"`
	Slots          []AvailableSlot            `json:"slots"`
	SlotsByDate    map[string][]AvailableSlot `json:"slotsByDate"`
	TotalAvailable int                        `json:"totalAvailable"`
	Pagination     Pagination                 `json:"pagination"`
}

// AvailableSlot свободный слот
type AvailableSlot struct {
	ID          string `json:"id"`
	SessionType string `json:"sessionType"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// Pagination параметры страницы
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	byDate := make(map[string][]AvailableSlot, len(resp.SlotsByDate))
	for date, slots := range resp.SlotsByDate {
		byDate[date] = toAvailableSlots(slots)
	}

	return &AvailableSlotsResponse{
		ConsultantID:   resp.ConsultantID,
		StartDate:      resp.StartDate.Format(domain.DateFormat),
		EndDate:        resp.EndDate.Format(domain.DateFormat),
		Slots:          toAvailableSlots(resp.Slots),
		SlotsByDate:    byDate,
		TotalAvailable: resp.TotalAvailable,
		Pagination: Pagination{
			Limit:   resp.Pagination.Limit,
			Offset:  resp.Pagination.Offset,
			Total:   resp.Pagination.Total,
			HasMore: resp.Pagination.HasMore,
		},
	}
}

func toAvailableSlots(slots []getAvailableSlots.Slot) []AvailableSlot {
	out := make([]AvailableSlot, len(slots))
	for i, s := range slots {
		out[i] = AvailableSlot{
			ID:          s.ID,
			SessionType: s.SessionType,
			Date:        s.Date,
			StartTime:   s.StartTime.String(),
			EndTime:     s.EndTime.String(),
		}
	}
	return out
}
