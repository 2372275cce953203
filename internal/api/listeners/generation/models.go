package generation

import (
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
)

// Message задание на генерацию от внешнего планировщика
type Message struct {
	ConsultantID string  `json:"consultantId"`
	StartDate    string  `json:"startDate"`
	EndDate      string  `json:"endDate"`
	SessionType  *string `json:"sessionType,omitempty"`
}

func (m *Message) ToUseCaseRequest() (*generate_slots.Request, error) {
	start, err := domain.ParseDate(m.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid startDate %q", m.StartDate)
	}
	end, err := domain.ParseDate(m.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid endDate %q", m.EndDate)
	}

	req := &generate_slots.Request{
		ConsultantID: m.ConsultantID,
		StartDate:    start,
		EndDate:      end,
	}
	if m.SessionType != nil {
		st := domain.SessionType(*m.SessionType)
		req.SessionType = &st
	}
	return req, nil
}
