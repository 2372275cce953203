package generate_slots

import (
	"fmt"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
)

// GenerateSlotsRequest HTTP request model
type GenerateSlotsRequest struct {
	StartDate   string  `json:"startDate"` // "2024-05-13"
	EndDate     string  `json:"endDate"`
	SessionType *string `json:"sessionType,omitempty"`
}

// ToUseCaseRequest пустые даты передаются дальше нулевыми, их отвергнет валидация use case
func (r *GenerateSlotsRequest) ToUseCaseRequest(consultantID string) (*generate_slots.Request, error) {
	req := &generate_slots.Request{ConsultantID: consultantID}

	if r.StartDate != "" {
		d, err := domain.ParseDate(r.StartDate)
		if err != nil {
			return nil, fmt.Errorf("startDate must be in YYYY-MM-DD format")
		}
		req.StartDate = d
	}
	if r.EndDate != "" {
		d, err := domain.ParseDate(r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("endDate must be in YYYY-MM-DD format")
		}
		req.EndDate = d
	}
	if r.SessionType != nil {
		st := domain.SessionType(*r.SessionType)
		req.SessionType = &st
	}
	return req, nil
}
