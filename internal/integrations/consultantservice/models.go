package consultantservice

// StatusApproved консультант одобрен администратором и доступен для бронирования
const StatusApproved = "APPROVED"

// Consultant публичная карточка консультанта из ConsultantService
type Consultant struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// IsBookable true для одобренных консультантов
func (c *Consultant) IsBookable() bool {
	return c.Status == StatusApproved
}

// ErrorResponse модель ошибки от ConsultantService
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
