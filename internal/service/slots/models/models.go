package models

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
)

// Request модели

// SetBookedStatusRequest бронирование или освобождение слотов
// Вызывается сервисом сессий при создании и отмене записи
type SetBookedStatusRequest struct {
	SlotIDs   []string `json:"slotIds"`
	IsBooked  bool     `json:"isBooked"`
	SessionID *string  `json:"sessionId,omitempty"`
}

// SetBlockedStatusRequest ручная блокировка свободных слотов владельцем
type SetBlockedStatusRequest struct {
	SlotIDs   []string `json:"slotIds"`
	IsBlocked bool     `json:"isBlocked"`
}

// ListSlotsRequest фильтр слотов для кабинета консультанта
type ListSlotsRequest struct {
	SessionType *string
	StartDate   *string // "2024-05-15"
	EndDate     *string
	IsBooked    *bool
	IsBlocked   *bool
	Limit       int
	Offset      int
}

// Response модели

// SlotResponse слот в ответах API
type SlotResponse struct {
	ID           string    `json:"id"`
	ConsultantID string    `json:"consultantId"`
	SessionType  string    `json:"sessionType"`
	Date         string    `json:"date"`      // "2024-05-15"
	StartTime    string    `json:"startTime"` // "14:00"
	EndTime      string    `json:"endTime"`
	IsBooked     bool      `json:"isBooked"`
	IsBlocked    bool      `json:"isBlocked"`
	SessionID    *string   `json:"sessionId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// StatusUpdateResponse результат смены статуса группы слотов
type StatusUpdateResponse struct {
	SlotIDs      []string `json:"slotIds"`
	UpdatedCount int64    `json:"updatedCount"`
}

// BookableResponse можно ли сейчас забронировать слот
type BookableResponse struct {
	SlotID   string        `json:"slotId"`
	Bookable bool          `json:"bookable"`
	Reason   string        `json:"reason,omitempty"`
	Slot     *SlotResponse `json:"slot,omitempty"`
}

// Pagination параметры страницы
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// SlotListResponse страница слотов консультанта
type SlotListResponse struct {
	Slots      []SlotResponse `json:"slots"`
	Pagination Pagination     `json:"pagination"`
}

// Конвертеры

// FromDomainSlot конвертирует доменный слот в ответ
func FromDomainSlot(s *domain.AvailabilitySlot) SlotResponse {
	return SlotResponse{
		ID:           s.ID,
		ConsultantID: s.ConsultantID,
		SessionType:  string(s.SessionType),
		Date:         s.DateString(),
		StartTime:    s.StartTime.String(),
		EndTime:      s.EndTime.String(),
		IsBooked:     s.IsBooked,
		IsBlocked:    s.IsBlocked,
		SessionID:    s.SessionID,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// FromDomainSlots конвертирует список слотов
func FromDomainSlots(slots []*domain.AvailabilitySlot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, FromDomainSlot(s))
	}
	return out
}
