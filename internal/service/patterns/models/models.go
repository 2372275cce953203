package models

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Request модели

// PatternInput данные одного шаблона в запросах создания и массовой замены
type PatternInput struct {
	SessionType string `json:"sessionType"`
	DayOfWeek   int    `json:"dayOfWeek"` // 0 - воскресенье
	StartTime   string `json:"startTime"` // "14:00"
	EndTime     string `json:"endTime"`
	IsActive    *bool  `json:"isActive,omitempty"` // по умолчанию true
	Timezone    string `json:"timezone,omitempty"` // по умолчанию UTC
}

// ToDomain конвертирует вход в доменный шаблон консультанта
func (in *PatternInput) ToDomain(consultantID string) *domain.WeeklyPattern {
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}
	timezone := in.Timezone
	if timezone == "" {
		timezone = domain.DefaultPatternZone
	}

	return &domain.WeeklyPattern{
		ConsultantID: consultantID,
		SessionType:  domain.SessionType(in.SessionType),
		DayOfWeek:    in.DayOfWeek,
		StartTime:    types.TimeString(in.StartTime),
		EndTime:      types.TimeString(in.EndTime),
		IsActive:     isActive,
		Timezone:     timezone,
	}
}

// UpdatePatternRequest частичное обновление шаблона
type UpdatePatternRequest struct {
	SessionType *string `json:"sessionType,omitempty"`
	DayOfWeek   *int    `json:"dayOfWeek,omitempty"`
	StartTime   *string `json:"startTime,omitempty"`
	EndTime     *string `json:"endTime,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
	Timezone    *string `json:"timezone,omitempty"`
}

// IsEmpty true, если не передано ни одного поля
func (r *UpdatePatternRequest) IsEmpty() bool {
	return r.SessionType == nil && r.DayOfWeek == nil && r.StartTime == nil &&
		r.EndTime == nil && r.IsActive == nil && r.Timezone == nil
}

// Apply возвращает копию шаблона с примененными изменениями
func (r *UpdatePatternRequest) Apply(p *domain.WeeklyPattern) *domain.WeeklyPattern {
	updated := *p
	if r.SessionType != nil {
		updated.SessionType = domain.SessionType(*r.SessionType)
	}
	if r.DayOfWeek != nil {
		updated.DayOfWeek = *r.DayOfWeek
	}
	if r.StartTime != nil {
		updated.StartTime = types.TimeString(*r.StartTime)
	}
	if r.EndTime != nil {
		updated.EndTime = types.TimeString(*r.EndTime)
	}
	if r.IsActive != nil {
		updated.IsActive = *r.IsActive
	}
	if r.Timezone != nil {
		updated.Timezone = *r.Timezone
	}
	return &updated
}

// ListPatternsRequest фильтр списка шаблонов
type ListPatternsRequest struct {
	SessionType *string
	ActiveOnly  bool
}

// Response модели

// PatternResponse шаблон в ответах API
type PatternResponse struct {
	ID           string    `json:"id"`
	ConsultantID string    `json:"consultantId"`
	SessionType  string    `json:"sessionType"`
	DayOfWeek    int       `json:"dayOfWeek"`
	StartTime    string    `json:"startTime"`
	EndTime      string    `json:"endTime"`
	IsActive     bool      `json:"isActive"`
	Timezone     string    `json:"timezone"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ReconciliationSummary сколько слотов затронуло изменение шаблонов
type ReconciliationSummary struct {
	SlotsBlocked  int64 `json:"slotsBlocked"`
	SlotsRestored int64 `json:"slotsRestored"`
	SlotsRetimed  int64 `json:"slotsRetimed"`
}

// PatternMutationResponse ответ на создание и обновление шаблона
type PatternMutationResponse struct {
	Pattern        PatternResponse       `json:"pattern"`
	Reconciliation ReconciliationSummary `json:"reconciliation"`
}

// DeletePatternResponse ответ на удаление шаблона
type DeletePatternResponse struct {
	ID             string                `json:"id"`
	Reconciliation ReconciliationSummary `json:"reconciliation"`
}

// PatternListResponse список шаблонов
type PatternListResponse struct {
	Patterns []PatternResponse `json:"patterns"`
	Total    int               `json:"total"`
}

// BulkReplaceResponse результат массовой замены
type BulkReplaceResponse struct {
	Patterns       []PatternResponse     `json:"patterns"`
	Removed        int64                 `json:"removed"`
	Reconciliation ReconciliationSummary `json:"reconciliation"`
}

// Конвертеры

// FromDomainPattern конвертирует доменный шаблон в ответ
func FromDomainPattern(p *domain.WeeklyPattern) PatternResponse {
	return PatternResponse{
		ID:           p.ID,
		ConsultantID: p.ConsultantID,
		SessionType:  string(p.SessionType),
		DayOfWeek:    p.DayOfWeek,
		StartTime:    p.StartTime.String(),
		EndTime:      p.EndTime.String(),
		IsActive:     p.IsActive,
		Timezone:     p.Timezone,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

// FromDomainPatterns конвертирует список шаблонов
func FromDomainPatterns(patterns []*domain.WeeklyPattern) []PatternResponse {
	out := make([]PatternResponse, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, FromDomainPattern(p))
	}
	return out
}
