package clock

import "time"

// RealTimeProvider реальный провайдер времени в заданном часовом поясе
type RealTimeProvider struct {
	loc *time.Location
}

// NewRealTimeProvider создает провайдер, nil означает UTC
func NewRealTimeProvider(loc *time.Location) *RealTimeProvider {
	if loc == nil {
		loc = time.UTC
	}
	return &RealTimeProvider{loc: loc}
}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now().In(p.loc)
}

// FixedTimeProvider провайдер с фиксированным временем (для тестов)
type FixedTimeProvider struct {
	T time.Time
}

func (p FixedTimeProvider) Now() time.Time {
	return p.T
}
