package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// SessionType represents the kind of consulting session
// Each type has its own independent pattern and slot namespace
type SessionType string

const (
	SessionTypePersonal SessionType = "PERSONAL"
	SessionTypeWebinar  SessionType = "WEBINAR"
)

// IsValid returns true for known session types
func (s SessionType) IsValid() bool {
	return s == SessionTypePersonal || s == SessionTypeWebinar
}

// WeeklyPattern is a recurring availability rule of a consultant
// ("every Wednesday 14:00-15:00 for PERSONAL sessions")
type WeeklyPattern struct {
	ID           string
	ConsultantID string
	SessionType  SessionType
	DayOfWeek    int // 0=Sunday .. 6=Saturday
	StartTime    types.TimeString
	EndTime      types.TimeString
	IsActive     bool
	Timezone     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Key returns the composite key that links the pattern to its generated slots
func (p *WeeklyPattern) Key() PatternKey {
	return PatternKey{
		SessionType: p.SessionType,
		DayOfWeek:   p.DayOfWeek,
		StartTime:   p.StartTime,
	}
}

// Overlaps returns true if both patterns share session type and weekday
// and their [start, end) intervals intersect. Adjacent intervals do not overlap.
func (p *WeeklyPattern) Overlaps(other *WeeklyPattern) bool {
	if p.SessionType != other.SessionType || p.DayOfWeek != other.DayOfWeek {
		return false
	}
	return p.StartTime < other.EndTime && other.StartTime < p.EndTime
}

// Validate checks the pattern fields, returns *Error with KindValidation
func (p *WeeklyPattern) Validate() error {
	if !p.SessionType.IsValid() {
		return NewValidationError(fmt.Sprintf("Invalid session type: %q", p.SessionType))
	}
	if p.DayOfWeek < 0 || p.DayOfWeek > 6 {
		return NewValidationError("Day of week must be between 0 (Sunday) and 6 (Saturday)")
	}
	if err := p.StartTime.Validate(); err != nil {
		return NewValidationError("Start time must be in HH:MM format")
	}
	if err := p.EndTime.Validate(); err != nil {
		return NewValidationError("End time must be in HH:MM format")
	}
	if !p.StartTime.IsBefore(p.EndTime) {
		return NewValidationError("Start time must be before end time")
	}
	if p.Timezone != "" {
		if _, err := time.LoadLocation(p.Timezone); err != nil {
			return NewValidationError(fmt.Sprintf("Invalid timezone: %q", p.Timezone))
		}
	}
	return nil
}

// FindOverlap returns the first pattern from the list that overlaps with p
// Pattern with the same ID is skipped (update of itself)
func FindOverlap(p *WeeklyPattern, existing []*WeeklyPattern) *WeeklyPattern {
	for _, other := range existing {
		if other.ID != "" && other.ID == p.ID {
			continue
		}
		if p.Overlaps(other) {
			return other
		}
	}
	return nil
}

// PatternKey identifies the slots generated by a pattern: (sessionType, dayOfWeek, startTime)
type PatternKey struct {
	SessionType SessionType
	DayOfWeek   int
	StartTime   types.TimeString
}

func (k PatternKey) String() string {
	return fmt.Sprintf("%s-%d-%s", k.SessionType, k.DayOfWeek, k.StartTime)
}

// PatternKeySet set of pattern keys
type PatternKeySet map[PatternKey]struct{}

// KeysOf builds the key set of the given patterns
// Inactive patterns do not generate slots and are skipped when activeOnly is set
func KeysOf(patterns []*WeeklyPattern, activeOnly bool) PatternKeySet {
	set := make(PatternKeySet, len(patterns))
	for _, p := range patterns {
		if activeOnly && !p.IsActive {
			continue
		}
		set[p.Key()] = struct{}{}
	}
	return set
}

// Minus returns keys present in s but absent in other, sorted for stable processing
func (s PatternKeySet) Minus(other PatternKeySet) []PatternKey {
	diff := make([]PatternKey, 0)
	for k := range s {
		if _, ok := other[k]; !ok {
			diff = append(diff, k)
		}
	}
	sort.Slice(diff, func(i, j int) bool {
		return diff[i].String() < diff[j].String()
	})
	return diff
}

// PatternFilter filter for pattern lookups, always scoped to one consultant
type PatternFilter struct {
	ConsultantID string
	SessionType  *SessionType
	DayOfWeek    *int
	ActiveOnly   bool
	ForUpdate    bool
}
