package domain

import (
	"time"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// AvailabilitySlot represents a concrete bookable date/time instance derived from a pattern
type AvailabilitySlot struct {
	ID           string
	ConsultantID string
	SessionType  SessionType
	Date         time.Time // calendar date, UTC midnight
	StartTime    types.TimeString
	EndTime      types.TimeString
	IsBooked     bool
	IsBlocked    bool
	SessionID    *string // set while booked, cleared on release
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Key returns the uniqueness key "date|startTime|sessionType"
func (s *AvailabilitySlot) Key() string {
	return SlotKey(s.Date, s.StartTime, s.SessionType)
}

// IsAvailable returns true if the slot can be offered to clients
func (s *AvailabilitySlot) IsAvailable() bool {
	return !s.IsBooked && !s.IsBlocked
}

// DayOfWeek returns the weekday of the slot date (0=Sunday)
func (s *AvailabilitySlot) DayOfWeek() int {
	return int(s.Date.Weekday())
}

// DateString returns the slot date in YYYY-MM-DD
func (s *AvailabilitySlot) DateString() string {
	return s.Date.Format(DateFormat)
}

// SlotKey builds the uniqueness key used by the generator's lookup set
func SlotKey(date time.Time, startTime types.TimeString, sessionType SessionType) string {
	return date.Format(DateFormat) + "|" + string(startTime) + "|" + string(sessionType)
}

// SlotFilter filter for slot lookups and conditional updates
// Nil fields are not applied
type SlotFilter struct {
	ConsultantID string
	IDs          []string
	SessionType  *SessionType
	StartDate    *time.Time // inclusive
	EndDate      *time.Time // inclusive
	StartTime    *types.TimeString
	DayOfWeek    *int
	IsBooked     *bool
	IsBlocked    *bool
	Limit        int
	Offset       int
	ForUpdate    bool
}

// SlotUpdate set of fields to change, nil fields are left as is
type SlotUpdate struct {
	IsBooked       *bool
	IsBlocked      *bool
	EndTime        *types.TimeString
	SessionID      *string
	ClearSessionID bool
}

// IsEmpty returns true if nothing would be updated
func (u SlotUpdate) IsEmpty() bool {
	return u.IsBooked == nil && u.IsBlocked == nil && u.EndTime == nil && u.SessionID == nil && !u.ClearSessionID
}

// TruncateToDate returns the calendar date of t as UTC midnight
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses YYYY-MM-DD into UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}
