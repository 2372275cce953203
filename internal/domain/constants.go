package domain

// Generation limits
const (
	MaxGenerationRangeDays = 90
	SlotBatchSize          = 100
)

// Availability query defaults
const (
	DefaultWindowDays   = 14
	DefaultQueryLimit   = 100
	MaxQueryLimit       = 200
	DefaultPatternZone  = "UTC"
	DefaultScheduleDays = 28
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
