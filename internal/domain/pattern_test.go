package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

func pattern(id string, st SessionType, day int, start, end string) *WeeklyPattern {
	return &WeeklyPattern{
		ID:          id,
		SessionType: st,
		DayOfWeek:   day,
		StartTime:   types.TimeString(start),
		EndTime:     types.TimeString(end),
		IsActive:    true,
	}
}

func TestWeeklyPattern_Overlaps(t *testing.T) {
	base := pattern("a", SessionTypePersonal, 1, "09:00", "10:00")

	tests := []struct {
		name  string
		other *WeeklyPattern
		want  bool
	}{
		{"partial overlap", pattern("b", SessionTypePersonal, 1, "09:30", "10:30"), true},
		{"contained", pattern("b", SessionTypePersonal, 1, "09:15", "09:45"), true},
		{"adjacent after", pattern("b", SessionTypePersonal, 1, "10:00", "11:00"), false},
		{"adjacent before", pattern("b", SessionTypePersonal, 1, "08:00", "09:00"), false},
		{"other weekday", pattern("b", SessionTypePersonal, 2, "09:30", "10:30"), false},
		{"other session type", pattern("b", SessionTypeWebinar, 1, "09:30", "10:30"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestFindOverlap_SkipsSelf(t *testing.T) {
	p := pattern("a", SessionTypePersonal, 1, "09:00", "11:00")
	existing := []*WeeklyPattern{pattern("a", SessionTypePersonal, 1, "09:00", "10:00")}

	assert.Nil(t, FindOverlap(p, existing))

	existing = append(existing, pattern("b", SessionTypePersonal, 1, "10:30", "12:00"))
	got := FindOverlap(p, existing)
	require.NotNil(t, got)
	assert.Equal(t, "b", got.ID)
}

func TestWeeklyPattern_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       *WeeklyPattern
		wantErr bool
	}{
		{"valid", pattern("", SessionTypeWebinar, 3, "14:00", "15:00"), false},
		{"bad session type", pattern("", "GROUP", 3, "14:00", "15:00"), true},
		{"bad day", pattern("", SessionTypePersonal, 7, "14:00", "15:00"), true},
		{"bad time", pattern("", SessionTypePersonal, 3, "2pm", "15:00"), true},
		{"start equals end", pattern("", SessionTypePersonal, 3, "14:00", "14:00"), true},
		{"start after end", pattern("", SessionTypePersonal, 3, "16:00", "15:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	p := pattern("", SessionTypePersonal, 3, "14:00", "15:00")
	p.Timezone = "Mars/Olympus"
	assert.Equal(t, KindValidation, KindOf(p.Validate()))
	p.Timezone = "Europe/Moscow"
	assert.NoError(t, p.Validate())
}

func TestPatternKeySet_Minus(t *testing.T) {
	old := KeysOf([]*WeeklyPattern{
		pattern("1", SessionTypePersonal, 1, "09:00", "10:00"),
		pattern("2", SessionTypePersonal, 3, "14:00", "15:00"),
		pattern("3", SessionTypeWebinar, 5, "18:00", "19:00"),
	}, true)

	inactive := pattern("4", SessionTypeWebinar, 5, "18:00", "19:00")
	inactive.IsActive = false
	next := KeysOf([]*WeeklyPattern{
		pattern("5", SessionTypePersonal, 1, "09:00", "10:30"),
		inactive,
		pattern("6", SessionTypePersonal, 2, "09:00", "10:00"),
	}, true)

	removed := old.Minus(next)
	assert.Equal(t, []PatternKey{
		{SessionType: SessionTypePersonal, DayOfWeek: 3, StartTime: "14:00"},
		{SessionType: SessionTypeWebinar, DayOfWeek: 5, StartTime: "18:00"},
	}, removed)

	added := next.Minus(old)
	assert.Equal(t, []PatternKey{{SessionType: SessionTypePersonal, DayOfWeek: 2, StartTime: "09:00"}}, added)
}

func TestSlotKeyAndDates(t *testing.T) {
	d, err := ParseDate("2024-05-15")
	require.NoError(t, err)

	s := &AvailabilitySlot{Date: d, StartTime: "14:00", SessionType: SessionTypePersonal}
	assert.Equal(t, "2024-05-15|14:00|PERSONAL", s.Key())
	assert.Equal(t, 3, s.DayOfWeek())

	msk := time.FixedZone("MSK", 3*3600)
	assert.Equal(t, d, TruncateToDate(time.Date(2024, 5, 15, 1, 30, 0, 0, msk)))
}
