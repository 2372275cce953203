package get_available_slots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
	"github.com/m04kA/SMC-AvailabilityService/internal/usecase/generate_slots"
	"github.com/m04kA/SMC-AvailabilityService/pkg/clock"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

// Генерация по шаблону, бронирование и публичный запрос на одном хранилище и общем кэше
func TestScenario_GenerateBookQuery(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.store.Patterns().Create(ctx, &domain.WeeklyPattern{
		ConsultantID: "c-1",
		SessionType:  domain.SessionTypeWebinar,
		DayOfWeek:    3,
		StartTime:    types.TimeString("14:00"),
		EndTime:      types.TimeString("15:00"),
		IsActive:     true,
		Timezone:     "UTC",
	})
	require.NoError(t, err)

	generator := generate_slots.NewUseCase(f.store.Patterns(), f.store.Slots(), f.cache, nil, "svc", nopLogger{})
	generated, err := generator.Execute(ctx, &generate_slots.Request{
		ConsultantID: "c-1",
		StartDate:    date(13),
		EndDate:      date(26),
	})
	require.NoError(t, err)
	require.Equal(t, 2, generated.SlotsCreated)

	before, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
	require.NoError(t, err)
	require.Len(t, before.Slots, 2)
	assert.Equal(t, "2024-05-15", before.Slots[0].Date)
	assert.Equal(t, "2024-05-22", before.Slots[1].Date)

	booking := slots.NewService(f.store.Slots(), f.store.TxManager(), f.cache, clock.FixedTimeProvider{T: now}, nil, "svc", nopLogger{})
	booked, err := booking.SetBookedStatus(ctx, "c-1", &models.SetBookedStatusRequest{
		SlotIDs:  []string{before.Slots[0].ID},
		IsBooked: true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), booked.UpdatedCount)

	after, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
	require.NoError(t, err)
	require.Len(t, after.Slots, 1)
	assert.Equal(t, "2024-05-22", after.Slots[0].Date)
	assert.Equal(t, types.TimeString("14:00"), after.Slots[0].StartTime)
	assert.Equal(t, 1, after.TotalAvailable)
	assert.Len(t, after.SlotsByDate["2024-05-22"], 1)
	assert.Empty(t, after.SlotsByDate["2024-05-15"])
}
