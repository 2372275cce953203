package patterns

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/reconciliation"
	"github.com/m04kA/SMC-AvailabilityService/internal/testutil/memstore"
	"github.com/m04kA/SMC-AvailabilityService/pkg/clock"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type cacheSpy struct{ invalidated []string }

func (c *cacheSpy) InvalidateConsultant(_ context.Context, consultantID string) {
	c.invalidated = append(c.invalidated, consultantID)
}

// 2024-05-13 понедельник, 15 и 22 мая - среды
var now = time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memstore.Store
	cache *cacheSpy
	svc   *Service
}

func newFixture() *fixture {
	store := memstore.New()
	cache := &cacheSpy{}
	reconciler := reconciliation.NewReconciler(store.Slots(), clock.FixedTimeProvider{T: now}, nil, "svc", nopLogger{})
	return &fixture{
		store: store,
		cache: cache,
		svc:   NewService(store.Patterns(), reconciler, store.TxManager(), cache, nopLogger{}),
	}
}

func input(sessionType string, day int, start, end string) *models.PatternInput {
	return &models.PatternInput{SessionType: sessionType, DayOfWeek: day, StartTime: start, EndTime: end}
}

func (f *fixture) slot(day int, start string, booked bool) string {
	return f.store.PutSlot(&domain.AvailabilitySlot{
		ConsultantID: "c-1",
		SessionType:  domain.SessionTypePersonal,
		Date:         time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		StartTime:    types.TimeString(start),
		EndTime:      "15:00",
		IsBooked:     booked,
	}).ID
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults and cache invalidation", func(t *testing.T) {
		f := newFixture()

		resp, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Pattern.ID)
		assert.True(t, resp.Pattern.IsActive)
		assert.Equal(t, "UTC", resp.Pattern.Timezone)
		assert.Equal(t, []string{"c-1"}, f.cache.invalidated)
	})

	t.Run("overlap rejected, adjacent allowed", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		require.NoError(t, err)

		_, err = f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:30", "15:30"))
		assert.ErrorIs(t, err, ErrPatternOverlap)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))

		_, err = f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "15:00", "16:00"))
		assert.NoError(t, err)

		// другой тип сессии и другой консультант не конфликтуют
		_, err = f.svc.Create(ctx, "c-1", input("WEBINAR", 3, "14:30", "15:30"))
		assert.NoError(t, err)
		_, err = f.svc.Create(ctx, "c-2", input("PERSONAL", 3, "14:30", "15:30"))
		assert.NoError(t, err)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newFixture()
		cases := []*models.PatternInput{
			input("GROUP", 3, "14:00", "15:00"),
			input("PERSONAL", 7, "14:00", "15:00"),
			input("PERSONAL", 3, "9:00", "15:00"),
			input("PERSONAL", 3, "15:00", "14:00"),
			input("PERSONAL", 3, "15:00", "15:00"),
		}
		for _, in := range cases {
			_, err := f.svc.Create(ctx, "c-1", in)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err), "%+v", in)
		}
		assert.Empty(t, f.cache.invalidated)
	})

	t.Run("recreating a deleted pattern restores its slots", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		require.NoError(t, err)
		free := f.slot(15, "14:00", false)

		_, err = f.svc.Delete(ctx, "c-1", created.Pattern.ID)
		require.NoError(t, err)
		require.True(t, f.store.Slot(free).IsBlocked)

		resp, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Reconciliation.SlotsRestored)
		assert.False(t, f.store.Slot(free).IsBlocked)
	})

	t.Run("store failure rolls back", func(t *testing.T) {
		f := newFixture()
		f.store.Fail("slots.Update", errors.New("connection reset"))

		_, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		assert.Equal(t, domain.KindInternal, domain.KindOf(err))

		f.store.Recover()
		list, err := f.svc.List(ctx, "c-1", &models.ListPatternsRequest{})
		require.NoError(t, err)
		assert.Equal(t, 0, list.Total)
	})
}

func TestDelete_PreservesBookedAndBlocksFree(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
	require.NoError(t, err)

	booked := f.slot(15, "14:00", true)
	free := f.slot(22, "14:00", false)

	resp, err := f.svc.Delete(ctx, "c-1", created.Pattern.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Reconciliation.SlotsBlocked)

	assert.True(t, f.store.Slot(booked).IsBooked)
	assert.False(t, f.store.Slot(booked).IsBlocked)
	assert.True(t, f.store.Slot(free).IsBlocked)
	assert.Len(t, f.store.AllSlots(), 2)

	_, err = f.svc.Delete(ctx, "c-1", created.Pattern.ID)
	assert.ErrorIs(t, err, ErrPatternNotFound)
}

func TestDelete_ForeignPattern(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
	require.NoError(t, err)

	_, err = f.svc.Delete(ctx, "c-2", created.Pattern.ID)
	assert.ErrorIs(t, err, ErrPatternNotFound)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("end time change retimes free slots", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		require.NoError(t, err)
		free := f.slot(15, "14:00", false)
		booked := f.slot(22, "14:00", true)

		resp, err := f.svc.Update(ctx, "c-1", created.Pattern.ID, &models.UpdatePatternRequest{EndTime: ptr.Ptr("15:30")})
		require.NoError(t, err)
		assert.Equal(t, "15:30", resp.Pattern.EndTime)
		assert.Equal(t, int64(1), resp.Reconciliation.SlotsRetimed)
		assert.Equal(t, types.TimeString("15:30"), f.store.Slot(free).EndTime)
		assert.Equal(t, types.TimeString("15:00"), f.store.Slot(booked).EndTime)
	})

	t.Run("start time change blocks old key", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		require.NoError(t, err)
		free := f.slot(15, "14:00", false)

		resp, err := f.svc.Update(ctx, "c-1", created.Pattern.ID, &models.UpdatePatternRequest{
			StartTime: ptr.Ptr("16:00"),
			EndTime:   ptr.Ptr("17:00"),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), resp.Reconciliation.SlotsBlocked)
		assert.True(t, f.store.Slot(free).IsBlocked)
	})

	t.Run("deactivation counts as removal", func(t *testing.T) {
		f := newFixture()
		created, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		require.NoError(t, err)
		free := f.slot(15, "14:00", false)

		_, err = f.svc.Update(ctx, "c-1", created.Pattern.ID, &models.UpdatePatternRequest{IsActive: ptr.Ptr(false)})
		require.NoError(t, err)
		assert.True(t, f.store.Slot(free).IsBlocked)

		_, err = f.svc.Update(ctx, "c-1", created.Pattern.ID, &models.UpdatePatternRequest{IsActive: ptr.Ptr(true)})
		require.NoError(t, err)
		assert.False(t, f.store.Slot(free).IsBlocked)
	})

	t.Run("overlap with another pattern", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "10:00", "11:00"))
		require.NoError(t, err)
		second, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
		require.NoError(t, err)

		_, err = f.svc.Update(ctx, "c-1", second.Pattern.ID, &models.UpdatePatternRequest{StartTime: ptr.Ptr("10:30")})
		assert.ErrorIs(t, err, ErrPatternOverlap)

		// сужение собственного интервала не конфликтует с самим собой
		_, err = f.svc.Update(ctx, "c-1", second.Pattern.ID, &models.UpdatePatternRequest{StartTime: ptr.Ptr("14:15")})
		assert.NoError(t, err)
	})

	t.Run("empty and missing", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.Update(ctx, "c-1", "id", &models.UpdatePatternRequest{})
		assert.ErrorIs(t, err, ErrEmptyUpdate)

		_, err = f.svc.Update(ctx, "c-1", "missing", &models.UpdatePatternRequest{EndTime: ptr.Ptr("18:00")})
		assert.ErrorIs(t, err, ErrPatternNotFound)
	})
}

func TestBulkReplace(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "14:00", "15:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "c-1", input("PERSONAL", 3, "16:00", "17:00"))
	require.NoError(t, err)

	removedKey := f.slot(15, "14:00", false)
	keptKey := f.slot(15, "16:00", false)

	resp, err := f.svc.BulkReplace(ctx, "c-1", []models.PatternInput{
		*input("PERSONAL", 3, "16:00", "17:00"),
		*input("WEBINAR", 5, "10:00", "12:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Removed)
	assert.Len(t, resp.Patterns, 2)
	assert.Equal(t, int64(1), resp.Reconciliation.SlotsBlocked)

	assert.True(t, f.store.Slot(removedKey).IsBlocked)
	assert.False(t, f.store.Slot(keptKey).IsBlocked)

	list, err := f.svc.List(ctx, "c-1", &models.ListPatternsRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, 3, list.Patterns[0].DayOfWeek)
	assert.Equal(t, 5, list.Patterns[1].DayOfWeek)
}

func TestBulkReplace_RejectsInternalOverlap(t *testing.T) {
	f := newFixture()

	_, err := f.svc.BulkReplace(context.Background(), "c-1", []models.PatternInput{
		*input("PERSONAL", 3, "14:00", "15:00"),
		*input("PERSONAL", 3, "14:30", "15:30"),
	})
	assert.ErrorIs(t, err, ErrPatternsOverlapInRequest)
	assert.Empty(t, f.cache.invalidated)
}

func TestList_Filters(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.Create(ctx, "c-1", input("PERSONAL", 1, "10:00", "11:00"))
	require.NoError(t, err)
	inactive := input("WEBINAR", 2, "10:00", "11:00")
	inactive.IsActive = ptr.Ptr(false)
	_, err = f.svc.Create(ctx, "c-1", inactive)
	require.NoError(t, err)

	all, err := f.svc.List(ctx, "c-1", &models.ListPatternsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	active, err := f.svc.List(ctx, "c-1", &models.ListPatternsRequest{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, active.Total)

	webinars, err := f.svc.List(ctx, "c-1", &models.ListPatternsRequest{SessionType: ptr.Ptr("WEBINAR")})
	require.NoError(t, err)
	assert.Equal(t, 1, webinars.Total)

	_, err = f.svc.List(ctx, "c-1", &models.ListPatternsRequest{SessionType: ptr.Ptr("GROUP")})
	assert.ErrorIs(t, err, ErrInvalidSessionType)
}
