package slots

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
	"github.com/m04kA/SMC-AvailabilityService/internal/testutil/memstore"
	"github.com/m04kA/SMC-AvailabilityService/pkg/clock"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type cacheSpy struct {
	mu          sync.Mutex
	invalidated int
}

func (c *cacheSpy) InvalidateConsultant(context.Context, string) {
	c.mu.Lock()
	c.invalidated++
	c.mu.Unlock()
}

type conflictCounter struct {
	mu  sync.Mutex
	ops map[string]int
}

func (c *conflictCounter) IncBookingConflict(_, op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ops == nil {
		c.ops = make(map[string]int)
	}
	c.ops[op]++
}

var now = time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memstore.Store
	cache   *cacheSpy
	metrics *conflictCounter
	svc     *Service
}

func newFixture() *fixture {
	store := memstore.New()
	cache := &cacheSpy{}
	metrics := &conflictCounter{}
	return &fixture{
		store:   store,
		cache:   cache,
		metrics: metrics,
		svc: NewService(store.Slots(), store.TxManager(), cache,
			clock.FixedTimeProvider{T: now}, metrics, "svc", nopLogger{}),
	}
}

func (f *fixture) slot(consultantID string, day int, start string, booked, blocked bool) string {
	return f.store.PutSlot(&domain.AvailabilitySlot{
		ConsultantID: consultantID,
		SessionType:  domain.SessionTypePersonal,
		Date:         time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC),
		StartTime:    types.TimeString(start),
		EndTime:      "15:00",
		IsBooked:     booked,
		IsBlocked:    blocked,
	}).ID
}

func TestSetBookedStatus_BookAndRelease(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	a := f.slot("c-1", 15, "14:00", false, false)
	b := f.slot("c-1", 16, "14:00", false, false)

	resp, err := f.svc.SetBookedStatus(ctx, "c-1", &models.SetBookedStatusRequest{
		SlotIDs:   []string{a, b, a},
		IsBooked:  true,
		SessionID: ptr.Ptr("session-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.UpdatedCount)
	assert.Equal(t, []string{a, b}, resp.SlotIDs)
	assert.True(t, f.store.Slot(a).IsBooked)
	assert.Equal(t, "session-1", *f.store.Slot(a).SessionID)

	_, err = f.svc.SetBookedStatus(ctx, "c-1", &models.SetBookedStatusRequest{SlotIDs: []string{a}, IsBooked: false})
	require.NoError(t, err)
	assert.False(t, f.store.Slot(a).IsBooked)
	assert.Nil(t, f.store.Slot(a).SessionID)
	assert.True(t, f.store.Slot(b).IsBooked)
	assert.Equal(t, 2, f.cache.invalidated)
}

func TestSetBookedStatus_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	free := f.slot("c-1", 15, "14:00", false, false)
	booked := f.slot("c-1", 16, "14:00", true, false)

	_, err := f.svc.SetBookedStatus(ctx, "c-1", &models.SetBookedStatusRequest{SlotIDs: []string{free, booked}, IsBooked: true})
	assert.ErrorIs(t, err, ErrSlotsUnavailable)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	// первый слот не остался забронированным
	assert.False(t, f.store.Slot(free).IsBooked)
	assert.Equal(t, 1, f.metrics.ops[opBook])
	assert.Zero(t, f.cache.invalidated)
}

func TestSetBookedStatus_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	own := f.slot("c-1", 15, "14:00", false, false)
	foreign := f.slot("c-2", 15, "14:00", false, false)
	blocked := f.slot("c-1", 17, "14:00", false, true)
	past := f.slot("c-1", 10, "14:00", false, false)

	tests := []struct {
		name string
		req  *models.SetBookedStatusRequest
		want error
	}{
		{"empty", &models.SetBookedStatusRequest{IsBooked: true}, ErrEmptySlotIDs},
		{"foreign slot", &models.SetBookedStatusRequest{SlotIDs: []string{own, foreign}, IsBooked: true}, ErrSlotsNotOwned},
		{"unknown slot", &models.SetBookedStatusRequest{SlotIDs: []string{uuid.NewString()}, IsBooked: true}, ErrSlotsNotOwned},
		{"malformed id", &models.SetBookedStatusRequest{SlotIDs: []string{"not-a-uuid"}, IsBooked: true}, ErrSlotsNotOwned},
		{"blocked slot", &models.SetBookedStatusRequest{SlotIDs: []string{blocked}, IsBooked: true}, ErrSlotsUnavailable},
		{"past slot", &models.SetBookedStatusRequest{SlotIDs: []string{past}, IsBooked: true}, ErrSlotsUnavailable},
		{"release free slot", &models.SetBookedStatusRequest{SlotIDs: []string{own}, IsBooked: false}, ErrSlotsNotBooked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SetBookedStatus(ctx, "c-1", tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.False(t, f.store.Slot(own).IsBooked)
	assert.False(t, f.store.Slot(foreign).IsBooked)
}

func TestSetBookedStatus_ConcurrentBookingOneWinner(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.slot("c-1", 15, "14:00", false, false)

	const workers = 10
	var (
		wg        sync.WaitGroup
		succeeded int32
		conflicts int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SetBookedStatus(ctx, "c-1", &models.SetBookedStatusRequest{SlotIDs: []string{id}, IsBooked: true})
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, ErrSlotsUnavailable):
				atomic.AddInt32(&conflicts, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(workers-1), conflicts)
	assert.True(t, f.store.Slot(id).IsBooked)
}

func TestSetBookedStatus_StoreError(t *testing.T) {
	f := newFixture()
	id := f.slot("c-1", 15, "14:00", false, false)
	f.store.Fail("slots.Update", errors.New("connection reset"))

	_, err := f.svc.SetBookedStatus(context.Background(), "c-1", &models.SetBookedStatusRequest{SlotIDs: []string{id}, IsBooked: true})
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotContains(t, ErrInternal.Message, "connection reset")
}

func TestSetBlockedStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	free := f.slot("c-1", 15, "14:00", false, false)
	booked := f.slot("c-1", 16, "14:00", true, false)

	_, err := f.svc.SetBlockedStatus(ctx, "c-1", &models.SetBlockedStatusRequest{SlotIDs: []string{free}, IsBlocked: true})
	require.NoError(t, err)
	assert.True(t, f.store.Slot(free).IsBlocked)

	_, err = f.svc.SetBlockedStatus(ctx, "c-1", &models.SetBlockedStatusRequest{SlotIDs: []string{free, booked}, IsBlocked: false})
	assert.ErrorIs(t, err, ErrSlotsBooked)
	assert.True(t, f.store.Slot(free).IsBlocked)

	_, err = f.svc.SetBlockedStatus(ctx, "c-2", &models.SetBlockedStatusRequest{SlotIDs: []string{free}, IsBlocked: false})
	assert.ErrorIs(t, err, ErrSlotsNotOwned)
}

func TestIsBookable(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	tests := []struct {
		name     string
		id       string
		bookable bool
		reason   string
	}{
		{"free", f.slot("c-1", 15, "14:00", false, false), true, ""},
		{"today", f.slot("c-1", 13, "14:00", false, false), true, ""},
		{"booked", f.slot("c-1", 16, "14:00", true, false), false, ReasonBooked},
		{"blocked", f.slot("c-1", 17, "14:00", false, true), false, ReasonBlocked},
		{"past", f.slot("c-1", 12, "14:00", false, false), false, ReasonPast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.IsBookable(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.bookable, resp.Bookable)
			assert.Equal(t, tt.reason, resp.Reason)
			require.NotNil(t, resp.Slot)
			assert.Equal(t, tt.id, resp.Slot.ID)
		})
	}

	_, err := f.svc.IsBookable(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrSlotNotFound)
	_, err = f.svc.IsBookable(ctx, "garbage")
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	free := f.slot("c-1", 15, "14:00", false, false)
	booked := f.slot("c-1", 16, "14:00", true, false)

	err := f.svc.Delete(ctx, "c-1", booked)
	assert.ErrorIs(t, err, ErrCannotDeleteBooked)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	assert.NotNil(t, f.store.Slot(booked))

	err = f.svc.Delete(ctx, "c-2", free)
	assert.ErrorIs(t, err, ErrSlotNotFound)

	require.NoError(t, f.svc.Delete(ctx, "c-1", free))
	assert.Nil(t, f.store.Slot(free))

	err = f.svc.Delete(ctx, "c-1", free)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	for day := 14; day <= 18; day++ {
		f.slot("c-1", day, "14:00", day == 16, false)
	}
	f.slot("c-2", 14, "14:00", false, false)

	resp, err := f.svc.List(ctx, "c-1", &models.ListSlotsRequest{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, "2024-05-15", resp.Slots[0].Date)
	assert.Equal(t, models.Pagination{Limit: 2, Offset: 1, Total: 5, HasMore: true}, resp.Pagination)

	booked, err := f.svc.List(ctx, "c-1", &models.ListSlotsRequest{IsBooked: ptr.Ptr(true)})
	require.NoError(t, err)
	require.Len(t, booked.Slots, 1)
	assert.Equal(t, domain.DefaultQueryLimit, booked.Pagination.Limit)

	ranged, err := f.svc.List(ctx, "c-1", &models.ListSlotsRequest{
		StartDate: ptr.Ptr("2024-05-15"),
		EndDate:   ptr.Ptr("2024-05-16"),
		Limit:     1000,
	})
	require.NoError(t, err)
	assert.Len(t, ranged.Slots, 2)
	assert.Equal(t, domain.MaxQueryLimit, ranged.Pagination.Limit)
	assert.False(t, ranged.Pagination.HasMore)

	_, err = f.svc.List(ctx, "c-1", &models.ListSlotsRequest{StartDate: ptr.Ptr("15.05.2024")})
	assert.ErrorIs(t, err, ErrInvalidDate)
}
