package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/infra/cache"
	"github.com/m04kA/SMC-AvailabilityService/internal/integrations/consultantservice"
	"github.com/m04kA/SMC-AvailabilityService/internal/testutil/memstore"
	"github.com/m04kA/SMC-AvailabilityService/pkg/clock"
	"github.com/m04kA/SMC-AvailabilityService/pkg/ptr"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}

type fakeConsultants struct {
	consultants map[string]*consultantservice.Consultant
	err         error
	calls       int
}

func (f *fakeConsultants) GetConsultant(_ context.Context, slugOrID string) (*consultantservice.Consultant, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.consultants[slugOrID]
	if !ok {
		return nil, consultantservice.ErrConsultantNotFound
	}
	return c, nil
}

// 2024-05-13 понедельник
var now = time.Date(2024, 5, 13, 18, 30, 0, 0, time.UTC)

func date(day int) time.Time {
	return time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	store       *memstore.Store
	consultants *fakeConsultants
	cache       *cache.AvailabilityCache
	uc          *UseCase
}

func newFixture() *fixture {
	store := memstore.New()
	anna := &consultantservice.Consultant{ID: "c-1", Slug: "anna", Status: "APPROVED"}
	consultants := &fakeConsultants{consultants: map[string]*consultantservice.Consultant{
		"anna":    anna,
		"c-1":     anna,
		"pending": {ID: "c-9", Slug: "pending", Status: "PENDING"},
	}}
	availability := cache.NewAvailabilityCache(cache.NewMemoryStore(100, time.Minute), time.Minute, nopLogger{}, nil, "svc")

	return &fixture{
		store:       store,
		consultants: consultants,
		cache:       availability,
		uc:          NewUseCase(store.Slots(), consultants, availability, clock.FixedTimeProvider{T: now}, nopLogger{}),
	}
}

func (f *fixture) slot(day int, start string, sessionType domain.SessionType, booked, blocked bool) string {
	end, _ := types.TimeString(start).AddMinutes(60)
	return f.store.PutSlot(&domain.AvailabilitySlot{
		ConsultantID: "c-1",
		SessionType:  sessionType,
		Date:         date(day),
		StartTime:    types.TimeString(start),
		EndTime:      end,
		IsBooked:     booked,
		IsBlocked:    blocked,
	}).ID
}

func TestExecute_FiltersAndGroups(t *testing.T) {
	f := newFixture()

	f.slot(10, "10:00", domain.SessionTypePersonal, false, false) // в прошлом
	f.slot(13, "16:00", domain.SessionTypePersonal, false, false)
	f.slot(15, "14:00", domain.SessionTypePersonal, false, false)
	f.slot(15, "10:00", domain.SessionTypeWebinar, false, false)
	f.slot(15, "12:00", domain.SessionTypePersonal, true, false)
	f.slot(16, "09:00", domain.SessionTypePersonal, false, true)
	f.slot(27, "09:00", domain.SessionTypePersonal, false, false)
	f.slot(28, "09:00", domain.SessionTypePersonal, false, false) // за окном в 14 дней

	resp, err := f.uc.Execute(context.Background(), &Request{Consultant: "anna"})
	require.NoError(t, err)

	assert.Equal(t, "c-1", resp.ConsultantID)
	assert.Equal(t, date(13), resp.StartDate)
	assert.Equal(t, date(27), resp.EndDate)
	assert.Equal(t, 4, resp.TotalAvailable)
	require.Len(t, resp.Slots, 4)

	for _, s := range resp.Slots {
		assert.NotEqual(t, "2024-05-10", s.Date)
		assert.NotEqual(t, "2024-05-16", s.Date)
	}

	day := resp.SlotsByDate["2024-05-15"]
	require.Len(t, day, 2)
	assert.Equal(t, types.TimeString("10:00"), day[0].StartTime)
	assert.Equal(t, types.TimeString("14:00"), day[1].StartTime)
	assert.Equal(t, Pagination{Limit: 100, Offset: 0, Total: 4, HasMore: false}, resp.Pagination)
}

func TestExecute_SessionTypeAndExplicitRange(t *testing.T) {
	f := newFixture()
	f.slot(15, "14:00", domain.SessionTypePersonal, false, false)
	f.slot(15, "10:00", domain.SessionTypeWebinar, false, false)
	f.slot(20, "10:00", domain.SessionTypeWebinar, false, false)

	resp, err := f.uc.Execute(context.Background(), &Request{
		Consultant:  "anna",
		SessionType: ptr.Ptr("WEBINAR"),
		StartDate:   ptr.Ptr(date(1)),
		EndDate:     ptr.Ptr(date(15)),
	})
	require.NoError(t, err)
	// начало в прошлом сдвигается на сегодня
	assert.Equal(t, date(13), resp.StartDate)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "WEBINAR", resp.Slots[0].SessionType)
}

func TestExecute_Pagination(t *testing.T) {
	f := newFixture()
	for day := 14; day <= 20; day++ {
		f.slot(day, "10:00", domain.SessionTypePersonal, false, false)
	}

	resp, err := f.uc.Execute(context.Background(), &Request{Consultant: "anna", Limit: 3, Offset: 3})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, "2024-05-17", resp.Slots[0].Date)
	assert.Equal(t, 7, resp.TotalAvailable)
	assert.True(t, resp.Pagination.HasMore)

	capped, err := f.uc.Execute(context.Background(), &Request{Consultant: "anna", Limit: 500, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, 200, capped.Pagination.Limit)
	assert.Equal(t, 0, capped.Pagination.Offset)
}

func TestExecute_ReadThroughCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	id := f.slot(15, "14:00", domain.SessionTypePersonal, false, false)

	first, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
	require.NoError(t, err)
	require.Len(t, first.Slots, 1)

	// прямое изменение хранилища не видно, пока кэш не сброшен
	_, err = f.store.Slots().Update(ctx, domain.SlotFilter{IDs: []string{id}}, domain.SlotUpdate{IsBooked: ptr.Ptr(true)})
	require.NoError(t, err)

	cached, err := f.uc.Execute(ctx, &Request{Consultant: "c-1"})
	require.NoError(t, err)
	assert.Len(t, cached.Slots, 1)

	f.cache.InvalidateConsultant(ctx, "c-1")

	fresh, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
	require.NoError(t, err)
	assert.Empty(t, fresh.Slots)
	assert.Equal(t, 0, fresh.TotalAvailable)
}

func TestExecute_WindowEntirelyInPast(t *testing.T) {
	f := newFixture()
	f.slot(3, "10:00", domain.SessionTypePersonal, false, false)
	f.slot(15, "10:00", domain.SessionTypePersonal, false, false)
	f.store.Fail("slots.Count", errors.New("must not be queried"))
	defer f.store.Recover()

	resp, err := f.uc.Execute(context.Background(), &Request{
		Consultant: "anna",
		StartDate:  ptr.Ptr(date(1)),
		EndDate:    ptr.Ptr(date(5)),
	})
	require.NoError(t, err)
	assert.Equal(t, "c-1", resp.ConsultantID)
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
	assert.Empty(t, resp.SlotsByDate)
	assert.Equal(t, 0, resp.TotalAvailable)
	assert.Equal(t, Pagination{Limit: 100}, resp.Pagination)

	// только конец в прошлом
	resp, err = f.uc.Execute(context.Background(), &Request{Consultant: "anna", EndDate: ptr.Ptr(date(12))})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)

	// консультант проверяется и для пустого периода
	_, err = f.uc.Execute(context.Background(), &Request{Consultant: "nobody", StartDate: ptr.Ptr(date(1)), EndDate: ptr.Ptr(date(5))})
	assert.ErrorIs(t, err, ErrConsultantNotFound)
}

func TestExecute_DirectoryLookupCached(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.slot(15, "14:00", domain.SessionTypePersonal, false, false)

	first, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
	require.NoError(t, err)
	require.Len(t, first.Slots, 1)
	assert.Equal(t, 1, f.consultants.calls)

	// справочник недоступен, но запись о консультанте и ответ в кэше
	f.consultants.err = consultantservice.ErrInternal
	second, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
	require.NoError(t, err)
	assert.Equal(t, first.Slots, second.Slots)
	assert.Equal(t, first.TotalAvailable, second.TotalAvailable)
	assert.Equal(t, 1, f.consultants.calls)

	// инвалидация слотов не сбрасывает запись справочника
	f.cache.InvalidateConsultant(ctx, "c-1")
	f.slot(16, "14:00", domain.SessionTypePersonal, false, false)
	third, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
	require.NoError(t, err)
	assert.Len(t, third.Slots, 2)
	assert.Equal(t, 1, f.consultants.calls)

	// неизвестный slug по-прежнему идет в справочник
	_, err = f.uc.Execute(ctx, &Request{Consultant: "c-1"})
	assert.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 2, f.consultants.calls)
}

func TestExecute_CachedNonBookableConsultant(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.uc.Execute(ctx, &Request{Consultant: "pending"})
	require.ErrorIs(t, err, ErrConsultantNotFound)

	_, err = f.uc.Execute(ctx, &Request{Consultant: "pending"})
	assert.ErrorIs(t, err, ErrConsultantNotFound)
	assert.Equal(t, 1, f.consultants.calls)
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown consultant", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{Consultant: "nobody"})
		assert.ErrorIs(t, err, ErrConsultantNotFound)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("consultant not approved", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{Consultant: "pending"})
		assert.ErrorIs(t, err, ErrConsultantNotFound)
	})

	t.Run("directory unavailable", func(t *testing.T) {
		f := newFixture()
		f.consultants.err = consultantservice.ErrInternal
		_, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
		assert.ErrorIs(t, err, ErrInternal)
	})

	t.Run("end before start", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{Consultant: "anna", StartDate: ptr.Ptr(date(20)), EndDate: ptr.Ptr(date(18))})
		assert.ErrorIs(t, err, ErrEndBeforeStart)
	})

	t.Run("invalid session type", func(t *testing.T) {
		f := newFixture()
		_, err := f.uc.Execute(ctx, &Request{Consultant: "anna", SessionType: ptr.Ptr("GROUP")})
		assert.ErrorIs(t, err, ErrInvalidSessionType)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newFixture()
		f.store.Fail("slots.Count", errors.New("timeout"))
		_, err := f.uc.Execute(ctx, &Request{Consultant: "anna"})
		assert.ErrorIs(t, err, ErrInternal)
	})
}
