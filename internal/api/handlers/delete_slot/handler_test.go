package delete_slot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/domain"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots"
	"github.com/m04kA/SMC-AvailabilityService/internal/testutil/memstore"
	"github.com/m04kA/SMC-AvailabilityService/pkg/clock"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type nopCache struct{}

func (nopCache) InvalidateConsultant(context.Context, string) {}

func newRouter(store *memstore.Store) *mux.Router {
	now := time.Date(2024, 5, 13, 9, 0, 0, 0, time.UTC)
	svc := slots.NewService(store.Slots(), store.TxManager(), nopCache{}, clock.FixedTimeProvider{T: now}, nil, "svc", nopLogger{})

	r := mux.NewRouter()
	protected := r.PathPrefix("/api/v1").Subrouter()
	protected.Use(middleware.Auth)
	protected.HandleFunc("/slots/{slotId}", NewHandler(svc, nopLogger{}).Handle).Methods(http.MethodDelete)
	return r
}

func putSlot(store *memstore.Store, consultantID string, booked bool) string {
	return store.PutSlot(&domain.AvailabilitySlot{
		ConsultantID: consultantID,
		SessionType:  domain.SessionTypePersonal,
		Date:         time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		StartTime:    "14:00",
		EndTime:      "15:00",
		IsBooked:     booked,
	}).ID
}

func TestHandle(t *testing.T) {
	store := memstore.New()
	free := putSlot(store, "c-1", false)
	booked := putSlot(store, "c-1", true)
	foreign := putSlot(store, "c-2", false)
	router := newRouter(store)

	tests := []struct {
		name       string
		slotID     string
		consultant string
		wantStatus int
	}{
		{"missing header", free, "", http.StatusUnauthorized},
		{"booked slot", booked, "c-1", http.StatusBadRequest},
		{"foreign slot", foreign, "c-1", http.StatusNotFound},
		{"malformed id", "42", "c-1", http.StatusNotFound},
		{"free slot", free, "c-1", http.StatusNoContent},
		{"already deleted", free, "c-1", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/v1/slots/"+tt.slotID, nil)
			if tt.consultant != "" {
				req.Header.Set(middleware.ConsultantIDHeader, tt.consultant)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	assert.NotNil(t, store.Slot(booked))
	assert.Nil(t, store.Slot(free))
}
