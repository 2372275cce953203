package get_available_slots

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getAvailableSlots "github.com/m04kA/SMC-AvailabilityService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-AvailabilityService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeReader struct {
	req  *getAvailableSlots.Request
	resp *getAvailableSlots.Response
	err  error
}

func (f *fakeReader) Execute(_ context.Context, req *getAvailableSlots.Request) (*getAvailableSlots.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func serve(reader *fakeReader, consultant, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/slots/"+consultant+query, nil)
	req = mux.SetURLVars(req, map[string]string{"consultant": consultant})
	rec := httptest.NewRecorder()
	NewHandler(reader, nopLogger{}).Handle(rec, req)
	return rec
}

func TestHandle_OK(t *testing.T) {
	slot := getAvailableSlots.Slot{
		ID:          "s-1",
		SessionType: "WEBINAR",
		Date:        "2024-05-15",
		StartTime:   types.TimeString("14:00"),
		EndTime:     types.TimeString("15:00"),
	}
	reader := &fakeReader{resp: &getAvailableSlots.Response{
		ConsultantID:   "c-1",
		StartDate:      time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		Slots:          []getAvailableSlots.Slot{slot},
		SlotsByDate:    map[string][]getAvailableSlots.Slot{"2024-05-15": {slot}},
		TotalAvailable: 3,
		Pagination:     getAvailableSlots.Pagination{Limit: 1, Offset: 1, Total: 3, HasMore: true},
	}}

	rec := serve(reader, "anna", "?sessionType=WEBINAR&startDate=2024-05-13&endDate=2024-05-20&limit=1&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, reader.req)
	assert.Equal(t, "anna", reader.req.Consultant)
	require.NotNil(t, reader.req.SessionType)
	assert.Equal(t, "WEBINAR", *reader.req.SessionType)
	require.NotNil(t, reader.req.EndDate)
	assert.Equal(t, "2024-05-20", reader.req.EndDate.Format("2006-01-02"))
	assert.Equal(t, 1, reader.req.Limit)
	assert.Equal(t, 1, reader.req.Offset)

	var body AvailableSlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "c-1", body.ConsultantID)
	assert.Equal(t, "2024-05-13", body.StartDate)
	require.Len(t, body.Slots, 1)
	assert.Equal(t, "14:00", body.Slots[0].StartTime)
	assert.Len(t, body.SlotsByDate["2024-05-15"], 1)
	assert.True(t, body.Pagination.HasMore)
}

func TestHandle_EmptyPageRendersEmptyList(t *testing.T) {
	reader := &fakeReader{resp: &getAvailableSlots.Response{
		ConsultantID: "c-1",
		StartDate:    time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC),
		Slots:        []getAvailableSlots.Slot{},
		SlotsByDate:  map[string][]getAvailableSlots.Slot{},
		Pagination:   getAvailableSlots.Pagination{Limit: 100},
	}}

	rec := serve(reader, "anna", "?startDate=2024-05-01&endDate=2024-05-05")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slots":[]`)
	assert.Contains(t, rec.Body.String(), `"totalAvailable":0`)
}

func TestHandle_Errors(t *testing.T) {
	t.Run("malformed date", func(t *testing.T) {
		reader := &fakeReader{}
		rec := serve(reader, "anna", "?startDate=15.05.2024")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Nil(t, reader.req)
	})

	t.Run("malformed limit", func(t *testing.T) {
		rec := serve(&fakeReader{}, "anna", "?limit=ten")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown consultant", func(t *testing.T) {
		rec := serve(&fakeReader{err: getAvailableSlots.ErrConsultantNotFound}, "nobody", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("end before start", func(t *testing.T) {
		rec := serve(&fakeReader{err: getAvailableSlots.ErrEndBeforeStart}, "anna", "?startDate=2024-05-20&endDate=2024-05-18")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
