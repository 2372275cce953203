package list_slots

import (
	"net/http"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/slots/models"
)

const (
	route                  = "GET /slots"
	msgMissingConsultantID = "Consultant id is required"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots
// Query params: sessionType, startDate, endDate, isBooked, isBlocked, limit, offset
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	consultantID, ok := middleware.GetConsultantID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingConsultantID)
		return
	}

	req, err := parseRequest(r)
	if err != nil {
		h.logger.Warn("%s - Invalid query: %v", route, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.service.List(r.Context(), consultantID, req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Slots retrieved: consultant_id=%s, count=%d, total=%d",
		route, consultantID, len(result.Slots), result.Pagination.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// Даты передаются строкой, формат проверяет сервис
func parseRequest(r *http.Request) (*models.ListSlotsRequest, error) {
	isBooked, err := handlers.QueryBool(r, "isBooked")
	if err != nil {
		return nil, err
	}
	isBlocked, err := handlers.QueryBool(r, "isBlocked")
	if err != nil {
		return nil, err
	}
	limit, err := handlers.QueryInt(r, "limit", 0)
	if err != nil {
		return nil, err
	}
	offset, err := handlers.QueryInt(r, "offset", 0)
	if err != nil {
		return nil, err
	}

	return &models.ListSlotsRequest{
		SessionType: handlers.QueryString(r, "sessionType"),
		StartDate:   handlers.QueryString(r, "startDate"),
		EndDate:     handlers.QueryString(r, "endDate"),
		IsBooked:    isBooked,
		IsBlocked:   isBlocked,
		Limit:       limit,
		Offset:      offset,
	}, nil
}
