package list_patterns

import (
	"net/http"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"
)

const (
	route                  = "GET /patterns"
	msgMissingConsultantID = "Consultant id is required"
)

type Handler struct {
	service PatternService
	logger  Logger
}

func NewHandler(service PatternService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/patterns
// Query params: sessionType, activeOnly
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	consultantID, ok := middleware.GetConsultantID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingConsultantID)
		return
	}

	activeOnly, err := handlers.QueryBool(r, "activeOnly")
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	req := &models.ListPatternsRequest{
		SessionType: handlers.QueryString(r, "sessionType"),
		ActiveOnly:  activeOnly != nil && *activeOnly,
	}

	result, err := h.service.List(r.Context(), consultantID, req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Patterns retrieved: consultant_id=%s, count=%d", route, consultantID, result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}
