package delete_pattern

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
)

const (
	route                  = "DELETE /patterns/{id}"
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

// Handle DELETE /api/v1/patterns/{patternId}
// Отвечает числом заблокированных слотов, поэтому 200 а не 204
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	consultantID, ok := middleware.GetConsultantID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingConsultantID)
		return
	}
	patternID := mux.Vars(r)["patternId"]

	result, err := h.service.Delete(r.Context(), consultantID, patternID)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Pattern deleted: pattern_id=%s, blocked=%d", route, patternID, result.Reconciliation.SlotsBlocked)
	handlers.RespondJSON(w, http.StatusOK, result)
}
