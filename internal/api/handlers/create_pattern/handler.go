package create_pattern

import (
	"net/http"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
	"github.com/m04kA/SMC-AvailabilityService/internal/service/patterns/models"
)

const (
	route                  = "POST /patterns"
	msgInvalidRequestBody  = "Invalid request body"
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

// Handle POST /api/v1/patterns
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	consultantID, ok := middleware.GetConsultantID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingConsultantID)
		return
	}

	var req models.PatternInput
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Create(r.Context(), consultantID, &req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Pattern created: pattern_id=%s, consultant_id=%s", route, result.Pattern.ID, consultantID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
