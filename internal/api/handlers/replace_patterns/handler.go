package replace_patterns

import (
	"net/http"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
)

const (
	route                  = "PUT /patterns/bulk"
	msgInvalidRequestBody  = "Invalid request body"
	msgMissingPatterns     = "Field patterns is required"
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

// Handle PUT /api/v1/patterns/bulk
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	consultantID, ok := middleware.GetConsultantID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingConsultantID)
		return
	}

	var req ReplacePatternsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.Patterns == nil {
		handlers.RespondBadRequest(w, msgMissingPatterns)
		return
	}

	result, err := h.service.BulkReplace(r.Context(), consultantID, req.Patterns)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Patterns replaced: consultant_id=%s, removed=%d, created=%d",
		route, consultantID, result.Removed, len(result.Patterns))
	handlers.RespondJSON(w, http.StatusOK, result)
}
