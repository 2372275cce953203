package generate_slots

import (
	"net/http"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
)

const (
	route                  = "POST /generate-slots"
	msgInvalidRequestBody  = "Invalid request body"
	msgMissingConsultantID = "Consultant id is required"
)

type Handler struct {
	useCase UseCase
	logger  Logger
}

func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/generate-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	consultantID, ok := middleware.GetConsultantID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingConsultantID)
		return
	}

	var body GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &body); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	req, err := body.ToUseCaseRequest(consultantID)
	if err != nil {
		h.logger.Warn("%s - Invalid request: %v", route, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Slots generated: consultant_id=%s, created=%d", route, consultantID, result.SlotsCreated)
	handlers.RespondJSON(w, http.StatusOK, result)
}
