package delete_slot

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	"github.com/m04kA/SMC-AvailabilityService/internal/api/middleware"
)

const (
	route                  = "DELETE /slots/{id}"
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

// Handle DELETE /api/v1/slots/{slotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	consultantID, ok := middleware.GetConsultantID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingConsultantID)
		return
	}
	slotID := mux.Vars(r)["slotId"]

	if err := h.service.Delete(r.Context(), consultantID, slotID); err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Slot deleted: slot_id=%s, consultant_id=%s", route, slotID, consultantID)
	w.WriteHeader(http.StatusNoContent)
}
