package check_slot_bookable

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
)

const route = "GET /slots/{id}/bookable"

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

// Handle GET /api/v1/slots/{slotId}/bookable
// Публичный эндпоинт для сервиса сессий перед созданием записи
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID := mux.Vars(r)["slotId"]

	result, err := h.service.IsBookable(r.Context(), slotID)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Slot checked: slot_id=%s, bookable=%t", route, slotID, result.Bookable)
	handlers.RespondJSON(w, http.StatusOK, result)
}
