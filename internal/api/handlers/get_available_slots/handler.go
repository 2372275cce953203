package get_available_slots

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-AvailabilityService/internal/usecase/get_available_slots"
)

type Handler struct {
	useCase AvailabilityReader
	logger  Logger
}

func NewHandler(useCase AvailabilityReader, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots/{consultant}
// Query params: sessionType, startDate, endDate (YYYY-MM-DD), limit, offset
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	consultant := mux.Vars(r)["consultant"]

	req, err := parseRequest(r, consultant)
	if err != nil {
		h.logger.Warn("GET /slots/{consultant} - Invalid query: consultant=%s, error=%v", consultant, err)
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, "GET /slots/{consultant}", err)
		return
	}

	h.logger.Info("GET /slots/{consultant} - Slots retrieved: consultant=%s, slots_count=%d, total=%d",
		consultant, len(result.Slots), result.TotalAvailable)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

func parseRequest(r *http.Request, consultant string) (*getAvailableSlots.Request, error) {
	startDate, err := handlers.QueryDate(r, "startDate")
	if err != nil {
		return nil, err
	}
	endDate, err := handlers.QueryDate(r, "endDate")
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

	return &getAvailableSlots.Request{
		Consultant:  consultant,
		SessionType: handlers.QueryString(r, "sessionType"),
		StartDate:   startDate,
		EndDate:     endDate,
		Limit:       limit,
		Offset:      offset,
	}, nil
}
