package generation_jobs

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AvailabilityService/internal/api/handlers"
)

type Handler struct {
	scheduler Scheduler
	logger    Logger
}

func NewHandler(scheduler Scheduler, logger Logger) *Handler {
	return &Handler{
		scheduler: scheduler,
		logger:    logger,
	}
}

// Trigger POST /api/v1/generation-jobs
// Прогон идет в фоне, статус доступен по id из ответа
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	const route = "POST /generation-jobs"

	job, err := h.scheduler.Trigger(r.Context())
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	h.logger.Info("%s - Job started: job_id=%s", route, job.ID)
	handlers.RespondJSON(w, http.StatusAccepted, job)
}

// Get GET /api/v1/generation-jobs/{jobId}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const route = "GET /generation-jobs/{id}"
	jobID := mux.Vars(r)["jobId"]

	job, err := h.scheduler.Get(r.Context(), jobID)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, job)
}

// List GET /api/v1/generation-jobs
// Query params: limit
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const route = "GET /generation-jobs"

	limit, err := handlers.QueryInt(r, "limit", 0)
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	jobs, err := h.scheduler.List(r.Context(), limit)
	if err != nil {
		handlers.RespondServiceError(w, h.logger, route, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, JobListResponse{Jobs: jobs, Total: len(jobs)})
}
