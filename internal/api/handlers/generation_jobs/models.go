package generation_jobs

import "github.com/m04kA/SMC-AvailabilityService/internal/scheduler"

// JobListResponse HTTP response model
type JobListResponse struct {
	Jobs  []*scheduler.JobStatus `json:"jobs"`
	Total int                    `json:"total"`
}
