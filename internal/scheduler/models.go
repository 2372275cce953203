package scheduler

import "time"

type Trigger string

const (
	TriggerSchedule Trigger = "schedule"
	TriggerManual   Trigger = "manual"
)

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// maxJobErrors сколько ошибок по консультантам хранится в статусе
const maxJobErrors = 20

// JobStatus состояние одного прогона генерации по всем консультантам
type JobStatus struct {
	ID                string     `json:"id"`
	Trigger           Trigger    `json:"trigger"`
	Status            Status     `json:"status"`
	StartedAt         time.Time  `json:"startedAt"`
	FinishedAt        *time.Time `json:"finishedAt,omitempty"`
	StartDate         string     `json:"startDate"`
	EndDate           string     `json:"endDate"`
	ConsultantsTotal  int        `json:"consultantsTotal"`
	ConsultantsFailed int        `json:"consultantsFailed"`
	SlotsCreated      int        `json:"slotsCreated"`
	Errors            []string   `json:"errors,omitempty"`
}

func (j *JobStatus) clone() *JobStatus {
	c := *j
	if j.FinishedAt != nil {
		finished := *j.FinishedAt
		c.FinishedAt = &finished
	}
	if j.Errors != nil {
		c.Errors = append([]string(nil), j.Errors...)
	}
	return &c
}

func (j *JobStatus) addError(consultantID string, err error) {
	j.ConsultantsFailed++
	if len(j.Errors) < maxJobErrors {
		j.Errors = append(j.Errors, consultantID+": "+err.Error())
	}
}
