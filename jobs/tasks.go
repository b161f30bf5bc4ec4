package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup precomputes report snapshots.
	TaskReportWarmup = "report:warmup"
)

// ReportWarmupPayload selects the owners to warm. An empty OwnerID warms
// every owner with at least one property.
type ReportWarmupPayload struct {
	OwnerID string `json:"owner_id,omitempty"`
}

// Owner parses the optional owner id.
func (p ReportWarmupPayload) Owner() (uuid.UUID, bool, error) {
	if p.OwnerID == "" {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(p.OwnerID)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("jobs: owner id %q: %w", p.OwnerID, err)
	}
	return id, true, nil
}

// NewReportWarmupTask builds a warm-up task. uuid.Nil targets every owner.
func NewReportWarmupTask(ownerID uuid.UUID) (*asynq.Task, error) {
	payload := ReportWarmupPayload{}
	if ownerID != uuid.Nil {
		payload.OwnerID = ownerID.String()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}
