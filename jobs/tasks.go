package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskOverdueScan stamps the vencido status on past-due invoices.
	TaskOverdueScan = "cobranzas:vencidas"
	// TaskAnalyticsWarmup pre-populates the dashboard caches.
	TaskAnalyticsWarmup = "analytics:warmup"
)

// OverdueScanPayload parametrises an overdue scan run. AsOf defaults to
// the execution time when zero.
type OverdueScanPayload struct {
	AsOf time.Time `json:"as_of,omitempty"`
}

// NewOverdueScanTask constructs an Asynq task.
func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

// NewAnalyticsWarmupTask constructs an Asynq task with no payload.
func NewAnalyticsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskAnalyticsWarmup, nil)
}
