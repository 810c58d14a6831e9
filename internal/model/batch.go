package model

import "time"

// BatchStatus is the lifecycle state of a batch report job.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

// Terminal reports whether no further transitions occur from s.
func (s BatchStatus) Terminal() bool {
	return s == BatchCompleted || s == BatchFailed
}

// ItemStatus is the outcome of one report item within a batch.
type ItemStatus string

const (
	ItemCompleted ItemStatus = "completed"
	ItemFailed    ItemStatus = "failed"
)

// ItemResult is the recorded outcome of one report item. Exactly one of
// OutputPath and Error is set.
type ItemResult struct {
	ReportID   string     `json:"report_id"`
	Status     ItemStatus `json:"status"`
	OutputPath string     `json:"output_path,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// BatchSnapshot is a point-in-time copy of a batch job's state, safe to
// read while the job is still running.
type BatchSnapshot struct {
	BatchID       string                `json:"batch_id"`
	OwnerClientID string                `json:"owner_client_id,omitempty"`
	ReportIDs     []string              `json:"report_ids"`
	Status        BatchStatus           `json:"status"`
	Completed     int                   `json:"completed_reports"`
	Failed        int                   `json:"failed_reports"`
	Results       map[string]ItemResult `json:"results"`
	CreatedAt     time.Time             `json:"created_at"`
	CompletedAt   *time.Time            `json:"completed_at,omitempty"`
}
