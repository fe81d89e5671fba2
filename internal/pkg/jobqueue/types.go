package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeSanctionExpirySweep JobType = "sanction_expiry_sweep"
	JobTypeModerationNotify    JobType = "moderation_notify"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// SanctionExpirySweepJobPayload contains the payload for expiry sweeps
type SanctionExpirySweepJobPayload struct {
	Batch       int    `json:"batch"`        // max sanctions expired per run
	TriggeredBy string `json:"triggered_by"` // cron, admin-cli
}

// ToMap converts the payload to a map for storage
func (p SanctionExpirySweepJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"batch":        p.Batch,
		"triggered_by": p.TriggeredBy,
	}
}

// SanctionExpirySweepJobPayloadFromMap creates a payload from a map
func SanctionExpirySweepJobPayloadFromMap(data map[string]interface{}) (*SanctionExpirySweepJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload SanctionExpirySweepJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// ModerationNotifyJobPayload carries one notice for one profile
type ModerationNotifyJobPayload struct {
	ProfileID   uint   `json:"profile_id"`
	Type        string `json:"type"`
	ReferenceID uint   `json:"reference_id"`
	Content     string `json:"content"`
}

// ToMap converts the payload to a map for storage
func (p ModerationNotifyJobPayload) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"profile_id":   p.ProfileID,
		"type":         p.Type,
		"reference_id": p.ReferenceID,
		"content":      p.Content,
	}
}

// ModerationNotifyJobPayloadFromMap creates a payload from a map
func ModerationNotifyJobPayloadFromMap(data map[string]interface{}) (*ModerationNotifyJobPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var payload ModerationNotifyJobPayload
	err = json.Unmarshal(jsonData, &payload)
	return &payload, err
}

// IsRetryable checks if the job can be retried
func (j *Job) IsRetryable() bool {
	return j.Status == JobStatusFailed && j.RetryCount < j.MaxRetries
}

// MarkAsProcessing updates the job status to processing
func (j *Job) MarkAsProcessing() {
	now := time.Now()
	j.Status = JobStatusProcessing
	j.UpdatedAt = now
	j.ProcessedAt = &now
}

// MarkAsCompleted updates the job status to completed
func (j *Job) MarkAsCompleted() {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.UpdatedAt = now
	j.CompletedAt = &now
	j.ErrorMsg = ""
}

// MarkAsFailed updates the job status to failed
func (j *Job) MarkAsFailed(errorMsg string) {
	j.Status = JobStatusFailed
	j.UpdatedAt = time.Now()
	j.ErrorMsg = errorMsg
	j.RetryCount++
}

// MarkAsRetrying updates the job status to retrying
func (j *Job) MarkAsRetrying() {
	j.Status = JobStatusRetrying
	j.UpdatedAt = time.Now()
}
