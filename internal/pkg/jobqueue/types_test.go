package jobqueue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobType(t *testing.T) {
	tests := []struct {
		name     string
		jobType  JobType
		expected string
	}{
		{"Sanction Expiry Sweep", JobTypeSanctionExpirySweep, "sanction_expiry_sweep"},
		{"Moderation Notify", JobTypeModerationNotify, "moderation_notify"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.jobType))
		})
	}
}

func TestJobStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   JobStatus
		expected string
	}{
		{"Pending", JobStatusPending, "pending"},
		{"Processing", JobStatusProcessing, "processing"},
		{"Completed", JobStatusCompleted, "completed"},
		{"Failed", JobStatusFailed, "failed"},
		{"Retrying", JobStatusRetrying, "retrying"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.status))
		})
	}
}

func TestJob_IsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		job       *Job
		retryable bool
	}{
		{
			name: "Failed job with retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: true,
		},
		{
			name: "Failed job with no retries remaining",
			job: &Job{
				Status:     JobStatusFailed,
				RetryCount: 3,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Completed job",
			job: &Job{
				Status:     JobStatusCompleted,
				RetryCount: 1,
				MaxRetries: 3,
			},
			retryable: false,
		},
		{
			name: "Pending job",
			job: &Job{
				Status:     JobStatusPending,
				RetryCount: 0,
				MaxRetries: 3,
			},
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, tt.job.IsRetryable())
		})
	}
}

func TestJob_MarkAsProcessing(t *testing.T) {
	job := &Job{
		Status: JobStatusPending,
	}

	beforeTime := time.Now()
	job.MarkAsProcessing()
	afterTime := time.Now()

	assert.Equal(t, JobStatusProcessing, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
	assert.NotNil(t, job.ProcessedAt)
	assert.True(t, job.ProcessedAt.After(beforeTime) || job.ProcessedAt.Equal(beforeTime))
	assert.True(t, job.ProcessedAt.Before(afterTime) || job.ProcessedAt.Equal(afterTime))
}

func TestJob_MarkAsCompleted(t *testing.T) {
	job := &Job{
		Status:   JobStatusProcessing,
		ErrorMsg: "some error",
	}

	beforeTime := time.Now()
	job.MarkAsCompleted()
	afterTime := time.Now()

	assert.Equal(t, JobStatusCompleted, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
	assert.NotNil(t, job.CompletedAt)
	assert.True(t, job.CompletedAt.After(beforeTime) || job.CompletedAt.Equal(beforeTime))
	assert.True(t, job.CompletedAt.Before(afterTime) || job.CompletedAt.Equal(afterTime))
	assert.Empty(t, job.ErrorMsg)
}

func TestJob_MarkAsFailed(t *testing.T) {
	job := &Job{
		Status:     JobStatusProcessing,
		RetryCount: 1,
	}

	errorMsg := "processing failed"
	beforeTime := time.Now()
	job.MarkAsFailed(errorMsg)
	afterTime := time.Now()

	assert.Equal(t, JobStatusFailed, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
	assert.Equal(t, errorMsg, job.ErrorMsg)
	assert.Equal(t, 2, job.RetryCount)
}

func TestJob_MarkAsRetrying(t *testing.T) {
	job := &Job{
		Status: JobStatusFailed,
	}

	beforeTime := time.Now()
	job.MarkAsRetrying()
	afterTime := time.Now()

	assert.Equal(t, JobStatusRetrying, job.Status)
	assert.True(t, job.UpdatedAt.After(beforeTime) || job.UpdatedAt.Equal(beforeTime))
	assert.True(t, job.UpdatedAt.Before(afterTime) || job.UpdatedAt.Equal(afterTime))
}

func TestModerationNotifyJobPayload_ToMap(t *testing.T) {
	payload := ModerationNotifyJobPayload{
		ProfileID:   42,
		Type:        "sanction_issued",
		ReferenceID: 7,
		Content:     "7일 정지 처분이 내려졌습니다.",
	}

	result := payload.ToMap()

	assert.Equal(t, uint(42), result["profile_id"])
	assert.Equal(t, "sanction_issued", result["type"])
	assert.Equal(t, uint(7), result["reference_id"])
	assert.Equal(t, "7일 정지 처분이 내려졌습니다.", result["content"])
}

func TestModerationNotifyJobPayloadFromMap(t *testing.T) {
	// Values as they come back out of Redis JSON
	data := map[string]interface{}{
		"profile_id":   float64(42),
		"type":         "report_resolved",
		"reference_id": float64(9),
		"content":      "신고가 처리되었습니다.",
	}

	payload, err := ModerationNotifyJobPayloadFromMap(data)
	require.NoError(t, err)
	assert.Equal(t, uint(42), payload.ProfileID)
	assert.Equal(t, "report_resolved", payload.Type)
	assert.Equal(t, uint(9), payload.ReferenceID)
}

func TestModerationNotifyJobPayloadFromMap_InvalidData(t *testing.T) {
	_, err := ModerationNotifyJobPayloadFromMap(map[string]interface{}{
		"profile_id": "not-a-number",
	})
	assert.Error(t, err)
}

func TestSanctionExpirySweepJobPayloadFromMap(t *testing.T) {
	payload, err := SanctionExpirySweepJobPayloadFromMap(SanctionExpirySweepJobPayload{Batch: 50, TriggeredBy: "cron"}.ToMap())
	require.NoError(t, err)
	assert.Equal(t, 50, payload.Batch)
	assert.Equal(t, "cron", payload.TriggeredBy)

	empty, err := SanctionExpirySweepJobPayloadFromMap(map[string]interface{}{})
	require.NoError(t, err)
	assert.Zero(t, empty.Batch)
}

func TestJobJSONSerialization(t *testing.T) {
	now := time.Now()
	processedAt := now.Add(time.Minute)
	completedAt := now.Add(2 * time.Minute)

	job := &Job{
		ID:          "test-job-123",
		Type:        JobTypeModerationNotify,
		Status:      JobStatusCompleted,
		Payload:     map[string]interface{}{"test": "data"},
		CreatedAt:   now,
		UpdatedAt:   now.Add(time.Second),
		ProcessedAt: &processedAt,
		CompletedAt: &completedAt,
		ErrorMsg:    "",
		RetryCount:  0,
		MaxRetries:  3,
	}

	// Marshal to JSON
	jsonData, err := json.Marshal(job)
	require.NoError(t, err)

	// Unmarshal back
	var result Job
	err = json.Unmarshal(jsonData, &result)
	require.NoError(t, err)

	// Compare (times may have slight precision differences)
	assert.Equal(t, job.ID, result.ID)
	assert.Equal(t, job.Type, result.Type)
	assert.Equal(t, job.Status, result.Status)
	assert.Equal(t, job.Payload, result.Payload)
	assert.Equal(t, job.ErrorMsg, result.ErrorMsg)
	assert.Equal(t, job.RetryCount, result.RetryCount)
	assert.Equal(t, job.MaxRetries, result.MaxRetries)

	// Time comparisons (allowing for minor precision differences)
	assert.True(t, job.CreatedAt.Sub(result.CreatedAt) < time.Millisecond)
	assert.True(t, job.UpdatedAt.Sub(result.UpdatedAt) < time.Millisecond)
	assert.NotNil(t, result.ProcessedAt)
	assert.True(t, job.ProcessedAt.Sub(*result.ProcessedAt) < time.Millisecond)
	assert.NotNil(t, result.CompletedAt)
	assert.True(t, job.CompletedAt.Sub(*result.CompletedAt) < time.Millisecond)
}
