package moderation

import (
	"testing"
	"time"

	"github.com/medihub/medihub/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableActions(t *testing.T) {
	assert.Equal(t, []Action{ActionStartReview, ActionDismiss, ActionResolve}, AvailableActions(models.ReportStatusPending))
	assert.Equal(t, []Action{ActionDismiss, ActionResolve}, AvailableActions(models.ReportStatusReviewing))
	assert.Equal(t, []Action{}, AvailableActions(models.ReportStatusResolved))
	assert.Equal(t, []Action{}, AvailableActions(models.ReportStatusDismissed))
}

func TestBuildSanction_Presets(t *testing.T) {
	now := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)
	report := &models.Report{ID: 5, TargetType: models.TargetVendor, TargetID: 77}

	for _, days := range models.SuspensionPresets {
		d := days
		s, err := buildSanction(report, SanctionRequest{Type: models.SanctionSuspension, DurationDays: &d}, " 반복 위반 ", 9, now)
		require.NoError(t, err)
		assert.Equal(t, uint(5), s.ReportID)
		assert.Equal(t, models.TargetVendor, s.TargetType)
		assert.Equal(t, uint(77), s.TargetID)
		assert.Equal(t, "반복 위반", s.Reason)
		assert.Equal(t, d, *s.DurationDays)
		assert.Equal(t, now.AddDate(0, 0, d), *s.EndsAt)
		assert.Equal(t, models.SanctionStatusActive, s.Status)
	}

	// custom durations are allowed within range
	custom := 90
	s, err := buildSanction(report, SanctionRequest{Type: models.SanctionSuspension, DurationDays: &custom}, "x", 9, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 90), *s.EndsAt)
}

func TestOptions(t *testing.T) {
	opts := Options()
	assert.Equal(t, []int{7, 30}, opts.SuspensionPresets)
	assert.Equal(t, models.MaxSuspensionDays, opts.MaxDurationDays)
	require.Len(t, opts.Types, 3)
	assert.True(t, opts.Types[1].RequiresDuration)
	assert.True(t, opts.Types[2].RequiresConfirmation)
	assert.Equal(t, "영구정지", opts.Types[2].Label)
}

func TestDeriveStanding(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	later := now.Add(72 * time.Hour)
	latest := now.Add(240 * time.Hour)
	lapsed := now.Add(-time.Hour)

	tests := []struct {
		name      string
		active    []models.Sanction
		want      string
		wantUntil *time.Time
	}{
		{"none", nil, models.STANDING_GOOD, nil},
		{"warning only", []models.Sanction{{SanctionType: models.SanctionWarning, Status: models.SanctionStatusActive}}, models.STANDING_GOOD, nil},
		{"suspended takes latest end", []models.Sanction{
			{SanctionType: models.SanctionSuspension, Status: models.SanctionStatusActive, EndsAt: &later},
			{SanctionType: models.SanctionSuspension, Status: models.SanctionStatusActive, EndsAt: &latest},
		}, models.STANDING_SUSPENDED, &latest},
		{"lapsed suspension not yet swept", []models.Sanction{
			{SanctionType: models.SanctionSuspension, Status: models.SanctionStatusActive, EndsAt: &lapsed},
		}, models.STANDING_GOOD, nil},
		{"ban wins", []models.Sanction{
			{SanctionType: models.SanctionSuspension, Status: models.SanctionStatusActive, EndsAt: &later},
			{SanctionType: models.SanctionPermanentBan, Status: models.SanctionStatusActive},
		}, models.STANDING_BANNED, nil},
		{"revoked ban ignored", []models.Sanction{
			{SanctionType: models.SanctionPermanentBan, Status: models.SanctionStatusRevoked},
		}, models.STANDING_GOOD, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, until := deriveStanding(tt.active, now)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantUntil, until)
		})
	}
}
