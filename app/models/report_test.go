package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	all := []ReportStatus{ReportStatusPending, ReportStatusReviewing, ReportStatusResolved, ReportStatusDismissed}
	allowed := map[[2]ReportStatus]bool{
		{ReportStatusPending, ReportStatusReviewing}:   true,
		{ReportStatusPending, ReportStatusResolved}:    true,
		{ReportStatusPending, ReportStatusDismissed}:   true,
		{ReportStatusReviewing, ReportStatusResolved}:  true,
		{ReportStatusReviewing, ReportStatusDismissed}: true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]ReportStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestSourcesFor(t *testing.T) {
	assert.Equal(t, []ReportStatus{ReportStatusPending}, SourcesFor(ReportStatusReviewing))
	assert.Equal(t, []ReportStatus{ReportStatusPending, ReportStatusReviewing}, SourcesFor(ReportStatusResolved))
	assert.Equal(t, []ReportStatus{ReportStatusPending, ReportStatusReviewing}, SourcesFor(ReportStatusDismissed))
	assert.Empty(t, SourcesFor(ReportStatusPending))
}

func TestReportCanProcess(t *testing.T) {
	tests := []struct {
		status ReportStatus
		want   bool
	}{
		{ReportStatusPending, true},
		{ReportStatusReviewing, true},
		{ReportStatusResolved, false},
		{ReportStatusDismissed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			r := &Report{Status: tt.status}
			assert.Equal(t, tt.want, r.CanProcess())
			assert.Equal(t, !tt.want, tt.status.IsTerminal())
		})
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TargetReview.Valid())
	assert.False(t, TargetType("clinic").Valid())
	assert.True(t, ReasonFalseInfo.Valid())
	assert.False(t, ReportReason("").Valid())
	assert.True(t, ReportStatusDismissed.Valid())
	assert.False(t, ReportStatus("open").Valid())
	assert.True(t, SanctionPermanentBan.Valid())
	assert.False(t, SanctionType("mute").Valid())
}

func TestSanctionRevokeAndDue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	active := &Sanction{Status: SanctionStatusActive, EndsAt: &past}
	assert.True(t, active.CanRevoke())
	assert.True(t, active.IsDueAt(now))

	running := &Sanction{Status: SanctionStatusActive, EndsAt: &future}
	assert.False(t, running.IsDueAt(now))

	ban := &Sanction{Status: SanctionStatusActive, SanctionType: SanctionPermanentBan}
	assert.False(t, ban.IsDueAt(now))

	revoked := &Sanction{Status: SanctionStatusRevoked, EndsAt: &past}
	assert.False(t, revoked.CanRevoke())
	assert.False(t, revoked.IsDueAt(now))
}

func TestNewProfile(t *testing.T) {
	p, err := NewProfile("김한의", "doctor@medihub.kr", "secret123", ROLE_DOCTOR)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", p.Password)
	assert.True(t, p.CheckPassword("secret123"))
	assert.False(t, p.CheckPassword("wrong"))
	assert.True(t, p.IsActive())
	assert.False(t, p.IsAdmin())

	_, err = NewProfile("x", "not-an-email", "secret123", ROLE_DOCTOR)
	assert.Error(t, err)

	_, err = NewProfile("관리자", "admin@medihub.kr", "secret123", "superuser")
	assert.Error(t, err)
}
