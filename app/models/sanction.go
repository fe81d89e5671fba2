package models

import (
	"time"
)

type SanctionType string

const (
	SanctionWarning      SanctionType = "warning"
	SanctionSuspension   SanctionType = "suspension"
	SanctionPermanentBan SanctionType = "permanent_ban"
)

type SanctionStatus string

const (
	SanctionStatusActive  SanctionStatus = "active"
	SanctionStatusExpired SanctionStatus = "expired"
	SanctionStatusRevoked SanctionStatus = "revoked"
)

// SuspensionPresets are the durations offered to moderators; any positive
// value up to MaxSuspensionDays is accepted.
var SuspensionPresets = []int{7, 30}

const MaxSuspensionDays = 3650

// Sanction is a punitive action recorded against a report target.
type Sanction struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ReportID     uint           `gorm:"index;not null" json:"reportId"`
	TargetType   TargetType     `gorm:"type:varchar(20);not null;index:idx_sanctions_target,priority:1" json:"targetType"`
	TargetID     uint           `gorm:"not null;index:idx_sanctions_target,priority:2" json:"targetId"`
	SanctionType SanctionType   `gorm:"type:varchar(20);not null" json:"sanctionType"`
	DurationDays *int           `json:"durationDays"`
	Status       SanctionStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Reason       string         `gorm:"type:text;not null" json:"reason"`
	StartsAt     time.Time      `json:"startsAt"`
	EndsAt       *time.Time     `gorm:"index" json:"endsAt"`
	CreatedByID  uint           `gorm:"index;not null" json:"createdById"`
	CreatedBy    *Profile       `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	RevokedByID  *uint          `json:"revokedById,omitempty"`
	RevokedBy    *Profile       `gorm:"foreignKey:RevokedByID" json:"revokedBy,omitempty"`
	RevokedAt    *time.Time     `json:"revokedAt,omitempty"`
	RevokeReason *string        `gorm:"type:text" json:"revokeReason"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t SanctionType) Valid() bool {
	switch t {
	case SanctionWarning, SanctionSuspension, SanctionPermanentBan:
		return true
	}
	return false
}

// Label returns the display text for a sanction type
func (t SanctionType) Label() string {
	switch t {
	case SanctionWarning:
		return "경고"
	case SanctionSuspension:
		return "일시정지"
	case SanctionPermanentBan:
		return "영구정지"
	}
	return string(t)
}

// CanRevoke reports whether the sanction may still be revoked.
func (s *Sanction) CanRevoke() bool {
	return s.Status == SanctionStatusActive
}

// IsDueAt reports whether an active suspension has run out at now.
func (s *Sanction) IsDueAt(now time.Time) bool {
	return s.Status == SanctionStatusActive && s.EndsAt != nil && !s.EndsAt.After(now)
}
