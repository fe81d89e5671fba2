package models

import (
	"time"
)

const (
	NotificationReportResolved  = "report_resolved"
	NotificationReportDismissed = "report_dismissed"
	NotificationSanctionIssued  = "sanction_issued"
	NotificationSanctionRevoked = "sanction_revoked"
	NotificationSanctionExpired = "sanction_expired"
)

type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProfileID   uint      `gorm:"index;not null" json:"profileId"`
	Type        string    `gorm:"type:varchar(50)" json:"type" validate:"oneof=report_resolved report_dismissed sanction_issued sanction_revoked sanction_expired"`
	Content     string    `gorm:"type:text" json:"content"`
	IsRead      bool      `gorm:"default:false" json:"isRead"`
	ReferenceID uint      `json:"referenceId"` // report or sanction the notice is about
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
