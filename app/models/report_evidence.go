package models

import "time"

// ReportEvidence is a file a reporter attached to a report.
type ReportEvidence struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReportID     uint      `gorm:"index;not null" json:"reportId"`
	ObjectKey    string    `gorm:"type:varchar(255);not null" json:"objectKey"`
	FileName     string    `gorm:"type:varchar(255)" json:"fileName"`
	ContentType  string    `gorm:"type:varchar(100)" json:"contentType"`
	Size         int64     `json:"size"`
	UploadedByID uint      `gorm:"not null" json:"uploadedById"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (ReportEvidence) TableName() string {
	return "report_evidence"
}
