package models

import (
	"time"
)

type TargetType string

const (
	TargetReview  TargetType = "review"
	TargetVendor  TargetType = "vendor"
	TargetProfile TargetType = "profile"
)

type ReportReason string

const (
	ReasonSpam          ReportReason = "spam"
	ReasonInappropriate ReportReason = "inappropriate"
	ReasonFalseInfo     ReportReason = "false_info"
	ReasonPrivacy       ReportReason = "privacy"
	ReasonOther         ReportReason = "other"
)

type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewing ReportStatus = "reviewing"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// CumulativeReportThreshold is the number of reports against one target from
// which moderators get the "누적 신고" warning.
const CumulativeReportThreshold = 3

var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusPending:   {ReportStatusReviewing, ReportStatusResolved, ReportStatusDismissed},
	ReportStatusReviewing: {ReportStatusResolved, ReportStatusDismissed},
}

// Report is a user complaint against a review, vendor or profile.
type Report struct {
	ID             uint         `gorm:"primaryKey" json:"id"`
	TargetType     TargetType   `gorm:"type:varchar(20);not null;index:idx_reports_target,priority:1" json:"targetType"`
	TargetID       uint         `gorm:"not null;index:idx_reports_target,priority:2" json:"targetId"`
	TargetSummary  string       `gorm:"type:varchar(255)" json:"targetSummary"`
	Reason         ReportReason `gorm:"type:varchar(30);not null" json:"reason"`
	Detail         string       `gorm:"type:text" json:"detail"`
	Status         ReportStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReporterID     uint         `gorm:"index;not null" json:"reporterId"`
	Reporter       *Profile     `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ReporterIPv4   string       `gorm:"column:reporter_ipv4;type:varchar(15);default:null" json:"-"`
	ReporterIPv6   string       `gorm:"column:reporter_ipv6;type:varchar(45);default:null" json:"-"`
	ReviewedByID   *uint        `gorm:"index" json:"reviewedById,omitempty"`
	ReviewedBy     *Profile     `gorm:"foreignKey:ReviewedByID" json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time   `json:"reviewedAt,omitempty"`
	ResolvedByID   *uint        `gorm:"index" json:"resolvedById,omitempty"`
	ResolvedBy     *Profile     `gorm:"foreignKey:ResolvedByID" json:"resolvedBy,omitempty"`
	ResolvedAt     *time.Time   `json:"resolvedAt,omitempty"`
	ResolutionNote string       `gorm:"type:text" json:"resolutionNote,omitempty"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (t TargetType) Valid() bool {
	switch t {
	case TargetReview, TargetVendor, TargetProfile:
		return true
	}
	return false
}

func (r ReportReason) Valid() bool {
	switch r {
	case ReasonSpam, ReasonInappropriate, ReasonFalseInfo, ReasonPrivacy, ReasonOther:
		return true
	}
	return false
}

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewing, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusResolved || s == ReportStatusDismissed
}

// CanTransition reports whether from -> to is an edge of the report lifecycle.
func CanTransition(from, to ReportStatus) bool {
	for _, next := range reportTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesFor lists the statuses from which a report may move to target.
func SourcesFor(target ReportStatus) []ReportStatus {
	var sources []ReportStatus
	for _, from := range []ReportStatus{ReportStatusPending, ReportStatusReviewing} {
		if CanTransition(from, target) {
			sources = append(sources, from)
		}
	}
	return sources
}

// CanProcess is true while moderators may still act on the report.
func (r *Report) CanProcess() bool {
	return r.Status == ReportStatusPending || r.Status == ReportStatusReviewing
}

// ReasonLabel maps reason codes to their display text.
func ReasonLabel(r ReportReason) string {
	switch r {
	case ReasonSpam:
		return "스팸/광고"
	case ReasonInappropriate:
		return "부적절한 내용"
	case ReasonFalseInfo:
		return "허위 정보"
	case ReasonPrivacy:
		return "개인정보 노출"
	case ReasonOther:
		return "기타"
	}
	return string(r)
}
