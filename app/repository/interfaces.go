package repository

import (
	"errors"
	"time"

	"github.com/medihub/medihub/app/models"
	"gorm.io/gorm"
)

// ErrStateConflict is returned by conditional updates when the row was not in
// one of the expected states (already processed or changed concurrently).
var ErrStateConflict = errors.New("record is not in the expected state")

// ProfileRepository defines the interface for profile-related database operations
type ProfileRepository interface {
	Create(profile *models.Profile) error
	GetByID(id uint) (*models.Profile, error)
	GetByEmail(email string) (*models.Profile, error)
	UpdateLastLogin(id uint, at time.Time) error
}

// ReportListFilter narrows the moderator report queue
type ReportListFilter struct {
	TargetType models.TargetType
	Status     models.ReportStatus
	Query      string // matches reporter name or email
	Offset     int
	Limit      int
}

// ReportRepository defines the interface for report-related database operations
type ReportRepository interface {
	Create(report *models.Report) error
	GetByID(id uint) (*models.Report, error)
	List(filter ReportListFilter) ([]models.Report, int64, error)
	CountByTarget(targetType models.TargetType, targetID uint) (int64, error)
	MarkReviewing(id, moderatorID uint, at time.Time) error
	Dismiss(id, moderatorID uint, note string, at time.Time) error
	// Resolve closes the report and, when sanction is non-nil, inserts it in the same transaction.
	Resolve(id, moderatorID uint, note string, at time.Time, sanction *models.Sanction) error
	AddEvidence(evidence *models.ReportEvidence) error
	ListEvidence(reportID uint) ([]models.ReportEvidence, error)
}

// SanctionRepository defines the interface for the sanction ledger
type SanctionRepository interface {
	GetByID(id uint) (*models.Sanction, error)
	ListByTarget(targetType models.TargetType, targetID uint) ([]models.Sanction, error)
	ListActiveByTarget(targetType models.TargetType, targetID uint) ([]models.Sanction, error)
	Revoke(id, moderatorID uint, reason string, at time.Time) error
	ListDueForExpiry(now time.Time, limit int) ([]models.Sanction, error)
	MarkExpired(id uint, at time.Time) error
}

// NotificationRepository defines the interface for profile notifications
type NotificationRepository interface {
	Create(notification *models.Notification) error
	ListByProfile(profileID uint, limit int) ([]models.Notification, error)
	CountUnread(profileID uint) (int64, error)
	MarkRead(id, profileID uint) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Profile      ProfileRepository
	Report       ReportRepository
	Sanction     SanctionRepository
	Notification NotificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profile:      NewProfileRepository(db),
		Report:       NewReportRepository(db),
		Sanction:     NewSanctionRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
