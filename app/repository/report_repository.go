package repository

import (
	"strings"
	"time"

	"github.com/medihub/medihub/app/models"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository instance
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

// GetByID loads a report with reporter and moderator profiles
func (r *reportRepository) GetByID(id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.Preload("Reporter").
		Preload("ReviewedBy").
		Preload("ResolvedBy").
		First(&report, id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns one page of reports, newest first, plus the total match count
func (r *reportRepository) List(filter ReportListFilter) ([]models.Report, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if filter.TargetType != "" {
			db = db.Where("reports.target_type = ?", filter.TargetType)
		}
		if filter.Status != "" {
			db = db.Where("reports.status = ?", filter.Status)
		}
		if q := strings.TrimSpace(filter.Query); q != "" {
			like := "%" + escapeLike(q) + "%"
			db = db.Joins("JOIN profiles ON profiles.id = reports.reporter_id").
				Where("profiles.name LIKE ? ESCAPE '!' OR profiles.email LIKE ? ESCAPE '!'", like, like)
		}
		return db
	}

	var total int64
	if err := r.db.Model(&models.Report{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	query := r.db.Model(&models.Report{}).Scopes(scope).
		Preload("Reporter").
		Order("reports.created_at DESC").
		Order("reports.id DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) CountByTarget(targetType models.TargetType, targetID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) MarkReviewing(id, moderatorID uint, at time.Time) error {
	return transition(r.db, id, models.ReportStatusReviewing, map[string]interface{}{
		"reviewed_by_id": moderatorID,
		"reviewed_at":    at,
	})
}

func (r *reportRepository) Dismiss(id, moderatorID uint, note string, at time.Time) error {
	return transition(r.db, id, models.ReportStatusDismissed, map[string]interface{}{
		"resolved_by_id":  moderatorID,
		"resolved_at":     at,
		"resolution_note": note,
	})
}

func (r *reportRepository) Resolve(id, moderatorID uint, note string, at time.Time, sanction *models.Sanction) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := transition(tx, id, models.ReportStatusResolved, map[string]interface{}{
			"resolved_by_id":  moderatorID,
			"resolved_at":     at,
			"resolution_note": note,
		})
		if err != nil {
			return err
		}
		if sanction == nil {
			return nil
		}
		sanction.ReportID = id
		return tx.Create(sanction).Error
	})
}

func (r *reportRepository) AddEvidence(evidence *models.ReportEvidence) error {
	return r.db.Create(evidence).Error
}

func (r *reportRepository) ListEvidence(reportID uint) ([]models.ReportEvidence, error) {
	var evidence []models.ReportEvidence
	err := r.db.Where("report_id = ?", reportID).Order("id ASC").Find(&evidence).Error
	return evidence, err
}

// transition moves a report to target only if its current status is a valid
// source for that edge. A stale status yields ErrStateConflict, a missing row
// gorm.ErrRecordNotFound.
func transition(db *gorm.DB, id uint, target models.ReportStatus, fields map[string]interface{}) error {
	fields["status"] = target
	res := db.Model(&models.Report{}).
		Where("id = ? AND status IN ?", id, models.SourcesFor(target)).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&models.Report{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStateConflict
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}
