package repository

import (
	"time"

	"github.com/medihub/medihub/app/models"
	"gorm.io/gorm"
)

type sanctionRepository struct {
	db *gorm.DB
}

// NewSanctionRepository creates a new sanction repository instance
func NewSanctionRepository(db *gorm.DB) SanctionRepository {
	return &sanctionRepository{db: db}
}

func (r *sanctionRepository) GetByID(id uint) (*models.Sanction, error) {
	var sanction models.Sanction
	if err := r.db.Preload("CreatedBy").Preload("RevokedBy").First(&sanction, id).Error; err != nil {
		return nil, err
	}
	return &sanction, nil
}

// ListByTarget returns the full sanction history of a target, newest first
func (r *sanctionRepository) ListByTarget(targetType models.TargetType, targetID uint) ([]models.Sanction, error) {
	var sanctions []models.Sanction
	err := r.db.Preload("CreatedBy").
		Preload("RevokedBy").
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&sanctions).Error
	return sanctions, err
}

func (r *sanctionRepository) ListActiveByTarget(targetType models.TargetType, targetID uint) ([]models.Sanction, error) {
	var sanctions []models.Sanction
	err := r.db.Where("target_type = ? AND target_id = ? AND status = ?", targetType, targetID, models.SanctionStatusActive).
		Order("created_at DESC").
		Find(&sanctions).Error
	return sanctions, err
}

// Revoke flips an active sanction to revoked. Non-active rows yield ErrStateConflict.
func (r *sanctionRepository) Revoke(id, moderatorID uint, reason string, at time.Time) error {
	res := r.db.Model(&models.Sanction{}).
		Where("id = ? AND status = ?", id, models.SanctionStatusActive).
		Updates(map[string]interface{}{
			"status":        models.SanctionStatusRevoked,
			"revoked_by_id": moderatorID,
			"revoked_at":    at,
			"revoke_reason": reason,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.conflictOrMissing(id)
	}
	return nil
}

// ListDueForExpiry returns active sanctions whose end time has passed
func (r *sanctionRepository) ListDueForExpiry(now time.Time, limit int) ([]models.Sanction, error) {
	var sanctions []models.Sanction
	query := r.db.Where("status = ? AND ends_at IS NOT NULL AND ends_at <= ?", models.SanctionStatusActive, now).
		Order("ends_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&sanctions).Error
	return sanctions, err
}

// MarkExpired expires a sanction if it is still active and due at at.
func (r *sanctionRepository) MarkExpired(id uint, at time.Time) error {
	res := r.db.Model(&models.Sanction{}).
		Where("id = ? AND status = ? AND ends_at IS NOT NULL AND ends_at <= ?", id, models.SanctionStatusActive, at).
		Update("status", models.SanctionStatusExpired)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.conflictOrMissing(id)
	}
	return nil
}

func (r *sanctionRepository) conflictOrMissing(id uint) error {
	var count int64
	if err := r.db.Model(&models.Sanction{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrStateConflict
}
