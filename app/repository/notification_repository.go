package repository

import (
	"github.com/medihub/medihub/app/models"
	"gorm.io/gorm"
)

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository instance
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepository) ListByProfile(profileID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	// unread first, then newest
	query := r.db.Where("profile_id = ?", profileID).Order("is_read ASC").Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) CountUnread(profileID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).Where("profile_id = ? AND is_read = ?", profileID, false).Count(&count).Error
	return count, err
}

// MarkRead marks a notification as read; other profiles' notifications are treated as missing.
func (r *notificationRepository) MarkRead(id, profileID uint) error {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND profile_id = ?", id, profileID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// MySQL reports zero affected rows when the flag was already set
	var count int64
	if err := r.db.Model(&models.Notification{}).Where("id = ? AND profile_id = ?", id, profileID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
