package repository

import (
	"time"

	"github.com/medihub/medihub/app/models"
	"gorm.io/gorm"
)

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

func (r *profileRepository) GetByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetByEmail looks up a profile by its login e-mail
func (r *profileRepository) GetByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", id).Update("last_login_at", at).Error
}
