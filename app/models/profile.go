package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

const (
	ROLE_DOCTOR     = "doctor"
	ROLE_VENDOR     = "vendor"
	ROLE_ADMIN      = "admin"
	STATUS_ACTIVE   = "active"
	STATUS_INACTIVE = "inactive"
)

// Standing values derived from the sanction ledger.
const (
	STANDING_GOOD      = "active"
	STANDING_SUSPENDED = "suspended"
	STANDING_BANNED    = "banned"
)

// Profile is a marketplace account (doctor, vendor or admin).
type Profile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(150)" json:"name" validate:"required,min=2,max=150"`
	Email       string     `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,max=200"`
	Password    string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role        string     `gorm:"type:varchar(20);default:'doctor'" json:"role" validate:"oneof=doctor vendor admin"`
	Status      string     `gorm:"type:varchar(20);default:'active'" json:"status" validate:"oneof=active inactive"`
	LastLoginAt *time.Time `gorm:"default:null" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (p *Profile) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// NewProfile builds a validated profile with a hashed password.
func NewProfile(name, email, password, role string) (*Profile, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     role,
		Status:   STATUS_ACTIVE,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies the password against the stored hash
func (p *Profile) CheckPassword(password string) bool {
	return CheckPasswordHash(password, p.Password)
}

func (p *Profile) IsActive() bool {
	return p.Status == STATUS_ACTIVE
}

func (p *Profile) IsAdmin() bool {
	return p.Role == ROLE_ADMIN
}
