package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/auth"
)

type TokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthController issues bearer tokens for profiles
type AuthController struct {
	profiles repository.ProfileRepository
	issuer   *auth.TokenIssuer
}

func NewAuthController(profiles repository.ProfileRepository, issuer *auth.TokenIssuer) *AuthController {
	return &AuthController{profiles: profiles, issuer: issuer}
}

// HandleIssueToken exchanges email and password for a signed access token.
// Suspended or banned profiles still receive a token so they can read their notices.
func (ac *AuthController) HandleIssueToken(c *fiber.Ctx) error {
	var req TokenRequest
	if handled, err := bindJSON(c, &req); handled {
		return err
	}

	// notice: never tell the client which part of the credentials was wrong
	profile, err := ac.profiles.GetByEmail(req.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("[Auth] Profile lookup failed: %v", err)
			return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "로그인 처리 중 오류가 발생했습니다.")
		}
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "이메일 또는 비밀번호가 올바르지 않습니다.")
	}
	if !profile.CheckPassword(req.Password) {
		return errorJSON(c, fiber.StatusUnauthorized, "unauthorized", "이메일 또는 비밀번호가 올바르지 않습니다.")
	}
	if !profile.IsActive() {
		return errorJSON(c, fiber.StatusForbidden, "forbidden", "비활성화된 계정입니다.")
	}

	token, expiresAt, err := ac.issuer.Issue(profile.ID, profile.Name, profile.Role)
	if err != nil {
		log.Errorf("[Auth] Failed to issue token for profile %d: %v", profile.ID, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "로그인 처리 중 오류가 발생했습니다.")
	}

	if err := ac.profiles.UpdateLastLogin(profile.ID, time.Now()); err != nil {
		log.Warnf("[Auth] Failed to update last login for profile %d: %v", profile.ID, err)
	}

	return c.JSON(fiber.Map{
		"token":     token,
		"tokenType": "Bearer",
		"expiresAt": expiresAt,
		"profile": fiber.Map{
			"id":   profile.ID,
			"name": profile.Name,
			"role": profile.Role,
		},
	})
}
