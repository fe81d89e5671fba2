package controllers

import (
	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/auth"
	"github.com/medihub/medihub/internal/pkg/moderation"
)

// Controllers bundles every HTTP controller the router installs
type Controllers struct {
	Auth          *AuthController
	Report        *ReportController
	AdminReport   *AdminReportController
	AdminSanction *AdminSanctionController
	Notification  *NotificationController
}

// Global controller set
var controllers *Controllers

// NewControllers wires controllers to the moderation service and repositories
func NewControllers(svc *moderation.Service, repos *repository.Repositories, issuer *auth.TokenIssuer) *Controllers {
	return &Controllers{
		Auth:          NewAuthController(repos.Profile, issuer),
		Report:        NewReportController(svc),
		AdminReport:   NewAdminReportController(svc),
		AdminSanction: NewAdminSanctionController(svc),
		Notification:  NewNotificationController(repos.Notification),
	}
}

// InitializeControllers sets the global controller set used by the router
func InitializeControllers(svc *moderation.Service, repos *repository.Repositories, issuer *auth.TokenIssuer) *Controllers {
	controllers = NewControllers(svc, repos, issuer)
	return controllers
}

// GetControllers returns the global controller set, nil before InitializeControllers
func GetControllers() *Controllers {
	return controllers
}
