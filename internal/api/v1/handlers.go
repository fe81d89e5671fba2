package apiv1

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/medihub/medihub/app/controllers"
	"github.com/medihub/medihub/internal/pkg/middleware"
)

// APIServer serves the versioned JSON API and delegates to the controllers
type APIServer struct {
	ctrl *controllers.Controllers
}

// NewAPIServer creates a new API server instance
func NewAPIServer(ctrl *controllers.Controllers) *APIServer {
	return &APIServer{ctrl: ctrl}
}

// GetPing handles the ping endpoint
func (s *APIServer) GetPing(c *fiber.Ctx) error {
	response := Pong{
		Ping: "pong",
		Time: time.Now().UTC(),
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

type Pong struct {
	Ping string    `json:"ping"`
	Time time.Time `json:"time"`
}

// RegisterHandlers mounts every v1 route on router. intakeLimiter guards report
// submission and evidence upload.
func RegisterHandlers(router fiber.Router, s *APIServer, intakeLimiter fiber.Handler) {
	router.Get("/ping", s.GetPing)
	router.Post("/auth/token", s.ctrl.Auth.HandleIssueToken)

	// report intake (any authenticated profile)
	router.Post("/reports", middleware.RequireAuth, intakeLimiter, s.ctrl.Report.HandleSubmitReport)
	router.Post("/reports/:id/evidence", middleware.RequireAuth, intakeLimiter, s.ctrl.Report.HandleUploadEvidence)

	// own notifications
	router.Get("/notifications", middleware.RequireAuth, s.ctrl.Notification.HandleListNotifications)
	router.Post("/notifications/:id/read", middleware.RequireAuth, s.ctrl.Notification.HandleMarkRead)

	// moderator console
	admin := router.Group("/admin", middleware.RequireAdmin)
	admin.Get("/reports", s.ctrl.AdminReport.HandleListReports)
	admin.Get("/reports/:id", s.ctrl.AdminReport.HandleReportDetail)
	admin.Post("/reports/:id/review", s.ctrl.AdminReport.HandleStartReview)
	admin.Post("/reports/:id/dismiss", s.ctrl.AdminReport.HandleDismiss)
	admin.Post("/reports/:id/resolve", s.ctrl.AdminReport.HandleResolve)
	admin.Get("/reports/:id/evidence/:evidenceId", s.ctrl.AdminReport.HandleEvidenceURL)

	admin.Get("/sanctions/options", s.ctrl.AdminSanction.HandleSanctionOptions)
	admin.Get("/sanctions", s.ctrl.AdminSanction.HandleSanctionHistory)
	admin.Post("/sanctions/:id/revoke", s.ctrl.AdminSanction.HandleRevoke)
	admin.Get("/profiles/:id/standing", s.ctrl.AdminSanction.HandleProfileStanding)
}
