package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/internal/pkg/moderation"
	"github.com/medihub/medihub/internal/pkg/usercontext"
)

type StartReviewRequest struct {
	Confirmed bool `json:"confirmed"`
}

type DismissRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type ResolveRequest struct {
	SanctionType string `json:"sanctionType" validate:"omitempty,oneof=warning suspension permanent_ban"`
	DurationDays *int   `json:"durationDays"`
	Reason       string `json:"reason" validate:"required,max=1000"`
	ConfirmToken string `json:"confirmToken"`
}

// AdminReportController is the moderator side of the report queue
type AdminReportController struct {
	svc *moderation.Service
}

func NewAdminReportController(svc *moderation.Service) *AdminReportController {
	return &AdminReportController{svc: svc}
}

// GET /api/v1/admin/reports?targetType=&status=&q=&page=
func (arc *AdminReportController) HandleListReports(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	result, err := arc.svc.ListReports(c.UserContext(), moderation.ListFilter{
		TargetType: c.Query("targetType"),
		Status:     c.Query("status"),
		Query:      c.Query("q"),
		Page:       page,
	})
	if err != nil {
		return handleServiceError(c, err, "신고 목록을 불러오지 못했습니다.")
	}
	return c.JSON(result)
}

// GET /api/v1/admin/reports/:id
func (arc *AdminReportController) HandleReportDetail(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	detail, err := arc.svc.GetReportDetail(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err, "신고 정보를 불러올 수 없습니다.")
	}
	return c.JSON(detail)
}

// POST /api/v1/admin/reports/:id/review
func (arc *AdminReportController) HandleStartReview(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req StartReviewRequest
	if handled, err := bindJSON(c, &req); handled {
		return err
	}
	report, err := arc.svc.StartReview(c.UserContext(), id, usercontext.GetProfileID(c), req.Confirmed)
	if err != nil {
		return handleServiceError(c, err, "검토 시작에 실패했습니다.")
	}
	return c.JSON(report)
}

// POST /api/v1/admin/reports/:id/dismiss
func (arc *AdminReportController) HandleDismiss(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req DismissRequest
	if handled, err := bindJSON(c, &req); handled {
		return err
	}
	report, err := arc.svc.Dismiss(c.UserContext(), id, usercontext.GetProfileID(c), req.Reason)
	if err != nil {
		return handleServiceError(c, err, "신고 기각에 실패했습니다.")
	}
	return c.JSON(report)
}

// POST /api/v1/admin/reports/:id/resolve
func (arc *AdminReportController) HandleResolve(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req ResolveRequest
	if handled, err := bindJSON(c, &req); handled {
		return err
	}

	in := moderation.ResolveInput{Reason: req.Reason, ConfirmToken: req.ConfirmToken}
	if req.SanctionType != "" {
		in.Sanction = &moderation.SanctionRequest{
			Type:         models.SanctionType(req.SanctionType),
			DurationDays: req.DurationDays,
		}
	} else if req.DurationDays != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": "제재 유형 없이 기간을 지정할 수 없습니다.",
			"field":   "durationDays",
		})
	}

	result, err := arc.svc.Resolve(c.UserContext(), id, usercontext.GetProfileID(c), in)
	if err != nil {
		return handleServiceError(c, err, "신고 처리에 실패했습니다.")
	}
	return c.JSON(result)
}

// GET /api/v1/admin/reports/:id/evidence/:evidenceId
func (arc *AdminReportController) HandleEvidenceURL(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	evidenceID, ok := paramID(c, "evidenceId")
	if !ok {
		return invalidID(c)
	}
	url, err := arc.svc.EvidenceURL(c.UserContext(), id, evidenceID)
	if err != nil {
		return handleServiceError(c, err, "증빙 자료 링크를 만들지 못했습니다.")
	}
	return c.JSON(fiber.Map{"url": url})
}
