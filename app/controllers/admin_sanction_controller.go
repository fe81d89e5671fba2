package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/internal/pkg/moderation"
	"github.com/medihub/medihub/internal/pkg/usercontext"
)

type RevokeRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// AdminSanctionController manages the sanction ledger
type AdminSanctionController struct {
	svc *moderation.Service
}

func NewAdminSanctionController(svc *moderation.Service) *AdminSanctionController {
	return &AdminSanctionController{svc: svc}
}

// GET /api/v1/admin/sanctions/options
func (asc *AdminSanctionController) HandleSanctionOptions(c *fiber.Ctx) error {
	return c.JSON(moderation.Options())
}

// GET /api/v1/admin/sanctions?targetType=&targetId=
func (asc *AdminSanctionController) HandleSanctionHistory(c *fiber.Ctx) error {
	targetType := models.TargetType(c.Query("targetType"))
	targetID := c.QueryInt("targetId", 0)
	if targetID < 0 {
		targetID = 0
	}
	items, err := asc.svc.SanctionHistory(c.UserContext(), targetType, uint(targetID))
	if err != nil {
		return handleServiceError(c, err, "제재 내역을 불러오지 못했습니다.")
	}
	return c.JSON(fiber.Map{"items": items})
}

// POST /api/v1/admin/sanctions/:id/revoke
func (asc *AdminSanctionController) HandleRevoke(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var req RevokeRequest
	if handled, err := bindJSON(c, &req); handled {
		return err
	}
	sanction, err := asc.svc.RevokeSanction(c.UserContext(), id, usercontext.GetProfileID(c), req.Reason)
	if err != nil {
		return handleServiceError(c, err, "제재 해제에 실패했습니다.")
	}
	return c.JSON(moderation.SanctionView{Sanction: *sanction, CanRevoke: sanction.CanRevoke()})
}

// GET /api/v1/admin/profiles/:id/standing
func (asc *AdminSanctionController) HandleProfileStanding(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	standing, err := asc.svc.ProfileStanding(c.UserContext(), id)
	if err != nil {
		return handleServiceError(c, err, "회원 상태를 불러오지 못했습니다.")
	}
	return c.JSON(standing)
}
