package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/medihub/medihub/app/models"
	"github.com/medihub/medihub/app/repository"
	"github.com/medihub/medihub/internal/pkg/usercontext"
)

const notificationListLimit = 50

type NotificationController struct {
	repo repository.NotificationRepository
}

func NewNotificationController(repo repository.NotificationRepository) *NotificationController {
	return &NotificationController{repo: repo}
}

// GET /api/v1/notifications
func (nc *NotificationController) HandleListNotifications(c *fiber.Ctx) error {
	profileID := usercontext.GetProfileID(c)
	items, err := nc.repo.ListByProfile(profileID, notificationListLimit)
	if err != nil {
		log.Errorf("[Notification] List failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "알림을 불러오지 못했습니다.")
	}
	// unread covers every notification, not only the returned page
	unread, err := nc.repo.CountUnread(profileID)
	if err != nil {
		log.Errorf("[Notification] Count unread failed: %v", err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "알림을 불러오지 못했습니다.")
	}
	if items == nil {
		items = []models.Notification{}
	}
	return c.JSON(fiber.Map{"items": items, "unread": unread})
}

// POST /api/v1/notifications/:id/read
func (nc *NotificationController) HandleMarkRead(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := nc.repo.MarkRead(id, usercontext.GetProfileID(c)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "not_found", "알림을 찾을 수 없습니다.")
		}
		log.Errorf("[Notification] Mark read %d failed: %v", id, err)
		return errorJSON(c, fiber.StatusInternalServerError, "internal_server_error", "알림 상태를 변경하지 못했습니다.")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
