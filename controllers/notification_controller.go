package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

type NotificationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewNotificationController(db *gorm.DB, logger *log.Logger) *NotificationController {
	return &NotificationController{
		DB:     db,
		Logger: logger,
	}
}

// GetMyNotifications lists the caller's notifications, newest first.
// An optional ?tab= filter narrows to one inbox tab.
func (nc *NotificationController) GetMyNotifications(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	query := nc.DB.Where("user_id = ?", user.ID)
	if tab := c.Query("tab"); tab != "" {
		query = query.Where("tab = ?", tab)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch notifications", err)
	}
	return c.JSON(utils.SuccessResponse(notifications))
}

// GetUnreadCount returns how many of the caller's notifications are unread.
func (nc *NotificationController) GetUnreadCount(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var count int64
	err := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = false", user.ID).
		Count(&count).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count notifications", err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkAsRead marks one of the caller's notifications as read.
func (nc *NotificationController) MarkAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	id := utils.ParseUint(c.Params("id"))

	var notification models.Notification
	if err := nc.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&notification).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
	}

	if err := nc.DB.Model(&notification).Update("read", true).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update notification", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// MarkTabAsRead marks every notification in one tab as read. Idempotent:
// running it twice leaves the same state, the second call matching nothing.
func (nc *NotificationController) MarkTabAsRead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Tab string `json:"tab" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	err := nc.DB.Model(&models.Notification{}).
		Where("user_id = ? AND tab = ? AND read = false", user.ID, input.Tab).
		Update("read", true).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update notifications", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteNotification removes one of the caller's notifications.
func (nc *NotificationController) DeleteNotification(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	id := utils.ParseUint(c.Params("id"))

	result := nc.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Notification{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete notification", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Notification not found", nil)
	}
	return c.JSON(fiber.Map{"message": "Notification deleted"})
}
