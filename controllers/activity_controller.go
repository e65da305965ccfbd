package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

type ActivityController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewActivityController(db *gorm.DB, logger *log.Logger) *ActivityController {
	return &ActivityController{
		DB:     db,
		Logger: logger,
	}
}

// GetMyActivity returns the caller's 50 most recent audit entries with the
// project name resolved.
func (ac *ActivityController) GetMyActivity(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var activities []models.Activity
	err := ac.DB.Where("user_id = ?", user.ID).
		Preload("Project").
		Order("created_at DESC").
		Limit(50).
		Find(&activities).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch activity", err)
	}

	out := make([]fiber.Map, 0, len(activities))
	for _, a := range activities {
		entry := fiber.Map{
			"id":         a.ID,
			"action":     a.Action,
			"created_at": a.CreatedAt,
		}
		if a.Project != nil {
			entry["project"] = fiber.Map{"id": a.Project.ID, "name": a.Project.Name}
		}
		out = append(out, entry)
	}
	return c.JSON(utils.SuccessResponse(out))
}
