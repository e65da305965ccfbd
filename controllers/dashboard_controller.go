package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type priorityCount struct {
	Priority string `json:"priority"`
	Count    int64  `json:"count"`
}

// GetSummary returns the caller's dashboard: counts over the projects they
// belong to, grouped task stats and the most recent tasks.
func (dc *DashboardController) GetSummary(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var projectIDs []uint
	err := dc.DB.Model(&models.ProjectMember{}).
		Where("user_id = ?", user.ID).
		Pluck("project_id", &projectIDs).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch projects", err)
	}

	totalProjects := int64(len(projectIDs))
	if totalProjects == 0 {
		return c.JSON(utils.SuccessResponse(fiber.Map{
			"total_projects":  0,
			"total_tasks":     0,
			"completed_tasks": 0,
			"pending_tasks":   0,
			"by_status":       []statusCount{},
			"by_priority":     []priorityCount{},
			"recent_tasks":    []fiber.Map{},
		}))
	}

	var totalTasks, completedTasks int64
	if err := dc.DB.Model(&models.Task{}).Where("project_id IN ?", projectIDs).Count(&totalTasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count tasks", err)
	}
	if err := dc.DB.Model(&models.Task{}).
		Where("project_id IN ? AND status = ?", projectIDs, models.StatusDone).
		Count(&completedTasks).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count tasks", err)
	}

	var byStatus []statusCount
	err = dc.DB.Model(&models.Task{}).
		Select("status, count(*) as count").
		Where("project_id IN ?", projectIDs).
		Group("status").
		Scan(&byStatus).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to group tasks", err)
	}

	var byPriority []priorityCount
	err = dc.DB.Model(&models.Task{}).
		Select("priority, count(*) as count").
		Where("project_id IN ?", projectIDs).
		Group("priority").
		Scan(&byPriority).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to group tasks", err)
	}

	var recent []models.Task
	err = dc.DB.Where("project_id IN ?", projectIDs).
		Preload("Assignees.User").Preload("CreatedBy").
		Order("created_at DESC").
		Limit(5).
		Find(&recent).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch recent tasks", err)
	}
	recentTasks := make([]fiber.Map, 0, len(recent))
	for i := range recent {
		recentTasks = append(recentTasks, taskResponse(&recent[i]))
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"total_projects":  totalProjects,
		"total_tasks":     totalTasks,
		"completed_tasks": completedTasks,
		"pending_tasks":   totalTasks - completedTasks,
		"by_status":       byStatus,
		"by_priority":     byPriority,
		"recent_tasks":    recentTasks,
	}))
}
