package controller

import (
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

type CommentController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewCommentController(db *gorm.DB, logger *log.Logger, notifier *utils.Notifier) *CommentController {
	return &CommentController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

func commentResponse(cm *models.Comment) fiber.Map {
	return fiber.Map{
		"id":         cm.ID,
		"task_id":    cm.TaskID,
		"text":       cm.Text,
		"user":       cm.User.Summary(),
		"created_at": cm.CreatedAt,
	}
}

// CreateComment posts a comment on a task. The task's assignees are
// notified, except the commenter, who only gets a push-only acknowledgment
// on their own channel.
func (cc *CommentController) CreateComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		TicketID uint   `json:"ticket_id" validate:"required"`
		Text     string `json:"text" validate:"required,max=5000"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if strings.TrimSpace(input.Text) == "" {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Comment text cannot be empty", nil)
	}

	task, err := loadTask(cc.DB, input.TicketID)
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}
	project, err := loadProject(cc.DB, task.ProjectID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionAddComment, task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	comment := models.Comment{
		TaskID: task.ID,
		UserID: user.ID,
		Text:   input.Text,
	}
	if err := cc.DB.Create(&comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create comment", err)
	}

	utils.LogActivity(cc.DB, user.ID, fmt.Sprintf("you commented on task %q", task.Title), &project.ID)
	cc.Notifier.Send(
		utils.WithoutID(task.AssigneeIDs(), user.ID),
		fmt.Sprintf("%s commented on task %q", user.Name, task.Title),
		models.NotificationTypeComment, models.TabComments,
	)
	cc.Notifier.Ack(user.ID,
		fmt.Sprintf("Your comment on %q was posted", task.Title),
		models.NotificationTypeComment, models.TabComments,
	)

	comment.User = *user
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(commentResponse(&comment)))
}

// GetCommentsByTicket lists a task's comments, oldest first.
func (cc *CommentController) GetCommentsByTicket(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := loadTask(cc.DB, utils.ParseUint(c.Params("ticketId")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}
	project, err := loadProject(cc.DB, task.ProjectID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionViewComment, task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	var comments []models.Comment
	err = cc.DB.Where("task_id = ?", task.ID).
		Preload("User").
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch comments", err)
	}

	out := make([]fiber.Map, 0, len(comments))
	for i := range comments {
		out = append(out, commentResponse(&comments[i]))
	}
	return c.JSON(utils.SuccessResponse(out))
}

// DeleteComment removes a comment. Allowed for the comment's author, or
// for anyone who may edit any task in the project.
func (cc *CommentController) DeleteComment(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var comment models.Comment
	if err := cc.DB.First(&comment, utils.ParseUint(c.Params("id"))).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Comment not found", nil)
	}

	if comment.UserID != user.ID {
		task, err := loadTask(cc.DB, comment.TaskID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
		}
		project, err := loadProject(cc.DB, task.ProjectID)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
		}
		if !authorize(user, project, utils.ActionEditAnyTask, task) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
		}
	}

	if err := cc.DB.Delete(&comment).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete comment", err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}
