package controller

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

type TaskController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
}

func NewTaskController(db *gorm.DB, logger *log.Logger, notifier *utils.Notifier) *TaskController {
	return &TaskController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
	}
}

func taskResponse(t *models.Task) fiber.Map {
	assignees := make([]models.UserSummary, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		assignees = append(assignees, a.User.Summary())
	}
	return fiber.Map{
		"id":         t.ID,
		"title":      t.Title,
		"priority":   t.Priority,
		"status":     t.Status,
		"project_id": t.ProjectID,
		"created_by": t.CreatedBy.Summary(),
		"assignees":  assignees,
		"created_at": t.CreatedAt,
		"updated_at": t.UpdatedAt,
	}
}

// CreateTask creates a task in a project. The creator is force-included in
// the assignee set no matter what the request says.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title     string `json:"title" validate:"required,max=300"`
		Priority  string `json:"priority" validate:"omitempty,oneof=low medium high"`
		Status    string `json:"status" validate:"omitempty,oneof=todo inprogress review done"`
		ProjectID uint   `json:"project_id" validate:"required"`
		Assignees []uint `json:"assignees"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, err := loadProject(tc.DB, input.ProjectID)
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionCreateTask, nil) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	task := models.Task{
		Title:       input.Title,
		Priority:    input.Priority,
		Status:      input.Status,
		ProjectID:   project.ID,
		CreatedByID: user.ID,
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}

	assigneeIDs := utils.EnsureID(input.Assignees, user.ID)

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		for _, id := range assigneeIDs {
			if err := tx.Create(&models.TaskAssignee{TaskID: task.ID, UserID: id}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create task", err)
	}

	utils.LogActivity(tc.DB, user.ID, fmt.Sprintf("you created task %q", task.Title), &project.ID)
	tc.Notifier.Send(
		utils.WithoutID(assigneeIDs, user.ID),
		fmt.Sprintf("You were assigned to task %q", task.Title),
		models.NotificationTypeTask, models.TabTasks,
	)

	created, err := loadTask(tc.DB, task.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load task", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(taskResponse(created)))
}

// GetTasksByProject lists a project's tasks, newest first.
func (tc *TaskController) GetTasksByProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	project, err := loadProject(tc.DB, utils.ParseUint(c.Params("projectId")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionViewAllTasks, nil) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	var tasks []models.Task
	err = tc.DB.Where("project_id = ?", project.ID).
		Preload("Assignees.User").Preload("CreatedBy").
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	out := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskResponse(&tasks[i]))
	}
	return c.JSON(utils.SuccessResponse(out))
}

// GetMyTasks lists tasks assigned to the caller across all projects.
func (tc *TaskController) GetMyTasks(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var tasks []models.Task
	err := tc.DB.
		Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
		Where("task_assignees.user_id = ?", user.ID).
		Preload("Assignees.User").Preload("CreatedBy").
		Order("tasks.created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch tasks", err)
	}

	out := make([]fiber.Map, 0, len(tasks))
	for i := range tasks {
		out = append(out, taskResponse(&tasks[i]))
	}
	return c.JSON(utils.SuccessResponse(out))
}

// UpdateTask edits a task. Each submitted field is gated by its own action
// tag; a single denial rejects the whole request before any side effect.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Title     *string `json:"title" validate:"omitempty,max=300"`
		Priority  *string `json:"priority" validate:"omitempty,oneof=low medium high"`
		Status    *string `json:"status" validate:"omitempty,oneof=todo inprogress review done"`
		Assignees *[]uint `json:"assignees"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	task, err := loadTask(tc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}
	project, err := loadProject(tc.DB, task.ProjectID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}

	required := []utils.Action{utils.ActionEditAnyTask}
	if input.Assignees != nil {
		required = append(required, utils.ActionAssignUsers)
	}
	if input.Status != nil {
		required = append(required, utils.ActionChangeStatus)
	}
	if input.Priority != nil {
		required = append(required, utils.ActionChangePriority)
	}
	for _, action := range required {
		if !authorize(user, project, action, task) {
			return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
		}
	}

	oldStatus := task.Status
	oldAssignees := task.AssigneeIDs()

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		task.Status = *input.Status
	}

	// Creator retention: the task's creator stays assigned regardless of
	// what the request submitted.
	var newAssignees []uint
	if input.Assignees != nil {
		newAssignees = utils.EnsureID(*input.Assignees, task.CreatedByID)
	} else {
		newAssignees = oldAssignees
	}
	added, removed := utils.DiffIDs(oldAssignees, newAssignees)

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(task).Error; err != nil {
			return err
		}
		for _, id := range added {
			if err := tx.Create(&models.TaskAssignee{TaskID: task.ID, UserID: id}).Error; err != nil {
				return err
			}
		}
		if len(removed) > 0 {
			if err := tx.Where("task_id = ? AND user_id IN ?", task.ID, removed).
				Delete(&models.TaskAssignee{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
	}

	utils.LogActivity(tc.DB, user.ID, fmt.Sprintf("you updated task %q", task.Title), &project.ID)
	tc.Notifier.Send(added,
		fmt.Sprintf("You were assigned to task %q", task.Title),
		models.NotificationTypeTask, models.TabTasks,
	)
	tc.Notifier.Send(removed,
		fmt.Sprintf("You were removed from task %q", task.Title),
		models.NotificationTypeTask, models.TabTasks,
	)
	if input.Status != nil && *input.Status != oldStatus {
		tc.Notifier.Send(newAssignees,
			fmt.Sprintf("Task %q status changed from %s to %s", task.Title, oldStatus, task.Status),
			models.NotificationTypeStatus, models.TabTasks,
		)
	}

	updated, err := loadTask(tc.DB, task.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load task", err)
	}
	return c.JSON(utils.SuccessResponse(taskResponse(updated)))
}

// UpdateTaskStatus is the status-only path, the one members assigned to
// the task may use when the project's flags allow it.
func (tc *TaskController) UpdateTaskStatus(c *fiber.Ctx) error {
	return tc.changeStatus(c, utils.ActionChangeStatus, "you changed status of task %q from %s to %s")
}

// MoveTask is the board drag path; same effect, its own action tag.
func (tc *TaskController) MoveTask(c *fiber.Ctx) error {
	return tc.changeStatus(c, utils.ActionDragTask, "you moved task %q from %s to %s")
}

func (tc *TaskController) changeStatus(c *fiber.Ctx, action utils.Action, activityFormat string) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Status string `json:"status" validate:"required,oneof=todo inprogress review done"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	task, err := loadTask(tc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}
	project, err := loadProject(tc.DB, task.ProjectID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, action, task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	oldStatus := task.Status
	task.Status = input.Status
	if err := tc.DB.Save(task).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update task", err)
	}

	utils.LogActivity(tc.DB, user.ID,
		fmt.Sprintf(activityFormat, task.Title, oldStatus, task.Status), &project.ID)
	if oldStatus != task.Status {
		tc.Notifier.Send(task.AssigneeIDs(),
			fmt.Sprintf("Task %q status changed from %s to %s", task.Title, oldStatus, task.Status),
			models.NotificationTypeStatus, models.TabTasks,
		)
	}

	updated, err := loadTask(tc.DB, task.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load task", err)
	}
	return c.JSON(utils.SuccessResponse(taskResponse(updated)))
}

// DeleteTask removes a task with its comments and assignee rows.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	task, err := loadTask(tc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Task not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch task", err)
	}
	project, err := loadProject(tc.DB, task.ProjectID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionDeleteTask, task) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	assigneeIDs := task.AssigneeIDs()

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAssignee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Task{}, task.ID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete task", err)
	}

	utils.LogActivity(tc.DB, user.ID, fmt.Sprintf("you deleted task %q", task.Title), &project.ID)
	tc.Notifier.Send(
		utils.WithoutID(assigneeIDs, user.ID),
		fmt.Sprintf("Task %q was deleted", task.Title),
		models.NotificationTypeTask, models.TabTasks,
	)

	return c.JSON(fiber.Map{"message": "Task deleted"})
}
