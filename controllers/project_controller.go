package controller

import (
	"fmt"
	"log"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

type ProjectController struct {
	DB       *gorm.DB
	Logger   *log.Logger
	Notifier *utils.Notifier
	Mailer   *utils.InviteMailer
}

func NewProjectController(db *gorm.DB, logger *log.Logger, notifier *utils.Notifier, mailer *utils.InviteMailer) *ProjectController {
	return &ProjectController{
		DB:       db,
		Logger:   logger,
		Notifier: notifier,
		Mailer:   mailer,
	}
}

// projectResponse resolves owned references to their display-friendly form.
func projectResponse(p *models.Project) fiber.Map {
	members := make([]models.UserSummary, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, m.User.Summary())
	}
	return fiber.Map{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"created_by":  p.CreatedBy.Summary(),
		"permissions": p.Permissions,
		"members":     members,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

// CreateProject creates a project owned by the caller. The creator becomes
// the first member.
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        string                     `json:"name" validate:"required,max=200"`
		Description string                     `json:"description" validate:"omitempty,max=2000"`
		Permissions *models.ProjectPermissions `json:"permissions"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project := models.Project{
		Name:        input.Name,
		Description: input.Description,
		CreatedByID: user.ID,
	}
	if input.Permissions != nil {
		project.Permissions = *input.Permissions
	}

	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return tx.Create(&models.ProjectMember{ProjectID: project.ID, UserID: user.ID}).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create project", err)
	}

	utils.LogActivity(pc.DB, user.ID, fmt.Sprintf("you created project %q", project.Name), &project.ID)

	created, err := loadProject(pc.DB, project.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load project", err)
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(projectResponse(created)))
}

// GetProjects lists the projects the caller is a member of.
func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var projects []models.Project
	err := pc.DB.
		Joins("JOIN project_members ON project_members.project_id = projects.id").
		Where("project_members.user_id = ?", user.ID).
		Preload("Members.User").Preload("CreatedBy").
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch projects", err)
	}

	out := make([]fiber.Map, 0, len(projects))
	for i := range projects {
		out = append(out, projectResponse(&projects[i]))
	}
	return c.JSON(utils.SuccessResponse(out))
}

// GetProject returns one project the caller may view.
func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	project, err := loadProject(pc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionViewProject, nil) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	return c.JSON(utils.SuccessResponse(projectResponse(project)))
}

// UpdateProject edits name, description and the per-project permission flags.
func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Name        *string                    `json:"name" validate:"omitempty,max=200"`
		Description *string                    `json:"description" validate:"omitempty,max=2000"`
		Permissions *models.ProjectPermissions `json:"permissions"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, err := loadProject(pc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionEditProject, nil) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	if input.Name != nil {
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Permissions != nil {
		project.Permissions = *input.Permissions
	}
	if err := pc.DB.Save(project).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update project", err)
	}

	utils.LogActivity(pc.DB, user.ID, fmt.Sprintf("you updated project %q", project.Name), &project.ID)
	pc.Notifier.Send(
		utils.WithoutID(project.MemberIDs(), user.ID),
		fmt.Sprintf("Project %q was updated", project.Name),
		models.NotificationTypeProject, models.TabProject,
	)

	return c.JSON(utils.SuccessResponse(projectResponse(project)))
}

// DeleteProject removes the project and everything under it: tasks, their
// comments and assignee rows, and the member rows. No orphans remain.
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	project, err := loadProject(pc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionDeleteProject, nil) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	memberIDs := project.MemberIDs()

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).Where("project_id = ?", project.ID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskAssignee{}).Error; err != nil {
				return err
			}
			if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, project.ID).Error
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete project", err)
	}

	utils.LogActivity(pc.DB, user.ID, fmt.Sprintf("you deleted project %q", project.Name), nil)
	pc.Notifier.Send(
		utils.WithoutID(memberIDs, user.ID),
		fmt.Sprintf("Project %q was deleted", project.Name),
		models.NotificationTypeProject, models.TabProject,
	)

	return c.JSON(fiber.Map{"message": "Project deleted"})
}

// AddMember invites a user to the project by email.
func (pc *ProjectController) AddMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if err := checkmail.ValidateFormat(input.Email); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid email address", err)
	}

	project, err := loadProject(pc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionAddMember, nil) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	var invitee models.User
	if err := pc.DB.Where("email = ?", input.Email).First(&invitee).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "User not found", nil)
	}
	if project.HasMember(invitee.ID) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "User already member", nil)
	}

	if err := pc.DB.Create(&models.ProjectMember{ProjectID: project.ID, UserID: invitee.ID}).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to add member", err)
	}

	utils.LogActivity(pc.DB, user.ID, fmt.Sprintf("you added %s to project %q", invitee.Name, project.Name), &project.ID)
	pc.Notifier.SendOne(invitee.ID,
		fmt.Sprintf("You were added to project %q", project.Name),
		models.NotificationTypeInvitation, models.TabInvitation,
	)
	if pc.Mailer.Enabled() {
		if err := pc.Mailer.SendProjectInvitation(invitee.Email, invitee.Name, user.Name, project.Name); err != nil {
			utils.LogError("invitation_mail", err, map[string]interface{}{
				"project_id": project.ID,
				"user_id":    invitee.ID,
			})
		}
	}

	return c.JSON(fiber.Map{"message": "Member added"})
}

// RemoveMember removes a user from the project. The owner can never be
// removed from its own project; the removed user is pulled from every
// task's assignee list to keep assignment consistent with membership.
func (pc *ProjectController) RemoveMember(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	targetID := utils.ParseUint(c.Params("userId"))

	project, err := loadProject(pc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionRemoveMember, nil) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	if targetID == project.CreatedByID {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Project owner cannot be removed", nil)
	}
	if !project.HasMember(targetID) {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Member not found", nil)
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND user_id = ?", project.ID, targetID).
			Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return pullAssignee(tx, project.ID, targetID)
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove member", err)
	}

	utils.LogActivity(pc.DB, user.ID, fmt.Sprintf("you removed a member from project %q", project.Name), &project.ID)
	pc.Notifier.SendOne(targetID,
		fmt.Sprintf("You were removed from project %q", project.Name),
		models.NotificationTypeProject, models.TabProject,
	)

	return c.JSON(fiber.Map{"message": "Member removed"})
}

// UpdateMembers replaces the member set in bulk. The owner is always kept;
// users no longer in the set are pulled from every task's assignee list;
// only the added and removed users get notified.
func (pc *ProjectController) UpdateMembers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var input struct {
		Members []uint `json:"members" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	project, err := loadProject(pc.DB, utils.ParseUint(c.Params("id")))
	if err != nil {
		if err == errNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Project not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch project", err)
	}
	if !authorize(user, project, utils.ActionRemoveMember, nil) ||
		!authorize(user, project, utils.ActionAddMember, nil) {
		return utils.ErrorResponse(c, fiber.StatusForbidden, "Permission denied", nil)
	}

	oldIDs := project.MemberIDs()
	newIDs := utils.EnsureID(input.Members, project.CreatedByID)
	added, removed := utils.DiffIDs(oldIDs, newIDs)

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		for _, id := range added {
			var count int64
			if err := tx.Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("user %d not found", id)
			}
			if err := tx.Create(&models.ProjectMember{ProjectID: project.ID, UserID: id}).Error; err != nil {
				return err
			}
		}
		for _, id := range removed {
			if err := tx.Where("project_id = ? AND user_id = ?", project.ID, id).
				Delete(&models.ProjectMember{}).Error; err != nil {
				return err
			}
			if err := pullAssignee(tx, project.ID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update members", err)
	}

	utils.LogActivity(pc.DB, user.ID, fmt.Sprintf("you updated members of project %q", project.Name), &project.ID)
	pc.Notifier.Send(added,
		fmt.Sprintf("You were added to project %q", project.Name),
		models.NotificationTypeInvitation, models.TabInvitation,
	)
	pc.Notifier.Send(removed,
		fmt.Sprintf("You were removed from project %q", project.Name),
		models.NotificationTypeProject, models.TabProject,
	)

	updated, err := loadProject(pc.DB, project.ID)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load project", err)
	}
	return c.JSON(utils.SuccessResponse(projectResponse(updated)))
}

// pullAssignee removes userID from the assignee list of every task in the
// project, except tasks the user created: the creator-retention invariant
// keeps a task's creator assigned no matter which path mutates the set.
func pullAssignee(tx *gorm.DB, projectID, userID uint) error {
	var taskIDs []uint
	err := tx.Model(&models.Task{}).
		Where("project_id = ? AND created_by_id <> ?", projectID, userID).
		Pluck("id", &taskIDs).Error
	if err != nil {
		return err
	}
	if len(taskIDs) == 0 {
		return nil
	}
	return tx.Where("task_id IN ? AND user_id = ?", taskIDs, userID).
		Delete(&models.TaskAssignee{}).Error
}
