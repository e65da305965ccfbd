package controller

import (
	"errors"

	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

var errNotFound = errors.New("resource not found")

// loadProject resolves a project with its member set and owner (including
// the owner's role, which the permission engine keys on).
func loadProject(db *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project
	err := db.Preload("Members.User").Preload("CreatedBy").First(&project, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	return &project, nil
}

// loadTask resolves a task with its assignee set.
func loadTask(db *gorm.DB, id uint) (*models.Task, error) {
	var task models.Task
	err := db.Preload("Assignees.User").Preload("CreatedBy").First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	return &task, nil
}

// actorFrom converts the middleware-resolved user into the engine's input.
func actorFrom(user *models.User) utils.Actor {
	return utils.Actor{ID: user.ID, Role: user.Role}
}

// authorize gates a mutation: it consults the permission engine with the
// project owner's role and answers whether the actor may proceed. Pass the
// task for assignment-gated actions, nil otherwise.
func authorize(user *models.User, project *models.Project, action utils.Action, task *models.Task) bool {
	return utils.CanPerform(actorFrom(user), project, project.CreatedBy.Role, action, task)
}
