package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.Comment{},
		&models.Notification{},
		&models.Activity{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// newTestApp wires the controllers behind a stub auth middleware that
// injects actor as the authenticated user.
func newTestApp(db *gorm.DB, actor *models.User) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", actor)
		c.Locals("userID", actor.ID)
		return c.Next()
	})

	discard := log.New(io.Discard, "", 0)
	notifier := utils.NewNotifier(db, nil)
	pc := NewProjectController(db, discard, notifier, utils.NewInviteMailer("", "587", "", "", ""))
	tc := NewTaskController(db, discard, notifier)
	nc := NewNotificationController(db, discard)
	uc := NewUserController(db, discard, notifier)

	app.Delete("/projects/:id", pc.DeleteProject)
	app.Post("/projects/:id/members", pc.AddMember)
	app.Put("/projects/:id/members", pc.UpdateMembers)
	app.Delete("/projects/:id/members/:userId", pc.RemoveMember)
	app.Put("/tasks/:id", tc.UpdateTask)
	app.Put("/notifications/mark-tab-read", nc.MarkTabAsRead)
	app.Delete("/users/:id", uc.DeleteUser)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	u := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return u
}

func seedProject(t *testing.T, db *gorm.DB, owner *models.User, members ...*models.User) *models.Project {
	t.Helper()
	p := &models.Project{Name: "board", CreatedByID: owner.ID}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	for _, u := range append([]*models.User{owner}, members...) {
		if err := db.Create(&models.ProjectMember{ProjectID: p.ID, UserID: u.ID}).Error; err != nil {
			t.Fatalf("seed member %d: %v", u.ID, err)
		}
	}
	return p
}

func seedTask(t *testing.T, db *gorm.DB, project *models.Project, creator *models.User, assignees ...*models.User) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:       "ship it",
		Priority:    models.PriorityMedium,
		Status:      models.StatusTodo,
		ProjectID:   project.ID,
		CreatedByID: creator.ID,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	for _, u := range append([]*models.User{creator}, assignees...) {
		if err := db.Create(&models.TaskAssignee{TaskID: task.ID, UserID: u.ID}).Error; err != nil {
			t.Fatalf("seed assignee %d: %v", u.ID, err)
		}
	}
	return task
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	if err := db.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func memberIDs(t *testing.T, db *gorm.DB, projectID uint) []uint {
	t.Helper()
	var ids []uint
	err := db.Model(&models.ProjectMember{}).
		Where("project_id = ?", projectID).
		Pluck("user_id", &ids).Error
	if err != nil {
		t.Fatalf("load members: %v", err)
	}
	return ids
}

func assigneeIDs(t *testing.T, db *gorm.DB, taskID uint) []uint {
	t.Helper()
	var ids []uint
	err := db.Model(&models.TaskAssignee{}).
		Where("task_id = ?", taskID).
		Pluck("user_id", &ids).Error
	if err != nil {
		t.Fatalf("load assignees: %v", err)
	}
	return ids
}

func containsID(ids []uint, want uint) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
