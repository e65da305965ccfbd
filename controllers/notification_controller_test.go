package controller

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"taskhive/models"
)

// Marking a tab as read twice leaves the same state; the second call
// matches nothing.
func TestMarkTabAsReadIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db, "alice", models.RoleAdmin)
	for i := 0; i < 3; i++ {
		err := db.Create(&models.Notification{
			UserID:  user.ID,
			Message: "task update",
			Type:    models.NotificationTypeTask,
			Tab:     models.TabTasks,
		}).Error
		if err != nil {
			t.Fatalf("seed notification: %v", err)
		}
	}
	err := db.Create(&models.Notification{
		UserID:  user.ID,
		Message: "project update",
		Type:    models.NotificationTypeProject,
		Tab:     models.TabProject,
	}).Error
	if err != nil {
		t.Fatalf("seed notification: %v", err)
	}

	app := newTestApp(db, user)

	for pass := 1; pass <= 2; pass++ {
		resp := doJSON(t, app, "PUT", "/notifications/mark-tab-read", fiber.Map{
			"tab": models.TabTasks,
		})
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("pass %d: status %d", pass, resp.StatusCode)
		}
		if n := countRows(t, db, &models.Notification{}, "user_id = ? AND tab = ? AND read = ?", user.ID, models.TabTasks, false); n != 0 {
			t.Fatalf("pass %d: %d unread left in tab", pass, n)
		}
	}

	// The other tab is untouched.
	if n := countRows(t, db, &models.Notification{}, "user_id = ? AND tab = ? AND read = ?", user.ID, models.TabProject, false); n != 1 {
		t.Fatalf("other tab affected: %d unread, want 1", n)
	}
}
