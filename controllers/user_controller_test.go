package controller

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"taskhive/models"
)

// Deleting an account must free its email address so it can be registered
// again.
func TestDeletedAccountFreesEmail(t *testing.T) {
	db := newTestDB(t)
	admin := seedUser(t, db, "alice", models.RoleAdmin)
	bob := seedUser(t, db, "bob", models.RoleMember)

	app := newTestApp(db, admin)
	resp := doJSON(t, app, "DELETE", "/users/2", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete user: status %d", resp.StatusCode)
	}

	replacement := &models.User{
		Name:         "bob again",
		Email:        bob.Email,
		PasswordHash: "x",
		Role:         models.RoleMember,
		IsActive:     true,
	}
	if err := db.Create(replacement).Error; err != nil {
		t.Fatalf("re-register with freed email: %v", err)
	}

	var old models.User
	if err := db.Unscoped().First(&old, bob.ID).Error; err != nil {
		t.Fatalf("load deleted account: %v", err)
	}
	if old.Email == bob.Email {
		t.Fatalf("deleted account still holds the original email")
	}
	if !old.DeletedAt.Valid {
		t.Fatalf("account was not soft-deleted")
	}
}
