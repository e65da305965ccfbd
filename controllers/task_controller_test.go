package controller

import (
	"testing"

	"github.com/gofiber/fiber/v2"

	"taskhive/models"
)

// An assignee update that omits the task's creator must keep the creator
// assigned.
func TestTaskUpdateRetainsCreator(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "alice", models.RoleAdmin)
	bob := seedUser(t, db, "bob", models.RoleMember)
	project := seedProject(t, db, owner, bob)
	task := seedTask(t, db, project, bob)

	app := newTestApp(db, owner)
	resp := doJSON(t, app, "PUT", "/tasks/1", fiber.Map{
		"assignees": []uint{owner.ID},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update task: status %d", resp.StatusCode)
	}

	ids := assigneeIDs(t, db, task.ID)
	if !containsID(ids, bob.ID) {
		t.Fatalf("creator dropped from assignee set: %v", ids)
	}
	if !containsID(ids, owner.ID) {
		t.Fatalf("submitted assignee missing: %v", ids)
	}
}

// Un-assigning a user and assigning them again later must work; removal
// has to fully release the assignment row.
func TestAssigneeRemoveThenReAssign(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "alice", models.RoleAdmin)
	bob := seedUser(t, db, "bob", models.RoleMember)
	project := seedProject(t, db, owner, bob)
	task := seedTask(t, db, project, owner, bob)

	app := newTestApp(db, owner)

	resp := doJSON(t, app, "PUT", "/tasks/1", fiber.Map{
		"assignees": []uint{owner.ID},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("unassign: status %d", resp.StatusCode)
	}
	if containsID(assigneeIDs(t, db, task.ID), bob.ID) {
		t.Fatalf("assignee still present after removal")
	}

	resp = doJSON(t, app, "PUT", "/tasks/1", fiber.Map{
		"assignees": []uint{owner.ID, bob.ID},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("re-assign: status %d", resp.StatusCode)
	}
	if !containsID(assigneeIDs(t, db, task.ID), bob.ID) {
		t.Fatalf("assignee missing after re-assign")
	}
}
