package controller

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"taskhive/models"
)

// Deleting a project must take its tasks, comments, assignee rows and
// member rows with it; nothing may keep referencing the deleted project.
func TestDeleteProjectCascades(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "alice", models.RoleAdmin)
	bob := seedUser(t, db, "bob", models.RoleMember)
	project := seedProject(t, db, owner, bob)
	task := seedTask(t, db, project, owner, bob)
	other := seedTask(t, db, project, bob)
	if err := db.Create(&models.Comment{TaskID: task.ID, UserID: bob.ID, Text: "on it"}).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	app := newTestApp(db, owner)
	resp := doJSON(t, app, "DELETE", "/projects/1", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("delete project: status %d", resp.StatusCode)
	}

	if n := countRows(t, db, &models.Task{}, "project_id = ?", project.ID); n != 0 {
		t.Errorf("tasks remaining after project delete: %d", n)
	}
	if n := countRows(t, db, &models.Comment{}, "task_id IN ?", []uint{task.ID, other.ID}); n != 0 {
		t.Errorf("comments remaining after project delete: %d", n)
	}
	if n := countRows(t, db, &models.TaskAssignee{}, "task_id IN ?", []uint{task.ID, other.ID}); n != 0 {
		t.Errorf("assignee rows remaining after project delete: %d", n)
	}
	if n := countRows(t, db, &models.ProjectMember{}, "project_id = ?", project.ID); n != 0 {
		t.Errorf("member rows remaining after project delete: %d", n)
	}
	if err := db.First(&models.Project{}, project.ID).Error; err != gorm.ErrRecordNotFound {
		t.Errorf("project still resolvable after delete: %v", err)
	}
}

// A bulk member update that omits the owner must keep the owner in the
// member set, and removing the owner directly is always refused.
func TestOwnerRetainedThroughMemberUpdates(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "alice", models.RoleAdmin)
	bob := seedUser(t, db, "bob", models.RoleMember)
	carol := seedUser(t, db, "carol", models.RoleMember)
	project := seedProject(t, db, owner, bob)

	app := newTestApp(db, owner)

	resp := doJSON(t, app, "PUT", "/projects/1/members", fiber.Map{
		"members": []uint{bob.ID, carol.ID},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update members: status %d", resp.StatusCode)
	}
	ids := memberIDs(t, db, project.ID)
	if !containsID(ids, owner.ID) {
		t.Fatalf("owner dropped from member set: %v", ids)
	}
	if !containsID(ids, carol.ID) {
		t.Fatalf("added member missing: %v", ids)
	}

	resp = doJSON(t, app, "DELETE", "/projects/1/members/1", nil)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("owner removal: status %d, want %d", resp.StatusCode, fiber.StatusForbidden)
	}
	if !containsID(memberIDs(t, db, project.ID), owner.ID) {
		t.Fatalf("owner removed despite refusal")
	}
}

// A removed member can be added back, by the single-member endpoint and by
// the bulk update alike. Removal must fully release the membership row.
func TestMemberRemoveThenReAdd(t *testing.T) {
	db := newTestDB(t)
	owner := seedUser(t, db, "alice", models.RoleAdmin)
	bob := seedUser(t, db, "bob", models.RoleMember)
	project := seedProject(t, db, owner, bob)

	app := newTestApp(db, owner)

	resp := doJSON(t, app, "DELETE", "/projects/1/members/2", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("remove member: status %d", resp.StatusCode)
	}
	if containsID(memberIDs(t, db, project.ID), bob.ID) {
		t.Fatalf("member still present after removal")
	}

	resp = doJSON(t, app, "POST", "/projects/1/members", fiber.Map{
		"email": bob.Email,
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("re-add member: status %d", resp.StatusCode)
	}
	if !containsID(memberIDs(t, db, project.ID), bob.ID) {
		t.Fatalf("member missing after re-add")
	}

	// Same cycle through the bulk endpoint.
	resp = doJSON(t, app, "PUT", "/projects/1/members", fiber.Map{
		"members": []uint{owner.ID},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("bulk remove: status %d", resp.StatusCode)
	}
	resp = doJSON(t, app, "PUT", "/projects/1/members", fiber.Map{
		"members": []uint{owner.ID, bob.ID},
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("bulk re-add: status %d", resp.StatusCode)
	}
	if !containsID(memberIDs(t, db, project.ID), bob.ID) {
		t.Fatalf("member missing after bulk re-add")
	}
}
