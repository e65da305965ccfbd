package utils_test

import (
	"testing"

	"gorm.io/gorm"

	"taskhive/models"
	"taskhive/utils"
)

var allActions = []utils.Action{
	utils.ActionViewProject,
	utils.ActionEditProject,
	utils.ActionDeleteProject,
	utils.ActionViewMembers,
	utils.ActionAddMember,
	utils.ActionRemoveMember,
	utils.ActionRemovePM,
	utils.ActionRemoveAdmin,
	utils.ActionViewAllTasks,
	utils.ActionCreateTask,
	utils.ActionEditAnyTask,
	utils.ActionDeleteTask,
	utils.ActionAssignUsers,
	utils.ActionChangeStatus,
	utils.ActionChangePriority,
	utils.ActionDragTask,
	utils.ActionViewComment,
	utils.ActionAddComment,
}

func testProject(t *testing.T, ownerID uint, perms models.ProjectPermissions) *models.Project {
	t.Helper()
	return &models.Project{
		Model:       gorm.Model{ID: 1},
		Name:        "board",
		CreatedByID: ownerID,
		Permissions: perms,
	}
}

func assignedTask(t *testing.T, userIDs ...uint) *models.Task {
	t.Helper()
	task := &models.Task{Model: gorm.Model{ID: 7}, Title: "ship it", ProjectID: 1}
	for _, id := range userIDs {
		task.Assignees = append(task.Assignees, models.TaskAssignee{TaskID: 7, UserID: id})
	}
	return task
}

func actionSet(actions ...utils.Action) map[utils.Action]bool {
	set := make(map[utils.Action]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return set
}

// TestDecisionTable enumerates every (owner role, actor role, action)
// combination under the most permissive context: all project flags on, the
// actor assigned to the task, but NOT the project owner. Cells missing
// from the expected set must deny.
func TestDecisionTable(t *testing.T) {
	const ownerID, actorID = 1, 2

	expected := map[string]map[string]map[utils.Action]bool{
		models.RoleAdmin: {
			models.RoleAdmin: actionSet(
				utils.ActionViewProject, utils.ActionEditProject,
				utils.ActionViewMembers, utils.ActionAddMember,
				utils.ActionRemoveMember, utils.ActionRemovePM,
				utils.ActionViewAllTasks, utils.ActionCreateTask,
				utils.ActionEditAnyTask, utils.ActionDeleteTask,
				utils.ActionAssignUsers, utils.ActionChangeStatus,
				utils.ActionChangePriority, utils.ActionDragTask,
				utils.ActionViewComment, utils.ActionAddComment,
			),
			models.RolePM: actionSet(
				utils.ActionViewProject, utils.ActionEditProject,
				utils.ActionViewMembers, utils.ActionAddMember,
				utils.ActionRemoveMember, utils.ActionViewAllTasks,
				utils.ActionCreateTask, utils.ActionEditAnyTask,
				utils.ActionAssignUsers, utils.ActionChangeStatus,
				utils.ActionChangePriority, utils.ActionDragTask,
				utils.ActionViewComment, utils.ActionAddComment,
			),
			models.RoleMember: actionSet(
				utils.ActionViewProject, utils.ActionViewMembers,
				utils.ActionViewAllTasks, utils.ActionViewComment,
				utils.ActionAddComment, utils.ActionChangeStatus,
				utils.ActionDragTask, utils.ActionCreateTask,
			),
		},
		models.RolePM: {
			models.RolePM: actionSet(
				utils.ActionViewProject, utils.ActionEditProject,
				utils.ActionDeleteProject, utils.ActionViewMembers,
				utils.ActionAddMember, utils.ActionRemoveMember,
				utils.ActionViewAllTasks, utils.ActionCreateTask,
				utils.ActionEditAnyTask, utils.ActionDeleteTask,
				utils.ActionAssignUsers, utils.ActionChangeStatus,
				utils.ActionChangePriority, utils.ActionDragTask,
				utils.ActionViewComment, utils.ActionAddComment,
			),
			models.RoleAdmin: actionSet(
				utils.ActionViewProject, utils.ActionViewMembers,
				utils.ActionViewAllTasks, utils.ActionChangeStatus,
				utils.ActionDragTask, utils.ActionViewComment,
				utils.ActionAddComment,
			),
			models.RoleMember: actionSet(
				utils.ActionViewProject, utils.ActionViewMembers,
				utils.ActionViewAllTasks, utils.ActionViewComment,
				utils.ActionAddComment, utils.ActionChangeStatus,
				utils.ActionDragTask, utils.ActionCreateTask,
			),
		},
	}

	allFlags := models.ProjectPermissions{
		MemberCreateIssue:  true,
		MemberChangeStatus: true,
		PMEditWorkflow:     true,
	}

	for ownerRole, byActor := range expected {
		for actorRole, allowed := range byActor {
			project := testProject(t, ownerID, allFlags)
			task := assignedTask(t, actorID)
			actor := utils.Actor{ID: actorID, Role: actorRole}

			for _, action := range allActions {
				got := utils.CanPerform(actor, project, ownerRole, action, task)
				want := allowed[action]
				if got != want {
					t.Errorf("owner=%s actor=%s action=%s: got %v, want %v",
						ownerRole, actorRole, action, got, want)
				}
			}
		}
	}
}

func TestOnlyOwningAdminDeletesProject(t *testing.T) {
	project := testProject(t, 1, models.ProjectPermissions{})

	owner := utils.Actor{ID: 1, Role: models.RoleAdmin}
	if !utils.CanPerform(owner, project, models.RoleAdmin, utils.ActionDeleteProject, nil) {
		t.Fatalf("owning admin should delete its own project")
	}

	other := utils.Actor{ID: 2, Role: models.RoleAdmin}
	if utils.CanPerform(other, project, models.RoleAdmin, utils.ActionDeleteProject, nil) {
		t.Fatalf("non-owning admin must not delete the project")
	}
}

func TestMemberStatusChangeGating(t *testing.T) {
	const memberID = 5
	member := utils.Actor{ID: memberID, Role: models.RoleMember}

	// Assigned, but the project flag is off: denied.
	project := testProject(t, 1, models.ProjectPermissions{MemberChangeStatus: false})
	task := assignedTask(t, memberID)
	if utils.CanPerform(member, project, models.RoleAdmin, utils.ActionChangeStatus, task) {
		t.Fatalf("member must not change status when memberChangeStatus is off")
	}

	// Same setup with the flag on: allowed.
	project = testProject(t, 1, models.ProjectPermissions{MemberChangeStatus: true})
	if !utils.CanPerform(member, project, models.RoleAdmin, utils.ActionChangeStatus, task) {
		t.Fatalf("assigned member should change status when memberChangeStatus is on")
	}

	// Flag on but not assigned: denied, regardless of the flag.
	unassigned := assignedTask(t, 8, 9)
	if utils.CanPerform(member, project, models.RoleAdmin, utils.ActionChangeStatus, unassigned) {
		t.Fatalf("unassigned member must not change status")
	}

	// Task required but absent: denied.
	if utils.CanPerform(member, project, models.RoleAdmin, utils.ActionChangeStatus, nil) {
		t.Fatalf("missing task must deny status change")
	}
}

func TestMemberCreateTaskFlag(t *testing.T) {
	member := utils.Actor{ID: 5, Role: models.RoleMember}

	project := testProject(t, 1, models.ProjectPermissions{MemberCreateIssue: false})
	if utils.CanPerform(member, project, models.RolePM, utils.ActionCreateTask, nil) {
		t.Fatalf("member must not create tasks when memberCreateIssue is off")
	}

	project = testProject(t, 1, models.ProjectPermissions{MemberCreateIssue: true})
	if !utils.CanPerform(member, project, models.RolePM, utils.ActionCreateTask, nil) {
		t.Fatalf("member should create tasks when memberCreateIssue is on")
	}
}

func TestPMEditWorkflowFlag(t *testing.T) {
	pm := utils.Actor{ID: 3, Role: models.RolePM}

	project := testProject(t, 1, models.ProjectPermissions{PMEditWorkflow: false})
	if utils.CanPerform(pm, project, models.RoleAdmin, utils.ActionEditProject, nil) {
		t.Fatalf("pm must not edit an admin-owned project when pmEditWorkflow is off")
	}

	project = testProject(t, 1, models.ProjectPermissions{PMEditWorkflow: true})
	if !utils.CanPerform(pm, project, models.RoleAdmin, utils.ActionEditProject, nil) {
		t.Fatalf("pm should edit an admin-owned project when pmEditWorkflow is on")
	}
}

func TestUnknownRolesAndActionsDeny(t *testing.T) {
	project := testProject(t, 1, models.ProjectPermissions{
		MemberCreateIssue:  true,
		MemberChangeStatus: true,
		PMEditWorkflow:     true,
	})
	task := assignedTask(t, 2)

	// Unknown owner role denies everything.
	actor := utils.Actor{ID: 2, Role: models.RoleAdmin}
	for _, action := range allActions {
		if utils.CanPerform(actor, project, "viewer", action, task) {
			t.Fatalf("unknown owner role must deny %s", action)
		}
	}

	// Unknown actor role denies everything.
	stranger := utils.Actor{ID: 2, Role: "guest"}
	for _, action := range allActions {
		if utils.CanPerform(stranger, project, models.RoleAdmin, action, task) {
			t.Fatalf("unknown actor role must deny %s", action)
		}
	}

	// Unknown action denies.
	if utils.CanPerform(actor, project, models.RoleAdmin, utils.Action("explode"), task) {
		t.Fatalf("unknown action must deny")
	}

	// remove_admin is never granted.
	for _, ownerRole := range []string{models.RoleAdmin, models.RolePM} {
		for _, role := range []string{models.RoleAdmin, models.RolePM, models.RoleMember} {
			a := utils.Actor{ID: 1, Role: role}
			if utils.CanPerform(a, project, ownerRole, utils.ActionRemoveAdmin, task) {
				t.Fatalf("remove_admin must deny for owner=%s actor=%s", ownerRole, role)
			}
		}
	}

	// Nil project denies.
	if utils.CanPerform(actor, nil, models.RoleAdmin, utils.ActionViewProject, nil) {
		t.Fatalf("nil project must deny")
	}
}
