package utils

import "taskhive/models"

// Action tags used by the mutation handlers when consulting the permission
// engine. This is a closed set shared between handlers and the engine:
// unknown actions are denied.
type Action string

const (
	ActionViewProject    Action = "view_project"
	ActionEditProject    Action = "edit_project"
	ActionDeleteProject  Action = "delete_project"
	ActionViewMembers    Action = "view_members"
	ActionAddMember      Action = "add_member"
	ActionRemoveMember   Action = "remove_member"
	ActionRemovePM       Action = "remove_pm"
	ActionRemoveAdmin    Action = "remove_admin"
	ActionViewAllTasks   Action = "view_all_tasks"
	ActionCreateTask     Action = "create_task"
	ActionEditAnyTask    Action = "edit_any_task"
	ActionDeleteTask     Action = "delete_task"
	ActionAssignUsers    Action = "assign_users"
	ActionChangeStatus   Action = "change_status"
	ActionChangePriority Action = "change_priority"
	ActionDragTask       Action = "drag_task"
	ActionViewComment    Action = "view_comment"
	ActionAddComment     Action = "add_comment"
)

// Actor is the authenticated identity performing an action. Callers get it
// from the auth middleware; the engine never re-validates credentials.
type Actor struct {
	ID   uint
	Role string
}

// grant is one cell of the decision table.
type grant uint8

const (
	deny grant = iota
	allow
	// allowed only when the actor is the project owner
	ownerOnly
	// members: requires the task present, the actor in its assignee set,
	// and the project's memberChangeStatus flag
	assignedMember
	// members: requires the project's memberCreateIssue flag
	memberCreate
	// pms under a foreign owner: requires the project's pmEditWorkflow flag
	pmWorkflow
)

type policyKey struct {
	ownerRole string
	actorRole string
	action    Action
}

// policy maps (project owner role, actor role, action) to a grant.
// The owner's role outranks the actor's global role: an admin who owns a
// project keeps full control, while admins on pm-owned projects are
// curtailed. Absent keys mean deny.
var policy = make(map[policyKey]grant)

func grantActions(ownerRole, actorRole string, g grant, actions ...Action) {
	for _, a := range actions {
		policy[policyKey{ownerRole, actorRole, a}] = g
	}
}

func init() {
	// Owner is an admin: admins have full rights, but only the owning
	// admin may delete the project and nobody removes the owning admin.
	grantActions(models.RoleAdmin, models.RoleAdmin, allow,
		ActionViewProject, ActionEditProject, ActionViewMembers,
		ActionAddMember, ActionRemoveMember, ActionRemovePM,
		ActionViewAllTasks, ActionCreateTask, ActionEditAnyTask,
		ActionDeleteTask, ActionAssignUsers, ActionChangeStatus,
		ActionChangePriority, ActionDragTask, ActionViewComment,
		ActionAddComment)
	grantActions(models.RoleAdmin, models.RoleAdmin, ownerOnly,
		ActionDeleteProject)

	// PMs in admin-owned projects operate broadly but cannot delete the
	// project or tasks; editing the project itself is flag-gated.
	grantActions(models.RoleAdmin, models.RolePM, allow,
		ActionViewProject, ActionViewMembers, ActionAddMember,
		ActionRemoveMember, ActionViewAllTasks, ActionCreateTask,
		ActionEditAnyTask, ActionAssignUsers, ActionChangeStatus,
		ActionChangePriority, ActionDragTask, ActionViewComment,
		ActionAddComment)
	grantActions(models.RoleAdmin, models.RolePM, pmWorkflow,
		ActionEditProject)

	grantActions(models.RoleAdmin, models.RoleMember, allow,
		ActionViewProject, ActionViewMembers, ActionViewAllTasks,
		ActionViewComment, ActionAddComment)
	grantActions(models.RoleAdmin, models.RoleMember, assignedMember,
		ActionChangeStatus, ActionDragTask)
	grantActions(models.RoleAdmin, models.RoleMember, memberCreate,
		ActionCreateTask)

	// Owner is a pm: pms get admin-like rights within the project.
	// Removing the owner is blocked in the member-removal handler, and
	// remove_admin is never granted.
	grantActions(models.RolePM, models.RolePM, allow,
		ActionViewProject, ActionEditProject, ActionDeleteProject,
		ActionViewMembers, ActionAddMember, ActionRemoveMember,
		ActionViewAllTasks, ActionCreateTask, ActionEditAnyTask,
		ActionDeleteTask, ActionAssignUsers, ActionChangeStatus,
		ActionChangePriority, ActionDragTask, ActionViewComment,
		ActionAddComment)

	// Admins on pm-owned projects are reduced to read rights, status
	// moves and comments.
	grantActions(models.RolePM, models.RoleAdmin, allow,
		ActionViewProject, ActionViewMembers, ActionViewAllTasks,
		ActionChangeStatus, ActionDragTask, ActionViewComment,
		ActionAddComment)

	grantActions(models.RolePM, models.RoleMember, allow,
		ActionViewProject, ActionViewMembers, ActionViewAllTasks,
		ActionViewComment, ActionAddComment)
	grantActions(models.RolePM, models.RoleMember, assignedMember,
		ActionChangeStatus, ActionDragTask)
	grantActions(models.RolePM, models.RoleMember, memberCreate,
		ActionCreateTask)
}

// CanPerform decides whether actor may perform action within project.
// ownerRole is the role of the project's owner, resolved by the caller;
// task is required for the assignment-gated member actions and may be nil
// otherwise. Pure: no storage access, no side effects, never panics on
// well-formed input.
func CanPerform(actor Actor, project *models.Project, ownerRole string, action Action, task *models.Task) bool {
	if project == nil {
		return false
	}

	g, ok := policy[policyKey{ownerRole, actor.Role, action}]
	if !ok {
		return false
	}

	switch g {
	case allow:
		return true
	case ownerOnly:
		return project.CreatedByID == actor.ID
	case assignedMember:
		if task == nil {
			return false
		}
		return project.Permissions.MemberChangeStatus && task.HasAssignee(actor.ID)
	case memberCreate:
		return project.Permissions.MemberCreateIssue
	case pmWorkflow:
		return project.Permissions.PMEditWorkflow
	default:
		return false
	}
}
