package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses. Transitions are unordered (any status to any status);
// who may change them is gated by the permission engine, not a state machine.
const (
	StatusTodo       = "todo"
	StatusInProgress = "inprogress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusReview || s == StatusDone
}

// ValidPriority reports whether s is a known task priority.
func ValidPriority(s string) bool {
	return s == PriorityLow || s == PriorityMedium || s == PriorityHigh
}

// Task belongs to a project and carries a multi-user assignee set.
// Invariant: the creator is always in the assignee set.
type Task struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Priority    string `gorm:"default:'medium'" json:"priority"`
	Status      string `gorm:"default:'todo';index" json:"status"`
	ProjectID   uint   `gorm:"not null;index" json:"project_id"`
	CreatedByID uint   `gorm:"not null;index" json:"created_by_id"`

	// Relations
	Project   Project        `json:"-"`
	CreatedBy User           `json:"created_by,omitempty"`
	Assignees []TaskAssignee `gorm:"foreignKey:TaskID" json:"assignees,omitempty"`
}

// TaskAssignee joins users to tasks. Rows are hard-deleted on removal so
// the (task_id, user_id) pair can be recreated when a user is re-assigned.
type TaskAssignee struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	TaskID    uint      `gorm:"not null;uniqueIndex:idx_task_assignee" json:"task_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_task_assignee" json:"user_id"`

	User User `json:"user,omitempty"`
}

// AssigneeIDs returns the assignee set as ids.
func (t *Task) AssigneeIDs() []uint {
	ids := make([]uint, 0, len(t.Assignees))
	for _, a := range t.Assignees {
		ids = append(ids, a.UserID)
	}
	return ids
}

// HasAssignee reports whether userID is in the assignee set.
func (t *Task) HasAssignee(userID uint) bool {
	for _, a := range t.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}

// Comment on a task. Immutable once created except deletion.
type Comment struct {
	gorm.Model
	TaskID uint   `gorm:"not null;index" json:"task_id"`
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Text   string `gorm:"not null" json:"text"`

	User User `json:"user,omitempty"`
}
