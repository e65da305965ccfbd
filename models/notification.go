package models

import "gorm.io/gorm"

// Notification types
const (
	NotificationTypeProject    = "project"
	NotificationTypeTask       = "task"
	NotificationTypeStatus     = "status"
	NotificationTypeComment    = "comment"
	NotificationTypeInvitation = "user_invitation"
)

// Inbox tabs a notification is grouped under
const (
	TabProject    = "Project"
	TabTasks      = "Tasks"
	TabComments   = "Comments"
	TabInvitation = "Project Invitation"
)

// Notification is a persisted inbox entry for one recipient. Created only
// by the dispatcher; only the read flag is ever updated afterwards.
type Notification struct {
	gorm.Model
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	Message string `gorm:"not null" json:"message"`
	Type    string `gorm:"default:'project'" json:"type"`
	Tab     string `gorm:"default:'Project'" json:"tab"`
	Read    bool   `gorm:"default:false;index" json:"read"`

	User User `json:"-"`
}

// Activity is an append-only audit entry for a successful mutation.
type Activity struct {
	gorm.Model
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Action    string `gorm:"not null" json:"action"`
	ProjectID *uint  `gorm:"index" json:"project_id,omitempty"`

	User    User     `json:"user,omitempty"`
	Project *Project `json:"project,omitempty"`
}
