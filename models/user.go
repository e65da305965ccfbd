package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Roles a user can hold. The role of a project's owner sets the ceiling
// for what collaborators may do inside that project.
const (
	RoleAdmin  = "admin"
	RolePM     = "pm"
	RoleMember = "member"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RolePM || s == RoleMember
}

// User represents a user account in the system
type User struct {
	gorm.Model

	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         string `gorm:"default:'member';index" json:"role"` // admin, pm, member

	// Preferences
	Theme    string `gorm:"default:'light'" json:"theme"`
	Language string `gorm:"default:'en'" json:"language"`

	// Notification preferences
	NotifyTaskAssigned   bool `gorm:"default:true" json:"notify_task_assigned"`
	NotifyStatusChanged  bool `gorm:"default:true" json:"notify_status_changed"`
	NotifyNewComment     bool `gorm:"default:true" json:"notify_new_comment"`
	NotifyProjectUpdates bool `gorm:"default:true" json:"notify_project_updates"`

	// Account status
	IsActive     bool `gorm:"default:true" json:"is_active"`
	TokenVersion int  `gorm:"default:0" json:"-"`
}

// DeletedEmail returns the tombstone address written when the account is
// removed. Accounts soft-delete, and the email column carries a unique
// index; rewriting it frees the original address for re-registration.
func (u *User) DeletedEmail() string {
	return fmt.Sprintf("%s.deleted.%d", u.Email, u.ID)
}

// Summary is the display-friendly shape embedded in resolved resources.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserSummary carries the fields exposed when a user reference is resolved
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// RefreshToken stores issued refresh tokens so they can be revoked
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`

	User User `json:"-"`
}
