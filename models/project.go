package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectPermissions are per-project overrides of the default capabilities
// of member-role users (and one pm capability) inside this project.
type ProjectPermissions struct {
	MemberCreateIssue  bool `gorm:"default:false" json:"memberCreateIssue"`
	MemberChangeStatus bool `gorm:"default:false" json:"memberChangeStatus"`
	PMEditWorkflow     bool `gorm:"default:false" json:"pmEditWorkflow"`
}

// Project is the unit of collaboration. The creating user is the owner;
// the owner is always a member and can never be removed from the project.
type Project struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	CreatedByID uint   `gorm:"not null;index" json:"created_by_id"`

	Permissions ProjectPermissions `gorm:"embedded;embeddedPrefix:perm_" json:"permissions"`

	// Relations
	CreatedBy User            `json:"created_by,omitempty"`
	Members   []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Tasks     []Task          `gorm:"foreignKey:ProjectID" json:"-"`
}

// ProjectMember joins users to projects. Rows are hard-deleted on removal:
// a soft delete would leave the (project_id, user_id) pair occupying the
// unique index and block re-adding the same user.
type ProjectMember struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_project_member" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_project_member" json:"user_id"`

	User User `json:"user,omitempty"`
}

// MemberIDs returns the member set as ids.
func (p *Project) MemberIDs() []uint {
	ids := make([]uint, 0, len(p.Members))
	for _, m := range p.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// HasMember reports whether userID is in the member set.
func (p *Project) HasMember(userID uint) bool {
	for _, m := range p.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
