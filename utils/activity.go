package utils

import (
	"strings"

	"gorm.io/gorm"

	"taskhive/models"
)

// LogActivity appends one immutable audit entry for a successful mutation.
// Best-effort: a blank action is dropped and a storage failure is logged;
// neither ever fails the parent mutation.
func LogActivity(db *gorm.DB, userID uint, action string, projectID *uint) {
	if strings.TrimSpace(action) == "" {
		LogEvent("activity_skipped", map[string]interface{}{
			"user_id": userID,
			"reason":  "empty action",
		})
		return
	}

	entry := models.Activity{
		UserID:    userID,
		Action:    action,
		ProjectID: projectID,
	}
	if err := db.Create(&entry).Error; err != nil {
		LogError("activity_log", err, map[string]interface{}{
			"user_id": userID,
		})
	}
}
