package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"taskhive/models"
)

// NotificationCleanupWorker prunes read notifications past the retention
// window so the inbox table does not grow without bound. Unread
// notifications are never touched.
type NotificationCleanupWorker struct {
	DB        *gorm.DB
	Logger    *log.Logger
	Retention time.Duration
	Interval  time.Duration
}

func NewNotificationCleanupWorker(db *gorm.DB, logger *log.Logger, retentionDays int) *NotificationCleanupWorker {
	return &NotificationCleanupWorker{
		DB:        db,
		Logger:    logger,
		Retention: time.Duration(retentionDays) * 24 * time.Hour,
		Interval:  1 * time.Hour,
	}
}

func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	w.Logger.Printf("Notification cleanup worker started (retention %s)", w.Retention)

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	// Run once at startup, then on every tick
	w.runOnce()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Println("Notification cleanup worker stopped")
			return
		case <-ticker.C:
			w.runOnce()
		}
	}
}

func (w *NotificationCleanupWorker) runOnce() {
	cutoff := time.Now().Add(-w.Retention)

	result := w.DB.Where("read = true AND created_at < ?", cutoff).
		Delete(&models.Notification{})
	if result.Error != nil {
		w.Logger.Printf("Failed to prune notifications: %v", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		w.Logger.Printf("Pruned %d read notifications older than %s", result.RowsAffected, cutoff.Format(time.RFC3339))
	}
}
