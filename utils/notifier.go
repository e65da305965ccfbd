package utils

import (
	"gorm.io/gorm"

	"taskhive/models"
)

// Pusher delivers a real-time event to one recipient's channel.
type Pusher interface {
	Push(userID uint, payload PushPayload)
}

// Notifier persists notifications and fans the matching real-time events
// out through the injected Pusher. Everything here is best-effort from the
// caller's perspective: failures are logged and swallowed, and a push is
// only attempted for rows that were persisted first — a push with no
// persisted record would let a client refetch race the write.
type Notifier struct {
	db  *gorm.DB
	hub Pusher
}

func NewNotifier(db *gorm.DB, hub Pusher) *Notifier {
	return &Notifier{db: db, hub: hub}
}

// Send creates one notification row per recipient, then pushes the event
// to each recipient's channel. Zero recipients means no writes and no push.
func (n *Notifier) Send(userIDs []uint, message, ntype, tab string) {
	if len(userIDs) == 0 {
		return
	}

	rows := make([]models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.Notification{
			UserID:  id,
			Message: message,
			Type:    ntype,
			Tab:     tab,
			Read:    false,
		})
	}
	if err := n.db.Create(&rows).Error; err != nil {
		LogError("notification_persist", err, map[string]interface{}{
			"recipients": len(userIDs),
			"type":       ntype,
		})
		return
	}

	if n.hub == nil {
		return
	}
	for _, id := range userIDs {
		n.hub.Push(id, PushPayload{Message: message, Type: ntype, Tab: tab})
	}
}

// SendOne notifies a single recipient.
func (n *Notifier) SendOne(userID uint, message, ntype, tab string) {
	n.Send([]uint{userID}, message, ntype, tab)
}

// Ack pushes an event to userID's channel without persisting an inbox row.
// Used for the commenter's own channel so their UI refreshes without a
// duplicate "new comment" alert.
func (n *Notifier) Ack(userID uint, message, ntype, tab string) {
	if n.hub == nil {
		return
	}
	n.hub.Push(userID, PushPayload{Message: message, Type: ntype, Tab: tab})
}

// DiffIDs computes the membership delta between two id snapshots: which
// ids were added and which were removed. Unaffected ids appear in neither,
// so unchanged members never get notified.
func DiffIDs(oldIDs, newIDs []uint) (added, removed []uint) {
	oldSet := make(map[uint]struct{}, len(oldIDs))
	for _, id := range oldIDs {
		oldSet[id] = struct{}{}
	}
	newSet := make(map[uint]struct{}, len(newIDs))
	for _, id := range newIDs {
		newSet[id] = struct{}{}
	}

	for _, id := range newIDs {
		if _, ok := oldSet[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range oldIDs {
		if _, ok := newSet[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// WithoutID returns ids minus every occurrence of exclude.
func WithoutID(ids []uint, exclude uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}

// EnsureID returns ids with required appended when missing. Used to keep
// the task creator in the assignee set and the owner in the member set.
func EnsureID(ids []uint, required uint) []uint {
	for _, id := range ids {
		if id == required {
			return ids
		}
	}
	return append(ids, required)
}
