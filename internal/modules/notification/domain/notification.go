package domain

import (
	"time"

	"github.com/google/uuid"
)

// DisplayLayout is the short timestamp format shown next to a notification.
const DisplayLayout = "Jan 2, 3:04 PM"

type Notification struct {
	ID           string           `json:"id" db:"id"`
	UserID       uuid.UUID        `json:"user_id" db:"user_id"`
	Title        string           `json:"title" db:"title"`
	Message      string           `json:"message" db:"message"`
	Type         NotificationType `json:"type" db:"type"`
	Category     Category         `json:"category" db:"category"`
	Read         bool             `json:"read" db:"is_read"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	ScheduledFor *time.Time       `json:"scheduled_for,omitempty" db:"scheduled_for"`
	Channels     Channels         `json:"channels" db:"channels"`
}

// DisplayDate formats CreatedAt for list rendering.
func (n Notification) DisplayDate() string {
	return n.CreatedAt.Format(DisplayLayout)
}

// Clone returns a copy that shares no mutable state with n.
func (n Notification) Clone() Notification {
	out := n
	if n.ScheduledFor != nil {
		t := *n.ScheduledFor
		out.ScheduledFor = &t
	}
	if n.Channels != nil {
		out.Channels = append(Channels(nil), n.Channels...)
	}
	return out
}

// Validate checks the closed enumerations and required fields.
func (n Notification) Validate() error {
	if n.ID == "" {
		return ErrMissingID
	}
	if _, err := ParseType(string(n.Type)); err != nil {
		return err
	}
	if _, err := ParseCategory(string(n.Category)); err != nil {
		return err
	}
	for _, c := range n.Channels {
		if _, err := ParseChannel(string(c)); err != nil {
			return err
		}
	}
	return nil
}

// Broadcast reports whether the notification has no specific recipient.
func (n Notification) Broadcast() bool {
	return n.UserID == uuid.Nil
}
