package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/panchakarma/internal/modules/notification/application"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
)

type NotificationResponse struct {
	domain.Notification
	DisplayDate string `json:"display_date"`
}

func toResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{Notification: n, DisplayDate: n.DisplayDate()}
}

func toResponses(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, len(items))
	for i, n := range items {
		out[i] = toResponse(n)
	}
	return out
}

type ListResponse struct {
	Data        []NotificationResponse `json:"data"`
	UnreadCount int                    `json:"unread_count"`
}

type UnreadCountResponse struct {
	Count int `json:"count"`
}

type CreateRequest struct {
	ID           string     `json:"id,omitempty"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	Type         string     `json:"type"`
	Category     string     `json:"category,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
	Channels     []string   `json:"channels,omitempty"`
}

func (r CreateRequest) input() application.CreateInput {
	in := application.CreateInput{
		ID:           r.ID,
		Title:        r.Title,
		Message:      r.Message,
		Type:         r.Type,
		Category:     r.Category,
		ScheduledFor: r.ScheduledFor,
		Channels:     r.Channels,
	}
	if r.UserID != nil {
		in.UserID = *r.UserID
	}
	if r.CreatedAt != nil {
		in.CreatedAt = *r.CreatedAt
	}
	return in
}

// ArrivalRequest schedules a simulated push. A nil DelayMS uses the
// handler's default delay.
type ArrivalRequest struct {
	CreateRequest
	DelayMS *int64 `json:"delay_ms,omitempty"`
}

type ArrivalResponse struct {
	ID           string              `json:"id"`
	DueAt        time.Time           `json:"due_at"`
	Notification PendingNotification `json:"notification"`
}

// PendingNotification is a notification that has not been inserted yet.
// It is stamped with its creation time on delivery, and gets an ID then
// unless the caller set one.
type PendingNotification struct {
	ID           string                  `json:"id,omitempty"`
	UserID       *uuid.UUID              `json:"user_id,omitempty"`
	Title        string                  `json:"title"`
	Message      string                  `json:"message"`
	Type         domain.NotificationType `json:"type"`
	Category     domain.Category         `json:"category"`
	ScheduledFor *time.Time              `json:"scheduled_for,omitempty"`
	Channels     domain.Channels         `json:"channels"`
}

func toArrivalResponse(a application.Arrival) ArrivalResponse {
	n := a.Notification
	p := PendingNotification{
		ID:           n.ID,
		Title:        n.Title,
		Message:      n.Message,
		Type:         n.Type,
		Category:     n.Category,
		ScheduledFor: n.ScheduledFor,
		Channels:     n.Channels,
	}
	if n.UserID != uuid.Nil {
		p.UserID = &n.UserID
	}
	return ArrivalResponse{ID: a.ID, DueAt: a.DueAt, Notification: p}
}
