package domain

import "context"

type NotificationRepository interface {
	Insert(ctx context.Context, notification *Notification) error
	Get(ctx context.Context, id string) (*Notification, error)
	List(ctx context.Context, q Query) ([]Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	// MarkAsRead reports whether the record went from unread to read.
	MarkAsRead(ctx context.Context, id string) (bool, error)
	MarkAllAsRead(ctx context.Context) (int, error)
	Len(ctx context.Context) (int, error)
}
