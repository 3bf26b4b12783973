package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type NotificationType string

const (
	NotificationTypeReminder NotificationType = "reminder"
	NotificationTypeAlert    NotificationType = "alert"
	NotificationTypeInfo     NotificationType = "info"
	NotificationTypeSuccess  NotificationType = "success"
)

// ParseType normalizes a free-form type string. The legacy "warning" value
// maps to alert; anything else outside the closed set is rejected.
func ParseType(s string) (NotificationType, error) {
	switch v := NotificationType(strings.ToLower(strings.TrimSpace(s))); v {
	case NotificationTypeReminder, NotificationTypeAlert, NotificationTypeInfo, NotificationTypeSuccess:
		return v, nil
	case "warning":
		return NotificationTypeAlert, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

type Category string

const (
	CategoryAppointment Category = "appointment"
	CategoryTherapy     Category = "therapy"
	CategoryMedication  Category = "medication"
	CategorySystem      Category = "system"
)

// ParseCategory normalizes a category string. Empty input means system.
func ParseCategory(s string) (Category, error) {
	v := Category(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "":
		return CategorySystem, nil
	case CategoryAppointment, CategoryTherapy, CategoryMedication, CategorySystem:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

type Channel string

const (
	ChannelInApp Channel = "in-app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

func ParseChannel(s string) (Channel, error) {
	switch v := Channel(strings.ToLower(strings.TrimSpace(s))); v {
	case ChannelInApp, ChannelEmail, ChannelSMS:
		return v, nil
	case "inapp", "in_app":
		return ChannelInApp, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidChannel, s)
	}
}

// Channels is stored as a comma separated list in SQL backends.
type Channels []Channel

func ParseChannels(values []string) (Channels, error) {
	if len(values) == 0 {
		return Channels{ChannelInApp}, nil
	}
	out := make(Channels, 0, len(values))
	seen := make(map[Channel]bool, len(values))
	for _, v := range values {
		c, err := ParseChannel(v)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

func (c Channels) Value() (driver.Value, error) {
	parts := make([]string, len(c))
	for i, ch := range c {
		parts[i] = string(ch)
	}
	return strings.Join(parts, ","), nil
}

func (c *Channels) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("channels: unsupported scan type %T", src)
	}
	if raw == "" {
		*c = Channels{}
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make(Channels, 0, len(parts))
	for _, p := range parts {
		out = append(out, Channel(p))
	}
	*c = out
	return nil
}
