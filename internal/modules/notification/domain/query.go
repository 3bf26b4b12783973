package domain

import (
	"fmt"
	"strings"
)

// Filter selects which notifications a list view shows.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterUnread Filter = "unread"
)

// ParseFilter accepts "all", "unread" or any notification type.
func ParseFilter(s string) (Filter, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch Filter(v) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterUnread:
		return FilterUnread, nil
	}
	t, err := ParseType(v)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
	return Filter(t), nil
}

// Query describes a derived view over the notification list. Zero values
// mean "no restriction"; a zero Limit means unbounded.
type Query struct {
	Filter   Filter
	Search   string
	Category Category
	Limit    int
	Offset   int
}

// Matches applies filter, category and search to a single record.
func (q Query) Matches(n Notification) bool {
	switch q.Filter {
	case "", FilterAll:
	case FilterUnread:
		if n.Read {
			return false
		}
	default:
		if string(n.Type) != string(q.Filter) {
			return false
		}
	}
	if q.Category != "" && n.Category != q.Category {
		return false
	}
	return MatchesSearch(n, q.Search)
}

// MatchesSearch is a case-insensitive substring match on title or message.
func MatchesSearch(n Notification, term string) bool {
	term = strings.ToLower(term)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(n.Title), term) ||
		strings.Contains(strings.ToLower(n.Message), term)
}

// Page applies Offset and Limit to an already filtered slice.
func (q Query) Page(items []Notification) []Notification {
	if q.Offset > 0 {
		if q.Offset >= len(items) {
			return []Notification{}
		}
		items = items[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(items) {
		items = items[:q.Limit]
	}
	return items
}
