// Package memory holds the process-lifetime notification store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
)

// Option configures a Store.
type Option func(*Store)

// WithStrictMode makes MarkAsRead report unknown ids instead of ignoring them.
func WithStrictMode(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

// Store keeps notifications ordered newest first. All operations hold a
// single mutex, so each call is one serialized transaction.
type Store struct {
	mu     sync.RWMutex
	items  []domain.Notification
	index  map[string]int
	strict bool
}

func NewStore(opts ...Option) *Store {
	s := &Store{index: make(map[string]int)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert adds a record and restores newest-first order. Records with equal
// timestamps keep their insertion order.
func (s *Store) Insert(ctx context.Context, n *domain.Notification) error {
	if n.ID == "" {
		return domain.ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[n.ID]; ok {
		return domain.ErrDuplicateID
	}

	s.items = append(s.items, n.Clone())
	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].CreatedAt.After(s.items[j].CreatedAt)
	})
	s.reindex()
	return nil
}

func (s *Store) reindex() {
	for i, n := range s.items {
		s.index[n.ID] = i
	}
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	n := s.items[i].Clone()
	return &n, nil
}

// List returns a filtered copy; callers may mutate the result freely.
func (s *Store) List(ctx context.Context, q domain.Query) ([]domain.Notification, error) {
	return s.Filter(ctx, func(n domain.Notification) bool {
		return q.Matches(n)
	}, q)
}

// Filter returns records accepted by pred, paged by q.Offset and q.Limit.
func (s *Store) Filter(ctx context.Context, pred func(domain.Notification) bool, q domain.Query) ([]domain.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Notification, 0, len(s.items))
	for _, n := range s.items {
		if pred(n) {
			out = append(out, n.Clone())
		}
	}
	return q.Page(out), nil
}

// Search is List restricted to a free-text term.
func (s *Store) Search(ctx context.Context, term string) ([]domain.Notification, error) {
	return s.List(ctx, domain.Query{Search: term})
}

func (s *Store) UnreadCount(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, n := range s.items {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkAsRead is a no-op for ids that are unknown or already read, unless
// the store runs in strict mode.
func (s *Store) MarkAsRead(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		if s.strict {
			return false, domain.ErrNotificationNotFound
		}
		return false, nil
	}
	if s.items[i].Read {
		return false, nil
	}
	s.items[i].Read = true
	return true, nil
}

// MarkAllAsRead returns how many records changed state.
func (s *Store) MarkAllAsRead(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.items {
		if !s.items[i].Read {
			s.items[i].Read = true
			changed++
		}
	}
	return changed, nil
}

func (s *Store) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}
