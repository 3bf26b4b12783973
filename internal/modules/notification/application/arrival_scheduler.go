package application

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
	"go.uber.org/zap"
)

var (
	ErrSchedulerClosed = errors.New("arrival scheduler is closed")
	ErrArrivalNotFound = errors.New("arrival not found")
)

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc starts f after d. time.AfterFunc is the production value.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Arrival is a handle to one pending simulated notification.
type Arrival struct {
	ID           string
	Notification domain.Notification
	DueAt        time.Time

	scheduler *ArrivalScheduler
	timer     Timer
	done      chan struct{}
}

// Cancel stops the arrival. It reports false when the arrival already fired
// or was cancelled.
func (a *Arrival) Cancel() bool {
	return a.scheduler.Cancel(a.ID) == nil
}

// Done is closed once the arrival has been delivered or cancelled.
func (a *Arrival) Done() <-chan struct{} {
	return a.done
}

type deliverFunc func(ctx context.Context, n domain.Notification) error

// ArrivalScheduler inserts notifications after a delay. Dispose cancels
// everything still pending and waits for in-flight deliveries; nothing is
// delivered after Dispose returns.
type ArrivalScheduler struct {
	mu       sync.Mutex
	pending  map[string]*Arrival
	closed   bool
	inflight sync.WaitGroup

	afterFunc AfterFunc
	now       func() time.Time
	deliver   deliverFunc
	metrics   *Metrics
	logger    *zap.Logger
}

func newArrivalScheduler(deliver deliverFunc, afterFunc AfterFunc, now func() time.Time, metrics *Metrics, logger *zap.Logger) *ArrivalScheduler {
	return &ArrivalScheduler{
		pending:   make(map[string]*Arrival),
		afterFunc: afterFunc,
		now:       now,
		deliver:   deliver,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *ArrivalScheduler) Schedule(n domain.Notification, delay time.Duration) (*Arrival, error) {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSchedulerClosed
	}

	a := &Arrival{
		ID:           uuid.NewString(),
		Notification: n.Clone(),
		DueAt:        s.now().Add(delay),
		scheduler:    s,
		done:         make(chan struct{}),
	}
	s.pending[a.ID] = a
	a.timer = s.afterFunc(delay, func() { s.fire(a.ID) })

	s.metrics.arrival(OutcomeScheduled)
	s.logger.Debug("arrival scheduled", zap.String("arrival_id", a.ID), zap.Duration("delay", delay))
	return a, nil
}

func (s *ArrivalScheduler) fire(id string) {
	s.mu.Lock()
	a, ok := s.pending[id]
	if !ok || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()
	defer close(a.done)

	if err := s.deliver(context.Background(), a.Notification); err != nil {
		s.metrics.arrival(OutcomeFailed)
		s.logger.Error("arrival delivery failed", zap.String("arrival_id", id), zap.Error(err))
		return
	}
	s.metrics.arrival(OutcomeDelivered)
}

// Cancel stops a pending arrival by id.
func (s *ArrivalScheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.pending[id]
	if !ok {
		return ErrArrivalNotFound
	}
	s.stop(a)
	return nil
}

// stop must be called with mu held.
func (s *ArrivalScheduler) stop(a *Arrival) {
	delete(s.pending, a.ID)
	if a.timer != nil {
		a.timer.Stop()
	}
	close(a.done)
	s.metrics.arrival(OutcomeCancelled)
}

// Pending returns the outstanding arrivals ordered by due time.
func (s *ArrivalScheduler) Pending() []Arrival {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Arrival, 0, len(s.pending))
	for _, a := range s.pending {
		out = append(out, Arrival{ID: a.ID, Notification: a.Notification.Clone(), DueAt: a.DueAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out
}

// Dispose is idempotent.
func (s *ArrivalScheduler) Dispose() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, a := range s.pending {
		s.stop(a)
	}
	s.mu.Unlock()

	s.inflight.Wait()
}
