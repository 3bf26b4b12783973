package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/saransh1220/panchakarma/internal/gateway/middleware"
	"github.com/saransh1220/panchakarma/internal/modules/notification/application"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
	"github.com/saransh1220/panchakarma/internal/modules/notification/infrastructure/websocket"
	"github.com/saransh1220/panchakarma/internal/shared/utils"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// maxDelayMS caps simulated arrival delays at 30 days.
const maxDelayMS = int64(30 * 24 * time.Hour / time.Millisecond)

// NotificationService is the subset of the application service the
// handler drives.
type NotificationService interface {
	List(ctx context.Context, q domain.Query) ([]domain.Notification, error)
	Get(ctx context.Context, id string) (*domain.Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	Create(ctx context.Context, in application.CreateInput) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAllAsRead(ctx context.Context) (int, error)
	SimulateArrival(in application.CreateInput, delay time.Duration) (*application.Arrival, error)
	CancelArrival(id string) error
	PendingArrivals() []application.Arrival
}

type NotificationHandler struct {
	service      NotificationService
	hub          *websocket.Hub
	logger       *zap.Logger
	arrivalDelay time.Duration
}

// NewNotificationHandler builds the handler. arrivalDelay is used for
// simulated arrivals that do not name their own delay.
func NewNotificationHandler(service NotificationService, hub *websocket.Hub, logger *zap.Logger, arrivalDelay time.Duration) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{
		service:      service,
		hub:          hub,
		logger:       logger.Named("notification_http"),
		arrivalDelay: arrivalDelay,
	}
}

func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	websocket.ServeWs(h.hub, w, r, user.ID)
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid query", err)
		return
	}

	items, err := h.service.List(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	count, err := h.service.UnreadCount(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, ListResponse{Data: toResponses(items), UnreadCount: count})
}

func (h *NotificationHandler) GetNotification(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, toResponse(*n))
}

func (h *NotificationHandler) CreateNotification(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	n, err := h.service.Create(r.Context(), req.input())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, toResponse(*n))
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.service.MarkAsRead(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.MarkAllAsRead(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, UnreadCountResponse{Count: count})
}

// SimulateArrival schedules a notification to land later. An empty body
// schedules the demo message.
func (h *NotificationHandler) SimulateArrival(w http.ResponseWriter, r *http.Request) {
	var req ArrivalRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	in := req.input()
	if req.Title == "" && req.Message == "" && req.Type == "" {
		demo := application.DemoArrival()
		demo.ID = in.ID
		demo.UserID = in.UserID
		in = demo
	}

	delay := h.arrivalDelay
	if req.DelayMS != nil {
		if *req.DelayMS < 0 {
			utils.WriteError(w, http.StatusBadRequest, "delay_ms must not be negative", nil)
			return
		}
		if *req.DelayMS > maxDelayMS {
			utils.WriteError(w, http.StatusBadRequest, "delay_ms is too large", nil)
			return
		}
		delay = time.Duration(*req.DelayMS) * time.Millisecond
	}

	a, err := h.service.SimulateArrival(in, delay)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusAccepted, toArrivalResponse(*a))
}

func (h *NotificationHandler) PendingArrivals(w http.ResponseWriter, r *http.Request) {
	pending := h.service.PendingArrivals()
	out := make([]ArrivalResponse, len(pending))
	for i, a := range pending {
		out[i] = toArrivalResponse(a)
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *NotificationHandler) CancelArrival(w http.ResponseWriter, r *http.Request) {
	if err := h.service.CancelArrival(r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseQuery(r *http.Request) (domain.Query, error) {
	v := r.URL.Query()

	filter, err := domain.ParseFilter(v.Get("filter"))
	if err != nil {
		return domain.Query{}, err
	}
	q := domain.Query{Filter: filter, Search: v.Get("q")}

	if c := v.Get("category"); c != "" {
		if q.Category, err = domain.ParseCategory(c); err != nil {
			return domain.Query{}, err
		}
	}
	if q.Limit, err = nonNegative(v.Get("limit"), "limit"); err != nil {
		return domain.Query{}, err
	}
	if q.Offset, err = nonNegative(v.Get("offset"), "offset"); err != nil {
		return domain.Query{}, err
	}
	return q, nil
}

func nonNegative(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidType),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidChannel),
		errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrMissingTitle),
		errors.Is(err, domain.ErrMissingID):
		utils.WriteError(w, http.StatusBadRequest, "invalid notification", err)
	case errors.Is(err, domain.ErrDuplicateID):
		utils.WriteError(w, http.StatusConflict, "notification already exists", err)
	case errors.Is(err, domain.ErrNotificationNotFound):
		utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
	case errors.Is(err, application.ErrArrivalNotFound):
		utils.WriteError(w, http.StatusNotFound, "arrival not found", nil)
	case errors.Is(err, application.ErrSchedulerClosed):
		utils.WriteError(w, http.StatusServiceUnavailable, "notification service is shutting down", nil)
	default:
		h.logger.Error("notification request failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
