package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/saransh1220/panchakarma/internal/modules/notification/domain"
	"go.uber.org/zap"
)

type UnicastMessage struct {
	UserID  uuid.UUID
	Message []byte
}

// Hub maintains the set of active clients and fans notification events out
// to them. Only the Run goroutine touches the client set.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	unicast    chan UnicastMessage
	register   chan *Client
	unregister chan *Client

	connected atomic.Int64
	logger    *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		broadcast:  make(chan []byte),
		unicast:    make(chan UnicastMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		clients: make(map[*Client]bool),
		logger:  logger.Named("ws_hub"),
		stop:    make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int64(len(h.clients)))
			h.logger.Debug("client registered",
				zap.String("remote", client.remoteAddr()),
				zap.Stringer("user_id", client.userID),
			)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("client unregistered",
					zap.String("remote", client.remoteAddr()),
					zap.Stringer("user_id", client.userID),
				)
			}
		case message := <-h.broadcast:
			h.logger.Debug("broadcasting event", zap.Int("clients", len(h.clients)))
			for client := range h.clients {
				h.deliver(client, message)
			}
		case msg := <-h.unicast:
			for client := range h.clients {
				if client.userID == msg.UserID {
					h.deliver(client, msg.Message)
				}
			}
		case <-h.stop:
			h.logger.Info("stopping hub", zap.Int("clients", len(h.clients)))
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// deliver queues a message, dropping clients whose buffer is full.
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.send <- message:
	default:
		h.logger.Warn("dropping slow client", zap.Stringer("user_id", client.userID))
		h.drop(client)
	}
}

func (h *Hub) drop(client *Client) {
	close(client.send)
	delete(h.clients, client)
	h.connected.Store(int64(len(h.clients)))
}

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// NewConnectionsGauge exports ClientCount as notification_ws_connections.
func NewConnectionsGauge(reg prometheus.Registerer, h *Hub) prometheus.GaugeFunc {
	return promauto.With(reg).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "notification_ws_connections",
		Help: "Open notification WebSocket connections",
	}, func() float64 {
		return float64(h.ClientCount())
	})
}

// Publish encodes the event and sends it to the recipient's connections,
// or to every connection when the notification has no recipient.
func (h *Hub) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if event.Notification != nil && !event.Notification.Broadcast() {
		select {
		case h.unicast <- UnicastMessage{UserID: event.Notification.UserID, Message: payload}:
		case <-h.stop:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	select {
	case h.broadcast <- payload:
	case <-h.stop:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
