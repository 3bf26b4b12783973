package gateway

import (
	"net/http"

	"github.com/saransh1220/panchakarma/internal/gateway/middleware"
	auth_http "github.com/saransh1220/panchakarma/internal/modules/auth/interfaces/http"
	notification_http "github.com/saransh1220/panchakarma/internal/modules/notification/interfaces/http"
)

// RouterConfig holds all the handlers and middleware needed for routing
type RouterConfig struct {
	AuthHandler         *auth_http.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleWare
	NotificationHandler *notification_http.NotificationHandler
	MetricsHandler      http.Handler
	// UploadsHandler serves locally stored files under UploadsPrefix. Nil
	// when files live in object storage.
	UploadsHandler http.Handler
	UploadsPrefix  string
}

// SetupRoutes creates and configures all application routes
func SetupRoutes(config RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := config.AuthMiddleware.RequireAuth

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if config.MetricsHandler != nil {
		mux.Handle("GET /metrics", config.MetricsHandler)
	}

	if config.UploadsHandler != nil && config.UploadsPrefix != "" {
		mux.Handle("GET "+config.UploadsPrefix, config.UploadsHandler)
	}

	// Auth Routes
	ah := config.AuthHandler
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /login/google", ah.GoogleLogin)
	mux.Handle("GET /me", auth(http.HandlerFunc(ah.Me)))
	mux.Handle("POST /me/role", auth(http.HandlerFunc(ah.SwitchRole)))
	mux.Handle("POST /me/avatar", auth(http.HandlerFunc(ah.UploadAvatar)))
	mux.Handle("POST /logout", config.AuthMiddleware.FlexibleAuth(http.HandlerFunc(ah.Logout)))

	// Notification Routes
	nh := config.NotificationHandler
	mux.Handle("GET /notifications", auth(http.HandlerFunc(nh.ListNotifications)))
	mux.Handle("GET /notifications/unread-count", auth(http.HandlerFunc(nh.UnreadCount)))
	mux.Handle("GET /notifications/{id}", auth(http.HandlerFunc(nh.GetNotification)))
	mux.Handle("POST /notifications", auth(http.HandlerFunc(nh.CreateNotification)))
	mux.Handle("PATCH /notifications/{id}/read", auth(http.HandlerFunc(nh.MarkAsRead)))
	mux.Handle("PATCH /notifications/read-all", auth(http.HandlerFunc(nh.MarkAllAsRead)))
	mux.Handle("POST /notifications/arrivals", auth(http.HandlerFunc(nh.SimulateArrival)))
	mux.Handle("GET /notifications/arrivals", auth(http.HandlerFunc(nh.PendingArrivals)))
	mux.Handle("DELETE /notifications/arrivals/{id}", auth(http.HandlerFunc(nh.CancelArrival)))
	mux.Handle("GET /ws", auth(http.HandlerFunc(nh.Subscribe)))

	return mux
}
