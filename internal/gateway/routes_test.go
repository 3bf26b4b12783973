package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saransh1220/panchakarma/internal/gateway/middleware"
	"github.com/saransh1220/panchakarma/internal/modules/auth"
	"github.com/saransh1220/panchakarma/internal/modules/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	handler http.Handler
	token   string
}

func newTestApp(t *testing.T) testApp {
	t.Helper()
	reg := prometheus.NewRegistry()

	authModule := auth.NewModule("test-secret", time.Hour, nil, "", nil)
	notifModule := notification.NewModule(notification.Config{Registerer: reg, ArrivalDelay: time.Hour})
	t.Cleanup(notifModule.Shutdown)

	_, err := notifModule.SeedDemo(context.Background())
	require.NoError(t, err)

	uploads := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(uploads, "avatars"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "avatars", "a.txt"), []byte("avatar"), 0o644))

	mux := SetupRoutes(RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      authModule.Middleware(),
		NotificationHandler: notifModule.HTTPHandler(),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		UploadsHandler:      http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads))),
		UploadsPrefix:       "/uploads/",
	})

	router := NewRouter(mux)
	router.Use(middleware.NewHTTPMetrics(reg).Middleware)

	app := testApp{handler: router.Handler()}

	rec := app.do(http.MethodPost, "/login", `{"email":"neil@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var sess struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sess))
	app.token = sess.Token
	return app
}

func (a testApp) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestSetupRoutes_HealthCheck(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSetupRoutes_RequiresAuth(t *testing.T) {
	app := newTestApp(t)
	app.token = ""

	for _, path := range []string{"/notifications", "/notifications/unread-count", "/me", "/ws"} {
		rec := app.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestSetupRoutes_NotificationFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/notifications/unread-count", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":5}`, rec.Body.String())

	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPatch, "/notifications/1/read", "").Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/notifications/1", "").Code)

	rec = app.do(http.MethodPost, "/notifications/arrivals", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var arrival struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &arrival))

	rec = app.do(http.MethodGet, "/notifications/arrivals", "")
	assert.Contains(t, rec.Body.String(), arrival.ID)
	assert.Equal(t, http.StatusNoContent, app.do(http.MethodDelete, "/notifications/arrivals/"+arrival.ID, "").Code)

	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPatch, "/notifications/read-all", "").Code)
	rec = app.do(http.MethodGet, "/notifications/unread-count", "")
	assert.JSONEq(t, `{"count":0}`, rec.Body.String())
}

func TestSetupRoutes_AuthFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(http.MethodGet, "/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Neil Oberoi")

	rec = app.do(http.MethodPost, "/me/role", `{"role":"practitioner"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dr. Ayush Sharma")

	assert.Equal(t, http.StatusNoContent, app.do(http.MethodPost, "/logout", "").Code)
}

func TestSetupRoutes_MetricsAndUploads(t *testing.T) {
	app := newTestApp(t)
	app.do(http.MethodGet, "/notifications", "")

	rec := app.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="GET /notifications",status="200"}`)
	assert.Contains(t, rec.Body.String(), "notifications_unread")

	rec = app.do(http.MethodGet, "/uploads/avatars/a.txt", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "avatar", rec.Body.String())
}

func TestSetupRoutes_OptionalHandlers(t *testing.T) {
	authModule := auth.NewModule("test-secret", time.Hour, nil, "", nil)
	notifModule := notification.NewModule(notification.Config{})
	defer notifModule.Shutdown()

	mux := SetupRoutes(RouterConfig{
		AuthHandler:         authModule.HTTPHandler(),
		AuthMiddleware:      authModule.Middleware(),
		NotificationHandler: notifModule.HTTPHandler(),
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
