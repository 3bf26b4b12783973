package auth

import (
	"time"

	"github.com/saransh1220/panchakarma/internal/gateway/middleware"
	"github.com/saransh1220/panchakarma/internal/modules/auth/application"
	auth_http "github.com/saransh1220/panchakarma/internal/modules/auth/interfaces/http"
	fileApp "github.com/saransh1220/panchakarma/internal/modules/filestorage/application"
	"go.uber.org/zap"
)

// Module represents the Auth module
type Module struct {
	service    *application.AuthService
	handler    *auth_http.AuthHandler
	middleware *middleware.AuthMiddleWare
}

// NewModule wires the stateless session service. fileService may be nil,
// in which case avatar uploads fail and stored URLs are returned as is.
func NewModule(jwtSecret string, jwtExpiry time.Duration, fileService *fileApp.FileService, googleClientID string, logger *zap.Logger) *Module {
	var avatars application.AvatarUploader
	var viewer auth_http.FileService
	if fileService != nil {
		avatars = fileService
		viewer = fileService
	}

	service := application.NewAuthService(jwtSecret, jwtExpiry, googleClientID, avatars, logger)
	return &Module{
		service:    service,
		handler:    auth_http.NewAuthHandler(service, viewer, logger),
		middleware: middleware.NewAuthMiddleware(service),
	}
}

// Service returns the auth service for use by the gateway layer
func (m *Module) Service() *application.AuthService {
	return m.service
}

// HTTPHandler returns the HTTP handler for the auth module
func (m *Module) HTTPHandler() *auth_http.AuthHandler {
	return m.handler
}

func (m *Module) Middleware() *middleware.AuthMiddleWare {
	return m.middleware
}
