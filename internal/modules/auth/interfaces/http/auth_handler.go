package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/saransh1220/panchakarma/internal/gateway/middleware"
	"github.com/saransh1220/panchakarma/internal/modules/auth/application"
	"github.com/saransh1220/panchakarma/internal/modules/auth/domain"
	filedomain "github.com/saransh1220/panchakarma/internal/modules/filestorage/domain"
	"github.com/saransh1220/panchakarma/internal/shared/utils"
	"go.uber.org/zap"
)

const (
	maxAvatarBytes = 5 << 20
	avatarURLTTL   = time.Hour
)

// AuthService defines the interface for auth operations
type AuthService interface {
	Login(ctx context.Context, req application.LoginRequest) (application.Session, error)
	GoogleLogin(ctx context.Context, req application.GoogleLoginRequest) (application.Session, error)
	SwitchRole(ctx context.Context, state domain.AuthState, req application.SwitchRoleRequest) (application.Session, error)
	UploadAvatar(ctx context.Context, state domain.AuthState, src io.Reader) (application.Session, error)
}

// FileService resolves stored avatar URLs for the browser.
type FileService interface {
	ViewURL(ctx context.Context, fileURL string, expiration time.Duration) string
}

type AuthHandler struct {
	service     AuthService
	fileService FileService
	logger      *zap.Logger
}

func NewAuthHandler(service AuthService, fileService FileService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{service: service, fileService: fileService, logger: logger}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sess, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, sess)
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req application.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sess, err := h.service.GoogleLogin(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, sess)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "user not authenticated", nil)
		return
	}
	utils.WriteJSON(w, http.StatusOK, h.present(r.Context(), user))
}

func (h *AuthHandler) SwitchRole(w http.ResponseWriter, r *http.Request) {
	var req application.SwitchRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	sess, err := h.service.SwitchRole(r.Context(), middleware.AuthStateFrom(r.Context()), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, sess)
}

// UploadAvatar expects a multipart form with the image in the "avatar" field.
func (h *AuthHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid multipart form", err)
		return
	}

	file, _, err := r.FormFile("avatar")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "avatar file is required", err)
		return
	}
	defer file.Close()

	sess, err := h.service.UploadAvatar(r.Context(), middleware.AuthStateFrom(r.Context()), file)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, r, sess)
}

// Logout is a no-op for stateless tokens; clients drop their copy.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if u, ok := middleware.CurrentUser(r.Context()); ok {
		h.logger.Info("user signed out", zap.String("user_id", u.ID.String()))
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) present(ctx context.Context, u domain.User) domain.User {
	if h.fileService != nil {
		u.AvatarURL = h.fileService.ViewURL(ctx, u.AvatarURL, avatarURLTTL)
	}
	return u
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, sess application.Session) {
	sess.User = h.present(r.Context(), sess.User)
	utils.WriteJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		utils.WriteError(w, http.StatusUnauthorized, "invalid credentials", err)
	case errors.Is(err, domain.ErrInvalidGoogleToken):
		utils.WriteError(w, http.StatusUnauthorized, "invalid google token", nil)
	case errors.Is(err, domain.ErrUnauthorized):
		utils.WriteError(w, http.StatusUnauthorized, "user not authenticated", nil)
	case errors.Is(err, domain.ErrInvalidRole):
		utils.WriteError(w, http.StatusBadRequest, "invalid role", err)
	case errors.Is(err, filedomain.ErrInvalidImage):
		utils.WriteError(w, http.StatusBadRequest, "invalid image", err)
	default:
		h.logger.Error("auth request failed", zap.Error(err))
		utils.WriteError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}
