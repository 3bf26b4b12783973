package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/saransh1220/panchakarma/internal/modules/auth/domain"
	"github.com/saransh1220/panchakarma/internal/modules/auth/infrastructure/jwt"
	filedomain "github.com/saransh1220/panchakarma/internal/modules/filestorage/domain"
	"github.com/saransh1220/panchakarma/internal/shared/utils"
	"go.uber.org/zap"
	"google.golang.org/api/idtoken"
)

const AvatarSize = 256

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleLoginRequest struct {
	Token string `json:"token"`
}

type SwitchRoleRequest struct {
	Role string `json:"role"`
}

// Session is what a successful sign-in hands back to the client.
type Session struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// AvatarUploader stores a resized profile picture and removes replaced ones.
type AvatarUploader interface {
	UploadImage(ctx context.Context, folder string, src io.Reader, width, height int) (filedomain.File, error)
	DeleteByURL(ctx context.Context, fileURL string) error
}

type GoogleTokenValidator func(ctx context.Context, token string, audience string) (*idtoken.Payload, error)

// AuthService issues and restores stateless demo sessions.
type AuthService struct {
	jwtSecret            string
	jwtExpiry            time.Duration
	googleClientID       string
	googleTokenValidator GoogleTokenValidator
	avatars              AvatarUploader
	logger               *zap.Logger
}

func NewAuthService(jwtSecret string, jwtExpiry time.Duration, googleClientID string, avatars AvatarUploader, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		jwtSecret:            jwtSecret,
		jwtExpiry:            jwtExpiry,
		googleClientID:       googleClientID,
		googleTokenValidator: idtoken.Validate,
		avatars:              avatars,
		logger:               logger.Named("auth"),
	}
}

// Login accepts any non-empty credentials. Emails containing
// "practitioner" sign in as the practitioner persona.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (Session, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return Session{}, domain.ErrInvalidCredentials
	}

	role := domain.RolePatient
	if strings.Contains(strings.ToLower(email), "practitioner") {
		role = domain.RolePractitioner
	}

	user := newUser(email, role)
	s.logger.Info("user signed in", zap.String("user_id", user.ID.String()), zap.String("role", string(role)))
	return s.issue(user)
}

// GoogleLogin validates a Google ID token and signs the holder in as a patient.
func (s *AuthService) GoogleLogin(ctx context.Context, req GoogleLoginRequest) (Session, error) {
	if req.Token == "" {
		return Session{}, domain.ErrInvalidGoogleToken
	}

	validate := s.googleTokenValidator
	if validate == nil {
		validate = idtoken.Validate
	}

	payload, err := validate(ctx, req.Token, s.googleClientID)
	if err != nil {
		s.logger.Warn("google token rejected", zap.Error(err))
		return Session{}, fmt.Errorf("%w: %v", domain.ErrInvalidGoogleToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	if !utils.IsValidEmail(email) {
		return Session{}, fmt.Errorf("%w: email not provided by google", domain.ErrInvalidGoogleToken)
	}

	user := newUser(email, domain.RolePatient)
	if name, _ := payload.Claims["name"].(string); name != "" {
		user.Name = name
	}
	if picture, _ := payload.Claims["picture"].(string); picture != "" {
		user.AvatarURL = picture
	}

	s.logger.Info("google sign in", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Restore turns a bearer token into an explicit auth state. Missing or
// invalid tokens yield Anonymous.
func (s *AuthService) Restore(token string) domain.AuthState {
	if token == "" {
		return domain.Anonymous()
	}
	claims, err := jwt.ValidateToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return domain.Anonymous()
	}
	user, err := claims.User()
	if err != nil {
		return domain.Anonymous()
	}
	return domain.Authenticated(user)
}

// SwitchRole re-issues the session for another role.
func (s *AuthService) SwitchRole(ctx context.Context, state domain.AuthState, req SwitchRoleRequest) (Session, error) {
	user, ok := state.User()
	if !ok {
		return Session{}, domain.ErrUnauthorized
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return Session{}, err
	}
	return s.issue(user.WithRole(role))
}

// UploadAvatar stores a square-fitted copy of the image and re-issues the
// session with the new avatar URL.
func (s *AuthService) UploadAvatar(ctx context.Context, state domain.AuthState, src io.Reader) (Session, error) {
	user, ok := state.User()
	if !ok {
		return Session{}, domain.ErrUnauthorized
	}
	if s.avatars == nil {
		return Session{}, errors.New("avatar storage is not configured")
	}

	file, err := s.avatars.UploadImage(ctx, "avatars/"+user.ID.String(), src, AvatarSize, AvatarSize)
	if err != nil {
		return Session{}, err
	}

	previous := user.AvatarURL
	user.AvatarURL = file.URL
	s.logger.Info("avatar updated", zap.String("user_id", user.ID.String()), zap.String("key", file.Key))

	if previous != "" && previous != user.Role.DefaultAvatar() && previous != file.URL {
		if err := s.avatars.DeleteByURL(ctx, previous); err != nil {
			s.logger.Warn("failed to delete previous avatar",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		}
	}
	return s.issue(user)
}

func (s *AuthService) issue(user domain.User) (Session, error) {
	token, err := jwt.GenerateToken(s.jwtSecret, s.jwtExpiry, user)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, User: user}, nil
}

func newUser(email string, role domain.Role) domain.User {
	return domain.User{
		ID:        domain.UserIDForEmail(email),
		Name:      role.DisplayName(),
		Email:     email,
		Phone:     domain.DemoPhone,
		Role:      role,
		AvatarURL: role.DefaultAvatar(),
	}
}
