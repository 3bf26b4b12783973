package application

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/saransh1220/panchakarma/internal/modules/auth/domain"
	filedomain "github.com/saransh1220/panchakarma/internal/modules/filestorage/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

type mockAvatarUploader struct {
	mock.Mock
}

func (m *mockAvatarUploader) UploadImage(ctx context.Context, folder string, src io.Reader, width, height int) (filedomain.File, error) {
	args := m.Called(ctx, folder, src, width, height)
	return args.Get(0).(filedomain.File), args.Error(1)
}

func (m *mockAvatarUploader) DeleteByURL(ctx context.Context, fileURL string) error {
	return m.Called(ctx, fileURL).Error(0)
}

func newTestService(avatars AvatarUploader) *AuthService {
	return NewAuthService("test-secret", time.Hour, "client-id", avatars, nil)
}

func TestLogin(t *testing.T) {
	s := newTestService(nil)
	ctx := context.Background()

	t.Run("patient", func(t *testing.T) {
		sess, err := s.Login(ctx, LoginRequest{Email: "neil@example.com", Password: "x"})
		require.NoError(t, err)
		assert.NotEmpty(t, sess.Token)
		assert.Equal(t, domain.RolePatient, sess.User.Role)
		assert.Equal(t, "Neil Oberoi", sess.User.Name)
		assert.Equal(t, domain.DemoPhone, sess.User.Phone)
		assert.Equal(t, domain.UserIDForEmail("neil@example.com"), sess.User.ID)
	})

	t.Run("practitioner", func(t *testing.T) {
		sess, err := s.Login(ctx, LoginRequest{Email: "Practitioner@clinic.in", Password: "x"})
		require.NoError(t, err)
		assert.Equal(t, domain.RolePractitioner, sess.User.Role)
		assert.Equal(t, "Dr. Ayush Sharma", sess.User.Name)
	})

	t.Run("missing credentials", func(t *testing.T) {
		_, err := s.Login(ctx, LoginRequest{Email: "  ", Password: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		_, err = s.Login(ctx, LoginRequest{Email: "a@b.com"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestRestore(t *testing.T) {
	s := newTestService(nil)
	sess, err := s.Login(context.Background(), LoginRequest{Email: "neil@example.com", Password: "x"})
	require.NoError(t, err)

	state := s.Restore(sess.Token)
	require.True(t, state.IsAuthenticated())
	u, _ := state.User()
	assert.Equal(t, sess.User, u)

	assert.False(t, s.Restore("").IsAuthenticated())
	assert.False(t, s.Restore("garbage").IsAuthenticated())

	other := NewAuthService("other-secret", time.Hour, "", nil, nil)
	assert.False(t, other.Restore(sess.Token).IsAuthenticated())

	expired := NewAuthService("test-secret", -time.Minute, "", nil, nil)
	old, err := expired.Login(context.Background(), LoginRequest{Email: "neil@example.com", Password: "x"})
	require.NoError(t, err)
	assert.False(t, s.Restore(old.Token).IsAuthenticated())
}

func TestSwitchRole(t *testing.T) {
	s := newTestService(nil)
	ctx := context.Background()
	sess, err := s.Login(ctx, LoginRequest{Email: "neil@example.com", Password: "x"})
	require.NoError(t, err)

	switched, err := s.SwitchRole(ctx, domain.Authenticated(sess.User), SwitchRoleRequest{Role: "practitioner"})
	require.NoError(t, err)
	assert.Equal(t, domain.RolePractitioner, switched.User.Role)
	assert.Equal(t, sess.User.ID, switched.User.ID)

	restored, _ := s.Restore(switched.Token).User()
	assert.Equal(t, domain.RolePractitioner, restored.Role)

	_, err = s.SwitchRole(ctx, domain.Authenticated(sess.User), SwitchRoleRequest{Role: "admin"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)

	_, err = s.SwitchRole(ctx, domain.Anonymous(), SwitchRoleRequest{Role: "patient"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestGoogleLogin(t *testing.T) {
	s := newTestService(nil)
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		s.googleTokenValidator = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			assert.Equal(t, "google-token", token)
			assert.Equal(t, "client-id", audience)
			return &idtoken.Payload{Claims: map[string]interface{}{
				"email":   "asha@example.com",
				"name":    "Asha Rao",
				"picture": "https://lh3.googleusercontent.com/a/pic",
			}}, nil
		}
		sess, err := s.GoogleLogin(ctx, GoogleLoginRequest{Token: "google-token"})
		require.NoError(t, err)
		assert.Equal(t, domain.RolePatient, sess.User.Role)
		assert.Equal(t, "Asha Rao", sess.User.Name)
		assert.Equal(t, "https://lh3.googleusercontent.com/a/pic", sess.User.AvatarURL)
	})

	t.Run("validator error", func(t *testing.T) {
		s.googleTokenValidator = func(context.Context, string, string) (*idtoken.Payload, error) {
			return nil, errors.New("bad audience")
		}
		_, err := s.GoogleLogin(ctx, GoogleLoginRequest{Token: "t"})
		assert.ErrorIs(t, err, domain.ErrInvalidGoogleToken)
	})

	t.Run("missing email", func(t *testing.T) {
		s.googleTokenValidator = func(context.Context, string, string) (*idtoken.Payload, error) {
			return &idtoken.Payload{Claims: map[string]interface{}{"name": "x"}}, nil
		}
		_, err := s.GoogleLogin(ctx, GoogleLoginRequest{Token: "t"})
		assert.ErrorIs(t, err, domain.ErrInvalidGoogleToken)
	})

	t.Run("empty token", func(t *testing.T) {
		_, err := s.GoogleLogin(ctx, GoogleLoginRequest{})
		assert.ErrorIs(t, err, domain.ErrInvalidGoogleToken)
	})
}

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()
	up := new(mockAvatarUploader)
	s := newTestService(up)

	sess, err := s.Login(ctx, LoginRequest{Email: "neil@example.com", Password: "x"})
	require.NoError(t, err)
	state := domain.Authenticated(sess.User)
	src := bytes.NewReader([]byte("img"))

	up.On("UploadImage", ctx, "avatars/"+sess.User.ID.String(), src, AvatarSize, AvatarSize).
		Return(filedomain.File{Key: "avatars/x.jpg", URL: "http://localhost:8080/uploads/avatars/x.jpg"}, nil).Once()

	updated, err := s.UploadAvatar(ctx, state, src)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/avatars/x.jpg", updated.User.AvatarURL)
	restored, _ := s.Restore(updated.Token).User()
	assert.Equal(t, updated.User.AvatarURL, restored.AvatarURL)
	up.AssertExpectations(t)

	up.On("UploadImage", ctx, mock.Anything, mock.Anything, AvatarSize, AvatarSize).
		Return(filedomain.File{}, filedomain.ErrInvalidImage).Once()
	_, err = s.UploadAvatar(ctx, state, bytes.NewReader(nil))
	assert.ErrorIs(t, err, filedomain.ErrInvalidImage)

	_, err = s.UploadAvatar(ctx, domain.Anonymous(), src)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = newTestService(nil).UploadAvatar(ctx, state, src)
	assert.Error(t, err)
	up.AssertNotCalled(t, "DeleteByURL", mock.Anything, mock.Anything)
}

func TestUploadAvatar_DeletesReplacedAvatar(t *testing.T) {
	ctx := context.Background()
	up := new(mockAvatarUploader)
	s := newTestService(up)

	sess, err := s.Login(ctx, LoginRequest{Email: "neil@example.com", Password: "x"})
	require.NoError(t, err)
	user := sess.User
	user.AvatarURL = "http://localhost:8080/uploads/avatars/old.jpg"
	state := domain.Authenticated(user)

	up.On("UploadImage", ctx, mock.Anything, mock.Anything, AvatarSize, AvatarSize).
		Return(filedomain.File{Key: "avatars/new.jpg", URL: "http://localhost:8080/uploads/avatars/new.jpg"}, nil).Twice()
	up.On("DeleteByURL", ctx, "http://localhost:8080/uploads/avatars/old.jpg").Return(nil).Once()

	updated, err := s.UploadAvatar(ctx, state, bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/avatars/new.jpg", updated.User.AvatarURL)

	// Re-uploading over the same URL keeps the object.
	_, err = s.UploadAvatar(ctx, domain.Authenticated(updated.User), bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	up.AssertExpectations(t)
	up.AssertNumberOfCalls(t, "DeleteByURL", 1)
}

func TestUploadAvatar_DeleteFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	up := new(mockAvatarUploader)
	s := newTestService(up)

	sess, err := s.Login(ctx, LoginRequest{Email: "neil@example.com", Password: "x"})
	require.NoError(t, err)
	user := sess.User
	user.AvatarURL = "http://localhost:8080/uploads/avatars/old.jpg"

	up.On("UploadImage", ctx, mock.Anything, mock.Anything, AvatarSize, AvatarSize).
		Return(filedomain.File{Key: "avatars/new.jpg", URL: "http://localhost:8080/uploads/avatars/new.jpg"}, nil).Once()
	up.On("DeleteByURL", ctx, user.AvatarURL).Return(errors.New("bucket gone")).Once()

	updated, err := s.UploadAvatar(ctx, domain.Authenticated(user), bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/avatars/new.jpg", updated.User.AvatarURL)
	up.AssertExpectations(t)
}
