package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/saransh1220/panchakarma/internal/modules/auth/domain"
)

// CustomClaims carries the whole session user so a token can be restored
// without a user store.
type CustomClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// User rebuilds the session user from the claims.
func (c *CustomClaims) User() (domain.User, error) {
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:        c.UserID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Role:      role,
		AvatarURL: c.AvatarURL,
	}, nil
}

// GenerateToken signs an HS256 token for user valid for duration.
func GenerateToken(secret string, duration time.Duration, user domain.User) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      string(user.Role),
		AvatarURL: user.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken parses tokenStr and verifies its HMAC signature and expiry.
func ValidateToken(tokenStr string, secret string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}
