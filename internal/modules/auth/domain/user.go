package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RolePatient, RolePractitioner:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// DisplayName is the demo persona shown for each role.
func (r Role) DisplayName() string {
	if r == RolePractitioner {
		return "Dr. Ayush Sharma"
	}
	return "Neil Oberoi"
}

// DefaultAvatar is the stock portrait used until the user uploads one.
func (r Role) DefaultAvatar() string {
	photo := "5327921"
	if r == RolePractitioner {
		photo = "5327580"
	}
	return fmt.Sprintf("https://images.pexels.com/photos/%s/pexels-photo-%s.jpeg?auto=compress&cs=tinysrgb&w=150", photo, photo)
}

const DemoPhone = "+91 98765 43210"

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatar"`
}

// UserIDForEmail derives a stable id so the same email always maps to the
// same notification recipient.
func UserIDForEmail(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(strings.TrimSpace(email))))
}

// WithRole returns a copy of u switched to role. Name and avatar follow the
// role's persona unless the avatar was uploaded by the user.
func (u User) WithRole(role Role) User {
	custom := u.AvatarURL != "" && u.AvatarURL != u.Role.DefaultAvatar()
	u.Role = role
	u.Name = role.DisplayName()
	if !custom {
		u.AvatarURL = role.DefaultAvatar()
	}
	return u
}
