package domain

import "encoding/json"

// AuthState is either anonymous or carries the signed-in user. The zero
// value is anonymous.
type AuthState struct {
	user *User
}

func Anonymous() AuthState {
	return AuthState{}
}

func Authenticated(u User) AuthState {
	return AuthState{user: &u}
}

func (s AuthState) IsAuthenticated() bool {
	return s.user != nil
}

// User returns a copy of the signed-in user.
func (s AuthState) User() (User, bool) {
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s AuthState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Authenticated bool  `json:"authenticated"`
		User          *User `json:"user,omitempty"`
	}{s.IsAuthenticated(), s.user})
}
