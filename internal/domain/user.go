package domain

import "time"

// UserPlan enumerates billing plans.
type UserPlan string

const (
	UserPlanFree UserPlan = "free"
	UserPlanPro  UserPlan = "pro"
)

// User is an account record as persisted in the user collection. Email is
// the natural key; Password holds a bcrypt hash, or nil for accounts created
// through Google sign-in. JSON field names match the stored layout and must
// not change.
type User struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password *string   `json:"password"`
	Plan     UserPlan  `json:"plan"`
	Created  time.Time `json:"created"`
	Google   bool      `json:"google,omitempty"`
}

// SessionUser is the current-session pointer: the subset of the account that
// denotes "who is logged in".
type SessionUser struct {
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Plan    UserPlan  `json:"plan"`
	Created time.Time `json:"created"`
	Google  bool      `json:"google,omitempty"`
}

// SessionOf derives the current-session pointer for a user.
func SessionOf(u User) SessionUser {
	return SessionUser{
		Email:   u.Email,
		Name:    u.Name,
		Plan:    u.Plan,
		Created: u.Created,
		Google:  u.Google,
	}
}

// GoogleAccount is one entry of the mock Google account picker. The demo has
// no real OAuth flow; picking an account signs it in directly.
type GoogleAccount struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// MockGoogleAccounts lists the fixed accounts offered by the picker.
var MockGoogleAccounts = []GoogleAccount{
	{Name: "Demo User", Email: "demo@gmail.com"},
	{Name: "Otro Usuario", Email: "otro@gmail.com"},
}
