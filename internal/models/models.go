// package models defines the data model for the JustMusik client
package models

import "slices"

// Role names as issued by the platform.
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

// Song represents a song in the remote catalog.
//
// The client holds read-only copies; all mutation happens through the API
// followed by local list reconciliation.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Genre    string `json:"genre,omitempty"`
	Duration int    `json:"duration"` // seconds
	ImageURL string `json:"imageUrl,omitempty"`
	AudioRef string `json:"audioFile,omitempty"`
}

// User represents the authenticated user's identity for the session.
type User struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	IsPaid   bool     `json:"isPaid"`
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(role string) bool {
	return u != nil && slices.Contains(u.Roles, role)
}

// IsAdmin reports whether the user may upload, edit, and delete songs.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// RoleDisplay returns the human-readable role label shown on the profile view.
func (u *User) RoleDisplay() string {
	switch {
	case u.IsAdmin():
		return "Administrator"
	case u.HasRole(RoleUser):
		return "User"
	default:
		return "Unknown"
	}
}

// Credentials is the sign-in request payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up request payload. Sign-up does not create a session.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is the platform's sign-in payload: a bearer token plus the
// user identity fields, flattened.
type SignInResponse struct {
	Token    string   `json:"token"`
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	IsPaid   bool     `json:"isPaid"`
}

// User extracts the identity portion of a sign-in response.
func (r *SignInResponse) User() *User {
	return &User{
		ID:       r.ID,
		Username: r.Username,
		Email:    r.Email,
		Roles:    r.Roles,
		IsPaid:   r.IsPaid,
	}
}
