package models

import (
	"time"
)

// Role is the capability level of an actor
type Role string

const (
	RoleVisitor     Role = "visitor"
	RoleContributor Role = "contributor"
	RoleAdmin       Role = "admin"
)

// ValidRoles defines allowed user roles
var ValidRoles = map[Role]bool{
	RoleVisitor:     true,
	RoleContributor: true,
	RoleAdmin:       true,
}

// User represents an account owned by the authentication collaborator
type User struct {
	ID          int64      `json:"user_id" db:"id"`
	Username    string     `json:"username" db:"username"`
	Email       string     `json:"email" db:"email"`
	FullName    string     `json:"full_name" db:"full_name"`
	Role        Role       `json:"role" db:"role"`
	Active      bool       `json:"is_active" db:"active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt *time.Time `json:"last_login,omitempty" db:"last_login_at"`
}

// Actor returns the capability view of the user
func (u *User) Actor() *Actor {
	return &Actor{ID: u.ID, Username: u.Username, Role: u.Role, Active: u.Active}
}

// Actor is the caller of an operation. A nil *Actor is an anonymous caller.
type Actor struct {
	ID       int64
	Username string
	Role     Role
	Active   bool
}

// IsAdmin reports whether the actor holds the administrator role
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Active && a.Role == RoleAdmin
}
