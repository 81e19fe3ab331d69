// Package models contains the persistent domain entities, their invariants, and the
// error catalogue shared by every layer.
package models

import (
	"strings"
	"time"
)

// UserRole is the authorization role of a user.
type UserRole string

const (
	RoleUser  UserRole = "ROLE_USER"
	RoleAdmin UserRole = "ROLE_ADMIN"
)

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusDeleted   UserStatus = "DELETED"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusDeleted:
		return true
	}
	return false
}

// User is an account that can author boards and comments.
type User struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Username    string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"size:255;not null" json:"-"`
	Name        string     `gorm:"size:50;not null" json:"name"`
	Role        UserRole   `gorm:"size:20;not null;default:ROLE_USER" json:"role"`
	Status      UserStatus `gorm:"size:20;not null;default:ACTIVE" json:"status"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsActive reports whether the account may sign in.
func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// UpdateProfile replaces name and email; blank values leave the field unchanged.
func (u *User) UpdateProfile(name, email string) {
	if strings.TrimSpace(name) != "" {
		u.Name = name
	}
	if strings.TrimSpace(email) != "" {
		u.Email = email
	}
}

// ChangePassword stores an already hashed password.
func (u *User) ChangePassword(hashed string) {
	u.Password = hashed
}

func (u *User) ChangeRole(role UserRole) {
	u.Role = role
}

func (u *User) ChangeStatus(status UserStatus) {
	u.Status = status
}

// UserSummary is the compact list projection of a user.
type UserSummary struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Role     UserRole   `json:"role"`
	Status   UserStatus `json:"status"`
}

// Summary projects the user into its list form.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     u.Role,
		Status:   u.Status,
	}
}
