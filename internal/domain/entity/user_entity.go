package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for user domain
// Passwords are stored as bcrypt hashes in Password field and never leave the
// service layer; use Profile for anything returned to clients.
type User struct {
	ID              string
	FirstName       string
	LastName        string
	Email           string
	Password        string
	Avatar          string
	Role            Role
	Department      string
	Phone           string
	Bio             string
	Skills          []string
	IsActive        bool
	IsEmailVerified bool
	LastLogin       *time.Time
	Preferences     Preferences
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Preferences struct {
	Theme         string                  `json:"theme"`
	Notifications NotificationPreferences `json:"notifications"`
	Timezone      string                  `json:"timezone"`
}

type NotificationPreferences struct {
	Email          bool `json:"email"`
	Push           bool `json:"push"`
	TaskAssigned   bool `json:"taskAssigned"`
	TaskCompleted  bool `json:"taskCompleted"`
	ProjectUpdates bool `json:"projectUpdates"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme: "system",
		Notifications: NotificationPreferences{
			Email:          true,
			Push:           true,
			TaskAssigned:   true,
			TaskCompleted:  true,
			ProjectUpdates: true,
		},
		Timezone: "UTC",
	}
}

// NormalizeEmail trims and lower-cases an address; uniqueness is checked on
// the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserProfile is the public representation of a User.
type UserProfile struct {
	ID              string      `json:"id"`
	FirstName       string      `json:"firstName"`
	LastName        string      `json:"lastName"`
	Email           string      `json:"email"`
	Role            Role        `json:"role"`
	Avatar          string      `json:"avatar"`
	Department      string      `json:"department,omitempty"`
	Phone           string      `json:"phone,omitempty"`
	Bio             string      `json:"bio,omitempty"`
	Skills          []string    `json:"skills"`
	IsActive        bool        `json:"isActive"`
	IsEmailVerified bool        `json:"isEmailVerified"`
	LastLogin       *time.Time  `json:"lastLogin,omitempty"`
	Preferences     Preferences `json:"preferences"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (u *User) Profile() UserProfile {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	return UserProfile{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Role:            u.Role,
		Avatar:          u.Avatar,
		Department:      u.Department,
		Phone:           u.Phone,
		Bio:             u.Bio,
		Skills:          skills,
		IsActive:        u.IsActive,
		IsEmailVerified: u.IsEmailVerified,
		LastLogin:       u.LastLogin,
		Preferences:     u.Preferences,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}
