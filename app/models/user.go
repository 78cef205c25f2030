package models

import "time"

// Role is a user's authorization level.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleManager || r == RoleAdmin
}

// NotificationPreferences controls which emails a user receives.
type NotificationPreferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	OrderUpdates       bool `json:"orderUpdates"`
	MarketingEmails    bool `json:"marketingEmails"`
	SecurityAlerts     bool `json:"securityAlerts"`
	SystemUpdates      bool `json:"systemUpdates"`
}

// DefaultNotifications is applied to every new account.
func DefaultNotifications() NotificationPreferences {
	return NotificationPreferences{
		EmailNotifications: true,
		OrderUpdates:       true,
		MarketingEmails:    false,
		SecurityAlerts:     true,
		SystemUpdates:      true,
	}
}

type Preferences struct {
	Notifications NotificationPreferences `json:"notifications"`
}

// Profile holds the optional, self-editable user details.
type Profile struct {
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Company  string `json:"company,omitempty"`
	Position string `json:"position,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	Language string `json:"language,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// User is an account. PasswordHash is never serialised.
type User struct {
	ID           string      `json:"_id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         Role        `json:"role"`
	Profile      Profile     `json:"profile"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// WantsOrderEmails reports whether order status emails should be sent.
func (u *User) WantsOrderEmails() bool {
	n := u.Preferences.Notifications
	return n.EmailNotifications && n.OrderUpdates
}
