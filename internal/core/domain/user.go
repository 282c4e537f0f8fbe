package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
	RoleChef     = "chef"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleEmployee, RoleChef:
		return true
	}
	return false
}

// User is a person who can log in. Chefs receive the daily headcount.
type User struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	Role               string     `json:"role"`
	EmployeeID         string     `json:"employee_id,omitempty"`
	Department         string     `json:"department,omitempty"`
	IsActive           bool       `json:"is_active"`
	FCMToken           string     `json:"-"`
	EmailNotifications bool       `json:"email_notifications"`
	PushNotifications  bool       `json:"push_notifications"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// WantsPush reports whether the user can and wants to receive push messages.
func (u *User) WantsPush() bool {
	return u.PushNotifications && u.FCMToken != ""
}

// WantsEmail reports whether the user can and wants to receive email.
func (u *User) WantsEmail() bool {
	return u.EmailNotifications && u.Email != ""
}
