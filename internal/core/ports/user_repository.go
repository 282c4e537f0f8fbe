package ports

import (
	"context"
	"time"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// UserFilter carries the admin user-list query.
type UserFilter struct {
	Role   string // optional
	Search string // optional: case-insensitive match on name, email, employee id
	Page   int    // 1-based
	Limit  int
}

// UserRepository persists users.
type UserRepository interface {
	// Create returns domain.ErrUserExists on duplicate email or employee id.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]*domain.User, int64, error)
	// ListActiveByRole returns every active user holding role.
	ListActiveByRole(ctx context.Context, role string) ([]*domain.User, error)
	// Count returns the number of users; activeOnly restricts to active ones.
	Count(ctx context.Context, activeOnly bool) (int64, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdateNotificationPreferences(ctx context.Context, id string, prefs NotificationPreferences) (*domain.User, error)
	UpdateAdminFields(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
}

// NotificationPreferences is a partial update; nil fields are left unchanged.
type NotificationPreferences struct {
	FCMToken           *string
	EmailNotifications *bool
	PushNotifications  *bool
}

// UserPatch is an admin-side partial update; nil fields are left unchanged.
type UserPatch struct {
	Role       *string
	IsActive   *bool
	Department *string
}
