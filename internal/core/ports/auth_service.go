package ports

import (
	"context"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// RegisterInput carries a new account. Role defaults to employee.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	EmployeeID string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// Authenticate resolves a token subject to an active user.
	Authenticate(ctx context.Context, userID string) (*domain.User, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
	UpdateNotificationPreferences(ctx context.Context, userID string, prefs NotificationPreferences) (*domain.User, error)
}
