package ports

import (
	"context"
	"time"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// ListUsersResult is one page of users.
type ListUsersResult struct {
	Users      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// DashboardStats is the admin landing-page summary for one day.
type DashboardStats struct {
	TotalUsers       int64
	ActiveUsers      int64
	TodayOfficeCount int64
	TodayAttendance  map[domain.AttendanceStatus]int64
}

// ReportInput selects records for an admin report. Zero From/To default to
// the last 30 days.
type ReportInput struct {
	UserID string
	From   time.Time
	To     time.Time
	Now    time.Time
}

// ReportService is the admin read side plus user management.
type ReportService interface {
	ListUsers(ctx context.Context, filter UserFilter) (*ListUsersResult, error)
	UpdateUser(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	DashboardStats(ctx context.Context, now time.Time) (*DashboardStats, error)
	AttendanceReport(ctx context.Context, in ReportInput) ([]*domain.AttendanceRecord, error)
	Analytics(ctx context.Context, in ReportInput) ([]domain.DailyStatusCounts, error)
}
