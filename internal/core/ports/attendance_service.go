package ports

import (
	"context"
	"time"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// Principal is the authenticated caller, as vouched for by the auth layer.
type Principal struct {
	UserID string
	Role   string
}

// MarkAttendanceInput carries a mark request. Now is injected by the caller.
type MarkAttendanceInput struct {
	Actor  Principal
	Status string
	Date   *time.Time
	Notes  string
	Now    time.Time
}

// MarkAttendanceResult is returned for both created and updated marks.
type MarkAttendanceResult struct {
	Record      *domain.AttendanceRecord
	Outcome     domain.Outcome
	ForTomorrow bool
	Message     string
}

// HistoryInput selects a page of the caller's own history. Zero From/To
// default to the last 30 days.
type HistoryInput struct {
	UserID string
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
	Now    time.Time
}

// HistoryResult is one page of records plus pagination info.
type HistoryResult struct {
	Records    []*domain.AttendanceRecord
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TodayStatus is what the dashboard needs to render the marking widget.
type TodayStatus struct {
	Record            *domain.AttendanceRecord // nil when not marked
	CanMarkToday      bool
	NextAvailableDate time.Time
	IsAfterCutoff     bool
	TimeUntilCutoff   time.Duration
	Message           string
}

// AttendanceService is the use-case surface of the attendance core.
type AttendanceService interface {
	MarkAttendance(ctx context.Context, in MarkAttendanceInput) (*MarkAttendanceResult, error)
	// GetForDate returns (nil, nil) when the user has no record for date.
	GetForDate(ctx context.Context, userID string, date time.Time) (*domain.AttendanceRecord, error)
	GetHistory(ctx context.Context, in HistoryInput) (*HistoryResult, error)
	GetTodayStatus(ctx context.Context, userID string, now time.Time) (*TodayStatus, error)
	DeleteForDate(ctx context.Context, userID string, date, now time.Time) error
	GetOfficeCount(ctx context.Context, date time.Time) (int64, error)
	GetStats(ctx context.Context, userID string, year int, month time.Month) (*domain.AttendanceStats, error)
	// Location is the time zone all calendar dates are interpreted in.
	Location() *time.Location
}
