package ports

import (
	"context"
	"time"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// AttendanceFilter carries the query parameters for listing records.
type AttendanceFilter struct {
	UserID string    // empty = all users (admin reports)
	From   time.Time // date >= From
	To     time.Time // date <= To
	Status domain.AttendanceStatus
	Page   int // 1-based; 0 disables pagination
	Limit  int
}

// AttendanceRepository is the record store. Dates passed in are already
// normalized to local midnight.
type AttendanceRepository interface {
	// FindOne returns domain.ErrAttendanceNotFound when no record exists.
	FindOne(ctx context.Context, userID string, date time.Time) (*domain.AttendanceRecord, error)
	// Insert returns an error wrapping domain.ErrConflict when a record for
	// (UserID, Date) already exists. On success rec.ID is set.
	Insert(ctx context.Context, rec *domain.AttendanceRecord) error
	// Update atomically overwrites status/notes/markedAt and appends entry to
	// the history of the record at (rec.UserID, rec.Date).
	Update(ctx context.Context, rec *domain.AttendanceRecord, entry domain.ModificationEntry) error
	// Delete returns domain.ErrAttendanceNotFound when nothing was removed.
	Delete(ctx context.Context, userID string, date time.Time) error
	// Count returns the number of records dated within [from, to] with the
	// given status; an empty status counts all.
	Count(ctx context.Context, from, to time.Time, status domain.AttendanceStatus) (int64, error)
	// CountByStatus groups records dated within [from, to] by status.
	CountByStatus(ctx context.Context, from, to time.Time) ([]domain.StatusCount, error)
	// List returns matching records sorted by date descending, plus the total.
	List(ctx context.Context, filter AttendanceFilter) ([]*domain.AttendanceRecord, int64, error)
	// DailyCounts groups records within [from, to] by day and status, ascending by day.
	DailyCounts(ctx context.Context, from, to time.Time) ([]domain.DailyStatusCounts, error)
}
