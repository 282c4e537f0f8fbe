package ports

import (
	"context"
	"time"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// Sender delivers one message over one channel. A nil error means the
// provider accepted the message.
type Sender interface {
	Send(ctx context.Context, address string, msg domain.Message) error
}

// DeliveryDispatcher fans deliveries out and reports every outcome. It never
// stops early because one delivery failed.
type DeliveryDispatcher interface {
	Dispatch(ctx context.Context, deliveries []domain.Delivery) []domain.DeliveryResult
}

// DailyGuard makes a job fire at most once per calendar day.
type DailyGuard interface {
	// Acquire returns true for the first caller on date and false afterwards.
	Acquire(ctx context.Context, job string, date time.Time) (bool, error)
}

// HeadcountNotifier sends the daily office headcount to the kitchen.
type HeadcountNotifier interface {
	// Run is the scheduled entry point: it skips weekends and days that
	// already fired.
	Run(ctx context.Context, now time.Time) (*domain.NotifySummary, error)
	// SendNow delivers today's headcount unconditionally (admin trigger).
	SendNow(ctx context.Context, now time.Time) (*domain.NotifySummary, error)
}
