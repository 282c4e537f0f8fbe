package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
	"github.com/officelunch/attendance-api/internal/pkg/calendar"
)

const (
	headcountJob   = "headcount"
	headcountTitle = "Daily Lunch Count"

	SkipReasonWeekend     = "weekend"
	SkipReasonAlreadySent = "already_sent"
)

type headcountNotifier struct {
	attendance ports.AttendanceService
	users      ports.UserRepository
	dispatcher ports.DeliveryDispatcher
	guard      ports.DailyGuard // optional
	log        zerolog.Logger
}

// NewHeadcountNotifier returns a HeadcountNotifier. guard may be nil, in
// which case nothing stops a second run on the same day.
func NewHeadcountNotifier(
	attendance ports.AttendanceService,
	users ports.UserRepository,
	dispatcher ports.DeliveryDispatcher,
	guard ports.DailyGuard,
	log zerolog.Logger,
) ports.HeadcountNotifier {
	return &headcountNotifier{
		attendance: attendance,
		users:      users,
		dispatcher: dispatcher,
		guard:      guard,
		log:        log,
	}
}

func (n *headcountNotifier) Run(ctx context.Context, now time.Time) (*domain.NotifySummary, error) {
	now = now.In(n.attendance.Location())
	today := calendar.StartOfDay(now)
	summary := &domain.NotifySummary{RunID: uuid.NewString(), Date: today}
	log := n.log.With().Str("run_id", summary.RunID).Str("date", today.Format(time.DateOnly)).Logger()

	if calendar.IsWeekend(today) {
		summary.Skipped, summary.SkipReason = true, SkipReasonWeekend
		log.Info().Msg("headcount skipped on weekend")
		return summary, nil
	}
	if !calendar.IsNotificationTime(now) {
		log.Debug().Time("now", now).Msg("headcount running outside the cutoff minute")
	}

	// Acquire only after loading; a failed load must not consume the day.
	chefs, err := n.load(ctx, today, summary)
	if err != nil {
		return nil, err
	}

	if n.guard != nil {
		first, err := n.guard.Acquire(ctx, headcountJob, today)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("daily guard unavailable, sending anyway")
		case !first:
			summary.Skipped, summary.SkipReason = true, SkipReasonAlreadySent
			log.Info().Msg("headcount already sent today")
			return summary, nil
		}
	}

	return n.send(ctx, today, chefs, summary, log), nil
}

func (n *headcountNotifier) SendNow(ctx context.Context, now time.Time) (*domain.NotifySummary, error) {
	today := calendar.StartOfDay(now.In(n.attendance.Location()))
	summary := &domain.NotifySummary{RunID: uuid.NewString(), Date: today}
	log := n.log.With().Str("run_id", summary.RunID).Str("date", today.Format(time.DateOnly)).Bool("manual", true).Logger()
	chefs, err := n.load(ctx, today, summary)
	if err != nil {
		return nil, err
	}
	return n.send(ctx, today, chefs, summary, log), nil
}

// load fills in the office count and returns the active chefs.
func (n *headcountNotifier) load(ctx context.Context, today time.Time, summary *domain.NotifySummary) ([]*domain.User, error) {
	count, err := n.attendance.GetOfficeCount(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("headcount: %w", err)
	}
	summary.OfficeCount = count

	chefs, err := n.users.ListActiveByRole(ctx, domain.RoleChef)
	if err != nil {
		return nil, fmt.Errorf("headcount: list chefs: %w", err)
	}
	return chefs, nil
}

func (n *headcountNotifier) send(ctx context.Context, today time.Time, chefs []*domain.User, summary *domain.NotifySummary, log zerolog.Logger) *domain.NotifySummary {
	count := summary.OfficeCount
	msg := HeadcountMessage(count, today)
	var deliveries []domain.Delivery
	for _, chef := range chefs {
		reached := false
		if chef.WantsPush() {
			deliveries = append(deliveries, domain.Delivery{RecipientID: chef.ID, Channel: domain.ChannelPush, Address: chef.FCMToken, Message: msg})
			reached = true
		}
		if chef.WantsEmail() {
			deliveries = append(deliveries, domain.Delivery{RecipientID: chef.ID, Channel: domain.ChannelEmail, Address: chef.Email, Message: msg})
			reached = true
		}
		if reached {
			summary.Recipients++
		}
	}

	if len(deliveries) == 0 {
		log.Warn().Int64("office_count", count).Int("chefs", len(chefs)).Msg("no chef opted in to headcount notifications")
		return summary
	}

	for _, res := range n.dispatcher.Dispatch(ctx, deliveries) {
		if res.Err != nil {
			summary.Failed++
			log.Error().Err(res.Err).
				Str("recipient_id", res.Delivery.RecipientID).
				Str("channel", string(res.Delivery.Channel)).
				Msg("headcount delivery failed")
			continue
		}
		summary.Sent++
	}

	log.Info().
		Int64("office_count", summary.OfficeCount).
		Int("recipients", summary.Recipients).
		Int("sent", summary.Sent).
		Int("failed", summary.Failed).
		Msg("headcount sent")
	return summary
}

// HeadcountMessage builds the notification chefs receive for date.
func HeadcountMessage(count int64, date time.Time) domain.Message {
	return domain.Message{
		Title: headcountTitle,
		Body:  fmt.Sprintf("%d employees working from office today", count),
		Data: map[string]string{
			"type":  domain.NotificationTypeLunchCount,
			"count": strconv.FormatInt(count, 10),
			"date":  date.Format(time.DateOnly),
		},
	}
}
