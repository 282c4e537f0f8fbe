package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
	"github.com/officelunch/attendance-api/internal/pkg/calendar"
)

const (
	defaultHistoryDays  = 30
	defaultHistoryLimit = 30
	maxPageLimit        = 100
)

type AttendanceService struct {
	repo   ports.AttendanceRepository
	loc    *time.Location
	logger zerolog.Logger
}

// NewAttendanceService builds the attendance core. loc is the office time
// zone; every calendar date and the 09:30 cutoff are evaluated in it.
func NewAttendanceService(repo ports.AttendanceRepository, loc *time.Location, logger zerolog.Logger) *AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceService{repo: repo, loc: loc, logger: logger}
}

func (s *AttendanceService) Location() *time.Location { return s.loc }

// MarkAttendance validates the request against the date rules, then creates
// or updates the caller's record for the effective day. Nothing is written
// unless every rule passes.
func (s *AttendanceService) MarkAttendance(ctx context.Context, in ports.MarkAttendanceInput) (*ports.MarkAttendanceResult, error) {
	now := in.Now.In(s.loc)
	req := domain.MarkRequest{
		ActorID:   in.Actor.UserID,
		ActorRole: in.Actor.Role,
		Status:    domain.AttendanceStatus(in.Status),
		Date:      in.Date,
		Notes:     in.Notes,
	}

	target, err := domain.EvaluateMark(req, now)
	if err != nil {
		s.logger.Info().
			Str("user_id", req.ActorID).
			Str("reason", domain.CodeOf(err)).
			Msg("attendance mark rejected")
		return nil, err
	}

	existing, err := s.findExisting(ctx, req.ActorID, target.Date)
	if err != nil {
		return nil, fmt.Errorf("mark attendance: %w", err)
	}

	decision := domain.DecideMark(target, existing, req, now)
	if err := s.commit(ctx, decision); err != nil {
		switch {
		case decision.Outcome == domain.OutcomeCreated && errors.Is(err, domain.ErrConflict):
			// Lost a create race for the same (user, date): replay once as an update.
			s.logger.Warn().Str("user_id", req.ActorID).Time("date", target.Date).Msg("concurrent create, retrying as update")
			decision, err = s.retryAsUpdate(ctx, target, req, now)
			if err != nil {
				return nil, err
			}
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrMarkConflict
		default:
			return nil, fmt.Errorf("mark attendance: %w", err)
		}
	}

	s.logger.Info().
		Str("user_id", req.ActorID).
		Str("status", string(req.Status)).
		Str("date", target.Date.Format(time.DateOnly)).
		Str("outcome", string(decision.Outcome)).
		Bool("for_tomorrow", decision.ForTomorrow).
		Msg("attendance marked")

	return &ports.MarkAttendanceResult{
		Record:      decision.Record,
		Outcome:     decision.Outcome,
		ForTomorrow: decision.ForTomorrow,
		Message:     decision.Message(),
	}, nil
}

func (s *AttendanceService) retryAsUpdate(ctx context.Context, target domain.MarkTarget, req domain.MarkRequest, now time.Time) (domain.Decision, error) {
	existing, err := s.findExisting(ctx, req.ActorID, target.Date)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("mark attendance: retry: %w", err)
	}
	if existing == nil {
		return domain.Decision{}, domain.ErrMarkConflict
	}

	decision := domain.DecideMark(target, existing, req, now)
	if err := s.commit(ctx, decision); err != nil {
		if errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrNotFound) {
			return domain.Decision{}, domain.ErrMarkConflict
		}
		return domain.Decision{}, fmt.Errorf("mark attendance: retry: %w", err)
	}
	return decision, nil
}

func (s *AttendanceService) commit(ctx context.Context, d domain.Decision) error {
	if d.Outcome == domain.OutcomeUpdated {
		return s.repo.Update(ctx, d.Record, *d.Entry)
	}
	return s.repo.Insert(ctx, d.Record)
}

func (s *AttendanceService) findExisting(ctx context.Context, userID string, date time.Time) (*domain.AttendanceRecord, error) {
	rec, err := s.repo.FindOne(ctx, userID, date)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

// GetForDate returns the caller's record for date, or nil if there is none.
func (s *AttendanceService) GetForDate(ctx context.Context, userID string, date time.Time) (*domain.AttendanceRecord, error) {
	rec, err := s.findExisting(ctx, userID, s.day(date))
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return rec, nil
}

// GetHistory returns a page of the caller's records, newest first.
func (s *AttendanceService) GetHistory(ctx context.Context, in ports.HistoryInput) (*ports.HistoryResult, error) {
	to := s.day(in.Now)
	if !in.To.IsZero() {
		to = s.day(in.To)
	}
	from := calendar.AddDays(s.day(in.Now), -defaultHistoryDays)
	if !in.From.IsZero() {
		from = s.day(in.From)
	}
	if from.After(to) {
		return nil, domain.ErrInvalidDateRange
	}

	page, limit := normalizePage(in.Page, in.Limit, defaultHistoryLimit)
	records, total, err := s.repo.List(ctx, ports.AttendanceFilter{
		UserID: in.UserID,
		From:   from,
		To:     endOfDay(to),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("attendance history: %w", err)
	}

	return &ports.HistoryResult{
		Records:    records,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// GetTodayStatus reports today's record and whether today can still be marked.
func (s *AttendanceService) GetTodayStatus(ctx context.Context, userID string, now time.Time) (*ports.TodayStatus, error) {
	now = now.In(s.loc)
	today := calendar.StartOfDay(now)

	rec, err := s.findExisting(ctx, userID, today)
	if err != nil {
		return nil, fmt.Errorf("today status: %w", err)
	}

	afterCutoff := calendar.IsAfterCutoff(now)
	canMark := !calendar.IsWeekend(today) && !afterCutoff
	next := today
	if !canMark {
		next = calendar.NextWorkingDay(today)
	}

	msg := "Can mark attendance for today"
	if afterCutoff {
		msg = "After 9:30 AM cutoff - attendance will be marked for next working day"
	}

	return &ports.TodayStatus{
		Record:            rec,
		CanMarkToday:      canMark,
		NextAvailableDate: next,
		IsAfterCutoff:     afterCutoff,
		TimeUntilCutoff:   calendar.TimeUntilCutoff(now),
		Message:           msg,
	}, nil
}

// DeleteForDate removes the caller's record for a future day, or for today
// while the cutoff has not passed.
func (s *AttendanceService) DeleteForDate(ctx context.Context, userID string, date, now time.Time) error {
	now = now.In(s.loc)
	day := s.day(date)
	if !domain.CanDelete(day, now) {
		return domain.ErrDeleteWindowClosed
	}

	if err := s.repo.Delete(ctx, userID, day); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrAttendanceNotFound
		}
		return fmt.Errorf("delete attendance: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("date", day.Format(time.DateOnly)).Msg("attendance deleted")
	return nil
}

// GetOfficeCount returns how many people marked office for date.
func (s *AttendanceService) GetOfficeCount(ctx context.Context, date time.Time) (int64, error) {
	day := s.day(date)
	n, err := s.repo.Count(ctx, day, endOfDay(day), domain.StatusOffice)
	if err != nil {
		return 0, fmt.Errorf("office count: %w", err)
	}
	return n, nil
}

// GetStats summarises a user's records for one calendar month.
func (s *AttendanceService) GetStats(ctx context.Context, userID string, year int, month time.Month) (*domain.AttendanceStats, error) {
	first, last := calendar.MonthRange(year, month, s.loc)
	records, _, err := s.repo.List(ctx, ports.AttendanceFilter{
		UserID: userID,
		From:   first,
		To:     endOfDay(last),
	})
	if err != nil {
		return nil, fmt.Errorf("attendance stats: %w", err)
	}

	stats := &domain.AttendanceStats{TotalDays: len(records), Month: int(month), Year: year}
	for _, r := range records {
		switch r.Status {
		case domain.StatusOffice:
			stats.Office++
		case domain.StatusHome:
			stats.Home++
		case domain.StatusLeave:
			stats.Leave++
		}
		if r.IsLateMarking {
			stats.LateMarkings++
		}
	}
	return stats, nil
}

func (s *AttendanceService) day(t time.Time) time.Time {
	return calendar.StartOfDay(t.In(s.loc))
}

func endOfDay(day time.Time) time.Time {
	return calendar.AddDays(day, 1).Add(-time.Millisecond)
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
