package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
	"github.com/officelunch/attendance-api/internal/pkg/calendar"
)

const (
	defaultUserLimit  = 20
	defaultReportDays = 30
)

// ReportService serves the admin dashboard and user management.
type ReportService struct {
	users      ports.UserRepository
	attendance ports.AttendanceRepository
	loc        *time.Location
	log        zerolog.Logger
}

func NewReportService(users ports.UserRepository, attendance ports.AttendanceRepository, loc *time.Location, log zerolog.Logger) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{users: users, attendance: attendance, loc: loc, log: log}
}

func (s *ReportService) ListUsers(ctx context.Context, filter ports.UserFilter) (*ports.ListUsersResult, error) {
	if filter.Role != "" && !domain.ValidRole(filter.Role) {
		return nil, domain.ErrInvalidRole
	}
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit, defaultUserLimit)

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &ports.ListUsersResult{
		Users:      users,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

// UpdateUser applies an admin patch (role, active flag, department).
func (s *ReportService) UpdateUser(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	if patch.Role != nil && !domain.ValidRole(*patch.Role) {
		return nil, domain.ErrInvalidRole
	}
	user, err := s.users.UpdateAdminFields(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	ev := s.log.Info().Str("user_id", id)
	if patch.Role != nil {
		ev = ev.Str("role", *patch.Role)
	}
	if patch.IsActive != nil {
		ev = ev.Bool("is_active", *patch.IsActive)
	}
	ev.Msg("user updated by admin")
	return user, nil
}

// DashboardStats gathers the landing-page numbers concurrently.
func (s *ReportService) DashboardStats(ctx context.Context, now time.Time) (*ports.DashboardStats, error) {
	today := calendar.StartOfDay(now.In(s.loc))
	end := endOfDay(today)
	stats := &ports.DashboardStats{TodayAttendance: make(map[domain.AttendanceStatus]int64)}

	var byStatus []domain.StatusCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.users.Count(gctx, false)
		stats.TotalUsers = n
		return err
	})
	g.Go(func() error {
		n, err := s.users.Count(gctx, true)
		stats.ActiveUsers = n
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = s.attendance.CountByStatus(gctx, today, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}

	for _, st := range domain.AllStatuses() {
		stats.TodayAttendance[st] = 0
	}
	for _, c := range byStatus {
		stats.TodayAttendance[c.Status] = c.Count
	}
	stats.TodayOfficeCount = stats.TodayAttendance[domain.StatusOffice]
	return stats, nil
}

// AttendanceReport returns every record in range, newest first.
func (s *ReportService) AttendanceReport(ctx context.Context, in ports.ReportInput) ([]*domain.AttendanceRecord, error) {
	from, to, err := s.reportRange(in)
	if err != nil {
		return nil, err
	}
	records, _, err := s.attendance.List(ctx, ports.AttendanceFilter{UserID: in.UserID, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("attendance report: %w", err)
	}
	return records, nil
}

// Analytics returns per-day status counts in range, oldest first.
func (s *ReportService) Analytics(ctx context.Context, in ports.ReportInput) ([]domain.DailyStatusCounts, error) {
	from, to, err := s.reportRange(in)
	if err != nil {
		return nil, err
	}
	days, err := s.attendance.DailyCounts(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("attendance analytics: %w", err)
	}
	return days, nil
}

func (s *ReportService) reportRange(in ports.ReportInput) (time.Time, time.Time, error) {
	today := calendar.StartOfDay(in.Now.In(s.loc))
	to := today
	if !in.To.IsZero() {
		to = calendar.StartOfDay(in.To.In(s.loc))
	}
	from := calendar.AddDays(today, -defaultReportDays)
	if !in.From.IsZero() {
		from = calendar.StartOfDay(in.From.In(s.loc))
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, domain.ErrInvalidDateRange
	}
	return from, endOfDay(to), nil
}
