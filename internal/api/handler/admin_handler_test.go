package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
)

type stubReportService struct {
	listFn    func(ctx context.Context, filter ports.UserFilter) (*ports.ListUsersResult, error)
	updateFn  func(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error)
	reportIn  ports.ReportInput
	reportErr error
	records   []*domain.AttendanceRecord
	daily     []domain.DailyStatusCounts
	dashboard *ports.DashboardStats
}

func (s *stubReportService) ListUsers(ctx context.Context, filter ports.UserFilter) (*ports.ListUsersResult, error) {
	return s.listFn(ctx, filter)
}

func (s *stubReportService) UpdateUser(ctx context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubReportService) DashboardStats(context.Context, time.Time) (*ports.DashboardStats, error) {
	return s.dashboard, nil
}

func (s *stubReportService) AttendanceReport(_ context.Context, in ports.ReportInput) ([]*domain.AttendanceRecord, error) {
	s.reportIn = in
	return s.records, s.reportErr
}

func (s *stubReportService) Analytics(_ context.Context, in ports.ReportInput) ([]domain.DailyStatusCounts, error) {
	s.reportIn = in
	return s.daily, s.reportErr
}

type stubHeadcountNotifier struct {
	summary *domain.NotifySummary
	err     error
	calls   int
}

func (n *stubHeadcountNotifier) Run(context.Context, time.Time) (*domain.NotifySummary, error) {
	return nil, errors.New("scheduled runs are not triggered over http")
}

func (n *stubHeadcountNotifier) SendNow(context.Context, time.Time) (*domain.NotifySummary, error) {
	n.calls++
	return n.summary, n.err
}

func newAdminHandler(reports *stubReportService, notifier *stubHeadcountNotifier) *AdminHandler {
	return NewAdminHandler(reports, notifier, wib, fixedClock)
}

func TestAdminHandler_ListUsers(t *testing.T) {
	reports := &stubReportService{
		listFn: func(_ context.Context, f ports.UserFilter) (*ports.ListUsersResult, error) {
			if f.Role != "chef" || f.Search != "mike" || f.Page != 1 || f.Limit != 0 {
				t.Fatalf("unexpected filter: %+v", f)
			}
			return &ports.ListUsersResult{
				Users: []*domain.User{{ID: "c1", Name: "Chef Mike", Role: domain.RoleChef}},
				Total: 1, Page: 1, Limit: 20, TotalPages: 1,
			}, nil
		},
	}
	handler := newAdminHandler(reports, &stubHeadcountNotifier{})

	c, rec := newTestContext(http.MethodGet, "/api/admin/users?role=chef&search=mike", "")
	if err := handler.ListUsers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decode(t, rec)
	if len(resp["users"].([]any)) != 1 {
		t.Fatalf("expected one user: %v", resp)
	}
	if resp["pagination"].(map[string]any)["limit"] != float64(20) {
		t.Fatalf("unexpected pagination: %v", resp["pagination"])
	}
}

func TestAdminHandler_UpdateUser(t *testing.T) {
	reports := &stubReportService{
		updateFn: func(_ context.Context, id string, patch ports.UserPatch) (*domain.User, error) {
			if id != "u9" || patch.IsActive == nil || *patch.IsActive || patch.Role != nil {
				t.Fatalf("unexpected patch for %s: %+v", id, patch)
			}
			return &domain.User{ID: id, IsActive: false}, nil
		},
	}
	handler := newAdminHandler(reports, &stubHeadcountNotifier{})

	c, rec := newTestContext(http.MethodPatch, "/", `{"is_active":false}`)
	c.SetParamNames("id")
	c.SetParamValues("u9")
	if err := handler.UpdateUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if decode(t, rec)["is_active"] != false {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAdminHandler_UpdateUser_InvalidRole(t *testing.T) {
	handler := newAdminHandler(&stubReportService{}, &stubHeadcountNotifier{})

	c, _ := newTestContext(http.MethodPatch, "/", `{"role":"superuser"}`)
	c.SetParamNames("id")
	c.SetParamValues("u9")
	if err := handler.UpdateUser(c); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestAdminHandler_DashboardStats(t *testing.T) {
	reports := &stubReportService{dashboard: &ports.DashboardStats{
		TotalUsers: 10, ActiveUsers: 8, TodayOfficeCount: 4,
		TodayAttendance: map[domain.AttendanceStatus]int64{domain.StatusOffice: 4, domain.StatusHome: 2, domain.StatusLeave: 0},
	}}
	handler := newAdminHandler(reports, &stubHeadcountNotifier{})

	c, rec := newTestContext(http.MethodGet, "/api/admin/dashboard/stats", "")
	if err := handler.DashboardStats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decode(t, rec)
	today := resp["today_attendance"].(map[string]any)
	if resp["today_office_count"] != float64(4) || today["home"] != float64(2) || today["leave"] != float64(0) {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestAdminHandler_Reports(t *testing.T) {
	reports := &stubReportService{records: []*domain.AttendanceRecord{sampleRecord(16, domain.StatusOffice)}}
	handler := newAdminHandler(reports, &stubHeadcountNotifier{})

	c, rec := newTestContext(http.MethodGet, "/api/admin/attendance/reports?start_date=2026-02-01&end_date=2026-02-16&user_id=u1", "")
	if err := handler.Reports(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if reports.reportIn.UserID != "u1" || !reports.reportIn.From.Equal(time.Date(2026, time.February, 1, 0, 0, 0, 0, wib)) {
		t.Fatalf("unexpected input: %+v", reports.reportIn)
	}
	if decode(t, rec)["total"] != float64(1) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAdminHandler_Reports_InvalidRange(t *testing.T) {
	reports := &stubReportService{reportErr: domain.ErrInvalidDateRange}
	handler := newAdminHandler(reports, &stubHeadcountNotifier{})

	c, _ := newTestContext(http.MethodGet, "/api/admin/attendance/reports?start_date=2026-02-16&end_date=2026-02-01", "")
	if err := handler.Reports(c); !errors.Is(err, domain.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestAdminHandler_Analytics(t *testing.T) {
	reports := &stubReportService{daily: []domain.DailyStatusCounts{
		{Date: "2026-02-16", Counts: map[domain.AttendanceStatus]int64{domain.StatusOffice: 3, domain.StatusHome: 1}, Total: 4},
	}}
	handler := newAdminHandler(reports, &stubHeadcountNotifier{})

	c, rec := newTestContext(http.MethodGet, "/api/admin/attendance/analytics", "")
	if err := handler.Analytics(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	day := decode(t, rec)["days"].([]any)[0].(map[string]any)
	if day["office"] != float64(3) || day["leave"] != float64(0) || day["total"] != float64(4) {
		t.Fatalf("unexpected day: %v", day)
	}
}

func TestAdminHandler_TriggerHeadcount(t *testing.T) {
	notifier := &stubHeadcountNotifier{summary: &domain.NotifySummary{
		RunID:       "run-1",
		Date:        time.Date(2026, time.February, 16, 0, 0, 0, 0, wib),
		OfficeCount: 12, Recipients: 2, Sent: 3,
	}}
	handler := newAdminHandler(&stubReportService{}, notifier)

	c, rec := newTestContext(http.MethodPost, "/api/admin/notifications/headcount", "")
	if err := handler.TriggerHeadcount(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decode(t, rec)
	if notifier.calls != 1 || resp["office_count"] != float64(12) || resp["date"] != "2026-02-16" || resp["sent"] != float64(3) {
		t.Fatalf("unexpected body: %v", resp)
	}
}

func TestAdminHandler_TriggerHeadcount_Error(t *testing.T) {
	notifier := &stubHeadcountNotifier{err: domain.ErrUnavailable}
	handler := newAdminHandler(&stubReportService{}, notifier)

	c, _ := newTestContext(http.MethodPost, "/api/admin/notifications/headcount", "")
	if err := handler.TriggerHeadcount(c); !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
