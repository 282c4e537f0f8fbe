package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/officelunch/attendance-api/internal/api/metrics"
	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
)

// AdminHandler serves user management, reporting and the manual headcount
// trigger.
type AdminHandler struct {
	reports  ports.ReportService
	notifier ports.HeadcountNotifier
	loc      *time.Location
	now      clock
}

func NewAdminHandler(reports ports.ReportService, notifier ports.HeadcountNotifier, loc *time.Location, now func() time.Time) *AdminHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{reports: reports, notifier: notifier, loc: loc, now: now}
}

type listUsersResponse struct {
	Users      []*domain.User     `json:"users"`
	Pagination paginationResponse `json:"pagination"`
}

type dashboardResponse struct {
	TotalUsers       int64            `json:"total_users"`
	ActiveUsers      int64            `json:"active_users"`
	TodayOfficeCount int64            `json:"today_office_count"`
	TodayAttendance  map[string]int64 `json:"today_attendance"`
}

type reportResponse struct {
	StartDate string               `json:"start_date"`
	EndDate   string               `json:"end_date"`
	Total     int                  `json:"total"`
	Records   []attendanceResponse `json:"records"`
}

type dailyCountsResponse struct {
	Date   string `json:"date"`
	Office int64  `json:"office"`
	Home   int64  `json:"home"`
	Leave  int64  `json:"leave"`
	Total  int64  `json:"total"`
}

type analyticsResponse struct {
	Days []dailyCountsResponse `json:"days"`
}

type headcountResponse struct {
	RunID       string `json:"run_id,omitempty"`
	Date        string `json:"date"`
	Skipped     bool   `json:"skipped"`
	SkipReason  string `json:"skip_reason,omitempty"`
	OfficeCount int64  `json:"office_count"`
	Recipients  int    `json:"recipients"`
	Sent        int    `json:"sent"`
	Failed      int    `json:"failed"`
}

// ListUsers handles GET /api/admin/users.
//
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role    query     string  false  "admin, employee or chef"
// @Param        search  query     string  false  "Matches name, email or employee id"
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  listUsersResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Router       /api/admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	res, err := h.reports.ListUsers(c.Request().Context(), ports.UserFilter{
		Role:   c.QueryParam("role"),
		Search: c.QueryParam("search"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	})
	if err != nil {
		return err
	}
	users := res.Users
	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, listUsersResponse{
		Users: users,
		Pagination: paginationResponse{
			Page:       res.Page,
			Limit:      res.Limit,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		},
	})
}

// UpdateUser handles PATCH /api/admin/users/:id.
//
// @Summary      Update a user
// @Description  Changes role, active flag or department. Omitted fields are kept.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/admin/users/{id} [patch]
func (h *AdminHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.reports.UpdateUser(c.Request().Context(), c.Param("id"), ports.UserPatch{
		Role:       req.Role,
		IsActive:   req.IsActive,
		Department: req.Department,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DashboardStats handles GET /api/admin/dashboard/stats.
//
// @Summary      Dashboard statistics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  dashboardResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/admin/dashboard/stats [get]
func (h *AdminHandler) DashboardStats(c echo.Context) error {
	stats, err := h.reports.DashboardStats(c.Request().Context(), h.now.now())
	if err != nil {
		return err
	}
	today := make(map[string]int64, len(stats.TodayAttendance))
	for st, n := range stats.TodayAttendance {
		today[string(st)] = n
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		TotalUsers:       stats.TotalUsers,
		ActiveUsers:      stats.ActiveUsers,
		TodayOfficeCount: stats.TodayOfficeCount,
		TodayAttendance:  today,
	})
}

// Reports handles GET /api/admin/attendance/reports.
//
// @Summary      Attendance report
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "YYYY-MM-DD (default 30 days ago)"
// @Param        end_date    query     string  false  "YYYY-MM-DD (default today)"
// @Param        user_id     query     string  false  "Restrict to one user"
// @Success      200         {object}  reportResponse
// @Failure      400         {object}  errorResponse
// @Router       /api/admin/attendance/reports [get]
func (h *AdminHandler) Reports(c echo.Context) error {
	in, err := h.reportInput(c)
	if err != nil {
		return err
	}
	in.UserID = c.QueryParam("user_id")

	records, err := h.reports.AttendanceReport(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reportResponse{
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
		Total:     len(records),
		Records:   toAttendanceResponses(records, h.loc),
	})
}

// Analytics handles GET /api/admin/attendance/analytics.
//
// @Summary      Daily attendance analytics
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "YYYY-MM-DD (default 30 days ago)"
// @Param        end_date    query     string  false  "YYYY-MM-DD (default today)"
// @Success      200         {object}  analyticsResponse
// @Failure      400         {object}  errorResponse
// @Router       /api/admin/attendance/analytics [get]
func (h *AdminHandler) Analytics(c echo.Context) error {
	in, err := h.reportInput(c)
	if err != nil {
		return err
	}

	days, err := h.reports.Analytics(c.Request().Context(), in)
	if err != nil {
		return err
	}
	out := analyticsResponse{Days: make([]dailyCountsResponse, 0, len(days))}
	for _, d := range days {
		out.Days = append(out.Days, dailyCountsResponse{
			Date:   d.Date,
			Office: d.Counts[domain.StatusOffice],
			Home:   d.Counts[domain.StatusHome],
			Leave:  d.Counts[domain.StatusLeave],
			Total:  d.Total,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// TriggerHeadcount handles POST /api/admin/notifications/headcount.
//
// @Summary      Send today's headcount now
// @Description  Notifies the kitchen immediately, regardless of whether the scheduled run already fired.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  headcountResponse
// @Failure      403  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/admin/notifications/headcount [post]
func (h *AdminHandler) TriggerHeadcount(c echo.Context) error {
	start := time.Now()
	summary, err := h.notifier.SendNow(c.Request().Context(), h.now.now())
	metrics.ObserveHeadcount(summary, err, time.Since(start))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, headcountResponse{
		RunID:       summary.RunID,
		Date:        summary.Date.In(h.loc).Format(time.DateOnly),
		Skipped:     summary.Skipped,
		SkipReason:  summary.SkipReason,
		OfficeCount: summary.OfficeCount,
		Recipients:  summary.Recipients,
		Sent:        summary.Sent,
		Failed:      summary.Failed,
	})
}

func (h *AdminHandler) reportInput(c echo.Context) (ports.ReportInput, error) {
	from, err := parseOptionalDate(c.QueryParam("start_date"), h.loc)
	if err != nil {
		return ports.ReportInput{}, err
	}
	to, err := parseOptionalDate(c.QueryParam("end_date"), h.loc)
	if err != nil {
		return ports.ReportInput{}, err
	}
	return ports.ReportInput{From: from, To: to, Now: h.now.now()}, nil
}
