package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/officelunch/attendance-api/internal/api/metrics"
	"github.com/officelunch/attendance-api/internal/core/domain"
	"github.com/officelunch/attendance-api/internal/core/ports"
)

// AttendanceHandler handles HTTP requests for a user's own attendance.
type AttendanceHandler struct {
	service ports.AttendanceService
	now     clock
}

func NewAttendanceHandler(service ports.AttendanceService, now func() time.Time) *AttendanceHandler {
	return &AttendanceHandler{service: service, now: now}
}

// Mark handles POST /api/attendance/mark.
//
// @Summary      Mark attendance
// @Description  Declares where the caller works on a day. Omitting date means today; after 09:30 a mark for today applies to the next working day.
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      markRequest  true  "Status (office, home, leave), optional date YYYY-MM-DD and notes"
// @Success      201   {object}  markResponse
// @Success      200   {object}  markResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/attendance/mark [post]
func (h *AttendanceHandler) Mark(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	var req markRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	loc := h.service.Location()
	in := ports.MarkAttendanceInput{
		Actor:  p,
		Status: req.Status,
		Notes:  req.Notes,
		Now:    h.now.now(),
	}
	if req.Date != "" {
		d, err := parseDate(req.Date, loc)
		if err != nil {
			return err
		}
		in.Date = &d
	}

	res, err := h.service.MarkAttendance(c.Request().Context(), in)
	if err != nil {
		if code := domain.CodeOf(err); code != "" {
			metrics.RejectionsTotal.WithLabelValues(code).Inc()
		}
		return err
	}

	metrics.MarksTotal.WithLabelValues(string(res.Outcome), string(res.Record.Status)).Inc()
	if res.ForTomorrow {
		metrics.MarksRolledTotal.Inc()
	}

	status := http.StatusOK
	if res.Outcome == domain.OutcomeCreated {
		status = http.StatusCreated
	}
	return c.JSON(status, markResponse{
		Message:                     res.Message,
		Outcome:                     string(res.Outcome),
		WillBeConsideredForTomorrow: res.ForTomorrow,
		Attendance:                  toAttendanceResponse(res.Record, loc),
	})
}

// Today handles GET /api/attendance/today.
//
// @Summary      Today's attendance status
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  todayResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/attendance/today [get]
func (h *AttendanceHandler) Today(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	st, err := h.service.GetTodayStatus(c.Request().Context(), p.UserID, h.now.now())
	if err != nil {
		return err
	}

	loc := h.service.Location()
	resp := todayResponse{
		CanMarkToday:           st.CanMarkToday,
		NextAvailableDate:      st.NextAvailableDate.In(loc).Format(time.DateOnly),
		IsAfterCutoff:          st.IsAfterCutoff,
		TimeUntilCutoffMinutes: int64(st.TimeUntilCutoff / time.Minute),
		Message:                st.Message,
	}
	if st.Record != nil {
		r := toAttendanceResponse(st.Record, loc)
		resp.Attendance = &r
	}
	return c.JSON(http.StatusOK, resp)
}

// History handles GET /api/attendance/history.
//
// @Summary      Attendance history
// @Description  Caller's records between start_date and end_date (default: last 30 days), newest first.
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Param        page        query     int     false  "Page (default 1)"
// @Param        limit       query     int     false  "Page size (default 30, max 100)"
// @Success      200         {object}  historyResponse
// @Failure      400         {object}  errorResponse
// @Router       /api/attendance/history [get]
func (h *AttendanceHandler) History(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	loc := h.service.Location()
	from, err := parseOptionalDate(c.QueryParam("start_date"), loc)
	if err != nil {
		return err
	}
	to, err := parseOptionalDate(c.QueryParam("end_date"), loc)
	if err != nil {
		return err
	}

	res, err := h.service.GetHistory(c.Request().Context(), ports.HistoryInput{
		UserID: p.UserID,
		From:   from,
		To:     to,
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
		Now:    h.now.now(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, historyResponse{
		Attendance: toAttendanceResponses(res.Records, loc),
		Pagination: paginationResponse{
			Page:       res.Page,
			Limit:      res.Limit,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		},
	})
}

// Stats handles GET /api/attendance/stats.
//
// @Summary      Monthly attendance statistics
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        year   query     int  false  "Year (default current)"
// @Param        month  query     int  false  "Month 1-12 (default current)"
// @Success      200    {object}  domain.AttendanceStats
// @Failure      400    {object}  errorResponse
// @Router       /api/attendance/stats [get]
func (h *AttendanceHandler) Stats(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	now := h.now.now().In(h.service.Location())
	year := queryInt(c, "year", now.Year())
	month := queryInt(c, "month", int(now.Month()))
	if month < 1 || month > 12 {
		return echo.NewHTTPError(http.StatusBadRequest, "month must be between 1 and 12")
	}

	stats, err := h.service.GetStats(c.Request().Context(), p.UserID, year, time.Month(month))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// GetByDate handles GET /api/attendance/date/:date.
//
// @Summary      Attendance for a date
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        date  path      string  true  "YYYY-MM-DD"
// @Success      200   {object}  attendanceResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/attendance/date/{date} [get]
func (h *AttendanceHandler) GetByDate(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	loc := h.service.Location()
	date, err := parseDate(c.Param("date"), loc)
	if err != nil {
		return err
	}

	rec, err := h.service.GetForDate(c.Request().Context(), p.UserID, date)
	if err != nil {
		return err
	}
	if rec == nil {
		return domain.ErrAttendanceNotFound
	}
	return c.JSON(http.StatusOK, toAttendanceResponse(rec, loc))
}

// DeleteByDate handles DELETE /api/attendance/date/:date.
//
// @Summary      Delete attendance for a date
// @Description  Allowed for future dates, or for today before 09:30.
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        date  path      string  true  "YYYY-MM-DD"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/attendance/date/{date} [delete]
func (h *AttendanceHandler) DeleteByDate(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}

	date, err := parseDate(c.Param("date"), h.service.Location())
	if err != nil {
		return err
	}

	if err := h.service.DeleteForDate(c.Request().Context(), p.UserID, date, h.now.now()); err != nil {
		if code := domain.CodeOf(err); code != "" {
			metrics.RejectionsTotal.WithLabelValues(code).Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Attendance deleted successfully"})
}
