package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/officelunch/attendance-api/internal/core/ports"
	"github.com/officelunch/attendance-api/internal/pkg/calendar"
)

// ChefHandler serves the kitchen's view of the day.
type ChefHandler struct {
	attendance ports.AttendanceService
	now        clock
}

func NewChefHandler(attendance ports.AttendanceService, now func() time.Time) *ChefHandler {
	return &ChefHandler{attendance: attendance, now: now}
}

// TodayCount handles GET /api/chef/today-count.
//
// @Summary      Office headcount
// @Description  Number of employees marked as working from office on a day (default today).
// @Tags         chef
// @Produce      json
// @Security     BearerAuth
// @Param        date  query     string  false  "YYYY-MM-DD"
// @Success      200   {object}  countResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /api/chef/today-count [get]
func (h *ChefHandler) TodayCount(c echo.Context) error {
	loc := h.attendance.Location()
	date, err := parseOptionalDate(c.QueryParam("date"), loc)
	if err != nil {
		return err
	}
	if date.IsZero() {
		date = calendar.StartOfDay(h.now.now().In(loc))
	}

	count, err := h.attendance.GetOfficeCount(c.Request().Context(), date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, countResponse{Date: date.Format(time.DateOnly), Count: count})
}
