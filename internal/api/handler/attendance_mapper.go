package handler

import (
	"time"

	"github.com/officelunch/attendance-api/internal/core/domain"
)

// toAttendanceResponse renders a record with its calendar date in loc.
func toAttendanceResponse(r *domain.AttendanceRecord, loc *time.Location) attendanceResponse {
	history := make([]modificationResponse, 0, len(r.ModificationHistory))
	for _, m := range r.ModificationHistory {
		history = append(history, modificationResponse{
			PreviousStatus: string(m.PreviousStatus),
			NewStatus:      string(m.NewStatus),
			ModifiedAt:     m.ModifiedAt,
			ModifiedBy:     m.ModifiedBy,
			Reason:         m.Reason,
		})
	}
	return attendanceResponse{
		ID:                  r.ID,
		UserID:              r.UserID,
		Date:                r.Date.In(loc).Format(time.DateOnly),
		Status:              string(r.Status),
		MarkedAt:            r.MarkedAt,
		IsLateMarking:       r.IsLateMarking,
		Notes:               r.Notes,
		IsPlanned:           r.IsPlanned,
		PlanDate:            r.PlanDate,
		ModificationHistory: history,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func toAttendanceResponses(records []*domain.AttendanceRecord, loc *time.Location) []attendanceResponse {
	out := make([]attendanceResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toAttendanceResponse(r, loc))
	}
	return out
}
