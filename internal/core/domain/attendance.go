package domain

import (
	"time"

	"github.com/officelunch/attendance-api/internal/pkg/calendar"
)

// AttendanceStatus is where an employee works on a given day.
type AttendanceStatus string

const (
	StatusOffice AttendanceStatus = "office"
	StatusHome   AttendanceStatus = "home"
	StatusLeave  AttendanceStatus = "leave"
)

// MaxNotesLength bounds AttendanceRecord.Notes, counted in characters.
const MaxNotesLength = 500

// UpdateReasonUser is recorded on history entries written by a user's own re-mark.
const UpdateReasonUser = "User update"

// AllStatuses lists every valid status in display order.
func AllStatuses() []AttendanceStatus {
	return []AttendanceStatus{StatusOffice, StatusHome, StatusLeave}
}

// Valid reports whether s is one of the known statuses.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusOffice, StatusHome, StatusLeave:
		return true
	}
	return false
}

// ModificationEntry records one overwrite of an attendance record's status.
type ModificationEntry struct {
	PreviousStatus AttendanceStatus `json:"previous_status" bson:"previous_status"`
	NewStatus      AttendanceStatus `json:"new_status" bson:"new_status"`
	ModifiedAt     time.Time        `json:"modified_at" bson:"modified_at"`
	ModifiedBy     string           `json:"modified_by" bson:"modified_by"`
	Reason         string           `json:"reason" bson:"reason"`
}

// AttendanceRecord is one user's declared location for one calendar day.
// (UserID, Date) is unique; Date is always local midnight.
type AttendanceRecord struct {
	ID                  string              `json:"id"`
	UserID              string              `json:"user_id"`
	Date                time.Time           `json:"date"`
	Status              AttendanceStatus    `json:"status"`
	MarkedAt            time.Time           `json:"marked_at"`
	IsLateMarking       bool                `json:"is_late_marking"`
	Notes               string              `json:"notes,omitempty"`
	IsPlanned           bool                `json:"is_planned"`
	PlanDate            *time.Time          `json:"plan_date"`
	ModificationHistory []ModificationEntry `json:"modification_history"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// ClassifyLateness sets IsLateMarking by comparing MarkedAt against 09:30 on
// the record's own Date. For a mark rolled forward past the cutoff the
// boundary is tomorrow's, so such marks normally come out as not late.
func (r *AttendanceRecord) ClassifyLateness() bool {
	r.IsLateMarking = r.MarkedAt.After(calendar.Cutoff(r.Date))
	return r.IsLateMarking
}

// StatusCount is the number of records with a given status.
type StatusCount struct {
	Status AttendanceStatus
	Count  int64
}

// DailyStatusCounts aggregates one calendar day of records.
type DailyStatusCounts struct {
	Date   string // YYYY-MM-DD in the service time zone
	Counts map[AttendanceStatus]int64
	Total  int64
}

// AttendanceStats summarises a user's month.
type AttendanceStats struct {
	TotalDays    int `json:"total_days"`
	Office       int `json:"office"`
	Home         int `json:"home"`
	Leave        int `json:"leave"`
	LateMarkings int `json:"late_markings"`
	Month        int `json:"month"`
	Year         int `json:"year"`
}
