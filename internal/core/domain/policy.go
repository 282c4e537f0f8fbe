package domain

import (
	"time"
	"unicode/utf8"

	"github.com/officelunch/attendance-api/internal/pkg/calendar"
)

// MarkRequest is a validated-at-the-edge request to mark attendance.
// Date is optional; nil means "today".
type MarkRequest struct {
	ActorID   string
	ActorRole string
	Status    AttendanceStatus
	Date      *time.Time
	Notes     string
}

// MarkTarget is the outcome of the date rules: where a mark will land.
type MarkTarget struct {
	// Date is the effective (possibly rolled) day at local midnight.
	Date        time.Time
	IsFuture    bool
	ForTomorrow bool
}

// Planned reports whether a record created for this target is a plan made
// ahead of its effective date.
func (t MarkTarget) Planned() bool {
	return t.IsFuture || t.ForTomorrow
}

// EvaluateMark applies the date rules to req in order and returns the
// effective target day. It does no I/O. now must already be in the service
// time zone; req.Date is interpreted in now's location.
//
// Order: weekend check on the requested day, past-date gate, then cutoff
// roll (and the roll-to-weekend rejection).
func EvaluateMark(req MarkRequest, now time.Time) (MarkTarget, error) {
	if !req.Status.Valid() {
		return MarkTarget{}, ErrInvalidStatus
	}
	if utf8.RuneCountInString(req.Notes) > MaxNotesLength {
		return MarkTarget{}, ErrNotesTooLong
	}

	requested := now
	if req.Date != nil {
		requested = req.Date.In(now.Location())
	}
	date := calendar.StartOfDay(requested)

	if calendar.IsWeekend(date) {
		return MarkTarget{}, ErrWeekendMarking
	}

	today := calendar.StartOfDay(now)
	isToday := date.Equal(today)
	isFuture := date.After(today)
	isPast := date.Before(today)

	if isPast && req.ActorRole != RoleAdmin {
		return MarkTarget{}, ErrPastDateRestricted
	}

	target := MarkTarget{Date: date, IsFuture: isFuture}
	if isToday && calendar.IsAfterCutoff(now) {
		target.Date = calendar.AddDays(date, 1)
		target.ForTomorrow = true
		if calendar.IsWeekend(target.Date) {
			return MarkTarget{}, ErrCutoffRollToWeekend
		}
	}
	return target, nil
}

// Outcome tags a successful marking decision.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// Decision is the write the engine has decided on. Record is the full
// document to persist; for updates, Entry is the single history entry that
// was appended to it.
type Decision struct {
	Outcome     Outcome
	Record      *AttendanceRecord
	Entry       *ModificationEntry
	ForTomorrow bool
	IsFuture    bool
}

// DecideMark chooses between creating a record and updating existing.
// existing must be the stored record for (req.ActorID, target.Date) or nil.
// The returned record is a copy; existing is not modified.
func DecideMark(target MarkTarget, existing *AttendanceRecord, req MarkRequest, now time.Time) Decision {
	if existing != nil {
		rec := *existing
		rec.ModificationHistory = append([]ModificationEntry(nil), existing.ModificationHistory...)

		entry := ModificationEntry{
			PreviousStatus: existing.Status,
			NewStatus:      req.Status,
			ModifiedAt:     now,
			ModifiedBy:     req.ActorID,
			Reason:         UpdateReasonUser,
		}
		rec.Status = req.Status
		rec.Notes = req.Notes
		rec.MarkedAt = now
		rec.UpdatedAt = now
		rec.ModificationHistory = append(rec.ModificationHistory, entry)

		return Decision{
			Outcome:     OutcomeUpdated,
			Record:      &rec,
			Entry:       &entry,
			ForTomorrow: target.ForTomorrow,
			IsFuture:    target.IsFuture,
		}
	}

	rec := &AttendanceRecord{
		UserID:              req.ActorID,
		Date:                target.Date,
		Status:              req.Status,
		MarkedAt:            now,
		Notes:               req.Notes,
		IsPlanned:           target.Planned(),
		ModificationHistory: []ModificationEntry{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if rec.IsPlanned {
		planned := now
		rec.PlanDate = &planned
	}
	rec.ClassifyLateness()

	return Decision{
		Outcome:     OutcomeCreated,
		Record:      rec,
		ForTomorrow: target.ForTomorrow,
		IsFuture:    target.IsFuture,
	}
}

// Message is the user-facing summary of the decision.
func (d Decision) Message() string {
	switch {
	case d.ForTomorrow && d.Outcome == OutcomeUpdated:
		return "Attendance updated for tomorrow (after 9:30 AM cutoff)"
	case d.ForTomorrow:
		return "Attendance marked for tomorrow (after 9:30 AM cutoff)"
	case d.Outcome == OutcomeUpdated:
		return "Attendance updated successfully"
	case d.IsFuture:
		return "Attendance planned successfully"
	default:
		return "Attendance marked successfully"
	}
}

// CanDelete reports whether a record on date may still be removed by its owner.
func CanDelete(date, now time.Time) bool {
	date = calendar.StartOfDay(date.In(now.Location()))
	today := calendar.StartOfDay(now)
	if date.After(today) {
		return true
	}
	return date.Equal(today) && !calendar.IsAfterCutoff(now)
}
