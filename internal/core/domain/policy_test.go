package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// February 2026: Mon 16, Tue 17, Wed 18, Thu 19, Fri 20, Sat 21, Sun 22.
func at(d, hh, mm int) time.Time {
	return time.Date(2026, 2, d, hh, mm, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func employeeReq(status AttendanceStatus, date *time.Time) MarkRequest {
	return MarkRequest{ActorID: "u1", ActorRole: RoleEmployee, Status: status, Date: date}
}

func TestEvaluateMark_TodayBeforeCutoff(t *testing.T) {
	target, err := EvaluateMark(employeeReq(StatusOffice, nil), at(17, 8, 0))
	require.NoError(t, err)

	assert.Equal(t, at(17, 0, 0), target.Date)
	assert.False(t, target.ForTomorrow)
	assert.False(t, target.IsFuture)
	assert.False(t, target.Planned())
}

func TestEvaluateMark_CutoffRollsToNextDay(t *testing.T) {
	for _, d := range []int{16, 17, 18, 19} {
		target, err := EvaluateMark(employeeReq(StatusHome, nil), at(d, 10, 0))
		require.NoError(t, err)
		assert.Equal(t, at(d+1, 0, 0), target.Date)
		assert.True(t, target.ForTomorrow)
		assert.True(t, target.Planned())
	}
}

func TestEvaluateMark_ExplicitTodayAlsoRolls(t *testing.T) {
	target, err := EvaluateMark(employeeReq(StatusOffice, ptr(at(19, 0, 0))), at(19, 9, 31))
	require.NoError(t, err)
	assert.Equal(t, at(20, 0, 0), target.Date)
	assert.True(t, target.ForTomorrow)
}

func TestEvaluateMark_FridayAfterCutoffRejected(t *testing.T) {
	_, err := EvaluateMark(employeeReq(StatusOffice, nil), at(20, 10, 0))
	assert.ErrorIs(t, err, ErrCutoffRollToWeekend)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEvaluateMark_WeekendRejectedBeforeOtherRules(t *testing.T) {
	// A past weekend day by a non-admin reports the weekend rule, not the past-date gate.
	_, err := EvaluateMark(employeeReq(StatusOffice, ptr(at(14, 0, 0))), at(17, 8, 0))
	assert.ErrorIs(t, err, ErrWeekendMarking)

	_, err = EvaluateMark(employeeReq(StatusOffice, ptr(at(21, 15, 0))), at(17, 8, 0))
	assert.ErrorIs(t, err, ErrWeekendMarking)
}

func TestEvaluateMark_PastDateGate(t *testing.T) {
	for _, status := range AllStatuses() {
		req := employeeReq(status, ptr(at(16, 0, 0)))
		req.Notes = "anything"
		_, err := EvaluateMark(req, at(17, 8, 0))
		assert.ErrorIs(t, err, ErrPastDateRestricted)
		assert.ErrorIs(t, err, ErrForbidden)
	}

	chef := MarkRequest{ActorID: "c1", ActorRole: RoleChef, Status: StatusOffice, Date: ptr(at(16, 0, 0))}
	_, err := EvaluateMark(chef, at(17, 8, 0))
	assert.ErrorIs(t, err, ErrPastDateRestricted)
}

func TestEvaluateMark_AdminMayMarkPast(t *testing.T) {
	req := MarkRequest{ActorID: "a1", ActorRole: RoleAdmin, Status: StatusLeave, Date: ptr(at(16, 0, 0))}
	target, err := EvaluateMark(req, at(17, 15, 0))
	require.NoError(t, err)
	assert.Equal(t, at(16, 0, 0), target.Date)
	assert.False(t, target.ForTomorrow, "past dates never roll")
	assert.False(t, target.Planned())
}

func TestEvaluateMark_FutureDateNotRolled(t *testing.T) {
	target, err := EvaluateMark(employeeReq(StatusOffice, ptr(at(23, 18, 0))), at(19, 11, 0))
	require.NoError(t, err)
	assert.Equal(t, at(23, 0, 0), target.Date)
	assert.True(t, target.IsFuture)
	assert.False(t, target.ForTomorrow)
}

func TestEvaluateMark_InputValidation(t *testing.T) {
	_, err := EvaluateMark(employeeReq("remote", nil), at(17, 8, 0))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	req := employeeReq(StatusOffice, nil)
	req.Notes = strings.Repeat("é", MaxNotesLength)
	_, err = EvaluateMark(req, at(17, 8, 0))
	assert.NoError(t, err, "limit counts characters, not bytes")

	req.Notes += "x"
	_, err = EvaluateMark(req, at(17, 8, 0))
	assert.ErrorIs(t, err, ErrNotesTooLong)
}

func TestEvaluateMark_DateInterpretedInServiceZone(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	now := time.Date(2026, 2, 17, 8, 0, 0, 0, loc)
	// 2026-02-16T20:00Z is already Tuesday 01:30 in IST.
	target, err := EvaluateMark(employeeReq(StatusOffice, ptr(time.Date(2026, 2, 16, 20, 0, 0, 0, time.UTC))), now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 17, 0, 0, 0, 0, loc), target.Date)
}

func TestDecideMark_Create(t *testing.T) {
	now := at(17, 8, 0)
	target := MarkTarget{Date: at(17, 0, 0)}
	d := DecideMark(target, nil, employeeReq(StatusOffice, nil), now)

	assert.Equal(t, OutcomeCreated, d.Outcome)
	assert.Nil(t, d.Entry)
	assert.Equal(t, "u1", d.Record.UserID)
	assert.Equal(t, now, d.Record.MarkedAt)
	assert.False(t, d.Record.IsLateMarking)
	assert.False(t, d.Record.IsPlanned)
	assert.Nil(t, d.Record.PlanDate)
	assert.Empty(t, d.Record.ModificationHistory)
	assert.Equal(t, "Attendance marked successfully", d.Message())
}

func TestDecideMark_CreateLateForPastDate(t *testing.T) {
	now := at(17, 15, 0)
	d := DecideMark(MarkTarget{Date: at(16, 0, 0)}, nil, MarkRequest{ActorID: "a1", ActorRole: RoleAdmin, Status: StatusHome}, now)
	assert.True(t, d.Record.IsLateMarking)
}

// A rolled mark is compared with tomorrow's 09:30, so a mark made at 10:00
// today is stored as not late even though it missed today's cutoff.
func TestDecideMark_RolledMarkIsNotLate(t *testing.T) {
	now := at(19, 10, 0)
	target, err := EvaluateMark(employeeReq(StatusOffice, nil), now)
	require.NoError(t, err)

	d := DecideMark(target, nil, employeeReq(StatusOffice, nil), now)
	assert.False(t, d.Record.IsLateMarking)
	assert.True(t, d.Record.IsPlanned)
	require.NotNil(t, d.Record.PlanDate)
	assert.Equal(t, now, *d.Record.PlanDate)
	assert.Equal(t, "Attendance marked for tomorrow (after 9:30 AM cutoff)", d.Message())
}

func TestDecideMark_PlannedFuture(t *testing.T) {
	d := DecideMark(MarkTarget{Date: at(23, 0, 0), IsFuture: true}, nil, employeeReq(StatusLeave, nil), at(19, 11, 0))
	assert.True(t, d.Record.IsPlanned)
	assert.Equal(t, "Attendance planned successfully", d.Message())
}

func TestDecideMark_UpdateAppendsOneEntry(t *testing.T) {
	existing := &AttendanceRecord{
		ID:       "r1",
		UserID:   "u1",
		Date:     at(17, 0, 0),
		Status:   StatusOffice,
		MarkedAt: at(17, 8, 0),
		Notes:    "old",
		ModificationHistory: []ModificationEntry{
			{PreviousStatus: StatusHome, NewStatus: StatusOffice},
		},
	}
	now := at(17, 10, 0)
	req := employeeReq(StatusHome, nil)
	req.Notes = "new"

	d := DecideMark(MarkTarget{Date: at(17, 0, 0)}, existing, req, now)

	require.Equal(t, OutcomeUpdated, d.Outcome)
	require.Len(t, d.Record.ModificationHistory, 2)
	assert.Len(t, existing.ModificationHistory, 1, "existing record must not be mutated")
	assert.Equal(t, StatusOffice, existing.Status)

	entry := d.Record.ModificationHistory[1]
	assert.Equal(t, *d.Entry, entry)
	assert.Equal(t, StatusOffice, entry.PreviousStatus)
	assert.Equal(t, StatusHome, entry.NewStatus)
	assert.Equal(t, "u1", entry.ModifiedBy)
	assert.Equal(t, now, entry.ModifiedAt)
	assert.Equal(t, UpdateReasonUser, entry.Reason)
	assert.Equal(t, "new", d.Record.Notes)
	assert.Equal(t, now, d.Record.MarkedAt)
	assert.Equal(t, "Attendance updated successfully", d.Message())
}

func TestDecideMark_UpdateForTomorrowMessage(t *testing.T) {
	existing := &AttendanceRecord{UserID: "u1", Date: at(18, 0, 0), Status: StatusHome}
	d := DecideMark(MarkTarget{Date: at(18, 0, 0), ForTomorrow: true}, existing, employeeReq(StatusOffice, nil), at(17, 12, 0))
	assert.Equal(t, "Attendance updated for tomorrow (after 9:30 AM cutoff)", d.Message())
}

func TestCanDelete(t *testing.T) {
	cases := []struct {
		name string
		date time.Time
		now  time.Time
		want bool
	}{
		{"future", at(18, 0, 0), at(17, 23, 0), true},
		{"today before cutoff", at(17, 0, 0), at(17, 9, 0), true},
		{"today at cutoff", at(17, 0, 0), at(17, 9, 30), true},
		{"today after cutoff", at(17, 0, 0), at(17, 9, 31), false},
		{"past", at(16, 0, 0), at(17, 8, 0), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanDelete(tc.date, tc.now))
		})
	}
}

func TestRuleError_Unwrap(t *testing.T) {
	var err error = ErrDeleteWindowClosed
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrInvalidRequest))
	assert.Equal(t, "delete_window_closed", CodeOf(err))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}
