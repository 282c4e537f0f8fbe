package handler

import "time"

// errorResponse documents the envelope rendered by the central error handler.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Request types ---

// Status and notes are checked by the marking policy so each failure keeps
// its own code.
type markRequest struct {
	Status string `json:"status" validate:"required"`
	Date   string `json:"date,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// registerRequest is the public sign-up form. Admin accounts are granted
// through PATCH /api/admin/users/:id, never self-assigned.
type registerRequest struct {
	Name       string `json:"name"        validate:"required"`
	Email      string `json:"email"       validate:"required,email"`
	Password   string `json:"password"    validate:"required,min=6"`
	Role       string `json:"role"        validate:"omitempty,oneof=employee chef"`
	Department string `json:"department"`
	EmployeeID string `json:"employee_id"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type notificationPreferencesRequest struct {
	FCMToken           *string `json:"fcm_token,omitempty"`
	EmailNotifications *bool   `json:"email_notifications,omitempty"`
	PushNotifications  *bool   `json:"push_notifications,omitempty"`
}

type updateUserRequest struct {
	Role       *string `json:"role,omitempty"       validate:"omitempty,oneof=admin employee chef"`
	IsActive   *bool   `json:"is_active,omitempty"`
	Department *string `json:"department,omitempty"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract does not follow
// internal type changes.

type modificationResponse struct {
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ModifiedAt     time.Time `json:"modified_at"`
	ModifiedBy     string    `json:"modified_by"`
	Reason         string    `json:"reason"`
}

type attendanceResponse struct {
	ID                  string                 `json:"id"`
	UserID              string                 `json:"user_id"`
	Date                string                 `json:"date"`
	Status              string                 `json:"status"`
	MarkedAt            time.Time              `json:"marked_at"`
	IsLateMarking       bool                   `json:"is_late_marking"`
	Notes               string                 `json:"notes,omitempty"`
	IsPlanned           bool                   `json:"is_planned"`
	PlanDate            *time.Time             `json:"plan_date"`
	ModificationHistory []modificationResponse `json:"modification_history"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

type markResponse struct {
	Message                     string             `json:"message"`
	Outcome                     string             `json:"outcome"`
	WillBeConsideredForTomorrow bool               `json:"will_be_considered_for_tomorrow"`
	Attendance                  attendanceResponse `json:"attendance"`
}

type todayResponse struct {
	Attendance             *attendanceResponse `json:"attendance"`
	CanMarkToday           bool                `json:"can_mark_today"`
	NextAvailableDate      string              `json:"next_available_date"`
	IsAfterCutoff          bool                `json:"is_after_cutoff"`
	TimeUntilCutoffMinutes int64               `json:"time_until_cutoff_minutes"`
	Message                string              `json:"message"`
}

type paginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type historyResponse struct {
	Attendance []attendanceResponse `json:"attendance"`
	Pagination paginationResponse   `json:"pagination"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type countResponse struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
