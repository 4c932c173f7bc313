package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Lookup errors. Operations that return these made no change.
	ErrTaskNotFound    = errors.New("task not found")
	ErrSubTaskNotFound = errors.New("subtask not found")
	ErrHabitNotFound   = errors.New("habit not found")
	ErrIndexOutOfRange = errors.New("task index out of range")

	ErrNotificationNotFound = errors.New("notification not found")

	// Validation errors
	ErrInvalidTask        = errors.New("invalid task")
	ErrInvalidEnergyLevel = errors.New("invalid energy level")
	ErrInvalidPermission  = errors.New("invalid notification permission")

	// Collaborator errors
	ErrAIUnavailable           = errors.New("ai service is not configured")
	ErrNotificationUnavailable = errors.New("notifications are not permitted")
)
