package domain

import "time"

// CallStatus mirrors the provider's call lifecycle.
type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusBusy       CallStatus = "busy"
	CallStatusNoAnswer   CallStatus = "no-answer"
	CallStatusCanceled   CallStatus = "canceled"
)

var callStatuses = []CallStatus{
	CallStatusQueued,
	CallStatusRinging,
	CallStatusInProgress,
	CallStatusCompleted,
	CallStatusFailed,
	CallStatusBusy,
	CallStatusNoAnswer,
	CallStatusCanceled,
}

// Valid reports whether s is a known status.
func (s CallStatus) Valid() bool {
	for _, candidate := range callStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Call is the durable record of a call placed through the provider.
// CallSID is nil until the provider accepts the call; (UserID, CallSID) is
// unique when set.
type Call struct {
	ID          string
	UserID      string
	PhoneNumber string
	CallSID     *string
	Status      CallStatus
	StartTime   time.Time
	EndTime     *time.Time
	Duration    *int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProviderStatus converts a provider reported status, substituting fallback
// for values outside the known set (e.g. "initiated").
func ProviderStatus(raw string, fallback CallStatus) CallStatus {
	if s := CallStatus(raw); s.Valid() {
		return s
	}
	return fallback
}
