package dto

import (
	"time"

	"github.com/spec-kit/callbook-service/internal/domain"
)

// InitiateCallRequest payload.
type InitiateCallRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

// EndCallRequest payload.
type EndCallRequest struct {
	CallSID string `json:"callSid"`
}

// InitiateCallResponse confirms a call the provider accepted.
type InitiateCallResponse struct {
	Message string `json:"message"`
	CallSID string `json:"callSid"`
	Status  string `json:"status"`
}

// EndCallResponse confirms a call was ended.
type EndCallResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// CallResponse is one history entry.
type CallResponse struct {
	ID          string            `json:"id"`
	PhoneNumber string            `json:"phoneNumber"`
	CallSID     *string           `json:"callSid"`
	Status      domain.CallStatus `json:"status"`
	StartTime   time.Time         `json:"startTime"`
	EndTime     *time.Time        `json:"endTime"`
	Duration    *int              `json:"duration"`
}

// CallHistoryResponse is one page of call history.
type CallHistoryResponse struct {
	Calls      []CallResponse    `json:"calls"`
	Pagination domain.Pagination `json:"pagination"`
}

// NewCallResponse maps a domain call.
func NewCallResponse(c *domain.Call) CallResponse {
	return CallResponse{
		ID:          c.ID,
		PhoneNumber: c.PhoneNumber,
		CallSID:     c.CallSID,
		Status:      c.Status,
		StartTime:   c.StartTime,
		EndTime:     c.EndTime,
		Duration:    c.Duration,
	}
}
