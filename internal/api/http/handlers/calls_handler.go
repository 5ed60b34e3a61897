package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/callbook-service/internal/api/dto"
	"github.com/spec-kit/callbook-service/internal/service"
)

// CallsHandler exposes call control and history.
type CallsHandler struct {
	calls Calls
}

// NewCallsHandler constructs handler.
func NewCallsHandler(calls Calls) *CallsHandler {
	return &CallsHandler{calls: calls}
}

// Initiate POST /initiateCall.
func (h *CallsHandler) Initiate(c *fiber.Ctx) error {
	creds, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.InitiateCallRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.calls.InitiateCall(c.UserContext(), creds.ID, req.PhoneNumber)
	if err != nil {
		return err
	}
	return c.JSON(dto.InitiateCallResponse{
		Message: "Call initiated successfully",
		CallSID: res.CallSID,
		Status:  res.Status,
	})
}

// End POST /endCall.
func (h *CallsHandler) End(c *fiber.Ctx) error {
	if _, err := caller(c); err != nil {
		return err
	}
	var req dto.EndCallRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	res, err := h.calls.EndCall(c.UserContext(), req.CallSID)
	if err != nil {
		return err
	}
	return c.JSON(dto.EndCallResponse{Message: "Call ended successfully", Status: res.Status})
}

// History GET /calls/history.
func (h *CallsHandler) History(c *fiber.Ctx) error {
	creds, err := caller(c)
	if err != nil {
		return err
	}
	page, limit, err := pageParams(c)
	if err != nil {
		return err
	}

	calls, pagination, err := h.calls.History(c.UserContext(), creds.ID, service.HistoryQuery{
		Page:      page,
		Limit:     limit,
		Status:    c.Query("status"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	})
	if err != nil {
		return err
	}
	items := make([]dto.CallResponse, 0, len(calls))
	for i := range calls {
		items = append(items, dto.NewCallResponse(&calls[i]))
	}
	return c.JSON(dto.CallHistoryResponse{Calls: items, Pagination: pagination})
}
