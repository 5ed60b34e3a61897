package service

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/callbook-service/internal/domain"
	"github.com/spec-kit/callbook-service/internal/observability"
	"github.com/spec-kit/callbook-service/internal/repository"
	"github.com/spec-kit/callbook-service/internal/telephony"
	"github.com/spec-kit/callbook-service/internal/validation"
	apperrors "github.com/spec-kit/callbook-service/pkg/util/errorutil"
)

// Side effect operations reported to SideEffectFailureFunc.
const (
	OpSaveCall   = "save_call"
	OpLookupCall = "lookup_call"
	OpUpdateCall = "update_call"
)

var callSIDPattern = regexp.MustCompile(`^CA[a-f0-9]{32}$`)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// SideEffectFailureFunc receives failures of call record writes that mirror
// provider state. It must not block.
type SideEffectFailureFunc func(ctx context.Context, op string, err error)

// InitiateResult is returned once the provider accepted a call.
type InitiateResult struct {
	CallSID string
	Status  string
}

// EndResult is returned once the provider ended a call.
type EndResult struct {
	Status string
}

// HistoryQuery filters a caller's call history. Dates are ISO-8601.
type HistoryQuery struct {
	Page      int    `json:"page" validate:"min=1"`
	Limit     int    `json:"limit" validate:"min=1,max=100"`
	Status    string `json:"status" validate:"omitempty,oneof=queued ringing in-progress completed failed busy no-answer canceled"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// CallDependencies bundles collaborators for the call service.
type CallDependencies struct {
	CallRepo            repository.CallRepository
	Provider            telephony.Client
	Logger              *zap.Logger
	Metrics             *observability.Metrics
	OnSideEffectFailure SideEffectFailureFunc
}

// CallService places calls through the provider and keeps call records.
type CallService struct {
	calls    repository.CallRepository
	provider telephony.Client
	logger   *zap.Logger
	onFail   SideEffectFailureFunc
	now      func() time.Time
}

// NewCallService builds the service. Without OnSideEffectFailure, record
// failures are logged and counted.
func NewCallService(deps CallDependencies) *CallService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	onFail := deps.OnSideEffectFailure
	if onFail == nil {
		metrics := deps.Metrics
		onFail = func(_ context.Context, op string, err error) {
			logger.Error("call record side effect failed", zap.String("op", op), zap.Error(err))
			metrics.RecordSideEffectFailure(op)
		}
	}
	return &CallService{
		calls:    deps.CallRepo,
		provider: deps.Provider,
		logger:   logger,
		onFail:   onFail,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// InitiateCall dials phoneNumber on behalf of ownerID. Once the provider has
// accepted the call, failing to record it does not fail the request.
func (s *CallService) InitiateCall(ctx context.Context, ownerID, phoneNumber string) (*InitiateResult, error) {
	phoneNumber = strings.TrimSpace(phoneNumber)
	if phoneNumber == "" {
		return nil, validation.Field("phoneNumber", "is required")
	}

	res, err := s.provider.InitiateCall(ctx, phoneNumber)
	if err != nil {
		s.logger.Warn("call initiation failed", zap.String("user_id", ownerID), zap.Error(err))
		return nil, mapInitiateError(err)
	}

	sid := res.SID
	record := &domain.Call{
		UserID:      ownerID,
		PhoneNumber: phoneNumber,
		CallSID:     &sid,
		Status:      domain.ProviderStatus(res.Status, domain.CallStatusQueued),
		StartTime:   s.now(),
	}
	if err := s.calls.Create(ctx, record); err != nil {
		s.onFail(ctx, OpSaveCall, err)
	}

	return &InitiateResult{CallSID: res.SID, Status: res.Status}, nil
}

// EndCall completes a live call. The matching record, if any, is updated
// best-effort.
func (s *CallService) EndCall(ctx context.Context, callSID string) (*EndResult, error) {
	callSID = strings.TrimSpace(callSID)
	if !callSIDPattern.MatchString(callSID) {
		return nil, validation.Field("callSid",
			`invalid Call SID format. Call SID must start with "CA" followed by 32 hexadecimal characters`)
	}

	res, err := s.provider.EndCall(ctx, callSID)
	if err != nil {
		s.logger.Warn("call ending failed", zap.String("call_sid", callSID), zap.Error(err))
		return nil, mapEndError(err)
	}

	s.reconcile(ctx, callSID, res)
	return &EndResult{Status: res.Status}, nil
}

func (s *CallService) reconcile(ctx context.Context, callSID string, res *telephony.CallResult) {
	record, err := s.calls.GetByCallSID(ctx, callSID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.onFail(ctx, OpLookupCall, err)
		}
		return
	}

	end := s.now()
	record.Status = domain.ProviderStatus(res.Status, record.Status)
	record.EndTime = &end
	if res.Duration != nil {
		d := *res.Duration
		record.Duration = &d
	}
	if err := s.calls.Update(ctx, record); err != nil {
		s.onFail(ctx, OpUpdateCall, err)
	}
}

// History returns one page of the owner's calls, newest first.
func (s *CallService) History(ctx context.Context, ownerID string, q HistoryQuery) ([]domain.Call, domain.Pagination, error) {
	if err := validation.Struct(q); err != nil {
		return nil, domain.Pagination{}, err
	}

	filter := repository.CallFilter{UserID: ownerID}
	if q.Status != "" {
		status := domain.CallStatus(q.Status)
		filter.Status = &status
	}
	if q.StartDate != "" {
		from, err := parseDate(q.StartDate)
		if err != nil {
			return nil, domain.Pagination{}, validation.Field("startDate", "must be a valid ISO 8601 date")
		}
		filter.From = &from
	}
	if q.EndDate != "" {
		to, err := parseDate(q.EndDate)
		if err != nil {
			return nil, domain.Pagination{}, validation.Field("endDate", "must be a valid ISO 8601 date")
		}
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, domain.Pagination{}, validation.Field("endDate", "must be greater than or equal to startDate")
	}

	page := domain.Page{Page: q.Page, Limit: q.Limit}
	filter.Limit = page.Limit
	filter.Offset = page.Offset()

	calls, total, err := s.calls.List(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	return calls, domain.NewPagination(page, total), nil
}

// parseDate accepts RFC 3339 timestamps and bare dates. Values without a
// zone are read as UTC.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func mapInitiateError(err error) error {
	var perr *telephony.Error
	if errors.As(err, &perr) {
		switch {
		case perr.Code == telephony.CodeInvalidToNumber:
			return apperrors.NewValidationError("invalid phone number format", nil)
		case perr.Code == telephony.CodeUnreachableToNumber:
			return apperrors.NewValidationError("to phone number cannot be reached", nil)
		case perr.HTTPStatus == http.StatusUnauthorized:
			return apperrors.NewUnauthorized("invalid provider credentials")
		}
	}
	return apperrors.NewUpstreamError("failed to initiate call: "+providerMessage(err), err)
}

func mapEndError(err error) error {
	var perr *telephony.Error
	if errors.As(err, &perr) && perr.Code == telephony.CodeResourceNotFound {
		return apperrors.NewNotFoundMessage("call not found or already completed")
	}
	return apperrors.NewUpstreamError("failed to end call: "+providerMessage(err), err)
}

// providerMessage exposes provider supplied text only; transport errors may
// carry credentials in URLs.
func providerMessage(err error) string {
	var perr *telephony.Error
	switch {
	case errors.As(err, &perr):
		return perr.Message
	case errors.Is(err, telephony.ErrInvalidResponse):
		return telephony.ErrInvalidResponse.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "provider timed out"
	}
	return "provider request failed"
}
