package telephony

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/carlmjohnson/requests"

	"github.com/spec-kit/callbook-service/internal/config"
)

const apiVersion = "2010-04-01"

// Provider error codes surfaced by the REST API.
const (
	CodeInvalidToNumber     = 21211
	CodeUnreachableToNumber = 21214
	CodeResourceNotFound    = 20404
)

// ErrInvalidResponse is returned when the provider answers 2xx without a call sid.
var ErrInvalidResponse = errors.New("invalid response from provider")

// Error is a non-2xx provider answer.
type Error struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"status"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("telephony provider error %d (http %d): %s", e.Code, e.HTTPStatus, e.Message)
}

// CallResult is the provider's view of a call.
type CallResult struct {
	SID      string
	Status   string
	Duration *int
}

// Client places and terminates outbound calls.
type Client interface {
	InitiateCall(ctx context.Context, to string) (*CallResult, error)
	EndCall(ctx context.Context, callSID string) (*CallResult, error)
}

// TwilioClient talks to the Twilio REST API.
type TwilioClient struct {
	cfg  config.TwilioConfig
	http *http.Client
}

var _ Client = (*TwilioClient)(nil)

// NewTwilioClient builds a client using the configured timeout.
func NewTwilioClient(cfg config.TwilioConfig) *TwilioClient {
	return &TwilioClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout()},
	}
}

// twilioCall mirrors the subset of the call resource we read. Duration is
// sent as a string and is null until the call ends.
type twilioCall struct {
	SID      string  `json:"sid"`
	Status   string  `json:"status"`
	Duration *string `json:"duration"`
}

// InitiateCall dials the target number from the configured caller id.
func (t *TwilioClient) InitiateCall(ctx context.Context, to string) (*CallResult, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.cfg.PhoneNumber)
	form.Set("Url", t.cfg.VoiceURL)

	return t.post(ctx, form, "/%s/Accounts/%s/Calls.json", apiVersion, t.cfg.AccountSID)
}

// EndCall moves an in-flight call to completed.
func (t *TwilioClient) EndCall(ctx context.Context, callSID string) (*CallResult, error) {
	form := url.Values{}
	form.Set("Status", "completed")

	return t.post(ctx, form, "/%s/Accounts/%s/Calls/%s.json", apiVersion, t.cfg.AccountSID, callSID)
}

func (t *TwilioClient) post(ctx context.Context, form url.Values, pathFormat string, args ...any) (*CallResult, error) {
	var resp twilioCall
	err := requests.
		URL(t.cfg.BaseURL).
		Pathf(pathFormat, args...).
		Client(t.http).
		BasicAuth(t.cfg.AccountSID, t.cfg.AuthToken).
		BodyForm(form).
		AddValidator(providerError).
		ToJSON(&resp).
		Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if resp.SID == "" {
		return nil, ErrInvalidResponse
	}

	result := &CallResult{SID: resp.SID, Status: resp.Status}
	if resp.Duration != nil {
		if d, err := strconv.Atoi(strings.TrimSpace(*resp.Duration)); err == nil {
			result.Duration = &d
		}
	}
	return result, nil
}

func providerError(res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	perr := &Error{HTTPStatus: res.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err := json.Unmarshal(body, perr); err != nil || perr.Message == "" {
		perr.Message = http.StatusText(res.StatusCode)
	}
	perr.HTTPStatus = res.StatusCode
	return perr
}
