package twilio

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Call statuses reported by the REST API.
const (
	StatusQueued     = "queued"
	StatusInitiated  = "initiated"
	StatusRinging    = "ringing"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusBusy       = "busy"
	StatusNoAnswer   = "no-answer"
	StatusCanceled   = "canceled"
	StatusFailed     = "failed"
)

// CallResource is a call as returned by the REST API.
type CallResource struct {
	SID          string  `json:"sid"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	Status       string  `json:"status"`
	Direction    string  `json:"direction"`
	Duration     *string `json:"duration"`
	StartTime    *string `json:"start_time"`
	EndTime      *string `json:"end_time"`
	Price        *string `json:"price"`
	PriceUnit    *string `json:"price_unit"`
	ErrorCode    *int    `json:"error_code,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

// Account is the subset of the account resource used for credential checks.
type Account struct {
	SID          string `json:"sid"`
	FriendlyName string `json:"friendly_name"`
	Status       string `json:"status"`
	Type         string `json:"type"`
}

type callPage struct {
	Calls []CallResource `json:"calls"`
}

// ListCalls returns the most recent calls, newest first.
func (c *Client) ListCalls(ctx context.Context, limit int) ([]CallResource, error) {
	if limit < 1 {
		limit = 10
	}
	var page callPage
	form := url.Values{"PageSize": {strconv.Itoa(limit)}}
	if err := c.do(ctx, http.MethodGet, c.accountPath()+"/Calls.json", form, &page); err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	return page.Calls, nil
}

// CreateCall places an outbound call to to that runs twiml once answered.
// The configured phone number is the caller ID.
func (c *Client) CreateCall(ctx context.Context, to, twiml string) (CallResource, error) {
	if c.phoneNumber == "" {
		return CallResource{}, errors.New("twilio phone number is not configured")
	}
	form := url.Values{
		"To":    {CleanNumber(to)},
		"From":  {c.phoneNumber},
		"Twiml": {twiml},
	}
	var call CallResource
	if err := c.do(ctx, http.MethodPost, c.accountPath()+"/Calls.json", form, &call); err != nil {
		return CallResource{}, fmt.Errorf("create call: %w", err)
	}
	c.log.Info("twilio call created", "callSid", call.SID, "status", call.Status)
	return call, nil
}

// FetchCall returns the current state of a call.
func (c *Client) FetchCall(ctx context.Context, sid string) (CallResource, error) {
	var call CallResource
	if err := c.do(ctx, http.MethodGet, c.accountPath()+"/Calls/"+url.PathEscape(sid)+".json", nil, &call); err != nil {
		return CallResource{}, fmt.Errorf("fetch call: %w", err)
	}
	return call, nil
}

// HangUpCall ends a call in any state.
func (c *Client) HangUpCall(ctx context.Context, sid string) error {
	form := url.Values{"Status": {StatusCompleted}}
	if err := c.do(ctx, http.MethodPost, c.accountPath()+"/Calls/"+url.PathEscape(sid)+".json", form, nil); err != nil {
		return fmt.Errorf("hang up call: %w", err)
	}
	return nil
}

// FetchAccount returns the account the credentials belong to.
func (c *Client) FetchAccount(ctx context.Context) (Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, c.accountPath()+".json", nil, &account); err != nil {
		return Account{}, fmt.Errorf("fetch account: %w", err)
	}
	return account, nil
}
