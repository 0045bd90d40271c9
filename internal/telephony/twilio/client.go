// Package twilio talks to the Twilio voice platform: access tokens for
// browser calling, TwiML for the voice webhook and the REST call API.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadcall_backend/platform/config"
	"leadcall_backend/platform/logger"
)

const (
	defaultBaseURL = "https://api.twilio.com"
	apiVersion     = "2010-04-01"
)

// Client is created once at process start and shared by every caller.
type Client struct {
	accountSID   string
	authToken    string
	apiKeySID    string
	apiKeySecret string
	twimlAppSID  string
	phoneNumber  string
	region       string
	tokenReady   bool

	baseURL string
	http    *http.Client
	log     *logger.Logger
	now     func() time.Time
}

// NewClient builds a client from configuration. It never fails; missing
// credentials are reported by Configured and RESTConfigured.
func NewClient(cfg config.TwilioConfig, log *logger.Logger) *Client {
	baseURL := strings.TrimRight(cfg.GetTwilioAPIBaseURL(), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		accountSID:   cfg.GetTwilioAccountSID(),
		authToken:    cfg.GetTwilioAuthToken(),
		apiKeySID:    cfg.GetTwilioAPIKeySID(),
		apiKeySecret: cfg.GetTwilioAPIKeySecret(),
		twimlAppSID:  cfg.GetTwilioTwiMLAppSID(),
		phoneNumber:  cfg.GetTwilioPhoneNumber(),
		region:       cfg.GetTwilioRegion(),
		tokenReady:   cfg.IsTwilioConfigured(),
		baseURL:      baseURL,
		http:         &http.Client{Timeout: 15 * time.Second},
		log:          log,
		now:          time.Now,
	}
}

// Configured reports whether access tokens can be issued.
func (c *Client) Configured() bool {
	return c.tokenReady
}

// RESTConfigured reports whether the REST API can be used.
func (c *Client) RESTConfigured() bool {
	return c.accountSID != "" && c.authToken != ""
}

// PhoneNumber is the caller ID used for outgoing calls.
func (c *Client) PhoneNumber() string {
	return c.phoneNumber
}

// APIError is an error document returned by the REST API.
type APIError struct {
	Status   int    `json:"status"`
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("twilio %d (code %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("twilio %d: %s", e.Status, e.Message)
}

// do sends a REST request. form is sent url-encoded for POST requests and as
// the query string otherwise. out, if non-nil, receives the decoded body.
func (c *Client) do(ctx context.Context, method, path string, form url.Values, out any) error {
	if !c.RESTConfigured() {
		return ErrRESTNotConfigured
	}

	endpoint := c.baseURL + "/" + apiVersion + path
	var body io.Reader
	if method == http.MethodGet && len(form) > 0 {
		endpoint += "?" + form.Encode()
	} else if len(form) > 0 {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("twilio request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read twilio response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(data, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode twilio response: %w", err)
	}
	return nil
}

func (c *Client) accountPath() string {
	return "/Accounts/" + url.PathEscape(c.accountSID)
}
