package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"leadcall_backend/internal/telephony/transport"
	"leadcall_backend/internal/telephony/twilio"
	"leadcall_backend/platform/httpkit"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type testConfig struct {
	accountSID, authToken, keySID, keySecret, appSID, phone, baseURL string
}

func (c testConfig) GetTwilioAccountSID() string   { return c.accountSID }
func (c testConfig) GetTwilioAuthToken() string    { return c.authToken }
func (c testConfig) GetTwilioAPIKeySID() string    { return c.keySID }
func (c testConfig) GetTwilioAPIKeySecret() string { return c.keySecret }
func (c testConfig) GetTwilioTwiMLAppSID() string  { return c.appSID }
func (c testConfig) GetTwilioPhoneNumber() string  { return c.phone }
func (c testConfig) GetTwilioRegion() string       { return "ie1" }
func (c testConfig) GetTwilioAPIBaseURL() string   { return c.baseURL }
func (c testConfig) IsTwilioConfigured() bool {
	return c.accountSID != "" && c.accountSID != "your_account_sid" && c.keySID != "" && c.keySecret != ""
}

var configured = testConfig{
	accountSID: "AC1234567890",
	authToken:  "auth",
	keySID:     "SK1234567890",
	keySecret:  "secret",
	appSID:     "AP1234567890",
	phone:      "+4930999",
}

func newEngine(cfg testConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewWriter("production", io.Discard)
	h := New(twilio.NewClient(cfg, log), cfg, validator.New(), log)

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/twilio"))
	h.RegisterWebhooks(engine.Group("/api/twilio"))
	return engine
}

func get(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postVoice(engine *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/twilio/voice", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestTokenNotConfigured(t *testing.T) {
	for _, cfg := range []testConfig{{}, {accountSID: "your_account_sid", keySID: "SK", keySecret: "x"}} {
		rec := get(newEngine(cfg), "/api/twilio/token")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
		var resp httpkit.ErrorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Error != "Twilio not configured" {
			t.Fatalf("unexpected error: %q", resp.Error)
		}
	}
}

func TestTokenDefaultsIdentity(t *testing.T) {
	engine := newEngine(configured)

	var resp transport.TokenResponse
	rec := get(engine, "/api/twilio/token")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Identity != "default-user" || resp.Token == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	rec = get(engine, "/api/twilio/token?identity=anna")
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Identity != "anna" {
		t.Fatalf("expected identity anna, got %q", resp.Identity)
	}
}

func TestVoiceWebhook(t *testing.T) {
	engine := newEngine(configured)

	rec := postVoice(engine, url.Values{"To": {"+49 89 1234567"}})
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get("Content-Type"), "application/xml") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), `<Dial callerId="+4930999">+49891234567</Dial>`) {
		t.Fatalf("unexpected twiml: %s", rec.Body.String())
	}

	rec = postVoice(engine, url.Values{})
	if !strings.Contains(rec.Body.String(), "<Say>No phone number provided</Say>") {
		t.Fatalf("expected spoken error, got %s", rec.Body.String())
	}
}

func TestVoiceWebhookWithoutCallerID(t *testing.T) {
	cfg := configured
	cfg.phone = ""
	rec := postVoice(newEngine(cfg), url.Values{"To": {"+49891234567"}})
	if !strings.Contains(rec.Body.String(), "<Say>") || strings.Contains(rec.Body.String(), "<Dial") {
		t.Fatalf("expected spoken error without caller id, got %s", rec.Body.String())
	}
}

func TestDebugRedactsSecrets(t *testing.T) {
	rec := get(newEngine(configured), "/api/twilio/debug")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp transport.DebugResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)

	if resp.Config["TWILIO_ACCOUNT_SID"] != "AC1234..." || resp.Config["TWILIO_AUTH_TOKEN"] != "SET (hidden)" {
		t.Fatalf("unexpected config: %v", resp.Config)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatal("secret leaked")
	}
	if !strings.HasPrefix(resp.TokenTest, "SUCCESS") {
		t.Fatalf("expected token self-test to succeed, got %q", resp.TokenTest)
	}
}

func TestTestTwiML(t *testing.T) {
	rec := get(newEngine(configured), "/api/twilio/test-twiml")
	var resp transport.TestTwiMLResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Success || resp.TestNumber != "+49123456789" || !strings.Contains(resp.GeneratedTwiML, "+49123456789") {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCallLogs(t *testing.T) {
	if rec := get(newEngine(testConfig{}), "/api/twilio/call-logs"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without credentials, got %d", rec.Code)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"calls": [{"sid": "CA1", "status": "busy", "error_code": 13224}]}`)
	}))
	defer srv.Close()
	cfg := configured
	cfg.baseURL = srv.URL

	rec := get(newEngine(cfg), "/api/twilio/call-logs")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp transport.CallLogsResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if len(resp.Calls) != 1 || resp.Calls[0].Status != "busy" || resp.Calls[0].ErrorCode == nil || *resp.Calls[0].ErrorCode != 13224 {
		t.Fatalf("unexpected calls: %+v", resp.Calls)
	}
}
