package handler

import (
	"fmt"
	"net/http"
	"time"

	"leadcall_backend/internal/telephony/transport"
	"leadcall_backend/internal/telephony/twilio"
	"leadcall_backend/platform/apperr"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/httpkit"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest    = "invalid request"
	msgValidationFailed  = "validation failed"
	msgNotConfigured     = "Twilio not configured"
	msgRESTNotConfigured = "Twilio client not configured"

	defaultIdentity   = "default-user"
	debugIdentity     = "debug-test"
	defaultTestNumber = "+49123456789"
	callLogLimit      = 10

	sayNoNumber      = "No phone number provided"
	sayNoCallerID    = "Caller ID is not configured"
	sayInternalError = "An error occurred"

	xmlContentType = "application/xml"
	notSet         = "NOT SET"
)

// Handler serves the telephony endpoints.
type Handler struct {
	client *twilio.Client
	cfg    config.TwilioConfig
	val    *validator.Validator
	log    *logger.Logger
}

// New creates a new telephony handler.
func New(client *twilio.Client, cfg config.TwilioConfig, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{client: client, cfg: cfg, val: val, log: log}
}

// RegisterRoutes mounts the operator-facing routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/token", h.Token)
	rg.GET("/debug", h.Debug)
	rg.GET("/test-twiml", h.TestTwiML)
	rg.GET("/call-logs", h.CallLogs)
}

// RegisterWebhooks mounts the routes Twilio calls back.
func (h *Handler) RegisterWebhooks(rg *gin.RouterGroup) {
	rg.POST("/voice", h.Voice)
}

// Token issues a browser voice token.
// GET /api/twilio/token
func (h *Handler) Token(c *gin.Context) {
	var req transport.TokenRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	if !h.client.Configured() {
		httpkit.HandleError(c, apperr.Unavailable(msgNotConfigured))
		return
	}

	identity := req.Identity
	if identity == "" {
		identity = defaultIdentity
	}

	token, err := h.client.AccessToken(identity)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("failed to generate twilio token", "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "Failed to generate token", nil)
		return
	}
	httpkit.OK(c, transport.TokenResponse{Token: token, Identity: identity})
}

// Voice answers the voice webhook with dial instructions.
// POST /api/twilio/voice
func (h *Handler) Voice(c *gin.Context) {
	var req transport.VoiceWebhookRequest
	if err := c.ShouldBind(&req); err != nil {
		h.twiml(c, "", sayInternalError)
		return
	}

	to := twilio.CleanNumber(req.To)
	switch {
	case to == "":
		h.twiml(c, "", sayNoNumber)
		return
	case h.client.PhoneNumber() == "":
		h.log.WithContext(c.Request.Context()).Warn("voice webhook without caller id", "callSid", req.CallSID)
		h.twiml(c, "", sayNoCallerID)
		return
	}

	h.log.WithContext(c.Request.Context()).Info("voice webhook dialing", "to", to, "callSid", req.CallSID)
	h.twiml(c, to, "")
}

// Debug shows the redacted configuration and whether a token can be minted.
// GET /api/twilio/debug
func (h *Handler) Debug(c *gin.Context) {
	tokenTest := "NOT TESTED"
	token, err := h.client.AccessToken(debugIdentity)
	switch {
	case err != nil:
		tokenTest = "ERROR: " + err.Error()
	case token == "":
		tokenTest = "FAILED - empty token"
	default:
		tokenTest = fmt.Sprintf("SUCCESS (length: %d)", len(token))
	}

	httpkit.OK(c, transport.DebugResponse{
		Config:    h.redactedConfig(6),
		TokenTest: tokenTest,
		Timestamp: time.Now().UTC(),
	})
}

// TestTwiML renders the TwiML the voice webhook would return.
// GET /api/twilio/test-twiml
func (h *Handler) TestTwiML(c *gin.Context) {
	var req transport.TestTwiMLRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Messages(err))
		return
	}

	to := req.To
	if to == "" {
		to = defaultTestNumber
	}

	cfg := h.redactedConfig(8)
	cfg["TWILIO_REGION"] = orDefault(h.cfg.GetTwilioRegion(), "NOT SET (default: ie1)")

	body, err := h.client.VoiceResponse(to)
	if err != nil {
		httpkit.JSON(c, http.StatusInternalServerError, gin.H{"success": false, "error": err.Error(), "config": cfg})
		return
	}
	httpkit.OK(c, transport.TestTwiMLResponse{
		Success:        true,
		TestNumber:     to,
		GeneratedTwiML: body,
		Config:         cfg,
	})
}

// CallLogs lists the latest calls known to the provider.
// GET /api/twilio/call-logs
func (h *Handler) CallLogs(c *gin.Context) {
	if !h.client.RESTConfigured() {
		httpkit.HandleError(c, apperr.Unavailable(msgRESTNotConfigured))
		return
	}

	calls, err := h.client.ListCalls(c.Request.Context(), callLogLimit)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("failed to fetch call logs", "error", err)
		httpkit.Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}

	out := make([]transport.CallLog, 0, len(calls))
	for _, call := range calls {
		out = append(out, transport.CallLog{
			SID:          call.SID,
			From:         call.From,
			To:           call.To,
			Status:       call.Status,
			Direction:    call.Direction,
			Duration:     call.Duration,
			StartTime:    call.StartTime,
			EndTime:      call.EndTime,
			ErrorCode:    call.ErrorCode,
			ErrorMessage: call.ErrorMessage,
			Price:        call.Price,
			PriceUnit:    call.PriceUnit,
		})
	}

	httpkit.OK(c, transport.CallLogsResponse{
		Calls: out,
		Config: map[string]string{
			"TWILIO_PHONE_NUMBER":  orDefault(h.cfg.GetTwilioPhoneNumber(), notSet),
			"TWILIO_TWIML_APP_SID": prefix(h.cfg.GetTwilioTwiMLAppSID(), 10),
		},
	})
}

func (h *Handler) twiml(c *gin.Context, to, say string) {
	var (
		body string
		err  error
	)
	if to != "" {
		body, err = h.client.VoiceResponse(to)
	} else {
		body, err = twilio.SayResponse(say)
	}
	if err != nil {
		h.log.WithContext(c.Request.Context()).Error("failed to render twiml", "error", err)
		body, _ = twilio.SayResponse(sayInternalError)
	}
	c.Data(http.StatusOK, xmlContentType, []byte(body))
}

func (h *Handler) redactedConfig(n int) map[string]string {
	return map[string]string{
		"TWILIO_ACCOUNT_SID":    prefix(h.cfg.GetTwilioAccountSID(), n),
		"TWILIO_AUTH_TOKEN":     hidden(h.cfg.GetTwilioAuthToken()),
		"TWILIO_API_KEY_SID":    prefix(h.cfg.GetTwilioAPIKeySID(), n),
		"TWILIO_API_KEY_SECRET": hidden(h.cfg.GetTwilioAPIKeySecret()),
		"TWILIO_TWIML_APP_SID":  prefix(h.cfg.GetTwilioTwiMLAppSID(), n),
		"TWILIO_PHONE_NUMBER":   orDefault(h.cfg.GetTwilioPhoneNumber(), notSet),
	}
}

func prefix(value string, n int) string {
	if value == "" {
		return notSet
	}
	if len(value) > n {
		value = value[:n]
	}
	return value + "..."
}

func hidden(value string) string {
	if value == "" {
		return notSet
	}
	return "SET (hidden)"
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
