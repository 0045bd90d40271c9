package transport

import "time"

// TokenRequest holds the query of GET /api/twilio/token.
type TokenRequest struct {
	Identity string `form:"identity" validate:"omitempty,max=121"`
}

// TokenResponse carries a voice access token.
type TokenResponse struct {
	Token    string `json:"token"`
	Identity string `json:"identity"`
}

// VoiceWebhookRequest is the form Twilio posts to the voice URL.
type VoiceWebhookRequest struct {
	To      string `form:"To"`
	From    string `form:"From"`
	CallSID string `form:"CallSid"`
}

// DebugResponse shows the redacted telephony configuration and a token self-test.
type DebugResponse struct {
	Config    map[string]string `json:"config"`
	TokenTest string            `json:"tokenTest"`
	Timestamp time.Time         `json:"timestamp"`
}

// TestTwiMLRequest holds the query of GET /api/twilio/test-twiml.
type TestTwiMLRequest struct {
	To string `form:"to" validate:"omitempty,max=50"`
}

// TestTwiMLResponse shows the TwiML generated for a number.
type TestTwiMLResponse struct {
	Success        bool              `json:"success"`
	TestNumber     string            `json:"testNumber"`
	GeneratedTwiML string            `json:"generatedTwiML"`
	Config         map[string]string `json:"config"`
}

// CallLog is a call as listed by GET /api/twilio/call-logs.
type CallLog struct {
	SID          string  `json:"sid"`
	From         string  `json:"from"`
	To           string  `json:"to"`
	Status       string  `json:"status"`
	Direction    string  `json:"direction"`
	Duration     *string `json:"duration"`
	StartTime    *string `json:"startTime"`
	EndTime      *string `json:"endTime"`
	ErrorCode    *int    `json:"errorCode"`
	ErrorMessage *string `json:"errorMessage"`
	Price        *string `json:"price"`
	PriceUnit    *string `json:"priceUnit"`
}

// CallLogsResponse lists recent calls from the telephony provider.
type CallLogsResponse struct {
	Calls  []CallLog         `json:"calls"`
	Config map[string]string `json:"config"`
}
