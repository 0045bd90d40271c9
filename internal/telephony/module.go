// Package telephony provides the voice calling bounded context module.
package telephony

import (
	apphttp "leadcall_backend/internal/http"
	"leadcall_backend/internal/telephony/handler"
	"leadcall_backend/internal/telephony/twilio"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"
)

// Module is the telephony bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the telephony module around the process-wide client.
func NewModule(client *twilio.Client, cfg config.TwilioConfig, val *validator.Validator, log *logger.Logger) *Module {
	if !client.Configured() {
		log.Info("twilio not configured, browser calling disabled")
	}
	return &Module{
		handler: handler.New(client, cfg, val, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "telephony"
}

// RegisterRoutes mounts the operator routes and the provider webhook.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/twilio"))
	m.handler.RegisterWebhooks(ctx.Webhooks)
}

var _ apphttp.Module = (*Module)(nil)
