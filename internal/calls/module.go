// Package calls provides the call log bounded context module.
package calls

import (
	"leadcall_backend/internal/calls/handler"
	"leadcall_backend/internal/calls/repository"
	"leadcall_backend/internal/calls/service"
	"leadcall_backend/internal/events"
	apphttp "leadcall_backend/internal/http"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the calls bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the calls module. leads receives the side effects of every logged call.
func NewModule(pool *pgxpool.Pool, leads service.LeadRecorder, eventBus events.Publisher, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), leads, eventBus, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calls"
}

// Service returns the calls service for use outside HTTP (the dialer).
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts calls routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/calls"))
}

var _ apphttp.Module = (*Module)(nil)
