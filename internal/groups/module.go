// Package groups provides the lead group bounded context module.
package groups

import (
	apphttp "leadcall_backend/internal/http"
	"leadcall_backend/internal/groups/handler"
	"leadcall_backend/internal/groups/repository"
	"leadcall_backend/internal/groups/service"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the groups bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the groups module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "groups"
}

// RegisterRoutes mounts groups routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/groups"))
}

var _ apphttp.Module = (*Module)(nil)
