// Package stats provides the dashboard statistics module.
package stats

import (
	apphttp "leadcall_backend/internal/http"
	"leadcall_backend/internal/stats/handler"
	"leadcall_backend/internal/stats/repository"
	"leadcall_backend/internal/stats/service"
	"leadcall_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the stats module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the stats module.
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return &Module{handler: handler.New(service.New(repository.New(pool), log))}
}

func (m *Module) Name() string {
	return "stats"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/stats", m.handler.Get)
}

var _ apphttp.Module = (*Module)(nil)
