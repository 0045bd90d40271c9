// Package imports provides the lead import bounded context module.
package imports

import (
	"leadcall_backend/internal/events"
	apphttp "leadcall_backend/internal/http"
	"leadcall_backend/internal/imports/handler"
	"leadcall_backend/internal/imports/pipeline"
	"leadcall_backend/internal/imports/repository"
	"leadcall_backend/internal/imports/service"
	"leadcall_backend/platform/config"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the imports bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the imports module. Extra header synonyms are read from
// the configured YAML file when one is set.
func NewModule(pool *pgxpool.Pool, leads pipeline.LeadStore, eventBus events.Publisher, val *validator.Validator, cfg config.ImportConfig, log *logger.Logger) (*Module, error) {
	mapper := pipeline.NewMapper()
	if path := cfg.GetImportSynonymsFile(); path != "" {
		extra, err := pipeline.LoadSynonyms(path)
		if err != nil {
			return nil, err
		}
		mapper = mapper.WithSynonyms(extra)
		log.Info("import synonyms loaded", "file", path)
	}

	svc := service.New(repository.New(pool), leads, mapper, eventBus, log, cfg.GetImportMaxRows())
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "imports"
}

// Service returns the imports service so the worker and file-job wiring can reach it.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetFileJobs enables the queued file import endpoint.
func (m *Module) SetFileJobs(store service.ObjectStore, bucket string, queue service.JobEnqueuer) {
	m.service.SetFileJobs(store, bucket, queue)
}

// RegisterRoutes mounts import routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/import"))
}

var _ apphttp.Module = (*Module)(nil)
