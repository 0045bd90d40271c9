package scheduler

import (
	"context"
	"fmt"

	"leadcall_backend/platform/config"
	"leadcall_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// ImportJobProcessor runs one queued spreadsheet import.
type ImportJobProcessor interface {
	ProcessJob(ctx context.Context, jobID uuid.UUID) error
}

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	imports ImportJobProcessor
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, imports ImportJobProcessor, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		imports: imports,
		log:     log,
	}
	w.mux.HandleFunc(TaskImportFile, w.handleImportFile)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("import worker stopped", "error", err)
	}
}

func (w *Worker) handleImportFile(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseImportFilePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		return fmt.Errorf("%w: invalid job id %q", asynq.SkipRetry, payload.JobID)
	}

	w.log.Info("processing import job", "jobId", jobID)
	return w.imports.ProcessJob(ctx, jobID)
}
