package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"

	"leadcall_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type fakeProcessor struct {
	jobs []uuid.UUID
}

func (f *fakeProcessor) ProcessJob(_ context.Context, jobID uuid.UUID) error {
	f.jobs = append(f.jobs, jobID)
	return nil
}

func TestImportFileTaskPayload(t *testing.T) {
	jobID := uuid.New()
	task, err := NewImportFileTask(ImportFilePayload{JobID: jobID.String()})
	if err != nil {
		t.Fatalf("NewImportFileTask: %v", err)
	}
	if task.Type() != TaskImportFile {
		t.Fatalf("unexpected task type %q", task.Type())
	}

	payload, err := ParseImportFilePayload(task)
	if err != nil {
		t.Fatalf("ParseImportFilePayload: %v", err)
	}
	if payload.JobID != jobID.String() {
		t.Fatalf("unexpected job id %q", payload.JobID)
	}
}

func TestHandleImportFileDispatches(t *testing.T) {
	proc := &fakeProcessor{}
	w := &Worker{imports: proc, log: logger.NewWriter("production", io.Discard)}
	jobID := uuid.New()

	task, _ := NewImportFileTask(ImportFilePayload{JobID: jobID.String()})
	if err := w.handleImportFile(context.Background(), task); err != nil {
		t.Fatalf("handleImportFile: %v", err)
	}
	if len(proc.jobs) != 1 || proc.jobs[0] != jobID {
		t.Fatalf("unexpected processed jobs: %v", proc.jobs)
	}
}

func TestHandleImportFileRejectsBadPayload(t *testing.T) {
	w := &Worker{imports: &fakeProcessor{}, log: logger.NewWriter("production", io.Discard)}

	err := w.handleImportFile(context.Background(), asynq.NewTask(TaskImportFile, []byte(`{"jobId":"nope"}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://:pw@cache.internal:6380/2", true)
	if err != nil {
		t.Fatalf("redisClientOpt: %v", err)
	}
	if opt.Addr != "cache.internal:6380" || opt.Password != "pw" || opt.DB != 2 {
		t.Fatalf("unexpected options: %+v", opt)
	}
	if opt.TLSConfig == nil || !opt.TLSConfig.InsecureSkipVerify {
		t.Fatal("expected insecure TLS config")
	}
}
