// Package service runs lead imports: inline JSON batches, spreadsheet
// previews and queued file jobs.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"leadcall_backend/internal/events"
	"leadcall_backend/internal/imports/pipeline"
	"leadcall_backend/internal/imports/repository"
	"leadcall_backend/internal/imports/transport"
	"leadcall_backend/platform/apperr"
	"leadcall_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	msgNoLeads          = "No leads provided"
	msgFileJobsDisabled = "file imports are not configured"

	sourceAPI  = "api"
	sourceFile = "file"

	uploadFolder = "uploads"
	ignoreTarget = "skip"
)

// ObjectStore archives uploaded spreadsheets.
type ObjectStore interface {
	UploadFile(ctx context.Context, bucket, folder, fileName, contentType string, reader io.Reader, size int64) (string, error)
	DownloadFile(ctx context.Context, bucket, fileKey string) (io.ReadCloser, error)
	ValidateUpload(fileName, contentType string, sizeBytes int64) error
}

// JobEnqueuer hands queued jobs to the background worker.
type JobEnqueuer interface {
	EnqueueImportJob(ctx context.Context, jobID uuid.UUID) error
}

// Upload is a spreadsheet received over HTTP.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Service provides business logic for imports.
type Service struct {
	repo       repository.Repository
	reconciler *pipeline.Reconciler
	mapper     *pipeline.Mapper
	eventBus   events.Publisher
	log        *logger.Logger
	maxRows    int

	store  ObjectStore
	bucket string
	queue  JobEnqueuer
}

// New creates a new imports service. maxRows bounds a single batch.
func New(repo repository.Repository, leads pipeline.LeadStore, mapper *pipeline.Mapper, eventBus events.Publisher, log *logger.Logger, maxRows int) *Service {
	return &Service{
		repo:       repo,
		reconciler: pipeline.NewReconciler(leads, log),
		mapper:     mapper,
		eventBus:   eventBus,
		log:        log,
		maxRows:    maxRows,
	}
}

// SetFileJobs enables queued file imports. Without it SubmitJob answers 503.
func (s *Service) SetFileJobs(store ObjectStore, bucket string, queue JobEnqueuer) {
	s.store = store
	s.bucket = bucket
	s.queue = queue
}

// FileJobsEnabled reports whether SetFileJobs received both dependencies.
func (s *Service) FileJobsEnabled() bool {
	return s.store != nil && s.queue != nil
}

// ImportRows reconciles an inline batch of rows.
func (s *Service) ImportRows(ctx context.Context, req transport.ImportRequest) (transport.ImportResponse, error) {
	rows, err := decodeRows(req.Leads)
	if err != nil {
		return transport.ImportResponse{}, err
	}
	if len(rows) > s.maxRows {
		return transport.ImportResponse{}, apperr.BadRequest(fmt.Sprintf("too many leads: %d (maximum %d)", len(rows), s.maxRows))
	}

	var mapping pipeline.Mapping
	if req.Mapping == nil {
		mapping = pipeline.IdentityMapping(collectHeaders(rows))
	} else if mapping, err = ResolveMapping(req.Mapping); err != nil {
		return transport.ImportResponse{}, err
	}

	opts := pipeline.Options{SkipDuplicates: true, GroupID: req.GroupID}
	if req.SkipDuplicates != nil {
		opts.SkipDuplicates = *req.SkipDuplicates
	}

	result, err := s.reconcile(ctx, sourceAPI, rows, mapping, opts)
	if err != nil {
		return transport.ImportResponse{}, err
	}

	return transport.ImportResponse{
		Success:  true,
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Total:    result.Total,
		Errors:   result.Errors,
	}, nil
}

// Preview parses an uploaded spreadsheet and suggests a column mapping.
func (s *Service) Preview(ctx context.Context, upload Upload) (transport.PreviewResponse, error) {
	parsed, err := s.parse(upload.FileName, upload.Reader)
	if err != nil {
		return transport.PreviewResponse{}, err
	}

	s.log.WithContext(ctx).Info("import preview parsed", "file", upload.FileName, "rows", len(parsed.Rows))

	return transport.PreviewResponse{
		FileName:         upload.FileName,
		Headers:          parsed.Headers,
		Rows:             parsed.Rows,
		TotalRows:        len(parsed.Rows),
		SuggestedMapping: mappingToStrings(parsed.SuggestedMapping),
	}, nil
}

// SubmitJob archives the upload and queues it for the worker.
func (s *Service) SubmitJob(ctx context.Context, upload Upload, req transport.JobRequest, requestedBy string) (transport.JobResponse, error) {
	if !s.FileJobsEnabled() {
		return transport.JobResponse{}, apperr.Unavailable(msgFileJobsDisabled)
	}
	if err := s.store.ValidateUpload(upload.FileName, upload.ContentType, upload.Size); err != nil {
		return transport.JobResponse{}, apperr.BadRequest(err.Error())
	}

	params, err := jobParams(req)
	if err != nil {
		return transport.JobResponse{}, err
	}
	params.FileName = upload.FileName
	params.RequestedBy = requestedBy

	key, err := s.store.UploadFile(ctx, s.bucket, uploadFolder, upload.FileName, upload.ContentType, upload.Reader, upload.Size)
	if err != nil {
		return transport.JobResponse{}, fmt.Errorf("archive upload: %w", err)
	}
	params.ObjectKey = key

	job, err := s.repo.CreateJob(ctx, params)
	if err != nil {
		return transport.JobResponse{}, err
	}

	if err := s.queue.EnqueueImportJob(ctx, job.ID); err != nil {
		if failErr := s.repo.FailJob(ctx, job.ID, "could not be queued"); failErr != nil {
			s.log.WithContext(ctx).Error("failed to mark import job failed", "jobId", job.ID, "error", failErr)
		}
		return transport.JobResponse{}, fmt.Errorf("enqueue import job: %w", err)
	}

	s.log.WithContext(ctx).Info("import job queued", "jobId", job.ID, "file", job.FileName)
	return toJobResponse(job), nil
}

// GetJob returns the state of a file import.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (transport.JobResponse, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return transport.JobResponse{}, err
	}
	return toJobResponse(job), nil
}

// ProcessJob runs a queued file import. It is called by the background worker.
// Jobs that are not queued any more are ignored.
func (s *Service) ProcessJob(ctx context.Context, id uuid.UUID) error {
	if s.store == nil {
		return errors.New("object storage is not configured")
	}

	claimed, err := s.repo.ClaimJob(ctx, id)
	if err != nil {
		return err
	}
	if !claimed {
		s.log.Warn("import job not claimable, skipping", "jobId", id)
		return nil
	}

	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return err
	}

	result, runErr := s.runJob(ctx, job)
	if runErr != nil {
		s.log.Error("import job failed", "jobId", id, "error", runErr)
		if err := s.repo.FailJob(ctx, id, runErr.Error()); err != nil {
			return fmt.Errorf("record job failure: %w", err)
		}
		s.eventBus.Publish(ctx, events.ImportJobFinished{
			BaseEvent: events.NewBaseEvent(),
			JobID:     id,
			Status:    repository.JobFailed,
			Failure:   runErr.Error(),
		})
		return nil
	}

	if err := s.repo.CompleteJob(ctx, id, repository.JobResult{
		Imported: result.Imported,
		Skipped:  result.Skipped,
		Total:    result.Total,
		Errors:   result.Errors,
	}); err != nil {
		return err
	}

	s.eventBus.Publish(ctx, events.ImportJobFinished{
		BaseEvent: events.NewBaseEvent(),
		JobID:     id,
		Status:    repository.JobCompleted,
		Imported:  result.Imported,
		Skipped:   result.Skipped,
		Total:     result.Total,
	})
	return nil
}

func (s *Service) runJob(ctx context.Context, job repository.Job) (pipeline.Result, error) {
	mapping, err := ResolveMapping(job.Mapping)
	if err != nil {
		return pipeline.Result{}, err
	}

	body, err := s.store.DownloadFile(ctx, s.bucket, job.ObjectKey)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("download upload: %w", err)
	}
	defer func() { _ = body.Close() }()

	parsed, err := s.parse(job.FileName, body)
	if err != nil {
		return pipeline.Result{}, err
	}
	if len(mapping) == 0 {
		mapping = parsed.SuggestedMapping
	}

	return s.reconcile(ctx, sourceFile, parsed.Rows, mapping, pipeline.Options{
		SkipDuplicates: job.SkipDuplicates,
		GroupID:        job.GroupID,
	})
}

// reconcile runs one batch under the import lock and reports it.
func (s *Service) reconcile(ctx context.Context, source string, rows []pipeline.Row, mapping pipeline.Mapping, opts pipeline.Options) (pipeline.Result, error) {
	var result pipeline.Result
	err := s.repo.WithImportLock(ctx, func(ctx context.Context) error {
		result = s.reconciler.Reconcile(ctx, rows, mapping, opts)
		return nil
	})
	if err != nil {
		return pipeline.Result{}, err
	}

	s.log.WithContext(ctx).ImportFinished(source, result.Imported, result.Skipped, result.Total)
	s.eventBus.Publish(ctx, events.LeadsImported{
		BaseEvent: events.NewBaseEvent(),
		Source:    source,
		GroupID:   opts.GroupID,
		Imported:  result.Imported,
		Skipped:   result.Skipped,
		Invalid:   result.Invalid,
		Failed:    result.Failed,
		Total:     result.Total,
	})
	return result, nil
}

func (s *Service) parse(fileName string, r io.Reader) (pipeline.ParseResult, error) {
	parsed, err := pipeline.Parse(fileName, r, s.mapper, s.maxRows)
	switch {
	case errors.Is(err, pipeline.ErrUnsupportedFormat):
		return pipeline.ParseResult{}, apperr.BadRequest("only .csv and .xlsx files are supported")
	case errors.Is(err, pipeline.ErrTooManyRows):
		return pipeline.ParseResult{}, apperr.BadRequest(fmt.Sprintf("file has more than %d rows", s.maxRows))
	case err != nil:
		return pipeline.ParseResult{}, apperr.Wrap(apperr.KindBadRequest, "could not read file", err)
	}
	return parsed, nil
}

// ResolveMapping turns a header→field map into a Mapping. Empty targets and
// "skip" ignore the column; unknown targets are rejected.
func ResolveMapping(raw map[string]string) (pipeline.Mapping, error) {
	mapping := make(pipeline.Mapping, len(raw))
	for header, target := range raw {
		target = strings.TrimSpace(target)
		if target == "" || target == ignoreTarget {
			continue
		}
		field, ok := pipeline.ParseField(target)
		if !ok {
			return nil, apperr.BadRequest(fmt.Sprintf("unknown mapping target %q for column %q", target, header))
		}
		mapping[header] = field
	}
	return mapping, nil
}

func decodeRows(raw json.RawMessage) ([]pipeline.Row, error) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, apperr.BadRequest(msgNoLeads)
	}

	rows, err := pipeline.DecodeRows(raw)
	if err != nil {
		return nil, apperr.BadRequest("leads must be a JSON array")
	}
	if len(rows) == 0 {
		return nil, apperr.BadRequest(msgNoLeads)
	}
	return rows, nil
}

// collectHeaders returns every header in first-seen order across rows.
func collectHeaders(rows []pipeline.Row) []string {
	seen := make(map[string]bool)
	var headers []string
	for _, row := range rows {
		for _, h := range row.Headers() {
			if !seen[h] {
				seen[h] = true
				headers = append(headers, h)
			}
		}
	}
	return headers
}

func jobParams(req transport.JobRequest) (repository.CreateJobParams, error) {
	params := repository.CreateJobParams{SkipDuplicates: true, Mapping: map[string]string{}}

	if req.Mapping != "" {
		var raw map[string]string
		if err := json.Unmarshal([]byte(req.Mapping), &raw); err != nil {
			return params, apperr.BadRequest("mapping must be a JSON object of column to field")
		}
		if _, err := ResolveMapping(raw); err != nil {
			return params, err
		}
		params.Mapping = raw
	}
	if req.SkipDuplicates != "" {
		skip, err := strconv.ParseBool(req.SkipDuplicates)
		if err != nil {
			return params, apperr.BadRequest("skipDuplicates must be true or false")
		}
		params.SkipDuplicates = skip
	}
	if req.GroupID != "" {
		id, err := uuid.Parse(req.GroupID)
		if err != nil {
			return params, apperr.BadRequest("invalid groupId")
		}
		params.GroupID = &id
	}
	return params, nil
}

func mappingToStrings(mapping pipeline.Mapping) map[string]string {
	out := make(map[string]string, len(mapping))
	for header, field := range mapping {
		out[header] = string(field)
	}
	return out
}

func toJobResponse(job repository.Job) transport.JobResponse {
	mapping := job.Mapping
	if mapping == nil {
		mapping = map[string]string{}
	}
	errs := job.Errors
	if errs == nil {
		errs = []string{}
	}
	return transport.JobResponse{
		ID:             job.ID,
		FileName:       job.FileName,
		Status:         job.Status,
		Mapping:        mapping,
		SkipDuplicates: job.SkipDuplicates,
		GroupID:        job.GroupID,
		RequestedBy:    job.RequestedBy,
		Imported:       job.Imported,
		Skipped:        job.Skipped,
		Total:          job.Total,
		Errors:         errs,
		Failure:        job.Failure,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}
