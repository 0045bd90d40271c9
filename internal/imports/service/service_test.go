package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"leadcall_backend/internal/events"
	"leadcall_backend/internal/imports/pipeline"
	"leadcall_backend/internal/imports/repository"
	"leadcall_backend/internal/imports/transport"
	"leadcall_backend/platform/apperr"
	platformevents "leadcall_backend/platform/events"
	"leadcall_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	jobs      map[uuid.UUID]repository.Job
	locked    int
	failures  map[uuid.UUID]string
	completed map[uuid.UUID]repository.JobResult
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		jobs:      make(map[uuid.UUID]repository.Job),
		failures:  make(map[uuid.UUID]string),
		completed: make(map[uuid.UUID]repository.JobResult),
	}
}

func (f *fakeRepo) CreateJob(_ context.Context, params repository.CreateJobParams) (repository.Job, error) {
	job := repository.Job{
		ID:             uuid.New(),
		FileName:       params.FileName,
		ObjectKey:      params.ObjectKey,
		Status:         repository.JobQueued,
		Mapping:        params.Mapping,
		SkipDuplicates: params.SkipDuplicates,
		GroupID:        params.GroupID,
		RequestedBy:    params.RequestedBy,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeRepo) GetJob(_ context.Context, id uuid.UUID) (repository.Job, error) {
	job, ok := f.jobs[id]
	if !ok {
		return repository.Job{}, apperr.NotFound("import job not found")
	}
	return job, nil
}

func (f *fakeRepo) ClaimJob(_ context.Context, id uuid.UUID) (bool, error) {
	job, ok := f.jobs[id]
	if !ok || job.Status != repository.JobQueued {
		return false, nil
	}
	job.Status = repository.JobRunning
	f.jobs[id] = job
	return true, nil
}

func (f *fakeRepo) CompleteJob(_ context.Context, id uuid.UUID, result repository.JobResult) error {
	job := f.jobs[id]
	job.Status = repository.JobCompleted
	f.jobs[id] = job
	f.completed[id] = result
	return nil
}

func (f *fakeRepo) FailJob(_ context.Context, id uuid.UUID, failure string) error {
	job := f.jobs[id]
	job.Status = repository.JobFailed
	job.Failure = &failure
	f.jobs[id] = job
	f.failures[id] = failure
	return nil
}

func (f *fakeRepo) WithImportLock(ctx context.Context, fn func(ctx context.Context) error) error {
	f.locked++
	return fn(ctx)
}

type fakeLeads struct {
	existing map[string]bool
	created  []pipeline.Lead
}

func (f *fakeLeads) ExistsWithPhone(_ context.Context, phone string) (bool, error) {
	return f.existing[phone], nil
}

func (f *fakeLeads) Create(_ context.Context, lead pipeline.Lead) error {
	if f.existing == nil {
		f.existing = make(map[string]bool)
	}
	f.existing[lead.Phone] = true
	f.created = append(f.created, lead)
	return nil
}

type fakeObjectStore struct {
	objects     map[string][]byte
	validateErr error
}

func (f *fakeObjectStore) UploadFile(_ context.Context, _, folder, fileName, _ string, reader io.Reader, _ int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := folder + "/" + uuid.NewString() + "-" + fileName
	f.objects[key] = data
	return key, nil
}

func (f *fakeObjectStore) DownloadFile(_ context.Context, _, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeObjectStore) ValidateUpload(string, string, int64) error { return f.validateErr }

type fakeQueue struct {
	enqueued []uuid.UUID
	err      error
}

func (f *fakeQueue) EnqueueImportJob(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, id)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) subscribe(bus *platformevents.InMemoryBus, names ...string) {
	for _, name := range names {
		bus.Subscribe(name, events.HandlerFunc(func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		}))
	}
}

func newTestService(repo *fakeRepo, leads *fakeLeads, maxRows int) (*Service, *platformevents.InMemoryBus) {
	log := logger.NewWriter("production", io.Discard)
	bus := platformevents.NewInMemoryBus(log)
	return New(repo, leads, pipeline.NewMapper(), bus, log, maxRows), bus
}

func TestImportRowsDefaultsToFieldNames(t *testing.T) {
	repo := newFakeRepo()
	leads := &fakeLeads{}
	svc, _ := newTestService(repo, leads, 100)

	raw := json.RawMessage(`[
		{"companyName": "Alpha GmbH", "phone": "030 1234567"},
		{"firmenname": "Beta KG", "telefon": "+49 40 7654321", "ort": "Hamburg"}
	]`)
	resp, err := svc.ImportRows(context.Background(), transport.ImportRequest{Leads: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Success || resp.Imported != 2 || resp.Total != 2 || resp.Skipped != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if repo.locked != 1 {
		t.Fatalf("expected import to run under the lock once, got %d", repo.locked)
	}
	if leads.created[0].Phone != "+49301234567" {
		t.Fatalf("expected canonical phone, got %q", leads.created[0].Phone)
	}
	if leads.created[1].City == nil || *leads.created[1].City != "Hamburg" {
		t.Fatalf("expected legacy key to map to city, got %+v", leads.created[1])
	}
}

func TestImportRowsRejectsMissingLeads(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakeLeads{}, 100)

	for _, raw := range []string{``, `null`, `{"a": 1}`, `[]`, `"rows"`} {
		_, err := svc.ImportRows(context.Background(), transport.ImportRequest{Leads: json.RawMessage(raw)})
		if !apperr.Is(err, apperr.KindBadRequest) {
			t.Fatalf("expected bad request for %q, got %v", raw, err)
		}
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Message != msgNoLeads {
			t.Fatalf("expected %q for %q, got %q", msgNoLeads, raw, appErr.Message)
		}
	}
}

func TestImportRowsSkipsMalformedElements(t *testing.T) {
	cases := map[string]struct {
		raw      string
		imported int
		skipped  int
	}{
		"nested cell": {`[{"companyName":"Alpha GmbH","phone":"0891234567","meta":{"x":1}},{"companyName":"Beta KG","phone":"0891234568"}]`, 2, 0},
		"number":      {`[{"companyName":"Alpha GmbH","phone":"0891234567"},42]`, 1, 1},
		"null":        {`[{"companyName":"Alpha GmbH","phone":"0891234567"},null]`, 1, 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			leads := &fakeLeads{}
			svc, _ := newTestService(newFakeRepo(), leads, 100)

			resp, err := svc.ImportRows(context.Background(), transport.ImportRequest{Leads: json.RawMessage(tc.raw)})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.Imported != tc.imported || resp.Skipped != tc.skipped || resp.Total != tc.imported+tc.skipped {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if len(leads.created) != tc.imported || leads.created[0].CompanyName != "Alpha GmbH" {
				t.Fatalf("unexpected leads: %+v", leads.created)
			}
			if tc.skipped > 0 && (len(resp.Errors) != 1 || resp.Errors[0] != "skipped: row 2 is not an object") {
				t.Fatalf("unexpected errors: %v", resp.Errors)
			}
		})
	}
}

func TestImportRowsRowLimit(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakeLeads{}, 2)

	raw := json.RawMessage(`[{"phone":"1"},{"phone":"2"},{"phone":"3"}]`)
	_, err := svc.ImportRows(context.Background(), transport.ImportRequest{Leads: raw})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestImportRowsMapping(t *testing.T) {
	leads := &fakeLeads{}
	svc, _ := newTestService(newFakeRepo(), leads, 100)

	raw := json.RawMessage(`[{"Firma": "Gamma AG", "Tel.": "0211 998877", "Notiz": "x"}]`)
	resp, err := svc.ImportRows(context.Background(), transport.ImportRequest{
		Leads:   raw,
		Mapping: map[string]string{"Firma": "companyName", "Tel.": "phone", "Notiz": ""},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Imported != 1 || leads.created[0].CompanyName != "Gamma AG" {
		t.Fatalf("unexpected result %+v, created %+v", resp, leads.created)
	}

	_, err = svc.ImportRows(context.Background(), transport.ImportRequest{
		Leads:   raw,
		Mapping: map[string]string{"Firma": "revenue"},
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for unknown target, got %v", err)
	}
}

func TestImportRowsSkipDuplicatesDefault(t *testing.T) {
	leads := &fakeLeads{existing: map[string]bool{"+49301234567": true}}
	svc, _ := newTestService(newFakeRepo(), leads, 100)

	raw := json.RawMessage(`[{"companyName": "Alpha", "phone": "030 1234567"}]`)
	resp, err := svc.ImportRows(context.Background(), transport.ImportRequest{Leads: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Imported != 0 || resp.Skipped != 1 || len(resp.Errors) != 0 {
		t.Fatalf("expected silent duplicate skip, got %+v", resp)
	}

	off := false
	resp, err = svc.ImportRows(context.Background(), transport.ImportRequest{Leads: raw, SkipDuplicates: &off})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Imported != 1 {
		t.Fatalf("expected duplicate to be imported when skipping is off, got %+v", resp)
	}
}

func TestImportRowsPublishesEvent(t *testing.T) {
	svc, bus := newTestService(newFakeRepo(), &fakeLeads{}, 100)
	rec := &recorder{}
	rec.subscribe(bus, events.LeadsImported{}.EventName())

	raw := json.RawMessage(`[{"companyName": "Alpha", "phone": "030 1234567"}, {"companyName": "Beta", "phone": "abc"}]`)
	if _, err := svc.ImportRows(context.Background(), transport.ImportRequest{Leads: raw}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.Wait()

	if len(rec.events) != 1 {
		t.Fatalf("expected one event, got %d", len(rec.events))
	}
	evt := rec.events[0].(events.LeadsImported)
	if evt.Source != sourceAPI || evt.Imported != 1 || evt.Invalid != 1 || evt.Total != 2 {
		t.Fatalf("unexpected event: %+v", evt)
	}
}

func TestSubmitJobUnavailableWithoutStorage(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakeLeads{}, 100)

	_, err := svc.SubmitJob(context.Background(), Upload{FileName: "a.csv"}, transport.JobRequest{}, "admin")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestSubmitJobArchivesAndEnqueues(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, &fakeLeads{}, 100)
	store := &fakeObjectStore{objects: make(map[string][]byte)}
	queue := &fakeQueue{}
	svc.SetFileJobs(store, "lead-imports", queue)

	groupID := uuid.New()
	upload := Upload{FileName: "leads.csv", ContentType: "text/csv", Size: 20, Reader: strings.NewReader("Firma;Telefon\nA;030 1\n")}
	resp, err := svc.SubmitJob(context.Background(), upload, transport.JobRequest{
		Mapping:        `{"Firma":"companyName","Telefon":"phone"}`,
		SkipDuplicates: "false",
		GroupID:        groupID.String(),
	}, "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Status != repository.JobQueued || resp.RequestedBy != "admin" || resp.SkipDuplicates {
		t.Fatalf("unexpected job: %+v", resp)
	}
	if resp.GroupID == nil || *resp.GroupID != groupID {
		t.Fatalf("expected group id to be stored, got %v", resp.GroupID)
	}
	if len(queue.enqueued) != 1 || queue.enqueued[0] != resp.ID {
		t.Fatalf("expected job to be enqueued, got %v", queue.enqueued)
	}
	if len(store.objects) != 1 {
		t.Fatalf("expected upload to be archived, got %d objects", len(store.objects))
	}
}

func TestSubmitJobRejections(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakeLeads{}, 100)
	store := &fakeObjectStore{objects: make(map[string][]byte)}
	svc.SetFileJobs(store, "lead-imports", &fakeQueue{})
	upload := Upload{FileName: "leads.csv", Size: 5, Reader: strings.NewReader("a\n1\n")}

	cases := []transport.JobRequest{
		{Mapping: `not json`},
		{Mapping: `{"a":"revenue"}`},
		{SkipDuplicates: "maybe"},
	}
	for _, req := range cases {
		if _, err := svc.SubmitJob(context.Background(), upload, req, "admin"); !apperr.Is(err, apperr.KindBadRequest) {
			t.Fatalf("expected bad request for %+v, got %v", req, err)
		}
	}

	store.validateErr = errors.New("file type \".pdf\" is not supported")
	if _, err := svc.SubmitJob(context.Background(), upload, transport.JobRequest{}, "admin"); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for invalid upload, got %v", err)
	}
}

func TestSubmitJobEnqueueFailureMarksJobFailed(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo, &fakeLeads{}, 100)
	svc.SetFileJobs(&fakeObjectStore{objects: make(map[string][]byte)}, "lead-imports", &fakeQueue{err: errors.New("redis down")})

	upload := Upload{FileName: "leads.csv", Size: 5, Reader: strings.NewReader("a\n1\n")}
	if _, err := svc.SubmitJob(context.Background(), upload, transport.JobRequest{}, "admin"); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.failures) != 1 {
		t.Fatalf("expected the job to be marked failed, got %v", repo.failures)
	}
}

func TestProcessJobCompletes(t *testing.T) {
	repo := newFakeRepo()
	leads := &fakeLeads{}
	svc, bus := newTestService(repo, leads, 100)
	store := &fakeObjectStore{objects: map[string][]byte{
		"uploads/leads.csv": []byte("Firmenname;Telefon;Ort\nAlpha GmbH;030 1234567;Berlin\nBeta;kaputt;Köln\n"),
	}}
	svc.SetFileJobs(store, "lead-imports", &fakeQueue{})
	rec := &recorder{}
	rec.subscribe(bus, events.ImportJobFinished{}.EventName())

	job, _ := repo.CreateJob(context.Background(), repository.CreateJobParams{
		FileName:       "leads.csv",
		ObjectKey:      "uploads/leads.csv",
		Mapping:        map[string]string{},
		SkipDuplicates: true,
	})

	if err := svc.ProcessJob(context.Background(), job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.Wait()

	result := repo.completed[job.ID]
	if result.Imported != 1 || result.Skipped != 1 || result.Total != 2 || len(result.Errors) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if leads.created[0].CompanyName != "Alpha GmbH" {
		t.Fatalf("expected suggested mapping to be used, got %+v", leads.created[0])
	}
	if len(rec.events) != 1 || rec.events[0].(events.ImportJobFinished).Status != repository.JobCompleted {
		t.Fatalf("expected completed event, got %+v", rec.events)
	}

	if err := svc.ProcessJob(context.Background(), job.ID); err != nil {
		t.Fatalf("reprocessing should be a no-op, got %v", err)
	}
	if len(leads.created) != 1 {
		t.Fatalf("expected no second import, got %d leads", len(leads.created))
	}
}

func TestProcessJobRecordsFailure(t *testing.T) {
	repo := newFakeRepo()
	svc, bus := newTestService(repo, &fakeLeads{}, 100)
	svc.SetFileJobs(&fakeObjectStore{objects: map[string][]byte{"k": []byte("x")}}, "lead-imports", &fakeQueue{})
	rec := &recorder{}
	rec.subscribe(bus, events.ImportJobFinished{}.EventName())

	job, _ := repo.CreateJob(context.Background(), repository.CreateJobParams{FileName: "leads.xls", ObjectKey: "k"})

	if err := svc.ProcessJob(context.Background(), job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.Wait()

	if repo.jobs[job.ID].Status != repository.JobFailed {
		t.Fatalf("expected failed job, got %q", repo.jobs[job.ID].Status)
	}
	if len(rec.events) != 1 || rec.events[0].(events.ImportJobFinished).Status != repository.JobFailed {
		t.Fatalf("expected failed event, got %+v", rec.events)
	}
}

func TestGetJobNotFound(t *testing.T) {
	svc, _ := newTestService(newFakeRepo(), &fakeLeads{}, 100)
	if _, err := svc.GetJob(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
