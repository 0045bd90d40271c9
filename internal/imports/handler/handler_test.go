package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadcall_backend/internal/imports/pipeline"
	"leadcall_backend/internal/imports/repository"
	"leadcall_backend/internal/imports/service"
	"leadcall_backend/internal/imports/transport"
	"leadcall_backend/platform/apperr"
	"leadcall_backend/platform/events"
	"leadcall_backend/platform/httpkit"
	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubRepo struct{}

func (stubRepo) CreateJob(context.Context, repository.CreateJobParams) (repository.Job, error) {
	return repository.Job{}, nil
}

func (stubRepo) GetJob(context.Context, uuid.UUID) (repository.Job, error) {
	return repository.Job{}, apperr.NotFound("import job not found")
}

func (stubRepo) ClaimJob(context.Context, uuid.UUID) (bool, error) { return false, nil }

func (stubRepo) CompleteJob(context.Context, uuid.UUID, repository.JobResult) error { return nil }

func (stubRepo) FailJob(context.Context, uuid.UUID, string) error { return nil }

func (stubRepo) WithImportLock(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memoryLeads struct {
	created []pipeline.Lead
}

func (m *memoryLeads) ExistsWithPhone(context.Context, string) (bool, error) { return false, nil }

func (m *memoryLeads) Create(_ context.Context, lead pipeline.Lead) error {
	m.created = append(m.created, lead)
	return nil
}

func newEngine(leads *memoryLeads, operator string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewWriter("production", io.Discard)
	svc := service.New(stubRepo{}, leads, pipeline.NewMapper(), events.NewInMemoryBus(log), log, 100)

	engine := gin.New()
	rg := engine.Group("/api/import")
	if operator != "" {
		rg.Use(func(c *gin.Context) { c.Set(httpkit.ContextOperatorKey, operator) })
	}
	New(svc, validator.New()).RegisterRoutes(rg)
	return engine
}

func postJSON(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func postFile(engine *gin.Engine, path, fileName string, content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if fileName != "" {
		part, _ := w.CreateFormFile("file", fileName)
		_, _ = part.Write(content)
	} else {
		_ = w.WriteField("note", "no file")
	}
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestImportNoLeads(t *testing.T) {
	engine := newEngine(&memoryLeads{}, "admin")

	for _, body := range []string{`{}`, `{"leads": []}`, `{"leads": "x"}`, `{"leads": {"a": 1}}`} {
		rec := postJSON(engine, "/api/import", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
		var resp httpkit.ErrorResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp.Error != "No leads provided" {
			t.Fatalf("unexpected error for %s: %q", body, resp.Error)
		}
	}
}

func TestImportReportsCounts(t *testing.T) {
	leads := &memoryLeads{}
	engine := newEngine(leads, "admin")

	rec := postJSON(engine, "/api/import", `{"leads": [
		{"companyName": "Alpha", "phone": 3012345678},
		{"companyName": "Beta", "phone": null},
		{"phone": "0049 89 1234567"}
	]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp transport.ImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Imported != 2 || resp.Skipped != 1 || resp.Total != 3 {
		t.Fatalf("unexpected counts: %+v", resp)
	}
	want := `skipped: invalid phone number for "Beta": empty`
	if len(resp.Errors) != 1 || resp.Errors[0] != want {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	if leads.created[0].Phone != "+493012345678" {
		t.Fatalf("expected numeric phone to be imported as text, got %q", leads.created[0].Phone)
	}
	if leads.created[1].CompanyName != pipeline.PlaceholderCompanyName {
		t.Fatalf("expected placeholder company, got %q", leads.created[1].CompanyName)
	}
}

func TestPreviewCSV(t *testing.T) {
	engine := newEngine(&memoryLeads{}, "admin")

	csv := []byte("Firma;Telefon;E-Mail\nAlpha GmbH;030 1234567;info@alpha.de\n")
	rec := postFile(engine, "/api/import/preview", "leads.csv", csv)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp transport.PreviewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.TotalRows != 1 || len(resp.Headers) != 3 {
		t.Fatalf("unexpected preview: %+v", resp)
	}
	want := map[string]string{"Firma": "companyName", "Telefon": "phone", "E-Mail": "email"}
	for header, field := range want {
		if resp.SuggestedMapping[header] != field {
			t.Fatalf("expected %s -> %s, got %q", header, field, resp.SuggestedMapping[header])
		}
	}
}

func TestPreviewRequiresFile(t *testing.T) {
	engine := newEngine(&memoryLeads{}, "admin")

	if rec := postFile(engine, "/api/import/preview", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", rec.Code)
	}
	if rec := postFile(engine, "/api/import/preview", "leads.pdf", []byte("%PDF")); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unsupported type, got %d", rec.Code)
	}
}

func TestSubmitJobRequiresOperator(t *testing.T) {
	engine := newEngine(&memoryLeads{}, "")

	rec := postFile(engine, "/api/import/jobs", "leads.csv", []byte("a\n1\n"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSubmitJobNotConfigured(t *testing.T) {
	engine := newEngine(&memoryLeads{}, "admin")

	rec := postFile(engine, "/api/import/jobs", "leads.csv", []byte("a\n1\n"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetJobInvalidID(t *testing.T) {
	engine := newEngine(&memoryLeads{}, "admin")

	for path, want := range map[string]int{
		"/api/import/jobs/nope":                 http.StatusBadRequest,
		"/api/import/jobs/" + uuid.NewString(): http.StatusNotFound,
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: expected %d, got %d", path, want, rec.Code)
		}
	}
}
