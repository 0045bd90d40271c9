package service

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"leadcall_backend/internal/leads/repository"
	"leadcall_backend/internal/leads/transport"
	"leadcall_backend/platform/apperr"
	"leadcall_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

type fakeRepo struct {
	created    []repository.CreateParams
	updated    []repository.UpdateParams
	listParams []repository.ListParams
	recorded   []repository.RecordCallParams
	leads      []repository.Lead
	byPhone    map[string]repository.Lead
	bulkCount  int
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (repository.Lead, error) {
	for _, l := range f.leads {
		if l.ID == id {
			return l, nil
		}
	}
	return repository.Lead{}, apperr.NotFound("lead not found")
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]repository.Lead, int, error) {
	f.listParams = append(f.listParams, params)
	end := params.Offset + params.Limit
	if params.Offset >= len(f.leads) {
		return nil, len(f.leads), nil
	}
	if end > len(f.leads) {
		end = len(f.leads)
	}
	return f.leads[params.Offset:end], len(f.leads), nil
}

func (f *fakeRepo) FindByPhone(_ context.Context, phone string) (*repository.Lead, error) {
	if l, ok := f.byPhone[phone]; ok {
		return &l, nil
	}
	return nil, nil
}

func (f *fakeRepo) ListIndustries(context.Context) ([]string, error) {
	return []string{"Handwerk", "IT"}, nil
}

func (f *fakeRepo) Create(_ context.Context, params repository.CreateParams) (repository.Lead, error) {
	f.created = append(f.created, params)
	return repository.Lead{ID: uuid.New(), CompanyName: params.CompanyName, Phone: params.Phone, Status: params.Status}, nil
}

func (f *fakeRepo) Update(_ context.Context, params repository.UpdateParams) (repository.Lead, error) {
	f.updated = append(f.updated, params)
	return repository.Lead{ID: params.ID}, nil
}

func (f *fakeRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeRepo) BulkUpdate(_ context.Context, ids []uuid.UUID, _ repository.BulkUpdateParams) (int, error) {
	return len(ids), nil
}

func (f *fakeRepo) BulkDelete(_ context.Context, ids []uuid.UUID) (int, error) {
	f.bulkCount = len(ids)
	return len(ids), nil
}

func (f *fakeRepo) RecordCall(_ context.Context, params repository.RecordCallParams) error {
	f.recorded = append(f.recorded, params)
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	return New(repo, logger.NewWriter("test", io.Discard))
}

func strPtr(s string) *string { return &s }

func TestCreateNormalizesPhone(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	resp, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		CompanyName: "  Müller   GmbH ",
		Phone:       "030 / 123 456 78",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if resp.Phone != "+493012345678" {
		t.Fatalf("expected canonical phone, got %q", resp.Phone)
	}
	if resp.Status != "new" {
		t.Fatalf("expected default status new, got %q", resp.Status)
	}
	if got := repo.created[0].CompanyName; got != "Müller GmbH" {
		t.Fatalf("expected sanitized company name, got %q", got)
	}
}

func TestCreateRejectsInvalidPhone(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), transport.CreateLeadRequest{CompanyName: "Acme", Phone: "12"})
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("lead must not be stored")
	}
}

func TestListDefaultsAndPagination(t *testing.T) {
	repo := &fakeRepo{}
	for i := 0; i < 120; i++ {
		repo.leads = append(repo.leads, repository.Lead{ID: uuid.New(), CompanyName: "Acme", Phone: "+49301234567"})
	}
	svc := newTestService(repo)

	resp, err := svc.List(context.Background(), transport.ListLeadsRequest{Page: 3})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if resp.Pagination.Limit != 50 || resp.Pagination.TotalPages != 3 || resp.Pagination.Total != 120 {
		t.Fatalf("unexpected pagination: %+v", resp.Pagination)
	}
	if len(resp.Leads) != 20 {
		t.Fatalf("expected 20 leads on last page, got %d", len(resp.Leads))
	}
	if repo.listParams[0].Offset != 100 {
		t.Fatalf("expected offset 100, got %d", repo.listParams[0].Offset)
	}
}

func TestListGroupFilter(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	if _, err := svc.List(context.Background(), transport.ListLeadsRequest{GroupID: "none", Status: " booked "}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	params := repo.listParams[0]
	if !params.Ungrouped || params.GroupID != nil {
		t.Fatalf("expected ungrouped filter, got %+v", params)
	}
	if params.Status == nil || *params.Status != "booked" {
		t.Fatalf("expected trimmed status filter, got %v", params.Status)
	}

	_, err := svc.List(context.Background(), transport.ListLeadsRequest{GroupID: "not-a-uuid"})
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestUpdateBuildsFieldSet(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	id := uuid.New()

	_, err := svc.Update(context.Background(), id, transport.UpdateLeadRequest{
		Phone:       strPtr("0049 89 1234567"),
		ContactName: transport.OptionalString{Set: true},
		Notes:       transport.OptionalString{Set: true, Value: strPtr("  ruft zurück ")},
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	fields := repo.updated[0].Fields
	if fields["phone"] != "+49891234567" {
		t.Fatalf("unexpected phone field: %v", fields["phone"])
	}
	if v, ok := fields["contact_name"]; !ok || v.(*string) != nil {
		t.Fatalf("expected contact_name cleared, got %v", v)
	}
	if notes := fields["notes"].(*string); notes == nil || *notes != "ruft zurück" {
		t.Fatalf("unexpected notes: %v", notes)
	}
	if _, ok := fields["email"]; ok {
		t.Fatal("absent fields must not be updated")
	}
}

func TestBulkUpdateRequiresChange(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.BulkUpdate(context.Background(), transport.BulkUpdateRequest{IDs: []uuid.UUID{uuid.New()}})
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}

	resp, err := svc.BulkUpdate(context.Background(), transport.BulkUpdateRequest{
		IDs:    []uuid.UUID{uuid.New(), uuid.New()},
		Update: transport.BulkUpdateFields{Status: strPtr("contacted")},
	})
	if err != nil {
		t.Fatalf("BulkUpdate returned error: %v", err)
	}
	if !resp.Success || resp.UpdatedCount != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestExistsWithPhone(t *testing.T) {
	repo := &fakeRepo{byPhone: map[string]repository.Lead{"+49301234567": {ID: uuid.New()}}}
	svc := newTestService(repo)

	exists, err := svc.ExistsWithPhone(context.Background(), "+49301234567")
	if err != nil || !exists {
		t.Fatalf("expected existing phone, got %v %v", exists, err)
	}
	exists, err = svc.ExistsWithPhone(context.Background(), "+49301234568")
	if err != nil || exists {
		t.Fatalf("expected unknown phone, got %v %v", exists, err)
	}
}

func TestRecordCallDropsBlankNotes(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	err := svc.RecordCall(context.Background(), repository.RecordCallParams{
		LeadID:   uuid.New(),
		CalledAt: time.Now(),
		Notes:    strPtr("   "),
	})
	if err != nil {
		t.Fatalf("RecordCall returned error: %v", err)
	}
	if repo.recorded[0].Notes != nil {
		t.Fatalf("expected blank notes dropped, got %q", *repo.recorded[0].Notes)
	}
}

func TestExportWritesSheet(t *testing.T) {
	repo := &fakeRepo{leads: []repository.Lead{
		{ID: uuid.New(), CompanyName: "Acme", Phone: "+49301234567", Status: "new", City: strPtr("Berlin")},
		{ID: uuid.New(), CompanyName: "Beta", Phone: "+49891234567", Status: "booked"},
	}}
	svc := newTestService(repo)

	var buf bytes.Buffer
	n, err := svc.Export(context.Background(), transport.ListLeadsRequest{}, &buf)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Leads")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "Acme" {
		t.Fatalf("unexpected first cell: %q", rows[1][0])
	}
}
