package pipeline

import (
	"context"
	"fmt"

	"leadcall_backend/platform/logger"
	"leadcall_backend/platform/phone"

	"github.com/google/uuid"
)

const (
	// MaxErrors caps the messages returned for one import.
	MaxErrors = 10

	// PlaceholderCompanyName is stored when a row has no company name.
	PlaceholderCompanyName = "Unbekannt"

	unknownCompany = "unknown"
	emptyValue     = "empty"
)

// Lead is a reconciled row ready to be stored.
type Lead struct {
	CompanyName string
	ContactName *string
	Salutation  *string
	Phone       string
	Email       *string
	Website     *string
	Industry    *string
	City        *string
	GroupID     *uuid.UUID
}

// LeadStore is the persistence the reconciler needs.
type LeadStore interface {
	ExistsWithPhone(ctx context.Context, canonicalPhone string) (bool, error)
	Create(ctx context.Context, lead Lead) error
}

// Options control one reconciliation.
type Options struct {
	SkipDuplicates bool
	GroupID        *uuid.UUID
}

// Result summarizes one reconciliation. Skipped includes Invalid, Duplicates and Failed.
type Result struct {
	Imported   int
	Skipped    int
	Total      int
	Invalid    int
	Duplicates int
	Failed     int
	Errors     []string
}

func (r *Result) addError(msg string) {
	if len(r.Errors) < MaxErrors {
		r.Errors = append(r.Errors, msg)
	}
}

// Reconciler imports rows one by one. A failing row never aborts the batch.
type Reconciler struct {
	store LeadStore
	log   *logger.Logger
}

// NewReconciler creates a reconciler writing to store.
func NewReconciler(store LeadStore, log *logger.Logger) *Reconciler {
	return &Reconciler{store: store, log: log}
}

// Reconcile processes rows strictly in input order. A nil row stands for an
// element that could not be decoded and is skipped as invalid.
func (r *Reconciler) Reconcile(ctx context.Context, rows []Row, mapping Mapping, opts Options) Result {
	result := Result{Total: len(rows), Errors: []string{}}

	for i, row := range rows {
		if row == nil {
			result.Skipped++
			result.Invalid++
			result.addError(fmt.Sprintf("skipped: row %d is not an object", i+1))
			continue
		}

		fields := Project(row, mapping)
		rawPhone := fields[FieldPhone]

		canonical, ok := phone.Normalize(rawPhone)
		if !ok {
			company := fields[FieldCompanyName]
			if company == "" {
				company = unknownCompany
			}
			if rawPhone == "" {
				rawPhone = emptyValue
			}
			result.Skipped++
			result.Invalid++
			result.addError(fmt.Sprintf("skipped: invalid phone number for %q: %s", company, rawPhone))
			continue
		}

		lead := buildLead(fields, canonical, opts.GroupID)

		if opts.SkipDuplicates {
			exists, err := r.store.ExistsWithPhone(ctx, canonical)
			if err != nil {
				r.fail(ctx, &result, i, lead.CompanyName, err)
				continue
			}
			if exists {
				result.Skipped++
				result.Duplicates++
				continue
			}
		}

		if err := r.store.Create(ctx, lead); err != nil {
			r.fail(ctx, &result, i, lead.CompanyName, err)
			continue
		}
		result.Imported++
	}

	return result
}

func (r *Reconciler) fail(ctx context.Context, result *Result, index int, company string, err error) {
	result.Skipped++
	result.Failed++
	result.addError(fmt.Sprintf("import failed for %q: %v", company, err))
	if r.log != nil {
		r.log.WithContext(ctx).Warn("import row failed", "row", index+1, "company", company, "error", err)
	}
}

func buildLead(fields map[Field]string, canonicalPhone string, groupID *uuid.UUID) Lead {
	company := fields[FieldCompanyName]
	if company == "" {
		company = PlaceholderCompanyName
	}
	return Lead{
		CompanyName: company,
		ContactName: optional(fields, FieldContactName),
		Salutation:  optional(fields, FieldSalutation),
		Phone:       canonicalPhone,
		Email:       optional(fields, FieldEmail),
		Website:     optional(fields, FieldWebsite),
		Industry:    optional(fields, FieldIndustry),
		City:        optional(fields, FieldCity),
		GroupID:     groupID,
	}
}

func optional(fields map[Field]string, f Field) *string {
	v, ok := fields[f]
	if !ok {
		return nil
	}
	return &v
}
