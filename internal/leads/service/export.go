package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"leadcall_backend/internal/leads/repository"
	"leadcall_backend/internal/leads/transport"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet    = "Leads"
	exportPageSize = 500
	maxExportRows  = 50000
)

var exportHeaders = []interface{}{
	"Company", "Contact", "Salutation", "Phone", "Email", "Website", "Industry", "City",
	"Status", "Product", "Call attempts", "Last call", "Notes", "Created",
}

// Export writes every lead matching the list filters as an XLSX workbook.
// Pagination fields of req are ignored.
func (s *Service) Export(ctx context.Context, req transport.ListLeadsRequest, w io.Writer) (int, error) {
	params, err := listParams(req)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, fmt.Errorf("prepare export sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(exportSheet)
	if err != nil {
		return 0, fmt.Errorf("open export stream: %w", err)
	}
	if err := sw.SetRow("A1", exportHeaders); err != nil {
		return 0, fmt.Errorf("write export header: %w", err)
	}

	written := 0
	params.Limit = exportPageSize
	for params.Offset = 0; params.Offset < maxExportRows; params.Offset += exportPageSize {
		items, _, err := s.repo.List(ctx, params)
		if err != nil {
			return 0, err
		}
		for _, lead := range items {
			cell, err := excelize.CoordinatesToCellName(1, written+2)
			if err != nil {
				return 0, err
			}
			if err := sw.SetRow(cell, exportRow(lead)); err != nil {
				return 0, fmt.Errorf("write export row: %w", err)
			}
			written++
		}
		if len(items) < exportPageSize {
			break
		}
	}

	if err := sw.Flush(); err != nil {
		return 0, fmt.Errorf("flush export: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}

	s.log.WithContext(ctx).Info("leads exported", "rows", written)
	return written, nil
}

func exportRow(l repository.Lead) []interface{} {
	lastCall := ""
	if l.LastCallAt != nil {
		lastCall = l.LastCallAt.Format(time.RFC3339)
	}
	return []interface{}{
		l.CompanyName,
		deref(l.ContactName),
		deref(l.Salutation),
		l.Phone,
		deref(l.Email),
		deref(l.Website),
		deref(l.Industry),
		deref(l.City),
		l.Status,
		deref(l.Product),
		l.CallAttempts,
		lastCall,
		deref(l.Notes),
		l.CreatedAt.Format(time.RFC3339),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
