package storage

import "testing"

func TestValidateUpload(t *testing.T) {
	const max = 1024

	tests := []struct {
		name        string
		fileName    string
		contentType string
		size        int64
		wantErr     bool
	}{
		{"xlsx", "leads.xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", 10, false},
		{"csv with charset", "Leads.CSV", "text/csv; charset=utf-8", 10, false},
		{"missing content type", "leads.csv", "", 10, false},
		{"legacy xls", "leads.xls", "application/vnd.ms-excel", 10, true},
		{"pdf", "leads.pdf", "application/pdf", 10, true},
		{"wrong mime", "leads.csv", "image/png", 10, true},
		{"empty", "leads.csv", "text/csv", 0, true},
		{"too large", "leads.csv", "text/csv", max + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUpload(tt.fileName, tt.contentType, tt.size, max)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateUpload() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		folder, fileName, want string
	}{
		{"imports/2026-05", "Messe Leads.xlsx", "imports/2026-05/Messe Leads_abc12345.xlsx"},
		{"imports", `C:\Users\op\leads.csv`, "imports/leads_abc12345.csv"},
		{"imports", "../../etc/passwd", "imports/passwd_abc12345"},
		{"imports", ".csv", "imports/upload_abc12345.csv"},
	}
	for _, tt := range tests {
		if got := objectKey(tt.folder, tt.fileName, "abc12345"); got != tt.want {
			t.Errorf("objectKey(%q, %q) = %q, want %q", tt.folder, tt.fileName, got, tt.want)
		}
	}
}
