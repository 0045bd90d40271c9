package storage

import (
	"fmt"
	"path"
	"strings"
)

// AllowedContentTypes lists the MIME types browsers send for spreadsheets.
var AllowedContentTypes = map[string]bool{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"application/vnd.ms-excel":                                          true,
	"text/csv":                                                          true,
	"application/csv":                                                   true,
	"text/plain":                                                        true,
	"application/octet-stream":                                          true,
}

// AllowedExtensions lists the spreadsheet formats the importer can parse.
var AllowedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// ValidateUpload checks name, content type and size of an uploaded spreadsheet.
func (s *MinIOService) ValidateUpload(fileName, contentType string, sizeBytes int64) error {
	return validateUpload(fileName, contentType, sizeBytes, s.maxFileSize)
}

func validateUpload(fileName, contentType string, sizeBytes, maxFileSize int64) error {
	ext := strings.ToLower(path.Ext(fileName))
	if !AllowedExtensions[ext] {
		return fmt.Errorf("file type %q is not supported", ext)
	}

	// Normalize content type (remove parameters like charset)
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if normalized != "" && !AllowedContentTypes[normalized] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}

	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if maxFileSize > 0 && sizeBytes > maxFileSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, maxFileSize)
	}
	return nil
}
