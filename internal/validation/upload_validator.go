// Package validation checks uploads and input files before they reach
// the workbook parser. Rejections here are user-facing validation
// errors, not load failures.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// UploadValidator screens workbook uploads by name and size
type UploadValidator struct {
	logger      *slog.Logger
	maxFileSize int64
}

// NewUploadValidator creates a new upload validator
func NewUploadValidator(logger *slog.Logger, maxFileSize int64) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		logger:      logger.With(slog.String("component", "upload_validator")),
		maxFileSize: maxFileSize,
	}
}

// ValidateUpload checks the filename and declared size of an upload.
// Only .xlsx workbooks are accepted; anything else is rejected before
// any parsing happens.
func (v *UploadValidator) ValidateUpload(filename string, size int64) error {
	if filename == "" {
		return fmt.Errorf("filename is required")
	}

	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		v.logger.Warn("Upload rejected, suspicious filename",
			slog.String("filename", filename))
		return fmt.Errorf("invalid filename %q", filename)
	}

	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		v.logger.Warn("Upload rejected, unsupported extension",
			slog.String("filename", filename))
		return fmt.Errorf("only .xlsx files are supported, got %q", filepath.Ext(filename))
	}

	if size <= 0 {
		return fmt.Errorf("uploaded file is empty")
	}

	if v.maxFileSize > 0 && size > v.maxFileSize {
		v.logger.Warn("Upload rejected, file too large",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("max_size", v.maxFileSize))
		return fmt.Errorf("file exceeds the maximum size of %d bytes", v.maxFileSize)
	}

	return nil
}

// ValidateWorkbookPath checks that a local path points at a readable
// .xlsx file. Used by the CLI before it opens input files.
func (v *UploadValidator) ValidateWorkbookPath(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("only .xlsx files are supported: %s", path)
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}
	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return fmt.Errorf("file %s exceeds the maximum size of %d bytes", path, v.maxFileSize)
	}

	return nil
}
