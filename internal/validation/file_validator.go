package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apierrors "esgpulse/internal/errors"
)

// SpreadsheetExtensions is the recognized spreadsheet extension set. Files
// with any other extension are skipped, not failed.
var SpreadsheetExtensions = map[string]bool{
	".xlsx": true,
	".xls":  true,
}

// IsSupportedSpreadsheet reports whether the filename names a processable
// spreadsheet: recognized extension (case-insensitive) and not an Excel
// lock/temp file ("~$" prefix).
func IsSupportedSpreadsheet(filename string) bool {
	base := filepath.Base(filename)
	if strings.HasPrefix(base, "~$") {
		return false
	}
	return SpreadsheetExtensions[strings.ToLower(filepath.Ext(base))]
}

// CheckSpreadsheet returns ErrUnsupportedFileType when the filename is not a
// processable spreadsheet, so callers can branch on the skip condition with
// errors.Is.
func CheckSpreadsheet(filename string) error {
	if !IsSupportedSpreadsheet(filename) {
		return fmt.Errorf("%w: %s", apierrors.ErrUnsupportedFileType, filepath.Base(filename))
	}
	return nil
}

// FileValidator provides filesystem-level validation for the batch and
// watcher entry points.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateInputDirectory validates that the input directory exists and is a
// directory. An empty directory is fine; there is just nothing to process.
func (v *FileValidator) ValidateInputDirectory(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// ValidateOutputDirectory ensures the output directory exists or can be
// created, and is writable.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	return nil
}

// ValidateSpreadsheetFile checks that the path exists, is readable, and
// names a supported spreadsheet.
func (v *FileValidator) ValidateSpreadsheetFile(path string) error {
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

	if err := CheckSpreadsheet(path); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ListSpreadsheets returns the supported spreadsheet files directly inside
// dir, in directory order.
func (v *FileValidator) ListSpreadsheets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsSupportedSpreadsheet(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	v.logger.Debug("Spreadsheets discovered",
		slog.String("directory", dir),
		slog.Int("count", len(files)))
	return files, nil
}
