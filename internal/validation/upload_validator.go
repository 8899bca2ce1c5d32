package validation

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// xlsxMagic is the zip local-file-header signature; every .xlsx starts
// with it.
var xlsxMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// UploadValidator rejects uploads that cannot possibly be workbooks before
// the parser spends memory on them.
type UploadValidator struct {
	logger *slog.Logger
}

// NewUploadValidator creates an upload validator.
func NewUploadValidator(logger *slog.Logger) *UploadValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadValidator{
		logger: logger.With(slog.String("component", "upload_validator")),
	}
}

// ValidateFilename checks the name a workbook was uploaded under: it must
// carry an .xlsx extension, must not be an Office lock file and must not
// contain path separators.
func (v *UploadValidator) ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("filename is empty")
	}
	if strings.ContainsAny(name, `/\`) {
		v.logger.Warn("rejected filename with path separators",
			slog.String("filename", name))
		return fmt.Errorf("filename %q must not contain path separators", name)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".xlsx" {
		return fmt.Errorf("file %q is not an .xlsx workbook (extension: %s)", name, ext)
	}
	if strings.HasPrefix(filepath.Base(name), "~$") {
		return fmt.Errorf("file %q is an Office lock file", name)
	}
	return nil
}

// ValidateWorkbook sniffs the stream's leading bytes for the xlsx (zip)
// signature and returns a reader with those bytes intact.
func (v *UploadValidator) ValidateWorkbook(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(xlsxMagic))
	if err != nil {
		return nil, fmt.Errorf("file is too short to be a workbook")
	}
	if !bytes.Equal(head, xlsxMagic) {
		v.logger.Warn("rejected upload without xlsx signature",
			slog.String("leading_bytes", fmt.Sprintf("%x", head)))
		return nil, fmt.Errorf("file does not look like an .xlsx workbook")
	}
	return br, nil
}
