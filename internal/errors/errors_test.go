package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusNotFound, "DATASET_NOT_FOUND", "Dataset not found")
	assert.Equal(t, "Dataset not found", err.Error())
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestNewWithDetails(t *testing.T) {
	err := NewWithDetails(http.StatusBadRequest, "MALFORMED_UPLOAD", "Uploaded file could not be read", "zip: not a valid zip file")
	assert.Equal(t, "MALFORMED_UPLOAD", err.ErrorCode)
	assert.Equal(t, "zip: not a valid zip file", err.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("months", "months must be between 1 and 12")
	require.NotNil(t, err.Details)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "months", detail.Field)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestNoDataError(t *testing.T) {
	err := NoDataError(map[string]interface{}{"year": 2025})
	assert.Equal(t, "NO_DATA", err.ErrorCode)
	assert.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("zip: not a valid zip file")
	err := NewParsingError("failed to open workbook", cause)

	assert.Contains(t, err.Error(), "PARSING")
	assert.Contains(t, err.Error(), "failed to open workbook")
	assert.Equal(t, cause, err.Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := NewExportError("sheet write failed", nil).
		WithContext("sheet", "Ordenes")
	assert.Equal(t, "Ordenes", err.Context["sheet"])
}
