package validation

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFilename(t *testing.T) {
	v := NewUploadValidator(nil)

	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"valid", "ordenes.xlsx", false},
		{"valid uppercase extension", "ORDENES.XLSX", false},
		{"empty", "", true},
		{"wrong extension", "ordenes.csv", true},
		{"legacy excel", "ordenes.xls", true},
		{"office lock file", "~$ordenes.xlsx", true},
		{"path traversal", "../ordenes.xlsx", true},
		{"windows path", `c:\tmp\ordenes.xlsx`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFilename(tt.filename)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateWorkbook(t *testing.T) {
	v := NewUploadValidator(nil)

	t.Run("xlsx signature accepted", func(t *testing.T) {
		payload := append([]byte{0x50, 0x4b, 0x03, 0x04}, []byte("rest of archive")...)
		r, err := v.ValidateWorkbook(bytes.NewReader(payload))
		require.NoError(t, err)

		// The signature bytes must still be readable downstream.
		all, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, payload, all)
	})

	t.Run("plain text rejected", func(t *testing.T) {
		_, err := v.ValidateWorkbook(strings.NewReader("ORDEN,PROVEEDOR\n1,ACME"))
		assert.Error(t, err)
	})

	t.Run("short stream rejected", func(t *testing.T) {
		_, err := v.ValidateWorkbook(strings.NewReader("PK"))
		assert.Error(t, err)
	})
}
