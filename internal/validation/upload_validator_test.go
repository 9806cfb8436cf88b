package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUpload(t *testing.T) {
	v := NewUploadValidator(nil, 1024)

	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  bool
	}{
		{"valid workbook", "medicoes.xlsx", 512, false},
		{"uppercase extension", "MEDICOES.XLSX", 512, false},
		{"wrong extension", "medicoes.xls", 512, true},
		{"csv rejected", "medicoes.csv", 512, true},
		{"no extension", "medicoes", 512, true},
		{"empty filename", "", 512, true},
		{"path traversal", "../medicoes.xlsx", 512, true},
		{"embedded slash", "sub/medicoes.xlsx", 512, true},
		{"empty file", "medicoes.xlsx", 0, true},
		{"over size limit", "medicoes.xlsx", 2048, true},
		{"at size limit", "medicoes.xlsx", 1024, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateUpload(tt.filename, tt.size)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUploadNoSizeLimit(t *testing.T) {
	v := NewUploadValidator(nil, 0)
	assert.NoError(t, v.ValidateUpload("big.xlsx", 1<<30))
}

func TestValidateWorkbookPath(t *testing.T) {
	v := NewUploadValidator(nil, 0)
	dir := t.TempDir()

	t.Run("readable workbook accepted", func(t *testing.T) {
		path := filepath.Join(dir, "ok.xlsx")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
		assert.NoError(t, v.ValidateWorkbookPath(path))
	})

	t.Run("missing file rejected", func(t *testing.T) {
		assert.Error(t, v.ValidateWorkbookPath(filepath.Join(dir, "missing.xlsx")))
	})

	t.Run("wrong extension rejected", func(t *testing.T) {
		path := filepath.Join(dir, "data.csv")
		require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
		assert.Error(t, v.ValidateWorkbookPath(path))
	})

	t.Run("directory rejected", func(t *testing.T) {
		sub := filepath.Join(dir, "sub.xlsx")
		require.NoError(t, os.Mkdir(sub, 0o755))
		assert.Error(t, v.ValidateWorkbookPath(sub))
	})

	t.Run("empty file rejected", func(t *testing.T) {
		path := filepath.Join(dir, "empty.xlsx")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		assert.Error(t, v.ValidateWorkbookPath(path))
	})
}
