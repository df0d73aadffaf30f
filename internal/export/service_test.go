package export

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/cheerioskun/textfinder/internal/results"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSelection(t *testing.T) (afero.Fs, *models.FileSet) {
	t.Helper()
	fs := afero.NewMemMapFs()
	files := map[string]string{
		"/data/Invoices/2024/jan.pdf": "%PDF-jan",
		"/data/Invoices/readme.md":    "# invoices",
	}
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	require.NoError(t, fs.MkdirAll("/out", 0755))

	reg := registry.New(nil)
	_, err := reg.AddPath(context.Background(), fs, "/data/Invoices", false)
	require.NoError(t, err)
	return fs, reg.Files()
}

func matchRows(names ...string) []results.Row {
	matches := make([]models.MatchRecord, 0, len(names))
	for _, n := range names {
		matches = append(matches, models.MatchRecord{File: n})
	}
	return results.BuildRows(matches)
}

func TestMatched(t *testing.T) {
	_, files := newSelection(t)

	matched, missing := Matched(files, matchRows("jan.pdf", "gone.txt", "jan.pdf"))
	require.Len(t, matched, 1)
	assert.Equal(t, "Invoices/2024/jan.pdf", matched[0].RelativePath)
	assert.Equal(t, []string{"gone.txt"}, missing)
}

func TestService_Plan(t *testing.T) {
	fs, files := newSelection(t)

	summary := NewService(fs).Plan(files, matchRows("jan.pdf", "readme.md"), "/out/hits")
	assert.Equal(t, 2, summary.FileCount)
	assert.Equal(t, int64(len("%PDF-jan")+len("# invoices")), summary.TotalSize)
	assert.Empty(t, summary.Missing)

	ok, _ := afero.Exists(fs, "/out/hits")
	assert.False(t, ok)
}

func TestService_ExportMatches(t *testing.T) {
	fs, files := newSelection(t)
	svc := NewService(fs)

	summary, err := svc.ExportMatches(context.Background(), files, matchRows("jan.pdf"), Options{DestinationPath: "/out/hits"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FileCount)

	data, err := afero.ReadFile(fs, "/out/hits/Invoices/2024/jan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-jan", string(data))

	_, err = svc.ExportMatches(context.Background(), files, matchRows("jan.pdf"), Options{DestinationPath: "/out/hits"})
	assert.ErrorContains(t, err, "overwrite is disabled")

	_, err = svc.ExportMatches(context.Background(), files, matchRows("jan.pdf"), Options{DestinationPath: "/out/hits", Overwrite: true})
	assert.NoError(t, err)
}

func TestDestination(t *testing.T) {
	tests := []struct {
		rel     string
		want    string
		wantErr bool
	}{
		{"Invoices/2024/jan.pdf", "/out/Invoices/2024/jan.pdf", false},
		{`Invoices\2024\jan.pdf`, "/out/Invoices/2024/jan.pdf", false},
		{"../etc/passwd", "", true},
		{"Invoices/../../x", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, err := destination("/out", tt.rel)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, filepath.ToSlash(got))
		})
	}
}

func TestValidateExportPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))
	require.NoError(t, afero.WriteFile(fs, "/out/file.txt", nil, 0644))

	assert.NoError(t, ValidateExportPath(fs, "/out"))
	assert.NoError(t, ValidateExportPath(fs, "/out/new"))
	assert.Error(t, ValidateExportPath(fs, "  "))
	assert.Error(t, ValidateExportPath(fs, "/out/file.txt"))
	assert.Error(t, ValidateExportPath(fs, "/missing/new"))
}
