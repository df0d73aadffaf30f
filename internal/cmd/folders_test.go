package cmd

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

func TestParseFolderArgs(t *testing.T) {
	cwd, err := filepath.Abs(".")
	require.NoError(t, err)

	folders, err := parseFolderArgs([]string{"/data/Invoices", "/data/Reports=D:/Reports", "docs=/srv/docs=x"})
	require.NoError(t, err)

	assert.Equal(t, []folderArg{
		{Path: "/data/Invoices"},
		{Path: "/data/Reports", BasePath: "D:/Reports"},
		{Path: filepath.Join(cwd, "docs"), BasePath: "/srv/docs=x"},
	}, folders)
}

func TestParseFolderArgs_Invalid(t *testing.T) {
	for _, arg := range []string{"", "=/srv/base", "  =x"} {
		_, err := parseFolderArgs([]string{arg})
		assert.Error(t, err, "arg %q", arg)
	}
}

func newCmdTestFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range []string{"/data/Invoices/jan.pdf", "/data/Reports/q1.xlsx", "/data/Reports/notes.bin"} {
		require.NoError(t, fs.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0644))
	}
	return fs
}

func TestAddFolders_DefaultBase(t *testing.T) {
	fs := newCmdTestFs(t)
	reg := registry.New(nil)

	err := addFolders(context.Background(), fs, reg, []folderArg{
		{Path: "/data/Invoices"},
		{Path: "/data/Reports", BasePath: `D:\Reports\`},
	}, false, true)
	require.NoError(t, err)

	base, ok := reg.BasePath("Invoices")
	require.True(t, ok)
	assert.Equal(t, "/data/Invoices", base)

	base, ok = reg.BasePath("Reports")
	require.True(t, ok)
	assert.Equal(t, "D:/Reports", base)

	assert.Equal(t, 2, reg.Files().Len())
}

func TestAddFolders_NoDefaultBase(t *testing.T) {
	fs := newCmdTestFs(t)
	reg := registry.New(nil)

	err := addFolders(context.Background(), fs, reg, []folderArg{{Path: "/data/Invoices"}}, true, false)
	require.NoError(t, err)

	_, ok := reg.BasePath("Invoices")
	assert.False(t, ok)
	folders := reg.Folders()
	require.Len(t, folders, 1)
	assert.True(t, folders[0].IsFallback())
}

func TestAddFolders_Missing(t *testing.T) {
	reg := registry.New(nil)
	err := addFolders(context.Background(), newCmdTestFs(t), reg, []folderArg{{Path: "/data/Missing"}}, false, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add /data/Missing")
}

func TestPickRow(t *testing.T) {
	rows := results.BuildRows([]models.MatchRecord{{File: "a.txt"}, {File: "b.txt"}})

	row, err := pickRow(rows, 2)
	require.NoError(t, err)
	assert.Equal(t, "b.txt", row.FileName())

	for _, n := range []int{-1, 0, 3} {
		_, err := pickRow(rows, n)
		assert.Error(t, err, "row %d", n)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "ünïc…", truncate("ünïcödé", 5))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "64.0 MB", formatBytes(64*1024*1024))
}

func TestFolderTable(t *testing.T) {
	fs := newCmdTestFs(t)
	reg := registry.New(nil)
	require.NoError(t, addFolders(context.Background(), fs, reg, []folderArg{{Path: "/data/Reports"}}, false, false))

	out := folderTable(reg.Folders(), reg.Files()).String()
	assert.Contains(t, out, "Reports")
	assert.Contains(t, out, "/data/Reports")
	assert.Contains(t, out, "directory")
}

func TestAddFolders_PickedFiles(t *testing.T) {
	fs := newCmdTestFs(t)
	reg := registry.New(nil)

	err := addFolders(context.Background(), fs, reg, []folderArg{
		{Path: "/data/Invoices"},
		{Path: "/data/Reports/q1.xlsx"},
		{Path: "/data/Reports/notes.bin"},
	}, false, true)
	require.NoError(t, err)

	folders := reg.Folders()
	require.Len(t, folders, 2)
	assert.Equal(t, models.FallbackRootName, folders[1].RootName)

	path, ok := reg.Files().Path("q1.xlsx")
	require.True(t, ok)
	assert.Equal(t, "Selected Files/q1.xlsx", path)

	base, ok := reg.BasePath(models.FallbackRootName)
	require.True(t, ok)
	assert.Equal(t, "/data/Reports", base)
}

func TestAddFolders_PickedFilesMixedParents(t *testing.T) {
	fs := newCmdTestFs(t)
	reg := registry.New(nil)

	err := addFolders(context.Background(), fs, reg, []folderArg{
		{Path: "/data/Invoices/jan.pdf"},
		{Path: "/data/Reports/q1.xlsx"},
	}, false, true)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Files().Len())

	_, ok := reg.BasePath(models.FallbackRootName)
	assert.False(t, ok)

	reg = registry.New(nil)
	err = addFolders(context.Background(), fs, reg, []folderArg{
		{Path: "/data/Invoices/jan.pdf"},
		{Path: "/data/Reports/q1.xlsx", BasePath: "/srv/picked"},
	}, false, true)
	require.NoError(t, err)
	base, _ := reg.BasePath(models.FallbackRootName)
	assert.Equal(t, "/srv/picked", base)
}
