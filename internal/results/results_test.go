package results

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/cheerioskun/textfinder/internal/client"
	"github.com/cheerioskun/textfinder/internal/models"
	"github.com/cheerioskun/textfinder/internal/registry"
	"github.com/cheerioskun/textfinder/internal/source"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAbsolutePath(t *testing.T) {
	tests := []struct {
		name string
		rel  string
		base string
		want string
	}{
		{"nested file", "A/sub/x.txt", "/srv/data", "/srv/data/sub/x.txt"},
		{"root only", "A", "/srv/data", "/srv/data"},
		{"root with trailing slash", "A/", "/srv/data", "/srv/data"},
		{"duplicate slashes", "A//sub/x.txt", "/srv/data/", "/srv/data/sub/x.txt"},
		{"windows paths", `Invoices\2024\jan.pdf`, `C:\Data\Invoices`, "C:/Data/Invoices/2024/jan.pdf"},
		{"unc share", "Share/x.txt", "//nas/share", "//nas/share/x.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveAbsolutePath(tt.rel, tt.base))
		})
	}
}

func TestRootOf(t *testing.T) {
	assert.Equal(t, "Invoices", RootOf("Invoices/2024/jan.pdf"))
	assert.Equal(t, "Invoices", RootOf(`Invoices\2024\jan.pdf`))
	assert.Equal(t, "jan.pdf", RootOf("jan.pdf"))
}

func TestPositionLabel(t *testing.T) {
	tests := []struct {
		name  string
		match models.MatchRecord
		want  string
	}{
		{"page only", models.MatchRecord{Page: "4"}, "Page: 4"},
		{"line wins", models.MatchRecord{Page: models.NotApplicable, Line: "12"}, "Line: 12"},
		{"not applicable page", models.MatchRecord{Page: models.NotApplicable}, "Page: N/A"},
		{"nothing", models.MatchRecord{}, "Page: N/A"},
		{"zero line", models.MatchRecord{Page: "2", Line: "0"}, "Page: 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PositionLabel(tt.match))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ViewPDF, KindOf("jan.PDF"))
	assert.Equal(t, ViewText, KindOf("budget.xlsx"))
	assert.Equal(t, ViewText, KindOf("data.csv"))
	assert.Equal(t, ViewText, KindOf("letter.doc"))
	assert.Equal(t, ViewCode, KindOf("main.go"))
	assert.Equal(t, ViewCode, KindOf("README"))
}

func TestParsePreview(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		plain      string
		highlights []string
	}{
		{
			name:       "mark tags",
			raw:        "net <mark>total</mark> due",
			plain:      "net total due",
			highlights: []string{"total"},
		},
		{
			name:       "pdf emphasis",
			raw:        "**total** due on **Jan**",
			plain:      "total due on Jan",
			highlights: []string{"total", "Jan"},
		},
		{
			name:  "other tags kept literal",
			raw:   `a <b>bold</b> c`,
			plain: "a <b>bold</b> c",
		},
		{
			name:  "entities kept literal",
			raw:   "fish &amp; chips",
			plain: "fish &amp; chips",
		},
		{
			name:       "indented source line",
			raw:        "    def <mark>__init__</mark>(self):",
			plain:      "    def __init__(self):",
			highlights: []string{"__init__"},
		},
		{
			name:       "generics",
			raw:        "List<String> <mark>names</mark> = new ArrayList<>();",
			plain:      "List<String> names = new ArrayList<>();",
			highlights: []string{"names"},
		},
		{
			name:       "dunder outside mark",
			raw:        "def __init__(self, <mark>name</mark>):",
			plain:      "def __init__(self, name):",
			highlights: []string{"name"},
		},
		{
			name:       "backticks",
			raw:        "path = `<mark>cmd</mark>`",
			plain:      "path = `cmd`",
			highlights: []string{"cmd"},
		},
		{
			name:       "hash comment",
			raw:        "# <mark>TODO</mark> fix this",
			plain:      "# TODO fix this",
			highlights: []string{"TODO"},
		},
		{
			name:       "list marker",
			raw:        "- <mark>item</mark> one",
			plain:      "- item one",
			highlights: []string{"item"},
		},
		{
			name:       "stars in source line",
			raw:        "def f(**kwargs): return x**<mark>2</mark>",
			plain:      "def f(**kwargs): return x**2",
			highlights: []string{"2"},
		},
		{
			name:       "upper case mark",
			raw:        "a <MARK>b</MARK> c",
			plain:      "a b c",
			highlights: []string{"b"},
		},
		{
			name:  "stray closing mark",
			raw:   "a </mark>b",
			plain: "a b",
		},
		{
			name:  "unpaired stars",
			raw:   "2 ** 8",
			plain: "2 ** 8",
		},
		{
			name:       "control characters",
			raw:        "\tx\r\n<mark>y</mark>\x1b[31m",
			plain:      " x  y [31m",
			highlights: []string{"y"},
		},
		{
			name:  "plain text",
			raw:   "if x < y then",
			plain: "if x < y then",
		},
		{
			name:  "empty",
			raw:   "",
			plain: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePreview(tt.raw)
			assert.Equal(t, tt.plain, p.Plain())
			assert.Equal(t, tt.highlights, p.Highlights())
		})
	}
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows([]models.MatchRecord{
		{File: "jan.pdf", Path: "Invoices/2024/jan.pdf", Page: "2", Preview: "**total**"},
		{File: "main.go", Line: "7", Preview: "<mark>func</mark> main"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "Invoices/2024/jan.pdf", rows[0].Path)
	assert.Equal(t, "Page: 2", rows[0].Position)
	assert.Equal(t, "main.go", rows[1].Path)
	assert.Equal(t, "Line: 7", rows[1].Position)
	assert.Equal(t, []string{"func"}, rows[1].Preview.Highlights())
}

type fakeServer struct {
	uploads  []string
	opened   []string
	fileID   string
	err      error
	folderOK string
}

func (s *fakeServer) UploadForView(_ context.Context, name string, _ source.FileHandle, originalPath string) (string, error) {
	s.uploads = append(s.uploads, originalPath)
	if s.err != nil {
		return "", s.err
	}
	return s.fileID, nil
}

func (s *fakeServer) OpenFolder(_ context.Context, fileID string) (string, error) {
	s.opened = append(s.opened, fileID)
	if s.folderOK == "" {
		return "", &client.ServerError{Status: "error", Message: "Folder not found"}
	}
	return s.folderOK, nil
}

func (s *fakeServer) FileURL(id, page string) string {
	return client.New(client.Config{BaseURL: "http://srv"}).FileURL(id, page)
}

func (s *fakeServer) TextViewURL(id, q string) string {
	return client.New(client.Config{BaseURL: "http://srv"}).TextViewURL(id, q)
}

func (s *fakeServer) CodeViewURL(id, q string) string {
	return client.New(client.Config{BaseURL: "http://srv"}).CodeViewURL(id, q)
}

type recordingOpener struct {
	targets []string
}

func (o *recordingOpener) Open(target string) error {
	o.targets = append(o.targets, target)
	return nil
}

func invoicesRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range map[string]string{
		"/mnt/Invoices/2024/jan.pdf": "%PDF",
		"/mnt/Invoices/readme.md":    "# readme",
		"/mnt/Invoices/q1.xlsx":      "xlsx",
	} {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}

	dir, err := source.OpenDirectory(fs, "/mnt/Invoices")
	require.NoError(t, err)

	r := registry.New(nil)
	_, err = r.Add(context.Background(), dir)
	require.NoError(t, err)
	return r
}

func TestActions_ViewScenario(t *testing.T) {
	r := invoicesRegistry(t)
	r.SetBasePath("Invoices", "/data/Invoices")

	srv := &fakeServer{fileID: "f1"}
	opener := &recordingOpener{}
	actions := NewActions(r, srv, opener)

	rows := BuildRows([]models.MatchRecord{
		{File: "jan.pdf", Path: "Invoices/2024/jan.pdf", Page: "3"},
		{File: "q1.xlsx", Path: "Invoices/q1.xlsx", Page: models.NotApplicable},
		{File: "readme.md", Path: "Invoices/readme.md", Line: "1"},
	})

	target, err := actions.View(context.Background(), rows[0], "total")
	require.NoError(t, err)
	assert.Equal(t, "http://srv/get_file/f1#page=3", target)
	assert.Equal(t, []string{"/data/Invoices/2024/jan.pdf"}, srv.uploads)

	target, err = actions.View(context.Background(), rows[1], "total")
	require.NoError(t, err)
	assert.Equal(t, "http://srv/view_text/f1?q=total", target)

	target, err = actions.View(context.Background(), rows[2], "total")
	require.NoError(t, err)
	assert.Equal(t, "http://srv/view_code/f1?q=total", target)

	assert.Len(t, opener.targets, 3)
}

func TestActions_PDFWithoutPage(t *testing.T) {
	r := invoicesRegistry(t)
	r.SetBasePath("Invoices", "/data/Invoices")
	actions := NewActions(r, &fakeServer{fileID: "f1"}, nil)

	rows := BuildRows([]models.MatchRecord{{File: "jan.pdf", Page: models.NotApplicable}})
	target, err := actions.View(context.Background(), rows[0], "q")
	require.NoError(t, err)
	assert.Equal(t, "http://srv/get_file/f1", target)
}

func TestActions_MissingBasePath(t *testing.T) {
	r := invoicesRegistry(t)
	srv := &fakeServer{fileID: "f1"}
	actions := NewActions(r, srv, &recordingOpener{})

	rows := BuildRows([]models.MatchRecord{{File: "jan.pdf"}})

	_, err := actions.View(context.Background(), rows[0], "q")
	var missing *models.MissingBasePathError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "Invoices", missing.Folder)

	_, err = actions.OpenFolder(context.Background(), rows[0])
	assert.True(t, errors.As(err, &missing))
	assert.Empty(t, srv.uploads)
}

func TestActions_FileNotInSelection(t *testing.T) {
	r := invoicesRegistry(t)
	r.SetBasePath("Invoices", "/data/Invoices")
	actions := NewActions(r, &fakeServer{fileID: "f1"}, nil)

	rows := BuildRows([]models.MatchRecord{{File: "gone.txt"}})
	_, err := actions.View(context.Background(), rows[0], "q")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestActions_OpenFolder(t *testing.T) {
	r := invoicesRegistry(t)
	r.SetBasePath("Invoices", "/data/Invoices")
	rows := BuildRows([]models.MatchRecord{{File: "readme.md", Line: "1"}})

	srv := &fakeServer{fileID: "f9", folderOK: "Opened folder"}
	msg, err := NewActions(r, srv, nil).OpenFolder(context.Background(), rows[0])
	require.NoError(t, err)
	assert.Equal(t, "Opened folder", msg)
	assert.Equal(t, []string{"f9"}, srv.opened)

	failing := &fakeServer{fileID: "f9"}
	_, err = NewActions(r, failing, nil).OpenFolder(context.Background(), rows[0])
	assert.EqualError(t, err, "Folder not found")
}

func TestActions_UploadFailure(t *testing.T) {
	r := invoicesRegistry(t)
	r.SetBasePath("Invoices", "/data/Invoices")
	rows := BuildRows([]models.MatchRecord{{File: "readme.md"}})

	srv := &fakeServer{err: errors.New("connection refused")}
	_, err := NewActions(r, srv, nil).View(context.Background(), rows[0], "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
