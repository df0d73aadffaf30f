package results

import (
	"github.com/cheerioskun/textfinder/internal/collector"
	"github.com/cheerioskun/textfinder/internal/models"
)

// Row is one rendered match
type Row struct {
	Match    models.MatchRecord
	Path     string
	Position string
	Preview  Preview
}

// PositionLabel renders the page-or-line indicator. A line value wins when
// present, otherwise the page is shown.
func PositionLabel(m models.MatchRecord) string {
	if m.Line.IsSet() {
		return "Line: " + m.Line.String()
	}
	page := m.Page.String()
	if page == "" {
		page = models.NotApplicable
	}
	return "Page: " + page
}

// BuildRows converts server matches into rows, in server order
func BuildRows(matches []models.MatchRecord) []Row {
	rows := make([]Row, 0, len(matches))
	for _, m := range matches {
		path := m.Path
		if path == "" {
			path = m.File
		}
		rows = append(rows, Row{
			Match:    m,
			Path:     path,
			Position: PositionLabel(m),
			Preview:  ParsePreview(m.Preview),
		})
	}
	return rows
}

// FileName is the name used to look the row's file up in the collected set
func (r Row) FileName() string {
	if r.Match.File != "" {
		return r.Match.File
	}
	return baseName(r.Path)
}

// Kind reports which viewer a row opens in
func (r Row) Kind() ViewKind {
	return KindOf(r.FileName())
}

// ViewKind is the server viewer a file is routed to
type ViewKind int

const (
	ViewCode ViewKind = iota // generic text/code viewer
	ViewPDF                  // raw file, paginated viewer
	ViewText                 // office documents and tables
)

var textViewExtensions = map[string]bool{
	".docx": true,
	".doc":  true,
	".xlsx": true,
	".xls":  true,
	".csv":  true,
}

// KindOf routes a file name by extension
func KindOf(name string) ViewKind {
	ext := collector.Extension(name)
	switch {
	case ext == ".pdf":
		return ViewPDF
	case textViewExtensions[ext]:
		return ViewText
	default:
		return ViewCode
	}
}

func (k ViewKind) String() string {
	switch k {
	case ViewPDF:
		return "pdf"
	case ViewText:
		return "text"
	default:
		return "code"
	}
}

func baseName(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' || p[i] == '\\' {
			return p[i+1:]
		}
	}
	return p
}
