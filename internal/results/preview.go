package results

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Segment is a run of preview text, highlighted or not
type Segment struct {
	Text      string
	Highlight bool
}

// Preview is a match snippet split into highlighted and plain runs
type Preview []Segment

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
	boldDelim = "**"
)

// ParsePreview splits a server snippet into runs. Text previews are raw
// source lines with the hit wrapped in <mark>...</mark>; PDF previews wrap
// hits in **...**. Nothing else is interpreted: every other byte is kept as
// literal text, except control characters, which become spaces.
func ParsePreview(raw string) Preview {
	b := &previewBuilder{}

	// A preview carrying mark tags is a source line, where ** is ordinary
	// text (x**2, **kwargs)
	if containsFold(raw, markOpen) || containsFold(raw, markClose) {
		b.parseMarks(raw)
	} else {
		b.parseBold(raw)
	}
	return b.segments
}

// Plain returns the preview without highlighting
func (p Preview) Plain() string {
	var sb strings.Builder
	for _, s := range p {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// Highlights returns the highlighted runs in order
func (p Preview) Highlights() []string {
	var out []string
	for _, s := range p {
		if s.Highlight {
			out = append(out, s.Text)
		}
	}
	return out
}

// Render styles the highlighted runs
func (p Preview) Render(highlight lipgloss.Style) string {
	var sb strings.Builder
	for _, s := range p {
		if s.Highlight {
			sb.WriteString(highlight.Render(s.Text))
		} else {
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

type previewBuilder struct {
	segments []Segment
}

// parseMarks toggles highlighting on <mark> and </mark>. Unbalanced closing
// tags are dropped.
func (b *previewBuilder) parseMarks(s string) {
	depth := 0
	for len(s) > 0 {
		start := indexFold(s, markOpen)
		end := indexFold(s, markClose)

		switch {
		case start < 0 && end < 0:
			b.write(s, depth > 0)
			return
		case end < 0 || (start >= 0 && start < end):
			b.write(s[:start], depth > 0)
			depth++
			s = s[start+len(markOpen):]
		default:
			b.write(s[:end], depth > 0)
			if depth > 0 {
				depth--
			}
			s = s[end+len(markClose):]
		}
	}
}

// parseBold highlights text between paired ** delimiters. A trailing
// unpaired ** is literal.
func (b *previewBuilder) parseBold(s string) {
	for len(s) > 0 {
		start := strings.Index(s, boldDelim)
		if start < 0 {
			b.write(s, false)
			return
		}
		end := strings.Index(s[start+len(boldDelim):], boldDelim)
		if end < 0 {
			b.write(s, false)
			return
		}
		end += start + len(boldDelim)

		b.write(s[:start], false)
		b.write(s[start+len(boldDelim):end], true)
		s = s[end+len(boldDelim):]
	}
}

func (b *previewBuilder) write(s string, hl bool) {
	if s == "" {
		return
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	if n := len(b.segments); n > 0 && b.segments[n-1].Highlight == hl {
		b.segments[n-1].Text += s
		return
	}
	b.segments = append(b.segments, Segment{Text: s, Highlight: hl})
}

// indexFold is strings.Index for ASCII needles, ignoring case
func indexFold(s, needle string) int {
	n := len(needle)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], needle) {
			return i
		}
	}
	return -1
}

func containsFold(s, needle string) bool {
	return indexFold(s, needle) >= 0
}
