package collector

import (
	"sort"
	"strings"
)

const (
	// MaxFileSize is the largest file admitted, inclusive (64 MiB)
	MaxFileSize int64 = 64 * 1024 * 1024

	// LockFilePrefix marks transient lock files written by office suites
	LockFilePrefix = "~$"
)

// supportedExtensions are the extensions the search server can read
var supportedExtensions = []string{
	".pdf", ".docx", ".doc", ".py", ".js", ".java", ".class", ".cpp", ".cc",
	".cxx", ".hpp", ".hxx", ".cs", ".ts", ".tsx", ".go", ".c", ".h", ".php",
	".phtml", ".sql", ".rs", ".rb", ".swift", ".kt", ".kts", ".r", ".pl",
	".pm", ".dart", ".scala", ".sc", ".vb", ".asm", ".s", ".html", ".htm",
	".css", ".m", ".mat", ".sh", ".bash", ".cls", ".cbl", ".cob", ".fs",
	".fsi", ".fsx", ".ps1", ".plsql", ".scm", ".ss", ".tsql", ".cr", ".pro",
	".vhd", ".vhdl", ".d", ".abap", ".txt", ".md", ".log", ".json", ".xml",
	".yml", ".yaml", ".toml", ".xlsx", ".xls", ".csv",
}

// Filter decides whether a discovered file is eligible for upload
type Filter struct {
	exts    map[string]bool
	maxSize int64
}

// NewFilter creates a Filter with the built-in allow-list and size ceiling
func NewFilter() *Filter {
	exts := make(map[string]bool, len(supportedExtensions))
	for _, ext := range supportedExtensions {
		exts[ext] = true
	}
	return &Filter{
		exts:    exts,
		maxSize: MaxFileSize,
	}
}

// Extension returns the lower-cased substring from the last '.', or "" when
// the name has no dot
func Extension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx:])
}

// AllowName checks the name-only rules: extension and lock prefix
func (f *Filter) AllowName(name string) bool {
	if strings.HasPrefix(name, LockFilePrefix) {
		return false
	}
	return f.exts[Extension(name)]
}

// AllowSize checks the size ceiling
func (f *Filter) AllowSize(size int64) bool {
	return size <= f.maxSize
}

// Allow applies every rule
func (f *Filter) Allow(name string, size int64) bool {
	return f.AllowName(name) && f.AllowSize(size)
}

// Extensions returns the allow-list, sorted
func (f *Filter) Extensions() []string {
	exts := make([]string, 0, len(f.exts))
	for ext := range f.exts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
