// Package results turns server matches into display rows and resolves the
// per-row view and open-folder actions.
package results

import (
	"regexp"
	"strings"
)

var duplicateSlashes = regexp.MustCompile(`/{2,}`)

// RootOf returns the folder root segment of a relative path
func RootOf(relPath string) string {
	relPath = strings.ReplaceAll(relPath, `\`, "/")
	if idx := strings.Index(relPath, "/"); idx >= 0 {
		return relPath[:idx]
	}
	return relPath
}

// ResolveAbsolutePath rebuilds a file's absolute path from its root-relative
// path and the base path of its root folder. The root segment of relPath is
// replaced by basePath; a relPath naming only the root resolves to basePath.
func ResolveAbsolutePath(relPath, basePath string) string {
	rel := strings.ReplaceAll(relPath, `\`, "/")
	base := strings.ReplaceAll(basePath, `\`, "/")

	rest := ""
	if idx := strings.Index(rel, "/"); idx >= 0 {
		rest = rel[idx+1:]
	}
	if rest == "" {
		if trimmed := strings.TrimRight(base, "/"); trimmed != "" {
			return collapse(trimmed, base)
		}
		return collapse(base, base)
	}

	return collapse(base+"/"+rest, base)
}

// collapse squeezes repeated slashes, keeping a leading UNC "//" when the
// base path has one
func collapse(p, base string) string {
	if strings.HasPrefix(base, "//") {
		return "/" + duplicateSlashes.ReplaceAllString(p, "/")
	}
	return duplicateSlashes.ReplaceAllString(p, "/")
}
