package sheetsvc

import (
	"regexp"
	"sort"
	"strings"
)

// pathListSplit separates multiple declared attachment paths. Both the
// ASCII and the full-width semicolon are accepted.
var pathListSplit = regexp.MustCompile(`[;；]`)

// fileIndex is a lookup structure over the filenames currently in the
// attachment pool. Filenames are held sorted so every matching rule is
// deterministic for an unchanged pool.
type fileIndex struct {
	names []string
	exact map[string]string // lowercased filename -> filename
	noExt map[string]string // lowercased filename without extension -> filename
}

func newFileIndex(filenames []string) *fileIndex {
	names := make([]string, len(filenames))
	copy(names, filenames)
	sort.Strings(names)

	ix := &fileIndex{
		names: names,
		exact: make(map[string]string, len(names)),
		noExt: make(map[string]string, len(names)),
	}

	// on duplicate keys the first (sorted) name wins
	for _, name := range names {
		lower := strings.ToLower(name)
		if _, ok := ix.exact[lower]; !ok {
			ix.exact[lower] = name
		}

		stripped := stripExt(lower)
		if _, ok := ix.noExt[stripped]; !ok {
			ix.noExt[stripped] = name
		}
	}

	return ix
}

// resolve maps one declared attachment-path cell to pool filenames.
// A multi-path cell (separated by ; or ；) resolves each part with the
// exact rule only. A single path falls through exact, then
// extension-insensitive, then fuzzy keyword matching against the
// row's group labels. An empty result means the row has no attachment.
func (ix *fileIndex) resolve(declared, group, subGroup string) []string {
	parts := make([]string, 0, 2)
	for _, p := range pathListSplit.Split(declared, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) == 0 {
		return nil
	}

	if len(parts) > 1 {
		resolved := make([]string, 0, len(parts))
		for _, part := range parts {
			if name, ok := ix.matchExact(part); ok {
				resolved = append(resolved, name)
			}
		}

		return resolved
	}

	if name, ok := ix.matchExact(parts[0]); ok {
		return []string{name}
	}

	if name, ok := ix.matchNoExt(parts[0]); ok {
		return []string{name}
	}

	if name, ok := ix.matchFuzzy(group, subGroup); ok {
		return []string{name}
	}

	return nil
}

// matchExact looks up the last path segment case-insensitively.
func (ix *fileIndex) matchExact(declared string) (string, bool) {
	base := baseName(declared)
	if base == "" {
		return "", false
	}

	name, ok := ix.exact[strings.ToLower(base)]
	return name, ok
}

// matchNoExt looks up the last path segment with its extension removed.
func (ix *fileIndex) matchNoExt(declared string) (string, bool) {
	base := baseName(declared)
	if base == "" {
		return "", false
	}

	name, ok := ix.noExt[stripExt(strings.ToLower(base))]
	return name, ok
}

// matchFuzzy walks the sorted pool and returns the first filename that
// shares substring containment with either group label, in either
// direction. Best effort, first match wins.
func (ix *fileIndex) matchFuzzy(group, subGroup string) (string, bool) {
	keywords := make([]string, 0, 2)
	for _, kw := range []string{group, subGroup} {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	if len(keywords) == 0 {
		return "", false
	}

	for _, name := range ix.names {
		lower := strings.ToLower(name)
		stripped := stripExt(lower)

		for _, kw := range keywords {
			if strings.Contains(lower, kw) || strings.Contains(kw, stripped) {
				return name, true
			}
		}
	}

	return "", false
}

// baseName takes the last segment of a path that may use Windows or
// Unix separators, for example `D:\Share\2025\file.xlsx` -> file.xlsx.
func baseName(path string) string {
	segments := strings.FieldsFunc(path, func(r rune) bool {
		return r == '\\' || r == '/'
	})

	if len(segments) == 0 {
		return ""
	}

	return strings.TrimSpace(segments[len(segments)-1])
}

func stripExt(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}

	return name
}
