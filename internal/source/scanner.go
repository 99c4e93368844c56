package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanPath resolves a file or directory into the sorted list of
// .json/.jsonl artifact files beneath it. Unreadable directory entries
// are skipped rather than failing the scan.
func ScanPath(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext == ".json" || ext == ".jsonl" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// PathHints extracts source hints from an artifact's path, e.g. files
// under ~/.codex/ or ~/.claude/.
func PathHints(path string) []string {
	lower := strings.ToLower(filepath.ToSlash(path))
	var hints []string
	if strings.Contains(lower, "/.codex/") || strings.Contains(lower, "/codex/") {
		hints = append(hints, SourceCodex)
	}
	if strings.Contains(lower, "/.claude/") || strings.Contains(lower, "/claude/") {
		hints = append(hints, SourceClaude)
	}
	return hints
}
