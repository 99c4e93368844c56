package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanPathDirectory(t *testing.T) {
	dir := t.TempDir()
	touch := func(rel string) {
		t.Helper()
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	touch("b.jsonl")
	touch("a.json")
	touch("nested/deep/c.jsonl")
	touch("notes.txt")
	touch("readme.md")

	files, err := ScanPath(dir)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.jsonl"),
		filepath.Join(dir, "nested", "deep", "c.jsonl"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files %v, want %d", len(files), files, len(want))
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestScanPathSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.jsonl")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := ScanPath(path)
	if err != nil {
		t.Fatalf("ScanPath: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("got %v, want just %s", files, path)
	}
}

func TestScanPathMissing(t *testing.T) {
	if _, err := ScanPath(filepath.Join(t.TempDir(), "nowhere")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestPathHints(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/home/dev/.codex/sessions/r.jsonl", SourceCodex},
		{"/home/dev/.claude/projects/p/s.jsonl", SourceClaude},
		{"/var/logs/codex/rollout.jsonl", SourceCodex},
		{"/tmp/session.jsonl", ""},
	}
	for _, tt := range tests {
		hints := PathHints(tt.path)
		switch tt.want {
		case "":
			if len(hints) != 0 {
				t.Errorf("PathHints(%s) = %v, want none", tt.path, hints)
			}
		default:
			if len(hints) != 1 || hints[0] != tt.want {
				t.Errorf("PathHints(%s) = %v, want [%s]", tt.path, hints, tt.want)
			}
		}
	}
}
