package pipeline

import (
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/greywatch/srev/internal/store"
)

func writeSessionFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	a := `{"role":"user","content":"alpha beta"}
{"role":"assistant","model":"claude-3","usage":{"input_tokens":1000,"output_tokens":200}}
`
	b := `{"role":"user","content":"alpha beta"}
{"role":"assistant","model":"claude-3","usage":{"input_tokens":500,"output_tokens":100,"cache_read_input_tokens":300}}
`
	if err := os.WriteFile(filepath.Join(dir, "a.jsonl"), []byte(a), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.jsonl"), []byte(b), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCollectMergesFiles(t *testing.T) {
	dir := writeSessionFiles(t)

	res, err := Collect(dir, Options{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if res.TotalFiles != 2 || res.ParsedFiles != 2 || res.FileErrors != 0 {
		t.Fatalf("file accounting = %+v", res)
	}
	s := res.Summary
	if s.InputTokens != 1500 || s.OutputTokens != 300 || s.CacheReadTokens != 300 {
		t.Errorf("tokens = %d/%d/%d, want 1500/300/300",
			s.InputTokens, s.OutputTokens, s.CacheReadTokens)
	}
	if s.TotalTokens != 2100 {
		t.Errorf("TotalTokens = %d, want reconciled 2100", s.TotalTokens)
	}
	if s.UncachedTokens() != 1800 {
		t.Errorf("UncachedTokens = %d, want 1800", s.UncachedTokens())
	}
	if s.Messages != 4 {
		t.Errorf("Messages = %d, want 4", s.Messages)
	}
	if s.RepeatedContextRatio != 0.5 {
		t.Errorf("RepeatedContextRatio = %v, want 0.5 for one duplicated turn of two",
			s.RepeatedContextRatio)
	}
	if s.EstimatedCostUSD != nil {
		t.Errorf("EstimatedCostUSD = %v, want nil without cost telemetry", *s.EstimatedCostUSD)
	}
	if res.Source != "claude" {
		t.Errorf("Source = %s, want claude", res.Source)
	}
	if !closeEnough(res.SourceReliability, 0.95) {
		t.Errorf("SourceReliability = %v, want 0.95 for clean claude parses",
			res.SourceReliability)
	}
}

func TestCollectUsesCacheOnSecondRun(t *testing.T) {
	dir := writeSessionFiles(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "artifacts.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer cache.Close()

	first, err := Collect(dir, Options{Cache: cache})
	if err != nil {
		t.Fatalf("first Collect: %v", err)
	}
	if first.CacheHits != 0 || first.Reparsed != 2 {
		t.Fatalf("first run: hits=%d reparsed=%d, want 0/2", first.CacheHits, first.Reparsed)
	}

	second, err := Collect(dir, Options{Cache: cache})
	if err != nil {
		t.Fatalf("second Collect: %v", err)
	}
	if second.CacheHits != 2 || second.Reparsed != 0 {
		t.Errorf("second run: hits=%d reparsed=%d, want 2/0", second.CacheHits, second.Reparsed)
	}
	if second.Summary != first.Summary {
		t.Errorf("cached summary diverged:\n first %+v\nsecond %+v", first.Summary, second.Summary)
	}
	if second.Source != first.Source {
		t.Errorf("cached source %s, want %s", second.Source, first.Source)
	}
}

func TestCollectSourceHintOverridesInference(t *testing.T) {
	dir := writeSessionFiles(t)

	res, err := Collect(dir, Options{SourceHint: "codex"})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if res.Source != "codex" {
		t.Errorf("Source = %s, want hinted codex", res.Source)
	}
	if !closeEnough(res.SourceReliability, 0.90) {
		t.Errorf("SourceReliability = %v, want codex trust weight 0.90", res.SourceReliability)
	}
}

func TestCollectDirtyFileHalvesReliability(t *testing.T) {
	dir := t.TempDir()
	content := `{"role":"user","content":"hello"}
garbage line
`
	if err := os.WriteFile(filepath.Join(dir, "dirty.jsonl"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Collect(dir, Options{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if res.ParseErrors != 1 || res.ParsedFiles != 1 {
		t.Fatalf("parse accounting = %+v", res)
	}
	// Half credit for the dirty file, unknown-source trust weight.
	if !closeEnough(res.SourceReliability, 0.5*0.7) {
		t.Errorf("SourceReliability = %v, want 0.35", res.SourceReliability)
	}
}

func TestCollectEmptyDirectory(t *testing.T) {
	res, err := Collect(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if res.TotalFiles != 0 || res.Source != "unknown" || res.SourceReliability != 0 {
		t.Errorf("empty dir result = %+v", res)
	}
}

func TestCollectReportsProgress(t *testing.T) {
	dir := writeSessionFiles(t)

	var calls atomic.Int64
	_, err := Collect(dir, Options{Progress: func(current, total int) {
		calls.Add(1)
		if total != 2 {
			t.Errorf("progress total = %d, want 2", total)
		}
	}})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("progress calls = %d, want one per parsed file", calls.Load())
	}
}

func TestRepeatedContextRatio(t *testing.T) {
	tests := []struct {
		name   string
		hashes []uint64
		want   float64
	}{
		{"empty", nil, 0},
		{"all unique", []uint64{1, 2, 3}, 0},
		{"one dupe", []uint64{1, 2, 1, 3}, 0.25},
		{"all same", []uint64{7, 7, 7, 7}, 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repeatedContextRatio(tt.hashes); got != tt.want {
				t.Errorf("repeatedContextRatio(%v) = %v, want %v", tt.hashes, got, tt.want)
			}
		})
	}
}
