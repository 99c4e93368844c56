package store

import (
	"path/filepath"
	"testing"

	"github.com/greywatch/srev/internal/source"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "artifacts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	c := openTestCache(t)

	in := source.FileMetrics{
		InputTokens:         1200,
		OutputTokens:        300,
		TotalTokens:         1500,
		CacheReadTokens:     400,
		CacheCreationTokens: 50,
		CostUSD:             0.031,
		HasCost:             true,
		Messages:            6,
		ToolCalls:           2,
		RetryLoops:          1,
		ContextHashes:       []uint64{11, 22, 11},
		Hints:               []string{"claude"},
		ParseErrors:         1,
	}
	if err := c.Save("/a/session.jsonl", 100, 2048, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, hit, err := c.Get("/a/session.jsonl", 100, 2048)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected a cache hit")
	}
	if got.InputTokens != in.InputTokens || got.CostUSD != in.CostUSD || !got.HasCost {
		t.Errorf("scalar fields lost: %+v", got)
	}
	if got.Messages != 6 || got.ToolCalls != 2 || got.RetryLoops != 1 || got.ParseErrors != 1 {
		t.Errorf("counter fields lost: %+v", got)
	}
	if len(got.ContextHashes) != 3 || got.ContextHashes[2] != 11 {
		t.Errorf("ContextHashes = %v, want order-preserving [11 22 11]", got.ContextHashes)
	}
	if len(got.Hints) != 1 || got.Hints[0] != "claude" {
		t.Errorf("Hints = %v, want [claude]", got.Hints)
	}
}

func TestGetMissesOnChangedFile(t *testing.T) {
	c := openTestCache(t)

	if err := c.Save("/a/session.jsonl", 100, 2048, source.FileMetrics{Messages: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, hit, err := c.Get("/a/session.jsonl", 200, 2048); err != nil || hit {
		t.Errorf("mtime change: hit=%v err=%v, want miss", hit, err)
	}
	if _, hit, err := c.Get("/a/session.jsonl", 100, 4096); err != nil || hit {
		t.Errorf("size change: hit=%v err=%v, want miss", hit, err)
	}
	if _, hit, err := c.Get("/b/other.jsonl", 100, 2048); err != nil || hit {
		t.Errorf("unknown path: hit=%v err=%v, want miss", hit, err)
	}
}

func TestSaveReplacesExistingEntry(t *testing.T) {
	c := openTestCache(t)

	if err := c.Save("/a/session.jsonl", 100, 2048, source.FileMetrics{Messages: 1}); err != nil {
		t.Fatal(err)
	}
	if err := c.Save("/a/session.jsonl", 200, 3000, source.FileMetrics{Messages: 9}); err != nil {
		t.Fatal(err)
	}

	got, hit, err := c.Get("/a/session.jsonl", 200, 3000)
	if err != nil || !hit {
		t.Fatalf("Get after replace: hit=%v err=%v", hit, err)
	}
	if got.Messages != 9 {
		t.Errorf("Messages = %d, want replaced value 9", got.Messages)
	}

	count, err := c.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d, want 1 (replace, not insert)", count)
	}
}

func TestPruneDropsStaleEntries(t *testing.T) {
	c := openTestCache(t)

	for _, path := range []string{"/a/1.jsonl", "/a/2.jsonl", "/a/3.jsonl"} {
		if err := c.Save(path, 1, 1, source.FileMetrics{}); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Prune(map[string]bool{"/a/2.jsonl": true}); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	count, err := c.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("Count = %d after prune, want 1", count)
	}
	if _, hit, _ := c.Get("/a/2.jsonl", 1, 1); !hit {
		t.Error("kept path evicted by prune")
	}
	if _, hit, _ := c.Get("/a/1.jsonl", 1, 1); hit {
		t.Error("stale path survived prune")
	}
}
