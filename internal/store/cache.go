// Package store provides a SQLite-backed cache for parsed artifact metrics.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/greywatch/srev/internal/source"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed per-file parse caching, keyed by file
// path plus mtime and size so edited artifacts are re-parsed.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached metrics for a file if the stored mtime and
// size still match. The second return value reports a cache hit.
func (c *Cache) Get(path string, mtimeNs, sizeBytes int64) (source.FileMetrics, bool, error) {
	row := c.db.QueryRow(`SELECT
		input_tokens, output_tokens, total_tokens, cache_read_tokens, cache_creation_tokens,
		cost_usd, has_cost, messages, tool_calls, retry_loops,
		context_hashes, hints, parse_errors
		FROM artifacts WHERE file_path = ? AND mtime_ns = ? AND size_bytes = ?`,
		path, mtimeNs, sizeBytes)

	var m source.FileMetrics
	var hasCost int
	var hashesJSON, hintsJSON string
	err := row.Scan(
		&m.InputTokens, &m.OutputTokens, &m.TotalTokens, &m.CacheReadTokens, &m.CacheCreationTokens,
		&m.CostUSD, &hasCost, &m.Messages, &m.ToolCalls, &m.RetryLoops,
		&hashesJSON, &hintsJSON, &m.ParseErrors,
	)
	if err == sql.ErrNoRows {
		return source.FileMetrics{}, false, nil
	}
	if err != nil {
		return source.FileMetrics{}, false, err
	}

	m.HasCost = hasCost != 0
	if err := json.Unmarshal([]byte(hashesJSON), &m.ContextHashes); err != nil {
		return source.FileMetrics{}, false, nil
	}
	if err := json.Unmarshal([]byte(hintsJSON), &m.Hints); err != nil {
		return source.FileMetrics{}, false, nil
	}
	return m, true, nil
}

// Save stores the parsed metrics for a file along with its mtime and size.
func (c *Cache) Save(path string, mtimeNs, sizeBytes int64, m source.FileMetrics) error {
	hashesJSON, err := json.Marshal(m.ContextHashes)
	if err != nil {
		return err
	}
	hintsJSON, err := json.Marshal(m.Hints)
	if err != nil {
		return err
	}
	if m.ContextHashes == nil {
		hashesJSON = []byte("[]")
	}
	if m.Hints == nil {
		hintsJSON = []byte("[]")
	}

	hasCost := 0
	if m.HasCost {
		hasCost = 1
	}

	_, err = c.db.Exec(`INSERT OR REPLACE INTO artifacts
		(file_path, mtime_ns, size_bytes,
		 input_tokens, output_tokens, total_tokens, cache_read_tokens, cache_creation_tokens,
		 cost_usd, has_cost, messages, tool_calls, retry_loops,
		 context_hashes, hints, parse_errors, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		path, mtimeNs, sizeBytes,
		m.InputTokens, m.OutputTokens, m.TotalTokens, m.CacheReadTokens, m.CacheCreationTokens,
		m.CostUSD, hasCost, m.Messages, m.ToolCalls, m.RetryLoops,
		string(hashesJSON), string(hintsJSON), m.ParseErrors, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Prune removes cache entries whose file paths are not in keep.
func (c *Cache) Prune(keep map[string]bool) error {
	rows, err := c.db.Query("SELECT file_path FROM artifacts")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return err
		}
		if !keep[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, path := range stale {
		if _, err := c.db.Exec("DELETE FROM artifacts WHERE file_path = ?", path); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of cached artifacts.
func (c *Cache) Count() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM artifacts").Scan(&count)
	return count, err
}
