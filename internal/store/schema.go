package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS artifacts (
    file_path             TEXT PRIMARY KEY,
    mtime_ns              INTEGER NOT NULL,
    size_bytes            INTEGER NOT NULL,
    input_tokens          INTEGER NOT NULL DEFAULT 0,
    output_tokens         INTEGER NOT NULL DEFAULT 0,
    total_tokens          INTEGER NOT NULL DEFAULT 0,
    cache_read_tokens     INTEGER NOT NULL DEFAULT 0,
    cache_creation_tokens INTEGER NOT NULL DEFAULT 0,
    cost_usd              REAL NOT NULL DEFAULT 0,
    has_cost              INTEGER NOT NULL DEFAULT 0,
    messages              INTEGER NOT NULL DEFAULT 0,
    tool_calls            INTEGER NOT NULL DEFAULT 0,
    retry_loops           INTEGER NOT NULL DEFAULT 0,
    context_hashes        TEXT NOT NULL DEFAULT '[]',
    hints                 TEXT NOT NULL DEFAULT '[]',
    parse_errors          INTEGER NOT NULL DEFAULT 0,
    parsed_at             TEXT NOT NULL
);
`
