// Package source discovers and parses agent session artifacts
// (.json/.jsonl) from Codex- and Claude-style tooling into normalized
// per-file usage metrics.
package source

// Known telemetry sources.
const (
	SourceClaude  = "claude"
	SourceCodex   = "codex"
	SourceMixed   = "mixed"
	SourceUnknown = "unknown"
)

// Token and cost key patterns seen across provider log formats.
var (
	inputKeys = []string{
		"input_tokens", "prompt_tokens", "prompt_token_count", "inputTokenCount",
	}
	outputKeys = []string{
		"output_tokens", "completion_tokens", "output_token_count", "completionTokenCount",
	}
	totalKeys = []string{"total_tokens", "totalTokenCount"}
	costKeys  = []string{"estimated_cost_usd", "cost_usd", "cost"}

	cacheReadKeys = []string{
		"cache_read_tokens", "cache_read_input_tokens", "cached_tokens",
	}
	cacheCreationKeys = []string{
		"cache_creation_tokens", "cache_creation_input_tokens",
	}
)

var messageRoles = map[string]bool{
	"user": true, "assistant": true, "system": true, "tool": true, "developer": true,
}

// contextRoles are the roles whose text feeds repeated-context detection.
var contextRoles = map[string]bool{
	"user": true, "system": true, "developer": true,
}

var toolKeys = []string{
	"tool_name", "recipient_name", "tool", "tool_call_id", "function_call",
}

var toolTypes = map[string]bool{"tool_call": true, "function_call": true}

// retryMarkers are phrases in user turns that indicate a retry loop.
var retryMarkers = []string{
	"retry", "again", "failed", "error", "didn't work", "did not work",
}

// FileMetrics holds the normalized counters extracted from one artifact
// file. Context hashes are kept (rather than a per-file ratio) so
// duplicate turns can be detected across a whole artifact set.
type FileMetrics struct {
	InputTokens         int64
	OutputTokens        int64
	TotalTokens         int64
	CacheReadTokens     int64
	CacheCreationTokens int64

	CostUSD float64
	HasCost bool

	Messages   int
	ToolCalls  int
	RetryLoops int

	// ContextHashes are FNV-64a hashes of normalized user/system turn
	// text, in encounter order.
	ContextHashes []uint64

	// Hints are source identifiers ("claude", "codex") found in the
	// payload or path.
	Hints []string

	ParseErrors int
}

// Merge folds other into m, preserving hash and hint order.
func (m *FileMetrics) Merge(other FileMetrics) {
	m.InputTokens += other.InputTokens
	m.OutputTokens += other.OutputTokens
	m.TotalTokens += other.TotalTokens
	m.CacheReadTokens += other.CacheReadTokens
	m.CacheCreationTokens += other.CacheCreationTokens
	if other.HasCost {
		m.CostUSD += other.CostUSD
		m.HasCost = true
	}
	m.Messages += other.Messages
	m.ToolCalls += other.ToolCalls
	m.RetryLoops += other.RetryLoops
	m.ContextHashes = append(m.ContextHashes, other.ContextHashes...)
	m.Hints = append(m.Hints, other.Hints...)
	m.ParseErrors += other.ParseErrors
}

// InferSource resolves a set of hints to a single source label.
// Conflicting hints yield "mixed", none yield "unknown".
func InferSource(hints []string) string {
	seen := map[string]bool{}
	for _, h := range hints {
		if h == SourceClaude || h == SourceCodex {
			seen[h] = true
		}
	}
	switch {
	case len(seen) > 1:
		return SourceMixed
	case seen[SourceClaude]:
		return SourceClaude
	case seen[SourceCodex]:
		return SourceCodex
	}
	return SourceUnknown
}
