package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
)

// maxLineBytes bounds a single JSONL line. Codex rollouts embed full
// file contents in tool results, so lines can get large.
const maxLineBytes = 16 * 1024 * 1024

// ParseFile extracts usage metrics from a single .json or .jsonl
// artifact. Lines (or documents) that fail to decode increment
// ParseErrors instead of aborting the whole file.
func ParseFile(path string) (FileMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileMetrics{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	p := &parser{}
	p.m.Hints = append(p.m.Hints, PathHints(path)...)

	if filepath.Ext(path) == ".jsonl" {
		sc := bufio.NewScanner(f)
		sc.Buffer(make([]byte, 64*1024), maxLineBytes)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			var node any
			if err := json.Unmarshal([]byte(line), &node); err != nil {
				p.m.ParseErrors++
				continue
			}
			p.walk(node)
		}
		if err := sc.Err(); err != nil {
			return FileMetrics{}, fmt.Errorf("scan %s: %w", path, err)
		}
	} else {
		var node any
		if err := json.NewDecoder(f).Decode(&node); err != nil {
			p.m.ParseErrors++
		} else {
			p.walk(node)
		}
	}

	p.flushSnapshot()
	return p.m, nil
}

// parser accumulates metrics while walking decoded JSON nodes. Codex
// token_count events are cumulative snapshots, so the latest one is
// held aside and folded in once at the end instead of being summed.
type parser struct {
	m    FileMetrics
	snap *tokenSnapshot
}

type tokenSnapshot struct {
	input, output, total, cacheRead int64
}

func (p *parser) flushSnapshot() {
	if p.snap == nil {
		return
	}
	p.m.InputTokens += p.snap.input
	p.m.OutputTokens += p.snap.output
	p.m.TotalTokens += p.snap.total
	p.m.CacheReadTokens += p.snap.cacheRead
	p.snap = nil
}

func (p *parser) walk(node any) {
	switch v := node.(type) {
	case map[string]any:
		if snap, ok := codexTokenSnapshot(v); ok {
			// Consecutive snapshots supersede each other. The nested
			// usage object is not walked, or its counters would be
			// added twice.
			p.snap = &snap
			return
		}
		p.visitObject(v)
		for _, child := range v {
			p.walk(child)
		}
	case []any:
		for _, child := range v {
			p.walk(child)
		}
	}
}

func (p *parser) visitObject(obj map[string]any) {
	p.collectHints(obj)

	if in, ok := firstNumber(obj, inputKeys); ok {
		p.m.InputTokens += int64(in)
	}
	if out, ok := firstNumber(obj, outputKeys); ok {
		p.m.OutputTokens += int64(out)
	}
	if tot, ok := firstNumber(obj, totalKeys); ok {
		p.m.TotalTokens += int64(tot)
	}
	if cr, ok := firstNumber(obj, cacheReadKeys); ok {
		p.m.CacheReadTokens += int64(cr)
	}
	if cc, ok := firstNumber(obj, cacheCreationKeys); ok {
		p.m.CacheCreationTokens += int64(cc)
	}
	if cost, ok := firstNumber(obj, costKeys); ok {
		p.m.CostUSD += cost
		p.m.HasCost = true
	}

	role, _ := obj["role"].(string)
	if messageRoles[role] {
		p.m.Messages++
		if contextRoles[role] {
			text := normalizeText(contentText(obj["content"]))
			if text != "" {
				p.m.ContextHashes = append(p.m.ContextHashes, hashText(text))
				if role == "user" && hasRetryMarker(text) {
					p.m.RetryLoops++
				}
			}
		}
	}

	if typ, _ := obj["type"].(string); toolTypes[typ] {
		p.m.ToolCalls++
	} else {
		for _, k := range toolKeys {
			if _, ok := obj[k]; ok {
				p.m.ToolCalls++
				break
			}
		}
	}
}

func (p *parser) collectHints(obj map[string]any) {
	if v, _ := obj["originator"].(string); v != "" {
		if strings.Contains(strings.ToLower(v), "codex") {
			p.m.Hints = append(p.m.Hints, SourceCodex)
		}
	}
	if v, _ := obj["model_provider"].(string); v != "" {
		switch strings.ToLower(v) {
		case "openai":
			p.m.Hints = append(p.m.Hints, SourceCodex)
		case "anthropic":
			p.m.Hints = append(p.m.Hints, SourceClaude)
		}
	}
	if v, _ := obj["source"].(string); v != "" {
		switch strings.ToLower(v) {
		case SourceClaude:
			p.m.Hints = append(p.m.Hints, SourceClaude)
		case SourceCodex:
			p.m.Hints = append(p.m.Hints, SourceCodex)
		}
	}
	if v, _ := obj["model"].(string); v != "" {
		lower := strings.ToLower(v)
		switch {
		case strings.Contains(lower, "claude"):
			p.m.Hints = append(p.m.Hints, SourceClaude)
		case strings.HasPrefix(lower, "gpt"), strings.HasPrefix(lower, "o1"),
			strings.HasPrefix(lower, "o3"), strings.HasPrefix(lower, "o4"),
			strings.HasPrefix(lower, "codex"):
			p.m.Hints = append(p.m.Hints, SourceCodex)
		}
	}
}

// codexTokenSnapshot matches the Codex rollout event shape:
//
//	{"type":"event_msg","payload":{"type":"token_count","info":{"total_token_usage":{...}}}}
func codexTokenSnapshot(obj map[string]any) (tokenSnapshot, bool) {
	if typ, _ := obj["type"].(string); typ != "event_msg" {
		return tokenSnapshot{}, false
	}
	payload, ok := obj["payload"].(map[string]any)
	if !ok {
		return tokenSnapshot{}, false
	}
	if typ, _ := payload["type"].(string); typ != "token_count" {
		return tokenSnapshot{}, false
	}
	info, ok := payload["info"].(map[string]any)
	if !ok {
		return tokenSnapshot{}, false
	}
	usage, ok := info["total_token_usage"].(map[string]any)
	if !ok {
		return tokenSnapshot{}, false
	}

	var snap tokenSnapshot
	if v, ok := firstNumber(usage, inputKeys); ok {
		snap.input = int64(v)
	}
	if v, ok := firstNumber(usage, outputKeys); ok {
		snap.output = int64(v)
	}
	if v, ok := firstNumber(usage, totalKeys); ok {
		snap.total = int64(v)
	}
	if v, ok := firstNumber(usage, cacheReadKeys); ok {
		snap.cacheRead = int64(v)
	}
	return snap, true
}

func firstNumber(obj map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			if n, ok := asNumber(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// contentText flattens a message content field, which is either a
// plain string or a list of typed blocks with "text" members.
func contentText(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, block := range c {
			m, ok := block.(map[string]any)
			if !ok {
				continue
			}
			if text, ok := m["text"].(string); ok && text != "" {
				parts = append(parts, text)
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func hashText(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

func hasRetryMarker(text string) bool {
	for _, marker := range retryMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
