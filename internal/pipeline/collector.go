// Package pipeline turns raw session artifacts into a single normalized
// usage summary, with a bounded worker pool and a SQLite parse cache.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/greywatch/srev/internal/model"
	"github.com/greywatch/srev/internal/source"
	"github.com/greywatch/srev/internal/store"
)

// ProgressFunc is called during collection to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// DefaultTrustWeights maps an inferred source to a trust factor applied
// on top of the parse ratio when computing source reliability.
var DefaultTrustWeights = map[string]float64{
	source.SourceClaude:  0.95,
	source.SourceCodex:   0.90,
	source.SourceMixed:   0.85,
	source.SourceUnknown: 0.70,
}

// Options configures a Collect run.
type Options struct {
	// Cache, when non-nil, skips re-parsing files whose mtime and size
	// are unchanged since the last run.
	Cache *store.Cache

	// SourceHint overrides source inference when set to a known source.
	SourceHint string

	// TrustWeights overrides DefaultTrustWeights when non-nil.
	TrustWeights map[string]float64

	Progress ProgressFunc
}

// Result holds the output of a full collection pass over one path.
type Result struct {
	Summary           model.UsageSummary
	Source            string
	SourceReliability float64

	TotalFiles  int
	ParsedFiles int
	CacheHits   int
	Reparsed    int
	FileErrors  int
	ParseErrors int
}

// Collect scans path (a file or directory) for .json/.jsonl artifacts,
// parses them in parallel, and merges the per-file metrics into one
// usage summary.
func Collect(path string, opts Options) (*Result, error) {
	files, err := source.ScanPath(path)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	result := &Result{TotalFiles: len(files)}
	if len(files) == 0 {
		result.Source = source.SourceUnknown
		return result, nil
	}

	type fileStat struct {
		path    string
		mtimeNs int64
		size    int64
	}

	// Diff against the cache: partition into hits and files to parse.
	var toParse []fileStat
	metrics := make([]source.FileMetrics, 0, len(files))
	parsedOK := make([]bool, 0, len(files))

	appendMetrics := func(m source.FileMetrics, ok bool) {
		metrics = append(metrics, m)
		parsedOK = append(parsedOK, ok)
	}

	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			result.FileErrors++
			appendMetrics(source.FileMetrics{}, false)
			continue
		}
		fs := fileStat{path: f, mtimeNs: info.ModTime().UnixNano(), size: info.Size()}

		if opts.Cache != nil {
			m, hit, err := opts.Cache.Get(fs.path, fs.mtimeNs, fs.size)
			if err == nil && hit {
				result.CacheHits++
				result.ParsedFiles++
				result.ParseErrors += m.ParseErrors
				appendMetrics(m, true)
				continue
			}
		}
		toParse = append(toParse, fs)
	}

	// Parallel parsing with a bounded worker pool.
	if len(toParse) > 0 {
		result.Reparsed = len(toParse)

		numWorkers := runtime.GOMAXPROCS(0)
		if numWorkers < 1 {
			numWorkers = 4
		}
		if numWorkers > len(toParse) {
			numWorkers = len(toParse)
		}

		type parseOut struct {
			m   source.FileMetrics
			err error
		}

		work := make(chan int, len(toParse))
		outs := make([]parseOut, len(toParse))
		var wg sync.WaitGroup
		var processed atomic.Int64

		for i := range toParse {
			work <- i
		}
		close(work)

		wg.Add(numWorkers)
		for w := 0; w < numWorkers; w++ {
			go func() {
				defer wg.Done()
				for idx := range work {
					m, err := source.ParseFile(toParse[idx].path)
					outs[idx] = parseOut{m: m, err: err}
					n := processed.Add(1)
					if opts.Progress != nil {
						opts.Progress(int(n)+result.CacheHits, result.TotalFiles)
					}
				}
			}()
		}
		wg.Wait()

		for i, out := range outs {
			if out.err != nil {
				result.FileErrors++
				appendMetrics(source.FileMetrics{}, false)
				continue
			}
			result.ParsedFiles++
			result.ParseErrors += out.m.ParseErrors
			appendMetrics(out.m, true)

			if opts.Cache != nil {
				_ = opts.Cache.Save(toParse[i].path, toParse[i].mtimeNs, toParse[i].size, out.m)
			}
		}
	}

	// Merge per-file metrics into one summary.
	var merged source.FileMetrics
	for i, m := range metrics {
		if parsedOK[i] {
			merged.Merge(m)
		}
	}

	result.Source = opts.SourceHint
	if result.Source == "" {
		result.Source = source.InferSource(merged.Hints)
	}

	summary := model.UsageSummary{
		InputTokens:          merged.InputTokens,
		OutputTokens:         merged.OutputTokens,
		TotalTokens:          merged.TotalTokens,
		CacheReadTokens:      merged.CacheReadTokens,
		CacheCreationTokens:  merged.CacheCreationTokens,
		Messages:             merged.Messages,
		ToolCalls:            merged.ToolCalls,
		RetryLoops:           merged.RetryLoops,
		RepeatedContextRatio: repeatedContextRatio(merged.ContextHashes),
	}
	if merged.HasCost {
		cost := merged.CostUSD
		summary.EstimatedCostUSD = &cost
	}
	summary.Normalize()
	result.Summary = summary

	result.SourceReliability = reliability(result, opts.TrustWeights)
	return result, nil
}

// repeatedContextRatio is the fraction of user/system turns whose
// normalized text duplicates an earlier turn, across all files.
func repeatedContextRatio(hashes []uint64) float64 {
	if len(hashes) == 0 {
		return 0
	}
	seen := make(map[uint64]struct{}, len(hashes))
	dupes := 0
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			dupes++
			continue
		}
		seen[h] = struct{}{}
	}
	return float64(dupes) / float64(len(hashes))
}

// reliability scores how much the parsed telemetry can be trusted:
// the clean-parse ratio across files, weighted by the source's trust
// factor. A file that parsed but had bad lines counts half.
func reliability(r *Result, weights map[string]float64) float64 {
	if r.TotalFiles == 0 {
		return 0
	}
	clean := float64(r.ParsedFiles)
	if r.ParseErrors > 0 {
		clean -= 0.5
		if clean < 0 {
			clean = 0
		}
	}
	ratio := clean / float64(r.TotalFiles)

	if weights == nil {
		weights = DefaultTrustWeights
	}
	weight, ok := weights[r.Source]
	if !ok {
		weight = DefaultTrustWeights[source.SourceUnknown]
	}
	return ratio * weight
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "srev")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "srev")
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "artifacts.db")
}
