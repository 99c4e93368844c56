// Package trend persists the append-only historical ledger of scored
// sessions and computes baselines against it. The ledger is plain CSV,
// one file per project, so downstream tooling can read it without
// re-deriving scores.
package trend

import (
	"strconv"

	"github.com/greywatch/srev/internal/model"
)

// Row is one immutable ledger entry: appended exactly once per session
// evaluation, never mutated afterward.
type Row struct {
	Date      string // 2006-01-02
	Project   string
	Source    string
	RunType   string
	SessionID string
	ReportID  string

	TotalTokens     int64
	UncachedTokens  int64
	InputTokens     int64
	OutputTokens    int64
	CacheReadTokens int64
	ToolCalls       int64
	RetryLoops      int64

	Efficiency       float64
	Reliability      float64
	QualityEstimate  float64
	Composite        float64
	EstimatedCostUSD float64

	Verdict     string
	ScoreMethod string
}

// header is the current ledger schema. Readers migrate older headers
// in memory (see migrate.go); writers always emit this column set.
var header = []string{
	"date", "project", "source", "run_type", "session_id", "report_id",
	"total_tokens", "uncached_tokens", "input_tokens", "output_tokens",
	"cache_read_tokens", "tool_calls", "retry_loops",
	"efficiency", "reliability", "quality_estimate", "composite",
	"estimated_cost_usd", "verdict", "score_method",
}

// NewRow builds a ledger row from a finished report.
func NewRow(r model.Report, sessionID string) Row {
	return Row{
		Date:             r.GeneratedAt.Format("2006-01-02"),
		Project:          r.Project,
		Source:           r.Source,
		RunType:          string(r.RunType),
		SessionID:        sessionID,
		ReportID:         r.ReportID,
		TotalTokens:      r.Summary.TotalTokens,
		UncachedTokens:   r.Summary.UncachedTokens,
		InputTokens:      r.Summary.InputTokens,
		OutputTokens:     r.Summary.OutputTokens,
		CacheReadTokens:  r.Summary.CacheReadTokens,
		ToolCalls:        int64(r.Summary.ToolCalls),
		RetryLoops:       int64(r.Summary.RetryLoops),
		Efficiency:       r.Scores.Efficiency,
		Reliability:      r.Scores.Reliability,
		QualityEstimate:  r.Scores.QualityEstimate,
		Composite:        r.Scores.Composite,
		EstimatedCostUSD: costOrZero(r.Summary.EstimatedCostUSD),
		Verdict:          string(r.Evaluation.Verdict),
		ScoreMethod:      r.Scores.ScoreMethod,
	}
}

func costOrZero(c *float64) float64 {
	if c == nil {
		return 0
	}
	return *c
}

func (r Row) record() []string {
	return []string{
		r.Date, r.Project, r.Source, r.RunType, r.SessionID, r.ReportID,
		formatInt(r.TotalTokens), formatInt(r.UncachedTokens),
		formatInt(r.InputTokens), formatInt(r.OutputTokens),
		formatInt(r.CacheReadTokens), formatInt(r.ToolCalls), formatInt(r.RetryLoops),
		formatFloat(r.Efficiency), formatFloat(r.Reliability),
		formatFloat(r.QualityEstimate), formatFloat(r.Composite),
		strconv.FormatFloat(r.EstimatedCostUSD, 'f', 6, 64),
		r.Verdict, r.ScoreMethod,
	}
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
