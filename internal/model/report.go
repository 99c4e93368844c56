package model

import "time"

// ReportSummary is the serialized form of a UsageSummary, with derived
// fields materialized for downstream readers.
type ReportSummary struct {
	InputTokens          int64    `json:"input_tokens"`
	OutputTokens         int64    `json:"output_tokens"`
	CacheReadTokens      int64    `json:"cache_read_tokens"`
	CacheCreationTokens  int64    `json:"cache_creation_tokens"`
	UncachedTokens       int64    `json:"uncached_tokens"`
	TotalTokens          int64    `json:"total_tokens"`
	Messages             int      `json:"messages"`
	AvgTokensPerMessage  float64  `json:"avg_tokens_per_message"`
	ToolCalls            int      `json:"tool_calls"`
	RetryLoops           int      `json:"retry_loops"`
	RepeatedContextRatio float64  `json:"repeated_context_ratio"`
	EstimatedCostUSD     *float64 `json:"estimated_cost_usd,omitempty"`
}

// NewReportSummary materializes the derived fields of a UsageSummary.
func NewReportSummary(u UsageSummary) ReportSummary {
	return ReportSummary{
		InputTokens:          u.InputTokens,
		OutputTokens:         u.OutputTokens,
		CacheReadTokens:      u.CacheReadTokens,
		CacheCreationTokens:  u.CacheCreationTokens,
		UncachedTokens:       u.UncachedTokens(),
		TotalTokens:          u.TotalTokens,
		Messages:             u.Messages,
		AvgTokensPerMessage:  u.AvgTokensPerMessage(),
		ToolCalls:            u.ToolCalls,
		RetryLoops:           u.RetryLoops,
		RepeatedContextRatio: u.RepeatedContextRatio,
		EstimatedCostUSD:     u.EstimatedCostUSD,
	}
}

// Report is the full scored review of one session set, persisted as
// JSON for the gate and the dashboards.
type Report struct {
	ReportID         string           `json:"report_id"`
	GeneratedAt      time.Time        `json:"generated_at"`
	Project          string           `json:"project,omitempty"`
	Source           string           `json:"source"`
	RunType          RunType          `json:"run_type"`
	SessionsAnalyzed int              `json:"sessions_analyzed"`
	Summary          ReportSummary    `json:"summary"`
	Budget           *BudgetResult    `json:"budget,omitempty"`
	Scores           ScoreSet         `json:"scores"`
	Evaluation       Evaluation       `json:"evaluation"`
	TopTokenDrivers  []Driver         `json:"top_token_drivers"`
	Recommendations  []Recommendation `json:"recommendations"`
	Baseline         *BaselineDelta   `json:"baseline,omitempty"`
}
