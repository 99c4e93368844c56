// Package model defines the domain records exchanged between the
// collector, the scoring core, and the presentation layers.
package model

// UsageSummary holds the normalized usage facts for one session set.
// Only raw counters are stored; derived values are computed by method
// so they can never drift from the counts they come from.
type UsageSummary struct {
	InputTokens         int64
	OutputTokens        int64
	CacheReadTokens     int64
	CacheCreationTokens int64

	// TotalTokens is accumulated separately because some collectors
	// only report totals, without an input/output split.
	TotalTokens int64

	Messages   int
	ToolCalls  int
	RetryLoops int

	// RepeatedContextRatio is the fraction of duplicate normalized
	// user/system turns, in [0, 1].
	RepeatedContextRatio float64

	// EstimatedCostUSD is nil when the telemetry carried no cost signal.
	EstimatedCostUSD *float64
}

// Normalize clamps counters into their valid ranges and reconciles the
// total against the raw splits. Called once at the collector boundary.
func (u *UsageSummary) Normalize() {
	for _, n := range []*int64{
		&u.InputTokens, &u.OutputTokens, &u.CacheReadTokens,
		&u.CacheCreationTokens, &u.TotalTokens,
	} {
		if *n < 0 {
			*n = 0
		}
	}
	if u.Messages < 0 {
		u.Messages = 0
	}
	if u.ToolCalls < 0 {
		u.ToolCalls = 0
	}
	if u.RetryLoops < 0 {
		u.RetryLoops = 0
	}
	if u.RepeatedContextRatio < 0 {
		u.RepeatedContextRatio = 0
	}
	if u.RepeatedContextRatio > 1 {
		u.RepeatedContextRatio = 1
	}
	if u.EstimatedCostUSD != nil && *u.EstimatedCostUSD < 0 {
		zero := 0.0
		u.EstimatedCostUSD = &zero
	}

	split := u.InputTokens + u.OutputTokens + u.CacheCreationTokens
	if floor := split + u.CacheReadTokens; u.TotalTokens < floor {
		u.TotalTokens = floor
	}
}

// UncachedTokens is the controllable spend: fresh input, output, and
// cache-creation tokens. When the telemetry only carried a total, the
// total is used so downstream scoring still has a size signal.
func (u UsageSummary) UncachedTokens() int64 {
	n := u.InputTokens + u.OutputTokens + u.CacheCreationTokens
	if n == 0 && u.TotalTokens > 0 {
		return u.TotalTokens
	}
	return n
}

// AvgTokensPerMessage is total tokens per message, 0 when there were
// no messages.
func (u UsageSummary) AvgTokensPerMessage() float64 {
	if u.Messages <= 0 {
		return 0
	}
	return float64(u.TotalTokens) / float64(u.Messages)
}

// UncachedAvgPerMessage is uncached tokens per message with a floor of
// one message, so zero-message sessions do not divide by zero.
func (u UsageSummary) UncachedAvgPerMessage() float64 {
	m := u.Messages
	if m < 1 {
		m = 1
	}
	return float64(u.UncachedTokens()) / float64(m)
}

// CostOrZero returns the estimated cost, treating a missing signal as 0.
func (u UsageSummary) CostOrZero() float64 {
	if u.EstimatedCostUSD == nil {
		return 0
	}
	return *u.EstimatedCostUSD
}
