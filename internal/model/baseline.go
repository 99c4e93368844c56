package model

// MetricDelta compares the current value of one metric against the
// historical median.
type MetricDelta struct {
	Current  float64 `json:"current"`
	Median   float64 `json:"median"`
	Delta    float64 `json:"delta"`
	DeltaPct float64 `json:"delta_pct"` // 0 when the median is 0
}

// BaselineDelta compares the current session against the median of the
// most recent comparable sessions. It is computed, never persisted,
// and is absent (nil) when no matching history exists.
type BaselineDelta struct {
	SampleSize     int         `json:"sample_size"`
	UncachedTokens MetricDelta `json:"uncached_tokens"`
	CostUSD        MetricDelta `json:"cost_usd"`
	Efficiency     MetricDelta `json:"efficiency"`
}
