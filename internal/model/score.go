package model

// Confidence expresses how much signal backed a ScoreSet.
type Confidence string

// Confidence bands, derived from source reliability and token volume.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// ScoreSet holds the four session scores, each in [0, 100].
type ScoreSet struct {
	Efficiency      float64 `json:"efficiency"`
	Reliability     float64 `json:"reliability"`
	QualityEstimate float64 `json:"quality_estimate"`
	Composite       float64 `json:"composite"`

	Confidence Confidence `json:"confidence"`

	// ScoreMethod tags the scoring formula revision. A breaking formula
	// change bumps this tag so longitudinal comparisons stay honest.
	ScoreMethod string `json:"score_method"`
}
