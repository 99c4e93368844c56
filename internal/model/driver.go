package model

// Driver is one named contributor to token cost, ranked by estimated
// impact.
type Driver struct {
	Rank                 int    `json:"rank"`
	Label                string `json:"driver"`
	EstimatedTokenImpact int64  `json:"estimated_token_impact"`
	Details              string `json:"details"`
}

// Recommendation is one actionable suggestion attached to a report.
type Recommendation struct {
	ID             string   `json:"id"`
	Action         string   `json:"action"`
	ExpectedImpact string   `json:"expected_impact"`
	Rationale      string   `json:"rationale"`
	DocRefs        []string `json:"doc_refs,omitempty"`
}
