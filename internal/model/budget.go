package model

// BudgetConstraints holds caller-declared limits. Nil fields mean the
// limit was not declared.
type BudgetConstraints struct {
	MaxTokens      *int64   `json:"max_tokens,omitempty"`
	MaxCostUSD     *float64 `json:"max_cost_usd,omitempty"`
	TimeboxMinutes *float64 `json:"timebox_minutes,omitempty"`
}

// Empty reports whether no limit at all was declared.
func (c BudgetConstraints) Empty() bool {
	return c.MaxTokens == nil && c.MaxCostUSD == nil && c.TimeboxMinutes == nil
}

// BudgetUsage echoes the usage fields relevant to budget adherence.
type BudgetUsage struct {
	UncachedTokens   int64    `json:"uncached_tokens"`
	EstimatedCostUSD *float64 `json:"estimated_cost_usd,omitempty"`
	ElapsedMinutes   *float64 `json:"elapsed_minutes,omitempty"`
}

// ConstraintAdherence holds the percent-of-budget and absolute overage
// for one declared constraint.
type ConstraintAdherence struct {
	PercentOfBudget float64 `json:"percent_of_budget"`
	Overage         float64 `json:"overage"`
}

// BudgetAdherence holds per-constraint adherence. A nil entry means
// that constraint was not declared (or, for Time, that elapsed minutes
// were not supplied).
type BudgetAdherence struct {
	Tokens   *ConstraintAdherence `json:"tokens,omitempty"`
	Cost     *ConstraintAdherence `json:"cost,omitempty"`
	Time     *ConstraintAdherence `json:"time,omitempty"`
	Warnings []string             `json:"warnings"`
}

// BudgetResult is produced only when at least one limit was declared.
// "No budget" is represented by the absence of this record, never by a
// degenerate all-zero one.
type BudgetResult struct {
	Constraints BudgetConstraints `json:"constraints"`
	Usage       BudgetUsage       `json:"usage"`
	Adherence   BudgetAdherence   `json:"adherence"`
}
