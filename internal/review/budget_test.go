package review

import (
	"strings"
	"testing"

	"github.com/greywatch/srev/internal/model"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestEvaluateBudgetNoConstraints(t *testing.T) {
	u := model.UsageSummary{InputTokens: 5000}
	u.Normalize()

	if got := EvaluateBudget(u, model.BudgetConstraints{}, nil); got != nil {
		t.Fatalf("EvaluateBudget with no constraints = %+v, want nil", got)
	}
}

func TestEvaluateBudgetTokensWithinBudget(t *testing.T) {
	u := model.UsageSummary{InputTokens: 4000, OutputTokens: 1000}
	u.Normalize()

	res := EvaluateBudget(u, model.BudgetConstraints{MaxTokens: i64(10000)}, nil)
	if res == nil {
		t.Fatal("expected a budget result")
	}
	adh := res.Adherence.Tokens
	if adh == nil {
		t.Fatal("expected token adherence")
	}
	if adh.PercentOfBudget != 50 {
		t.Errorf("PercentOfBudget = %v, want 50", adh.PercentOfBudget)
	}
	if adh.Overage != 0 {
		t.Errorf("Overage = %v, want 0", adh.Overage)
	}
	if len(res.Adherence.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", res.Adherence.Warnings)
	}
	if res.Adherence.Cost != nil || res.Adherence.Time != nil {
		t.Error("undeclared constraints should have no adherence entries")
	}
}

func TestEvaluateBudgetTokenOverage(t *testing.T) {
	u := model.UsageSummary{InputTokens: 12000}
	u.Normalize()

	res := EvaluateBudget(u, model.BudgetConstraints{MaxTokens: i64(10000)}, nil)
	adh := res.Adherence.Tokens
	if adh.Overage != 2000 {
		t.Errorf("Overage = %v, want 2000", adh.Overage)
	}
	if len(res.Adherence.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", res.Adherence.Warnings)
	}
	if !strings.Contains(res.Adherence.Warnings[0], "2000 tokens") {
		t.Errorf("warning %q should name the overage", res.Adherence.Warnings[0])
	}
}

func TestEvaluateBudgetUsesUncachedTokens(t *testing.T) {
	// Cache reads are not controllable spend; a cache-dominated session
	// must not blow a token budget.
	u := model.UsageSummary{InputTokens: 5000, CacheReadTokens: 500_000}
	u.Normalize()

	res := EvaluateBudget(u, model.BudgetConstraints{MaxTokens: i64(10000)}, nil)
	if res.Adherence.Tokens.Overage != 0 {
		t.Errorf("Overage = %v, want 0 (cache reads excluded)", res.Adherence.Tokens.Overage)
	}
}

func TestEvaluateBudgetCost(t *testing.T) {
	u := model.UsageSummary{InputTokens: 1000, EstimatedCostUSD: f64(1.25)}
	u.Normalize()

	res := EvaluateBudget(u, model.BudgetConstraints{MaxCostUSD: f64(1.0)}, nil)
	adh := res.Adherence.Cost
	if adh == nil {
		t.Fatal("expected cost adherence")
	}
	if adh.PercentOfBudget != 125 {
		t.Errorf("PercentOfBudget = %v, want 125", adh.PercentOfBudget)
	}
	if adh.Overage != 0.25 {
		t.Errorf("Overage = %v, want 0.25", adh.Overage)
	}
	if len(res.Adherence.Warnings) != 1 || !strings.Contains(res.Adherence.Warnings[0], "$0.2500") {
		t.Errorf("Warnings = %v, want one naming $0.2500", res.Adherence.Warnings)
	}
}

func TestEvaluateBudgetTimeNeedsElapsed(t *testing.T) {
	u := model.UsageSummary{InputTokens: 1000}
	u.Normalize()

	c := model.BudgetConstraints{TimeboxMinutes: f64(30)}

	res := EvaluateBudget(u, c, nil)
	if res == nil {
		t.Fatal("a declared timebox still yields a budget result")
	}
	if res.Adherence.Time != nil {
		t.Error("no elapsed time observed, want no time adherence")
	}

	res = EvaluateBudget(u, c, f64(45))
	if res.Adherence.Time == nil {
		t.Fatal("expected time adherence")
	}
	if res.Adherence.Time.Overage != 15 {
		t.Errorf("Overage = %v, want 15", res.Adherence.Time.Overage)
	}
}

func TestEvaluateBudgetZeroLimit(t *testing.T) {
	u := model.UsageSummary{InputTokens: 1000}
	u.Normalize()

	res := EvaluateBudget(u, model.BudgetConstraints{MaxTokens: i64(0)}, nil)
	adh := res.Adherence.Tokens
	if adh.PercentOfBudget != 0 {
		t.Errorf("PercentOfBudget = %v, want 0 for a non-positive limit", adh.PercentOfBudget)
	}
	if adh.Overage != 1000 {
		t.Errorf("Overage = %v, want 1000", adh.Overage)
	}
}
