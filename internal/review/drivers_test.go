package review

import (
	"testing"

	"github.com/greywatch/srev/internal/model"
)

func TestAttributeDriversSessionSizeAlwaysPresent(t *testing.T) {
	u := model.UsageSummary{InputTokens: 30000, Messages: 10}
	u.Normalize()

	drivers := AttributeDrivers(u)
	if len(drivers) == 0 {
		t.Fatal("expected at least one driver")
	}
	if drivers[0].Label != "Session size" {
		t.Errorf("top driver = %q, want Session size", drivers[0].Label)
	}
	if drivers[0].EstimatedTokenImpact != 30000 {
		t.Errorf("impact = %d, want 30000", drivers[0].EstimatedTokenImpact)
	}
	if drivers[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", drivers[0].Rank)
	}
}

func TestAttributeDriversRetriesOutrankSmallSessions(t *testing.T) {
	// 5 retries weigh 1750 estimated tokens, above a 1k-token session.
	u := model.UsageSummary{InputTokens: 1000, Messages: 10, RetryLoops: 5}
	u.Normalize()

	drivers := AttributeDrivers(u)
	if drivers[0].Label != "Retry/rewrite loops" {
		t.Errorf("top driver = %q, want Retry/rewrite loops", drivers[0].Label)
	}
	if drivers[0].EstimatedTokenImpact != 1750 {
		t.Errorf("impact = %d, want 1750", drivers[0].EstimatedTokenImpact)
	}
}

func TestAttributeDriversCapAndRanks(t *testing.T) {
	// Trip every candidate at once; the list caps at five with
	// contiguous ranks.
	u := model.UsageSummary{
		InputTokens:          100_000,
		CacheReadTokens:      50_000,
		Messages:             20,
		ToolCalls:            40,
		RetryLoops:           3,
		RepeatedContextRatio: 0.5,
	}
	u.Normalize()

	drivers := AttributeDrivers(u)
	if len(drivers) != 5 {
		t.Fatalf("got %d drivers, want 5", len(drivers))
	}
	for i, d := range drivers {
		if d.Rank != i+1 {
			t.Errorf("driver %q rank = %d, want %d", d.Label, d.Rank, i+1)
		}
	}
	for i := 1; i < len(drivers); i++ {
		if drivers[i].EstimatedTokenImpact > drivers[i-1].EstimatedTokenImpact {
			t.Errorf("drivers not sorted by impact: %d > %d at index %d",
				drivers[i].EstimatedTokenImpact, drivers[i-1].EstimatedTokenImpact, i)
		}
	}
}

func TestAttributeDriversQuietSessionStaysShort(t *testing.T) {
	u := model.UsageSummary{InputTokens: 100, Messages: 2}
	u.Normalize()

	drivers := AttributeDrivers(u)
	if len(drivers) != 1 {
		t.Fatalf("got %d drivers, want just session size", len(drivers))
	}
}

func TestRecommendBudgetWarningAddsCap(t *testing.T) {
	u := model.UsageSummary{InputTokens: 12000, Messages: 10}
	u.Normalize()

	maxTokens := int64(10000)
	budget := EvaluateBudget(u, model.BudgetConstraints{MaxTokens: &maxTokens}, nil)

	recs := Recommend(u, budget)
	found := false
	for _, r := range recs {
		if r.ID == "R-004" {
			found = true
		}
	}
	if !found {
		t.Error("over-budget session should recommend budget caps (R-004)")
	}

	recs = Recommend(u, nil)
	for _, r := range recs {
		if r.ID == "R-004" {
			t.Error("no budget, R-004 should be absent")
		}
	}
	if len(recs) == 0 || recs[0].ID != "R-001" {
		t.Error("R-001 should always lead the list")
	}
}
