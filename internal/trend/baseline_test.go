package trend

import (
	"testing"

	"github.com/greywatch/srev/internal/model"
)

func historyRow(project, source, runType string, uncached int64, cost, eff float64) Row {
	return Row{
		Date:             "2026-08-01",
		Project:          project,
		Source:           source,
		RunType:          runType,
		UncachedTokens:   uncached,
		EstimatedCostUSD: cost,
		Efficiency:       eff,
	}
}

func TestBaselineNilWithoutHistory(t *testing.T) {
	cur := Current{UncachedTokens: 25000, CostUSD: 0.4, Efficiency: 32}

	if got := Baseline(nil, "checkout", "claude", model.RunWorkflow, cur); got != nil {
		t.Errorf("empty history: got %+v, want nil", got)
	}

	// History exists but nothing matches all three of project, source
	// and run type.
	history := []Row{
		historyRow("checkout", "codex", "workflow", 10000, 0.2, 50),
		historyRow("billing", "claude", "workflow", 10000, 0.2, 50),
		historyRow("checkout", "claude", "production", 10000, 0.2, 50),
	}
	if got := Baseline(history, "checkout", "claude", model.RunWorkflow, cur); got != nil {
		t.Errorf("no matching rows: got %+v, want nil", got)
	}
}

func TestBaselineMedianOfMatchingRows(t *testing.T) {
	history := []Row{
		historyRow("checkout", "claude", "workflow", 40000, 0.30, 40),
		historyRow("checkout", "claude", "workflow", 50000, 0.50, 50),
		historyRow("checkout", "claude", "workflow", 60000, 0.40, 60),
		// Non-matching rows must not shift the medians.
		historyRow("checkout", "codex", "workflow", 900000, 9.0, 1),
	}
	cur := Current{UncachedTokens: 55000, CostUSD: 0.50, Efficiency: 45}

	got := Baseline(history, "checkout", "claude", model.RunWorkflow, cur)
	if got == nil {
		t.Fatal("got nil baseline, want deltas")
	}
	if got.SampleSize != 3 {
		t.Errorf("SampleSize = %d, want 3", got.SampleSize)
	}
	if got.UncachedTokens.Median != 50000 {
		t.Errorf("token median = %v, want 50000", got.UncachedTokens.Median)
	}
	if got.UncachedTokens.Delta != 5000 || got.UncachedTokens.DeltaPct != 10 {
		t.Errorf("token delta = %v (%v%%), want 5000 (10%%)",
			got.UncachedTokens.Delta, got.UncachedTokens.DeltaPct)
	}
	if got.CostUSD.Median != 0.40 {
		t.Errorf("cost median = %v, want 0.40", got.CostUSD.Median)
	}
	if got.CostUSD.Delta != 0.10 || got.CostUSD.DeltaPct != 25 {
		t.Errorf("cost delta = %v (%v%%), want 0.10 (25%%)",
			got.CostUSD.Delta, got.CostUSD.DeltaPct)
	}
	if got.Efficiency.Median != 50 || got.Efficiency.Delta != -5 || got.Efficiency.DeltaPct != -10 {
		t.Errorf("efficiency delta = %+v, want median 50 delta -5 pct -10", got.Efficiency)
	}
}

func TestBaselineEvenSampleInterpolates(t *testing.T) {
	history := []Row{
		historyRow("checkout", "claude", "workflow", 40000, 0.2, 40),
		historyRow("checkout", "claude", "workflow", 60000, 0.4, 60),
	}
	cur := Current{UncachedTokens: 50000, CostUSD: 0.3, Efficiency: 50}

	got := Baseline(history, "checkout", "claude", model.RunWorkflow, cur)
	if got == nil {
		t.Fatal("got nil baseline")
	}
	if got.UncachedTokens.Median != 50000 {
		t.Errorf("token median = %v, want interpolated 50000", got.UncachedTokens.Median)
	}
	if got.Efficiency.Median != 50 || got.Efficiency.Delta != 0 || got.Efficiency.DeltaPct != 0 {
		t.Errorf("efficiency = %+v, want exact match with median", got.Efficiency)
	}
}

func TestBaselineWindowKeepsMostRecentFive(t *testing.T) {
	// Seven matching rows; only the last five (efficiency 30..70,
	// median 50) may contribute.
	var history []Row
	for _, eff := range []float64{1, 2, 30, 40, 50, 60, 70} {
		history = append(history,
			historyRow("checkout", "claude", "workflow", int64(eff*1000), eff/100, eff))
	}
	cur := Current{UncachedTokens: 50000, CostUSD: 0.5, Efficiency: 50}

	got := Baseline(history, "checkout", "claude", model.RunWorkflow, cur)
	if got == nil {
		t.Fatal("got nil baseline")
	}
	if got.SampleSize != 5 {
		t.Errorf("SampleSize = %d, want 5", got.SampleSize)
	}
	if got.Efficiency.Median != 50 {
		t.Errorf("efficiency median = %v, want 50 from trailing window", got.Efficiency.Median)
	}
	if got.UncachedTokens.Median != 50000 {
		t.Errorf("token median = %v, want 50000", got.UncachedTokens.Median)
	}
}

func TestBaselineZeroMedianSkipsPercent(t *testing.T) {
	history := []Row{
		historyRow("checkout", "claude", "workflow", 0, 0, 50),
	}
	cur := Current{UncachedTokens: 1000, CostUSD: 0.5, Efficiency: 50}

	got := Baseline(history, "checkout", "claude", model.RunWorkflow, cur)
	if got == nil {
		t.Fatal("got nil baseline")
	}
	if got.UncachedTokens.Delta != 1000 {
		t.Errorf("token delta = %v, want 1000", got.UncachedTokens.Delta)
	}
	if got.UncachedTokens.DeltaPct != 0 {
		t.Errorf("DeltaPct = %v, want 0 when median is zero", got.UncachedTokens.DeltaPct)
	}
	if got.CostUSD.DeltaPct != 0 {
		t.Errorf("cost DeltaPct = %v, want 0 when median is zero", got.CostUSD.DeltaPct)
	}
}
