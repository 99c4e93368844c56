package review

import (
	"testing"

	"github.com/greywatch/srev/internal/model"
)

func TestEvaluateVerdictIsWorstCheck(t *testing.T) {
	table := DefaultTables()[model.RunLightweight]

	// 6k uncached trips the lightweight warn (5k); everything else passes.
	u := model.UsageSummary{InputTokens: 6000, Messages: 5}
	u.Normalize()

	eval := Evaluate(u, model.RunLightweight, table)
	if eval.Verdict != model.StatusWarn {
		t.Errorf("Verdict = %v, want warn", eval.Verdict)
	}

	// Adding 4 retry loops (fail > 3) drags the verdict to fail.
	u.RetryLoops = 4
	eval = Evaluate(u, model.RunLightweight, table)
	if eval.Verdict != model.StatusFail {
		t.Errorf("Verdict = %v, want fail", eval.Verdict)
	}
}

func TestEvaluateBoundaryIsInclusive(t *testing.T) {
	// A value exactly on the limit passes; only strictly above trips it.
	table := ThresholdTable{
		UncachedTokens: Limit{Warn: 500, Fail: 1000, Unit: "tokens"},
		CostUSD:        Limit{Warn: 1, Fail: 5, Unit: "USD"},
		RetryLoops:     Limit{Warn: 2, Fail: 5, Unit: "loops"},
	}

	u := model.UsageSummary{InputTokens: 500, Messages: 2}
	u.Normalize()
	eval := Evaluate(u, model.RunWorkflow, table)
	if eval.Checks[0].Status != model.StatusPass {
		t.Errorf("status at warn limit = %v, want pass", eval.Checks[0].Status)
	}

	u = model.UsageSummary{InputTokens: 600, Messages: 2}
	u.Normalize()
	eval = Evaluate(u, model.RunWorkflow, table)
	if eval.Checks[0].Status != model.StatusWarn {
		t.Errorf("status above warn = %v, want warn", eval.Checks[0].Status)
	}

	u = model.UsageSummary{InputTokens: 1200, Messages: 2}
	u.Normalize()
	eval = Evaluate(u, model.RunWorkflow, table)
	if eval.Checks[0].Status != model.StatusFail {
		t.Errorf("status above fail = %v, want fail", eval.Checks[0].Status)
	}
}

func TestEvaluateMissingCostPasses(t *testing.T) {
	table := DefaultTables()[model.RunWorkflow]
	u := model.UsageSummary{InputTokens: 1000, Messages: 2}
	u.Normalize()

	eval := Evaluate(u, model.RunWorkflow, table)
	for _, c := range eval.Checks {
		if c.Metric == MetricCostUSD {
			if c.Value != 0 || c.Status != model.StatusPass {
				t.Errorf("missing cost check = %+v, want value 0 / pass", c)
			}
			return
		}
	}
	t.Fatal("no cost check emitted")
}

func TestEvaluateCheckOrderIsStable(t *testing.T) {
	table := DefaultTables()[model.RunProduction]
	var u model.UsageSummary
	u.Normalize()

	eval := Evaluate(u, model.RunProduction, table)
	want := []string{MetricUncachedTokens, MetricCostUSD, MetricRetryLoops}
	if len(eval.Checks) != len(want) {
		t.Fatalf("got %d checks, want %d", len(eval.Checks), len(want))
	}
	for i, metric := range want {
		if eval.Checks[i].Metric != metric {
			t.Errorf("check[%d] = %s, want %s", i, eval.Checks[i].Metric, metric)
		}
	}
}

func TestDefaultTablesLoosenWithSeverity(t *testing.T) {
	tables := DefaultTables()
	light := tables[model.RunLightweight]
	work := tables[model.RunWorkflow]
	prod := tables[model.RunProduction]

	if !(light.UncachedTokens.Fail < work.UncachedTokens.Fail &&
		work.UncachedTokens.Fail < prod.UncachedTokens.Fail) {
		t.Error("token fail limits should loosen from lightweight to production")
	}
	if !(light.CostUSD.Fail < work.CostUSD.Fail && work.CostUSD.Fail < prod.CostUSD.Fail) {
		t.Error("cost fail limits should loosen from lightweight to production")
	}
}
