package review

import "github.com/greywatch/srev/internal/model"

// Metric names used in evaluation checks and config overrides.
const (
	MetricUncachedTokens = "uncached_tokens"
	MetricCostUSD        = "estimated_cost_usd"
	MetricRetryLoops     = "retry_loops"
)

// Limit is one warn/fail pair with its display unit.
type Limit struct {
	Warn float64
	Fail float64
	Unit string
}

// ThresholdTable holds the three monitored metrics for one run type.
type ThresholdTable struct {
	UncachedTokens Limit
	CostUSD        Limit
	RetryLoops     Limit
}

// DefaultTables returns the built-in threshold policy. Limits loosen
// with run-type severity: a lightweight probe has far tighter budgets
// than a full production workflow. The numbers are policy, not
// algorithm; config can override them per run type.
func DefaultTables() map[model.RunType]ThresholdTable {
	return map[model.RunType]ThresholdTable{
		model.RunLightweight: {
			UncachedTokens: Limit{Warn: 5000, Fail: 20000, Unit: "tokens"},
			CostUSD:        Limit{Warn: 0.05, Fail: 0.25, Unit: "USD"},
			RetryLoops:     Limit{Warn: 1, Fail: 3, Unit: "loops"},
		},
		model.RunWorkflow: {
			UncachedTokens: Limit{Warn: 60000, Fail: 150000, Unit: "tokens"},
			CostUSD:        Limit{Warn: 1.00, Fail: 5.00, Unit: "USD"},
			RetryLoops:     Limit{Warn: 2, Fail: 5, Unit: "loops"},
		},
		model.RunProduction: {
			UncachedTokens: Limit{Warn: 200000, Fail: 500000, Unit: "tokens"},
			CostUSD:        Limit{Warn: 5.00, Fail: 20.00, Unit: "USD"},
			RetryLoops:     Limit{Warn: 3, Fail: 8, Unit: "loops"},
		},
	}
}

// Evaluate classifies the session against one run type's thresholds.
// A missing cost signal evaluates as 0 and passes: telemetry
// completeness varies by collector and must not fail the session.
func Evaluate(u model.UsageSummary, runType model.RunType, table ThresholdTable) model.Evaluation {
	checks := []model.Check{
		check(MetricUncachedTokens, float64(u.UncachedTokens()), table.UncachedTokens),
		check(MetricCostUSD, u.CostOrZero(), table.CostUSD),
		check(MetricRetryLoops, float64(u.RetryLoops), table.RetryLoops),
	}

	verdict := model.StatusPass
	for _, c := range checks {
		verdict = verdict.Worse(c.Status)
	}

	return model.Evaluation{RunType: runType, Checks: checks, Verdict: verdict}
}

func check(metric string, value float64, l Limit) model.Check {
	status := model.StatusPass
	switch {
	case value > l.Fail:
		status = model.StatusFail
	case value > l.Warn:
		status = model.StatusWarn
	}
	return model.Check{
		Metric:    metric,
		Value:     value,
		WarnLimit: l.Warn,
		FailLimit: l.Fail,
		Unit:      l.Unit,
		Status:    status,
	}
}
