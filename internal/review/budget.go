// Package review holds the scoring core: budget adherence, the score
// engine, threshold evaluation, driver attribution, and report
// assembly. Everything here is pure computation over in-memory records.
package review

import (
	"fmt"

	"github.com/greywatch/srev/internal/model"
)

// EvaluateBudget compares usage against the declared limits. It returns
// nil when no limit was declared, so downstream consumers can tell "no
// budget" apart from a budget that was fully adhered to. The token
// check uses uncached tokens; cache reads are not controllable spend.
//
// The time check needs both a timebox and observed elapsed minutes;
// absence of either yields no time adherence entry. Non-positive limits
// degrade the percent-of-budget to 0 instead of dividing by zero.
func EvaluateBudget(u model.UsageSummary, c model.BudgetConstraints, elapsedMinutes *float64) *model.BudgetResult {
	if c.Empty() {
		return nil
	}

	res := &model.BudgetResult{
		Constraints: c,
		Usage: model.BudgetUsage{
			UncachedTokens:   u.UncachedTokens(),
			EstimatedCostUSD: u.EstimatedCostUSD,
			ElapsedMinutes:   elapsedMinutes,
		},
		Adherence: model.BudgetAdherence{Warnings: []string{}},
	}

	if c.MaxTokens != nil {
		used := float64(u.UncachedTokens())
		adh := adhere(used, float64(*c.MaxTokens))
		res.Adherence.Tokens = &adh
		if adh.Overage > 0 {
			res.Adherence.Warnings = append(res.Adherence.Warnings,
				fmt.Sprintf("Token budget exceeded by %d tokens.", int64(adh.Overage)))
		}
	}

	if c.MaxCostUSD != nil {
		adh := adhere(u.CostOrZero(), *c.MaxCostUSD)
		adh.Overage = round6(adh.Overage)
		res.Adherence.Cost = &adh
		if adh.Overage > 0 {
			res.Adherence.Warnings = append(res.Adherence.Warnings,
				fmt.Sprintf("Cost budget exceeded by $%.4f.", adh.Overage))
		}
	}

	if c.TimeboxMinutes != nil && elapsedMinutes != nil {
		adh := adhere(*elapsedMinutes, *c.TimeboxMinutes)
		adh.Overage = round2(adh.Overage)
		res.Adherence.Time = &adh
		if adh.Overage > 0 {
			res.Adherence.Warnings = append(res.Adherence.Warnings,
				fmt.Sprintf("Time budget exceeded by %.2f minutes.", adh.Overage))
		}
	}

	return res
}

func adhere(current, limit float64) model.ConstraintAdherence {
	var pct float64
	if limit > 0 {
		pct = round2(current / limit * 100)
	}
	over := current - limit
	if over < 0 {
		over = 0
	}
	return model.ConstraintAdherence{PercentOfBudget: pct, Overage: over}
}
