package review

import "github.com/greywatch/srev/internal/model"

// Prompt-engineering references cited by recommendations.
var docRefs = map[string]string{
	"openai_best_practices": "https://platform.openai.com/docs/guides/prompt-engineering/prompt-engineering-best-practices.pdf",
	"openai_optimizer":      "https://platform.openai.com/docs/guides/prompt-optimizer/",
	"anthropic_practices":   "https://docs.anthropic.com/en/docs/build-with-claude/prompt-engineering/claude-4-best-practices",
}

// Recommend builds up to five actionable suggestions from the usage
// shape and budget outcome. Static policy text, not decision logic.
func Recommend(u model.UsageSummary, budget *model.BudgetResult) []model.Recommendation {
	recs := []model.Recommendation{{
		ID:             "R-001",
		Action:         "Use a tighter initial task contract and avoid re-sending unchanged full context every turn.",
		ExpectedImpact: "high",
		Rationale:      "Reduces repeated prompt overhead and prevents context bloat.",
		DocRefs:        []string{docRefs["openai_best_practices"], docRefs["anthropic_practices"]},
	}}

	if u.RetryLoops > 0 {
		recs = append(recs, model.Recommendation{
			ID:             "R-002",
			Action:         "Add explicit acceptance criteria and stop conditions to reduce retry loops.",
			ExpectedImpact: "high",
			Rationale:      "Retry patterns are strongly correlated with avoidable token spend.",
			DocRefs:        []string{docRefs["openai_optimizer"]},
		})
	} else {
		recs = append(recs, model.Recommendation{
			ID:             "R-002",
			Action:         "Keep turn objectives single-purpose and cap response scope per turn.",
			ExpectedImpact: "medium",
			Rationale:      "Scoped turns lower average tokens per message and improve control.",
			DocRefs:        []string{docRefs["anthropic_practices"]},
		})
	}

	if u.ToolCalls > 20 {
		recs = append(recs, model.Recommendation{
			ID:             "R-003",
			Action:         "Batch read/search operations where possible to reduce iterative tool-call overhead.",
			ExpectedImpact: "medium",
			Rationale:      "High tool-call fan-out can amplify assistant/tool coordination tokens.",
			DocRefs:        []string{docRefs["openai_best_practices"]},
		})
	} else {
		recs = append(recs, model.Recommendation{
			ID:             "R-003",
			Action:         "Preserve the current tool-call discipline and avoid unnecessary exploratory loops.",
			ExpectedImpact: "low",
			Rationale:      "Maintains current efficiency levels as task complexity grows.",
			DocRefs:        []string{docRefs["openai_best_practices"]},
		})
	}

	if budget != nil && len(budget.Adherence.Warnings) > 0 {
		recs = append(recs, model.Recommendation{
			ID:             "R-004",
			Action:         "Enforce explicit per-turn budget caps and stop when budget threshold reaches 85-90%.",
			ExpectedImpact: "high",
			Rationale:      "Current run exceeded one or more declared budgets.",
			DocRefs:        []string{docRefs["openai_optimizer"]},
		})
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}
