package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/greywatch/srev/internal/model"
)

// BuildInputs carries everything needed to assemble a full report.
type BuildInputs struct {
	Project           string
	Source            string
	RunType           model.RunType
	SessionsAnalyzed  int
	Summary           model.UsageSummary
	Constraints       model.BudgetConstraints
	ElapsedMinutes    *float64
	SourceReliability float64
	Thresholds        ThresholdTable
}

// Build runs the full scoring control flow: budget → scores →
// evaluation → drivers → recommendations. The baseline is attached by
// the caller once ledger history has been read.
func Build(in BuildInputs) model.Report {
	budget := EvaluateBudget(in.Summary, in.Constraints, in.ElapsedMinutes)
	scores := Score(ScoreInputs{
		Summary:           in.Summary,
		Budget:            budget,
		SourceReliability: in.SourceReliability,
	})
	eval := Evaluate(in.Summary, in.RunType, in.Thresholds)

	return model.Report{
		ReportID:         "session-review-" + uuid.NewString()[:8],
		GeneratedAt:      time.Now().UTC(),
		Project:          in.Project,
		Source:           in.Source,
		RunType:          in.RunType,
		SessionsAnalyzed: in.SessionsAnalyzed,
		Summary:          model.NewReportSummary(in.Summary),
		Budget:           budget,
		Scores:           scores,
		Evaluation:       eval,
		TopTokenDrivers:  AttributeDrivers(in.Summary),
		Recommendations:  Recommend(in.Summary, budget),
	}
}

// Markdown renders a report as a human-readable markdown document.
func Markdown(r model.Report) string {
	s := r.Summary
	var b strings.Builder

	fmt.Fprintf(&b, "# Session Review Report\n\n")
	fmt.Fprintf(&b, "- Report ID: `%s`\n", r.ReportID)
	fmt.Fprintf(&b, "- Generated: `%s`\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Source: `%s`\n", r.Source)
	fmt.Fprintf(&b, "- Run type: `%s`\n", r.RunType)
	fmt.Fprintf(&b, "- Sessions analyzed: `%d`\n", r.SessionsAnalyzed)

	fmt.Fprintf(&b, "\n## Summary\n\n")
	fmt.Fprintf(&b, "- Input tokens: %d\n", s.InputTokens)
	fmt.Fprintf(&b, "- Output tokens: %d\n", s.OutputTokens)
	fmt.Fprintf(&b, "- Cache read tokens: %d\n", s.CacheReadTokens)
	fmt.Fprintf(&b, "- Uncached tokens: %d\n", s.UncachedTokens)
	fmt.Fprintf(&b, "- Total tokens: %d\n", s.TotalTokens)
	fmt.Fprintf(&b, "- Messages: %d\n", s.Messages)
	fmt.Fprintf(&b, "- Avg tokens/message: %.2f\n", s.AvgTokensPerMessage)
	fmt.Fprintf(&b, "- Tool calls: %d\n", s.ToolCalls)
	fmt.Fprintf(&b, "- Retry loops: %d\n", s.RetryLoops)
	fmt.Fprintf(&b, "- Repeated context ratio: %.3f\n", s.RepeatedContextRatio)
	if s.EstimatedCostUSD != nil {
		fmt.Fprintf(&b, "- Estimated cost (USD): %.6f\n", *s.EstimatedCostUSD)
	}

	if r.Budget != nil {
		fmt.Fprintf(&b, "\n## Budget\n\n")
		c := r.Budget.Constraints
		if c.MaxTokens != nil {
			fmt.Fprintf(&b, "- Constraint max_tokens: %d\n", *c.MaxTokens)
		}
		if c.MaxCostUSD != nil {
			fmt.Fprintf(&b, "- Constraint max_cost_usd: %g\n", *c.MaxCostUSD)
		}
		if c.TimeboxMinutes != nil {
			fmt.Fprintf(&b, "- Constraint timebox_minutes: %g\n", *c.TimeboxMinutes)
		}
		adh := r.Budget.Adherence
		writeAdherence(&b, "tokens", adh.Tokens)
		writeAdherence(&b, "cost", adh.Cost)
		writeAdherence(&b, "time", adh.Time)
		if len(adh.Warnings) > 0 {
			fmt.Fprintf(&b, "- Warnings:\n")
			for _, w := range adh.Warnings {
				fmt.Fprintf(&b, "  - %s\n", w)
			}
		}
	}

	fmt.Fprintf(&b, "\n## Scores\n\n")
	fmt.Fprintf(&b, "- Efficiency: %g\n", r.Scores.Efficiency)
	fmt.Fprintf(&b, "- Reliability: %g\n", r.Scores.Reliability)
	fmt.Fprintf(&b, "- Quality estimate: %g\n", r.Scores.QualityEstimate)
	fmt.Fprintf(&b, "- Composite: %g\n", r.Scores.Composite)
	fmt.Fprintf(&b, "- Confidence: %s\n", r.Scores.Confidence)
	fmt.Fprintf(&b, "- Method: %s\n", r.Scores.ScoreMethod)

	fmt.Fprintf(&b, "\n## Evaluation (%s)\n\n", r.Evaluation.RunType)
	for _, c := range r.Evaluation.Checks {
		fmt.Fprintf(&b, "- %s: %g %s (warn %g, fail %g) — %s\n",
			c.Metric, c.Value, c.Unit, c.WarnLimit, c.FailLimit, c.Status)
	}
	fmt.Fprintf(&b, "- Verdict: **%s**\n", r.Evaluation.Verdict)

	if r.Baseline != nil {
		bl := r.Baseline
		fmt.Fprintf(&b, "\n## Baseline (last %d comparable sessions)\n\n", bl.SampleSize)
		writeDelta(&b, "Uncached tokens", bl.UncachedTokens)
		writeDelta(&b, "Cost (USD)", bl.CostUSD)
		writeDelta(&b, "Efficiency", bl.Efficiency)
	}

	fmt.Fprintf(&b, "\n## Top Token Drivers\n\n")
	for _, d := range r.TopTokenDrivers {
		fmt.Fprintf(&b, "%d. %s (impact: %d)\n", d.Rank, d.Label, d.EstimatedTokenImpact)
		fmt.Fprintf(&b, "   - %s\n", d.Details)
	}

	fmt.Fprintf(&b, "\n## Recommendations\n\n")
	for _, rec := range r.Recommendations {
		fmt.Fprintf(&b, "- %s [%s]: %s\n", rec.ID, rec.ExpectedImpact, rec.Action)
		if rec.Rationale != "" {
			fmt.Fprintf(&b, "  rationale: %s\n", rec.Rationale)
		}
		if len(rec.DocRefs) > 0 {
			fmt.Fprintf(&b, "  refs: %s\n", strings.Join(rec.DocRefs, ", "))
		}
	}

	return b.String()
}

func writeAdherence(b *strings.Builder, name string, adh *model.ConstraintAdherence) {
	if adh == nil {
		return
	}
	fmt.Fprintf(b, "- Adherence %s: %.2f%% of budget, overage %g\n",
		name, adh.PercentOfBudget, adh.Overage)
}

func writeDelta(b *strings.Builder, name string, d model.MetricDelta) {
	fmt.Fprintf(b, "- %s: %.2f vs median %.2f (%+.2f, %+.1f%%)\n",
		name, d.Current, d.Median, d.Delta, d.DeltaPct)
}
