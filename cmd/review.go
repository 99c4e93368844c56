package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greywatch/srev/internal/cli"
	"github.com/greywatch/srev/internal/config"
	"github.com/greywatch/srev/internal/model"
	"github.com/greywatch/srev/internal/review"
	"github.com/greywatch/srev/internal/trend"
)

var (
	flagMaxTokens      int64
	flagMaxCostUSD     float64
	flagTimeboxMinutes float64
	flagElapsedMinutes float64
	flagSessionID      string
	flagFormat         string
	flagOutput         string
	flagNoLedger       bool
)

var reviewCmd = &cobra.Command{
	Use:   "review <path>",
	Short: "Score a session artifact file or directory",
	Long: "Parse session artifacts at the given path, score the session on\n" +
		"efficiency, reliability, and quality, evaluate it against run-type\n" +
		"thresholds, and append the result to the trend ledger.",
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().Int64Var(&flagMaxTokens, "max-tokens", 0, "Token budget (uncached tokens)")
	reviewCmd.Flags().Float64Var(&flagMaxCostUSD, "max-cost", 0, "Cost budget in USD")
	reviewCmd.Flags().Float64Var(&flagTimeboxMinutes, "timebox", 0, "Time budget in minutes")
	reviewCmd.Flags().Float64Var(&flagElapsedMinutes, "elapsed-minutes", 0, "Observed session duration in minutes")
	reviewCmd.Flags().StringVar(&flagSessionID, "session-id", "", "Session identifier for the ledger (defaults to the report ID)")
	reviewCmd.Flags().StringVarP(&flagFormat, "format", "f", "table", "Output format: table, json, markdown")
	reviewCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Write the report to a file instead of stdout")
	reviewCmd.Flags().BoolVar(&flagNoLedger, "no-ledger", false, "Skip appending to the trend ledger")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	runType, err := resolveRunType(cfg)
	if err != nil {
		return err
	}

	result, err := collect(args[0], cfg)
	if err != nil {
		return err
	}

	constraints := resolveConstraints(cmd, cfg)
	var elapsed *float64
	if cmd.Flags().Changed("elapsed-minutes") {
		elapsed = &flagElapsedMinutes
	}

	project := resolveProject(cfg)
	tables := config.ThresholdTables(cfg)

	report := review.Build(review.BuildInputs{
		Project:           project,
		Source:            result.Source,
		RunType:           runType,
		SessionsAnalyzed:  result.ParsedFiles,
		Summary:           result.Summary,
		Constraints:       constraints,
		ElapsedMinutes:    elapsed,
		SourceReliability: result.SourceReliability,
		Thresholds:        tables[runType],
	})

	// Baseline comes from history read before this session's row lands,
	// so the session never contaminates its own baseline.
	ledger := openLedger(cfg)
	history, err := ledger.Rows(project)
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	report.Baseline = trend.Baseline(history, project, result.Source, runType, trend.Current{
		UncachedTokens: report.Summary.UncachedTokens,
		CostUSD:        result.Summary.CostOrZero(),
		Efficiency:     report.Scores.Efficiency,
	})

	if !flagNoLedger {
		sessionID := flagSessionID
		if sessionID == "" {
			sessionID = report.ReportID
		}
		if err := ledger.Append(trend.NewRow(report, sessionID)); err != nil {
			return fmt.Errorf("appending to ledger: %w", err)
		}
	}

	return writeReport(report)
}

func resolveRunType(cfg config.Config) (model.RunType, error) {
	s := flagRunType
	if s == "" {
		s = cfg.General.DefaultRunType
	}
	if s == "" {
		s = string(model.RunWorkflow)
	}
	return model.ParseRunType(s)
}

// resolveConstraints merges flag budgets over config defaults. A flag
// explicitly set to a value wins; otherwise the config default (which
// may itself be unset) applies.
func resolveConstraints(cmd *cobra.Command, cfg config.Config) model.BudgetConstraints {
	c := model.BudgetConstraints{
		MaxTokens:      cfg.Budget.MaxTokens,
		MaxCostUSD:     cfg.Budget.MaxCostUSD,
		TimeboxMinutes: cfg.Budget.TimeboxMinutes,
	}
	if cmd.Flags().Changed("max-tokens") {
		c.MaxTokens = &flagMaxTokens
	}
	if cmd.Flags().Changed("max-cost") {
		c.MaxCostUSD = &flagMaxCostUSD
	}
	if cmd.Flags().Changed("timebox") {
		c.TimeboxMinutes = &flagTimeboxMinutes
	}
	return c
}

func writeReport(report model.Report) error {
	var out string
	switch flagFormat {
	case "json":
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		out = string(data) + "\n"
	case "markdown", "md":
		out = review.Markdown(report)
	case "table":
		out = renderReportTable(report)
	default:
		return fmt.Errorf("unknown format %q (want table, json, or markdown)", flagFormat)
	}

	if flagOutput != "" {
		return os.WriteFile(flagOutput, []byte(out), 0o644)
	}
	fmt.Print(out)
	return nil
}

func renderReportTable(r model.Report) string {
	out := "\n" + cli.RenderTitle(fmt.Sprintf("SESSION REVIEW  %s", r.ReportID)) + "\n\n"

	summaryRows := [][]string{
		{"Source", r.Source},
		{"Run type", string(r.RunType)},
		{"Sessions analyzed", cli.FormatNumber(int64(r.SessionsAnalyzed))},
		{"---"},
		{"Uncached tokens", cli.FormatTokens(r.Summary.UncachedTokens)},
		{"Cache read tokens", cli.FormatTokens(r.Summary.CacheReadTokens)},
		{"Total tokens", cli.FormatTokens(r.Summary.TotalTokens)},
		{"Messages", cli.FormatNumber(int64(r.Summary.Messages))},
		{"Tool calls", cli.FormatNumber(int64(r.Summary.ToolCalls))},
		{"Retry loops", cli.FormatNumber(int64(r.Summary.RetryLoops))},
	}
	if r.Summary.EstimatedCostUSD != nil {
		summaryRows = append(summaryRows, []string{"Est. cost", cli.FormatCost(*r.Summary.EstimatedCostUSD)})
	}
	out += cli.RenderTable(cli.Table{Title: "Summary", Rows: summaryRows})

	out += "\n" + cli.RenderTable(cli.Table{
		Title: "Scores",
		Rows: [][]string{
			{"Efficiency", cli.RenderScore(r.Scores.Efficiency)},
			{"Reliability", cli.RenderScore(r.Scores.Reliability)},
			{"Quality estimate", cli.RenderScore(r.Scores.QualityEstimate)},
			{"Composite", cli.RenderScore(r.Scores.Composite)},
			{"Confidence", string(r.Scores.Confidence)},
		},
	})

	checkRows := make([][]string, 0, len(r.Evaluation.Checks)+2)
	for _, c := range r.Evaluation.Checks {
		checkRows = append(checkRows, []string{
			c.Metric,
			fmt.Sprintf("%g %s", c.Value, c.Unit),
			fmt.Sprintf("warn %g / fail %g", c.WarnLimit, c.FailLimit),
			cli.RenderStatus(c.Status),
		})
	}
	checkRows = append(checkRows, []string{"---"})
	checkRows = append(checkRows, []string{"verdict", "", "", cli.RenderStatus(r.Evaluation.Verdict)})
	out += "\n" + cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Evaluation (%s)", r.RunType),
		Headers: []string{"Metric", "Value", "Limits", "Status"},
		Rows:    checkRows,
	})

	if r.Baseline != nil {
		out += "\n" + cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("vs. last %d comparable sessions", r.Baseline.SampleSize),
			Headers: []string{"Metric", "Current", "Median", "Delta"},
			Rows: [][]string{
				{
					"Uncached tokens",
					cli.FormatTokens(int64(r.Baseline.UncachedTokens.Current)),
					cli.FormatTokens(int64(r.Baseline.UncachedTokens.Median)),
					cli.FormatSignedPercent(r.Baseline.UncachedTokens.DeltaPct),
				},
				{
					"Cost",
					cli.FormatCost(r.Baseline.CostUSD.Current),
					cli.FormatCost(r.Baseline.CostUSD.Median),
					cli.FormatSignedPercent(r.Baseline.CostUSD.DeltaPct),
				},
				{
					"Efficiency",
					cli.FormatScore(r.Baseline.Efficiency.Current),
					cli.FormatScore(r.Baseline.Efficiency.Median),
					cli.FormatSignedPercent(r.Baseline.Efficiency.DeltaPct),
				},
			},
		})
	}

	if len(r.TopTokenDrivers) > 0 {
		driverRows := make([][]string, 0, len(r.TopTokenDrivers))
		for _, d := range r.TopTokenDrivers {
			driverRows = append(driverRows, []string{
				fmt.Sprintf("%d. %s", d.Rank, d.Label),
				cli.FormatTokens(d.EstimatedTokenImpact),
			})
		}
		out += "\n" + cli.RenderTable(cli.Table{
			Title:   "Top Token Drivers",
			Headers: []string{"Driver", "Impact"},
			Rows:    driverRows,
		})
	}

	if len(r.Recommendations) > 0 {
		out += "\n  Recommendations\n"
		for _, rec := range r.Recommendations {
			out += fmt.Sprintf("  - %s [%s]: %s\n", rec.ID, rec.ExpectedImpact, rec.Action)
		}
	}

	return out + "\n"
}
