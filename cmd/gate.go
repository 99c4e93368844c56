package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greywatch/srev/internal/model"
	"github.com/greywatch/srev/internal/review"
)

var gateCmd = &cobra.Command{
	Use:   "gate <report.json>",
	Short: "Apply the CI gating policy to a review report",
	Long: "Read a JSON report produced by `srev review --format json` and exit\n" +
		"with 0 (pass), 1 (blocking fail), or 2 (invalid report), so CI can\n" +
		"gate merges on session quality.",
	Args: cobra.ExactArgs(1),
	Run:  runGate,
}

func init() {
	rootCmd.AddCommand(gateCmd)
}

func runGate(_ *cobra.Command, args []string) {
	decision := decideGate(args[0])
	fmt.Println(decision.Message)
	os.Exit(decision.Code)
}

func decideGate(path string) review.GateDecision {
	data, err := os.ReadFile(path)
	if err != nil {
		return review.GateDecision{
			Code:    review.GateError,
			Message: fmt.Sprintf("cannot read report: %v", err),
		}
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return review.GateDecision{
			Code:    review.GateError,
			Message: fmt.Sprintf("cannot parse report: %v", err),
		}
	}

	runType := report.RunType
	if flagRunType != "" {
		parsed, err := model.ParseRunType(flagRunType)
		if err != nil {
			return review.GateDecision{Code: review.GateError, Message: err.Error()}
		}
		runType = parsed
	}

	return review.ApplyGate(runType, report.Evaluation.Verdict, report.ReportID)
}
