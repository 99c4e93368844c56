package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greywatch/srev/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Default run type: %s\n", cfg.General.DefaultRunType)
	fmt.Printf("    Ledger root:      %s\n", config.LedgerRoot(cfg))
	if cfg.General.DefaultProject != "" {
		fmt.Printf("    Default project:  %s\n", cfg.General.DefaultProject)
	}
	if cfg.General.DefaultSource != "" {
		fmt.Printf("    Default source:   %s\n", cfg.General.DefaultSource)
	}
	fmt.Println()

	fmt.Println("  [Budget]")
	if cfg.Budget.MaxTokens != nil {
		fmt.Printf("    Max tokens:  %d\n", *cfg.Budget.MaxTokens)
	} else {
		fmt.Println("    Max tokens:  not set")
	}
	if cfg.Budget.MaxCostUSD != nil {
		fmt.Printf("    Max cost:    $%.2f\n", *cfg.Budget.MaxCostUSD)
	} else {
		fmt.Println("    Max cost:    not set")
	}
	if cfg.Budget.TimeboxMinutes != nil {
		fmt.Printf("    Timebox:     %.0f min\n", *cfg.Budget.TimeboxMinutes)
	} else {
		fmt.Println("    Timebox:     not set")
	}
	fmt.Println()

	fmt.Println("  [Thresholds]")
	for runType, table := range config.ThresholdTables(cfg) {
		fmt.Printf("    %-12s tokens %g/%g  cost %g/%g  retries %g/%g\n",
			runType,
			table.UncachedTokens.Warn, table.UncachedTokens.Fail,
			table.CostUSD.Warn, table.CostUSD.Fail,
			table.RetryLoops.Warn, table.RetryLoops.Fail)
	}
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `srev setup` to reconfigure.")
	return nil
}
