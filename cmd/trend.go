package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greywatch/srev/internal/cli"
	"github.com/greywatch/srev/internal/config"
	"github.com/greywatch/srev/internal/trend"
)

var flagTrendLimit int

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show recent scored sessions from the ledger",
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().IntVarP(&flagTrendLimit, "limit", "n", 20, "Number of recent sessions to show")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ledger := openLedger(cfg)

	var rows []trend.Row
	if flagProject != "" {
		rows, err = ledger.Rows(flagProject)
	} else {
		rows, err = ledger.AllRows()
	}
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}

	if len(rows) == 0 {
		fmt.Println("\n  No scored sessions yet. Run `srev review` first.")
		return nil
	}

	if flagTrendLimit > 0 && len(rows) > flagTrendLimit {
		rows = rows[len(rows)-flagTrendLimit:]
	}

	tableRows := make([][]string, 0, len(rows))
	composites := make([]float64, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Date,
			r.Project,
			r.Source,
			r.RunType,
			cli.FormatTokens(r.UncachedTokens),
			cli.FormatScore(r.Efficiency),
			cli.FormatScore(r.Composite),
			r.Verdict,
		})
		composites = append(composites, r.Composite)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCORE TREND  Last %d sessions", len(rows))))
	fmt.Println()
	fmt.Println(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Project", "Source", "Run", "Uncached", "Eff", "Composite", "Verdict"},
		Rows:    tableRows,
	}))
	fmt.Printf("  Composite: %s\n\n", cli.RenderSparkline(composites))

	return nil
}
