package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greywatch/srev/internal/config"
	"github.com/greywatch/srev/internal/dashboard"
)

var flagDashboardOut string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Generate an HTML dashboard from the trend ledger",
	RunE:  runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVarP(&flagDashboardOut, "output", "o", "srev-dashboard.html", "Output HTML file")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ledger := openLedger(cfg)

	rows, err := ledger.AllRows()
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	if flagProject != "" {
		rows, err = ledger.Rows(flagProject)
		if err != nil {
			return fmt.Errorf("reading ledger: %w", err)
		}
	}

	f, err := os.Create(flagDashboardOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", flagDashboardOut, err)
	}
	defer f.Close()

	if err := dashboard.Render(rows, f); err != nil {
		return err
	}

	fmt.Printf("  Dashboard written to %s (%d sessions)\n", flagDashboardOut, len(rows))
	return nil
}
