package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/greywatch/srev/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()

	runType := cfg.General.DefaultRunType
	project := cfg.General.DefaultProject
	ledgerRoot := cfg.General.LedgerRoot
	theme := cfg.Appearance.Theme
	maxTokens := ""
	if cfg.Budget.MaxTokens != nil {
		maxTokens = strconv.FormatInt(*cfg.Budget.MaxTokens, 10)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default run type").
				Description("Selects the threshold table applied when --run-type is omitted.").
				Options(
					huh.NewOption("lightweight — quick probes, never blocks CI", "lightweight"),
					huh.NewOption("workflow — standard agent workflows", "workflow"),
					huh.NewOption("production — long production sessions", "production"),
				).
				Value(&runType),
			huh.NewInput().
				Title("Default project").
				Description("Ledger rows are grouped per project. Leave blank for \"default\".").
				Value(&project),
			huh.NewInput().
				Title("Ledger root").
				Description("Where trend CSVs are stored. Leave blank for the XDG data dir.").
				Value(&ledgerRoot),
			huh.NewInput().
				Title("Default token budget").
				Description("Uncached-token budget per session. Leave blank for no budget.").
				Validate(validateOptionalInt).
				Value(&maxTokens),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(
					huh.NewOption("Flexoki Dark", "flexoki-dark"),
					huh.NewOption("Catppuccin Mocha", "catppuccin-mocha"),
					huh.NewOption("Tokyo Night", "tokyo-night"),
					huh.NewOption("Terminal (ANSI 16)", "terminal"),
				).
				Value(&theme),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.General.DefaultRunType = runType
	cfg.General.DefaultProject = strings.TrimSpace(project)
	cfg.General.LedgerRoot = strings.TrimSpace(ledgerRoot)
	cfg.Appearance.Theme = theme
	if s := strings.TrimSpace(maxTokens); s != "" {
		n, _ := strconv.ParseInt(s, 10, 64)
		cfg.Budget.MaxTokens = &n
	} else {
		cfg.Budget.MaxTokens = nil
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `srev setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func validateOptionalInt(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("enter a whole number or leave blank")
	}
	return nil
}
