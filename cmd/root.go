// Package cmd implements the srev CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greywatch/srev/internal/config"
	"github.com/greywatch/srev/internal/pipeline"
	"github.com/greywatch/srev/internal/store"
	"github.com/greywatch/srev/internal/trend"
)

var (
	flagProject    string
	flagSource     string
	flagRunType    string
	flagLedgerRoot string
	flagNoCache    bool
	flagQuiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "srev",
	Short: "Agent session review and scoring CLI",
	Long: "Score AI agent sessions on efficiency, reliability, and quality,\n" +
		"gate CI runs on the verdict, and track score trends over time.",
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Project name for the ledger")
	rootCmd.PersistentFlags().StringVar(&flagSource, "source", "", "Override source detection (claude, codex, mixed)")
	rootCmd.PersistentFlags().StringVarP(&flagRunType, "run-type", "t", "", "Run type (lightweight, workflow, production)")
	rootCmd.PersistentFlags().StringVar(&flagLedgerRoot, "ledger-root", "", "Trend ledger root directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite parse cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// collect is the shared artifact loading path used by review and gate.
// Uses the SQLite parse cache when available for fast subsequent runs.
func collect(path string, cfg config.Config) (*pipeline.Result, error) {
	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	opts := pipeline.Options{
		SourceHint:   flagSource,
		TrustWeights: cfg.Reliability.TrustWeights,
		Progress:     progressFn,
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer cache.Close()
			opts.Cache = cache
		}
	}

	result, err := pipeline.Collect(path, opts)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %d files (%d cached, %d errors)    \n",
			result.ParsedFiles, result.CacheHits, result.FileErrors)
	}

	return result, nil
}

// openLedger resolves the ledger root from flag or config.
func openLedger(cfg config.Config) *trend.Ledger {
	root := flagLedgerRoot
	if root == "" {
		root = config.LedgerRoot(cfg)
	}
	return trend.New(root)
}

// resolveProject falls back to the config default, then "default".
func resolveProject(cfg config.Config) string {
	if flagProject != "" {
		return flagProject
	}
	if cfg.General.DefaultProject != "" {
		return cfg.General.DefaultProject
	}
	return "default"
}
