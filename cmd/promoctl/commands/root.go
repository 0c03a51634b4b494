package commands

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vihabhat/Promotion-rule-engine/internal/cli"
	"github.com/vihabhat/Promotion-rule-engine/internal/logging"
	"github.com/vihabhat/Promotion-rule-engine/internal/store"
)

var (
	// Global flags
	rulesPath string
	format    string
	quiet     bool
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "promoctl",
	Short: "CLI tool for working with promotion rules",
	Long: `Promoctl is a command-line tool for the promotion rule engine.

It validates rule documents, evaluates player profiles against them,
generates synthetic player populations and simulates batch evaluations.

Examples:
  promoctl validate --rules rules.yaml
  promoctl evaluate --player '{"player_id": "p1", "spend_tier": "gold"}'
  promoctl generate --count 500 --output players.json
  promoctl simulate players.json --strategy priority`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// cliLogger returns the logger handed to rule sources: debug console output
// with --verbose, silent otherwise.
func cliLogger() zerolog.Logger {
	if verbose {
		return logging.NewWithWriter("dev", "debug", os.Stderr)
	}
	return zerolog.Nop()
}

// loadRules loads the resolved rules document and returns its path.
func loadRules() (*store.LoadResult, string, error) {
	path, err := cli.ResolveRulesPath(rulesPath)
	if err != nil {
		return nil, "", err
	}
	src := store.NewFileSource(path, cliLogger())
	res, err := src.Load(context.Background())
	if err != nil {
		return nil, path, err
	}
	return res, path, nil
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Path to the rules YAML document")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
