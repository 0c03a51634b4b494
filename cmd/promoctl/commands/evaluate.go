package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vihabhat/Promotion-rule-engine/internal/cli"
	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
)

var (
	evaluatePlayer   string
	evaluateFile     string
	evaluateAt       string
	evaluateStrategy string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a player profile against the rules",
	Long: `Evaluate one player profile and print the promotions it wins.

The profile comes from --player (inline JSON) or --file (path to a JSON
document). --at pins the evaluation clock and --strategy picks the winner
selection (all, weighted, priority).

Examples:
  promoctl evaluate --player '{"player_id": "p1", "spend_tier": "gold"}'
  promoctl evaluate --file player.json --at 2026-01-01T00:00:00Z
  promoctl evaluate --file player.json --strategy priority`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, err := readProfile()
		if err != nil {
			return err
		}

		strategyName, err := cli.ResolveStrategy(evaluateStrategy)
		if err != nil {
			return err
		}
		strategy, err := engine.ParseSelection(strategyName)
		if err != nil {
			return err
		}

		opts := []engine.Option{engine.WithSelection(strategy)}
		if evaluateAt != "" {
			at, err := time.Parse(time.RFC3339, evaluateAt)
			if err != nil {
				return fmt.Errorf("invalid --at time: %w", err)
			}
			opts = append(opts, engine.WithNow(func() time.Time { return at }))
		}

		res, _, err := loadRules()
		if err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}

		m := engine.New(opts...)
		m.SetRules(res.Rules)

		result, err := m.Evaluate(profile)
		if err != nil {
			return err
		}

		if !quiet {
			return cli.PrintResult(result, cli.OutputFormat(format))
		}
		return nil
	},
}

func readProfile() (map[string]any, error) {
	var data []byte
	switch {
	case evaluatePlayer != "" && evaluateFile != "":
		return nil, fmt.Errorf("--player and --file are mutually exclusive")
	case evaluatePlayer != "":
		data = []byte(evaluatePlayer)
	case evaluateFile != "":
		var err error
		data, err = os.ReadFile(evaluateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("either --player or --file is required")
	}

	var profile map[string]any
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("invalid profile JSON: %w", err)
	}
	return profile, nil
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluatePlayer, "player", "", "Player profile as inline JSON")
	evaluateCmd.Flags().StringVar(&evaluateFile, "file", "", "Path to a player profile JSON file")
	evaluateCmd.Flags().StringVar(&evaluateAt, "at", "", "Evaluate as of this RFC3339 time")
	evaluateCmd.Flags().StringVar(&evaluateStrategy, "strategy", "", "Selection strategy (all, weighted, priority)")
}
