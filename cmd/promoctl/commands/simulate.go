package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vihabhat/Promotion-rule-engine/internal/cli"
	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
)

var (
	simulateStrategy string
	simulateAt       string
)

// simulationReport summarizes one batch evaluation run.
type simulationReport struct {
	Players        int            `json:"players" yaml:"players"`
	Matched        int            `json:"matched" yaml:"matched"`
	MatchRate      float64        `json:"match_rate" yaml:"match_rate"`
	Errors         int            `json:"errors" yaml:"errors"`
	RuleHits       map[string]int `json:"rule_hits" yaml:"rule_hits"`
	PromotionTypes map[string]int `json:"promotion_types" yaml:"promotion_types"`
	AvgLatencyMs   float64        `json:"avg_latency_ms" yaml:"avg_latency_ms"`
	MaxLatencyMs   float64        `json:"max_latency_ms" yaml:"max_latency_ms"`
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <players.json>",
	Short: "Batch-evaluate a player population",
	Long: `Evaluate every profile in a players JSON file (see the generate command)
and print a summary: match rate, per-rule hits, per-promotion-type counts
and latency statistics.

Examples:
  promoctl simulate players.json
  promoctl simulate players.json --strategy priority --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read players: %w", err)
		}
		var players []map[string]any
		if err := json.Unmarshal(data, &players); err != nil {
			return fmt.Errorf("invalid players JSON: %w", err)
		}

		strategyName, err := cli.ResolveStrategy(simulateStrategy)
		if err != nil {
			return err
		}
		strategy, err := engine.ParseSelection(strategyName)
		if err != nil {
			return err
		}

		opts := []engine.Option{engine.WithSelection(strategy)}
		if simulateAt != "" {
			at, err := time.Parse(time.RFC3339, simulateAt)
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

		report := simulationReport{
			Players:        len(players),
			RuleHits:       make(map[string]int),
			PromotionTypes: make(map[string]int),
		}
		var total, max time.Duration
		for _, p := range players {
			start := time.Now()
			result, err := m.Evaluate(p)
			d := time.Since(start)

			total += d
			if d > max {
				max = d
			}
			if err != nil {
				report.Errors++
				continue
			}
			if result.Matched() {
				report.Matched++
			}
			for _, id := range result.MatchedRules {
				report.RuleHits[id]++
			}
			for i := range result.Promotions {
				report.PromotionTypes[result.Promotions[i].Type]++
			}
		}
		if report.Players > 0 {
			report.MatchRate = float64(report.Matched) / float64(report.Players)
			report.AvgLatencyMs = float64(total.Microseconds()) / float64(report.Players) / 1000
		}
		report.MaxLatencyMs = float64(max.Microseconds()) / 1000

		if quiet {
			return nil
		}
		switch cli.OutputFormat(format) {
		case cli.FormatJSON:
			return cli.PrintJSON(report)
		case cli.FormatYAML:
			return cli.PrintYAML(report)
		case cli.FormatTable:
			return printSimulationTables(report)
		default:
			return fmt.Errorf("unsupported format: %s", format)
		}
	},
}

func printSimulationTables(rep simulationReport) error {
	rows := [][]string{
		{"Players", strconv.Itoa(rep.Players)},
		{"Matched", strconv.Itoa(rep.Matched)},
		{"Match rate", fmt.Sprintf("%.1f%%", rep.MatchRate*100)},
		{"Errors", strconv.Itoa(rep.Errors)},
		{"Avg latency", fmt.Sprintf("%.3f ms", rep.AvgLatencyMs)},
		{"Max latency", fmt.Sprintf("%.3f ms", rep.MaxLatencyMs)},
	}
	if err := cli.PrintTable([]string{"Metric", "Value"}, rows); err != nil {
		return err
	}

	if len(rep.RuleHits) > 0 {
		if err := cli.PrintTable([]string{"Rule", "Hits"}, countRows(rep.RuleHits)); err != nil {
			return err
		}
	}
	if len(rep.PromotionTypes) > 0 {
		if err := cli.PrintTable([]string{"Promotion Type", "Granted"}, countRows(rep.PromotionTypes)); err != nil {
			return err
		}
	}
	return nil
}

// countRows turns a counter map into table rows, highest count first.
func countRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, strconv.Itoa(counts[k])})
	}
	return rows
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simulateStrategy, "strategy", "", "Selection strategy (all, weighted, priority)")
	simulateCmd.Flags().StringVar(&simulateAt, "at", "", "Evaluate as of this RFC3339 time")
}
