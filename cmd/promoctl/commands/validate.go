package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vihabhat/Promotion-rule-engine/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a rules document",
	Long: `Load the rules document, report every dropped rule and print the ones
that built.

The command exits non-zero when the document cannot be read or any rule
fails validation.

Examples:
  promoctl validate
  promoctl validate --rules rules.yaml --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, path, err := loadRules()
		if err != nil {
			return fmt.Errorf("failed to load rules: %w", err)
		}

		for _, derr := range res.Dropped {
			fmt.Fprintf(os.Stderr, "dropped: %v\n", derr)
		}

		if !quiet {
			if err := cli.PrintRules(res.Rules, cli.OutputFormat(format)); err != nil {
				return err
			}
			fmt.Printf("%s: %d rule(s) loaded, %d dropped\n", path, len(res.Rules), len(res.Dropped))
		}

		if len(res.Dropped) > 0 {
			return fmt.Errorf("%d rule(s) failed validation", len(res.Dropped))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
