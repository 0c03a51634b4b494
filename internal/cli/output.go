package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/vihabhat/Promotion-rule-engine/internal/engine"
	"github.com/vihabhat/Promotion-rule-engine/internal/rules"
)

// OutputFormat specifies the output format for CLI commands
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintRules outputs rules in the specified format
func PrintRules(rs []rules.Rule, format OutputFormat) error {
	switch format {
	case FormatJSON:
		// Wrap in a "rules" key so the output round-trips as a rules document
		return PrintJSON(map[string][]rules.Rule{"rules": rs})
	case FormatYAML:
		return PrintYAML(map[string][]rules.Rule{"rules": rs})
	case FormatTable:
		return rulesTable(rs)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintResult outputs a single evaluation result in the specified format
func PrintResult(res engine.Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return PrintJSON(res)
	case FormatYAML:
		return PrintYAML(res)
	case FormatTable:
		return resultTable(res)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintJSON writes data to stdout as indented JSON
func PrintJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// PrintYAML writes data to stdout as YAML
func PrintYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

// PrintTable renders a generic table to stdout
func PrintTable(header []string, rows [][]string) error {
	table := tablewriter.NewWriter(os.Stdout)

	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	table.Header(hdr...)

	for _, row := range rows {
		cells := make([]interface{}, len(row))
		for i, c := range row {
			cells[i] = c
		}
		table.Append(cells...)
	}

	return table.Render()
}

func rulesTable(rs []rules.Rule) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header("ID", "Enabled", "Priority", "Promotion", "Type", "Conditions", "Description")

	for i := range rs {
		r := &rs[i]

		description := r.Description
		if len(description) > 40 {
			description = description[:37] + "..."
		}

		table.Append(
			r.ID,
			strconv.FormatBool(r.Enabled),
			strconv.Itoa(r.Priority),
			r.Promotion.ID,
			r.Promotion.Type,
			strconv.Itoa(len(r.Conditions)),
			description,
		)
	}

	return table.Render()
}

func resultTable(res engine.Result) error {
	if !res.Matched() {
		fmt.Printf("No promotions for player %s (%d rules evaluated)\n", res.PlayerID, res.Evaluated)
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)

	table.Header("Rule", "Promotion", "Type", "Value", "Description")

	for i := range res.Promotions {
		promo := &res.Promotions[i]

		value := "-"
		switch {
		case promo.Amount != nil && promo.Currency != "":
			value = fmt.Sprintf("%.2f %s", *promo.Amount, promo.Currency)
		case promo.Amount != nil:
			value = fmt.Sprintf("%.2f", *promo.Amount)
		case promo.Multiplier != nil:
			value = fmt.Sprintf("x%.2f", *promo.Multiplier)
		}

		description := promo.Description
		if len(description) > 40 {
			description = description[:37] + "..."
		}

		table.Append(res.MatchedRules[i], promo.ID, promo.Type, value, description)
	}

	return table.Render()
}
