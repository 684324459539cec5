// Package cli provides output formatting and configuration for the expdeck
// command-line tool.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/expdeck/expdeck/internal/evaluation"
	"github.com/expdeck/expdeck/internal/snapshot"
)

// OutputFormat specifies the output format for CLI commands.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// PrintExperiments outputs experiments in the specified format.
func PrintExperiments(experiments []snapshot.ExperimentView, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]snapshot.ExperimentView{"experiments": experiments})
	case FormatYAML:
		return printYAML(experiments)
	case FormatTable:
		return printExperimentTable(experiments)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintExperiment outputs a single experiment in the specified format.
func PrintExperiment(exp *snapshot.ExperimentView, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(exp)
	case FormatYAML:
		return printYAML(exp)
	case FormatTable:
		return printExperimentTable([]snapshot.ExperimentView{*exp})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// PrintResults outputs evaluation results in the specified format.
func PrintResults(results []evaluation.Result, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return printJSON(map[string][]evaluation.Result{"results": results})
	case FormatYAML:
		return printYAML(results)
	case FormatTable:
		return printResultTable(results)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func printYAML(data interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	encoder.SetIndent(2)
	return encoder.Encode(data)
}

func printExperimentTable(experiments []snapshot.ExperimentView) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Key", "Enabled", "Control", "Treatment", "Buckets", "Env", "Updated At")

	for _, exp := range experiments {
		enabled := "false"
		if exp.Enabled {
			enabled = "true"
		}

		control, treatment := "-", "-"
		if len(exp.Variants) == 2 {
			control = variantCell(exp.Variants[0].Name, exp.Variants[0].Size)
			treatment = variantCell(exp.Variants[1].Name, exp.Variants[1].Size)
		}

		table.Append(
			exp.Key,
			enabled,
			control,
			treatment,
			fmt.Sprintf("%d", exp.NumBuckets),
			exp.Env,
			exp.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}

	return table.Render()
}

func variantCell(name string, size *float64) string {
	if size == nil {
		return name
	}
	return fmt.Sprintf("%s (%.1f%%)", name, *size*100)
}

func printResultTable(results []evaluation.Result) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Experiment", "Assigned", "Variant")

	for _, res := range results {
		assigned := "no"
		if res.Assigned {
			assigned = "yes"
		}
		variant := res.Variant
		if variant == "" {
			variant = "-"
		}
		table.Append(res.Key, assigned, variant)
	}

	return table.Render()
}
