package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/expdeck/expdeck/internal/cli"
	"github.com/expdeck/expdeck/internal/client"
	"github.com/expdeck/expdeck/internal/snapshot"
)

var listEnabledOnly bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	Long: `List all experiments in the server's current snapshot.

Examples:
  expdeck list
  expdeck list --format json
  expdeck list --enabled-only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		experiments, err := c.ListExperiments(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list experiments: %w", err)
		}

		if listEnabledOnly {
			var enabled []snapshot.ExperimentView
			for _, exp := range experiments {
				if exp.Enabled {
					enabled = append(enabled, exp)
				}
			}
			experiments = enabled
		}

		sort.Slice(experiments, func(i, j int) bool {
			return experiments[i].Key < experiments[j].Key
		})

		if !quiet {
			if len(experiments) == 0 {
				fmt.Println("No experiments found")
				return nil
			}
			return cli.PrintExperiments(experiments, cli.OutputFormat(format))
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listEnabledOnly, "enabled-only", false, "Show only enabled experiments")
}
