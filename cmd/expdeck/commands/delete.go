package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expdeck/expdeck/internal/cli"
	"github.com/expdeck/expdeck/internal/client"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <key>",
	Short: "Delete an experiment",
	Long: `Delete an experiment by key.

Examples:
  expdeck delete checkout_redesign`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		if err := c.DeleteExperiment(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete experiment: %w", err)
		}

		if !quiet {
			fmt.Printf("Experiment %q deleted\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
