package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expdeck/expdeck/internal/cli"
	"github.com/expdeck/expdeck/internal/client"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a single experiment",
	Long: `Get a single experiment by key from the server's current snapshot.

Examples:
  expdeck get checkout_redesign
  expdeck get checkout_redesign --format yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)

		exp, err := c.GetExperiment(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get experiment: %w", err)
		}

		if !quiet {
			return cli.PrintExperiment(exp, cli.OutputFormat(format))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}
