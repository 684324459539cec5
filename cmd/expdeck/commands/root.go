package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	baseURL string
	apiKey  string
	env     string
	format  string
	quiet   bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "expdeck",
	Short: "CLI tool for managing experiments",
	Long: `Expdeck is a command-line tool for managing experiments in the expdeck service.

It provides commands for creating, inspecting and deleting experiment
configurations, and for evaluating a subject against the running server.

Examples:
  expdeck list --env prod
  expdeck create checkout_redesign --control-size 0.4 --treatment-size 0.3 --enabled
  expdeck get checkout_redesign
  expdeck evaluate --subject user-123
  expdeck delete checkout_redesign`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "Base URL of the expdeck API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authentication")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "Environment (dev, staging, prod)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "table", "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress output")
}
