package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expdeck/expdeck/internal/cli"
	"github.com/expdeck/expdeck/internal/client"
	"github.com/expdeck/expdeck/internal/evaluation"
)

var (
	evaluateSubject    string
	evaluateKeys       []string
	evaluateAttributes []string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate experiments for a subject",
	Long: `Evaluate experiments for a subject against the running server.

Attributes are key=value pairs made available to targeting expressions.

Examples:
  expdeck evaluate --subject user-123
  expdeck evaluate --subject user-123 --key checkout_redesign
  expdeck evaluate --subject user-123 --attr country=US --attr plan=premium`,
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, _, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		attrs := make(map[string]any, len(evaluateAttributes))
		for _, pair := range evaluateAttributes {
			k, v, found := strings.Cut(pair, "=")
			if !found || k == "" {
				return fmt.Errorf("invalid attribute %q, expected key=value", pair)
			}
			attrs[k] = v
		}

		subject := evaluation.Context{SubjectID: evaluateSubject}
		if len(attrs) > 0 {
			subject.Attributes = attrs
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		results, err := c.Evaluate(context.Background(), subject, evaluateKeys)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}

		if !quiet {
			if len(results) == 0 {
				fmt.Println("No experiments evaluated")
				return nil
			}
			return cli.PrintResults(results, cli.OutputFormat(format))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evaluateSubject, "subject", "", "Subject identifier")
	evaluateCmd.Flags().StringArrayVar(&evaluateKeys, "key", nil, "Experiment key to evaluate (repeatable; empty evaluates all)")
	evaluateCmd.Flags().StringArrayVar(&evaluateAttributes, "attr", nil, "Subject attribute key=value (repeatable)")
}
