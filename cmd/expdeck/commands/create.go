package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expdeck/expdeck/internal/cli"
	"github.com/expdeck/expdeck/internal/client"
	"github.com/expdeck/expdeck/internal/store"
	"github.com/expdeck/expdeck/internal/variantset"
)

var (
	createDescription   string
	createOwner         string
	createEnabled       bool
	createControlName   string
	createControlSize   float64
	createTreatmentName string
	createTreatmentSize float64
	createNumBuckets    int32
	createBucketBy      string
	createExpression    string
)

var createCmd = &cobra.Command{
	Use:   "create <key>",
	Short: "Create or update an experiment",
	Long: `Create or update an experiment. The control variant is allocated from the
bottom of the bucket range and the treatment variant from the top, so
resizing either side later will not reshuffle already-assigned subjects.

Examples:
  expdeck create checkout_redesign --control-size 0.4 --treatment-size 0.3 --enabled
  expdeck create price_test --control-size 0.5 --treatment-size 0.5 --num-buckets 100
  expdeck create geo_test --control-size 0.2 --treatment-size 0.2 \
    --expression '{"==": [{"var": "country"}, "US"]}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		envCfg, effectiveEnv, err := cli.GetEnvConfig(env, baseURL, apiKey)
		if err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}

		controlSize := createControlSize
		treatmentSize := createTreatmentSize
		params := store.UpsertParams{
			Key:         args[0],
			Description: createDescription,
			Owner:       createOwner,
			Enabled:     createEnabled,
			Variants: []variantset.Variant{
				{Name: createControlName, Size: &controlSize},
				{Name: createTreatmentName, Size: &treatmentSize},
			},
			NumBuckets: createNumBuckets,
			BucketBy:   createBucketBy,
			Env:        effectiveEnv,
		}
		if createExpression != "" {
			params.Expression = &createExpression
		}

		// Validate locally before calling the API so mistakes fail fast.
		var opts []variantset.Option
		if createNumBuckets != 0 {
			opts = append(opts, variantset.WithNumBuckets(int(createNumBuckets)))
		}
		if _, err := variantset.New(params.Variants, opts...); err != nil {
			return err
		}

		c := client.NewClient(envCfg.BaseURL, envCfg.APIKey)
		if err := c.CreateExperiment(context.Background(), params); err != nil {
			return fmt.Errorf("failed to create experiment: %w", err)
		}

		if !quiet {
			fmt.Printf("Experiment %q created in %s\n", args[0], effectiveEnv)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createDescription, "description", "", "Experiment description")
	createCmd.Flags().StringVar(&createOwner, "owner", "", "Owning team or person")
	createCmd.Flags().BoolVar(&createEnabled, "enabled", false, "Enable the experiment")
	createCmd.Flags().StringVar(&createControlName, "control-name", "control", "Name of the control variant")
	createCmd.Flags().Float64Var(&createControlSize, "control-size", 0, "Fraction of buckets for control (0-1)")
	createCmd.Flags().StringVar(&createTreatmentName, "treatment-name", "treatment", "Name of the treatment variant")
	createCmd.Flags().Float64Var(&createTreatmentSize, "treatment-size", 0, "Fraction of buckets for treatment (0-1)")
	createCmd.Flags().Int32Var(&createNumBuckets, "num-buckets", 0, "Bucket range size (default 1000)")
	createCmd.Flags().StringVar(&createBucketBy, "bucket-by", "", "Subject attribute to bucket by (default id)")
	createCmd.Flags().StringVar(&createExpression, "expression", "", "JSON Logic eligibility expression")
}
