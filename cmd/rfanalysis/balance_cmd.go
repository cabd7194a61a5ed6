package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	analysis "github.com/Bernard-AI4PH/Random-Forest-Analysis"
)

type balanceCmdConfig struct {
	*dataCmdConfig
	output      string
	targetRatio float64
	neighbors   int
	seed        int64
}

func balanceCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &balanceCmdConfig{dataCmdConfig: &dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Oversample the minority classes of a training dataset",
		Long:  `Oversample the minority classes of a training dataset with synthetic samples until they reach the target ratio of the majority class. Only ever run this on the train partition`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			ctx := context.Background()
			schema, err := config.Schema()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			label, err := config.Label(schema)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			train, err := config.Dataset(ctx, schema)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			config.Logf("Balancing dataset to ratio %v with %d neighbors and seed %d...", config.targetRatio, config.neighbors, config.seed)
			balanced, err := analysis.Balance(ctx, train, schema, label, config.targetRatio, config.neighbors, config.seed)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			err = writeDatasetToFilePath(ctx, config.output, balanced, schema.Features(), rootConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			originalCount, err := train.Count(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			balancedCount, err := balanced.Count(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			config.Logf("Done")
			config.Logf("Dataset with %d samples was balanced into a dataset with %d samples", originalCount, balancedCount)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the train partition to balance (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.labelName), "label", "l", "", "name of the feature whose classes are balanced (required)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "name of the table to read when the input is a database")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a CSV file to dump the balanced dataset (defaults to STDOUT)")
	cmd.PersistentFlags().Float64VarP(&(config.targetRatio), "target-ratio", "r", 1.0, "minority:majority ratio each minority class is raised to, above 0")
	cmd.PersistentFlags().IntVarP(&(config.neighbors), "neighbors", "k", 5, "number of same-class nearest neighbors considered when synthesizing samples")
	cmd.PersistentFlags().Int64VarP(&(config.seed), "seed", "s", 0, "seed for the rng that drives the synthesis")
	return cmd
}

func (bcc *balanceCmdConfig) Validate() error {
	if err := bcc.dataCmdConfig.Validate(); err != nil {
		return err
	}
	if bcc.targetRatio <= 0 {
		return fmt.Errorf("target-ratio flag was set to an invalid value: it must be above 0")
	}
	if bcc.neighbors < 1 {
		return fmt.Errorf("neighbors flag was set to an invalid value: it must be at least 1")
	}
	return nil
}
