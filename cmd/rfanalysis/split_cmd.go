package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	analysis "github.com/Bernard-AI4PH/Random-Forest-Analysis"
)

type splitCmdConfig struct {
	*dataCmdConfig
	trainOutput   string
	testOutput    string
	trainFraction float64
	seed          int64
}

func splitCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &splitCmdConfig{dataCmdConfig: &dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a dataset into train and test partitions",
		Long:  `Split a dataset into stratified, disjoint train and test partitions, reproducibly under the given seed`,
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
			ds, err := config.Dataset(ctx, schema)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			config.Logf("Splitting dataset with train fraction %v and seed %d...", config.trainFraction, config.seed)
			train, test, err := analysis.Split(ctx, ds, label, config.trainFraction, config.seed)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			err = writeDatasetToFilePath(ctx, config.trainOutput, train, schema.Features(), rootConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			err = writeDatasetToFilePath(ctx, config.testOutput, test, schema.Features(), rootConfig)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			trainCount, err := train.Count(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(8)
			}
			testCount, err := test.Count(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(9)
			}
			config.Logf("Done")
			config.Logf("Dataset with %d samples was split into train and test partitions with %d and %d samples", trainCount+testCount, trainCount, testCount)
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the dataset to split (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.labelName), "label", "l", "", "name of the feature the classifiers will predict (required)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "name of the table to read when the input is a database")
	cmd.PersistentFlags().StringVarP(&(config.trainOutput), "train-output", "o", "", "path to a CSV file to dump the train partition (required)")
	cmd.PersistentFlags().StringVarP(&(config.testOutput), "test-output", "t", "", "path to a CSV file to dump the test partition (required)")
	cmd.PersistentFlags().Float64VarP(&(config.trainFraction), "train-fraction", "f", 0.8, "fraction of each label stratum assigned to the train partition, strictly between 0 and 1")
	cmd.PersistentFlags().Int64VarP(&(config.seed), "seed", "s", 0, "seed for the rng that shuffles the strata")
	return cmd
}

func (scc *splitCmdConfig) Validate() error {
	if err := scc.dataCmdConfig.Validate(); err != nil {
		return err
	}
	if scc.trainOutput == "" {
		return fmt.Errorf("required train-output flag was not set")
	}
	if scc.testOutput == "" {
		return fmt.Errorf("required test-output flag was not set")
	}
	if scc.trainFraction <= 0 || scc.trainFraction >= 1 {
		return fmt.Errorf("train-fraction flag was set to an invalid value: it must be strictly between 0 and 1")
	}
	return nil
}
