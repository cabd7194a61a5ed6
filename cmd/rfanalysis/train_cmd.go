package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	analysis "github.com/Bernard-AI4PH/Random-Forest-Analysis"
	forestjson "github.com/Bernard-AI4PH/Random-Forest-Analysis/forest/json"
)

type trainCmdConfig struct {
	*dataCmdConfig
	modelOutput string
	mtry        int
	minNode     int
	trees       int
	targetRatio float64
	neighbors   int
	seed        int64
}

func trainCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &trainCmdConfig{dataCmdConfig: &dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the final Random Forest on the full train partition",
		Long:  `Balance the full train partition, grow a Random Forest with the selected hyperparameters on it and store the model as JSON`,
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
			point := analysis.GridPoint{MTry: config.mtry, MinNode: config.minNode, Trees: config.trees}
			config.Logf("Training final model with %v and seed %d...", point, config.seed)
			model, err := analysis.FitFinal(ctx, train, schema, label, point, config.targetRatio, config.neighbors, config.seed)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			var outputFile *os.File
			if config.modelOutput == "" {
				config.Logf("Using STDOUT to dump model...")
				outputFile = os.Stdout
			} else {
				config.Logf("Creating %s to dump model...", config.modelOutput)
				outputFile, err = os.Create(config.modelOutput)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(6)
				}
				defer outputFile.Close()
			}
			err = forestjson.WriteForest(ctx, model, outputFile)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(7)
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the train partition (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.labelName), "label", "l", "", "name of the feature the model will predict (required)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "name of the table to read when the input is a database")
	cmd.PersistentFlags().StringVarP(&(config.modelOutput), "output", "o", "", "path to a file to dump the trained model as JSON (defaults to STDOUT)")
	cmd.PersistentFlags().IntVar(&(config.mtry), "mtry", 4, "number of features sampled at every split")
	cmd.PersistentFlags().IntVar(&(config.minNode), "min-node", 1, "minimum node size")
	cmd.PersistentFlags().IntVar(&(config.trees), "trees", 500, "ensemble size")
	cmd.PersistentFlags().Float64VarP(&(config.targetRatio), "target-ratio", "r", 1.0, "minority:majority ratio the train partition is balanced to, above 0")
	cmd.PersistentFlags().IntVarP(&(config.neighbors), "neighbors", "k", 5, "number of same-class nearest neighbors considered when balancing")
	cmd.PersistentFlags().Int64VarP(&(config.seed), "seed", "s", 0, "seed fixing balancing and fitting")
	return cmd
}

func (tcc *trainCmdConfig) Validate() error {
	if err := tcc.dataCmdConfig.Validate(); err != nil {
		return err
	}
	if tcc.mtry < 1 || tcc.minNode < 1 || tcc.trees < 1 {
		return fmt.Errorf("mtry, min-node and trees flags must be set to positive integers")
	}
	if tcc.targetRatio <= 0 {
		return fmt.Errorf("target-ratio flag was set to an invalid value: it must be above 0")
	}
	return nil
}
