package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/forest"
	forestjson "github.com/Bernard-AI4PH/Random-Forest-Analysis/forest/json"
)

type predictCmdConfig struct {
	*dataCmdConfig
	modelInput string
	output     string
}

func predictCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &predictCmdConfig{dataCmdConfig: &dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the label of unlabeled samples with a trained model",
		Long:  `Classify every sample of the input with a stored model and dump the predictor values together with the predicted label and its probability as CSV`,
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
			model, err := config.Model(ctx, schema)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			ds, err := config.Dataset(ctx, schema)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			var outputFile *os.File
			if config.output == "" {
				config.Logf("Using STDOUT to dump predictions...")
				outputFile = os.Stdout
			} else {
				config.Logf("Creating %s to dump predictions...", config.output)
				outputFile, err = os.Create(config.output)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(5)
				}
				defer outputFile.Close()
			}
			err = config.WritePredictions(ctx, model, ds, outputFile)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with samples to predict (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVar(&(config.modelInput), "model", "", "path to a JSON file with the model to predict with (required)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "name of the table to read when the input is a database")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a CSV file to dump the predictions (defaults to STDOUT)")
	return cmd
}

func (pcc *predictCmdConfig) Validate() error {
	if pcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if pcc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	return nil
}

func (pcc *predictCmdConfig) Model(ctx context.Context, schema *feature.Schema) (*forest.Forest, error) {
	pcc.Logf("Reading model from %s...", pcc.modelInput)
	f, err := os.Open(pcc.modelInput)
	if err != nil {
		return nil, fmt.Errorf("reading model from %s: %v", pcc.modelInput, err)
	}
	defer f.Close()
	model, err := forestjson.ReadForest(ctx, schema, f)
	if err != nil {
		return nil, err
	}
	pcc.Logf("Model read")
	return model, nil
}

func (pcc *predictCmdConfig) WritePredictions(ctx context.Context, model *forest.Forest, ds dataset.Dataset, outputFile *os.File) error {
	samples, err := ds.Samples(ctx)
	if err != nil {
		return err
	}
	w := csv.NewWriter(outputFile)
	header := make([]string, 0, len(model.Features)+2)
	for _, f := range model.Features {
		header = append(header, f.Name())
	}
	header = append(header, model.Label.Name(), "probability")
	if err := w.Write(header); err != nil {
		return err
	}
	for i, s := range samples {
		predicted, prob, err := model.Predict(ctx, s)
		if err != nil {
			return fmt.Errorf("predicting sample %d: %v", i, err)
		}
		record := make([]string, 0, len(header))
		for _, f := range model.Features {
			v, err := s.ValueFor(ctx, f)
			if err != nil {
				return err
			}
			if v == nil {
				record = append(record, "?")
			} else {
				record = append(record, fmt.Sprintf("%v", v))
			}
		}
		record = append(record, predicted, strconv.FormatFloat(prob, 'f', 4, 64))
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
