package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	analysis "github.com/Bernard-AI4PH/Random-Forest-Analysis"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/forest"
	forestjson "github.com/Bernard-AI4PH/Random-Forest-Analysis/forest/json"
)

type evaluateCmdConfig struct {
	*dataCmdConfig
	modelInput string
	positive   string
	threshold  float64
}

func evaluateCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &evaluateCmdConfig{dataCmdConfig: &dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate a trained model against the test partition",
		Long:  `Classify the held-back test partition with a stored model and report its confusion-matrix metrics at the given threshold. Only ever run this on data the model never saw`,
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
			test, err := config.Dataset(ctx, schema)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			count, err := test.Count(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			config.Logf("Evaluating model against test partition with %d samples at threshold %v...", count, config.threshold)
			record, err := analysis.Evaluate(ctx, model, test, config.positive, config.threshold)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			renderRecord(record)
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the test partition (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVar(&(config.modelInput), "model", "", "path to a JSON file with the model to evaluate (required)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "name of the table to read when the input is a database")
	cmd.PersistentFlags().StringVarP(&(config.positive), "positive", "p", "", "label value treated as the positive class (required)")
	cmd.PersistentFlags().Float64VarP(&(config.threshold), "threshold", "t", 0.5, "positive-class decision threshold")
	return cmd
}

func (ecc *evaluateCmdConfig) Validate() error {
	if ecc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if ecc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	if ecc.positive == "" {
		return fmt.Errorf("required positive flag was not set")
	}
	return nil
}

func (ecc *evaluateCmdConfig) Model(ctx context.Context, schema *feature.Schema) (*forest.Forest, error) {
	ecc.Logf("Reading model from %s...", ecc.modelInput)
	f, err := os.Open(ecc.modelInput)
	if err != nil {
		return nil, fmt.Errorf("reading model from %s: %v", ecc.modelInput, err)
	}
	defer f.Close()
	model, err := forestjson.ReadForest(ctx, schema, f)
	if err != nil {
		return nil, err
	}
	ecc.Logf("Model read")
	return model, nil
}

func renderRecord(record *analysis.MetricRecord) {
	table := tablewriter.NewWriter(os.Stdout)
	header := []string{}
	row := []string{}
	for _, m := range analysis.Metrics() {
		header = append(header, string(m))
		v, ok := record.Value(m)
		if !ok {
			row = append(row, "undefined")
			continue
		}
		row = append(row, fmt.Sprintf("%.4f", v))
	}
	table.SetHeader(header)
	table.Append(row)
	table.Render()
}
