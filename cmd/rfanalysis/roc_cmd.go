package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	analysis "github.com/Bernard-AI4PH/Random-Forest-Analysis"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/forest"
	forestjson "github.com/Bernard-AI4PH/Random-Forest-Analysis/forest/json"
)

type rocCmdConfig struct {
	*dataCmdConfig
	modelInput string
	positive   string
	plotHeight int
}

func rocCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &rocCmdConfig{dataCmdConfig: &dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "roc",
		Short: "Plot the ROC curve of a trained model over the test partition",
		Long:  `Score the held-back test partition with a stored model, plot its ROC curve, report the AUC and list the metrics at every distinct threshold so an operating point can be calibrated`,
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
			probs, labels, err := config.Scores(ctx, model, test)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			config.Logf("Building ROC curve over %d scored samples...", len(probs))
			curve, auc, err := analysis.ROCCurve(probs, labels)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			tpr := make([]float64, len(curve))
			for i, p := range curve {
				tpr[i] = p.TPR
			}
			fmt.Println(asciigraph.Plot(tpr,
				asciigraph.Height(config.plotHeight),
				asciigraph.Caption(fmt.Sprintf("ROC curve, AUC %.4f", auc))))
			renderCurve(curve, probs, labels)
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the test partition (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVar(&(config.modelInput), "model", "", "path to a JSON file with the model to score with (required)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "name of the table to read when the input is a database")
	cmd.PersistentFlags().StringVarP(&(config.positive), "positive", "p", "", "label value treated as the positive class (required)")
	cmd.PersistentFlags().IntVar(&(config.plotHeight), "plot-height", 10, "height in rows of the ROC plot")
	return cmd
}

func (rcc *rocCmdConfig) Validate() error {
	if rcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if rcc.modelInput == "" {
		return fmt.Errorf("required model flag was not set")
	}
	if rcc.positive == "" {
		return fmt.Errorf("required positive flag was not set")
	}
	return nil
}

func (rcc *rocCmdConfig) Model(ctx context.Context, schema *feature.Schema) (*forest.Forest, error) {
	rcc.Logf("Reading model from %s...", rcc.modelInput)
	f, err := os.Open(rcc.modelInput)
	if err != nil {
		return nil, fmt.Errorf("reading model from %s: %v", rcc.modelInput, err)
	}
	defer f.Close()
	model, err := forestjson.ReadForest(ctx, schema, f)
	if err != nil {
		return nil, err
	}
	rcc.Logf("Model read")
	return model, nil
}

/*
Scores runs the model over every test sample and returns its
positive-class probabilities paired with the true binary labels.
*/
func (rcc *rocCmdConfig) Scores(ctx context.Context, model *forest.Forest, test dataset.Dataset) ([]float64, []bool, error) {
	samples, err := test.Samples(ctx)
	if err != nil {
		return nil, nil, err
	}
	probs := make([]float64, 0, len(samples))
	labels := make([]bool, 0, len(samples))
	for i, s := range samples {
		p, err := model.PredictProba(ctx, s)
		if err != nil {
			return nil, nil, fmt.Errorf("scoring test sample %d: %v", i, err)
		}
		actual, err := s.ValueFor(ctx, model.Label)
		if err != nil {
			return nil, nil, err
		}
		probs = append(probs, p[rcc.positive])
		labels = append(labels, actual == rcc.positive)
	}
	return probs, labels, nil
}

func renderCurve(curve []analysis.ROCPoint, probs []float64, labels []bool) {
	table := tablewriter.NewWriter(os.Stdout)
	header := []string{"threshold", "tpr", "fpr"}
	for _, m := range analysis.Metrics() {
		header = append(header, string(m))
	}
	table.SetHeader(header)
	for _, p := range curve {
		row := []string{
			strconv.FormatFloat(p.Threshold, 'f', 4, 64),
			strconv.FormatFloat(p.TPR, 'f', 4, 64),
			strconv.FormatFloat(p.FPR, 'f', 4, 64),
		}
		record, err := analysis.MetricsAt(probs, labels, p.Threshold)
		if err != nil {
			continue
		}
		for _, m := range analysis.Metrics() {
			v, ok := record.Value(m)
			if !ok {
				row = append(row, "undefined")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', 4, 64))
		}
		table.Append(row)
	}
	table.Render()
}
