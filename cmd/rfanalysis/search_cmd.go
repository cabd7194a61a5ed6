package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	analysis "github.com/Bernard-AI4PH/Random-Forest-Analysis"
)

type searchCmdConfig struct {
	*dataCmdConfig
	positive    string
	mtry        []int
	minNode     []int
	trees       []int
	folds       int
	targetRatio float64
	neighbors   int
	threshold   float64
	workers     int
	seed        int64
	metric      string
}

func searchCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &searchCmdConfig{dataCmdConfig: &dataCmdConfig{rootCmdConfig: rootConfig}}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Cross-validate a hyperparameter grid over a training dataset",
		Long:  `Evaluate every hyperparameter combination of the given grid with stratified k-fold cross-validation, balancing each fold complement before fitting, and report the mean metrics per combination together with the selected one`,
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
			grid := analysis.Grid{MTry: config.mtry, MinNode: config.minNode, Trees: config.trees}
			config.Logf("Searching %d grid points over %d folds with %d workers and seed %d...", len(grid.Points()), config.folds, config.workers, config.seed)
			results, err := analysis.Search(ctx, train, analysis.SearchConfig{
				Schema:      schema,
				Label:       label,
				Positive:    config.positive,
				Grid:        grid,
				Folds:       config.folds,
				TargetRatio: config.targetRatio,
				Neighbors:   config.neighbors,
				Threshold:   config.threshold,
				Workers:     config.workers,
				Seed:        config.seed,
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			best, err := analysis.SelectBest(results, analysis.Metric(config.metric))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
			renderResults(results, best)
			config.Logf("Done")
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to an input CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the train partition to search over (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.metadataInput), "metadata", "m", "", "path to a YML file with metadata describing the different features available on the input file (required)")
	cmd.PersistentFlags().StringVarP(&(config.labelName), "label", "l", "", "name of the feature the classifiers will predict (required)")
	cmd.PersistentFlags().StringVar(&(config.table), "table", "samples", "name of the table to read when the input is a database")
	cmd.PersistentFlags().StringVarP(&(config.positive), "positive", "p", "", "label value treated as the positive class (required)")
	cmd.PersistentFlags().IntSliceVar(&(config.mtry), "mtry", []int{2, 4}, "numbers of features sampled at every split")
	cmd.PersistentFlags().IntSliceVar(&(config.minNode), "min-node", []int{1, 5}, "minimum node sizes")
	cmd.PersistentFlags().IntSliceVar(&(config.trees), "trees", []int{100, 500}, "ensemble sizes")
	cmd.PersistentFlags().IntVarP(&(config.folds), "folds", "f", 5, "number of cross-validation folds, at least 2")
	cmd.PersistentFlags().Float64VarP(&(config.targetRatio), "target-ratio", "r", 1.0, "minority:majority ratio each fold complement is balanced to, above 0")
	cmd.PersistentFlags().IntVarP(&(config.neighbors), "neighbors", "k", 5, "number of same-class nearest neighbors considered when balancing")
	cmd.PersistentFlags().Float64VarP(&(config.threshold), "threshold", "t", 0.5, "positive-class decision threshold used when scoring held-out folds")
	cmd.PersistentFlags().IntVarP(&(config.workers), "workers", "w", 1, "number of concurrent fit workers")
	cmd.PersistentFlags().Int64VarP(&(config.seed), "seed", "s", 0, "seed fixing fold assignment, balancing and fitting")
	cmd.PersistentFlags().StringVar(&(config.metric), "metric", string(analysis.MetricF1), "metric whose cross-validated mean selects the best combination")
	return cmd
}

func (scc *searchCmdConfig) Validate() error {
	if err := scc.dataCmdConfig.Validate(); err != nil {
		return err
	}
	if scc.positive == "" {
		return fmt.Errorf("required positive flag was not set")
	}
	if scc.folds < 2 {
		return fmt.Errorf("folds flag was set to an invalid value: it must be at least 2")
	}
	for _, m := range analysis.Metrics() {
		if scc.metric == string(m) {
			return nil
		}
	}
	return fmt.Errorf("metric flag was set to an invalid value: it must be one of %v", analysis.Metrics())
}

func renderResults(results []*analysis.SearchResult, best *analysis.SearchResult) {
	table := tablewriter.NewWriter(os.Stdout)
	header := []string{"mtry", "min node", "trees"}
	for _, m := range analysis.Metrics() {
		header = append(header, string(m))
	}
	header = append(header, "failed folds", "best")
	table.SetHeader(header)
	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Point.MTry),
			strconv.Itoa(r.Point.MinNode),
			strconv.Itoa(r.Point.Trees),
		}
		for _, m := range analysis.Metrics() {
			mean, ok := r.Mean(m)
			if !ok {
				row = append(row, "undefined")
				continue
			}
			stderr, _ := r.StdErr(m)
			row = append(row, fmt.Sprintf("%.4f ±%.4f", mean, stderr))
		}
		row = append(row, strconv.Itoa(len(r.FailedFolds)))
		if r.Point == best.Point {
			row = append(row, "*")
		} else {
			row = append(row, "")
		}
		table.Append(row)
	}
	table.Render()
}
