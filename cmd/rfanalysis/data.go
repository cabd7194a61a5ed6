package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset/csv"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset/sqldataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset/sqldataset/pgadapter"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset/sqldataset/sqlite3adapter"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature/yaml"
)

/*
dataCmdConfig gathers the flags every data-consuming command shares:
where the input dataset and its metadata live, and which feature is the
outcome. Inputs dispatch on their name: a postgresql:// URL reads from
PostgreSQL, a .db path from SQLite3, anything else is a CSV file path
("" meaning STDIN).
*/
type dataCmdConfig struct {
	*rootCmdConfig
	dataInput     string
	metadataInput string
	labelName     string
	table         string
}

func (dcc *dataCmdConfig) Validate() error {
	if dcc.metadataInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if dcc.labelName == "" {
		return fmt.Errorf("required label flag was not set")
	}
	return nil
}

func (dcc *dataCmdConfig) Schema() (*feature.Schema, error) {
	dcc.Logf("Reading features from metadata at %s...", dcc.metadataInput)
	schema, err := yaml.ReadSchemaFromFile(dcc.metadataInput)
	if err != nil {
		return nil, err
	}
	dcc.Logf("Features from metadata read")
	return schema, nil
}

func (dcc *dataCmdConfig) Label(schema *feature.Schema) (*feature.DiscreteFeature, error) {
	f, ok := schema.Feature(dcc.labelName)
	if !ok {
		return nil, fmt.Errorf("label feature %s is not declared on the metadata", dcc.labelName)
	}
	label, ok := f.(*feature.DiscreteFeature)
	if !ok {
		return nil, fmt.Errorf("label feature %s is not discrete", dcc.labelName)
	}
	return label, nil
}

func (dcc *dataCmdConfig) Dataset(ctx context.Context, schema *feature.Schema) (dataset.Dataset, error) {
	if strings.HasPrefix(dcc.dataInput, "postgresql://") {
		dcc.Logf("Creating PostgreSQL adapter for url %s to read dataset...", dcc.dataInput)
		adapter, err := pgadapter.New(dcc.dataInput)
		if err != nil {
			return nil, err
		}
		defer adapter.Close()
		dcc.Logf("Reading dataset from table %s over PostgreSQL adapter...", dcc.table)
		return sqldataset.Read(ctx, adapter, schema, dcc.table)
	}
	if strings.HasSuffix(dcc.dataInput, ".db") {
		dcc.Logf("Creating SQLite3 adapter for file %s to read dataset...", dcc.dataInput)
		adapter, err := sqlite3adapter.New(dcc.dataInput)
		if err != nil {
			return nil, err
		}
		defer adapter.Close()
		dcc.Logf("Reading dataset from table %s over SQLite3 adapter...", dcc.table)
		return sqldataset.Read(ctx, adapter, schema, dcc.table)
	}
	if dcc.dataInput == "" {
		dcc.Logf("Reading dataset from STDIN...")
	} else {
		dcc.Logf("Opening %s to read dataset...", dcc.dataInput)
	}
	return csv.ReadDatasetFromFilePath(dcc.dataInput, schema, dataset.New)
}

/*
writeDatasetToFilePath dumps the dataset as CSV to the file at the given
path, or to STDOUT when the path is "".
*/
func writeDatasetToFilePath(ctx context.Context, filepath string, ds dataset.Dataset, features []feature.Feature, rootConfig *rootCmdConfig) error {
	var f *os.File
	var err error
	if filepath == "" {
		rootConfig.Logf("Using STDOUT to dump dataset...")
		f = os.Stdout
	} else {
		rootConfig.Logf("Creating %s to dump dataset...", filepath)
		f, err = os.Create(filepath)
		if err != nil {
			return err
		}
		defer f.Close()
	}
	return csv.WriteDataset(ctx, f, ds, features)
}
