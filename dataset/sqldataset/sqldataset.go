/*
Package sqldataset provides loading of datasets from SQL databases.

Unlike CSV streams, database-backed extracts are read eagerly into an
in-memory dataset: every stage of the model-selection workflow
(balancing, fold assignment, tree growing) needs repeated random access
to the samples, so there is nothing to gain from keeping the connection
open during the run.
*/
package sqldataset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

/*
Adapter abstracts the database backend behind the dataset loading: it
builds driver-appropriate queries and runs them on its connection.
*/
type Adapter interface {
	// QuerySamples runs a SELECT of the given columns over the given
	// table and returns the resulting rows.
	QuerySamples(ctx context.Context, table string, columns []string) (*sql.Rows, error)
	// Close releases the underlying connection.
	Close() error
}

/*
Read takes a context, an Adapter, a feature.Schema and a table name and
returns a dataset with one sample per table row, or an error. Every
feature of the schema must exist as a column on the table: continuous
features are read as doubles and discrete features as text. NULL
columns yield samples without a value for the feature, which later
schema validation will reject, matching the assumption that the data
was imputed upstream.
*/
func Read(ctx context.Context, a Adapter, schema *feature.Schema, table string) (dataset.Dataset, error) {
	features := schema.Features()
	columns := make([]string, len(features))
	for i, f := range features {
		columns[i] = f.Name()
	}
	rows, err := a.QuerySamples(ctx, table, columns)
	if err != nil {
		return nil, fmt.Errorf("querying samples from %s: %v", table, err)
	}
	defer rows.Close()
	var samples []dataset.Sample
	for rows.Next() {
		sample, err := scanSample(rows, features)
		if err != nil {
			return nil, fmt.Errorf("scanning sample %d from %s: %v", len(samples)+1, table, err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading samples from %s: %v", table, err)
	}
	return dataset.New(samples), nil
}

func scanSample(rows *sql.Rows, features []feature.Feature) (dataset.Sample, error) {
	dest := make([]interface{}, len(features))
	for i, f := range features {
		if _, ok := f.(*feature.ContinuousFeature); ok {
			dest[i] = &sql.NullFloat64{}
		} else {
			dest[i] = &sql.NullString{}
		}
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	featureValues := make(map[string]interface{})
	for i, f := range features {
		switch v := dest[i].(type) {
		case *sql.NullFloat64:
			if v.Valid {
				featureValues[f.Name()] = v.Float64
			}
		case *sql.NullString:
			if v.Valid {
				featureValues[f.Name()] = v.String
			}
		}
		if ok, err := f.Valid(featureValues[f.Name()]); !ok {
			return nil, fmt.Errorf("invalid value for feature %s: %v", f.Name(), err)
		}
	}
	return dataset.NewSample(featureValues), nil
}
