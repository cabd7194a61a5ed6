package feature

import (
	"context"
	"fmt"
)

/*
Schema represents the fixed set of features shared by all observations
of a dataset, keyed by feature name. It is built once when the data is
loaded and never mutated, so every later stage can rely on it instead
of probing columns dynamically.
*/
type Schema struct {
	features []Feature
	byName   map[string]Feature
}

/*
NewSchema takes a slice of features and returns a schema containing
them, or an error if two features share a name. The slice order is
preserved and determines column order when datasets are serialized.
*/
func NewSchema(features []Feature) (*Schema, error) {
	byName := make(map[string]Feature, len(features))
	for _, f := range features {
		if _, ok := byName[f.Name()]; ok {
			return nil, fmt.Errorf("schema declares feature %s more than once", f.Name())
		}
		byName[f.Name()] = f
	}
	return &Schema{features: features, byName: byName}, nil
}

/*
Features returns the features of the schema in declaration order.
*/
func (s *Schema) Features() []Feature {
	return s.features
}

/*
Feature returns the feature with the given name and whether the schema
declares it.
*/
func (s *Schema) Feature(name string) (Feature, bool) {
	f, ok := s.byName[name]
	return f, ok
}

/*
Predictors returns the features of the schema except the one with the
given label name, in declaration order.
*/
func (s *Schema) Predictors(labelName string) []Feature {
	predictors := make([]Feature, 0, len(s.features)-1)
	for _, f := range s.features {
		if f.Name() != labelName {
			predictors = append(predictors, f)
		}
	}
	return predictors
}

/*
Validate takes a context and a sample and returns an error if the
sample lacks a value for any feature of the schema or holds a value the
feature declares invalid. The data this schema describes is assumed
pre-imputed upstream, so a missing value is a violation rather than
something to repair here.
*/
func (s *Schema) Validate(ctx context.Context, sample Sample) error {
	for _, f := range s.features {
		v, err := sample.ValueFor(ctx, f)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("sample has no value for feature %s", f.Name())
		}
		if ok, err := f.Valid(v); !ok {
			return fmt.Errorf("sample value for feature %s: %v", f.Name(), err)
		}
	}
	return nil
}
