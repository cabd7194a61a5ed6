/*
Package forest grows Random Forest classifiers: ensembles of entropy
split trees fitted on bootstrap resamples of a training dataset, with a
random subset of features considered at every split.
*/
package forest

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

/*
Config holds the hyperparameters and wiring for growing a forest.
*/
type Config struct {
	// Label is the discrete feature the forest predicts.
	Label *feature.DiscreteFeature
	// Features are the predictors available to splits. The label must
	// not be among them.
	Features []feature.Feature
	// Trees is the number of trees in the ensemble.
	Trees int
	// MTry is the number of features sampled as candidates at every
	// split.
	MTry int
	// MinNode is the minimum number of samples a node must hold to be
	// split further.
	MinNode int
	// Seed fixes the bootstrap resampling and feature sampling, so
	// growing twice with the same dataset and config yields the same
	// forest.
	Seed int64
}

/*
Forest is a trained Random Forest classifier. It is immutable after
growing and safe for concurrent prediction.
*/
type Forest struct {
	Label    *feature.DiscreteFeature
	Features []feature.Feature
	Trees    []*Tree
}

func (cfg *Config) validate() error {
	if cfg.Label == nil {
		return fmt.Errorf("forest config has no label feature")
	}
	if len(cfg.Features) == 0 {
		return fmt.Errorf("forest config has no predictor features")
	}
	for _, f := range cfg.Features {
		if f.Name() == cfg.Label.Name() {
			return fmt.Errorf("label feature %s cannot be a predictor", f.Name())
		}
	}
	if cfg.Trees < 1 {
		return fmt.Errorf("forest config needs at least 1 tree, got %d", cfg.Trees)
	}
	if cfg.MTry < 1 || cfg.MTry > len(cfg.Features) {
		return fmt.Errorf("mtry must be between 1 and the number of predictors (%d), got %d", len(cfg.Features), cfg.MTry)
	}
	if cfg.MinNode < 1 {
		return fmt.Errorf("minimum node size must be at least 1, got %d", cfg.MinNode)
	}
	return nil
}

/*
Grow takes a context, a training dataset and a Config and returns a
forest fitted on the dataset, or an error. Each tree is grown on its
own bootstrap resample of the dataset with its own rng derived from the
config seed and the tree index, so the result does not depend on
anything but the inputs.
*/
func Grow(ctx context.Context, ds dataset.Dataset, cfg Config) (*Forest, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	samples, err := ds.Samples(ctx)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot grow forest on empty dataset")
	}
	trees := make([]*Tree, cfg.Trees)
	for i := range trees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
		bootstrap := make([]dataset.Sample, len(samples))
		for j := range bootstrap {
			bootstrap[j] = samples[rng.Intn(len(samples))]
		}
		t, err := growTree(ctx, dataset.NewMemoryIntensive(bootstrap), cfg, rng)
		if err != nil {
			return nil, fmt.Errorf("growing tree %d: %w", i, err)
		}
		trees[i] = t
	}
	return &Forest{Label: cfg.Label, Features: cfg.Features, Trees: trees}, nil
}

/*
PredictProba takes a context and a sample and returns the forest's
class-probability distribution for it: the average of the per-tree leaf
distributions (a soft vote), with one entry per available label value.
*/
func (f *Forest) PredictProba(ctx context.Context, s dataset.Sample) (map[string]float64, error) {
	classes := f.Label.AvailableValues()
	probs := make(map[string]float64, len(classes))
	for _, t := range f.Trees {
		p, err := t.Predict(ctx, s)
		if err != nil {
			return nil, err
		}
		for _, class := range classes {
			probs[class] += p.ProbabilityOf(class)
		}
	}
	for _, class := range classes {
		probs[class] /= float64(len(f.Trees))
	}
	return probs, nil
}

/*
Predict takes a context and a sample and returns the class with the
highest forest probability and that probability. Ties resolve to the
first class in the label's declaration order.
*/
func (f *Forest) Predict(ctx context.Context, s dataset.Sample) (string, float64, error) {
	probs, err := f.PredictProba(ctx, s)
	if err != nil {
		return "", 0, err
	}
	var value string
	var prob float64
	for _, class := range f.Label.AvailableValues() {
		if probs[class] > prob {
			value = class
			prob = probs[class]
		}
	}
	return value, prob, nil
}
