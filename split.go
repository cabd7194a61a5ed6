package analysis

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

/*
Split takes a context, a dataset, its label feature, a train fraction
and a seed, and partitions the dataset into disjoint train and test
datasets by stratified sampling: each label stratum is shuffled with
the seeded rng and the train fraction of it (rounded to nearest) goes
to the train partition, the remainder to test. Label proportions in
both partitions therefore match the full dataset up to one observation
per stratum.

It fails with ErrInvalidFraction when the fraction is not in (0, 1)
and with ErrEmptyStratum when a declared label value has no
observations.
*/
func Split(ctx context.Context, ds dataset.Dataset, label *feature.DiscreteFeature, trainFraction float64, seed int64) (train, test dataset.Dataset, err error) {
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, nil, fmt.Errorf("train fraction %v: %w", trainFraction, ErrInvalidFraction)
	}
	samples, err := ds.Samples(ctx)
	if err != nil {
		return nil, nil, err
	}
	strata, err := groupByLabel(ctx, samples, label)
	if err != nil {
		return nil, nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	var trainSamples, testSamples []dataset.Sample
	for _, value := range label.AvailableValues() {
		stratum := strata[value]
		if len(stratum) == 0 {
			return nil, nil, fmt.Errorf("label value %s: %w", value, ErrEmptyStratum)
		}
		shuffled := shuffledSamples(stratum, rng)
		n := int(math.Round(trainFraction * float64(len(shuffled))))
		trainSamples = append(trainSamples, shuffled[:n]...)
		testSamples = append(testSamples, shuffled[n:]...)
	}
	return dataset.New(trainSamples), dataset.New(testSamples), nil
}

/*
groupByLabel partitions samples into strata keyed by their label
value. Every sample must carry a valid value for the label.
*/
func groupByLabel(ctx context.Context, samples []dataset.Sample, label *feature.DiscreteFeature) (map[string][]dataset.Sample, error) {
	strata := make(map[string][]dataset.Sample)
	for i, s := range samples {
		v, err := s.ValueFor(ctx, label)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, fmt.Errorf("sample %d has no value for label %s", i, label.Name())
		}
		vs, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("sample %d has non-categorical value %v for label %s", i, v, label.Name())
		}
		if ok, err := label.Valid(vs); !ok {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
		strata[vs] = append(strata[vs], s)
	}
	return strata, nil
}

func shuffledSamples(samples []dataset.Sample, rng *rand.Rand) []dataset.Sample {
	shuffled := make([]dataset.Sample, len(samples))
	copy(shuffled, samples)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
