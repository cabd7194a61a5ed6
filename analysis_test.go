package analysis

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

/*
testSchema returns the schema shared by the workflow tests: two numeric
predictors, one categorical predictor and a binary outcome label.
*/
func testSchema(t *testing.T) (*feature.Schema, *feature.DiscreteFeature) {
	t.Helper()
	age := feature.NewContinuousFeature("age")
	bmi := feature.NewContinuousFeature("bmi")
	smoker := feature.NewDiscreteFeature("smoker", []string{"no", "yes"})
	outcome := feature.NewDiscreteFeature("outcome", []string{"no", "yes"})
	schema, err := feature.NewSchema([]feature.Feature{age, bmi, smoker, outcome})
	require.NoError(t, err)
	return schema, outcome
}

/*
classSamples generates n samples of the given outcome class, with
numeric values drawn around the class-specific bases so the classes are
separable but not degenerate.
*/
func classSamples(rng *rand.Rand, n int, outcome string, ageBase, bmiBase float64) []dataset.Sample {
	samples := make([]dataset.Sample, n)
	for i := range samples {
		smoker := "no"
		if rng.Float64() < 0.3 {
			smoker = "yes"
		}
		samples[i] = dataset.NewSample(map[string]interface{}{
			"age":     ageBase + rng.Float64()*10,
			"bmi":     bmiBase + rng.Float64()*5,
			"smoker":  smoker,
			"outcome": outcome,
		})
	}
	return samples
}

/*
surveyDataset builds a dataset with the given number of "no" and "yes"
outcome samples, deterministically from the given seed.
*/
func surveyDataset(seed int64, negatives, positives int) dataset.Dataset {
	rng := rand.New(rand.NewSource(seed))
	samples := classSamples(rng, negatives, "no", 30, 22)
	samples = append(samples, classSamples(rng, positives, "yes", 55, 31)...)
	return dataset.New(samples)
}

func testCtx() context.Context {
	return context.Background()
}

func countByOutcome(t *testing.T, ds dataset.Dataset, label *feature.DiscreteFeature) map[string]int {
	t.Helper()
	counts, err := ds.CountFeatureValues(testCtx(), label)
	require.NoError(t, err)
	return counts
}
