package dataset

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

func outcomeSamples(values ...string) []Sample {
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i] = NewSample(map[string]interface{}{
			"age":     float64(20 + i),
			"outcome": v,
		})
	}
	return samples
}

func TestEntropy(t *testing.T) {
	ctx := context.Background()
	outcome := feature.NewDiscreteFeature("outcome", []string{"no", "yes"})

	tests := []struct {
		name    string
		samples []Sample
		want    float64
	}{
		{"pure dataset", outcomeSamples("no", "no", "no", "no"), 0},
		{"even dataset", outcomeSamples("no", "no", "yes", "yes"), math.Log(2)},
		{"skewed dataset", outcomeSamples("no", "no", "no", "yes"), -(0.75*math.Log(0.75) + 0.25*math.Log(0.25))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, ds := range []Dataset{NewMemoryIntensive(tt.samples), NewCPUIntensive(tt.samples)} {
				entropy, err := ds.Entropy(ctx, outcome)
				require.NoError(t, err)
				assert.InDelta(t, tt.want, entropy, 1e-12)
			}
		})
	}
}

func TestEntropyIsBitIdenticalAcrossRuns(t *testing.T) {
	ctx := context.Background()
	outcome := feature.NewDiscreteFeature("outcome", []string{"no", "yes", "maybe"})
	samples := []Sample{
		NewSample(map[string]interface{}{"outcome": "no"}),
		NewSample(map[string]interface{}{"outcome": "yes"}),
		NewSample(map[string]interface{}{"outcome": "maybe"}),
		NewSample(map[string]interface{}{"outcome": "yes"}),
		NewSample(map[string]interface{}{"outcome": "no"}),
	}

	first, err := NewMemoryIntensive(samples).Entropy(ctx, outcome)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := NewMemoryIntensive(samples).Entropy(ctx, outcome)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestSubsetWith(t *testing.T) {
	ctx := context.Background()
	age := feature.NewContinuousFeature("age")
	outcome := feature.NewDiscreteFeature("outcome", []string{"no", "yes"})
	samples := outcomeSamples("no", "no", "yes", "yes", "yes")

	for _, ds := range []Dataset{NewMemoryIntensive(samples), NewCPUIntensive(samples)} {
		subset, err := ds.SubsetWith(ctx, feature.NewContinuousCriterion(age, 22, math.Inf(1)))
		require.NoError(t, err)
		count, err := subset.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		counts, err := subset.CountFeatureValues(ctx, outcome)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"yes": 3}, counts)
	}
}

func TestSubsetWithChainsCriteria(t *testing.T) {
	ctx := context.Background()
	age := feature.NewContinuousFeature("age")
	samples := outcomeSamples("no", "no", "yes", "yes", "yes")

	for _, ds := range []Dataset{NewMemoryIntensive(samples), NewCPUIntensive(samples)} {
		subset, err := ds.SubsetWith(ctx, feature.NewContinuousCriterion(age, 21, math.Inf(1)))
		require.NoError(t, err)
		subset, err = subset.SubsetWith(ctx, feature.NewContinuousCriterion(age, math.Inf(-1), 24))
		require.NoError(t, err)

		count, err := subset.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	}
}

func TestFeatureValues(t *testing.T) {
	ctx := context.Background()
	outcome := feature.NewDiscreteFeature("outcome", []string{"no", "yes"})
	samples := outcomeSamples("no", "yes", "no", "yes", "no")

	for _, ds := range []Dataset{NewMemoryIntensive(samples), NewCPUIntensive(samples)} {
		values, err := ds.FeatureValues(ctx, outcome)
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"no", "yes"}, values)
	}
}

func TestNewPicksImplementationBySize(t *testing.T) {
	small := make([]Sample, 10)
	large := make([]Sample, 1500)
	for i := range small {
		small[i] = NewSample(map[string]interface{}{"outcome": "no"})
	}
	for i := range large {
		large[i] = NewSample(map[string]interface{}{"outcome": "no"})
	}

	assert.IsType(t, &memoryIntensiveSubsettingDataset{}, New(small))
	assert.IsType(t, &cpuIntensiveSubsettingDataset{}, New(large))
}

func TestSampleValueFor(t *testing.T) {
	ctx := context.Background()
	age := feature.NewContinuousFeature("age")
	bmi := feature.NewContinuousFeature("bmi")
	s := NewSample(map[string]interface{}{"age": 44.0})

	v, err := s.ValueFor(ctx, age)
	require.NoError(t, err)
	assert.Equal(t, 44.0, v)

	v, err = s.ValueFor(ctx, bmi)
	require.NoError(t, err)
	assert.Nil(t, v)
}
