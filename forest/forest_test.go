package forest

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

func testFeatures() (*feature.ContinuousFeature, *feature.DiscreteFeature, *feature.DiscreteFeature) {
	age := feature.NewContinuousFeature("age")
	smoker := feature.NewDiscreteFeature("smoker", []string{"no", "yes"})
	outcome := feature.NewDiscreteFeature("outcome", []string{"no", "yes"})
	return age, smoker, outcome
}

/*
separableSamples returns samples whose outcome is fully determined by
age: "yes" above 50, "no" below.
*/
func separableSamples(rng *rand.Rand, n int) []dataset.Sample {
	samples := make([]dataset.Sample, n)
	for i := range samples {
		age := 20 + rng.Float64()*25
		outcome := "no"
		if i%2 == 0 {
			age = 55 + rng.Float64()*25
			outcome = "yes"
		}
		smoker := "no"
		if rng.Float64() < 0.5 {
			smoker = "yes"
		}
		samples[i] = dataset.NewSample(map[string]interface{}{
			"age": age, "smoker": smoker, "outcome": outcome,
		})
	}
	return samples
}

func TestGrowFitsSeparableData(t *testing.T) {
	ctx := context.Background()
	age, smoker, outcome := testFeatures()
	rng := rand.New(rand.NewSource(1))
	ds := dataset.New(separableSamples(rng, 100))

	f, err := Grow(ctx, ds, Config{
		Label:    outcome,
		Features: []feature.Feature{age, smoker},
		Trees:    10,
		MTry:     1,
		MinNode:  1,
		Seed:     3,
	})
	require.NoError(t, err)
	require.Len(t, f.Trees, 10)

	young := dataset.NewSample(map[string]interface{}{"age": 25.0, "smoker": "no"})
	old := dataset.NewSample(map[string]interface{}{"age": 70.0, "smoker": "yes"})

	predicted, prob, err := f.Predict(ctx, young)
	require.NoError(t, err)
	assert.Equal(t, "no", predicted)
	assert.Greater(t, prob, 0.5)

	predicted, prob, err = f.Predict(ctx, old)
	require.NoError(t, err)
	assert.Equal(t, "yes", predicted)
	assert.Greater(t, prob, 0.5)
}

func TestGrowIsDeterministicUnderSeed(t *testing.T) {
	ctx := context.Background()
	age, smoker, outcome := testFeatures()
	rng := rand.New(rand.NewSource(2))
	ds := dataset.New(separableSamples(rng, 60))
	cfg := Config{
		Label:    outcome,
		Features: []feature.Feature{age, smoker},
		Trees:    5,
		MTry:     2,
		MinNode:  2,
		Seed:     11,
	}

	first, err := Grow(ctx, ds, cfg)
	require.NoError(t, err)
	second, err := Grow(ctx, ds, cfg)
	require.NoError(t, err)

	probes := separableSamples(rand.New(rand.NewSource(3)), 20)
	for _, s := range probes {
		fp, err := first.PredictProba(ctx, s)
		require.NoError(t, err)
		sp, err := second.PredictProba(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, fp, sp)
	}
}

func TestPredictProbaSumsToOne(t *testing.T) {
	ctx := context.Background()
	age, smoker, outcome := testFeatures()
	rng := rand.New(rand.NewSource(4))
	ds := dataset.New(separableSamples(rng, 50))

	f, err := Grow(ctx, ds, Config{
		Label:    outcome,
		Features: []feature.Feature{age, smoker},
		Trees:    7,
		MTry:     1,
		MinNode:  3,
		Seed:     5,
	})
	require.NoError(t, err)

	probe := dataset.NewSample(map[string]interface{}{"age": 48.0, "smoker": "no"})
	probs, err := f.PredictProba(ctx, probe)
	require.NoError(t, err)
	var sum float64
	for _, class := range outcome.AvailableValues() {
		assert.GreaterOrEqual(t, probs[class], 0.0)
		sum += probs[class]
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestGrowValidatesConfig(t *testing.T) {
	ctx := context.Background()
	age, smoker, outcome := testFeatures()
	rng := rand.New(rand.NewSource(6))
	ds := dataset.New(separableSamples(rng, 10))

	base := Config{
		Label:    outcome,
		Features: []feature.Feature{age, smoker},
		Trees:    3,
		MTry:     1,
		MinNode:  1,
		Seed:     1,
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no label", func(c *Config) { c.Label = nil }},
		{"no features", func(c *Config) { c.Features = nil }},
		{"label among predictors", func(c *Config) { c.Features = append(c.Features, outcome) }},
		{"zero trees", func(c *Config) { c.Trees = 0 }},
		{"mtry too low", func(c *Config) { c.MTry = 0 }},
		{"mtry above feature count", func(c *Config) { c.MTry = 3 }},
		{"zero min node", func(c *Config) { c.MinNode = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.Features = append([]feature.Feature{}, base.Features...)
			tt.mutate(&cfg)
			_, err := Grow(ctx, ds, cfg)
			assert.Error(t, err)
		})
	}
}

func TestGrowRejectsEmptyDataset(t *testing.T) {
	ctx := context.Background()
	age, smoker, outcome := testFeatures()

	_, err := Grow(ctx, dataset.New(nil), Config{
		Label:    outcome,
		Features: []feature.Feature{age, smoker},
		Trees:    1,
		MTry:     1,
		MinNode:  1,
	})
	assert.Error(t, err)
}

func TestGrowHonorsCancellation(t *testing.T) {
	age, smoker, outcome := testFeatures()
	rng := rand.New(rand.NewSource(7))
	ds := dataset.New(separableSamples(rng, 30))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Grow(ctx, ds, Config{
		Label:    outcome,
		Features: []feature.Feature{age, smoker},
		Trees:    2,
		MTry:     1,
		MinNode:  1,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMinNodeStopsSplitting(t *testing.T) {
	ctx := context.Background()
	age, smoker, outcome := testFeatures()
	rng := rand.New(rand.NewSource(8))
	ds := dataset.New(separableSamples(rng, 40))

	f, err := Grow(ctx, ds, Config{
		Label:    outcome,
		Features: []feature.Feature{age, smoker},
		Trees:    1,
		MTry:     2,
		MinNode:  1000,
		Seed:     1,
	})
	require.NoError(t, err)
	require.Len(t, f.Trees, 1)
	assert.Empty(t, f.Trees[0].Root.Children, "a node below the minimum size must stay a leaf")
}
