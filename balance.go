package analysis

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

/*
Balance takes a context, a training dataset, its schema and label, a
target minority:majority ratio, a neighbor count and a seed, and
returns a new dataset in which every minority class has been
oversampled with synthetic observations until its count reaches
floor(targetRatio × majorityCount). The majority class and all
original observations are left untouched, so balancing the balancer's
own output again is a no-op up to rounding.

Synthesis is SMOTE-style: each new observation is built from a
minority observation and one of its k nearest neighbors within the
same class, interpolating numeric features uniformly between the pair
and assigning each categorical feature the majority vote among the
base observation and its neighbors. Nearness uses a Gower-style
distance over the predictor features: range-normalized absolute
difference for numeric features, 0/1 mismatch for categorical ones.

Balance must only ever see the training partition. It fails with
ErrInsufficientNeighbors when a minority class that needs synthesis
has fewer than neighbors+1 members.
*/
func Balance(ctx context.Context, train dataset.Dataset, schema *feature.Schema, label *feature.DiscreteFeature, targetRatio float64, neighbors int, seed int64) (dataset.Dataset, error) {
	if targetRatio <= 0 {
		return nil, fmt.Errorf("target ratio must be positive, got %v", targetRatio)
	}
	if neighbors < 1 {
		return nil, fmt.Errorf("neighbor count must be at least 1, got %d", neighbors)
	}
	samples, err := train.Samples(ctx)
	if err != nil {
		return nil, err
	}
	for i, s := range samples {
		if err := schema.Validate(ctx, s); err != nil {
			return nil, fmt.Errorf("sample %d: %v", i, err)
		}
	}
	strata, err := groupByLabel(ctx, samples, label)
	if err != nil {
		return nil, err
	}
	majorityValue, majorityCount := majorityClass(label, strata)
	predictors := schema.Predictors(label.Name())
	ranges, err := numericRanges(ctx, samples, predictors)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	balanced := make([]dataset.Sample, len(samples))
	copy(balanced, samples)
	for _, value := range label.AvailableValues() {
		if value == majorityValue {
			continue
		}
		stratum := strata[value]
		target := int(targetRatio * float64(majorityCount))
		needed := target - len(stratum)
		if needed <= 0 {
			continue
		}
		if len(stratum) < neighbors+1 {
			return nil, fmt.Errorf("class %s has %d members, neighbor search needs at least %d: %w",
				value, len(stratum), neighbors+1, ErrInsufficientNeighbors)
		}
		neighborhoods, err := nearestNeighbors(ctx, stratum, predictors, ranges, neighbors)
		if err != nil {
			return nil, err
		}
		for i := 0; i < needed; i++ {
			base := i % len(stratum)
			synth, err := synthesizeSample(ctx, stratum, base, neighborhoods[base], predictors, label, value, rng)
			if err != nil {
				return nil, err
			}
			balanced = append(balanced, synth)
		}
	}
	return dataset.New(balanced), nil
}

/*
majorityClass returns the label value with the most observations and
its count. Ties resolve to the value declared first on the label.
*/
func majorityClass(label *feature.DiscreteFeature, strata map[string][]dataset.Sample) (string, int) {
	var majority string
	var count int
	for _, value := range label.AvailableValues() {
		if len(strata[value]) > count {
			majority = value
			count = len(strata[value])
		}
	}
	return majority, count
}

/*
numericRanges computes the observed min and max of every continuous
predictor, used to normalize distances between numeric values.
*/
func numericRanges(ctx context.Context, samples []dataset.Sample, predictors []feature.Feature) (map[string][2]float64, error) {
	ranges := make(map[string][2]float64)
	for _, f := range predictors {
		cf, ok := f.(*feature.ContinuousFeature)
		if !ok {
			continue
		}
		low, high := math.Inf(1), math.Inf(-1)
		for _, s := range samples {
			v, err := s.ValueFor(ctx, cf)
			if err != nil {
				return nil, err
			}
			fv, _ := v.(float64)
			low = math.Min(low, fv)
			high = math.Max(high, fv)
		}
		ranges[f.Name()] = [2]float64{low, high}
	}
	return ranges, nil
}

/*
nearestNeighbors returns, for every sample of the stratum, the indices
of its k nearest same-class neighbors by Gower distance. Ties resolve
to the lower index so the neighborhoods do not depend on sort
internals.
*/
func nearestNeighbors(ctx context.Context, stratum []dataset.Sample, predictors []feature.Feature, ranges map[string][2]float64, k int) ([][]int, error) {
	neighborhoods := make([][]int, len(stratum))
	for i := range stratum {
		type candidate struct {
			index    int
			distance float64
		}
		candidates := make([]candidate, 0, len(stratum)-1)
		for j := range stratum {
			if j == i {
				continue
			}
			d, err := gowerDistance(ctx, stratum[i], stratum[j], predictors, ranges)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, candidate{j, d})
		}
		sort.Slice(candidates, func(a, b int) bool {
			if candidates[a].distance != candidates[b].distance {
				return candidates[a].distance < candidates[b].distance
			}
			return candidates[a].index < candidates[b].index
		})
		neighborhood := make([]int, k)
		for n := 0; n < k; n++ {
			neighborhood[n] = candidates[n].index
		}
		neighborhoods[i] = neighborhood
	}
	return neighborhoods, nil
}

/*
gowerDistance returns the mean per-feature dissimilarity of two
samples: range-normalized absolute difference for continuous features,
0/1 mismatch for discrete ones.
*/
func gowerDistance(ctx context.Context, a, b dataset.Sample, predictors []feature.Feature, ranges map[string][2]float64) (float64, error) {
	var sum float64
	for _, f := range predictors {
		av, err := a.ValueFor(ctx, f)
		if err != nil {
			return 0, err
		}
		bv, err := b.ValueFor(ctx, f)
		if err != nil {
			return 0, err
		}
		if _, ok := f.(*feature.ContinuousFeature); ok {
			r := ranges[f.Name()]
			width := r[1] - r[0]
			if width > 0 {
				af, _ := av.(float64)
				bf, _ := bv.(float64)
				sum += math.Abs(af-bf) / width
			}
		} else if av != bv {
			sum++
		}
	}
	return sum / float64(len(predictors)), nil
}

/*
synthesizeSample builds one synthetic minority observation from the
base sample and a random member of its neighborhood: numeric features
interpolate uniformly between base and neighbor, categorical features
take the majority vote among base and all its neighbors (ties resolve
to the value declared first on the feature).
*/
func synthesizeSample(ctx context.Context, stratum []dataset.Sample, base int, neighborhood []int, predictors []feature.Feature, label *feature.DiscreteFeature, classValue string, rng *rand.Rand) (dataset.Sample, error) {
	neighbor := stratum[neighborhood[rng.Intn(len(neighborhood))]]
	featureValues := make(map[string]interface{}, len(predictors)+1)
	for _, f := range predictors {
		switch f := f.(type) {
		case *feature.ContinuousFeature:
			bv, err := stratum[base].ValueFor(ctx, f)
			if err != nil {
				return nil, err
			}
			nv, err := neighbor.ValueFor(ctx, f)
			if err != nil {
				return nil, err
			}
			bf, _ := bv.(float64)
			nf, _ := nv.(float64)
			featureValues[f.Name()] = bf + rng.Float64()*(nf-bf)
		case *feature.DiscreteFeature:
			counts := make(map[string]int)
			members := append([]int{base}, neighborhood...)
			for _, m := range members {
				v, err := stratum[m].ValueFor(ctx, f)
				if err != nil {
					return nil, err
				}
				vs, _ := v.(string)
				counts[vs]++
			}
			var vote string
			var voteCount int
			for _, value := range f.AvailableValues() {
				if counts[value] > voteCount {
					vote = value
					voteCount = counts[value]
				}
			}
			featureValues[f.Name()] = vote
		default:
			return nil, fmt.Errorf("unknown feature type %T for feature %v", f, f.Name())
		}
	}
	featureValues[label.Name()] = classValue
	return dataset.NewSample(featureValues), nil
}
