package forest

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
Tree is one classification tree of a forest.
*/
type Tree struct {
	Root *Node
}

/*
Node is a node of a tree. Leaves carry only a prediction; internal
nodes additionally carry the feature their children constrain and the
children themselves.
*/
type Node struct {
	// The constraint on the parent's split feature that selects this
	// node. It is nil on the root.
	Criterion feature.Criterion
	// The feature on which the children impose their constraints. It
	// is nil on leaves.
	SplitFeature feature.Feature
	// The nodes directly under this one.
	Children []*Node
	// The class distribution of the training samples that reached
	// this node.
	Prediction *Prediction
}

/*
Predict takes a context and a sample and descends the tree following
the branches whose criteria the sample satisfies, returning the class
distribution at the deepest node reached. When no child criterion
matches (a category the bootstrap resample never saw at this depth) the
current node's distribution is returned instead of failing: every node
keeps one precisely so prediction is total over schema-valid samples.
*/
func (t *Tree) Predict(ctx context.Context, s dataset.Sample) (*Prediction, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("nil tree cannot predict samples")
	}
	n := t.Root
	for n.SplitFeature != nil {
		var selected *Node
		for _, child := range n.Children {
			ok, err := child.Criterion.SatisfiedBy(ctx, s)
			if err != nil {
				return nil, err
			}
			if ok {
				selected = child
				break
			}
		}
		if selected == nil {
			break
		}
		n = selected
	}
	return n.Prediction, nil
}

// partition is one branch candidate of a split: the criterion
// selecting it and the training subset satisfying the criterion.
type partition struct {
	criterion feature.Criterion
	subset    dataset.Dataset
}

// split is a candidate division of a node's dataset by one feature,
// with the information gain it achieves on the label.
type split struct {
	feature feature.Feature
	gain    float64
	parts   []partition
}

func growTree(ctx context.Context, ds dataset.Dataset, cfg Config, rng *rand.Rand) (*Tree, error) {
	root, err := growNode(ctx, ds, cfg.Features, cfg, rng)
	if err != nil {
		return nil, err
	}
	return &Tree{Root: root}, nil
}

func growNode(ctx context.Context, ds dataset.Dataset, available []feature.Feature, cfg Config, rng *rand.Rand) (*Node, error) {
	prediction, err := NewPredictionFromDataset(ctx, ds, cfg.Label)
	if err != nil {
		return nil, err
	}
	n := &Node{Prediction: prediction}
	count, err := ds.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count < cfg.MinNode || len(available) == 0 {
		return n, nil
	}
	entropy, err := ds.Entropy(ctx, cfg.Label)
	if err != nil {
		return nil, err
	}
	if entropy == 0 {
		return n, nil
	}
	var selected *split
	for _, f := range sampleFeatures(available, cfg.MTry, rng) {
		s, err := bestSplit(ctx, ds, f, cfg.Label, entropy)
		if err != nil {
			return nil, err
		}
		if s != nil && (selected == nil || s.gain > selected.gain) {
			selected = s
		}
	}
	if selected == nil || selected.gain <= 0 {
		return n, nil
	}
	n.SplitFeature = selected.feature
	childAvailable := available
	if _, ok := selected.feature.(*feature.DiscreteFeature); ok {
		// A multiway split exhausts the category values, so the
		// feature is of no further use below this node. Continuous
		// features stay available for repeated thresholding.
		childAvailable = withoutFeature(available, selected.feature)
	}
	for _, part := range selected.parts {
		child, err := growNode(ctx, part.subset, childAvailable, cfg, rng)
		if err != nil {
			return nil, err
		}
		child.Criterion = part.criterion
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func bestSplit(ctx context.Context, ds dataset.Dataset, f feature.Feature, label feature.Feature, entropy float64) (*split, error) {
	switch f := f.(type) {
	case *feature.DiscreteFeature:
		return bestDiscreteSplit(ctx, ds, f, label, entropy)
	case *feature.ContinuousFeature:
		return bestContinuousSplit(ctx, ds, f, label, entropy)
	default:
		return nil, fmt.Errorf("unknown feature type %T for feature %v", f, f.Name())
	}
}

/*
bestDiscreteSplit partitions the dataset into one branch per category
value that actually occurs, computing the information gain on the label
the way a multiway entropy split does. It returns nil when fewer than
two branches would be populated.
*/
func bestDiscreteSplit(ctx context.Context, ds dataset.Dataset, f *feature.DiscreteFeature, label feature.Feature, entropy float64) (*split, error) {
	count, err := ds.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalCount := float64(count)
	gain := entropy
	var parts []partition
	for _, value := range f.AvailableValues() {
		criterion := feature.NewDiscreteCriterion(f, value)
		subset, err := ds.SubsetWith(ctx, criterion)
		if err != nil {
			return nil, err
		}
		subsetCount, err := subset.Count(ctx)
		if err != nil {
			return nil, err
		}
		if subsetCount == 0 {
			continue
		}
		subsetEntropy, err := subset.Entropy(ctx, label)
		if err != nil {
			return nil, err
		}
		gain -= subsetEntropy * float64(subsetCount) / totalCount
		parts = append(parts, partition{criterion, subset})
	}
	if len(parts) < 2 {
		return nil, nil
	}
	return &split{f, gain, parts}, nil
}

/*
bestContinuousSplit evaluates a binary threshold split at the midpoint
between every pair of consecutive observed values and returns the one
with the highest information gain on the label, or nil when fewer than
two distinct values occur.
*/
func bestContinuousSplit(ctx context.Context, ds dataset.Dataset, f *feature.ContinuousFeature, label feature.Feature, entropy float64) (*split, error) {
	values, err := ds.FeatureValues(ctx, f)
	if err != nil {
		return nil, err
	}
	var floatValues []float64
	for _, v := range values {
		if vf, ok := v.(float64); ok {
			floatValues = append(floatValues, vf)
		}
	}
	if len(floatValues) < 2 {
		return nil, nil
	}
	sort.Float64s(floatValues)
	count, err := ds.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalCount := float64(count)
	var result *split
	for i, vf := range floatValues[1:] {
		threshold := (floatValues[i] + vf) / 2.0
		parts := []partition{
			{criterion: feature.NewContinuousCriterion(f, math.Inf(-1), threshold)},
			{criterion: feature.NewContinuousCriterion(f, threshold, math.Inf(1))},
		}
		gain := entropy
		for pi := range parts {
			subset, err := ds.SubsetWith(ctx, parts[pi].criterion)
			if err != nil {
				return nil, err
			}
			subsetCount, err := subset.Count(ctx)
			if err != nil {
				return nil, err
			}
			subsetEntropy, err := subset.Entropy(ctx, label)
			if err != nil {
				return nil, err
			}
			gain -= subsetEntropy * float64(subsetCount) / totalCount
			parts[pi].subset = subset
		}
		if result == nil || gain > result.gain {
			result = &split{f, gain, parts}
		}
	}
	return result, nil
}

/*
sampleFeatures draws mtry features from the available slice without
replacement, using the given rng. The draw order is preserved so the
same seed always evaluates candidates in the same order.
*/
func sampleFeatures(available []feature.Feature, mtry int, rng *rand.Rand) []feature.Feature {
	if mtry >= len(available) {
		mtry = len(available)
	}
	selected := make([]feature.Feature, 0, mtry)
	for _, i := range rng.Perm(len(available))[:mtry] {
		selected = append(selected, available[i])
	}
	return selected
}

func withoutFeature(features []feature.Feature, f feature.Feature) []feature.Feature {
	result := make([]feature.Feature, 0, len(features)-1)
	for _, candidate := range features {
		if candidate.Name() != f.Name() {
			result = append(result, candidate)
		}
	}
	return result
}
