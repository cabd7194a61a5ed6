package analysis

import (
	"context"
	"fmt"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/forest"
)

/*
FitFinal takes a context, the full training partition, its schema and
label, the winning grid point and the balancing parameters, and fits
the final model: the training partition is balanced once and a forest
with the point's hyperparameters is grown on it. The seed plays the
same role as in the search, so refitting yields the same forest.
*/
func FitFinal(ctx context.Context, train dataset.Dataset, schema *feature.Schema, label *feature.DiscreteFeature, point GridPoint, targetRatio float64, neighbors int, seed int64) (*forest.Forest, error) {
	balanced, err := Balance(ctx, train, schema, label, targetRatio, neighbors, seed)
	if err != nil {
		return nil, err
	}
	return forest.Grow(ctx, balanced, forest.Config{
		Label:    label,
		Features: schema.Predictors(label.Name()),
		Trees:    point.Trees,
		MTry:     point.MTry,
		MinNode:  point.MinNode,
		Seed:     seed,
	})
}

/*
Evaluate takes a context, a fitted model, the held-back test partition,
the positive class and a decision threshold, and returns the model's
metric record on the test partition, tagged with TestFold. Every test
sample must carry valid values for the model's label and predictors;
a missing or invalid value fails with ErrSchemaMismatch. The test
partition must never have passed through the balancer.
*/
func Evaluate(ctx context.Context, model *forest.Forest, test dataset.Dataset, positive string, threshold float64) (*MetricRecord, error) {
	samples, err := test.Samples(ctx)
	if err != nil {
		return nil, err
	}
	for i, s := range samples {
		if err := validateAgainstModel(ctx, model, s); err != nil {
			return nil, fmt.Errorf("test sample %d: %v: %w", i, err, ErrSchemaMismatch)
		}
	}
	cm, err := confusionOn(ctx, model, samples, positive, threshold)
	if err != nil {
		return nil, err
	}
	return cm.Record(nil, TestFold), nil
}

func validateAgainstModel(ctx context.Context, model *forest.Forest, s dataset.Sample) error {
	for _, f := range append([]feature.Feature{model.Label}, model.Features...) {
		v, err := s.ValueFor(ctx, f)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("no value for feature %s", f.Name())
		}
		if ok, err := f.Valid(v); !ok {
			return err
		}
	}
	return nil
}

/*
confusionOn classifies every sample with the model and accumulates the
one-vs-rest confusion matrix against the known labels, with the given
class as positive. Binary decisions compare the positive-class
probability against the threshold, ties going to positive; with more
than two classes the prediction is the probability argmax and the
threshold is ignored.
*/
func confusionOn(ctx context.Context, model *forest.Forest, samples []dataset.Sample, positive string, threshold float64) (ConfusionMatrix, error) {
	var cm ConfusionMatrix
	for _, s := range samples {
		actual, err := s.ValueFor(ctx, model.Label)
		if err != nil {
			return cm, err
		}
		predicted, err := classify(ctx, model, s, positive, threshold)
		if err != nil {
			return cm, err
		}
		switch {
		case actual == positive && predicted:
			cm.TP++
		case actual == positive && !predicted:
			cm.FN++
		case actual != positive && predicted:
			cm.FP++
		default:
			cm.TN++
		}
	}
	return cm, nil
}

func classify(ctx context.Context, model *forest.Forest, s dataset.Sample, positive string, threshold float64) (bool, error) {
	if len(model.Label.AvailableValues()) == 2 {
		probs, err := model.PredictProba(ctx, s)
		if err != nil {
			return false, err
		}
		return probs[positive] >= threshold, nil
	}
	value, _, err := model.Predict(ctx, s)
	if err != nil {
		return false, err
	}
	return value == positive, nil
}
