package forest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

/*
Prediction represents a class-probability distribution predicted for a
sample, together with the number of training samples that backed it.
*/
type Prediction struct {
	probabilities map[string]float64
	weight        int
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrCannotPredictFromEmptyDataset is the error returned when trying to
build a prediction based on an empty dataset.
*/
const ErrCannotPredictFromEmptyDataset = PredictionError("cannot make prediction for empty dataset")

func (pe PredictionError) Error() string {
	return string(pe)
}

/*
NewPrediction takes a map[string]float64 with the probabilities of each
class in the prediction and an integer with the number of samples from
which those probabilities were computed and returns a prediction
representing those values.
*/
func NewPrediction(probs map[string]float64, weight int) *Prediction {
	return &Prediction{probabilities: probs, weight: weight}
}

/*
NewPredictionFromDataset takes a context, a dataset and a label feature
and returns a prediction for the label based on the class frequencies
in the dataset, or an error if the dataset is empty or cannot be
queried.
*/
func NewPredictionFromDataset(ctx context.Context, ds dataset.Dataset, label feature.Feature) (*Prediction, error) {
	weight, err := ds.Count(ctx)
	if err != nil {
		return nil, err
	}
	if weight == 0 {
		return nil, ErrCannotPredictFromEmptyDataset
	}
	fvc, err := ds.CountFeatureValues(ctx, label)
	if err != nil {
		return nil, err
	}
	probs := make(map[string]float64)
	for v, c := range fvc {
		probs[v] = float64(c) / float64(weight)
	}
	return &Prediction{probs, weight}, nil
}

/*
ProbabilityOf takes a class value string and returns the float64
probability of that class according to the prediction.
*/
func (p *Prediction) ProbabilityOf(value string) float64 {
	return p.probabilities[value]
}

/*
Probabilities returns a map of class value to float64 containing the
probabilities of each predicted class.
*/
func (p *Prediction) Probabilities() map[string]float64 {
	return p.probabilities
}

/*
Weight returns the weight of the prediction: an int equal to the number
of samples in the dataset from which the prediction was made.
*/
func (p *Prediction) Weight() int {
	return p.weight
}

/*
PredictedValue returns a string with the most probable class and a
float64 with its probability. Classes tied on probability resolve to
the lexicographically first one, so the result does not depend on map
iteration order.
*/
func (p *Prediction) PredictedValue() (value string, prob float64) {
	classes := make([]string, 0, len(p.probabilities))
	for c := range p.probabilities {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	for _, c := range classes {
		if p.probabilities[c] > prob {
			value = c
			prob = p.probabilities[c]
		}
	}
	return
}

func (p *Prediction) String() string {
	return strings.Replace(fmt.Sprintf("%v", p.probabilities), "map", "", 1)
}
