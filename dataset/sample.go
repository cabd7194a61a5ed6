package dataset

import (
	"context"
	"fmt"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

/*
Sample represents a single observation: a mapping from feature to
value. Samples are immutable once built.

Its ValueFor method returns the value of the sample corresponding to
the feature passed as parameter.
*/
type Sample interface {
	ValueFor(context.Context, feature.Feature) (interface{}, error)
}

type sample struct {
	featureValues map[string]interface{}
}

/*
NewSample takes a map of feature names to values and returns a sample
holding them. The map is owned by the sample afterwards and must not be
mutated by the caller.
*/
func NewSample(featureValues map[string]interface{}) Sample {
	return &sample{featureValues}
}

func (s *sample) ValueFor(ctx context.Context, f feature.Feature) (interface{}, error) {
	return s.featureValues[f.Name()], nil
}

func (s *sample) String() string {
	return fmt.Sprintf("[%v]", s.featureValues)
}
