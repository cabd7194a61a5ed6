/*
Package json provides serialization of trained forests as JSON
documents, so a forest selected by the search can be stored and later
reloaded for evaluation, ROC analysis or prediction.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/forest"
)

type jsonForest struct {
	Label    string      `json:"label"`
	Features []string    `json:"features"`
	Trees    []*jsonNode `json:"trees"`
}

type jsonNode struct {
	Criterion     *jsonCriterion     `json:"criterion,omitempty"`
	SplitFeature  string             `json:"splitFeature,omitempty"`
	Probabilities map[string]float64 `json:"probabilities"`
	Weight        int                `json:"weight"`
	Children      []*jsonNode        `json:"children,omitempty"`
}

// jsonCriterion carries either a discrete value or a continuous
// interval. Infinite interval ends are encoded by omission.
type jsonCriterion struct {
	Feature string   `json:"feature"`
	Value   *string  `json:"value,omitempty"`
	A       *float64 `json:"a,omitempty"`
	B       *float64 `json:"b,omitempty"`
}

/*
WriteForest takes a context, a trained forest and an io.Writer and
serializes the forest as JSON onto the writer. An error is returned if
a node carries a criterion that cannot be encoded or the writer fails.
*/
func WriteForest(ctx context.Context, f *forest.Forest, w io.Writer) error {
	jf := &jsonForest{Label: f.Label.Name()}
	for _, pf := range f.Features {
		jf.Features = append(jf.Features, pf.Name())
	}
	for i, t := range f.Trees {
		if err := ctx.Err(); err != nil {
			return err
		}
		root, err := encodeNode(t.Root)
		if err != nil {
			return fmt.Errorf("encoding tree %d: %v", i, err)
		}
		jf.Trees = append(jf.Trees, root)
	}
	enc := json.NewEncoder(w)
	return enc.Encode(jf)
}

/*
ReadForest takes a context, a feature.Schema and an io.Reader with a
JSON document written by WriteForest and returns the forest rebuilt
against the schema, or an error. The schema must declare the label and
every predictor the document references; this is what ties a stored
model to the metadata it was trained under.
*/
func ReadForest(ctx context.Context, schema *feature.Schema, r io.Reader) (*forest.Forest, error) {
	jf := &jsonForest{}
	if err := json.NewDecoder(r).Decode(jf); err != nil {
		return nil, fmt.Errorf("parsing forest JSON: %v", err)
	}
	labelFeature, ok := schema.Feature(jf.Label)
	if !ok {
		return nil, fmt.Errorf("forest predicts unknown feature %s", jf.Label)
	}
	label, ok := labelFeature.(*feature.DiscreteFeature)
	if !ok {
		return nil, fmt.Errorf("forest label feature %s is not discrete", jf.Label)
	}
	features := make([]feature.Feature, 0, len(jf.Features))
	for _, name := range jf.Features {
		f, ok := schema.Feature(name)
		if !ok {
			return nil, fmt.Errorf("forest references unknown feature %s", name)
		}
		features = append(features, f)
	}
	result := &forest.Forest{Label: label, Features: features}
	for i, root := range jf.Trees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node, err := decodeNode(root, schema)
		if err != nil {
			return nil, fmt.Errorf("decoding tree %d: %v", i, err)
		}
		result.Trees = append(result.Trees, &forest.Tree{Root: node})
	}
	return result, nil
}

func encodeNode(n *forest.Node) (*jsonNode, error) {
	jn := &jsonNode{
		Probabilities: n.Prediction.Probabilities(),
		Weight:        n.Prediction.Weight(),
	}
	if n.SplitFeature != nil {
		jn.SplitFeature = n.SplitFeature.Name()
	}
	if n.Criterion != nil {
		jc, err := encodeCriterion(n.Criterion)
		if err != nil {
			return nil, err
		}
		jn.Criterion = jc
	}
	for _, child := range n.Children {
		jchild, err := encodeNode(child)
		if err != nil {
			return nil, err
		}
		jn.Children = append(jn.Children, jchild)
	}
	return jn, nil
}

func encodeCriterion(c feature.Criterion) (*jsonCriterion, error) {
	jc := &jsonCriterion{Feature: c.Feature().Name()}
	switch c := c.(type) {
	case feature.DiscreteCriterion:
		v := c.Value()
		jc.Value = &v
	case feature.ContinuousCriterion:
		a, b := c.Interval()
		if !math.IsInf(a, 0) {
			jc.A = &a
		}
		if !math.IsInf(b, 0) {
			jc.B = &b
		}
	default:
		return nil, fmt.Errorf("unknown criterion type %T on feature %s", c, c.Feature().Name())
	}
	return jc, nil
}

func decodeNode(jn *jsonNode, schema *feature.Schema) (*forest.Node, error) {
	n := &forest.Node{
		Prediction: forest.NewPrediction(jn.Probabilities, jn.Weight),
	}
	if jn.SplitFeature != "" {
		f, ok := schema.Feature(jn.SplitFeature)
		if !ok {
			return nil, fmt.Errorf("node splits on unknown feature %s", jn.SplitFeature)
		}
		n.SplitFeature = f
	}
	if jn.Criterion != nil {
		c, err := decodeCriterion(jn.Criterion, schema)
		if err != nil {
			return nil, err
		}
		n.Criterion = c
	}
	for _, jchild := range jn.Children {
		child, err := decodeNode(jchild, schema)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func decodeCriterion(jc *jsonCriterion, schema *feature.Schema) (feature.Criterion, error) {
	f, ok := schema.Feature(jc.Feature)
	if !ok {
		return nil, fmt.Errorf("criterion on unknown feature %s", jc.Feature)
	}
	if jc.Value != nil {
		df, ok := f.(*feature.DiscreteFeature)
		if !ok {
			return nil, fmt.Errorf("discrete criterion on non-discrete feature %s", jc.Feature)
		}
		return feature.NewDiscreteCriterion(df, *jc.Value), nil
	}
	cf, ok := f.(*feature.ContinuousFeature)
	if !ok {
		return nil, fmt.Errorf("continuous criterion on non-continuous feature %s", jc.Feature)
	}
	a, b := math.Inf(-1), math.Inf(1)
	if jc.A != nil {
		a = *jc.A
	}
	if jc.B != nil {
		b = *jc.B
	}
	return feature.NewContinuousCriterion(cf, a, b), nil
}
