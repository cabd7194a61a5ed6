package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

/*
ROCPoint is one operating point of a classifier: the true and false
positive rates obtained when classifying positive at or above the
given threshold.
*/
type ROCPoint struct {
	Threshold float64
	TPR       float64
	FPR       float64
}

/*
ROCCurve takes the positive-class probabilities a model assigned to a
set of observations and their true binary labels, and returns the ROC
curve over all distinct thresholds together with the area under it.
The inputs are not modified. It fails when the slices differ in length,
are empty, or hold only one class, since the curve is degenerate then.
*/
func ROCCurve(probs []float64, labels []bool) ([]ROCPoint, float64, error) {
	if len(probs) != len(labels) {
		return nil, 0, fmt.Errorf("got %d probabilities for %d labels", len(probs), len(labels))
	}
	if len(probs) == 0 {
		return nil, 0, fmt.Errorf("cannot build a ROC curve without observations")
	}
	positives := 0
	for _, l := range labels {
		if l {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return nil, 0, fmt.Errorf("cannot build a ROC curve from a single class")
	}
	y := make([]float64, len(probs))
	copy(y, probs)
	classes := make([]bool, len(labels))
	copy(classes, labels)
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, thresholds := stat.ROC(nil, y, classes, nil)
	curve := make([]ROCPoint, len(tpr))
	for i := range curve {
		curve[i] = ROCPoint{Threshold: thresholds[i], TPR: tpr[i], FPR: fpr[i]}
	}
	return curve, integrate.Trapezoidal(fpr, tpr), nil
}

/*
MetricsAt takes positive-class probabilities, true binary labels and a
candidate threshold and returns the metric record obtained by
classifying positive at or above that threshold. Callers sweep it over
the curve's thresholds to calibrate an operating point.
*/
func MetricsAt(probs []float64, labels []bool, threshold float64) (*MetricRecord, error) {
	if len(probs) != len(labels) {
		return nil, fmt.Errorf("got %d probabilities for %d labels", len(probs), len(labels))
	}
	if len(probs) == 0 {
		return nil, fmt.Errorf("cannot compute metrics without observations")
	}
	var cm ConfusionMatrix
	for i, p := range probs {
		predicted := p >= threshold
		switch {
		case labels[i] && predicted:
			cm.TP++
		case labels[i] && !predicted:
			cm.FN++
		case !labels[i] && predicted:
			cm.FP++
		default:
			cm.TN++
		}
	}
	return cm.Record(nil, TestFold), nil
}
