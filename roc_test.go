package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestROCCurveOfPerfectClassifier(t *testing.T) {
	probs := []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1}
	labels := []bool{true, true, true, false, false, false}

	curve, auc, err := ROCCurve(probs, labels)
	require.NoError(t, err)
	require.NotEmpty(t, curve)
	assert.InDelta(t, 1.0, auc, 1e-12)
}

func TestROCCurveIsMonotonic(t *testing.T) {
	probs := []float64{0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.25, 0.2, 0.1}
	labels := []bool{true, true, false, true, false, false, true, false, false, false}

	curve, auc, err := ROCCurve(probs, labels)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, auc, 0.0)
	assert.LessOrEqual(t, auc, 1.0)

	for i := 1; i < len(curve); i++ {
		assert.GreaterOrEqual(t, curve[i].TPR, curve[i-1].TPR)
		assert.GreaterOrEqual(t, curve[i].FPR, curve[i-1].FPR)
	}
	last := curve[len(curve)-1]
	assert.Equal(t, 1.0, last.TPR)
	assert.Equal(t, 1.0, last.FPR)
}

func TestROCCurveDoesNotMutateInputs(t *testing.T) {
	probs := []float64{0.2, 0.9, 0.5, 0.7}
	labels := []bool{false, true, false, true}

	_, _, err := ROCCurve(probs, labels)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.2, 0.9, 0.5, 0.7}, probs)
	assert.Equal(t, []bool{false, true, false, true}, labels)
}

func TestROCCurveRejectsDegenerateInputs(t *testing.T) {
	_, _, err := ROCCurve([]float64{0.5}, []bool{true, false})
	assert.Error(t, err)

	_, _, err = ROCCurve(nil, nil)
	assert.Error(t, err)

	_, _, err = ROCCurve([]float64{0.2, 0.8}, []bool{true, true})
	assert.Error(t, err)

	_, _, err = ROCCurve([]float64{0.2, 0.8}, []bool{false, false})
	assert.Error(t, err)
}

func TestMetricsAtThreshold(t *testing.T) {
	probs := []float64{0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.25, 0.2, 0.1}
	labels := []bool{true, true, false, true, false, false, true, false, false, false}

	record, err := MetricsAt(probs, labels, 0.23)
	require.NoError(t, err)

	accuracy, ok := record.Value(MetricAccuracy)
	require.True(t, ok)
	assert.InDelta(t, 0.6, accuracy, 1e-12)

	sensitivity, ok := record.Value(MetricSensitivity)
	require.True(t, ok)
	assert.InDelta(t, 1.0, sensitivity, 1e-12)

	specificity, ok := record.Value(MetricSpecificity)
	require.True(t, ok)
	assert.InDelta(t, 1.0/3.0, specificity, 1e-12)

	precision, ok := record.Value(MetricPrecision)
	require.True(t, ok)
	assert.InDelta(t, 0.5, precision, 1e-12)

	f1, ok := record.Value(MetricF1)
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, f1, 1e-12)
}

func TestMetricsAtExtremeThresholds(t *testing.T) {
	probs := []float64{0.9, 0.1}
	labels := []bool{true, false}

	record, err := MetricsAt(probs, labels, 0)
	require.NoError(t, err)
	sensitivity, ok := record.Value(MetricSensitivity)
	require.True(t, ok)
	assert.Equal(t, 1.0, sensitivity)

	record, err = MetricsAt(probs, labels, 1.1)
	require.NoError(t, err)
	assert.False(t, record.Defined(MetricPrecision), "no positives classified, precision is undefined")
}

func TestMetricsAtRejectsMismatchedInputs(t *testing.T) {
	_, err := MetricsAt([]float64{0.5}, []bool{true, false}, 0.5)
	assert.Error(t, err)
	_, err = MetricsAt(nil, nil, 0.5)
	assert.Error(t, err)
}
