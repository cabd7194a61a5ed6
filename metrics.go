package analysis

import "fmt"

// Metric names a confusion-matrix-derived performance estimate.
type Metric string

const (
	MetricAccuracy    = Metric("accuracy")
	MetricSensitivity = Metric("sensitivity")
	MetricSpecificity = Metric("specificity")
	MetricPrecision   = Metric("precision")
	MetricF1          = Metric("f1")
)

// Metrics returns all metrics in their canonical reporting order.
func Metrics() []Metric {
	return []Metric{MetricAccuracy, MetricSensitivity, MetricSpecificity, MetricPrecision, MetricF1}
}

// TestFold is the fold id tagging records computed on the held-back
// test set rather than on a cross-validation fold.
const TestFold = -1

/*
MetricRecord is an immutable set of metric estimates tagged with the
grid point and fold (or test set) they were computed from. Metrics
whose defining ratio had a zero denominator are marked undefined and
reported distinctly from zero.
*/
type MetricRecord struct {
	// Point is the grid point the record belongs to, nil for records
	// of the final model.
	Point *GridPoint
	// Fold is the held-out fold id, or TestFold.
	Fold int

	values    map[Metric]float64
	undefined map[Metric]bool
}

// NewMetricRecord returns an empty record tagged with the given grid
// point and fold.
func NewMetricRecord(point *GridPoint, fold int) *MetricRecord {
	return &MetricRecord{
		Point:     point,
		Fold:      fold,
		values:    make(map[Metric]float64),
		undefined: make(map[Metric]bool),
	}
}

// SetValue stores an estimate for the given metric.
func (mr *MetricRecord) SetValue(m Metric, v float64) {
	mr.values[m] = v
}

// SetUndefined marks the given metric undefined on this record.
func (mr *MetricRecord) SetUndefined(m Metric) {
	mr.undefined[m] = true
}

// Value returns the estimate for the given metric and whether it is
// defined on this record.
func (mr *MetricRecord) Value(m Metric) (float64, bool) {
	if mr.undefined[m] {
		return 0, false
	}
	v, ok := mr.values[m]
	return v, ok
}

// Defined reports whether the given metric has a defined estimate.
func (mr *MetricRecord) Defined(m Metric) bool {
	_, ok := mr.Value(m)
	return ok
}

func (mr *MetricRecord) String() string {
	s := ""
	for _, m := range Metrics() {
		v, ok := mr.Value(m)
		if !ok {
			s = fmt.Sprintf("%s %s=undefined", s, m)
			continue
		}
		s = fmt.Sprintf("%s %s=%f", s, m, v)
	}
	return fmt.Sprintf("{%s }", s)
}

/*
ConfusionMatrix holds the four outcome counts of thresholded binary
(or one-vs-rest) classification against known labels.
*/
type ConfusionMatrix struct {
	TP, TN, FP, FN int
}

// Total returns the number of classified observations.
func (cm ConfusionMatrix) Total() int {
	return cm.TP + cm.TN + cm.FP + cm.FN
}

// Accuracy returns the fraction of correct classifications.
func (cm ConfusionMatrix) Accuracy() float64 {
	return float64(cm.TP+cm.TN) / float64(cm.Total())
}

// Sensitivity returns the true positive rate, TP/(TP+FN).
func (cm ConfusionMatrix) Sensitivity() float64 {
	if cm.TP+cm.FN == 0 {
		return 0
	}
	return float64(cm.TP) / float64(cm.TP+cm.FN)
}

// Specificity returns the true negative rate, TN/(TN+FP).
func (cm ConfusionMatrix) Specificity() float64 {
	if cm.TN+cm.FP == 0 {
		return 0
	}
	return float64(cm.TN) / float64(cm.TN+cm.FP)
}

// Precision returns TP/(TP+FP) and whether it is defined, which it is
// not when nothing was classified positive.
func (cm ConfusionMatrix) Precision() (float64, bool) {
	if cm.TP+cm.FP == 0 {
		return 0, false
	}
	return float64(cm.TP) / float64(cm.TP+cm.FP), true
}

// F1 returns the harmonic mean of precision and sensitivity and
// whether it is defined.
func (cm ConfusionMatrix) F1() (float64, bool) {
	precision, ok := cm.Precision()
	if !ok {
		return 0, false
	}
	sensitivity := cm.Sensitivity()
	if precision+sensitivity == 0 {
		return 0, false
	}
	return 2 * precision * sensitivity / (precision + sensitivity), true
}

/*
Record derives the full metric record of the matrix, tagged with the
given grid point and fold. Undefined precision or F1 are marked as
such rather than reported as zero.
*/
func (cm ConfusionMatrix) Record(point *GridPoint, fold int) *MetricRecord {
	mr := NewMetricRecord(point, fold)
	mr.SetValue(MetricAccuracy, cm.Accuracy())
	mr.SetValue(MetricSensitivity, cm.Sensitivity())
	mr.SetValue(MetricSpecificity, cm.Specificity())
	if precision, ok := cm.Precision(); ok {
		mr.SetValue(MetricPrecision, precision)
	} else {
		mr.SetUndefined(MetricPrecision)
	}
	if f1, ok := cm.F1(); ok {
		mr.SetValue(MetricF1, f1)
	} else {
		mr.SetUndefined(MetricF1)
	}
	return mr
}
