package analysis

// Error is a sentinel error of the model-selection workflow. Callers
// match these with errors.Is; the wrapped messages carry the grid
// point and fold the failure belongs to.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrInvalidFraction reports a train fraction outside (0, 1).
	ErrInvalidFraction = Error("train fraction must be strictly between 0 and 1")
	// ErrEmptyStratum reports a label value with no observations to
	// sample from.
	ErrEmptyStratum = Error("label value has no observations")
	// ErrInsufficientNeighbors reports a minority class too small for
	// the configured SMOTE neighbor count.
	ErrInsufficientNeighbors = Error("minority class has too few members for neighbor search")
	// ErrInsufficientDataForBalancing reports that balancing failed on
	// a majority of the folds of a grid point.
	ErrInsufficientDataForBalancing = Error("balancing failed on a majority of folds")
	// ErrEmptyGrid reports a hyperparameter grid with no points.
	ErrEmptyGrid = Error("hyperparameter grid is empty")
	// ErrUndefinedMetric reports a metric whose defining ratio has a
	// zero denominator. It is recovered locally: the metric is marked
	// undefined on its record instead of aborting the run.
	ErrUndefinedMetric = Error("metric is undefined for this confusion matrix")
	// ErrSchemaMismatch reports test data that diverges from the
	// schema the model was trained under.
	ErrSchemaMismatch = Error("test data does not match the model schema")
)
