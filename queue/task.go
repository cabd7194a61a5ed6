package queue

import "fmt"

// Task represents one independent unit of grid-search work: fitting
// and scoring a single hyperparameter grid point on a single
// cross-validation fold. Tasks carry indices rather than data; the
// worker resolves them against its own read-only view of the grid and
// the fold partition.
type Task struct {
	// The index of the grid point in the search grid.
	PointIndex int
	// The index of the held-out fold.
	Fold int
}

// ID returns a string that identifies the task within its search.
func (t *Task) ID() string {
	return fmt.Sprintf("%d/%d", t.PointIndex, t.Fold)
}

func (t *Task) String() string {
	return fmt.Sprintf("{Task point %d fold %d}", t.PointIndex, t.Fold)
}
