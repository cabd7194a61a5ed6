package analysis

import "fmt"

/*
SelectBest takes the results of a search and a metric and returns the
grid point with the highest mean of that metric over its completed
folds. It fails with ErrEmptyGrid on an empty result list. Points on
which the metric was undefined in every fold are skipped; if that
leaves nothing it fails with ErrUndefinedMetric.

Ties on the mean resolve deterministically towards the cheaper model:
fewer trees first, then lower mtry, then lower minimum node size, and
finally whichever point the search generated first.
*/
func SelectBest(results []*SearchResult, m Metric) (*SearchResult, error) {
	if len(results) == 0 {
		return nil, ErrEmptyGrid
	}
	var best *SearchResult
	var bestMean float64
	for _, r := range results {
		mean, ok := r.Mean(m)
		if !ok {
			continue
		}
		if best == nil || mean > bestMean || (mean == bestMean && cheaper(r.Point, best.Point)) {
			best = r
			bestMean = mean
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no grid point defines metric %s: %w", m, ErrUndefinedMetric)
	}
	return best, nil
}

func cheaper(a, b GridPoint) bool {
	if a.Trees != b.Trees {
		return a.Trees < b.Trees
	}
	if a.MTry != b.MTry {
		return a.MTry < b.MTry
	}
	return a.MinNode < b.MinNode
}
