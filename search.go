package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/forest"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/queue"
)

const emptyQueueSleep = 10 * time.Millisecond

/*
SearchConfig holds the wiring and hyperparameter ranges of a
cross-validated grid search.
*/
type SearchConfig struct {
	// Schema describes the features of the training data.
	Schema *feature.Schema
	// Label is the outcome the classifiers predict.
	Label *feature.DiscreteFeature
	// Positive is the label value treated as the positive class when
	// deriving sensitivity, specificity, precision and F1.
	Positive string
	// Grid declares the hyperparameter ranges to evaluate.
	Grid Grid
	// Folds is the number of cross-validation folds, at least 2.
	Folds int
	// TargetRatio is the minority:majority ratio each fold complement
	// is balanced to before fitting.
	TargetRatio float64
	// Neighbors is the SMOTE neighbor count used when balancing.
	Neighbors int
	// Threshold is the positive-class decision threshold used when
	// scoring binary outcomes on held-out folds. Zero means 0.5.
	Threshold float64
	// Workers is the number of concurrent fit workers. The search
	// never inspects the machine; parallelism is whatever the caller
	// configures here. Zero means 1.
	Workers int
	// Seed fixes fold assignment and, through per-task derivation,
	// every balancing and fitting step.
	Seed int64
}

/*
SearchResult aggregates the per-fold metric records of one grid point.
*/
type SearchResult struct {
	Point GridPoint
	// FoldRecords holds one record per completed fold, ordered by
	// fold id.
	FoldRecords []*MetricRecord
	// FailedFolds lists folds excluded from aggregation because their
	// complement could not be balanced.
	FailedFolds []int
}

/*
Mean returns the mean of the given metric over the folds where it is
defined, and whether any fold defined it.
*/
func (r *SearchResult) Mean(m Metric) (float64, bool) {
	values := r.definedValues(m)
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

/*
StdErr returns the standard error of the given metric over the folds
where it is defined, and whether any fold defined it. With a single
defined fold the standard error is reported as zero.
*/
func (r *SearchResult) StdErr(m Metric) (float64, bool) {
	values := r.definedValues(m)
	if len(values) == 0 {
		return 0, false
	}
	if len(values) == 1 {
		return 0, true
	}
	mean, _ := r.Mean(m)
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(sum / float64(len(values)-1))
	return sd / math.Sqrt(float64(len(values))), true
}

func (r *SearchResult) definedValues(m Metric) []float64 {
	var values []float64
	for _, mr := range r.FoldRecords {
		if v, ok := mr.Value(m); ok {
			values = append(values, v)
		}
	}
	return values
}

/*
Search takes a context, a training dataset and a SearchConfig and
evaluates every grid point with stratified k-fold cross-validation:
for each (point, fold) pair the fold complement is balanced and a
forest is fitted on it, then scored on the untouched held-out fold.
The (point, fold) fits are independent and are distributed over the
configured number of workers through a task queue; each task derives
its seed from the search seed and its own indices, so results are
bit-identical across runs regardless of scheduling.

A fold whose complement cannot be balanced is excluded from its
point's aggregation and listed on FailedFolds; a point whose folds
fail in their majority fails the whole search with
ErrInsufficientDataForBalancing. Cancelling the context aborts the
search without returning partial aggregates.
*/
func Search(ctx context.Context, train dataset.Dataset, cfg SearchConfig) ([]*SearchResult, error) {
	points := cfg.Grid.Points()
	if len(points) == 0 {
		return nil, ErrEmptyGrid
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	folds, err := foldPartition(ctx, train, cfg.Label, cfg.Folds, cfg.Seed)
	if err != nil {
		return nil, err
	}
	q := queue.New()
	for pi := range points {
		for fi := 0; fi < cfg.Folds; fi++ {
			if err := q.Push(ctx, &queue.Task{PointIndex: pi, Fold: fi}); err != nil {
				return nil, err
			}
		}
	}
	collector := &searchCollector{
		records: make([][]*MetricRecord, len(points)),
		failed:  make([][]int, len(points)),
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			return searchWork(gctx, q, folds, points, cfg, collector)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return collector.aggregate(points, cfg.Folds)
}

func (cfg *SearchConfig) validate() error {
	if cfg.Schema == nil || cfg.Label == nil {
		return fmt.Errorf("search config needs a schema and a label feature")
	}
	if cfg.Folds < 2 {
		return fmt.Errorf("cross-validation needs at least 2 folds, got %d", cfg.Folds)
	}
	if err := cfg.Grid.validate(); err != nil {
		return err
	}
	if ok, err := cfg.Label.Valid(cfg.Positive); !ok {
		return fmt.Errorf("positive class: %v", err)
	}
	return nil
}

func (cfg *SearchConfig) threshold() float64 {
	if cfg.Threshold == 0 {
		return 0.5
	}
	return cfg.Threshold
}

/*
foldPartition assigns every training sample to exactly one of k folds,
stratified by label: each stratum is shuffled with the seeded rng and
dealt round-robin over the folds, so folds are disjoint, within one
sample of equal size, and preserve label proportions.
*/
func foldPartition(ctx context.Context, train dataset.Dataset, label *feature.DiscreteFeature, k int, seed int64) ([][]dataset.Sample, error) {
	samples, err := train.Samples(ctx)
	if err != nil {
		return nil, err
	}
	strata, err := groupByLabel(ctx, samples, label)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	folds := make([][]dataset.Sample, k)
	for _, value := range label.AvailableValues() {
		for i, s := range shuffledSamples(strata[value], rng) {
			folds[i%k] = append(folds[i%k], s)
		}
	}
	return folds, nil
}

type searchCollector struct {
	mu      sync.Mutex
	records [][]*MetricRecord
	failed  [][]int
}

func (c *searchCollector) complete(pointIndex int, record *MetricRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[pointIndex] = append(c.records[pointIndex], record)
}

func (c *searchCollector) fail(pointIndex, fold int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed[pointIndex] = append(c.failed[pointIndex], fold)
}

func (c *searchCollector) aggregate(points []GridPoint, folds int) ([]*SearchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	results := make([]*SearchResult, len(points))
	for i, point := range points {
		failed := c.failed[i]
		if 2*len(failed) > folds {
			return nil, fmt.Errorf("grid point %v: %d of %d folds failed: %w",
				point, len(failed), folds, ErrInsufficientDataForBalancing)
		}
		records := c.records[i]
		sort.Slice(records, func(a, b int) bool { return records[a].Fold < records[b].Fold })
		sort.Ints(failed)
		results[i] = &SearchResult{Point: point, FoldRecords: records, FailedFolds: failed}
	}
	return results, nil
}

/*
searchWork is the loop of one search worker: it pulls fit tasks until
the queue drains, returning early when the context is cancelled or a
task fails for a reason other than balancing.
*/
func searchWork(ctx context.Context, q queue.Queue, folds [][]dataset.Sample, points []GridPoint, cfg SearchConfig, collector *searchCollector) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		task, err := q.Pull(ctx)
		if err != nil {
			return err
		}
		if task == nil {
			pending, running, err := q.Count(ctx)
			if err != nil {
				return err
			}
			if pending+running == 0 {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(emptyQueueSleep):
			}
			continue
		}
		record, err := fitAndScore(ctx, task, folds, points, cfg)
		if err != nil {
			if errors.Is(err, ErrInsufficientNeighbors) {
				collector.fail(task.PointIndex, task.Fold)
				if err := q.Complete(ctx, task.ID()); err != nil {
					return err
				}
				continue
			}
			q.Drop(ctx, task.ID())
			return fmt.Errorf("grid point %v fold %d: %w", points[task.PointIndex], task.Fold, err)
		}
		collector.complete(task.PointIndex, record)
		if err := q.Complete(ctx, task.ID()); err != nil {
			return err
		}
	}
}

/*
fitAndScore processes one (grid point, fold) task: it balances the
fold complement, fits a forest on it with the task-derived seed and
scores the held-out fold at the configured threshold.
*/
func fitAndScore(ctx context.Context, task *queue.Task, folds [][]dataset.Sample, points []GridPoint, cfg SearchConfig) (*MetricRecord, error) {
	point := points[task.PointIndex]
	var complement []dataset.Sample
	for fi, fold := range folds {
		if fi != task.Fold {
			complement = append(complement, fold...)
		}
	}
	seed := deriveSeed(cfg.Seed, task.PointIndex, task.Fold)
	balanced, err := Balance(ctx, dataset.New(complement), cfg.Schema, cfg.Label, cfg.TargetRatio, cfg.Neighbors, seed)
	if err != nil {
		return nil, err
	}
	model, err := forest.Grow(ctx, balanced, forest.Config{
		Label:    cfg.Label,
		Features: cfg.Schema.Predictors(cfg.Label.Name()),
		Trees:    point.Trees,
		MTry:     point.MTry,
		MinNode:  point.MinNode,
		Seed:     seed,
	})
	if err != nil {
		return nil, err
	}
	cm, err := confusionOn(ctx, model, folds[task.Fold], cfg.Positive, cfg.threshold())
	if err != nil {
		return nil, err
	}
	return cm.Record(&point, task.Fold), nil
}

/*
deriveSeed mixes the search seed with a task's point and fold indices
so every task owns a distinct, reproducible rng stream no matter which
worker runs it.
*/
func deriveSeed(seed int64, point, fold int) int64 {
	h := uint64(seed)
	for _, v := range []uint64{uint64(point) + 1, uint64(fold) + 1} {
		h ^= v * 0x9E3779B97F4A7C15
		h = (h ^ (h >> 30)) * 0xBF58476D1CE4E5B9
		h ^= h >> 27
	}
	return int64(h)
}
