package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
)

func testSearchConfig(t *testing.T) SearchConfig {
	schema, label := testSchema(t)
	return SearchConfig{
		Schema:      schema,
		Label:       label,
		Positive:    "yes",
		Grid:        Grid{MTry: []int{1, 2}, MinNode: []int{1, 5}, Trees: []int{2, 4}},
		Folds:       5,
		TargetRatio: 1.0,
		Neighbors:   2,
		Workers:     2,
		Seed:        17,
	}
}

func TestSearchEvaluatesEveryGridPointOnEveryFold(t *testing.T) {
	cfg := testSearchConfig(t)
	train := surveyDataset(1, 60, 30)

	results, err := Search(testCtx(), train, cfg)
	require.NoError(t, err)
	require.Len(t, results, 8)

	for i, r := range results {
		assert.Equal(t, cfg.Grid.Points()[i], r.Point)
		require.Len(t, r.FoldRecords, 5, "point %v", r.Point)
		assert.Empty(t, r.FailedFolds)
		for fold, record := range r.FoldRecords {
			assert.Equal(t, fold, record.Fold)
			require.NotNil(t, record.Point)
			assert.Equal(t, r.Point, *record.Point)
			accuracy, ok := record.Value(MetricAccuracy)
			require.True(t, ok)
			assert.GreaterOrEqual(t, accuracy, 0.0)
			assert.LessOrEqual(t, accuracy, 1.0)
		}
	}
}

func TestSearchIsDeterministicAcrossWorkerCounts(t *testing.T) {
	train := surveyDataset(2, 60, 30)

	serial := testSearchConfig(t)
	serial.Workers = 1
	parallel := testSearchConfig(t)
	parallel.Workers = 4

	serialResults, err := Search(testCtx(), train, serial)
	require.NoError(t, err)
	parallelResults, err := Search(testCtx(), train, parallel)
	require.NoError(t, err)

	require.Equal(t, len(serialResults), len(parallelResults))
	for i := range serialResults {
		assert.Equal(t, serialResults[i].Point, parallelResults[i].Point)
		require.Equal(t, len(serialResults[i].FoldRecords), len(parallelResults[i].FoldRecords))
		for f := range serialResults[i].FoldRecords {
			for _, m := range Metrics() {
				sv, sok := serialResults[i].FoldRecords[f].Value(m)
				pv, pok := parallelResults[i].FoldRecords[f].Value(m)
				require.Equal(t, sok, pok)
				assert.Equal(t, sv, pv, "point %v fold %d metric %s", serialResults[i].Point, f, m)
			}
		}
	}
}

func TestSearchRejectsEmptyGrid(t *testing.T) {
	cfg := testSearchConfig(t)
	cfg.Grid = Grid{}
	train := surveyDataset(3, 40, 20)

	_, err := Search(testCtx(), train, cfg)
	assert.ErrorIs(t, err, ErrEmptyGrid)
}

func TestSearchFailsWhenFoldsCannotBeBalanced(t *testing.T) {
	cfg := testSearchConfig(t)
	cfg.Neighbors = 5
	train := surveyDataset(4, 60, 4)

	_, err := Search(testCtx(), train, cfg)
	assert.ErrorIs(t, err, ErrInsufficientDataForBalancing)
}

func TestSearchRejectsInvalidConfigs(t *testing.T) {
	train := surveyDataset(5, 40, 20)

	cfg := testSearchConfig(t)
	cfg.Folds = 1
	_, err := Search(testCtx(), train, cfg)
	assert.Error(t, err)

	cfg = testSearchConfig(t)
	cfg.Positive = "maybe"
	_, err = Search(testCtx(), train, cfg)
	assert.Error(t, err)

	cfg = testSearchConfig(t)
	cfg.Grid.Trees = []int{0}
	_, err = Search(testCtx(), train, cfg)
	assert.Error(t, err)
}

func TestSearchHonorsCancellation(t *testing.T) {
	cfg := testSearchConfig(t)
	train := surveyDataset(6, 60, 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Search(ctx, train, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchResultAggregates(t *testing.T) {
	point := GridPoint{MTry: 2, MinNode: 1, Trees: 10}
	r := &SearchResult{Point: point}
	for fold, accuracy := range []float64{0.8, 0.9, 1.0} {
		record := NewMetricRecord(&point, fold)
		record.SetValue(MetricAccuracy, accuracy)
		record.SetUndefined(MetricPrecision)
		r.FoldRecords = append(r.FoldRecords, record)
	}

	mean, ok := r.Mean(MetricAccuracy)
	require.True(t, ok)
	assert.InDelta(t, 0.9, mean, 1e-12)

	stderr, ok := r.StdErr(MetricAccuracy)
	require.True(t, ok)
	// sample sd 0.1 over sqrt(3)
	assert.InDelta(t, 0.0577350269, stderr, 1e-9)

	_, ok = r.Mean(MetricPrecision)
	assert.False(t, ok)
}

func TestSearchResultStdErrOfSingleFoldIsZero(t *testing.T) {
	point := GridPoint{MTry: 1, MinNode: 1, Trees: 1}
	record := NewMetricRecord(&point, 0)
	record.SetValue(MetricF1, 0.75)
	r := &SearchResult{Point: point, FoldRecords: []*MetricRecord{record}}

	stderr, ok := r.StdErr(MetricF1)
	require.True(t, ok)
	assert.Zero(t, stderr)
}

func TestFoldPartitionIsStratifiedAndDisjoint(t *testing.T) {
	_, label := testSchema(t)
	train := surveyDataset(7, 50, 25)

	samples, err := train.Samples(testCtx())
	require.NoError(t, err)
	folds, err := foldPartition(testCtx(), train, label, 5, 3)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	var total int
	for _, fold := range folds {
		counts := countByOutcome(t, dataset.New(fold), label)
		assert.Equal(t, 10, counts["no"])
		assert.Equal(t, 5, counts["yes"])
		total += len(fold)
	}
	assert.Equal(t, len(samples), total)
}

func TestDeriveSeedSeparatesTasks(t *testing.T) {
	seen := make(map[int64]bool)
	for point := 0; point < 8; point++ {
		for fold := 0; fold < 5; fold++ {
			s := deriveSeed(21, point, fold)
			assert.False(t, seen[s], "seed collision at point %d fold %d", point, fold)
			seen[s] = true
			assert.Equal(t, s, deriveSeed(21, point, fold))
		}
	}
}
