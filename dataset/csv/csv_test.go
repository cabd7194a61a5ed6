package csv

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bernard-AI4PH/Random-Forest-Analysis/dataset"
	"github.com/Bernard-AI4PH/Random-Forest-Analysis/feature"
)

func testSchema(t *testing.T) *feature.Schema {
	t.Helper()
	schema, err := feature.NewSchema([]feature.Feature{
		feature.NewContinuousFeature("age"),
		feature.NewDiscreteFeature("smoker", []string{"no", "yes"}),
		feature.NewDiscreteFeature("outcome", []string{"no", "yes"}),
	})
	require.NoError(t, err)
	return schema
}

func TestReadDataset(t *testing.T) {
	ctx := context.Background()
	schema := testSchema(t)
	content := "age,smoker,outcome\n44,no,no\n61.5,yes,yes\n"

	ds, err := ReadDataset(strings.NewReader(content), schema, dataset.New)
	require.NoError(t, err)

	samples, err := ds.Samples(ctx)
	require.NoError(t, err)
	require.Len(t, samples, 2)

	age, _ := schema.Feature("age")
	v, err := samples[1].ValueFor(ctx, age)
	require.NoError(t, err)
	assert.Equal(t, 61.5, v)

	outcome, _ := schema.Feature("outcome")
	v, err = samples[0].ValueFor(ctx, outcome)
	require.NoError(t, err)
	assert.Equal(t, "no", v)
}

func TestReadDatasetParsesUndefinedValues(t *testing.T) {
	ctx := context.Background()
	schema := testSchema(t)
	content := "age,smoker,outcome\n?,no,yes\n"

	ds, err := ReadDataset(strings.NewReader(content), schema, dataset.New)
	require.NoError(t, err)

	samples, err := ds.Samples(ctx)
	require.NoError(t, err)
	age, _ := schema.Feature("age")
	v, err := samples[0].ValueFor(ctx, age)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestReadDatasetRejectsBadContent(t *testing.T) {
	schema := testSchema(t)

	tests := []struct {
		name    string
		content string
	}{
		{"unknown feature in header", "age,weight,outcome\n44,80,no\n"},
		{"non-numeric continuous value", "age,smoker,outcome\nold,no,no\n"},
		{"unknown category", "age,smoker,outcome\n44,sometimes,no\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.content), schema, dataset.New)
			assert.Error(t, err)
		})
	}
}

func TestReadDatasetBySampleStopsWhenAsked(t *testing.T) {
	schema := testSchema(t)
	content := "age,smoker,outcome\n44,no,no\n61,yes,yes\n70,no,yes\n"

	var read int
	err := ReadDatasetBySample(strings.NewReader(content), schema, func(i int, s dataset.Sample) (bool, error) {
		read++
		return read < 2, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, read)
}

func TestWriteDatasetRoundTrip(t *testing.T) {
	ctx := context.Background()
	schema := testSchema(t)
	content := "age,smoker,outcome\n44,no,no\n61.5,yes,yes\n?,no,yes\n"

	ds, err := ReadDataset(strings.NewReader(content), schema, dataset.New)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteDataset(ctx, &buf, ds, schema.Features()))

	restored, err := ReadDataset(&buf, schema, dataset.New)
	require.NoError(t, err)
	originalSamples, err := ds.Samples(ctx)
	require.NoError(t, err)
	restoredSamples, err := restored.Samples(ctx)
	require.NoError(t, err)
	require.Equal(t, len(originalSamples), len(restoredSamples))
	for i := range originalSamples {
		for _, f := range schema.Features() {
			ov, err := originalSamples[i].ValueFor(ctx, f)
			require.NoError(t, err)
			rv, err := restoredSamples[i].ValueFor(ctx, f)
			require.NoError(t, err)
			assert.Equal(t, ov, rv)
		}
	}
}

func TestWriterCounts(t *testing.T) {
	ctx := context.Background()
	schema := testSchema(t)

	var buf bytes.Buffer
	w, err := NewWriter(&buf, schema.Features())
	require.NoError(t, err)

	samples := []dataset.Sample{
		dataset.NewSample(map[string]interface{}{"age": 44.0, "smoker": "no", "outcome": "no"}),
		dataset.NewSample(map[string]interface{}{"age": 51.0, "smoker": "yes", "outcome": "yes"}),
	}
	n, err := w.Write(ctx, samples)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, w.Count())
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "age,smoker,outcome", lines[0])
}
