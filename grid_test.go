package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridPointsExpandCartesianProduct(t *testing.T) {
	g := Grid{MTry: []int{2, 4}, MinNode: []int{1, 5}, Trees: []int{100, 500}}

	points := g.Points()
	require.Len(t, points, 8)
	// mtry varies slowest, trees fastest
	assert.Equal(t, GridPoint{MTry: 2, MinNode: 1, Trees: 100}, points[0])
	assert.Equal(t, GridPoint{MTry: 2, MinNode: 1, Trees: 500}, points[1])
	assert.Equal(t, GridPoint{MTry: 2, MinNode: 5, Trees: 100}, points[2])
	assert.Equal(t, GridPoint{MTry: 4, MinNode: 5, Trees: 500}, points[7])
}

func TestGridPointsOfEmptyGrid(t *testing.T) {
	assert.Empty(t, Grid{}.Points())
	assert.Empty(t, Grid{MTry: []int{2}, MinNode: []int{1}}.Points())
}

func TestGridPointString(t *testing.T) {
	p := GridPoint{MTry: 4, MinNode: 5, Trees: 500}
	assert.Equal(t, "mtry=4 min_node=5 trees=500", p.String())
}
