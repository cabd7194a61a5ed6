package analysis

import "fmt"

/*
GridPoint is one concrete hyperparameter combination evaluated during
the search. Points are generated once per search and never mutated.
*/
type GridPoint struct {
	// MTry is the number of features sampled at every split.
	MTry int
	// MinNode is the minimum number of samples a node must hold to be
	// split further.
	MinNode int
	// Trees is the ensemble size.
	Trees int
}

func (p GridPoint) String() string {
	return fmt.Sprintf("mtry=%d min_node=%d trees=%d", p.MTry, p.MinNode, p.Trees)
}

/*
Grid declares the hyperparameter ranges a search covers. Its points
are the Cartesian product of the three slices.
*/
type Grid struct {
	MTry    []int
	MinNode []int
	Trees   []int
}

/*
Points expands the grid into its list of points, in a fixed order:
mtry varies slowest, trees fastest. The order never affects scores,
only the first-encountered tie-break of the selector.
*/
func (g Grid) Points() []GridPoint {
	points := make([]GridPoint, 0, len(g.MTry)*len(g.MinNode)*len(g.Trees))
	for _, mtry := range g.MTry {
		for _, minNode := range g.MinNode {
			for _, trees := range g.Trees {
				points = append(points, GridPoint{MTry: mtry, MinNode: minNode, Trees: trees})
			}
		}
	}
	return points
}

func (g Grid) validate() error {
	for _, vs := range [][]int{g.MTry, g.MinNode, g.Trees} {
		for _, v := range vs {
			if v < 1 {
				return fmt.Errorf("grid values must be positive integers, got %d", v)
			}
		}
	}
	return nil
}
