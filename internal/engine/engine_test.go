package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgls/internal/domain"
	"kgls/pkg/config"
)

func testProblem(t *testing.T) *domain.Problem {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 50, Y: 50, IsDepot: true}
	nodes := []*domain.Node{depot}
	coords := [][2]float64{
		{0, 0}, {0, 10}, {0, 20}, {100, 0}, {100, 10}, {100, 20},
		{50, 0}, {50, 100}, {20, 20}, {80, 80},
	}
	for i, c := range coords {
		nodes = append(nodes, &domain.Node{ID: domain.NodeID(i + 1), X: c[0], Y: c[1], Demand: 3})
	}
	problem, err := domain.NewProblem("test", nodes, 10, math.Inf(1))
	require.NoError(t, err)
	return problem
}

func testParams() config.RunConfig {
	return config.RunConfig{
		DepthLinKernighan:    4,
		DepthRelocationChain: 3,
		NumPerturbations:     2,
		NeighborhoodSize:     5,
		Moves:                []string{"segment_move", "cross_exchange", "relocation_chain"},
	}
}

func TestRunProducesFeasibleImprovingSolution(t *testing.T) {
	problem := testProblem(t)
	e := New(problem, testParams())

	require.NoError(t, e.SetAbortCondition("max_iterations", 3))

	best, stats, err := e.Run(nil)
	require.NoError(t, err)
	require.NotNil(t, best)

	best.Validate()
	for _, r := range best.Routes {
		assert.LessOrEqual(t, r.Volume, problem.Capacity)
	}

	assert.Equal(t, e.BestCost(), stats.BestCost)
	assert.True(t, math.IsNaN(stats.BestGap))
	assert.GreaterOrEqual(t, stats.Iterations, 0)
}

func TestSetAbortConditionRejectsUnknownName(t *testing.T) {
	problem := testProblem(t)
	e := New(problem, testParams())

	err := e.SetAbortCondition("bogus", 1)
	assert.Error(t, err)
}

func TestSetAbortConditionsFromConfig(t *testing.T) {
	problem := testProblem(t)
	e := New(problem, testParams())

	err := e.SetAbortConditions([]config.AbortEntry{{Name: "max_iterations", Param: 1}})
	require.NoError(t, err)

	_, stats, err := e.Run(nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, stats.Iterations, 1)
}

func TestBestGapComputedWhenBKSKnown(t *testing.T) {
	depot := &domain.Node{ID: 0, X: 0, Y: 0, IsDepot: true}
	nodes := []*domain.Node{
		depot,
		{ID: 1, X: 10, Y: 0, Demand: 3},
		{ID: 2, X: 20, Y: 0, Demand: 3},
	}
	problem, err := domain.NewProblem("bks-test", nodes, 10, 40)
	require.NoError(t, err)

	e := New(problem, testParams())
	require.NoError(t, e.SetAbortCondition("max_iterations", 1))

	_, _, err = e.Run(nil)
	require.NoError(t, err)

	assert.False(t, math.IsNaN(e.BestGap()))
}
