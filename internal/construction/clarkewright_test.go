package construction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgls/internal/domain"
	"kgls/internal/evaluator"
)

func testProblem(t *testing.T) *domain.Problem {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 50, Y: 50, IsDepot: true}
	nodes := []*domain.Node{depot}
	coords := [][2]float64{{0, 0}, {0, 10}, {0, 20}, {100, 0}, {100, 10}, {100, 20}, {50, 0}, {50, 100}}
	for i, c := range coords {
		nodes = append(nodes, &domain.Node{ID: domain.NodeID(i + 1), X: c[0], Y: c[1], Demand: 3})
	}

	problem, err := domain.NewProblem("test", nodes, 10, 0)
	require.NoError(t, err)
	return problem
}

func TestClarkeWrightParallelPlansEveryCustomer(t *testing.T) {
	problem := testProblem(t)
	ev := evaluator.New(problem, 5)

	sol := ClarkeWrightParallel(problem, ev, false)
	sol.Validate()

	planned := 0
	for _, r := range sol.Routes {
		planned += r.Size
	}
	assert.Equal(t, len(problem.Customers), planned)
}

func TestClarkeWrightRouteReductionStaysFeasible(t *testing.T) {
	problem := testProblem(t)
	ev := evaluator.New(problem, 5)

	sol := ClarkeWrightWithRouteReduction(problem, ev)
	sol.Validate()

	for _, r := range sol.Routes {
		assert.LessOrEqual(t, r.Volume, problem.Capacity)
	}
}

// TestClarkeWrightParallelMergesAlongGreatestSaving covers the documented
// four-customer case: two colocated pairs each form a two-customer route
// first (their savings tie for highest), then the smaller remaining savings
// merge those two routes into one.
func TestClarkeWrightParallelMergesAlongGreatestSaving(t *testing.T) {
	depot := &domain.Node{ID: 0, X: 0, Y: 0, IsDepot: true}
	n1 := &domain.Node{ID: 1, X: 0, Y: 10, Demand: 1}
	n2 := &domain.Node{ID: 2, X: 0, Y: 10, Demand: 1}
	n3 := &domain.Node{ID: 3, X: 10, Y: 0, Demand: 1}
	n4 := &domain.Node{ID: 4, X: 10, Y: 0, Demand: 1}

	problem, err := domain.NewProblem("savings", []*domain.Node{depot, n1, n2, n3, n4}, 5, 0)
	require.NoError(t, err)

	ev := evaluator.New(problem, 5)
	sol := ClarkeWrightParallel(problem, ev, false)
	sol.Validate()

	require.Len(t, sol.Routes, 2)
	assert.Equal(t, "0-4-3-1-2-0", sol.Routes[0].String())
}
