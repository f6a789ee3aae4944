package operators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/solution"
)

// buildScenario places two tight clusters on either side of a depot so that
// a single customer in the "wrong" cluster has an obvious improving
// relocation into the other cluster's route.
func buildScenario(t *testing.T) (*solution.Solution, *evaluator.CostEvaluator, *domain.Problem, []*domain.Node) {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 50, Y: 50, IsDepot: true}
	a1 := &domain.Node{ID: 1, X: 0, Y: 0, Demand: 1}
	a2 := &domain.Node{ID: 2, X: 0, Y: 1, Demand: 1}
	a3 := &domain.Node{ID: 3, X: 0, Y: 2, Demand: 1}
	b1 := &domain.Node{ID: 4, X: 100, Y: 0, Demand: 1}
	b2 := &domain.Node{ID: 5, X: 100, Y: 1, Demand: 1}
	stray := &domain.Node{ID: 6, X: 99, Y: 2, Demand: 1}

	problem, err := domain.NewProblem("scenario", []*domain.Node{depot, a1, a2, a3, b1, b2, stray}, 4, 0)
	require.NoError(t, err)

	sol := solution.New(problem)
	sol.AddRoute([]*domain.Node{a1, a2, a3, stray})
	sol.AddRoute([]*domain.Node{b1, b2})

	ev := evaluator.New(problem, 5)
	return sol, ev, problem, []*domain.Node{a1, a2, a3, b1, b2, stray}
}

func TestSearchSegmentMovesFindsRelocation(t *testing.T) {
	sol, ev, _, nodes := buildScenario(t)
	stray := nodes[5]

	moves := SearchSegmentMovesFrom(sol, ev, stray)
	require.NotEmpty(t, moves)
	for _, m := range moves {
		assert.Greater(t, m.Improvement(), 0.0)
	}

	before := ev.SolutionCost(sol, true)
	moves[0].Execute(sol)
	sol.Validate()
	after := ev.SolutionCost(sol, true)
	assert.Less(t, after, before)
}

func TestSearchCrossExchangesRespectsDisjointRoutes(t *testing.T) {
	sol, ev, _, nodes := buildScenario(t)
	moves := SearchCrossExchanges(sol, ev, nodes)
	for _, m := range moves {
		assert.LessOrEqual(t, len(m.Routes()), 2)
		assert.False(t, m.IsDisjoint(m))
	}
}

func TestSearchRelocationChainsFindsImprovement(t *testing.T) {
	sol, ev, _, nodes := buildScenario(t)
	stray := nodes[5]

	moves := SearchRelocationChains(sol, ev, []*domain.Node{stray}, 3)
	require.NotEmpty(t, moves, "stray is closer to the b-cluster route than its own, so relocating it must find a chain")
	assert.Greater(t, moves[0].Improvement(), 0.0)
}

func TestSearchLKMovesOnSingleRoute(t *testing.T) {
	sol, ev, _, _ := buildScenario(t)
	route := sol.Routes[0]

	moves := SearchLKMoves(sol, ev, route, 3)
	for _, m := range moves {
		assert.Greater(t, m.Improvement(), 0.0)
		assert.Equal(t, []*solution.Route{route}, m.Routes())
	}
}

// fiveNodeInstance is the depot(50,20)/customers-1..5 fixture shared by the
// segment-move and cross-exchange scenarios below: two clusters of three
// and two nodes straddling the depot, all demand 1, capacity 3.
func fiveNodeInstance(t *testing.T) (*domain.Problem, *evaluator.CostEvaluator, map[int]*domain.Node) {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 50, Y: 20, IsDepot: true}
	n1 := &domain.Node{ID: 1, X: 0, Y: 10, Demand: 1}
	n2 := &domain.Node{ID: 2, X: 0, Y: 20, Demand: 1}
	n3 := &domain.Node{ID: 3, X: 0, Y: 30, Demand: 1}
	n4 := &domain.Node{ID: 4, X: 100, Y: 10, Demand: 1}
	n5 := &domain.Node{ID: 5, X: 100, Y: 20, Demand: 1}

	problem, err := domain.NewProblem("five-node", []*domain.Node{depot, n1, n2, n3, n4, n5}, 3, 0)
	require.NoError(t, err)

	ev := evaluator.New(problem, 5)
	return problem, ev, map[int]*domain.Node{1: n1, 2: n2, 3: n3, 4: n4, 5: n5}
}

// TestSearchSegmentMovesFromRelocatesSingleNode covers the segment-move
// scenario where route [1,2,3,4]/[5] yields a best move that relocates node
// 4 alone for an improvement of 91.
func TestSearchSegmentMovesFromRelocatesSingleNode(t *testing.T) {
	problem, ev, n := fiveNodeInstance(t)
	sol := solution.New(problem)
	sol.AddRoute([]*domain.Node{n[1], n[2], n[3], n[4]})
	sol.AddRoute([]*domain.Node{n[5]})

	moves := SearchSegmentMovesFrom(sol, ev, n[4])
	require.NotEmpty(t, moves)
	sortByImprovement(moves)

	best := moves[0].(*SegmentMove)
	assert.Equal(t, 91.0, best.improvement)
	assert.Equal(t, []*domain.Node{n[4]}, best.segment)
}

// TestSearchSegmentMovesFromRelocatesTwoNodeSegment covers route
// [1]/[2,3,4,5], where the best move starting at node 2 relocates the
// segment [3,2].
func TestSearchSegmentMovesFromRelocatesTwoNodeSegment(t *testing.T) {
	problem, ev, n := fiveNodeInstance(t)
	sol := solution.New(problem)
	sol.AddRoute([]*domain.Node{n[1]})
	sol.AddRoute([]*domain.Node{n[2], n[3], n[4], n[5]})

	moves := SearchSegmentMovesFrom(sol, ev, n[2])
	require.NotEmpty(t, moves)
	sortByImprovement(moves)

	best := moves[0].(*SegmentMove)
	assert.Equal(t, []*domain.Node{n[3], n[2]}, best.segment)
}

// TestSearchCrossExchangesFromSwapsSingleNodes covers route [1,4,3]/[2,5],
// where the best cross-exchange starting at node 4 swaps node 4 for node 2
// for an improvement of 271.
func TestSearchCrossExchangesFromSwapsSingleNodes(t *testing.T) {
	problem, ev, n := fiveNodeInstance(t)
	sol := solution.New(problem)
	sol.AddRoute([]*domain.Node{n[1], n[4], n[3]})
	sol.AddRoute([]*domain.Node{n[2], n[5]})

	moves := SearchCrossExchangesFrom(sol, ev, n[4])
	require.NotEmpty(t, moves)
	sortByImprovement(moves)

	best := moves[0].(*CrossExchange)
	assert.Equal(t, 271.0, best.improvement)
	assert.Equal(t, []*domain.Node{n[4]}, best.segment1)
	assert.Equal(t, []*domain.Node{n[2]}, best.segment2)
}

// sixNodeRelocationInstance is the depot(50,20)/customers-1..6 fixture for
// the relocation-chain scenario. Node 6 shares node 5's coordinates, so
// relocating around it behaves identically to relocating node 5.
func sixNodeRelocationInstance(t *testing.T) (*solution.Solution, *evaluator.CostEvaluator, map[int]*domain.Node) {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 50, Y: 20, IsDepot: true}
	n1 := &domain.Node{ID: 1, X: 0, Y: 10, Demand: 1}
	n2 := &domain.Node{ID: 2, X: 0, Y: 20, Demand: 1}
	n3 := &domain.Node{ID: 3, X: 0, Y: 30, Demand: 1}
	n4 := &domain.Node{ID: 4, X: 100, Y: 10, Demand: 1}
	n5 := &domain.Node{ID: 5, X: 100, Y: 20, Demand: 1}
	n6 := &domain.Node{ID: 6, X: 100, Y: 20, Demand: 1}

	problem, err := domain.NewProblem("six-node-relocation", []*domain.Node{depot, n1, n2, n3, n4, n5, n6}, 3, 0)
	require.NoError(t, err)

	sol := solution.New(problem)
	sol.AddRoute([]*domain.Node{n1, n2, n4})
	sol.AddRoute([]*domain.Node{n5, n3, n6})

	ev := evaluator.New(problem, 5)
	return sol, ev, map[int]*domain.Node{1: n1, 2: n2, 3: n3, 4: n4, 5: n5, 6: n6}
}

// TestSearchRelocationChainsFindsTwoStepChain covers the two-deep ejection
// chain starting at node 4: relocating node 4 to the depot's route forces
// node 3 out in turn, each step individually improving.
func TestSearchRelocationChainsFindsTwoStepChain(t *testing.T) {
	sol, ev, n := sixNodeRelocationInstance(t)

	moves := SearchRelocationChains(sol, ev, []*domain.Node{n[4]}, 2)
	require.NotEmpty(t, moves)
	sortByImprovement(moves)

	best := moves[0].(*RelocationChain)
	require.Len(t, best.relocations, 2)

	assert.Equal(t, n[4], best.relocations[0].nodeToMove)
	assert.True(t, best.relocations[0].moveAfter.IsDepot)
	assert.Equal(t, 90.0, best.relocations[0].improvement)

	assert.Equal(t, n[3], best.relocations[1].nodeToMove)
	assert.True(t, best.relocations[1].moveAfter.IsDepot)
	assert.Equal(t, 180.0, best.relocations[1].improvement)
}

// fourNodeLKInstance is the depot(0,0)/customers-1..4 fixture for the
// Lin-Kernighan scenarios: evenly spaced colinear nodes, all demand 1,
// capacity 5.
func fourNodeLKInstance(t *testing.T) (*domain.Problem, *evaluator.CostEvaluator, map[int]*domain.Node) {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 0, Y: 0, IsDepot: true}
	n1 := &domain.Node{ID: 1, X: 10, Y: 0, Demand: 1}
	n2 := &domain.Node{ID: 2, X: 20, Y: 0, Demand: 1}
	n3 := &domain.Node{ID: 3, X: 30, Y: 0, Demand: 1}
	n4 := &domain.Node{ID: 4, X: 40, Y: 0, Demand: 1}

	problem, err := domain.NewProblem("four-node-lk", []*domain.Node{depot, n1, n2, n3, n4}, 5, 0)
	require.NoError(t, err)

	ev := evaluator.New(problem, 5)
	return problem, ev, map[int]*domain.Node{1: n1, 2: n2, 3: n3, 4: n4}
}

// repeatedlyApplyBestLKMove mirrors search.ImproveRoute's loop without
// importing internal/search (which itself imports this package): apply the
// best-found move repeatedly until none improve.
func repeatedlyApplyBestLKMove(sol *solution.Solution, ev *evaluator.CostEvaluator, route *solution.Route, maxDepth int) {
	for {
		moves := SearchLKMoves(sol, ev, route, maxDepth)
		if len(moves) == 0 {
			return
		}
		moves[0].Execute(sol)
	}
}

// TestSearchLKMovesUntangles2OptCrossing covers the 2-opt scenario: route
// [2,1,3,4] (cost 100, crossed) converges to cost 80 once uncrossed.
func TestSearchLKMovesUntangles2OptCrossing(t *testing.T) {
	problem, ev, n := fourNodeLKInstance(t)
	sol := solution.New(problem)
	route := sol.AddRoute([]*domain.Node{n[2], n[1], n[3], n[4]})

	require.Equal(t, 100, ev.SolutionCost(sol, true))
	repeatedlyApplyBestLKMove(sol, ev, route, 2)
	sol.Validate()
	assert.Equal(t, 80, ev.SolutionCost(sol, true))
}

// TestSearchLKMovesUntangles3OptCrossing covers the 3-opt scenario: route
// [3,1,2,4] (cost 120) converges to cost 80 at depth 3.
func TestSearchLKMovesUntangles3OptCrossing(t *testing.T) {
	problem, ev, n := fourNodeLKInstance(t)
	sol := solution.New(problem)
	route := sol.AddRoute([]*domain.Node{n[3], n[1], n[2], n[4]})

	require.Equal(t, 120, ev.SolutionCost(sol, true))
	repeatedlyApplyBestLKMove(sol, ev, route, 3)
	sol.Validate()
	assert.Equal(t, 80, ev.SolutionCost(sol, true))
}
