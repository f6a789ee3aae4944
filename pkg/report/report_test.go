package report

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/solution"
)

func testProblem(t *testing.T) *domain.Problem {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 0, Y: 0, IsDepot: true}
	nodes := []*domain.Node{
		depot,
		{ID: 1, X: 10, Y: 0, Demand: 3},
		{ID: 2, X: 20, Y: 0, Demand: 3},
	}
	problem, err := domain.NewProblem("toy", nodes, 10, math.Inf(1))
	require.NoError(t, err)
	return problem
}

func testSolution(t *testing.T) (*solution.Solution, *evaluator.CostEvaluator) {
	t.Helper()
	problem := testProblem(t)
	ev := evaluator.New(problem, 5)
	sol := solution.New(problem)
	c1, _ := problem.NodeByID(1)
	c2, _ := problem.NodeByID(2)
	sol.AddRoute([]*domain.Node{c1, c2})
	return sol, ev
}

func TestSummarizeComputesRouteCosts(t *testing.T) {
	sol, ev := testSolution(t)
	data := Summarize("toy", "run-1", sol, ev, 5, 2*time.Second, math.NaN())

	require.Len(t, data.Routes, 1)
	assert.Equal(t, 1, data.NumRoutes)
	assert.Equal(t, 2, data.NumNodes)
	assert.Equal(t, 40, data.TotalCost) // 0-1 (10) + 1-2 (10) + 2-0 (20)
}

func TestFormatGapHandlesNaN(t *testing.T) {
	assert.Equal(t, "n/a", formatGap(math.NaN()))
	assert.Equal(t, "5.00%", formatGap(5.0))
}

func TestWritePDFProducesNonEmptyDocument(t *testing.T) {
	sol, ev := testSolution(t)
	data := Summarize("toy", "run-1", sol, ev, 1, time.Second, math.NaN())

	bytes, err := WritePDF(data)
	require.NoError(t, err)
	assert.NotEmpty(t, bytes)
}

func TestWriteExcelProducesNonEmptyWorkbook(t *testing.T) {
	sol, ev := testSolution(t)
	data := Summarize("toy", "run-1", sol, ev, 1, time.Second, math.NaN())

	bytes, err := WriteExcel(data)
	require.NoError(t, err)
	assert.NotEmpty(t, bytes)
}
