package ioformat

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgls/internal/domain"
	"kgls/internal/solution"
)

const instanceBody = `CAPACITY : 5
NODE_COORD_SECTION
0 0 0
1 0 10
2 0 10
3 10 0
4 10 0
DEMAND_SECTION
0 0
1 3
2 3
3 3
4 3
EOF
`

func writeTempFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestReadInstanceParsesCoordsAndDemands(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "toy.vrp", instanceBody)

	problem, err := ReadInstance(path)
	require.NoError(t, err)

	assert.Equal(t, 5, problem.Capacity)
	assert.Equal(t, 4, len(problem.Customers))
	assert.True(t, problem.Depot.IsDepot)
	assert.Equal(t, domain.NodeID(0), problem.Depot.ID)
	assert.True(t, math.IsInf(problem.BKS, 1))
}

func TestReadInstancePicksUpSiblingBKS(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "toy.vrp", instanceBody)
	writeTempFile(t, dir, "toy.sol", "Cost 42\n")

	problem, err := ReadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, float64(42), problem.BKS)
}

func TestReadInstanceRejectsMalformedCapacity(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "bad.vrp", "CAPACITY : not-a-number\nEOF\n")

	_, err := ReadInstance(path)
	assert.Error(t, err)
}

func buildProblem(t *testing.T) *domain.Problem {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 0, Y: 0, IsDepot: true}
	nodes := []*domain.Node{
		depot,
		{ID: 1, X: 0, Y: 10, Demand: 3},
		{ID: 2, X: 0, Y: 10, Demand: 3},
		{ID: 3, X: 10, Y: 0, Demand: 3},
		{ID: 4, X: 10, Y: 0, Demand: 3},
	}
	problem, err := domain.NewProblem("toy", nodes, 5, math.Inf(1))
	require.NoError(t, err)
	return problem
}

func TestReadSolutionRoundTripsWrittenFile(t *testing.T) {
	problem := buildProblem(t)
	sol := solution.New(problem)
	n := func(id domain.NodeID) *domain.Node {
		node, _ := problem.NodeByID(id)
		return node
	}
	sol.AddRoute([]*domain.Node{n(4), n(3)})
	sol.AddRoute([]*domain.Node{n(1), n(2)})

	dir := t.TempDir()
	path := filepath.Join(dir, "toy.sol_out")
	require.NoError(t, WriteSolution(path, sol))

	reloaded, err := ReadSolution(path, problem)
	require.NoError(t, err)
	assert.Equal(t, len(sol.Routes), len(reloaded.Routes))

	for i, route := range sol.Routes {
		assert.Equal(t, route.String(), reloaded.Routes[i].String())
	}
}

func TestReadSolutionRejectsNonIntegerEntry(t *testing.T) {
	problem := buildProblem(t)
	dir := t.TempDir()
	path := writeTempFile(t, dir, "bad.sol", "0-four-3-0\n")

	_, err := ReadSolution(path, problem)
	assert.Error(t, err)
}

func TestReadSolutionRejectsUnknownNodeID(t *testing.T) {
	problem := buildProblem(t)
	dir := t.TempDir()
	path := writeTempFile(t, dir, "bad.sol", "0-99-0\n")

	_, err := ReadSolution(path, problem)
	assert.Error(t, err)
}

func TestReadSolutionRejectsCapacityViolation(t *testing.T) {
	problem := buildProblem(t)
	dir := t.TempDir()
	path := writeTempFile(t, dir, "bad.sol", "0-1-2-3-4-0\n")

	_, err := ReadSolution(path, problem)
	assert.Error(t, err)
}
