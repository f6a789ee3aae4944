package solution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgls/internal/domain"
)

func testProblem(t *testing.T) (*domain.Problem, []*domain.Node) {
	t.Helper()
	depot := &domain.Node{ID: 0, X: 50, Y: 20, IsDepot: true}
	n1 := &domain.Node{ID: 1, X: 0, Y: 10, Demand: 1}
	n2 := &domain.Node{ID: 2, X: 0, Y: 20, Demand: 1}
	n3 := &domain.Node{ID: 3, X: 0, Y: 30, Demand: 1}
	n4 := &domain.Node{ID: 4, X: 100, Y: 10, Demand: 1}
	n5 := &domain.Node{ID: 5, X: 100, Y: 20, Demand: 1}

	problem, err := domain.NewProblem("test", []*domain.Node{depot, n1, n2, n3, n4, n5}, 3, 0)
	require.NoError(t, err)
	return problem, []*domain.Node{n1, n2, n3, n4, n5}
}

func TestAddRouteWiresLinks(t *testing.T) {
	problem, nodes := testProblem(t)
	s := New(problem)
	route := s.AddRoute(nodes[:3])

	assert.Equal(t, 3, route.Size)
	assert.Equal(t, 3, route.Volume)
	assert.True(t, s.Prev(nodes[0]).IsDepot)
	assert.Equal(t, nodes[1], s.Next(nodes[0]))
	assert.Equal(t, nodes[0], s.Prev(nodes[1]))
	assert.True(t, s.Next(nodes[2]).IsDepot)
	assert.Equal(t, route, s.RouteOf(nodes[1]))
}

func TestRemoveAndInsertNodes(t *testing.T) {
	problem, nodes := testProblem(t)
	s := New(problem)
	route1 := s.AddRoute(nodes[:4]) // 1,2,3,4
	route2 := s.AddRoute(nodes[4:]) // 5

	s.RemoveNodes([]*domain.Node{nodes[3]}) // remove node 4
	assert.Equal(t, 3, route1.Size)
	assert.True(t, s.Next(nodes[2]).IsDepot)

	s.InsertNodesAfter([]*domain.Node{nodes[3]}, route2.Depot, route2)
	assert.Equal(t, 2, route2.Size)
	assert.Equal(t, route2, s.RouteOf(nodes[3]))
	assert.Equal(t, nodes[3], s.Prev(nodes[4]))

	s.Validate()
}

func TestRearrangeRoute(t *testing.T) {
	problem, nodes := testProblem(t)
	s := New(problem)
	route := s.AddRoute(nodes[:3])

	order := []*domain.Node{route.Depot, nodes[2], nodes[1], nodes[0], route.Depot}
	s.Rearrange(route, order)

	assert.Equal(t, nodes[1], s.Prev(nodes[0]))
	assert.True(t, s.Next(nodes[0]).IsDepot)
	assert.True(t, s.Prev(nodes[2]).IsDepot)
}

func TestCopySharesNodesNotMaps(t *testing.T) {
	problem, nodes := testProblem(t)
	s := New(problem)
	s.AddRoute(nodes[:3])
	s.AddRoute(nodes[3:])

	dup := s.Copy()
	assert.Equal(t, len(s.Routes), len(dup.Routes))
	assert.Equal(t, s.RouteOf(nodes[0]).Customers[0], dup.RouteOf(nodes[0]).Customers[0])

	dup.RemoveNodes([]*domain.Node{nodes[0]})
	assert.NotEqual(t, s.RouteOf(nodes[0]) == nil, dup.RouteOf(nodes[0]) == nil)
}

func TestValidatePanicsOnCapacityViolation(t *testing.T) {
	problem, nodes := testProblem(t)
	s := New(problem)
	route := s.AddRoute(nodes[:4]) // volume 4 > capacity 3
	_ = route

	assert.Panics(t, func() { s.Validate() })
}

func TestPoolReuse(t *testing.T) {
	problem, nodes := testProblem(t)
	pool := NewPool()

	s1 := pool.Acquire(problem)
	s1.AddRoute(nodes[:2])
	pool.Release(s1)

	s2 := pool.Acquire(problem)
	assert.Equal(t, 0, len(s2.Routes))
	assert.Nil(t, s2.RouteOf(nodes[0]))
}
