// Package solution implements the side-table Solution and Route types: a
// set of routes over one domain.Problem plus node-indexed prev/next/route_of
// maps, mutated exclusively through the primitives in this package.
package solution

import (
	"strconv"
	"strings"

	"kgls/internal/domain"
)

// Route is a single vehicle tour: depot, customers in visiting order, depot.
// Customers is kept without the surrounding depot entries; Size and Volume
// are maintained incrementally by the mutation primitives below.
type Route struct {
	Index     int
	Depot     *domain.Node
	Customers []*domain.Node
	Size      int
	Volume    int
}

// newRoute builds a Route from a customer-only slice.
func newRoute(index int, depot *domain.Node, customers []*domain.Node) *Route {
	volume := 0
	for _, c := range customers {
		volume += c.Demand
	}
	return &Route{
		Index:     index,
		Depot:     depot,
		Customers: append([]*domain.Node(nil), customers...),
		Size:      len(customers),
		Volume:    volume,
	}
}

// Nodes returns depot, customers..., depot as a single slice.
func (r *Route) Nodes() []*domain.Node {
	nodes := make([]*domain.Node, 0, r.Size+2)
	nodes = append(nodes, r.Depot)
	nodes = append(nodes, r.Customers...)
	nodes = append(nodes, r.Depot)
	return nodes
}

// Edges returns the r.Size+1 domain.Edge values forming this route's tour,
// each carrying zero badness (badness is evaluator state, not route state).
func (r *Route) Edges() []domain.Edge {
	nodes := r.Nodes()
	edges := make([]domain.Edge, 0, len(nodes)-1)
	for i := 0; i < len(nodes)-1; i++ {
		edges = append(edges, domain.NewEdge(nodes[i], nodes[i+1], 0))
	}
	return edges
}

// String renders the route as a dash-joined list of node ids, matching the
// reference implementation's repr.
func (r *Route) String() string {
	nodes := r.Nodes()
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = strconv.Itoa(int(n.ID))
	}
	return strings.Join(parts, "-")
}

// indexOf returns the position of node within r.Customers, or -1.
func (r *Route) indexOf(node *domain.Node) int {
	for i, c := range r.Customers {
		if c.ID == node.ID {
			return i
		}
	}
	return -1
}
