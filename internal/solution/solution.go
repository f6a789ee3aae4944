package solution

import (
	"fmt"

	"kgls/internal/domain"
)

// debugAssertions gates the O(n) Validate walk. Release builds can disable
// it with SetDebugAssertions(false) or KGLS_DEBUG_ASSERTIONS=false; the
// mutation primitives preserve the solution's invariants by construction
// either way.
var debugAssertions = true

// SetDebugAssertions toggles whether mutation primitives self-validate.
func SetDebugAssertions(enabled bool) {
	debugAssertions = enabled
}

// Solution is a set of Routes over one domain.Problem plus the three
// node-indexed maps that are the sole way neighbors are recorded:
// prev[node], next[node], route_of[node]. Nodes are shared-immutable
// references into the Problem; only the maps and Routes belong to the
// Solution. Constructing moves is the only sanctioned way to mutate a
// Solution — everything outside this package treats it as append/remove of
// whole segments via RemoveNodes/InsertNodesAfter/Rearrange.
type Solution struct {
	Problem *domain.Problem
	Routes  []*Route

	prev    map[domain.NodeID]*domain.Node
	next    map[domain.NodeID]*domain.Node
	routeOf map[domain.NodeID]*Route

	nextRouteIndex int

	// Stats is a map keyed by operator name, such as "segment_move" or
	// "lin_kernighan". Nothing in this module writes or reads it: no
	// per-operator time or count is collected. Copy does not carry it over.
	Stats map[string]float64
}

// New creates an empty Solution (no routes) over problem.
func New(problem *domain.Problem) *Solution {
	s := &Solution{
		Problem: problem,
		prev:    make(map[domain.NodeID]*domain.Node, len(problem.Customers)),
		next:    make(map[domain.NodeID]*domain.Node, len(problem.Customers)),
		routeOf: make(map[domain.NodeID]*Route, len(problem.Customers)),
		Stats:   make(map[string]float64),
	}
	return s
}

// Prev returns the predecessor of node within its route (possibly the
// depot).
func (s *Solution) Prev(node *domain.Node) *domain.Node { return s.prev[node.ID] }

// Next returns the successor of node within its route (possibly the depot).
func (s *Solution) Next(node *domain.Node) *domain.Node { return s.next[node.ID] }

// RouteOf returns the Route currently containing node, or nil if node is
// unplanned or is the depot.
func (s *Solution) RouteOf(node *domain.Node) *Route { return s.routeOf[node.ID] }

// Neighbour returns Prev(node) for direction 0, Next(node) otherwise —
// mirroring the reference implementation's direction-indexed accessor used
// by operators that must work symmetrically in both traversal directions.
func (s *Solution) Neighbour(node *domain.Node, direction int) *domain.Node {
	if direction == 0 {
		return s.Prev(node)
	}
	return s.Next(node)
}

// AddRoute appends a new route visiting customers in order, wiring prev/
// next/route_of for every customer and for the depot boundary.
func (s *Solution) AddRoute(customers []*domain.Node) *Route {
	depot := s.Problem.Depot
	route := newRoute(s.nextRouteIndex, depot, customers)
	s.nextRouteIndex++
	s.Routes = append(s.Routes, route)

	nodes := route.Nodes()
	for i, node := range nodes {
		if node.IsDepot {
			continue
		}
		s.prev[node.ID] = nodes[i-1]
		s.next[node.ID] = nodes[i+1]
		s.routeOf[node.ID] = route
	}
	return route
}

// RemoveNodes detaches a contiguous segment of customers (in route order,
// forward or reversed) from its route, splicing the route's remaining
// neighbors directly together. It is the caller's responsibility to
// subsequently re-insert the nodes via InsertNodesAfter or AddRoute.
func (s *Solution) RemoveNodes(nodes []*domain.Node) {
	if len(nodes) == 0 {
		return
	}
	route := s.RouteOf(nodes[0])

	var leftNeighbor, rightNeighbor *domain.Node
	if len(nodes) > 1 && s.Next(nodes[0]) != nodes[1] {
		// segment supplied in reverse traversal order
		leftNeighbor = s.Prev(nodes[len(nodes)-1])
		rightNeighbor = s.Next(nodes[0])
	} else {
		leftNeighbor = s.Prev(nodes[0])
		rightNeighbor = s.Next(nodes[len(nodes)-1])
	}

	s.next[leftNeighbor.ID] = rightNeighbor
	s.prev[rightNeighbor.ID] = leftNeighbor

	for _, node := range nodes {
		delete(s.routeOf, node.ID)
		route.Size--
		route.Volume -= node.Demand
		if idx := route.indexOf(node); idx >= 0 {
			route.Customers = append(route.Customers[:idx], route.Customers[idx+1:]...)
		}
	}
}

// InsertNodesAfter splices nodesToInsert into route immediately after
// afterNode (which may be the route's depot, meaning "at the front").
func (s *Solution) InsertNodesAfter(nodesToInsert []*domain.Node, afterNode *domain.Node, route *Route) {
	if len(nodesToInsert) == 0 {
		return
	}

	for i, node := range nodesToInsert {
		if i+1 < len(nodesToInsert) {
			s.next[node.ID] = nodesToInsert[i+1]
			s.prev[nodesToInsert[i+1].ID] = node
		}
		s.routeOf[node.ID] = route
	}

	var oldNext *domain.Node
	if afterNode.IsDepot {
		if route.Size > 0 {
			oldNext = route.Customers[0]
		} else {
			oldNext = route.Depot
		}
	} else {
		oldNext = s.Next(afterNode)
	}

	s.next[afterNode.ID] = nodesToInsert[0]
	s.prev[nodesToInsert[0].ID] = afterNode

	last := nodesToInsert[len(nodesToInsert)-1]
	s.next[last.ID] = oldNext
	s.prev[oldNext.ID] = last

	insertAt := 0
	if !afterNode.IsDepot {
		insertAt = route.indexOf(afterNode) + 1
	}
	route.Customers = append(route.Customers[:insertAt:insertAt],
		append(append([]*domain.Node{}, nodesToInsert...), route.Customers[insertAt:]...)...)
	for _, node := range nodesToInsert {
		route.Size++
		route.Volume += node.Demand
	}
}

// Rearrange replaces route's node order wholesale (depot, customers..., depot)
// and re-wires prev/next for every customer. Used by intra-route operators
// (Lin-Kernighan) that compute a full new tour rather than a localized splice.
func (s *Solution) Rearrange(route *Route, order []*domain.Node) {
	if !order[0].IsDepot || !order[len(order)-1].IsDepot {
		panic("solution: Rearrange requires a depot-bounded node order")
	}

	for i, node := range order {
		if node.IsDepot {
			continue
		}
		s.prev[node.ID] = order[i-1]
		s.next[node.ID] = order[i+1]
	}

	route.Customers = append([]*domain.Node(nil), order[1:len(order)-1]...)
	if debugAssertions {
		s.Validate()
	}
}

// RemoveEmptyRoutes drops zero-size routes from s.Routes. The remaining
// *Route values and their Index fields are left unchanged, so move
// disjointness checks, which compare *Route pointers, survive across the call.
func (s *Solution) RemoveEmptyRoutes() {
	kept := s.Routes[:0]
	for _, r := range s.Routes {
		if r.Size > 0 {
			kept = append(kept, r)
		}
	}
	s.Routes = kept
}

// Copy returns a deep copy of the solution: new Routes and maps, but shared
// domain.Node pointers (Nodes belong to the Problem, never to a Solution).
func (s *Solution) Copy() *Solution {
	dup := New(s.Problem)
	for _, r := range s.Routes {
		dup.AddRoute(r.Customers)
	}
	return dup
}

// Validate walks every invariant listed in the data model: route link
// consistency, size/volume bookkeeping, capacity, and that every customer is
// planned exactly once. It panics on the first violation — invariant
// breakage is a programmer error, never a recoverable runtime condition.
func (s *Solution) Validate() {
	if !debugAssertions {
		return
	}

	visited := make(map[domain.NodeID]bool, len(s.Problem.Customers))

	for _, route := range s.Routes {
		if route.Volume > s.Problem.Capacity {
			panic(fmt.Sprintf("solution: route %d exceeds capacity: volume=%d capacity=%d", route.Index, route.Volume, s.Problem.Capacity))
		}
		volume := 0
		for _, c := range route.Customers {
			if c.IsDepot {
				panic("solution: depot found among route customers")
			}
			if s.RouteOf(c) != route {
				panic(fmt.Sprintf("solution: node %d route_of mismatch", c.ID))
			}
			if visited[c.ID] {
				panic(fmt.Sprintf("solution: node %d planned more than once", c.ID))
			}
			visited[c.ID] = true
			volume += c.Demand
		}
		if volume != route.Volume || len(route.Customers) != route.Size {
			panic(fmt.Sprintf("solution: route %d size/volume mismatch", route.Index))
		}

		if route.Size > 0 {
			if s.Prev(route.Customers[0]) != route.Depot {
				panic(fmt.Sprintf("solution: route %d first customer's prev is not the depot", route.Index))
			}
			if s.Next(route.Customers[route.Size-1]) != route.Depot {
				panic(fmt.Sprintf("solution: route %d last customer's next is not the depot", route.Index))
			}
		}
	}

	for _, node := range s.Problem.Customers {
		if !visited[node.ID] {
			panic(fmt.Sprintf("solution: node %d not planned", node.ID))
		}
		prev := s.Prev(node)
		if !prev.IsDepot && s.Next(prev) != node {
			panic(fmt.Sprintf("solution: broken link before node %d", node.ID))
		}
		next := s.Next(node)
		if !next.IsDepot && s.Prev(next) != node {
			panic(fmt.Sprintf("solution: broken link after node %d", node.ID))
		}
	}
}
