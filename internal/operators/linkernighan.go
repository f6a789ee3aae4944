package operators

import (
	"sort"

	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/solution"
)

// lkEdge is an undirected edge between two route nodes, used by the
// Lin-Kernighan searcher to track which connections have been removed or
// added so far within one candidate move.
type lkEdge struct {
	node1, node2 *domain.Node
}

func newLKEdge(n1, n2 *domain.Node) lkEdge { return lkEdge{n1, n2} }

func (e lkEdge) key() edgeKey { return newEdgeKey(e.node1, e.node2) }

type lkEdgeSet map[edgeKey]lkEdge

func (s lkEdgeSet) add(e lkEdge)         { s[e.key()] = e }
func (s lkEdgeSet) has(e lkEdge) bool    { _, ok := s[e.key()]; return ok }
func (s lkEdgeSet) copy() lkEdgeSet {
	dup := make(lkEdgeSet, len(s))
	for k, v := range s {
		dup[k] = v
	}
	return dup
}

// NOptMove is a sequential edge exchange within a single route: a set of
// removed tour edges is replaced with an equally sized set of new edges,
// producing one reconnected Hamiltonian cycle through the route's nodes.
// Depth (len(removedEdges)) ranges from 2 up to depth_lin_kernighan.
type NOptMove struct {
	route        *solution.Route
	removedEdges lkEdgeSet
	newEdges     lkEdgeSet
	improvement  float64
}

func (m *NOptMove) Routes() []*solution.Route { return []*solution.Route{m.route} }
func (m *NOptMove) Improvement() float64      { return m.improvement }

// IsDisjoint is conservative: any two Lin-Kernighan moves touching the same
// route conflict, since both rewrite the route's full node order.
func (m *NOptMove) IsDisjoint(other Move) bool {
	for _, r := range other.Routes() {
		if r == m.route {
			return false
		}
	}
	return true
}

// Execute rebuilds the route's successor graph from its current links minus
// removedEdges plus newEdges, then walks it from the depot to recover the
// new node order and hands it to solution.Rearrange.
func (m *NOptMove) Execute(s *solution.Solution) {
	route := m.route
	nodes := route.Nodes()

	neighbours := make(map[domain.NodeID][]*domain.Node, len(nodes))
	for _, node := range nodes {
		var nb []*domain.Node
		if node.IsDepot {
			nb = []*domain.Node{route.Customers[len(route.Customers)-1], route.Customers[0]}
		} else {
			nb = []*domain.Node{s.Prev(node), s.Next(node)}
		}

		for _, r := range m.removedEdges {
			switch {
			case r.node1.ID == node.ID:
				nb = removeNode(nb, r.node2)
			case r.node2.ID == node.ID:
				nb = removeNode(nb, r.node1)
			}
		}
		for _, a := range m.newEdges {
			switch {
			case a.node1.ID == node.ID:
				nb = append(nb, a.node2)
			case a.node2.ID == node.ID:
				nb = append(nb, a.node1)
			}
		}
		neighbours[node.ID] = nb
	}

	curNode := route.Depot
	newRoute := []*domain.Node{curNode}
	visited := map[domain.NodeID]bool{curNode.ID: true}

	for len(newRoute) < route.Size+1 {
		nb := neighbours[curNode.ID]
		var next *domain.Node
		if !visited[nb[1].ID] {
			next = nb[1]
		} else {
			next = nb[0]
		}
		curNode = next
		visited[curNode.ID] = true
		newRoute = append(newRoute, curNode)
	}
	newRoute = append(newRoute, route.Depot)

	s.Rearrange(route, newRoute)
}

func removeNode(nodes []*domain.Node, target *domain.Node) []*domain.Node {
	for i, n := range nodes {
		if n.ID == target.ID {
			return append(nodes[:i:i], nodes[i+1:]...)
		}
	}
	return nodes
}

type neighbourCost struct {
	node *domain.Node
	cost int
}

// lkSearcher performs the depth-bounded recursive edge-exchange search
// rooted at one (start_node, end_node) pair within a route.
type lkSearcher struct {
	route               *solution.Route
	endNode             *domain.Node
	maxDepth            int
	possibleNewNeighbours map[domain.NodeID][]neighbourCost
	currentNeighbours   map[domain.NodeID][]neighbourCost
	completionCosts     map[domain.NodeID]int
	minCompletionCost   int

	valid []Move
}

func (l *lkSearcher) search(startNode *domain.Node, addedEdges, removedEdges lkEdgeSet, cumImprovement int, changesMade int) {
	if changesMade > 1 {
		completionCost, ok := l.completionCosts[startNode.ID]
		if !ok {
			completionCost = 1 << 30
		}
		if cumImprovement-completionCost > 0 {
			candidate := newLKEdge(l.endNode, startNode)
			if !addedEdges.has(candidate) {
				extended := addedEdges.copy()
				extended.add(candidate)

				if !l.hasSubRoutes(extended, removedEdges) {
					l.valid = append(l.valid, &NOptMove{
						route:        l.route,
						removedEdges: removedEdges.copy(),
						newEdges:     extended,
						improvement:  float64(cumImprovement - completionCost),
					})
				}
			}
		}
	}

	if changesMade >= l.maxDepth {
		return
	}

	for _, candidate := range l.possibleNewNeighbours[startNode.ID] {
		if cumImprovement <= candidate.cost {
			continue
		}
		candidateEdge := newLKEdge(startNode, candidate.node)
		if addedEdges.has(candidateEdge) {
			continue
		}

		for _, broken := range l.currentNeighbours[candidate.node.ID] {
			if cumImprovement-candidate.cost+broken.cost <= l.minCompletionCost {
				continue
			}
			removedEdge := newLKEdge(candidate.node, broken.node)
			if removedEdges.has(removedEdge) {
				continue
			}

			extendedAdded := addedEdges.copy()
			extendedAdded.add(candidateEdge)
			extendedRemoved := removedEdges.copy()
			extendedRemoved.add(removedEdge)

			l.search(broken.node, extendedAdded, extendedRemoved, cumImprovement-candidate.cost+broken.cost, changesMade+1)
		}
	}
}

// hasSubRoutes reports whether applying addedEdges/removedEdges to the
// route's current link structure would split it into more than one cycle,
// checked by a BFS reachability walk from endNode.
func (l *lkSearcher) hasSubRoutes(addedEdges, removedEdges lkEdgeSet) bool {
	graph := make(map[domain.NodeID][]*domain.Node, len(l.currentNeighbours))
	for id, nb := range l.currentNeighbours {
		neighbours := []*domain.Node{nb[0].node, nb[1].node}
		for _, r := range removedEdges {
			switch {
			case r.node1.ID == id:
				neighbours = removeNode(neighbours, r.node2)
			case r.node2.ID == id:
				neighbours = removeNode(neighbours, r.node1)
			}
		}
		for _, a := range addedEdges {
			switch {
			case a.node1.ID == id:
				neighbours = append(neighbours, a.node2)
			case a.node2.ID == id:
				neighbours = append(neighbours, a.node1)
			}
		}
		graph[id] = neighbours
	}

	visited := make(map[domain.NodeID]bool, len(graph))
	queue := []*domain.Node{l.endNode}
	visited[l.endNode.ID] = true
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, nb := range graph[node.ID] {
			if !visited[nb.ID] {
				visited[nb.ID] = true
				queue = append(queue, nb)
			}
		}
	}

	return len(visited) != len(graph)
}

// interiorCustomers returns customers with the route's first and last
// customer dropped, i.e. without the depot's two current neighbours. The
// depot is never offered a "new" edge back to a node it is already
// connected to.
func interiorCustomers(customers []*domain.Node) []*domain.Node {
	if len(customers) <= 2 {
		return nil
	}
	return customers[1 : len(customers)-1]
}

// SearchLKMoves searches one route for profitable sequential edge
// exchanges, each removing and adding between 2 and maxDepth edges.
func SearchLKMoves(s *solution.Solution, ev *evaluator.CostEvaluator, route *solution.Route, maxDepth int) []Move {
	depot := route.Depot
	customers := route.Customers
	if len(customers) == 0 {
		return nil
	}
	routeNodes := route.Nodes()

	possibleNewNeighbours := make(map[domain.NodeID][]neighbourCost, len(routeNodes))
	var depotCandidates []neighbourCost
	for _, c := range interiorCustomers(customers) {
		depotCandidates = append(depotCandidates, neighbourCost{c, ev.Distance(depot, c)})
	}
	possibleNewNeighbours[depot.ID] = depotCandidates

	for _, customer := range customers {
		prev := s.Prev(customer)
		next := s.Next(customer)
		var candidates []neighbourCost
		for _, node := range routeNodes {
			if node.ID == customer.ID || node.ID == prev.ID || node.ID == next.ID {
				continue
			}
			candidates = append(candidates, neighbourCost{node, ev.Distance(customer, node)})
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].cost < candidates[j].cost })
		if len(candidates) > 6 {
			candidates = candidates[:6]
		}
		possibleNewNeighbours[customer.ID] = candidates
	}

	currentNeighbours := make(map[domain.NodeID][]neighbourCost, len(routeNodes))
	for _, node := range customers {
		currentNeighbours[node.ID] = []neighbourCost{
			{s.Prev(node), ev.Distance(node, s.Prev(node))},
			{s.Next(node), ev.Distance(node, s.Next(node))},
		}
	}
	currentNeighbours[depot.ID] = []neighbourCost{
		{customers[len(customers)-1], ev.Distance(depot, customers[len(customers)-1])},
		{customers[0], ev.Distance(depot, customers[0])},
	}

	seedNodes := make([]*domain.Node, 0, len(customers)+1)
	seedNodes = append(seedNodes, customers...)
	seedNodes = append(seedNodes, depot)

	// Every route edge seeds the search from both of its endpoints, longest
	// edges first.
	type lkSeed struct {
		start, end *domain.Node
		length     int
	}
	var seeds []lkSeed
	for _, startNode := range seedNodes {
		for _, nb := range currentNeighbours[startNode.ID] {
			seeds = append(seeds, lkSeed{startNode, nb.node, nb.cost})
		}
	}
	sort.SliceStable(seeds, func(i, j int) bool { return seeds[i].length > seeds[j].length })

	var moves []Move
	for _, seed := range seeds {
		startNode, endNode := seed.start, seed.end

		completionCosts := make(map[domain.NodeID]int, len(routeNodes))
		forbidden1 := currentNeighbours[endNode.ID][0].node
		forbidden2 := currentNeighbours[endNode.ID][1].node
		for _, node := range routeNodes {
			if node.ID == endNode.ID || node.ID == forbidden1.ID || node.ID == forbidden2.ID {
				continue
			}
			completionCosts[node.ID] = ev.Distance(endNode, node)
		}
		minCompletion := 1 << 30
		for _, c := range completionCosts {
			if c < minCompletion {
				minCompletion = c
			}
		}

		searcher := &lkSearcher{
			route:                 route,
			endNode:               endNode,
			maxDepth:              maxDepth,
			possibleNewNeighbours: possibleNewNeighbours,
			currentNeighbours:     currentNeighbours,
			completionCosts:       completionCosts,
			minCompletionCost:     minCompletion,
		}
		removed := lkEdgeSet{}
		removed.add(newLKEdge(endNode, startNode))
		searcher.search(startNode, lkEdgeSet{}, removed, ev.Distance(startNode, endNode), 1)
		moves = append(moves, searcher.valid...)
	}

	sortByImprovement(moves)
	return moves
}
