package operators

import (
	"sort"

	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/solution"
)

// relocation is a single node ejected from one route and reinserted between
// two adjacent nodes of another route, as one link of a RelocationChain.
type relocation struct {
	nodeToMove   *domain.Node
	originalPrev *domain.Node
	originalNext *domain.Node
	fromRoute    *solution.Route
	toRoute      *solution.Route
	moveAfter    *domain.Node
	moveBefore   *domain.Node
	improvement  float64
}

// forbiddenNodes are the nodes a later ejection in the same chain must not
// touch: the moved node itself, the two nodes it now sits between, and the
// two nodes it used to sit between. Omitting the original neighbours would
// let a later ejection immediately undo this relocation.
func (r relocation) forbiddenNodes() []domain.NodeID {
	return []domain.NodeID{r.nodeToMove.ID, r.originalPrev.ID, r.originalNext.ID, r.moveAfter.ID, r.moveBefore.ID}
}

// RelocationChain is an ejection chain: relocating one node may break
// capacity in its destination route, which is repaired by ejecting a node
// from that route and relocating it in turn, up to depth_relocation_chain
// relocations deep. Intermediate infeasibility is allowed; only the final
// chain must leave every route feasible.
type RelocationChain struct {
	relocations       []relocation
	forbiddenNodes    map[domain.NodeID]bool
	forbiddenInsert   map[edgeKey]bool
	relocatedNodes    map[domain.NodeID]bool
	demandChange      map[*solution.Route]int
	improvement       float64
}

func newRelocationChain() *RelocationChain {
	return &RelocationChain{
		forbiddenNodes:  make(map[domain.NodeID]bool),
		forbiddenInsert: make(map[edgeKey]bool),
		relocatedNodes:  make(map[domain.NodeID]bool),
		demandChange:    make(map[*solution.Route]int),
	}
}

func (c *RelocationChain) clone() *RelocationChain {
	dup := &RelocationChain{
		relocations:     append([]relocation(nil), c.relocations...),
		forbiddenNodes:  make(map[domain.NodeID]bool, len(c.forbiddenNodes)),
		forbiddenInsert: make(map[edgeKey]bool, len(c.forbiddenInsert)),
		relocatedNodes:  make(map[domain.NodeID]bool, len(c.relocatedNodes)),
		demandChange:    make(map[*solution.Route]int, len(c.demandChange)),
		improvement:     c.improvement,
	}
	for k, v := range c.forbiddenNodes {
		dup.forbiddenNodes[k] = v
	}
	for k, v := range c.forbiddenInsert {
		dup.forbiddenInsert[k] = v
	}
	for k, v := range c.relocatedNodes {
		dup.relocatedNodes[k] = v
	}
	for k, v := range c.demandChange {
		dup.demandChange[k] = v
	}
	return dup
}

func (c *RelocationChain) addRelocation(s *solution.Solution, r relocation) {
	c.relocations = append(c.relocations, r)
	for _, id := range r.forbiddenNodes() {
		c.forbiddenNodes[id] = true
	}
	c.forbiddenInsert[newEdgeKey(r.moveAfter, r.moveBefore)] = true
	c.forbiddenInsert[newEdgeKey(s.Prev(r.nodeToMove), r.nodeToMove)] = true
	c.forbiddenInsert[newEdgeKey(r.nodeToMove, s.Next(r.nodeToMove))] = true

	c.demandChange[r.fromRoute] -= r.nodeToMove.Demand
	c.demandChange[r.toRoute] += r.nodeToMove.Demand

	c.relocatedNodes[r.nodeToMove.ID] = true
	c.improvement += r.improvement
}

func (c *RelocationChain) canInsertBetween(n1, n2 *domain.Node) bool {
	if c.forbiddenInsert[newEdgeKey(n1, n2)] {
		return false
	}
	return !c.relocatedNodes[n1.ID] && !c.relocatedNodes[n2.ID]
}

// Routes implements Move.
func (c *RelocationChain) Routes() []*solution.Route {
	seen := make(map[*solution.Route]bool)
	var routes []*solution.Route
	for _, r := range c.relocations {
		for _, route := range [2]*solution.Route{r.fromRoute, r.toRoute} {
			if !seen[route] {
				seen[route] = true
				routes = append(routes, route)
			}
		}
	}
	return routes
}

// Improvement implements Move.
func (c *RelocationChain) Improvement() float64 { return c.improvement }

// IsDisjoint implements Move.
func (c *RelocationChain) IsDisjoint(other Move) bool {
	mine := c.Routes()
	theirs := other.Routes()
	for _, a := range mine {
		for _, b := range theirs {
			if a == b {
				return false
			}
		}
	}
	return true
}

// Execute implements Move, applying each relocation in the chain in order.
func (c *RelocationChain) Execute(s *solution.Solution) {
	for _, r := range c.relocations {
		s.RemoveNodes([]*domain.Node{r.nodeToMove})
		s.InsertNodesAfter([]*domain.Node{r.nodeToMove}, r.moveAfter, r.toRoute)
	}
}

// insertNode evaluates moving nodeToMove next to insertNextTo, choosing
// whichever side (before or after insertNextTo) is cheaper, and returns the
// resulting relocation if it would still improve the chain overall.
func insertNode(
	s *solution.Solution,
	ev *evaluator.CostEvaluator,
	nodeToMove *domain.Node,
	removalGain float64,
	insertNextTo *domain.Node,
	chain *RelocationChain,
) *relocation {
	prev := s.Prev(insertNextTo)
	next := s.Next(insertNextTo)

	costBefore := float64(ev.Distance(nodeToMove, prev) + ev.Distance(nodeToMove, insertNextTo) - ev.Distance(prev, insertNextTo))
	costAfter := float64(ev.Distance(nodeToMove, next) + ev.Distance(nodeToMove, insertNextTo) - ev.Distance(next, insertNextTo))

	var insertionCost float64
	var insertAfter, insertBefore *domain.Node
	if costBefore <= costAfter {
		insertionCost = costBefore
		insertAfter, insertBefore = prev, insertNextTo
	} else {
		insertionCost = costAfter
		insertAfter, insertBefore = insertNextTo, next
	}

	costChange := removalGain - insertionCost
	if chain.improvement+costChange <= 0 {
		return nil
	}
	if !chain.canInsertBetween(insertAfter, insertBefore) {
		return nil
	}

	return &relocation{
		nodeToMove:   nodeToMove,
		originalPrev: s.Prev(nodeToMove),
		originalNext: s.Next(nodeToMove),
		fromRoute:    s.RouteOf(nodeToMove),
		toRoute:      s.RouteOf(insertNextTo),
		moveAfter:    insertAfter,
		moveBefore:   insertBefore,
		improvement:  costChange,
	}
}

// searchRelocationChainsFrom recursively ejects nodeToMove and tries
// reinserting it next to every neighborhood node in a different route,
// recursing into a follow-up ejection whenever the destination route would
// otherwise end up over capacity. Accumulates every feasible chain found
// into valid.
func searchRelocationChainsFrom(
	valid *[]Move,
	s *solution.Solution,
	ev *evaluator.CostEvaluator,
	nodeToMove *domain.Node,
	maxDepth int,
	currentDepth int,
	chain *RelocationChain,
) {
	if currentDepth >= maxDepth {
		return
	}
	if chain == nil {
		chain = newRelocationChain()
	}

	originalPrev := s.Prev(nodeToMove)
	originalNext := s.Next(nodeToMove)
	removalImprovement := float64(ev.Distance(nodeToMove, originalPrev) + ev.Distance(nodeToMove, originalNext) - ev.Distance(originalPrev, originalNext))

	candidatesByRoute := make(map[*solution.Route][]relocation)
	fromRoute := s.RouteOf(nodeToMove)
	for _, neighbour := range ev.Neighborhood(nodeToMove) {
		neighbourRoute := s.RouteOf(neighbour)
		if neighbourRoute == fromRoute || chain.relocatedNodes[neighbour.ID] {
			continue
		}
		if r := insertNode(s, ev, nodeToMove, removalImprovement, neighbour, chain); r != nil {
			candidatesByRoute[neighbourRoute] = append(candidatesByRoute[neighbourRoute], *r)
		}
	}

	destRoutes := make([]*solution.Route, 0, len(candidatesByRoute))
	for r := range candidatesByRoute {
		destRoutes = append(destRoutes, r)
	}
	sort.Slice(destRoutes, func(i, j int) bool { return destRoutes[i].Index < destRoutes[j].Index })

	for _, destRoute := range destRoutes {
		candidates := candidatesByRoute[destRoute]
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.improvement > best.improvement {
				best = c
			}
		}

		extended := chain.clone()
		extended.addRelocation(s, best)

		newVolume := destRoute.Volume + extended.demandChange[destRoute]
		if ev.IsFeasible(newVolume) {
			*valid = append(*valid, extended)
			continue
		}
		if len(extended.relocations) >= maxDepth {
			continue
		}
		for _, candidateNode := range destRoute.Customers {
			if !ev.IsFeasible(newVolume - candidateNode.Demand) {
				continue
			}
			if extended.forbiddenNodes[candidateNode.ID] {
				continue
			}
			searchRelocationChainsFrom(valid, s, ev, candidateNode, maxDepth, currentDepth+1, extended)
		}
	}
}

// SearchRelocationChains runs searchRelocationChainsFrom over every start
// node and returns all feasible chains found, ordered by descending
// improvement.
func SearchRelocationChains(s *solution.Solution, ev *evaluator.CostEvaluator, startNodes []*domain.Node, maxDepth int) []Move {
	var moves []Move
	for _, n := range startNodes {
		searchRelocationChainsFrom(&moves, s, ev, n, maxDepth, 0, nil)
	}
	sortByImprovement(moves)
	return moves
}
