// Package evaluator computes distances, per-node neighborhoods and the
// guided-local-search edge penalties that bias the search away from
// repeatedly revisiting the same long edges.
package evaluator

import (
	"container/heap"
	"math"
	"sort"

	"kgls/internal/domain"
	"kgls/internal/solution"
)

// badnessCriterion selects how determineEdgeBadness scores an edge. The
// evaluator rotates through all three on successive calls so that repeated
// perturbation rounds don't keep penalizing edges along a single axis.
type badnessCriterion int

const (
	criterionWidth badnessCriterion = iota
	criterionLength
	criterionWidthLength
)

var criterionRotation = [...]badnessCriterion{criterionWidth, criterionLength, criterionWidthLength}

// CostEvaluator owns the distance and penalized-distance matrices, the
// per-customer nearest-neighbor lists, and the edge-penalty ranking used by
// the guided local search to decide which edge to penalize next. One
// CostEvaluator is built per problem instance and reused for the whole run.
type CostEvaluator struct {
	capacity         int
	neighborhoodSize int

	nodeIndex map[domain.NodeID]int
	costs     [][]int
	penalized [][]int

	neighborhood map[domain.NodeID][]*domain.Node

	penalizationEnabled bool
	edgePenalties       map[domain.EdgeKey]int
	baselineCost        int

	ranking      edgeHeap
	criterionIdx int
}

// New builds a CostEvaluator over every node in problem (depot and
// customers), indexing neighborhoodSize nearest customers per customer node.
func New(problem *domain.Problem, neighborhoodSize int) *CostEvaluator {
	ev := &CostEvaluator{
		capacity:         problem.Capacity,
		neighborhoodSize: neighborhoodSize,
		nodeIndex:        make(map[domain.NodeID]int, len(problem.Nodes)),
		edgePenalties:    make(map[domain.EdgeKey]int),
		neighborhood:     make(map[domain.NodeID][]*domain.Node, len(problem.Customers)),
	}

	for i, n := range problem.Nodes {
		ev.nodeIndex[n.ID] = i
	}

	n := len(problem.Nodes)
	ev.costs = make([][]int, n)
	ev.penalized = make([][]int, n)
	for i, node1 := range problem.Nodes {
		ev.costs[i] = make([]int, n)
		ev.penalized[i] = make([]int, n)
		for j, node2 := range problem.Nodes {
			d := euclideanDistance(node1, node2)
			ev.costs[i][j] = d
			ev.penalized[i][j] = d
		}
	}

	for _, node := range problem.Customers {
		ev.neighborhood[node.ID] = ev.nearestNeighbors(node, problem.Nodes)
	}

	var sum float64
	for _, node := range problem.Customers {
		for _, other := range ev.neighborhood[node.ID] {
			sum += float64(ev.rawDistance(node, other))
		}
	}
	ev.baselineCost = int(sum / float64(neighborhoodSize*n))

	return ev
}

func euclideanDistance(n1, n2 *domain.Node) int {
	dx := n1.X - n2.X
	dy := n1.Y - n2.Y
	return int(math.Round(math.Sqrt(dx*dx + dy*dy)))
}

// nearestNeighbors returns up to ev.neighborhoodSize non-depot nodes other
// than node itself, sorted by ascending distance to node.
func (ev *CostEvaluator) nearestNeighbors(node *domain.Node, nodes []*domain.Node) []*domain.Node {
	candidates := make([]*domain.Node, 0, len(nodes)-1)
	for _, other := range nodes {
		if other.IsDepot || other.ID == node.ID {
			continue
		}
		candidates = append(candidates, other)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return euclideanDistance(node, candidates[i]) < euclideanDistance(node, candidates[j])
	})
	if len(candidates) > ev.neighborhoodSize {
		candidates = candidates[:ev.neighborhoodSize]
	}
	return candidates
}

// Neighborhood returns the nearest customers to node, nearest first.
func (ev *CostEvaluator) Neighborhood(node *domain.Node) []*domain.Node {
	return ev.neighborhood[node.ID]
}

// IsFeasible reports whether volume fits within the instance's vehicle
// capacity.
func (ev *CostEvaluator) IsFeasible(volume int) bool {
	return volume <= ev.capacity
}

func (ev *CostEvaluator) rawDistance(n1, n2 *domain.Node) int {
	return ev.costs[ev.nodeIndex[n1.ID]][ev.nodeIndex[n2.ID]]
}

// RawDistance returns the unpenalized euclidean distance between n1 and n2,
// regardless of whether penalization is currently enabled. Used by report
// rendering, which always wants the true route cost.
func (ev *CostEvaluator) RawDistance(n1, n2 *domain.Node) int {
	return ev.rawDistance(n1, n2)
}

// Distance returns the cost of traveling directly between n1 and n2: the raw
// euclidean distance, or the GLS-penalized distance once EnablePenalization
// has been called.
func (ev *CostEvaluator) Distance(n1, n2 *domain.Node) int {
	i, j := ev.nodeIndex[n1.ID], ev.nodeIndex[n2.ID]
	if !ev.penalizationEnabled {
		return ev.costs[i][j]
	}
	return ev.penalized[i][j]
}

// EnablePenalization switches Distance over to the penalized matrix, used
// while the guided local search is actively biasing move selection away from
// penalized edges.
func (ev *CostEvaluator) EnablePenalization() { ev.penalizationEnabled = true }

// DisablePenalization switches Distance back to raw euclidean costs, used
// when reporting the solution's true tour length.
func (ev *CostEvaluator) DisablePenalization() { ev.penalizationEnabled = false }

// Penalize increments the penalty count on the edge between n1 and n2
// without touching the ranking heap or the penalized-distance matrix.
func (ev *CostEvaluator) Penalize(n1, n2 *domain.Node) {
	ev.edgePenalties[domain.NewEdgeKey(n1, n2)]++
}

// DetermineEdgeBadness scores every edge currently in routes under the
// active badness criterion, rebuilds the penalty ranking heap from those
// scores, and rotates to the next criterion for the following call.
func (ev *CostEvaluator) DetermineEdgeBadness(routes []*solution.Route) {
	criterion := criterionRotation[ev.criterionIdx%len(criterionRotation)]

	ev.ranking = ev.ranking[:0]
	for _, route := range routes {
		var centerX, centerY float64
		if criterion == criterionWidth || criterion == criterionWidthLength {
			centerX, centerY = ev.routeCenter(route)
		}

		for _, edge := range route.Edges() {
			value := ev.edgeValue(criterion, edge, centerX, centerY, route.Depot)
			edge.Badness = value / (1 + float64(ev.edgePenalties[edge.Key]))
			ev.ranking = append(ev.ranking, edge)
		}
	}
	heap.Init(&ev.ranking)

	ev.criterionIdx++
}

func (ev *CostEvaluator) edgeValue(criterion badnessCriterion, edge domain.Edge, centerX, centerY float64, depot *domain.Node) float64 {
	length := float64(ev.rawDistance(edge.Node1, edge.Node2))
	switch criterion {
	case criterionLength:
		return length
	case criterionWidth:
		return ev.edgeWidth(edge, centerX, centerY, depot)
	default: // criterionWidthLength
		return ev.edgeWidth(edge, centerX, centerY, depot) + length
	}
}

// edgeWidth measures the perpendicular distance of both edge endpoints from
// the line through the depot and the route's centroid, and returns the
// difference between them — a proxy for how far an edge cuts across the
// route's natural sweep around the depot.
func (ev *CostEvaluator) edgeWidth(edge domain.Edge, centerX, centerY float64, depot *domain.Node) float64 {
	dx := depot.X - centerX
	dy := depot.Y - centerY
	distDepotCenter := math.Sqrt(dx*dx + dy*dy)

	project := func(n *domain.Node) float64 {
		v := (centerY-depot.Y)*n.X - (centerX-depot.X)*n.Y + centerX*depot.Y - centerY*depot.X
		if distDepotCenter == 0 {
			return 0
		}
		return v / distDepotCenter
	}

	return math.Abs(project(edge.Node1) - project(edge.Node2))
}

// routeCenter returns the centroid of route's customers plus its depot —
// matching the reference implementation's route.nodes, which includes the
// trailing depot but not the leading one.
func (ev *CostEvaluator) routeCenter(route *solution.Route) (float64, float64) {
	nodes := route.Customers
	var sumX, sumY float64
	for _, n := range nodes {
		sumX += n.X
		sumY += n.Y
	}
	sumX += route.Depot.X
	sumY += route.Depot.Y
	count := float64(len(nodes) + 1)
	return sumX / count, sumY / count
}

// GetAndPenalizeWorstEdge pops the currently worst-ranked edge, increments
// its penalty count, raises its penalized distance accordingly, lowers its
// own ranked badness so it isn't immediately repenalized, and pushes it back
// onto the ranking heap.
func (ev *CostEvaluator) GetAndPenalizeWorstEdge() domain.Edge {
	worst := heap.Pop(&ev.ranking).(domain.Edge)
	ev.edgePenalties[worst.Key]++

	i, j := ev.nodeIndex[worst.Node1.ID], ev.nodeIndex[worst.Node2.ID]
	raw := float64(ev.costs[i][j])
	penalty := float64(ev.edgePenalties[worst.Key])
	penalized := int(math.Round(raw + 0.1*float64(ev.baselineCost)*penalty))
	ev.penalized[i][j] = penalized
	ev.penalized[j][i] = penalized

	worst.Badness = raw / (1 + penalty)
	heap.Push(&ev.ranking, worst)

	return worst
}

// SolutionCost sums the length of every route in sol. When ignorePenalties
// is false, it uses the currently active penalized or raw distances
// depending on EnablePenalization/DisablePenalization; when true, it always
// uses the raw euclidean distances regardless of that setting.
func (ev *CostEvaluator) SolutionCost(sol *solution.Solution, ignorePenalties bool) int {
	total := 0
	for _, route := range sol.Routes {
		if route.Size == 0 {
			continue
		}
		nodes := route.Nodes()
		for i := 0; i < len(nodes)-1; i++ {
			if ignorePenalties {
				total += ev.rawDistance(nodes[i], nodes[i+1])
			} else {
				total += ev.Distance(nodes[i], nodes[i+1])
			}
		}
	}
	return total
}

// BaselineCost returns the average nearest-neighbor distance used to scale
// edge penalties, computed once at construction time.
func (ev *CostEvaluator) BaselineCost() int { return ev.baselineCost }
