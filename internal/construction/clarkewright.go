// Package construction builds an initial feasible Solution for a Problem
// before local search takes over.
package construction

import (
	"sort"

	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/solution"
)

// saving is one candidate merge: joining node1 and node2 directly instead of
// routing each through the depot separately.
type saving struct {
	node1, node2 *domain.Node
	value        float64
}

func computeSavings(customers []*domain.Node, depot *domain.Node, ev *evaluator.CostEvaluator) []saving {
	var savings []saving
	for i := 0; i < len(customers); i++ {
		for j := i + 1; j < len(customers); j++ {
			n1, n2 := customers[i], customers[j]
			value := float64(ev.Distance(n1, depot) + ev.Distance(n2, depot) - ev.Distance(n1, n2))
			savings = append(savings, saving{n1, n2, value})
		}
	}
	sort.Slice(savings, func(i, j int) bool { return savings[i].value > savings[j].value })
	return savings
}

// computeWeightedSavings blends raw savings with how much demand a merge
// consumes, so that merges freeing up vehicle capacity are preferred once
// plain savings alone leaves too many near-empty routes.
func computeWeightedSavings(customers []*domain.Node, depot *domain.Node, ev *evaluator.CostEvaluator) []saving {
	plain := computeSavings(customers, depot, ev)

	maxSaving := plain[0].value
	for _, s := range plain {
		if s.value > maxSaving {
			maxSaving = s.value
		}
	}

	demands := make([]int, len(customers))
	for i, c := range customers {
		demands[i] = c.Demand
	}
	sort.Ints(demands)
	maxDemand := demands[len(demands)-1] + demands[len(demands)-2]

	weighted := make([]saving, len(plain))
	for i, s := range plain {
		v := s.value/maxSaving + float64(s.node1.Demand+s.node2.Demand)/float64(maxDemand)
		weighted[i] = saving{s.node1, s.node2, v}
	}
	sort.Slice(weighted, func(i, j int) bool { return weighted[i].value > weighted[j].value })
	return weighted
}

type planState int

const (
	stateNotPlanned planState = iota
	stateCanExtend
	stateCannotExtend
)

// ClarkeWrightParallel runs the classic parallel savings construction: every
// customer starts its own unplanned singleton, and each saving in
// descending order either starts a new two-customer route, extends an
// existing route at one end, or merges two routes end to end, whenever doing
// so stays within vehicle capacity.
func ClarkeWrightParallel(problem *domain.Problem, ev *evaluator.CostEvaluator, demandWeighted bool) *solution.Solution {
	var savings []saving
	if demandWeighted {
		savings = computeWeightedSavings(problem.Customers, problem.Depot, ev)
	} else {
		savings = computeSavings(problem.Customers, problem.Depot, ev)
	}

	state := make(map[domain.NodeID]planState, len(problem.Customers))
	for _, c := range problem.Customers {
		state[c.ID] = stateNotPlanned
	}

	sol := solution.New(problem)

	for _, s := range savings {
		n1, n2 := s.node1, s.node2
		st1, st2 := state[n1.ID], state[n2.ID]

		if st1 == stateCannotExtend || st2 == stateCannotExtend {
			continue
		}

		switch {
		case st1 == stateNotPlanned && st2 == stateNotPlanned:
			if n1.Demand+n2.Demand <= problem.Capacity {
				sol.AddRoute([]*domain.Node{n1, n2})
				state[n1.ID] = stateCanExtend
				state[n2.ID] = stateCanExtend
			}

		case st1 == stateCanExtend && st2 == stateNotPlanned:
			extendRouteWith(sol, problem, n1, n2, state)

		case st2 == stateCanExtend && st1 == stateNotPlanned:
			extendRouteWith(sol, problem, n2, n1, state)

		case st1 == stateCanExtend && st2 == stateCanExtend:
			mergeRoutes(sol, problem, n1, n2, state)
		}
	}

	for _, c := range problem.Customers {
		if state[c.ID] == stateNotPlanned {
			sol.AddRoute([]*domain.Node{c})
		}
	}

	sol.Validate()
	return sol
}

// extendRouteWith appends newNode to whichever end of anchor's route is
// open, provided capacity allows it.
func extendRouteWith(sol *solution.Solution, problem *domain.Problem, anchor, newNode *domain.Node, state map[domain.NodeID]planState) {
	route := sol.RouteOf(anchor)
	if route.Volume+newNode.Demand > problem.Capacity {
		return
	}

	if sol.Prev(anchor).IsDepot {
		sol.InsertNodesAfter([]*domain.Node{newNode}, sol.Prev(anchor), route)
	} else {
		sol.InsertNodesAfter([]*domain.Node{newNode}, anchor, route)
	}

	state[anchor.ID] = stateCannotExtend
	state[newNode.ID] = stateCanExtend
}

// mergeRoutes splices node2's route onto the open end of node1's route,
// reversing node2's route first if needed so the two open ends meet.
func mergeRoutes(sol *solution.Solution, problem *domain.Problem, n1, n2 *domain.Node, state map[domain.NodeID]planState) {
	route1 := sol.RouteOf(n1)
	route2 := sol.RouteOf(n2)
	if route1 == route2 || route1.Volume+route2.Volume > problem.Capacity {
		return
	}

	route2Customers := append([]*domain.Node(nil), route2.Customers...)
	sol.RemoveNodes(route2Customers)

	switch {
	case sol.Next(n1).IsDepot:
		if sol.Next(n2).IsDepot {
			reverse(route2Customers)
		}
		sol.InsertNodesAfter(route2Customers, n1, route1)

	case sol.Prev(n1).IsDepot:
		if sol.Prev(n2).IsDepot {
			reverse(route2Customers)
		}
		sol.InsertNodesAfter(route2Customers, sol.Prev(n1), route1)
	}

	state[n1.ID] = stateCannotExtend
	state[n2.ID] = stateCannotExtend
}

func reverse(nodes []*domain.Node) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
}

// ClarkeWrightWithRouteReduction runs ClarkeWrightParallel, then retries
// with demand-weighted savings if the plain construction used more than one
// vehicle beyond the theoretical minimum.
func ClarkeWrightWithRouteReduction(problem *domain.Problem, ev *evaluator.CostEvaluator) *solution.Solution {
	sol := ClarkeWrightParallel(problem, ev, false)

	minimal := problem.MinRoutes()
	used := 0
	for _, r := range sol.Routes {
		if r.Size > 0 {
			used++
		}
	}
	if used > minimal+1 {
		sol = ClarkeWrightParallel(problem, ev, true)
	}

	return sol
}
