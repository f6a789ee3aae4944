package search

import (
	"sort"

	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/operators"
	"kgls/internal/solution"
	"kgls/pkg/apperror"
)

// sortedRoutes returns the routes in set ordered by route index, so callers
// that iterate the result get a reproducible order regardless of Go's
// randomized map iteration.
func sortedRoutes(set map[*solution.Route]bool) []*solution.Route {
	routes := make([]*solution.Route, 0, len(set))
	for r := range set {
		routes = append(routes, r)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Index < routes[j].Index })
	return routes
}

// OperatorFunc searches a solution for candidate moves starting from a set
// of nodes. All three inter-route operators share this shape so local
// search can dispatch on the configured move name.
type OperatorFunc func(s *solution.Solution, ev *evaluator.CostEvaluator, startNodes []*domain.Node) []operators.Move

func relocationChainOperator(depth int) OperatorFunc {
	return func(s *solution.Solution, ev *evaluator.CostEvaluator, startNodes []*domain.Node) []operators.Move {
		return operators.SearchRelocationChains(s, ev, startNodes, depth)
	}
}

// ImproveRoute repeatedly applies the best-found Lin-Kernighan move on route
// until no further improving move is found. Routes with two or fewer
// customers have nothing for Lin-Kernighan to rearrange.
func ImproveRoute(s *solution.Solution, ev *evaluator.CostEvaluator, route *solution.Route, depthLinKernighan int) {
	if route.Size <= 2 {
		return
	}
	for {
		moves := operators.SearchLKMoves(s, ev, route, depthLinKernighan)
		if len(moves) == 0 {
			return
		}
		moves[0].Execute(s)
	}
}

// GetDisjointMoves greedily keeps moves (already sorted by descending
// improvement) that don't share a route with any move kept so far, so they
// can all be applied without one invalidating another.
func GetDisjointMoves(moves []operators.Move) []operators.Move {
	var kept []operators.Move
	for _, m := range moves {
		disjoint := true
		for _, k := range kept {
			if !m.IsDisjoint(k) {
				disjoint = false
				break
			}
		}
		if disjoint {
			kept = append(kept, m)
		}
	}
	return kept
}

// FindBestImprovingMoves runs one operator from startNodes, applies every
// mutually disjoint improving move it finds, and optionally re-optimizes
// each changed route with Lin-Kernighan before returning.
func FindBestImprovingMoves(
	s *solution.Solution,
	ev *evaluator.CostEvaluator,
	startNodes []*domain.Node,
	operatorName string,
	intraRouteOpt bool,
	depthLinKernighan, depthRelocationChain int,
) (int, []*solution.Route, error) {
	var search OperatorFunc
	switch operatorName {
	case "segment_move":
		search = operators.SearchSegmentMoves
	case "cross_exchange":
		search = operators.SearchCrossExchanges
	case "relocation_chain":
		search = relocationChainOperator(depthRelocationChain)
	default:
		return 0, nil, apperror.ErrUnknownOperator.WithField(operatorName)
	}

	candidates := search(s, ev, startNodes)
	if len(candidates) == 0 {
		return 0, nil, nil
	}

	disjoint := GetDisjointMoves(candidates)

	changedRoutes := make(map[*solution.Route]bool)
	for _, move := range disjoint {
		move.Execute(s)
		for _, r := range move.Routes() {
			changedRoutes[r] = true
		}
		s.Validate()
	}

	routes := sortedRoutes(changedRoutes)
	if intraRouteOpt {
		for _, r := range routes {
			ImproveRoute(s, ev, r, depthLinKernighan)
		}
	}

	return len(disjoint), routes, nil
}

// LocalSearch runs every operator in moveNames once from startNodes,
// returning the total number of moves applied and the union of routes they
// touched.
func LocalSearch(
	s *solution.Solution,
	ev *evaluator.CostEvaluator,
	startNodes []*domain.Node,
	moveNames []string,
	intraRouteOpt bool,
	depthLinKernighan, depthRelocationChain int,
) (int, []*solution.Route, error) {
	total := 0
	changed := make(map[*solution.Route]bool)

	for _, name := range moveNames {
		found, routes, err := FindBestImprovingMoves(s, ev, startNodes, name, intraRouteOpt, depthLinKernighan, depthRelocationChain)
		if err != nil {
			return total, nil, err
		}
		total += found
		for _, r := range routes {
			changed[r] = true
		}
	}

	return total, sortedRoutes(changed), nil
}

// ImproveSolution repeatedly runs LocalSearch starting from the customers of
// startRoutes until a full pass finds no more improving moves. It first re-optimizes
// startRoutes individually with Lin-Kernighan, matching the reference
// implementation's intra- then inter-route optimization order.
func ImproveSolution(
	s *solution.Solution,
	ev *evaluator.CostEvaluator,
	startRoutes []*solution.Route,
	moveNames []string,
	depthLinKernighan, depthRelocationChain int,
) error {
	for _, r := range startRoutes {
		ImproveRoute(s, ev, r, depthLinKernighan)
	}

	startNodes := nodesOf(startRoutes)

	for {
		executed, _, err := LocalSearch(s, ev, startNodes, moveNames, true, depthLinKernighan, depthRelocationChain)
		if err != nil {
			return err
		}
		if executed == 0 {
			return nil
		}
	}
}

func nodesOf(routes []*solution.Route) []*domain.Node {
	var nodes []*domain.Node
	for _, r := range routes {
		nodes = append(nodes, r.Customers...)
	}
	return nodes
}

// PerturbateSolution penalizes the solution's current worst edges (rotating
// badness criterion each call to DetermineEdgeBadness) and runs local search
// from their endpoints until numPerturbations moves have been applied in
// total, returning the set of routes touched.
func PerturbateSolution(
	s *solution.Solution,
	ev *evaluator.CostEvaluator,
	moveNames []string,
	numPerturbations, depthLinKernighan, depthRelocationChain int,
) ([]*solution.Route, error) {
	ev.EnablePenalization()
	ev.DetermineEdgeBadness(s.Routes)
	defer ev.DisablePenalization()

	changed := make(map[*solution.Route]bool)
	applied := 0

	for applied < numPerturbations {
		worst := ev.GetAndPenalizeWorstEdge()
		var startNodes []*domain.Node
		for _, n := range []*domain.Node{worst.Node1, worst.Node2} {
			if !n.IsDepot {
				startNodes = append(startNodes, n)
			}
		}

		executed, routes, err := LocalSearch(s, ev, startNodes, moveNames, false, depthLinKernighan, depthRelocationChain)
		if err != nil {
			return nil, err
		}
		applied += executed
		for _, r := range routes {
			changed[r] = true
		}
	}

	return sortedRoutes(changed), nil
}
