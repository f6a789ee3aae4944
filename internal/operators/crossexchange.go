package operators

import (
	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/solution"
)

// CrossExchange swaps a segment of route1 starting at startNode with a
// segment of route2 found in startNode's neighborhood, reconnecting both
// routes across the swap.
type CrossExchange struct {
	segment1, segment2               []*domain.Node
	segment1InsertAfter, segment2InsertAfter *domain.Node
	route1, route2                   *solution.Route
	improvement                      float64
}

func (m *CrossExchange) Routes() []*solution.Route { return []*solution.Route{m.route1, m.route2} }

func (m *CrossExchange) Improvement() float64 { return m.improvement }

func (m *CrossExchange) IsDisjoint(other Move) bool {
	for _, r := range other.Routes() {
		if r == m.route1 || r == m.route2 {
			return false
		}
	}
	return true
}

func (m *CrossExchange) Execute(s *solution.Solution) {
	s.RemoveNodes(m.segment1)
	s.RemoveNodes(m.segment2)

	s.InsertNodesAfter(m.segment1, m.segment1InsertAfter, m.route2)
	s.InsertNodesAfter(m.segment2, m.segment2InsertAfter, m.route1)
}

// SearchCrossExchangesFrom searches for profitable segment swaps between
// startNode's route and the routes of its neighborhood nodes, trying both
// growth directions for each of the two segments.
func SearchCrossExchangesFrom(s *solution.Solution, ev *evaluator.CostEvaluator, startNode *domain.Node) []Move {
	var moves []Move
	route1 := s.RouteOf(startNode)

	for _, segment1Direction := range []int{0, 1} {
		for _, segment2Direction := range []int{0, 1} {
			route1SegmentConnectionStart := s.Neighbour(startNode, 1-segment1Direction)

			for _, route2SegmentConnectionStart := range ev.Neighborhood(startNode) {
				route2 := s.RouteOf(route2SegmentConnectionStart)
				if route2 == route1 {
					continue
				}

				segment2Start := s.Neighbour(route2SegmentConnectionStart, segment2Direction)
				if segment2Start.IsDepot {
					continue
				}

				improvementFirstCross := float64(
					ev.Distance(startNode, route1SegmentConnectionStart)+
						ev.Distance(segment2Start, route2SegmentConnectionStart)-
						ev.Distance(startNode, route2SegmentConnectionStart)-
						ev.Distance(segment2Start, route1SegmentConnectionStart),
				)
				if improvementFirstCross <= 0 {
					continue
				}

				segment1End := startNode
				segment1 := []*domain.Node{segment1End}
				segment1Volume := segment1End.Demand

				for !segment1End.IsDepot {
					segment2End := segment2Start
					segment2 := []*domain.Node{segment2End}
					segment2Volume := segment2End.Demand

					for !segment2End.IsDepot && ev.IsFeasible(route1.Volume-segment1Volume+segment2Volume) {
						if ev.IsFeasible(route2.Volume - segment2Volume + segment1Volume) {
							route1SegmentConnectionEnd := s.Neighbour(segment1End, segment1Direction)
							route2SegmentConnectionEnd := s.Neighbour(segment2End, segment2Direction)

							improvementSecondCross := float64(
								ev.Distance(segment1End, route1SegmentConnectionEnd)+
									ev.Distance(segment2End, route2SegmentConnectionEnd)-
									ev.Distance(segment1End, route2SegmentConnectionEnd)-
									ev.Distance(segment2End, route1SegmentConnectionEnd),
							)
							improvement := improvementFirstCross + improvementSecondCross

							if improvement > 0 {
								var seg1InsertAfter, seg2InsertAfter *domain.Node
								if segment2Direction == 1 {
									seg1InsertAfter = route2SegmentConnectionStart
								} else {
									seg1InsertAfter = route2SegmentConnectionEnd
								}
								if segment1Direction == 1 {
									seg2InsertAfter = route1SegmentConnectionStart
								} else {
									seg2InsertAfter = route1SegmentConnectionEnd
								}

								moves = append(moves, &CrossExchange{
									segment1:            append([]*domain.Node(nil), segment1...),
									segment2:            append([]*domain.Node(nil), segment2...),
									route1:              route1,
									route2:              route2,
									segment1InsertAfter: seg1InsertAfter,
									segment2InsertAfter: seg2InsertAfter,
									improvement:         improvement,
								})
							}
						}

						segment2End = s.Neighbour(segment2End, segment2Direction)
						if (segment2Direction == 1 && segment1Direction == 0) || (segment1Direction+segment2Direction == 0) {
							segment2 = append([]*domain.Node{segment2End}, segment2...)
						} else {
							segment2 = append(segment2, segment2End)
						}
						segment2Volume += segment2End.Demand
					}

					segment1End = s.Neighbour(segment1End, segment1Direction)
					if (segment1Direction == 1 && segment2Direction == 0) || (segment1Direction+segment2Direction == 0) {
						segment1 = append([]*domain.Node{segment1End}, segment1...)
					} else {
						segment1 = append(segment1, segment1End)
					}
					segment1Volume += segment1End.Demand
				}
			}
		}
	}

	return moves
}

// SearchCrossExchanges runs SearchCrossExchangesFrom over every start node
// and returns all candidates ordered by descending improvement.
func SearchCrossExchanges(s *solution.Solution, ev *evaluator.CostEvaluator, startNodes []*domain.Node) []Move {
	var moves []Move
	for _, n := range startNodes {
		moves = append(moves, SearchCrossExchangesFrom(s, ev, n)...)
	}
	sortByImprovement(moves)
	return moves
}
