package operators

import (
	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/solution"
)

// SegmentMove relocates a contiguous segment of one route to a new position
// next to move_after, possibly in a different route and possibly reversing
// the segment's internal order (insertDirection 0 vs 1). This is the
// solver's 3-opt-style relocation operator.
type SegmentMove struct {
	segment        []*domain.Node
	moveAfter      *domain.Node
	improvement    float64
	insertDirection int

	fromRoute *solution.Route
	toRoute   *solution.Route
}

func (m *SegmentMove) Routes() []*solution.Route { return []*solution.Route{m.fromRoute, m.toRoute} }

func (m *SegmentMove) Improvement() float64 { return m.improvement }

func (m *SegmentMove) IsDisjoint(other Move) bool {
	for _, r := range other.Routes() {
		if r == m.fromRoute || r == m.toRoute {
			return false
		}
	}
	return true
}

func (m *SegmentMove) Execute(s *solution.Solution) {
	s.RemoveNodes(m.segment)
	s.InsertNodesAfter(m.segment, m.moveAfter, m.toRoute)
}

// SearchSegmentMovesFrom looks for profitable relocations of a segment that
// starts at startNode, trying both traversal directions for which end of the
// segment to extend and both directions for inserting it at a neighborhood
// node in a different route.
func SearchSegmentMovesFrom(s *solution.Solution, ev *evaluator.CostEvaluator, startNode *domain.Node) []Move {
	var moves []Move
	fromRoute := s.RouteOf(startNode)

	for _, segmentDirection := range []int{0, 1} {
		for _, insertDirection := range []int{0, 1} {
			segment1Prev := s.Neighbour(startNode, 1-segmentDirection)

			for _, insertNextTo := range ev.Neighborhood(startNode) {
				toRoute := s.RouteOf(insertNextTo)
				if toRoute == fromRoute {
					continue
				}

				insertNextTo2 := s.Neighbour(insertNextTo, insertDirection)

				moveStartImprovement := float64(
					ev.Distance(startNode, segment1Prev)+
						ev.Distance(insertNextTo, insertNextTo2)-
						ev.Distance(insertNextTo, startNode),
				)
				if moveStartImprovement <= 0 {
					continue
				}

				segmentEnd := startNode
				segment := []*domain.Node{segmentEnd}
				toRouteVolume := toRoute.Volume + segmentEnd.Demand

				for !segmentEnd.IsDepot && ev.IsFeasible(toRouteVolume) {
					segmentDisconnect2 := s.Neighbour(segmentEnd, segmentDirection)

					moveEndImprovement := float64(
						ev.Distance(segmentEnd, segmentDisconnect2) -
							ev.Distance(segment1Prev, segmentDisconnect2) -
							ev.Distance(segmentEnd, insertNextTo2),
					)

					improvement := moveStartImprovement + moveEndImprovement
					if improvement > 0 {
						var insertAfter *domain.Node
						if insertDirection == 1 {
							insertAfter = insertNextTo
						} else {
							insertAfter = insertNextTo2
						}

						segmentCopy := append([]*domain.Node(nil), segment...)
						moves = append(moves, &SegmentMove{
							segment:         segmentCopy,
							moveAfter:       insertAfter,
							improvement:     improvement,
							insertDirection: insertDirection,
							fromRoute:       fromRoute,
							toRoute:         toRoute,
						})
					}

					segmentEnd = s.Neighbour(segmentEnd, segmentDirection)
					if insertDirection == 1 {
						segment = append(segment, segmentEnd)
					} else {
						segment = append([]*domain.Node{segmentEnd}, segment...)
					}
					toRouteVolume += segmentEnd.Demand
				}
			}
		}
	}

	return moves
}

// SearchSegmentMoves runs SearchSegmentMovesFrom over every start node and
// returns all candidates ordered by descending improvement.
func SearchSegmentMoves(s *solution.Solution, ev *evaluator.CostEvaluator, startNodes []*domain.Node) []Move {
	var moves []Move
	for _, n := range startNodes {
		moves = append(moves, SearchSegmentMovesFrom(s, ev, n)...)
	}
	sortByImprovement(moves)
	return moves
}
