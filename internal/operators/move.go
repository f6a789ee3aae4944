// Package operators implements the local-search move catalogue: Segment
// Move, Cross-Exchange, Relocation Chain and Lin-Kernighan. Each move type
// records enough state to be scored, ranked against competing moves, checked
// for route overlap against moves found in other neighborhoods, and finally
// applied to a solution.Solution.
package operators

import (
	"sort"

	"kgls/internal/domain"
	"kgls/internal/solution"
)

// Move is anything the local search can find, rank by improvement and
// execute against a solution. Disjoint moves found within the same search
// round can be applied together without invalidating each other.
type Move interface {
	Routes() []*solution.Route
	IsDisjoint(other Move) bool
	Improvement() float64
	Execute(s *solution.Solution)
}

// edgeKey is an order-independent identifier for a directed-in-tour edge
// used by Lin-Kernighan and Relocation Chain to track which connections have
// been removed, added or forbidden during a single move search.
type edgeKey struct {
	a, b domain.NodeID
}

func newEdgeKey(n1, n2 *domain.Node) edgeKey {
	if n1.ID >= n2.ID {
		return edgeKey{a: n1.ID, b: n2.ID}
	}
	return edgeKey{a: n2.ID, b: n1.ID}
}

// sortByImprovement sorts moves with the largest improvement first,
// mirroring the reference implementation's reversed Move.__lt__.
func sortByImprovement(moves []Move) {
	sort.Slice(moves, func(i, j int) bool {
		return moves[i].Improvement() > moves[j].Improvement()
	})
}
