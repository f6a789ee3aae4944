package domain

// EdgeKey is an order-independent identifier for the undirected edge between
// two nodes, canonicalized with the larger id first so map lookups agree
// regardless of traversal direction.
type EdgeKey struct {
	A, B NodeID
}

// NewEdgeKey returns the canonical key for the edge between n1 and n2.
func NewEdgeKey(n1, n2 *Node) EdgeKey {
	if n1.ID >= n2.ID {
		return EdgeKey{A: n1.ID, B: n2.ID}
	}
	return EdgeKey{A: n2.ID, B: n1.ID}
}

// HasDepot reports whether either endpoint of the key is the given depot.
func (k EdgeKey) HasDepot(depot *Node) bool {
	return k.A == depot.ID || k.B == depot.ID
}

// Edge pairs a canonical EdgeKey with a badness value used to rank edges in
// the guided-local-search penalty heap. Badness is transient per-perturbation
// state, never part of the Problem's immutable data.
type Edge struct {
	Key     EdgeKey
	Node1   *Node
	Node2   *Node
	Badness float64
}

// NewEdge builds an Edge between two nodes with the given badness.
func NewEdge(n1, n2 *Node, badness float64) Edge {
	key := NewEdgeKey(n1, n2)
	first, second := n1, n2
	if key.A != n1.ID {
		first, second = n2, n1
	}
	return Edge{Key: key, Node1: first, Node2: second, Badness: badness}
}

// HasDepot reports whether either endpoint of e is the given depot.
func (e Edge) HasDepot(depot *Node) bool {
	return e.Node1.ID == depot.ID || e.Node2.ID == depot.ID
}

// Other returns the endpoint of e that is not n, or nil if n is not an
// endpoint of e.
func (e Edge) Other(n *Node) *Node {
	switch n.ID {
	case e.Node1.ID:
		return e.Node2
	case e.Node2.ID:
		return e.Node1
	default:
		return nil
	}
}
