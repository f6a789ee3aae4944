package domain

import "sort"

// Problem is the immutable CVRP instance: a depot, a set of customers and a
// uniform vehicle capacity. All Nodes referenced by a Problem's Solutions
// are drawn from here.
type Problem struct {
	Name      string
	Nodes     []*Node
	Capacity  int
	BKS       float64 // known best solution cost, +Inf if unknown
	Depot     *Node
	Customers []*Node
}

// NewProblem builds a Problem from a flat node list, exactly one of which
// must have IsDepot set. Customers are kept in the order supplied, which is
// the order the side-table Solution and every operator iterate in to keep
// runs deterministic.
func NewProblem(name string, nodes []*Node, capacity int, bks float64) (*Problem, error) {
	var depot *Node
	customers := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.IsDepot {
			if depot != nil {
				return nil, errMultipleDepots
			}
			depot = n
			continue
		}
		customers = append(customers, n)
	}
	if depot == nil {
		return nil, errNoDepot
	}

	return &Problem{
		Name:      name,
		Nodes:     nodes,
		Capacity:  capacity,
		BKS:       bks,
		Depot:     depot,
		Customers: customers,
	}, nil
}

// TotalDemand returns the sum of customer demands.
func (p *Problem) TotalDemand() int {
	total := 0
	for _, c := range p.Customers {
		total += c.Demand
	}
	return total
}

// MinRoutes returns the trivial lower bound on route count given capacity.
func (p *Problem) MinRoutes() int {
	if p.Capacity <= 0 {
		return len(p.Customers)
	}
	total := p.TotalDemand()
	return (total + p.Capacity - 1) / p.Capacity
}

// NodeByID looks up a node by id via linear scan over Nodes. Instances are
// small enough (hundreds of customers) that this is not on any hot path;
// callers that need repeated lookups should build their own index.
func (p *Problem) NodeByID(id NodeID) (*Node, bool) {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return nil, false
}

// SortedCustomerIDs returns customer ids in ascending order, used wherever a
// component must iterate customers in a stable, instance-independent order.
func (p *Problem) SortedCustomerIDs() []NodeID {
	ids := make([]NodeID, len(p.Customers))
	for i, c := range p.Customers {
		ids[i] = c.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
