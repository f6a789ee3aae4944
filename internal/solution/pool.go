package solution

import (
	"sync"

	"kgls/internal/domain"
)

// Pool recycles the maps backing Solution values, grounded on the teacher's
// graph.GraphPool: a released Solution's prev/next/route_of maps are cleared
// and reused instead of allocated afresh. Safe for concurrent use.
// internal/engine does not use a Pool; it copies its best solution with
// Solution.Copy.
type Pool struct {
	solutions sync.Pool
}

// NewPool creates an empty Pool of Solution buffers; the problem is given to
// each Acquire call.
func NewPool() *Pool {
	return &Pool{}
}

// Acquire returns a Solution ready for use over problem, reusing a pooled
// instance's backing maps when available.
func (p *Pool) Acquire(problem *domain.Problem) *Solution {
	if v := p.solutions.Get(); v != nil {
		s := v.(*Solution)
		s.reset(problem)
		return s
	}
	return New(problem)
}

// Release returns s to the pool. s must not be used afterward.
func (p *Pool) Release(s *Solution) {
	if s == nil {
		return
	}
	p.solutions.Put(s)
}

// reset clears a Solution's maps and routes for reuse against problem,
// which may differ from the Solution's previous problem across pool users.
func (s *Solution) reset(problem *domain.Problem) {
	s.Problem = problem
	s.Routes = s.Routes[:0]
	clear(s.prev)
	clear(s.next)
	clear(s.routeOf)
	clear(s.Stats)
	s.nextRouteIndex = 0
}
