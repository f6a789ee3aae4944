package evaluator

import "kgls/internal/domain"

// edgeHeap is a container/heap max-heap over domain.Edge.Badness. Edges are
// stored by value; get-and-penalize pops the current worst edge, lowers its
// badness in place, and pushes it back rather than maintaining a decrease-key
// index — the same lazy-reinsertion pattern as the reference implementation's
// heapq-based ranking.
type edgeHeap []domain.Edge

func (h edgeHeap) Len() int            { return len(h) }
func (h edgeHeap) Less(i, j int) bool  { return h[i].Badness > h[j].Badness }
func (h edgeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *edgeHeap) Push(x interface{}) { *h = append(*h, x.(domain.Edge)) }

func (h *edgeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
