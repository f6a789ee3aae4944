// Package report renders a finished solver run as a PDF or Excel file:
// per-route tables, cost summary, and the gap to the instance's best-known
// solution.
package report

import (
	"fmt"
	"time"

	"kgls/internal/evaluator"
	"kgls/internal/solution"
)

// RouteSummary is one route's reportable facts.
type RouteSummary struct {
	Index  int
	Nodes  string // dash-joined node ids, e.g. "0-4-3-1-2-0"
	Size   int
	Volume int
	Cost   int
}

// Data is everything a generator needs to render a run report. It is built
// once per run by Summarize and handed to both WritePDF and WriteExcel.
type Data struct {
	InstanceName string
	GeneratedAt  time.Time
	RunID        string

	Capacity   int
	NumRoutes  int
	NumNodes   int
	TotalCost  int
	GapPercent float64 // NaN if the instance carries no BKS
	Iterations int
	Runtime    time.Duration

	Routes []RouteSummary
}

// Summarize extracts report Data from a finished solution.
func Summarize(instanceName, runID string, sol *solution.Solution, ev *evaluator.CostEvaluator, iterations int, runtime time.Duration, gapPercent float64) Data {
	routes := make([]RouteSummary, 0, len(sol.Routes))
	total := 0
	for _, r := range sol.Routes {
		if r.Size == 0 {
			continue
		}
		cost := routeCost(r, ev)
		total += cost
		routes = append(routes, RouteSummary{
			Index:  r.Index,
			Nodes:  r.String(),
			Size:   r.Size,
			Volume: r.Volume,
			Cost:   cost,
		})
	}

	return Data{
		InstanceName: instanceName,
		RunID:        runID,
		Capacity:     sol.Problem.Capacity,
		NumRoutes:    len(routes),
		NumNodes:     len(sol.Problem.Customers),
		TotalCost:    total,
		GapPercent:   gapPercent,
		Iterations:   iterations,
		Runtime:      runtime,
		Routes:       routes,
	}
}

// routeCost sums the raw, unpenalized distance of every consecutive pair in
// route, depot to depot.
func routeCost(r *solution.Route, ev *evaluator.CostEvaluator) int {
	nodes := r.Nodes()
	cost := 0
	for i := 0; i < len(nodes)-1; i++ {
		cost += ev.RawDistance(nodes[i], nodes[i+1])
	}
	return cost
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}

func formatGap(gap float64) string {
	if gap != gap { // NaN
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", gap)
}
