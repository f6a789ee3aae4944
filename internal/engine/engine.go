// Package engine wires the construction, local-search and perturbation
// stages into the top-level run loop used by cmd/kgls.
package engine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"kgls/internal/construction"
	"kgls/internal/domain"
	"kgls/internal/evaluator"
	"kgls/internal/search"
	"kgls/internal/solution"
	"kgls/pkg/config"
	"kgls/pkg/logger"
	"kgls/pkg/metrics"
)

// Stats summarizes one completed run.
type Stats struct {
	RunID         string
	Iterations    int
	BestIteration int
	BestCost      int
	BestGap       float64 // percent above BKS, 100*(cost-BKS)/BKS; NaN if the instance carries no BKS
	Runtime       time.Duration
}

// Engine is the KGLS facade: construct an initial solution, then alternate
// improve/perturbate cycles until an abort condition fires. One Engine
// instance is built per problem instance and run exactly once.
type Engine struct {
	problem *domain.Problem
	ev      *evaluator.CostEvaluator
	params  config.RunConfig

	abortConditions []search.AbortCondition

	metrics *metrics.Metrics
	runID   string

	bestSolution  *solution.Solution
	bestCost      int
	bestIteration int
	bestFoundAt   time.Time
}

// New builds an Engine over problem with the given run parameters. It
// defaults to stopping after 100 iterations without improvement, matching
// the reference implementation's default abort condition.
func New(problem *domain.Problem, params config.RunConfig) *Engine {
	return &Engine{
		problem:         problem,
		ev:              evaluator.New(problem, params.NeighborhoodSize),
		params:          params,
		abortConditions: []search.AbortCondition{search.IterationsWithoutImprovement{N: 100}},
		metrics:         metrics.Get(),
		runID:           uuid.NewString(),
		bestCost:        math.MaxInt64,
	}
}

// SetAbortCondition replaces the engine's abort conditions with a single
// named condition.
func (e *Engine) SetAbortCondition(name string, param int) error {
	c, err := search.NewAbortCondition(name, param)
	if err != nil {
		return err
	}
	e.abortConditions = []search.AbortCondition{c}
	return nil
}

// AddAbortCondition appends a named condition to the engine's existing set;
// the run stops as soon as any one of them fires.
func (e *Engine) AddAbortCondition(name string, param int) error {
	c, err := search.NewAbortCondition(name, param)
	if err != nil {
		return err
	}
	e.abortConditions = append(e.abortConditions, c)
	return nil
}

// SetAbortConditions installs conditions from config, replacing defaults.
func (e *Engine) SetAbortConditions(entries []config.AbortEntry) error {
	if len(entries) == 0 {
		return nil
	}
	conditions := make([]search.AbortCondition, 0, len(entries))
	for _, entry := range entries {
		c, err := search.NewAbortCondition(entry.Name, entry.Param)
		if err != nil {
			return err
		}
		conditions = append(conditions, c)
	}
	e.abortConditions = conditions
	return nil
}

// Run constructs an initial solution (or starts from startSolution, if
// given) and alternates improve/perturbate cycles until an abort condition
// fires. It returns the best solution found.
func (e *Engine) Run(startSolution *solution.Solution) (*solution.Solution, Stats, error) {
	log := logger.WithRunID(e.runID).With("instance", e.problem.Name)
	log.Info("starting run", "instance", e.problem.Name, "customers", len(e.problem.Customers))

	startTime := time.Now()

	var current *solution.Solution
	if startSolution != nil {
		current = startSolution
	} else {
		current = construction.ClarkeWrightWithRouteReduction(e.problem, e.ev)
	}

	iteration := 0
	e.recordIfBest(current, iteration, startTime)

	if err := search.ImproveSolution(current, e.ev, current.Routes, e.params.Moves, e.params.DepthLinKernighan, e.params.DepthRelocationChain); err != nil {
		return nil, Stats{}, err
	}
	e.recordIfBest(current, iteration, startTime)

	for !search.AnyShouldAbort(e.abortConditions, search.RunState{
		Iteration:      iteration,
		BestIteration:  e.bestIteration,
		StartTime:      startTime,
		BestSolutionAt: e.bestFoundAt,
	}) {
		iteration++

		changedRoutes, err := search.PerturbateSolution(current, e.ev, e.params.Moves, e.params.NumPerturbations, e.params.DepthLinKernighan, e.params.DepthRelocationChain)
		if err != nil {
			return nil, Stats{}, err
		}
		if err := search.ImproveSolution(current, e.ev, changedRoutes, e.params.Moves, e.params.DepthLinKernighan, e.params.DepthRelocationChain); err != nil {
			return nil, Stats{}, err
		}

		e.recordIfBest(current, iteration, startTime)
	}

	runtime := time.Since(startTime)
	log.Info("run finished", "iterations", iteration, "best_cost", e.bestCost, "runtime_seconds", runtime.Seconds())

	gap := e.gapPercent()
	return e.bestSolution, Stats{
		RunID:         e.runID,
		Iterations:    iteration,
		BestIteration: e.bestIteration,
		BestCost:      e.bestCost,
		BestGap:       gap,
		Runtime:       runtime,
	}, nil
}

func (e *Engine) gapPercent() float64 {
	if math.IsInf(e.problem.BKS, 1) || e.problem.BKS == 0 {
		return math.NaN()
	}
	return 100 * (float64(e.bestCost) - e.problem.BKS) / e.problem.BKS
}

func (e *Engine) recordIfBest(current *solution.Solution, iteration int, startTime time.Time) {
	cost := e.ev.SolutionCost(current, true)
	if cost < e.bestCost {
		e.bestCost = cost
		e.bestIteration = iteration
		e.bestFoundAt = time.Now()
		e.bestSolution = current.Copy()
	}

	e.metrics.RecordIteration(float64(e.bestCost), e.gapPercent())
	e.metrics.SetRunInfo("kgls", e.runID)
}

// BestSolution returns the best solution found by the most recent Run call.
func (e *Engine) BestSolution() *solution.Solution { return e.bestSolution }

// BestCost returns the cost of the best solution found.
func (e *Engine) BestCost() int { return e.bestCost }

// BestGap returns the percentage gap to the instance's best known solution,
// or NaN if the instance carries no BKS.
func (e *Engine) BestGap() float64 { return e.gapPercent() }
