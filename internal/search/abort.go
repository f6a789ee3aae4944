// Package search drives the local-search and perturbation loop: applying
// every operator until no further improving move is found, then penalizing
// the worst edge and retrying, until an abort condition fires.
package search

import (
	"fmt"
	"time"

	"kgls/pkg/apperror"
)

// RunState is the subset of engine bookkeeping an AbortCondition needs to
// decide whether to stop.
type RunState struct {
	Iteration      int
	BestIteration  int
	StartTime      time.Time
	BestSolutionAt time.Time
}

// AbortCondition decides whether the search loop should stop.
type AbortCondition interface {
	ShouldAbort(state RunState) bool
	Message() string
}

// MaxIterations stops once the iteration counter reaches its parameter.
type MaxIterations struct{ N int }

func (c MaxIterations) ShouldAbort(s RunState) bool { return s.Iteration >= c.N }
func (c MaxIterations) Message() string             { return fmt.Sprintf("stops after %d iterations", c.N) }

// IterationsWithoutImprovement stops once N iterations have passed without a
// new best solution.
type IterationsWithoutImprovement struct{ N int }

func (c IterationsWithoutImprovement) ShouldAbort(s RunState) bool {
	return s.Iteration-s.BestIteration >= c.N
}
func (c IterationsWithoutImprovement) Message() string {
	return fmt.Sprintf("stops after %d iterations without improvement", c.N)
}

// MaxRuntime stops once N seconds have elapsed since the run started.
type MaxRuntime struct{ Seconds int }

func (c MaxRuntime) ShouldAbort(s RunState) bool {
	return time.Since(s.StartTime) >= time.Duration(c.Seconds)*time.Second
}
func (c MaxRuntime) Message() string { return fmt.Sprintf("stops after %d seconds", c.Seconds) }

// RuntimeWithoutImprovement stops once N seconds have elapsed since the last
// new best solution.
type RuntimeWithoutImprovement struct{ Seconds int }

func (c RuntimeWithoutImprovement) ShouldAbort(s RunState) bool {
	return time.Since(s.BestSolutionAt) >= time.Duration(c.Seconds)*time.Second
}
func (c RuntimeWithoutImprovement) Message() string {
	return fmt.Sprintf("stops after %d seconds without improvement", c.Seconds)
}

// NewAbortCondition builds an AbortCondition from its config name and
// parameter, matching the names accepted by pkg/config's AbortEntry.
func NewAbortCondition(name string, param int) (AbortCondition, error) {
	switch name {
	case "max_iterations":
		return MaxIterations{N: param}, nil
	case "iterations_without_improvement":
		return IterationsWithoutImprovement{N: param}, nil
	case "max_runtime":
		return MaxRuntime{Seconds: param}, nil
	case "runtime_without_improvement":
		return RuntimeWithoutImprovement{Seconds: param}, nil
	default:
		return nil, apperror.ErrUnknownAbortCondition.WithField(name)
	}
}

// AnyShouldAbort reports whether any of conditions currently wants to stop.
func AnyShouldAbort(conditions []AbortCondition, state RunState) bool {
	for _, c := range conditions {
		if c.ShouldAbort(state) {
			return true
		}
	}
	return false
}
