// Command kgls solves a capacitated vehicle routing instance with a
// knowledge-guided local search metaheuristic: Clarke-Wright construction,
// then alternating improve/perturbate cycles until an abort condition
// fires.
//
// Usage:
//
//	kgls -instance path/to/instance.vrp -solution out.sol
//
// Configuration is loaded with the same priority as every other binary in
// this module: environment variables (KGLS_ prefix), then kgls.yaml in the
// standard search paths, then defaults from pkg/config.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"kgls/internal/domain"
	"kgls/internal/engine"
	"kgls/internal/evaluator"
	"kgls/internal/ioformat"
	"kgls/internal/solution"
	"kgls/pkg/apperror"
	"kgls/pkg/config"
	"kgls/pkg/logger"
	"kgls/pkg/metrics"
	"kgls/pkg/report"
)

func main() {
	instancePath := flag.String("instance", "", "path to a .vrp instance file (required)")
	solutionPath := flag.String("solution", "", "path to write the .sol output file (required)")
	startSolutionPath := flag.String("start-solution", "", "optional .sol file to start the search from instead of Clarke-Wright construction")
	flag.Parse()

	if *instancePath == "" || *solutionPath == "" {
		fmt.Fprintln(os.Stderr, "usage: kgls -instance <path.vrp> -solution <path.sol> [-start-solution <path.sol>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	solution.SetDebugAssertions(debugAssertionsEnabled())

	if cfg.Metrics.Enabled {
		metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		go func() {
			if err := metrics.Serve(cfg.Metrics.Port); err != nil {
				logger.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	problem, err := ioformat.ReadInstance(*instancePath)
	if err != nil {
		logger.Fatal("failed to read instance", "path", *instancePath, "error", err, "code", apperror.Code(err))
	}

	var startSolution *solution.Solution
	if *startSolutionPath != "" {
		startSolution, err = ioformat.ReadSolution(*startSolutionPath, problem)
		if err != nil {
			logger.Fatal("failed to read start solution", "path", *startSolutionPath, "error", err, "code", apperror.Code(err))
		}
	}

	e := engine.New(problem, cfg.Run)
	if err := e.SetAbortConditions(cfg.Abort); err != nil {
		logger.Fatal("invalid abort condition configuration", "error", err)
	}

	best, stats, err := e.Run(startSolution)
	if err != nil {
		logger.Fatal("run failed", "error", err, "code", apperror.Code(err))
	}

	if err := ioformat.WriteSolution(*solutionPath, best); err != nil {
		logger.Fatal("failed to write solution", "path", *solutionPath, "error", err)
	}

	logger.WithInstance(problem.Name).Info("run complete",
		"best_cost", stats.BestCost,
		"iterations", stats.Iterations,
		"best_iteration", stats.BestIteration,
		"runtime_seconds", stats.Runtime.Seconds(),
		"gap_percent", stats.BestGap,
	)

	if cfg.Report.WritePDF || cfg.Report.WriteExcel {
		writeReports(cfg, problem, stats, best)
	}
}

func writeReports(cfg *config.Config, problem *domain.Problem, stats engine.Stats, best *solution.Solution) {
	ev := evaluator.New(problem, cfg.Run.NeighborhoodSize)
	data := report.Summarize(problem.Name, stats.RunID, best, ev, stats.Iterations, stats.Runtime, stats.BestGap)

	if err := os.MkdirAll(cfg.Report.OutputDir, 0755); err != nil {
		logger.Warn("failed to create report output directory", "path", cfg.Report.OutputDir, "error", err)
		return
	}

	if cfg.Report.WritePDF {
		bytes, err := report.WritePDF(data)
		if err != nil {
			logger.Warn("failed to render PDF report", "error", err)
		} else if err := os.WriteFile(filepath.Join(cfg.Report.OutputDir, problem.Name+".pdf"), bytes, 0o644); err != nil {
			logger.Warn("failed to write PDF report", "error", err)
		}
	}

	if cfg.Report.WriteExcel {
		bytes, err := report.WriteExcel(data)
		if err != nil {
			logger.Warn("failed to render Excel report", "error", err)
		} else if err := os.WriteFile(filepath.Join(cfg.Report.OutputDir, problem.Name+".xlsx"), bytes, 0o644); err != nil {
			logger.Warn("failed to write Excel report", "error", err)
		}
	}
}

func debugAssertionsEnabled() bool {
	v := os.Getenv("KGLS_DEBUG_ASSERTIONS")
	return v == "" || v == "1" || v == "true"
}
