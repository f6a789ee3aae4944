// Package ioformat reads CVRP instance and solution files and writes
// solution files, in the plain line-oriented formats the solver has always
// used.
package ioformat

import (
	"bufio"
	"math"
	"os"
	"strconv"
	"strings"

	"kgls/internal/domain"
	"kgls/internal/solution"
	"kgls/pkg/apperror"
)

// ReadInstance reads a CVRP instance file: `CAPACITY : <int>`, section
// headers NODE_COORD_SECTION/DEMAND_SECTION, numeric rows `id x y` and
// `id demand`, terminated by EOF. The node with demand 0 becomes the depot.
// If a sibling ".vrp"->".sol" file exists next to path, its `Cost <int>`
// line supplies the instance's best-known solution cost.
func ReadInstance(path string) (*domain.Problem, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnreadableInstance, "cannot open instance file").WithField(path)
	}
	defer file.Close()

	type partial struct {
		id     int
		x, y   float64
		demand int
		hasXY  bool
	}
	nodes := make(map[int]*partial)
	order := make([]int, 0)
	capacity := 0
	section := ""

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "CAPACITY"):
			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				return nil, apperror.New(apperror.CodeMalformedInstance, "malformed CAPACITY line").WithField(line)
			}
			cap64, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, apperror.Wrap(err, apperror.CodeMalformedInstance, "CAPACITY value is not an integer").WithField(line)
			}
			capacity = cap64

		case line == "EOF":
			goto doneScanning

		case !isDigitStart(line):
			section = line

		case section == "NODE_COORD_SECTION":
			fields := strings.Fields(line)
			if len(fields) < 3 {
				return nil, apperror.New(apperror.CodeMalformedInstance, "node coord row needs id, x, y").WithField(line)
			}
			id, err1 := strconv.Atoi(fields[0])
			x, err2 := strconv.ParseFloat(fields[1], 64)
			y, err3 := strconv.ParseFloat(fields[2], 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, apperror.New(apperror.CodeMalformedInstance, "node coord row contains a non-numeric field").WithField(line)
			}
			p, ok := nodes[id]
			if !ok {
				p = &partial{id: id}
				nodes[id] = p
				order = append(order, id)
			}
			p.x, p.y, p.hasXY = x, y, true

		case section == "DEMAND_SECTION":
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, apperror.New(apperror.CodeMalformedInstance, "demand row needs id, demand").WithField(line)
			}
			id, err1 := strconv.Atoi(fields[0])
			demand, err2 := strconv.Atoi(fields[1])
			if err1 != nil || err2 != nil {
				return nil, apperror.New(apperror.CodeMalformedInstance, "demand row contains a non-numeric field").WithField(line)
			}
			p, ok := nodes[id]
			if !ok {
				p = &partial{id: id}
				nodes[id] = p
				order = append(order, id)
			}
			p.demand = demand
		}
	}
doneScanning:
	if err := scanner.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnreadableInstance, "error scanning instance file").WithField(path)
	}

	vrpNodes := make([]*domain.Node, 0, len(order))
	for _, id := range order {
		p := nodes[id]
		if !p.hasXY {
			return nil, apperror.New(apperror.CodeMalformedInstance, "node has a demand entry but no coordinates").WithField(strconv.Itoa(id))
		}
		vrpNodes = append(vrpNodes, &domain.Node{
			ID:      domain.NodeID(id),
			X:       p.x,
			Y:       p.y,
			Demand:  p.demand,
			IsDepot: p.demand == 0,
		})
	}

	bks := math.Inf(1)
	if solPath, ok := siblingSolPath(path); ok {
		if cost, err := readBestKnownCost(solPath); err == nil {
			bks = cost
		}
	}

	problem, err := domain.NewProblem(baseName(path), vrpNodes, capacity, bks)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedInstance, "instance failed validation").WithField(path)
	}
	return problem, nil
}

func isDigitStart(s string) bool {
	return len(s) > 0 && s[0] >= '0' && s[0] <= '9'
}

func siblingSolPath(vrpPath string) (string, bool) {
	if !strings.HasSuffix(vrpPath, ".vrp") {
		return "", false
	}
	solPath := strings.TrimSuffix(vrpPath, ".vrp") + ".sol"
	if _, err := os.Stat(solPath); err != nil {
		return "", false
	}
	return solPath, true
}

func readBestKnownCost(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	cost := math.Inf(1)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "Cost") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				if v, err := strconv.Atoi(fields[1]); err == nil {
					cost = float64(v)
				}
			}
		}
	}
	return cost, scanner.Err()
}

func baseName(path string) string {
	name := path
	if idx := strings.LastIndexAny(name, "/\\"); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.TrimSuffix(name, ".vrp")
}

// ReadSolution reads a solution file where each line is a route's nodes
// joined by "-", beginning and ending with the depot id (e.g.
// "0-4-3-1-2-0"). Empty routes are omitted from the file and from the
// returned Solution.
func ReadSolution(path string, problem *domain.Problem) (*solution.Solution, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnreadableInstance, "cannot open solution file").WithField(path)
	}
	defer file.Close()

	nodeByID := make(map[domain.NodeID]*domain.Node, len(problem.Nodes))
	for _, n := range problem.Nodes {
		nodeByID[n.ID] = n
	}

	sol := solution.New(problem)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, "-")
		customers := make([]*domain.Node, 0, len(fields))
		for _, f := range fields {
			id, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, apperror.New(apperror.CodeNonIntegerRouteEntry, "route contains a non-integer value").WithField(line)
			}
			node, ok := nodeByID[domain.NodeID(id)]
			if !ok {
				return nil, apperror.New(apperror.CodeUnknownNodeID, "node id in route does not exist in the instance").WithField(strconv.Itoa(id))
			}
			if !node.IsDepot {
				customers = append(customers, node)
			}
		}

		if len(customers) == 0 {
			continue
		}

		route := sol.AddRoute(customers)
		if route.Volume > problem.Capacity {
			return nil, apperror.New(apperror.CodeCapacityViolation, "loaded route exceeds vehicle capacity").WithField(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnreadableInstance, "error scanning solution file").WithField(path)
	}

	return sol, nil
}
