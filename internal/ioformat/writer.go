package ioformat

import (
	"bufio"
	"os"

	"kgls/internal/solution"
	"kgls/pkg/apperror"
)

// WriteSolution writes sol to path: one route per line, nodes joined by
// "-", beginning and ending with the depot id. Routes with no customers are
// omitted.
func WriteSolution(path string, sol *solution.Solution) error {
	file, err := os.Create(path)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "cannot create solution file").WithField(path)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, route := range sol.Routes {
		if route.Size == 0 {
			continue
		}
		if _, err := w.WriteString(route.String() + "\n"); err != nil {
			return apperror.Wrap(err, apperror.CodeInternal, "error writing solution file").WithField(path)
		}
	}
	return w.Flush()
}
