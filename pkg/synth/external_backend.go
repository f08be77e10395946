package synth

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/egementunca/ID-Circuit/pkg/cnf"
)

// externalBackend shells out to a DIMACS-speaking SAT binary (minisat,
// glucose, cadical, ...): the instance is written to a temp file, the
// binary is invoked with that path plus any caller-supplied extra args,
// and its "s SATISFIABLE"/"v ..." output is parsed back into a cnf.Model.
type externalBackend struct {
	name string
	path string
	args []string
}

// NewExternalBackend returns a Backend that invokes the binary at path,
// identified in logs and registry lookups by name. Extra command-line
// arguments (solver-specific tuning flags) may be supplied via args; the
// CNF file path is always appended last.
func NewExternalBackend(name, path string, args ...string) Backend {
	return &externalBackend{name: name, path: path, args: args}
}

func (e *externalBackend) Name() string { return e.name }

func (e *externalBackend) Solve(ctx context.Context, b *cnf.Builder) (cnf.Model, bool, error) {
	f, err := os.CreateTemp("", "id-circuit-*.cnf")
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(b.ToDIMACS()); err != nil {
		f.Close()
		return nil, false, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}
	if err := f.Close(); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}

	args := append(append([]string(nil), e.args...), f.Name())
	cmd := exec.CommandContext(ctx, e.path, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	runErr := cmd.Run()

	if ctx.Err() != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}

	sat, model, parseErr := parseDIMACSOutput(stdout.Bytes())
	if parseErr != nil {
		// Most DIMACS solvers exit non-zero on UNSAT; only treat a run
		// error as fatal if we also failed to recognize a verdict.
		if runErr != nil {
			return nil, false, fmt.Errorf("%w: %v (process: %v)", ErrSolverFailure, parseErr, runErr)
		}
		return nil, false, fmt.Errorf("%w: %v", ErrSolverFailure, parseErr)
	}
	if !sat {
		return nil, false, nil
	}
	return model, true, nil
}

var errNoVerdict = errors.New("no SATISFIABLE/UNSATISFIABLE verdict found in solver output")

// parseDIMACSOutput scans for the standard "s SATISFIABLE"/"s UNSATISFIABLE"
// status line and, on SAT, the "v ..." literal lines most DIMACS solvers
// (minisat, glucose, cadical) emit.
func parseDIMACSOutput(out []byte) (bool, cnf.Model, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	verdictSeen := false
	sat := false
	model := cnf.Model{}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "s SATISFIABLE"):
			verdictSeen, sat = true, true
		case strings.HasPrefix(line, "s UNSATISFIABLE"):
			verdictSeen, sat = true, false
		case strings.HasPrefix(line, "v "):
			for _, tok := range strings.Fields(line[2:]) {
				lit, err := strconv.Atoi(tok)
				if err != nil || lit == 0 {
					continue
				}
				if lit > 0 {
					model[lit] = true
				} else {
					model[-lit] = false
				}
			}
		}
	}
	if !verdictSeen {
		return false, nil, errNoVerdict
	}
	if !sat {
		return false, nil, nil
	}
	return true, model, nil
}
