// Package grader drives many assembled programs against many test cases
// through bounded headless simulation and aggregates the outcomes.
package grader

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edv121/hmmm-emulator/encoder"
	"github.com/edv121/hmmm-emulator/loader"
	"github.com/edv121/hmmm-emulator/parser"
	"github.com/edv121/hmmm-emulator/vm"
)

// DefaultMaxIterations is the per-grade-case step cap. A program still
// running after this many steps is declared MaximumIterationsReached.
const DefaultMaxIterations = 100000

// TestCase pairs an input vector with the output vector a correct
// program must produce.
type TestCase struct {
	Inputs  []int16
	Outputs []int16
}

// String renders the serialized form used on the command line and in
// the CSV report: "in1,in2|out1,out2;".
func (tc TestCase) String() string {
	return joinInts(tc.Inputs) + "|" + joinInts(tc.Outputs) + ";"
}

func joinInts(vals []int16) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ",")
}

// ParseTestCases parses the batch string: cases separated by
// semicolons, inputs and outputs separated by a pipe, values by commas.
// A trailing semicolon is optional, as is the semicolon for a single
// case.
func ParseTestCases(batch string) ([]TestCase, error) {
	batch = strings.TrimSuffix(strings.TrimSpace(batch), ";")
	if batch == "" {
		return nil, fmt.Errorf("empty test case string")
	}

	var cases []TestCase
	for _, part := range strings.Split(batch, ";") {
		halves := strings.Split(part, "|")
		if len(halves) != 2 {
			return nil, fmt.Errorf("test case %q: want inputs|outputs", part)
		}
		inputs, err := parseInts(halves[0])
		if err != nil {
			return nil, fmt.Errorf("test case %q: %w", part, err)
		}
		outputs, err := parseInts(halves[1])
		if err != nil {
			return nil, fmt.Errorf("test case %q: %w", part, err)
		}
		cases = append(cases, TestCase{Inputs: inputs, Outputs: outputs})
	}
	return cases, nil
}

func parseInts(list string) ([]int16, error) {
	var vals []int16
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseInt(tok, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", tok)
		}
		vals = append(vals, int16(v))
	}
	return vals, nil
}

// Program is one graded file: its base name and either the compiled
// instruction vector or the compile failure that stopped it.
type Program struct {
	FileName     string
	Instructions []vm.Instruction

	CompileCode int    // exit code when compilation failed, else 0
	CompileName string // kind name when compilation failed
	compileErr  bool

	// sim is the pristine machine built once per file; every grade
	// case runs on an independent clone of it.
	sim *vm.Simulator
}

// CompileFailed reports whether the file never produced a runnable
// program. Every test case of such a file grades as errored with the
// compile exit code.
func (p *Program) CompileFailed() bool {
	return p.compileErr
}

// Result is the outcome of one grade case: one program run against one
// test case.
type Result struct {
	FileName string
	TestCase TestCase
	Outputs  []int16
	ExitCode int
	ExitName string
}

// Passed reports whether the run terminated with Halt and produced
// exactly the expected outputs.
func (r Result) Passed() bool {
	if r.ExitCode != 0 || len(r.Outputs) != len(r.TestCase.Outputs) {
		return false
	}
	for i, v := range r.Outputs {
		if v != r.TestCase.Outputs[i] {
			return false
		}
	}
	return true
}

// AutoGrader grades every HMMM source file in a directory against a
// batch of test cases.
type AutoGrader struct {
	Dir           string
	Programs      []*Program
	TestCases     []TestCase
	MaxIterations int
	Workers       int

	// Results holds one row per (program, test case) pair, ordered by
	// test case first, program second, after Run.
	Results []Result
}

// New scans dir for source files and assembles each headlessly.
// Assembly failures do not abort the scan; they become compile-failed
// programs graded as errored on every case.
func New(dir, batch string) (*AutoGrader, error) {
	cases, err := ParseTestCases(batch)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	g := &AutoGrader{
		Dir:           dir,
		TestCases:     cases,
		MaxIterations: DefaultMaxIterations,
		Workers:       0,
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), loader.SourceExt) {
			continue
		}
		prog := &Program{FileName: entry.Name()}
		lines, err := loader.ReadLines(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		instrs, err := encoder.AssembleSource(lines)
		if err != nil {
			kind, ok := parser.KindOf(err)
			if !ok {
				return nil, err
			}
			prog.compileErr = true
			prog.CompileCode = kind.Code()
			prog.CompileName = kind.String()
		} else {
			prog.Instructions = instrs
			prog.sim = vm.NewHeadless(instrs)
		}
		g.Programs = append(g.Programs, prog)
	}

	return g, nil
}

// gradeOne runs a single grade case to its terminal condition on its
// own clone of the program's machine, so cases are independent. The
// template is never mutated after construction, so concurrent clones
// are safe.
func (g *AutoGrader) gradeOne(prog *Program, tc TestCase) Result {
	if prog.CompileFailed() {
		return Result{
			FileName: prog.FileName,
			TestCase: tc,
			ExitCode: prog.CompileCode,
			ExitName: prog.CompileName,
		}
	}

	sim := prog.sim.Clone()
	sim.SetInputs(tc.Inputs)

	kind := vm.MaximumIterationsReached
	for i := 0; i < g.MaxIterations; i++ {
		if err := sim.Step(); err != nil {
			kind = vm.ErrKind(err)
			break
		}
	}

	return Result{
		FileName: prog.FileName,
		TestCase: tc,
		Outputs:  sim.Outputs(),
		ExitCode: kind.Code(),
		ExitName: kind.String(),
	}
}
