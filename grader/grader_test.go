package grader

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTestCases(t *testing.T) {
	cases, err := ParseTestCases("10,0|10,0;10,2|10,5;")
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, []int16{10, 0}, cases[0].Inputs)
	assert.Equal(t, []int16{10, 0}, cases[0].Outputs)
	assert.Equal(t, []int16{10, 2}, cases[1].Inputs)
	assert.Equal(t, []int16{10, 5}, cases[1].Outputs)
}

func TestParseTestCasesSingleNoSemicolon(t *testing.T) {
	cases, err := ParseTestCases("7|7")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, []int16{7}, cases[0].Inputs)
	assert.Equal(t, []int16{7}, cases[0].Outputs)
}

func TestParseTestCasesEmptyInputs(t *testing.T) {
	cases, err := ParseTestCases("|5")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Empty(t, cases[0].Inputs)
	assert.Equal(t, []int16{5}, cases[0].Outputs)
}

func TestParseTestCasesErrors(t *testing.T) {
	for _, bad := range []string{"", "1,2", "1|2|3", "1,x|2", "99999|1"} {
		_, err := ParseTestCases(bad)
		assert.Error(t, err, "batch %q", bad)
	}
}

func TestTestCaseString(t *testing.T) {
	tc := TestCase{Inputs: []int16{10, 0}, Outputs: []int16{10, 0}}
	assert.Equal(t, "10,0|10,0;", tc.String())
}

func writeProgram(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, name), []byte(strings.Join(lines, "\n")), 0o644)
	require.NoError(t, err)
}

// Division with a zero guard: the program prints the dividend, then
// either the quotient or 0 when the divisor is zero.
func divisionGuard(t *testing.T, dir string) {
	writeProgram(t, dir, "divide.hmmm",
		"0 read r1",
		"1 write r1",
		"2 read r2",
		"3 jeqzn r2 7",
		"4 div r3 r1 r2",
		"5 write r3",
		"6 halt",
		"7 setn r3 0",
		"8 write r3",
		"9 halt",
	)
}

func TestGradeDivisionGuard(t *testing.T) {
	dir := t.TempDir()
	divisionGuard(t, dir)

	g, err := New(dir, "10,0|10,0;10,2|10,5;")
	require.NoError(t, err)
	g.Run()

	require.Len(t, g.Results, 2)
	for _, r := range g.Results {
		assert.Equal(t, 0, r.ExitCode, "case %s", r.TestCase)
		assert.Equal(t, "Halt", r.ExitName)
		assert.True(t, r.Passed(), "case %s outputs %v", r.TestCase, r.Outputs)
	}

	summary := g.Summaries()
	require.Len(t, summary, 1)
	assert.Equal(t, 2, summary[0].Passed)
	assert.Equal(t, 0, summary[0].Errored)
	assert.Equal(t, 0, summary[0].Failed)
}

func TestGradeCountingLoop(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "count.hmmm",
		"0 setn r1 0",
		"1 setn r2 5",
		"2 jeqzn r2 6",
		"3 addn r1 1",
		"4 addn r2 -1",
		"5 jumpn 2",
		"6 write r1",
		"7 halt",
	)

	g, err := New(dir, "|5")
	require.NoError(t, err)
	g.Run()

	require.Len(t, g.Results, 1)
	assert.True(t, g.Results[0].Passed())
	assert.Equal(t, []int16{5}, g.Results[0].Outputs)
}

func TestGradeDataExecution(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "data.hmmm", "0 jumpn 5")

	g, err := New(dir, "|")
	require.NoError(t, err)
	g.Run()

	require.Len(t, g.Results, 1)
	assert.Equal(t, 107, g.Results[0].ExitCode)
	assert.Equal(t, "InstructionIsData", g.Results[0].ExitName)
	assert.False(t, g.Results[0].Passed())
}

func TestGradeIterationCap(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "spin.hmmm", "0 jumpn 0")

	g, err := New(dir, "|")
	require.NoError(t, err)
	g.MaxIterations = 500
	g.Run()

	require.Len(t, g.Results, 1)
	assert.Equal(t, 111, g.Results[0].ExitCode)
	assert.Equal(t, "MaximumIterationsReached", g.Results[0].ExitName)
}

func TestGradeInputStarvation(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "starve.hmmm",
		"0 read r1",
		"1 read r2",
		"2 halt",
	)

	g, err := New(dir, "7|")
	require.NoError(t, err)
	g.Run()

	require.Len(t, g.Results, 1)
	assert.Equal(t, 112, g.Results[0].ExitCode)
	assert.Empty(t, g.Results[0].Outputs)
}

func TestGradeCompileFailure(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "broken.hmmm", "0 frobnicate r1")
	divisionGuard(t, dir)

	g, err := New(dir, "10,2|10,5;")
	require.NoError(t, err)
	g.Run()

	require.Len(t, g.Results, 2)
	byName := map[string]Result{}
	for _, r := range g.Results {
		byName[r.FileName] = r
	}

	broken := byName["broken.hmmm"]
	assert.Equal(t, 10, broken.ExitCode)
	assert.Equal(t, "InstructionDoesNotExist", broken.ExitName)
	assert.False(t, broken.Passed())

	assert.True(t, byName["divide.hmmm"].Passed())
}

// A clean exit with mismatched outputs is a failure, not an error.
func TestGradeOutputMismatch(t *testing.T) {
	dir := t.TempDir()
	writeProgram(t, dir, "wrong.hmmm",
		"0 setn r1 3",
		"1 write r1",
		"2 halt",
	)

	g, err := New(dir, "|4")
	require.NoError(t, err)
	g.Run()

	require.Len(t, g.Results, 1)
	r := g.Results[0]
	assert.Equal(t, 0, r.ExitCode)
	assert.False(t, r.Passed())

	summary := g.Summaries()
	assert.Equal(t, 1, summary[0].Failed)
	assert.Equal(t, 0, summary[0].Errored)
}

func TestExportCSV(t *testing.T) {
	dir := t.TempDir()
	divisionGuard(t, dir)

	g, err := New(dir, "10,0|10,0;10,2|10,5;")
	require.NoError(t, err)
	g.Run()

	path, err := g.ExportCSV(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "results_"))
	assert.True(t, strings.HasSuffix(path, ".csv"))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + one row per grade case

	assert.Equal(t, []string{"File Name", "Test Case", "Exit Code", "Exit String", "Pass/Fail"}, rows[0])
	assert.Equal(t, "divide.hmmm", rows[1][0])
	assert.Equal(t, "10,0|10,0;", rows[1][1])
	assert.Equal(t, "0", rows[1][2])
	assert.Equal(t, "Halt", rows[1][3])
	assert.Equal(t, "Pass", rows[1][4])
}

func TestPrintResults(t *testing.T) {
	dir := t.TempDir()
	divisionGuard(t, dir)

	g, err := New(dir, "10,2|10,5;")
	require.NoError(t, err)
	g.Run()

	var sb strings.Builder
	g.PrintResults(&sb)
	assert.Contains(t, sb.String(), "divide.hmmm")
	assert.Contains(t, sb.String(), "P 1/1")
}
