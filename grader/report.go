package grader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FileSummary aggregates one file's outcomes across every test case.
type FileSummary struct {
	FileName string
	Errored  int // terminated with a non-zero exit code
	Failed   int // exited cleanly but outputs did not match
	Passed   int
}

// Summaries rolls the result table up per file, in scan order.
func (g *AutoGrader) Summaries() []FileSummary {
	byFile := make(map[string]*FileSummary, len(g.Programs))
	out := make([]FileSummary, 0, len(g.Programs))
	for _, prog := range g.Programs {
		byFile[prog.FileName] = &FileSummary{FileName: prog.FileName}
	}
	for _, r := range g.Results {
		s := byFile[r.FileName]
		switch {
		case r.ExitCode != 0:
			s.Errored++
		case !r.Passed():
			s.Failed++
		default:
			s.Passed++
		}
	}
	for _, prog := range g.Programs {
		out = append(out, *byFile[prog.FileName])
	}
	return out
}

// PrintResults writes the per-file summary table.
func (g *AutoGrader) PrintResults(w io.Writer) {
	total := len(g.TestCases)
	fmt.Fprintf(w, "%-45s %8s %8s %8s %10s\n",
		"Name of File", "Errored", "Failed", "Passed", "Pass/Fail")
	for _, s := range g.Summaries() {
		verdict := "F"
		if s.Passed == total {
			verdict = "P"
		}
		fmt.Fprintf(w, "%-45s %8d %8d %8d %6s %d/%d\n",
			s.FileName, s.Errored, s.Failed, s.Passed, verdict, s.Passed, total)
	}
}

// ExportCSV writes one row per grade case to
// <dir>/results_YYYY-MM-DD_HH-MM-SS.csv and returns the path.
func (g *AutoGrader) ExportCSV(dir string) (string, error) {
	path := filepath.Join(dir,
		"results_"+time.Now().Format("2006-01-02_15-04-05")+".csv")

	f, err := os.Create(path) // #nosec G304 -- caller-chosen report directory
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"File Name", "Test Case", "Exit Code", "Exit String", "Pass/Fail"}); err != nil {
		return "", err
	}
	for _, r := range g.Results {
		verdict := "Fail"
		if r.Passed() {
			verdict = "Pass"
		}
		row := []string{
			r.FileName,
			r.TestCase.String(),
			strconv.Itoa(r.ExitCode),
			r.ExitName,
			verdict,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
