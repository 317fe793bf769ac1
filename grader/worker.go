package grader

import (
	"runtime"
	"sync"
)

// gradeTask is one unit of work for the pool: a (program, test case)
// pair plus its slot in the result table.
type gradeTask struct {
	index int
	prog  *Program
	tc    TestCase
}

// Run grades every (test case, program) pair. Each grade case owns an
// independent machine, so the pairs are fanned out across a bounded
// worker pool; the only shared state is the pre-sized result slice,
// which workers write at disjoint indexes.
func (g *AutoGrader) Run() {
	workers := g.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	tasks := make([]gradeTask, 0, len(g.TestCases)*len(g.Programs))
	for _, tc := range g.TestCases {
		for _, prog := range g.Programs {
			tasks = append(tasks, gradeTask{index: len(tasks), prog: prog, tc: tc})
		}
	}
	g.Results = make([]Result, len(tasks))

	ch := make(chan gradeTask, len(tasks))
	for _, t := range tasks {
		ch <- t
	}
	close(ch)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range ch {
				g.Results[t.index] = g.gradeOne(t.prog, t.tc)
			}
		}()
	}
	wg.Wait()
}
