// Package debugger provides the interactive debug screen: a live view
// of the register file, the 256-cell memory grid, the program counter
// and instruction register, driven one step at a time. It talks to the
// simulator only through its read-only accessors plus Step, so the
// machine never knows a terminal is attached.
package debugger

import (
	"io"
	"time"

	"github.com/edv121/hmmm-emulator/vm"
)

// Debugger owns one simulator and its stepping state.
type Debugger struct {
	Sim *vm.Simulator

	// StepDelay paces automatic run mode.
	StepDelay time.Duration

	// Done is the terminal condition once stepping has stopped, nil
	// while the program can still advance.
	Done error

	running bool
	input   *io.PipeWriter
}

// New wires a debugger around an interactive simulator. The simulator's
// prompt I/O is redirected into the TUI: program output lands in the
// output pane and read requests are satisfied from the input line.
func New(sim *vm.Simulator, out io.Writer) *Debugger {
	pr, pw := io.Pipe()
	sim.SetIO(pr, out)
	return &Debugger{
		Sim:       sim,
		StepDelay: 500 * time.Millisecond,
		input:     pw,
	}
}

// StepOnce advances the machine one instruction. Once a terminal
// condition is reached further calls are no-ops.
func (d *Debugger) StepOnce() {
	if d.Done != nil {
		return
	}
	if err := d.Sim.Step(); err != nil {
		d.Done = err
		d.running = false
	}
}

// Running reports whether automatic run mode is active.
func (d *Debugger) Running() bool {
	return d.running
}

// SetRunning toggles automatic run mode.
func (d *Debugger) SetRunning(on bool) {
	if d.Done != nil {
		return
	}
	d.running = on
}

// FeedInput hands one line to a pending read instruction.
func (d *Debugger) FeedInput(line string) {
	go d.input.Write([]byte(line + "\n"))
}

// Close releases the input pipe; a blocked read sees EOF and halts.
func (d *Debugger) Close() {
	d.input.Close()
}

// ExitCode returns the process exit code for the terminal condition.
func (d *Debugger) ExitCode() int {
	if d.Done == nil {
		return 0
	}
	return vm.ErrKind(d.Done).Code()
}
