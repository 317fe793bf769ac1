package debugger

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/edv121/hmmm-emulator/vm"
)

// TUI represents the text user interface for the debugger.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout *tview.Flex

	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	StatusView   *tview.TextView
	OutputView   *tview.TextView
	InputLine    *tview.InputField
}

// NewTUI creates the debug screen around an interactive simulator.
func NewTUI(sim *vm.Simulator) *TUI {
	t := &TUI{App: tview.NewApplication()}

	t.initializeViews()
	t.Debugger = New(sim, t.OutputView)
	t.buildLayout()
	t.setupKeyBindings()
	t.refresh()

	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StatusView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.StatusView.SetBorder(true).SetTitle(" Machine ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")
	t.OutputView.SetChangedFunc(func() {
		t.App.Draw()
	})

	t.InputLine = tview.NewInputField().
		SetLabel("read> ").
		SetFieldWidth(0)
	t.InputLine.SetBorder(true).SetTitle(" Input ")
	t.InputLine.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		t.Debugger.FeedInput(t.InputLine.GetText())
		t.InputLine.SetText("")
		t.App.SetFocus(t.MemoryView)
	})
}

func (t *TUI) buildLayout() {
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 11, 0, false).
		AddItem(t.StatusView, 8, 0, false).
		AddItem(t.OutputView, 0, 1, false).
		AddItem(t.InputLine, 3, 0, false)

	t.MainLayout = tview.NewFlex().
		AddItem(t.MemoryView, 0, 2, true).
		AddItem(right, 0, 1, false)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if t.App.GetFocus() == t.InputLine {
			return event
		}
		switch event.Rune() {
		case 's':
			t.Debugger.StepOnce()
			t.refresh()
			return nil
		case 'r':
			t.Debugger.SetRunning(true)
			go t.runLoop()
			return nil
		case 'p':
			t.Debugger.SetRunning(false)
			return nil
		case 'i':
			t.App.SetFocus(t.InputLine)
			return nil
		case 'q':
			t.Debugger.Close()
			t.App.Stop()
			return nil
		}
		return event
	})
}

// runLoop advances the machine at the configured pace until paused or
// terminal. Steps happen off the UI goroutine because a read
// instruction blocks until the input line feeds it.
func (t *TUI) runLoop() {
	for t.Debugger.Running() {
		t.Debugger.StepOnce()
		t.App.QueueUpdateDraw(t.refresh)
		time.Sleep(t.Debugger.StepDelay)
	}
}

// refresh repaints every pane from the simulator's accessors.
func (t *TUI) refresh() {
	t.renderRegisters()
	t.renderMemory()
	t.renderStatus()
}

func (t *TUI) renderRegisters() {
	var sb strings.Builder
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			i := row*4 + col
			fmt.Fprintf(&sb, "[yellow]r%-2d[white] %7d  ", i, t.Debugger.Sim.Register(i))
		}
		sb.WriteString("\n\n")
	}
	t.RegisterView.SetText(sb.String())
}

func (t *TUI) renderMemory() {
	sim := t.Debugger.Sim
	var sb strings.Builder

	sb.WriteString("      ")
	for col := 0; col < 16; col++ {
		fmt.Fprintf(&sb, "   %X ", col)
	}
	sb.WriteString("\n")

	for row := 0; row < 16; row++ {
		fmt.Fprintf(&sb, "  %X  ", row)
		for col := 0; col < 16; col++ {
			addr := row*16 + col
			cell := sim.Memory(addr)
			switch {
			case addr == sim.PC():
				fmt.Fprintf(&sb, "[black:green]%s[-:-] ", cell.HexString())
			case !cell.IsData():
				fmt.Fprintf(&sb, "[black:purple]%s[-:-] ", cell.HexString())
			case cell.Word != 0:
				fmt.Fprintf(&sb, "[black:yellow]%s[-:-] ", cell.HexString())
			default:
				fmt.Fprintf(&sb, "%s ", cell.HexString())
			}
		}
		sb.WriteString("\n")
	}
	t.MemoryView.SetText(sb.String())
}

func (t *TUI) renderStatus() {
	sim := t.Debugger.Sim
	var sb strings.Builder

	fmt.Fprintf(&sb, "[yellow]PC[white]  %d\n", sim.PC())

	if sim.PC() < vm.MemorySize {
		ir := sim.Memory(sim.PC())
		fmt.Fprintf(&sb, "[yellow]IR[white]  %s\n", ir.String())
		fmt.Fprintf(&sb, "    %s\n", ir.Human())
	}

	if t.Debugger.Done != nil {
		kind := vm.ErrKind(t.Debugger.Done)
		if kind == vm.Halt {
			fmt.Fprintf(&sb, "\n[green]program finished[white]\n")
		} else {
			fmt.Fprintf(&sb, "\n[red]%s (exit %d)[white]\n", kind, kind.Code())
		}
	} else if t.Debugger.Running() {
		fmt.Fprintf(&sb, "\nrunning (p pauses)\n")
	} else {
		fmt.Fprintf(&sb, "\ns step  r run  i input  q quit\n")
	}

	t.StatusView.SetText(sb.String())
}

// Run starts the debug screen and blocks until the user quits with q;
// program termination leaves the screen open.
func (t *TUI) Run() error {
	return t.App.SetRoot(t.MainLayout, true).Run()
}
