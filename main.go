package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/edv121/hmmm-emulator/config"
	"github.com/edv121/hmmm-emulator/debugger"
	"github.com/edv121/hmmm-emulator/encoder"
	"github.com/edv121/hmmm-emulator/grader"
	"github.com/edv121/hmmm-emulator/loader"
	"github.com/edv121/hmmm-emulator/parser"
	"github.com/edv121/hmmm-emulator/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}

	rootCmd := &cobra.Command{
		Use:     "hmmm",
		Short:   "Assembler, disassembler, simulator, and autograder for the Harvey Mudd Miniature Machine",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
	}

	rootCmd.AddCommand(runCommand(cfg))
	rootCmd.AddCommand(buildCommand(cfg))
	rootCmd.AddCommand(gradeCommand(cfg))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadProgram reads either source or compiled form, keyed on extension.
func loadProgram(path string) ([]vm.Instruction, error) {
	lines, err := loader.ReadLines(path)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.HasSuffix(path, loader.SourceExt):
		return encoder.AssembleSource(lines)
	case strings.HasSuffix(path, loader.CompiledExt):
		return loader.ReadCompiled(path)
	default:
		return nil, fmt.Errorf("unknown file type: %s (want %s or %s)",
			path, loader.SourceExt, loader.CompiledExt)
	}
}

// exitWith maps a compile or runtime failure to its stable exit code.
func exitWith(err error) {
	fmt.Fprintf(os.Stderr, "%v\n", err)
	if kind, ok := parser.KindOf(err); ok {
		os.Exit(kind.Code())
	}
	os.Exit(vm.ErrKind(err).Code())
}

// printListing shows the compile success listing: the first rows plus
// the last when the program is longer.
func printListing(program []vm.Instruction, rows int) {
	fmt.Printf("%-6s %-8s %-20s %s\n", "Line", "Command", "Arguments", "Binary")
	for i, instr := range program {
		if i >= rows && len(program) > rows+1 {
			fmt.Println("........")
			last := program[len(program)-1]
			fmt.Printf("%-6d %-8s %-20s %s\n",
				len(program)-1, last.Type.Canonical(), last.Text, last.BinaryString())
			break
		}
		fmt.Printf("%-6d %-8s %-20s %s\n",
			i, instr.Type.Canonical(), instr.Text, instr.BinaryString())
	}
}

func runCommand(cfg *config.Config) *cobra.Command {
	var debugMode bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Assemble (if needed) and simulate a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(args[0])
			if err != nil {
				if _, ok := parser.KindOf(err); ok {
					exitWith(err)
				}
				return err
			}

			if debugMode {
				tui := debugger.NewTUI(vm.New(program))
				tui.Debugger.StepDelay = stepDelay(cfg)
				if err := tui.Run(); err != nil {
					return err
				}
				os.Exit(tui.Debugger.ExitCode())
			}

			sim := vm.New(program)
			for {
				if err := sim.Step(); err != nil {
					if vm.IsHalt(err) {
						fmt.Println("Program has reached end, exiting...")
						return nil
					}
					exitWith(err)
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&debugMode, "debug", "d", false, "step through the program on the debug screen")
	return cmd
}

func buildCommand(cfg *config.Config) *cobra.Command {
	var output string
	var explain bool

	cmd := &cobra.Command{
		Use:   "build <file>",
		Short: "Assemble source to .hb, or decompile .hb back to source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := loadProgram(args[0])
			if err != nil {
				if _, ok := parser.KindOf(err); ok {
					exitWith(err)
				}
				return err
			}

			fmt.Println("Compilation successful")
			printListing(program, cfg.Display.ListingRows)

			if explain {
				fmt.Println()
				for i, instr := range program {
					fmt.Printf("%3d  %s\n", i, instr.Human())
				}
			}

			if output == "" {
				return nil
			}
			switch {
			case strings.HasSuffix(output, loader.SourceExt):
				return loader.WriteSource(output, program)
			case strings.HasSuffix(output, loader.CompiledExt):
				return loader.WriteCompiled(output, program)
			default:
				return loader.WriteCompiled(output+loader.CompiledExt, program)
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (.hb or .hmmm)")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the human-readable explanation of each instruction")
	return cmd
}

func gradeCommand(cfg *config.Config) *cobra.Command {
	var workers, maxIterations int
	var noCSV bool

	cmd := &cobra.Command{
		Use:   "grade <dir> <testcases>",
		Short: "Grade every program in a directory against a test case batch",
		Long: `Grade every ` + loader.SourceExt + ` file in a directory against a batch of
test cases of the form "in1,in2|out1,out2;in1|out1;". Each grade case runs
headlessly with a bounded step count; results are printed per file and
exported as a timestamped CSV in the directory.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := grader.New(args[0], args[1])
			if err != nil {
				return err
			}
			g.MaxIterations = maxIterations
			g.Workers = workers

			g.Run()
			g.PrintResults(os.Stdout)

			if noCSV || !cfg.Grader.ExportCSV {
				return nil
			}
			path, err := g.ExportCSV(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("\nReport written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().IntVar(&workers, "workers", cfg.Grader.Workers, "grading workers (0 = one per CPU)")
	cmd.Flags().IntVar(&maxIterations, "max-iterations", cfg.Grader.MaxIterations, "step cap per grade case")
	cmd.Flags().BoolVar(&noCSV, "no-csv", false, "skip the CSV report")
	return cmd
}

func stepDelay(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Debugger.StepDelayMillis) * time.Millisecond
}
