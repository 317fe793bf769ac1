// Package loader reads and writes the on-disk program formats: .hmmm
// assembly source and the compiled .hb binary-text form.
package loader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/edv121/hmmm-emulator/parser"
	"github.com/edv121/hmmm-emulator/vm"
)

// Canonical file extensions. A compiled file is a 1-to-1 text rendering
// of program memory; it is more compact than source and carries no
// comments.
const (
	SourceExt   = ".hmmm"
	CompiledExt = ".hb"
)

// ReadLines loads a text file as trimmed lines.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied program path
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	raw := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return lines, nil
}

// ParseBinaryLine decodes one .hb line: exactly four 4-bit groups
// separated by single spaces.
func ParseBinaryLine(line string) (vm.Instruction, error) {
	groups := strings.Split(line, " ")
	if len(groups) != 4 {
		return vm.Instruction{}, parser.NewCompileError(parser.CorruptedBinary)
	}
	var word uint16
	for _, g := range groups {
		if len(g) != 4 {
			return vm.Instruction{}, parser.NewCompileError(parser.CorruptedBinary)
		}
		n, err := strconv.ParseUint(g, 2, 4)
		if err != nil {
			return vm.Instruction{}, parser.NewCompileError(parser.CorruptedBinary)
		}
		word = word<<4 | uint16(n)
	}
	return vm.Decode(word), nil
}

// ReadCompiled loads a .hb file into an instruction vector. The file is
// a prefix of program memory; the simulator pads the rest with blank
// data. A trailing newline is tolerated.
func ReadCompiled(path string) ([]vm.Instruction, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	var program []vm.Instruction
	for i, line := range lines {
		if line == "" {
			continue
		}
		instr, perr := ParseBinaryLine(line)
		if perr != nil {
			return nil, parser.WithContext(perr, i, line, strings.Split(line, " "))
		}
		program = append(program, instr)
	}
	return program, nil
}

// WriteCompiled writes a program as a .hb binary.
func WriteCompiled(path string, program []vm.Instruction) error {
	var sb strings.Builder
	for _, instr := range program {
		sb.WriteString(instr.BinaryString())
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(strings.TrimRight(sb.String(), "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// WriteSource writes a program back out as numbered .hmmm text, which
// serves as the decompiler: line numbers are regenerated from position.
func WriteSource(path string, program []vm.Instruction) error {
	var sb strings.Builder
	for i, instr := range program {
		fmt.Fprintf(&sb, "%d %s\n", i, instr.String())
	}
	if err := os.WriteFile(path, []byte(strings.TrimRight(sb.String(), "\n")), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
