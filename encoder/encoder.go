// Package encoder assembles cleaned HMMM instruction lines into their
// 16-bit encodings. The catalog drives everything: the match pattern
// gives the fixed nibbles, the mask marks the free ones, and the
// argument schema says how operands fill them.
package encoder

import (
	"strconv"
	"strings"

	"github.com/edv121/hmmm-emulator/parser"
	"github.com/edv121/hmmm-emulator/vm"
)

// Encode assembles one cleaned instruction (lowercased mnemonic plus
// operand tokens) into an Instruction. Failures carry no source context;
// Assemble attaches it.
func Encode(mnemonic string, operands []string) (vm.Instruction, error) {
	t := vm.LookupName(mnemonic)
	if t == nil {
		return vm.Instruction{}, parser.NewCompileError(parser.InstructionDoesNotExist)
	}

	required := t.OperandCount()
	if len(operands) > required {
		return vm.Instruction{}, parser.NewCompileError(parser.TooManyArguments)
	}
	if len(operands) < required {
		return vm.Instruction{}, parser.NewCompileError(parser.TooFewArguments)
	}

	// Start from the match pattern; nibbles fixed by the mask are
	// filled, the rest take operands in schema order.
	var nibbles [4]uint8
	var filled [4]bool
	for i := 0; i < 4; i++ {
		nibbles[i] = uint8(t.Match >> uint(12-4*i) & 0xF)
		filled[i] = t.Mask>>uint(12-4*i)&0xF == 0xF
	}

	nextFree := func() int {
		for i := 0; i < 4; i++ {
			if !filled[i] {
				return i
			}
		}
		return -1
	}

	next := 0
	for _, c := range t.Args {
		slot := nextFree()
		switch c {
		case 'r':
			reg, err := parseRegister(operands[next])
			if err != nil {
				return vm.Instruction{}, err
			}
			nibbles[slot] = reg
			filled[slot] = true
			next++
		case 's':
			v, err := strconv.ParseInt(operands[next], 10, 8)
			if err != nil {
				return vm.Instruction{}, parser.NewCompileError(parser.InvalidSignedNumber)
			}
			b := uint8(v)
			nibbles[slot] = b >> 4
			nibbles[slot+1] = b & 0xF
			filled[slot], filled[slot+1] = true, true
			next++
		case 'u':
			v, err := strconv.ParseUint(operands[next], 10, 8)
			if err != nil {
				return vm.Instruction{}, parser.NewCompileError(parser.InvalidUnsignedNumber)
			}
			b := uint8(v)
			nibbles[slot] = b >> 4
			nibbles[slot+1] = b & 0xF
			filled[slot], filled[slot+1] = true, true
			next++
		case 'n':
			word, err := parseWord(operands[next])
			if err != nil {
				return vm.Instruction{}, err
			}
			for i := 0; i < 4; i++ {
				nibbles[i] = uint8(word >> uint(12-4*i) & 0xF)
				filled[i] = true
			}
			next++
		case 'z':
			// A zero nibble with no operand. The slot stays unfilled so
			// a later schema symbol may still land on it.
			nibbles[slot] = 0
		}
	}

	var word uint16
	for i := 0; i < 4; i++ {
		word = word<<4 | uint16(nibbles[i])
	}

	return vm.Instruction{
		Type: t,
		Text: strings.Join(operands, ", "),
		Word: word,
	}, nil
}

// parseRegister accepts the textual form rN with N in 0..15.
func parseRegister(arg string) (uint8, error) {
	if !strings.HasPrefix(arg, "r") {
		return 0, parser.NewCompileError(parser.InvalidArgumentType)
	}
	n, err := strconv.ParseUint(arg[1:], 10, 8)
	if err != nil || n > 15 {
		return 0, parser.NewCompileError(parser.InvalidRegister)
	}
	return uint8(n), nil
}

// parseWord accepts a 16-bit operand, trying hex first and decimal
// second, always emitted as two's-complement.
func parseWord(arg string) (uint16, error) {
	if v, err := strconv.ParseUint(arg, 16, 16); err == nil {
		return uint16(v), nil
	}
	if v, err := strconv.ParseInt(arg, 10, 16); err == nil {
		return uint16(v), nil
	}
	return 0, parser.NewCompileError(parser.InvalidNumber)
}

// Assemble maps parsed source lines to the program's instruction
// sequence. It never partially commits: the first faulty line aborts
// with its source context and nothing beyond it is emitted.
func Assemble(lines []parser.SourceLine) ([]vm.Instruction, error) {
	program := make([]vm.Instruction, 0, len(lines))
	for _, line := range lines {
		instr, err := Encode(line.Mnemonic, line.Operands)
		if err != nil {
			return nil, parser.WithContext(err, line.Index, line.Raw, line.Tokens())
		}
		program = append(program, instr)
	}
	return program, nil
}

// AssembleSource is the whole pipeline: raw file lines in, encoded
// program out.
func AssembleSource(lines []string) ([]vm.Instruction, error) {
	parsed, err := parser.Parse(lines)
	if err != nil {
		return nil, err
	}
	return Assemble(parsed)
}
