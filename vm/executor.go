package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Step performs one fetch/execute tick. It returns nil while the program
// is still running; the first non-nil result is terminal and the
// simulator must not be stepped again. Halt is the normal termination.
func (s *Simulator) Step() error {
	if err := s.execute(); err != nil {
		return err
	}

	// Control-transfer handlers move the PC themselves; everything else
	// falls through to the next cell. The fall-through from the last
	// cell parks the PC on the 256 sentinel, which the next fetch
	// rejects.
	if !s.justUpdatedPC {
		s.counterLog = append(s.counterLog, s.pc)
		s.pc++
	}
	return nil
}

func (s *Simulator) execute() error {
	if s.pc > MemorySize-1 {
		return &RuntimeError{Kind: InvalidProgramCounter, PC: s.pc}
	}

	instr := s.memory[s.pc]
	if instr.IsData() {
		return &RuntimeError{Kind: InstructionIsData, PC: s.pc}
	}

	s.justUpdatedPC = false

	// Quick-access operand views shared by the handlers.
	rx := instr.Nibble(1)
	ry := instr.Nibble(2)
	rz := instr.Nibble(3)
	imm8u := uint8(instr.Word & 0xFF)
	imm8s := int8(instr.Word & 0xFF)

	switch instr.Type.Canonical() {
	case "halt":
		return &RuntimeError{Kind: Halt, PC: s.pc}
	case "nop":
		return nil
	case "read":
		return s.performRead(rx)
	case "write":
		return s.performWrite(rx)
	case "setn":
		return s.storeChecked(rx, int(imm8s))
	case "addn":
		v, err := s.ReadReg(rx)
		if err != nil {
			return err
		}
		return s.storeChecked(rx, int(v)+int(imm8s))
	case "copy":
		v, err := s.ReadReg(ry)
		if err != nil {
			return err
		}
		return s.WriteReg(rx, v)
	case "neg":
		// The operand register sits in the last nibble; the middle
		// nibble is fixed zero by the mask.
		v, err := s.ReadReg(rz)
		if err != nil {
			return err
		}
		return s.storeChecked(rx, -int(v))
	case "add", "sub", "mul", "div", "mod":
		return s.performArithmetic(instr.Type.Canonical(), rx, ry, rz)
	case "loadn":
		v, err := s.ReadMem(imm8u)
		if err != nil {
			return err
		}
		return s.WriteReg(rx, v)
	case "storen":
		v, err := s.ReadReg(rx)
		if err != nil {
			return err
		}
		return s.WriteMem(imm8u, v)
	case "loadr":
		return s.performLoadr(rx, ry)
	case "storer":
		return s.performStorer(rx, ry)
	case "popr":
		return s.performPopr(rx, ry)
	case "pushr":
		return s.performPushr(rx, ry)
	case "jumpr":
		return s.performJumpr(rx)
	case "jumpn":
		return s.jumpTo(int(imm8u))
	case "jeqzn":
		return s.performConditionalJump(rx, int(imm8u), func(v int16) bool { return v == 0 })
	case "jnezn":
		return s.performConditionalJump(rx, int(imm8u), func(v int16) bool { return v != 0 })
	case "jgtzn":
		return s.performConditionalJump(rx, int(imm8u), func(v int16) bool { return v > 0 })
	case "jltzn":
		return s.performConditionalJump(rx, int(imm8u), func(v int16) bool { return v < 0 })
	case "calln":
		if err := s.WriteReg(rx, int16(s.pc+1)); err != nil {
			return err
		}
		return s.jumpTo(int(imm8u))
	default:
		return &RuntimeError{Kind: InvalidInstructionType, PC: s.pc}
	}
}

// storeChecked writes a widened arithmetic result to a register, failing
// when it does not fit in signed 16-bit.
func (s *Simulator) storeChecked(rx uint8, result int) error {
	if result > 32767 || result < -32768 {
		return &RuntimeError{Kind: RegisterOutOfBounds, PC: s.pc}
	}
	return s.WriteReg(rx, int16(result))
}

func (s *Simulator) performArithmetic(name string, rx, ry, rz uint8) error {
	a, err := s.ReadReg(ry)
	if err != nil {
		return err
	}
	b, err := s.ReadReg(rz)
	if err != nil {
		return err
	}

	var result int
	switch name {
	case "add":
		result = int(a) + int(b)
	case "sub":
		result = int(a) - int(b)
	case "mul":
		result = int(a) * int(b)
	case "div":
		if b == 0 {
			return &RuntimeError{Kind: DivideByZero, PC: s.pc}
		}
		result = int(a) / int(b)
	case "mod":
		if b == 0 {
			return &RuntimeError{Kind: DivideByZero, PC: s.pc}
		}
		result = int(a) % int(b)
	}
	return s.storeChecked(rx, result)
}

func (s *Simulator) performRead(rx uint8) error {
	if s.headless {
		v, ok := s.nextInput()
		if !ok {
			return &RuntimeError{Kind: TooManyInputs, PC: s.pc}
		}
		return s.WriteReg(rx, v)
	}

	// Interactive: prompt until a valid signed 16-bit value, or q to
	// stop the program.
	for {
		fmt.Fprintln(s.output, "Enter number:")
		line, err := s.input.ReadString('\n')
		if err != nil && line == "" {
			return &RuntimeError{Kind: Halt, PC: s.pc}
		}
		line = strings.TrimSpace(line)
		if line == "q" {
			return &RuntimeError{Kind: Halt, PC: s.pc}
		}
		if v, perr := strconv.ParseInt(line, 10, 16); perr == nil {
			return s.WriteReg(rx, int16(v))
		}
		fmt.Fprintln(s.output, "Invalid number! Please try again...")
	}
}

func (s *Simulator) performWrite(rx uint8) error {
	v, err := s.ReadReg(rx)
	if err != nil {
		return err
	}
	if s.headless {
		s.addOutput(v)
		return nil
	}
	fmt.Fprintln(s.output, v)
	return nil
}

func (s *Simulator) performLoadr(rx, ry uint8) error {
	index, err := s.ReadReg(ry)
	if err != nil {
		return err
	}
	if index < 0 || index > MemorySize-1 {
		return &RuntimeError{Kind: InvalidMemoryLocation, PC: s.pc}
	}
	v, err := s.ReadMem(uint8(index))
	if err != nil {
		return err
	}
	return s.WriteReg(rx, v)
}

func (s *Simulator) performStorer(rx, ry uint8) error {
	index, err := s.ReadReg(ry)
	if err != nil {
		return err
	}
	if index < 0 || index > MemorySize-1 {
		return &RuntimeError{Kind: InvalidMemoryLocation, PC: s.pc}
	}
	v, err := s.ReadReg(rx)
	if err != nil {
		return err
	}
	return s.WriteMem(uint8(index), v)
}

// performPopr decrements the indexing register first, then loads from
// the decremented address.
func (s *Simulator) performPopr(rx, ry uint8) error {
	top, err := s.ReadReg(ry)
	if err != nil {
		return err
	}
	if top < 1 || top > MemorySize-1 {
		return &RuntimeError{Kind: InvalidMemoryLocation, PC: s.pc}
	}
	if err := s.WriteReg(ry, top-1); err != nil {
		return err
	}
	v, err := s.ReadMem(uint8(top - 1))
	if err != nil {
		return err
	}
	return s.WriteReg(rx, v)
}

// performPushr stores through the indexing register first, then
// increments it.
func (s *Simulator) performPushr(rx, ry uint8) error {
	top, err := s.ReadReg(ry)
	if err != nil {
		return err
	}
	if top < 0 || top > MemorySize-1 {
		return &RuntimeError{Kind: InvalidMemoryLocation, PC: s.pc}
	}
	v, err := s.ReadReg(rx)
	if err != nil {
		return err
	}
	if err := s.WriteMem(uint8(top), v); err != nil {
		return err
	}
	return s.WriteReg(ry, top+1)
}

func (s *Simulator) performJumpr(rx uint8) error {
	target, err := s.ReadReg(rx)
	if err != nil {
		return err
	}
	if target < 0 {
		return &RuntimeError{Kind: InvalidProgramCounter, PC: s.pc}
	}
	return s.jumpTo(int(target))
}

func (s *Simulator) performConditionalJump(rx uint8, target int, cond func(int16) bool) error {
	v, err := s.ReadReg(rx)
	if err != nil {
		return err
	}
	if cond(v) {
		return s.jumpTo(target)
	}
	return nil
}
