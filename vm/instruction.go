package vm

import (
	"fmt"
	"strconv"
	"strings"
)

// Instruction is one 16-bit memory cell: the catalog entry it decodes to,
// the rendered operand text, and the canonical word. Raw data cells use
// the catalog's "data" entry, which makes the entire word the operand.
type Instruction struct {
	Type *InstructionType
	Text string // operands only, comma-space separated
	Word uint16
}

// Nibble returns the i'th 4-bit group of the word, 0 being the opcode
// group (the high nibble).
func (in Instruction) Nibble(i int) uint8 {
	return uint8(in.Word >> uint(12-4*i) & 0xF)
}

// IsData reports whether the cell holds raw data rather than code.
func (in Instruction) IsData() bool {
	return in.Type.Canonical() == "data"
}

// Value returns the cell's word as a signed 16-bit value.
func (in Instruction) Value() int16 {
	return int16(in.Word)
}

// String renders the canonical assembly form, "mnemonic operands".
func (in Instruction) String() string {
	if in.Text == "" {
		return in.Type.Canonical()
	}
	return in.Type.Canonical() + " " + in.Text
}

// BinaryString renders the word as four space-separated nibble groups,
// the line format of compiled .hb files.
func (in Instruction) BinaryString() string {
	return fmt.Sprintf("%04b %04b %04b %04b",
		in.Nibble(0), in.Nibble(1), in.Nibble(2), in.Nibble(3))
}

// HexString renders the word as four hex digits, as shown in the
// debugger's memory grid.
func (in Instruction) HexString() string {
	return fmt.Sprintf("%04X", in.Word)
}

// Human fills the type's template placeholders with the decoded
// operands, producing the debugger's one-line explanation.
func (in Instruction) Human() string {
	out := in.Type.Template
	for _, op := range in.Operands() {
		out = strings.Replace(out, "_", op, 1)
	}
	return out
}

// Operands walks the type's argument schema over the word and renders
// each operand. Nibbles are consumed left to right starting at offset 1;
// a z slot is skipped, an n slot takes the whole word.
func (in Instruction) Operands() []string {
	var ops []string
	pos := 1
	for _, c := range in.Type.Args {
		switch c {
		case 'r':
			ops = append(ops, "r"+strconv.Itoa(int(in.Nibble(pos))))
			pos++
		case 's':
			v := int8(in.Word >> uint(4*(2-pos)) & 0xFF)
			ops = append(ops, strconv.Itoa(int(v)))
			pos += 2
		case 'u':
			v := uint8(in.Word >> uint(4*(2-pos)) & 0xFF)
			ops = append(ops, strconv.Itoa(int(v)))
			pos += 2
		case 'n':
			ops = append(ops, strconv.Itoa(int(int16(in.Word))))
			pos = 4
		case 'z':
			pos++
		}
	}
	return ops
}

// Decode maps a 16-bit word back to its instruction. The catalog scan
// takes the first entry whose fixed nibbles match; the data entry is the
// catch-all, so every word decodes.
func Decode(word uint16) Instruction {
	t := LookupWord(word)
	in := Instruction{Type: t, Word: word}
	in.Text = strings.Join(in.Operands(), ", ")
	return in
}

// NewData builds a raw data cell holding the given value.
func NewData(value int16) Instruction {
	in := Instruction{Type: DataType(), Word: uint16(value)}
	in.Text = strconv.Itoa(int(value))
	return in
}

// BlankData is the all-zero data cell used to pad unused memory.
func BlankData() Instruction {
	return NewData(0)
}
