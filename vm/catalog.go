package vm

// InstructionType is one entry of the instruction catalog: the mnemonics,
// the fixed bits of the 16-bit encoding, and the schema that drives both
// encoding and decoding of the operand nibbles.
type InstructionType struct {
	// Names holds every accepted mnemonic; the first is canonical, the
	// rest are aliases.
	Names []string

	// Match holds the fixed bits of the encoding.
	Match uint16

	// Mask marks which nibbles are fixed by Match: a 0xF nibble is
	// fixed, a 0x0 nibble carries an operand.
	Mask uint16

	// Args describes how the free nibbles are consumed, one symbol per
	// operand slot:
	//
	//	r  register, one nibble
	//	s  signed 8-bit, two nibbles
	//	u  unsigned 8-bit, two nibbles
	//	n  16-bit value, all four nibbles
	//	z  one zero nibble, no textual operand
	Args string

	// Template is the human-readable description, with "_" placeholders
	// filled in operand order.
	Template string
}

// Canonical returns the canonical mnemonic.
func (t *InstructionType) Canonical() string {
	return t.Names[0]
}

// HasName reports whether name is one of the type's mnemonics.
func (t *InstructionType) HasName(name string) bool {
	for _, n := range t.Names {
		if n == name {
			return true
		}
	}
	return false
}

// OperandCount returns the number of textual operands the type takes:
// every schema symbol except z consumes one.
func (t *InstructionType) OperandCount() int {
	n := 0
	for _, c := range t.Args {
		if c != 'z' {
			n++
		}
	}
	return n
}

// Matches reports whether word carries the type's fixed nibbles.
func (t *InstructionType) Matches(word uint16) bool {
	return word&t.Mask == t.Match&t.Mask
}

// InstructionSet is the catalog of every HMMM instruction, scanned in
// declared order. The order is load-bearing: several types share a match
// pattern, and the ones with tighter masks (nop before copy before add,
// jumpn before calln) must come first or they would be shadowed. The
// all-operand "data" type matches every word and so sits last.
var InstructionSet = []InstructionType{
	{Names: []string{"halt"}, Match: 0x0000, Mask: 0xFFFF, Args: "",
		Template: "Halts the program"},
	{Names: []string{"read"}, Match: 0x0001, Mask: 0xF0FF, Args: "r",
		Template: "Place 16-bit integer in register _"},
	{Names: []string{"write"}, Match: 0x0002, Mask: 0xF0FF, Args: "r",
		Template: "Print contents of register _"},
	{Names: []string{"jumpr", "jump"}, Match: 0x0003, Mask: 0xF0FF, Args: "r",
		Template: "Set program counter to address in register _"},
	{Names: []string{"setn"}, Match: 0x1000, Mask: 0xF000, Args: "rs",
		Template: "Set register _ equal to integer _"},
	{Names: []string{"loadn"}, Match: 0x2000, Mask: 0xF000, Args: "ru",
		Template: "Load register _ with contents of memory address _"},
	{Names: []string{"storen"}, Match: 0x3000, Mask: 0xF000, Args: "ru",
		Template: "Place contents of register _ into memory address _"},
	{Names: []string{"loadr", "loadi", "load"}, Match: 0x4000, Mask: 0xF00F, Args: "rr",
		Template: "Load register _ with memory data indexed by register _"},
	{Names: []string{"storer", "storei", "store"}, Match: 0x4001, Mask: 0xF00F, Args: "rr",
		Template: "Store register _ in memory indexed by register _"},
	{Names: []string{"popr"}, Match: 0x4002, Mask: 0xF00F, Args: "rr",
		Template: "Subtract 1 from the indexing register, then loadr"},
	{Names: []string{"pushr"}, Match: 0x4003, Mask: 0xF00F, Args: "rr",
		Template: "storer, then add 1 to the indexing register"},
	{Names: []string{"addn"}, Match: 0x5000, Mask: 0xF000, Args: "rs",
		Template: "Take register _ and add _ to it"},
	{Names: []string{"nop"}, Match: 0x6000, Mask: 0xFFFF, Args: "",
		Template: "Do nothing"},
	{Names: []string{"copy", "mov"}, Match: 0x6000, Mask: 0xF00F, Args: "rr",
		Template: "Set register _ = register _"},
	{Names: []string{"add"}, Match: 0x6000, Mask: 0xF000, Args: "rrr",
		Template: "Set register _ = register _ + register _"},
	{Names: []string{"neg"}, Match: 0x7000, Mask: 0xF0F0, Args: "rzr",
		Template: "Set register _ = - register _"},
	{Names: []string{"sub"}, Match: 0x7000, Mask: 0xF000, Args: "rrr",
		Template: "Set register _ = register _ - register _"},
	{Names: []string{"mul"}, Match: 0x8000, Mask: 0xF000, Args: "rrr",
		Template: "Set register _ = register _ * register _"},
	{Names: []string{"div"}, Match: 0x9000, Mask: 0xF000, Args: "rrr",
		Template: "Set register _ = register _ // register _ (int. division)"},
	{Names: []string{"mod"}, Match: 0xA000, Mask: 0xF000, Args: "rrr",
		Template: "Set register _ = register _ % register _ (remainder of div.)"},
	{Names: []string{"jumpn"}, Match: 0xB000, Mask: 0xFF00, Args: "zu",
		Template: "Set program counter to address _"},
	{Names: []string{"calln", "call"}, Match: 0xB000, Mask: 0xF000, Args: "ru",
		Template: "Copy address of next instruction into register _, and jump to address _"},
	{Names: []string{"jeqzn", "jeqz"}, Match: 0xC000, Mask: 0xF000, Args: "ru",
		Template: "If register _ == 0, jump to line _"},
	{Names: []string{"jnezn", "jnez"}, Match: 0xD000, Mask: 0xF000, Args: "ru",
		Template: "If register _ != 0, jump to line _"},
	{Names: []string{"jgtzn", "jgtz"}, Match: 0xE000, Mask: 0xF000, Args: "ru",
		Template: "If register _ > 0, jump to line _"},
	{Names: []string{"jltzn", "jltz"}, Match: 0xF000, Mask: 0xF000, Args: "ru",
		Template: "If register _ < 0, jump to line _"},
	{Names: []string{"data"}, Match: 0x0000, Mask: 0x0000, Args: "n",
		Template: "ERROR: DATA _"},
}

// LookupName returns the catalog entry owning the given mnemonic, or nil.
func LookupName(mnemonic string) *InstructionType {
	for i := range InstructionSet {
		if InstructionSet[i].HasName(mnemonic) {
			return &InstructionSet[i]
		}
	}
	return nil
}

// LookupWord returns the first catalog entry matching the word. The data
// entry matches everything, so the result is never nil.
func LookupWord(word uint16) *InstructionType {
	for i := range InstructionSet {
		if InstructionSet[i].Matches(word) {
			return &InstructionSet[i]
		}
	}
	return &InstructionSet[len(InstructionSet)-1]
}

// DataType returns the catalog entry for raw data cells.
func DataType() *InstructionType {
	return &InstructionSet[len(InstructionSet)-1]
}
