package vm

import "fmt"

// RuntimeErrKind identifies the terminal condition of a simulation step.
type RuntimeErrKind int

const (
	// Halt is the normal terminal value: the program finished.
	Halt RuntimeErrKind = iota
	InvalidRegisterLocation
	MemoryLocationNotData
	InvalidMemoryData
	InvalidMemoryLocation
	InvalidData
	InvalidSignedNumber
	InvalidProgramCounter
	InstructionIsData
	InvalidInstructionType
	DivideByZero
	RegisterOutOfBounds
	MaximumIterationsReached
	TooManyInputs
)

// Code returns the stable process exit code for the kind. Halt is 0;
// the abnormal kinds occupy 100..112. These are relied on by external
// grading tooling and must not be renumbered.
func (k RuntimeErrKind) Code() int {
	switch k {
	case Halt:
		return 0
	case InvalidRegisterLocation:
		return 100
	case MemoryLocationNotData:
		return 101
	case InvalidMemoryData:
		return 102
	case InvalidMemoryLocation:
		return 103
	case InvalidData:
		return 104
	case InvalidSignedNumber:
		return 105
	case InvalidProgramCounter:
		return 106
	case InstructionIsData:
		return 107
	case InvalidInstructionType:
		return 108
	case DivideByZero:
		return 109
	case RegisterOutOfBounds:
		return 110
	case MaximumIterationsReached:
		return 111
	case TooManyInputs:
		return 112
	default:
		return -1
	}
}

func (k RuntimeErrKind) String() string {
	switch k {
	case Halt:
		return "Halt"
	case InvalidRegisterLocation:
		return "InvalidRegisterLocation"
	case MemoryLocationNotData:
		return "MemoryLocationNotData"
	case InvalidMemoryData:
		return "InvalidMemoryData"
	case InvalidMemoryLocation:
		return "InvalidMemoryLocation"
	case InvalidData:
		return "InvalidData"
	case InvalidSignedNumber:
		return "InvalidSignedNumber"
	case InvalidProgramCounter:
		return "InvalidProgramCounter"
	case InstructionIsData:
		return "InstructionIsData"
	case InvalidInstructionType:
		return "InvalidInstructionType"
	case DivideByZero:
		return "DivideByZero"
	case RegisterOutOfBounds:
		return "RegisterOutOfBounds"
	case MaximumIterationsReached:
		return "MaximumIterationsReached"
	case TooManyInputs:
		return "TooManyInputs"
	default:
		return "Unknown"
	}
}

// RuntimeError is the terminal result of a simulation. The simulator
// returns one from Step and never recovers internally; Halt is success,
// every other kind is an abnormal termination.
type RuntimeError struct {
	Kind RuntimeErrKind
	PC   int // program counter at the faulting step
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at address %d: %s", e.PC, e.Kind)
}

// IsHalt reports whether err is a normal Halt termination.
func IsHalt(err error) bool {
	re, ok := err.(*RuntimeError)
	return ok && re.Kind == Halt
}

// ErrKind extracts the kind from a simulator error. Errors that did not
// originate in the simulator report InvalidInstructionType.
func ErrKind(err error) RuntimeErrKind {
	if re, ok := err.(*RuntimeError); ok {
		return re.Kind
	}
	return InvalidInstructionType
}
