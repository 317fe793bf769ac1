package parser

import (
	"fmt"
	"strings"
)

// CompileErrKind categorizes assembly failures. The kinds are shared by
// the line parser and the encoder; both surface them as CompileError
// values with source context attached.
type CompileErrKind int

const (
	InstructionDoesNotExist CompileErrKind = iota
	InvalidArgumentType
	InvalidRegister
	TooManyArguments
	TooFewArguments
	InvalidSignedNumber
	InvalidUnsignedNumber
	InvalidNumber
	CorruptedBinary
	LineNumberNotPresent
	InvalidLineNumber
)

// Code returns the stable process exit code for the kind, in 10..20.
// External grading tooling keys on these values.
func (k CompileErrKind) Code() int {
	switch k {
	case InstructionDoesNotExist:
		return 10
	case InvalidArgumentType:
		return 11
	case InvalidRegister:
		return 12
	case TooManyArguments:
		return 13
	case TooFewArguments:
		return 14
	case InvalidSignedNumber:
		return 15
	case InvalidUnsignedNumber:
		return 16
	case InvalidNumber:
		return 17
	case CorruptedBinary:
		return 18
	case LineNumberNotPresent:
		return 19
	case InvalidLineNumber:
		return 20
	default:
		return -1
	}
}

func (k CompileErrKind) String() string {
	switch k {
	case InstructionDoesNotExist:
		return "InstructionDoesNotExist"
	case InvalidArgumentType:
		return "InvalidArgumentType"
	case InvalidRegister:
		return "InvalidRegister"
	case TooManyArguments:
		return "TooManyArguments"
	case TooFewArguments:
		return "TooFewArguments"
	case InvalidSignedNumber:
		return "InvalidSignedNumber"
	case InvalidUnsignedNumber:
		return "InvalidUnsignedNumber"
	case InvalidNumber:
		return "InvalidNumber"
	case CorruptedBinary:
		return "CorruptedBinary"
	case LineNumberNotPresent:
		return "LineNumberNotPresent"
	case InvalidLineNumber:
		return "InvalidLineNumber"
	default:
		return "Unknown"
	}
}

// CompileError is an assembly failure with the source context needed for
// a useful report: the zero-based index of the offending source line,
// its raw text, and the tokenized view the assembler saw.
type CompileError struct {
	Kind    CompileErrKind
	Line    int
	RawLine string
	Tokens  []string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d: %s", e.Line, e.Kind)
	if e.RawLine != "" {
		fmt.Fprintf(&sb, "\n  source: %s", e.RawLine)
	}
	if len(e.Tokens) > 0 {
		fmt.Fprintf(&sb, "\n  interpreted as: %s", strings.Join(e.Tokens, " "))
	}
	return sb.String()
}

// NewCompileError creates an error without source context; the assembler
// attaches context before surfacing it.
func NewCompileError(kind CompileErrKind) *CompileError {
	return &CompileError{Kind: kind, Line: -1}
}

// WithContext returns a copy of err carrying the source line context.
// Non-CompileError values pass through unchanged.
func WithContext(err error, line int, raw string, tokens []string) error {
	ce, ok := err.(*CompileError)
	if !ok {
		return err
	}
	return &CompileError{Kind: ce.Kind, Line: line, RawLine: raw, Tokens: tokens}
}

// KindOf extracts the compile error kind; the second result is false for
// foreign errors.
func KindOf(err error) (CompileErrKind, bool) {
	if ce, ok := err.(*CompileError); ok {
		return ce.Kind, true
	}
	return 0, false
}
