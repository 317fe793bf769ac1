// Package parser turns raw HMMM source lines into cleaned, tokenized
// instruction lines. It owns comment stripping and the line-number
// discipline; operand syntax belongs to the encoder.
package parser

import (
	"strconv"
	"strings"
)

// SourceLine is one accepted instruction line: its position in the file,
// its raw text, and the cleaned mnemonic and operands handed to the
// encoder.
type SourceLine struct {
	Index    int    // zero-based index into the raw file
	Number   int    // the declared (and verified) instruction number
	Raw      string // the untouched source line
	Mnemonic string // lowercased
	Operands []string
}

// Tokens returns the tokenized view of the line, line number included,
// as shown in compile error reports.
func (l SourceLine) Tokens() []string {
	tokens := make([]string, 0, len(l.Operands)+2)
	tokens = append(tokens, strconv.Itoa(l.Number), l.Mnemonic)
	tokens = append(tokens, l.Operands...)
	return tokens
}

// stripComment removes a # comment from the line, if any.
func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// tokenize splits a cleaned line on any run of spaces, tabs, or commas.
func tokenize(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})
}

// Parse maps the lines of a source file to SourceLines. Blank lines and
// whole-line comments are dropped. Every remaining line must begin with
// a decimal number equal to the count of previously accepted lines,
// starting at zero; parsing stops at the first faulty line, so no lines
// beyond the fault are ever emitted.
func Parse(lines []string) ([]SourceLine, error) {
	var out []SourceLine
	counter := 0

	for index, raw := range lines {
		tokens := tokenize(stripComment(raw))
		if len(tokens) == 0 {
			continue
		}

		number, err := strconv.Atoi(tokens[0])
		if err != nil {
			return nil, WithContext(NewCompileError(LineNumberNotPresent), index, raw, tokens)
		}
		if number != counter {
			return nil, WithContext(NewCompileError(InvalidLineNumber), index, raw, tokens)
		}

		line := SourceLine{
			Index:  index,
			Number: number,
			Raw:    raw,
		}
		if len(tokens) > 1 {
			line.Mnemonic = strings.ToLower(tokens[1])
			for _, op := range tokens[2:] {
				line.Operands = append(line.Operands, strings.ToLower(op))
			}
		}

		out = append(out, line)
		counter++
	}

	return out, nil
}
