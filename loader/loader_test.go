package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edv121/hmmm-emulator/encoder"
	"github.com/edv121/hmmm-emulator/parser"
	"github.com/edv121/hmmm-emulator/vm"
)

func TestParseBinaryLine(t *testing.T) {
	in, err := ParseBinaryLine("0001 0001 0000 0101")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1105), in.Word)
	assert.Equal(t, "setn", in.Type.Canonical())
}

func TestParseBinaryLineCorrupted(t *testing.T) {
	bad := []string{
		"0001 0001 0000",           // missing group
		"0001 0001 0000 0101 0000", // extra group
		"0001 0001 0000 01012",     // oversized group
		"0001 0001 0000 012x",      // not binary
		"00010001 00000101",        // wrong grouping
	}
	for _, line := range bad {
		_, err := ParseBinaryLine(line)
		require.Error(t, err, "line %q", line)
		kind, ok := parser.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, parser.CorruptedBinary, kind, "line %q", line)
	}
}

// Assembling a source file, writing it compiled, and reloading
// reproduces the same words and instruction kinds.
func TestCompiledRoundTrip(t *testing.T) {
	src := []string{
		"0 read r1",
		"1 write r1",
		"2 setn r2, -7",
		"3 add r3, r1, r2",
		"4 halt",
	}
	program, err := encoder.AssembleSource(src)
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.hb")
	require.NoError(t, WriteCompiled(path, program))

	reloaded, err := ReadCompiled(path)
	require.NoError(t, err)
	require.Len(t, reloaded, len(program))
	for i := range program {
		assert.Equal(t, program[i].Word, reloaded[i].Word, "cell %d", i)
		assert.Equal(t, program[i].Type.Canonical(), reloaded[i].Type.Canonical(), "cell %d", i)
	}
}

func TestReadCompiledToleratesTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.hb")
	require.NoError(t, os.WriteFile(path, []byte("0000 0000 0000 0000\n"), 0o644))

	program, err := ReadCompiled(path)
	require.NoError(t, err)
	require.Len(t, program, 1)
	assert.Equal(t, "halt", program[0].Type.Canonical())
}

func TestWriteSourceDecompiles(t *testing.T) {
	program := []vm.Instruction{
		vm.Decode(0x0101), // read r1
		vm.Decode(0x6312), // add r3, r1, r2
		vm.Decode(0x0000), // halt
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.hmmm")
	require.NoError(t, WriteSource(path, program))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0 read r1\n1 add r3, r1, r2\n2 halt", string(data))

	// The decompiled text reassembles to the same words
	lines, err := ReadLines(path)
	require.NoError(t, err)
	again, err := encoder.AssembleSource(lines)
	require.NoError(t, err)
	require.Len(t, again, len(program))
	for i := range program {
		assert.Equal(t, program[i].Word, again[i].Word)
	}
}

func TestReadLinesMissingFile(t *testing.T) {
	_, err := ReadLines(filepath.Join(t.TempDir(), "nope.hmmm"))
	require.Error(t, err)
}
