package input

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Keys(t *testing.T) {
	in, rest := Parse([]byte("12a \r\x7fq"))
	assert.Empty(t, rest)
	assert.Equal(t, []byte("12"), in.Digits)
	assert.True(t, in.Auto)
	assert.True(t, in.Space)
	assert.True(t, in.Enter)
	assert.True(t, in.Backspace)
	assert.True(t, in.Quit)
	assert.False(t, in.Escape)
	assert.True(t, in.Any())
}

func TestParse_LoneEscape(t *testing.T) {
	in, rest := Parse([]byte{'\x1b'})
	assert.Empty(t, rest)
	assert.True(t, in.Escape)
}

func TestParse_MouseClick(t *testing.T) {
	in, rest := Parse([]byte("\x1b[<0;12;7M\x1b[<0;12;7m"))
	assert.Empty(t, rest)
	require.Len(t, in.Clicks, 1, "release must not count as a click")
	assert.Equal(t, Click{Col: 12, Row: 7}, in.Clicks[0])
	assert.False(t, in.Escape)
}

func TestParse_IgnoresOtherButtons(t *testing.T) {
	tests := []struct {
		name string
		seq  string
	}{
		{"right button", "\x1b[<2;3;4M"},
		{"wheel", "\x1b[<64;3;4M"},
		{"motion", "\x1b[<32;3;4M"},
		{"malformed", "\x1b[<0;x;4M"},
		{"arrow key", "\x1b[A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, rest := Parse([]byte(tt.seq))
			assert.Empty(t, rest)
			assert.Empty(t, in.Clicks)
			assert.False(t, in.Escape)
			assert.False(t, in.Auto, "sequence bytes must not leak as keys")
		})
	}
}

func TestParse_ModifiedClick(t *testing.T) {
	in, _ := Parse([]byte("\x1b[<4;1;1M")) // shift + left
	require.Len(t, in.Clicks, 1)
}

func TestParse_IncompleteSequence(t *testing.T) {
	in, rest := Parse([]byte("5\x1b[<0;1"))
	assert.Equal(t, []byte("5"), in.Digits)
	assert.Equal(t, []byte("\x1b[<0;1"), rest)
	assert.Empty(t, in.Clicks)
}

func TestReadInput_CompletesSequenceAcrossFrames(t *testing.T) {
	s := &Stream{ch: make(chan byte, 64)}
	for _, b := range []byte("\x1b[<0;4") {
		s.ch <- b
	}
	first := ReadInput(s)
	assert.Empty(t, first.Clicks)

	for _, b := range []byte(";9M") {
		s.ch <- b
	}
	second := ReadInput(s)
	require.Len(t, second.Clicks, 1)
	assert.Equal(t, Click{Col: 4, Row: 9}, second.Clicks[0])
}

func TestStartStream_ClosesOnEOF(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("q")))

	quit := false
	require.Eventually(t, func() bool {
		quit = quit || ReadInput(s).Quit
		return s.Closed()
	}, time.Second, 5*time.Millisecond)
	assert.True(t, quit)
}
