package input

import (
	"bufio"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drainAll collects keys until the stream closes.
func drainAll(t *testing.T, s *Stream) []Key {
	t.Helper()
	var all []Key
	require.Eventually(t, func() bool {
		keys, open := s.Drain()
		all = append(all, keys...)
		return !open
	}, time.Second, time.Millisecond)
	return all
}

func TestStreamDecodesKeys(t *testing.T) {
	raw := "ab\x1b[A\x1b[B\x1b[C\x1b[D\x1bOA\r\x7f\x03 é\x01"
	s := StartStream(bufio.NewReader(strings.NewReader(raw)))

	got := drainAll(t, s)
	want := []Key{
		Rune('a'),
		Rune('b'),
		{Code: KeyUp},
		{Code: KeyDown},
		{Code: KeyRight},
		{Code: KeyLeft},
		{Code: KeyUp},
		{Code: KeyEnter},
		{Code: KeyBackspace},
		{Code: KeyInterrupt},
		Rune(' '),
		Rune('é'),
	}
	assert.Equal(t, want, got)
}

func TestStreamLoneEscape(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("\x1b")))
	assert.Equal(t, []Key{{Code: KeyEscape}}, drainAll(t, s))
}

func TestStreamSkipsOtherSequences(t *testing.T) {
	// Delete, Ctrl+Up, End, PgDn, F1, F5, then a plain key.
	raw := "\x1b[3~\x1b[1;5A\x1b[F\x1b[6~\x1bOP\x1b[15~x"
	s := StartStream(bufio.NewReader(strings.NewReader(raw)))
	assert.Equal(t, []Key{{Code: KeyUp}, Rune('x')}, drainAll(t, s))
}

func TestDecodeDelete(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\x1b[3~"))
	k, err := decode(r)
	require.NoError(t, err)
	assert.Equal(t, KeyNone, k.Code)
	assert.Zero(t, r.Buffered(), "whole sequence consumed")
}

func TestDecodeModifiedArrow(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("\x1b[1;5Ax"))
	k, err := decode(r)
	require.NoError(t, err)
	assert.Equal(t, Key{Code: KeyUp}, k)

	k, err = decode(r)
	require.NoError(t, err)
	assert.Equal(t, Rune('x'), k)
}

func TestDrainDoesNotBlock(t *testing.T) {
	s, ch := NewStream()

	keys, open := s.Drain()
	assert.Empty(t, keys)
	assert.True(t, open)

	ch <- Rune('x')
	ch <- Key{Code: KeyEnter}
	keys, open = s.Drain()
	assert.Equal(t, []Key{Rune('x'), {Code: KeyEnter}}, keys)
	assert.True(t, open)

	close(ch)
	keys, open = s.Drain()
	assert.Empty(t, keys)
	assert.False(t, open)
}

func TestKeyIs(t *testing.T) {
	assert.True(t, Rune('Q').Is('q'))
	assert.True(t, Rune('q').Is('q'))
	assert.False(t, Key{Code: KeyEnter}.Is('q'))
}
