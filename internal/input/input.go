// Package input turns the raw terminal byte stream into key events.
package input

import (
	"bufio"
	"unicode"
)

// streamBuffer is how many decoded keys may be queued before the reader
// goroutine waits for the main loop to catch up.
const streamBuffer = 128

// Code identifies the kind of key that was pressed.
type Code int

const (
	KeyNone Code = iota
	KeyRune
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyBackspace
	KeyEscape
	KeyInterrupt // Ctrl+C
)

// Key is a single decoded key press. Rune is set only for KeyRune.
// Raw terminals never report releases, so every Key is a press.
type Key struct {
	Code Code
	Rune rune
}

// Rune returns a printable-character key.
func Rune(r rune) Key {
	return Key{Code: KeyRune, Rune: r}
}

// Is reports whether k is the printable rune r, ignoring case.
func (k Key) Is(r rune) bool {
	return k.Code == KeyRune && unicode.ToLower(k.Rune) == unicode.ToLower(r)
}

// Stream delivers decoded keys from a background reader via a channel.
type Stream struct {
	ch chan Key
}

// StartStream spawns a goroutine that reads from r, decodes key presses
// and sends them to the stream. The goroutine only exits when r fails;
// the channel is closed at that point.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan Key, streamBuffer)}
	go func() {
		defer close(s.ch)
		for {
			key, err := decode(r)
			if err != nil {
				return
			}
			if key.Code != KeyNone {
				s.ch <- key
			}
		}
	}()
	return s
}

// NewStream returns a stream fed by the caller through the returned
// channel instead of a reader. Closing the channel ends the stream.
func NewStream() (*Stream, chan<- Key) {
	s := &Stream{ch: make(chan Key, streamBuffer)}
	return s, s.ch
}

// Drain returns every key queued so far without blocking.
// open is false once the underlying reader has gone away and nothing is left.
func (s *Stream) Drain() (keys []Key, open bool) {
	for {
		select {
		case k, ok := <-s.ch:
			if !ok {
				return keys, false
			}
			keys = append(keys, k)
		default:
			return keys, true
		}
	}
}

// decode reads one key press. Escape sequences are only recognised when
// the whole sequence is already buffered, which is how terminals deliver
// them.
func decode(r *bufio.Reader) (Key, error) {
	ch, _, err := r.ReadRune()
	if err != nil {
		return Key{}, err
	}

	switch ch {
	case '\x1b':
		return escape(r), nil
	case '\r', '\n':
		return Key{Code: KeyEnter}, nil
	case '\x7f', '\b':
		return Key{Code: KeyBackspace}, nil
	case '\x03':
		return Key{Code: KeyInterrupt}, nil
	}

	if unicode.IsControl(ch) || ch == unicode.ReplacementChar {
		return Key{}, nil
	}
	return Rune(ch), nil
}

// escape decodes what follows an ESC byte. A CSI (ESC [) or SS3 (ESC O)
// sequence is consumed up to its final byte and yields an arrow key or
// KeyNone. A lone ESC is the Escape key.
func escape(r *bufio.Reader) Key {
	if r.Buffered() == 0 {
		return Key{Code: KeyEscape}
	}
	intro, err := r.Peek(1)
	if err != nil || (intro[0] != '[' && intro[0] != 'O') {
		return Key{Code: KeyEscape}
	}
	_, _ = r.Discard(1)

	// Parameter bytes 0x30-0x3F and intermediate bytes 0x20-0x2F come
	// before the final byte 0x40-0x7E.
	for r.Buffered() > 0 {
		b, err := r.ReadByte()
		if err != nil || b < 0x20 || b > 0x7E {
			break
		}
		if b >= 0x40 {
			// Modified arrows (ESC [1;5A) keep their direction.
			return Key{Code: arrow(b)}
		}
	}
	return Key{}
}

func arrow(b byte) Code {
	switch b {
	case 'A':
		return KeyUp
	case 'B':
		return KeyDown
	case 'C':
		return KeyRight
	case 'D':
		return KeyLeft
	}
	return KeyNone
}
