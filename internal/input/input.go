// Package input turns raw terminal bytes into per-frame key presses and
// mouse clicks.
package input

import (
	"bytes"
	"io"
	"strconv"
)

// Input represents the keys and clicks received since the previous frame.
type Input struct {
	Quit      bool
	Enter     bool
	Space     bool
	Backspace bool
	Escape    bool
	Auto      bool
	Digits    []byte  // Digit keys in the order they were typed
	Clicks    []Click // Left-button presses
	Pressed   []byte  // Raw bytes, for activity tracking
}

// Click is a mouse press at a 1-based terminal cell.
type Click struct {
	Col int
	Row int
}

// Any reports whether the frame carried any input at all.
func (in Input) Any() bool {
	return len(in.Pressed) > 0
}

// maxPending bounds an unterminated escape sequence carried between frames.
const maxPending = 32

// Stream delivers input bytes via a channel and carries incomplete escape
// sequences over to the next frame.
type Stream struct {
	ch      chan byte
	pending []byte
	closed  bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r io.ByteReader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream (non-blocking).
func ReadInput(s *Stream) Input {
	buf := s.pending
	s.pending = nil

drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in, rest := Parse(buf)
	if len(rest) <= maxPending && !s.closed {
		s.pending = append([]byte(nil), rest...)
	}
	return in
}

// Parse decodes buf. A trailing escape sequence that is not complete yet is
// returned as rest so it can be completed by later bytes.
func Parse(buf []byte) (in Input, rest []byte) {
	in.Pressed = buf
	for i := 0; i < len(buf); i++ {
		b := buf[i]
		if b != '\x1b' {
			applyByte(&in, b)
			continue
		}

		// Lone ESC at the end of a read is the Escape key.
		if i+1 >= len(buf) || buf[i+1] != '[' {
			in.Escape = true
			continue
		}

		n, click, ok := parseCSI(buf[i:])
		if n == 0 {
			return in, buf[i:]
		}
		if ok {
			in.Clicks = append(in.Clicks, click)
		}
		i += n - 1
	}
	return in, nil
}

// parseCSI consumes one CSI sequence starting at ESC. It returns the number of
// bytes consumed (0 when the sequence is incomplete) and, for an SGR mouse
// left-button press (ESC [ < 0 ; col ; row M), the click.
func parseCSI(seq []byte) (n int, click Click, ok bool) {
	// Final byte of a CSI sequence lies in 0x40–0x7E.
	end := -1
	for j := 2; j < len(seq); j++ {
		if seq[j] >= 0x40 && seq[j] <= 0x7e {
			end = j
			break
		}
	}
	if end < 0 {
		return 0, Click{}, false
	}
	n = end + 1

	if seq[2] != '<' || seq[end] != 'M' {
		return n, Click{}, false
	}
	fields := bytes.Split(seq[3:end], []byte{';'})
	if len(fields) != 3 {
		return n, Click{}, false
	}
	var vals [3]int
	for k, f := range fields {
		v, err := strconv.Atoi(string(f))
		if err != nil {
			return n, Click{}, false
		}
		vals[k] = v
	}
	// Left button, modifier bits allowed; motion and wheel are not presses.
	if vals[0]&^0x1c != 0 {
		return n, Click{}, false
	}
	return n, Click{Col: vals[1], Row: vals[2]}, true
}

func applyByte(in *Input, b byte) {
	switch b {
	case 'q', 'Q', 0x03: // Ctrl+C
		in.Quit = true
	case 'a', 'A':
		in.Auto = true
	case ' ':
		in.Space = true
	case '\n', '\r':
		in.Enter = true
	case '\b', '\x7f':
		in.Backspace = true
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		in.Digits = append(in.Digits, b)
	}
}
