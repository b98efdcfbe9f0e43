package terminal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/mattn/go-runewidth"
)

// NoTimeout makes NextEvent block until an event arrives
const NoTimeout time.Duration = -1

var (
	// ErrPoll wraps a negative status from the engine's poll/peek call
	ErrPoll = errors.New("terminal: event poll failed")

	// ErrClosed is returned by NextEvent after Close
	ErrClosed = errors.New("terminal: session closed")
)

// Term is an open terminal session. It is the only way to draw or read events,
// and its engine is shut down exactly once, by Close.
type Term struct {
	engine Engine
	closed bool
}

// Init starts the engine and returns the open session.
// A negative engine code is returned as a Failure; Init never returns a Term with an error.
func Init(e Engine) (*Term, error) {
	if e == nil {
		panic("terminal: Init with nil engine")
	}

	if code := e.Init(); code < 0 {
		return nil, FailureFromCode(code)
	}
	return &Term{engine: e}, nil
}

// Run opens a session, passes it to fn, and closes it when fn returns or panics
func Run(e Engine, fn func(*Term) error) error {
	t, err := Init(e)
	if err != nil {
		return err
	}
	defer t.Close()

	return fn(t)
}

// Close shuts the engine down. Safe to call multiple times; only the first call reaches the engine
func (t *Term) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.engine.Shutdown()
}

// Closed reports whether Close has run
func (t *Term) Closed() bool {
	return t.closed
}

// Width returns the terminal width in cells
func (t *Term) Width() int {
	if t.closed {
		return 0
	}
	return max(t.engine.Width(), 0)
}

// Height returns the terminal height in cells
func (t *Term) Height() int {
	if t.closed {
		return 0
	}
	return max(t.engine.Height(), 0)
}

// Size returns width and height
func (t *Term) Size() (int, int) {
	return t.Width(), t.Height()
}

// Clear resets the back buffer to blank
func (t *Term) Clear() {
	if t.closed {
		return
	}
	t.engine.Clear()
}

// Freshen presents staged changes on the physical terminal
func (t *Term) Freshen() {
	if t.closed {
		return
	}
	t.engine.Present()
}

// PrintChar stages r at (x, y). Coordinates are not validated; the engine ignores out-of-range cells
func (t *Term) PrintChar(x, y int, face Face, fg, bg Color, r rune) {
	if t.closed {
		return
	}
	t.engine.ChangeCell(x, y, uint32(r), PackFg(fg, face), uint16(bg))
}

// PrintString stages s starting at (x, y), advancing by each rune's cell width.
// Zero-width runes are skipped. Returns the column after the last staged glyph.
func (t *Term) PrintString(x, y int, face Face, fg, bg Color, s string) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		t.PrintChar(x, y, face, fg, bg, r)
		x += w
	}
	return x
}

// SetCursor places the visible cursor at (x, y)
func (t *Term) SetCursor(x, y int) {
	if t.closed {
		return
	}
	t.engine.SetCursor(x, y)
}

// HideCursor hides the cursor
func (t *Term) HideCursor() {
	t.SetCursor(-1, -1)
}

// NextEvent waits for the next event. With NoTimeout it blocks; otherwise it waits at most
// timeout and returns a nil Event on expiry. A nil Event is also returned for unmapped keys.
func (t *Term) NextEvent(timeout time.Duration) (Event, error) {
	if t.closed {
		return nil, ErrClosed
	}

	var raw RawEvent
	var status int
	if timeout < 0 {
		status = t.engine.PollEvent(&raw)
	} else {
		status = t.engine.PeekEvent(&raw, timeoutMillis(timeout))
	}

	if status < 0 {
		return nil, fmt.Errorf("%w: status %d", ErrPoll, status)
	}
	if status == 0 {
		return nil, nil
	}
	return Translate(raw)
}

func timeoutMillis(d time.Duration) int {
	ms := d.Milliseconds()
	if ms > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(ms)
}
