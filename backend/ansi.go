package backend

import (
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/lixenwraith/rawterm/terminal"
)

// tty abstracts the platform terminal device so the engine can run against a fake in tests
type tty interface {
	// Init opens the device and enters raw mode
	Init() error
	// Fini restores the device. Safe to call multiple times
	Fini()

	Size() (width, height int)
	Write(p []byte) error

	// Read blocks until input is available, the stop channel is closed, or an error occurs.
	// An empty result with nil error means the quiet period elapsed without input.
	Read(stopCh <-chan struct{}) ([]byte, error)

	// SetResizeHandler registers a callback for terminal resize events
	SetResizeHandler(handler func(width, height int))
}

// ttyWriter adapts a tty to io.Writer for the buffered output
type ttyWriter struct{ t tty }

func (w ttyWriter) Write(p []byte) (int, error) {
	if err := w.t.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

type size struct{ w, h int }

// ANSI is a raw-mode engine that drives the terminal with escape sequences
type ANSI struct {
	tty    tty
	logger *log.Logger

	out    *outputBuffer
	input  *inputReader
	back   []cell
	width  int
	height int

	cursorX int
	cursorY int

	resizeCh chan size
	readErr  error

	initialized bool
}

// NewANSI creates an engine over the process's controlling terminal
func NewANSI(opts ...Option) *ANSI {
	return newANSI(newTTY(), opts...)
}

func newANSI(t tty, opts ...Option) *ANSI {
	o := buildOptions(opts)
	return &ANSI{
		tty:      t,
		logger:   o.logger,
		cursorX:  -1,
		cursorY:  -1,
		resizeCh: make(chan size, 1),
	}
}

// Init enters raw mode and the alternate screen
func (a *ANSI) Init() int {
	if a.initialized {
		return terminal.CodeFailedToOpenTty
	}

	if err := a.tty.Init(); err != nil {
		err = errors.Wrap(err, "ansi init")
		a.logger.Printf("%+v", err)
		return codeFor(err)
	}

	w, h := a.tty.Size()
	a.out = newOutputBuffer(ttyWriter{a.tty})
	a.resize(w, h)

	a.tty.SetResizeHandler(func(w, h int) {
		// Latest size wins
		select {
		case a.resizeCh <- size{w, h}:
		default:
			select {
			case <-a.resizeCh:
			default:
			}
			select {
			case a.resizeCh <- size{w, h}:
			default:
			}
		}
	})

	a.out.write(csiAltScreenEnter)
	a.out.write(csiCursorHide)
	a.out.write(csiAutoWrapOff)
	a.out.clear()
	if err := a.out.sync(); err != nil {
		a.logger.Printf("ansi init: %v", err)
	}

	a.cursorX, a.cursorY = -1, -1
	a.readErr = nil
	a.input = newInputReader(a.tty)
	a.input.start()

	a.initialized = true
	return terminal.CodeOK
}

// Shutdown leaves the alternate screen and restores the terminal mode
func (a *ANSI) Shutdown() {
	if !a.initialized {
		return
	}
	a.initialized = false

	if a.input != nil {
		a.input.stop()
	}

	a.out.write(csiCursorShow)
	a.out.write(csiAltScreenExit)
	// Re-enable auto-wrap after leaving the alt screen so the main buffer has it
	a.out.write(csiAutoWrapOn)
	a.out.write(csiSGR0)
	a.out.sync()

	a.tty.Fini()
}

func (a *ANSI) Width() int  { return a.width }
func (a *ANSI) Height() int { return a.height }

// Clear blanks the back buffer
func (a *ANSI) Clear() {
	for i := range a.back {
		a.back[i] = blankCell
	}
}

// ChangeCell stages one glyph; out-of-range coordinates are ignored
func (a *ANSI) ChangeCell(x, y int, ch uint32, fg, bg uint16) {
	if x < 0 || y < 0 || x >= a.width || y >= a.height {
		return
	}
	a.back[y*a.width+x] = cell{ch: rune(ch), fg: fg, bg: bg}
}

// SetCursor records the cursor position applied on the next Present
func (a *ANSI) SetCursor(x, y int) {
	a.cursorX, a.cursorY = x, y
}

// Present writes the changed cells and places the cursor
func (a *ANSI) Present() {
	if !a.initialized {
		return
	}
	a.out.flush(a.back, a.width, a.height)
	a.out.placeCursor(a.cursorX, a.cursorY)
	if err := a.out.sync(); err != nil {
		a.logger.Printf("ansi present: %v", err)
	}
}

// PollEvent blocks until an input or resize record is available
func (a *ANSI) PollEvent(ev *terminal.RawEvent) int {
	return a.wait(ev, nil)
}

// PeekEvent waits at most timeoutMs
func (a *ANSI) PeekEvent(ev *terminal.RawEvent, timeoutMs int) int {
	timer := time.NewTimer(time.Duration(max(timeoutMs, 0)) * time.Millisecond)
	defer timer.Stop()
	return a.wait(ev, timer.C)
}

func (a *ANSI) wait(ev *terminal.RawEvent, timeout <-chan time.Time) int {
	if !a.initialized || a.readErr != nil {
		return -1
	}

	select {
	case item := <-a.input.events:
		if item.err != nil {
			a.readErr = item.err
			a.logger.Printf("ansi read: %v", item.err)
			return -1
		}
		*ev = item.ev
		return int(ev.Kind)

	case s := <-a.resizeCh:
		a.resize(s.w, s.h)
		*ev = terminal.RawEvent{Kind: terminal.KindResize, Width: int32(s.w), Height: int32(s.h)}
		return int(terminal.KindResize)

	case <-timeout:
		return 0
	}
}

// resize reallocates the back buffer blank; the next Present redraws everything
func (a *ANSI) resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	a.width, a.height = w, h
	a.back = make([]cell, w*h)
	a.Clear()
	a.out.resize(w, h)
}
