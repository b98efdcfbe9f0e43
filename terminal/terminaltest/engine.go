// Package terminaltest provides a scripted terminal.Engine for tests.
package terminaltest

import "github.com/lixenwraith/rawterm/terminal"

// Cell is one staged ChangeCell call
type Cell struct {
	Ch uint32
	Fg uint16
	Bg uint16
}

// Step is one scripted poll result. Status is returned as-is; Event is copied to the caller
type Step struct {
	Status int
	Event  terminal.RawEvent
}

// Engine is an in-memory engine that records every call.
// When the script is exhausted, polls return 0 (timeout) for peek and -1 for blocking poll.
type Engine struct {
	InitCode      int
	width, height int

	Cells   map[[2]int]Cell
	CursorX int
	CursorY int

	script []Step

	InitCalls     int
	ShutdownCalls int
	ClearCalls    int
	PresentCalls  int
	PollCalls     int
	PeekCalls     int
	LastTimeoutMs int
}

// New creates an engine with the given dimensions
func New(width, height int) *Engine {
	return &Engine{
		width:   width,
		height:  height,
		Cells:   make(map[[2]int]Cell),
		CursorX: -1,
		CursorY: -1,
	}
}

// Push appends events to the script, each reported with its own kind as status
func (e *Engine) Push(events ...terminal.RawEvent) *Engine {
	for _, ev := range events {
		e.script = append(e.script, Step{Status: int(ev.Kind), Event: ev})
	}
	return e
}

// PushStatus appends a bare status (timeout or failure) to the script
func (e *Engine) PushStatus(status int) *Engine {
	e.script = append(e.script, Step{Status: status})
	return e
}

// Key builds a key record
func Key(code uint16, ch uint32) terminal.RawEvent {
	return terminal.RawEvent{Kind: terminal.KindKey, Key: code, Ch: ch}
}

// Resize builds a resize record
func Resize(w, h int32) terminal.RawEvent {
	return terminal.RawEvent{Kind: terminal.KindResize, Width: w, Height: h}
}

// SetSize changes the reported dimensions
func (e *Engine) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// Pending returns the number of unconsumed script steps
func (e *Engine) Pending() int {
	return len(e.script)
}

func (e *Engine) Init() int {
	e.InitCalls++
	return e.InitCode
}

func (e *Engine) Shutdown() {
	e.ShutdownCalls++
}

func (e *Engine) Width() int  { return e.width }
func (e *Engine) Height() int { return e.height }

func (e *Engine) Clear() {
	e.ClearCalls++
	clear(e.Cells)
}

func (e *Engine) Present() {
	e.PresentCalls++
}

func (e *Engine) ChangeCell(x, y int, ch uint32, fg, bg uint16) {
	e.Cells[[2]int{x, y}] = Cell{Ch: ch, Fg: fg, Bg: bg}
}

func (e *Engine) SetCursor(x, y int) {
	e.CursorX = x
	e.CursorY = y
}

func (e *Engine) PollEvent(ev *terminal.RawEvent) int {
	e.PollCalls++
	return e.next(ev, -1)
}

func (e *Engine) PeekEvent(ev *terminal.RawEvent, timeoutMs int) int {
	e.PeekCalls++
	e.LastTimeoutMs = timeoutMs
	return e.next(ev, 0)
}

func (e *Engine) next(ev *terminal.RawEvent, exhausted int) int {
	if len(e.script) == 0 {
		return exhausted
	}
	step := e.script[0]
	e.script = e.script[1:]
	*ev = step.Event
	return step.Status
}

// CellAt returns the staged cell at (x, y)
func (e *Engine) CellAt(x, y int) (Cell, bool) {
	c, ok := e.Cells[[2]int{x, y}]
	return c, ok
}
