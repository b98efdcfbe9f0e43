package backend

import (
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"

	"github.com/lixenwraith/rawterm/terminal"
)

// Tcell is an engine over a tcell.Screen
type Tcell struct {
	newScreen func() (tcell.Screen, error)
	screen    tcell.Screen
	logger    *log.Logger

	events   chan terminal.RawEvent
	done     chan struct{}
	pumpDone chan struct{}

	initialized bool
}

// NewTcell creates an engine that opens the default tcell screen on Init
func NewTcell(opts ...Option) *Tcell {
	return newTcell(tcell.NewScreen, opts)
}

// NewTcellScreen creates an engine over an existing screen, e.g. tcell.NewSimulationScreen
func NewTcellScreen(s tcell.Screen, opts ...Option) *Tcell {
	return newTcell(func() (tcell.Screen, error) { return s, nil }, opts)
}

func newTcell(factory func() (tcell.Screen, error), opts []Option) *Tcell {
	o := buildOptions(opts)
	return &Tcell{newScreen: factory, logger: o.logger}
}

// Screen returns the underlying screen, nil before Init
func (t *Tcell) Screen() tcell.Screen {
	return t.screen
}

// Init opens the screen and starts the event pump
func (t *Tcell) Init() int {
	if t.initialized {
		return terminal.CodeFailedToOpenTty
	}

	s, err := t.newScreen()
	if err == nil {
		err = s.Init()
	}
	if err != nil {
		err = errors.Wrap(tcellCause(err), "tcell init")
		t.logger.Printf("%+v", err)
		return codeFor(err)
	}

	t.screen = s
	t.screen.HideCursor()
	t.screen.Clear()

	t.events = make(chan terminal.RawEvent, 64)
	t.done = make(chan struct{})
	t.pumpDone = make(chan struct{})
	go t.pump()

	t.initialized = true
	return terminal.CodeOK
}

// tcellCause tags tcell's init errors with the matching failure cause
func tcellCause(err error) error {
	switch {
	case errors.Is(err, tcell.ErrTermNotFound), errors.Is(err, tcell.ErrNoCharset):
		return errors.Wrap(errUnsupported, err.Error())
	case errors.Is(err, tcell.ErrNoScreen):
		return errors.Wrap(errOpenTty, err.Error())
	}
	return err
}

// Shutdown finalizes the screen and stops the pump
func (t *Tcell) Shutdown() {
	if !t.initialized {
		return
	}
	t.initialized = false

	close(t.done)
	t.screen.Fini()
	<-t.pumpDone
}

// pump moves screen events into a channel so PeekEvent can honor a timeout
func (t *Tcell) pump() {
	defer close(t.pumpDone)

	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		raw, ok := convertEvent(ev)
		if !ok {
			continue
		}
		select {
		case t.events <- raw:
		case <-t.done:
			return
		}
	}
}

func (t *Tcell) Width() int {
	if t.screen == nil {
		return 0
	}
	w, _ := t.screen.Size()
	return w
}

func (t *Tcell) Height() int {
	if t.screen == nil {
		return 0
	}
	_, h := t.screen.Size()
	return h
}

func (t *Tcell) Clear() {
	if t.initialized {
		t.screen.Clear()
	}
}

func (t *Tcell) Present() {
	if t.initialized {
		t.screen.Show()
	}
}

func (t *Tcell) ChangeCell(x, y int, ch uint32, fg, bg uint16) {
	if t.initialized {
		t.screen.SetContent(x, y, rune(ch), nil, cellStyle(fg, bg))
	}
}

func (t *Tcell) SetCursor(x, y int) {
	if !t.initialized {
		return
	}
	if x < 0 || y < 0 {
		t.screen.HideCursor()
		return
	}
	t.screen.ShowCursor(x, y)
}

func (t *Tcell) PollEvent(ev *terminal.RawEvent) int {
	return t.wait(ev, nil)
}

func (t *Tcell) PeekEvent(ev *terminal.RawEvent, timeoutMs int) int {
	timer := time.NewTimer(time.Duration(max(timeoutMs, 0)) * time.Millisecond)
	defer timer.Stop()
	return t.wait(ev, timer.C)
}

func (t *Tcell) wait(ev *terminal.RawEvent, timeout <-chan time.Time) int {
	if !t.initialized {
		return -1
	}

	select {
	case raw := <-t.events:
		*ev = raw
		return int(raw.Kind)
	case <-t.pumpDone:
		// Screen stopped delivering events
		return -1
	case <-timeout:
		return 0
	}
}

// cellStyle decodes the packed words into a tcell style
func cellStyle(fg, bg uint16) tcell.Style {
	fgColor, face := terminal.UnpackFg(fg)
	bgColor, _ := terminal.UnpackFg(bg)

	return tcell.StyleDefault.
		Foreground(tcellColor(fgColor)).
		Background(tcellColor(bgColor)).
		Bold(face&terminal.FaceBold != 0).
		Underline(face&terminal.FaceUnderline != 0).
		Reverse(face&terminal.FaceReverse != 0)
}

func tcellColor(c terminal.Color) tcell.Color {
	if c <= terminal.White {
		return tcell.PaletteColor(int(c))
	}
	return tcell.ColorDefault
}

// convertEvent converts a tcell event to a raw record; other event types are skipped
func convertEvent(ev tcell.Event) (terminal.RawEvent, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		code, ch, ok := convertKey(e.Key(), e.Rune())
		if !ok {
			return terminal.RawEvent{}, false
		}
		return terminal.RawEvent{Kind: terminal.KindKey, Key: code, Ch: uint32(ch)}, true

	case *tcell.EventResize:
		w, h := e.Size()
		return terminal.RawEvent{Kind: terminal.KindResize, Width: int32(w), Height: int32(h)}, true

	case *tcell.EventMouse:
		return terminal.RawEvent{Kind: terminal.KindMouse}, true
	}
	return terminal.RawEvent{}, false
}

var specialKeys = map[tcell.Key]uint16{
	tcell.KeyF1:     terminal.KeyCodeF1,
	tcell.KeyF2:     terminal.KeyCodeF2,
	tcell.KeyF3:     terminal.KeyCodeF3,
	tcell.KeyF4:     terminal.KeyCodeF4,
	tcell.KeyF5:     terminal.KeyCodeF5,
	tcell.KeyF6:     terminal.KeyCodeF6,
	tcell.KeyF7:     terminal.KeyCodeF7,
	tcell.KeyF8:     terminal.KeyCodeF8,
	tcell.KeyF9:     terminal.KeyCodeF9,
	tcell.KeyF10:    terminal.KeyCodeF10,
	tcell.KeyF11:    terminal.KeyCodeF11,
	tcell.KeyF12:    terminal.KeyCodeF12,
	tcell.KeyInsert: terminal.KeyCodeInsert,
	tcell.KeyDelete: terminal.KeyCodeDelete,
	tcell.KeyHome:   terminal.KeyCodeHome,
	tcell.KeyEnd:    terminal.KeyCodeEnd,
	tcell.KeyPgUp:   terminal.KeyCodePgUp,
	tcell.KeyPgDn:   terminal.KeyCodePgDn,
	tcell.KeyUp:     terminal.KeyCodeArrowUp,
	tcell.KeyDown:   terminal.KeyCodeArrowDown,
	tcell.KeyLeft:   terminal.KeyCodeArrowLeft,
	tcell.KeyRight:  terminal.KeyCodeArrowRight,
}

// convertKey maps a tcell key to a contract key code and codepoint
func convertKey(k tcell.Key, r rune) (uint16, rune, bool) {
	switch {
	case k == tcell.KeyRune:
		return 0, r, true
	case k == tcell.KeyNUL, k == tcell.KeyCtrlSpace:
		// Ctrl+Space has no key in the model
		return 0, 0, false
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlUnderscore:
		// tcell numbers Ctrl keys from KeyCtrlSpace; the contract uses the control byte
		return uint16(k - tcell.KeyCtrlSpace), 0, true
	case k < 128:
		// ASCII controls share the contract's numbering
		return uint16(k), 0, true
	}
	if code, ok := specialKeys[k]; ok {
		return code, 0, true
	}
	// Unmapped: the decoder drops it
	return uint16(k), 0, true
}
