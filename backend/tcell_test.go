package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/rawterm/terminal"
)

func openTcell(t *testing.T, w, h int) (*Tcell, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	e := NewTcellScreen(screen)
	require.Equal(t, terminal.CodeOK, e.Init())
	screen.SetSize(w, h)
	t.Cleanup(e.Shutdown)
	return e, screen
}

// nextOfKind peeks until an event of the wanted kind arrives, skipping others
func nextOfKind(t *testing.T, e *Tcell, kind uint8) terminal.RawEvent {
	t.Helper()
	for range 10 {
		var ev terminal.RawEvent
		status := e.PeekEvent(&ev, 1000)
		require.Positive(t, status, "expected an event")
		if ev.Kind == kind {
			return ev
		}
	}
	t.Fatalf("No event of kind %d", kind)
	return terminal.RawEvent{}
}

// drain discards pending events until a peek times out
func drain(e *Tcell) {
	var ev terminal.RawEvent
	for range 10 {
		if e.PeekEvent(&ev, 20) == 0 {
			return
		}
	}
}

func TestTcellInitFailureCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{tcell.ErrTermNotFound, terminal.CodeUnsupportedTerminal},
		{tcell.ErrNoCharset, terminal.CodeUnsupportedTerminal},
		{tcell.ErrNoScreen, terminal.CodeFailedToOpenTty},
		{errors.New("boom"), terminal.CodeUnknown},
	}
	for _, tt := range tests {
		err := tt.err
		e := newTcell(func() (tcell.Screen, error) { return nil, err }, nil)
		assert.Equal(t, tt.want, e.Init(), err.Error())
		assert.Nil(t, e.Screen())
		assert.Equal(t, 0, e.Width())
		e.Shutdown()
	}
}

func TestTcellDoubleInit(t *testing.T) {
	e, _ := openTcell(t, 20, 5)
	assert.Equal(t, terminal.CodeFailedToOpenTty, e.Init())
}

func TestTcellSize(t *testing.T) {
	e, screen := openTcell(t, 33, 7)
	assert.Equal(t, 33, e.Width())
	assert.Equal(t, 7, e.Height())

	screen.SetSize(40, 12)
	assert.Equal(t, 40, e.Width())
	assert.Equal(t, 12, e.Height())
}

func TestTcellChangeCell(t *testing.T) {
	e, screen := openTcell(t, 20, 5)

	e.ChangeCell(3, 2, 'Q', terminal.PackFg(terminal.Red, terminal.FaceBold|terminal.FaceReverse), uint16(terminal.Blue))
	e.ChangeCell(4, 2, 'z', terminal.PackFg(terminal.Default, terminal.FaceUnderline), uint16(terminal.Default))
	e.Present()

	r, _, style, _ := screen.GetContent(3, 2)
	assert.Equal(t, 'Q', r)
	fg, bg, attrs := style.Decompose()
	assert.Equal(t, tcell.PaletteColor(int(terminal.Red)), fg)
	assert.Equal(t, tcell.PaletteColor(int(terminal.Blue)), bg)
	assert.NotZero(t, attrs&tcell.AttrBold)
	assert.NotZero(t, attrs&tcell.AttrReverse)
	assert.Zero(t, attrs&tcell.AttrUnderline)

	r, _, style, _ = screen.GetContent(4, 2)
	assert.Equal(t, 'z', r)
	fg, bg, attrs = style.Decompose()
	assert.Equal(t, tcell.ColorDefault, fg)
	assert.Equal(t, tcell.ColorDefault, bg)
	assert.NotZero(t, attrs&tcell.AttrUnderline)

	e.Clear()
	e.Present()
	r, _, _, _ = screen.GetContent(3, 2)
	assert.Equal(t, ' ', r)
}

func TestTcellCursor(t *testing.T) {
	e, screen := openTcell(t, 20, 5)

	e.SetCursor(4, 1)
	e.Present()
	x, y, visible := screen.GetCursor()
	assert.Equal(t, 4, x)
	assert.Equal(t, 1, y)
	assert.True(t, visible)

	e.SetCursor(-1, -1)
	e.Present()
	_, _, visible = screen.GetCursor()
	assert.False(t, visible)
}

func TestTcellKeyEvents(t *testing.T) {
	e, screen := openTcell(t, 20, 5)

	screen.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	ev := nextOfKind(t, e, terminal.KindKey)
	assert.Equal(t, terminal.RawEvent{Kind: terminal.KindKey, Ch: 'x'}, ev)

	screen.InjectKey(tcell.KeyCtrlA, 0, tcell.ModCtrl)
	ev = nextOfKind(t, e, terminal.KindKey)
	assert.Equal(t, uint16(1), ev.Key)

	screen.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	ev = nextOfKind(t, e, terminal.KindKey)
	assert.Equal(t, terminal.KeyCodeArrowUp, ev.Key)

	// Full path through the session layer
	got, err := terminal.Translate(ev)
	require.NoError(t, err)
	assert.Equal(t, terminal.KeyEvent{Key: terminal.Up}, got)
}

func TestTcellResizeEvent(t *testing.T) {
	e, screen := openTcell(t, 20, 5)

	require.NoError(t, screen.PostEvent(tcell.NewEventResize(50, 10)))
	for range 10 {
		ev := nextOfKind(t, e, terminal.KindResize)
		if ev.Width == 50 {
			assert.Equal(t, int32(10), ev.Height)
			return
		}
	}
	t.Fatal("Resize event not delivered")
}

func TestTcellPeekTimeout(t *testing.T) {
	e, _ := openTcell(t, 20, 5)
	drain(e)

	var ev terminal.RawEvent
	assert.Equal(t, 0, e.PeekEvent(&ev, 20))
}

func TestTcellShutdown(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	e := NewTcellScreen(screen)
	require.Equal(t, terminal.CodeOK, e.Init())

	e.Shutdown()
	e.Shutdown()

	var ev terminal.RawEvent
	assert.Equal(t, -1, e.PollEvent(&ev))

	// Drawing after shutdown is ignored
	e.ChangeCell(0, 0, 'x', 0, 0)
	e.Present()
}

func TestConvertKey(t *testing.T) {
	tests := []struct {
		name   string
		key    tcell.Key
		r      rune
		code   uint16
		ch     rune
		mapped bool
	}{
		{"rune", tcell.KeyRune, 'é', 0, 'é', true},
		{"enter", tcell.KeyEnter, 0, terminal.KeyCodeEnter, 0, true},
		{"tab", tcell.KeyTab, 0, terminal.KeyCodeTab, 0, true},
		{"backspace", tcell.KeyBackspace, 0, terminal.KeyCodeBackspace, 0, true},
		{"backspace2", tcell.KeyBackspace2, 0, terminal.KeyCodeBackspace2, 0, true},
		{"escape", tcell.KeyEscape, 0, terminal.KeyCodeEsc, 0, true},
		{"ctrl a", tcell.KeyCtrlA, 0, 1, 0, true},
		{"ctrl q", tcell.KeyCtrlQ, 0, 17, 0, true},
		{"ctrl z", tcell.KeyCtrlZ, 0, 26, 0, true},
		{"ctrl backslash", tcell.KeyCtrlBackslash, 0, 0x1C, 0, true},
		{"ctrl underscore", tcell.KeyCtrlUnderscore, 0, 0x1F, 0, true},
		{"ctrl space", tcell.KeyCtrlSpace, 0, 0, 0, false},
		{"f12", tcell.KeyF12, 0, terminal.KeyCodeF12, 0, true},
		{"pgdn", tcell.KeyPgDn, 0, terminal.KeyCodePgDn, 0, true},
		{"nul", tcell.KeyNUL, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ch, ok := convertKey(tt.key, tt.r)
			assert.Equal(t, tt.mapped, ok)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.ch, ch)
		})
	}

	// Keys outside the contract pass through and the decoder drops them
	code, _, ok := convertKey(tcell.KeyBacktab, 0)
	require.True(t, ok)
	_, decoded := terminal.Decode(code)
	assert.False(t, decoded)
}

// Terminal input reaches the engine as KeyCtrlSpace+byte with ModCtrl
func TestConvertEventControlBytes(t *testing.T) {
	tests := []struct {
		b    byte
		want terminal.Key
	}{
		{0x01, terminal.Ctrl('a')},
		{0x0C, terminal.Ctrl('l')},
		{0x11, terminal.Ctrl('q')},
		{0x1A, terminal.Ctrl('z')},
		{0x1C, terminal.Ctrl('\\')},
		{0x1D, terminal.Ctrl(']')},
		{0x1E, terminal.Ctrl('6')},
		{0x1F, terminal.Ctrl('/')},
	}
	for _, tt := range tests {
		raw, ok := convertEvent(tcell.NewEventKey(tcell.KeyCtrlSpace+tcell.Key(tt.b), 0, tcell.ModCtrl))
		require.True(t, ok, "byte %#x", tt.b)
		assert.Equal(t, uint16(tt.b), raw.Key, "byte %#x", tt.b)

		got, err := terminal.Translate(raw)
		require.NoError(t, err)
		assert.Equal(t, terminal.KeyEvent{Key: tt.want}, got, "byte %#x", tt.b)
	}
}

func TestConvertEventMouse(t *testing.T) {
	raw, ok := convertEvent(tcell.NewEventMouse(1, 2, tcell.Button1, tcell.ModNone))
	require.True(t, ok)
	assert.Equal(t, terminal.KindMouse, raw.Kind)

	_, err := terminal.Translate(raw)
	assert.ErrorIs(t, err, terminal.ErrUnknownEventKind)
}
