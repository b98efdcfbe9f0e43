package terminal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lixenwraith/rawterm/terminal"
	"github.com/lixenwraith/rawterm/terminal/terminaltest"
)

func TestInitFailureMapping(t *testing.T) {
	tests := []struct {
		code int
		want terminal.Failure
	}{
		{terminal.CodeUnsupportedTerminal, terminal.UnsupportedTerminal},
		{terminal.CodeFailedToOpenTty, terminal.FailedToOpenTty},
		{terminal.CodePipeTrapError, terminal.PipeTrapError},
		{-7, terminal.FailureUnknown},
	}

	for _, tt := range tests {
		e := terminaltest.New(80, 24)
		e.InitCode = tt.code

		term, err := terminal.Init(e)
		if term != nil {
			t.Errorf("Code %d: expected no session", tt.code)
		}
		var f terminal.Failure
		if !errors.As(err, &f) || f != tt.want {
			t.Errorf("Code %d: expected %v, got %v", tt.code, tt.want, err)
		}
		if e.ShutdownCalls != 0 {
			t.Errorf("Code %d: failed init must not shut down, got %d calls", tt.code, e.ShutdownCalls)
		}
	}
}

func TestInitSuccessCodes(t *testing.T) {
	for _, code := range []int{0, 1, 42} {
		e := terminaltest.New(80, 24)
		e.InitCode = code

		term, err := terminal.Init(e)
		if err != nil || term == nil {
			t.Fatalf("Code %d: expected session, got %v", code, err)
		}
		term.Close()
	}
}

func TestCloseExactlyOnce(t *testing.T) {
	e := terminaltest.New(80, 24)
	term, err := terminal.Init(e)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	term.Close()
	term.Close()
	term.Close()

	if e.ShutdownCalls != 1 {
		t.Errorf("Expected 1 shutdown, got %d", e.ShutdownCalls)
	}
	if !term.Closed() {
		t.Error("Expected Closed() after Close")
	}
}

func TestRunShutsDownOnEveryPath(t *testing.T) {
	t.Run("normal return", func(t *testing.T) {
		e := terminaltest.New(80, 24)
		err := terminal.Run(e, func(*terminal.Term) error { return nil })
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if e.ShutdownCalls != 1 {
			t.Errorf("Expected 1 shutdown, got %d", e.ShutdownCalls)
		}
	})

	t.Run("error return", func(t *testing.T) {
		e := terminaltest.New(80, 24)
		boom := errors.New("boom")
		err := terminal.Run(e, func(*terminal.Term) error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("Expected boom, got %v", err)
		}
		if e.ShutdownCalls != 1 {
			t.Errorf("Expected 1 shutdown, got %d", e.ShutdownCalls)
		}
	})

	t.Run("panic", func(t *testing.T) {
		e := terminaltest.New(80, 24)
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Error("Expected panic to propagate")
				}
			}()
			_ = terminal.Run(e, func(*terminal.Term) error { panic("crash") })
		}()
		if e.ShutdownCalls != 1 {
			t.Errorf("Expected 1 shutdown, got %d", e.ShutdownCalls)
		}
	})

	t.Run("explicit close inside", func(t *testing.T) {
		e := terminaltest.New(80, 24)
		_ = terminal.Run(e, func(term *terminal.Term) error {
			term.Close()
			return nil
		})
		if e.ShutdownCalls != 1 {
			t.Errorf("Expected 1 shutdown, got %d", e.ShutdownCalls)
		}
	})

	t.Run("init failure", func(t *testing.T) {
		e := terminaltest.New(80, 24)
		e.InitCode = terminal.CodeFailedToOpenTty
		called := false
		err := terminal.Run(e, func(*terminal.Term) error {
			called = true
			return nil
		})
		if !errors.Is(err, terminal.FailedToOpenTty) {
			t.Errorf("Expected FailedToOpenTty, got %v", err)
		}
		if called || e.ShutdownCalls != 0 {
			t.Errorf("Expected no body and no shutdown, called=%v shutdowns=%d", called, e.ShutdownCalls)
		}
	})
}

func TestDrawingForwarded(t *testing.T) {
	e := terminaltest.New(120, 40)
	term, _ := terminal.Init(e)
	defer term.Close()

	if w, h := term.Size(); w != 120 || h != 40 {
		t.Errorf("Expected 120x40, got %dx%d", w, h)
	}

	term.PrintChar(3, 4, terminal.FaceBold|terminal.FaceUnderline, terminal.Red, terminal.Blue, 'Q')
	c, ok := e.CellAt(3, 4)
	if !ok {
		t.Fatal("Expected cell at (3, 4)")
	}
	if c.Ch != 'Q' || c.Fg != 0x3001 || c.Bg != uint16(terminal.Blue) {
		t.Errorf("Unexpected cell %+v", c)
	}

	// No bounds validation at this layer
	term.PrintChar(500, -2, terminal.FaceNone, terminal.Default, terminal.Default, 'x')
	if _, ok := e.CellAt(500, -2); !ok {
		t.Error("Out-of-range cell should still reach the engine")
	}

	term.SetCursor(7, 8)
	if e.CursorX != 7 || e.CursorY != 8 {
		t.Errorf("Expected cursor (7, 8), got (%d, %d)", e.CursorX, e.CursorY)
	}
	term.HideCursor()
	if e.CursorX != -1 || e.CursorY != -1 {
		t.Errorf("Expected hidden cursor, got (%d, %d)", e.CursorX, e.CursorY)
	}

	term.Clear()
	term.Freshen()
	if e.ClearCalls != 1 || e.PresentCalls != 1 {
		t.Errorf("Expected 1 clear and 1 present, got %d and %d", e.ClearCalls, e.PresentCalls)
	}
}

func TestPrintString(t *testing.T) {
	e := terminaltest.New(80, 24)
	term, _ := terminal.Init(e)
	defer term.Close()

	end := term.PrintString(0, 0, terminal.FaceNone, terminal.White, terminal.Black, "a世b")
	if end != 4 {
		t.Errorf("Expected end column 4, got %d", end)
	}
	for x, want := range map[int]uint32{0: 'a', 1: '世', 3: 'b'} {
		c, ok := e.CellAt(x, 0)
		if !ok || c.Ch != want {
			t.Errorf("Column %d: expected %q, got %+v", x, want, c)
		}
	}
	if _, ok := e.CellAt(2, 0); ok {
		t.Error("Column 2 is covered by the wide glyph and should not be staged")
	}
}

func TestNextEvent(t *testing.T) {
	e := terminaltest.New(80, 24)
	e.Push(
		terminaltest.Key(0, 'A'),
		terminaltest.Key(1, 0),
		terminaltest.Resize(100, 30),
		terminaltest.Key(0x4242, 0),
	)
	e.PushStatus(0)
	e.PushStatus(-1)

	term, _ := terminal.Init(e)
	defer term.Close()

	expect := []terminal.Event{
		terminal.KeyEvent{Key: terminal.Char('A')},
		terminal.KeyEvent{Key: terminal.Ctrl('a')},
		terminal.ResizeEvent{Width: 100, Height: 30},
		nil, // unmapped key
		nil, // timeout
	}
	for i, want := range expect {
		got, err := term.NextEvent(terminal.NoTimeout)
		if err != nil {
			t.Fatalf("Event %d: unexpected error %v", i, err)
		}
		if got != want {
			t.Errorf("Event %d: expected %v, got %v", i, want, got)
		}
	}

	_, err := term.NextEvent(terminal.NoTimeout)
	if !errors.Is(err, terminal.ErrPoll) {
		t.Errorf("Expected ErrPoll, got %v", err)
	}
}

func TestNextEventTimeout(t *testing.T) {
	e := terminaltest.New(80, 24)
	term, _ := terminal.Init(e)
	defer term.Close()

	ev, err := term.NextEvent(250 * time.Millisecond)
	if ev != nil || err != nil {
		t.Errorf("Expected nil, nil on expiry, got %v, %v", ev, err)
	}
	if e.PeekCalls != 1 || e.PollCalls != 0 {
		t.Errorf("Expected peek, got peek=%d poll=%d", e.PeekCalls, e.PollCalls)
	}
	if e.LastTimeoutMs != 250 {
		t.Errorf("Expected 250ms, got %d", e.LastTimeoutMs)
	}

	_, _ = term.NextEvent(1000 * time.Hour)
	if e.LastTimeoutMs != 1<<31-1 {
		t.Errorf("Expected clamped timeout, got %d", e.LastTimeoutMs)
	}
}

func TestNextEventUnknownKind(t *testing.T) {
	e := terminaltest.New(80, 24)
	e.Push(terminal.RawEvent{Kind: terminal.KindMouse})
	term, _ := terminal.Init(e)
	defer term.Close()

	_, err := term.NextEvent(terminal.NoTimeout)
	if !errors.Is(err, terminal.ErrUnknownEventKind) {
		t.Errorf("Expected ErrUnknownEventKind, got %v", err)
	}
}

func TestClosedSession(t *testing.T) {
	e := terminaltest.New(80, 24)
	e.Push(terminaltest.Key(0, 'x'))
	term, _ := terminal.Init(e)
	term.Close()

	if _, err := term.NextEvent(terminal.NoTimeout); !errors.Is(err, terminal.ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if e.Pending() != 1 {
		t.Error("Closed session must not poll the engine")
	}

	term.PrintChar(0, 0, terminal.FaceNone, terminal.Default, terminal.Default, 'x')
	term.Clear()
	term.Freshen()
	if len(e.Cells) != 0 || e.ClearCalls != 0 || e.PresentCalls != 0 {
		t.Error("Closed session must not draw")
	}
	if term.Width() != 0 || term.Height() != 0 {
		t.Error("Closed session reports zero size")
	}
}
