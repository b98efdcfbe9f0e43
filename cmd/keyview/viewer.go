package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lixenwraith/rawterm/bell"
	"github.com/lixenwraith/rawterm/config"
	"github.com/lixenwraith/rawterm/terminal"
)

// maxLog caps retained event log entries
const maxLog = 200

// Header rows above the event log
const logTop = 3

// viewer is the keyview screen: a header, a status line, and a scrolling event log
type viewer struct {
	term    *terminal.Term
	engine  string
	timeout time.Duration
	quit    terminal.Key
	bell    *bell.Bell

	fg, bg, accent terminal.Color
	face           terminal.Face

	entries  []string
	ticks    int
	absorbed int
	lastEsc  bool

	// Live config reloads; nil channels disable them
	reloads    <-chan *config.Config
	reloadErrs <-chan error
	overrides  func(*config.Config)

	// since measures the wait; replaced in tests
	since func(time.Time) time.Duration
}

// apply takes the display settings from cfg. The engine is fixed for the session
func (v *viewer) apply(cfg *config.Config) {
	v.timeout = cfg.PollTimeout()
	v.quit = cfg.Quit()
	v.fg, v.bg, v.accent = cfg.Palette()
	v.face = cfg.Faces()
}

// pollReloads applies a pending config reload without waiting
func (v *viewer) pollReloads() {
	select {
	case cfg := <-v.reloads:
		if v.overrides != nil {
			v.overrides(cfg)
		}
		v.apply(cfg)
		v.addLog("CONFIG: reloaded")
	case err := <-v.reloadErrs:
		log.Printf("config reload: %v", err)
		v.addLog("ERROR: " + err.Error())
	default:
	}
}

func (v *viewer) addLog(s string) {
	if len(v.entries) >= maxLog {
		copy(v.entries, v.entries[1:])
		v.entries = v.entries[:maxLog-1]
	}
	v.entries = append(v.entries, s)
}

// run is the session body: render, wait, handle, until quit or a poll failure
func (v *viewer) run(t *terminal.Term) error {
	v.term = t
	if v.since == nil {
		v.since = time.Since
	}
	v.render()

	for {
		start, timeout := time.Now(), v.timeout
		ev, err := t.NextEvent(timeout)
		v.pollReloads()
		if err != nil {
			if errors.Is(err, terminal.ErrPoll) || errors.Is(err, terminal.ErrClosed) {
				return err
			}
			// Unsupported record, the session stays usable
			log.Printf("event: %v", err)
			v.addLog("ERROR: " + err.Error())
			v.bell.Ring()
			v.render()
			continue
		}

		expired := ev == nil && timeout >= 0 && v.since(start) >= timeout
		if v.handle(ev, expired) {
			return nil
		}
		v.render()
	}
}

// handle applies one event and reports whether the viewer should quit.
// A nil event is a timeout when expired is set, otherwise absorbed input.
func (v *viewer) handle(ev terminal.Event, expired bool) bool {
	switch e := ev.(type) {
	case nil:
		if expired {
			v.ticks++
			return false
		}
		v.absorbed++
		v.addLog("KEY: (unmapped)")
		v.bell.Ring()

	case terminal.KeyEvent:
		if e.Key == v.quit {
			return true
		}
		if e.Key == terminal.Esc {
			if v.lastEsc {
				return true
			}
			v.lastEsc = true
		} else {
			v.lastEsc = false
		}

		switch e.Key {
		case terminal.Ctrl('l'):
			v.entries = v.entries[:0]
			return false
		case terminal.Ctrl('b'):
			log.Printf("bell enabled: %v", v.bell.Toggle())
			return false
		}
		v.addLog(formatEvent(ev))

	case terminal.ResizeEvent:
		v.addLog(formatEvent(ev))
	}
	return false
}

// formatEvent renders one log line
func formatEvent(ev terminal.Event) string {
	switch e := ev.(type) {
	case terminal.KeyEvent:
		name := terminal.KeyName(e.Key)
		if e.Key.Kind == terminal.KindChar && (e.Key.Rune < 0x20 || e.Key.Rune >= 0x7f) {
			name = fmt.Sprintf("U+%04X", e.Key.Rune)
		}
		return fmt.Sprintf("KEY: %-16s %s", e.Key.String(), name)
	case terminal.ResizeEvent:
		return fmt.Sprintf("RESIZE: %dx%d", e.Width, e.Height)
	case nil:
		return "NONE"
	}
	return fmt.Sprintf("EVENT: %v", ev)
}

func (v *viewer) render() {
	t := v.term
	w, h := t.Size()
	t.Clear()

	header := fmt.Sprintf("keyview [%s] - %s or Esc Esc to quit, ctrl_l clears, ctrl_b toggles bell",
		v.engine, terminal.KeyName(v.quit))
	t.PrintString(0, 0, v.face, v.accent, v.bg, clip(header, w))

	bellState := "off"
	if v.bell.Enabled() {
		bellState = "on"
	}
	status := fmt.Sprintf("size %dx%d | ticks %d | absorbed %d | bell %s", w, h, v.ticks, v.absorbed, bellState)
	t.PrintString(0, 1, terminal.FaceNone, v.fg, v.bg, clip(status, w))

	rows := h - logTop
	first := max(len(v.entries)-rows, 0)
	for i, entry := range v.entries[first:] {
		t.PrintString(1, logTop+i, terminal.FaceNone, v.fg, v.bg, clip(entry, w-1))
	}

	t.HideCursor()
	t.Freshen()
}

// clip truncates s to at most n runes
func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
