package backend

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/rawterm/terminal"
)

// escapeTimeout is the quiet period after a lone ESC before it is reported as the Esc key
const escapeTimeout = 50 * time.Millisecond

// maxCSILen bounds the scan for a CSI terminator
const maxCSILen = 32

// inputItem is one parsed record or a terminal read error
type inputItem struct {
	ev  terminal.RawEvent
	err error
}

// parser turns a raw stdin byte stream into key records.
// It keeps a persistent buffer so sequences split across reads are reassembled.
type parser struct {
	buf  []byte
	emit func(terminal.RawEvent)
}

func newParser(emit func(terminal.RawEvent)) *parser {
	return &parser{buf: make([]byte, 0, 256), emit: emit}
}

// feed appends data and parses as much as possible
func (p *parser) feed(data []byte) {
	p.buf = append(p.buf, data...)
	consumed := p.parse(p.buf)

	// Compact buffer
	if consumed >= len(p.buf) {
		p.buf = p.buf[:0]
	} else if consumed > 0 {
		n := copy(p.buf, p.buf[consumed:])
		p.buf = p.buf[:n]
	}
}

// idle is called after escapeTimeout without input; a pending lone ESC becomes the Esc key
func (p *parser) idle() {
	if len(p.buf) == 1 && p.buf[0] == 0x1b {
		p.emitKey(terminal.KeyCodeEsc, 0)
		p.buf = p.buf[:0]
	}
}

// pending reports whether bytes are waiting for completion
func (p *parser) pending() bool {
	return len(p.buf) > 0
}

func (p *parser) emitKey(code uint16, ch rune) {
	p.emit(terminal.RawEvent{Kind: terminal.KindKey, Key: code, Ch: uint32(ch)})
}

// parse returns bytes consumed; it stops at an incomplete sequence
func (p *parser) parse(data []byte) int {
	i := 0
	n := len(data)

	for i < n {
		b := data[i]

		switch {
		case b == 0x1b:
			if i+1 >= n {
				return i // Wait for more data or the idle timeout
			}
			consumed := p.parseEscape(data[i:])
			if consumed == 0 {
				return i
			}
			i += consumed

		case b == ' ':
			p.emitKey(terminal.KeyCodeSpace, 0)
			i++

		case b > 0x20 && b < 0x7f:
			p.emitKey(0, rune(b))
			i++

		case b == 0x00:
			// Ctrl+Space has no key in the model
			i++

		case b < 0x20 || b == 0x7f:
			p.emitKey(uint16(b), 0)
			i++

		default:
			if !utf8.FullRune(data[i:]) {
				return i
			}
			r, size := utf8.DecodeRune(data[i:])
			if r != utf8.RuneError {
				p.emitKey(0, r)
			}
			i += size
		}
	}
	return i
}

// parseEscape handles ESC-prefixed input, returns 0 when more bytes are needed
func (p *parser) parseEscape(data []byte) int {
	switch data[1] {
	case '[':
		return p.parseCSI(data)
	case 'O':
		if len(data) < 3 {
			return 0
		}
		if code, ok := lookupSS3(data[2]); ok {
			p.emitKey(code, 0)
		}
		return 3
	}

	// ESC followed by anything else: report Esc, the next byte is parsed on its own
	p.emitKey(terminal.KeyCodeEsc, 0)
	return 1
}

// parseCSI scans ESC [ params final. Unknown but well-formed sequences are consumed silently.
func (p *parser) parseCSI(data []byte) int {
	limit := min(len(data), maxCSILen)

	for end := 2; end < limit; end++ {
		b := data[end]
		// "[A".."[E" linux console function keys: the '[' is part of the body
		if end == 2 && b == '[' {
			continue
		}
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			if code, ok := lookupCSI(data[2 : end+1]); ok {
				p.emitKey(code, 0)
			}
			return end + 1
		}
		if b < 0x20 || b > 0x7e {
			// Malformed, drop the introducer only
			return 2
		}
	}

	if len(data) >= maxCSILen {
		return 2
	}
	return 0
}

// inputReader reads the tty in a goroutine and queues parsed records
type inputReader struct {
	tty    tty
	events chan inputItem
	stopCh chan struct{}
	doneCh chan struct{}
	mu     sync.Mutex
	run    bool
}

func newInputReader(t tty) *inputReader {
	return &inputReader{
		tty:    t,
		events: make(chan inputItem, 256),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (r *inputReader) start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.run {
		return
	}
	r.run = true
	go r.readLoop()
}

// stop signals the reader and waits briefly for it to exit
func (r *inputReader) stop() {
	r.mu.Lock()
	if !r.run {
		r.mu.Unlock()
		return
	}
	r.run = false
	r.mu.Unlock()

	close(r.stopCh)
	select {
	case <-r.doneCh:
	case <-time.After(100 * time.Millisecond):
		// Reader stuck on blocking read, proceed anyway
	}
}

func (r *inputReader) readLoop() {
	defer close(r.doneCh)

	defer func() {
		if rec := recover(); rec != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINPUT READER CRASHED: %v\x1b[0m\r\n", rec)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	p := newParser(func(ev terminal.RawEvent) {
		r.send(inputItem{ev: ev})
	})

	for {
		data, err := r.tty.Read(r.stopCh)
		if err != nil {
			r.send(inputItem{err: err})
			return
		}

		select {
		case <-r.stopCh:
			return
		default:
		}

		if len(data) == 0 {
			// Poll timeout: resolve a pending lone ESC
			p.idle()
			continue
		}
		p.feed(data)
	}
}

// send queues an item, dropping it if the consumer is far behind
func (r *inputReader) send(item inputItem) {
	select {
	case r.events <- item:
	case <-r.stopCh:
	default:
	}
}
