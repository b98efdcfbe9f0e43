package backend

import (
	"bufio"
	"io"

	"github.com/mattn/go-runewidth"

	"github.com/lixenwraith/rawterm/terminal"
)

// Pre-allocated ANSI sequence fragments
var (
	csi      = []byte("\x1b[")
	csiClear = []byte("\x1b[2J\x1b[H")
	csiRIS   = []byte("\x1bc") // Reset to Initial State (emergency)
	csiSGR0  = []byte("\x1b[0m")

	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
	// ?7l keeps the cursor at the right edge so writing the bottom-right cell does not scroll
	csiAutoWrapOn  = []byte("\x1b[?7h")
	csiAutoWrapOff = []byte("\x1b[?7l")
)

// cell is one back/front buffer slot; ch 0 renders as a blank
type cell struct {
	ch rune
	fg uint16
	bg uint16
}

var blankCell = cell{ch: ' ', fg: terminal.PackFg(terminal.Default, terminal.FaceNone), bg: uint16(terminal.Default)}

// outputBuffer diffs the back buffer against what is on screen and writes only changed cells
type outputBuffer struct {
	front  []cell
	width  int
	height int
	writer *bufio.Writer

	cursorX     int
	cursorY     int
	cursorValid bool

	// Style state for coalescing
	lastFg    uint16
	lastBg    uint16
	lastValid bool
}

func newOutputBuffer(w io.Writer) *outputBuffer {
	return &outputBuffer{
		writer: bufio.NewWriterSize(w, 32768),
	}
}

// resize reallocates the front buffer; every cell is redrawn on the next flush
func (o *outputBuffer) resize(width, height int) {
	size := width * height
	if cap(o.front) < size {
		o.front = make([]cell, size)
	} else {
		o.front = o.front[:size]
	}
	o.width = width
	o.height = height
	o.invalidate()
}

// invalidate forces a full redraw on the next flush
func (o *outputBuffer) invalidate() {
	for i := range o.front {
		o.front[i] = cell{}
	}
	o.lastValid = false
	o.cursorValid = false
}

// flush writes the dirty cells of back. The screen cursor is left wherever the last write put it
func (o *outputBuffer) flush(back []cell, width, height int) {
	if width != o.width || height != o.height {
		o.resize(width, height)
	}
	if len(back) < width*height {
		return
	}

	w := o.writer

	for y := 0; y < height; y++ {
		rowStart := y * width
		x := 0

		for x < width {
			idx := rowStart + x
			c := back[idx]

			if c == o.front[idx] {
				x++
				continue
			}

			if !o.cursorValid || x != o.cursorX || y != o.cursorY {
				writeCursorPos(w, x, y)
				o.cursorX = x
				o.cursorY = y
				o.cursorValid = true
			}

			o.writeStyle(w, c.fg, c.bg)

			r := c.ch
			if r == 0 {
				r = ' '
			}
			cw := runewidth.RuneWidth(r)
			if cw == 0 {
				// Combining or non-printing glyph would not advance the cursor
				r, cw = ' ', 1
			}
			if cw == 2 && x+1 >= width {
				// No room for the second column
				r, cw = ' ', 1
			}

			if r < 0x80 {
				w.WriteByte(byte(r))
			} else {
				w.WriteRune(r)
			}
			o.front[idx] = c

			if cw == 2 {
				// The glyph covers the next column; sync it so it is not overwritten
				o.front[idx+1] = back[idx+1]
			}
			o.cursorX += cw
			x += cw
		}
	}

	w.Write(csiSGR0)
	o.lastValid = false
}

// writeStyle emits one combined SGR sequence when the style changes
func (o *outputBuffer) writeStyle(w *bufio.Writer, fg, bg uint16) {
	if o.lastValid && fg == o.lastFg && bg == o.lastBg {
		return
	}

	color, face := terminal.UnpackFg(fg)

	w.Write(csi)
	w.WriteByte('0')
	if face&terminal.FaceBold != 0 {
		w.Write([]byte(";1"))
	}
	if face&terminal.FaceUnderline != 0 {
		w.Write([]byte(";4"))
	}
	if face&terminal.FaceReverse != 0 {
		w.Write([]byte(";7"))
	}

	w.WriteByte(';')
	writeInt(w, sgrColor(color, 30))
	w.WriteByte(';')
	bgColor, _ := terminal.UnpackFg(bg)
	writeInt(w, sgrColor(bgColor, 40))
	w.WriteByte('m')

	o.lastFg = fg
	o.lastBg = bg
	o.lastValid = true
}

// sgrColor maps a palette entry to base+index, or base+9 for the terminal default
func sgrColor(c terminal.Color, base int) int {
	if c <= terminal.White {
		return base + int(c)
	}
	return base + 9
}

// clear erases the screen and resets the front buffer to blanks
func (o *outputBuffer) clear() {
	w := o.writer
	w.Write(csiSGR0)
	w.Write(csiClear)

	o.lastValid = false
	o.cursorValid = false

	for i := range o.front {
		o.front[i] = blankCell
	}
}

// placeCursor moves the visible cursor, or hides it for negative coordinates
func (o *outputBuffer) placeCursor(x, y int) {
	w := o.writer
	if x < 0 || y < 0 {
		w.Write(csiCursorHide)
		return
	}
	writeCursorPos(w, x, y)
	w.Write(csiCursorShow)
	o.cursorX = x
	o.cursorY = y
	o.cursorValid = true
}

func (o *outputBuffer) write(p []byte) {
	o.writer.Write(p)
}

func (o *outputBuffer) sync() error {
	return o.writer.Flush()
}

// writeInt writes a non-negative integer without allocation
func writeInt(w *bufio.Writer, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte(n%10) + '0'
		n /= 10
	}
	w.Write(buf[i:])
}

// writeCursorPos writes a cursor positioning sequence (0-indexed input)
func writeCursorPos(w *bufio.Writer, x, y int) {
	w.Write(csi)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}
