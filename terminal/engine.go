package terminal

// Engine is the numeric contract of the underlying terminal engine.
// Implementations own the tty, the screen buffers, and the event source.
type Engine interface {
	// Init enters raw mode. Negative return values are failure codes (Code* constants)
	Init() int

	// Shutdown restores the terminal to its pre-Init state
	Shutdown()

	Width() int
	Height() int

	// Clear resets the back buffer to blank cells
	Clear()

	// Present flushes the back buffer to the physical terminal
	Present()

	// ChangeCell stages one glyph. fg is a packed word, see PackFg
	ChangeCell(x, y int, ch uint32, fg, bg uint16)

	// SetCursor positions the visible cursor; (-1, -1) hides it
	SetCursor(x, y int)

	// PollEvent blocks until an event arrives. Returns the event kind or a negative status
	PollEvent(ev *RawEvent) int

	// PeekEvent waits at most timeoutMs. Returns 0 on expiry, the event kind, or a negative status
	PeekEvent(ev *RawEvent, timeoutMs int) int
}

// RawEvent is the engine's untyped event record
type RawEvent struct {
	Kind   uint8
	Key    uint16
	Ch     uint32
	Width  int32
	Height int32
}

// Event kinds carried in RawEvent.Kind and returned by PollEvent/PeekEvent
const (
	KindNone   uint8 = 0
	KindKey    uint8 = 1
	KindResize uint8 = 2
	KindMouse  uint8 = 3
)

// Init result codes
const (
	CodeOK                  = 0
	CodeUnsupportedTerminal = -1
	CodeFailedToOpenTty     = -2
	CodePipeTrapError       = -3
	CodeUnknown             = -9 // Any other negative value is also treated as unknown
)

// Special key codes (termbox numbering: 0xFFFF counting down)
const (
	KeyCodeF1 uint16 = 0xFFFF - iota
	KeyCodeF2
	KeyCodeF3
	KeyCodeF4
	KeyCodeF5
	KeyCodeF6
	KeyCodeF7
	KeyCodeF8
	KeyCodeF9
	KeyCodeF10
	KeyCodeF11
	KeyCodeF12
	KeyCodeInsert
	KeyCodeDelete
	KeyCodeHome
	KeyCodeEnd
	KeyCodePgUp
	KeyCodePgDn
	KeyCodeArrowUp
	KeyCodeArrowDown
	KeyCodeArrowLeft
	KeyCodeArrowRight
)

// ASCII key codes with fixed meaning
const (
	KeyCodeBackspace  uint16 = 0x08
	KeyCodeTab        uint16 = 0x09
	KeyCodeEnter      uint16 = 0x0D
	KeyCodeEsc        uint16 = 0x1B
	KeyCodeSpace      uint16 = 0x20
	KeyCodeBackspace2 uint16 = 0x7F
)
