package terminal

import (
	"fmt"
	"strconv"
)

// KeyKind is the variant tag of a Key
type KeyKind uint8

const (
	KindInvalid KeyKind = iota
	KindTab
	KindEnter
	KindEsc
	KindBackspace
	KindRight
	KindLeft
	KindUp
	KindDown
	KindDelete
	KindInsert
	KindHome
	KindEnd
	KindPgUp
	KindPgDn
	KindChar // Rune holds the character
	KindCtrl // Rune holds the character pressed with Ctrl
	KindF    // Num holds 1-12
)

// Key is one decoded keypress. Comparable, copied by value
type Key struct {
	Kind KeyKind
	Rune rune
	Num  uint8
}

// Named keys
var (
	Tab       = Key{Kind: KindTab}
	Enter     = Key{Kind: KindEnter}
	Esc       = Key{Kind: KindEsc}
	Backspace = Key{Kind: KindBackspace}
	Right     = Key{Kind: KindRight}
	Left      = Key{Kind: KindLeft}
	Up        = Key{Kind: KindUp}
	Down      = Key{Kind: KindDown}
	Delete    = Key{Kind: KindDelete}
	Insert    = Key{Kind: KindInsert}
	Home      = Key{Kind: KindHome}
	End       = Key{Kind: KindEnd}
	PgUp      = Key{Kind: KindPgUp}
	PgDn      = Key{Kind: KindPgDn}
)

// Char returns the key for a printable character
func Char(r rune) Key { return Key{Kind: KindChar, Rune: r} }

// Ctrl returns the key for r pressed with Ctrl
func Ctrl(r rune) Key { return Key{Kind: KindCtrl, Rune: r} }

// F returns function key n (1-12)
func F(n uint8) Key { return Key{Kind: KindF, Num: n} }

// sentinelKeys maps the engine's special key codes
var sentinelKeys = map[uint16]Key{
	KeyCodeArrowLeft:  Left,
	KeyCodeArrowRight: Right,
	KeyCodeArrowUp:    Up,
	KeyCodeArrowDown:  Down,
	KeyCodeInsert:     Insert,
	KeyCodeDelete:     Delete,
	KeyCodeHome:       Home,
	KeyCodeEnd:        End,
	KeyCodePgUp:       PgUp,
	KeyCodePgDn:       PgDn,
	KeyCodeF1:         F(1),
	KeyCodeF2:         F(2),
	KeyCodeF3:         F(3),
	KeyCodeF4:         F(4),
	KeyCodeF5:         F(5),
	KeyCodeF6:         F(6),
	KeyCodeF7:         F(7),
	KeyCodeF8:         F(8),
	KeyCodeF9:         F(9),
	KeyCodeF10:        F(10),
	KeyCodeF11:        F(11),
	KeyCodeF12:        F(12),
}

// Decode maps an engine key code to a Key.
// Returns false when the code is not a known key; the caller may fall back to
// interpreting the event's codepoint instead.
func Decode(code uint16) (Key, bool) {
	// Backspace/Tab/Enter shadow Ctrl+H/I/M
	switch code {
	case KeyCodeBackspace, KeyCodeBackspace2:
		return Backspace, true
	case KeyCodeTab:
		return Tab, true
	case KeyCodeEnter:
		return Enter, true
	case KeyCodeEsc:
		return Esc, true
	case KeyCodeSpace:
		return Char(' '), true
	case 0x1C:
		return Ctrl('\\'), true
	case 0x1D:
		return Ctrl(']'), true
	case 0x1E:
		return Ctrl('6'), true
	case 0x1F:
		return Ctrl('/'), true
	}

	if code >= 1 && code <= 26 {
		return Ctrl('`' + rune(code)), true
	}

	k, ok := sentinelKeys[code]
	return k, ok
}

// String returns a readable form: Tab, Char('a'), Ctrl+a, F5
func (k Key) String() string {
	switch k.Kind {
	case KindChar:
		return "Char(" + strconv.QuoteRune(k.Rune) + ")"
	case KindCtrl:
		return "Ctrl+" + string(k.Rune)
	case KindF:
		return "F" + strconv.Itoa(int(k.Num))
	}
	if name, ok := kindNames[k.Kind]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", k.Kind)
}

var kindNames = map[KeyKind]string{
	KindTab:       "Tab",
	KindEnter:     "Enter",
	KindEsc:       "Esc",
	KindBackspace: "Backspace",
	KindRight:     "Right",
	KindLeft:      "Left",
	KindUp:        "Up",
	KindDown:      "Down",
	KindDelete:    "Delete",
	KindInsert:    "Insert",
	KindHome:      "Home",
	KindEnd:       "End",
	KindPgUp:      "PgUp",
	KindPgDn:      "PgDn",
}
