package terminal

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// keyToName maps named keys to canonical config string names
var keyToName = map[Key]string{
	Esc:       "escape",
	Enter:     "enter",
	Tab:       "tab",
	Backspace: "backspace",
	Delete:    "delete",
	Char(' '): "space",

	Up:     "up",
	Down:   "down",
	Left:   "left",
	Right:  "right",
	Home:   "home",
	End:    "end",
	PgUp:   "page_up",
	PgDn:   "page_down",
	Insert: "insert",

	Ctrl('\\'): "ctrl_backslash",
	Ctrl(']'):  "ctrl_bracket_right",
	Ctrl('6'):  "ctrl_6",
	Ctrl('/'):  "ctrl_slash",
}

// nameToKey is the reverse lookup, built from keyToName
var nameToKey map[string]Key

func init() {
	nameToKey = make(map[string]Key, len(keyToName)+4)
	for k, v := range keyToName {
		nameToKey[v] = k
	}
	// Aliases
	nameToKey["esc"] = Esc
	nameToKey["pgup"] = PgUp
	nameToKey["pgdn"] = PgDn
	nameToKey["ctrl_caret"] = Ctrl('6')
}

// KeyName returns the canonical string name for a key: "enter", "ctrl_a", "f5", "x".
// Returns empty string for the zero Key.
func KeyName(k Key) string {
	if name, ok := keyToName[k]; ok {
		return name
	}
	switch k.Kind {
	case KindCtrl:
		return "ctrl_" + string(k.Rune)
	case KindF:
		return "f" + strconv.Itoa(int(k.Num))
	case KindChar:
		return string(k.Rune)
	}
	return ""
}

// KeyByName resolves a name produced by KeyName (case-insensitive for named keys)
func KeyByName(name string) (Key, bool) {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if r == utf8.RuneError || r < 0x20 || r == 0x7F {
			return Key{}, false
		}
		return Char(r), true
	}

	lower := strings.ToLower(name)
	if k, ok := nameToKey[lower]; ok {
		return k, true
	}

	if rest, ok := strings.CutPrefix(lower, "ctrl_"); ok && len(rest) == 1 && rest[0] >= 'a' && rest[0] <= 'z' {
		// Codes 8, 9 and 13 decode as Backspace, Tab and Enter, so these never arrive
		if rest[0] == 'h' || rest[0] == 'i' || rest[0] == 'm' {
			return Key{}, false
		}
		return Ctrl(rune(rest[0])), true
	}

	if rest, ok := strings.CutPrefix(lower, "f"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= 12 {
			return F(uint8(n)), true
		}
	}

	return Key{}, false
}
