package backend

import "github.com/lixenwraith/rawterm/terminal"

// escapeSequence maps the bytes after ESC [ or ESC O to an engine key code
type escapeSequence struct {
	seq  string
	code uint16
}

// Known CSI sequences (ESC [ ...), modifier parameters already stripped
var csiSequences = []escapeSequence{
	// Arrow keys
	{"A", terminal.KeyCodeArrowUp},
	{"B", terminal.KeyCodeArrowDown},
	{"C", terminal.KeyCodeArrowRight},
	{"D", terminal.KeyCodeArrowLeft},

	// Navigation
	{"H", terminal.KeyCodeHome},
	{"F", terminal.KeyCodeEnd},
	{"1~", terminal.KeyCodeHome},
	{"7~", terminal.KeyCodeHome},
	{"4~", terminal.KeyCodeEnd},
	{"8~", terminal.KeyCodeEnd},
	{"2~", terminal.KeyCodeInsert},
	{"3~", terminal.KeyCodeDelete},
	{"5~", terminal.KeyCodePgUp},
	{"6~", terminal.KeyCodePgDn},

	// Function keys (xterm)
	{"P", terminal.KeyCodeF1},
	{"Q", terminal.KeyCodeF2},
	{"R", terminal.KeyCodeF3},
	{"S", terminal.KeyCodeF4},
	{"11~", terminal.KeyCodeF1},
	{"12~", terminal.KeyCodeF2},
	{"13~", terminal.KeyCodeF3},
	{"14~", terminal.KeyCodeF4},
	{"15~", terminal.KeyCodeF5},
	{"17~", terminal.KeyCodeF6},
	{"18~", terminal.KeyCodeF7},
	{"19~", terminal.KeyCodeF8},
	{"20~", terminal.KeyCodeF9},
	{"21~", terminal.KeyCodeF10},
	{"23~", terminal.KeyCodeF11},
	{"24~", terminal.KeyCodeF12},

	// Function keys (linux console)
	{"[A", terminal.KeyCodeF1},
	{"[B", terminal.KeyCodeF2},
	{"[C", terminal.KeyCodeF3},
	{"[D", terminal.KeyCodeF4},
	{"[E", terminal.KeyCodeF5},
}

// SS3 sequences (ESC O ...)
var ss3Sequences = []escapeSequence{
	{"A", terminal.KeyCodeArrowUp},
	{"B", terminal.KeyCodeArrowDown},
	{"C", terminal.KeyCodeArrowRight},
	{"D", terminal.KeyCodeArrowLeft},
	{"H", terminal.KeyCodeHome},
	{"F", terminal.KeyCodeEnd},
	{"P", terminal.KeyCodeF1},
	{"Q", terminal.KeyCodeF2},
	{"R", terminal.KeyCodeF3},
	{"S", terminal.KeyCodeF4},
	{"M", terminal.KeyCodeEnter}, // Keypad Enter
}

var csiMap = buildSequenceMap(csiSequences)
var ss3Map = buildSequenceMap(ss3Sequences)

func buildSequenceMap(seqs []escapeSequence) map[string]uint16 {
	m := make(map[string]uint16, len(seqs))
	for _, s := range seqs {
		m[s.seq] = s.code
	}
	return m
}

// lookupCSI resolves a CSI body, ignoring xterm modifier parameters
// ("1;5A" -> "A", "3;2~" -> "3~"). The record has no modifier field.
func lookupCSI(body []byte) (uint16, bool) {
	if code, ok := csiMap[string(body)]; ok {
		return code, true
	}
	if stripped, ok := stripModifier(body); ok {
		code, found := csiMap[stripped]
		return code, found
	}
	return 0, false
}

// lookupSS3 performs zero-alloc map lookup
func lookupSS3(final byte) (uint16, bool) {
	code, ok := ss3Map[string([]byte{final})]
	return code, ok
}

// stripModifier rewrites "N;M<final>" as "N<final>", and "1;M<final>" as "<final>" for letter finals
func stripModifier(body []byte) (string, bool) {
	semi := -1
	for i, b := range body {
		if b == ';' {
			semi = i
			break
		}
	}
	if semi <= 0 || len(body) < semi+3 {
		return "", false
	}

	final := body[len(body)-1]
	for _, b := range body[semi+1 : len(body)-1] {
		if b < '0' || b > '9' {
			return "", false
		}
	}

	prefix := string(body[:semi])
	if final != '~' && prefix == "1" {
		return string(final), true
	}
	return prefix + string(final), true
}
