package terminal

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidCodepoint is returned for key records whose codepoint is not a Unicode scalar
	ErrInvalidCodepoint = errors.New("terminal: invalid codepoint")

	// ErrUnknownEventKind is returned for records that are neither none, key, nor resize
	ErrUnknownEventKind = errors.New("terminal: unknown event kind")
)

// Event is either a KeyEvent or a ResizeEvent
type Event interface {
	isEvent()
}

// KeyEvent reports a keypress
type KeyEvent struct {
	Key Key
}

// ResizeEvent reports new terminal dimensions in cells
type ResizeEvent struct {
	Width  int
	Height int
}

func (KeyEvent) isEvent()    {}
func (ResizeEvent) isEvent() {}

func (e KeyEvent) String() string {
	return "Key(" + e.Key.String() + ")"
}

func (e ResizeEvent) String() string {
	return fmt.Sprintf("Resize(%d, %d)", e.Width, e.Height)
}

// Translate converts one raw engine record into an Event.
// A nil Event with nil error means nothing to report: no event, or a key code with no mapping.
func Translate(raw RawEvent) (Event, error) {
	switch raw.Kind {
	case KindNone:
		return nil, nil

	case KindKey:
		if raw.Key == 0 {
			r := rune(raw.Ch)
			if raw.Ch > utf8.MaxRune || !utf8.ValidRune(r) {
				return nil, fmt.Errorf("%w: %#x", ErrInvalidCodepoint, raw.Ch)
			}
			// Control codepoints go through the key table so Char never carries one
			if r < 0x20 || r == 0x7F {
				return decodeKey(uint16(r)), nil
			}
			return KeyEvent{Key: Char(r)}, nil
		}
		return decodeKey(raw.Key), nil

	case KindResize:
		return ResizeEvent{Width: clampDim(raw.Width), Height: clampDim(raw.Height)}, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownEventKind, raw.Kind)
}

// decodeKey returns nil for unmapped codes; they are dropped, not surfaced
func decodeKey(code uint16) Event {
	if k, ok := Decode(code); ok {
		return KeyEvent{Key: k}
	}
	return nil
}

func clampDim(v int32) int {
	if v < 0 {
		return 0
	}
	return int(v)
}
