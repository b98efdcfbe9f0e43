package terminal

import "strings"

// Color is a 4-bit palette index, occupying the low byte of the packed fg word
type Color uint16

const (
	Black   Color = 0x00
	Red     Color = 0x01
	Green   Color = 0x02
	Yellow  Color = 0x03
	Blue    Color = 0x04
	Magenta Color = 0x05
	Cyan    Color = 0x06
	White   Color = 0x07
	Default Color = 0x0F // Terminal's own default
)

// Face is a set of rendering attributes (bitmask), packed into the upper byte of the fg word
type Face uint8

const (
	FaceNone      Face = 0
	FaceBold      Face = 0x10
	FaceUnderline Face = 0x20
	FaceReverse   Face = 0x40
)

// FaceMask masks the defined attribute bits
const FaceMask = FaceBold | FaceUnderline | FaceReverse

// colorMask selects the color bits of a packed word
const colorMask = 0x00FF

var colorNames = [...]string{
	Black:   "black",
	Red:     "red",
	Green:   "green",
	Yellow:  "yellow",
	Blue:    "blue",
	Magenta: "magenta",
	Cyan:    "cyan",
	White:   "white",
	Default: "default",
}

// Colors lists every valid palette entry
var Colors = []Color{Black, Red, Green, Yellow, Blue, Magenta, Cyan, White, Default}

// Valid reports whether c is one of the nine palette entries
func (c Color) Valid() bool {
	return c <= White || c == Default
}

func (c Color) String() string {
	if c.Valid() {
		return colorNames[c]
	}
	return "invalid"
}

// ColorByName resolves a lowercase color name
func ColorByName(name string) (Color, bool) {
	name = strings.ToLower(name)
	for _, c := range Colors {
		if colorNames[c] == name {
			return c, true
		}
	}
	return 0, false
}

// Has returns true if all bits of other are set
func (f Face) Has(other Face) bool {
	return f&other == other
}

func (f Face) String() string {
	if f&FaceMask == 0 {
		return "none"
	}
	var parts []string
	if f&FaceBold != 0 {
		parts = append(parts, "bold")
	}
	if f&FaceUnderline != 0 {
		parts = append(parts, "underline")
	}
	if f&FaceReverse != 0 {
		parts = append(parts, "reverse")
	}
	return strings.Join(parts, "|")
}

// FaceByName resolves a single attribute name
func FaceByName(name string) (Face, bool) {
	switch strings.ToLower(name) {
	case "none", "":
		return FaceNone, true
	case "bold":
		return FaceBold, true
	case "underline":
		return FaceUnderline, true
	case "reverse":
		return FaceReverse, true
	}
	return FaceNone, false
}

// PackFg builds the engine's foreground word: color in bits 0-7, face in bits 8-15
func PackFg(c Color, f Face) uint16 {
	return uint16(c)&colorMask | uint16(f)<<8
}

// UnpackFg splits a foreground word back into color and face
func UnpackFg(word uint16) (Color, Face) {
	return Color(word & colorMask), Face(word >> 8)
}
