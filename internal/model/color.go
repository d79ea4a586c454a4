package model

import "strings"

// LabelColor is one of the named export label colors.
type LabelColor string

const (
	LabelColorGreen  LabelColor = "green"
	LabelColorYellow LabelColor = "yellow"
	LabelColorOrange LabelColor = "orange"
	LabelColorRed    LabelColor = "red"
	LabelColorPurple LabelColor = "purple"
	LabelColorBlue   LabelColor = "blue"
	LabelColorSky    LabelColor = "sky"
	LabelColorLime   LabelColor = "lime"
	LabelColorPink   LabelColor = "pink"
	LabelColorBlack  LabelColor = "black"
	LabelColorNone   LabelColor = "none"
)

// NeutralLabelHex is used for labels without a known color.
const NeutralLabelHex = "#b3bac5"

var labelHex = map[LabelColor]string{
	LabelColorGreen:  "#61bd4f",
	LabelColorYellow: "#f2d600",
	LabelColorOrange: "#ff9f1a",
	LabelColorRed:    "#eb5a46",
	LabelColorPurple: "#c377e0",
	LabelColorBlue:   "#0079bf",
	LabelColorSky:    "#00c2e0",
	LabelColorLime:   "#51e898",
	LabelColorPink:   "#ff78cb",
	LabelColorBlack:  "#344563",
}

// ParseLabelColor maps an export color name to a LabelColor.
// Newer exports use shade suffixes ("green_dark"); those fold to the base color.
// Unknown or empty names return LabelColorNone.
func ParseLabelColor(s string) LabelColor {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, '_'); i > 0 {
		s = s[:i]
	}
	c := LabelColor(s)
	if _, ok := labelHex[c]; ok {
		return c
	}
	return LabelColorNone
}

// Hex returns the display color, falling back to NeutralLabelHex.
func (c LabelColor) Hex() string {
	if h, ok := labelHex[c]; ok {
		return h
	}
	return NeutralLabelHex
}

// DefaultBackgroundColor is used when the export has no background preference.
const DefaultBackgroundColor = "#0079bf"

type BackgroundKind string

const (
	BackgroundDefault BackgroundKind = "default"
	BackgroundImage   BackgroundKind = "image"
	BackgroundColor   BackgroundKind = "color"
)

// Background is the resolved board background. Exactly one of ImageURL/Color
// is meaningful, selected by Kind.
type Background struct {
	Kind     BackgroundKind `json:"kind"`
	ImageURL string         `json:"imageUrl,omitempty"`
	Color    string         `json:"color,omitempty"`
}

// ResolveBackground picks image, then color, then the default color.
func ResolveBackground(image, color string) Background {
	if image = strings.TrimSpace(image); image != "" {
		return Background{Kind: BackgroundImage, ImageURL: image}
	}
	if color = strings.TrimSpace(color); color != "" {
		return Background{Kind: BackgroundColor, Color: color}
	}
	return Background{Kind: BackgroundDefault, Color: DefaultBackgroundColor}
}

// CSS renders the background as an inline style declaration list.
func (b Background) CSS() string {
	switch b.Kind {
	case BackgroundImage:
		return "background-image: url(" + cssURL(b.ImageURL) + "); background-size: cover; background-position: center;"
	case BackgroundColor:
		if !safeCSSColor(b.Color) {
			return "background-color: " + DefaultBackgroundColor + ";"
		}
		return "background-color: " + b.Color + ";"
	default:
		return "background-color: " + DefaultBackgroundColor + ";"
	}
}

func cssURL(u string) string {
	r := strings.NewReplacer(`"`, `%22`, `'`, `%27`, `(`, `%28`, `)`, `%29`, "\n", "", "\r", "")
	return `"` + r.Replace(u) + `"`
}

// safeCSSColor accepts "#rgb"-style hex values and bare color keywords.
func safeCSSColor(c string) bool {
	if c == "" {
		return false
	}
	if c[0] == '#' {
		if n := len(c) - 1; n != 3 && n != 4 && n != 6 && n != 8 {
			return false
		}
		for i := 1; i < len(c); i++ {
			ch := c[i]
			if !(ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'f' || ch >= 'A' && ch <= 'F') {
				return false
			}
		}
		return true
	}
	for i := 0; i < len(c); i++ {
		ch := c[i]
		if !(ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z') {
			return false
		}
	}
	return true
}
