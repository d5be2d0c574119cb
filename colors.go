package term

import "image/color"

// Style is the deduplicated set of rendering attributes a Cell points at via
// its StyleID (spec.md §3 "style reference (pool index)"). Two cells with
// identical Style values share one pool entry.
type Style struct {
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Attrs          StyleFlags
}

// StyleFlags are the SGR attributes that live on Style rather than per-cell.
type StyleFlags uint16

const (
	StyleBold StyleFlags = 1 << iota
	StyleDim
	StyleItalic
	StyleUnderline
	StyleDoubleUnderline
	StyleCurlyUnderline
	StyleDottedUnderline
	StyleDashedUnderline
	StyleBlinkSlow
	StyleBlinkFast
	StyleReverse
	StyleHidden
	StyleStrike
)

// IndexedColor references one of the 256 palette slots.
type IndexedColor struct{ Index int }

func (c *IndexedColor) RGBA() (r, g, b, a uint32) { return color.Black.RGBA() }

// NamedColor references a semantic color slot (default fg/bg/cursor, dim
// variants, ...) resolved against whatever DynamicPalette is active.
type NamedColor struct{ Name int }

func (c *NamedColor) RGBA() (r, g, b, a uint32) { return color.Black.RGBA() }

const (
	NamedColorForeground = iota + 256
	NamedColorBackground
	NamedColorCursor
	NamedColorDimBlack
	NamedColorDimRed
	NamedColorDimGreen
	NamedColorDimYellow
	NamedColorDimBlue
	NamedColorDimMagenta
	NamedColorDimCyan
	NamedColorDimWhite
	NamedColorBrightForeground
	NamedColorDimForeground
)

// DefaultForeground, DefaultBackground, DefaultCursorColor are the
// out-of-the-box dynamic colors; overridable via WithDefaultForeground etc.
// and resettable via OSC 110-119.
var (
	DefaultForeground  = color.RGBA{229, 229, 229, 255}
	DefaultBackground  = color.RGBA{0, 0, 0, 255}
	DefaultCursorColor = color.RGBA{229, 229, 229, 255}
)

// resolveColor converts a color.Color to concrete RGBA against a palette,
// falling back to fg/bg defaults for nil.
func resolveColor(pal *DynamicPalette, c color.Color, fg bool) color.RGBA {
	if c == nil {
		if fg {
			return pal.Foreground
		}
		return pal.Background
	}
	switch v := c.(type) {
	case color.RGBA:
		return v
	case *IndexedColor:
		if v.Index >= 0 && v.Index < 256 {
			return pal.Current[v.Index]
		}
	case *NamedColor:
		return resolveNamedColor(pal, v.Name, fg)
	}
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func resolveNamedColor(pal *DynamicPalette, name int, fg bool) color.RGBA {
	dim := func(c color.RGBA) color.RGBA {
		return color.RGBA{uint8(float64(c.R) * 0.66), uint8(float64(c.G) * 0.66), uint8(float64(c.B) * 0.66), 255}
	}
	switch {
	case name >= 0 && name < 16:
		return pal.Current[name]
	case name == NamedColorForeground:
		return pal.Foreground
	case name == NamedColorBackground:
		return pal.Background
	case name == NamedColorCursor:
		return pal.Cursor
	case name >= NamedColorDimBlack && name <= NamedColorDimWhite:
		return dim(pal.Current[name-NamedColorDimBlack])
	case name == NamedColorBrightForeground:
		return pal.Current[15]
	case name == NamedColorDimForeground:
		return dim(pal.Foreground)
	}
	if fg {
		return pal.Foreground
	}
	return pal.Background
}
