package term

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// DynamicPalette is the live 256-color table plus the base dynamic colors,
// with an override bitset so a later "reset to default" (OSC 104/110-119)
// restores exactly what was overridden and nothing else (spec.md §4.8).
type DynamicPalette struct {
	Current    [256]color.RGBA
	Original   [256]color.RGBA
	Overridden [256]bool

	Foreground color.RGBA
	Background color.RGBA
	Cursor     color.RGBA

	origForeground, origBackground, origCursor color.RGBA
}

// NewDynamicPalette builds the base-16 ANSI colors, generates the 216-color
// cube (see generateCube) and the 24-step ramp by CIELAB interpolation from
// bg to fg, and snapshots the result as "original" for later resets.
func NewDynamicPalette(base16 [16]color.RGBA, fg, bg, cursor color.RGBA) *DynamicPalette {
	p := &DynamicPalette{Foreground: fg, Background: bg, Cursor: cursor,
		origForeground: fg, origBackground: bg, origCursor: cursor}
	for i := 0; i < 16; i++ {
		p.Current[i] = base16[i]
	}
	generateCube(&p.Current)
	generateRamp(&p.Current, bg, fg)
	p.Original = p.Current
	return p
}

// generateCube fills palette indices 16..231 with the fixed xterm 6x6x6
// color cube (channel steps 0, 95, 135, 175, 215, 255), each entry
// converted to LAB and back to sRGB. The cube does not depend on the
// base-16 colors, bg or fg: nothing is interpolated from them.
func generateCube(pal *[256]color.RGBA) {
	steps := [6]float64{0, 95, 135, 175, 215, 255}
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				c := colorful.Color{R: steps[r] / 255, G: steps[g] / 255, B: steps[b] / 255}
				l, a, bb2 := c.Lab()
				lab := colorful.Lab(l, a, bb2)
				rr, gg, bb := lab.Clamped().RGB255()
				pal[i] = color.RGBA{rr, gg, bb, 255}
				i++
			}
		}
	}
}

// generateRamp fills indices 232..255 with a linear LAB interpolation from
// bg to fg, matching spec.md §4.8's "ramp is linear LAB interpolation from
// bg→fg at t ∈ {1/25..24/25}".
func generateRamp(pal *[256]color.RGBA, bg, fg color.RGBA) {
	cbg := colorful.Color{R: float64(bg.R) / 255, G: float64(bg.G) / 255, B: float64(bg.B) / 255}
	cfg := colorful.Color{R: float64(fg.R) / 255, G: float64(fg.G) / 255, B: float64(fg.B) / 255}
	for j := 0; j < 24; j++ {
		t := float64(j+1) / 25
		c := cbg.BlendLab(cfg, t).Clamped()
		r, g, b := c.RGB255()
		pal[232+j] = color.RGBA{r, g, b, 255}
	}
}

// SetIndex implements OSC 4: set palette index n to c, marking it overridden.
func (p *DynamicPalette) SetIndex(n int, c color.RGBA) {
	if n < 0 || n >= 256 {
		return
	}
	p.Current[n] = c
	p.Overridden[n] = true
}

// ResetIndex implements OSC 104 for a single index (or all, when idx<0),
// restoring the original generated value and clearing the override bit.
func (p *DynamicPalette) ResetIndex(idx int) {
	if idx < 0 {
		for i := range p.Current {
			p.Current[i] = p.Original[i]
			p.Overridden[i] = false
		}
		return
	}
	if idx >= 0 && idx < 256 {
		p.Current[idx] = p.Original[idx]
		p.Overridden[idx] = false
	}
}

// ChangeDefault implements OSC 10/11/12 set, preserving any per-index
// overrides already applied (spec.md §4.8 "changeDefault(new) preserves
// overrides").
func (p *DynamicPalette) ChangeDefault(which int, c color.RGBA) {
	switch which {
	case NamedColorForeground:
		p.Foreground = c
	case NamedColorBackground:
		p.Background = c
	case NamedColorCursor:
		p.Cursor = c
	}
}

// ResetDefault implements OSC 110/111/112.
func (p *DynamicPalette) ResetDefault(which int) {
	switch which {
	case NamedColorForeground:
		p.Foreground = p.origForeground
	case NamedColorBackground:
		p.Background = p.origBackground
	case NamedColorCursor:
		p.Cursor = p.origCursor
	}
}

// LABRoundTrip converts c to CIELAB and back, for the §8 palette round-trip
// testable property (callers assert the result is within ±1 per channel).
func LABRoundTrip(c color.RGBA) color.RGBA {
	cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	l, a, b2 := cf.Lab()
	lab := colorful.Lab(l, a, b2)
	r, g, b := lab.Clamped().RGB255()
	return color.RGBA{r, g, b, 255}
}
