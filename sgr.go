package term

import "image/color"

// SGRKind tags one decoded Select Graphic Rendition attribute (spec.md §4.4
// "SGR with ':'/';' subparam separators and 256/truecolor").
type SGRKind uint8

const (
	SGRReset SGRKind = iota
	SGRSet                 // sets a StyleFlags bit
	SGRUnset                // clears a StyleFlags bit
	SGRForeground
	SGRBackground
	SGRUnderlineColor
	SGRResetForeground
	SGRResetBackground
	SGRResetUnderlineColor
)

// SGRAttribute is one decoded SGR attribute ready to apply to a Style.
type SGRAttribute struct {
	Kind  SGRKind
	Flag  StyleFlags
	Color color.Color
}

// ParseSGRParams decodes a CSI 'm' dispatch's params into a sequence of
// SGRAttribute (spec.md §4.4 SGR). Each top-level param is either a bare
// code (38/48/58 consume following sub- or top-level params for indexed or
// truecolor specs) or a ':'-separated sub-param group (modern truecolor
// form, e.g. "38:2::r:g:b").
func ParseSGRParams(params [][]uint16) []SGRAttribute {
	if len(params) == 0 {
		return []SGRAttribute{{Kind: SGRReset}}
	}
	var out []SGRAttribute
	for i := 0; i < len(params); i++ {
		p := params[i]
		code := firstOr(p, 0)
		switch {
		case code == 0:
			out = append(out, SGRAttribute{Kind: SGRReset})
		case code == 1:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleBold})
		case code == 2:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleDim})
		case code == 3:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleItalic})
		case code == 4:
			flag := StyleUnderline
			if len(p) > 1 {
				switch p[1] {
				case 2:
					flag = StyleDoubleUnderline
				case 3:
					flag = StyleCurlyUnderline
				case 4:
					flag = StyleDottedUnderline
				case 5:
					flag = StyleDashedUnderline
				}
			}
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: flag})
		case code == 5:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleBlinkSlow})
		case code == 6:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleBlinkFast})
		case code == 7:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleReverse})
		case code == 8:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleHidden})
		case code == 9:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleStrike})
		case code == 21:
			out = append(out, SGRAttribute{Kind: SGRSet, Flag: StyleDoubleUnderline})
		case code == 22:
			out = append(out, SGRAttribute{Kind: SGRUnset, Flag: StyleBold | StyleDim})
		case code == 23:
			out = append(out, SGRAttribute{Kind: SGRUnset, Flag: StyleItalic})
		case code == 24:
			out = append(out, SGRAttribute{Kind: SGRUnset, Flag: StyleUnderline | StyleDoubleUnderline | StyleCurlyUnderline | StyleDottedUnderline | StyleDashedUnderline})
		case code == 25:
			out = append(out, SGRAttribute{Kind: SGRUnset, Flag: StyleBlinkSlow | StyleBlinkFast})
		case code == 27:
			out = append(out, SGRAttribute{Kind: SGRUnset, Flag: StyleReverse})
		case code == 28:
			out = append(out, SGRAttribute{Kind: SGRUnset, Flag: StyleHidden})
		case code == 29:
			out = append(out, SGRAttribute{Kind: SGRUnset, Flag: StyleStrike})
		case code >= 30 && code <= 37:
			out = append(out, SGRAttribute{Kind: SGRForeground, Color: &IndexedColor{Index: int(code - 30)}})
		case code == 38:
			c, consumed := parseExtendedColor(p, params, i)
			out = append(out, SGRAttribute{Kind: SGRForeground, Color: c})
			i += consumed
		case code == 39:
			out = append(out, SGRAttribute{Kind: SGRResetForeground})
		case code >= 40 && code <= 47:
			out = append(out, SGRAttribute{Kind: SGRBackground, Color: &IndexedColor{Index: int(code - 40)}})
		case code == 48:
			c, consumed := parseExtendedColor(p, params, i)
			out = append(out, SGRAttribute{Kind: SGRBackground, Color: c})
			i += consumed
		case code == 49:
			out = append(out, SGRAttribute{Kind: SGRResetBackground})
		case code == 58:
			c, consumed := parseExtendedColor(p, params, i)
			out = append(out, SGRAttribute{Kind: SGRUnderlineColor, Color: c})
			i += consumed
		case code == 59:
			out = append(out, SGRAttribute{Kind: SGRResetUnderlineColor})
		case code >= 90 && code <= 97:
			out = append(out, SGRAttribute{Kind: SGRForeground, Color: &IndexedColor{Index: int(code-90) + 8}})
		case code >= 100 && code <= 107:
			out = append(out, SGRAttribute{Kind: SGRBackground, Color: &IndexedColor{Index: int(code-100) + 8}})
		}
	}
	return out
}

func firstOr(p []uint16, def uint16) int {
	if len(p) == 0 {
		return int(def)
	}
	return int(p[0])
}

// parseExtendedColor reads the "2;r;g;b" / "5;n" body of 38/48/58, in
// either modern ':'-subparam form (all within params[i]) or legacy
// ';'-separated form (spanning params[i+1:]). Returns the color and how
// many extra top-level params were consumed in the legacy form.
func parseExtendedColor(p []uint16, all [][]uint16, i int) (color.Color, int) {
	if len(p) > 1 {
		// Modern colon form: 38:2:cs:r:g:b or 38:5:n
		switch p[1] {
		case 2:
			if len(p) >= 5 {
				return color.RGBA{uint8(p[len(p)-3]), uint8(p[len(p)-2]), uint8(p[len(p)-1]), 255}, 0
			}
		case 5:
			if len(p) >= 3 {
				return &IndexedColor{Index: int(p[2])}, 0
			}
		}
		return nil, 0
	}
	// Legacy semicolon form: following top-level params carry the spec.
	if i+1 >= len(all) {
		return nil, 0
	}
	mode := firstOr(all[i+1], 0)
	switch mode {
	case 2:
		if i+4 < len(all) {
			r := firstOr(all[i+2], 0)
			g := firstOr(all[i+3], 0)
			b := firstOr(all[i+4], 0)
			return color.RGBA{uint8(r), uint8(g), uint8(b), 255}, 4
		}
	case 5:
		if i+2 < len(all) {
			return &IndexedColor{Index: firstOr(all[i+2], 0)}, 2
		}
	}
	return nil, 0
}

// applySGR mutates style in place according to one decoded attribute,
// resolving named/indexed colors against pal so Style always stores a
// concrete color.RGBA (spec.md §4.8 "styles store resolved colors").
func applySGR(style *Style, a SGRAttribute, pal *DynamicPalette) {
	switch a.Kind {
	case SGRReset:
		*style = Style{}
	case SGRSet:
		style.Attrs |= a.Flag
	case SGRUnset:
		style.Attrs &^= a.Flag
	case SGRForeground:
		style.Fg = resolveColor(pal, a.Color, true)
	case SGRBackground:
		style.Bg = resolveColor(pal, a.Color, false)
	case SGRUnderlineColor:
		style.UnderlineColor = resolveColor(pal, a.Color, true)
	case SGRResetForeground:
		style.Fg = nil
	case SGRResetBackground:
		style.Bg = nil
	case SGRResetUnderlineColor:
		style.UnderlineColor = nil
	}
}
