package term

import (
	"encoding/base64"
	"fmt"
	"image/color"
)

// SnapshotDetail specifies the level of detail in a snapshot.
type SnapshotDetail string

const (
	// SnapshotDetailText returns plain text only.
	SnapshotDetailText SnapshotDetail = "text"
	// SnapshotDetailStyled returns text with style segments per line.
	SnapshotDetailStyled SnapshotDetail = "styled"
	// SnapshotDetailFull returns full cell-by-cell data.
	SnapshotDetailFull SnapshotDetail = "full"
)

// Snapshot represents a complete terminal screen capture.
type Snapshot struct {
	Size   SnapshotSize    `json:"size"`
	Cursor SnapshotCursor  `json:"cursor"`
	Lines  []SnapshotLine  `json:"lines"`
	Images []SnapshotImage `json:"images,omitempty"`
}

// SnapshotSize holds terminal dimensions.
type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SnapshotCursor holds cursor state.
type SnapshotCursor struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Visible bool   `json:"visible"`
	Style   string `json:"style"`
}

// SnapshotLine represents a single line in the snapshot.
type SnapshotLine struct {
	Text     string            `json:"text"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
	Cells    []SnapshotCell    `json:"cells,omitempty"`
}

// SnapshotSegment represents a styled text segment within a line.
type SnapshotSegment struct {
	Text       string        `json:"text"`
	Fg         string        `json:"fg,omitempty"`
	Bg         string        `json:"bg,omitempty"`
	Attributes SnapshotAttrs `json:"attrs,omitempty"`
	Hyperlink  *SnapshotLink `json:"hyperlink,omitempty"`
}

// SnapshotCell represents a single cell with full attributes.
type SnapshotCell struct {
	Char           string        `json:"char"`
	Fg             string        `json:"fg"`
	Bg             string        `json:"bg"`
	UnderlineColor string        `json:"underline_color,omitempty"`
	Attributes     SnapshotAttrs `json:"attrs,omitempty"`
	Hyperlink      *SnapshotLink `json:"hyperlink,omitempty"`
	Wide           bool          `json:"wide,omitempty"`
	WideSpacer     bool          `json:"wide_spacer,omitempty"`
}

// SnapshotAttrs holds text formatting attributes. Underline and Blink are
// strings rather than bools since SGR distinguishes several variants of
// each (spec.md §4.4): Underline is one of "", "single", "double", "curly",
// "dotted", "dashed"; Blink is one of "", "slow", "fast".
type SnapshotAttrs struct {
	Bold          bool   `json:"bold,omitempty"`
	Dim           bool   `json:"dim,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     string `json:"underline,omitempty"`
	Blink         string `json:"blink,omitempty"`
	Reverse       bool   `json:"reverse,omitempty"`
	Hidden        bool   `json:"hidden,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`
}

// SnapshotLink holds hyperlink information.
type SnapshotLink struct {
	ID  string `json:"id,omitempty"`
	URI string `json:"uri"`
}

// SnapshotImage holds image placement metadata (without pixel data).
type SnapshotImage struct {
	ID          uint32 `json:"id"`
	PlacementID uint32 `json:"placement_id"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	PixelWidth  uint32 `json:"pixel_width"`
	PixelHeight uint32 `json:"pixel_height"`
	ZIndex      int32  `json:"z_index"`
}

// ImageSnapshot holds complete image data for retrieval.
type ImageSnapshot struct {
	ID     uint32 `json:"id"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	Format string `json:"format"` // "rgba" (raw RGBA pixels, base64 encoded)
	Data   string `json:"data"`
}

// GetImageData returns the image data for the given ID on the active
// screen, or nil if not found.
func (t *Terminal) GetImageData(id uint32) *ImageSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	img := t.activeScreen().Images.Image(id)
	if img == nil {
		return nil
	}

	return &ImageSnapshot{
		ID:     img.ID,
		Width:  img.Width,
		Height: img.Height,
		Format: "rgba",
		Data:   base64.StdEncoding.EncodeToString(img.Data),
	}
}

// Snapshot creates a snapshot of the active screen's active area. The
// detail parameter controls how much per-cell information is included.
func (t *Terminal) Snapshot(detail SnapshotDetail) *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	screen := t.activeScreen()
	snap := &Snapshot{
		Size: SnapshotSize{Rows: t.rows, Cols: t.cols},
		Cursor: SnapshotCursor{
			Row:     screen.Cursor.Y,
			Col:     screen.Cursor.X,
			Visible: t.modes&ModeShowCursor != 0,
			Style:   cursorStyleToString(screen.Cursor.CursorStyle),
		},
		Lines: make([]SnapshotLine, t.rows),
	}

	for row := 0; row < t.rows; row++ {
		snap.Lines[row] = t.snapshotLine(screen, row, detail)
	}

	snap.Images = t.snapshotImages(screen)

	return snap
}

// snapshotImages returns all image placements on screen with metadata.
func (t *Terminal) snapshotImages(screen *Screen) []SnapshotImage {
	placements := screen.Images.Placements()
	if len(placements) == 0 {
		return nil
	}

	images := make([]SnapshotImage, 0, len(placements))
	for _, p := range placements {
		img := screen.Images.Image(p.ImageID)
		if img == nil {
			continue
		}

		images = append(images, SnapshotImage{
			ID:          p.ImageID,
			PlacementID: p.ID,
			Row:         p.Row,
			Col:         p.Col,
			Rows:        p.Rows,
			Cols:        p.Cols,
			PixelWidth:  img.Width,
			PixelHeight: img.Height,
			ZIndex:      p.ZIndex,
		})
	}

	return images
}

// snapshotLine creates a snapshot of a single active-area row.
func (t *Terminal) snapshotLine(screen *Screen, row int, detail SnapshotDetail) SnapshotLine {
	abs := screen.Pages.ActiveStart() + row
	r := screen.Pages.RowAt(abs)
	page := screen.Pages.PageAt(abs)

	line := SnapshotLine{Text: rowText(r)}

	switch detail {
	case SnapshotDetailText:
		// Just text, already set.

	case SnapshotDetailStyled:
		line.Segments = lineToSegments(r, page, t.palette)

	case SnapshotDetailFull:
		line.Cells = lineToCells(r, page, t.cols, t.palette)
	}

	return line
}

// rowText renders a row's visible runes, skipping wide-glyph spacer cells
// and trimming trailing blanks.
func rowText(r *Row) string {
	if r == nil {
		return ""
	}
	runes := make([]rune, 0, len(r.Cells))
	for i := range r.Cells {
		c := &r.Cells[i]
		if c.IsWideSpacer() {
			continue
		}
		ch := c.Char
		if ch == 0 {
			ch = ' '
		}
		runes = append(runes, ch)
	}
	for len(runes) > 0 && runes[len(runes)-1] == ' ' {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

// lineToSegments converts a row to styled segments (runs of identical style).
func lineToSegments(r *Row, page *Page, pal *DynamicPalette) []SnapshotSegment {
	if r == nil {
		return nil
	}
	var segments []SnapshotSegment
	var current *SnapshotSegment
	var currentChars []rune

	for i := range r.Cells {
		cell := &r.Cells[i]
		if cell.IsWideSpacer() {
			continue
		}

		style := page.Styles.Get(cell.StyleID)
		fg := colorToHex(pal, style.Fg, true)
		bg := colorToHex(pal, style.Bg, false)
		attrs := styleAttrsToSnapshot(style)
		link := cellHyperlinkToSnapshot(cell, page)

		if current == nil || !segmentMatches(current, fg, bg, attrs, link) {
			if current != nil && len(currentChars) > 0 {
				current.Text = string(currentChars)
				segments = append(segments, *current)
			}
			current = &SnapshotSegment{Fg: fg, Bg: bg, Attributes: attrs, Hyperlink: link}
			currentChars = nil
		}

		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}
		currentChars = append(currentChars, ch)
	}

	if current != nil && len(currentChars) > 0 {
		current.Text = string(currentChars)
		segments = append(segments, *current)
	}

	return segments
}

// lineToCells converts a row to full cell data, padding to cols with blanks
// when the row is shorter (should not normally happen, but a nil row does).
func lineToCells(r *Row, page *Page, cols int, pal *DynamicPalette) []SnapshotCell {
	cells := make([]SnapshotCell, 0, cols)

	for col := 0; col < cols; col++ {
		if r == nil || col >= len(r.Cells) {
			cells = append(cells, SnapshotCell{
				Char: " ",
				Fg:   colorToHex(pal, nil, true),
				Bg:   colorToHex(pal, nil, false),
			})
			continue
		}

		cell := &r.Cells[col]
		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}
		style := page.Styles.Get(cell.StyleID)

		underlineColor := ""
		if style.UnderlineColor != nil {
			underlineColor = colorToHex(pal, style.UnderlineColor, true)
		}

		cells = append(cells, SnapshotCell{
			Char:           string(ch),
			Fg:             colorToHex(pal, style.Fg, true),
			Bg:             colorToHex(pal, style.Bg, false),
			UnderlineColor: underlineColor,
			Attributes:     styleAttrsToSnapshot(style),
			Hyperlink:      cellHyperlinkToSnapshot(cell, page),
			Wide:           cell.IsWide(),
			WideSpacer:     cell.IsWideSpacer(),
		})
	}

	return cells
}

// segmentMatches reports whether seg already carries the given style.
func segmentMatches(seg *SnapshotSegment, fg, bg string, attrs SnapshotAttrs, link *SnapshotLink) bool {
	if seg.Fg != fg || seg.Bg != bg {
		return false
	}
	if seg.Attributes != attrs {
		return false
	}
	if seg.Hyperlink == nil && link == nil {
		return true
	}
	if seg.Hyperlink == nil || link == nil {
		return false
	}
	return seg.Hyperlink.URI == link.URI && seg.Hyperlink.ID == link.ID
}

// colorToHex resolves a Style color against the active palette and renders
// it as a "#rrggbb" string.
func colorToHex(pal *DynamicPalette, c color.Color, fg bool) string {
	rgba := resolveColor(pal, c, fg)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// styleAttrsToSnapshot extracts the SGR attributes carried on a pooled Style.
func styleAttrsToSnapshot(style Style) SnapshotAttrs {
	has := func(f StyleFlags) bool { return style.Attrs&f != 0 }
	return SnapshotAttrs{
		Bold:          has(StyleBold),
		Dim:           has(StyleDim),
		Italic:        has(StyleItalic),
		Underline:     underlineVariant(style.Attrs),
		Blink:         blinkVariant(style.Attrs),
		Reverse:       has(StyleReverse),
		Hidden:        has(StyleHidden),
		Strikethrough: has(StyleStrike),
	}
}

// underlineVariant maps a Style's underline-shape bits to the snapshot's
// string encoding; StyleUnderline (plain single) wins if somehow more than
// one bit is set, since that's the common SGR-4 case.
func underlineVariant(attrs StyleFlags) string {
	switch {
	case attrs&StyleUnderline != 0:
		return "single"
	case attrs&StyleDoubleUnderline != 0:
		return "double"
	case attrs&StyleCurlyUnderline != 0:
		return "curly"
	case attrs&StyleDottedUnderline != 0:
		return "dotted"
	case attrs&StyleDashedUnderline != 0:
		return "dashed"
	default:
		return ""
	}
}

func blinkVariant(attrs StyleFlags) string {
	switch {
	case attrs&StyleBlinkSlow != 0:
		return "slow"
	case attrs&StyleBlinkFast != 0:
		return "fast"
	default:
		return ""
	}
}

// cellHyperlinkToSnapshot resolves a cell's pooled hyperlink reference, if any.
func cellHyperlinkToSnapshot(cell *Cell, page *Page) *SnapshotLink {
	if !cell.HasFlag(CellFlagHasHyperlink) {
		return nil
	}
	link := page.Hyperlinks.Get(cell.Hyperlink)
	return &SnapshotLink{ID: link.ID, URI: link.URI}
}

// cursorStyleToString converts a DECSCUSR cursor style to its snapshot label.
func cursorStyleToString(style CursorStyle) string {
	switch style {
	case CursorStyleBlinkingBlock, CursorStyleSteadyBlock:
		return "block"
	case CursorStyleBlinkingUnderline, CursorStyleSteadyUnderline:
		return "underline"
	case CursorStyleBlinkingBar, CursorStyleSteadyBar:
		return "bar"
	default:
		return "block"
	}
}
