package term

// Cursor is the active screen's write position and pen state (spec.md §3
// Screen "cursor (x, y, style, cursor_style, pending_wrap, protected,
// optional hyperlink)").
type Cursor struct {
	X, Y        int
	Style       Style
	CursorStyle CursorStyle
	PendingWrap bool
	Protected   bool
	Hyperlink   *Hyperlink
}

// CursorStyle selects how the cursor renders (DECSCUSR, spec.md §6).
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Charset selects a character-set translation table for a G0-G3 slot.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
	CharsetUK
)

// CharsetSlot indexes the four designatable charset slots.
type CharsetSlot int

const (
	CharsetG0 CharsetSlot = iota
	CharsetG1
	CharsetG2
	CharsetG3
)

// SavedCursor is the DECSC/DECRC (and alt-screen entry) snapshot (spec.md
// §3 Screen "saved-cursor stack").
type SavedCursor struct {
	Cursor       Cursor
	OriginMode   bool
	Charsets     [4]Charset
	CharsetIndex CharsetSlot
}

// Selection is a pair of pins bounding a selected range, plus whether the
// selection is rectangular (block) rather than linear (spec.md §3).
type Selection struct {
	Start, End *Pin
	Rectangle  bool
}

// Screen is a viewport over one PageList: cursor, saved-cursor stack,
// charset slots, kitty keyboard/graphics state, selection (spec.md §3).
type Screen struct {
	Pages *PageList

	Cursor     Cursor
	SavedStack []SavedCursor

	Charsets     [4]Charset
	CharsetIndex CharsetSlot

	KittyKeyboardFlags []int // stack of CSI > u pushed flag sets
	Images             *ImageManager

	Selection *Selection

	ScrollbackLimit int // bytes; mirrors Pages.maxBytes for quick inspection
}

// NewScreen builds a Screen with its own PageList sized cols x rows, with
// scrollback bytes bounded by maxScrollback (0 disables history).
func NewScreen(cols, rows, maxScrollback int) *Screen {
	return &Screen{
		Pages:           NewPageList(cols, rows, maxScrollback),
		ScrollbackLimit: maxScrollback,
		Images:          NewImageManager(64 << 20),
	}
}

// PushCursor saves the current cursor and charset state on ?1049 alt-screen
// entry. Origin mode is not saved here; DECSC goes through
// Terminal.SaveCursorPosition, which records it.
func (s *Screen) PushCursor() {
	s.SavedStack = append(s.SavedStack, SavedCursor{
		Cursor:       s.Cursor,
		Charsets:     s.Charsets,
		CharsetIndex: s.CharsetIndex,
	})
}

// PopCursor restores the most recently pushed cursor state (?1049 exit).
func (s *Screen) PopCursor() {
	if n := len(s.SavedStack); n > 0 {
		saved := s.SavedStack[n-1]
		s.SavedStack = s.SavedStack[:n-1]
		s.Cursor = saved.Cursor
		s.Charsets = saved.Charsets
		s.CharsetIndex = saved.CharsetIndex
	}
}

// ActiveCharset returns the charset currently selected by GL (CharsetIndex).
func (s *Screen) ActiveCharset() Charset { return s.Charsets[s.CharsetIndex] }
