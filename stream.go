package term

import "image/color"

// Stream glues the byte-level Parser to the Terminal executor (spec.md §4.3
// "Glues Parser actions to a handler"). It owns no payload buffers of its
// own — the Parser already assembles OSC/DCS/APC payloads internally — but
// it does own the small amount of state needed to interpret a DCS hook's
// params once its matching Unhook delivers the payload, and the pending
// print-rune buffer used to assemble grapheme clusters before handing them
// to Terminal.Print.
type Stream struct {
	term   *Terminal
	parser *Parser

	printBuf []rune

	dcsHook    CSIDispatch
	inDCS      bool
}

// NewStream wires a fresh Parser to term (spec.md §4.3 "owns parser
// storage, UTF-8 decoder state, and per-sequence limits").
func NewStream(term *Terminal) *Stream {
	return &Stream{term: term, parser: NewParser()}
}

// Feed parses data and dispatches every resulting Action to the Terminal.
// Called with t.mu already held by Terminal.Write.
func (st *Stream) Feed(data []byte) {
	actions := st.parser.Feed(data)
	for _, a := range actions {
		if a.Kind != ActionPrint {
			st.flushPrint()
		}
		st.dispatch(a)
	}
	st.flushPrint()
}

// flushPrint drains the pending print-rune buffer into Terminal.Print, one
// grapheme cluster at a time (spec.md §4.4 "Print" steps 1-2). Buffering
// across Feed calls is deliberately not attempted: a combining mark arriving
// in a later call renders as its own cell rather than merging, the same
// trade-off the teacher's flat Input(r rune) path made.
func (st *Stream) flushPrint() {
	if len(st.printBuf) == 0 {
		return
	}
	s := string(st.printBuf)
	for s != "" {
		runes, width, rest := graphemeCluster(s)
		if width <= 0 {
			width = 1
		}
		st.term.Print(runes, width)
		s = rest
	}
	st.printBuf = st.printBuf[:0]
}

func (st *Stream) dispatch(a Action) {
	switch a.Kind {
	case ActionPrint:
		st.printBuf = append(st.printBuf, translateCharset(st.term.activeScreen(), a.Rune))
	case ActionExecute:
		st.execute(a.Byte)
	case ActionCSIDispatch:
		st.csiDispatch(a.CSI)
	case ActionESCDispatch:
		st.escDispatch(a.ESC)
	case ActionOSCEnd:
		st.term.dispatchOSC(ParseOSC(a.Payload))
	case ActionDCSHook:
		st.inDCS = true
		st.dcsHook = a.CSI
	case ActionDCSUnhook:
		if st.inDCS {
			st.dcsUnhook(st.dcsHook, a.Payload)
		}
		st.inDCS = false
	case ActionAPCEnd:
		st.apcEnd(a)
	}
}

// translateCharset applies the active G0-G3 slot's translation table to a
// printable codepoint (spec.md §4.3 "applying charset translation on the
// active GL/GR slot").
func translateCharset(s *Screen, r rune) rune {
	switch s.ActiveCharset() {
	case CharsetLineDrawing:
		if t, ok := decSpecialGraphics[r]; ok {
			return t
		}
	}
	return r
}

// decSpecialGraphics maps ASCII 0x5f-0x7e to the DEC Special Graphics
// (line-drawing) glyph set designated by SCS "0".
var decSpecialGraphics = map[rune]rune{
	'_': ' ', '`': '◆', 'a': '▒', 'b': '␉', 'c': '␌',
	'd': '␍', 'e': '␊', 'f': '°', 'g': '±', 'h': '␤',
	'i': '␋', 'j': '┘', 'k': '┐', 'l': '┌', 'm': '└',
	'n': '┼', 'o': '⎺', 'p': '⎻', 'q': '─', 'r': '⎼',
	's': '⎽', 't': '├', 'u': '┤', 'v': '┴', 'w': '┬',
	'x': '│', 'y': '≤', 'z': '≥', '{': 'π', '|': '≠',
	'}': '£', '~': '·',
}

func (st *Stream) execute(b byte) {
	t := st.term
	switch b {
	case 0x07: // BEL
		t.Bell()
	case 0x08: // BS
		t.Backspace()
	case 0x09: // HT
		t.Tab(1)
	case 0x0a, 0x0b, 0x0c: // LF, VT, FF
		t.LineFeed()
	case 0x0d: // CR
		t.CarriageReturn()
	case 0x0e: // SO — shift G1 into GL
		t.SetActiveCharset(1)
	case 0x0f: // SI — shift G0 into GL
		t.SetActiveCharset(0)
	default:
		t.logger("unhandled C0 control 0x%02x", b)
	}
}

// --- ESC dispatch ---

func (st *Stream) escDispatch(e ESCDispatch) {
	t := st.term
	if len(e.Intermediates) == 1 {
		switch e.Intermediates[0] {
		case '(':
			t.ConfigureCharset(CharsetG0, charsetFor(e.Final))
			return
		case ')':
			t.ConfigureCharset(CharsetG1, charsetFor(e.Final))
			return
		case '*':
			t.ConfigureCharset(CharsetG2, charsetFor(e.Final))
			return
		case '+':
			t.ConfigureCharset(CharsetG3, charsetFor(e.Final))
			return
		case '#':
			if e.Final == '8' {
				t.Decaln()
			}
			return
		}
	}
	switch e.Final {
	case 'D': // IND
		t.lineFeedInternal(t.activeScreen())
	case 'E': // NEL
		s := t.activeScreen()
		t.lineFeedInternal(s)
		s.Cursor.X = t.originLeft()
	case 'H': // HTS
		s := t.activeScreen()
		if page := s.Pages.PageAt(s.Pages.ActiveStart() + s.Cursor.Y); page != nil && s.Cursor.X < len(page.TabStops) {
			page.TabStops[s.Cursor.X] = true
		}
	case 'M': // RI
		t.ReverseIndex()
	case 'n': // LS2
		t.SetActiveCharset(2)
	case 'o': // LS3
		t.SetActiveCharset(3)
	case '}': // LS2R
		t.SetActiveCharset(2)
	case '|': // LS3R
		t.SetActiveCharset(3)
	case '~': // LS1R
		t.SetActiveCharset(1)
	case '7': // DECSC
		t.SaveCursorPosition()
	case '8': // DECRC
		t.RestoreCursorPosition()
	case '=': // DECKPAM
		t.SetKeypadApplicationMode()
	case '>': // DECKPNM
		t.UnsetKeypadApplicationMode()
	case 'c': // RIS
		t.ResetState()
	default:
		t.logger("unhandled ESC dispatch final=%q intermediates=%q", e.Final, e.Intermediates)
	}
}

func charsetFor(final byte) Charset {
	switch final {
	case '0':
		return CharsetLineDrawing
	case 'A':
		return CharsetUK
	default:
		return CharsetASCII
	}
}

// --- CSI dispatch ---

func p0(params [][]uint16, i, def int) int {
	if i >= len(params) || len(params[i]) == 0 || params[i][0] == 0 {
		return def
	}
	return int(params[i][0])
}

func pDef(params [][]uint16, i, def int) int {
	if i >= len(params) || len(params[i]) == 0 {
		return def
	}
	return int(params[i][0])
}

func (st *Stream) csiDispatch(c CSIDispatch) {
	t := st.term
	n := p0(c.Params, 0, 1)
	if n <= 0 {
		n = 1
	}

	if c.Private() {
		switch c.Final {
		case 'h', 'l':
			st.decPrivateMode(c, c.Final == 'h')
			return
		case 'u':
			st.kittyKeyboard(c)
			return
		case 'n':
			st.dsrPrivate(c)
			return
		case 'c':
			t.IdentifyTerminal(c.PrivateMarker)
			return
		}
	}

	if len(c.Intermediates) == 1 {
		switch c.Intermediates[0] {
		case ' ':
			if c.Final == 'q' {
				t.SetCursorStyle(CursorStyle(pDef(c.Params, 0, 0)))
				return
			}
		case '"':
			switch c.Final {
			case 'q': // DECSCA
				mode := pDef(c.Params, 0, 0)
				t.activeScreen().Cursor.Protected = mode == 1 || mode == 2
				return
			case 'p': // DECSCL
				return
			}
		case '!':
			if c.Final == 'p' { // DECSTR soft reset
				t.ResetState()
				return
			}
		case '$':
			if c.Final == 'q' { // DECRQSS, no settable state to report here
				t.logger("DECRQSS not implemented")
				return
			}
		}
	}

	switch c.Final {
	case '@':
		t.InsertBlank(n)
	case 'A':
		t.MoveUp(n)
	case 'B':
		t.MoveDown(n)
	case 'C':
		t.MoveForward(n)
	case 'D':
		t.MoveBackward(n)
	case 'E':
		t.MoveDownCr(n)
	case 'F':
		t.MoveUpCr(n)
	case 'G', '`':
		t.GotoCol(p0(c.Params, 0, 1) - 1)
	case 'H', 'f':
		t.Goto(p0(c.Params, 0, 1)-1, p0(c.Params, 1, 1)-1)
	case 'I':
		t.Tab(n)
	case 'J':
		t.ClearScreen(ClearMode(pDef(c.Params, 0, 0)))
		if pDef(c.Params, 0, 0) == 3 {
			t.ClearScrollback()
		}
	case 'K':
		t.ClearLine(LineClearMode(pDef(c.Params, 0, 0)))
	case 'L':
		t.InsertBlankLines(n)
	case 'M':
		t.DeleteLines(n)
	case 'P':
		t.DeleteChars(n)
	case 'S':
		t.ScrollUp(n)
	case 'T':
		t.ScrollDown(n)
	case 'X':
		t.EraseChars(n)
	case 'Z':
		st.cursorBackTab(n)
	case 'a':
		t.MoveForward(n)
	case 'b': // REP
		st.repeatLastPrinted(n)
	case 'c': // DA1, no private marker (DA2/DA3 handled above)
		t.IdentifyTerminal(0)
	case 'd':
		t.GotoLine(p0(c.Params, 0, 1) - 1)
	case 'e':
		t.MoveDown(n)
	case 'g':
		st.tabClear(pDef(c.Params, 0, 0))
	case 'h':
		st.ansiMode(c, true)
	case 'l':
		st.ansiMode(c, false)
	case 'm':
		t.SetTerminalCharAttribute(ParseSGRParams(c.Params))
	case 'n':
		t.DeviceStatus(pDef(c.Params, 0, 0))
	case 'r':
		top := p0(c.Params, 0, 1) - 1
		bottom := pDef(c.Params, 1, t.Rows())
		t.SetScrollingRegion(top, bottom)
	case 's':
		if t.HasMode(ModeLeftRightMargin) {
			left := p0(c.Params, 0, 1) - 1
			right := pDef(c.Params, 1, t.Cols())
			t.SetLeftRightMargin(left, right)
		} else {
			t.SaveCursorPosition()
		}
	case 't':
		st.windowOp(c)
	case 'u':
		t.RestoreCursorPosition()
	default:
		t.logger("unhandled CSI final=%q intermediates=%q private=%q", c.Final, c.Intermediates, c.PrivateMarker)
	}
}

func (st *Stream) repeatLastPrinted(n int) {
	r, ok := st.term.lastPrinted()
	if !ok {
		return
	}
	w := runeWidth(r)
	if w <= 0 {
		w = 1
	}
	for i := 0; i < n; i++ {
		st.term.Print([]rune{r}, w)
	}
}

func (st *Stream) cursorBackTab(n int) {
	s := st.term.activeScreen()
	page := s.Pages.PageAt(s.Pages.ActiveStart() + s.Cursor.Y)
	left := st.term.originLeft()
	for ; n > 0; n-- {
		prev := left
		for c := s.Cursor.X - 1; c > left; c-- {
			if page != nil && c < len(page.TabStops) && page.TabStops[c] {
				prev = c
				break
			}
		}
		s.Cursor.X = prev
	}
}

func (st *Stream) tabClear(mode int) {
	s := st.term.activeScreen()
	page := s.Pages.PageAt(s.Pages.ActiveStart() + s.Cursor.Y)
	if page == nil {
		return
	}
	switch mode {
	case 0:
		if s.Cursor.X < len(page.TabStops) {
			page.TabStops[s.Cursor.X] = false
		}
	case 3:
		for i := range page.TabStops {
			page.TabStops[i] = false
		}
	}
}

func (st *Stream) windowOp(c CSIDispatch) {
	switch p0(c.Params, 0, 0) {
	case 22:
		st.term.PushTitle()
	case 23:
		st.term.PopTitle()
	default:
		st.term.logger("unhandled XTWINOPS %v", c.Params)
	}
}

func (st *Stream) ansiMode(c CSIDispatch, set bool) {
	t := st.term
	for _, p := range c.Params {
		code := 0
		if len(p) > 0 {
			code = int(p[0])
		}
		var mode TerminalMode
		switch code {
		case 4:
			mode = ModeInsert
		case 20:
			mode = ModeLineFeedNewLine
		default:
			t.logger("unhandled ANSI mode %d", code)
			continue
		}
		if set {
			t.SetMode(mode)
		} else {
			t.UnsetMode(mode)
		}
	}
}

func (st *Stream) decPrivateMode(c CSIDispatch, set bool) {
	t := st.term
	for _, p := range c.Params {
		code := 0
		if len(p) > 0 {
			code = int(p[0])
		}
		var mode TerminalMode
		switch code {
		case 1:
			mode = ModeCursorKeys
		case 3:
			mode = ModeColumnMode
		case 6:
			mode = ModeOrigin
		case 7:
			mode = ModeLineWrap
		case 12:
			mode = ModeBlinkingCursor
		case 25:
			mode = ModeShowCursor
		case 47, 1047, 1049:
			mode = ModeSwapScreenAndSetRestoreCursor
		case 69:
			mode = ModeLeftRightMargin
		case 1000:
			mode = ModeReportMouseClicks
		case 1002:
			mode = ModeReportCellMouseMotion
		case 1003:
			mode = ModeReportAllMouseMotion
		case 1004:
			mode = ModeReportFocusInOut
		case 1005:
			mode = ModeUTF8Mouse
		case 1006:
			mode = ModeSGRMouse
		case 1007:
			mode = ModeAlternateScroll
		case 1042:
			mode = ModeUrgencyHints
		case 2004:
			mode = ModeBracketedPaste
		default:
			t.logger("unhandled DEC private mode %d", code)
			continue
		}
		if set {
			t.SetMode(mode)
		} else {
			t.UnsetMode(mode)
		}
	}
}

func (st *Stream) dsrPrivate(c CSIDispatch) {
	if p0(c.Params, 0, 0) == 6 {
		st.term.DeviceStatus(6)
	}
}

// kittyKeyboard implements the CSI {>,<,=,?} u family (kitty keyboard
// protocol), dispatching on the actual private-marker byte: '>' pushes a
// flag set, '<' pops, '=' sets the top entry with a mode, '?' reports the
// current top entry.
func (st *Stream) kittyKeyboard(c CSIDispatch) {
	t := st.term
	s := t.activeScreen()
	switch c.PrivateMarker {
	case '>':
		flags := p0(c.Params, 0, 0)
		s.KittyKeyboardFlags = append(s.KittyKeyboardFlags, flags)
	case '<':
		n := p0(c.Params, 0, 1)
		if n <= 0 {
			n = 1
		}
		if n > len(s.KittyKeyboardFlags) {
			n = len(s.KittyKeyboardFlags)
		}
		s.KittyKeyboardFlags = s.KittyKeyboardFlags[:len(s.KittyKeyboardFlags)-n]
	case '=':
		flags := p0(c.Params, 0, 0)
		mode := pDef(c.Params, 1, 1)
		top := 0
		if len(s.KittyKeyboardFlags) > 0 {
			top = s.KittyKeyboardFlags[len(s.KittyKeyboardFlags)-1]
		}
		switch mode {
		case 2:
			top |= flags
		case 3:
			top &^= flags
		default:
			top = flags
		}
		if len(s.KittyKeyboardFlags) == 0 {
			s.KittyKeyboardFlags = append(s.KittyKeyboardFlags, top)
		} else {
			s.KittyKeyboardFlags[len(s.KittyKeyboardFlags)-1] = top
		}
	case '?':
		top := 0
		if len(s.KittyKeyboardFlags) > 0 {
			top = s.KittyKeyboardFlags[len(s.KittyKeyboardFlags)-1]
		}
		t.writeResponseString("\x1b[?" + itoa(top) + "u")
	}
}

func (st *Stream) dcsUnhook(hook CSIDispatch, payload []byte) {
	t := st.term
	switch {
	case len(hook.Intermediates) == 0 && hook.Final == 'q':
		p1, p2, p3 := parseSixelParams(hook.Params)
		t.SixelReceived(SixelPayload{P1: p1, P2: p2, P3: p3, Data: payload})
	case len(hook.Intermediates) == 1 && hook.Intermediates[0] == '$' && hook.Final == 'q':
		t.logger("DECRQSS query: %s", payload)
	case len(hook.Intermediates) == 1 && hook.Intermediates[0] == '+' && hook.Final == 'q':
		t.logger("XTGETTCAP query: %s", payload)
	default:
		t.logger("unhandled DCS hook final=%q intermediates=%q", hook.Final, hook.Intermediates)
	}
}

func (st *Stream) apcEnd(a Action) {
	t := st.term
	switch a.OSCByte {
	case '_':
		if len(a.Payload) > 0 && a.Payload[0] == 'G' {
			st.kittyGraphics(a.Payload)
			return
		}
		t.ApplicationCommandReceived(a.Payload)
	case '^':
		t.PrivacyMessageReceived(a.Payload)
	case 'X':
		t.StartOfStringReceived(a.Payload)
	}
}

// kittyGraphics decodes a kitty graphics APC transmission and stores it in
// the active screen's ImageManager (spec.md §9 Open Question (b): pixel
// decode is external, bookkeeping is in-scope).
func (st *Stream) kittyGraphics(payload []byte) {
	t := st.term
	if !t.kittyEnabled {
		return
	}
	cmd, err := ParseKittyGraphics(payload)
	if err != nil {
		t.logger("kitty graphics parse error: %v", err)
		return
	}
	screen := t.activeScreen()
	switch cmd.Action {
	case KittyActionTransmit, KittyActionTransmitDisplay:
		data, err := cmd.DecompressedPayload()
		if err != nil {
			t.logger("kitty payload decompress error: %v", err)
			return
		}
		w, h, err := t.kittyDecoder.Decode(data, cmd.Format)
		if err != nil {
			t.logger("kitty image decode error: %v", err)
			return
		}
		width, height := uint32(w), uint32(h)
		id := cmd.ImageID
		if id == 0 {
			id = newSyntheticImageID()
		}
		screen.Images.StoreWithID(id, width, height, data)
		if cmd.Action == KittyActionTransmitDisplay {
			st.placeKittyImage(screen, cmd, id)
		}
	case KittyActionDisplay:
		st.placeKittyImage(screen, cmd, cmd.ImageID)
	case KittyActionDelete:
		st.kittyDelete(screen, cmd)
	}
}

func (st *Stream) placeKittyImage(screen *Screen, cmd *KittyCommand, imageID uint32) {
	cols, rows := int(cmd.Cols), int(cmd.Rows)
	if cols == 0 {
		cols = 1
	}
	if rows == 0 {
		rows = 1
	}
	screen.Images.Place(&ImagePlacement{
		ImageID: imageID,
		Row:     screen.Cursor.Y,
		Col:     screen.Cursor.X,
		Cols:    cols,
		Rows:    rows,
		SrcX:    cmd.SrcX,
		SrcY:    cmd.SrcY,
		SrcW:    cmd.SrcW,
		SrcH:    cmd.SrcH,
		ZIndex:  cmd.ZIndex,
	})
}

func (st *Stream) kittyDelete(screen *Screen, cmd *KittyCommand) {
	switch cmd.Delete {
	case KittyDeleteAll:
		for _, p := range screen.Images.Placements() {
			screen.Images.RemovePlacement(p.ID)
		}
	case KittyDeleteAllWithData:
		screen.Images.Clear()
	case KittyDeleteByID:
		screen.Images.RemovePlacementsForImage(cmd.ImageID)
	case KittyDeleteByIDWithData:
		screen.Images.DeleteImage(cmd.ImageID)
	case KittyDeleteAtCursor, KittyDeleteAtCursorData:
		screen.Images.DeletePlacementsByPosition(screen.Cursor.Y, screen.Cursor.X)
	case KittyDeleteByRow, KittyDeleteByRowData:
		screen.Images.DeletePlacementsInRow(screen.Cursor.Y)
	case KittyDeleteByCol, KittyDeleteByColData:
		screen.Images.DeletePlacementsInColumn(screen.Cursor.X)
	case KittyDeleteByZIndex, KittyDeleteByZIndexData:
		screen.Images.DeletePlacementsByZIndex(cmd.ZIndex)
	}
}

// --- OSC command dispatch ---

// dispatchOSC applies a decoded OSC Command (spec.md §4.2, §4.3 "osc_* →
// call OSC sub-parser on the terminator; pass the resulting Command to
// handler").
func (t *Terminal) dispatchOSC(cmd Command) {
	switch cmd.Kind {
	case CmdSetTitle:
		t.SetTitle(cmd.Title)
	case CmdSetPalette:
		t.applyPaletteEntries(cmd.Palette, false)
	case CmdSetSpecialColor:
		t.applyPaletteEntries(cmd.SpecialColor, false)
	case CmdResetPalette:
		if len(cmd.ResetIndices) == 0 {
			t.ResetColor(-1)
			return
		}
		for _, idx := range cmd.ResetIndices {
			t.ResetColor(idx)
		}
	case CmdWorkingDirectory:
		t.SetWorkingDirectory(cmd.WorkingDirectory)
	case CmdHyperlink:
		if cmd.Hyperlink.URI == "" {
			t.SetHyperlink(nil)
		} else {
			t.SetHyperlink(&Hyperlink{ID: cmd.Hyperlink.ID, URI: cmd.Hyperlink.URI})
		}
	case CmdNotification:
		payload := cmd.Notification
		t.DesktopNotification(&payload)
	case CmdDynamicColor:
		t.applyDynamicColors(cmd.DynamicColor)
	case CmdResetDynamicColor:
		for _, w := range cmd.ResetDynamicWhich {
			t.ResetDynamicColor(w)
		}
	case CmdClipboard:
		if cmd.Clipboard.Query {
			t.ClipboardLoad(cmd.Clipboard.Which)
		} else {
			t.ClipboardStore(cmd.Clipboard.Which, cmd.Clipboard.Data)
		}
	case CmdClipboardV2:
		t.dispatchClipboardV2(cmd.ClipboardV2)
	case CmdSemanticPrompt:
		t.SemanticPromptMark(cmd.SemanticPrompt)
	default:
		t.logger("unhandled OSC code %q", cmd.RawCode)
	}
}

// applyPaletteEntries applies OSC 4/5 palette assignments and answers any
// "?" queries inline with the matching `OSC 4 ; idx ; rgb:RRRR/GGGG/BBBB ST`
// reply (spec.md §8 "OSC 4 palette set and query").
func (t *Terminal) applyPaletteEntries(entries []PaletteEntry, special bool) {
	for _, e := range entries {
		if e.Query {
			c := t.palette.Current[e.Index&0xff]
			t.writeResponseString(formatPaletteQuery(4, e.Index, c))
			continue
		}
		t.SetColor(e.Index, e.Spec)
	}
}

func formatPaletteQuery(code, index int, c color.RGBA) string {
	prefix := "\x1b]" + itoa(code) + ";"
	if index >= 0 {
		prefix += itoa(index) + ";"
	}
	return prefix + "rgb:" + hex4(c.R) + "/" + hex4(c.G) + "/" + hex4(c.B) + "\x1b\\"
}

func (t *Terminal) applyDynamicColors(entries []DynamicColorEntry) {
	for _, e := range entries {
		if e.Query {
			var c color.RGBA
			switch e.Which {
			case NamedColorForeground:
				c = t.palette.Foreground
			case NamedColorBackground:
				c = t.palette.Background
			case NamedColorCursor:
				c = t.palette.Cursor
			}
			code := dynamicQueryCode(e.Which)
			t.writeResponseString(formatPaletteQuery(code, -1, c))
			continue
		}
		t.SetDynamicColor(e.Which, e.Spec)
	}
}

func dynamicQueryCode(which int) int {
	switch which {
	case NamedColorForeground:
		return 10
	case NamedColorBackground:
		return 11
	case NamedColorCursor:
		return 12
	default:
		return which
	}
}

func (t *Terminal) dispatchClipboardV2(cmd ClipboardV2Command) {
	switch cmd.Op {
	case "write":
		which := byte('c')
		if w, ok := cmd.Meta["target"]; ok && len(w) > 0 {
			which = w[0]
		}
		t.ClipboardStore(which, cmd.Payload)
	case "read":
		which := byte('c')
		if w, ok := cmd.Meta["target"]; ok && len(w) > 0 {
			which = w[0]
		}
		t.ClipboardLoad(which)
	default:
		t.logger("unhandled clipboard v2 op %q", cmd.Op)
	}
}

func itoa(n int) string {
	if n < 0 {
		return "-" + itoa(-n)
	}
	if n < 10 {
		return string(rune('0' + n))
	}
	return itoa(n/10) + string(rune('0'+n%10))
}

func hex4(v uint8) string {
	full := uint16(v)<<8 | uint16(v)
	const digits = "0123456789abcdef"
	out := make([]byte, 4)
	for i := 3; i >= 0; i-- {
		out[i] = digits[full&0xf]
		full >>= 4
	}
	return string(out)
}

