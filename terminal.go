package term

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"sync"

	osc52 "github.com/aymanbagabas/go-osc52/v2"
)

// TerminalMode is a unified bitmask over ANSI (SM/RM) and DEC-private
// (?SM/?RM) modes (spec.md §4.4 "Modes": "ANSI and DEC-private modes share
// one bitset; DEC-private codes are offset to avoid collision").
type TerminalMode uint64

const (
	ModeLineFeedNewLine TerminalMode = 1 << iota // LNM (ANSI 20)

	ModeCursorKeys                     // DECCKM ?1
	ModeColumnMode                     // DECCOLM ?3
	ModeOrigin                         // DECOM ?6
	ModeLineWrap                       // DECAWM ?7
	ModeBlinkingCursor                 // ?12
	ModeShowCursor                     // DECTCEM ?25
	ModeReportMouseClicks              // ?1000
	ModeReportCellMouseMotion          // ?1002
	ModeReportAllMouseMotion           // ?1003
	ModeReportFocusInOut               // ?1004
	ModeUTF8Mouse                      // ?1005
	ModeSGRMouse                       // ?1006
	ModeAlternateScroll                // ?1007
	ModeUrgencyHints                   // ?1042
	ModeSwapScreenAndSetRestoreCursor  // ?1049
	ModeBracketedPaste                 // ?2004
	ModeKeypadApplication              // DECKPAM
	ModeInsert                         // IRM (ANSI 4)
	ModeLeftRightMargin                // DECLRMM ?69
)

const (
	DefaultRows = 24
	DefaultCols = 80
)

// Position is a (row, col) pair in the active screen's coordinate space,
// 0-based. Used by the legacy linear Search/SearchScrollback convenience
// methods and by selection.
type Position struct{ Row, Col int }

func (p Position) Before(o Position) bool {
	if p.Row != o.Row {
		return p.Row < o.Row
	}
	return p.Col < o.Col
}

// scrollRegion is the DECSTBM/DECSLRM rectangle: cursor motion, scrolling,
// and erase all honor it when origin mode or DECLRMM is active (spec.md
// §4.4 "Scroll region").
type scrollRegion struct {
	top, bottom int // rows, exclusive bottom
	left, right int // cols, exclusive right
}

// Terminal is the VT-compatible executor: it owns a primary and alternate
// Screen, global mode flags, the scrolling region, and the dynamic color
// palette, and exposes the operations spec.md §4.4 names (spec.md §3
// "Terminal (executor)"). All operations are thread-safe via an internal
// RWMutex, following the teacher's locking discipline.
type Terminal struct {
	mu sync.RWMutex

	rows, cols int

	primary   *Screen
	alternate *Screen
	altActive bool

	region scrollRegion
	modes  TerminalMode

	palette *DynamicPalette

	title      string
	titleStack []string

	pwd string

	promptMarks            []PromptMark
	semanticPromptHandler  SemanticPromptHandler

	lastPrintedRune rune
	haveLastPrinted bool

	middleware *Middleware

	responseProvider     ResponseProvider
	bellProvider         BellProvider
	titleProvider        TitleProvider
	apcProvider          APCProvider
	pmProvider           PMProvider
	sosProvider          SOSProvider
	clipboardProvider    ClipboardProvider
	recordingProvider    RecordingProvider
	notificationProvider NotificationProvider
	sixelProvider        SixelProvider
	kittyDecoder         KittyImageDecoder
	logger               DebugLogger

	autoResize    bool
	sixelEnabled  bool
	kittyEnabled  bool
	maxScrollback int

	stream *Stream
}

// Option configures a Terminal during construction.
type Option func(*Terminal)

func WithSize(rows, cols int) Option {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return func(t *Terminal) { t.rows, t.cols = rows, cols }
}

func WithMaxScrollback(bytes int) Option {
	return func(t *Terminal) { t.maxScrollback = bytes }
}

func WithResponse(p ResponseProvider) Option { return func(t *Terminal) { t.responseProvider = p } }
func WithBell(p BellProvider) Option         { return func(t *Terminal) { t.bellProvider = p } }
func WithTitle(p TitleProvider) Option       { return func(t *Terminal) { t.titleProvider = p } }
func WithAPC(p APCProvider) Option           { return func(t *Terminal) { t.apcProvider = p } }
func WithPM(p PMProvider) Option             { return func(t *Terminal) { t.pmProvider = p } }
func WithSOS(p SOSProvider) Option           { return func(t *Terminal) { t.sosProvider = p } }
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Terminal) { t.clipboardProvider = p }
}
func WithNotification(p NotificationProvider) Option {
	return func(t *Terminal) { t.notificationProvider = p }
}
func WithSixelProvider(p SixelProvider) Option { return func(t *Terminal) { t.sixelProvider = p } }
func WithKittyDecoder(p KittyImageDecoder) Option {
	return func(t *Terminal) { t.kittyDecoder = p }
}
func WithLogger(l DebugLogger) Option { return func(t *Terminal) { t.logger = l } }
func WithRecording(p RecordingProvider) Option {
	return func(t *Terminal) { t.recordingProvider = p }
}
func WithSemanticPromptHandler(h SemanticPromptHandler) Option {
	return func(t *Terminal) { t.semanticPromptHandler = h }
}

func WithMiddleware(mw *Middleware) Option {
	return func(t *Terminal) {
		if t.middleware == nil {
			t.middleware = &Middleware{}
		}
		t.middleware.Merge(mw)
	}
}

func WithAutoResize() Option { return func(t *Terminal) { t.autoResize = true } }

func WithSixel(enabled bool) Option { return func(t *Terminal) { t.sixelEnabled = enabled } }
func WithKitty(enabled bool) Option { return func(t *Terminal) { t.kittyEnabled = enabled } }

func (t *Terminal) SixelEnabled() bool { return t.sixelEnabled }
func (t *Terminal) KittyEnabled() bool { return t.kittyEnabled }

// defaultBase16 is the standard ANSI 16-color set used to seed the palette
// (spec.md §4.8 "base-16 seed").
var defaultBase16 = [16]color.RGBA{
	{0, 0, 0, 255}, {205, 0, 0, 255}, {0, 205, 0, 255}, {205, 205, 0, 255},
	{0, 0, 238, 255}, {205, 0, 205, 255}, {0, 205, 205, 255}, {229, 229, 229, 255},
	{127, 127, 127, 255}, {255, 0, 0, 255}, {0, 255, 0, 255}, {255, 255, 0, 255},
	{92, 92, 255, 255}, {255, 0, 255, 255}, {0, 255, 255, 255}, {255, 255, 255, 255},
}

// New creates a terminal with the given options, defaulting to 24x80 with
// line wrap and cursor visible (spec.md §5).
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:                 DefaultRows,
		cols:                 DefaultCols,
		bellProvider:         NoopBell{},
		titleProvider:        NoopTitle{},
		apcProvider:          NoopAPC{},
		pmProvider:           NoopPM{},
		sosProvider:          NoopSOS{},
		clipboardProvider:    NoopClipboard{},
		recordingProvider:    NoopRecording{},
		notificationProvider: NoopNotification{},
		sixelProvider:        NoopSixel{},
		kittyDecoder:         NoopKittyImageDecoder{},
		logger:               noopLogger,
		sixelEnabled:         true,
		kittyEnabled:         true,
		semanticPromptHandler: NoopSemanticPromptHandler{},
	}
	for _, opt := range opts {
		opt(t)
	}

	t.palette = NewDynamicPalette(defaultBase16, DefaultForeground, DefaultBackground, DefaultCursorColor)
	t.primary = NewScreen(t.cols, t.rows, t.maxScrollback)
	t.alternate = NewScreen(t.cols, t.rows, 0)
	t.region = scrollRegion{top: 0, bottom: t.rows, left: 0, right: t.cols}
	t.modes = ModeLineWrap | ModeShowCursor
	t.stream = NewStream(t)
	return t
}

func (t *Terminal) activeScreen() *Screen {
	if t.altActive {
		return t.alternate
	}
	return t.primary
}

func (t *Terminal) Rows() int { t.mu.RLock(); defer t.mu.RUnlock(); return t.rows }
func (t *Terminal) Cols() int { t.mu.RLock(); defer t.mu.RUnlock(); return t.cols }

// Cell returns a copy of the cell at (row, col) in the active screen's
// active area, or nil if out of bounds.
func (t *Terminal) Cell(row, col int) *Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if row < 0 || row >= t.rows || col < 0 || col >= t.cols {
		return nil
	}
	screen := t.activeScreen()
	abs := screen.Pages.ActiveStart() + row
	r := screen.Pages.RowAt(abs)
	if r == nil || col >= len(r.Cells) {
		return nil
	}
	cp := r.Cells[col]
	return &cp
}

func (t *Terminal) CursorPos() (row, col int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.activeScreen()
	return s.Cursor.Y, s.Cursor.X
}

func (t *Terminal) CursorVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modes&ModeShowCursor != 0
}

func (t *Terminal) CursorStyleValue() CursorStyle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeScreen().Cursor.CursorStyle
}

func (t *Terminal) Title() string { t.mu.RLock(); defer t.mu.RUnlock(); return t.title }

func (t *Terminal) HasMode(mode TerminalMode) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modes&mode != 0
}

func (t *Terminal) IsAlternateScreen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.altActive
}

func (t *Terminal) ScrollRegion() (top, bottom int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.region.top, t.region.bottom
}

func (t *Terminal) WorkingDirectory() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pwd
}

func (t *Terminal) Palette() *DynamicPalette {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.palette
}

// Resize changes both screens' dimensions (spec.md §4.5 "Resize").
func (t *Terminal) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows, t.cols = rows, cols
	t.primary.Pages.Resize(cols, rows)
	t.alternate.Pages.Resize(cols, rows)
	t.clampCursor(t.primary)
	t.clampCursor(t.alternate)
	t.region = scrollRegion{top: 0, bottom: rows, left: 0, right: cols}
}

func (t *Terminal) clampCursor(s *Screen) {
	if s.Cursor.Y >= t.rows {
		s.Cursor.Y = t.rows - 1
	}
	if s.Cursor.Y < 0 {
		s.Cursor.Y = 0
	}
	if s.Cursor.X >= t.cols {
		s.Cursor.X = t.cols - 1
	}
	if s.Cursor.X < 0 {
		s.Cursor.X = 0
	}
}

// Write feeds raw bytes through the parser/Stream pipeline (spec.md §4.3).
// Implements io.Writer.
func (t *Terminal) Write(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordingProvider.Record(data)
	t.stream.Feed(data)
	return len(data), nil
}

func (t *Terminal) WriteString(s string) (int, error) { return t.Write([]byte(s)) }

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// originTop/originLeft/originBottom/originRight apply origin mode (DECOM) to incoming
// coordinates (spec.md §4.4 "cursor positioning is relative to the scroll
// region when origin mode is set").
func (t *Terminal) originTop() int {
	if t.modes&ModeOrigin != 0 {
		return t.region.top
	}
	return 0
}
func (t *Terminal) originLeft() int {
	if t.modes&ModeOrigin != 0 {
		return t.region.left
	}
	return 0
}
func (t *Terminal) originBottom() int {
	if t.modes&ModeOrigin != 0 {
		return t.region.bottom
	}
	return t.rows
}
func (t *Terminal) originRight() int {
	if t.modes&ModeOrigin != 0 {
		return t.region.right
	}
	return t.cols
}

// --- Print ---

// Print writes one grapheme cluster (base rune plus any combining runes) at
// the cursor, honoring pending-wrap / LCF, insert mode, protected cells, and
// wide-character straddle (spec.md §4.4 "Print algorithm", steps 1-6).
func (t *Terminal) Print(runes []rune, width int) {
	if len(runes) == 0 {
		return
	}
	screen := t.activeScreen()
	if screen.Cursor.PendingWrap {
		if row := screen.Pages.RowAt(screen.Pages.ActiveStart() + screen.Cursor.Y); row != nil {
			row.Wrap = true
		}
		t.lineFeedInternal(screen)
		screen.Cursor.X = t.originLeft()
		screen.Cursor.PendingWrap = false
	}

	right := t.originRight()
	if width == 2 && screen.Cursor.X+1 >= right {
		// Can't fit a wide glyph in the last column: pad with a spacer and
		// wrap first (spec.md §4.4 "wide-character straddle").
		t.putCell(screen, screen.Cursor.Y, screen.Cursor.X, ' ', WideSpacerTail, nil)
		t.advanceWrap(screen)
	}

	apply := func(runes []rune, width int) {
		t.lastPrintedRune = runes[0]
		t.haveLastPrinted = true

		style := screen.Cursor.Style
		hyperlink := screen.Cursor.Hyperlink
		extra := runes[1:]

		if t.modes&ModeInsert != 0 {
			t.insertCells(screen, width)
		}

		wide := WideNarrow
		if width == 2 {
			wide = WideWide
		}
		t.putCellFull(screen, screen.Cursor.Y, screen.Cursor.X, runes[0], wide, style, hyperlink, extra, screen.Cursor.Protected)
		if width == 2 {
			t.putCell(screen, screen.Cursor.Y, screen.Cursor.X+1, 0, WideSpacerTail, nil)
		}

		if screen.Cursor.X+width >= right {
			screen.Cursor.X = right - 1
			screen.Cursor.PendingWrap = true
		} else {
			screen.Cursor.X += width
		}
	}
	if t.middleware != nil && t.middleware.Print != nil {
		t.middleware.Print(runes, width, apply)
		return
	}
	apply(runes, width)
}

func (t *Terminal) insertCells(s *Screen, n int) {
	row := s.Pages.RowAt(s.Pages.ActiveStart() + s.Cursor.Y)
	if row == nil {
		return
	}
	right := t.originRight()
	page := s.Pages.PageAt(s.Pages.ActiveStart() + s.Cursor.Y)
	for col := right - 1; col >= s.Cursor.X+n && col-n >= 0; col-- {
		page.ReleaseCell(&row.Cells[col])
		row.Cells[col] = row.Cells[col-n]
		row.Cells[col-n] = Cell{}
	}
}

func (t *Terminal) putCell(s *Screen, row, col int, ch rune, wide WideState, hyperlink *Hyperlink) {
	t.putCellFull(s, row, col, ch, wide, s.Cursor.Style, hyperlink, nil, false)
}

func (t *Terminal) putCellFull(s *Screen, row, col int, ch rune, wide WideState, style Style, hyperlink *Hyperlink, extra []rune, protected bool) {
	if col < 0 || col >= t.cols {
		return
	}
	abs := s.Pages.ActiveStart() + row
	r := s.Pages.RowAt(abs)
	page := s.Pages.PageAt(abs)
	if r == nil || page == nil || col >= len(r.Cells) {
		return
	}
	page.SetCell(&r.Cells[col], ch, wide, style, hyperlink, extra, protected)
	if len(extra) > 0 {
		r.HasGrapheme = true
	}
	if hyperlink != nil {
		r.HasHyperlink = true
	}
}

func (t *Terminal) advanceWrap(s *Screen) {
	row := s.Pages.RowAt(s.Pages.ActiveStart() + s.Cursor.Y)
	if row != nil {
		row.Wrap = true
	}
	t.lineFeedInternal(s)
	s.Cursor.X = t.originLeft()
}

// --- Line/cursor motion ---

func (t *Terminal) lineFeedInternal(s *Screen) {
	bottom := t.originBottom()
	if s.Cursor.Y+1 >= bottom {
		if t.autoResize && bottom == t.rows && t.region.top == 0 && t.region.bottom == t.rows {
			t.rows++
			t.region.bottom = t.rows
			for _, sc := range []*Screen{t.primary, t.alternate} {
				sc.Pages.rows++
				sc.Pages.AppendRow()
			}
			s.Cursor.Y++
			return
		}
		t.scrollUp(s, 1)
	} else {
		s.Cursor.Y++
	}
}

func (t *Terminal) LineFeed() {
	apply := func() {
		s := t.activeScreen()
		t.lineFeedInternal(s)
		if t.modes&ModeLineFeedNewLine != 0 {
			s.Cursor.X = t.originLeft()
		}
		s.Cursor.PendingWrap = false
	}
	if t.middleware != nil && t.middleware.LineFeed != nil {
		t.middleware.LineFeed(apply)
		return
	}
	apply()
}

func (t *Terminal) CarriageReturn() {
	s := t.activeScreen()
	s.Cursor.X = t.originLeft()
	s.Cursor.PendingWrap = false
}

func (t *Terminal) Backspace() {
	s := t.activeScreen()
	if s.Cursor.X > t.originLeft() {
		s.Cursor.X--
	}
	s.Cursor.PendingWrap = false
}

func (t *Terminal) Bell() {
	apply := func() { t.bellProvider.Ring() }
	if t.middleware != nil && t.middleware.Bell != nil {
		t.middleware.Bell(apply)
		return
	}
	apply()
}

func (t *Terminal) Tab(n int) {
	if n <= 0 {
		n = 1
	}
	s := t.activeScreen()
	page := s.Pages.PageAt(s.Pages.ActiveStart() + s.Cursor.Y)
	right := t.originRight()
	for ; n > 0; n-- {
		next := right - 1
		for c := s.Cursor.X + 1; c < right; c++ {
			if page != nil && c < len(page.TabStops) && page.TabStops[c] {
				next = c
				break
			}
		}
		s.Cursor.X = next
	}
}

func (t *Terminal) Goto(row, col int) {
	s := t.activeScreen()
	top, left := t.originTop(), t.originLeft()
	bottom, right := t.originBottom(), t.originRight()
	s.Cursor.Y = clamp(top+row, top, bottom-1)
	s.Cursor.X = clamp(left+col, left, right-1)
	s.Cursor.PendingWrap = false
}

func (t *Terminal) GotoLine(row int) {
	s := t.activeScreen()
	top, bottom := t.originTop(), t.originBottom()
	s.Cursor.Y = clamp(top+row, top, bottom-1)
	s.Cursor.PendingWrap = false
}

func (t *Terminal) GotoCol(col int) {
	s := t.activeScreen()
	left, right := t.originLeft(), t.originRight()
	s.Cursor.X = clamp(left+col, left, right-1)
	s.Cursor.PendingWrap = false
}

func (t *Terminal) MoveUp(n int)    { t.moveRow(-n) }
func (t *Terminal) MoveDown(n int)  { t.moveRow(n) }
func (t *Terminal) MoveForward(n int)  { t.moveCol(n) }
func (t *Terminal) MoveBackward(n int) { t.moveCol(-n) }

func (t *Terminal) moveRow(delta int) {
	s := t.activeScreen()
	top, bottom := t.originTop(), t.originBottom()
	s.Cursor.Y = clamp(s.Cursor.Y+delta, top, bottom-1)
	s.Cursor.PendingWrap = false
}

func (t *Terminal) moveCol(delta int) {
	s := t.activeScreen()
	left, right := t.originLeft(), t.originRight()
	s.Cursor.X = clamp(s.Cursor.X+delta, left, right-1)
	s.Cursor.PendingWrap = false
}

func (t *Terminal) MoveUpCr(n int) {
	t.moveRow(-n)
	t.activeScreen().Cursor.X = t.originLeft()
}

func (t *Terminal) MoveDownCr(n int) {
	t.moveRow(n)
	t.activeScreen().Cursor.X = t.originLeft()
}

func (t *Terminal) ReverseIndex() {
	s := t.activeScreen()
	top := t.originTop()
	if s.Cursor.Y-1 < top {
		t.scrollDown(s, 1)
	} else {
		s.Cursor.Y--
	}
}

// --- Scrolling ---

func (t *Terminal) ScrollUp(n int) {
	apply := func(n int) { t.scrollUp(t.activeScreen(), n) }
	if t.middleware != nil && t.middleware.ScrollUp != nil {
		t.middleware.ScrollUp(n, apply)
		return
	}
	apply(n)
}

func (t *Terminal) ScrollDown(n int) {
	apply := func(n int) { t.scrollDown(t.activeScreen(), n) }
	if t.middleware != nil && t.middleware.ScrollDown != nil {
		t.middleware.ScrollDown(n, apply)
		return
	}
	apply(n)
}

func (t *Terminal) scrollUp(s *Screen, n int) {
	if n <= 0 {
		return
	}
	top, bottom := t.originTop(), t.originBottom()
	left, right := t.originLeft(), t.originRight()
	fullWidth := left == 0 && right == t.cols
	for i := 0; i < n; i++ {
		if fullWidth && top == 0 && bottom == t.rows && s == t.activeScreen() && s.ScrollbackLimit > 0 {
			s.Pages.AppendRow()
			continue
		}
		t.shiftRows(s, top, bottom, left, right, -1)
	}
}

func (t *Terminal) scrollDown(s *Screen, n int) {
	if n <= 0 {
		return
	}
	top, bottom := t.originTop(), t.originBottom()
	left, right := t.originLeft(), t.originRight()
	for i := 0; i < n; i++ {
		t.shiftRows(s, top, bottom, left, right, 1)
	}
}

// shiftRows moves rows within [top,bottom) x [left,right) by `dir` (-1 up,
// +1 down), blanking the row vacated at the trailing edge (spec.md §4.4
// "Scroll region" rectangular DECSLRM semantics).
func (t *Terminal) shiftRows(s *Screen, top, bottom, left, right, dir int) {
	start := s.Pages.ActiveStart()
	if dir < 0 {
		for row := top; row < bottom-1; row++ {
			t.copyRowSpan(s, start+row+1, start+row, left, right)
		}
		t.blankRowSpan(s, start+bottom-1, left, right)
	} else {
		for row := bottom - 1; row > top; row-- {
			t.copyRowSpan(s, start+row-1, start+row, left, right)
		}
		t.blankRowSpan(s, start+top, left, right)
	}
}

func (t *Terminal) copyRowSpan(s *Screen, srcAbs, dstAbs, left, right int) {
	src := s.Pages.RowAt(srcAbs)
	dst := s.Pages.RowAt(dstAbs)
	dstPage := s.Pages.PageAt(dstAbs)
	if src == nil || dst == nil || dstPage == nil {
		return
	}
	for c := left; c < right && c < len(src.Cells) && c < len(dst.Cells); c++ {
		dstPage.ReleaseCell(&dst.Cells[c])
		dst.Cells[c] = src.Cells[c]
	}
}

func (t *Terminal) blankRowSpan(s *Screen, abs, left, right int) {
	row := s.Pages.RowAt(abs)
	page := s.Pages.PageAt(abs)
	if row == nil || page == nil {
		return
	}
	for c := left; c < right && c < len(row.Cells); c++ {
		page.ReleaseCell(&row.Cells[c])
		row.Cells[c] = Cell{}
	}
}

// --- Erase / Insert / Delete ---

type LineClearMode int

const (
	ClearLineRight LineClearMode = iota
	ClearLineLeft
	ClearLineAll
)

type ClearMode int

const (
	ClearScreenBelow ClearMode = iota
	ClearScreenAbove
	ClearScreenAll
	ClearScreenSaved
)

func (t *Terminal) ClearLine(mode LineClearMode) {
	apply := func(mode LineClearMode) {
		s := t.activeScreen()
		left, right := t.originLeft(), t.originRight()
		switch mode {
		case ClearLineRight:
			t.eraseSpan(s, s.Cursor.Y, s.Cursor.X, right)
		case ClearLineLeft:
			t.eraseSpan(s, s.Cursor.Y, left, s.Cursor.X+1)
		case ClearLineAll:
			t.eraseSpan(s, s.Cursor.Y, left, right)
		}
	}
	if t.middleware != nil && t.middleware.ClearLine != nil {
		t.middleware.ClearLine(mode, apply)
		return
	}
	apply(mode)
}

func (t *Terminal) ClearScreen(mode ClearMode) {
	apply := func(mode ClearMode) {
		s := t.activeScreen()
		top, bottom := t.originTop(), t.originBottom()
		left, right := t.originLeft(), t.originRight()
		switch mode {
		case ClearScreenBelow:
			t.eraseSpan(s, s.Cursor.Y, s.Cursor.X, right)
			for r := s.Cursor.Y + 1; r < bottom; r++ {
				t.eraseSpan(s, r, left, right)
			}
		case ClearScreenAbove:
			t.eraseSpan(s, s.Cursor.Y, left, s.Cursor.X+1)
			for r := top; r < s.Cursor.Y; r++ {
				t.eraseSpan(s, r, left, right)
			}
		case ClearScreenAll, ClearScreenSaved:
			for r := top; r < bottom; r++ {
				t.eraseSpan(s, r, left, right)
			}
		}
	}
	if t.middleware != nil && t.middleware.ClearScreen != nil {
		t.middleware.ClearScreen(mode, apply)
		return
	}
	apply(mode)
}

// eraseSpan blanks [colStart,colEnd) on row, skipping DECSCA-protected cells
// (spec.md §4.4 "Erase honors protected cells").
func (t *Terminal) eraseSpan(s *Screen, row, colStart, colEnd int) {
	abs := s.Pages.ActiveStart() + row
	r := s.Pages.RowAt(abs)
	page := s.Pages.PageAt(abs)
	if r == nil || page == nil {
		return
	}
	for c := colStart; c < colEnd && c < len(r.Cells); c++ {
		if r.Cells[c].HasFlag(CellFlagProtected) {
			continue
		}
		page.ReleaseCell(&r.Cells[c])
		r.Cells[c] = Cell{}
	}
}

func (t *Terminal) InsertBlank(n int) {
	s := t.activeScreen()
	t.insertCells(s, n)
}

func (t *Terminal) InsertBlankLines(n int) {
	s := t.activeScreen()
	top := s.Cursor.Y
	region := t.region
	region.top = top
	saved := t.region
	t.region = region
	t.scrollDown(s, n)
	t.region = saved
}

func (t *Terminal) DeleteLines(n int) {
	s := t.activeScreen()
	top := s.Cursor.Y
	region := t.region
	region.top = top
	saved := t.region
	t.region = region
	t.scrollUp(s, n)
	t.region = saved
}

func (t *Terminal) DeleteChars(n int) {
	s := t.activeScreen()
	row := s.Pages.RowAt(s.Pages.ActiveStart() + s.Cursor.Y)
	page := s.Pages.PageAt(s.Pages.ActiveStart() + s.Cursor.Y)
	if row == nil || page == nil {
		return
	}
	right := t.originRight()
	for c := s.Cursor.X; c < right; c++ {
		page.ReleaseCell(&row.Cells[c])
		if c+n < right && c+n < len(row.Cells) {
			row.Cells[c] = row.Cells[c+n]
		} else {
			row.Cells[c] = Cell{}
		}
	}
}

func (t *Terminal) EraseChars(n int) {
	s := t.activeScreen()
	right := t.originRight()
	end := s.Cursor.X + n
	if end > right {
		end = right
	}
	t.eraseSpan(s, s.Cursor.Y, s.Cursor.X, end)
}

// --- Scroll region ---

func (t *Terminal) SetScrollingRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom <= top || bottom > t.rows {
		bottom = t.rows
	}
	t.region.top, t.region.bottom = top, bottom
	t.activeScreen().Cursor.Y = top
	t.activeScreen().Cursor.X = t.region.left
}

func (t *Terminal) SetLeftRightMargin(left, right int) {
	if t.modes&ModeLeftRightMargin == 0 {
		return
	}
	if left < 0 {
		left = 0
	}
	if right <= left || right > t.cols {
		right = t.cols
	}
	t.region.left, t.region.right = left, right
	t.activeScreen().Cursor.Y = t.region.top
	t.activeScreen().Cursor.X = left
}

// --- Modes ---

func (t *Terminal) SetMode(mode TerminalMode) {
	apply := func(mode TerminalMode) {
		t.modes |= mode
		if mode&ModeSwapScreenAndSetRestoreCursor != 0 {
			t.enterAltScreen()
		}
		if mode&ModeOrigin != 0 {
			t.activeScreen().Cursor.Y = t.region.top
			t.activeScreen().Cursor.X = t.region.left
		}
	}
	if t.middleware != nil && t.middleware.SetMode != nil {
		t.middleware.SetMode(mode, apply)
		return
	}
	apply(mode)
}

func (t *Terminal) UnsetMode(mode TerminalMode) {
	apply := func(mode TerminalMode) {
		t.modes &^= mode
		if mode&ModeSwapScreenAndSetRestoreCursor != 0 {
			t.exitAltScreen()
		}
	}
	if t.middleware != nil && t.middleware.UnsetMode != nil {
		t.middleware.UnsetMode(mode, apply)
		return
	}
	apply(mode)
}

func (t *Terminal) enterAltScreen() {
	if t.altActive {
		return
	}
	t.primary.PushCursor()
	t.altActive = true
	t.ClearScreen(ClearScreenAll)
}

func (t *Terminal) exitAltScreen() {
	if !t.altActive {
		return
	}
	t.altActive = false
	t.primary.PopCursor()
}

// --- SGR ---

func (t *Terminal) SetTerminalCharAttribute(attrs []SGRAttribute) {
	apply := func(attrs []SGRAttribute) {
		s := t.activeScreen()
		style := s.Cursor.Style
		for _, a := range attrs {
			applySGR(&style, a, t.palette)
		}
		s.Cursor.Style = style
	}
	if t.middleware != nil && t.middleware.SetTerminalCharAttribute != nil {
		t.middleware.SetTerminalCharAttribute(attrs, apply)
		return
	}
	apply(attrs)
}

// --- Cursor save/restore ---

func (t *Terminal) SaveCursorPosition() {
	apply := func() {
		s := t.activeScreen()
		s.SavedStack = append(s.SavedStack, SavedCursor{
			Cursor:       s.Cursor,
			OriginMode:   t.modes&ModeOrigin != 0,
			Charsets:     s.Charsets,
			CharsetIndex: s.CharsetIndex,
		})
	}
	if t.middleware != nil && t.middleware.SaveCursorPosition != nil {
		t.middleware.SaveCursorPosition(apply)
		return
	}
	apply()
}

func (t *Terminal) RestoreCursorPosition() {
	apply := func() {
		s := t.activeScreen()
		if n := len(s.SavedStack); n > 0 {
			saved := s.SavedStack[n-1]
			s.SavedStack = s.SavedStack[:n-1]
			s.Cursor = saved.Cursor
			s.Charsets = saved.Charsets
			s.CharsetIndex = saved.CharsetIndex
			if saved.OriginMode {
				t.modes |= ModeOrigin
			} else {
				t.modes &^= ModeOrigin
			}
		}
	}
	if t.middleware != nil && t.middleware.RestoreCursorPosition != nil {
		t.middleware.RestoreCursorPosition(apply)
		return
	}
	apply()
}

func (t *Terminal) ResetState() {
	apply := func() {
		t.modes = ModeLineWrap | ModeShowCursor
		t.region = scrollRegion{top: 0, bottom: t.rows, left: 0, right: t.cols}
		t.primary = NewScreen(t.cols, t.rows, t.maxScrollback)
		t.alternate = NewScreen(t.cols, t.rows, 0)
		t.altActive = false
		t.title = ""
		t.titleStack = nil
	}
	if t.middleware != nil && t.middleware.ResetState != nil {
		t.middleware.ResetState(apply)
		return
	}
	apply()
}

func (t *Terminal) Decaln() {
	s := t.activeScreen()
	for r := 0; r < t.rows; r++ {
		for c := 0; c < t.cols; c++ {
			t.putCell(s, r, c, 'E', WideNarrow, nil)
		}
	}
}

func (t *Terminal) Substitute() {
	s := t.activeScreen()
	t.putCell(s, s.Cursor.Y, s.Cursor.X, ' ', WideNarrow, nil)
}

// --- Charsets ---

func (t *Terminal) ConfigureCharset(index CharsetSlot, cs Charset) {
	t.activeScreen().Charsets[index] = cs
}

func (t *Terminal) SetActiveCharset(n int) {
	if n >= 0 && n < 4 {
		t.activeScreen().CharsetIndex = CharsetSlot(n)
	}
}

// --- Cursor style / keypad ---

func (t *Terminal) SetCursorStyle(style CursorStyle) {
	apply := func(style CursorStyle) { t.activeScreen().Cursor.CursorStyle = style }
	if t.middleware != nil && t.middleware.SetCursorStyle != nil {
		t.middleware.SetCursorStyle(style, apply)
		return
	}
	apply(style)
}

func (t *Terminal) SetKeypadApplicationMode()   { t.modes |= ModeKeypadApplication }
func (t *Terminal) UnsetKeypadApplicationMode() { t.modes &^= ModeKeypadApplication }

// --- Title ---

func (t *Terminal) SetTitle(title string) {
	apply := func(title string) {
		t.title = title
		t.titleProvider.SetTitle(title)
	}
	if t.middleware != nil && t.middleware.SetTitle != nil {
		t.middleware.SetTitle(title, apply)
		return
	}
	apply(title)
}

func (t *Terminal) PushTitle() {
	apply := func() {
		t.titleStack = append(t.titleStack, t.title)
		t.titleProvider.PushTitle()
	}
	if t.middleware != nil && t.middleware.PushTitle != nil {
		t.middleware.PushTitle(apply)
		return
	}
	apply()
}

func (t *Terminal) PopTitle() {
	apply := func() {
		if n := len(t.titleStack); n > 0 {
			t.title = t.titleStack[n-1]
			t.titleStack = t.titleStack[:n-1]
		}
		t.titleProvider.PopTitle()
	}
	if t.middleware != nil && t.middleware.PopTitle != nil {
		t.middleware.PopTitle(apply)
		return
	}
	apply()
}

// --- Working directory (OSC 7) ---

func (t *Terminal) SetWorkingDirectory(path string) {
	apply := func(path string) { t.pwd = path }
	if t.middleware != nil && t.middleware.SetWorkingDirectory != nil {
		t.middleware.SetWorkingDirectory(path, apply)
		return
	}
	apply(path)
}

// --- Hyperlinks (OSC 8) ---

func (t *Terminal) SetHyperlink(h *Hyperlink) {
	apply := func(h *Hyperlink) { t.activeScreen().Cursor.Hyperlink = h }
	if t.middleware != nil && t.middleware.SetHyperlink != nil {
		t.middleware.SetHyperlink(h, apply)
		return
	}
	apply(h)
}

// --- Colors (OSC 4/5/10-19/104/110-119) ---

func (t *Terminal) SetColor(index int, c color.Color) {
	apply := func(index int, c color.Color) {
		rgba := resolveColor(t.palette, c, true)
		t.palette.SetIndex(index, rgba)
	}
	if t.middleware != nil && t.middleware.SetColor != nil {
		t.middleware.SetColor(index, c, apply)
		return
	}
	apply(index, c)
}

func (t *Terminal) ResetColor(index int) {
	apply := func(index int) { t.palette.ResetIndex(index) }
	if t.middleware != nil && t.middleware.ResetColor != nil {
		t.middleware.ResetColor(index, apply)
		return
	}
	apply(index)
}

func (t *Terminal) SetDynamicColor(which int, c color.RGBA) {
	apply := func(which int, c color.RGBA) {
		switch which {
		case NamedColorForeground, NamedColorBackground, NamedColorCursor:
			t.palette.ChangeDefault(which, c)
		default:
			t.palette.SetIndex(which, c)
		}
	}
	if t.middleware != nil && t.middleware.SetDynamicColor != nil {
		t.middleware.SetDynamicColor(which, c, apply)
		return
	}
	apply(which, c)
}

func (t *Terminal) ResetDynamicColor(which int) {
	switch which {
	case NamedColorForeground, NamedColorBackground, NamedColorCursor:
		t.palette.ResetDefault(which)
	default:
		t.palette.ResetIndex(which)
	}
}

// --- Clipboard (OSC 52 / 5522) ---

// ClipboardLoad answers an OSC 52 query by encoding the provider's current
// data with go-osc52 and writing the response (spec.md §6 "clipboard read").
func (t *Terminal) ClipboardLoad(which byte) {
	apply := func(which byte) {
		data := t.clipboardProvider.Read(which)
		seq := osc52.New(data)
		switch which {
		case 'p':
			seq = seq.Primary()
		default:
			seq = seq.Clipboard()
		}
		t.writeResponseString(seq.String())
	}
	if t.middleware != nil && t.middleware.ClipboardLoad != nil {
		t.middleware.ClipboardLoad(which, apply)
		return
	}
	apply(which)
}

func (t *Terminal) ClipboardStore(which byte, data []byte) {
	apply := func(which byte, data []byte) { t.clipboardProvider.Write(which, data) }
	if t.middleware != nil && t.middleware.ClipboardStore != nil {
		t.middleware.ClipboardStore(which, data, apply)
		return
	}
	apply(which, data)
}

// --- Notifications (OSC 9) ---

func (t *Terminal) DesktopNotification(payload *NotificationPayload) {
	apply := func(payload *NotificationPayload) { t.notificationProvider.Notify(payload) }
	if t.middleware != nil && t.middleware.DesktopNotification != nil {
		t.middleware.DesktopNotification(payload, apply)
		return
	}
	apply(payload)
}

// --- Application/Privacy/SOS payloads ---

func (t *Terminal) ApplicationCommandReceived(data []byte) { t.apcProvider.Receive(data) }
func (t *Terminal) PrivacyMessageReceived(data []byte)     { t.pmProvider.Receive(data) }
func (t *Terminal) StartOfStringReceived(data []byte)      { t.sosProvider.Receive(data) }

// --- Sixel (capture-only; spec.md §4.3) ---

func (t *Terminal) SixelReceived(payload SixelPayload) {
	apply := func(payload SixelPayload) { t.sixelProvider.Decode(payload.Data, int(payload.P2)) }
	if t.middleware != nil && t.middleware.SixelReceived != nil {
		t.middleware.SixelReceived(payload, apply)
		return
	}
	apply(payload)
}

// --- Responses (DSR/DA/DECRQM/OSC query replies) ---

func (t *Terminal) DeviceStatus(n int) {
	apply := func(n int) {
		switch n {
		case 5:
			t.writeResponseString("\x1b[0n")
		case 6:
			s := t.activeScreen()
			row, col := s.Cursor.Y+1, s.Cursor.X+1
			if t.modes&ModeOrigin != 0 {
				row -= t.region.top
				col -= t.region.left
			}
			t.writeResponseString(fmt.Sprintf("\x1b[%d;%dR", row, col))
		}
	}
	if t.middleware != nil && t.middleware.DeviceStatus != nil {
		t.middleware.DeviceStatus(n, apply)
		return
	}
	apply(n)
}

func (t *Terminal) IdentifyTerminal(mode byte) {
	apply := func(mode byte) {
		if mode == '>' {
			t.writeResponseString("\x1b[>1;10;0c")
		} else {
			t.writeResponseString("\x1b[?62;1;6c")
		}
	}
	if t.middleware != nil && t.middleware.IdentifyTerminal != nil {
		t.middleware.IdentifyTerminal(mode, apply)
		return
	}
	apply(mode)
}

func (t *Terminal) writeResponse(data []byte) {
	if t.responseProvider != nil {
		t.responseProvider.Write(data)
	}
}

func (t *Terminal) writeResponseString(s string) { t.writeResponse([]byte(s)) }

// --- Providers / runtime accessors ---

func (t *Terminal) SetResponseProvider(p ResponseProvider) { t.mu.Lock(); defer t.mu.Unlock(); t.responseProvider = p }
func (t *Terminal) SetBellProvider(p BellProvider)         { t.mu.Lock(); defer t.mu.Unlock(); t.bellProvider = p }
func (t *Terminal) SetTitleProvider(p TitleProvider)       { t.mu.Lock(); defer t.mu.Unlock(); t.titleProvider = p }
func (t *Terminal) SetClipboardProvider(p ClipboardProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clipboardProvider = p
}
func (t *Terminal) SetMiddleware(mw *Middleware) { t.mu.Lock(); defer t.mu.Unlock(); t.middleware = mw }
func (t *Terminal) Middleware() *Middleware      { t.mu.RLock(); defer t.mu.RUnlock(); return t.middleware }

// --- Scrollback ---

func (t *Terminal) ScrollbackLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.primary.Pages.Rows() - t.rows
}

func (t *Terminal) ClearScrollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.primary.Pages = NewPageList(t.cols, t.rows, t.maxScrollback)
}

// --- Dirty tracking ---

func (t *Terminal) HasDirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.activeScreen()
	start := s.Pages.ActiveStart()
	for r := 0; r < t.rows; r++ {
		row := s.Pages.RowAt(start + r)
		if row == nil {
			continue
		}
		for i := range row.Cells {
			if row.Cells[i].IsDirty() {
				return true
			}
		}
	}
	return false
}

func (t *Terminal) DirtyCells() []Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.activeScreen()
	start := s.Pages.ActiveStart()
	var out []Position
	for r := 0; r < t.rows; r++ {
		row := s.Pages.RowAt(start + r)
		if row == nil {
			continue
		}
		for c := range row.Cells {
			if row.Cells[c].IsDirty() {
				out = append(out, Position{Row: r, Col: c})
			}
		}
	}
	return out
}

func (t *Terminal) ClearDirty() {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.activeScreen()
	start := s.Pages.ActiveStart()
	for r := 0; r < t.rows; r++ {
		row := s.Pages.RowAt(start + r)
		if row == nil {
			continue
		}
		for c := range row.Cells {
			row.Cells[c].ClearDirty()
		}
	}
}

// --- Selection ---

func (t *Terminal) SetSelection(start, end Position) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if end.Before(start) {
		start, end = end, start
	}
	s := t.activeScreen()
	abs0 := s.Pages.ActiveStart()
	s.Selection = &Selection{
		Start: s.Pages.AddPin(abs0+start.Row, start.Col),
		End:   s.Pages.AddPin(abs0+end.Row, end.Col),
	}
}

func (t *Terminal) ClearSelection() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeScreen().Selection = nil
}

func (t *Terminal) HasSelection() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.activeScreen().Selection != nil
}

// GetSelectedText extracts the text within the active selection, converting
// empty cells to spaces and joining rows with newlines.
func (t *Terminal) GetSelectedText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.activeScreen()
	if s.Selection == nil {
		return ""
	}
	startPt, ok1 := s.Pages.PointFromPin(FrameScreen, s.Selection.Start)
	endPt, ok2 := s.Pages.PointFromPin(FrameScreen, s.Selection.End)
	if !ok1 || !ok2 {
		return ""
	}
	var out []string
	for abs := startPt.Row; abs <= endPt.Row; abs++ {
		row := s.Pages.RowAt(abs)
		if row == nil {
			out = append(out, "")
			continue
		}
		startCol, endCol := 0, len(row.Cells)
		if abs == startPt.Row {
			startCol = startPt.Col
		}
		if abs == endPt.Row {
			endCol = endPt.Col + 1
		}
		out = append(out, rowSlicePlainText(row, startCol, endCol))
	}
	return strings.Join(out, "\n")
}

func rowSlicePlainText(row *Row, start, end int) string {
	if end > len(row.Cells) {
		end = len(row.Cells)
	}
	var runes []rune
	for c := start; c < end; c++ {
		cell := &row.Cells[c]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, cell.Char)
		}
	}
	return string(runes)
}

// --- Convenience text extraction ---

func (t *Terminal) LineContent(row int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.activeScreen()
	r := s.Pages.RowAt(s.Pages.ActiveStart() + row)
	if r == nil {
		return ""
	}
	return rowPlainText(r)
}

func (t *Terminal) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var lines []string
	last := -1
	for row := 0; row < t.rows; row++ {
		s := t.activeScreen()
		r := s.Pages.RowAt(s.Pages.ActiveStart() + row)
		line := ""
		if r != nil {
			line = rowPlainText(r)
		}
		lines = append(lines, line)
		if line != "" {
			last = row
		}
	}
	if last < 0 {
		return ""
	}
	return strings.Join(lines[:last+1], "\n")
}

// Search finds all occurrences of pattern in the active area (legacy linear
// scan; superseded for large scrollback by SlidingWindow/PageListSearch in
// search.go, kept here as the teacher's simple convenience form).
func (t *Terminal) Search(pattern string) []Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if pattern == "" {
		return nil
	}
	var matches []Position
	needle := []rune(pattern)
	for row := 0; row < t.rows; row++ {
		line := []rune(t.lineContentLocked(row))
		for col := 0; col <= len(line)-len(needle); col++ {
			if runesEqual(line[col:col+len(needle)], needle) {
				matches = append(matches, Position{Row: row, Col: col})
			}
		}
	}
	return matches
}

func (t *Terminal) lineContentLocked(row int) string {
	s := t.activeScreen()
	r := s.Pages.RowAt(s.Pages.ActiveStart() + row)
	if r == nil {
		return ""
	}
	return rowPlainText(r)
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SearchScrollback finds all occurrences of pattern in history rows above
// the active area. Returned row values are negative (-1 = most recent
// scrollback row), matching the teacher's convention.
func (t *Terminal) SearchScrollback(pattern string) []Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if pattern == "" {
		return nil
	}
	s := t.activeScreen()
	start := s.Pages.ActiveStart()
	needle := []rune(pattern)
	var matches []Position
	for abs := 0; abs < start; abs++ {
		row := s.Pages.RowAt(abs)
		if row == nil {
			continue
		}
		line := []rune(rowPlainText(row))
		for col := 0; col <= len(line)-len(needle); col++ {
			if runesEqual(line[col:col+len(needle)], needle) {
				matches = append(matches, Position{Row: -(start - abs), Col: col})
			}
		}
	}
	return matches
}

// NewScreenSearch starts an incremental bounded-memory search for needle
// against the active screen's current content plus its scrollback,
// suitable for large histories where Search/SearchScrollback's full linear
// rescans would be wasteful (spec.md §4.6-§4.7). The caller drives it with
// Feed/ReloadActive from a separate goroutine and reads Matches/Done.
func (t *Terminal) NewScreenSearch(needle string) *ScreenSearch {
	return NewScreenSearch(t, needle)
}

// SelectMatch installs sel as the active screen's current selection, e.g.
// to highlight a ScreenSearch match.
func (t *Terminal) SelectMatch(sel *Selection) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeScreen().Selection = sel
}

// --- Images ---

func (t *Terminal) Image(id uint32) *ImageData        { return t.activeScreen().Images.Image(id) }
func (t *Terminal) ImagePlacements() []*ImagePlacement { return t.activeScreen().Images.Placements() }
func (t *Terminal) ImageCount() int                    { return t.activeScreen().Images.ImageCount() }
func (t *Terminal) ClearImages()                       { t.activeScreen().Images.Clear() }

// --- Misc accessors used by Stream ---

func (t *Terminal) lastPrinted() (rune, bool) { return t.lastPrintedRune, t.haveLastPrinted }

func parseColorIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
