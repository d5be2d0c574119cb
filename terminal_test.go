package term

import (
	"strings"
	"testing"
)

func TestNewTerminal(t *testing.T) {
	term := New()

	if term.Rows() != 24 {
		t.Errorf("expected 24 rows, got %d", term.Rows())
	}
	if term.Cols() != 80 {
		t.Errorf("expected 80 cols, got %d", term.Cols())
	}
}

func TestTerminalWithSize(t *testing.T) {
	term := New(WithSize(40, 120))

	if term.Rows() != 40 {
		t.Errorf("expected 40 rows, got %d", term.Rows())
	}
	if term.Cols() != 120 {
		t.Errorf("expected 120 cols, got %d", term.Cols())
	}
}

func TestTerminalWrite(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Hello")

	if content := term.LineContent(0); content != "Hello" {
		t.Errorf("expected 'Hello', got '%s'", content)
	}
}

func TestTerminalCursorPosition(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("ABC")

	row, col := term.CursorPos()
	if row != 0 || col != 3 {
		t.Errorf("expected cursor at (0, 3), got (%d, %d)", row, col)
	}
}

func TestTerminalNewline(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Line1\r\nLine2")

	if term.LineContent(0) != "Line1" {
		t.Errorf("expected 'Line1', got '%s'", term.LineContent(0))
	}
	if term.LineContent(1) != "Line2" {
		t.Errorf("expected 'Line2', got '%s'", term.LineContent(1))
	}
}

func TestTerminalClearScreen(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Hello")
	term.WriteString("\x1b[2J")

	if term.LineContent(0) != "" {
		t.Errorf("expected empty line after clear, got '%s'", term.LineContent(0))
	}
}

func TestTerminalClearLine(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Hello World")
	term.WriteString("\r\x1b[K")

	if term.LineContent(0) != "" {
		t.Errorf("expected empty line after EL, got '%s'", term.LineContent(0))
	}
}

func TestTerminalScrollback(t *testing.T) {
	term := New(WithSize(5, 80), WithMaxScrollback(1<<20))

	for i := 0; i < 10; i++ {
		term.WriteString("Line\r\n")
	}

	if term.ScrollbackLen() < 5 {
		t.Errorf("expected at least 5 scrollback lines, got %d", term.ScrollbackLen())
	}
}

func TestTerminalScrollbackDisabled(t *testing.T) {
	term := New(WithSize(5, 80))

	for i := 0; i < 10; i++ {
		term.WriteString("Line\r\n")
	}

	if got := term.ScrollbackLen(); got != 0 {
		t.Errorf("expected no scrollback with WithMaxScrollback unset, got %d", got)
	}
}

func TestTerminalSelection(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Hello World")
	term.SetSelection(Position{Row: 0, Col: 0}, Position{Row: 0, Col: 4})

	if !term.HasSelection() {
		t.Error("expected selection to be active")
	}

	if selected := term.GetSelectedText(); selected != "Hello" {
		t.Errorf("expected 'Hello', got '%s'", selected)
	}

	term.ClearSelection()
	if term.HasSelection() {
		t.Error("expected selection to be cleared")
	}
}

func TestTerminalSearch(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("Hello World\r\nGoodbye World")

	matches := term.Search("World")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Row != 0 || matches[1].Row != 1 {
		t.Errorf("unexpected match rows: %+v", matches)
	}
}

func TestTerminalSearchScrollback(t *testing.T) {
	term := New(WithSize(3, 80), WithMaxScrollback(1<<20))

	term.WriteString("needle\r\nfiller\r\nfiller\r\nfiller\r\nfiller\r\n")

	matches := term.SearchScrollback("needle")
	if len(matches) != 1 {
		t.Fatalf("expected 1 scrollback match, got %d", len(matches))
	}
	if matches[0].Row >= 0 {
		t.Errorf("expected a negative (scrollback) row, got %d", matches[0].Row)
	}
}

func TestTerminalSGRBold(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b[1mBold")

	cell := term.Cell(0, 0)
	if cell == nil {
		t.Fatal("expected cell at (0,0)")
	}
	style := term.activeScreen().Pages.PageAt(term.activeScreen().Pages.ActiveStart()).Styles.Get(cell.StyleID)
	if style.Attrs&StyleBold == 0 {
		t.Error("expected bold style flag")
	}
}

func TestTerminalSGRReset(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b[1mBold\x1b[0mPlain")

	cell := term.Cell(0, 4)
	page := term.activeScreen().Pages.PageAt(term.activeScreen().Pages.ActiveStart())
	style := page.Styles.Get(cell.StyleID)
	if style.Attrs&StyleBold != 0 {
		t.Error("expected SGR reset to clear bold")
	}
}

func TestTerminalModes(t *testing.T) {
	term := New(WithSize(24, 80))

	if !term.HasMode(ModeShowCursor) {
		t.Error("expected cursor visible by default")
	}

	term.WriteString("\x1b[?25l")
	if term.HasMode(ModeShowCursor) {
		t.Error("expected cursor hidden after DECTCEM reset")
	}

	term.WriteString("\x1b[?25h")
	if !term.HasMode(ModeShowCursor) {
		t.Error("expected cursor visible after DECTCEM set")
	}
}

func TestTerminalAlternateScreen(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("primary content")
	term.WriteString("\x1b[?1049h")
	if !term.IsAlternateScreen() {
		t.Fatal("expected alternate screen active")
	}

	term.WriteString("alt content")
	if term.LineContent(0) != "alt content" {
		t.Errorf("expected alt screen content, got %q", term.LineContent(0))
	}

	term.WriteString("\x1b[?1049l")
	if term.IsAlternateScreen() {
		t.Fatal("expected primary screen restored")
	}
	if !strings.HasPrefix(term.LineContent(0), "primary content") {
		t.Errorf("expected primary content restored, got %q", term.LineContent(0))
	}
}

func TestTerminalResize(t *testing.T) {
	term := New(WithSize(10, 40))

	term.WriteString("Hello")
	term.Resize(20, 60)

	if term.Rows() != 20 || term.Cols() != 60 {
		t.Fatalf("expected 20x60, got %dx%d", term.Rows(), term.Cols())
	}
	if term.LineContent(0) != "Hello" {
		t.Errorf("expected content preserved across resize, got %q", term.LineContent(0))
	}
}

func TestTerminalAutoResize(t *testing.T) {
	term := New(WithSize(3, 80), WithAutoResize())

	for i := 0; i < 10; i++ {
		term.WriteString("Line\r\n")
	}

	if term.Rows() <= 3 {
		t.Errorf("expected auto-resize to grow rows, got %d", term.Rows())
	}
}

func TestTerminalMiddlewareSuppressesBell(t *testing.T) {
	rang := false
	mw := &Middleware{
		Bell: func(next func()) { rang = true },
	}
	term := New(WithSize(24, 80), WithMiddleware(mw))

	term.WriteString("\a")
	if !rang {
		t.Error("expected middleware Bell hook to fire")
	}
}

func TestTerminalMiddlewareObservesTitle(t *testing.T) {
	var seen string
	mw := &Middleware{
		SetTitle: func(title string, next func(string)) {
			seen = title
			next(title)
		},
	}
	term := New(WithSize(24, 80), WithMiddleware(mw))

	term.WriteString("\x1b]2;hello\a")

	if seen != "hello" {
		t.Errorf("expected middleware to observe title %q, got %q", "hello", seen)
	}
	if term.Title() != "hello" {
		t.Errorf("expected next() to still set the title, got %q", term.Title())
	}
}

func TestTerminalHyperlink(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]8;;http://example.com\x1b\\link\x1b]8;;\x1b\\")

	cell := term.Cell(0, 0)
	if !cell.HasFlag(CellFlagHasHyperlink) {
		t.Fatal("expected hyperlinked cell")
	}
	page := term.activeScreen().Pages.PageAt(term.activeScreen().Pages.ActiveStart())
	link := page.Hyperlinks.Get(cell.Hyperlink)
	if link.URI != "http://example.com" {
		t.Errorf("expected hyperlink URI, got %q", link.URI)
	}
}

func TestTerminalScrollRegion(t *testing.T) {
	term := New(WithSize(5, 20))

	term.WriteString("\x1b[2;4r") // scroll region rows 2-4 (1-indexed)
	top, bottom := term.ScrollRegion()
	if top != 1 || bottom != 4 {
		t.Errorf("expected region [1,4), got [%d,%d)", top, bottom)
	}
}

func TestTerminalDirtyTracking(t *testing.T) {
	term := New(WithSize(5, 20))

	term.ClearDirty()
	term.WriteString("x")

	if !term.HasDirty() {
		t.Error("expected dirty cells after printing")
	}
	term.ClearDirty()
	if term.HasDirty() {
		t.Error("expected no dirty cells after ClearDirty")
	}
}
