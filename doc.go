// Package term provides a headless VT-compatible terminal emulator core.
//
// This package emulates a terminal without any display, making it ideal for:
//   - Testing terminal applications without a GUI
//   - Building terminal multiplexers and recorders
//   - Creating terminal-based web applications
//   - Automated testing of CLI tools
//   - Screen scraping and automation
//
// # Quick Start
//
// Create a terminal and write ANSI sequences to it:
//
//	t := term.New(term.WithSize(24, 80))
//	t.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(t.String()) // "Hello World!"
//
// # Architecture
//
// Bytes flow through four stages, each its own file: a DFA byte parser
// ([parser.go]) turns the raw stream into [Action] values, an OSC
// sub-parser ([osc.go]) decodes Operating System Command payloads, a
// [Stream] dispatcher ([stream.go]) batches consecutive print actions
// through grapheme-cluster boundaries and calls one [Terminal] method per
// action, and [Terminal] ([terminal.go]) mutates a [Screen]'s [PageList] —
// the doubly-linked chain of fixed-capacity [Page]s holding [Row]s of
// [Cell]s — accordingly.
//
//   - [Terminal]: the emulator; implements [io.Writer]
//   - [Screen]: one viewport (primary or alternate) over a [PageList]:
//     cursor, saved-cursor stack, charset slots, kitty keyboard/graphics
//     state, selection
//   - [PageList]: the active area plus scrollback history, bounded by a
//     byte budget, with pin tracking so scrollback eviction never leaves a
//     dangling reference
//   - [Cell]: one grid position; style/grapheme/hyperlink payloads are
//     deduplicated in per-[Page] pools and referenced by index
//
// # Terminal
//
// Terminal is the main entry point. It implements [io.Writer] so you can
// write raw bytes containing ANSI escape sequences:
//
//	t := term.New(
//	    term.WithSize(24, 80),              // 24 rows, 80 columns
//	    term.WithMaxScrollback(4<<20),      // 4 MiB of scrollback
//	    term.WithResponse(ptyWriter),       // terminal responses (DSR, DA, ...)
//	)
//
//	cmd := exec.Command("ls", "-la", "--color")
//	cmd.Stdout = t
//	cmd.Run()
//
//	for row := 0; row < t.Rows(); row++ {
//	    fmt.Println(t.LineContent(row))
//	}
//
// # Dual Screens
//
// Terminal maintains two [Screen]s:
//
//   - Primary: normal mode, with scrollback bounded by WithMaxScrollback
//   - Alternate: used by full-screen apps (vim, less, htop); no scrollback
//
// Applications switch between them via CSI ?1049h/l. Check which is active:
//
//	if t.IsAlternateScreen() {
//	    // a full-screen app is running
//	}
//
// # Cells and Styles
//
// Each [Cell] stores a rune plus indices into its [Page]'s style,
// grapheme, and hyperlink pools (spec's pooled-attribute model, not an
// inline struct per cell):
//
//	cell := t.Cell(row, col)
//	if cell != nil {
//	    fmt.Printf("Char: %c\n", cell.Char)
//	    fmt.Printf("Has grapheme: %v\n", cell.HasFlag(term.CellFlagHasGrapheme))
//	}
//
// # Colors
//
// Colors are stored behind Go's [image/color.Color] interface: a [Style]'s
// Fg/Bg/UnderlineColor may be nil (default), an [IndexedColor] (256-color
// palette), a [NamedColor] (semantic slot resolved against a
// [DynamicPalette]), or a concrete [color.RGBA] (truecolor).
//
// # Scrollback and Search
//
// Lines scrolled off the active area stay in the [PageList]'s history,
// bounded by WithMaxScrollback:
//
//	matches := t.Search("error")             // active area only
//	history := t.SearchScrollback("error")   // scrollback, negative rows
//
// For a large history where a full rescan on every keystroke is wasteful,
// [Terminal.NewScreenSearch] drives an incremental, bounded-memory
// [ScreenSearch] instead: it walks the active area forward and scrollback
// backward a little at a time, invalidating and rebuilding only the part
// of its state a scrollback eviction actually disturbed.
//
// # Providers
//
// Providers handle terminal events and queries; all are optional with
// no-op defaults:
//
//   - [BellProvider]: bell/beep events
//   - [TitleProvider]: window title changes (OSC 0/1/2)
//   - [ClipboardProvider]: clipboard operations (OSC 52)
//   - [NotificationProvider]: desktop notifications (OSC 9)
//   - [SixelProvider]: sixel payload capture
//   - [KittyImageDecoder]: kitty graphics pixel decode
//   - [SemanticPromptHandler]: semantic prompt marks (OSC 133)
//   - [RecordingProvider]: captures raw input for replay
//
//	t := term.New(
//	    term.WithResponse(ptyWriter),
//	    term.WithBell(&myBellHandler{}),
//	    term.WithTitle(&myTitleHandler{}),
//	)
//
// # Middleware
//
// [Middleware] intercepts Terminal operation calls for custom behavior.
// Each field wraps one operation and receives the original arguments plus
// a next function: call it to run the default behavior, transform the
// arguments first, skip it to suppress the operation, or run code after it
// returns.
//
//	mw := &term.Middleware{
//	    Bell: func(next func()) {
//	        log.Println("bell")
//	        // next not called: bell suppressed
//	    },
//	    SetTitle: func(title string, next func(string)) {
//	        log.Printf("title -> %q", title)
//	        next(title)
//	    },
//	}
//	t := term.New(term.WithMiddleware(mw))
//
// # Terminal Modes
//
//	t.HasMode(term.ModeLineWrap)       // auto line wrap enabled?
//	t.HasMode(term.ModeShowCursor)     // cursor visible?
//	t.HasMode(term.ModeBracketedPaste) // bracketed paste enabled?
//
// See [TerminalMode] for all available modes.
//
// # Selection
//
//	t.SetSelection(term.Position{Row: 0, Col: 0}, term.Position{Row: 2, Col: 10})
//	text := t.GetSelectedText()
//	t.ClearSelection()
//
// # Snapshots
//
// [Terminal.Snapshot] captures the active screen for serialization:
//
//	snap := t.Snapshot(term.SnapshotDetailText)   // text only (smallest)
//	snap := t.Snapshot(term.SnapshotDetailStyled) // + style runs
//	snap := t.Snapshot(term.SnapshotDetailFull)   // + per-cell data
//	data, _ := json.Marshal(snap)
//
// # Images
//
// Sixel and kitty graphics sequences are captured (not rendered — pixel
// decode is opt-in via a provider):
//
//	if t.SixelEnabled() || t.KittyEnabled() {
//	    for _, placement := range t.ImagePlacements() {
//	        img := t.Image(placement.ImageID)
//	        _ = img.Data // RGBA pixels, once a decoder is installed
//	    }
//	}
//
// # Shell Integration
//
// Semantic prompt marks (OSC 133) are tracked per row:
//
//	t := term.New(term.WithSemanticPromptHandler(&myHandler{}))
//
//	nextAbsRow := t.NextPromptRow(currentAbsRow, term.SemanticPromptStart)
//	prevAbsRow := t.PrevPromptRow(currentAbsRow, term.SemanticPromptStart)
//	output := t.GetLastCommandOutput()
//
// # Auto-Resize Mode
//
// In auto-resize mode the active area grows instead of scrolling, so
// nothing is ever pushed into scrollback:
//
//	t := term.New(term.WithAutoResize())
//	cmd.Stdout = t
//	cmd.Run()
//	fmt.Printf("total rows: %d\n", t.Rows())
//
// # Thread Safety
//
// All Terminal methods are safe for concurrent use; Terminal guards its
// state with an internal mutex. Callers needing several operations to
// appear atomic must supply their own synchronization.
//
// # Supported ANSI Sequences
//
//   - Cursor movement (CUU, CUD, CUF, CUB, CUP, HVP, ...)
//   - Cursor save/restore (DECSC, DECRC)
//   - Erase commands (ED, EL, ECH)
//   - Insert/delete (ICH, DCH, IL, DL)
//   - Scrolling (SU, SD, DECSTBM)
//   - Character attributes (SGR), 16/256/truecolor
//   - Terminal modes (DECSET, DECRST) including kitty keyboard protocol
//   - Device status/identification (DSR, DA1/DA2/DA3)
//   - Alternate screen buffer
//   - Bracketed paste mode
//   - Window title (OSC 0/1/2)
//   - Clipboard (OSC 52)
//   - Hyperlinks (OSC 8)
//   - Shell integration (OSC 133)
//   - Sixel and kitty graphics capture
package term
