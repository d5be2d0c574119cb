package term

import "image/color"

// Middleware intercepts Terminal operation calls, letting a host run custom
// behavior before/after the default implementation. Each field wraps one
// operation: it receives the original arguments plus a next function that
// invokes the default behavior: call next(args...) to run it, transform the
// arguments first, skip it entirely, or run code after it returns.
//
// Coverage favors observable, state-mutating operations (erase, mode,
// color, title, clipboard, notification, sixel, semantic prompt) over
// per-glyph cursor arithmetic (Goto/MoveUp/.../Tab): those run on every
// printed character and a host wanting to observe cursor motion can already
// read it back from Terminal.CursorPos after any Write.
type Middleware struct {
	// Print wraps the Print handler (grapheme-clustered glyph + its cell width).
	Print func(runes []rune, width int, next func([]rune, int))

	// Bell wraps the Bell handler.
	Bell func(next func())

	// LineFeed wraps the LineFeed handler.
	LineFeed func(next func())

	// ClearLine wraps the ClearLine handler.
	ClearLine func(mode LineClearMode, next func(LineClearMode))

	// ClearScreen wraps the ClearScreen handler.
	ClearScreen func(mode ClearMode, next func(ClearMode))

	// ScrollUp wraps the ScrollUp handler.
	ScrollUp func(n int, next func(int))

	// ScrollDown wraps the ScrollDown handler.
	ScrollDown func(n int, next func(int))

	// SetMode wraps the SetMode handler.
	SetMode func(mode TerminalMode, next func(TerminalMode))

	// UnsetMode wraps the UnsetMode handler.
	UnsetMode func(mode TerminalMode, next func(TerminalMode))

	// SetTerminalCharAttribute wraps the SetTerminalCharAttribute (SGR) handler.
	SetTerminalCharAttribute func(attrs []SGRAttribute, next func([]SGRAttribute))

	// SaveCursorPosition wraps the SaveCursorPosition handler.
	SaveCursorPosition func(next func())

	// RestoreCursorPosition wraps the RestoreCursorPosition handler.
	RestoreCursorPosition func(next func())

	// ResetState wraps the ResetState (RIS) handler.
	ResetState func(next func())

	// SetCursorStyle wraps the SetCursorStyle handler.
	SetCursorStyle func(style CursorStyle, next func(CursorStyle))

	// SetTitle wraps the SetTitle handler.
	SetTitle func(title string, next func(string))

	// PushTitle wraps the PushTitle handler.
	PushTitle func(next func())

	// PopTitle wraps the PopTitle handler.
	PopTitle func(next func())

	// SetWorkingDirectory wraps the SetWorkingDirectory (OSC 7) handler.
	SetWorkingDirectory func(path string, next func(string))

	// SetHyperlink wraps the SetHyperlink (OSC 8) handler.
	SetHyperlink func(hyperlink *Hyperlink, next func(*Hyperlink))

	// SetColor wraps the SetColor (OSC 4/5) handler.
	SetColor func(index int, c color.Color, next func(int, color.Color))

	// ResetColor wraps the ResetColor handler.
	ResetColor func(index int, next func(int))

	// SetDynamicColor wraps the SetDynamicColor (OSC 10-19) handler.
	SetDynamicColor func(which int, c color.RGBA, next func(int, color.RGBA))

	// ClipboardLoad wraps the ClipboardLoad (OSC 52 read) handler.
	ClipboardLoad func(which byte, next func(byte))

	// ClipboardStore wraps the ClipboardStore (OSC 52 write) handler.
	ClipboardStore func(which byte, data []byte, next func(byte, []byte))

	// SixelReceived wraps the SixelReceived (DCS sixel) handler.
	SixelReceived func(payload SixelPayload, next func(SixelPayload))

	// DesktopNotification wraps the DesktopNotification (OSC 9) handler.
	DesktopNotification func(payload *NotificationPayload, next func(*NotificationPayload))

	// DeviceStatus wraps the DeviceStatus (DSR) handler.
	DeviceStatus func(n int, next func(int))

	// IdentifyTerminal wraps the IdentifyTerminal (DA) handler.
	IdentifyTerminal func(mode byte, next func(byte))

	// SemanticPromptMark wraps the SemanticPromptMark (OSC 133) handler.
	SemanticPromptMark func(cmd SemanticPromptCommand, next func(SemanticPromptCommand))
}

// Merge copies non-nil middleware functions from other into m, overwriting
// existing values — lets several option sources layer onto one Terminal
// (spec.md §9 "middleware composition").
func (m *Middleware) Merge(other *Middleware) {
	if other == nil {
		return
	}
	if other.Print != nil {
		m.Print = other.Print
	}
	if other.Bell != nil {
		m.Bell = other.Bell
	}
	if other.LineFeed != nil {
		m.LineFeed = other.LineFeed
	}
	if other.ClearLine != nil {
		m.ClearLine = other.ClearLine
	}
	if other.ClearScreen != nil {
		m.ClearScreen = other.ClearScreen
	}
	if other.ScrollUp != nil {
		m.ScrollUp = other.ScrollUp
	}
	if other.ScrollDown != nil {
		m.ScrollDown = other.ScrollDown
	}
	if other.SetMode != nil {
		m.SetMode = other.SetMode
	}
	if other.UnsetMode != nil {
		m.UnsetMode = other.UnsetMode
	}
	if other.SetTerminalCharAttribute != nil {
		m.SetTerminalCharAttribute = other.SetTerminalCharAttribute
	}
	if other.SaveCursorPosition != nil {
		m.SaveCursorPosition = other.SaveCursorPosition
	}
	if other.RestoreCursorPosition != nil {
		m.RestoreCursorPosition = other.RestoreCursorPosition
	}
	if other.ResetState != nil {
		m.ResetState = other.ResetState
	}
	if other.SetCursorStyle != nil {
		m.SetCursorStyle = other.SetCursorStyle
	}
	if other.SetTitle != nil {
		m.SetTitle = other.SetTitle
	}
	if other.PushTitle != nil {
		m.PushTitle = other.PushTitle
	}
	if other.PopTitle != nil {
		m.PopTitle = other.PopTitle
	}
	if other.SetWorkingDirectory != nil {
		m.SetWorkingDirectory = other.SetWorkingDirectory
	}
	if other.SetHyperlink != nil {
		m.SetHyperlink = other.SetHyperlink
	}
	if other.SetColor != nil {
		m.SetColor = other.SetColor
	}
	if other.ResetColor != nil {
		m.ResetColor = other.ResetColor
	}
	if other.SetDynamicColor != nil {
		m.SetDynamicColor = other.SetDynamicColor
	}
	if other.ClipboardLoad != nil {
		m.ClipboardLoad = other.ClipboardLoad
	}
	if other.ClipboardStore != nil {
		m.ClipboardStore = other.ClipboardStore
	}
	if other.SixelReceived != nil {
		m.SixelReceived = other.SixelReceived
	}
	if other.DesktopNotification != nil {
		m.DesktopNotification = other.DesktopNotification
	}
	if other.DeviceStatus != nil {
		m.DeviceStatus = other.DeviceStatus
	}
	if other.IdentifyTerminal != nil {
		m.IdentifyTerminal = other.IdentifyTerminal
	}
	if other.SemanticPromptMark != nil {
		m.SemanticPromptMark = other.SemanticPromptMark
	}
}
