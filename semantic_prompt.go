package term

import "strconv"

// PromptMark records one semantic-prompt event (OSC 133) at an absolute row
// (spec.md §4.4 "Semantic prompts"). This unifies the teacher's two
// divergent implementations (`semantic_prompt.go` and
// `shell_integration.go`) onto a single option-union model, resolving
// spec.md §9 Open Question (a).
type PromptMark struct {
	Kind     SemanticPromptKind
	Row      int
	ExitCode int // valid only when Kind came from a 'D' action, -1 otherwise
	Options  map[string]string
}

// SemanticPromptHandler is notified of every semantic-prompt mark as it is
// recorded (spec.md §4.4 "The Terminal exposes these marks through its read
// API").
type SemanticPromptHandler interface {
	OnMark(mark PromptMark)
}

type NoopSemanticPromptHandler struct{}

func (NoopSemanticPromptHandler) OnMark(PromptMark) {}

var _ SemanticPromptHandler = (*NoopSemanticPromptHandler)(nil)

// semanticPromptKindFor maps an OSC 133 action byte to a SemanticPromptKind
// (spec.md §4.2 code 133: "L, A, B, I, C, D, N, P").
func semanticPromptKindFor(action byte) SemanticPromptKind {
	switch action {
	case 'L':
		return SemanticPromptContinuation
	case 'A':
		return SemanticPromptStart
	case 'B', 'I':
		return SemanticPromptInput
	case 'C', 'D':
		return SemanticPromptCommand
	default:
		return SemanticPromptUnknown
	}
}

// SemanticPromptMark applies a decoded OSC 133 command: marks the current
// row with the corresponding kind, stores any recognized options as row
// metadata, and records a PromptMark for navigation (spec.md §4.4, §4.2).
func (t *Terminal) SemanticPromptMark(cmd SemanticPromptCommand) {
	if t.middleware != nil && t.middleware.SemanticPromptMark != nil {
		t.middleware.SemanticPromptMark(cmd, t.semanticPromptMarkInternal)
		return
	}
	t.semanticPromptMarkInternal(cmd)
}

func (t *Terminal) semanticPromptMarkInternal(cmd SemanticPromptCommand) {
	screen := t.activeScreen()
	abs := screen.Pages.ActiveStart() + screen.Cursor.Y
	kind := semanticPromptKindFor(cmd.Action)

	if row := screen.Pages.RowAt(abs); row != nil {
		row.SemanticPrompt = kind
		if len(cmd.Options) > 0 {
			row.PromptOptions = cmd.Options
		}
	}

	exitCode := -1
	if cmd.Action == 'D' {
		if v, ok := cmd.Options["exit_code"]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				exitCode = n
			}
		}
	}

	mark := PromptMark{Kind: kind, Row: abs, ExitCode: exitCode, Options: cmd.Options}
	t.promptMarks = append(t.promptMarks, mark)
	if t.semanticPromptHandler != nil {
		t.semanticPromptHandler.OnMark(mark)
	}
}

// PromptMarks returns a copy of every recorded semantic-prompt mark.
func (t *Terminal) PromptMarks() []PromptMark {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]PromptMark, len(t.promptMarks))
	copy(out, t.promptMarks)
	return out
}

// PromptMarkCount returns the number of recorded marks.
func (t *Terminal) PromptMarkCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.promptMarks)
}

// ClearPromptMarks discards all recorded marks.
func (t *Terminal) ClearPromptMarks() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.promptMarks = nil
}

// NextPromptRow returns the absolute row of the next mark after currentAbsRow
// matching kind (or any kind when kind == SemanticPromptNone), or -1 if none.
func (t *Terminal) NextPromptRow(currentAbsRow int, kind SemanticPromptKind) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, m := range t.promptMarks {
		if m.Row > currentAbsRow && (kind == SemanticPromptNone || m.Kind == kind) {
			return m.Row
		}
	}
	return -1
}

// PrevPromptRow returns the absolute row of the previous mark before
// currentAbsRow matching kind (or any kind when kind == SemanticPromptNone).
func (t *Terminal) PrevPromptRow(currentAbsRow int, kind SemanticPromptKind) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := len(t.promptMarks) - 1; i >= 0; i-- {
		m := t.promptMarks[i]
		if m.Row < currentAbsRow && (kind == SemanticPromptNone || m.Kind == kind) {
			return m.Row
		}
	}
	return -1
}

// GetPromptMarkAt returns the mark recorded at absRow, or nil.
func (t *Terminal) GetPromptMarkAt(absRow int) *PromptMark {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i := range t.promptMarks {
		if t.promptMarks[i].Row == absRow {
			m := t.promptMarks[i]
			return &m
		}
	}
	return nil
}

// SetSemanticPromptHandler installs h at runtime.
func (t *Terminal) SetSemanticPromptHandler(h SemanticPromptHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.semanticPromptHandler = h
}

// SemanticPromptHandlerValue returns the currently installed handler.
func (t *Terminal) SemanticPromptHandlerValue() SemanticPromptHandler {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.semanticPromptHandler
}

// GetLastCommandOutput returns the text between the most recent matched
// CommandExecuted('C')/CommandFinished('D') pair, or "" if none.
func (t *Terminal) GetLastCommandOutput() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var executedRow, finishedRow = -1, -1
	for i := len(t.promptMarks) - 1; i >= 0; i-- {
		m := t.promptMarks[i]
		if m.Kind != SemanticPromptCommand {
			continue
		}
		if finishedRow < 0 {
			finishedRow = m.Row
			continue
		}
		if executedRow < 0 && m.Row < finishedRow {
			executedRow = m.Row
			break
		}
	}
	if executedRow < 0 || finishedRow < 0 {
		return ""
	}
	return t.extractTextBetweenRows(executedRow, finishedRow)
}

func (t *Terminal) extractTextBetweenRows(startRow, endRow int) string {
	screen := t.activeScreen()
	var lines []string
	for abs := startRow; abs < endRow; abs++ {
		row := screen.Pages.RowAt(abs)
		if row == nil {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, rowPlainText(row))
	}
	last := -1
	for i, l := range lines {
		if l != "" {
			last = i
		}
	}
	if last < 0 {
		return ""
	}
	out := ""
	for i := 0; i <= last; i++ {
		if i > 0 {
			out += "\n"
		}
		out += lines[i]
	}
	return out
}

// rowPlainText renders a row's base codepoints, trimming trailing blanks
// and skipping wide-character spacer cells.
func rowPlainText(row *Row) string {
	last := -1
	for i := len(row.Cells) - 1; i >= 0; i-- {
		c := &row.Cells[i]
		if c.Char != 0 && c.Char != ' ' && !c.IsWideSpacer() {
			last = i
			break
		}
	}
	if last < 0 {
		return ""
	}
	runes := make([]rune, 0, last+1)
	for i := 0; i <= last; i++ {
		c := &row.Cells[i]
		if c.IsWideSpacer() {
			continue
		}
		if c.Char == 0 {
			runes = append(runes, ' ')
		} else {
			runes = append(runes, c.Char)
		}
	}
	return string(runes)
}
