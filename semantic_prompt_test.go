package term

import "testing"

func TestSemanticPromptMark_PromptStart(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07")

	marks := term.PromptMarks()
	if len(marks) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(marks))
	}
	if marks[0].Kind != SemanticPromptStart {
		t.Errorf("expected SemanticPromptStart, got %d", marks[0].Kind)
	}
	if marks[0].ExitCode != -1 {
		t.Errorf("expected exit code -1, got %d", marks[0].ExitCode)
	}
}

func TestSemanticPromptMark_CommandStart(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;B\x07")

	marks := term.PromptMarks()
	if len(marks) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(marks))
	}
	if marks[0].Kind != SemanticPromptInput {
		t.Errorf("expected SemanticPromptInput, got %d", marks[0].Kind)
	}
}

func TestSemanticPromptMark_CommandExecuted(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;C\x07")

	marks := term.PromptMarks()
	if len(marks) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(marks))
	}
	if marks[0].Kind != SemanticPromptCommand {
		t.Errorf("expected SemanticPromptCommand, got %d", marks[0].Kind)
	}
}

func TestSemanticPromptMark_CommandFinished(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;D\x07")

	marks := term.PromptMarks()
	if len(marks) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(marks))
	}
	if marks[0].Kind != SemanticPromptCommand {
		t.Errorf("expected SemanticPromptCommand, got %d", marks[0].Kind)
	}
	if marks[0].ExitCode != -1 {
		t.Errorf("expected exit code -1, got %d", marks[0].ExitCode)
	}
}

func TestSemanticPromptMark_CommandFinishedWithExitCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		exitCode int
	}{
		{"exit code 0", "\x1b]133;D;exit_code=0\x07", 0},
		{"exit code 1", "\x1b]133;D;exit_code=1\x07", 1},
		{"exit code 127", "\x1b]133;D;exit_code=127\x07", 127},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term := New(WithSize(24, 80))
			term.WriteString(tt.input)

			marks := term.PromptMarks()
			if len(marks) != 1 {
				t.Fatalf("expected 1 mark, got %d", len(marks))
			}
			if marks[0].ExitCode != tt.exitCode {
				t.Errorf("expected exit code %d, got %d", tt.exitCode, marks[0].ExitCode)
			}
		})
	}
}

func TestSemanticPromptMark_FullSequence(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("$ ")
	term.WriteString("\x1b]133;B\x07")
	term.WriteString("ls -la")
	term.WriteString("\r\n")
	term.WriteString("\x1b]133;C\x07")
	term.WriteString("file1\r\nfile2\r\n")
	term.WriteString("\x1b]133;D;exit_code=0\x07")

	marks := term.PromptMarks()
	if len(marks) != 4 {
		t.Fatalf("expected 4 marks, got %d", len(marks))
	}

	expected := []SemanticPromptKind{
		SemanticPromptStart,
		SemanticPromptInput,
		SemanticPromptCommand,
		SemanticPromptCommand,
	}
	for i, exp := range expected {
		if marks[i].Kind != exp {
			t.Errorf("mark %d: expected kind %d, got %d", i, exp, marks[i].Kind)
		}
	}

	if marks[3].ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", marks[3].ExitCode)
	}
}

func TestSemanticPromptMark_RowTracking(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07") // row 0
	term.WriteString("prompt1\r\n")
	term.WriteString("\x1b]133;A\x07") // row 1
	term.WriteString("prompt2\r\n")
	term.WriteString("\x1b]133;A\x07") // row 2

	marks := term.PromptMarks()
	if len(marks) != 3 {
		t.Fatalf("expected 3 marks, got %d", len(marks))
	}
	if marks[0].Row != 0 || marks[1].Row != 1 || marks[2].Row != 2 {
		t.Errorf("unexpected rows: %+v", marks)
	}
}

func TestSemanticPromptMark_NextPromptRow(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07") // row 0
	term.WriteString("prompt1\r\n")
	term.WriteString("\x1b]133;A\x07") // row 1
	term.WriteString("prompt2\r\n")
	term.WriteString("\x1b]133;A\x07") // row 2

	if next := term.NextPromptRow(-1, SemanticPromptNone); next != 0 {
		t.Errorf("expected next prompt at row 0, got %d", next)
	}
	if next := term.NextPromptRow(0, SemanticPromptNone); next != 1 {
		t.Errorf("expected next prompt at row 1, got %d", next)
	}
	if next := term.NextPromptRow(1, SemanticPromptNone); next != 2 {
		t.Errorf("expected next prompt at row 2, got %d", next)
	}
	if next := term.NextPromptRow(2, SemanticPromptNone); next != -1 {
		t.Errorf("expected no next prompt (-1), got %d", next)
	}
}

func TestSemanticPromptMark_PrevPromptRow(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07") // row 0
	term.WriteString("prompt1\r\n")
	term.WriteString("\x1b]133;A\x07") // row 1
	term.WriteString("prompt2\r\n")
	term.WriteString("\x1b]133;A\x07") // row 2

	if prev := term.PrevPromptRow(3, SemanticPromptNone); prev != 2 {
		t.Errorf("expected prev prompt at row 2, got %d", prev)
	}
	if prev := term.PrevPromptRow(2, SemanticPromptNone); prev != 1 {
		t.Errorf("expected prev prompt at row 1, got %d", prev)
	}
	if prev := term.PrevPromptRow(1, SemanticPromptNone); prev != 0 {
		t.Errorf("expected prev prompt at row 0, got %d", prev)
	}
	if prev := term.PrevPromptRow(0, SemanticPromptNone); prev != -1 {
		t.Errorf("expected no prev prompt (-1), got %d", prev)
	}
}

func TestSemanticPromptMark_FilterByType(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07") // SemanticPromptStart at row 0
	term.WriteString("prompt\r\n")
	term.WriteString("\x1b]133;B\x07") // SemanticPromptInput at row 1
	term.WriteString("cmd\r\n")
	term.WriteString("\x1b]133;C\x07") // SemanticPromptCommand at row 2
	term.WriteString("output\r\n")
	term.WriteString("\x1b]133;A\x07") // SemanticPromptStart at row 3

	if next := term.NextPromptRow(-1, SemanticPromptStart); next != 0 {
		t.Errorf("expected next SemanticPromptStart at row 0, got %d", next)
	}
	if next := term.NextPromptRow(0, SemanticPromptStart); next != 3 {
		t.Errorf("expected next SemanticPromptStart at row 3, got %d", next)
	}
}

func TestSemanticPromptMark_ClearMarks(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("\x1b]133;B\x07")

	if term.PromptMarkCount() != 2 {
		t.Fatalf("expected 2 marks, got %d", term.PromptMarkCount())
	}

	term.ClearPromptMarks()

	if term.PromptMarkCount() != 0 {
		t.Errorf("expected 0 marks after clear, got %d", term.PromptMarkCount())
	}
}

func TestSemanticPromptMark_GetMarkAt(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07") // row 0

	mark := term.GetPromptMarkAt(0)
	if mark == nil {
		t.Fatal("expected mark at row 0, got nil")
	}
	if mark.Kind != SemanticPromptStart {
		t.Errorf("expected SemanticPromptStart, got %d", mark.Kind)
	}

	if mark := term.GetPromptMarkAt(1); mark != nil {
		t.Errorf("expected nil at row 1, got %v", mark)
	}
}

type testSemanticPromptHandler struct {
	marks []PromptMark
}

func (p *testSemanticPromptHandler) OnMark(mark PromptMark) {
	p.marks = append(p.marks, mark)
}

func TestSemanticPromptMark_Handler(t *testing.T) {
	handler := &testSemanticPromptHandler{}
	term := New(WithSize(24, 80), WithSemanticPromptHandler(handler))

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("\x1b]133;D;exit_code=42\x07")

	if len(handler.marks) != 2 {
		t.Fatalf("expected handler to receive 2 marks, got %d", len(handler.marks))
	}
	if handler.marks[0].Kind != SemanticPromptStart {
		t.Errorf("expected SemanticPromptStart, got %d", handler.marks[0].Kind)
	}
	if handler.marks[1].Kind != SemanticPromptCommand {
		t.Errorf("expected SemanticPromptCommand, got %d", handler.marks[1].Kind)
	}
	if handler.marks[1].ExitCode != 42 {
		t.Errorf("expected exit code 42, got %d", handler.marks[1].ExitCode)
	}
}

func TestSemanticPromptMark_ST_Terminator(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x1b\\")

	marks := term.PromptMarks()
	if len(marks) != 1 {
		t.Fatalf("expected 1 mark, got %d", len(marks))
	}
	if marks[0].Kind != SemanticPromptStart {
		t.Errorf("expected SemanticPromptStart, got %d", marks[0].Kind)
	}
}

func TestSemanticPromptMark_Middleware(t *testing.T) {
	var middlewareCalled bool
	var received SemanticPromptCommand

	mw := &Middleware{
		SemanticPromptMark: func(cmd SemanticPromptCommand, next func(SemanticPromptCommand)) {
			middlewareCalled = true
			received = cmd
			next(cmd)
		},
	}

	term := New(WithSize(24, 80), WithMiddleware(mw))

	term.WriteString("\x1b]133;D;exit_code=123\x07")

	if !middlewareCalled {
		t.Error("expected middleware to be called")
	}
	if received.Action != 'D' {
		t.Errorf("expected action 'D', got %q", received.Action)
	}

	if term.PromptMarkCount() != 1 {
		t.Errorf("expected 1 mark, got %d", term.PromptMarkCount())
	}
}

func TestGetLastCommandOutput_Basic(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("$ ")
	term.WriteString("\x1b]133;B\x07")
	term.WriteString("echo hello")
	term.WriteString("\r\n")
	term.WriteString("\x1b]133;C\x07")
	term.WriteString("hello\r\n")
	term.WriteString("\x1b]133;D;exit_code=0\x07")

	if output := term.GetLastCommandOutput(); output != "hello" {
		t.Errorf("expected %q, got %q", "hello", output)
	}
}

func TestGetLastCommandOutput_MultiLine(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;C\x07")
	term.WriteString("line1\r\n")
	term.WriteString("line2\r\n")
	term.WriteString("line3\r\n")
	term.WriteString("\x1b]133;D;exit_code=0\x07")

	expected := "line1\nline2\nline3"
	if output := term.GetLastCommandOutput(); output != expected {
		t.Errorf("expected %q, got %q", expected, output)
	}
}

func TestGetLastCommandOutput_NoOutput(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;C\x07")
	term.WriteString("\x1b]133;D;exit_code=0\x07")

	if output := term.GetLastCommandOutput(); output != "" {
		t.Errorf("expected empty string, got %q", output)
	}
}

func TestGetLastCommandOutput_NoMarks(t *testing.T) {
	term := New(WithSize(24, 80))

	if output := term.GetLastCommandOutput(); output != "" {
		t.Errorf("expected empty string, got %q", output)
	}
}

func TestGetLastCommandOutput_MultipleCommands(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;C\x07")
	term.WriteString("first output\r\n")
	term.WriteString("\x1b]133;D;exit_code=0\x07")

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("$ ")
	term.WriteString("\x1b]133;B\x07")
	term.WriteString("cmd2\r\n")
	term.WriteString("\x1b]133;C\x07")
	term.WriteString("second output\r\n")
	term.WriteString("\x1b]133;D;exit_code=0\x07")

	expected := "second output"
	if output := term.GetLastCommandOutput(); output != expected {
		t.Errorf("expected %q, got %q", expected, output)
	}
}

func TestGetLastCommandOutput_TrailingEmptyLines(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;C\x07")
	term.WriteString("content\r\n")
	term.WriteString("\r\n")
	term.WriteString("\r\n")
	term.WriteString("\x1b]133;D;exit_code=0\x07")

	if output := term.GetLastCommandOutput(); output != "content" {
		t.Errorf("expected %q, got %q", "content", output)
	}
}

func TestSemanticPromptMark_NextPromptRowWithScrollback(t *testing.T) {
	term := New(WithSize(5, 80), WithMaxScrollback(1<<20))

	term.WriteString("\x1b]133;A\x07") // row 0
	term.WriteString("prompt1\r\n")

	for i := 0; i < 10; i++ {
		term.WriteString("line\r\n")
	}

	term.WriteString("\x1b]133;A\x07") // row 11
	term.WriteString("prompt2\r\n")

	marks := term.PromptMarks()
	if len(marks) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(marks))
	}
	if marks[0].Row != 0 {
		t.Errorf("expected first mark at row 0, got %d", marks[0].Row)
	}
	if marks[1].Row != 11 {
		t.Errorf("expected second mark at row 11, got %d", marks[1].Row)
	}

	if next := term.NextPromptRow(-1, SemanticPromptNone); next != 0 {
		t.Errorf("expected next prompt at row 0, got %d", next)
	}
	if next := term.NextPromptRow(0, SemanticPromptNone); next != 11 {
		t.Errorf("expected next prompt at row 11, got %d", next)
	}

	if term.ScrollbackLen() == 0 {
		t.Error("expected scrollback to exist")
	}
}

func TestSemanticPromptMark_PrevPromptRowWithScrollback(t *testing.T) {
	term := New(WithSize(5, 80), WithMaxScrollback(1<<20))

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("prompt1\r\n")

	for i := 0; i < 10; i++ {
		term.WriteString("line\r\n")
	}

	term.WriteString("\x1b]133;A\x07")

	marks := term.PromptMarks()

	if prev := term.PrevPromptRow(marks[1].Row+1, SemanticPromptNone); prev != marks[1].Row {
		t.Errorf("expected prev prompt at row %d, got %d", marks[1].Row, prev)
	}
	if prev := term.PrevPromptRow(marks[1].Row, SemanticPromptNone); prev != 0 {
		t.Errorf("expected prev prompt at row 0, got %d", prev)
	}
	if prev := term.PrevPromptRow(0, SemanticPromptNone); prev != -1 {
		t.Errorf("expected no prev prompt (-1), got %d", prev)
	}
}

func TestSemanticPromptMark_GetMarkAtWithScrollback(t *testing.T) {
	term := New(WithSize(5, 80), WithMaxScrollback(1<<20))

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("prompt\r\n")

	for i := 0; i < 10; i++ {
		term.WriteString("line\r\n")
	}

	mark := term.GetPromptMarkAt(0)
	if mark == nil {
		t.Fatal("expected mark at row 0, got nil")
	}
	if mark.Kind != SemanticPromptStart {
		t.Errorf("expected SemanticPromptStart, got %d", mark.Kind)
	}

	if mark := term.GetPromptMarkAt(5); mark != nil {
		t.Errorf("expected nil at row 5, got %v", mark)
	}
}
