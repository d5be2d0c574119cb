package term

import "testing"

func TestWorkingDirectory_Basic(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]7;file://localhost/home/user\x07")

	path := term.WorkingDirectory()
	expected := "/home/user"
	if path != expected {
		t.Errorf("expected %q, got %q", expected, path)
	}
}

func TestWorkingDirectory_STTerminator(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]7;file://myhost/var/log\x1b\\")

	path := term.WorkingDirectory()
	expected := "/var/log"
	if path != expected {
		t.Errorf("expected %q, got %q", expected, path)
	}
}

func TestWorkingDirectory_Multiple(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]7;file://localhost/home/user\x07")
	if path := term.WorkingDirectory(); path != "/home/user" {
		t.Errorf("expected /home/user, got %q", path)
	}

	term.WriteString("\x1b]7;file://localhost/tmp\x07")
	if path := term.WorkingDirectory(); path != "/tmp" {
		t.Errorf("expected /tmp, got %q", path)
	}
}

func TestWorkingDirectory_NotSet(t *testing.T) {
	term := New(WithSize(24, 80))

	if path := term.WorkingDirectory(); path != "" {
		t.Errorf("expected empty string, got %q", path)
	}
}

func TestWorkingDirectory_EmptyHostname(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]7;file:///home/user\x07")

	path := term.WorkingDirectory()
	expected := "/home/user"
	if path != expected {
		t.Errorf("expected %q, got %q", expected, path)
	}
}

func TestWorkingDirectory_Middleware(t *testing.T) {
	var middlewareCalled bool
	var receivedPath string

	mw := &Middleware{
		SetWorkingDirectory: func(path string, next func(string)) {
			middlewareCalled = true
			receivedPath = path
			next(path)
		},
	}

	term := New(WithSize(24, 80), WithMiddleware(mw))

	term.WriteString("\x1b]7;file://localhost/test\x07")

	if !middlewareCalled {
		t.Error("expected middleware to be called")
	}
	if receivedPath != "/test" {
		t.Errorf("expected /test, got %q", receivedPath)
	}
	if term.WorkingDirectory() != "/test" {
		t.Errorf("expected working directory to be set")
	}
}
