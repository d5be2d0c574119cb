package term

import "io"

// Every external collaborator the Terminal talks to is injected through a
// small interface defaulting to a no-op implementation (spec.md §1 "treated
// as external collaborators"), following the teacher's provider pattern.

// ResponseProvider receives response bytes (DSR/DA/OSC query replies) for
// the caller to forward back to the PTY (spec.md §6 "read_response").
type ResponseProvider = io.Writer

// NoopResponse discards all response bytes.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (int, error) { return len(p), nil }

// DebugLogger receives semantic-error diagnostics (unknown CSI final,
// unknown OSC code) per spec.md §7 "logged at debug level, ignored". Default
// is a no-op; the teacher has no logging at all, so this is the minimal
// ambient hook rather than a full logging framework.
type DebugLogger func(format string, args ...any)

func noopLogger(string, ...any) {}

// BellProvider handles BEL (0x07).
type BellProvider interface{ Ring() }

type NoopBell struct{}

func (NoopBell) Ring() {}

// TitleProvider handles OSC 0/1/2.
type TitleProvider interface {
	SetTitle(title string)
	PushTitle()
	PopTitle()
}

type NoopTitle struct{}

func (NoopTitle) SetTitle(string) {}
func (NoopTitle) PushTitle()      {}
func (NoopTitle) PopTitle()       {}

// APCProvider handles APC payloads not otherwise claimed by kitty graphics.
type APCProvider interface{ Receive(data []byte) }

type NoopAPC struct{}

func (NoopAPC) Receive([]byte) {}

// PMProvider handles Privacy Message (ESC ^ ... ST) payloads.
type PMProvider interface{ Receive(data []byte) }

type NoopPM struct{}

func (NoopPM) Receive([]byte) {}

// SOSProvider handles Start-of-String (ESC X ... ST) payloads.
type SOSProvider interface{ Receive(data []byte) }

type NoopSOS struct{}

func (NoopSOS) Receive([]byte) {}

// ClipboardProvider backs OSC 52 and 5522 (spec.md §4.2).
type ClipboardProvider interface {
	Read(clipboard byte) string
	Write(clipboard byte, data []byte)
}

type NoopClipboard struct{}

func (NoopClipboard) Read(byte) string    { return "" }
func (NoopClipboard) Write(byte, []byte)  {}

// RecordingProvider captures raw bytes before parsing, for replay/debug.
type RecordingProvider interface {
	Record(data []byte)
	Data() []byte
	Clear()
}

type NoopRecording struct{}

func (NoopRecording) Record([]byte) {}
func (NoopRecording) Data() []byte  { return nil }
func (NoopRecording) Clear()        {}

// NotificationProvider backs OSC 9 desktop notifications / ConEmu subcodes
// (spec.md §4.2 code 9). Notify may return a string (e.g. an id) that some
// callers want threaded back; unused by default.
type NotificationProvider interface {
	Notify(payload *NotificationPayload) string
}

// NotificationPayload is the decoded OSC 9 body.
type NotificationPayload struct {
	PayloadType string // "itermNotify", "conemuProgress", "conemuTabTitle", ...
	Data        []byte
}

type NoopNotification struct{}

func (NoopNotification) Notify(*NotificationPayload) string { return "" }

// SixelProvider decodes a captured DCS sixel payload into pixels. Decode
// itself is out of scope (spec.md §4.3 "Sixel passthrough is stubbed out of
// scope"); this interface is the seam where a caller-supplied decoder can
// be plugged in. Default no-op: the payload is captured and discarded.
type SixelProvider interface {
	Decode(payload []byte, paletteHint int) (width, height int)
}

type NoopSixel struct{}

func (NoopSixel) Decode([]byte, int) (int, int) { return 0, 0 }

// KittyImageDecoder turns a reassembled kitty-graphics transmission into
// pixel dimensions. Actual pixel decode is an external collaborator (spec.md
// §9 Open Question (b)); default no-op records only the byte count.
type KittyImageDecoder interface {
	Decode(data []byte, format KittyFormat) (width, height int, err error)
}

type NoopKittyImageDecoder struct{}

func (NoopKittyImageDecoder) Decode([]byte, KittyFormat) (int, int, error) { return 0, 0, nil }

var (
	_ BellProvider          = (*NoopBell)(nil)
	_ TitleProvider         = (*NoopTitle)(nil)
	_ APCProvider           = (*NoopAPC)(nil)
	_ PMProvider            = (*NoopPM)(nil)
	_ SOSProvider           = (*NoopSOS)(nil)
	_ ClipboardProvider     = (*NoopClipboard)(nil)
	_ RecordingProvider     = (*NoopRecording)(nil)
	_ NotificationProvider  = (*NoopNotification)(nil)
	_ SixelProvider         = (*NoopSixel)(nil)
	_ KittyImageDecoder     = (*NoopKittyImageDecoder)(nil)
	_ ResponseProvider      = NoopResponse{}
)
