package term

import "testing"

func TestParseSixelParams_Defaults(t *testing.T) {
	p1, p2, p3 := parseSixelParams(nil)
	if p1 != 0 || p2 != 0 || p3 != 0 {
		t.Errorf("expected all zero defaults, got (%d,%d,%d)", p1, p2, p3)
	}
}

func TestParseSixelParams_Values(t *testing.T) {
	params := [][]uint16{{1}, {0}, {8}}
	p1, p2, p3 := parseSixelParams(params)
	if p1 != 1 || p2 != 0 || p3 != 8 {
		t.Errorf("expected (1,0,8), got (%d,%d,%d)", p1, p2, p3)
	}
}

func TestParseSixelParams_PartialAndEmpty(t *testing.T) {
	params := [][]uint16{{2}, {}}
	p1, p2, p3 := parseSixelParams(params)
	if p1 != 2 || p2 != 0 || p3 != 0 {
		t.Errorf("expected (2,0,0), got (%d,%d,%d)", p1, p2, p3)
	}
}

type recordingSixelProvider struct {
	payload []byte
	hint    int
}

func (r *recordingSixelProvider) Decode(payload []byte, paletteHint int) (int, int) {
	r.payload = payload
	r.hint = paletteHint
	return 0, 0
}

func TestTerminalSixelPassthrough(t *testing.T) {
	provider := &recordingSixelProvider{}
	term := New(WithSize(24, 80), WithSixelProvider(provider))

	term.WriteString("\x1bPq#0;2;0;0;0~-\x1b\\")

	if len(provider.payload) == 0 {
		t.Fatal("expected sixel provider to receive captured DCS payload")
	}
}

func TestTerminalSixelMiddlewareObserves(t *testing.T) {
	var seen SixelPayload
	mw := &Middleware{
		SixelReceived: func(payload SixelPayload, next func(SixelPayload)) {
			seen = payload
			next(payload)
		},
	}
	term := New(WithSize(24, 80), WithMiddleware(mw))

	term.WriteString("\x1bPq~\x1b\\")

	if len(seen.Data) == 0 {
		t.Error("expected middleware to observe sixel payload")
	}
}
