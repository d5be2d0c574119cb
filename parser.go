package term

import "unicode/utf8"

// ActionKind tags the variant carried by an Action (spec.md §4.1, §9
// "Tagged-union dispatch over virtual methods").
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionPrint
	ActionExecute
	ActionCSIDispatch
	ActionESCDispatch
	ActionOSCStart
	ActionOSCPut
	ActionOSCEnd
	ActionDCSHook
	ActionDCSPut
	ActionDCSUnhook
	ActionAPCStart
	ActionAPCPut
	ActionAPCEnd
)

// Terminator classifies how an OSC/DCS/APC string sequence ended.
type Terminator uint8

const (
	TerminatorNone Terminator = iota
	TerminatorBEL
	TerminatorST
)

// maxCSIParams, maxIntermediates, maxSubParams mirror spec.md §4.1 "Limits":
// at most 16 params, 2 intermediates; each sub-param list fits a uint16.
const (
	maxCSIParams     = 16
	maxIntermediates = 2
	maxSubParams     = 8
	defaultOSCCap    = 1 << 20 // 1 MiB, spec.md §4.1
	defaultDCSCap    = 1 << 16
)

// CSIDispatch carries a fully-parsed CSI final byte (spec.md §4.1).
type CSIDispatch struct {
	Intermediates []byte
	Params        [][]uint16 // one slice per ';'-separated param; ':' adds sub-params
	Final         byte
	PrivateMarker byte // leading '?', '<', '=', '>', or 0 if none
}

// Private reports whether a leading private marker ('?', '<', '=', '>') was
// present, regardless of which one.
func (c CSIDispatch) Private() bool { return c.PrivateMarker != 0 }

// ESCDispatch carries a fully-parsed non-CSI escape sequence.
type ESCDispatch struct {
	Intermediates []byte
	Final         byte
}

// Action is the tagged union the Parser emits (spec.md §4.1).
type Action struct {
	Kind       ActionKind
	Rune       rune
	Byte       byte
	CSI        CSIDispatch
	ESC        ESCDispatch
	OSCByte    byte
	Payload    []byte
	Terminator Terminator
}

type parserState uint8

const (
	stateGround parserState = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateDCSEntry
	stateDCSParam
	stateDCSIntermediate
	stateDCSPassthrough
	stateDCSIgnore
	stateOSCString
	stateAPCString
	stateSOSPMAPCString
)

// Parser is a byte-at-a-time DFA over the ECMA-48/VT500-family state set
// (spec.md §4.1). It never fails: unrecognized input is absorbed by an
// ignore state and discarded until the next final byte or string terminator.
type Parser struct {
	state parserState

	intermediates []byte
	private       byte
	params        [][]uint16
	curSub        []uint16

	oscBuf   []byte
	oscCap   int
	dcsBuf   []byte
	dcsCap   int

	utf8Pending []byte // partial multi-byte UTF-8 sequence carried across Feed calls

	pendingDCSUnhook bool // saw ESC while in dcs_passthrough; next '\' completes ST
	pendingOSCUnhook bool // saw ESC while in osc_string/apc_string/sos_pm; next '\' completes ST
	stringKind       byte // ']' (OSC), '_' (APC), '^' (PM), 'X' (SOS) — which string is open
}

// NewParser returns a Parser ready to consume bytes from stateGround.
func NewParser() *Parser {
	return &Parser{oscCap: defaultOSCCap, dcsCap: defaultDCSCap}
}

// Feed advances the DFA by an entire byte slice, returning every Action
// produced. Safe to call repeatedly across read chunks.
func (p *Parser) Feed(data []byte) []Action {
	var out []Action
	emit := func(a Action) { out = append(out, a) }
	for _, b := range data {
		p.advance(b, emit)
	}
	return out
}

func (p *Parser) resetIntermediates() {
	p.intermediates = p.intermediates[:0]
	p.private = 0
	p.params = nil
	p.curSub = nil
}

func (p *Parser) pushParamByte(b byte) {
	if len(p.curSub) == 0 {
		p.curSub = append(p.curSub, 0)
	}
	last := len(p.curSub) - 1
	v := p.curSub[last]
	if v < 6553 { // avoid overflow past spec's 65535 cap
		v = v*10 + uint16(b-'0')
	}
	p.curSub[last] = v
}

func (p *Parser) endParam(sub bool) {
	if sub {
		if len(p.curSub) < maxSubParams {
			p.curSub = append(p.curSub, 0)
		}
		return
	}
	if p.curSub == nil {
		p.curSub = []uint16{0}
	}
	if len(p.params) < maxCSIParams {
		p.params = append(p.params, p.curSub)
	}
	p.curSub = nil
}

func (p *Parser) finishParams() {
	if p.curSub != nil || len(p.params) == 0 {
		p.endParam(false)
	}
}

// advance processes one byte, appending any produced Actions via emit.
func (p *Parser) advance(b byte, emit func(Action)) {
	switch p.state {
	case stateGround:
		p.advanceGround(b, emit)
	case stateEscape:
		p.advanceEscape(b, emit)
	case stateEscapeIntermediate:
		p.advanceEscapeIntermediate(b, emit)
	case stateCSIEntry, stateCSIParam:
		p.advanceCSI(b, emit)
	case stateCSIIntermediate:
		p.advanceCSIIntermediate(b, emit)
	case stateCSIIgnore:
		p.advanceCSIIgnore(b, emit)
	case stateDCSEntry, stateDCSParam:
		p.advanceDCSHead(b, emit)
	case stateDCSIntermediate:
		p.advanceDCSIntermediate(b, emit)
	case stateDCSPassthrough:
		p.advanceDCSPassthrough(b, emit)
	case stateDCSIgnore:
		p.advanceDCSIgnore(b, emit)
	case stateOSCString:
		p.advanceOSC(b, emit)
	case stateAPCString, stateSOSPMAPCString:
		p.advanceAPC(b, emit)
	}
}

func isC0(b byte) bool { return b < 0x20 || b == 0x7f }

func (p *Parser) advanceGround(b byte, emit func(Action)) {
	switch {
	case b == 0x1b:
		p.state = stateEscape
		p.resetIntermediates()
	case isC0(b):
		emit(Action{Kind: ActionExecute, Byte: b})
	case b < 0x80:
		emit(Action{Kind: ActionPrint, Rune: rune(b)})
	default:
		p.feedUTF8(b, emit)
	}
}

// feedUTF8 assembles a multi-byte UTF-8 codepoint across calls, emitting
// U+FFFD and resynchronizing on malformed input (spec.md §4.1 "UTF-8").
func (p *Parser) feedUTF8(b byte, emit func(Action)) {
	p.utf8Pending = append(p.utf8Pending, b)
	r, size := utf8.DecodeRune(p.utf8Pending)
	if r == utf8.RuneError && size <= 1 {
		if utf8.FullRune(p.utf8Pending) || len(p.utf8Pending) >= utf8.UTFMax {
			emit(Action{Kind: ActionPrint, Rune: utf8.RuneError})
			p.utf8Pending = p.utf8Pending[:0]
		}
		return
	}
	if size == len(p.utf8Pending) {
		emit(Action{Kind: ActionPrint, Rune: r})
		p.utf8Pending = p.utf8Pending[:0]
	}
}

func (p *Parser) advanceEscape(b byte, emit func(Action)) {
	if p.pendingDCSUnhook {
		p.pendingDCSUnhook = false
		if b == '\\' {
			p.unhookDCS(emit)
			p.state = stateGround
			return
		}
		// Not a real ST; fall through and treat the ESC we swallowed as
		// having ended the passthrough anyway (never fails the stream).
		p.unhookDCS(emit)
	}
	if p.pendingOSCUnhook {
		p.pendingOSCUnhook = false
		term := TerminatorNone
		if b == '\\' {
			term = TerminatorST
		}
		p.emitStringEnd(term, emit)
		if b == '\\' {
			p.state = stateGround
			return
		}
	}
	switch {
	case b == 0x1b:
		return
	case isC0(b):
		emit(Action{Kind: ActionExecute, Byte: b})
	case b == '[':
		p.state = stateCSIEntry
		p.resetIntermediates()
	case b == ']':
		p.state = stateOSCString
		p.stringKind = ']'
		p.oscBuf = p.oscBuf[:0]
		emit(Action{Kind: ActionOSCStart})
	case b == 'P':
		p.state = stateDCSEntry
		p.resetIntermediates()
	case b == '_' || b == '^' || b == 'X':
		p.state = stateSOSPMAPCString
		p.stringKind = b
		p.oscBuf = p.oscBuf[:0]
		if b == '_' {
			emit(Action{Kind: ActionAPCStart})
		}
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateEscapeIntermediate
	case b >= 0x30 && b <= 0x7e:
		emit(Action{Kind: ActionESCDispatch, ESC: ESCDispatch{Intermediates: append([]byte(nil), p.intermediates...), Final: b}})
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *Parser) advanceEscapeIntermediate(b byte, emit func(Action)) {
	switch {
	case isC0(b):
		emit(Action{Kind: ActionExecute, Byte: b})
	case b >= 0x20 && b <= 0x2f:
		if len(p.intermediates) < maxIntermediates {
			p.intermediates = append(p.intermediates, b)
		}
	case b >= 0x30 && b <= 0x7e:
		emit(Action{Kind: ActionESCDispatch, ESC: ESCDispatch{Intermediates: append([]byte(nil), p.intermediates...), Final: b}})
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *Parser) advanceCSI(b byte, emit func(Action)) {
	switch {
	case isC0(b):
		emit(Action{Kind: ActionExecute, Byte: b})
	case b >= '0' && b <= '9':
		p.pushParamByte(b)
		p.state = stateCSIParam
	case b == ':':
		p.endParam(true)
		p.state = stateCSIParam
	case b == ';':
		p.endParam(false)
		p.state = stateCSIParam
	case b == '?' || b == '<' || b == '=' || b == '>':
		p.private = b
		p.state = stateCSIParam
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.dispatchCSI(b, emit)
	default:
		p.state = stateCSIIgnore
	}
}

func (p *Parser) advanceCSIIntermediate(b byte, emit func(Action)) {
	switch {
	case isC0(b):
		emit(Action{Kind: ActionExecute, Byte: b})
	case b >= 0x20 && b <= 0x2f:
		if len(p.intermediates) < maxIntermediates {
			p.intermediates = append(p.intermediates, b)
		}
	case b >= 0x40 && b <= 0x7e:
		p.dispatchCSI(b, emit)
	default:
		p.state = stateCSIIgnore
	}
}

func (p *Parser) advanceCSIIgnore(b byte, emit func(Action)) {
	if isC0(b) {
		emit(Action{Kind: ActionExecute, Byte: b})
		return
	}
	if b >= 0x40 && b <= 0x7e {
		p.state = stateGround
	}
}

func (p *Parser) dispatchCSI(final byte, emit func(Action)) {
	p.finishParams()
	emit(Action{Kind: ActionCSIDispatch, CSI: CSIDispatch{
		Intermediates: append([]byte(nil), p.intermediates...),
		Params:        p.params,
		Final:         final,
		PrivateMarker: p.private,
	}})
	p.state = stateGround
}

func (p *Parser) advanceDCSHead(b byte, emit func(Action)) {
	switch {
	case isC0(b):
		// swallowed in DCS header per VT500 table
	case b >= '0' && b <= '9':
		p.pushParamByte(b)
		p.state = stateDCSParam
	case b == ':':
		p.endParam(true)
	case b == ';':
		p.endParam(false)
		p.state = stateDCSParam
	case b == '?' || b == '<' || b == '=' || b == '>':
		p.private = b
	case b >= 0x20 && b <= 0x2f:
		p.intermediates = append(p.intermediates, b)
		p.state = stateDCSIntermediate
	case b >= 0x40 && b <= 0x7e:
		p.enterDCSPassthrough(b, emit)
	default:
		p.state = stateDCSIgnore
	}
}

func (p *Parser) advanceDCSIntermediate(b byte, emit func(Action)) {
	switch {
	case isC0(b):
	case b >= 0x20 && b <= 0x2f:
		if len(p.intermediates) < maxIntermediates {
			p.intermediates = append(p.intermediates, b)
		}
	case b >= 0x40 && b <= 0x7e:
		p.enterDCSPassthrough(b, emit)
	default:
		p.state = stateDCSIgnore
	}
}

func (p *Parser) enterDCSPassthrough(final byte, emit func(Action)) {
	p.finishParams()
	p.dcsBuf = p.dcsBuf[:0]
	emit(Action{Kind: ActionDCSHook, CSI: CSIDispatch{
		Intermediates: append([]byte(nil), p.intermediates...),
		Params:        p.params,
		Final:         final,
		PrivateMarker: p.private,
	}})
	p.state = stateDCSPassthrough
}

func (p *Parser) advanceDCSPassthrough(b byte, emit func(Action)) {
	if b == 0x1b {
		p.state = stateEscape // may be ST (ESC \); ambiguous with a bare ESC, resolved in escape state below
		p.pendingDCSUnhook = true
		return
	}
	if b == 0x18 || b == 0x1a {
		p.unhookDCS(emit)
		p.state = stateGround
		return
	}
	if len(p.dcsBuf) < p.dcsCap {
		p.dcsBuf = append(p.dcsBuf, b)
		emit(Action{Kind: ActionDCSPut, Payload: p.dcsBuf[len(p.dcsBuf)-1:]})
	}
}

func (p *Parser) unhookDCS(emit func(Action)) {
	emit(Action{Kind: ActionDCSUnhook, Payload: append([]byte(nil), p.dcsBuf...)})
}

func (p *Parser) advanceDCSIgnore(b byte, emit func(Action)) {
	if b == 0x1b || b == 0x9c {
		p.state = stateGround
	}
}

func (p *Parser) advanceOSC(b byte, emit func(Action)) {
	switch {
	case b == 0x07:
		p.emitStringEnd(TerminatorBEL, emit)
		p.state = stateGround
	case b == 0x1b:
		p.state = stateEscape
		p.pendingOSCUnhook = true
	case b == 0x18 || b == 0x1a:
		p.emitStringEnd(TerminatorNone, emit)
		p.state = stateGround
	default:
		if len(p.oscBuf) < p.oscCap {
			p.oscBuf = append(p.oscBuf, b)
			emit(Action{Kind: ActionOSCPut, OSCByte: b})
		}
	}
}

func (p *Parser) advanceAPC(b byte, emit func(Action)) {
	switch {
	case b == 0x1b:
		p.state = stateEscape
		p.pendingOSCUnhook = true
	case b == 0x18 || b == 0x1a:
		p.emitStringEnd(TerminatorNone, emit)
		p.state = stateGround
	default:
		if len(p.oscBuf) < p.oscCap {
			p.oscBuf = append(p.oscBuf, b)
			if p.stringKind == '_' {
				emit(Action{Kind: ActionAPCPut, OSCByte: b})
			}
		}
	}
}

// emitStringEnd closes whichever OSC/APC/PM/SOS string is currently open,
// using the Kind matching p.stringKind. PM and SOS strings (spec.md §4.1
// sos_pm_apc_string) are reported as APCEnd with their raw kind byte
// ('^' or 'X') carried in OSCByte; only APC (kitty graphics)
// and OSC carry a dedicated Action variant in spec.md §4.1.
func (p *Parser) emitStringEnd(term Terminator, emit func(Action)) {
	payload := append([]byte(nil), p.oscBuf...)
	switch p.stringKind {
	case ']':
		emit(Action{Kind: ActionOSCEnd, Payload: payload, Terminator: term})
	default:
		emit(Action{Kind: ActionAPCEnd, Payload: payload, Terminator: term, OSCByte: p.stringKind})
	}
}
