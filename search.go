package term

import "bytes"

// searchSpan is one row's contribution to a SlidingWindow: the page node it
// came from (so a match can be turned back into a Pin) and a byte-index to
// cell-coordinate map (spec.md §4.6 "metadata circular buffer of
// {page-node pointer, cell_map}"). Kept at row granularity rather than
// whole-page granularity — simpler to build incrementally and the node
// pointer alone is enough for eviction to mark every span from it garbage.
type searchSpan struct {
	node    *pageNode
	cellMap []Point // cellMap[i] = (row, col) for data byte i of this span
}

// SlidingWindow is an incremental substring search engine over page
// contents with bounded memory (spec.md §4.6). Rows are appended as they
// become available; next() reports one match at a time and, once a scan of
// the whole buffer finds nothing, prunes everything but the trailing
// needle.len-1 bytes so a match straddling the next append is never missed.
//
// This keeps the teacher-idiom of a flat growable buffer (cf. `buffer.go`'s
// append-and-compact row storage) rather than the reference implementation's
// fixed-capacity ring with a manual two-slice overlap scan: bytes.Index over
// a periodically-compacted slice gives the same bounded-memory guarantee
// with far less bookkeeping, at the cost of one compaction copy per drained
// scan instead of zero.
type SlidingWindow struct {
	data       []byte
	meta       []searchSpan
	dataOffset int
	needle     []byte
	reverse    bool
}

// NewSlidingWindow builds a window for needle. Reverse windows store their
// needle, and every appended row's bytes and cell map, reversed, so next()
// can always scan forward (spec.md §4.6 "Reverse search differs only in
// that inputs are reversed before insertion; result pins are swapped").
func NewSlidingWindow(needle string, reverse bool) *SlidingWindow {
	n := []byte(needle)
	if reverse {
		reverseBytes(n)
	}
	return &SlidingWindow{needle: n, reverse: reverse}
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func reversePoints(p []Point) {
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
}

// AppendRow encodes one row's plain text into the window (spec.md §4.6
// "Append"). Rows that do not wrap get a trailing '\n' plus a cell-map
// entry one column past the row's text, so a forward search never merges two unrelated
// lines into one match.
func (w *SlidingWindow) AppendRow(node *pageNode, y int, row *Row) {
	text := rowPlainText(row)
	var buf []byte
	var cm []Point
	col := 0
	for _, r := range text {
		enc := []byte(string(r))
		buf = append(buf, enc...)
		for range enc {
			cm = append(cm, Point{Row: y, Col: col})
		}
		col++
	}
	if !row.Wrap {
		buf = append(buf, '\n')
		cm = append(cm, Point{Row: y, Col: col})
	}
	if w.reverse {
		reverseBytes(buf)
		reversePoints(cm)
	}
	w.data = append(w.data, buf...)
	w.meta = append(w.meta, searchSpan{node: node, cellMap: cm})
}

// Next performs one search step (spec.md §4.6 "Search step (next)"),
// returning the next match as a Selection with pins registered against pl,
// or ok=false once the window is exhausted (and compacted) without one.
func (w *SlidingWindow) Next(pl *PageList) (*Selection, bool) {
	if len(w.needle) == 0 {
		return nil, false
	}
	for len(w.data)-w.dataOffset >= len(w.needle) {
		idx := bytes.Index(w.data[w.dataOffset:], w.needle)
		if idx < 0 {
			break
		}
		start := w.dataOffset + idx
		end := start + len(w.needle)
		w.dataOffset = start + 1
		if sel, ok := w.selectionAt(pl, start, end); ok {
			return sel, true
		}
	}
	w.compact()
	return nil, false
}

// selectionAt walks meta to translate the [start,end) byte range of a match
// into a Selection (spec.md §4.6 "Selection construction"), reversing the
// start/end pins back for a reverse window so Start is always the earlier
// point in document order.
func (w *SlidingWindow) selectionAt(pl *PageList, start, end int) (*Selection, bool) {
	startPt, startNode, ok := w.locate(start)
	if !ok {
		return nil, false
	}
	endPt, endNode, ok := w.locate(end - 1)
	if !ok {
		return nil, false
	}
	startPin := &Pin{node: startNode, Y: uint16(startPt.Row), X: uint16(startPt.Col)}
	endPin := &Pin{node: endNode, Y: uint16(endPt.Row), X: uint16(endPt.Col)}
	pl.pins[startPin] = struct{}{}
	pl.pins[endPin] = struct{}{}
	if w.reverse {
		startPin, endPin = endPin, startPin
	}
	return &Selection{Start: startPin, End: endPin}, true
}

func (w *SlidingWindow) locate(byteIdx int) (Point, *pageNode, bool) {
	cum := 0
	for i := range w.meta {
		span := &w.meta[i]
		if byteIdx < cum+len(span.cellMap) {
			return span.cellMap[byteIdx-cum], span.node, true
		}
		cum += len(span.cellMap)
	}
	return Point{}, nil, false
}

// compact prunes data/meta from the front, keeping exactly needle.len-1
// trailing bytes so a future append can still complete a straddling match
// (spec.md §4.6 step 5; invariant 6 in spec.md §8 "sliding-window
// boundedness").
func (w *SlidingWindow) compact() {
	keep := len(w.needle) - 1
	if keep < 0 {
		keep = 0
	}
	if len(w.data) <= keep {
		w.dataOffset = 0
		return
	}
	drop := len(w.data) - keep
	w.data = append([]byte(nil), w.data[drop:]...)
	remaining := drop
	for remaining > 0 && len(w.meta) > 0 {
		span := &w.meta[0]
		if remaining >= len(span.cellMap) {
			remaining -= len(span.cellMap)
			w.meta = w.meta[1:]
		} else {
			span.cellMap = span.cellMap[remaining:]
			remaining = 0
		}
	}
	w.dataOffset = 0
}

// ActiveSearch is the forward searcher over the active area plus its
// needle.len-1 overlap into scrollback (spec.md §4.7). It is rebuilt from
// scratch on every reload rather than fed incrementally, matching "active
// results recomputed on each reloadActive".
type ActiveSearch struct {
	window  *SlidingWindow
	results []*Selection
}

func newActiveSearch(needle string) *ActiveSearch {
	return &ActiveSearch{window: NewSlidingWindow(needle, false)}
}

func (as *ActiveSearch) scan(pl *PageList, from, to int) {
	for abs := from; abs < to; abs++ {
		node, y := pl.rowNode(abs)
		if node == nil {
			continue
		}
		as.window.AppendRow(node, y, &node.page.Rows[y])
	}
	as.results = as.results[:0]
	for {
		sel, ok := as.window.Next(pl)
		if !ok {
			break
		}
		as.results = append(as.results, sel)
	}
}

// PageListSearch is the reverse searcher walking scrollback backward from
// the boundary the active window does not cover (spec.md §4.7). Unlike
// ActiveSearch it is fed one row at a time and keeps its results, since
// re-scanning the whole of scrollback on every step would defeat the
// "bounded memory" point of the sliding window.
type PageListSearch struct {
	window  *SlidingWindow
	nextAbs int // absolute row still to feed; -1 once exhausted
}

func newPageListSearch(needle string, boundaryAbs int) *PageListSearch {
	return &PageListSearch{window: NewSlidingWindow(needle, true), nextAbs: boundaryAbs - 1}
}

// Feed appends the next (older) row to the history window, returning false
// once scrollback is exhausted (spec.md §4.7 "feed() ... appends the next
// page to the history searcher's sliding window").
func (hs *PageListSearch) Feed(pl *PageList) bool {
	if hs.nextAbs < 0 {
		return false
	}
	node, y := pl.rowNode(hs.nextAbs)
	if node == nil {
		hs.nextAbs = -1
		return false
	}
	hs.window.AppendRow(node, y, &node.page.Rows[y])
	hs.nextAbs--
	return true
}

type screenSearchState int

const (
	searchStateActive screenSearchState = iota
	searchStateHistory
	searchStateHistoryFeed
	searchStateComplete
)

// ScreenSearch coordinates an ActiveSearch and a PageListSearch over one
// Terminal's active screen (spec.md §4.7). State machine: active → history
// → history_feed ↔ history → complete.
type ScreenSearch struct {
	term   *Terminal
	needle string

	state screenSearchState

	activeWindowStart int
	activeStartPin    *Pin
	active            *ActiveSearch

	history        *PageListSearch
	historyResults []*Selection
}

// NewScreenSearch builds a ScreenSearch for needle against t's current
// active screen and performs the first ReloadActive synchronously.
func NewScreenSearch(t *Terminal, needle string) *ScreenSearch {
	ss := &ScreenSearch{term: t, needle: needle, state: searchStateActive}
	if needle == "" {
		ss.state = searchStateComplete
		return ss
	}
	ss.ReloadActive()
	return ss
}

// ReloadActive refreshes the active-area window and, if its start has
// moved forward since the last reload, back-fills the history results over
// the newly-vacated rows (spec.md §4.7). It also observes scrollback
// eviction: if the previous window's start pin was marked garbage, all
// history state is discarded and reinitialized (spec.md §5 "Invariants
// maintained across lock drops").
func (ss *ScreenSearch) ReloadActive() {
	t := ss.term
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.activeScreen()
	pl := s.Pages

	if ss.activeStartPin != nil && ss.activeStartPin.Garbage {
		ss.history = nil
		ss.historyResults = nil
		ss.state = searchStateActive
		pl.RemovePin(ss.activeStartPin)
		ss.activeStartPin = nil
	}

	overlap := len(ss.needle) - 1
	if overlap < 0 {
		overlap = 0
	}
	windowStart := pl.ActiveStart() - overlap
	if windowStart < 0 {
		windowStart = 0
	}

	prevWindowStart := windowStart
	firstReload := ss.activeStartPin == nil
	if !firstReload {
		prevWindowStart = ss.activeWindowStart
	}

	ss.active = newActiveSearch(ss.needle)
	ss.active.scan(pl, windowStart, pl.Rows())

	if node, y := pl.rowNode(windowStart); node != nil {
		newPin := &Pin{node: node, Y: uint16(y), X: 0}
		pl.pins[newPin] = struct{}{}
		if ss.activeStartPin != nil {
			pl.RemovePin(ss.activeStartPin)
		}
		ss.activeStartPin = newPin
	}

	if windowStart > prevWindowStart && !firstReload {
		backfillStart := prevWindowStart - overlap
		if backfillStart < 0 {
			backfillStart = 0
		}
		bw := NewSlidingWindow(ss.needle, false)
		for abs := backfillStart; abs < windowStart; abs++ {
			node, y := pl.rowNode(abs)
			if node == nil {
				continue
			}
			bw.AppendRow(node, y, &node.page.Rows[y])
		}
		for {
			sel, ok := bw.Next(pl)
			if !ok {
				break
			}
			ss.historyResults = append(ss.historyResults, sel)
		}
	}
	ss.activeWindowStart = windowStart

	if ss.history == nil {
		ss.history = newPageListSearch(ss.needle, windowStart)
	}

	switch {
	case ss.history.nextAbs < 0:
		ss.state = searchStateComplete
	case ss.state == searchStateActive:
		ss.state = searchStateHistory
	}
}

// Feed advances the history searcher by one scrollback row (spec.md §4.7
// "feed() takes the lock, appends the next page to the history searcher's
// sliding window").
func (ss *ScreenSearch) Feed() {
	t := ss.term
	t.mu.Lock()
	defer t.mu.Unlock()

	if ss.history == nil || ss.state == searchStateComplete {
		return
	}
	pl := t.activeScreen().Pages
	ss.state = searchStateHistoryFeed
	if !ss.history.Feed(pl) {
		ss.state = searchStateComplete
		return
	}
	for {
		sel, ok := ss.history.window.Next(pl)
		if !ok {
			break
		}
		ss.historyResults = append(ss.historyResults, sel)
	}
	if ss.history.nextAbs < 0 {
		ss.state = searchStateComplete
	} else {
		ss.state = searchStateHistory
	}
}

// Tick reports whether the search still has history left to feed,
// lock-free (spec.md §4.7 "tick() runs lock-free"). The active window is
// fully drained synchronously inside ReloadActive, so there is no
// additional lock-free work to perform here beyond reporting completion.
func (ss *ScreenSearch) Tick() bool {
	return ss.state != searchStateComplete
}

// Done reports whether both searchers are exhausted.
func (ss *ScreenSearch) Done() bool { return ss.state == searchStateComplete }

// Matches returns active and history results concatenated, active reversed
// so the overall order runs bottom-to-top (spec.md §4.7 "matches()").
func (ss *ScreenSearch) Matches() []*Selection {
	out := make([]*Selection, 0, len(ss.active.results)+len(ss.historyResults))
	for i := len(ss.active.results) - 1; i >= 0; i-- {
		out = append(out, ss.active.results[i])
	}
	out = append(out, ss.historyResults...)
	return out
}

// ChangeNeedle tears down all search state and restarts against needle, or
// stops the search if needle is empty (spec.md §5 "Cancellation ...
// change_needle with new term, or empty to stop"). No partial results from
// the old needle leak into the new search.
func (ss *ScreenSearch) ChangeNeedle(needle string) {
	t := ss.term
	t.mu.Lock()
	if ss.activeStartPin != nil {
		t.activeScreen().Pages.RemovePin(ss.activeStartPin)
	}
	t.mu.Unlock()

	ss.needle = needle
	ss.activeWindowStart = 0
	ss.activeStartPin = nil
	ss.active = nil
	ss.history = nil
	ss.historyResults = nil

	if needle == "" {
		ss.state = searchStateComplete
		return
	}
	ss.state = searchStateActive
	ss.ReloadActive()
}
