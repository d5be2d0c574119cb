package term

// SemanticPromptKind marks a row's role in shell-integration output
// (spec.md §3 Row "semantic_prompt marker").
type SemanticPromptKind uint8

const (
	SemanticPromptNone SemanticPromptKind = iota
	SemanticPromptStart
	SemanticPromptContinuation
	SemanticPromptInput
	SemanticPromptCommand
	SemanticPromptUnknown
)

// Row is a sequence of cells plus the soft-wrap and semantic-prompt flags
// spec.md §3 assigns per row. Invariant: row[i].Wrap ⇔ the next row's
// WrapContinuation (enforced by Page/PageList mutation sites, not here).
type Row struct {
	Cells            []Cell
	Wrap             bool
	WrapContinuation bool
	HasGrapheme      bool
	HasHyperlink     bool
	SemanticPrompt   SemanticPromptKind
	PromptOptions    map[string]string
}

func newRow(cols int) Row {
	return Row{Cells: make([]Cell, cols)}
}

// defaultPageBudget is the target byte footprint per page (spec.md §4.5:
// "default ~64 KiB").
const defaultPageBudget = 64 * 1024

const bytesPerCell = 16 // rough Cell footprint used only to size page capacity

// Page is a fixed-capacity container of rows plus the three ref-counted
// pools spec.md §3 assigns it: styles, graphemes, hyperlinks.
type Page struct {
	Cols     int
	Rows     []Row
	Styles   *refPool[Style]
	Graphemes *refPool[graphemeKey]
	Hyperlinks *refPool[Hyperlink]
	TabStops []bool
	capacity int // max rows this page will hold before a new page is started
}

// NewPage allocates a page sized so rows*cols*bytesPerCell stays near
// budget bytes (spec.md §4.5 "Allocation").
func NewPage(cols, budget int) *Page {
	if cols < 1 {
		cols = 1
	}
	if budget <= 0 {
		budget = defaultPageBudget
	}
	capacity := budget / (cols * bytesPerCell)
	if capacity < 1 {
		capacity = 1
	}
	p := &Page{
		Cols:       cols,
		Styles:     newRefPool(Style{}),
		Graphemes:  newRefPool[graphemeKey](""),
		Hyperlinks: newRefPool(Hyperlink{}),
		TabStops:   defaultTabStops(cols),
		capacity:   capacity,
	}
	return p
}

func defaultTabStops(cols int) []bool {
	stops := make([]bool, cols)
	for i := 0; i < cols; i += 8 {
		stops[i] = true
	}
	return stops
}

func (p *Page) Full() bool { return len(p.Rows) >= p.capacity }

// AppendRow adds a blank row, allocating a fresh row slice of p.Cols cells.
func (p *Page) AppendRow() *Row {
	p.Rows = append(p.Rows, newRow(p.Cols))
	return &p.Rows[len(p.Rows)-1]
}

// ReleaseCell drops a cell's pool references before it is overwritten
// (spec.md §3 Lifecycle: "when the last cell referencing a pool entry is
// overwritten the entry is released").
func (p *Page) ReleaseCell(c *Cell) {
	if c.StyleID != 0 {
		p.Styles.Release(c.StyleID)
	}
	if c.HasFlag(CellFlagHasGrapheme) {
		p.Graphemes.Release(c.Grapheme)
	}
	if c.HasFlag(CellFlagHasHyperlink) {
		p.Hyperlinks.Release(c.Hyperlink)
	}
}

// SetCell overwrites *c, releasing its old pool refs and interning the new
// style/grapheme/hyperlink.
func (p *Page) SetCell(c *Cell, ch rune, wide WideState, style Style, hyperlink *Hyperlink, extraRunes []rune, protected bool) {
	p.ReleaseCell(c)
	c.Char = ch
	c.Wide = wide
	c.StyleID = p.Styles.Intern(style)
	c.Flags = 0
	if protected {
		c.SetFlag(CellFlagProtected)
	}
	if len(extraRunes) > 0 {
		c.Grapheme = p.Graphemes.Intern(string(extraRunes))
		c.SetFlag(CellFlagHasGrapheme)
	} else {
		c.Grapheme = 0
	}
	if hyperlink != nil {
		c.Hyperlink = p.Hyperlinks.Intern(*hyperlink)
		c.SetFlag(CellFlagHasHyperlink)
	} else {
		c.Hyperlink = 0
	}
	c.MarkDirty()
}

// BytesUsed estimates the page's current footprint for PageList eviction
// accounting (spec.md §3 "a configurable max_size bounds total bytes").
func (p *Page) BytesUsed() int {
	return len(p.Rows)*p.Cols*bytesPerCell +
		len(p.Styles.values)*32 +
		len(p.Hyperlinks.values)*64 +
		len(p.Graphemes.values)*16
}
