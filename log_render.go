// log_render.go - Bottom-up multi-column layout of the log onto a surface

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/FrameLog
License: GPLv3 or later
*/

package main

const columnPadding = 5

// surface is the destination of one render pass.
type surface struct {
	pix    []byte
	width  int
	height int
	stride int
	cpp    int
	format PixelFormat
}

func (s *surface) offset(x, y int) int {
	return y*s.stride + x*s.cpp
}

// clear fills a rectangle with black after clipping it to the surface.
func (s *surface) clear(x, y, w, h int) {
	if x < 0 {
		w += x
		x = 0
	}
	if y < 0 {
		h += y
		y = 0
	}
	if x+w > s.width {
		w = s.width - x
	}
	if y+h > s.height {
		h = s.height - y
	}
	if w <= 0 || h <= 0 {
		return
	}
	clearRect(s.pix, s.offset(x, y), w, h, s.stride, s.cpp, s.format)
}

// message is a run of physical lines ending at a line without the
// continuation flag, found by walking backwards from newest.
type message struct {
	newest int
	lines  int
	length int
}

type rowResult int

const (
	rowDrawn rowResult = iota
	rowScreenFull
	rowStarved
)

// layoutCursor carries the render pass state. Columns are counted from the
// right and rows from the bottom of each column.
type layoutCursor struct {
	columns     int
	charsPerRow int
	colWidth    int
	colOffset   int
	rowsPerCol  int
	screenRows  int

	linesRead int
	logPos    int
	rowsDone  int
	col       int
	colRow    int
}

func newLayoutCursor(s *logStore, f *Font, surf *surface, columns int) layoutCursor {
	c := layoutCursor{columns: columns}
	colWidth := (surf.width - columnPadding*(columns-1)) / columns
	if colWidth < 0 {
		colWidth = 0
	}
	c.charsPerRow = colWidth / f.Width
	c.colWidth = c.charsPerRow * f.Width
	c.colOffset = c.colWidth + columnPadding
	c.rowsPerCol = surf.height / f.Height
	c.screenRows = c.rowsPerCol * columns
	c.logPos = int(s.pos.Load())
	return c
}

// nextMessage collects the next older message. It returns false once every
// line of the store has been consumed.
func (c *layoutCursor) nextMessage(s *logStore) (message, bool) {
	m := message{newest: c.logPos}
	for c.linesRead < s.height {
		slot := c.logPos
		c.linesRead++
		c.logPos--
		if c.logPos < 0 {
			c.logPos = s.height - 1
		}
		n, cont := s.lines[slot].load()
		m.length += n
		m.lines++
		if !cont {
			break
		}
	}
	return m, m.lines > 0
}

// rowOrigin is the top-left pixel of the row the cursor points at.
func (c *layoutCursor) rowOrigin(f *Font) (int, int) {
	x := (c.columns - c.col - 1) * c.colOffset
	y := (c.rowsPerCol - c.colRow - 1) * f.Height
	return x, y
}

// nextRow moves one row up, wrapping to the column on the left. It returns
// false when the screen is full.
func (c *layoutCursor) nextRow() bool {
	c.rowsDone++
	c.colRow++
	if c.colRow >= c.rowsPerCol {
		c.colRow = 0
		c.col++
	}
	return c.rowsDone < c.screenRows
}

// glyphSource yields the characters of a message from last to first. The
// number of lines bounds the walk so a slot overwritten mid-render cannot
// pull in unrelated lines.
type glyphSource struct {
	store *logStore
	slot  int
	lines int
	pos   int
}

func newGlyphSource(s *logStore, m message) glyphSource {
	return glyphSource{store: s, slot: m.newest, lines: m.lines, pos: s.lines[m.newest].length()}
}

func (g *glyphSource) prev() (byte, bool) {
	for g.pos == 0 {
		g.lines--
		if g.lines <= 0 {
			return 0, false
		}
		g.slot--
		if g.slot < 0 {
			g.slot = g.store.height - 1
		}
		g.pos = g.store.lines[g.slot].length()
	}
	g.pos--
	return g.store.lines[g.slot].cell(g.pos), true
}

// drawRow fills the current row right to left from src. The first row of a
// message (its last text row) is padded with blanks on the right when the
// text does not reach the end of the row.
func (c *layoutCursor) drawRow(src *glyphSource, f *Font, surf *surface, blanks int) rowResult {
	x, y := c.rowOrigin(f)
	if blanks > 0 {
		surf.clear(x+(c.charsPerRow-blanks)*f.Width, y, blanks*f.Width, f.Height)
	}
	for l := blanks; l < c.charsPerRow; l++ {
		ch, ok := src.prev()
		if !ok {
			return rowStarved
		}
		cx := x + (c.charsPerRow-l-1)*f.Width
		surf.clear(cx, y, f.Width, f.Height)
		drawGlyph(f, ch, surf.pix, surf.offset(cx, y), surf.stride, surf.cpp, surf.format)
	}
	if !c.nextRow() {
		return rowScreenFull
	}
	return rowDrawn
}

func (c *layoutCursor) drawMessage(s *logStore, m message, f *Font, surf *surface) rowResult {
	rows := (m.length + c.charsPerRow - 1) / c.charsPerRow
	blanks := 0
	if over := m.length % c.charsPerRow; over > 0 {
		blanks = c.charsPerRow - over
	}
	src := newGlyphSource(s, m)
	for range rows {
		if r := c.drawRow(&src, f, surf, blanks); r != rowDrawn {
			return r
		}
		blanks = 0
	}
	return rowDrawn
}

// finish blanks every pixel the pass did not draw: the rest of a partly
// filled column, columns never reached, the right and bottom margins and
// the gaps between columns.
func (c *layoutCursor) finish(f *Font, surf *surface) {
	if c.colRow > 0 && c.col < c.columns {
		x := (c.columns - c.col - 1) * c.colOffset
		surf.clear(x, 0, c.colWidth, (c.rowsPerCol-c.colRow)*f.Height)
		c.colRow = 0
		c.col++
	}
	if c.col < c.columns {
		surf.clear(0, 0, (c.columns-c.col)*c.colOffset, surf.height)
	}
	if used := c.columns*c.colOffset - columnPadding; used < surf.width {
		surf.clear(used, 0, surf.width-used, surf.height)
	}
	if bottom := c.rowsPerCol * f.Height; bottom < surf.height {
		surf.clear(0, bottom, surf.width, surf.height-bottom)
	}
	for k := 1; k < c.columns; k++ {
		surf.clear(k*c.colOffset-columnPadding, 0, columnPadding, surf.height)
	}
}

// renderLog lays the newest messages out bottom-up, right column first. It
// returns false when a message ran out of characters before its rows were
// filled, which means a writer overtook the pass; the surface is still
// finalised so stale pixels do not survive.
func renderLog(s *logStore, f *Font, surf *surface, columns int) bool {
	c := newLayoutCursor(s, f, surf, columns)
	complete := true
	if c.charsPerRow > 0 {
		for c.rowsDone < c.screenRows {
			m, ok := c.nextMessage(s)
			if !ok {
				break
			}
			r := c.drawMessage(s, m, f, surf)
			if r == rowStarved {
				complete = false
				break
			}
			if r == rowScreenFull {
				break
			}
		}
	}
	c.finish(f, surf)
	return complete
}
