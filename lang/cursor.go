package lang

// cursor reads source text one character at a time, tracking the 1-based
// line and column of the next unread character.
type cursor struct {
	src  []rune
	pos  int
	line int
	col  int
}

func newCursor(s string) cursor {
	return cursor{src: []rune(s), line: 1, col: 1}
}

// position is a saved cursor location.
type position struct {
	pos, line, col int
}

func (c *cursor) eof() bool {
	return c.pos >= len(c.src)
}

// peek returns the next character without consuming it, or 0 at end of input.
func (c *cursor) peek() rune {
	return c.peekAt(0)
}

// peek2 returns the character after the next one, or 0.
func (c *cursor) peek2() rune {
	return c.peekAt(1)
}

func (c *cursor) peekAt(n int) rune {
	if c.pos+n >= len(c.src) {
		return 0
	}

	return c.src[c.pos+n]
}

// at reports whether the next character is ch.
func (c *cursor) at(ch rune) bool {
	return !c.eof() && c.src[c.pos] == ch
}

// atString reports whether the input continues with s.
func (c *cursor) atString(s string) bool {
	i := 0
	for _, r := range s {
		if c.peekAt(i) != r {
			return false
		}

		i++
	}

	return true
}

// bump consumes and returns the next character.
func (c *cursor) bump() rune {
	if c.eof() {
		return 0
	}

	r := c.src[c.pos]
	c.pos++

	if r == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}

	return r
}

// bumpN consumes n characters.
func (c *cursor) bumpN(n int) {
	for range n {
		c.bump()
	}
}

// skipWS consumes spaces, tabs, carriage returns and newlines.
func (c *cursor) skipWS() {
	for !c.eof() && isWS(c.src[c.pos]) {
		c.bump()
	}
}

// skipLineWS consumes spaces and tabs, stopping at a newline.
func (c *cursor) skipLineWS() {
	for !c.eof() && isLineWS(c.src[c.pos]) {
		c.bump()
	}
}

func (c *cursor) mark() position {
	return position{pos: c.pos, line: c.line, col: c.col}
}

func (c *cursor) reset(p position) {
	c.pos, c.line, c.col = p.pos, p.line, p.col
}

// slice returns the source text between a mark and the current position.
func (c *cursor) slice(from position) string {
	return string(c.src[from.pos:c.pos])
}

func isWS(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isLineWS(r rune) bool {
	return r == ' ' || r == '\t'
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || isDigit(r) || r == '-'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
