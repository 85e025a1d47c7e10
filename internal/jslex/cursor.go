package jslex

// Cursor - позиция в тексте скрипта; смещения относительны началу блока.
type Cursor struct {
	Src string
	Off int
}

func (c *Cursor) EOF() bool {
	return c.Off >= len(c.Src)
}

// Peek читает текущий байт или 0 в конце.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.Src[c.Off]
}

// PeekAt читает байт со сдвигом n от текущей позиции.
func (c *Cursor) PeekAt(n int) byte {
	if c.Off+n >= len(c.Src) || c.Off+n < 0 {
		return 0
	}
	return c.Src[c.Off+n]
}

// Bump перемещает курсор на один байт вперёд и возвращает прочитанный байт.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.Src[c.Off]
	c.Off++
	return b
}

// Eat consumes b if it is next.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.Src[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// HasPrefix reports whether the remaining input starts with s.
func (c *Cursor) HasPrefix(s string) bool {
	return len(c.Src)-c.Off >= len(s) && c.Src[c.Off:c.Off+len(s)] == s
}

// Mark это метка начала читаемого фрагмента.
type Mark int

func (c *Cursor) Mark() Mark { return Mark(c.Off) }

func (c *Cursor) Reset(m Mark) { c.Off = int(m) }

// From returns the text between m and the cursor.
func (c *Cursor) From(m Mark) string { return c.Src[int(m):c.Off] }
