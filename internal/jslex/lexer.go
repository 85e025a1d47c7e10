// Package jslex tokenizes JavaScript and TypeScript well enough for
// statement-level analysis and expression rewriting. It builds no AST.
package jslex

import (
	"vuecore/internal/diag"
	"vuecore/internal/source"
)

// Options configures diagnostics; offsets reported are Base + local offset.
type Options struct {
	Reporter diag.Reporter // может быть nil - тогда ошибки игнорируем
	File     source.FileID
	Base     uint32
}

type Lexer struct {
	cursor Cursor
	opts   Options
	look   *Token   // 1 элементный буфер для токена
	hold   []Trivia // накопленные leading trivia
	prev   Token    // last significant token, for the regex heuristic
	braces []int    // open '{' count per active template substitution
}

func New(src string, opts Options) *Lexer {
	return &Lexer{cursor: Cursor{Src: src}, opts: opts}
}

// Tokenize returns every significant token including the final EOF.
func Tokenize(src string, opts Options) []Token {
	lx := New(src, opts)
	out := make([]Token, 0, len(src)/4+1)
	for {
		tok := lx.Next()
		out = append(out, tok)
		if tok.Kind == EOF {
			return out
		}
	}
}

// Next returns the next significant token with its leading trivia.
// After EOF it keeps returning EOF.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	lx.collectLeadingTrivia()
	if lx.cursor.EOF() {
		return Token{Kind: EOF, Start: lx.cursor.Off, End: lx.cursor.Off, Leading: lx.takeHold()}
	}

	ch := lx.cursor.Peek()
	var tok Token
	switch {
	case ch == '`':
		lx.cursor.Bump()
		tok = lx.scanTemplate(lx.cursor.Off-1, true)
	case ch == '}' && len(lx.braces) > 0 && lx.braces[len(lx.braces)-1] == 0:
		lx.braces = lx.braces[:len(lx.braces)-1]
		lx.cursor.Bump()
		tok = lx.scanTemplate(lx.cursor.Off-1, false)
	case isIdentStart(ch) || ch >= 0x80 || ch == '\\':
		tok = lx.scanIdent()
	case ch == '#' && isIdentStart(lx.cursor.PeekAt(1)):
		m := lx.cursor.Mark()
		lx.cursor.Bump()
		lx.scanIdent()
		tok = Token{Kind: PrivateName, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
	case isDec(ch) || (ch == '.' && isDec(lx.cursor.PeekAt(1))):
		tok = lx.scanNumber()
	case ch == '"' || ch == '\'':
		tok = lx.scanString(ch)
	case ch == '/' && lx.regexAllowed():
		tok = lx.scanRegex()
	default:
		tok = lx.scanPunct()
	}
	tok.Leading = lx.takeHold()
	lx.prev = tok
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) takeHold() []Trivia {
	h := lx.hold
	lx.hold = nil
	return h
}

func (lx *Lexer) regexAllowed() bool {
	p := lx.prev
	switch p.Kind {
	case EOF: // начало ввода
		return true
	case Ident:
		_, ok := regexAfterWord[p.Text]
		return ok
	case Number, String, Template, TemplateTail, Regex, PrivateName:
		return false
	case Punct:
		switch p.Text {
		case ")", "]", "}", "++", "--":
			return false
		}
		return true
	}
	return true
}

func (lx *Lexer) report(code diag.Code, start, end int, msg string) {
	if lx.opts.Reporter == nil {
		return
	}
	sp := source.Span{
		File:  lx.opts.File,
		Start: lx.opts.Base + source.Offset(start),
		End:   lx.opts.Base + source.Offset(end),
	}
	diag.ReportError(lx.opts.Reporter, code, sp, msg).Emit()
}
