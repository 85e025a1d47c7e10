package jslex

import (
	"unicode"
	"unicode/utf8"

	"vuecore/internal/diag"
)

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDec(b)
}

func isDec(b byte) bool { return b >= '0' && b <= '9' }

// IsIdentifierName reports whether s is a syntactically valid identifier.
func IsIdentifierName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r < utf8.RuneSelf {
			b := byte(r)
			if (i == 0 && !isIdentStart(b)) || (i > 0 && !isIdentContinue(b)) {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

func (lx *Lexer) scanIdent() Token {
	m := lx.cursor.Mark()
loop:
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case isIdentContinue(b):
			lx.cursor.Bump()
		case b == '\\' && lx.cursor.PeekAt(1) == 'u':
			// \uXXXX или \u{...}
			lx.cursor.Off += 2
			if lx.cursor.Eat('{') {
				for !lx.cursor.EOF() && lx.cursor.Bump() != '}' {
				}
			} else {
				for i := 0; i < 4 && !lx.cursor.EOF(); i++ {
					lx.cursor.Bump()
				}
			}
		case b >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(lx.cursor.Src[lx.cursor.Off:])
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\u200c' && r != '\u200d' {
				break loop
			}
			lx.cursor.Off += size
		default:
			break loop
		}
	}
	if lx.cursor.Off == int(m) {
		// одиночный непонятный символ
		_, size := utf8.DecodeRuneInString(lx.cursor.Src[lx.cursor.Off:])
		lx.cursor.Off += max(size, 1)
		lx.report(diag.ScrUnknownChar, int(m), lx.cursor.Off, "unknown character")
		return Token{Kind: Invalid, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
	}
	return Token{Kind: Ident, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
}

func (lx *Lexer) scanNumber() Token {
	m := lx.cursor.Mark()
	if lx.cursor.Peek() == '0' {
		switch lx.cursor.PeekAt(1) | 0x20 {
		case 'x', 'o', 'b':
			lx.cursor.Off += 2
			for b := lx.cursor.Peek(); isIdentContinue(b); b = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			return Token{Kind: Number, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
		}
	}
	digits := func() {
		for b := lx.cursor.Peek(); isDec(b) || b == '_'; b = lx.cursor.Peek() {
			lx.cursor.Bump()
		}
	}
	digits()
	if lx.cursor.Peek() == '.' {
		lx.cursor.Bump()
		digits()
	}
	if b := lx.cursor.Peek(); b == 'e' || b == 'E' {
		next := lx.cursor.PeekAt(1)
		if isDec(next) || ((next == '+' || next == '-') && isDec(lx.cursor.PeekAt(2))) {
			lx.cursor.Off += 2
			digits()
		}
	}
	lx.cursor.Eat('n')
	return Token{Kind: Number, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
}

func (lx *Lexer) scanString(quote byte) Token {
	m := lx.cursor.Mark()
	lx.cursor.Bump()
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			lx.report(diag.ScrUnterminatedString, int(m), lx.cursor.Off, "unterminated string literal")
			break
		}
		b := lx.cursor.Bump()
		if b == '\\' {
			lx.cursor.Bump()
			continue
		}
		if b == quote {
			break
		}
	}
	return Token{Kind: String, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
}

// scanTemplate continues a template literal whose opening '`' or closing
// '}' of a substitution is at start.
func (lx *Lexer) scanTemplate(start int, head bool) Token {
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		switch b {
		case '\\':
			lx.cursor.Bump()
		case '`':
			kind := Template
			if !head {
				kind = TemplateTail
			}
			return Token{Kind: kind, Start: start, End: lx.cursor.Off, Text: lx.cursor.Src[start:lx.cursor.Off]}
		case '$':
			if lx.cursor.Eat('{') {
				lx.braces = append(lx.braces, 0)
				kind := TemplateHead
				if !head {
					kind = TemplateMiddle
				}
				return Token{Kind: kind, Start: start, End: lx.cursor.Off, Text: lx.cursor.Src[start:lx.cursor.Off]}
			}
		}
	}
	lx.report(diag.ScrUnterminatedTemplate, start, lx.cursor.Off, "unterminated template literal")
	kind := Template
	if !head {
		kind = TemplateTail
	}
	return Token{Kind: kind, Start: start, End: lx.cursor.Off, Text: lx.cursor.Src[start:lx.cursor.Off]}
}

func (lx *Lexer) scanRegex() Token {
	m := lx.cursor.Mark()
	lx.cursor.Bump()
	inClass := false
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			lx.report(diag.ScrUnterminatedRegex, int(m), lx.cursor.Off, "unterminated regular expression")
			return Token{Kind: Regex, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
		}
		b := lx.cursor.Bump()
		switch {
		case b == '\\':
			lx.cursor.Bump()
		case b == '[':
			inClass = true
		case b == ']':
			inClass = false
		case b == '/' && !inClass:
			for isIdentContinue(lx.cursor.Peek()) {
				lx.cursor.Bump()
			}
			return Token{Kind: Regex, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
		}
	}
}

// '>' is never merged with a following '>' so nested generic argument
// lists close one bracket at a time.
var puncts = []string{
	"...", "===", "!==", "**=", "<<=", "&&=", "||=", "??=",
	"=>", "==", "!=", "<=", ">=", "&&", "||", "??", "?.", "++", "--",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "**", "<<",
}

func (lx *Lexer) scanPunct() Token {
	m := lx.cursor.Mark()
	for _, p := range puncts {
		if !lx.cursor.HasPrefix(p) {
			continue
		}
		if p == "?." && isDec(lx.cursor.PeekAt(2)) {
			continue // a?.5:b
		}
		lx.cursor.Off += len(p)
		return Token{Kind: Punct, Start: int(m), End: lx.cursor.Off, Text: p}
	}
	b := lx.cursor.Bump()
	switch b {
	case '{':
		if n := len(lx.braces); n > 0 {
			lx.braces[n-1]++
		}
	case '}':
		if n := len(lx.braces); n > 0 && lx.braces[n-1] > 0 {
			lx.braces[n-1]--
		}
	}
	return Token{Kind: Punct, Start: int(m), End: lx.cursor.Off, Text: lx.cursor.From(m)}
}
