package jslex

import "vuecore/internal/diag"

// collectLeadingTrivia собирает пробелы, переводы строк и комментарии
// перед значимым токеном. HTML-подобные "<!--" не поддерживаются.
func (lx *Lexer) collectLeadingTrivia() {
	for !lx.cursor.EOF() {
		start := lx.cursor.Mark()
		switch b := lx.cursor.Peek(); {
		case b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v':
			for b2 := lx.cursor.Peek(); b2 == ' ' || b2 == '\t' || b2 == '\r' || b2 == '\f' || b2 == '\v'; b2 = lx.cursor.Peek() {
				lx.cursor.Bump()
			}
			lx.pushTrivia(TriviaSpace, start)
		case b == '\n':
			for lx.cursor.Peek() == '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(TriviaNewline, start)
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Bump()
			}
			lx.pushTrivia(TriviaLineComment, start)
		case b == '/' && lx.cursor.PeekAt(1) == '*':
			lx.cursor.Off += 2
			closed := false
			for !lx.cursor.EOF() {
				if lx.cursor.HasPrefix("*/") {
					lx.cursor.Off += 2
					closed = true
					break
				}
				lx.cursor.Bump()
			}
			if !closed {
				lx.report(diag.ScrUnterminatedComment, int(start), lx.cursor.Off, "unterminated block comment")
			}
			lx.pushTrivia(TriviaBlockComment, start)
		case b == 0xEF && lx.cursor.HasPrefix("\uFEFF"):
			lx.cursor.Off += 3
			lx.pushTrivia(TriviaSpace, start)
		default:
			return
		}
	}
}

func (lx *Lexer) pushTrivia(kind TriviaKind, start Mark) {
	lx.hold = append(lx.hold, Trivia{
		Kind:  kind,
		Start: int(start),
		End:   lx.cursor.Off,
		Text:  lx.cursor.From(start),
	})
}
