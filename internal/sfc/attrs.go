package sfc

import "strings"

// parseAttrs reads attributes from just after the tag name up to '>'.
// tagEnd is the offset after '>'; ok is false when the tag never closes.
func parseAttrs(text string, from int) (attrs []Attr, tagEnd int, selfClosing, ok bool) {
	i := from
	for i < len(text) {
		c := text[i]
		switch {
		case isSpace(c):
			i++
		case c == '>':
			return attrs, i + 1, false, true
		case c == '/' && i+1 < len(text) && text[i+1] == '>':
			return attrs, i + 2, true, true
		case c == '/':
			i++
		default:
			nameStart := i
			for i < len(text) && !isSpace(text[i]) && text[i] != '=' && text[i] != '>' &&
				!(text[i] == '/' && i+1 < len(text) && text[i+1] == '>') {
				i++
			}
			a := Attr{Name: text[nameStart:i], NameStart: nameStart, ValueStart: -1}
			j := skipSpaces(text, i)
			if j < len(text) && text[j] == '=' {
				j = skipSpaces(text, j+1)
				if j >= len(text) {
					return attrs, 0, false, false
				}
				a.HasValue = true
				if q := text[j]; q == '"' || q == '\'' {
					end := strings.IndexByte(text[j+1:], q)
					if end < 0 {
						return attrs, 0, false, false
					}
					a.ValueStart = j + 1
					a.Value = text[j+1 : j+1+end]
					i = j + 1 + end + 1
				} else {
					a.ValueStart = j
					for j < len(text) && !isSpace(text[j]) && text[j] != '>' {
						j++
					}
					a.Value = text[a.ValueStart:j]
					i = j
				}
			}
			attrs = append(attrs, a)
		}
	}
	return attrs, 0, false, false
}

// applyAttrs fills the convenience fields of b from its attributes.
func applyAttrs(b *Block) {
	for _, a := range b.Attrs {
		switch a.Name {
		case "lang":
			b.Lang = a.Value
		case "setup":
			b.Setup = b.Type == "script"
		case "scoped":
			b.Scoped = b.Type == "style"
		case "module":
			if b.Type == "style" {
				b.Module = "$style"
				if a.HasValue && a.Value != "" {
					b.Module = a.Value
				}
			}
		case "src":
			b.Src = a.Value
		case "generic":
			if b.Type == "script" && a.HasValue {
				b.Generic = a.Value
				b.GenericOffset = a.ValueStart
			}
		}
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func skipSpaces(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}
