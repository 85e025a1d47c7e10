package template

import (
	"strings"

	"vuecore/internal/diag"
)

// attributes reads props up to '>' or '/>'.
func (p *parser) attributes() (props []Prop, selfClosing, closed bool) {
	src := p.src
	for p.pos < len(src) {
		c := src[p.pos]
		switch {
		case isSpace(c):
			p.pos++
		case c == '>':
			p.pos++
			return props, false, true
		case c == '/' && p.pos+1 < len(src) && src[p.pos+1] == '>':
			p.pos += 2
			return props, true, true
		case c == '<':
			// "<div <span>": тег не закрыт, начинается следующий
			return props, false, false
		case c == '/':
			p.pos++
		default:
			props = append(props, p.attribute())
		}
	}
	return props, false, false
}

func (p *parser) attribute() Prop {
	src := p.src
	start := p.pos
	// a leading '=' or quote is consumed as part of the name like browsers do
	p.pos++
	for p.pos < len(src) {
		c := src[p.pos]
		if isSpace(c) || c == '=' || c == '>' || c == '<' || (c == '/' && p.pos+1 < len(src) && src[p.pos+1] == '>') {
			break
		}
		// динамический аргумент может содержать пробелы внутри [ ]
		if c == '[' {
			if end := strings.IndexByte(src[p.pos:], ']'); end > 0 {
				p.pos += end + 1
				continue
			}
		}
		p.pos++
	}
	raw := src[start:p.pos]
	prop := Prop{RawName: raw, NameLoc: Loc{start, p.pos}, Loc: Loc{start, p.pos}}

	j := p.pos
	for j < len(src) && isSpace(src[j]) {
		j++
	}
	if j < len(src) && src[j] == '=' {
		j++
		for j < len(src) && isSpace(src[j]) {
			j++
		}
		prop.HasValue = true
		if j < len(src) && (src[j] == '"' || src[j] == '\'') {
			q := src[j]
			end := strings.IndexByte(src[j+1:], q)
			if end < 0 {
				p.error(diag.TplUnclosedAttrValue, Loc{j, len(src)}, "unterminated attribute value")
				prop.Value = src[j+1:]
				prop.ValueLoc = Loc{j + 1, len(src)}
				p.pos = len(src)
			} else {
				prop.Value = src[j+1 : j+1+end]
				prop.ValueLoc = Loc{j + 1, j + 1 + end}
				p.pos = j + 1 + end + 1
			}
		} else {
			vs := j
			for j < len(src) && !isSpace(src[j]) && src[j] != '>' {
				j++
			}
			prop.Value = src[vs:j]
			prop.ValueLoc = Loc{vs, j}
			p.pos = j
		}
		prop.Loc.End = p.pos
	}
	decompose(&prop)
	return prop
}

// decompose splits the raw name into directive name, argument and modifiers.
func decompose(prop *Prop) {
	raw := prop.RawName
	base := prop.NameLoc.Start
	var nameEnd, argStart int
	switch {
	case strings.HasPrefix(raw, "v-") && len(raw) > 2:
		nameEnd = 2
		for nameEnd < len(raw) && raw[nameEnd] != ':' && raw[nameEnd] != '.' {
			nameEnd++
		}
		prop.Name = raw[2:nameEnd]
		argStart = nameEnd
		if argStart < len(raw) && raw[argStart] == ':' {
			argStart++
		} else {
			argStart = -1 // modifiers only
		}
	case strings.HasPrefix(raw, ":") || strings.HasPrefix(raw, "."):
		prop.Name = "bind"
		argStart = 1
		nameEnd = 1
	case strings.HasPrefix(raw, "@"):
		prop.Name = "on"
		argStart = 1
		nameEnd = 1
	case strings.HasPrefix(raw, "#"):
		prop.Name = "slot"
		argStart = 1
		nameEnd = 1
	default:
		prop.Kind = PropAttribute
		prop.Name = raw
		return
	}
	prop.Kind = PropDirective

	modStart := nameEnd
	prop.ArgStatic = true // absent argument counts as static ""
	if argStart >= 0 {
		argEnd := argStart
		if argEnd < len(raw) && raw[argEnd] == '[' {
			if end := strings.IndexByte(raw[argEnd:], ']'); end > 0 {
				argEnd += end + 1
			} else {
				argEnd = len(raw)
			}
			prop.Arg = strings.TrimSuffix(strings.TrimPrefix(raw[argStart:argEnd], "["), "]")
			prop.ArgStatic = false
			prop.ArgLoc = Loc{base + argStart + 1, base + argStart + 1 + len(prop.Arg)}
		} else {
			for argEnd < len(raw) && raw[argEnd] != '.' {
				argEnd++
			}
			prop.Arg = raw[argStart:argEnd]
			prop.ArgLoc = Loc{base + argStart, base + argEnd}
		}
		modStart = argEnd
	}
	if modStart < len(raw) && raw[modStart] == '.' {
		prop.Modifiers = strings.Split(raw[modStart+1:], ".")
	}
	if strings.HasPrefix(raw, ".") {
		prop.Modifiers = append(prop.Modifiers, "prop")
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
