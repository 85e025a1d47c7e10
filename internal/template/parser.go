package template

import (
	"strings"

	"vuecore/internal/diag"
	"vuecore/internal/source"
)

// Options configures diagnostics. Reported spans are Base + template offset.
type Options struct {
	Reporter diag.Reporter
	File     source.FileID
	Base     int
}

type parser struct {
	src   string
	opts  Options
	ast   *AST
	stack []NodeID
	pos   int
}

// Parse builds the tree for src. It never fails; malformed markup is
// reported and recovered from the way browsers do.
func Parse(src string, opts Options) *AST {
	p := &parser{
		src: src,
		opts: opts,
		ast: &AST{
			Nodes:  NewArena[Node](len(src)/16 + 4),
			Source: src,
		},
	}
	p.ast.Root = p.alloc(Node{Kind: KindRoot, Loc: Loc{0, len(src)}})
	p.stack = []NodeID{p.ast.Root}
	p.run()
	for len(p.stack) > 1 {
		id := p.stack[len(p.stack)-1]
		n := p.ast.Node(id)
		p.error(diag.TplUnclosedElement, n.TagLoc, "element <"+n.Tag+"> is missing end tag")
		n.Loc.End = len(src)
		n.EndTagLoc = Loc{-1, -1}
		p.stack = p.stack[:len(p.stack)-1]
	}
	p.structure(p.ast.Root)
	return p.ast
}

func (p *parser) alloc(n Node) NodeID {
	return NodeID(p.ast.Nodes.Allocate(n))
}

func (p *parser) error(code diag.Code, loc Loc, msg string) {
	if p.opts.Reporter == nil {
		return
	}
	sp := source.Span{
		File:  p.opts.File,
		Start: source.Offset(p.opts.Base + loc.Start),
		End:   source.Offset(p.opts.Base + loc.End),
	}
	diag.ReportError(p.opts.Reporter, code, sp, msg).Emit()
}

func (p *parser) top() NodeID {
	return p.stack[len(p.stack)-1]
}

func (p *parser) appendChild(id NodeID) {
	parent := p.top()
	p.ast.Node(id).Parent = parent
	pn := p.ast.Node(parent)
	pn.Children = append(pn.Children, id)
}

func (p *parser) run() {
	src := p.src
	for p.pos < len(src) {
		rest := src[p.pos:]
		switch {
		case strings.HasPrefix(rest, "{{"):
			p.interpolation()
		case strings.HasPrefix(rest, "<!--"):
			p.comment()
		case strings.HasPrefix(rest, "</") && len(rest) > 2 && isNameStart(rest[2]):
			p.endTag()
		case rest[0] == '<' && len(rest) > 1 && isNameStart(rest[1]):
			p.startTag()
		default:
			p.text()
		}
	}
}

func (p *parser) text() {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		rest := p.src[p.pos:]
		if strings.HasPrefix(rest, "{{") || (rest[0] == '<' && len(rest) > 1 &&
			(isNameStart(rest[1]) || rest[1] == '/' || rest[1] == '!')) {
			break
		}
		p.pos++
	}
	p.appendChild(p.alloc(Node{
		Kind:       KindText,
		Loc:        Loc{start, p.pos},
		Content:    p.src[start:p.pos],
		ContentLoc: Loc{start, p.pos},
	}))
}

func (p *parser) interpolation() {
	start := p.pos
	inner := start + 2
	end := strings.Index(p.src[inner:], "}}")
	var closeAt int
	if end < 0 {
		p.error(diag.TplUnclosedInterpolation, Loc{start, start + 2}, "interpolation end sign was not found")
		closeAt = len(p.src)
		p.pos = len(p.src)
	} else {
		closeAt = inner + end
		p.pos = closeAt + 2
	}
	p.appendChild(p.alloc(Node{
		Kind:       KindInterpolation,
		Loc:        Loc{start, p.pos},
		Content:    p.src[inner:closeAt],
		ContentLoc: Loc{inner, closeAt},
	}))
}

func (p *parser) comment() {
	start := p.pos
	inner := start + 4
	end := strings.Index(p.src[inner:], "-->")
	closeAt := len(p.src)
	if end < 0 {
		p.error(diag.TplUnclosedComment, Loc{start, start + 4}, "unterminated comment")
		p.pos = len(p.src)
	} else {
		closeAt = inner + end
		p.pos = closeAt + 3
	}
	p.appendChild(p.alloc(Node{
		Kind:       KindComment,
		Loc:        Loc{start, p.pos},
		Content:    p.src[inner:closeAt],
		ContentLoc: Loc{inner, closeAt},
	}))
}

func (p *parser) endTag() {
	start := p.pos
	nameStart := start + 2
	nameEnd := nameStart
	for nameEnd < len(p.src) && isNameChar(p.src[nameEnd]) {
		nameEnd++
	}
	name := p.src[nameStart:nameEnd]
	gt := strings.IndexByte(p.src[nameEnd:], '>')
	if gt < 0 {
		p.pos = len(p.src)
	} else {
		p.pos = nameEnd + gt + 1
	}
	for i := len(p.stack) - 1; i > 0; i-- {
		n := p.ast.Node(p.stack[i])
		if !strings.EqualFold(n.Tag, name) {
			continue
		}
		for j := len(p.stack) - 1; j > i; j-- {
			open := p.ast.Node(p.stack[j])
			p.error(diag.TplUnclosedElement, open.TagLoc, "element <"+open.Tag+"> is missing end tag")
			open.Loc.End = start
			open.EndTagLoc = Loc{-1, -1}
		}
		n.Loc.End = p.pos
		n.EndTagLoc = Loc{nameStart, nameEnd}
		p.stack = p.stack[:i]
		return
	}
	p.error(diag.TplStrayEndTag, Loc{start, p.pos}, "invalid end tag </"+name+">")
}

func (p *parser) startTag() {
	start := p.pos
	nameStart := start + 1
	nameEnd := nameStart
	for nameEnd < len(p.src) && isNameChar(p.src[nameEnd]) {
		nameEnd++
	}
	tag := p.src[nameStart:nameEnd]
	p.pos = nameEnd
	props, selfClosing, closed := p.attributes()
	if !closed {
		p.error(diag.TplUnclosedStartTag, Loc{start, nameEnd}, "start tag <"+tag+"> is not terminated")
	}
	n := Node{
		Kind:        KindElement,
		Loc:         Loc{start, p.pos},
		Tag:         tag,
		TagType:     classify(tag, props),
		TagLoc:      Loc{nameStart, nameEnd},
		EndTagLoc:   Loc{-1, -1},
		Props:       props,
		SelfClosing: selfClosing,
	}
	id := p.alloc(n)
	p.appendChild(id)
	if selfClosing || IsVoidTag(tag) || !closed {
		return
	}
	if _, raw := rawTextTags[strings.ToLower(tag)]; raw {
		p.rawText(id)
		return
	}
	p.stack = append(p.stack, id)
}

// rawText consumes element content up to its end tag as a single text node.
func (p *parser) rawText(id NodeID) {
	n := p.ast.Node(id)
	closeTag := "</" + strings.ToLower(n.Tag)
	start := p.pos
	end := strings.Index(strings.ToLower(p.src[start:]), closeTag)
	if end < 0 {
		p.error(diag.TplUnclosedElement, n.TagLoc, "element <"+n.Tag+"> is missing end tag")
		p.pos = len(p.src)
		end = len(p.src) - start
	}
	if end > 0 {
		text := p.alloc(Node{
			Kind:       KindText,
			Parent:     id,
			Loc:        Loc{start, start + end},
			Content:    p.src[start : start+end],
			ContentLoc: Loc{start, start + end},
		})
		n = p.ast.Node(id)
		n.Children = append(n.Children, text)
	}
	if p.pos == len(p.src) {
		n.Loc.End = len(p.src)
		return
	}
	nameStart := start + end + 2
	gt := strings.IndexByte(p.src[nameStart:], '>')
	p.pos = len(p.src)
	if gt >= 0 {
		p.pos = nameStart + gt + 1
	}
	n.Loc.End = p.pos
	n.EndTagLoc = Loc{nameStart, nameStart + len(n.Tag)}
}

func classify(tag string, props []Prop) TagType {
	switch tag {
	case "slot":
		return TagSlot
	case "template":
		for _, pr := range props {
			if pr.Kind == PropDirective {
				switch pr.Name {
				case "if", "else-if", "else", "for", "slot":
					return TagTemplate
				}
			}
		}
		return TagElement
	}
	if IsComponentTag(tag) {
		return TagComponent
	}
	return TagElement
}

func isNameStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isNameChar(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9') || b == '-' || b == '_' || b == '.' || b == ':'
}
