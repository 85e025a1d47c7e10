package sfc

import (
	"strconv"
	"strings"

	"vuecore/internal/diag"
	"vuecore/internal/source"
)

// ParseOptions configures Parse and Update.
type ParseOptions struct {
	Kind source.Kind
	File source.FileID
}

type parser struct {
	text string
	opts ParseOptions
	bag  *diag.Bag
	desc *Descriptor
	// implicit-template mode collects regions to blank
	blank [][2]int
	code  [][2]int // markdown code, never scanned for blocks
}

// Parse splits text into blocks. It never fails: problems are recorded in
// Descriptor.Errors and unterminated blocks extend to the end of the file.
func Parse(text string, opts ParseOptions) *Descriptor {
	p := &parser{
		text: text,
		opts: opts,
		bag:  diag.NewBag(0),
		desc: &Descriptor{Source: text, Kind: opts.Kind},
	}
	if opts.Kind == source.KindMarkdown {
		p.code = markdownCode(text)
	}
	p.run()
	if opts.Kind != source.KindSFC {
		p.implicitTemplate()
	}
	p.assignKeys()
	p.desc.Errors = append([]diag.Diagnostic(nil), p.bag.Items()...)
	return p.desc
}

func (p *parser) span(start, end int) source.Span {
	return source.Span{File: p.opts.File, Start: source.Offset(start), End: source.Offset(end)}
}

func (p *parser) run() {
	text := p.text
	i := 0
	for i < len(text) {
		lt := strings.IndexByte(text[i:], '<')
		if lt < 0 {
			return
		}
		i += lt
		if end := inRegion(p.code, i); end >= 0 {
			i = end
			continue
		}
		switch {
		case strings.HasPrefix(text[i:], "<!--"):
			end := strings.Index(text[i+4:], "-->")
			if end < 0 {
				return
			}
			i += 4 + end + 3
		case strings.HasPrefix(text[i:], "</"):
			end := strings.IndexByte(text[i:], '>')
			if end < 0 {
				return
			}
			if p.opts.Kind == source.KindSFC {
				diag.ReportWarning(diag.BagReporter{Bag: p.bag}, diag.SfcStrayEndTag, p.span(i, i+end+1),
					"closing tag "+text[i:i+end+1]+" has no matching block").Emit()
			}
			i += end + 1
		case i+1 < len(text) && isTagNameStart(text[i+1]):
			next, ok := p.block(i)
			if !ok {
				return
			}
			i = next
		default:
			i++
		}
	}
}

// block parses the element starting at '<' and returns the offset after it.
func (p *parser) block(lt int) (int, bool) {
	text := p.text
	nameEnd := lt + 1
	for nameEnd < len(text) && isTagNameChar(text[nameEnd]) {
		nameEnd++
	}
	name := text[lt+1 : nameEnd]
	if p.opts.Kind != source.KindSFC && name != "script" && name != "style" {
		// в неявном шаблоне остальные теги принадлежат разметке
		return nameEnd, true
	}

	attrs, tagEnd, selfClosing, ok := parseAttrs(text, nameEnd)
	if !ok {
		diag.ReportError(diag.BagReporter{Bag: p.bag}, diag.SfcUnclosedStartTag, p.span(lt, len(text)),
			"start tag <"+name+"> is not terminated").Emit()
		return len(text), false
	}

	b := &Block{
		Type:          name,
		TagStart:      lt,
		Start:         tagEnd,
		Attrs:         attrs,
		GenericOffset: -1,
		Closed:        true,
	}
	if selfClosing {
		b.End = tagEnd
		b.TagEnd = tagEnd
	} else {
		closeStart, closeEnd := findClose(text, name, tagEnd)
		if closeStart < 0 {
			diag.ReportError(diag.BagReporter{Bag: p.bag}, diag.SfcUnclosedBlock, p.span(lt, tagEnd),
				"<"+name+"> block has no closing tag").Emit()
			b.End = len(text)
			b.TagEnd = len(text)
			b.Closed = false
		} else {
			b.End = closeStart
			b.TagEnd = closeEnd
		}
	}
	b.Content = text[b.Start:b.End]
	applyAttrs(b)
	p.add(b)
	return b.TagEnd, true
}

func (p *parser) add(b *Block) {
	d := p.desc
	dup := func(kind string) {
		diag.ReportWarning(diag.BagReporter{Bag: p.bag}, diag.SfcDuplicateBlock, p.span(b.TagStart, b.Start),
			"duplicate "+kind+" block is ignored").Emit()
	}
	if b.Src != "" && !isBlank(b.Content) {
		diag.ReportWarning(diag.BagReporter{Bag: p.bag}, diag.SfcSrcWithContent, p.span(b.TagStart, b.Start),
			"block with src attribute should be empty").Emit()
	}
	switch {
	case b.Type == "template":
		if d.Template != nil {
			dup("<template>")
			return
		}
		d.Template = b
	case b.Type == "script" && b.Setup:
		if d.ScriptSetup != nil {
			dup("<script setup>")
			return
		}
		d.ScriptSetup = b
	case b.Type == "script":
		if d.Script != nil {
			dup("<script>")
			return
		}
		d.Script = b
	case b.Type == "style":
		d.Styles = append(d.Styles, b)
	default:
		d.CustomBlocks = append(d.CustomBlocks, b)
	}
	d.Blocks = append(d.Blocks, b)
	if p.opts.Kind != source.KindSFC {
		p.blank = append(p.blank, [2]int{b.TagStart, b.TagEnd})
	}
}

func (p *parser) assignKeys() {
	styles, customs := 0, 0
	for _, b := range p.desc.Blocks {
		switch {
		case b == p.desc.Template:
			b.Key = "template"
		case b == p.desc.ScriptSetup:
			b.Key = "scriptSetup"
		case b == p.desc.Script:
			b.Key = "script"
		case b.Type == "style":
			b.Key = "style_" + strconv.Itoa(styles)
			styles++
		default:
			b.Key = "customBlock_" + strconv.Itoa(customs)
			customs++
		}
	}
}

// findClose locates the matching close tag. Templates nest.
func findClose(text, name string, from int) (start, end int) {
	depth := 1
	i := from
	for i < len(text) {
		lt := strings.IndexByte(text[i:], '<')
		if lt < 0 {
			return -1, -1
		}
		i += lt
		if strings.HasPrefix(text[i:], "<!--") && name == "template" {
			e := strings.Index(text[i+4:], "-->")
			if e < 0 {
				return -1, -1
			}
			i += 4 + e + 3
			continue
		}
		if closesTag(text, i, name) {
			depth--
			gt := strings.IndexByte(text[i:], '>')
			if gt < 0 {
				if depth == 0 {
					return i, len(text)
				}
				return -1, -1
			}
			if depth == 0 {
				return i, i + gt + 1
			}
			i += gt + 1
			continue
		}
		if name == "template" && opensTag(text, i, name) {
			_, tagEnd, selfClosing, ok := parseAttrs(text, i+1+len(name))
			if !ok {
				return -1, -1
			}
			if !selfClosing {
				depth++
			}
			i = tagEnd
			continue
		}
		i++
	}
	return -1, -1
}

func closesTag(text string, i int, name string) bool {
	rest := text[i:]
	if len(rest) < 2+len(name) || rest[:2] != "</" || !strings.EqualFold(rest[2:2+len(name)], name) {
		return false
	}
	return len(rest) == 2+len(name) || !isTagNameChar(rest[2+len(name)])
}

func opensTag(text string, i int, name string) bool {
	rest := text[i:]
	if len(rest) < 1+len(name) || rest[0] != '<' || !strings.EqualFold(rest[1:1+len(name)], name) {
		return false
	}
	return len(rest) == 1+len(name) || !isTagNameChar(rest[1+len(name)])
}

func isTagNameStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isTagNameChar(b byte) bool {
	return isTagNameStart(b) || (b >= '0' && b <= '9') || b == '-' || b == '_' || b == '.' || b == ':'
}
