package sfc

import (
	"sort"
	"strings"

	"vuecore/internal/source"
)

// implicitTemplate turns everything outside <script>/<style> blocks into the
// template. Blanked regions become spaces so offsets keep lining up.
func (p *parser) implicitTemplate() {
	regions := append([][2]int(nil), p.blank...)
	regions = append(regions, p.code...)
	sort.Slice(regions, func(i, j int) bool { return regions[i][0] < regions[j][0] })

	buf := []byte(p.text)
	for _, r := range regions {
		for i := r[0]; i < r[1] && i < len(buf); i++ {
			if buf[i] != '\n' {
				buf[i] = ' '
			}
		}
	}
	tpl := &Block{
		Type:          "template",
		Content:       string(buf),
		Start:         0,
		End:           len(p.text),
		TagStart:      0,
		TagEnd:        len(p.text),
		Closed:        true,
		Lang:          "html",
		GenericOffset: -1,
	}
	if p.opts.Kind == source.KindMarkdown {
		tpl.Lang = "md"
	}
	p.desc.Template = tpl
	p.desc.Blocks = append([]*Block{tpl}, p.desc.Blocks...)
}

// markdownCode finds fenced code blocks and inline code spans.
func markdownCode(text string) [][2]int {
	var out [][2]int
	lineStart := 0
	fence := ""
	fenceStart := 0
	for lineStart <= len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += lineStart
		}
		line := strings.TrimLeft(text[lineStart:lineEnd], " ")
		switch {
		case fence != "":
			if strings.HasPrefix(line, fence) {
				out = append(out, [2]int{fenceStart, lineEnd})
				fence = ""
			}
		case strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~"):
			fence = line[:3]
			fenceStart = lineStart
		default:
			out = append(out, inlineCode(text, lineStart, lineEnd)...)
		}
		if lineEnd == len(text) {
			break
		}
		lineStart = lineEnd + 1
	}
	if fence != "" {
		out = append(out, [2]int{fenceStart, len(text)})
	}
	return out
}

func inlineCode(text string, start, end int) [][2]int {
	var out [][2]int
	for i := start; i < end; i++ {
		if text[i] != '`' {
			continue
		}
		closing := strings.IndexByte(text[i+1:end], '`')
		if closing < 0 {
			break
		}
		out = append(out, [2]int{i, i + 1 + closing + 1})
		i += closing + 1
	}
	return out
}

// inRegion returns the end of the region containing off, or -1.
func inRegion(regions [][2]int, off int) int {
	for _, r := range regions {
		if off >= r[0] && off < r[1] {
			return r[1]
		}
	}
	return -1
}
